// Package incremental is the Incremental Manager (spec §4.8): it decides,
// file by file, whether a refresh actually changed anything (by content
// hash) and swaps the old extraction results for new ones atomically in
// the Call Graph Store. It does not rebuild the Class Hierarchy or
// re-resolve calls itself — spec §4.5/§4.6 explain why those are
// necessarily whole-project passes — that rebuild is the caller's job
// once a batch of refreshes completes (see pkg/codegraph).
package incremental

import (
	"crypto/md5" //nolint:gosec // content-change detection, not security
	"encoding/hex"
	"fmt"
	"time"

	"github.com/codegraphio/codegraph/internal/extract"
	"github.com/codegraphio/codegraph/internal/graphstore"
	"github.com/codegraphio/codegraph/internal/lang"
	"github.com/codegraphio/codegraph/internal/tsparser"
	"github.com/codegraphio/codegraph/pkg/model"
)

// Manager drives per-file refresh against a single Store.
type Manager struct {
	store *graphstore.Store
	// now is overridable for deterministic tests; defaults to time.Now.
	now func() time.Time
}

func NewManager(store *graphstore.Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// RefreshResult reports what a Refresh call actually did.
type RefreshResult struct {
	Changed  bool
	Skipped  bool // language unsupported
	Extracted *extract.Result
}

// Refresh (re-)parses and (re-)extracts path if its content hash differs
// from what the store already has on record. An unchanged file is a true
// no-op: the store is not touched, preserving existing Fn/Type ids (the
// incremental-equivalence property, spec §8 S4). A parse failure leaves
// the store's previous state for path completely intact and returns the
// error — partial failure never corrupts what was already indexed.
func (m *Manager) Refresh(path string, source []byte) (RefreshResult, error) {
	tag := lang.ForPath(path)
	if tag == lang.Unsupported {
		return RefreshResult{Skipped: true}, nil
	}

	digest := md5Hex(source)
	if existing := m.store.FileMeta(path); existing != nil && existing.MD5 == digest {
		return RefreshResult{Changed: false}, nil
	}

	tree, err := tsparser.Parse(tag, source)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("incremental: parse %s: %w", path, err)
	}
	defer tree.Close()

	result := extract.Extract(tag, path, source, tree.RootNode())

	m.store.RemoveFile(path)
	for _, fn := range result.Functions {
		m.store.AddFunction(fn)
	}
	for _, td := range result.Types {
		m.store.AddType(td)
	}
	m.store.UpsertFileMeta(&model.FileMeta{
		Path:        path,
		MD5:         digest,
		Size:        int64(len(source)),
		LastUpdated: m.now().Unix(),
		Language:    string(tag),
	})

	return RefreshResult{Changed: true, Extracted: result}, nil
}

// Remove retracts a deleted file entirely (spec §8 S5). A subsequent
// Refresh of the same path with new content is indistinguishable from a
// first-time add, which is also how a rename is handled: delete the old
// path, add the new one, rather than trying to preserve ids across the
// rename (spec's Open Question on renames, resolved against id
// preservation since a path is part of every id's derivation).
func (m *Manager) Remove(path string) {
	m.store.RemoveFile(path)
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
