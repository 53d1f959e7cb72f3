// Package graphstore is the Call Graph Store (spec §4.7): the single
// writable in-memory representation of a project's functions, types and
// call edges. It is a multigraph — two functions may be joined by more
// than one edge (e.g. a virtual call resolved to several overrides) — and
// is safe for concurrent readers once the aggregator goroutine (spec §5)
// is the only writer, the same single-writer/many-reader discipline the
// teacher's store.go documents for its SQLite connection.
package graphstore

import (
	"sort"
	"sync"

	"github.com/codegraphio/codegraph/pkg/model"
)

// Store holds one project's call graph.
type Store struct {
	mu sync.RWMutex

	functions map[model.ID]*model.Fn
	types     map[model.ID]*model.TypeDecl

	byName      map[string][]model.ID
	fnsByFile   map[string][]model.ID
	typesByFile map[string][]model.ID

	edgesOut map[model.ID][]*model.Edge // keyed by CallerFnID
	edgesIn  map[model.ID][]*model.Edge // keyed by CalleeFnID

	files map[string]*model.FileMeta
	stats model.Stats
}

func New() *Store {
	return &Store{
		functions:   map[model.ID]*model.Fn{},
		types:       map[model.ID]*model.TypeDecl{},
		byName:      map[string][]model.ID{},
		fnsByFile:   map[string][]model.ID{},
		typesByFile: map[string][]model.ID{},
		edgesOut:    map[model.ID][]*model.Edge{},
		edgesIn:     map[model.ID][]*model.Edge{},
		files:       map[string]*model.FileMeta{},
	}
}

// AddFunction inserts or replaces a Fn. Re-adding a Fn with the same ID
// (the common incremental-refresh case) overwrites in place rather than
// duplicating, preserving invariant I-1 (one Fn per id).
func (s *Store) AddFunction(fn *model.Fn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.functions[fn.ID] = fn
	s.byName[fn.Name] = appendUnique(s.byName[fn.Name], fn.ID)
	s.fnsByFile[fn.File] = appendUnique(s.fnsByFile[fn.File], fn.ID)
}

func (s *Store) AddType(td *model.TypeDecl) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[td.ID] = td
	if td.File != "" {
		s.typesByFile[td.File] = appendUnique(s.typesByFile[td.File], td.ID)
	}
}

// AddEdge inserts a resolved or unresolved edge. Unresolved edges reuse a
// per-(calleeName, callerFile) placeholder id (spec §4.7's "unresolved
// sentinel") so repeated unresolved calls to the same name from the same
// file don't create unbounded distinct placeholder nodes.
func (s *Store) AddEdge(e *model.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !e.Resolved {
		e.CalleeFnID = model.NewID("<unresolved>", e.CallerFile, e.CalleeName, 0)
	}
	s.edgesOut[e.CallerFnID] = append(s.edgesOut[e.CallerFnID], e)
	s.edgesIn[e.CalleeFnID] = append(s.edgesIn[e.CalleeFnID], e)
}

// CalleesOf returns every edge originating at fnID (what fnID calls).
func (s *Store) CalleesOf(fnID model.ID) []*model.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.Edge(nil), s.edgesOut[fnID]...)
}

// CallersOf returns every edge terminating at fnID (who calls fnID).
func (s *Store) CallersOf(fnID model.ID) []*model.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.Edge(nil), s.edgesIn[fnID]...)
}

func (s *Store) Function(id model.ID) *model.Fn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.functions[id]
}

func (s *Store) Type(id model.ID) *model.TypeDecl {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.types[id]
}

// FindByName returns every Fn with the given exact name, sorted by
// (file, line_start) for deterministic output ordering.
func (s *Store) FindByName(name string) []*model.Fn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.fnsFor(s.byName[name])
	sortFns(out)
	return out
}

// FindByFile returns every Fn declared in file, sorted by line_start.
func (s *Store) FindByFile(file string) []*model.Fn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.fnsFor(s.fnsByFile[file])
	sortFns(out)
	return out
}

// FindTypesByFile returns every TypeDecl declared in file, sorted by
// line_start.
func (s *Store) FindTypesByFile(file string) []*model.TypeDecl {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.TypeDecl, 0, len(s.typesByFile[file]))
	for _, id := range s.typesByFile[file] {
		if td := s.types[id]; td != nil {
			out = append(out, td)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineStart < out[j].LineStart })
	return out
}

func (s *Store) fnsFor(ids []model.ID) []*model.Fn {
	out := make([]*model.Fn, 0, len(ids))
	for _, id := range ids {
		if fn := s.functions[id]; fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

// RemoveFile retracts every Fn and TypeDecl declared in file along with
// every edge whose caller was in file. Edges that terminated at a removed
// function but originated elsewhere are not deleted — spec §4.7 requires
// callers_of to keep surfacing them — instead they are re-pointed at the
// same per-(calleeName, callerFile) unresolved sentinel AddEdge uses, so
// every edge still satisfies the invariant that CalleeFnID names either a
// live Fn or a member of the unresolved-sentinel set.
func (s *Store) RemoveFile(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removedFns := map[model.ID]bool{}
	for _, id := range s.fnsByFile[file] {
		removedFns[id] = true
		fn := s.functions[id]
		delete(s.functions, id)
		if fn != nil {
			s.byName[fn.Name] = removeID(s.byName[fn.Name], id)
		}
		for _, out := range s.edgesOut[id] {
			kept := s.edgesIn[out.CalleeFnID][:0]
			for _, in := range s.edgesIn[out.CalleeFnID] {
				if in != out {
					kept = append(kept, in)
				}
			}
			s.edgesIn[out.CalleeFnID] = kept
		}
		delete(s.edgesOut, id)
	}
	delete(s.fnsByFile, file)

	for _, id := range s.typesByFile[file] {
		delete(s.types, id)
	}
	delete(s.typesByFile, file)

	for callee := range removedFns {
		edges, ok := s.edgesIn[callee]
		if !ok {
			continue
		}
		delete(s.edgesIn, callee)
		for _, e := range edges {
			e.Resolved = false
			e.CalleeFnID = model.NewID("<unresolved>", e.CallerFile, e.CalleeName, 0)
			s.edgesIn[e.CalleeFnID] = append(s.edgesIn[e.CalleeFnID], e)
		}
	}
	delete(s.files, file)
}

// ClearEdges drops every edge in the store. Used before a full project-wide
// re-resolution pass (spec §4.8's conservative incremental-rebuild
// strategy), so stale edges from a now-outdated hierarchy never linger.
func (s *Store) ClearEdges() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edgesOut = map[model.ID][]*model.Edge{}
	s.edgesIn = map[model.ID][]*model.Edge{}
}

// UpsertFileMeta records the MD5/size/language bookkeeping the Incremental
// Manager needs to decide whether a file actually changed (spec §4.8).
func (s *Store) UpsertFileMeta(meta *model.FileMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[meta.Path] = meta
}

func (s *Store) FileMeta(path string) *model.FileMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.files[path]
}

// Files returns every file path with at least one function or type on
// record, sorted for deterministic output. Used by the Query API's
// project-wide hierarchical view (spec §4.10, the fn_id-absent case).
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for f := range s.fnsByFile {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for f := range s.typesByFile {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// Stats recomputes and returns the aggregate counters (spec §6's logical
// schema summary).
func (s *Store) Stats() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := model.Stats{Languages: map[string]int{}}
	st.TotalFunctions = len(s.functions)
	st.TotalFiles = len(s.fnsByFile)
	for _, fn := range s.functions {
		st.Languages[fn.Language]++
	}
	st.TotalLanguages = len(st.Languages)
	for _, edges := range s.edgesOut {
		for _, e := range edges {
			if e.Resolved {
				st.ResolvedCalls++
			} else {
				st.UnresolvedCalls++
			}
		}
	}
	s.stats = st
	return st
}

func appendUnique(ids []model.ID, id model.ID) []model.ID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []model.ID, id model.ID) []model.ID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func sortFns(fns []*model.Fn) {
	sort.Slice(fns, func(i, j int) bool {
		if fns[i].File != fns[j].File {
			return fns[i].File < fns[j].File
		}
		return fns[i].LineStart < fns[j].LineStart
	})
}
