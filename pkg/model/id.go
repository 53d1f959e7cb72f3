// Package model holds the data types of the call graph: function and type
// declarations, call sites, resolved edges, and the file metadata that ties
// them to source. Nothing in this package mutates state — construction and
// mutation live in internal/graphstore.
package model

import (
	"crypto/md5" //nolint:gosec // spec mandates MD5 for project_id, not used for security
	"encoding/hex"
	"fmt"

	"github.com/zeebo/xxh3"
)

// MarshalText renders ID as hex so it can be used as a JSON object key
// (encoding/json requires map keys to be strings, integers, or
// encoding.TextMarshaler implementations) and so persisted graphs stay
// human-readable.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the hex form produced by MarshalText.
func (id *ID) UnmarshalText(text []byte) error {
	if len(text) != 32 {
		*id = NilID
		return nil
	}
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(b[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(b[i])
	}
	id.Hi, id.Lo = hi, lo
	return nil
}

// ID is a stable 128-bit opaque identifier. It is derived from a
// declaration's file, namespace, name and starting line rather than from
// insertion order, so re-extracting an unchanged declaration yields the
// same ID (required by the incremental-equivalence property).
type ID struct {
	Hi uint64
	Lo uint64
}

// NilID is the zero value, used for unresolved-but-reserved sentinels before
// a placeholder is assigned.
var NilID = ID{}

// String renders the ID as a 32-character lowercase hex string.
func (id ID) String() string {
	var b [16]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(id.Hi >> (56 - 8*i))
		b[8+i] = byte(id.Lo >> (56 - 8*i))
	}
	return hex.EncodeToString(b[:])
}

// IsZero reports whether id is the nil ID.
func (id ID) IsZero() bool {
	return id == NilID
}

// NewID derives a deterministic ID from the parts that define a
// declaration's identity: file path, enclosing namespace, declared name and
// 1-based starting line. Two extractions of the same unmodified source
// region always produce the same ID.
func NewID(file, namespace, name string, lineStart int) ID {
	key := fmt.Sprintf("%s\x00%s\x00%s\x00%d", file, namespace, name, lineStart)
	h := xxh3.Hash128([]byte(key))
	return ID{Hi: h.Hi, Lo: h.Lo}
}

// NewProjectID derives the stable project_id: the MD5 digest of the
// project root path, hex-encoded.
func NewProjectID(rootPath string) string {
	sum := md5.Sum([]byte(rootPath)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
