// Package discover walks a project root and yields the source files the
// rest of the pipeline should parse, filtering out build output and
// dependency directories the same way the teacher's file-discovery pass
// does (internal/discover/discover.go's IGNORE_PATTERNS/IGNORE_SUFFIXES).
package discover

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/codegraphio/codegraph/internal/lang"
)

// ignoreDirs are directory names skipped outright, regardless of depth.
// This list is deliberately language-agnostic: spec §6 runs across seven
// languages at once, so it merges each ecosystem's usual noise directory.
var ignoreDirs = map[string]bool{
	"target":       true, // Rust, Java/Maven
	"node_modules": true, // JS/TS
	"__pycache__":  true, // Python
	"venv":         true,
	".venv":        true,
	"env":          true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	".git":         true,
	".codegraph_cache": true,
}

// File is one discovered source file, already language-tagged.
type File struct {
	Path     string
	Language lang.Tag
}

// Options controls a Walk call.
type Options struct {
	// MaxFileBytes skips any file larger than this many bytes. Zero means
	// unbounded. Spec §6 treats an oversized file as a soft skip, not an
	// error.
	MaxFileBytes int64
}

// Walk enumerates every supported source file under root in
// deterministic (lexical) order, so two runs over an unchanged tree
// produce the same discovery order — a precondition for the
// incremental-equivalence property to be checkable at all.
func Walk(root string, opts Options, statSize func(path string) (int64, error)) ([]File, error) {
	var out []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || ignoreDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		tag := lang.ForPath(path)
		if tag == lang.Unsupported {
			return nil
		}
		if opts.MaxFileBytes > 0 && statSize != nil {
			size, err := statSize(path)
			if err == nil && size > opts.MaxFileBytes {
				return nil
			}
		}
		out = append(out, File{Path: path, Language: tag})
		return nil
	})
	return out, err
}
