package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalkSkipsIgnoredDirsAndUnsupportedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "module.exports = {}")
	writeFile(t, filepath.Join(root, "README.md"), "# hi")
	writeFile(t, filepath.Join(root, ".git", "config"), "")

	files, err := Walk(root, Options{}, nil)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, filepath.Join(root, "main.go"))
	for _, p := range paths {
		assert.NotContains(t, p, "node_modules")
		assert.NotContains(t, p, ".git")
	}
}

func TestWalkRespectsMaxFileBytes(t *testing.T) {
	root := t.TempDir()
	big := filepath.Join(root, "big.go")
	writeFile(t, big, "package main\n// padding")

	files, err := Walk(root, Options{MaxFileBytes: 5}, func(path string) (int64, error) {
		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		return info.Size(), nil
	})
	require.NoError(t, err)
	assert.Empty(t, files)
}
