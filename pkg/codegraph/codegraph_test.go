package codegraph

import (
	"context"
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

func TestIndexResolvesFreeFunctionCallAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "helper.go"), `package main

func Helper() int {
	return 1
}
`)
	writeFile(t, filepath.Join(root, "main.go"), `package main

func Main() {
	Helper()
}
`)

	project, err := Index(context.Background(), root, Options{Workers: 2})
	require.NoError(t, err)

	fns := project.Store.FindByName("Main")
	require.Len(t, fns, 1)

	edges := project.Store.CalleesOf(fns[0].ID)
	require.Len(t, edges, 1)
	assert.True(t, edges[0].Resolved)
	assert.Equal(t, "Helper", edges[0].CalleeName)
}

func TestProjectRefreshReResolvesAfterEdit(t *testing.T) {
	root := t.TempDir()
	helperPath := filepath.Join(root, "helper.go")
	writeFile(t, helperPath, `package main

func Helper() int { return 1 }
`)
	writeFile(t, filepath.Join(root, "main.go"), `package main

func Main() {
	Helper()
}
`)

	project, err := Index(context.Background(), root, Options{Workers: 2})
	require.NoError(t, err)

	newSrc := []byte(`package main

func Helper() int { return 2 }
`)
	require.NoError(t, project.Refresh(helperPath, newSrc))

	fns := project.Store.FindByName("Main")
	require.Len(t, fns, 1)
	edges := project.Store.CalleesOf(fns[0].ID)
	require.Len(t, edges, 1)
	assert.True(t, edges[0].Resolved)
}

func TestOpenReloadsASavedProjectWithoutReparsing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "helper.go"), `package main

func Helper() int {
	return 1
}
`)
	writeFile(t, filepath.Join(root, "main.go"), `package main

func Main() {
	Helper()
}
`)

	indexed, err := Index(context.Background(), root, Options{Workers: 2})
	require.NoError(t, err)
	require.NoError(t, indexed.Save())

	reopened, err := Open(root)
	require.NoError(t, err)

	assert.Equal(t, indexed.ID, reopened.ID)

	fns := reopened.Store.FindByName("Main")
	require.Len(t, fns, 1)

	edges := reopened.Store.CalleesOf(fns[0].ID)
	require.Len(t, edges, 1)
	assert.True(t, edges[0].Resolved)
	assert.Equal(t, "Helper", edges[0].CalleeName)

	require.NotNil(t, reopened.API)
}

func TestOpenWithoutAPriorSaveReturnsAnError(t *testing.T) {
	root := t.TempDir()
	_, err := Open(root)
	assert.Error(t, err)
}
