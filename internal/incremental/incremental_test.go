package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphio/codegraph/internal/graphstore"
)

func TestRefreshIsNoOpOnUnchangedContent(t *testing.T) {
	store := graphstore.New()
	m := NewManager(store)
	src := []byte("package main\n\nfunc Main() {}\n")

	r1, err := m.Refresh("a.go", src)
	require.NoError(t, err)
	assert.True(t, r1.Changed)

	fns := store.FindByName("Main")
	require.Len(t, fns, 1)
	firstID := fns[0].ID

	r2, err := m.Refresh("a.go", src)
	require.NoError(t, err)
	assert.False(t, r2.Changed)

	fns = store.FindByName("Main")
	require.Len(t, fns, 1)
	assert.Equal(t, firstID, fns[0].ID)
}

func TestRefreshSkipsUnsupportedLanguage(t *testing.T) {
	store := graphstore.New()
	m := NewManager(store)
	r, err := m.Refresh("README.md", []byte("# hi"))
	require.NoError(t, err)
	assert.True(t, r.Skipped)
}

func TestRemoveRetractsFile(t *testing.T) {
	store := graphstore.New()
	m := NewManager(store)
	src := []byte("package main\n\nfunc Main() {}\n")
	_, err := m.Refresh("a.go", src)
	require.NoError(t, err)
	require.Len(t, store.FindByName("Main"), 1)

	m.Remove("a.go")
	assert.Empty(t, store.FindByName("Main"))
}
