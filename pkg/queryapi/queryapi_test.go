package queryapi

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphio/codegraph/internal/graphstore"
	"github.com/codegraphio/codegraph/internal/hierarchy"
	"github.com/codegraphio/codegraph/pkg/model"
)

func TestExpandFollowsOutboundCalls(t *testing.T) {
	store := graphstore.New()
	main := &model.Fn{ID: model.NewID("a.go", "", "main", 1), Name: "main", File: "a.go"}
	helper := &model.Fn{ID: model.NewID("a.go", "", "helper", 5), Name: "helper", File: "a.go"}
	store.AddFunction(main)
	store.AddFunction(helper)
	store.AddEdge(&model.Edge{CallerFnID: main.ID, CalleeFnID: helper.ID, Resolved: true})

	api := New(store, hierarchy.Build(nil), nil)
	result := api.Expand(main.ID, DirectionOut, 0, 0)

	require.Len(t, result.Nodes, 2)
	assert.Equal(t, main.ID, result.Nodes[0].Fn.ID)
	assert.Equal(t, helper.ID, result.Nodes[1].Fn.ID)
}

func TestHierarchicalMarksCycle(t *testing.T) {
	store := graphstore.New()
	a := &model.Fn{ID: model.NewID("x.go", "", "a", 1), Name: "a", File: "x.go"}
	b := &model.Fn{ID: model.NewID("x.go", "", "b", 2), Name: "b", File: "x.go"}
	store.AddFunction(a)
	store.AddFunction(b)
	store.AddEdge(&model.Edge{CallerFnID: a.ID, CalleeFnID: b.ID, Resolved: true})
	store.AddEdge(&model.Edge{CallerFnID: b.ID, CalleeFnID: a.ID, Resolved: true})

	api := New(store, hierarchy.Build(nil), nil)
	tree := api.Hierarchical(a.ID, 5)

	require.Len(t, tree.Children, 1)
	bNode := tree.Children[0]
	require.Len(t, bNode.Children, 1)
	assert.True(t, bNode.Children[0].Cycle)
}

func TestHierarchicalProjectGroupsByFile(t *testing.T) {
	store := graphstore.New()
	a := &model.Fn{ID: model.NewID("a.go", "", "a", 1), Name: "a", File: "a.go"}
	b := &model.Fn{ID: model.NewID("b.go", "", "b", 1), Name: "b", File: "b.go"}
	store.AddFunction(a)
	store.AddFunction(b)

	api := New(store, hierarchy.Build(nil), nil)
	tree := api.HierarchicalProject(true)

	assert.Equal(t, "project", tree.Label)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "a.go", tree.Children[0].Label)
	assert.Equal(t, "a.go", tree.Children[0].File)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, "a", tree.Children[0].Children[0].Fn.Name)
}

func TestSnippetClampsToFileBounds(t *testing.T) {
	loader := func(file string) ([]byte, error) {
		return []byte("line1\nline2\nline3\n"), nil
	}
	api := New(graphstore.New(), hierarchy.Build(nil), loader)

	text, _, err := api.Snippet("a.go", 2, 100)
	require.NoError(t, err)
	assert.Equal(t, "line2\nline3", text)
}

func TestSnippetPropagatesLoaderError(t *testing.T) {
	loader := func(file string) ([]byte, error) { return nil, fmt.Errorf("boom") }
	api := New(graphstore.New(), hierarchy.Build(nil), loader)
	_, _, err := api.Snippet("missing.go", 1, 1)
	assert.Error(t, err)
}

func TestSkeletonListsTypesAndFunctions(t *testing.T) {
	store := graphstore.New()
	store.AddType(&model.TypeDecl{ID: model.NewID("a.go", "", "Widget", 1), Name: "Widget", File: "a.go", LineStart: 1, Kind: model.KindStruct})
	store.AddFunction(&model.Fn{ID: model.NewID("a.go", "", "helper", 5), Name: "helper", File: "a.go", LineStart: 5})

	api := New(store, hierarchy.Build(nil), nil)
	entries := api.Skeleton("a.go")
	require.Len(t, entries, 2)
	assert.Equal(t, "Widget", entries[0].Name)
	assert.Equal(t, "helper", entries[1].Name)
}

func TestSkeletonTextElidesBodiesAndListsFields(t *testing.T) {
	store := graphstore.New()
	widgetID := model.NewID("a.go", "", "Widget", 1)
	store.AddType(&model.TypeDecl{
		ID: widgetID, Name: "Widget", File: "a.go", LineStart: 1, Kind: model.KindStruct,
		Fields: []model.Field{{Name: "count", DeclaredType: "int"}},
	})
	store.AddFunction(&model.Fn{
		ID: model.NewID("a.go", "Widget", "Reset", 3), Name: "Reset", File: "a.go", LineStart: 3,
		EnclosingType: widgetID, Signature: "Reset()",
	})
	store.AddFunction(&model.Fn{
		ID: model.NewID("a.go", "", "main", 10), Name: "main", File: "a.go", LineStart: 10,
		Signature: "main()",
	})

	api := New(store, hierarchy.Build(nil), nil)
	text := api.SkeletonText("a.go")
	assert.Contains(t, text, "struct Widget {")
	assert.Contains(t, text, "int count")
	assert.Contains(t, text, "Reset() { … }")
	assert.Contains(t, text, "main() { … }")
	assert.NotContains(t, text, "return")
}
