package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphio/codegraph/pkg/model"
)

func mkType(name, parent string, ifaces ...string) *model.TypeDecl {
	return &model.TypeDecl{
		ID:               model.NewID("f.go", "", name, 1),
		Name:             name,
		Parent:           parent,
		Interfaces:       ifaces,
		Methods:          map[model.ID]bool{},
		MethodSignatures: map[string]model.MethodSig{},
	}
}

func TestBuildResolvesInProjectParent(t *testing.T) {
	base := mkType("Base", "")
	derived := mkType("Derived", "Base")

	h := Build([]*model.TypeDecl{base, derived})
	subs := h.Subtypes(base.ID)
	require.Len(t, subs, 1)
	assert.Equal(t, derived.ID, subs[0])
}

func TestBuildFabricatesExternalStubForUnresolvedParent(t *testing.T) {
	derived := mkType("Derived", "SomeFrameworkBase")
	h := Build([]*model.TypeDecl{derived})

	stub := h.byName["SomeFrameworkBase"]
	require.Len(t, stub, 1)
	assert.True(t, stub[0].External)
	assert.Contains(t, h.Subtypes(stub[0].ID), derived.ID)
}

func TestMethodTableInheritsUnlessOverridden(t *testing.T) {
	base := mkType("Base", "")
	base.MethodSignatures["greet"] = model.MethodSig{Name: "greet", ReturnType: "string"}
	derived := mkType("Derived", "Base")
	derived.MethodSignatures["greet"] = model.MethodSig{Name: "greet", ReturnType: "string", IsOverride: true}
	derived.MethodSignatures["extra"] = model.MethodSig{Name: "extra"}

	h := Build([]*model.TypeDecl{base, derived})
	table := h.MethodTable(derived.ID)
	require.Contains(t, table, "greet")
	require.Contains(t, table, "extra")
	assert.True(t, table["greet"].IsOverride)
}

func TestBuildBreaksCycleDeterministically(t *testing.T) {
	a := mkType("A", "B")
	b := mkType("B", "A")

	h := Build([]*model.TypeDecl{a, b})
	// Exactly one of the two parent edges must have been dropped.
	_, aHasParent := h.parent[a.ID]
	_, bHasParent := h.parent[b.ID]
	assert.NotEqual(t, aHasParent, bHasParent)
}
