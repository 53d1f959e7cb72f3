package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphio/codegraph/internal/hierarchy"
	"github.com/codegraphio/codegraph/pkg/model"
)

func TestResolveFreeFunctionSameFile(t *testing.T) {
	reg := NewRegistry()
	helper := &model.Fn{ID: model.NewID("a.py", "", "helper", 2), Name: "helper", File: "a.py"}
	reg.Register(helper)

	r := NewResolver(reg, hierarchy.Build(nil), nil)
	call := &model.CallSite{CalleeName: "helper", Kind: model.CallFreeFunction}

	edges := r.Resolve(call, "a.py", model.NilID)
	require.Len(t, edges, 1)
	assert.True(t, edges[0].Resolved)
	assert.Equal(t, helper.ID, edges[0].CalleeFnID)
}

func TestResolveUnresolvedFreeFunctionYieldsPlaceholder(t *testing.T) {
	reg := NewRegistry()
	r := NewResolver(reg, hierarchy.Build(nil), nil)
	call := &model.CallSite{CalleeName: "doesNotExist", Kind: model.CallFreeFunction}

	edges := r.Resolve(call, "a.py", model.NilID)
	require.Len(t, edges, 1)
	assert.False(t, edges[0].Resolved)
}

func TestResolveVirtualMethodFansOutToOverrides(t *testing.T) {
	base := &model.TypeDecl{
		ID: model.NewID("f", "", "Animal", 1), Name: "Animal",
		Methods: map[model.ID]bool{}, MethodSignatures: map[string]model.MethodSig{},
	}
	baseSpeak := model.NewID("f", "Animal", "speak", 2)
	base.MethodSignatures["speak"] = model.MethodSig{FnID: baseSpeak, Name: "speak", IsVirtual: true}

	derived := &model.TypeDecl{
		ID: model.NewID("f", "", "Dog", 10), Name: "Dog", Parent: "Animal",
		Methods: map[model.ID]bool{}, MethodSignatures: map[string]model.MethodSig{},
	}
	derivedSpeak := model.NewID("f", "Dog", "speak", 11)
	derived.MethodSignatures["speak"] = model.MethodSig{FnID: derivedSpeak, Name: "speak", IsVirtual: true, IsOverride: true}

	h := hierarchy.Build([]*model.TypeDecl{base, derived})

	reg := NewRegistry()
	reg.Register(&model.Fn{ID: baseSpeak, Name: "speak", File: "f", EnclosingType: base.ID})
	reg.Register(&model.Fn{ID: derivedSpeak, Name: "speak", File: "f", EnclosingType: derived.ID})

	r := NewResolver(reg, h, nil)
	call := &model.CallSite{CalleeName: "speak", Kind: model.CallInstanceMethod, ReceiverType: "self"}

	edges := r.Resolve(call, "f", base.ID)
	require.Len(t, edges, 2)
	var callees []model.ID
	for _, e := range edges {
		assert.True(t, e.Resolved)
		callees = append(callees, e.CalleeFnID)
	}
	assert.Contains(t, callees, baseSpeak)
	assert.Contains(t, callees, derivedSpeak)
}

func TestConfidenceDirectHitIsFull(t *testing.T) {
	edges := []*model.Edge{{Resolved: true}}
	assert.Equal(t, 1.0, Confidence(model.CallFreeFunction, edges))
}

func TestConfidenceVirtualFanOutIsPartial(t *testing.T) {
	edges := []*model.Edge{{Resolved: true}, {Resolved: true}}
	assert.Equal(t, 0.8, Confidence(model.CallVirtualMethod, edges))
}

func TestConfidenceUnresolvedIsZero(t *testing.T) {
	edges := []*model.Edge{{Resolved: false}}
	assert.Equal(t, 0.0, Confidence(model.CallFreeFunction, edges))
}

func TestResolveConstructor(t *testing.T) {
	td := &model.TypeDecl{
		ID: model.NewID("f", "", "Widget", 1), Name: "Widget",
		Methods:          map[model.ID]bool{},
		MethodSignatures: map[string]model.MethodSig{},
	}
	ctorID := model.NewID("f", "Widget", "Widget", 2)
	td.MethodSignatures["Widget"] = model.MethodSig{FnID: ctorID, Name: "Widget"}

	h := hierarchy.Build([]*model.TypeDecl{td})
	reg := NewRegistry()
	reg.Register(&model.Fn{ID: ctorID, Name: "Widget", File: "f", EnclosingType: td.ID})

	r := NewResolver(reg, h, nil)
	call := &model.CallSite{CalleeName: "Widget", Kind: model.CallConstructor, ReceiverType: "Widget"}
	edges := r.Resolve(call, "f", model.NilID)
	require.Len(t, edges, 1)
	assert.Equal(t, ctorID, edges[0].CalleeFnID)
}
