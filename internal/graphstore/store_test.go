package graphstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphio/codegraph/pkg/model"
)

func TestAddFunctionAndFindByName(t *testing.T) {
	s := New()
	fn := &model.Fn{ID: model.NewID("a.py", "", "helper", 3), Name: "helper", File: "a.py", LineStart: 3}
	s.AddFunction(fn)

	found := s.FindByName("helper")
	require.Len(t, found, 1)
	assert.Equal(t, fn.ID, found[0].ID)
}

func TestAddEdgeCallersAndCallees(t *testing.T) {
	s := New()
	caller := model.NewID("a.py", "", "main", 1)
	callee := model.NewID("a.py", "", "helper", 3)
	s.AddEdge(&model.Edge{CallerFnID: caller, CalleeFnID: callee, CalleeName: "helper", Resolved: true})

	callees := s.CalleesOf(caller)
	require.Len(t, callees, 1)
	assert.Equal(t, callee, callees[0].CalleeFnID)

	callers := s.CallersOf(callee)
	require.Len(t, callers, 1)
	assert.Equal(t, caller, callers[0].CallerFnID)
}

func TestUnresolvedEdgesShareAPlaceholder(t *testing.T) {
	s := New()
	caller := model.NewID("a.py", "", "main", 1)
	s.AddEdge(&model.Edge{CallerFnID: caller, CalleeName: "mystery", CallerFile: "a.py"})
	s.AddEdge(&model.Edge{CallerFnID: caller, CalleeName: "mystery", CallerFile: "a.py"})

	callees := s.CalleesOf(caller)
	require.Len(t, callees, 2)
	assert.Equal(t, callees[0].CalleeFnID, callees[1].CalleeFnID)
	assert.False(t, callees[0].Resolved)
}

func TestRemoveFileRetractsFunctionsAndMarksDanglingEdges(t *testing.T) {
	s := New()
	caller := model.NewID("a.py", "", "main", 1)
	calleeFn := &model.Fn{ID: model.NewID("b.py", "", "helper", 3), Name: "helper", File: "b.py"}
	s.AddFunction(&model.Fn{ID: caller, Name: "main", File: "a.py"})
	s.AddFunction(calleeFn)
	s.AddEdge(&model.Edge{CallerFnID: caller, CalleeFnID: calleeFn.ID, CalleeName: "helper", CallerFile: "a.py", CalleeFile: "b.py", Resolved: true})

	s.RemoveFile("b.py")

	assert.Nil(t, s.Function(calleeFn.ID))

	// The dangling edge no longer lives under the removed Fn's id — it was
	// re-pointed at the same unresolved sentinel AddEdge would have used,
	// so callers_of the removed function now finds nothing...
	assert.Empty(t, s.CallersOf(calleeFn.ID))

	// ...while callers_of the sentinel surfaces it as unresolved, matching
	// spec §4.7/§8's invariant that every edge names either a live Fn or a
	// member of the unresolved-sentinel set.
	sentinel := model.NewID("<unresolved>", "a.py", "helper", 0)
	callers := s.CallersOf(sentinel)
	require.Len(t, callers, 1)
	assert.False(t, callers[0].Resolved)
	assert.Equal(t, sentinel, callers[0].CalleeFnID)

	callees := s.CalleesOf(caller)
	require.Len(t, callees, 1)
	assert.Equal(t, sentinel, callees[0].CalleeFnID)
}

func TestStatsCountsResolvedAndUnresolved(t *testing.T) {
	s := New()
	fn := &model.Fn{ID: model.NewID("a.go", "", "main", 1), Name: "main", File: "a.go", Language: "go"}
	s.AddFunction(fn)
	s.AddEdge(&model.Edge{CallerFnID: fn.ID, CalleeFnID: model.NewID("a.go", "", "helper", 5), Resolved: true})
	s.AddEdge(&model.Edge{CallerFnID: fn.ID, CalleeName: "mystery", CallerFile: "a.go", Resolved: false})

	stats := s.Stats()
	assert.Equal(t, 1, stats.TotalFunctions)
	assert.Equal(t, 1, stats.ResolvedCalls)
	assert.Equal(t, 1, stats.UnresolvedCalls)
	assert.Equal(t, 1, stats.Languages["go"])
}
