// Package hierarchy is the Class Hierarchy Builder (spec §4.5). It
// resolves each type's written parent/interface names against the
// project's type index, fabricates external stub types for names that
// resolve to nothing in-project, and exposes the subtype closure and
// merged method table the CHA call resolver (internal/resolve) needs.
//
// Grounded in the teacher's inheritance/interface passes (inherits.go,
// implements.go): those build one directed edge per base-class/interface
// name and resolve it against a project-wide type registry; this package
// generalizes that to every language's type kind instead of only Go
// structs/interfaces.
package hierarchy

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/codegraphio/codegraph/pkg/model"
)

// Hierarchy is the resolved inheritance/interface DAG for one project.
type Hierarchy struct {
	byID   map[model.ID]*model.TypeDecl
	byName map[string][]*model.TypeDecl // simple name -> every type sharing it

	parent     map[model.ID]model.ID   // child -> resolved parent, absent if none/broken
	interfaces map[model.ID][]model.ID // type -> resolved interfaces/traits
	children   map[model.ID][]model.ID // reverse of parent+interfaces: direct subtypes
}

// Build resolves every TypeDecl's Parent/Interfaces name against the given
// project-wide type list, synthesizing external stubs for anything that
// does not resolve, and returns the completed Hierarchy. The input slice's
// External stub entries (if any were pre-created, e.g. across incremental
// refreshes) are reused rather than duplicated.
func Build(types []*model.TypeDecl) *Hierarchy {
	h := &Hierarchy{
		byID:       map[model.ID]*model.TypeDecl{},
		byName:     map[string][]*model.TypeDecl{},
		parent:     map[model.ID]model.ID{},
		interfaces: map[model.ID][]model.ID{},
		children:   map[model.ID][]model.ID{},
	}
	for _, t := range types {
		h.byID[t.ID] = t
		h.byName[t.Name] = append(h.byName[t.Name], t)
	}

	for _, t := range types {
		if t.Parent != "" {
			target := h.resolveOrStub(t.Parent, t.Language)
			h.parent[t.ID] = target.ID
			h.children[target.ID] = append(h.children[target.ID], t.ID)
		}
		for _, ifaceName := range t.Interfaces {
			target := h.resolveOrStub(ifaceName, t.Language)
			h.interfaces[t.ID] = append(h.interfaces[t.ID], target.ID)
			h.children[target.ID] = append(h.children[target.ID], t.ID)
		}
	}

	h.breakCycles()
	return h
}

// resolveOrStub finds the unique in-project type named name; if none or
// more than one exist (an unqualified name is ambiguous across files) it
// fabricates (or reuses) an External stub type so the hierarchy always has
// somewhere to attach the edge, per spec §4.5's "unresolved supertypes
// become external stub nodes" rule.
func (h *Hierarchy) resolveOrStub(name string, language string) *model.TypeDecl {
	name = lastSegment(name)
	if candidates := h.byName[name]; len(candidates) == 1 {
		return candidates[0]
	}

	id := model.NewID("<external>", "", name, 0)
	if existing, ok := h.byID[id]; ok {
		return existing
	}
	stub := &model.TypeDecl{
		ID:               id,
		Name:             name,
		Language:         language,
		Kind:             model.KindClass,
		Methods:          map[model.ID]bool{},
		MethodSignatures: map[string]model.MethodSig{},
		External:         true,
	}
	h.byID[id] = stub
	h.byName[name] = append(h.byName[name], stub)
	return stub
}

// lastSegment strips any namespace qualification off a written supertype
// reference (e.g. "pkg.Base" or "std::Base" -> "Base"), since extraction
// records supertypes exactly as written and qualification style varies by
// language and import aliasing.
func lastSegment(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, ".:"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// breakCycles removes one edge from every inheritance cycle so subtype
// closure computation terminates. Ties are broken deterministically:
// of the two edges closing a cycle, the one whose source type has the
// lexicographically greater qualified name is dropped (spec's Open
// Question on multi-language multiple inheritance cycles).
func (h *Hierarchy) breakCycles() {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[model.ID]int{}
	var order []model.ID
	for id := range h.byID {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool { return h.qname(order[i]) < h.qname(order[j]) })

	var visit func(id model.ID, path []model.ID)
	visit = func(id model.ID, path []model.ID) {
		if color[id] == black {
			return
		}
		if color[id] == gray {
			h.breakCycleAlong(path, id)
			return
		}
		color[id] = gray
		path = append(path, id)
		for _, next := range h.directSupertypes(id) {
			visit(next, path)
		}
		color[id] = black
	}
	for _, id := range order {
		if color[id] == white {
			visit(id, nil)
		}
	}
}

func (h *Hierarchy) directSupertypes(id model.ID) []model.ID {
	var out []model.ID
	if p, ok := h.parent[id]; ok {
		out = append(out, p)
	}
	out = append(out, h.interfaces[id]...)
	return out
}

// breakCycleAlong drops the offending edge once a gray (on-stack) node is
// revisited: among the path entries from the revisited node onward, it
// removes the parent/interface edge whose source has the greatest FQN.
func (h *Hierarchy) breakCycleAlong(path []model.ID, revisited model.ID) {
	start := 0
	for i, id := range path {
		if id == revisited {
			start = i
			break
		}
	}
	cycle := path[start:]
	if len(cycle) == 0 {
		return
	}
	worst := cycle[0]
	for _, id := range cycle[1:] {
		if h.qname(id) > h.qname(worst) {
			worst = id
		}
	}
	if h.parent[worst] != model.NilID {
		delete(h.parent, worst)
	}
	h.interfaces[worst] = nil
	slog.Warn("hierarchy.cycle_broken", "type", h.qname(worst))
}

func (h *Hierarchy) qname(id model.ID) string {
	t := h.byID[id]
	if t == nil {
		return ""
	}
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// DirectSubtypes returns the immediate children of id (extenders and
// implementers), not the transitive closure.
func (h *Hierarchy) DirectSubtypes(id model.ID) []model.ID {
	return append([]model.ID(nil), h.children[id]...)
}

// Subtypes returns the full transitive subtype closure of id, used by the
// CHA resolver to enumerate every override candidate of a virtual call
// (spec §4.6's virtual/interface/trait-method row).
func (h *Hierarchy) Subtypes(id model.ID) []model.ID {
	seen := map[model.ID]bool{id: true}
	var out []model.ID
	queue := append([]model.ID(nil), h.children[id]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		queue = append(queue, h.children[cur]...)
	}
	return out
}

// Type returns the TypeDecl for id, including synthesized external stubs.
func (h *Hierarchy) Type(id model.ID) *model.TypeDecl {
	return h.byID[id]
}

// TypesNamed returns every type sharing the given simple name, including
// external stubs. The resolver uses this to look up a receiver's static
// type by the name written at the call site.
func (h *Hierarchy) TypesNamed(name string) []*model.TypeDecl {
	return h.byName[name]
}

// MethodTable returns the merged (own + inherited) method table for a
// type: a type's own declared methods take precedence; for names it does
// not declare, the nearest ancestor's signature is used (first parent,
// then interfaces, matching most languages' MRO intuition for a
// best-effort CHA rather than a fully faithful C3 linearization).
func (h *Hierarchy) MethodTable(id model.ID) map[string]model.MethodSig {
	t := h.byID[id]
	if t == nil {
		return nil
	}
	table := map[string]model.MethodSig{}
	for name, sig := range t.MethodSignatures {
		table[name] = sig
	}
	for _, sup := range h.directSupertypes(id) {
		for name, sig := range h.MethodTable(sup) {
			if _, exists := table[name]; !exists {
				table[name] = sig
			}
		}
	}
	return table
}
