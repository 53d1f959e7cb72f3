// Package queryapi is the Query API (spec §4.10): the read-only surface
// a caller (HTTP handler, CLI, or another package) uses to pull
// information back out of an indexed project — neighborhoods, bounded
// graph expansion, hierarchical call trees, source snippets and
// declaration-only skeletons. It never mutates the Call Graph Store.
package queryapi

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/codegraphio/codegraph/internal/graphstore"
	"github.com/codegraphio/codegraph/internal/hierarchy"
	"github.com/codegraphio/codegraph/internal/lang"
	"github.com/codegraphio/codegraph/pkg/model"
)

// SourceLoader reads a file's full content for snippet/skeleton queries.
// Kept pluggable so callers can serve from disk, a VFS, or a test fixture.
type SourceLoader func(file string) ([]byte, error)

type API struct {
	store  *graphstore.Store
	hier   *hierarchy.Hierarchy
	source SourceLoader
}

func New(store *graphstore.Store, hier *hierarchy.Hierarchy, source SourceLoader) *API {
	return &API{store: store, hier: hier, source: source}
}

// Direction selects which side of an edge Expand follows.
type Direction string

const (
	DirectionOut  Direction = "out"  // follow calls this function makes
	DirectionIn   Direction = "in"   // follow calls made into this function
	DirectionBoth Direction = "both"
)

// NodeHop is one node discovered during a bounded traversal, annotated
// with how far it is from the start.
type NodeHop struct {
	Fn    *model.Fn
	Depth int
}

// ExpandResult is the outcome of a bounded BFS from one starting function.
type ExpandResult struct {
	Nodes           []NodeHop
	Edges           []*model.Edge
	MaxDepthReached bool
}

// Expand performs a breadth-first traversal from start, following edges
// in the given direction, stopping at maxDepth hops or maxResults nodes,
// whichever comes first (spec §4.10; grounded in the teacher's
// store.BFS). maxDepth<=0 or maxResults<=0 means "unbounded" for that
// dimension.
func (a *API) Expand(start model.ID, dir Direction, maxDepth, maxResults int) ExpandResult {
	visited := map[model.ID]bool{start: true}
	var result ExpandResult

	type queued struct {
		id    model.ID
		depth int
	}
	queue := []queued{{start, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if maxResults > 0 && len(result.Nodes) >= maxResults {
			result.MaxDepthReached = true
			break
		}
		if fn := a.store.Function(cur.id); fn != nil {
			result.Nodes = append(result.Nodes, NodeHop{Fn: fn, Depth: cur.depth})
		}

		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}

		var edges []*model.Edge
		if dir == DirectionOut || dir == DirectionBoth {
			edges = append(edges, a.store.CalleesOf(cur.id)...)
		}
		if dir == DirectionIn || dir == DirectionBoth {
			edges = append(edges, a.store.CallersOf(cur.id)...)
		}

		for _, e := range edges {
			next := e.CalleeFnID
			if next == cur.id {
				next = e.CallerFnID
			}
			result.Edges = append(result.Edges, e)
			if !e.Resolved || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, queued{next, cur.depth + 1})
		}
	}
	return result
}

// Neighborhood is Expand's common case: everything one hop away in both
// directions, the default "show me what touches this function" view.
func (a *API) Neighborhood(fnID model.ID) ExpandResult {
	return a.Expand(fnID, DirectionBoth, 1, 0)
}

// TreeNode is one node of a Hierarchical call tree. Fn is nil for the
// synthetic nodes HierarchicalProject produces (the "project" root and its
// per-file children); Label carries their display name in that case.
type TreeNode struct {
	Fn              *model.Fn
	Label           string // set instead of Fn for synthetic project/file nodes
	File            string // populated on file nodes when includeFileInfo is requested
	Children        []*TreeNode
	Cycle           bool // true if this node closes a cycle back to an ancestor
	MaxDepthReached bool
}

// Hierarchical renders the outbound call tree rooted at fnID down to
// maxDepth, marking cycles instead of looping forever and marking nodes
// where maxDepth truncated further expansion (spec §4.10).
func (a *API) Hierarchical(fnID model.ID, maxDepth int) *TreeNode {
	return a.buildTree(fnID, maxDepth, map[model.ID]bool{})
}

func (a *API) buildTree(fnID model.ID, depthRemaining int, ancestors map[model.ID]bool) *TreeNode {
	fn := a.store.Function(fnID)
	node := &TreeNode{Fn: fn}
	if ancestors[fnID] {
		node.Cycle = true
		return node
	}
	if depthRemaining <= 0 {
		node.MaxDepthReached = true
		return node
	}

	ancestors = withAncestor(ancestors, fnID)
	for _, e := range a.store.CalleesOf(fnID) {
		if !e.Resolved {
			continue
		}
		node.Children = append(node.Children, a.buildTree(e.CalleeFnID, depthRemaining-1, ancestors))
	}
	return node
}

// HierarchicalProject renders the project-wide tree spec §4.10 calls for
// when no root function is given: a synthetic "project" root whose children
// are one per source file, each file node in turn listing the functions
// declared in it. When includeFileInfo is set, file nodes carry their path
// in File so a caller can render a file-level summary alongside the
// function list without a second lookup.
func (a *API) HierarchicalProject(includeFileInfo bool) *TreeNode {
	root := &TreeNode{Label: "project"}
	for _, file := range a.store.Files() {
		fileNode := &TreeNode{Label: file}
		if includeFileInfo {
			fileNode.File = file
		}
		for _, fn := range a.store.FindByFile(file) {
			fileNode.Children = append(fileNode.Children, &TreeNode{Fn: fn})
		}
		root.Children = append(root.Children, fileNode)
	}
	return root
}

func withAncestor(ancestors map[model.ID]bool, id model.ID) map[model.ID]bool {
	out := make(map[model.ID]bool, len(ancestors)+1)
	for k := range ancestors {
		out[k] = true
	}
	out[id] = true
	return out
}

// Snippet returns the clamped [lineStart, lineEnd] (1-based, inclusive)
// slice of file's source, tagged with its language.
func (a *API) Snippet(file string, lineStart, lineEnd int) (string, lang.Tag, error) {
	if a.source == nil {
		return "", lang.Unsupported, fmt.Errorf("queryapi: no source loader configured")
	}
	data, err := a.source(file)
	if err != nil {
		return "", lang.Unsupported, fmt.Errorf("queryapi: read %s: %w", file, err)
	}

	lines := splitLines(data)
	if lineStart < 1 {
		lineStart = 1
	}
	if lineEnd > len(lines) {
		lineEnd = len(lines)
	}
	if lineStart > lineEnd {
		return "", lang.ForPath(file), nil
	}
	return joinLines(lines[lineStart-1 : lineEnd]), lang.ForPath(file), nil
}

func splitLines(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

func joinLines(lines []string) string {
	var b bytes.Buffer
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l)
	}
	return b.String()
}

// SkeletonEntry is one declaration-only outline row.
type SkeletonEntry struct {
	Name      string
	Kind      string // "function", "method", "class", "interface", "enum", ...
	LineStart int
	LineEnd   int
	Signature string
}

// Skeleton returns every declaration in file as a signature-only outline,
// with no bodies — spec §4.10's "show me the shape of this file" view.
func (a *API) Skeleton(file string) []SkeletonEntry {
	var out []SkeletonEntry
	for _, td := range a.store.FindTypesByFile(file) {
		out = append(out, SkeletonEntry{
			Name: td.Name, Kind: string(td.Kind),
			LineStart: td.LineStart, LineEnd: td.LineEnd,
			Signature: td.Name,
		})
	}
	for _, fn := range a.store.FindByFile(file) {
		kind := "function"
		if !fn.EnclosingType.IsZero() {
			kind = "method"
		}
		out = append(out, SkeletonEntry{
			Name: fn.Name, Kind: kind,
			LineStart: fn.LineStart, LineEnd: fn.LineEnd,
			Signature: fn.Signature,
		})
	}
	return out
}

// SkeletonText renders file's declaration outline as the compressed text
// form spec §4.10 describes: each top-level type as its declaration line
// plus one-line field summaries and one-line method signatures (bodies
// elided to "…"), and top-level functions as declaration-only lines with
// the same "…" body marker.
func (a *API) SkeletonText(file string) string {
	methodsByType := map[model.ID][]*model.Fn{}
	var topLevel []*model.Fn
	for _, fn := range a.store.FindByFile(file) {
		if fn.EnclosingType.IsZero() {
			topLevel = append(topLevel, fn)
			continue
		}
		methodsByType[fn.EnclosingType] = append(methodsByType[fn.EnclosingType], fn)
	}

	var b strings.Builder
	for _, td := range a.store.FindTypesByFile(file) {
		fmt.Fprintf(&b, "%s %s {\n", td.Kind, td.Name)
		for _, f := range td.Fields {
			if f.DeclaredType != "" {
				fmt.Fprintf(&b, "    %s %s\n", f.DeclaredType, f.Name)
			} else {
				fmt.Fprintf(&b, "    %s\n", f.Name)
			}
		}
		for _, m := range methodsByType[td.ID] {
			fmt.Fprintf(&b, "    %s { … }\n", m.Signature)
		}
		b.WriteString("}\n")
	}
	for _, fn := range topLevel {
		fmt.Fprintf(&b, "%s { … }\n", fn.Signature)
	}
	return b.String()
}
