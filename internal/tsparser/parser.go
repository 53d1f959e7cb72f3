// Package tsparser is the Parser Adapter (spec §4.2): it drives one
// concrete-syntax-tree grammar per language and hands back a Tree. Unlike
// the teacher's parser package, which eagerly builds every grammar and
// every pool behind one sync.Once at first use, grammars and pools here are
// built lazily and independently per language tag — a project that only
// ever sees Python and Go files never pays to construct the other ten
// grammars. Acquire/Release expose the pool directly so callers that want
// to hold a parser across more than one Parse call (e.g. a future
// streaming adapter) don't have to go through the Parse convenience
// wrapper; Parse itself is just Acquire+Release around p.Parse.
package tsparser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_scala "github.com/tree-sitter/tree-sitter-scala/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	tree_sitter_kotlin "github.com/tree-sitter-grammars/tree-sitter-kotlin/bindings/go"
	tree_sitter_lua "github.com/tree-sitter-grammars/tree-sitter-lua/bindings/go"

	"github.com/codegraphio/codegraph/internal/lang"
)

// grammarBuilders holds the constructor for each supported tag's
// tree_sitter.Language, invoked at most once per tag (see grammarFor).
var grammarBuilders = map[lang.Tag]func() *tree_sitter.Language{
	lang.Go:         func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) },
	lang.Python:     func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
	lang.Java:       func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) },
	lang.CPP:        func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
	lang.Rust:       func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
	lang.JavaScript: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_javascript.Language()) },
	lang.TypeScript: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) },
	lang.CSharp:     func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_c_sharp.Language()) },
	lang.PHP:        func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHPOnly()) },
	lang.Scala:      func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_scala.Language()) },
	lang.Kotlin:     func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_kotlin.Language()) },
	lang.Lua:        func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_lua.Language()) },
}

var (
	grammarMu sync.Mutex
	grammars  = map[lang.Tag]*tree_sitter.Language{}

	poolMu sync.Mutex
	pools  = map[lang.Tag]*sync.Pool{}
)

// grammarFor returns the tree_sitter.Language for tag, building it on first
// request and caching it for the lifetime of the process.
func grammarFor(tag lang.Tag) (*tree_sitter.Language, error) {
	grammarMu.Lock()
	defer grammarMu.Unlock()

	if g, ok := grammars[tag]; ok {
		return g, nil
	}
	build, ok := grammarBuilders[tag]
	if !ok {
		return nil, fmt.Errorf("tsparser: unsupported language %q", tag)
	}
	g := build()
	grammars[tag] = g
	return g, nil
}

// poolFor returns the *sync.Pool of parsers for tag, constructing it (and
// its backing grammar, via grammarFor) on first request.
func poolFor(tag lang.Tag) (*sync.Pool, error) {
	poolMu.Lock()
	if p, ok := pools[tag]; ok {
		poolMu.Unlock()
		return p, nil
	}
	poolMu.Unlock()

	g, err := grammarFor(tag)
	if err != nil {
		return nil, err
	}

	poolMu.Lock()
	defer poolMu.Unlock()
	if p, ok := pools[tag]; ok {
		return p, nil
	}
	p := &sync.Pool{
		New: func() any {
			parser := tree_sitter.NewParser()
			if err := parser.SetLanguage(g); err != nil {
				panic(fmt.Sprintf("tsparser: set language %q: %v", tag, err))
			}
			return parser
		},
	}
	pools[tag] = p
	return p, nil
}

// Acquire checks out a parser already configured for tag. The caller must
// pass it to Release when done; a parser is never required to be
// thread-safe (the teacher's contract), so it must not be shared across
// goroutines between Acquire and Release.
func Acquire(tag lang.Tag) (*tree_sitter.Parser, error) {
	pool, err := poolFor(tag)
	if err != nil {
		return nil, err
	}
	p, _ := pool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("tsparser: failed to acquire parser for %q", tag)
	}
	return p, nil
}

// Release returns a parser acquired via Acquire back to tag's pool.
func Release(tag lang.Tag, p *tree_sitter.Parser) {
	if p == nil {
		return
	}
	pool, err := poolFor(tag)
	if err != nil {
		return
	}
	pool.Put(p)
}

// Parse parses source into a concrete syntax Tree for the given language.
// The caller must call tree.Close() when done. Tree-sitter's error-recovery
// mode means a syntactically broken file still yields a tree: invalid
// sub-trees are marked (Node.IsError/HasError) but their children are
// still walkable, satisfying spec §4.2's adapter contract.
func Parse(tag lang.Tag, source []byte) (*tree_sitter.Tree, error) {
	p, err := Acquire(tag)
	if err != nil {
		return nil, err
	}
	defer Release(tag, p)

	tree := p.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tsparser: parse failed for language %q", tag)
	}
	return tree, nil
}

// NodeText returns the source slice a node spans.
func NodeText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// WalkFunc is called for every node in depth-first order. Returning false
// skips that node's children (but not its siblings).
type WalkFunc func(node *tree_sitter.Node) bool

// Walk performs a depth-first, pre-order traversal of the tree rooted at
// node, including error sub-trees — spec §4.2 requires extraction to
// continue into syntax-error regions rather than abort. The traversal is
// iterative (an explicit stack) rather than recursive so a deeply nested
// tree — a long chain of binary expressions, say — can't blow the call
// stack.
func Walk(node *tree_sitter.Node, fn WalkFunc) {
	if node == nil {
		return
	}

	type frame struct {
		node    *tree_sitter.Node
		visited bool
	}
	stack := []frame{{node: node}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.visited {
			stack = stack[:len(stack)-1]
			continue
		}
		top.visited = true
		n := top.node
		if !fn(n) {
			continue
		}
		count := n.ChildCount()
		children := make([]frame, 0, count)
		for i := uint(0); i < count; i++ {
			if c := n.Child(i); c != nil {
				children = append(children, frame{node: c})
			}
		}
		// Push in reverse so the first child is processed next (LIFO stack).
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}
