// Package extract is the Symbol Extractor (spec §4.4): it walks a parsed
// tree, using the active language's node-type table (internal/lang) to
// pull out function/method/constructor declarations, type declarations,
// call sites and imports. One extractor instance is not shared across
// goroutines; each worker in the pipeline builds its own (spec §5).
package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraphio/codegraph/internal/lang"
	"github.com/codegraphio/codegraph/internal/tsparser"
	"github.com/codegraphio/codegraph/pkg/model"
)

// Result is everything one file contributes to the call graph, prior to
// resolution (spec §4.6) and hierarchy linking (spec §4.5).
type Result struct {
	File      string
	Language  lang.Tag
	Functions []*model.Fn
	Types     []*model.TypeDecl
	Calls     []*model.CallSite
	// Imports maps a local alias to the module/path it was imported from,
	// as written in source. The resolver's import-map tier (spec §4.6)
	// consumes this to narrow ambiguous calls.
	Imports map[string]string
}

// scope tracks extraction state through the recursion: the enclosing
// namespace path, the enclosing type (if any) and pending decorator/
// annotation text waiting to be folded into the next declaration's
// Signature (spec §4.4.2's "decorators fold into the signature" rule).
type scope struct {
	namespace     []string
	enclosingType *model.TypeDecl
	currentFn     *model.Fn
	pendingAnnots []string

	// locals maps a local variable/parameter name to its declared type, as
	// captured from variable_declaration nodes and parameter lists within
	// the current function body (spec §4.4.3 rule (a)/(b)). It is a
	// shared map across a function's whole body (not re-scoped per
	// block) since tree-sitter grammars don't make block scoping uniform
	// enough to track precisely, and the spec only asks for "declared in
	// an enclosing scope".
	locals map[string]string
}

func (s scope) namespaceString(sep string) string {
	return strings.Join(s.namespace, sep)
}

func (s scope) push(name string) scope {
	ns := make([]string, len(s.namespace), len(s.namespace)+1)
	copy(ns, s.namespace)
	ns = append(ns, name)
	s.namespace = ns
	s.pendingAnnots = nil
	return s
}

// Extract walks root and produces a Result for file. source is the raw
// file content the tree was parsed from (needed for node text lookups).
func Extract(tag lang.Tag, file string, source []byte, root *tree_sitter.Node) *Result {
	spec := lang.Get(tag)
	res := &Result{
		File:     file,
		Language: tag,
		Imports:  map[string]string{},
	}
	if spec == nil || root == nil {
		return res
	}

	e := &extractor{spec: spec, src: source, res: res, file: file, sep: tag.Separator()}
	e.walkChildren(root, scope{})
	return res
}

type extractor struct {
	spec *lang.Spec
	src  []byte
	res  *Result
	file string
	sep  string
}

func (e *extractor) text(n *tree_sitter.Node) string {
	return tsparser.NodeText(n, e.src)
}

func (e *extractor) fieldText(n *tree_sitter.Node, field string) string {
	if field == "" {
		return ""
	}
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return e.text(child)
}

func contains(set []string, kind string) bool {
	for _, s := range set {
		if s == kind {
			return true
		}
	}
	return false
}

func line1(row uint) int { return int(row) + 1 }

// walkChildren recurses over every child of n under the given scope,
// dispatching recognized declaration/call/import node kinds and
// recursing into everything else so nested/closure functions (spec
// §4.4.2) and calls inside deeply nested blocks are still found.
func (e *extractor) walkChildren(n *tree_sitter.Node, sc scope) {
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := n.NamedChild(i)
		if child != nil && contains(e.spec.AnnotationNodeTypes, child.Kind()) {
			// Hold the annotation for the next sibling declaration.
			sc.pendingAnnots = append(sc.pendingAnnots[:len(sc.pendingAnnots):len(sc.pendingAnnots)], e.text(child))
			continue
		}
		e.dispatch(child, sc)
		sc.pendingAnnots = nil
	}
}

func (e *extractor) dispatch(n *tree_sitter.Node, sc scope) {
	if n == nil {
		return
	}
	kind := n.Kind()
	spec := e.spec

	switch {
	case contains(spec.AnnotationNodeTypes, kind):
		sc.pendingAnnots = append(sc.pendingAnnots, e.text(n))
		return // annotations don't themselves recurse into declarations

	case contains(spec.ClassNodeTypes, kind), contains(spec.InterfaceNodeTypes, kind), contains(spec.EnumNodeTypes, kind):
		e.extractType(n, sc, kind)
		return

	case contains(spec.ConstructorNodeTypes, kind):
		e.extractFunction(n, sc, true, false)
		return

	case contains(spec.MethodNodeTypes, kind):
		e.extractFunction(n, sc, false, true)
		return

	case contains(spec.FunctionNodeTypes, kind) && (!contains(spec.VariableNodeTypes, kind) || e.isFunctionDeclarator(n)):
		// Some grammars (C++'s "declaration") use one node kind for both a
		// function prototype and a plain variable declaration; when a kind
		// is listed under both tables, only treat it as a function if its
		// declarator is actually shaped like one.
		e.extractFunction(n, sc, false, sc.enclosingType != nil)
		return

	case contains(spec.ImportNodeTypes, kind):
		e.extractImport(n)
		// imports may still contain nested expressions (e.g. Lua's
		// require() call type-doubles as an import); fall through.

	case contains(spec.FieldNodeTypes, kind):
		e.extractField(n, sc)
		// a field's initializer may itself contain calls; fall through.

	case contains(spec.VariableNodeTypes, kind):
		e.extractVariable(n, sc)
		// the declaration's initializer may contain calls; fall through.

	case contains(spec.CallNodeTypes, kind), contains(spec.MethodInvocationTypes, kind):
		e.extractCall(n, sc)
	}

	// Always recurse: a declaration body still contains nested calls,
	// nested functions and, for some grammars, nested type declarations.
	sc.pendingAnnots = nil
	e.walkChildren(n, sc)
}

func (e *extractor) extractType(n *tree_sitter.Node, sc scope, kind string) {
	spec := e.spec
	name := e.fieldText(n, spec.NameField)
	if name == "" {
		name = "<anonymous>"
	}

	td := &model.TypeDecl{
		Name:             name,
		File:             e.file,
		LineStart:        line1(n.StartPosition().Row),
		LineEnd:          line1(n.EndPosition().Row),
		Namespace:        sc.namespaceString(e.sep),
		Language:         string(e.res.Language),
		Kind:             typeKindFor(kind, spec),
		Methods:          map[model.ID]bool{},
		MethodSignatures: map[string]model.MethodSig{},
	}
	td.ID = model.NewID(e.file, td.Namespace, name, td.LineStart)
	td.Parent, td.Interfaces = extractSupertypes(n, e)

	e.res.Types = append(e.res.Types, td)

	childScope := sc.push(name)
	childScope.enclosingType = td
	e.walkChildren(n, childScope)
}

func typeKindFor(kind string, spec *lang.Spec) model.TypeKind {
	switch {
	case contains(spec.InterfaceNodeTypes, kind):
		if spec.Tag == lang.Rust {
			return model.KindTrait
		}
		return model.KindInterface
	case contains(spec.EnumNodeTypes, kind):
		return model.KindEnum
	case kind == "struct_declaration" || kind == "struct_item":
		return model.KindStruct
	default:
		return model.KindClass
	}
}

// extractSupertypes pulls the "extends"/"implements"/base-class list off a
// type declaration. Grammars vary enough (Go embeds via struct fields,
// Python via call-like base-class lists, Java/TS via dedicated clauses)
// that this walks the type's direct non-body children looking for
// identifier/type-identifier text rather than one fixed field name,
// matching the teacher's base_classes-property convention.
func extractSupertypes(n *tree_sitter.Node, e *extractor) (parent string, interfaces []string) {
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		c := n.NamedChild(i)
		kind := c.Kind()
		switch kind {
		case "superclass", "extends_clause", "base_class_clause":
			if id := e.firstIdentifier(c); id != "" {
				parent = id
			}
		case "class_interfaces", "implements_clause", "interfaces", "super_interfaces", "extends_interfaces":
			interfaces = append(interfaces, e.identifiers(c)...)
		case "superclasses", "argument_list": // Python: class Foo(Base1, Base2):
			interfaces = append(interfaces, e.identifiers(c)...)
		case "trait_bounds": // Rust-ish
			interfaces = append(interfaces, e.identifiers(c)...)
		}
	}
	if parent == "" && len(interfaces) > 0 {
		// Python/Rust have no parent/interface distinction at the grammar
		// level; the hierarchy builder treats the first entry as parent.
		parent = interfaces[0]
		interfaces = interfaces[1:]
	}
	return parent, interfaces
}

// isFunctionDeclarator reports whether n's declarator chain is shaped like
// a function (i.e. contains a "function_declarator" within a few levels —
// enough to see through C++'s pointer/reference-return wrappers such as
// `int *foo(int x);`) rather than a plain variable. Only consulted when a
// node kind is ambiguous between FunctionNodeTypes and VariableNodeTypes.
func (e *extractor) isFunctionDeclarator(n *tree_sitter.Node) bool {
	return hasDescendantKind(n, "function_declarator", 4)
}

func hasDescendantKind(n *tree_sitter.Node, kind string, depth int) bool {
	if n == nil || depth == 0 {
		return false
	}
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		c := n.NamedChild(i)
		if c.Kind() == kind {
			return true
		}
		if hasDescendantKind(c, kind, depth-1) {
			return true
		}
	}
	return false
}

func (e *extractor) firstIdentifier(n *tree_sitter.Node) string {
	ids := e.identifiers(n)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// extractFunction handles function_declaration, method_declaration and
// constructor_declaration node kinds alike: the distinction between "free
// function", "method" and "constructor" is conveyed by the isCtor/isMethod
// flags the caller already determined from which node-type list matched.
func (e *extractor) extractFunction(n *tree_sitter.Node, sc scope, isCtor, isMethod bool) {
	spec := e.spec
	name := e.fieldText(n, spec.NameField)
	if name == "" {
		// C/C++ keep the name at the end of the declarator chain
		// (function_declarator -> identifier / field_identifier / qualified_identifier).
		d := n.ChildByFieldName("declarator")
		for d != nil && d.ChildByFieldName("declarator") != nil {
			d = d.ChildByFieldName("declarator")
		}
		if d != nil {
			name = e.text(d)
		}
	}
	anonymous := name == ""
	if anonymous {
		name = anonymousName(sc, n)
	}
	if isCtor && spec.ConstructorName != "" {
		name = spec.ConstructorName
	}

	lineStart := line1(n.StartPosition().Row)
	namespace := sc.namespaceString(e.sep)

	fn := &model.Fn{
		ID:         model.NewID(e.file, namespace, name, lineStart),
		Name:       name,
		File:       e.file,
		LineStart:  lineStart,
		LineEnd:    line1(n.EndPosition().Row),
		Namespace:  namespace,
		Language:   string(e.res.Language),
		Signature:  e.buildSignature(n, sc, name),
		Parameters: e.parameters(n),
	}

	body := n.ChildByFieldName(spec.BodyField)
	if body == nil {
		// Forward declaration / prototype: no body, so the declared range
		// collapses to its single line. Spec §4.4.2 allows a forward
		// declaration and its definition to coexist as distinct Fn entries
		// distinguished by file+line, which this naturally produces.
		fn.LineEnd = fn.LineStart
	}

	if sc.enclosingType != nil && (isMethod || isCtor) {
		td := sc.enclosingType
		fn.EnclosingType = td.ID
		td.Methods[fn.ID] = true
		td.MethodSignatures[name] = model.MethodSig{
			FnID:       fn.ID,
			Name:       name,
			ReturnType: e.fieldText(n, spec.ReturnTypeField),
			IsVirtual:  spec.VirtualByDefault || isOverrideAnnotated(sc.pendingAnnots),
			IsStatic:   isStaticAnnotated(sc.pendingAnnots),
		}
	}

	e.res.Functions = append(e.res.Functions, fn)

	if body != nil {
		childScope := sc.push(name)
		childScope.enclosingType = nil // nested declarations namespace under the function, not the type
		childScope.currentFn = fn
		childScope.locals = map[string]string{}
		for _, p := range fn.Parameters {
			if p.DeclaredType != "" {
				childScope.locals[p.Name] = p.DeclaredType
			}
		}
		if sc.enclosingType != nil {
			childScope.locals["self"] = sc.enclosingType.Name
			childScope.locals["this"] = sc.enclosingType.Name
		}
		e.walkChildren(body, childScope)
	}
}

// declaratorName extracts the bound identifier out of a declaration node,
// following the grammar shapes the teacher's field/variable name lookup
// documents: Go/Rust expose "name" directly; C++/Java/JS/TS wrap it one
// level down in a "declarator" field (a variable_declarator, itself
// carrying its own "name" field); anything else falls back to the first
// identifier-shaped child found anywhere in the node.
func (e *extractor) declaratorName(n *tree_sitter.Node) string {
	if name := e.fieldText(n, e.spec.NameField); name != "" {
		return name
	}
	if decl := n.ChildByFieldName("declarator"); decl != nil {
		if name := e.fieldText(decl, "name"); name != "" {
			return name
		}
		if name := e.firstIdentifier(decl); name != "" {
			return name
		}
	}
	return e.firstIdentifier(n)
}

// declaratorType returns the declared type text of a field/variable node,
// preferring the node's own "type" field and falling back to the
// declarator wrapper's, mirroring declaratorName's grammar-shape split.
func (e *extractor) declaratorType(n *tree_sitter.Node) string {
	if t := e.fieldText(n, "type"); t != "" {
		return t
	}
	if decl := n.ChildByFieldName("declarator"); decl != nil {
		return e.fieldText(decl, "type")
	}
	return ""
}

// extractField records one field/instance-variable declaration directly
// in the enclosing type's body (spec §4.3's field_declaration query),
// consumed by the Query API's skeleton rendering (spec §4.10).
func (e *extractor) extractField(n *tree_sitter.Node, sc scope) {
	if sc.enclosingType == nil {
		return
	}
	name := e.declaratorName(n)
	if name == "" {
		return
	}
	sc.enclosingType.Fields = append(sc.enclosingType.Fields, model.Field{
		Name:         name,
		DeclaredType: e.declaratorType(n),
		Line:         line1(n.StartPosition().Row),
	})
}

// extractVariable records a local variable's declared type into the
// current function scope so a later receiver-bearing call
// (spec §4.4.3 rule (a)) can resolve "x.foo()" to x's declared type
// instead of the bare identifier text "x".
func (e *extractor) extractVariable(n *tree_sitter.Node, sc scope) {
	if sc.locals == nil {
		return
	}
	name := e.declaratorName(n)
	typ := e.declaratorType(n)
	if name == "" || typ == "" {
		return
	}
	sc.locals[name] = typ
}

// anonymousName gives unnamed function expressions/arrow functions/lambdas
// a stable, readable identity: "<anonymous:LINE>" (spec §4.4.2). It is
// stable across re-extraction of unchanged source because it is derived
// from position, same as every other ID.
func anonymousName(sc scope, n *tree_sitter.Node) string {
	return "<anonymous:" + itoa(line1(n.StartPosition().Row)) + ">"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func isOverrideAnnotated(annots []string) bool {
	for _, a := range annots {
		if strings.Contains(a, "Override") || strings.Contains(a, "override") {
			return true
		}
	}
	return false
}

func isStaticAnnotated(annots []string) bool {
	for _, a := range annots {
		if strings.Contains(a, "staticmethod") || strings.Contains(a, "classmethod") {
			return true
		}
	}
	return false
}

// buildSignature folds any pending decorators/annotations onto the front of
// the rendered parameter list plus return type, matching the teacher's
// convention of keeping the signature human-readable rather than a
// structured type (spec §4.4.2's "decorators fold into the signature").
func (e *extractor) buildSignature(n *tree_sitter.Node, sc scope, name string) string {
	var b strings.Builder
	for _, a := range sc.pendingAnnots {
		b.WriteString(a)
		b.WriteString(" ")
	}
	b.WriteString(name)
	b.WriteString("(")
	params := n.ChildByFieldName(e.spec.ParamsField)
	if params != nil {
		b.WriteString(strings.TrimSpace(e.text(params)))
	}
	b.WriteString(")")
	if rt := e.fieldText(n, e.spec.ReturnTypeField); rt != "" {
		b.WriteString(" ")
		b.WriteString(rt)
	}
	return b.String()
}

func (e *extractor) parameters(n *tree_sitter.Node) []model.Parameter {
	params := n.ChildByFieldName(e.spec.ParamsField)
	if params == nil {
		return nil
	}
	var out []model.Parameter
	count := params.NamedChildCount()
	for i := uint(0); i < count; i++ {
		p := params.NamedChild(i)
		name := e.fieldText(p, "name")
		if name == "" {
			name = e.text(p)
		}
		out = append(out, model.Parameter{
			Name:         name,
			DeclaredType: e.fieldText(p, "type"),
			Default:      e.fieldText(p, "value"),
		})
	}
	return out
}

// extractImport records one import/use/require statement. Grammars vary
// widely in shape, so this looks for the clearest module-path token (a
// string literal, or failing that the first dotted/scoped identifier) and
// maps every bound local name to it; absent any bound name it maps the
// path to itself, which is enough for the resolver's import-map tier
// (spec §4.6) to narrow a same-name ambiguity.
func (e *extractor) extractImport(n *tree_sitter.Node) {
	path := ""
	var aliases []string

	var walk func(c *tree_sitter.Node)
	walk = func(c *tree_sitter.Node) {
		switch c.Kind() {
		case "string", "string_literal", "interpreted_string_literal":
			if path == "" {
				path = strings.Trim(e.text(c), "\"'")
			}
			return
		case "identifier", "scoped_identifier", "dotted_name", "qualified_identifier":
			aliases = append(aliases, e.text(c))
			return
		}
		count := c.NamedChildCount()
		for i := uint(0); i < count; i++ {
			walk(c.NamedChild(i))
		}
	}
	walk(n)

	if path == "" && len(aliases) > 0 {
		path = aliases[0]
	}
	if path == "" {
		return
	}
	if len(aliases) == 0 {
		e.res.Imports[path] = path
		return
	}
	for _, a := range aliases {
		e.res.Imports[a] = path
	}
}

// extractCall handles both plain calls (free functions, constructors) and
// receiver-bearing member-call forms, classifying each per spec §4.4.3.
func (e *extractor) extractCall(n *tree_sitter.Node, sc scope) {
	spec := e.spec
	calleeNode := n.ChildByFieldName(spec.FunctionField)

	var (
		name         string
		receiverType string
		kind         model.CallKind = model.CallFreeFunction
	)

	if calleeNode == nil {
		return
	}

	obj := calleeNode.ChildByFieldName(spec.ReceiverField)
	if obj == nil && spec.ReceiverField != spec.FunctionField {
		// Java's method_invocation carries the receiver on the call node itself.
		obj = n.ChildByFieldName(spec.ReceiverField)
	}
	if obj != nil {
		receiverType = e.text(obj)
		nameNode := firstNonNil(
			calleeNode.ChildByFieldName(spec.NameField),
			calleeNode.ChildByFieldName("property"),
			calleeNode.ChildByFieldName("field"),
			calleeNode.ChildByFieldName("attribute"),
		)
		if nameNode != nil {
			name = e.text(nameNode)
		} else {
			name = e.text(calleeNode)
		}

		switch {
		case receiverType == "self" || receiverType == "this":
			kind = model.CallInstanceMethod
		case receiverType != "" && isUpperFirst(receiverType):
			kind = model.CallStaticMethod
		default:
			kind = model.CallInstanceMethod
		}

		// Resolve a plain local-variable/parameter receiver to its declared
		// type (spec §4.4.3 rule (a)/(b)); "self"/"this" are left as-is, the
		// resolver treats those literally as "the enclosing type".
		if kind == model.CallInstanceMethod && receiverType != "self" && receiverType != "this" {
			if declared, ok := sc.locals[receiverType]; ok && declared != "" {
				receiverType = declared
			}
		}
	} else {
		name = e.text(calleeNode)
		if name == spec.ConstructorName || isUpperFirst(name) {
			kind = model.CallConstructor
		}
	}

	if spec.ConstructorName != "" && name == spec.ConstructorName {
		kind = model.CallConstructor
	}

	argCount := 0
	if args := n.ChildByFieldName(spec.ArgumentsField); args != nil {
		argCount = int(args.NamedChildCount())
	}

	cs := &model.CallSite{
		CalleeName:   name,
		ReceiverType: receiverType,
		Kind:         kind,
		Line:         line1(n.StartPosition().Row),
		File:         e.file,
		ArgCount:     argCount,
	}
	if sc.currentFn != nil {
		cs.CallerFnID = sc.currentFn.ID
	}
	e.res.Calls = append(e.res.Calls, cs)
}

func firstNonNil(nodes ...*tree_sitter.Node) *tree_sitter.Node {
	for _, n := range nodes {
		if n != nil {
			return n
		}
	}
	return nil
}

func isUpperFirst(s string) bool {
	if s == "" {
		return false
	}
	r := s[0]
	return r >= 'A' && r <= 'Z'
}

// identifiers collects the text of every identifier-like named descendant
// of n, recursing through any non-identifier wrapper (argument_list,
// extends_clause, ...) to any depth; an identifier-like node's own
// children are not searched.
func (e *extractor) identifiers(n *tree_sitter.Node) []string {
	var out []string
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		c := n.NamedChild(i)
		switch c.Kind() {
		case "identifier", "type_identifier", "scoped_identifier", "qualified_identifier", "generic_type":
			out = append(out, e.text(c))
		default:
			if c.NamedChildCount() > 0 {
				out = append(out, e.identifiers(c)...)
			}
		}
	}
	return out
}
