// Package lang implements the Language Registry (spec §4.1): it maps a
// file's suffix to a language tag, and a language tag to the node-type
// tables the Query Set and Symbol Extractor need to recognize that
// language's declarations, calls and imports.
package lang

import "strings"

// Tag identifies a supported language. Unlike the teacher's Language type
// this is plain string so it round-trips cleanly through persistence.
type Tag string

const (
	Rust       Tag = "rust"
	Python     Tag = "python"
	Java       Tag = "java"
	CPP        Tag = "cpp"
	TypeScript Tag = "typescript"
	JavaScript Tag = "javascript"
	Go         Tag = "go"

	// Registered beyond the spec's "at minimum" set, reusing the same
	// generic extraction engine (see internal/extract) with no bespoke
	// per-language code.
	CSharp Tag = "c-sharp"
	PHP    Tag = "php"
	Scala  Tag = "scala"
	Kotlin Tag = "kotlin"
	Lua    Tag = "lua"

	Unsupported Tag = ""
)

// Separator is the language-idiomatic namespace separator (spec §4.4.1).
func (t Tag) Separator() string {
	switch t {
	case Rust, CPP:
		return "::"
	default:
		return "."
	}
}

// Spec is the per-language node-type table the Query Set and Symbol
// Extractor consult. It plays the role of spec §4.3's "named set of
// compiled tree patterns": each field below is a query, the node-type
// strings are the pattern, and the extractor treats tree-sitter's
// field-based child access (ChildByFieldName) as the stable capture names
// spec §4.3 requires ("name", "params", "body", "callee", ...).
type Spec struct {
	Tag Tag

	// function_declaration / method_declaration / constructor_declaration
	FunctionNodeTypes    []string
	MethodNodeTypes      []string
	ConstructorNodeTypes []string

	// class_declaration / interface_declaration / enum_declaration
	ClassNodeTypes     []string
	InterfaceNodeTypes []string
	EnumNodeTypes      []string

	// call_expression / method_invocation
	CallNodeTypes           []string
	MethodInvocationTypes   []string // receiver-bearing call forms

	// import_statement
	ImportNodeTypes []string

	// field_declaration / variable_declaration
	FieldNodeTypes    []string
	VariableNodeTypes []string

	// annotation / decorator / attribute
	AnnotationNodeTypes []string

	// Field names used to navigate a matched node. Grammars disagree on
	// these, so the Spec carries them rather than hard-coding one set.
	NameField       string // default "name"
	ParamsField     string // default "parameters"
	BodyField       string // default "body"
	ReturnTypeField string // empty if the grammar has none
	ReceiverField   string // field holding the receiver/object of a method call
	FunctionField   string // field holding the callee expression of a call
	ArgumentsField  string // default "arguments"

	// Constructor convention used by CallResolver (spec §4.6, constructor
	// row): the function name that identifies "this IS a constructor" for
	// the language, where empty means "equals the enclosing type name".
	ConstructorName string

	// VirtualByDefault: languages (Java interfaces, C++ virtual-by-default
	// via vtable-less override keyword absence is NOT this; Python/JS/TS
	// dynamic dispatch) where every instance method is considered virtual
	// for CHA purposes absent better information.
	VirtualByDefault bool
}

var registry = map[string]*Spec{} // file extension -> spec
var byTag = map[Tag]*Spec{}

// Register installs a Spec for every extension it declares.
func Register(spec *Spec, extensions ...string) {
	for _, ext := range extensions {
		registry[strings.ToLower(ext)] = spec
	}
	byTag[spec.Tag] = spec
}

// ForExtension resolves a file extension (including the leading dot, e.g.
// ".go") to a language tag. Unknown suffixes return Unsupported, which spec
// §4.1 treats as a soft failure.
func ForExtension(ext string) Tag {
	spec := registry[strings.ToLower(ext)]
	if spec == nil {
		return Unsupported
	}
	return spec.Tag
}

// ForPath resolves a file path's extension to a language tag.
func ForPath(path string) Tag {
	ext := extOf(path)
	return ForExtension(ext)
}

// Get returns the Spec for a language tag, or nil if unregistered.
func Get(t Tag) *Spec {
	return byTag[t]
}

// extOf returns the lowercase suffix of path starting at the last dot,
// including multi-part suffixes are NOT handled (matches spec's per-suffix
// table, which lists each suffix independently, e.g. ".cxx" and ".c++").
func extOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return strings.ToLower(path[idx:])
}

func defaulted(s string, def string) string {
	if s == "" {
		return def
	}
	return s
}

// normalize fills in the grammar-field defaults shared by most languages.
// Call this once from each language's init().
func (s *Spec) normalize() *Spec {
	s.NameField = defaulted(s.NameField, "name")
	s.ParamsField = defaulted(s.ParamsField, "parameters")
	s.BodyField = defaulted(s.BodyField, "body")
	s.ArgumentsField = defaulted(s.ArgumentsField, "arguments")
	s.FunctionField = defaulted(s.FunctionField, "function")
	s.ReceiverField = defaulted(s.ReceiverField, "object")
	return s
}
