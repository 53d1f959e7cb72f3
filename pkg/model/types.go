package model

// TypeKind enumerates the kinds a TypeDecl can take (spec §3).
type TypeKind string

const (
	KindClass     TypeKind = "class"
	KindStruct    TypeKind = "struct"
	KindInterface TypeKind = "interface"
	KindTrait     TypeKind = "trait"
	KindEnum      TypeKind = "enum"
)

// Access is a method's declared visibility.
type Access string

const (
	AccessPublic    Access = "public"
	AccessProtected Access = "protected"
	AccessPrivate   Access = "private"
	AccessPackage   Access = "package"
	AccessDefault   Access = "default"
)

// CallKind classifies a call site (spec §3, §4.4.3).
type CallKind string

const (
	CallFreeFunction    CallKind = "free-function"
	CallStaticMethod    CallKind = "static-method"
	CallInstanceMethod  CallKind = "instance-method"
	CallConstructor     CallKind = "constructor"
	CallVirtualMethod   CallKind = "virtual-method"
	CallInterfaceMethod CallKind = "interface-method"
	CallTraitMethod     CallKind = "trait-method"
)

// Parameter is one entry of a function's declared parameter list.
type Parameter struct {
	Name         string
	DeclaredType string // empty if not declared/inferred
	Default      string // empty if no default
}

// Fn is a function-like declaration: free function, method or constructor.
type Fn struct {
	ID         ID
	Name       string
	File       string
	LineStart  int
	LineEnd    int
	Namespace  string
	Language   string
	Signature  string
	Parameters []Parameter

	// EnclosingType is the ID of the Type this Fn is a member of, or the
	// zero ID for free functions. Kept here (rather than only on Type) so
	// the store can maintain Type.Methods/Fn deletion symmetrically.
	EnclosingType ID
}

// MethodSig is the per-(type, method) entry used by the CHA resolver.
type MethodSig struct {
	FnID         ID
	Name         string
	ParamTypes   []string // optional; empty entries mean "unknown"
	ReturnType   string
	IsVirtual    bool
	IsOverride   bool
	IsStatic     bool
	Access       Access
}

// Field is one instance/class variable declared directly in a type's body,
// captured by the field_declaration query (spec §4.3) for skeleton display.
type Field struct {
	Name         string
	DeclaredType string // empty if not declared/inferred
	Line         int
}

// TypeDecl is a class/struct/interface/trait/enum declaration.
type TypeDecl struct {
	ID         ID
	Name       string
	File       string
	LineStart  int
	LineEnd    int
	Namespace  string
	Language   string
	Kind       TypeKind
	Parent     string   // direct extension, as written (may be unresolved)
	Interfaces []string // directly implemented/extended, as written

	Methods          map[ID]bool          // Fn.id set, declared directly in this type's body
	MethodSignatures map[string]MethodSig // method name -> signature (last one wins on overload; the hierarchy's merged method table is keyed by name too, so overloads keep only one entry there)
	Fields           []Field              // declared directly in this type's body, source order

	External bool // true for stub types created by the Class Hierarchy Builder
}

// CallSite is a syntactic invocation, prior to resolution.
type CallSite struct {
	ID           ID
	CallerFnID   ID
	CalleeName   string
	ReceiverType string // static/declared type of the receiver, if any
	Kind         CallKind
	Line         int
	File         string
	ArgCount     int
}

// Edge is a resolved (or deliberately unresolved) call edge.
type Edge struct {
	CallerFnID ID
	CalleeFnID ID // points at a real Fn if Resolved, else a per-(name,file) placeholder
	CalleeName string
	Line       int
	CallerFile string
	CalleeFile string
	Resolved   bool
}

// FileMeta is the per-file bookkeeping the Incremental Manager maintains.
type FileMeta struct {
	Path        string
	MD5         string
	Size        int64
	LastUpdated int64 // unix seconds
	Language    string
}

// Stats are the aggregate counters exposed by the store and by §6's logical
// schema.
type Stats struct {
	TotalFunctions  int
	TotalFiles      int
	TotalLanguages  int
	ResolvedCalls   int
	UnresolvedCalls int
	Languages       map[string]int
}
