package lang

func init() {
	spec := (&Spec{
		Tag:                   CPP,
		FunctionNodeTypes:     []string{"function_definition", "declaration"}, // declaration covers header prototypes (spec §4.4.2); extract.dispatch tells a prototype from a plain variable declaration by looking for a function_declarator
		MethodNodeTypes:       []string{"function_definition"},                // distinguished from free functions by enclosing type containment
		ConstructorNodeTypes:  nil,                                            // constructors are function_definition nodes whose name equals the class name
		ClassNodeTypes:        []string{"class_specifier", "struct_specifier"},
		EnumNodeTypes:         []string{"enum_specifier"},
		CallNodeTypes:         []string{"call_expression"},
		MethodInvocationTypes: []string{"call_expression"}, // classified via field_expression callee
		FieldNodeTypes:        []string{"field_declaration"},
		VariableNodeTypes:     []string{"declaration"}, // also shared with FunctionNodeTypes for prototypes; see above
		ImportNodeTypes:       []string{"preproc_include"},
		ParamsField:           "parameters",
		ReturnTypeField:       "type",
		FunctionField:         "function",
		ReceiverField:         "argument",
		VirtualByDefault:      false, // the `virtual` keyword is not read, so no C++ method is marked virtual
	}).normalize()
	Register(spec,
		".cpp", ".cc", ".cxx", ".c++", ".c", ".h", ".hpp", ".hxx", ".hh",
		".inl", ".inc", ".tpp", ".tpl")
}
