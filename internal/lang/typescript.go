package lang

func init() {
	spec := (&Spec{
		Tag: TypeScript,
		FunctionNodeTypes: []string{
			"function_declaration", "function_expression", "arrow_function",
		},
		MethodNodeTypes:       []string{"method_definition", "method_signature"},
		ClassNodeTypes:        []string{"class_declaration"},
		InterfaceNodeTypes:    []string{"interface_declaration"},
		EnumNodeTypes:         []string{"enum_declaration"},
		CallNodeTypes:         []string{"call_expression"},
		MethodInvocationTypes: []string{"call_expression"},
		FieldNodeTypes:        []string{"public_field_definition"},
		VariableNodeTypes:     []string{"variable_declarator"},
		ImportNodeTypes:       []string{"import_statement"},
		AnnotationNodeTypes:   []string{"decorator"},
		ParamsField:           "parameters",
		ReturnTypeField:       "return_type",
		FunctionField:         "function",
		ReceiverField:         "object",
		ConstructorName:       "constructor",
		VirtualByDefault:      true,
	}).normalize()
	// .tsx shares the TypeScript spec; the grammar differs only in JSX
	// support, which this extractor does not need to distinguish.
	Register(spec, ".ts", ".tsx")
}
