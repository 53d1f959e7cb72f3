package lang

func init() {
	spec := (&Spec{
		Tag: JavaScript,
		FunctionNodeTypes: []string{
			"function_declaration", "function_expression", "arrow_function",
		},
		MethodNodeTypes:       []string{"method_definition"},
		ClassNodeTypes:        []string{"class_declaration"},
		CallNodeTypes:         []string{"call_expression"},
		MethodInvocationTypes: []string{"call_expression"}, // classified via member_expression callee
		FieldNodeTypes:        []string{"field_definition", "public_field_definition"},
		VariableNodeTypes:     []string{"variable_declarator"},
		ImportNodeTypes:       []string{"import_statement"},
		AnnotationNodeTypes:   []string{"decorator"},
		ParamsField:           "parameters",
		FunctionField:         "function",
		ReceiverField:         "object",
		ConstructorName:       "constructor",
		VirtualByDefault:      true, // prototype dispatch: every method is a candidate
	}).normalize()
	Register(spec, ".js", ".jsx")
}
