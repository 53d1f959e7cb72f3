package lang

func init() {
	spec := (&Spec{
		Tag:                Go,
		FunctionNodeTypes:  []string{"function_declaration"},
		MethodNodeTypes:    []string{"method_declaration"},
		ClassNodeTypes:     []string{"type_declaration"},
		InterfaceNodeTypes: []string{"interface_type"},
		CallNodeTypes:      []string{"call_expression"},
		FieldNodeTypes:     []string{"field_declaration"},
		VariableNodeTypes:  []string{"var_declaration", "short_var_declaration", "const_declaration"},
		ImportNodeTypes:    []string{"import_declaration"},
		ParamsField:        "parameters",
		ReturnTypeField:    "result",
		ReceiverField:      "operand",
		VirtualByDefault:   true, // interface satisfaction is structural; every method is a candidate
	}).normalize()
	Register(spec, ".go")
}
