package lang

func init() {
	spec := (&Spec{
		Tag:                   Rust,
		FunctionNodeTypes:     []string{"function_item"},
		MethodNodeTypes:       []string{"function_item"}, // attached to a type only inside a trait_item; impl_item is not a type node, so impl functions stay free
		ConstructorName:       "new",                     // Rust idiom, not a language rule (spec §4.6 constructor row)
		ClassNodeTypes:        []string{"struct_item"},
		InterfaceNodeTypes:    []string{"trait_item"},
		EnumNodeTypes:         []string{"enum_item"},
		CallNodeTypes:         []string{"call_expression"},
		MethodInvocationTypes: []string{"call_expression"}, // via field_expression callee (method_call_expression in some grammar revisions)
		FieldNodeTypes:        []string{"field_declaration"},
		VariableNodeTypes:     []string{"let_declaration"},
		ImportNodeTypes:       []string{"use_declaration"},
		AnnotationNodeTypes:   []string{"attribute_item"},
		ParamsField:           "parameters",
		ReturnTypeField:       "return_type",
		FunctionField:         "function",
		ReceiverField:         "value",
		VirtualByDefault:      false, // calls through dyn Trait / generic T: Trait are not classified trait-method; they are ordinary instance-method calls
	}).normalize()
	Register(spec, ".rs")
}
