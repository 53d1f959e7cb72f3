package lang

func init() {
	spec := (&Spec{
		Tag:                   Java,
		FunctionNodeTypes:     nil, // Java has no free functions
		MethodNodeTypes:       []string{"method_declaration"},
		ConstructorNodeTypes:  []string{"constructor_declaration"},
		ClassNodeTypes:        []string{"class_declaration"},
		InterfaceNodeTypes:    []string{"interface_declaration"},
		EnumNodeTypes:         []string{"enum_declaration"},
		CallNodeTypes:         []string{"method_invocation"},
		MethodInvocationTypes: []string{"method_invocation"},
		FieldNodeTypes:        []string{"field_declaration"},
		VariableNodeTypes:     []string{"local_variable_declaration"},
		ImportNodeTypes:       []string{"import_declaration"},
		AnnotationNodeTypes:   []string{"annotation", "marker_annotation"},
		ParamsField:           "parameters",
		ReturnTypeField:       "type",
		FunctionField:         "name",
		ReceiverField:         "object",
		VirtualByDefault:      true, // modifiers are not inspected, so final/private/static methods count as virtual too
	}).normalize()
	Register(spec, ".java")
}
