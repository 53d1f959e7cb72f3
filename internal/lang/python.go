package lang

func init() {
	spec := (&Spec{
		Tag:                  Python,
		FunctionNodeTypes:    []string{"function_definition"},
		MethodNodeTypes:      nil, // a method is a function_definition whose enclosing scope is a class; extractor distinguishes by containment, not node type
		ConstructorNodeTypes: nil,
		ConstructorName:      "__init__",
		ClassNodeTypes:       []string{"class_definition"},
		CallNodeTypes:        []string{"call"},
		MethodInvocationTypes: []string{"call"}, // same node type; classified by whether `function` is an attribute
		FieldNodeTypes:        nil,
		VariableNodeTypes:     []string{"assignment"},
		ImportNodeTypes:       []string{"import_statement", "import_from_statement"},
		AnnotationNodeTypes:   []string{"decorator"},
		ParamsField:           "parameters",
		ReturnTypeField:       "return_type",
		FunctionField:         "function",
		ReceiverField:         "object",
		VirtualByDefault:      true, // duck typing: every method is a dispatch candidate
	}).normalize()
	Register(spec, ".py", ".py3", ".pyx")
}
