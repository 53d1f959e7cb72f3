package lang

// The languages below extend the registry beyond spec.md's "at minimum"
// set. They reuse the same generic node-type-table extraction as the seven
// mandated languages (internal/extract has no special casing for any of
// them beyond what Spec already expresses), so each costs one registration
// instead of a bespoke analyzer.

func init() {
	csharp := (&Spec{
		Tag:                  CSharp,
		MethodNodeTypes:      []string{"method_declaration"},
		ConstructorNodeTypes: []string{"constructor_declaration"},
		ClassNodeTypes:       []string{"class_declaration", "struct_declaration"},
		InterfaceNodeTypes:   []string{"interface_declaration"},
		EnumNodeTypes:        []string{"enum_declaration"},
		CallNodeTypes:        []string{"invocation_expression"},
		MethodInvocationTypes: []string{"invocation_expression"},
		FieldNodeTypes:       []string{"field_declaration"},
		VariableNodeTypes:    []string{"variable_declaration"},
		ImportNodeTypes:      []string{"using_directive"},
		AnnotationNodeTypes:  []string{"attribute"},
		ParamsField:          "parameters",
		ReturnTypeField:      "type",
		FunctionField:        "function",
		ReceiverField:        "expression",
		VirtualByDefault:     false,
	}).normalize()
	Register(csharp, ".cs")

	php := (&Spec{
		Tag:                   PHP,
		FunctionNodeTypes:     []string{"function_definition"},
		MethodNodeTypes:       []string{"method_declaration"},
		ConstructorName:       "__construct",
		ClassNodeTypes:        []string{"class_declaration"},
		InterfaceNodeTypes:    []string{"interface_declaration"},
		CallNodeTypes:         []string{"function_call_expression"},
		MethodInvocationTypes: []string{"member_call_expression"},
		FieldNodeTypes:        []string{"property_declaration"},
		VariableNodeTypes:     []string{"assignment_expression"},
		ImportNodeTypes:       []string{"namespace_use_declaration"},
		ParamsField:           "parameters",
		FunctionField:         "function",
		ReceiverField:         "object",
		VirtualByDefault:      true,
	}).normalize()
	Register(php, ".php")

	scala := (&Spec{
		Tag:                   Scala,
		FunctionNodeTypes:     []string{"function_definition"},
		ClassNodeTypes:        []string{"class_definition"},
		InterfaceNodeTypes:    []string{"trait_definition"},
		CallNodeTypes:         []string{"call_expression"},
		MethodInvocationTypes: []string{"call_expression"},
		VariableNodeTypes:     []string{"val_definition", "var_definition"},
		ImportNodeTypes:       []string{"import_declaration"},
		AnnotationNodeTypes:   []string{"annotation"},
		ParamsField:           "parameters",
		FunctionField:         "function",
		ReceiverField:         "value",
		VirtualByDefault:      true,
	}).normalize()
	Register(scala, ".scala")

	kotlin := (&Spec{
		Tag:                   Kotlin,
		FunctionNodeTypes:     []string{"function_declaration"},
		ClassNodeTypes:        []string{"class_declaration"},
		CallNodeTypes:         []string{"call_expression"},
		MethodInvocationTypes: []string{"navigation_expression"},
		VariableNodeTypes:     []string{"property_declaration"},
		ImportNodeTypes:       []string{"import_header"},
		AnnotationNodeTypes:   []string{"annotation"},
		ParamsField:           "parameters",
		FunctionField:         "function",
		ReceiverField:         "object",
		VirtualByDefault:      false, // Kotlin methods are final unless marked `open`
	}).normalize()
	Register(kotlin, ".kt", ".kts")

	lua := (&Spec{
		Tag:                   Lua,
		FunctionNodeTypes:     []string{"function_declaration", "function_definition"},
		MethodNodeTypes:       []string{"function_declaration"}, // no `:` check is made; with no Lua type nodes none is attached to a type
		CallNodeTypes:         []string{"function_call"},
		MethodInvocationTypes: []string{"function_call"},
		VariableNodeTypes:     []string{"variable_declaration"},
		ImportNodeTypes:       []string{"function_call"}, // `require("x")` has no dedicated grammar node
		ParamsField:           "parameters",
		FunctionField:         "name",
		ReceiverField:         "name",
		VirtualByDefault:      true,
	}).normalize()
	Register(lua, ".lua")
}
