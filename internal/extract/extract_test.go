package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphio/codegraph/internal/lang"
	"github.com/codegraphio/codegraph/internal/tsparser"
	"github.com/codegraphio/codegraph/pkg/model"
)

func parseAndExtract(t *testing.T, tag lang.Tag, source string) *Result {
	t.Helper()
	tree, err := tsparser.Parse(tag, []byte(source))
	require.NoError(t, err)
	defer tree.Close()
	return Extract(tag, "sample"+string(tag), []byte(source), tree.RootNode())
}

func TestExtractPythonFreeFunctionAndCall(t *testing.T) {
	src := `
def helper(x):
    return x + 1

def main():
    helper(1)
`
	res := parseAndExtract(t, lang.Python, src)
	require.Len(t, res.Functions, 2)

	names := map[string]bool{}
	for _, fn := range res.Functions {
		names[fn.Name] = true
		assert.True(t, fn.EnclosingType.IsZero())
	}
	assert.True(t, names["helper"])
	assert.True(t, names["main"])

	require.Len(t, res.Calls, 1)
	assert.Equal(t, "helper", res.Calls[0].CalleeName)
}

func TestExtractPythonClassWithMethod(t *testing.T) {
	src := `
class Greeter:
    def greet(self, name):
        return "hi " + name
`
	res := parseAndExtract(t, lang.Python, src)
	require.Len(t, res.Types, 1)
	require.Len(t, res.Functions, 1)

	td := res.Types[0]
	assert.Equal(t, "Greeter", td.Name)
	fn := res.Functions[0]
	assert.Equal(t, "greet", fn.Name)
	assert.Equal(t, td.ID, fn.EnclosingType)
	assert.Contains(t, td.Methods, fn.ID)
}

func TestExtractGoFunctionDeterministicID(t *testing.T) {
	src := `package main

func Add(a, b int) int {
	return a + b
}
`
	res1 := parseAndExtract(t, lang.Go, src)
	res2 := parseAndExtract(t, lang.Go, src)
	require.Len(t, res1.Functions, 1)
	require.Len(t, res2.Functions, 1)
	assert.Equal(t, res1.Functions[0].ID, res2.Functions[0].ID)
}

func TestExtractJavaFieldAndReceiverTypeResolution(t *testing.T) {
	src := `
class Shape {
    double area() { return 0; }
}

class Main {
    Shape shape;

    void total() {
        Shape s = new Shape();
        s.area();
    }
}
`
	res := parseAndExtract(t, lang.Java, src)
	var mainType, shapeType *model.TypeDecl
	for _, td := range res.Types {
		switch td.Name {
		case "Main":
			mainType = td
		case "Shape":
			shapeType = td
		}
	}
	require.NotNil(t, mainType)
	require.NotNil(t, shapeType)
	require.Len(t, mainType.Fields, 1)
	assert.Equal(t, "shape", mainType.Fields[0].Name)
	assert.Equal(t, "Shape", mainType.Fields[0].DeclaredType)

	var call *model.CallSite
	for _, c := range res.Calls {
		if c.CalleeName == "area" {
			call = c
		}
	}
	require.NotNil(t, call)
	assert.Equal(t, "Shape", call.ReceiverType)
}

func TestExtractCppVariableDeclarationNotMisclassifiedAsFunction(t *testing.T) {
	src := `
int global_count = 0;

int add(int a, int b) {
    int total = a + b;
    return total;
}
`
	res := parseAndExtract(t, lang.CPP, src)

	require.Len(t, res.Functions, 1, "the top-level variable declaration must not be extracted as a function")
	assert.Equal(t, "add", res.Functions[0].Name)
}

func TestExtractCppForwardDeclarationIsAFunction(t *testing.T) {
	src := `
int add(int a, int b);

int add(int a, int b) {
    return a + b;
}
`
	res := parseAndExtract(t, lang.CPP, src)

	require.Len(t, res.Functions, 2, "both the prototype and the definition should be registered")
	for _, fn := range res.Functions {
		assert.Equal(t, "add", fn.Name)
	}
	// The prototype has no body, so its range collapses to one line.
	var sawPrototype bool
	for _, fn := range res.Functions {
		if fn.LineStart == fn.LineEnd {
			sawPrototype = true
		}
	}
	assert.True(t, sawPrototype, "expected the bodiless prototype to have LineStart == LineEnd")
}

func TestExtractJavaConstructorCall(t *testing.T) {
	src := `
class Widget {
    Widget() {}
}

class Factory {
    void build() {
        new Widget();
        Widget w = new Widget();
    }
}
`
	res := parseAndExtract(t, lang.Java, src)
	require.GreaterOrEqual(t, len(res.Types), 2)
}
