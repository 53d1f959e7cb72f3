package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want Tag
	}{
		{".py", Python},
		{".py3", Python},
		{".pyx", Python},
		{".go", Go},
		{".js", JavaScript},
		{".jsx", JavaScript},
		{".ts", TypeScript},
		{".tsx", TypeScript},
		{".rs", Rust},
		{".java", Java},
		{".cpp", CPP},
		{".h", CPP},
		{".c", CPP},
		{".tpp", CPP},
		{".cs", CSharp},
		{".php", PHP},
		{".lua", Lua},
		{".scala", Scala},
		{".kt", Kotlin},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ForExtension(tt.ext), "ext %q", tt.ext)
	}
}

func TestForExtensionUnknown(t *testing.T) {
	assert.Equal(t, Unsupported, ForExtension(".xyz"))
	assert.Equal(t, Unsupported, ForExtension(""))
}

func TestForPath(t *testing.T) {
	assert.Equal(t, Go, ForPath("/a/b/main.go"))
	assert.Equal(t, Unsupported, ForPath("/a/b/README"))
}

func TestGoSpecRegistered(t *testing.T) {
	spec := Get(Go)
	if assert.NotNil(t, spec) {
		assert.Contains(t, spec.FunctionNodeTypes, "function_declaration")
		assert.Contains(t, spec.MethodNodeTypes, "method_declaration")
		assert.Equal(t, "parameters", spec.ParamsField)
	}
}

func TestSeparator(t *testing.T) {
	assert.Equal(t, "::", Rust.Separator())
	assert.Equal(t, "::", CPP.Separator())
	assert.Equal(t, ".", Python.Separator())
	assert.Equal(t, ".", Go.Separator())
}

func TestAllMandatedLanguagesRegistered(t *testing.T) {
	for _, tag := range []Tag{Rust, Python, Java, CPP, TypeScript, JavaScript, Go} {
		assert.NotNilf(t, Get(tag), "language %s not registered", tag)
	}
}
