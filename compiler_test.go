package mambac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mambac/mambac"
)

func TestCompileAllProducesPythonForValidSource(t *testing.T) {
	src := "class Point(x, y):\n" +
		"    def sum() -> Int:\n" +
		"        return x + y\n"

	c := &mambac.Compiler{}
	outputs, err := c.CompileAll(context.Background(), []mambac.Source{
		{Path: "point.mamba", Text: []byte(src)},
	})
	require.NoError(t, err)
	require.Len(t, outputs, 1)

	out := outputs[0]
	assert.Empty(t, out.Diagnostics)
	assert.Contains(t, out.Python, "class Point:")
	assert.Contains(t, out.Python, "def __init__(self, x, y):")
}

func TestCompileAllReportsUnresolvedIdentifier(t *testing.T) {
	src := "def f():\n" +
		"    return nonexistent_name\n"

	c := &mambac.Compiler{}
	outputs, err := c.CompileAll(context.Background(), []mambac.Source{
		{Path: "bad.mamba", Text: []byte(src)},
	})
	require.NoError(t, err)
	require.Len(t, outputs, 1)

	out := outputs[0]
	assert.NotEmpty(t, out.Diagnostics)
	assert.Empty(t, out.Python)
}

func TestCompileAllPreservesInputOrder(t *testing.T) {
	c := &mambac.Compiler{}
	outputs, err := c.CompileAll(context.Background(), []mambac.Source{
		{Path: "a.mamba", Text: []byte("def a():\n    pass\n")},
		{Path: "b.mamba", Text: []byte("def b():\n    pass\n")},
		{Path: "c.mamba", Text: []byte("def c():\n    pass\n")},
	})
	require.NoError(t, err)
	require.Len(t, outputs, 3)
	assert.Equal(t, "a.mamba", outputs[0].Path)
	assert.Equal(t, "b.mamba", outputs[1].Path)
	assert.Equal(t, "c.mamba", outputs[2].Path)
}
