package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/check"
	"github.com/mambac/mambac/typecontext"
)

func funcDef(name string, raises []string, body []ast.Node) ast.Node {
	return ast.Node{
		Kind: ast.KindFunctionDef,
		Data: ast.FunctionDef{Name: name, Raises: raises, Body: body},
	}
}

func raiseStmt(errType string) ast.Node {
	return ast.Node{Kind: ast.KindRaise, Data: ast.Raise{ErrType: errType}}
}

func TestRaisesClauseSatisfiedWhenErrorIsActuallyRaised(t *testing.T) {
	fn := funcDef("f", []string{"IOError"}, []ast.Node{raiseStmt("IOError")})
	file := ast.Node{Kind: ast.KindFile, Data: ast.File{Decls: []ast.Node{fn}}}

	result := check.Generate(file, typecontext.New())
	assert.Empty(t, result.Diagnostics)
}

func TestRaisesClauseFlaggedWhenNeverRaised(t *testing.T) {
	fn := funcDef("f", []string{"IOError"}, nil)
	file := ast.Node{Kind: ast.KindFile, Data: ast.File{Decls: []ast.Node{fn}}}

	result := check.Generate(file, typecontext.New())
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0].Message, "IOError")
	assert.Contains(t, result.Diagnostics[0].Message, "never raised")
}

func TestRaisesClauseIgnoresUnrelatedRaiseInNestedFunction(t *testing.T) {
	inner := funcDef("g", nil, []ast.Node{raiseStmt("ValueError")})
	outer := funcDef("f", []string{"IOError"}, []ast.Node{inner})
	file := ast.Node{Kind: ast.KindFile, Data: ast.File{Decls: []ast.Node{outer}}}

	result := check.Generate(file, typecontext.New())
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0].Message, "IOError")
}

func callStmt(name string) ast.Node {
	return ast.Node{
		Kind: ast.KindCall,
		Data: ast.Call{Func: ast.Node{Kind: ast.KindIdent, Data: ast.Ident{Name: name}}},
	}
}

func pureFuncDef(name string, pure bool, body []ast.Node) ast.Node {
	return ast.Node{
		Kind: ast.KindFunctionDef,
		Data: ast.FunctionDef{Name: name, Pure: pure, Body: body},
	}
}

func TestPureFunctionCannotCallNonPureFunction(t *testing.T) {
	impure := pureFuncDef("sideEffect", false, nil)
	caller := pureFuncDef("f", true, []ast.Node{callStmt("sideEffect")})
	file := ast.Node{Kind: ast.KindFile, Data: ast.File{Decls: []ast.Node{impure, caller}}}

	ctx, ctxDiags := typecontext.Build([]ast.Node{file}, nil)
	require.Empty(t, ctxDiags)

	result := check.Generate(file, ctx)
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0].Message, "sideEffect")
}

func TestPureFunctionCanCallAnotherPureFunction(t *testing.T) {
	helper := pureFuncDef("helper", true, nil)
	caller := pureFuncDef("f", true, []ast.Node{callStmt("helper")})
	file := ast.Node{Kind: ast.KindFile, Data: ast.File{Decls: []ast.Node{helper, caller}}}

	ctx, ctxDiags := typecontext.Build([]ast.Node{file}, nil)
	require.Empty(t, ctxDiags)

	result := check.Generate(file, ctx)
	assert.Empty(t, result.Diagnostics)
}

func TestImpureFunctionCanCallNonPureFunction(t *testing.T) {
	impure := pureFuncDef("sideEffect", false, nil)
	caller := pureFuncDef("f", false, []ast.Node{callStmt("sideEffect")})
	file := ast.Node{Kind: ast.KindFile, Data: ast.File{Decls: []ast.Node{impure, caller}}}

	ctx, ctxDiags := typecontext.Build([]ast.Node{file}, nil)
	require.Empty(t, ctxDiags)

	result := check.Generate(file, ctx)
	assert.Empty(t, result.Diagnostics)
}
