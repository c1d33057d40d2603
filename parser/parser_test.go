package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/parser"
	"github.com/mambac/mambac/token"
)

// lexAndParse runs the real lexer and feeds its output straight into the
// parser, exactly as the compiler pipeline does.
func lexAndParse(t *testing.T, src string) ast.Node {
	t.Helper()
	toks, errs := token.Lex("t.mamba", []byte(src))
	require.Empty(t, errs)
	file, diags := parser.ParseFile("t.mamba", toks)
	require.Empty(t, diags)
	return file
}

func TestParseClassWithInlineArgsAndMethod(t *testing.T) {
	src := "class Point(x, y):\n" +
		"    def area() -> Int:\n" +
		"        return x * y\n"
	file := lexAndParse(t, src)

	f := file.Data.(ast.File)
	require.Len(t, f.Decls, 1)

	cls := f.Decls[0].Data.(ast.ClassDef)
	assert.Equal(t, "Point", cls.Name)
	require.Len(t, cls.Args, 2)
	assert.Equal(t, "x", cls.Args[0].Name)
	assert.Equal(t, "y", cls.Args[1].Name)
	require.Len(t, cls.Body, 1)

	method := cls.Body[0].Data.(ast.FunctionDef)
	assert.Equal(t, "area", method.Name)
	require.Len(t, method.Body, 1)
	assert.Equal(t, ast.KindReturn, method.Body[0].Kind)
}

func TestParseClassWithParents(t *testing.T) {
	src := "class Point3D(z) isa Point(x, y):\n" +
		"    def dummy():\n" +
		"        pass\n"
	file := lexAndParse(t, src)

	cls := file.Data.(ast.File).Decls[0].Data.(ast.ClassDef)
	require.Len(t, cls.Parents, 1)
	assert.Equal(t, "Point", cls.Parents[0].Name)
	require.Len(t, cls.Parents[0].Args, 2)
}

func TestParseForOverExclusiveRange(t *testing.T) {
	src := "def f():\n" +
		"    for i in 0..10:\n" +
		"        print i\n"
	file := lexAndParse(t, src)

	fn := file.Data.(ast.File).Decls[0].Data.(ast.FunctionDef)
	require.Len(t, fn.Body, 1)

	forStmt := fn.Body[0].Data.(ast.For)
	assert.Equal(t, "i", forStmt.Var)
	rng := forStmt.Coll.Data.(ast.Range)
	assert.False(t, rng.Inclusive)
}

func TestParseForOverInclusiveRange(t *testing.T) {
	src := "def f():\n" +
		"    for i in 0..=10:\n" +
		"        print i\n"
	file := lexAndParse(t, src)

	fn := file.Data.(ast.File).Decls[0].Data.(ast.FunctionDef)
	forStmt := fn.Body[0].Data.(ast.For)
	rng := forStmt.Coll.Data.(ast.Range)
	assert.True(t, rng.Inclusive)
}

func TestParseNullCoalesce(t *testing.T) {
	src := "def f():\n" +
		"    r = a ?or b\n"
	file := lexAndParse(t, src)

	fn := file.Data.(ast.File).Decls[0].Data.(ast.FunctionDef)
	assign := fn.Body[0].Data.(ast.Assign)
	assert.Equal(t, ast.KindNullCoalesce, assign.Value.Kind)
}

func TestParseMatchWithWildcard(t *testing.T) {
	src := "def f():\n" +
		"    r = match k:\n" +
		"        case 1 => a\n" +
		"        case _ => default\n"
	file := lexAndParse(t, src)

	fn := file.Data.(ast.File).Decls[0].Data.(ast.FunctionDef)
	assign := fn.Body[0].Data.(ast.Assign)
	match := assign.Value.Data.(ast.Match)
	require.Len(t, match.Cases, 2)

	first := match.Cases[0].Data.(ast.MatchCase)
	assert.False(t, first.Cond.IsZero())

	wildcard := match.Cases[1].Data.(ast.MatchCase)
	assert.True(t, wildcard.Cond.IsZero())
}

func TestParseHandleWithRetry(t *testing.T) {
	src := "def f():\n" +
		"    handle risky():\n" +
		"        with IOError as e:\n" +
		"            retry\n"
	file := lexAndParse(t, src)

	fn := file.Data.(ast.File).Decls[0].Data.(ast.FunctionDef)
	handle := fn.Body[0].Data.(ast.Handle)
	require.Len(t, handle.Arms, 1)

	arm := handle.Arms[0].Data.(ast.HandleArm)
	assert.Equal(t, "IOError", arm.ErrType)
	assert.Equal(t, "e", arm.Bind)
	// An indented arm body comes back wrapped in a Block.
	require.Equal(t, ast.KindBlock, arm.Body.Kind)
	stmts := arm.Body.Data.(ast.Block).Statements
	require.Len(t, stmts, 1)
	assert.Equal(t, ast.KindRetry, stmts[0].Kind)
}

func TestParseIsA(t *testing.T) {
	src := "def f():\n" +
		"    r = x isa String\n"
	file := lexAndParse(t, src)

	fn := file.Data.(ast.File).Decls[0].Data.(ast.FunctionDef)
	assign := fn.Body[0].Data.(ast.Assign)
	assert.Equal(t, ast.KindIsA, assign.Value.Kind)
}
