package desugar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/desugar"
	"github.com/mambac/mambac/pyast"
	"github.com/mambac/mambac/token"
)

func pos() token.Position { return token.Position{Path: "t.mamba"} }

func ident(name string) ast.Node {
	return ast.Node{Kind: ast.KindIdent, Position: pos(), Data: ast.Ident{Name: name}}
}

func intLit(lexeme string) ast.Node {
	return ast.Node{Kind: ast.KindIntLit, Position: pos(), Data: ast.IntLit{Lexeme: lexeme}}
}

func TestFileEmptyClassWithInlineArgsSynthesizesInit(t *testing.T) {
	classDef := ast.Node{
		Kind: ast.KindClassDef, Position: pos(),
		Data: ast.ClassDef{
			Name: "Point",
			Args: []ast.FunctionArg{{Name: "x"}, {Name: "y"}},
		},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{classDef}}}

	out, diags := desugar.File(file)
	require.Empty(t, diags)

	mod := out.Data.(pyast.Module)
	require.Len(t, mod.Body, 1)
	cls := mod.Body[0].Data.(pyast.ClassDef)
	require.Len(t, cls.Body, 1)

	init := cls.Body[0].Data.(pyast.FunctionDef)
	assert.Equal(t, "__init__", init.Name)
	assert.True(t, init.IsInit)
	require.Len(t, init.Args, 3) // self, x, y
	assert.Equal(t, "self", init.Args[0].Name)
	assert.Equal(t, "x", init.Args[1].Name)
	assert.Equal(t, "y", init.Args[2].Name)

	require.Len(t, init.Body, 2)
	for _, stmt := range init.Body {
		assert.Equal(t, pyast.KindAttrAssign, stmt.Kind)
	}
}

func TestClassWithParentsPrependsSuperInit(t *testing.T) {
	explicitInit := ast.Node{
		Kind: ast.KindFunctionDef, Position: pos(),
		Data: ast.FunctionDef{Name: "__init__", Args: []ast.FunctionArg{{Name: "z"}}},
	}
	classDef := ast.Node{
		Kind: ast.KindClassDef, Position: pos(),
		Data: ast.ClassDef{
			Name:    "Point3D",
			Parents: []ast.ParentRef{{Name: "Point", Args: []ast.Node{ident("x"), ident("y")}}},
			Body:    []ast.Node{explicitInit},
		},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{classDef}}}

	out, diags := desugar.File(file)
	require.Empty(t, diags)

	cls := out.Data.(pyast.Module).Body[0].Data.(pyast.ClassDef)
	assert.Equal(t, []string{"Point"}, cls.Bases)
	init := cls.Body[0].Data.(pyast.FunctionDef)
	require.NotEmpty(t, init.Body)

	superStmt := init.Body[0].Data.(pyast.ExprStmt)
	call := superStmt.Value.Data.(pyast.Call)
	attr := call.Func.Data.(pyast.Attribute)
	assert.Equal(t, "__init__", attr.Name)
	assert.Equal(t, "super", attr.Receiver.Data.(pyast.Call).Func.Data.(pyast.Ident).Name)
	require.Len(t, call.Args, 2)
}

func TestSynthesizedInitSkipsSelfAssignForParentOwnedArgs(t *testing.T) {
	classDef := ast.Node{
		Kind: ast.KindClassDef, Position: pos(),
		Data: ast.ClassDef{
			Name:    "C",
			Args:    []ast.FunctionArg{{Name: "x"}, {Name: "y"}},
			Parents: []ast.ParentRef{{Name: "P", Args: []ast.Node{ident("x")}}},
		},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{classDef}}}

	out, diags := desugar.File(file)
	require.Empty(t, diags)

	cls := out.Data.(pyast.Module).Body[0].Data.(pyast.ClassDef)
	init := cls.Body[0].Data.(pyast.FunctionDef)
	require.Len(t, init.Args, 3) // self, x, y — the parameter list is unaffected

	// Only one self.<name> = <name> assignment follows the super().__init__
	// call: y, the argument not forwarded to the parent. x is owned by P.
	require.Len(t, init.Body, 2)
	superStmt := init.Body[0].Data.(pyast.ExprStmt)
	call := superStmt.Value.Data.(pyast.Call)
	assert.Equal(t, "__init__", call.Func.Data.(pyast.Attribute).Name)

	assign := init.Body[1].Data.(pyast.AttrAssign)
	assert.Equal(t, "y", assign.Name)
}

func TestRangeExclusiveLowersToRangeCall(t *testing.T) {
	rangeExpr := ast.Node{
		Kind: ast.KindRange, Position: pos(),
		Data: ast.Range{Start: intLit("0"), End: intLit("10")},
	}
	fn := ast.Node{
		Kind: ast.KindFunctionDef, Position: pos(),
		Data: ast.FunctionDef{Name: "f", Body: []ast.Node{
			{Kind: ast.KindFor, Position: pos(), Data: ast.For{Var: "i", Coll: rangeExpr, Body: []ast.Node{
				{Kind: ast.KindPass, Position: pos(), Data: ast.Pass{}},
			}}},
		}},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{fn}}}

	out, diags := desugar.File(file)
	require.Empty(t, diags)

	f := out.Data.(pyast.Module).Body[0].Data.(pyast.FunctionDef)
	forStmt := f.Body[0].Data.(pyast.For)
	call := forStmt.Iter.Data.(pyast.Call)
	assert.Equal(t, "range", call.Func.Data.(pyast.Ident).Name)
	require.Len(t, call.Args, 2)
}

func TestRangeInclusiveAddsOneToEnd(t *testing.T) {
	rangeExpr := ast.Node{
		Kind: ast.KindRange, Position: pos(),
		Data: ast.Range{Start: intLit("0"), End: intLit("10"), Inclusive: true},
	}
	fn := ast.Node{
		Kind: ast.KindFunctionDef, Position: pos(),
		Data: ast.FunctionDef{Name: "f", Body: []ast.Node{
			{Kind: ast.KindAssign, Position: pos(), Data: ast.Assign{Name: "r", Value: rangeExpr}},
		}},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{fn}}}

	out, _ := desugar.File(file)
	f := out.Data.(pyast.Module).Body[0].Data.(pyast.FunctionDef)
	assign := f.Body[0].Data.(pyast.Assign)
	call := assign.Value.Data.(pyast.Call)
	endOp := call.Args[1].Data.(pyast.BinOp)
	assert.Equal(t, "+", endOp.Op)
	assert.Equal(t, "1", endOp.Right.Data.(pyast.IntLit).Lexeme)
}

func TestNullCoalesceUsesWalrusAndPreservesFreeIdents(t *testing.T) {
	coalesce := ast.Node{
		Kind: ast.KindNullCoalesce, Position: pos(),
		Data: ast.NullCoalesce{Left: ident("a"), Right: ident("b")},
	}
	fn := ast.Node{
		Kind: ast.KindFunctionDef, Position: pos(),
		Data: ast.FunctionDef{Name: "f", Body: []ast.Node{
			{Kind: ast.KindAssign, Position: pos(), Data: ast.Assign{Name: "r", Value: coalesce}},
		}},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{fn}}}

	out, diags := desugar.File(file)
	require.Empty(t, diags)

	f := out.Data.(pyast.Module).Body[0].Data.(pyast.FunctionDef)
	assign := f.Body[0].Data.(pyast.Assign)
	ifExp := assign.Value.Data.(pyast.IfExp)
	cond := ifExp.Cond.Data.(pyast.Compare)
	assert.Equal(t, "is not", cond.Op)
	named := cond.Left.Data.(pyast.NamedExpr)
	assert.Equal(t, "a", named.Value.Data.(pyast.Ident).Name)
	assert.Equal(t, "b", ifExp.Else.Data.(pyast.Ident).Name)

	free := pyast.FreeIdents(out)
	assert.True(t, free["a"])
	assert.True(t, free["b"])
	for name := range free {
		assert.False(t, len(name) >= len(pyast.TempPrefix) && name[:len(pyast.TempPrefix)] == pyast.TempPrefix,
			"synthetic temp %q leaked into the free-identifier set", name)
	}
}

func TestMatchWildcardBecomesDefaultdictDefault(t *testing.T) {
	match := ast.Node{
		Kind: ast.KindMatch, Position: pos(),
		Data: ast.Match{
			Subject: ident("k"),
			Cases: []ast.Node{
				{Kind: ast.KindMatchCase, Position: pos(), Data: ast.MatchCase{Cond: intLit("1"), Body: ident("a")}},
				{Kind: ast.KindMatchCase, Position: pos(), Data: ast.MatchCase{Body: ident("default")}},
			},
		},
	}
	fn := ast.Node{
		Kind: ast.KindFunctionDef, Position: pos(),
		Data: ast.FunctionDef{Name: "f", Body: []ast.Node{
			{Kind: ast.KindAssign, Position: pos(), Data: ast.Assign{Name: "r", Value: match}},
		}},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{fn}}}

	out, diags := desugar.File(file)
	require.Empty(t, diags)

	f := out.Data.(pyast.Module).Body[0].Data.(pyast.FunctionDef)
	assign := f.Body[0].Data.(pyast.Assign)
	call := assign.Value.Data.(pyast.Call)
	lookup := call.Func.Data.(pyast.Index)
	dict := lookup.Receiver.Data.(pyast.DictLit)

	require.Len(t, dict.Keys, 1)
	require.False(t, dict.Default.IsZero())
	assert.Equal(t, pyast.KindLambda, dict.Values[0].Kind)
	assert.Equal(t, pyast.KindLambda, dict.Default.Kind)
}

func TestHandleStatementWrapsWhileTrueAndLowersRetryToContinue(t *testing.T) {
	handle := ast.Node{
		Kind: ast.KindHandle, Position: pos(),
		Data: ast.Handle{
			Body: ast.Node{Kind: ast.KindPrint, Position: pos(), Data: ast.Print{Value: intLit("1")}},
			Arms: []ast.Node{
				{Kind: ast.KindHandleArm, Position: pos(), Data: ast.HandleArm{
					ErrType: "IOError", Bind: "e",
					Body: ast.Node{Kind: ast.KindRetry, Position: pos(), Data: ast.Retry{}},
				}},
			},
		},
	}
	fn := ast.Node{
		Kind: ast.KindFunctionDef, Position: pos(),
		Data: ast.FunctionDef{Name: "f", Body: []ast.Node{handle}},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{fn}}}

	out, diags := desugar.File(file)
	require.Empty(t, diags)

	f := out.Data.(pyast.Module).Body[0].Data.(pyast.FunctionDef)
	while := f.Body[0].Data.(pyast.While)
	assert.True(t, while.Cond.Data.(pyast.BoolLit).Value)
	require.Len(t, while.Body, 1)

	try := while.Body[0].Data.(pyast.Try)
	require.Len(t, try.Body, 2) // print + break
	assert.Equal(t, pyast.KindBreak, try.Body[1].Kind)

	require.Len(t, try.Handlers, 1)
	handler := try.Handlers[0].Data.(pyast.ExceptHandler)
	assert.Equal(t, "IOError", handler.ErrType)
	assert.Equal(t, "e", handler.Bind)
	require.Len(t, handler.Body, 1)
	assert.Equal(t, pyast.KindContinue, handler.Body[0].Kind)
}

func TestIsANotALowersToIsinstanceNegated(t *testing.T) {
	isNotA := ast.Node{
		Kind: ast.KindIsNotA, Position: pos(),
		Data: ast.IsNotA{Left: ident("x"), Right: ident("String")},
	}
	fn := ast.Node{
		Kind: ast.KindFunctionDef, Position: pos(),
		Data: ast.FunctionDef{Name: "f", Body: []ast.Node{
			{Kind: ast.KindAssign, Position: pos(), Data: ast.Assign{Name: "r", Value: isNotA}},
		}},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{fn}}}

	out, diags := desugar.File(file)
	require.Empty(t, diags)

	f := out.Data.(pyast.Module).Body[0].Data.(pyast.FunctionDef)
	assign := f.Body[0].Data.(pyast.Assign)
	not := assign.Value.Data.(pyast.UnaryOp)
	assert.Equal(t, "not", not.Op)
	call := not.Operand.Data.(pyast.Call)
	assert.Equal(t, "isinstance", call.Func.Data.(pyast.Ident).Name)
}
