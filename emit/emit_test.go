package emit_test

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/desugar"
	"github.com/mambac/mambac/emit"
	"github.com/mambac/mambac/token"
)

func pos() token.Position { return token.Position{Path: "t.mamba"} }

// assertEmitEqual compares rendered Python against the golden string,
// failing with a unified diff rather than testify's inline string dump —
// emitter mismatches are easier to read line-by-line than as one long
// escaped string.
func assertEmitEqual(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A: difflib.SplitLines(want), FromFile: "want",
		B: difflib.SplitLines(got), ToFile: "got",
		Context: 2,
	})
	if err != nil {
		t.Fatalf("emit mismatch (and diff failed: %v)\nwant:\n%s\ngot:\n%s", err, want, got)
	}
	t.Fatalf("emit mismatch:\n%s", diff)
}

func ident(name string) ast.Node {
	return ast.Node{Kind: ast.KindIdent, Position: pos(), Data: ast.Ident{Name: name}}
}

func intLit(lexeme string) ast.Node {
	return ast.Node{Kind: ast.KindIntLit, Position: pos(), Data: ast.IntLit{Lexeme: lexeme}}
}

func render(t *testing.T, file ast.Node) string {
	t.Helper()
	core, diags := desugar.File(file)
	require.Empty(t, diags)
	out, diags := emit.File(core)
	require.Empty(t, diags)
	return out
}

func TestEmitClassWithInlineConstructor(t *testing.T) {
	classDef := ast.Node{
		Kind: ast.KindClassDef, Position: pos(),
		Data: ast.ClassDef{Name: "Point", Args: []ast.FunctionArg{{Name: "x"}, {Name: "y"}}},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{classDef}}}

	got := render(t, file)
	want := "class Point:\n" +
		"    def __init__(self, x, y):\n" +
		"        self.x = x\n" +
		"        self.y = y\n"
	assertEmitEqual(t, want, got)
}

func TestEmitForRangeLoop(t *testing.T) {
	fn := ast.Node{
		Kind: ast.KindFunctionDef, Position: pos(),
		Data: ast.FunctionDef{Name: "f", Body: []ast.Node{
			{Kind: ast.KindFor, Position: pos(), Data: ast.For{
				Var:  "i",
				Coll: ast.Node{Kind: ast.KindRange, Position: pos(), Data: ast.Range{Start: intLit("0"), End: intLit("10")}},
				Body: []ast.Node{
					{Kind: ast.KindPrint, Position: pos(), Data: ast.Print{Value: ident("i")}},
				},
			}},
		}},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{fn}}}

	got := render(t, file)
	want := "def f():\n" +
		"    for i in range(0, 10):\n" +
		"        print(i)\n"
	assertEmitEqual(t, want, got)
}

func TestEmitHandleWithRetry(t *testing.T) {
	fn := ast.Node{
		Kind: ast.KindFunctionDef, Position: pos(),
		Data: ast.FunctionDef{Name: "f", Body: []ast.Node{
			{Kind: ast.KindHandle, Position: pos(), Data: ast.Handle{
				Body: ast.Node{Kind: ast.KindPrint, Position: pos(), Data: ast.Print{Value: intLit("1")}},
				Arms: []ast.Node{
					{Kind: ast.KindHandleArm, Position: pos(), Data: ast.HandleArm{
						ErrType: "IOError", Bind: "e",
						Body: ast.Node{Kind: ast.KindRetry, Position: pos(), Data: ast.Retry{}},
					}},
				},
			}},
		}},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{fn}}}

	got := render(t, file)
	want := "def f():\n" +
		"    while True:\n" +
		"        try:\n" +
		"            print(1)\n" +
		"            break\n" +
		"        except IOError as e:\n" +
		"            continue\n"
	assertEmitEqual(t, want, got)
}

func TestEmitMatchWithWildcardUsesDefaultdict(t *testing.T) {
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

	got := render(t, file)
	want := "import collections\n\n" +
		"def f():\n" +
		"    r = collections.defaultdict(lambda: (lambda: default), {1: (lambda: a)})[k]()\n"
	assertEmitEqual(t, want, got)
}

func TestEmitBinaryOpPrecedence(t *testing.T) {
	fn := ast.Node{
		Kind: ast.KindFunctionDef, Position: pos(),
		Data: ast.FunctionDef{Name: "f", Body: []ast.Node{
			{Kind: ast.KindReturn, Position: pos(), Data: ast.Return{
				Value: ast.Node{Kind: ast.KindBinaryOp, Position: pos(), Data: ast.BinaryOp{
					Op:   "*",
					Left: ident("a"),
					Right: ast.Node{Kind: ast.KindBinaryOp, Position: pos(), Data: ast.BinaryOp{
						Op: "+", Left: ident("b"), Right: ident("c"),
					}},
				}},
			}},
		}},
	}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{fn}}}

	got := render(t, file)
	want := "def f():\n" +
		"    return a * (b + c)\n"
	assertEmitEqual(t, want, got)
}
