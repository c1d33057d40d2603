package pyast_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mambac/mambac/pyast"
	"github.com/mambac/mambac/token"
)

func pos() token.Position { return token.Position{Path: "t.py"} }

func ident(name string) pyast.Node {
	return pyast.Node{Kind: pyast.KindIdent, Position: pos(), Data: pyast.Ident{Name: name}}
}

func TestFreeIdentsExcludesBoundLoopVar(t *testing.T) {
	n := pyast.Node{
		Kind: pyast.KindFor, Position: pos(),
		Data: pyast.For{
			Var:  "i",
			Iter: ident("items"),
			Body: []pyast.Node{
				{Kind: pyast.KindExprStmt, Position: pos(), Data: pyast.ExprStmt{
					Value: pyast.Node{Kind: pyast.KindCall, Position: pos(), Data: pyast.Call{
						Func: ident("print"),
						Args: []pyast.Node{ident("i"), ident("total")},
					}},
				}},
			},
		},
	}

	got := pyast.FreeIdents(n)
	want := map[string]bool{"items": true, "print": true, "total": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FreeIdents mismatch (-want +got):\n%s", diff)
	}
}

func TestFreeIdentsExcludesSynthesizedTemps(t *testing.T) {
	n := pyast.Node{
		Kind: pyast.KindLambda, Position: pos(),
		Data: pyast.Lambda{
			Body: pyast.Node{Kind: pyast.KindIdent, Position: pos(), Data: pyast.Ident{Name: pyast.TempPrefix + "0"}},
		},
	}

	got := pyast.FreeIdents(n)
	want := map[string]bool{}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FreeIdents mismatch (-want +got):\n%s", diff)
	}
}

func TestFreeIdentsLambdaBindsArgs(t *testing.T) {
	n := pyast.Node{
		Kind: pyast.KindLambda, Position: pos(),
		Data: pyast.Lambda{
			Args: []pyast.Arg{{Name: "x"}},
			Body: pyast.Node{Kind: pyast.KindBinOp, Position: pos(), Data: pyast.BinOp{
				Op: "+", Left: ident("x"), Right: ident("y"),
			}},
		},
	}

	got := pyast.FreeIdents(n)
	want := map[string]bool{"y": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FreeIdents mismatch (-want +got):\n%s", diff)
	}
}
