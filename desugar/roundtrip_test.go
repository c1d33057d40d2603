package desugar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/desugar"
	"github.com/mambac/mambac/pyast"
)

// TestDesugarPreservesFreeIdents exercises the property spec names directly:
// the set of free identifiers in the desugared core IR equals the set of
// free identifiers in the checked input, for a function body mixing plain
// references, a range, and an isa test. Those two lower to calls of the
// Python builtins range and isinstance, so the expected set includes them.
func TestDesugarPreservesFreeIdents(t *testing.T) {
	body := []ast.Node{
		{Kind: ast.KindFor, Position: pos(), Data: ast.For{
			Var:  "i",
			Coll: ast.Node{Kind: ast.KindRange, Position: pos(), Data: ast.Range{Start: ident("lo"), End: ident("hi")}},
			Body: []ast.Node{
				{Kind: ast.KindPrint, Position: pos(), Data: ast.Print{
					Value: ast.Node{Kind: ast.KindIsA, Position: pos(), Data: ast.IsA{Left: ident("i"), Right: ident("Int")}},
				}},
			},
		}},
		{Kind: ast.KindReturn, Position: pos(), Data: ast.Return{
			Value: ast.Node{Kind: ast.KindBinaryOp, Position: pos(), Data: ast.BinaryOp{Op: "+", Left: ident("acc"), Right: ident("step")}},
		}},
	}
	fn := ast.Node{Kind: ast.KindFunctionDef, Position: pos(), Data: ast.FunctionDef{Name: "f", Body: body}}
	file := ast.Node{Kind: ast.KindFile, Position: pos(), Data: ast.File{Decls: []ast.Node{fn}}}

	inputFree := map[string]bool{}
	for _, s := range body {
		for name := range ast.FreeIdents(s) {
			inputFree[name] = true
		}
	}
	delete(inputFree, "i")         // bound by the for-loop
	inputFree["range"] = true      // callee of the lowered range
	inputFree["isinstance"] = true // callee of the lowered isa test

	out, diags := desugar.File(file)
	require.Empty(t, diags)

	outputFree := pyast.FreeIdents(out)
	assert.Equal(t, inputFree, outputFree)
}
