package desugar

import (
	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/pyast"
)

// function lowers a plain function or method definition. inClass controls
// whether a `self` parameter is prepended; top-level functions don't get
// one.
func (d *Desugarer) function(n ast.Node, inClass bool) pyast.Node {
	fd := n.Data.(ast.FunctionDef)

	var args []pyast.Arg
	if inClass {
		args = append(args, pyast.Arg{Name: "self"})
	}
	for _, a := range fd.Args {
		args = append(args, d.arg(a))
	}

	body := d.block(fd.Body)

	return pyast.Node{
		Kind: pyast.KindFunctionDef, Position: n.Position,
		Data: pyast.FunctionDef{Name: fd.Name, Args: args, Body: body},
	}
}

// block lowers a statement list. Each statement is lowered with d.hoist
// pointed at a fresh slice, so a `handle` used for its value within that
// statement can splice its while/try wrapper in immediately before it.
func (d *Desugarer) block(stmts []ast.Node) []pyast.Node {
	out := make([]pyast.Node, 0, len(stmts))
	for _, s := range stmts {
		prevHoist := d.hoist
		var local []pyast.Node
		d.hoist = &local
		lowered := d.stmt(s)
		d.hoist = prevHoist

		out = append(out, local...)
		out = append(out, lowered)
	}
	if len(out) == 0 {
		out = append(out, pyast.Node{Kind: pyast.KindPass, Data: pyast.Pass{}})
	}
	return out
}
