package desugar

import (
	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/pyast"
)

// stmt lowers one statement. Statements that need to hoist extra statements
// ahead of themselves (only `handle` used for its value does, since Python's
// try/except has no expression form) append to *d.hoist, which block()
// splices in immediately before the statement that triggered the hoist.
func (d *Desugarer) stmt(n ast.Node) pyast.Node {
	switch n.Kind {
	case ast.KindAssign:
		a := n.Data.(ast.Assign)
		return pyast.Node{Kind: pyast.KindAssign, Position: n.Position, Data: pyast.Assign{Name: a.Name, Value: d.expr(a.Value)}}

	case ast.KindReassign:
		r := n.Data.(ast.Reassign)
		value := d.expr(r.Value)
		if r.Target.Kind == ast.KindIdent {
			return pyast.Node{Kind: pyast.KindAssign, Position: n.Position, Data: pyast.Assign{Name: r.Target.Data.(ast.Ident).Name, Value: value}}
		}
		if r.Target.Kind == ast.KindProperty {
			p := r.Target.Data.(ast.Property)
			return pyast.Node{Kind: pyast.KindAttrAssign, Position: n.Position, Data: pyast.AttrAssign{Receiver: d.expr(p.Receiver), Name: p.Name, Value: value}}
		}
		return d.ice(n, "desugar: reassignment target of unexpected kind %s", r.Target.Kind)

	case ast.KindWhile:
		w := n.Data.(ast.While)
		return pyast.Node{Kind: pyast.KindWhile, Position: n.Position, Data: pyast.While{Cond: d.expr(w.Cond), Body: d.block(w.Body)}}

	case ast.KindFor:
		f := n.Data.(ast.For)
		return pyast.Node{Kind: pyast.KindFor, Position: n.Position, Data: pyast.For{Var: f.Var, Iter: d.expr(f.Coll), Body: d.block(f.Body)}}

	case ast.KindReturn:
		r := n.Data.(ast.Return)
		var value pyast.Node
		if !r.Value.IsZero() {
			value = d.expr(r.Value)
		}
		return pyast.Node{Kind: pyast.KindReturn, Position: n.Position, Data: pyast.Return{Value: value}}

	case ast.KindPrint:
		p := n.Data.(ast.Print)
		return pyast.Node{Kind: pyast.KindPrint, Position: n.Position, Data: pyast.Print{Value: d.expr(p.Value)}}

	case ast.KindPass:
		return pyast.Node{Kind: pyast.KindPass, Position: n.Position, Data: pyast.Pass{}}
	case ast.KindBreak:
		return pyast.Node{Kind: pyast.KindBreak, Position: n.Position, Data: pyast.Break{}}
	case ast.KindContinue:
		return pyast.Node{Kind: pyast.KindContinue, Position: n.Position, Data: pyast.Continue{}}

	case ast.KindRetry:
		// The checker already rejected a retry outside a handle arm; here it
		// always lowers to `continue` over the implicit `while True` wrapper
		// buildHandle places around the try body.
		return pyast.Node{Kind: pyast.KindContinue, Position: n.Position, Data: pyast.Continue{}}

	case ast.KindRaise:
		r := n.Data.(ast.Raise)
		args := make([]pyast.Node, len(r.Args))
		for i, a := range r.Args {
			args[i] = d.expr(a)
		}
		return pyast.Node{Kind: pyast.KindRaise, Position: n.Position, Data: pyast.Raise{ErrType: r.ErrType, Args: args}}

	case ast.KindWith:
		w := n.Data.(ast.With)
		return pyast.Node{Kind: pyast.KindWith, Position: n.Position, Data: pyast.With{Resource: d.expr(w.Resource), As: w.As, Body: d.block(w.Body)}}

	case ast.KindHandle:
		return d.buildHandle(n, "")

	case ast.KindTernary:
		// In statement position `if c then A else B` becomes an if/else
		// block; as a value it stays a conditional expression (see expr).
		t := n.Data.(ast.Ternary)
		var els []pyast.Node
		if !t.Else.IsZero() {
			els = d.stmtsOrExpr(t.Else)
		}
		return pyast.Node{Kind: pyast.KindIf, Position: n.Position, Data: pyast.If{Cond: d.expr(t.Cond), Then: d.stmtsOrExpr(t.Then), Else: els}}

	case ast.KindBlock:
		stmts := n.Data.(ast.Block).Statements
		body := d.block(stmts)
		if len(body) == 1 {
			return body[0]
		}
		// A nested Block used as a statement (e.g. a one-line handle arm
		// written as an indented block) has no direct pyast statement-list
		// node; it's only ever consumed by a caller that already expects a
		// []pyast.Node, so this path is unreachable in well-formed input.
		return d.ice(n, "desugar: multi-statement block in single-statement position")

	case ast.KindClassDef:
		return d.class(n)
	case ast.KindFunctionDef:
		return d.function(n, false)
	case ast.KindFieldDef:
		return d.topLevelField(n)

	default:
		// A bare expression used as a statement (e.g. a call for effect).
		return pyast.Node{Kind: pyast.KindExprStmt, Position: n.Position, Data: pyast.ExprStmt{Value: d.expr(n)}}
	}
}

// stmtsOrExpr lowers a handle/with body that may be either a statement or a
// bare expression, matching the grammar's allowance for one-line arms.
func (d *Desugarer) stmtsOrExpr(n ast.Node) []pyast.Node {
	if n.Kind == ast.KindBlock {
		return d.block(n.Data.(ast.Block).Statements)
	}
	if isStatementKind(n.Kind) {
		return []pyast.Node{d.stmt(n)}
	}
	return []pyast.Node{{Kind: pyast.KindExprStmt, Position: n.Position, Data: pyast.ExprStmt{Value: d.expr(n)}}}
}

func isStatementKind(k ast.Kind) bool {
	switch k {
	case ast.KindAssign, ast.KindReassign, ast.KindWhile, ast.KindFor, ast.KindBreak,
		ast.KindContinue, ast.KindReturn, ast.KindPass, ast.KindPrint, ast.KindBlock,
		ast.KindRaise, ast.KindWith, ast.KindHandle, ast.KindRetry:
		return true
	default:
		return false
	}
}

func isTerminal(n pyast.Node) bool {
	switch n.Kind {
	case pyast.KindReturn, pyast.KindRaise, pyast.KindBreak, pyast.KindContinue:
		return true
	default:
		return false
	}
}
