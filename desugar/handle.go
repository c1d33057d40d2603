package desugar

import (
	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/pyast"
)

// buildHandle lowers a `handle e: with T as x: ...` construct to a `while
// True: try: ... except T as x: ...` wrapper, per the retry/handle
// lowering: `retry` inside an arm becomes `continue` over this loop, and a
// body or arm that completes normally gets an appended `break`, so the loop
// runs exactly once unless retried. A body or arm that already ends in
// return/raise/break/continue gets no extra `break`.
//
// resultVar is empty in statement position (the body/arms are lowered for
// effect only) and a synthesized temp name in expression position (the
// body/arms' trailing value is assigned into it instead).
func (d *Desugarer) buildHandle(n ast.Node, resultVar string) pyast.Node {
	h := n.Data.(ast.Handle)

	tryBody := d.valueStmts(h.Body, resultVar)
	tryBody = appendBreakIfNeeded(tryBody)

	handlers := make([]pyast.Node, len(h.Arms))
	for i, arm := range h.Arms {
		a := arm.Data.(ast.HandleArm)
		armBody := d.valueStmts(a.Body, resultVar)
		armBody = appendBreakIfNeeded(armBody)
		handlers[i] = pyast.Node{
			Kind: pyast.KindExceptHandler, Position: arm.Position,
			Data: pyast.ExceptHandler{ErrType: a.ErrType, Bind: a.Bind, Body: armBody},
		}
	}

	tryNode := pyast.Node{Kind: pyast.KindTry, Position: n.Position, Data: pyast.Try{Body: tryBody, Handlers: handlers}}
	trueLit := pyast.Node{Kind: pyast.KindBoolLit, Position: n.Position, Data: pyast.BoolLit{Value: true}}
	return pyast.Node{Kind: pyast.KindWhile, Position: n.Position, Data: pyast.While{Cond: trueLit, Body: []pyast.Node{tryNode}}}
}

// appendBreakIfNeeded appends a `break` unless the body already ends with a
// statement that unconditionally transfers control (return/raise/break/
// continue), so the enclosing `while True` runs exactly once per path.
func appendBreakIfNeeded(body []pyast.Node) []pyast.Node {
	if len(body) > 0 && isTerminal(body[len(body)-1]) {
		return body
	}
	return append(body, pyast.Node{Kind: pyast.KindBreak, Data: pyast.Break{}})
}

// valueStmts lowers a handle body/arm (statement, block, or bare
// expression). In statement position (resultVar == "") it's lowered purely
// for effect; in expression position, the trailing value — the bare
// expression itself, or undefined if the body is a statement with no value
// — is assigned into resultVar.
func (d *Desugarer) valueStmts(n ast.Node, resultVar string) []pyast.Node {
	if resultVar == "" {
		return d.stmtsOrExpr(n)
	}
	if n.Kind == ast.KindBlock {
		stmts := n.Data.(ast.Block).Statements
		if len(stmts) == 0 {
			return []pyast.Node{assignUndefined(n, resultVar)}
		}
		out := d.block(stmts[:len(stmts)-1])
		out = append(out, d.valueStmts(stmts[len(stmts)-1], resultVar)...)
		return out
	}
	if isStatementKind(n.Kind) {
		return []pyast.Node{d.stmt(n), assignUndefined(n, resultVar)}
	}
	return []pyast.Node{{Kind: pyast.KindAssign, Position: n.Position, Data: pyast.Assign{Name: resultVar, Value: d.expr(n)}}}
}

func assignUndefined(n ast.Node, resultVar string) pyast.Node {
	return pyast.Node{
		Kind: pyast.KindAssign, Position: n.Position,
		Data: pyast.Assign{Name: resultVar, Value: pyast.Node{Kind: pyast.KindNoneLit, Position: n.Position, Data: pyast.NoneLit{}}},
	}
}

// handleAsValue lowers a `handle` used in expression position: the while/try
// wrapper is hoisted ahead of the current statement via *d.hoist, predeclared
// with a None default, and the expression itself becomes a reference to the
// result temp.
func (d *Desugarer) handleAsValue(n ast.Node) pyast.Node {
	if d.hoist == nil {
		return d.ice(n, "desugar: handle used as a value outside any statement list")
	}
	resultVar := d.nextTemp()
	predecl := pyast.Node{Kind: pyast.KindAssign, Position: n.Position, Data: pyast.Assign{
		Name: resultVar, Value: pyast.Node{Kind: pyast.KindNoneLit, Position: n.Position, Data: pyast.NoneLit{}},
	}}
	loop := d.buildHandle(n, resultVar)
	*d.hoist = append(*d.hoist, predecl, loop)
	return pyast.Node{Kind: pyast.KindIdent, Position: n.Position, Data: pyast.Ident{Name: resultVar}}
}
