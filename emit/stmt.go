package emit

import (
	"strings"

	"github.com/mambac/mambac/pyast"
)

func (w *writer) stmts(stmts []pyast.Node) {
	if len(stmts) == 0 {
		w.line("pass")
		return
	}
	for _, s := range stmts {
		w.stmt(s)
	}
}

func (w *writer) stmt(n pyast.Node) {
	switch n.Kind {
	case pyast.KindAssign:
		d := n.Data.(pyast.Assign)
		w.line("%s = %s", d.Name, w.exprString(d.Value))
	case pyast.KindAttrAssign:
		d := n.Data.(pyast.AttrAssign)
		w.line("%s.%s = %s", w.exprString(d.Receiver), d.Name, w.exprString(d.Value))
	case pyast.KindExprStmt:
		w.line("%s", w.exprString(n.Data.(pyast.ExprStmt).Value))
	case pyast.KindReturn:
		d := n.Data.(pyast.Return)
		if d.Value.IsZero() {
			w.line("return")
			return
		}
		w.line("return %s", w.exprString(d.Value))
	case pyast.KindPass:
		w.line("pass")
	case pyast.KindBreak:
		w.line("break")
	case pyast.KindContinue:
		w.line("continue")
	case pyast.KindPrint:
		w.line("print(%s)", w.exprString(n.Data.(pyast.Print).Value))
	case pyast.KindRaise:
		w.writeRaise(n)
	case pyast.KindIf:
		w.writeIf(n)
	case pyast.KindWhile:
		d := n.Data.(pyast.While)
		w.line("while %s:", w.exprString(d.Cond))
		w.indent(func() { w.stmts(d.Body) })
	case pyast.KindFor:
		d := n.Data.(pyast.For)
		w.line("for %s in %s:", d.Var, w.exprString(d.Iter))
		w.indent(func() { w.stmts(d.Body) })
	case pyast.KindWith:
		d := n.Data.(pyast.With)
		w.line("with %s as %s:", w.exprString(d.Resource), d.As)
		w.indent(func() { w.stmts(d.Body) })
	case pyast.KindTry:
		w.writeTry(n)
	default:
		w.ice(n, "emit: unexpected statement kind %s", n.Kind)
	}
}

func (w *writer) writeRaise(n pyast.Node) {
	d := n.Data.(pyast.Raise)
	if len(d.Args) == 0 {
		w.line("raise %s()", d.ErrType)
		return
	}
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = w.exprString(a)
	}
	w.line("raise %s(%s)", d.ErrType, strings.Join(args, ", "))
}

func (w *writer) writeIf(n pyast.Node) {
	d := n.Data.(pyast.If)
	w.line("if %s:", w.exprString(d.Cond))
	w.indent(func() { w.stmts(d.Then) })
	if len(d.Else) > 0 {
		w.line("else:")
		w.indent(func() { w.stmts(d.Else) })
	}
}

func (w *writer) writeTry(n pyast.Node) {
	d := n.Data.(pyast.Try)
	w.line("try:")
	w.indent(func() { w.stmts(d.Body) })
	for _, h := range d.Handlers {
		handler := h.Data.(pyast.ExceptHandler)
		if handler.Bind == "" {
			w.line("except %s:", handler.ErrType)
		} else {
			w.line("except %s as %s:", handler.ErrType, handler.Bind)
		}
		w.indent(func() { w.stmts(handler.Body) })
	}
}
