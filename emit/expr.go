package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mambac/mambac/pyast"
)

// precedence ranks operator binding strength, low to high, following
// Python's own grammar (lowest first): lambda, ifexp, or, and, not,
// comparisons, |, ^, &, shift, +/-, */%, unary, **, call/attr/index, atom.
// Used to decide when a sub-expression needs parenthesizing.
func precedence(n pyast.Node) int {
	switch n.Kind {
	case pyast.KindLambda:
		return 0
	case pyast.KindIfExp:
		return 1
	case pyast.KindBoolOp:
		if n.Data.(pyast.BoolOp).Op == "or" {
			return 2
		}
		return 3
	case pyast.KindUnaryOp:
		if n.Data.(pyast.UnaryOp).Op == "not" {
			return 4
		}
		return 12
	case pyast.KindCompare:
		return 5
	case pyast.KindBinOp:
		switch n.Data.(pyast.BinOp).Op {
		case "|":
			return 6
		case "^":
			return 7
		case "&":
			return 8
		case "<<", ">>":
			return 9
		case "+", "-":
			return 10
		case "*", "/", "//", "%":
			return 11
		case "**":
			return 13
		}
		return 10
	case pyast.KindNamedExpr:
		return 1
	default:
		return 100 // atoms, calls, attributes, indices, literals
	}
}

func (w *writer) exprString(n pyast.Node) string {
	var b strings.Builder
	w.writeExpr(&b, n, 0)
	return b.String()
}

// writeExpr renders n into b, parenthesizing it when its precedence is
// lower than minPrec (the precedence of the context it's embedded in).
func (w *writer) writeExpr(b *strings.Builder, n pyast.Node, minPrec int) {
	if precedence(n) < minPrec {
		b.WriteByte('(')
		w.writeExprUnparen(b, n)
		b.WriteByte(')')
		return
	}
	w.writeExprUnparen(b, n)
}

func (w *writer) writeExprUnparen(b *strings.Builder, n pyast.Node) {
	if n.IsZero() {
		b.WriteString("None")
		return
	}
	switch n.Kind {
	case pyast.KindIdent:
		b.WriteString(n.Data.(pyast.Ident).Name)
	case pyast.KindIntLit:
		b.WriteString(n.Data.(pyast.IntLit).Lexeme)
	case pyast.KindFloatLit:
		b.WriteString(n.Data.(pyast.FloatLit).Lexeme)
	case pyast.KindStrLit:
		b.WriteString(strconv.Quote(n.Data.(pyast.StrLit).Value))
	case pyast.KindBoolLit:
		if n.Data.(pyast.BoolLit).Value {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case pyast.KindNoneLit:
		b.WriteString("None")
	case pyast.KindTuple:
		w.writeExprList(b, n.Data.(pyast.Tuple).Elements, "(", ")", true)
	case pyast.KindList:
		w.writeExprList(b, n.Data.(pyast.List).Elements, "[", "]", false)
	case pyast.KindSetLit:
		elems := n.Data.(pyast.SetLit).Elements
		if len(elems) == 0 {
			b.WriteString("set()")
			return
		}
		w.writeExprList(b, elems, "{", "}", false)
	case pyast.KindDictLit:
		w.writeDictLit(b, n.Data.(pyast.DictLit))
	case pyast.KindLambda:
		w.writeLambda(b, n.Data.(pyast.Lambda))
	case pyast.KindCall:
		w.writeCall(b, n.Data.(pyast.Call))
	case pyast.KindAttribute:
		d := n.Data.(pyast.Attribute)
		w.writeExpr(b, d.Receiver, precedence(n))
		b.WriteByte('.')
		b.WriteString(d.Name)
	case pyast.KindIndex:
		d := n.Data.(pyast.Index)
		w.writeExpr(b, d.Receiver, precedence(n))
		b.WriteByte('[')
		w.writeExpr(b, d.Key, 0)
		b.WriteByte(']')
	case pyast.KindBinOp:
		w.writeBinOp(b, n)
	case pyast.KindUnaryOp:
		w.writeUnaryOp(b, n)
	case pyast.KindBoolOp:
		w.writeBoolOp(b, n)
	case pyast.KindCompare:
		w.writeCompare(b, n)
	case pyast.KindIfExp:
		d := n.Data.(pyast.IfExp)
		p := precedence(n)
		w.writeExpr(b, d.Then, p+1)
		b.WriteString(" if ")
		w.writeExpr(b, d.Cond, p+1)
		b.WriteString(" else ")
		w.writeExpr(b, d.Else, p)
	case pyast.KindNamedExpr:
		d := n.Data.(pyast.NamedExpr)
		b.WriteString(d.Name)
		b.WriteString(" := ")
		w.writeExpr(b, d.Value, precedence(n)+1)
	default:
		w.ice(n, "emit: unexpected expression kind %s", n.Kind)
		b.WriteString("None")
	}
}

func (w *writer) writeExprList(b *strings.Builder, elems []pyast.Node, open, close string, singletonTrailingComma bool) {
	b.WriteString(open)
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		w.writeExpr(b, e, 1)
	}
	if singletonTrailingComma && len(elems) == 1 {
		b.WriteByte(',')
	}
	b.WriteString(close)
}

func (w *writer) writeDictLit(b *strings.Builder, d pyast.DictLit) {
	var lit strings.Builder
	lit.WriteByte('{')
	for i := range d.Keys {
		if i > 0 {
			lit.WriteString(", ")
		}
		w.writeExpr(&lit, d.Keys[i], 1)
		lit.WriteString(": ")
		w.writeExpr(&lit, d.Values[i], 1)
	}
	lit.WriteByte('}')

	if d.Default.IsZero() {
		b.WriteString(lit.String())
		return
	}
	b.WriteString("collections.defaultdict(lambda: ")
	w.writeExpr(b, d.Default, 1)
	b.WriteString(", ")
	b.WriteString(lit.String())
	b.WriteByte(')')
}

func (w *writer) writeLambda(b *strings.Builder, l pyast.Lambda) {
	b.WriteString("lambda")
	if len(l.Args) > 0 {
		b.WriteByte(' ')
		b.WriteString(w.argList(l.Args))
	}
	b.WriteString(": ")
	w.writeExpr(b, l.Body, 1)
}

func (w *writer) writeCall(b *strings.Builder, c pyast.Call) {
	w.writeExpr(b, c.Func, precedence(pyast.Node{Kind: pyast.KindCall}))
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		w.writeExpr(b, a, 1)
	}
	b.WriteByte(')')
}

func (w *writer) writeBinOp(b *strings.Builder, n pyast.Node) {
	d := n.Data.(pyast.BinOp)
	p := precedence(n)
	left, right := p, p+1
	if d.Op == "**" {
		// ** is right-associative: an equal-precedence left operand needs
		// parentheses, an equal-precedence right operand does not.
		left, right = p+1, p
	}
	w.writeExpr(b, d.Left, left)
	fmt.Fprintf(b, " %s ", d.Op)
	w.writeExpr(b, d.Right, right)
}

func (w *writer) writeUnaryOp(b *strings.Builder, n pyast.Node) {
	d := n.Data.(pyast.UnaryOp)
	p := precedence(n)
	if d.Op == "not" {
		b.WriteString("not ")
	} else {
		b.WriteString(d.Op)
	}
	w.writeExpr(b, d.Operand, p)
}

func (w *writer) writeBoolOp(b *strings.Builder, n pyast.Node) {
	d := n.Data.(pyast.BoolOp)
	p := precedence(n)
	w.writeExpr(b, d.Left, p)
	fmt.Fprintf(b, " %s ", d.Op)
	w.writeExpr(b, d.Right, p+1)
}

func (w *writer) writeCompare(b *strings.Builder, n pyast.Node) {
	d := n.Data.(pyast.Compare)
	p := precedence(n)
	w.writeExpr(b, d.Left, p+1)
	fmt.Fprintf(b, " %s ", d.Op)
	w.writeExpr(b, d.Right, p+1)
}
