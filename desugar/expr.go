package desugar

import (
	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/pyast"
)

var logicalOps = map[string]bool{"and": true, "or": true}

var comparisonOps = map[string]bool{
	"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true,
}

// expr lowers one expression. Three forms are genuine rewrites rather than
// structural translations: range collapses to a `range(...)` call, match
// collapses to a dict (or defaultdict) literal indexed by its subject, and
// nullable-coalesce collapses to a walrus-backed conditional expression.
func (d *Desugarer) expr(n ast.Node) pyast.Node {
	switch n.Kind {
	case ast.KindIntLit:
		return pyast.Node{Kind: pyast.KindIntLit, Position: n.Position, Data: pyast.IntLit{Lexeme: n.Data.(ast.IntLit).Lexeme}}
	case ast.KindRealLit:
		return pyast.Node{Kind: pyast.KindFloatLit, Position: n.Position, Data: pyast.FloatLit{Lexeme: n.Data.(ast.RealLit).Lexeme}}
	case ast.KindExpLit:
		return pyast.Node{Kind: pyast.KindFloatLit, Position: n.Position, Data: pyast.FloatLit{Lexeme: n.Data.(ast.ExpLit).Lexeme}}
	case ast.KindStringLit:
		return pyast.Node{Kind: pyast.KindStrLit, Position: n.Position, Data: pyast.StrLit{Value: n.Data.(ast.StringLit).Value}}
	case ast.KindBoolLit:
		return pyast.Node{Kind: pyast.KindBoolLit, Position: n.Position, Data: pyast.BoolLit{Value: n.Data.(ast.BoolLit).Value}}
	case ast.KindUndefined:
		return pyast.Node{Kind: pyast.KindNoneLit, Position: n.Position, Data: pyast.NoneLit{}}
	case ast.KindIdent:
		return pyast.Node{Kind: pyast.KindIdent, Position: n.Position, Data: pyast.Ident{Name: n.Data.(ast.Ident).Name}}

	case ast.KindTuple:
		return pyast.Node{Kind: pyast.KindTuple, Position: n.Position, Data: pyast.Tuple{Elements: d.exprs(n.Data.(ast.Tuple).Elements)}}
	case ast.KindList:
		return pyast.Node{Kind: pyast.KindList, Position: n.Position, Data: pyast.List{Elements: d.exprs(n.Data.(ast.List).Elements)}}
	case ast.KindSet:
		return pyast.Node{Kind: pyast.KindSetLit, Position: n.Position, Data: pyast.SetLit{Elements: d.exprs(n.Data.(ast.Set).Elements)}}

	case ast.KindComprehension:
		return d.comprehension(n)

	case ast.KindLambda:
		l := n.Data.(ast.Lambda)
		args := make([]pyast.Arg, len(l.Args))
		for i, a := range l.Args {
			args[i] = d.arg(a)
		}
		return pyast.Node{Kind: pyast.KindLambda, Position: n.Position, Data: pyast.Lambda{Args: args, Body: d.expr(l.Body)}}

	case ast.KindCall:
		c := n.Data.(ast.Call)
		return pyast.Node{Kind: pyast.KindCall, Position: n.Position, Data: pyast.Call{Func: d.expr(c.Func), Args: d.exprs(c.Args)}}

	case ast.KindPropertyCall:
		p := n.Data.(ast.PropertyCall)
		attr := pyast.Node{Kind: pyast.KindAttribute, Position: n.Position, Data: pyast.Attribute{Receiver: d.expr(p.Receiver), Name: p.Name}}
		return pyast.Node{Kind: pyast.KindCall, Position: n.Position, Data: pyast.Call{Func: attr, Args: d.exprs(p.Args)}}

	case ast.KindConstructorCall:
		c := n.Data.(ast.ConstructorCall)
		ty := c.Type.Data.(ast.TypeNameExpr)
		callee := pyast.Node{Kind: pyast.KindIdent, Position: n.Position, Data: pyast.Ident{Name: ty.Literal}}
		return pyast.Node{Kind: pyast.KindCall, Position: n.Position, Data: pyast.Call{Func: callee, Args: d.exprs(c.Args)}}

	case ast.KindProperty:
		p := n.Data.(ast.Property)
		return pyast.Node{Kind: pyast.KindAttribute, Position: n.Position, Data: pyast.Attribute{Receiver: d.expr(p.Receiver), Name: p.Name}}

	case ast.KindIndex:
		ix := n.Data.(ast.Index)
		return pyast.Node{Kind: pyast.KindIndex, Position: n.Position, Data: pyast.Index{Receiver: d.expr(ix.Receiver), Key: d.expr(ix.Key)}}

	case ast.KindBinaryOp:
		return d.binaryOp(n)

	case ast.KindUnaryOp:
		u := n.Data.(ast.UnaryOp)
		op := u.Op
		if op == "not" {
			return pyast.Node{Kind: pyast.KindUnaryOp, Position: n.Position, Data: pyast.UnaryOp{Op: "not", Operand: d.expr(u.Operand)}}
		}
		return pyast.Node{Kind: pyast.KindUnaryOp, Position: n.Position, Data: pyast.UnaryOp{Op: op, Operand: d.expr(u.Operand)}}

	case ast.KindRange:
		return d.rangeExpr(n)

	case ast.KindIn:
		in := n.Data.(ast.In)
		return pyast.Node{Kind: pyast.KindCompare, Position: n.Position, Data: pyast.Compare{Op: "in", Left: d.expr(in.Elem), Right: d.expr(in.Coll)}}

	case ast.KindIs:
		is := n.Data.(ast.Is)
		return pyast.Node{Kind: pyast.KindCompare, Position: n.Position, Data: pyast.Compare{Op: "is", Left: d.expr(is.Left), Right: d.expr(is.Right)}}
	case ast.KindIsNot:
		is := n.Data.(ast.IsNot)
		return pyast.Node{Kind: pyast.KindCompare, Position: n.Position, Data: pyast.Compare{Op: "is not", Left: d.expr(is.Left), Right: d.expr(is.Right)}}

	case ast.KindIsA:
		isa := n.Data.(ast.IsA)
		return d.isinstanceCall(n, isa.Left, isa.Right)
	case ast.KindIsNotA:
		isa := n.Data.(ast.IsNotA)
		call := d.isinstanceCall(n, isa.Left, isa.Right)
		return pyast.Node{Kind: pyast.KindUnaryOp, Position: n.Position, Data: pyast.UnaryOp{Op: "not", Operand: call}}

	case ast.KindNullCoalesce:
		return d.nullCoalesce(n)

	case ast.KindTernary:
		t := n.Data.(ast.Ternary)
		els := pyast.Node{Kind: pyast.KindNoneLit, Position: n.Position, Data: pyast.NoneLit{}}
		if !t.Else.IsZero() {
			els = d.expr(t.Else)
		}
		return pyast.Node{Kind: pyast.KindIfExp, Position: n.Position, Data: pyast.IfExp{Cond: d.expr(t.Cond), Then: d.expr(t.Then), Else: els}}

	case ast.KindMatch:
		return d.matchExpr(n)

	case ast.KindHandle:
		return d.handleAsValue(n)

	case ast.KindWith:
		// `with` used as a value has no sensible result; the checker treats
		// it as undefined. Lower it for effect and hand back None.
		if d.hoist == nil {
			return d.ice(n, "desugar: with used as a value outside any statement list")
		}
		*d.hoist = append(*d.hoist, d.stmt(n))
		return pyast.Node{Kind: pyast.KindNoneLit, Position: n.Position, Data: pyast.NoneLit{}}

	default:
		return d.ice(n, "desugar: unhandled expression node kind %s", n.Kind)
	}
}

func (d *Desugarer) exprs(ns []ast.Node) []pyast.Node {
	out := make([]pyast.Node, len(ns))
	for i, e := range ns {
		out[i] = d.expr(e)
	}
	return out
}

func (d *Desugarer) binaryOp(n ast.Node) pyast.Node {
	b := n.Data.(ast.BinaryOp)
	left, right := d.expr(b.Left), d.expr(b.Right)
	switch {
	case logicalOps[b.Op]:
		return pyast.Node{Kind: pyast.KindBoolOp, Position: n.Position, Data: pyast.BoolOp{Op: b.Op, Left: left, Right: right}}
	case comparisonOps[b.Op]:
		return pyast.Node{Kind: pyast.KindCompare, Position: n.Position, Data: pyast.Compare{Op: b.Op, Left: left, Right: right}}
	default:
		return pyast.Node{Kind: pyast.KindBinOp, Position: n.Position, Data: pyast.BinOp{Op: b.Op, Left: left, Right: right}}
	}
}

func (d *Desugarer) isinstanceCall(n ast.Node, left, right ast.Node) pyast.Node {
	callee := pyast.Node{Kind: pyast.KindIdent, Position: n.Position, Data: pyast.Ident{Name: "isinstance"}}
	return pyast.Node{Kind: pyast.KindCall, Position: n.Position, Data: pyast.Call{Func: callee, Args: []pyast.Node{d.expr(left), d.expr(right)}}}
}

// rangeExpr lowers `a..b` / `a..=b` to `range(a, b[+1], step?)`.
func (d *Desugarer) rangeExpr(n ast.Node) pyast.Node {
	r := n.Data.(ast.Range)
	start := d.expr(r.Start)
	end := d.expr(r.End)
	if r.Inclusive {
		one := pyast.Node{Kind: pyast.KindIntLit, Position: n.Position, Data: pyast.IntLit{Lexeme: "1"}}
		end = pyast.Node{Kind: pyast.KindBinOp, Position: n.Position, Data: pyast.BinOp{Op: "+", Left: end, Right: one}}
	}
	args := []pyast.Node{start, end}
	if !r.Step.IsZero() {
		args = append(args, d.expr(r.Step))
	}
	callee := pyast.Node{Kind: pyast.KindIdent, Position: n.Position, Data: pyast.Ident{Name: "range"}}
	return pyast.Node{Kind: pyast.KindCall, Position: n.Position, Data: pyast.Call{Func: callee, Args: args}}
}

// nullCoalesce lowers `a ?or b` to `t if (t := a) is not None else b`, a
// single Python expression realizing the `let t = a in if t != undefined
// then t else b` rewrite via the walrus operator.
func (d *Desugarer) nullCoalesce(n ast.Node) pyast.Node {
	nc := n.Data.(ast.NullCoalesce)
	tempName := d.nextTemp()
	named := pyast.Node{Kind: pyast.KindNamedExpr, Position: n.Position, Data: pyast.NamedExpr{Name: tempName, Value: d.expr(nc.Left)}}
	none := pyast.Node{Kind: pyast.KindNoneLit, Position: n.Position, Data: pyast.NoneLit{}}
	cond := pyast.Node{Kind: pyast.KindCompare, Position: n.Position, Data: pyast.Compare{Op: "is not", Left: named, Right: none}}
	then := pyast.Node{Kind: pyast.KindIdent, Position: n.Position, Data: pyast.Ident{Name: tempName}}
	return pyast.Node{Kind: pyast.KindIfExp, Position: n.Position, Data: pyast.IfExp{Cond: cond, Then: then, Else: d.expr(nc.Right)}}
}

func (d *Desugarer) comprehension(n ast.Node) pyast.Node {
	c := n.Data.(ast.Comprehension)
	// The core IR has no dedicated comprehension node; a comprehension
	// lowers to the equivalent list()/set() call wrapping a generator
	// expression built from a lambda applied via map/filter, matching the
	// IR's existing vocabulary instead of adding a one-off node for it.
	genFunc := pyast.Node{Kind: pyast.KindLambda, Position: n.Position, Data: pyast.Lambda{
		Args: []pyast.Arg{{Name: c.Var}}, Body: d.expr(c.Result),
	}}
	source := d.expr(c.Source)
	if !c.Cond.IsZero() {
		predicate := pyast.Node{Kind: pyast.KindLambda, Position: n.Position, Data: pyast.Lambda{
			Args: []pyast.Arg{{Name: c.Var}}, Body: d.expr(c.Cond),
		}}
		filterCall := pyast.Node{Kind: pyast.KindCall, Position: n.Position, Data: pyast.Call{
			Func: pyast.Node{Kind: pyast.KindIdent, Position: n.Position, Data: pyast.Ident{Name: "filter"}},
			Args: []pyast.Node{predicate, source},
		}}
		source = filterCall
	}
	mapCall := pyast.Node{Kind: pyast.KindCall, Position: n.Position, Data: pyast.Call{
		Func: pyast.Node{Kind: pyast.KindIdent, Position: n.Position, Data: pyast.Ident{Name: "map"}},
		Args: []pyast.Node{genFunc, source},
	}}
	wrapperName := "list"
	if c.Kind == ast.CollSet {
		wrapperName = "set"
	}
	return pyast.Node{Kind: pyast.KindCall, Position: n.Position, Data: pyast.Call{
		Func: pyast.Node{Kind: pyast.KindIdent, Position: n.Position, Data: pyast.Ident{Name: wrapperName}},
		Args: []pyast.Node{mapCall},
	}}
}

// matchExpr lowers `match e { cond => v; _ => d }` to a dictionary of
// `{k: lambda: v}` indexed by the subject and immediately called — each
// value is a zero-argument lambda so only the selected arm is ever
// evaluated, matching a match expression's short-circuit semantics. A
// wildcard `_` case becomes the dict's defaultdict(lambda: d) default
// instead of a literal key.
func (d *Desugarer) matchExpr(n ast.Node) pyast.Node {
	m := n.Data.(ast.Match)
	var keys, values []pyast.Node
	var wildcard pyast.Node
	for _, c := range m.Cases {
		cd := c.Data.(ast.MatchCase)
		body := d.matchCaseLambda(cd.Body)
		if cd.Cond.IsZero() {
			wildcard = body
			continue
		}
		keys = append(keys, d.expr(cd.Cond))
		values = append(values, body)
	}
	dict := pyast.Node{Kind: pyast.KindDictLit, Position: n.Position, Data: pyast.DictLit{Keys: keys, Values: values, Default: wildcard}}
	lookup := pyast.Node{Kind: pyast.KindIndex, Position: n.Position, Data: pyast.Index{Receiver: dict, Key: d.expr(m.Subject)}}
	return pyast.Node{Kind: pyast.KindCall, Position: n.Position, Data: pyast.Call{Func: lookup}}
}

// matchCaseLambda wraps a case body (parsed as a bare expression, per the
// grammar) as a zero-argument lambda so the dict literal defers its
// evaluation until the matching arm is actually selected.
func (d *Desugarer) matchCaseLambda(n ast.Node) pyast.Node {
	return pyast.Node{Kind: pyast.KindLambda, Position: n.Position, Data: pyast.Lambda{Body: d.expr(n)}}
}
