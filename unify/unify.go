// Package unify implements the worklist-based constraint solver described
// it resolves a constraint.Set to either success or a list of
// diagnostics, rewriting symbolic Expecteds into concrete type names by
// consulting the type context and the remaining constraints.
package unify

import (
	"fmt"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/constraint"
	"github.com/mambac/mambac/diag"
	"github.com/mambac/mambac/typecontext"
)

// exprKey identifies an Expression shape by the identity of its underlying
// AST node rather than structural equality (ast.Node isn't comparable,
// since it may carry slices). The generator hands out one of these per
// constraint.Expr call.
type exprKey = *ast.Node

// Unifier holds the union-find substitution table that realizes the
// "Expression vs anything: substitute Expression via the environment/ast"
// rule: expressions are unioned together as they're compared, and bound to
// a concrete shape the first time one is discovered, the same way a
// traditional type-inference unifier's substitution environment works.
type Unifier struct {
	ctx    *typecontext.Context
	parent map[exprKey]exprKey
	bound  map[exprKey]constraint.Expected
	report diag.Report
}

// New builds a Unifier against the given (already-built) type context.
func New(ctx *typecontext.Context) *Unifier {
	return &Unifier{ctx: ctx, parent: map[exprKey]exprKey{}, bound: map[exprKey]constraint.Expected{}}
}

func key(e constraint.Expected) exprKey {
	return &(e.Data.(constraint.ExpressionShape).AST)
}

func (u *Unifier) find(k exprKey) exprKey {
	p, ok := u.parent[k]
	if !ok || p == k {
		u.parent[k] = k
		return k
	}
	root := u.find(p)
	u.parent[k] = root
	return root
}

func (u *Unifier) union(a, b exprKey) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	u.parent[ra] = rb
	if bv, ok := u.bound[ra]; ok {
		u.bound[rb] = bv
		delete(u.bound, ra)
	}
}

// resolve substitutes e if it is an Expression shape whose root has already
// been bound to a concrete shape; otherwise it returns e unchanged (still
// symbolic).
func (u *Unifier) resolve(e constraint.Expected) constraint.Expected {
	if e.Kind != constraint.ShapeExpression {
		return e
	}
	root := u.find(key(e))
	if bv, ok := u.bound[root]; ok {
		return u.resolve(bv)
	}
	return e
}

// Solve drains set, returning true (with no diagnostics) iff every
// constraint was discharged. An empty set always succeeds trivially.
func (u *Unifier) Solve(set *constraint.Set) (bool, []*diag.Diagnostic) {
	u.report = diag.Report{}
	for !set.Empty() {
		c, _ := set.PopFront()
		u.step(set, c)
	}
	return !u.report.HasErrors(), u.report.Diagnostics()
}

// step processes one constraint, implementing the shape-pair dispatch table
// of shape pairs.
func (u *Unifier) step(set *constraint.Set, c constraint.Constraint) {
	l, r := u.resolve(c.L), u.resolve(c.R)

	// A constraint with equal shapes is always discharged without side
	// effects, regardless of whether resolution changed anything.
	if l.Equal(r) {
		return
	}

	switch {
	case l.Kind == constraint.ShapeExpression && r.Kind == constraint.ShapeExpression:
		u.union(key(l), key(r))
		return
	case l.Kind == constraint.ShapeExpression:
		u.bound[u.find(key(l))] = r
		return
	case r.Kind == constraint.ShapeExpression:
		u.bound[u.find(key(r))] = l
		return
	}

	switch {
	case l.Kind == constraint.ShapeFunction && r.Kind == constraint.ShapeType:
		u.resolveCall(set, c, l.Data.(constraint.FunctionShape), r.Data.(constraint.TypeShape).Name, c.L.Position)
		return
	case r.Kind == constraint.ShapeFunction && l.Kind == constraint.ShapeType:
		u.resolveCall(set, c, r.Data.(constraint.FunctionShape), l.Data.(constraint.TypeShape).Name, c.R.Position)
		return
	case l.Kind == constraint.ShapeFunction:
		u.resolveFreeCall(set, c, l.Data.(constraint.FunctionShape), c.L.Position)
		return
	case r.Kind == constraint.ShapeFunction:
		u.resolveFreeCall(set, c, r.Data.(constraint.FunctionShape), c.R.Position)
		return

	case l.Kind == constraint.ShapeAccess:
		u.resolveAccess(set, c, l.Data.(constraint.AccessShape), c.L.Position)
		return
	case r.Kind == constraint.ShapeAccess:
		u.resolveAccess(set, c, r.Data.(constraint.AccessShape), c.R.Position)
		return

	case l.Kind == constraint.ShapeHasField || r.Kind == constraint.ShapeHasField:
		u.resolveHasField(set, l, r, c)
		return
	case l.Kind == constraint.ShapeHasFunction || r.Kind == constraint.ShapeHasFunction:
		u.resolveHasFunction(set, l, r, c)
		return
	case l.Kind == constraint.ShapeImplements || r.Kind == constraint.ShapeImplements:
		u.resolveImplements(set, l, r, c)
		return

	case l.Kind == constraint.ShapeType && r.Kind == constraint.ShapeStringy:
		u.checkStringy(l.Data.(constraint.TypeShape).Name, c)
		return
	case r.Kind == constraint.ShapeType && l.Kind == constraint.ShapeStringy:
		u.checkStringy(r.Data.(constraint.TypeShape).Name, c)
		return
	case l.Kind == constraint.ShapeType && r.Kind == constraint.ShapeTruthy:
		u.checkTruthy(l.Data.(constraint.TypeShape).Name, c)
		return
	case r.Kind == constraint.ShapeType && l.Kind == constraint.ShapeTruthy:
		u.checkTruthy(r.Data.(constraint.TypeShape).Name, c)
		return
	case l.Kind == constraint.ShapeType && r.Kind == constraint.ShapeNullable:
		u.checkNullable(l.Data.(constraint.TypeShape).Name, r.Data.(constraint.NullableShape), set, c)
		return
	case r.Kind == constraint.ShapeType && l.Kind == constraint.ShapeNullable:
		u.checkNullable(r.Data.(constraint.TypeShape).Name, l.Data.(constraint.NullableShape), set, c)
		return

	case l.Kind == constraint.ShapeType && r.Kind == constraint.ShapeType:
		u.checkTypeEquality(l.Data.(constraint.TypeShape).Name, r.Data.(constraint.TypeShape).Name, c)
		return

	case l.Kind == constraint.ShapeCollection && r.Kind == constraint.ShapeCollection:
		set.PushFront(constraint.New(l.Data.(constraint.CollectionShape).Of, r.Data.(constraint.CollectionShape).Of, "collection element"))
		return

	case l.Kind == constraint.ShapeMutable && r.Kind == constraint.ShapeMutable:
		set.PushFront(constraint.New(l.Data.(constraint.MutableShape).Of, r.Data.(constraint.MutableShape).Of, "mutable target"))
		return

	case l.Kind == constraint.ShapeExpressionAny || r.Kind == constraint.ShapeExpressionAny:
		return // ExpressionAny is satisfied by anything.

	case l.Kind == constraint.ShapeRaisesAny || r.Kind == constraint.ShapeRaisesAny:
		return
	case l.Kind == constraint.ShapeRaises && r.Kind == constraint.ShapeRaises:
		if !l.Data.(constraint.RaisesShape).Name.Equal(r.Data.(constraint.RaisesShape).Name) {
			u.reinsert(set, c)
		}
		return
	}

	u.reinsert(set, c)
}

// reinsert implements the bounded-retry rule: a constraint is
// pushed to the back with its flag bit set the first time no rule fires;
// if it's already flagged, unification fails outright rather than looping
// forever.
func (u *Unifier) reinsert(set *constraint.Set, c constraint.Constraint) {
	if c.IsFlag {
		u.report.Add(&diag.Diagnostic{
			Kind: diag.Type, Level: diag.Error, Position: c.L.Position,
			Message: fmt.Sprintf("cannot infer type: expected %s, was %s", c.L, c.R),
		})
		return
	}
	set.PushBack(c.Flagged())
}

func (u *Unifier) checkStringy(tn constraint.TypeName, c constraint.Constraint) {
	if !u.ctx.IsStringy(tn, c.L.Position) {
		u.report.Errorf(diag.Type, c.L.Position, "type %s does not implement __str__", tn)
	}
}

func (u *Unifier) checkTruthy(tn constraint.TypeName, c constraint.Constraint) {
	if !u.ctx.IsTruthy(tn, c.L.Position) {
		u.report.Errorf(diag.Type, c.L.Position, "type %s does not implement __bool__", tn)
	}
}

func (u *Unifier) checkNullable(tn constraint.TypeName, shape constraint.NullableShape, set *constraint.Set, c constraint.Constraint) {
	if !typecontext.IsNullable(tn) {
		u.report.Errorf(diag.Type, c.L.Position, "type %s is not declared nullable", tn)
		return
	}
	set.PushFront(constraint.New(constraint.Type(c.L.Position, tn), shape.Of, "nullable payload"))
}

func (u *Unifier) checkTypeEquality(l, r constraint.TypeName, c constraint.Constraint) {
	if l.Equal(r) {
		return
	}
	switch c.Superset {
	case constraint.Left:
		if u.ctx.Subsumes(l, r) {
			return
		}
	case constraint.Right:
		if u.ctx.Subsumes(r, l) {
			return
		}
	default: // Either
		if u.ctx.Subsumes(l, r) || u.ctx.Subsumes(r, l) {
			return
		}
	}
	u.report.Errorf(diag.Type, c.L.Position, "type mismatch: expected %s, got %s", l, r)
}
