package unify

import (
	"fmt"
	"strings"

	"github.com/mambac/mambac/constraint"
	"github.com/mambac/mambac/diag"
	"github.com/mambac/mambac/typecontext"
)

// resolveCall handles a constructor/method-style call where the callee's
// name is already known to be a type (a Function resolved against a Type pushes
// one constraint per parameter and one for the return").
func (u *Unifier) resolveCall(set *constraint.Set, c constraint.Constraint, fn constraint.FunctionShape, ty constraint.TypeName, pos constraint.Expected) {
	candidates, err := u.ctx.ResolveMethod(ty, "__init__", pos.Position)
	if err != nil || len(candidates) == 0 {
		// No explicit constructor: treat the class's own declared args as
		// the sole overload (desugar synthesizes __init__ later; the
		// unifier still needs something to check against now).
		cls, lerr := u.ctx.Lookup(ty.Literal, pos.Position)
		if lerr != nil {
			u.report.Add(lerr)
			return
		}
		args := make([]typecontext.FunctionArg, len(cls.Args))
		copy(args, cls.Args)
		candidates = []typecontext.Function{{Name: ty, Args: args, Ret: &ty}}
	}
	u.dispatchOverload(set, c, candidates, fn.Args, pos)
}

// resolveFreeCall handles a call whose callee wasn't found bound in the
// environment: it resorts to context overload
// resolution", realized here rather than in the generator since the
// unifier is what owns the context.
func (u *Unifier) resolveFreeCall(set *constraint.Set, c constraint.Constraint, fn constraint.FunctionShape, pos constraint.Expected) {
	candidates, err := u.ctx.LookupFunctionArgs(fn.Name.Literal, pos.Position)
	if err != nil {
		u.report.Add(err)
		return
	}
	u.dispatchOverload(set, c, candidates, fn.Args, pos)
}

// dispatchOverload implements overload resolution: zip each
// candidate's formals against the actuals, reporting arity mismatches, and
// for the (or each matching) candidate push one Type-vs-Expression
// constraint per parameter to the front, plus one for the return type.
func (u *Unifier) dispatchOverload(set *constraint.Set, c constraint.Constraint, candidates []typecontext.Function, actuals []constraint.Expected, pos constraint.Expected) {
	var best *typecontext.Function
	for i := range candidates {
		cand := candidates[i]
		min, max, vararg := cand.Arity()
		if len(actuals) < min || (!vararg && len(actuals) > max) {
			continue
		}
		best = &cand
		break
	}
	if best == nil {
		u.report.Errorf(diag.Type, pos.Position, "no overload of %q accepts %d argument(s)", candidates[0].Name, len(actuals))
		return
	}
	for i, actual := range actuals {
		if i >= len(best.Args) {
			if !best.Args[len(best.Args)-1].Vararg {
				u.report.Errorf(diag.Type, pos.Position, "too many arguments to %q", best.Name)
				return
			}
			continue
		}
		formal := best.Args[i]
		if formal.Ty == nil {
			continue
		}
		set.PushFront(constraint.New(constraint.Type(pos.Position, *formal.Ty), actual, fmt.Sprintf("argument %d of %s", i+1, best.Name)))
	}
	if best.Ret != nil {
		set.PushFront(constraint.New(c.L, constraint.Type(pos.Position, *best.Ret), "return type"))
	}
}

// resolveAccess handles `Access{entity,name}` by resolving it as a field
// access through the context and pushing an equality on the field's type
// (Access is resolved the same way Function is).
func (u *Unifier) resolveAccess(set *constraint.Set, c constraint.Constraint, a constraint.AccessShape, pos constraint.Expected) {
	entity := u.resolve(a.Entity)
	if entity.Kind != constraint.ShapeType {
		// Entity not yet resolved to a concrete type: requeue behind
		// whatever might resolve it, same as any other stuck constraint.
		u.reinsert(set, c)
		return
	}
	ty := entity.Data.(constraint.TypeShape).Name
	f, err := u.ctx.ResolveField(ty, a.Name.Literal, pos.Position)
	if err != nil {
		u.report.Add(err)
		return
	}
	if f.Ty != nil {
		set.PushFront(constraint.New(pos, constraint.Type(pos.Position, *f.Ty), "access result"))
	}
}

// resolveHasField handles `HasField{name}` against a (now-resolved) Type,
// checking field existence and privacy (SPEC_FULL §3 supplement), then
// equating the probe's position-holder with the field's declared type.
func (u *Unifier) resolveHasField(set *constraint.Set, l, r constraint.Expected, c constraint.Constraint) {
	tyExp, probe := l, r
	if l.Kind == constraint.ShapeHasField {
		tyExp, probe = r, l
	}
	if tyExp.Kind != constraint.ShapeType {
		u.reinsert(set, c)
		return
	}
	ty := tyExp.Data.(constraint.TypeShape).Name
	name := probe.Data.(constraint.HasFieldShape).Name
	f, err := u.ctx.ResolveField(ty, name.Literal, c.L.Position)
	if err != nil {
		u.report.Add(err)
		return
	}
	if typecontext.IsPrivateAccess(f.InClass, f.Private, currentClassScope(set)) {
		u.report.Errorf(diag.Context, c.L.Position, "field %q is private to %s", name, f.InClass)
		return
	}
	if f.Ty != nil {
		set.PushFront(constraint.New(probe, constraint.Type(c.L.Position, *f.Ty), "field type"))
	}
}

// resolveHasFunction handles `HasFunction{name,args}` against a Type:
// overload-resolve the method the same way a free call is resolved.
func (u *Unifier) resolveHasFunction(set *constraint.Set, l, r constraint.Expected, c constraint.Constraint) {
	tyExp, probe := l, r
	if l.Kind == constraint.ShapeHasFunction {
		tyExp, probe = r, l
	}
	if tyExp.Kind != constraint.ShapeType {
		u.reinsert(set, c)
		return
	}
	ty := tyExp.Data.(constraint.TypeShape).Name
	hf := probe.Data.(constraint.HasFunctionShape)
	candidates, err := u.ctx.ResolveMethod(ty, hf.Name.Literal, c.L.Position)
	if err != nil {
		u.report.Add(err)
		return
	}
	if len(candidates) > 0 && typecontext.IsPrivateAccess(candidates[0].InClass, candidates[0].Private, currentClassScope(set)) {
		u.report.Errorf(diag.Context, c.L.Position, "function %q is private to %s", hf.Name, candidates[0].InClass)
		return
	}
	u.dispatchOverload(set, c, candidates, hf.Args, probe)
}

// resolveImplements handles `Implements{op,[args]}` — the operator dispatch
// table — by overload-resolving `op` as a method on the
// first argument's type. A failed resolution here is exactly scenario 6 of
// "a + b" where a:String, b:Int fails with "no add(String, Int)".
func (u *Unifier) resolveImplements(set *constraint.Set, l, r constraint.Expected, c constraint.Constraint) {
	tyExp, probe := l, r
	if l.Kind == constraint.ShapeImplements {
		tyExp, probe = r, l
	}
	if tyExp.Kind != constraint.ShapeType {
		u.reinsert(set, c)
		return
	}
	ty := tyExp.Data.(constraint.TypeShape).Name
	impl := probe.Data.(constraint.ImplementsShape)
	candidates, err := u.ctx.ResolveMethod(ty, impl.Name.Literal, c.L.Position)
	if err != nil {
		argTys := make([]string, len(impl.Args))
		for i, a := range impl.Args {
			argTys[i] = describeArg(u, a)
		}
		u.report.Errorf(diag.Type, c.L.Position, "no %s(%s)", impl.Name, strings.Join(argTys, ", "))
		return
	}
	// impl.Args starts with the receiver itself; only the rest are actuals.
	actuals := impl.Args
	if len(actuals) > 0 {
		actuals = actuals[1:]
	}
	u.dispatchOverload(set, c, candidates, actuals, probe)
}

func describeArg(u *Unifier, a constraint.Expected) string {
	r := u.resolve(a)
	if r.Kind == constraint.ShapeType {
		return r.Data.(constraint.TypeShape).Name.String()
	}
	return "?"
}

// currentClassScope is a placeholder hook for resolving the enclosing-class
// context of the constraint currently being solved. Constraint sets carry
// ClassNames, but individual constraints popped off the queue
// don't retain which set they came from once merged; Solve is called once
// per set, so this always reflects the set being drained.
func currentClassScope(set *constraint.Set) []string {
	return set.ClassNames
}
