// Package check walks a checked-but-not-yet-unified AST once and emits the
// flat constraint sets, one set per lexical scope,
// which the unifier later solves independently so that function and method
// bodies can't leak obligations into their callers.
package check

import (
	"fmt"

	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/constraint"
	"github.com/mambac/mambac/diag"
	"github.com/mambac/mambac/token"
	"github.com/mambac/mambac/typecontext"
)

// Generator walks one file's AST and threads a constraint.Builder and
// typecontext.Environment through it. It is deliberately a single pass
// in a single AST walk; there is no separate resolution pass.
type Generator struct {
	ctx     *typecontext.Context
	builder *constraint.Builder
	report  diag.Report
}

// Result is a completed generation: every constraint set produced, keyed by
// the scope they came from, plus the diagnostics (if any) raised while
// generating — an unresolvable identifier, for instance, which is reported
// immediately rather than deferred to the unifier.
type Result struct {
	Sets        []*constraint.Set
	Diagnostics []*diag.Diagnostic
}

// Generate produces the constraint sets for a single file.
func Generate(file ast.Node, ctx *typecontext.Context) Result {
	g := &Generator{ctx: ctx, builder: constraint.NewBuilder()}
	env := typecontext.NewEnvironment()

	f := file.Data.(ast.File)
	for _, decl := range f.Decls {
		g.genDecl(env, decl)
	}
	g.builder.ExitScope(file.Position)

	return Result{Sets: g.builder.Finished(), Diagnostics: g.report.Diagnostics()}
}

func (g *Generator) genDecl(env *typecontext.Environment, n ast.Node) {
	switch n.Kind {
	case ast.KindClassDef:
		g.genClass(env, n)
	case ast.KindFunctionDef:
		g.genFunction(env, n, nil)
	case ast.KindFieldDef:
		g.genFieldInit(env, n)
	}
}

func (g *Generator) genClass(env *typecontext.Environment, n ast.Node) {
	d := n.Data.(ast.ClassDef)
	g.builder.EnterClass(d.Name)
	classEnv := env.Child()
	selfTy := constraint.Single(d.Name)
	classEnv.Bind("self", constraint.Type(n.Position, selfTy))

	for _, member := range d.Body {
		switch member.Kind {
		case ast.KindFunctionDef:
			g.genFunction(classEnv, member, &d.Name)
		case ast.KindFieldDef:
			g.genFieldInit(classEnv, member)
		}
	}
	g.builder.ExitScope(n.Position)
}

func (g *Generator) genFieldInit(env *typecontext.Environment, n ast.Node) {
	d := n.Data.(ast.FieldDef)
	if d.Value.IsZero() {
		return
	}
	valExp := g.genExpr(env, d.Value)
	if !d.Ty.IsZero() {
		g.builder.Require(constraint.Type(n.Position, typeNameOf(d.Ty)), valExp, "field initializer")
	}
}

func (g *Generator) genFunction(env *typecontext.Environment, n ast.Node, inClass *string) {
	d := n.Data.(ast.FunctionDef)
	g.builder.NewScope(inClass != nil)
	fnEnv := env.Child()

	var retExp constraint.Expected
	if !d.Ret.IsZero() {
		retExp = constraint.Type(n.Position, typeNameOf(d.Ret))
	} else {
		retExp = constraint.Type(n.Position, constraint.Single("undefined"))
	}
	fnEnv = fnEnv.WithExpectReturn(retExp)
	fnEnv = fnEnv.WithRaises()
	fnEnv = fnEnv.WithPure(d.Pure)

	for _, a := range d.Args {
		var bound constraint.Expected
		if !a.Ty.IsZero() {
			bound = constraint.Type(a.Ty.Position, typeNameOf(a.Ty))
		} else {
			bound = constraint.ExpressionAny(a.Ty.Position)
		}
		fnEnv.Bind(a.Name, bound)
	}

	for _, stmt := range d.Body {
		g.genStmt(fnEnv, stmt)
	}

	// A raises clause only asserts that every error it names is actually
	// raised somewhere in the body (a superset check on the body's raised
	// set, not an equality against the return type): it documents what the
	// function may raise, it doesn't restrict it to raising only that.
	for _, raiseName := range d.Raises {
		if _, ok := fnEnv.State.Raised[raiseName]; !ok {
			g.report.Errorf(diag.Type, n.Position, "raises clause mentions %q but it is never raised in the body", raiseName)
		}
	}

	g.builder.ExitScope(n.Position)
}

// checkPureCall enforces that a function declared `pure` never calls a
// non-pure free function. Every overload registered for name must itself be
// pure: overload resolution hasn't run yet at generation time, and a single
// impure overload is reason enough to flag the call. Calls to an unresolved
// name are left to the unifier's own error reporting rather than double
// reported here.
func (g *Generator) checkPureCall(env *typecontext.Environment, name string, pos token.Position) {
	if !env.State.InPure {
		return
	}
	fns, diagErr := g.ctx.LookupFunctionArgs(name, pos)
	if diagErr != nil {
		return
	}
	for _, fn := range fns {
		if !fn.Pure {
			g.report.Errorf(diag.Type, pos, "pure function cannot call non-pure function %q", name)
			return
		}
	}
}

// genStmt emits the constraints for one statement (the statement
// bullets: if/while/for/assign/reassign/return/print/raise/with/handle/...).
func (g *Generator) genStmt(env *typecontext.Environment, n ast.Node) {
	switch n.Kind {
	case ast.KindAssign:
		d := n.Data.(ast.Assign)
		valExp := g.genExpr(env, d.Value)
		if !d.Ty.IsZero() {
			g.builder.Require(constraint.Type(n.Position, typeNameOf(d.Ty)), valExp, "assignment")
		}
		env.Bind(d.Name, valExp)

	case ast.KindReassign:
		d := n.Data.(ast.Reassign)
		targetExp := g.genExpr(env, d.Target)
		valExp := g.genExpr(env, d.Value)
		g.builder.Require(targetExp, valExp, "reassignment")

	case ast.KindWhile:
		d := n.Data.(ast.While)
		condExp := g.genExpr(env, d.Cond)
		g.builder.Require(condExp, constraint.Truthy(d.Cond.Position), "while condition")
		for _, s := range d.Body {
			g.genStmt(env, s)
		}

	case ast.KindFor:
		d := n.Data.(ast.For)
		collExp := g.genExpr(env, d.Coll)
		loopVar := constraint.Expr(ast.Node{Kind: ast.KindIdent, Position: n.Position, Data: ast.Ident{Name: d.Var}})
		g.builder.Require(collExp, constraint.Collection(n.Position, loopVar), "for-loop source")
		bodyEnv := env.Child()
		bodyEnv.Bind(d.Var, loopVar)
		for _, s := range d.Body {
			g.genStmt(bodyEnv, s)
		}

	case ast.KindReturn:
		d := n.Data.(ast.Return)
		if env.State.ExpectReturn == nil {
			return
		}
		if d.Value.IsZero() {
			g.builder.Require(*env.State.ExpectReturn, constraint.Type(n.Position, constraint.Single("undefined")), "return")
			return
		}
		valExp := g.genExpr(env, d.Value)
		g.builder.Require(*env.State.ExpectReturn, valExp, "return")

	case ast.KindPrint:
		d := n.Data.(ast.Print)
		valExp := g.genExpr(env, d.Value)
		g.builder.Require(valExp, constraint.Stringy(d.Value.Position), "print argument")

	case ast.KindBreak, ast.KindContinue, ast.KindPass:
		// No constraints.

	case ast.KindRetry:
		if !env.State.InHandle {
			g.report.Errorf(diag.Type, n.Position, "retry is only valid inside a handle arm")
		}

	case ast.KindRaise:
		d := n.Data.(ast.Raise)
		for _, a := range d.Args {
			g.genExpr(env, a)
		}
		if env.State.Raised != nil {
			if _, ok := env.State.Raised[d.ErrType]; !ok {
				env.State.Raised[d.ErrType] = n.Position
			}
		}

	case ast.KindWith:
		d := n.Data.(ast.With)
		resExp := g.genExpr(env, d.Resource)
		bodyEnv := env.Child()
		asExp := constraint.Expr(ast.Node{Kind: ast.KindIdent, Position: n.Position, Data: ast.Ident{Name: d.As}})
		g.builder.Require(resExp, asExp, "with binding")
		bodyEnv.Bind(d.As, resExp)
		for _, s := range d.Body {
			g.genStmt(bodyEnv, s)
		}

	case ast.KindHandle:
		g.genHandle(env, n)

	case ast.KindBlock:
		for _, s := range n.Data.(ast.Block).Statements {
			g.genStmt(env, s)
		}

	case ast.KindClassDef, ast.KindFunctionDef, ast.KindFieldDef:
		g.genDecl(env, n)

	default:
		// A bare expression used as a statement (e.g. a call for effect).
		g.genExpr(env, n)
	}
}

func (g *Generator) genHandle(env *typecontext.Environment, n ast.Node) {
	d := n.Data.(ast.Handle)
	g.genStmtOrExpr(env, d.Body)
	for _, arm := range d.Arms {
		a := arm.Data.(ast.HandleArm)
		armEnv := env.WithHandling(a.ErrType)
		if a.Bind != "" {
			armEnv.Bind(a.Bind, constraint.Type(arm.Position, constraint.Single(a.ErrType)))
		}
		g.genStmtOrExpr(armEnv, a.Body)
	}
}

// genStmtOrExpr handles bodies that may be either a statement or a bare
// expression (handle/with bodies, match arms), dispatching by whether the
// node is one of the statement kinds.
func (g *Generator) genStmtOrExpr(env *typecontext.Environment, n ast.Node) {
	if isStatementKind(n.Kind) {
		g.genStmt(env, n)
		return
	}
	g.genExpr(env, n)
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

// genExpr emits the constraints for an expression and returns the Expected
// that represents its value, almost always constraint.Expr(n) itself — the
// unifier substitutes Expression shapes via the environment/AST as its
// first shape-pair rule.
func (g *Generator) genExpr(env *typecontext.Environment, n ast.Node) constraint.Expected {
	self := constraint.Expr(n)

	switch n.Kind {
	case ast.KindIntLit:
		g.builder.Require(self, constraint.Type(n.Position, constraint.Single("Int")), "int literal")
	case ast.KindRealLit:
		g.builder.Require(self, constraint.Type(n.Position, constraint.Single("Float")), "real literal")
	case ast.KindExpLit:
		g.builder.Require(self, constraint.Type(n.Position, constraint.Single("Float")), "exponential literal")
	case ast.KindStringLit:
		g.builder.Require(self, constraint.Type(n.Position, constraint.Single("String")), "string literal")
	case ast.KindBoolLit:
		g.builder.Require(self, constraint.Truthy(n.Position), "bool literal")
	case ast.KindUndefined:
		g.builder.Require(self, constraint.Type(n.Position, constraint.Single("undefined")), "undefined literal")

	case ast.KindIdent:
		d := n.Data.(ast.Ident)
		if bound, ok := env.Lookup(d.Name); ok {
			g.builder.Require(self, bound, "identifier reference")
		} else {
			g.report.Errorf(diag.Type, n.Position, "undefined variable %q", d.Name)
		}

	case ast.KindTuple:
		d := n.Data.(ast.Tuple)
		for _, e := range d.Elements {
			g.genExpr(env, e)
		}

	case ast.KindList:
		d := n.Data.(ast.List)
		var of constraint.Expected
		for i, e := range d.Elements {
			eExp := g.genExpr(env, e)
			if i == 0 {
				of = eExp
			} else {
				g.builder.Require(of, eExp, "list element")
			}
		}
		if len(d.Elements) == 0 {
			of = constraint.ExpressionAny(n.Position)
		}
		g.builder.Require(self, constraint.Collection(n.Position, of), "list literal")

	case ast.KindSet:
		d := n.Data.(ast.Set)
		var of constraint.Expected
		for i, e := range d.Elements {
			eExp := g.genExpr(env, e)
			if i == 0 {
				of = eExp
			} else {
				g.builder.Require(of, eExp, "set element")
			}
		}
		if len(d.Elements) == 0 {
			of = constraint.ExpressionAny(n.Position)
		}
		g.builder.Require(self, constraint.Collection(n.Position, of), "set literal")

	case ast.KindComprehension:
		d := n.Data.(ast.Comprehension)
		srcExp := g.genExpr(env, d.Source)
		inner := env.Child()
		varExp := constraint.Expr(ast.Node{Kind: ast.KindIdent, Position: d.Source.Position, Data: ast.Ident{Name: d.Var}})
		g.builder.Require(srcExp, constraint.Collection(n.Position, varExp), "comprehension source")
		inner.Bind(d.Var, varExp)
		resExp := g.genExpr(inner, d.Result)
		if !d.Cond.IsZero() {
			condExp := g.genExpr(inner, d.Cond)
			g.builder.Require(condExp, constraint.Truthy(d.Cond.Position), "comprehension filter")
		}
		g.builder.Require(self, constraint.Collection(n.Position, resExp), "comprehension result")

	case ast.KindLambda:
		d := n.Data.(ast.Lambda)
		g.builder.NewScope(false)
		lamEnv := env.Child()
		for _, a := range d.Args {
			var bound constraint.Expected
			if !a.Ty.IsZero() {
				bound = constraint.Type(a.Ty.Position, typeNameOf(a.Ty))
			} else {
				bound = constraint.ExpressionAny(n.Position)
			}
			lamEnv.Bind(a.Name, bound)
		}
		g.genExpr(lamEnv, d.Body)
		g.builder.ExitScope(n.Position)

	case ast.KindCall:
		d := n.Data.(ast.Call)
		argExps := make([]constraint.Expected, len(d.Args))
		for i, a := range d.Args {
			argExps[i] = g.genExpr(env, a)
		}
		if d.Func.Kind == ast.KindIdent {
			name := d.Func.Data.(ast.Ident).Name
			if bound, ok := env.Lookup(name); ok {
				g.builder.Require(bound, constraint.Function(n.Position, constraint.Single(name), argExps), "call")
			} else {
				// Context overload resolution handles this at unify time
				// (otherwise resort to context overload
				// resolution"); we still record the call shape so the
				// unifier has something to resolve against.
				g.checkPureCall(env, name, n.Position)
				g.builder.Require(self, constraint.Function(n.Position, constraint.Single(name), argExps), "call")
			}
		} else {
			funcExp := g.genExpr(env, d.Func)
			g.builder.Require(funcExp, constraint.Function(n.Position, constraint.Single(""), argExps), "call")
		}

	case ast.KindPropertyCall:
		d := n.Data.(ast.PropertyCall)
		recvExp := g.genExpr(env, d.Receiver)
		argExps := make([]constraint.Expected, len(d.Args))
		for i, a := range d.Args {
			argExps[i] = g.genExpr(env, a)
		}
		g.builder.Require(recvExp, constraint.HasFunction(n.Position, constraint.Single(d.Name), argExps), "method call")

	case ast.KindConstructorCall:
		d := n.Data.(ast.ConstructorCall)
		tn := typeNameOf(d.Type)
		argExps := make([]constraint.Expected, 0, len(d.Args)+1)
		selfExp := constraint.Type(n.Position, tn)
		argExps = append(argExps, selfExp)
		for _, a := range d.Args {
			argExps = append(argExps, g.genExpr(env, a))
		}
		g.builder.Require(self, constraint.Function(n.Position, tn, argExps), "constructor call")

	case ast.KindProperty:
		d := n.Data.(ast.Property)
		recvExp := g.genExpr(env, d.Receiver)
		g.builder.Require(recvExp, constraint.HasField(n.Position, constraint.Single(d.Name)), "property access")

	case ast.KindIndex:
		d := n.Data.(ast.Index)
		recvExp := g.genExpr(env, d.Receiver)
		g.genExpr(env, d.Key)
		g.builder.Require(recvExp, constraint.Collection(n.Position, self), "index")

	case ast.KindBinaryOp:
		g.genBinaryOp(env, n)

	case ast.KindUnaryOp:
		d := n.Data.(ast.UnaryOp)
		operandExp := g.genExpr(env, d.Operand)
		if d.Op == "not" {
			g.builder.Require(operandExp, constraint.Truthy(n.Position), "logical not")
		} else {
			g.builder.Require(operandExp, constraint.Implements(n.Position, constraint.Single(opFunctions[d.Op]), []constraint.Expected{operandExp}), "unary operator")
		}

	case ast.KindRange:
		d := n.Data.(ast.Range)
		intTy := constraint.Single("Int")
		g.builder.Require(g.genExpr(env, d.Start), constraint.Type(d.Start.Position, intTy), "range start")
		g.builder.Require(g.genExpr(env, d.End), constraint.Type(d.End.Position, intTy), "range end")
		if !d.Step.IsZero() {
			g.builder.Require(g.genExpr(env, d.Step), constraint.Type(d.Step.Position, intTy), "range step")
		}
		g.builder.Require(self, constraint.Collection(n.Position, constraint.Type(n.Position, intTy)), "range value")

	case ast.KindIn:
		d := n.Data.(ast.In)
		elemExp := g.genExpr(env, d.Elem)
		collExp := g.genExpr(env, d.Coll)
		g.builder.Require(collExp, constraint.Collection(n.Position, elemExp), "in")

	case ast.KindIs:
		d := n.Data.(ast.Is)
		g.genExpr(env, d.Left)
		g.genExpr(env, d.Right)
	case ast.KindIsNot:
		d := n.Data.(ast.IsNot)
		g.genExpr(env, d.Left)
		g.genExpr(env, d.Right)
	case ast.KindIsA:
		// `isa` has no constraint effect beyond recursing (do not
		// add implicit type tests).
		d := n.Data.(ast.IsA)
		g.genExpr(env, d.Left)
		g.genExpr(env, d.Right)
	case ast.KindIsNotA:
		d := n.Data.(ast.IsNotA)
		g.genExpr(env, d.Left)
		g.genExpr(env, d.Right)

	case ast.KindNullCoalesce:
		d := n.Data.(ast.NullCoalesce)
		leftExp := g.genExpr(env, d.Left)
		rightExp := g.genExpr(env, d.Right)
		g.builder.Require(constraint.Nullable(n.Position, leftExp), rightExp, "nullable coalesce")

	case ast.KindTernary:
		d := n.Data.(ast.Ternary)
		condExp := g.genExpr(env, d.Cond)
		g.builder.Require(condExp, constraint.Truthy(d.Cond.Position), "ternary condition")
		thenExp := g.genExpr(env, d.Then)
		elseExp := g.genExpr(env, d.Else)
		// Deliberate simplification: both arms are
		// constrained to the outer expected type if one is set, and are
		// generated in the same environment — branches are not unified
		// against each other directly, only through the shared outer
		// expectation below.
		g.builder.Require(self, thenExp, "ternary then-arm")
		g.builder.Require(self, elseExp, "ternary else-arm")

	case ast.KindMatch:
		d := n.Data.(ast.Match)
		subjExp := g.genExpr(env, d.Subject)
		for _, c := range d.Cases {
			cd := c.Data.(ast.MatchCase)
			if !cd.Cond.IsZero() {
				condExp := g.genExpr(env, cd.Cond)
				g.builder.Require(condExp, subjExp, "match case condition")
			}
			bodyExp := g.genStmtOrExprExp(env, cd.Body)
			g.builder.Require(self, bodyExp, "match case body")
		}

	case ast.KindHandle:
		g.genHandle(env, n)

	case ast.KindWith:
		g.genStmt(env, n)

	default:
		g.report.Errorf(diag.Desugar, n.Position, "constraint generator: unhandled node kind %s", n.Kind)
	}

	return self
}

// genStmtOrExprExp is like genStmtOrExpr but always yields an Expected,
// yielding Type{undefined} if the node is a statement (match arms
// whose body is e.g. `print x` have no sensible value and are only
// constrained against Truthy/undefined by convention of the caller).
func (g *Generator) genStmtOrExprExp(env *typecontext.Environment, n ast.Node) constraint.Expected {
	if isStatementKind(n.Kind) {
		g.genStmt(env, n)
		return constraint.Type(n.Position, constraint.Single("undefined"))
	}
	return g.genExpr(env, n)
}

func (g *Generator) genBinaryOp(env *typecontext.Environment, n ast.Node) {
	d := n.Data.(ast.BinaryOp)

	if logicalOps[d.Op] {
		leftExp := g.genExpr(env, d.Left)
		rightExp := g.genExpr(env, d.Right)
		g.builder.Require(leftExp, constraint.Truthy(d.Left.Position), "logical operand")
		g.builder.Require(rightExp, constraint.Truthy(d.Right.Position), "logical operand")
		return
	}

	if bitwiseOps[d.Op] && (d.Op == "<<" || d.Op == ">>") {
		leftExp := g.genExpr(env, d.Left)
		rightExp := g.genExpr(env, d.Right)
		g.builder.Require(leftExp, constraint.ExpressionAny(d.Left.Position), "shift operand")
		g.builder.Require(rightExp, constraint.Type(d.Right.Position, constraint.Single("Int")), "shift amount")
		return
	}

	leftExp := g.genExpr(env, d.Left)
	rightExp := g.genExpr(env, d.Right)
	g.builder.Require(leftExp, rightExp, fmt.Sprintf("operand of %q", d.Op))
	fn, ok := opFunctions[d.Op]
	if !ok {
		fn = d.Op
	}
	g.builder.Require(leftExp, constraint.Implements(n.Position, constraint.Single(fn), []constraint.Expected{leftExp, rightExp}), "operator dispatch")
}

func typeNameOf(n ast.Node) constraint.TypeName {
	d := n.Data.(ast.TypeNameExpr)
	if len(d.Union) > 0 {
		members := make([]constraint.TypeName, len(d.Union))
		for i, m := range d.Union {
			members[i] = typeNameOf(m)
		}
		return constraint.UnionOf(members...)
	}
	generics := make([]constraint.TypeName, len(d.Generics))
	for i, g := range d.Generics {
		generics[i] = typeNameOf(g)
	}
	return constraint.TypeName{Literal: d.Literal, Generics: generics}
}
