package desugar

import (
	"github.com/mambac/mambac/ast"
	"github.com/mambac/mambac/pyast"
	"github.com/mambac/mambac/token"
)

// class lowers a class declaration. Per the reordering rule, the body is
// re-emitted as: field declarations first (so Python's class-body execution
// binds them before any method is defined), then the constructor
// (synthesized from inline arguments if the class declared none, or the
// explicit one with parent super calls prepended), then the remaining
// methods in source order.
func (d *Desugarer) class(n ast.Node) pyast.Node {
	c := n.Data.(ast.ClassDef)

	var fields []ast.Node
	var methods []ast.Node
	var explicitInit ast.Node
	for _, member := range c.Body {
		switch member.Kind {
		case ast.KindFieldDef:
			fields = append(fields, member)
		case ast.KindFunctionDef:
			fd := member.Data.(ast.FunctionDef)
			if fd.Name == "__init__" {
				explicitInit = member
				continue
			}
			methods = append(methods, member)
		}
	}

	bases := make([]string, len(c.Parents))
	for i, p := range c.Parents {
		bases[i] = p.Name
	}

	var body []pyast.Node
	for _, f := range fields {
		body = append(body, d.topLevelField(f))
	}

	if !explicitInit.IsZero() {
		body = append(body, d.prependSuperInit(explicitInit, c.Parents))
	} else if len(c.Args) > 0 || len(c.Parents) > 0 {
		body = append(body, d.synthesizeInit(n.Position, c))
	}

	for _, m := range methods {
		body = append(body, d.function(m, true))
	}

	return pyast.Node{
		Kind: pyast.KindClassDef, Position: n.Position,
		Data: pyast.ClassDef{Name: c.Name, Bases: bases, Body: body},
	}
}

// synthesizeInit builds `__init__` for a class with inline constructor
// arguments and no explicit one: parameters are `self` followed by the
// inline arguments only; a parent argument that is not also an inline
// argument is not added as a parameter. The body calls each parent's
// `super().__init__` in declaration order then assigns each non-parent
// argument to `self.`.
func (d *Desugarer) synthesizeInit(pos token.Position, c ast.ClassDef) pyast.Node {
	args := []pyast.Arg{{Name: "self"}}
	for _, a := range c.Args {
		args = append(args, d.arg(a))
	}

	owned := parentArgNames(c.Parents)

	var body []pyast.Node
	for _, parent := range c.Parents {
		body = append(body, d.superInitCall(pos, parent))
	}
	for _, a := range c.Args {
		if owned[a.Name] {
			continue
		}
		body = append(body, pyast.Node{
			Kind: pyast.KindAttrAssign, Position: pos,
			Data: pyast.AttrAssign{
				Receiver: selfIdent(pos),
				Name:     a.Name,
				Value:    pyast.Node{Kind: pyast.KindIdent, Position: pos, Data: pyast.Ident{Name: a.Name}},
			},
		})
	}

	return pyast.Node{
		Kind: pyast.KindFunctionDef, Position: pos,
		Data: pyast.FunctionDef{Name: "__init__", Args: args, Body: body, IsInit: true},
	}
}

// prependSuperInit lowers an explicit constructor, prepending one
// `super().__init__(...)` call per parent ahead of the written body when the
// class has parents.
func (d *Desugarer) prependSuperInit(n ast.Node, parents []ast.ParentRef) pyast.Node {
	fd := n.Data.(ast.FunctionDef)
	args := make([]pyast.Arg, 0, len(fd.Args)+1)
	args = append(args, pyast.Arg{Name: "self"})
	for _, a := range fd.Args {
		args = append(args, d.arg(a))
	}

	var body []pyast.Node
	for _, parent := range parents {
		body = append(body, d.superInitCall(n.Position, parent))
	}
	for _, s := range fd.Body {
		body = append(body, d.stmt(s))
	}

	return pyast.Node{
		Kind: pyast.KindFunctionDef, Position: n.Position,
		Data: pyast.FunctionDef{Name: "__init__", Args: args, Body: body, IsInit: true},
	}
}

func (d *Desugarer) superInitCall(pos token.Position, parent ast.ParentRef) pyast.Node {
	args := make([]pyast.Node, len(parent.Args))
	for i, a := range parent.Args {
		args[i] = d.expr(a)
	}
	superCall := pyast.Node{Kind: pyast.KindCall, Position: pos, Data: pyast.Call{
		Func: pyast.Node{Kind: pyast.KindIdent, Position: pos, Data: pyast.Ident{Name: "super"}},
	}}
	initAttr := pyast.Node{Kind: pyast.KindAttribute, Position: pos, Data: pyast.Attribute{Receiver: superCall, Name: "__init__"}}
	call := pyast.Node{Kind: pyast.KindCall, Position: pos, Data: pyast.Call{Func: initAttr, Args: args}}
	return pyast.Node{Kind: pyast.KindExprStmt, Position: pos, Data: pyast.ExprStmt{Value: call}}
}

// parentArgNames returns the inline constructor argument names forwarded
// verbatim (as bare identifiers) to a parent's constructor call — these are
// owned by the parent, so the synthesized constructor must not also assign
// them to self itself.
func parentArgNames(parents []ast.ParentRef) map[string]bool {
	owned := map[string]bool{}
	for _, parent := range parents {
		for _, a := range parent.Args {
			if a.Kind == ast.KindIdent {
				owned[a.Data.(ast.Ident).Name] = true
			}
		}
	}
	return owned
}

func selfIdent(pos token.Position) pyast.Node {
	return pyast.Node{Kind: pyast.KindIdent, Position: pos, Data: pyast.Ident{Name: "self"}}
}

func (d *Desugarer) arg(a ast.FunctionArg) pyast.Arg {
	out := pyast.Arg{Name: a.Name, Vararg: a.Vararg}
	if a.HasDefault {
		out.HasDefault = true
		out.Default = d.expr(a.Default)
	}
	return out
}
