package typecontext

import (
	"fmt"

	"github.com/mambac/mambac/constraint"
	"github.com/mambac/mambac/diag"
	"github.com/mambac/mambac/token"
)

// ResolveField looks up a field by name on the class named by tn, honoring
// the lookup contract: failures enumerate available alternatives.
func (c *Context) ResolveField(tn constraint.TypeName, name string, pos token.Position) (Field, *diag.Diagnostic) {
	cls, err := c.Lookup(tn.Literal, pos)
	if err != nil {
		return Field{}, err
	}
	if f, ok := cls.Field(name); ok {
		return f, nil
	}
	var known []string
	for _, f := range cls.AllFields() {
		known = append(known, f.Name)
	}
	return Field{}, &diag.Diagnostic{
		Kind: diag.Context, Level: diag.Error, Position: pos,
		Message: fmt.Sprintf("%s has no field %q; known fields: %v", tn, name, known),
	}
}

// ResolveMethod returns every overload of name defined on (or inherited by)
// the class named by tn.
func (c *Context) ResolveMethod(tn constraint.TypeName, name string, pos token.Position) ([]Function, *diag.Diagnostic) {
	cls, err := c.Lookup(tn.Literal, pos)
	if err != nil {
		return nil, err
	}
	fns := cls.Functions(name)
	if len(fns) == 0 {
		return nil, &diag.Diagnostic{
			Kind: diag.Context, Level: diag.Error, Position: pos,
			Message: fmt.Sprintf("%s has no function %q", tn, name),
		}
	}
	return fns, nil
}

// IsPrivateAccess reports whether calling/accessing member on tn from
// inside the given enclosing class names would violate member visibility:
// private members are only resolvable from within the declaring class's
// own methods.
func IsPrivateAccess(privateInClass string, private bool, enclosing []string) bool {
	if !private {
		return false
	}
	for _, c := range enclosing {
		if c == privateInClass {
			return false
		}
	}
	return true
}

// IsStringy reports whether the class named by tn defines a `str` method
// (i.e. has a Python __str__), used by the unifier's Type vs Stringy rule.
func (c *Context) IsStringy(tn constraint.TypeName, pos token.Position) bool {
	if tn.Literal == "String" || tn.Literal == "Int" || tn.Literal == "Float" || tn.Literal == "Bool" || tn.Literal == "Complex" {
		return true
	}
	cls, err := c.Lookup(tn.Literal, pos)
	if err != nil {
		return false
	}
	return len(cls.Functions("str")) > 0
}

// IsTruthy reports whether the class named by tn can be evaluated in a
// boolean context (defines a `bool` method, or is one of the primitives
// that's always truthy-capable).
func (c *Context) IsTruthy(tn constraint.TypeName, pos token.Position) bool {
	switch tn.Literal {
	case "Bool", "Int", "Float", "String", "List", "Set", "Range", "Complex":
		return true
	}
	cls, err := c.Lookup(tn.Literal, pos)
	if err != nil {
		return false
	}
	return len(cls.Functions("bool")) > 0
}

// IsNullable reports whether tn is declared nullable: a union that
// includes `undefined`.
func IsNullable(tn constraint.TypeName) bool {
	if !tn.IsUnion() {
		return tn.Literal == "undefined"
	}
	for _, m := range tn.Union {
		if m.Literal == "undefined" {
			return true
		}
	}
	return false
}

// Subsumes reports whether sub satisfies isa super: identical names, or
// super appears in sub's transitive parent closure, or sub is a member of a
// union super.
func (c *Context) Subsumes(super, sub constraint.TypeName) bool {
	if super.Equal(sub) {
		return true
	}
	if super.IsUnion() {
		for _, m := range super.Union {
			if c.Subsumes(m, sub) {
				return true
			}
		}
		return false
	}
	cls, ok := c.classes[sub.Literal]
	if !ok {
		return false
	}
	for _, p := range cls.Parents {
		if c.Subsumes(super, p) {
			return true
		}
	}
	return false
}
