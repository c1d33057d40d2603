// Package typecontext builds and queries the Context: the resolved table of
// classes and functions the constraint generator and unifier consult, plus
// the Environment used to track identifier bindings and ambient state while
// walking a function or method body.
package typecontext

import (
	"github.com/mambac/mambac/constraint"
	"github.com/mambac/mambac/token"
)

// Field is a resolved class member variable.
type Field struct {
	Name     string
	Ty       *constraint.TypeName // nil means untyped/inferred
	Mutable  bool
	Private  bool
	InClass  string // the class that declared this field (for shadowing/visibility)
}

// FunctionArg is a resolved function/method parameter.
type FunctionArg struct {
	Name       string
	Ty         *constraint.TypeName
	HasDefault bool
	Vararg     bool
	Mutable    bool
}

// Function is a resolved function or method signature.
type Function struct {
	Name    constraint.TypeName
	Args    []FunctionArg
	Ret     *constraint.TypeName
	Raises  []constraint.TypeName
	Private bool
	Pure    bool
	InClass string
}

// Arity reports the function's required-vs-total parameter count, used by
// overload resolution's arity check.
func (f Function) Arity() (min, max int, vararg bool) {
	for _, a := range f.Args {
		if a.Vararg {
			vararg = true
			continue
		}
		max++
		if !a.HasDefault {
			min++
		}
	}
	return
}

// layer is one ancestor's contribution to a Class's flattened member
// tables: fields/functions originating from one class in the inheritance
// chain, stored in declaration order.
type layer struct {
	fields    []Field
	functions []Function
}

// Class is a resolved, concrete class: generic parameters already
// substituted, ancestors already resolved and inlined. Fields/Functions are
// stored self-layer first, then each ancestor's layer outward, which
// preserves shadowing order and gives O(1) "nearest definition" lookup
// without a tree walk per query.
type Class struct {
	Name      constraint.TypeName
	Concrete  bool
	IsPyType  bool
	Args      []FunctionArg
	Parents   []constraint.TypeName
	layers    []layer
	Position  token.Position
}

// PushLayer appends a layer (self first, then each ancestor outward).
func (c *Class) PushLayer(fields []Field, functions []Function) {
	c.layers = append(c.layers, layer{fields: fields, functions: functions})
}

// Field looks up a field by nearest-definition order across layers.
func (c *Class) Field(name string) (Field, bool) {
	for _, l := range c.layers {
		for _, f := range l.fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return Field{}, false
}

// Functions returns every overload of name, nearest layer first, used by
// overload resolution.
func (c *Class) Functions(name string) []Function {
	var out []Function
	for _, l := range c.layers {
		for _, fn := range l.functions {
			if fn.Name.Literal == name {
				out = append(out, fn)
			}
		}
	}
	return out
}

// AllFields returns every field across every layer, nearest first.
func (c *Class) AllFields() []Field {
	var out []Field
	for _, l := range c.layers {
		out = append(out, l.fields...)
	}
	return out
}
