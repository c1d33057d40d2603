// Package constraint defines TypeName, Expected, and Constraint — the
// vocabulary the type context and constraint generator use to describe type
// obligations, and the worklist-ordered Set the unifier solves.
package constraint

import (
	"sort"
	"strings"
)

// TypeName is either a single actual name (a literal plus generic
// arguments) or a union of actual names. Tuple types are a sub-form of
// single with the reserved literal "tuple" and one generic per element.
// Equality is structural; display is stable (union members sorted).
type TypeName struct {
	Literal  string
	Generics []TypeName

	// Union holds the member names of a union type. When non-empty, Literal
	// and Generics are ignored: a TypeName is either a single actual name or
	// a union, never both.
	Union []TypeName
}

// TupleLiteral is the reserved literal marking a tuple TypeName.
const TupleLiteral = "tuple"

// Single builds a non-generic single actual name.
func Single(literal string) TypeName { return TypeName{Literal: literal} }

// Generic builds a single actual name with generic arguments.
func Generic(literal string, args ...TypeName) TypeName {
	return TypeName{Literal: literal, Generics: args}
}

// Tuple builds the reserved tuple sub-form of a single actual name.
func Tuple(elements ...TypeName) TypeName { return Generic(TupleLiteral, elements...) }

// UnionOf builds a union TypeName, deduplicating and sorting members for a
// stable identity.
func UnionOf(members ...TypeName) TypeName {
	seen := map[string]TypeName{}
	for _, m := range members {
		if m.IsUnion() {
			for _, mm := range m.Union {
				seen[mm.String()] = mm
			}
			continue
		}
		seen[m.String()] = m
	}
	if len(seen) == 1 {
		for _, m := range seen {
			return m
		}
	}
	out := make([]TypeName, 0, len(seen))
	for _, m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return TypeName{Union: out}
}

// IsUnion reports whether t is a union of actual names.
func (t TypeName) IsUnion() bool { return len(t.Union) > 0 }

// IsTuple reports whether t is the tuple sub-form.
func (t TypeName) IsTuple() bool { return !t.IsUnion() && t.Literal == TupleLiteral }

// Equal reports structural equality.
func (t TypeName) Equal(o TypeName) bool { return t.String() == o.String() }

// String renders a stable display form: `Name`, `Name<A, B>`, or `A | B`.
func (t TypeName) String() string {
	if t.IsUnion() {
		parts := make([]string, len(t.Union))
		for i, m := range t.Union {
			parts[i] = m.String()
		}
		return strings.Join(parts, " | ")
	}
	if len(t.Generics) == 0 {
		return t.Literal
	}
	parts := make([]string, len(t.Generics))
	for i, g := range t.Generics {
		parts[i] = g.String()
	}
	return t.Literal + "<" + strings.Join(parts, ", ") + ">"
}
