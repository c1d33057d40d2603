package constraint

import "github.com/mambac/mambac/token"

// Builder is the scope stack the constraint generator drives: NewScope
// pushes a pending layer, ExitScope pops it onto the finished pile. Finished
// sets are unified independently, which is what keeps function and method
// scopes from leaking constraints into their callers.
type Builder struct {
	pending  []*Set
	finished []*Set
}

// NewBuilder starts a builder with one top-level (file) scope.
func NewBuilder() *Builder {
	b := &Builder{}
	b.NewScope(false)
	return b
}

// NewScope pushes a new pending constraint set. If inherit is true, the new
// scope starts with the enclosing scope's class-name context (used when
// entering a method body, so private-member checks still see the owning
// class).
func (b *Builder) NewScope(inherit bool) {
	var classNames []string
	if inherit && len(b.pending) > 0 {
		classNames = b.pending[len(b.pending)-1].ClassNames
	}
	b.pending = append(b.pending, NewSet(classNames...))
}

// EnterClass pushes a new pending scope with name appended to the enclosing
// class-name context, for generating a class body's own member constraints.
func (b *Builder) EnterClass(name string) {
	var classNames []string
	if len(b.pending) > 0 {
		classNames = append(classNames, b.pending[len(b.pending)-1].ClassNames...)
	}
	classNames = append(classNames, name)
	b.pending = append(b.pending, NewSet(classNames...))
}

// Add pushes a constraint onto the current (innermost pending) scope.
func (b *Builder) Add(c Constraint) {
	b.top().PushBack(c)
}

// Require is a convenience for the common case: enqueue an equality
// constraint between l and r.
func (b *Builder) Require(l, r Expected, message string) {
	b.Add(New(l, r, message))
}

func (b *Builder) top() *Set { return b.pending[len(b.pending)-1] }

// ExitScope pops the innermost pending scope onto the finished pile and
// returns it. pos is recorded only for diagnostic purposes by callers that
// want to report "empty block" style errors; the builder itself does not
// use it.
func (b *Builder) ExitScope(_ token.Position) *Set {
	n := len(b.pending) - 1
	s := b.pending[n]
	b.pending = b.pending[:n]
	b.finished = append(b.finished, s)
	return s
}

// Finished returns every completed constraint set produced so far, in the
// order they were exited. The top-level (file) scope must be exited exactly
// once by the caller once generation completes.
func (b *Builder) Finished() []*Set { return b.finished }
