package typecontext

import (
	"github.com/mambac/mambac/constraint"
	"github.com/mambac/mambac/token"
)

// scope is one link in the Environment's identifier chain.
type scope struct {
	bindings map[string]constraint.Expected
	parent   *scope
}

// State carries the ambient obligations that are not identifier bindings:
// the current expected return type, whether we're inside a handle arm, the
// set of error types currently being handled, and a safe-mode flag. Per
// these are conceptually immutable — every mutator below returns a
// new Environment via a functional update rather than mutating in place.
type State struct {
	ExpectReturn *constraint.Expected
	InHandle     bool
	Handling     map[string]bool
	Safe         bool

	// Raised accumulates the error type names actually raised anywhere in
	// the enclosing function's body (including inside nested blocks and
	// handle arms, but not inside a nested function/method, which gets its
	// own map via WithRaises). Unlike Handling, this map is shared by
	// reference across every child of the function's environment rather
	// than copied, so a `raise` nested five blocks deep still lands in the
	// same set the function-level raises-clause check reads back. Nil
	// outside any function (top-level statements can't declare raises).
	Raised map[string]token.Position

	// InPure is set while generating the body of a function/method declared
	// `pure`, so a call to a non-pure free function can be flagged at the
	// call site rather than only after the fact.
	InPure bool
}

// Environment is a chain of scopes mapping identifier → Expected, plus
// ambient State. Scopes chain rather than flatten: a `with ... as
// x` that shadows an outer `x` restores the outer binding once its block
// exits, because the environment simply reverts to its parent scope.
type Environment struct {
	top   *scope
	State State
}

// NewEnvironment starts an empty, top-level environment.
func NewEnvironment() *Environment {
	return &Environment{top: &scope{bindings: map[string]constraint.Expected{}}, State: State{Handling: map[string]bool{}}}
}

// Lookup walks the scope chain outward, returning the nearest binding.
func (e *Environment) Lookup(name string) (constraint.Expected, bool) {
	for s := e.top; s != nil; s = s.parent {
		if v, ok := s.bindings[name]; ok {
			return v, true
		}
	}
	return constraint.Expected{}, false
}

// Child returns a new Environment with a fresh innermost scope chained onto
// e, sharing e's State by value (so further changes to the child's state
// don't retroactively affect e, per the functional-update discipline).
func (e *Environment) Child() *Environment {
	return &Environment{
		top:   &scope{bindings: map[string]constraint.Expected{}, parent: e.top},
		State: e.State.clone(),
	}
}

// Bind adds (or shadows) a binding in the current innermost scope.
func (e *Environment) Bind(name string, exp constraint.Expected) {
	e.top.bindings[name] = exp
}

func (s State) clone() State {
	handling := make(map[string]bool, len(s.Handling))
	for k, v := range s.Handling {
		handling[k] = v
	}
	// Raised is intentionally shared, not copied: every descendant of a
	// function's environment must record into the same set.
	return State{ExpectReturn: s.ExpectReturn, InHandle: s.InHandle, Safe: s.Safe, Handling: handling, Raised: s.Raised, InPure: s.InPure}
}

// WithExpectReturn returns a child environment whose ExpectReturn is set,
// used when entering a function body.
func (e *Environment) WithExpectReturn(exp constraint.Expected) *Environment {
	child := e.Child()
	child.State.ExpectReturn = &exp
	return child
}

// WithRaises returns a child environment carrying a fresh, empty Raised set,
// used when entering a function/method body so the raises-clause coverage
// check at the end of the body sees exactly what that body raised, not
// whatever an enclosing function happened to raise too.
func (e *Environment) WithRaises() *Environment {
	child := e.Child()
	child.State.Raised = map[string]token.Position{}
	return child
}

// WithPure returns a child environment with InPure set, used when entering a
// function/method body declared `pure` so calls within it can be checked
// against the callee's own purity.
func (e *Environment) WithPure(pure bool) *Environment {
	child := e.Child()
	child.State.InPure = pure
	return child
}

// WithHandling returns a child environment marked as inside a handle arm for
// the given error type, used when entering a `handle` arm's body so `retry`
// validates and raises-coverage checks see the right context.
func (e *Environment) WithHandling(errType string) *Environment {
	child := e.Child()
	child.State.InHandle = true
	child.State.Handling[errType] = true
	return child
}
