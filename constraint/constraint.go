package constraint

import "fmt"

// Superset states which side of a constraint is the upper bound during
// subsumption checks; defaults to Left.
type Superset int

const (
	Left Superset = iota
	Right
	Either
)

// Constraint is a single type obligation between two Expecteds.
type Constraint struct {
	L, R     Expected
	Message  string
	Superset Superset

	// IsFlag marks a constraint that has been reinserted once by the
	// unifier. Reinsertion is idempotent: a constraint may acquire the flag
	// bit at most once; attempting to reinsert an already-flagged
	// constraint is a unification failure.
	IsFlag bool

	// IsSub marks a subsumption (superset) check rather than a strict
	// equality check.
	IsSub bool
}

// New builds an unflagged equality constraint.
func New(l, r Expected, message string) Constraint {
	return Constraint{L: l, R: r, Message: message, Superset: Left}
}

// Sub builds a subsumption constraint with the given superset side.
func Sub(l, r Expected, superset Superset, message string) Constraint {
	return Constraint{L: l, R: r, Message: message, Superset: superset, IsSub: true}
}

// Flagged returns a copy of c with IsFlag set, used by the unifier's
// reinsertion rule.
func (c Constraint) Flagged() Constraint {
	c.IsFlag = true
	return c
}

// Discharged reports whether the constraint is trivially satisfied: equal
// shapes are always discharged without side effects.
func (c Constraint) Discharged() bool { return c.L.Equal(c.R) }

func (c Constraint) String() string {
	eq := "="
	if c.L.IsType() || c.R.IsType() {
		eq = ">="
	}
	flag := ""
	if c.IsFlag {
		flag = "(flagged) "
	}
	msg := ""
	if c.Message != "" {
		msg = fmt.Sprintf("%q | ", c.Message)
	}
	return fmt.Sprintf("%s%s%s %s %s", msg, flag, c.L, eq, c.R)
}
