package constraint

import "github.com/tidwall/btree"

// Set is the ordered double-ended queue of constraints produced per lexical
// scope during constraint generation, plus the list of enclosing class
// names that give it scoping context. It is backed by a btree.Map keyed by
// a monotonically increasing/decreasing sequence number, which gives
// front/back push and front pop in O(log n) with fully deterministic
// iteration order instead of a plain Go map.
type Set struct {
	tree       btree.Map[int64, Constraint]
	next, prev int64

	// ClassNames lists the classes lexically enclosing this set, outermost
	// first; used to resolve bare `self`/private-member access.
	ClassNames []string
}

// NewSet builds an empty constraint set scoped to the given enclosing class
// names.
func NewSet(classNames ...string) *Set {
	return &Set{ClassNames: append([]string{}, classNames...)}
}

// PushBack enqueues c at the tail. Reinsertion (§4.4) always pushes to the
// back, yielding control to constraints that might resolve first.
func (s *Set) PushBack(c Constraint) {
	s.tree.Set(s.next, c)
	s.next++
}

// PushFront enqueues c at the head. Rules that generate new constraints
// from a resolution push to the front, since they are logical consequences
// that should be checked immediately in the same local context. This
// front/back distinction is load-bearing: swapping it causes non-termination
// on constraint graphs with cycles through HasField/HasFunction.
func (s *Set) PushFront(c Constraint) {
	s.prev--
	s.tree.Set(s.prev, c)
}

// PopFront removes and returns the head constraint. ok is false if the set
// is empty.
func (s *Set) PopFront() (c Constraint, ok bool) {
	it := s.tree.Iter()
	if !it.First() {
		return Constraint{}, false
	}
	k, v := it.Key(), it.Value()
	s.tree.Delete(k)
	return v, true
}

// Len reports the number of constraints still in the queue.
func (s *Set) Len() int { return s.tree.Len() }

// Empty reports whether the queue has been fully discharged. Unification on
// a set that is initially empty succeeds trivially.
func (s *Set) Empty() bool { return s.tree.Len() == 0 }

// Append composes two sets in order: all of other's constraints are pushed
// to the back of s, in their original order. Sets compose this way when
// nested scopes are flattened back into their enclosing scope.
func (s *Set) Append(other *Set) {
	for _, c := range other.Snapshot() {
		s.PushBack(c)
	}
}

// Snapshot returns the queue's current contents in order, without mutating
// it. Used for display and for the property test that appending an `X ≡ X`
// constraint never changes satisfiability.
func (s *Set) Snapshot() []Constraint {
	out := make([]Constraint, 0, s.tree.Len())
	s.tree.Scan(func(_ int64, c Constraint) bool {
		out = append(out, c)
		return true
	})
	return out
}
