package instance

import (
	"fmt"
	"strings"

	"github.com/manyani/kodkod/ints"
)

// TupleSet is an ordered set of tuples of uniform arity over one
// universe, backed by a bit set of tuple indices.
type TupleSet struct {
	universe *Universe
	arity    int
	indices  *ints.BitSet
	frozen   bool
}

func newTupleSet(u *Universe, arity int) *TupleSet {
	if arity < 1 {
		panic(fmt.Sprintf("instance: arity must be >= 1, got %d", arity))
	}
	return &TupleSet{
		universe: u,
		arity:    arity,
		indices:  ints.NewBitSet(pow(u.Size(), arity)),
	}
}

// Universe returns the set's universe.
func (ts *TupleSet) Universe() *Universe { return ts.universe }

// Arity returns the arity of all tuples in the set.
func (ts *TupleSet) Arity() int { return ts.arity }

// Size returns the number of tuples.
func (ts *TupleSet) Size() int { return ts.indices.Size() }

// IsEmpty reports whether the set has no tuples.
func (ts *TupleSet) IsEmpty() bool { return ts.indices.IsEmpty() }

func (ts *TupleSet) capacity() int { return ts.indices.Capacity() }

func (ts *TupleSet) mutable() {
	if ts.frozen {
		panic("instance: cannot modify an unmodifiable tuple set")
	}
}

func (ts *TupleSet) compatible(t Tuple) {
	if t.Universe() != ts.universe {
		panic("instance: tuple universe differs from tuple set universe")
	}
	if t.Arity() != ts.arity {
		panic(fmt.Sprintf("instance: tuple arity %d differs from set arity %d", t.Arity(), ts.arity))
	}
}

func (ts *TupleSet) compatibleSet(other *TupleSet) {
	if other.universe != ts.universe {
		panic("instance: tuple sets over different universes")
	}
	if other.arity != ts.arity {
		panic(fmt.Sprintf("instance: tuple set arity %d differs from %d", other.arity, ts.arity))
	}
}

// Add inserts t and reports whether the set changed.
func (ts *TupleSet) Add(t Tuple) bool {
	ts.mutable()
	ts.compatible(t)
	return ts.indices.Add(t.Index())
}

// AddIndex inserts the tuple with the given index.
func (ts *TupleSet) AddIndex(index int) bool {
	ts.mutable()
	if index < 0 || index >= ts.capacity() {
		panic(fmt.Sprintf("instance: tuple index %d out of range for arity %d", index, ts.arity))
	}
	return ts.indices.Add(index)
}

// Remove deletes t and reports whether the set changed.
func (ts *TupleSet) Remove(t Tuple) bool {
	ts.mutable()
	ts.compatible(t)
	return ts.indices.Remove(t.Index())
}

// Contains reports whether t is a member.
func (ts *TupleSet) Contains(t Tuple) bool {
	ts.compatible(t)
	return ts.indices.Contains(t.Index())
}

// ContainsIndex reports whether the tuple with the given index is a
// member.
func (ts *TupleSet) ContainsIndex(index int) bool {
	return ts.indices.Contains(index)
}

// AddAll unions other into ts and reports whether ts changed.
func (ts *TupleSet) AddAll(other *TupleSet) bool {
	ts.mutable()
	ts.compatibleSet(other)
	return ts.indices.AddAll(other.indices)
}

// RetainAll intersects ts with other and reports whether ts changed.
func (ts *TupleSet) RetainAll(other *TupleSet) bool {
	ts.mutable()
	ts.compatibleSet(other)
	return ts.indices.RetainAll(other.indices)
}

// RemoveAll subtracts other from ts and reports whether ts changed.
func (ts *TupleSet) RemoveAll(other *TupleSet) bool {
	ts.mutable()
	ts.compatibleSet(other)
	return ts.indices.RemoveAll(other.indices)
}

// ContainsAll reports whether every tuple of other is in ts.
func (ts *TupleSet) ContainsAll(other *TupleSet) bool {
	ts.compatibleSet(other)
	return ts.indices.ContainsAll(other.indices)
}

// Equals reports whether ts and other contain the same tuples.
func (ts *TupleSet) Equals(other *TupleSet) bool {
	if other == nil || ts.universe != other.universe || ts.arity != other.arity {
		return false
	}
	return ts.indices.Equals(other.indices)
}

// Equal is an alias for Equals, satisfying go-cmp's Equal convention.
func (ts *TupleSet) Equal(other *TupleSet) bool { return ts.Equals(other) }

// Product returns the cross product of ts and other; the result has
// arity ts.Arity() + other.Arity().
func (ts *TupleSet) Product(other *TupleSet) *TupleSet {
	if other.universe != ts.universe {
		panic("instance: tuple sets over different universes")
	}
	out := newTupleSet(ts.universe, ts.arity+other.arity)
	otherCap := other.capacity()
	ts.indices.ForEach(func(i int) {
		other.indices.ForEach(func(j int) {
			out.indices.Add(i*otherCap + j)
		})
	})
	return out
}

// ForEach calls fn with each tuple in ascending index order.
func (ts *TupleSet) ForEach(fn func(t Tuple)) {
	ts.indices.ForEach(func(i int) {
		fn(Tuple{universe: ts.universe, arity: ts.arity, index: i})
	})
}

// ForEachIndex calls fn with each tuple index in ascending order.
func (ts *TupleSet) ForEachIndex(fn func(index int)) {
	ts.indices.ForEach(fn)
}

// Indices returns the tuple indices in ascending order.
func (ts *TupleSet) Indices() []int { return ts.indices.Slice() }

// Clone returns a modifiable copy of ts.
func (ts *TupleSet) Clone() *TupleSet {
	return &TupleSet{universe: ts.universe, arity: ts.arity, indices: ts.indices.Clone()}
}

// Unmodifiable returns a read-only view of ts; mutating the view
// panics. The view observes later changes to ts.
func (ts *TupleSet) Unmodifiable() *TupleSet {
	if ts.frozen {
		return ts
	}
	return &TupleSet{universe: ts.universe, arity: ts.arity, indices: ts.indices, frozen: true}
}

func (ts *TupleSet) String() string {
	var parts []string
	ts.ForEach(func(t Tuple) { parts = append(parts, t.String()) })
	return "{" + strings.Join(parts, ", ") + "}"
}
