// Package instance defines the finite universe of atoms, tuples and
// tuple sets, the relation bounds given to the solver, and the concrete
// instances it returns.
package instance

import (
	"fmt"
	"strings"
)

// Universe is a finite ordered sequence of distinct atoms.
type Universe struct {
	atoms   []any
	indices map[any]int
	factory *TupleFactory
}

// NewUniverse creates a universe over the given atoms. The sequence must
// be nonempty and free of duplicates.
func NewUniverse(atoms ...any) *Universe {
	if len(atoms) == 0 {
		panic("instance: a universe must contain at least one atom")
	}
	u := &Universe{
		atoms:   make([]any, len(atoms)),
		indices: make(map[any]int, len(atoms)),
	}
	for i, a := range atoms {
		if _, dup := u.indices[a]; dup {
			panic(fmt.Sprintf("instance: duplicate atom %v in universe", a))
		}
		u.atoms[i] = a
		u.indices[a] = i
	}
	u.factory = &TupleFactory{universe: u}
	return u
}

// Size returns the number of atoms.
func (u *Universe) Size() int { return len(u.atoms) }

// Atom returns the i-th atom.
func (u *Universe) Atom(i int) any { return u.atoms[i] }

// Contains reports whether atom is in the universe.
func (u *Universe) Contains(atom any) bool {
	_, ok := u.indices[atom]
	return ok
}

// Index returns the position of atom, panicking if it is not a member.
func (u *Universe) Index(atom any) int {
	i, ok := u.indices[atom]
	if !ok {
		panic(fmt.Sprintf("instance: atom %v is not in the universe", atom))
	}
	return i
}

// Factory returns the tuple factory for this universe.
func (u *Universe) Factory() *TupleFactory { return u.factory }

func (u *Universe) String() string {
	parts := make([]string, len(u.atoms))
	for i, a := range u.atoms {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Tuple is an ordered sequence of atoms from one universe, encoded as an
// integer in base |U| whose digits are atom indices, most significant
// digit first.
type Tuple struct {
	universe *Universe
	arity    int
	index    int
}

// Universe returns the tuple's universe.
func (t Tuple) Universe() *Universe { return t.universe }

// Arity returns the number of atoms in the tuple.
func (t Tuple) Arity() int { return t.arity }

// Index returns the tuple's base-|U| encoding.
func (t Tuple) Index() int { return t.index }

// Atom returns the i-th atom of the tuple.
func (t Tuple) Atom(i int) any {
	if i < 0 || i >= t.arity {
		panic(fmt.Sprintf("instance: atom position %d out of range for arity %d", i, t.arity))
	}
	idx := t.index
	for j := t.arity - 1; j > i; j-- {
		idx /= t.universe.Size()
	}
	return t.universe.Atom(idx % t.universe.Size())
}

// Atoms returns all atoms of the tuple in order.
func (t Tuple) Atoms() []any {
	out := make([]any, t.arity)
	for i := range out {
		out[i] = t.Atom(i)
	}
	return out
}

// Product returns the concatenation of t and other.
func (t Tuple) Product(other Tuple) Tuple {
	if t.universe != other.universe {
		panic("instance: cannot combine tuples over different universes")
	}
	cap := pow(t.universe.Size(), other.arity)
	return Tuple{
		universe: t.universe,
		arity:    t.arity + other.arity,
		index:    t.index*cap + other.index,
	}
}

func (t Tuple) String() string {
	parts := make([]string, t.arity)
	for i := 0; i < t.arity; i++ {
		parts[i] = fmt.Sprintf("%v", t.Atom(i))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TupleFactory constructs tuples and tuple sets over one universe.
type TupleFactory struct {
	universe *Universe
}

// Universe returns the factory's universe.
func (f *TupleFactory) Universe() *Universe { return f.universe }

func pow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		next := out * base
		if base != 0 && next/base != out {
			panic(fmt.Sprintf("instance: tuple space %d^%d overflows", base, exp))
		}
		out = next
	}
	return out
}

// Capacity returns |U|^arity, the number of distinct tuples of the given
// arity.
func (f *TupleFactory) Capacity(arity int) int {
	if arity < 1 {
		panic(fmt.Sprintf("instance: arity must be >= 1, got %d", arity))
	}
	return pow(f.universe.Size(), arity)
}

// Tuple creates the tuple of the given atoms, all of which must be
// universe members.
func (f *TupleFactory) Tuple(atoms ...any) Tuple {
	if len(atoms) == 0 {
		panic("instance: a tuple must contain at least one atom")
	}
	index := 0
	for _, a := range atoms {
		index = index*f.universe.Size() + f.universe.Index(a)
	}
	return Tuple{universe: f.universe, arity: len(atoms), index: index}
}

// TupleFromIndex creates the arity-ary tuple with the given base-|U|
// index.
func (f *TupleFactory) TupleFromIndex(arity, index int) Tuple {
	if index < 0 || index >= f.Capacity(arity) {
		panic(fmt.Sprintf("instance: tuple index %d out of range for arity %d", index, arity))
	}
	return Tuple{universe: f.universe, arity: arity, index: index}
}

// NoneOf creates an empty tuple set of the given arity.
func (f *TupleFactory) NoneOf(arity int) *TupleSet {
	return newTupleSet(f.universe, arity)
}

// AllOf creates the tuple set containing every tuple of the given arity.
func (f *TupleFactory) AllOf(arity int) *TupleSet {
	ts := newTupleSet(f.universe, arity)
	for i := 0; i < ts.capacity(); i++ {
		ts.indices.Add(i)
	}
	return ts
}

// SetOf creates a tuple set containing the given tuples, which must all
// have the same arity.
func (f *TupleFactory) SetOf(first Tuple, rest ...Tuple) *TupleSet {
	ts := newTupleSet(f.universe, first.Arity())
	ts.Add(first)
	for _, t := range rest {
		ts.Add(t)
	}
	return ts
}

// Range creates the set of unary tuples for the atoms with positions
// [from, to] in the universe.
func (f *TupleFactory) Range(from, to int) *TupleSet {
	if from < 0 || to >= f.universe.Size() || from > to {
		panic(fmt.Sprintf("instance: invalid atom range [%d, %d]", from, to))
	}
	ts := newTupleSet(f.universe, 1)
	for i := from; i <= to; i++ {
		ts.indices.Add(i)
	}
	return ts
}
