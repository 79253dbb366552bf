package instance

import (
	"fmt"
	"strings"

	"github.com/manyani/kodkod/ast"
)

// Instance is a total assignment from relations to tuple sets over one
// universe.
type Instance struct {
	universe  *Universe
	relations []*ast.Relation
	tuples    map[*ast.Relation]*TupleSet
	intAtoms  map[int]*TupleSet
	intOrder  []int
}

// NewInstance creates an empty instance over the given universe.
func NewInstance(u *Universe) *Instance {
	return &Instance{
		universe: u,
		tuples:   make(map[*ast.Relation]*TupleSet),
		intAtoms: make(map[int]*TupleSet),
	}
}

// Universe returns the instance's universe.
func (in *Instance) Universe() *Universe { return in.universe }

// Add assigns the given tuples to r, replacing any previous assignment.
func (in *Instance) Add(r *ast.Relation, tuples *TupleSet) {
	if tuples.Universe() != in.universe {
		panic(fmt.Sprintf("instance: tuples for %v are over a different universe", r))
	}
	if tuples.Arity() != r.Arity() {
		panic(fmt.Sprintf("instance: tuple arity %d differs from arity of %v (%d)",
			tuples.Arity(), r, r.Arity()))
	}
	if _, present := in.tuples[r]; !present {
		in.relations = append(in.relations, r)
	}
	in.tuples[r] = tuples.Clone().Unmodifiable()
}

// AddInt records the atom interpreting integer i.
func (in *Instance) AddInt(i int, atom *TupleSet) {
	if atom.Arity() != 1 || atom.Size() != 1 {
		panic(fmt.Sprintf("instance: interpretation of int %d must be a singleton unary set", i))
	}
	if _, present := in.intAtoms[i]; !present {
		in.intOrder = append(in.intOrder, i)
	}
	in.intAtoms[i] = atom.Clone().Unmodifiable()
}

// Tuples returns the tuples assigned to r, or nil if r is not
// interpreted.
func (in *Instance) Tuples(r *ast.Relation) *TupleSet { return in.tuples[r] }

// IntAtom returns the singleton set interpreting integer i, or nil.
func (in *Instance) IntAtom(i int) *TupleSet { return in.intAtoms[i] }

// Ints returns the interpreted integers in insertion order.
func (in *Instance) Ints() []int { return in.intOrder }

// Relations returns the interpreted relations in insertion order. The
// slice is owned by the instance.
func (in *Instance) Relations() []*ast.Relation { return in.relations }

// Clone returns a copy of the instance; tuple sets are immutable and
// shared.
func (in *Instance) Clone() *Instance {
	c := NewInstance(in.universe)
	c.relations = append([]*ast.Relation(nil), in.relations...)
	for r, ts := range in.tuples {
		c.tuples[r] = ts
	}
	c.intOrder = append([]int(nil), in.intOrder...)
	for i, ts := range in.intAtoms {
		c.intAtoms[i] = ts
	}
	return c
}

func (in *Instance) String() string {
	var parts []string
	for _, r := range in.relations {
		parts = append(parts, fmt.Sprintf("%v=%v", r, in.tuples[r]))
	}
	return "instance{" + strings.Join(parts, ", ") + "}"
}
