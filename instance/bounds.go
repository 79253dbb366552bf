package instance

import (
	"fmt"
	"sort"

	"github.com/manyani/kodkod/ast"
)

// Bounds maps each relation to a lower and an upper tuple set, and each
// integer to a singleton unary tuple set naming its atom. Relations are
// remembered in insertion order; translation depends on that order.
type Bounds struct {
	universe  *Universe
	relations []*ast.Relation
	lowers    map[*ast.Relation]*TupleSet
	uppers    map[*ast.Relation]*TupleSet
	intOrder  []int
	intBounds map[int]*TupleSet
	frozen    bool
}

// NewBounds creates empty bounds over the given universe.
func NewBounds(u *Universe) *Bounds {
	return &Bounds{
		universe:  u,
		lowers:    make(map[*ast.Relation]*TupleSet),
		uppers:    make(map[*ast.Relation]*TupleSet),
		intBounds: make(map[int]*TupleSet),
	}
}

// Universe returns the universe the bounds range over.
func (b *Bounds) Universe() *Universe { return b.universe }

func (b *Bounds) mutable() {
	if b.frozen {
		panic("instance: cannot modify an unmodifiable Bounds")
	}
}

func (b *Bounds) checkBound(r *ast.Relation, ts *TupleSet) {
	if ts.Universe() != b.universe {
		panic(fmt.Sprintf("instance: bound for %v is over a different universe", r))
	}
	if ts.Arity() != r.Arity() {
		panic(fmt.Sprintf("instance: bound arity %d differs from arity of %v (%d)",
			ts.Arity(), r, r.Arity()))
	}
}

// Bound sets the lower and upper bound of r. The lower bound must be a
// subset of the upper bound, and both must have r's arity over this
// universe. The given sets are copied.
func (b *Bounds) Bound(r *ast.Relation, lower, upper *TupleSet) {
	b.mutable()
	b.checkBound(r, lower)
	b.checkBound(r, upper)
	if !upper.ContainsAll(lower) {
		panic(fmt.Sprintf("instance: lower bound of %v is not contained in its upper bound", r))
	}
	if _, bound := b.uppers[r]; !bound {
		b.relations = append(b.relations, r)
	}
	b.lowers[r] = lower.Clone().Unmodifiable()
	b.uppers[r] = upper.Clone().Unmodifiable()
}

// BoundExactly sets both bounds of r to the given set.
func (b *Bounds) BoundExactly(r *ast.Relation, tuples *TupleSet) {
	b.Bound(r, tuples, tuples)
}

// BoundUpper bounds r above by upper and below by the empty set.
func (b *Bounds) BoundUpper(r *ast.Relation, upper *TupleSet) {
	b.Bound(r, b.universe.Factory().NoneOf(r.Arity()), upper)
}

// Lower returns the lower bound of r, or nil if r is unbound.
func (b *Bounds) Lower(r *ast.Relation) *TupleSet { return b.lowers[r] }

// Upper returns the upper bound of r, or nil if r is unbound.
func (b *Bounds) Upper(r *ast.Relation) *TupleSet { return b.uppers[r] }

// Relations returns the bound relations in insertion order. The slice is
// owned by b.
func (b *Bounds) Relations() []*ast.Relation { return b.relations }

// BoundInt binds the integer i to the atom in the given singleton unary
// set.
func (b *Bounds) BoundInt(i int, atom *TupleSet) {
	b.mutable()
	if atom.Universe() != b.universe {
		panic(fmt.Sprintf("instance: bound for int %d is over a different universe", i))
	}
	if atom.Arity() != 1 || atom.Size() != 1 {
		panic(fmt.Sprintf("instance: bound for int %d must be a singleton unary set", i))
	}
	if _, bound := b.intBounds[i]; !bound {
		b.intOrder = append(b.intOrder, i)
		sort.Ints(b.intOrder)
	}
	b.intBounds[i] = atom.Clone().Unmodifiable()
}

// IntBound returns the singleton set for integer i, or nil.
func (b *Bounds) IntBound(i int) *TupleSet { return b.intBounds[i] }

// Ints returns the bound integers in ascending order. The slice is owned
// by b.
func (b *Bounds) Ints() []int { return b.intOrder }

// Clone returns a modifiable copy. Tuple sets are immutable once bound,
// so they are shared between the copies.
func (b *Bounds) Clone() *Bounds {
	c := NewBounds(b.universe)
	c.relations = append([]*ast.Relation(nil), b.relations...)
	for r, ts := range b.lowers {
		c.lowers[r] = ts
	}
	for r, ts := range b.uppers {
		c.uppers[r] = ts
	}
	c.intOrder = append([]int(nil), b.intOrder...)
	for i, ts := range b.intBounds {
		c.intBounds[i] = ts
	}
	return c
}

// Unmodifiable returns a read-only view of the current bounds; mutating
// the view panics.
func (b *Bounds) Unmodifiable() *Bounds {
	if b.frozen {
		return b
	}
	view := *b
	view.frozen = true
	return &view
}

func (b *Bounds) String() string {
	out := "bounds{"
	for i, r := range b.relations {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%v: [%v, %v]", r, b.lowers[r], b.uppers[r])
	}
	return out + "}"
}
