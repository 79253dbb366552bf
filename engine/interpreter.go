package engine

import (
	"github.com/manyani/kodkod/ast"
	"github.com/manyani/kodkod/circuit"
	"github.com/manyani/kodkod/instance"
)

// LeafInterpreter maps relational leaves to boolean matrices over a
// circuit factory.
//
// The exact interpreter allocates one primary variable per tuple in
// U(r) \ L(r) for each bound relation r, in bounds insertion order and
// ascending tuple index order, numbering them contiguously from 1.
// Lower-bound tuples become constant True, tuples outside the upper
// bound constant False.
//
// The over-approximating interpreter allocates no variables at all: it
// maps every upper-bound tuple to True, which soundly over-approximates
// any instance within the bounds. The skolemizer uses it to bound
// skolem constants.
type LeafInterpreter struct {
	factory *circuit.Factory
	bounds  *instance.Bounds
	exact   bool

	vars       map[*ast.Relation]varRange
	numPrimary int

	cache map[*ast.Relation]*circuit.Matrix
}

// varRange is the contiguous block of primary variables interpreting
// one relation's free tuples.
type varRange struct {
	start  int   // first variable label; variables are start..start+len(tuples)-1
	tuples []int // tuple indices of U(r) \ L(r), ascending
}

// NewExactInterpreter creates an interpreter that allocates primary
// variables for every non-constant tuple of the given bounds. The
// returned interpreter owns a fresh factory with the given sharing
// depth.
func NewExactInterpreter(b *instance.Bounds, sharing int) *LeafInterpreter {
	vars := make(map[*ast.Relation]varRange)
	numPrimary := 0
	for _, r := range b.Relations() {
		lower, upper := b.Lower(r), b.Upper(r)
		var free []int
		upper.ForEachIndex(func(i int) {
			if !lower.ContainsIndex(i) {
				free = append(free, i)
			}
		})
		vars[r] = varRange{start: numPrimary + 1, tuples: free}
		numPrimary += len(free)
	}
	return &LeafInterpreter{
		factory:    circuit.NewFactory(numPrimary, sharing),
		bounds:     b,
		exact:      true,
		vars:       vars,
		numPrimary: numPrimary,
		cache:      make(map[*ast.Relation]*circuit.Matrix),
	}
}

// NewOverapproxInterpreter creates an interpreter that maps every
// upper-bound tuple to True and allocates no variables.
func NewOverapproxInterpreter(b *instance.Bounds, sharing int) *LeafInterpreter {
	return &LeafInterpreter{
		factory: circuit.NewFactory(0, sharing),
		bounds:  b,
		cache:   make(map[*ast.Relation]*circuit.Matrix),
	}
}

// Factory returns the circuit factory owned by this interpreter.
func (li *LeafInterpreter) Factory() *circuit.Factory { return li.factory }

// Bounds returns the bounds being interpreted.
func (li *LeafInterpreter) Bounds() *instance.Bounds { return li.bounds }

// NumPrimary returns the number of primary variables.
func (li *LeafInterpreter) NumPrimary() int { return li.numPrimary }

// Universe returns the universe of the bounds.
func (li *LeafInterpreter) Universe() *instance.Universe { return li.bounds.Universe() }

func (li *LeafInterpreter) side() int { return li.bounds.Universe().Size() }

// PrimaryRange returns the tuple indices of U(r) \ L(r) and the label
// of the first variable interpreting them. ok is false for relations
// that are not bound and for every relation under the over-approximating
// interpreter; an exactly bound relation has ok true and no tuples.
func (li *LeafInterpreter) PrimaryRange(r *ast.Relation) (start int, tuples []int, ok bool) {
	vr, ok := li.vars[r]
	return vr.start, vr.tuples, ok
}

// Interpret returns the matrix interpreting relation r, panicking with
// an UnboundLeafError if r is not bound.
func (li *LeafInterpreter) Interpret(r *ast.Relation) *circuit.Matrix {
	if m, ok := li.cache[r]; ok {
		return m
	}
	upper := li.bounds.Upper(r)
	if upper == nil {
		panic(&UnboundLeafError{Leaf: r})
	}
	m := li.factory.NewMatrix(r.Arity(), li.side())
	if li.exact {
		lower := li.bounds.Lower(r)
		vr := li.vars[r]
		next := vr.start
		upper.ForEachIndex(func(i int) {
			if lower.ContainsIndex(i) {
				m.Set(i, circuit.True)
			} else {
				m.Set(i, li.factory.Variable(next))
				next++
			}
		})
	} else {
		upper.ForEachIndex(func(i int) {
			m.Set(i, circuit.True)
		})
	}
	li.cache[r] = m
	return m
}

// InterpretConst returns the matrix for one of the constant
// expressions.
func (li *LeafInterpreter) InterpretConst(c *ast.ConstExpr) *circuit.Matrix {
	side := li.side()
	switch c {
	case ast.Univ:
		m := li.factory.NewMatrix(1, side)
		for i := 0; i < side; i++ {
			m.Set(i, circuit.True)
		}
		return m
	case ast.None:
		return li.factory.NewMatrix(1, side)
	case ast.Iden:
		return li.factory.Identity(side, circuit.True)
	case ast.Ints:
		m := li.factory.NewMatrix(1, side)
		for _, v := range li.bounds.Ints() {
			li.bounds.IntBound(v).ForEachIndex(func(i int) {
				m.Set(i, circuit.True)
			})
		}
		return m
	}
	panic(&UnboundLeafError{Leaf: c})
}

// IntAtomIndex returns the atom index interpreting integer v.
func (li *LeafInterpreter) IntAtomIndex(v int) (int, bool) {
	ts := li.bounds.IntBound(v)
	if ts == nil {
		return 0, false
	}
	return ts.Indices()[0], true
}
