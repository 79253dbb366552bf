package circuit

import (
	"fmt"
	"strings"

	"github.com/manyani/kodkod/ints"
)

// Matrix is a sparse symbolic matrix of boolean values indexed by
// row-major tuple index: an arity-a matrix over a universe of side d
// has d^a entries, the absent ones implicitly False. Matrices carry the
// factory whose values they hold.
type Matrix struct {
	f     *Factory
	arity int
	side  int
	cap   int
	cells *ints.SparseSequence[Value]
}

// NewMatrix creates an all-False matrix of the given arity over a
// universe with side atoms.
func (f *Factory) NewMatrix(arity, side int) *Matrix {
	if arity < 1 || side < 1 {
		panic(fmt.Sprintf("circuit: invalid matrix dimensions %d^%d", side, arity))
	}
	cap := 1
	for i := 0; i < arity; i++ {
		cap *= side
	}
	return &Matrix{f: f, arity: arity, side: side, cap: cap, cells: ints.NewSparseSequence[Value]()}
}

// Arity returns the matrix arity.
func (m *Matrix) Arity() int { return m.arity }

// Side returns the universe size.
func (m *Matrix) Side() int { return m.side }

// Capacity returns side^arity.
func (m *Matrix) Capacity() int { return m.cap }

// Factory returns the owning factory.
func (m *Matrix) Factory() *Factory { return m.f }

// Density returns the number of non-False entries.
func (m *Matrix) Density() int { return m.cells.Size() }

// Get returns the value at index; absent entries are False.
func (m *Matrix) Get(index int) Value {
	if index < 0 || index >= m.cap {
		panic(fmt.Sprintf("circuit: index %d out of range [0, %d)", index, m.cap))
	}
	if v, ok := m.cells.Get(index); ok {
		return v
	}
	return False
}

// Set stores v at index; storing False clears the entry.
func (m *Matrix) Set(index int, v Value) {
	if index < 0 || index >= m.cap {
		panic(fmt.Sprintf("circuit: index %d out of range [0, %d)", index, m.cap))
	}
	if v == False {
		m.cells.Remove(index)
		return
	}
	m.cells.Put(index, v)
}

// ForEach calls fn for each non-False entry in ascending index order.
func (m *Matrix) ForEach(fn func(index int, v Value)) {
	m.cells.ForEach(fn)
}

// Indices returns the indices of the non-False entries in ascending
// order. The slice is owned by the matrix.
func (m *Matrix) Indices() []int { return m.cells.Indices() }

// Clone returns an independent copy of m.
func (m *Matrix) Clone() *Matrix {
	c := m.f.NewMatrix(m.arity, m.side)
	c.cells = m.cells.Clone()
	return c
}

func (m *Matrix) compatible(other *Matrix) {
	if m.f != other.f {
		panic("circuit: matrices belong to different factories")
	}
	if m.side != other.side {
		panic(fmt.Sprintf("circuit: matrix side mismatch: %d vs %d", m.side, other.side))
	}
}

func (m *Matrix) sameShape(other *Matrix) {
	m.compatible(other)
	if m.arity != other.arity {
		panic(fmt.Sprintf("circuit: matrix arity mismatch: %d vs %d", m.arity, other.arity))
	}
}

// Or returns the pointwise disjunction of m and other.
func (m *Matrix) Or(other *Matrix) *Matrix {
	m.sameShape(other)
	out := m.Clone()
	other.ForEach(func(i int, v Value) {
		out.Set(i, m.f.Or(out.Get(i), v))
	})
	return out
}

// And returns the pointwise conjunction of m and other.
func (m *Matrix) And(other *Matrix) *Matrix {
	m.sameShape(other)
	out := m.f.NewMatrix(m.arity, m.side)
	m.ForEach(func(i int, v Value) {
		if w, ok := other.cells.Get(i); ok {
			out.Set(i, m.f.And(v, w))
		}
	})
	return out
}

// Difference returns the pointwise m & !other.
func (m *Matrix) Difference(other *Matrix) *Matrix {
	m.sameShape(other)
	out := m.f.NewMatrix(m.arity, m.side)
	m.ForEach(func(i int, v Value) {
		out.Set(i, m.f.And(v, m.f.Not(other.Get(i))))
	})
	return out
}

// Cross returns the cross product of m and other; the result arity is
// the sum of the operand arities.
func (m *Matrix) Cross(other *Matrix) *Matrix {
	m.compatible(other)
	out := m.f.NewMatrix(m.arity+other.arity, m.side)
	m.ForEach(func(i int, v Value) {
		base := i * other.cap
		other.ForEach(func(j int, w Value) {
			out.Set(base+j, m.f.And(v, w))
		})
	})
	return out
}

// Dot returns the relational join of m and other: matrix multiplication
// over the boolean semiring along the last column of m and the first
// column of other. The result arity is m.arity + other.arity - 2.
func (m *Matrix) Dot(other *Matrix) *Matrix {
	m.compatible(other)
	arity := m.arity + other.arity - 2
	if arity < 1 {
		panic(fmt.Sprintf("circuit: cannot join %d-ary and %d-ary matrices", m.arity, other.arity))
	}
	out := m.f.NewMatrix(arity, m.side)

	// Group the right cells by their leading digit.
	suffixCap := other.cap / other.side
	type cell struct {
		suffix int
		value  Value
	}
	rows := make([][]cell, m.side)
	other.ForEach(func(j int, w Value) {
		d := j / suffixCap
		rows[d] = append(rows[d], cell{suffix: j % suffixCap, value: w})
	})

	accs := ints.NewSparseSequence[*Accumulator]()
	m.ForEach(func(i int, v Value) {
		join := i % m.side
		prefix := i / m.side
		for _, c := range rows[join] {
			idx := prefix*suffixCap + c.suffix
			acc, ok := accs.Get(idx)
			if !ok {
				acc = m.f.Accumulator(OpOr)
				accs.Put(idx, acc)
			}
			acc.Add(m.f.And(v, c.value))
		}
	})
	accs.ForEach(func(idx int, acc *Accumulator) {
		out.Set(idx, m.f.Adopt(acc))
	})
	return out
}

// Transpose returns the transpose of a binary matrix.
func (m *Matrix) Transpose() *Matrix {
	if m.arity != 2 {
		panic(fmt.Sprintf("circuit: transpose requires a binary matrix, got arity %d", m.arity))
	}
	out := m.f.NewMatrix(2, m.side)
	m.ForEach(func(i int, v Value) {
		out.Set((i%m.side)*m.side+i/m.side, v)
	})
	return out
}

// Closure returns the transitive closure of a binary matrix by
// square-and-or iteration; reachability saturates after log2(side)
// rounds.
func (m *Matrix) Closure() *Matrix {
	if m.arity != 2 {
		panic(fmt.Sprintf("circuit: closure requires a binary matrix, got arity %d", m.arity))
	}
	if m.cells.IsEmpty() {
		return m.Clone()
	}
	out := m.Clone()
	for i := 1; i < m.side; i *= 2 {
		out = out.Or(out.Dot(out))
	}
	return out
}

// Identity returns the diagonal matrix with v at every (a, a) entry.
func (f *Factory) Identity(side int, v Value) *Matrix {
	out := f.NewMatrix(2, side)
	for i := 0; i < side; i++ {
		out.Set(i*side+i, v)
	}
	return out
}

// Project returns the unary matrix projecting m onto the given column:
// the entry for atom a is the disjunction of all entries whose
// column-th digit is a.
func (m *Matrix) Project(column int) *Matrix {
	if column < 0 || column >= m.arity {
		panic(fmt.Sprintf("circuit: column %d out of range for arity %d", column, m.arity))
	}
	div := 1
	for c := m.arity - 1; c > column; c-- {
		div *= m.side
	}
	accs := make([]*Accumulator, m.side)
	m.ForEach(func(i int, v Value) {
		d := i / div % m.side
		if accs[d] == nil {
			accs[d] = m.f.Accumulator(OpOr)
		}
		accs[d].Add(v)
	})
	out := m.f.NewMatrix(1, m.side)
	for d, acc := range accs {
		if acc != nil {
			out.Set(d, m.f.Adopt(acc))
		}
	}
	return out
}

// Override returns m ++ other: other's entries, plus the entries of m
// whose rows other does not define.
func (m *Matrix) Override(other *Matrix) *Matrix {
	m.sameShape(other)
	if other.cells.IsEmpty() {
		return m.Clone()
	}
	rowCap := m.cap / m.side
	rows := other.Project(0)
	out := other.Clone()
	m.ForEach(func(i int, v Value) {
		kept := m.f.And(v, m.f.Not(rows.Get(i/rowCap)))
		out.Set(i, m.f.Or(out.Get(i), kept))
	})
	return out
}

// Choice returns the matrix selecting m's entries when cond holds and
// other's entries otherwise.
func (m *Matrix) Choice(cond Value, other *Matrix) *Matrix {
	m.sameShape(other)
	out := m.f.NewMatrix(m.arity, m.side)
	m.ForEach(func(i int, v Value) {
		out.Set(i, m.f.ITE(cond, v, other.Get(i)))
	})
	other.ForEach(func(i int, w Value) {
		if _, ok := m.cells.Get(i); !ok {
			out.Set(i, m.f.ITE(cond, False, w))
		}
	})
	return out
}

// Subset returns the formula stating that m is a pointwise subset of
// other.
func (m *Matrix) Subset(other *Matrix) Value {
	m.sameShape(other)
	acc := m.f.Accumulator(OpAnd)
	m.ForEach(func(i int, v Value) {
		acc.Add(m.f.Implies(v, other.Get(i)))
	})
	return m.f.Adopt(acc)
}

// Equals returns the formula stating that m and other hold the same
// tuples.
func (m *Matrix) Equals(other *Matrix) Value {
	m.sameShape(other)
	acc := m.f.Accumulator(OpAnd)
	m.ForEach(func(i int, v Value) {
		acc.Add(m.f.Iff(v, other.Get(i)))
	})
	other.ForEach(func(i int, w Value) {
		if _, ok := m.cells.Get(i); !ok {
			acc.Add(m.f.Not(w))
		}
	})
	return m.f.Adopt(acc)
}

// Some returns the formula stating that m holds at least one tuple.
func (m *Matrix) Some() Value {
	acc := m.f.Accumulator(OpOr)
	m.ForEach(func(_ int, v Value) { acc.Add(v) })
	return m.f.Adopt(acc)
}

// None returns the formula stating that m holds no tuple.
func (m *Matrix) None() Value { return m.f.Not(m.Some()) }

// count builds the ladder counter shared by One and Lone: atLeast is
// the running disjunction of the entries, atMost the conjunction of
// "no second entry" steps.
func (m *Matrix) count() (atLeast, atMost Value) {
	partial := Value(False)
	acc := m.f.Accumulator(OpAnd)
	m.ForEach(func(_ int, v Value) {
		acc.Add(m.f.Or(m.f.Not(partial), m.f.Not(v)))
		partial = m.f.Or(partial, v)
	})
	return partial, m.f.Adopt(acc)
}

// Lone returns the formula stating that m holds at most one tuple.
func (m *Matrix) Lone() Value {
	_, atMost := m.count()
	return atMost
}

// One returns the formula stating that m holds exactly one tuple.
func (m *Matrix) One() Value {
	atLeast, atMost := m.count()
	return m.f.And(atLeast, atMost)
}

func (m *Matrix) String() string {
	var parts []string
	m.ForEach(func(i int, v Value) {
		parts = append(parts, fmt.Sprintf("%d:%v", i, v))
	})
	return fmt.Sprintf("matrix(%d^%d){%s}", m.side, m.arity, strings.Join(parts, ", "))
}
