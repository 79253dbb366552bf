package instance

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manyani/kodkod/ast"
)

func atoms(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestUniverse(t *testing.T) {
	u := NewUniverse("a", "b", "c")
	assert.Equal(t, 3, u.Size())
	assert.Equal(t, "b", u.Atom(1))
	assert.Equal(t, 2, u.Index("c"))
	assert.True(t, u.Contains("a"))
	assert.False(t, u.Contains("z"))

	assert.Panics(t, func() { NewUniverse() })
	assert.Panics(t, func() { NewUniverse("a", "a") })
	assert.Panics(t, func() { u.Index("z") })
}

func TestTupleIndexing(t *testing.T) {
	u := NewUniverse("a", "b", "c")
	f := u.Factory()

	// Tuples are base-|U| numerals, most significant digit first.
	tu := f.Tuple("b", "c", "a")
	assert.Equal(t, 3, tu.Arity())
	assert.Equal(t, 1*9+2*3+0, tu.Index())
	assert.Equal(t, "b", tu.Atom(0))
	assert.Equal(t, "c", tu.Atom(1))
	assert.Equal(t, "a", tu.Atom(2))
	assert.Equal(t, []any{"b", "c", "a"}, tu.Atoms())

	back := f.TupleFromIndex(3, tu.Index())
	assert.Equal(t, tu.Atoms(), back.Atoms())

	ab := f.Tuple("a", "b")
	c := f.Tuple("c")
	abc := ab.Product(c)
	assert.Equal(t, 3, abc.Arity())
	assert.Equal(t, []any{"a", "b", "c"}, abc.Atoms())

	assert.Equal(t, 27, f.Capacity(3))
	assert.Panics(t, func() { f.Capacity(0) })
	assert.Panics(t, func() { f.TupleFromIndex(2, 9) })
	assert.Panics(t, func() { f.Tuple() })
}

func TestTupleSetOps(t *testing.T) {
	u := NewUniverse(atoms(4)...)
	f := u.Factory()

	s := f.NoneOf(2)
	assert.True(t, s.IsEmpty())
	require.True(t, s.Add(f.Tuple(0, 1)))
	require.True(t, s.Add(f.Tuple(2, 3)))
	assert.False(t, s.Add(f.Tuple(0, 1)))
	assert.Equal(t, 2, s.Size())
	assert.True(t, s.Contains(f.Tuple(2, 3)))

	all := f.AllOf(2)
	assert.Equal(t, 16, all.Size())
	assert.True(t, all.ContainsAll(s))
	assert.False(t, s.ContainsAll(all))

	diff := all.Clone()
	assert.True(t, diff.RemoveAll(s))
	assert.Equal(t, 14, diff.Size())

	inter := diff.Clone()
	inter.RetainAll(s)
	assert.True(t, inter.IsEmpty())

	union := s.Clone()
	union.AddAll(diff)
	assert.True(t, union.Equals(all))
	assert.False(t, union.Equals(s))

	// go-cmp sees Equal.
	assert.True(t, cmp.Equal(union, all))
}

func TestTupleSetProduct(t *testing.T) {
	u := NewUniverse(atoms(3)...)
	f := u.Factory()

	a := f.SetOf(f.Tuple(0), f.Tuple(2))
	b := f.SetOf(f.Tuple(1))
	p := a.Product(b)
	assert.Equal(t, 2, p.Arity())
	assert.Equal(t, 2, p.Size())
	assert.True(t, p.Contains(f.Tuple(0, 1)))
	assert.True(t, p.Contains(f.Tuple(2, 1)))
}

func TestTupleSetCompatibility(t *testing.T) {
	u1 := NewUniverse(atoms(3)...)
	u2 := NewUniverse(atoms(3)...)

	s := u1.Factory().NoneOf(1)
	assert.Panics(t, func() { s.Add(u2.Factory().Tuple(0)) })
	assert.Panics(t, func() { s.Add(u1.Factory().Tuple(0, 1)) })
	assert.Panics(t, func() { s.AddAll(u2.Factory().NoneOf(1)) })
	assert.Panics(t, func() { s.AddAll(u1.Factory().NoneOf(2)) })
}

func TestUnmodifiableTupleSet(t *testing.T) {
	u := NewUniverse(atoms(3)...)
	f := u.Factory()
	s := f.SetOf(f.Tuple(1))
	view := s.Unmodifiable()

	assert.Panics(t, func() { view.Add(f.Tuple(0)) })
	assert.Panics(t, func() { view.Remove(f.Tuple(1)) })
	assert.Panics(t, func() { view.AddAll(s) })

	// The view reflects the backing set.
	s.Add(f.Tuple(2))
	assert.Equal(t, 2, view.Size())
}

func TestBoundsInvariants(t *testing.T) {
	u := NewUniverse(atoms(3)...)
	f := u.Factory()
	b := NewBounds(u)

	r := ast.BinaryRelation("r")
	low := f.SetOf(f.Tuple(0, 0))
	high := f.AllOf(2)

	b.Bound(r, low, high)
	assert.True(t, b.Lower(r).Equals(low))
	assert.True(t, b.Upper(r).Equals(high))
	assert.Equal(t, []*ast.Relation{r}, b.Relations())

	t.Run("lower must be within upper", func(t *testing.T) {
		bad := ast.BinaryRelation("bad")
		assert.Panics(t, func() { b.Bound(bad, high, low) })
	})

	t.Run("arity must match", func(t *testing.T) {
		bad := ast.UnaryRelation("bad")
		assert.Panics(t, func() { b.Bound(bad, low, high) })
	})

	t.Run("universe must match", func(t *testing.T) {
		u2 := NewUniverse(atoms(3)...)
		bad := ast.BinaryRelation("bad")
		assert.Panics(t, func() { b.Bound(bad, u2.Factory().NoneOf(2), u2.Factory().AllOf(2)) })
	})

	t.Run("bounds are copies", func(t *testing.T) {
		r2 := ast.UnaryRelation("r2")
		mine := f.SetOf(f.Tuple(1))
		b.Bound(r2, mine, mine)
		mine.Add(f.Tuple(2))
		assert.Equal(t, 1, b.Upper(r2).Size())
		assert.Panics(t, func() { b.Upper(r2).Add(f.Tuple(0)) })
	})

	t.Run("rebinding keeps insertion order", func(t *testing.T) {
		b.BoundExactly(r, low)
		assert.Equal(t, "r", b.Relations()[0].Name())
		assert.True(t, b.Upper(r).Equals(low))
	})
}

func TestBoundsInts(t *testing.T) {
	u := NewUniverse(atoms(4)...)
	f := u.Factory()
	b := NewBounds(u)

	b.BoundInt(2, f.SetOf(f.Tuple(2)))
	b.BoundInt(0, f.SetOf(f.Tuple(0)))
	assert.Equal(t, []int{0, 2}, b.Ints())
	assert.Equal(t, 1, b.IntBound(2).Size())
	assert.Nil(t, b.IntBound(7))

	assert.Panics(t, func() { b.BoundInt(1, f.AllOf(1)) }, "not a singleton")
	assert.Panics(t, func() { b.BoundInt(1, f.SetOf(f.Tuple(0, 0))) }, "not unary")
}

func TestBoundsCloneAndFreeze(t *testing.T) {
	u := NewUniverse(atoms(3)...)
	f := u.Factory()
	b := NewBounds(u)
	r := ast.UnaryRelation("r")
	b.BoundExactly(r, f.SetOf(f.Tuple(0)))

	c := b.Clone()
	r2 := ast.UnaryRelation("r2")
	c.BoundUpper(r2, f.AllOf(1))
	assert.Len(t, c.Relations(), 2)
	assert.Len(t, b.Relations(), 1)
	assert.Nil(t, b.Upper(r2))

	view := b.Unmodifiable()
	assert.Panics(t, func() { view.Bound(r2, f.NoneOf(1), f.AllOf(1)) })
	assert.Panics(t, func() { view.BoundInt(0, f.SetOf(f.Tuple(0))) })
	assert.True(t, view.Upper(r).Equals(b.Upper(r)))
}

func TestInstance(t *testing.T) {
	u := NewUniverse(atoms(3)...)
	f := u.Factory()
	in := NewInstance(u)

	r := ast.UnaryRelation("r")
	in.Add(r, f.SetOf(f.Tuple(1)))
	assert.Equal(t, 1, in.Tuples(r).Size())
	assert.Nil(t, in.Tuples(ast.UnaryRelation("other")))
	assert.Equal(t, []*ast.Relation{r}, in.Relations())

	assert.Panics(t, func() { in.Add(ast.BinaryRelation("s"), f.SetOf(f.Tuple(0))) })

	in.AddInt(5, f.SetOf(f.Tuple(2)))
	assert.Equal(t, []int{5}, in.Ints())
	assert.Panics(t, func() { in.AddInt(6, f.AllOf(1)) })

	c := in.Clone()
	c.Add(ast.UnaryRelation("s"), f.NoneOf(1))
	assert.Len(t, in.Relations(), 1)
	assert.Len(t, c.Relations(), 2)
}
