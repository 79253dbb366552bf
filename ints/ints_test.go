package ints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitSetBasics(t *testing.T) {
	s := NewBitSet(130)

	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, -1, s.Min())
	assert.Equal(t, -1, s.Max())

	assert.True(t, s.Add(0))
	assert.True(t, s.Add(63))
	assert.True(t, s.Add(64))
	assert.True(t, s.Add(129))
	assert.False(t, s.Add(64), "re-adding a member should report no change")

	assert.Equal(t, 4, s.Size())
	assert.Equal(t, 0, s.Min())
	assert.Equal(t, 129, s.Max())
	assert.True(t, s.Contains(63))
	assert.False(t, s.Contains(62))
	assert.False(t, s.Contains(-1))
	assert.False(t, s.Contains(1000))

	assert.Equal(t, []int{0, 63, 64, 129}, s.Slice())

	assert.True(t, s.Remove(63))
	assert.False(t, s.Remove(63))
	assert.Equal(t, []int{0, 64, 129}, s.Slice())
}

func TestBitSetRangePanics(t *testing.T) {
	s := NewBitSet(8)
	assert.Panics(t, func() { s.Add(8) })
	assert.Panics(t, func() { s.Add(-1) })
	assert.Panics(t, func() { NewBitSet(-1) })
	assert.Panics(t, func() { s.AddAll(NewBitSet(9)) }, "capacity mismatch")
}

func TestBitSetAlgebra(t *testing.T) {
	a := NewBitSet(100)
	b := NewBitSet(100)
	for _, i := range []int{1, 5, 70} {
		a.Add(i)
	}
	for _, i := range []int{5, 70, 99} {
		b.Add(i)
	}

	u := a.Clone()
	assert.True(t, u.AddAll(b))
	assert.Equal(t, []int{1, 5, 70, 99}, u.Slice())
	assert.False(t, u.AddAll(b), "second union is a no-op")

	i := a.Clone()
	assert.True(t, i.RetainAll(b))
	assert.Equal(t, []int{5, 70}, i.Slice())

	d := a.Clone()
	assert.True(t, d.RemoveAll(b))
	assert.Equal(t, []int{1}, d.Slice())

	assert.True(t, u.ContainsAll(a))
	assert.True(t, u.ContainsAll(b))
	assert.False(t, a.ContainsAll(b))

	assert.True(t, i.Equals(i.Clone()))
	assert.False(t, i.Equals(d))

	u.Clear()
	assert.True(t, u.IsEmpty())
}

func TestSparseSequenceOrdering(t *testing.T) {
	s := NewSparseSequence[string]()
	require.True(t, s.IsEmpty())
	assert.Equal(t, -1, s.First())

	s.Put(10, "ten")
	s.Put(3, "three")
	s.Put(7, "seven")
	s.Put(3, "THREE") // replace keeps a single entry

	assert.Equal(t, 3, s.Size())
	assert.Equal(t, []int{3, 7, 10}, s.Indices())
	assert.Equal(t, 3, s.First())

	v, ok := s.Get(3)
	require.True(t, ok)
	assert.Equal(t, "THREE", v)
	_, ok = s.Get(4)
	assert.False(t, ok)

	var keys []int
	var vals []string
	s.ForEach(func(i int, v string) {
		keys = append(keys, i)
		vals = append(vals, v)
	})
	assert.Equal(t, []int{3, 7, 10}, keys)
	assert.Equal(t, []string{"THREE", "seven", "ten"}, vals)

	assert.True(t, s.Remove(7))
	assert.False(t, s.Remove(7))
	assert.Equal(t, []int{3, 10}, s.Indices())

	assert.Panics(t, func() { s.Put(-1, "no") })
}

func TestSparseSequenceClone(t *testing.T) {
	s := NewSparseSequence[int]()
	s.Put(2, 20)
	s.Put(1, 10)

	c := s.Clone()
	c.Put(0, 0)

	assert.Equal(t, []int{1, 2}, s.Indices())
	assert.Equal(t, []int{0, 1, 2}, c.Indices())
}
