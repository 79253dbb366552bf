package ints

import (
	"fmt"
	"sort"
)

// SparseSequence maps sparse non-negative indices to values and iterates
// them in ascending index order. Appending at or past the current maximum
// index is constant time, which is the common case when sequences are
// filled in index order.
type SparseSequence[V any] struct {
	keys   []int
	values map[int]V
	sorted bool
}

// NewSparseSequence creates an empty sequence.
func NewSparseSequence[V any]() *SparseSequence[V] {
	return &SparseSequence[V]{values: make(map[int]V), sorted: true}
}

// Size returns the number of mapped indices.
func (s *SparseSequence[V]) Size() int {
	return len(s.keys)
}

// IsEmpty reports whether no index is mapped.
func (s *SparseSequence[V]) IsEmpty() bool {
	return len(s.keys) == 0
}

// Put maps index to value, replacing any previous mapping.
func (s *SparseSequence[V]) Put(index int, value V) {
	if index < 0 {
		panic(fmt.Sprintf("ints: negative sequence index %d", index))
	}
	if _, ok := s.values[index]; !ok {
		if s.sorted && len(s.keys) > 0 && index < s.keys[len(s.keys)-1] {
			s.sorted = false
		}
		s.keys = append(s.keys, index)
	}
	s.values[index] = value
}

// Get returns the value at index and whether one is present.
func (s *SparseSequence[V]) Get(index int) (V, bool) {
	v, ok := s.values[index]
	return v, ok
}

// Remove unmaps index and reports whether a mapping existed.
func (s *SparseSequence[V]) Remove(index int) bool {
	if _, ok := s.values[index]; !ok {
		return false
	}
	delete(s.values, index)
	s.ensureSorted()
	at := sort.SearchInts(s.keys, index)
	s.keys = append(s.keys[:at], s.keys[at+1:]...)
	return true
}

func (s *SparseSequence[V]) ensureSorted() {
	if !s.sorted {
		sort.Ints(s.keys)
		s.sorted = true
	}
}

// Indices returns the mapped indices in ascending order. The slice is
// owned by the sequence and must not be modified.
func (s *SparseSequence[V]) Indices() []int {
	s.ensureSorted()
	return s.keys
}

// ForEach calls fn with each (index, value) pair in ascending index order.
func (s *SparseSequence[V]) ForEach(fn func(index int, value V)) {
	s.ensureSorted()
	for _, k := range s.keys {
		fn(k, s.values[k])
	}
}

// First returns the smallest mapped index, or -1 if empty.
func (s *SparseSequence[V]) First() int {
	if len(s.keys) == 0 {
		return -1
	}
	s.ensureSorted()
	return s.keys[0]
}

// Clone returns an independent copy sharing no state with s.
func (s *SparseSequence[V]) Clone() *SparseSequence[V] {
	c := NewSparseSequence[V]()
	s.ForEach(func(i int, v V) { c.Put(i, v) })
	return c
}
