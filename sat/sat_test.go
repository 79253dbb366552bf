package sat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiniSatisfiable(t *testing.T) {
	s := NewGini()
	defer s.Free()

	s.AddVariables(2)
	assert.Equal(t, 2, s.NumberOfVariables())

	// (1 | 2) & (!1 | 2)
	s.AddClause([]int{1, 2})
	s.AddClause([]int{-1, 2})
	assert.Equal(t, 2, s.NumberOfClauses())

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, s.ValueOf(2), "2 is forced")
}

func TestGiniUnsatisfiable(t *testing.T) {
	s := NewGini()
	defer s.Free()

	s.AddVariables(1)
	s.AddClause([]int{1})
	s.AddClause([]int{-1})

	ok, err := s.Solve()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGiniIncremental(t *testing.T) {
	s := NewGini()
	defer s.Free()

	s.AddVariables(3)
	s.AddClause([]int{1, 2, 3})

	ok, err := s.Solve()
	require.NoError(t, err)
	require.True(t, ok)

	// Block every model over the three variables one by one; the
	// instance must eventually become unsatisfiable.
	models := 0
	for ok {
		models++
		block := make([]int, 3)
		for v := 1; v <= 3; v++ {
			if s.ValueOf(v) {
				block[v-1] = -v
			} else {
				block[v-1] = v
			}
		}
		s.AddClause(block)
		ok, err = s.Solve()
		require.NoError(t, err)
	}
	assert.Equal(t, 7, models, "7 of the 8 assignments satisfy 1|2|3")
}

func TestGiniPigeonhole(t *testing.T) {
	// 3 pigeons, 2 holes: unsatisfiable. Variable p*2+h+1 places
	// pigeon p in hole h.
	s := NewGini()
	defer s.Free()
	s.AddVariables(6)

	v := func(p, h int) int { return p*2 + h + 1 }
	for p := 0; p < 3; p++ {
		s.AddClause([]int{v(p, 0), v(p, 1)})
	}
	for h := 0; h < 2; h++ {
		for p1 := 0; p1 < 3; p1++ {
			for p2 := p1 + 1; p2 < 3; p2++ {
				s.AddClause([]int{-v(p1, h), -v(p2, h)})
			}
		}
	}

	ok, err := s.Solve()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGiniChecksClauses(t *testing.T) {
	s := NewGini()
	defer s.Free()
	s.AddVariables(1)

	assert.Panics(t, func() { s.AddClause([]int{0}) })
	assert.Panics(t, func() { s.AddClause([]int{2}) })
	assert.Panics(t, func() { s.AddVariables(-1) })
	assert.Panics(t, func() { s.ValueOf(0) })
}

func TestGiniTimeoutSetting(t *testing.T) {
	s := NewGini()
	defer s.Free()
	assert.Equal(t, time.Duration(0), s.Timeout())
	s.SetTimeout(3 * time.Second)
	assert.Equal(t, 3*time.Second, s.Timeout())

	// A trivial instance solves well inside any budget.
	s.AddVariables(1)
	s.AddClause([]int{1})
	ok, err := s.Solve()
	require.NoError(t, err)
	assert.True(t, ok)
}
