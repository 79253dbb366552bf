package kodkod_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kodkod "github.com/manyani/kodkod"
	"github.com/manyani/kodkod/ast"
	"github.com/manyani/kodkod/examples"
	"github.com/manyani/kodkod/instance"
)

func solve(t *testing.T, p examples.Problem) *kodkod.Solution {
	t.Helper()
	sol, err := kodkod.NewSolver(p.Options).Solve(context.Background(), p.Formula, p.Bounds)
	require.NoError(t, err)
	return sol
}

func TestSolveSatisfiable(t *testing.T) {
	p := examples.Pigeonhole(3, 3)
	sol := solve(t, p)

	require.Equal(t, kodkod.Satisfiable, sol.Outcome)
	require.NotNil(t, sol.Instance)
	assert.Positive(t, sol.Stats.PrimaryVariables)
	assert.Positive(t, sol.Stats.Clauses)

	// The returned instance must satisfy the formula (checked by the
	// evaluator, which never allocates variables).
	ev := kodkod.NewEvaluator(sol.Instance, p.Options)
	holds, err := ev.Evaluate(p.Formula)
	require.NoError(t, err)
	assert.True(t, holds)
}

func TestSolveUnsatisfiable(t *testing.T) {
	p := examples.Pigeonhole(4, 3)
	sol := solve(t, p)

	assert.Equal(t, kodkod.Unsatisfiable, sol.Outcome)
	assert.Nil(t, sol.Instance)
}

// TestUnsatAgainstExhaustiveEnumeration cross-checks an unsatisfiable
// answer by evaluating the formula over every instance within the
// bounds of a tiny problem.
func TestUnsatAgainstExhaustiveEnumeration(t *testing.T) {
	p := examples.Pigeonhole(2, 1)
	sol := solve(t, p)
	require.Equal(t, kodkod.Unsatisfiable, sol.Outcome)

	b := p.Bounds
	var nest *ast.Relation
	for _, r := range b.Relations() {
		if r.Name() == "nest" {
			nest = r
		}
	}
	require.NotNil(t, nest)

	free := b.Upper(nest).Indices()
	require.Len(t, free, 2)

	for mask := 0; mask < 1<<len(free); mask++ {
		in := instance.NewInstance(b.Universe())
		for _, r := range b.Relations() {
			if r != nest {
				in.Add(r, b.Lower(r))
			}
		}
		tuples := b.Universe().Factory().NoneOf(2)
		for i, idx := range free {
			if mask&(1<<i) != 0 {
				tuples.AddIndex(idx)
			}
		}
		in.Add(nest, tuples)

		holds, err := kodkod.NewEvaluator(in, p.Options).Evaluate(p.Formula)
		require.NoError(t, err)
		assert.False(t, holds, "no instance may satisfy an unsatisfiable formula")
	}
}

func TestTrivialOutcomes(t *testing.T) {
	t.Run("trivially unsatisfiable with zero stats", func(t *testing.T) {
		sol := solve(t, examples.Toughnut(4))
		assert.Equal(t, kodkod.TriviallyUnsatisfiable, sol.Outcome)
		assert.Zero(t, sol.Stats.PrimaryVariables)
		assert.Zero(t, sol.Stats.Variables)
		assert.Zero(t, sol.Stats.Clauses)
		assert.Nil(t, sol.Instance)
	})

	t.Run("trivially satisfiable returns the lower bounds", func(t *testing.T) {
		u := instance.NewUniverse("a", "b")
		f := u.Factory()
		b := instance.NewBounds(u)
		r := ast.UnaryRelation("r")
		b.Bound(r, f.SetOf(f.Tuple("a")), f.AllOf(1))

		sol, err := kodkod.NewSolver(nil).Solve(context.Background(), ast.Some(r), b)
		require.NoError(t, err)
		assert.Equal(t, kodkod.TriviallySatisfiable, sol.Outcome)
		require.NotNil(t, sol.Instance)
		assert.True(t, sol.Instance.Tuples(r).Equals(b.Lower(r)))
		assert.Zero(t, sol.Stats.Variables)
	})
}

func TestLowerBoundPadding(t *testing.T) {
	u := instance.NewUniverse(0, 1, 2)
	f := u.Factory()
	b := instance.NewBounds(u)

	r := ast.UnaryRelation("r")
	s := ast.UnaryRelation("s")
	b.Bound(r, f.SetOf(f.Tuple(1)), f.AllOf(1))
	b.BoundUpper(s, f.AllOf(1))

	sol, err := kodkod.NewSolver(nil).Solve(context.Background(), ast.Some(s), b)
	require.NoError(t, err)
	require.Equal(t, kodkod.Satisfiable, sol.Outcome)

	// r is unconstrained by the formula, but its tuples still contain
	// the lower bound.
	assert.True(t, sol.Instance.Tuples(r).ContainsAll(b.Lower(r)))
}

func TestSolveErrors(t *testing.T) {
	u := instance.NewUniverse("a")
	b := instance.NewBounds(u)

	t.Run("unbound relation", func(t *testing.T) {
		_, err := kodkod.NewSolver(nil).Solve(context.Background(), ast.Some(ast.UnaryRelation("r")), b)
		var ue *kodkod.UnboundLeafError
		assert.ErrorAs(t, err, &ue)
	})

	t.Run("cancelled context", func(t *testing.T) {
		b2 := instance.NewBounds(u)
		r := ast.UnaryRelation("r")
		b2.BoundUpper(r, u.Factory().AllOf(1))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := kodkod.NewSolver(nil).Solve(ctx, ast.Some(r), b2)
		var ae *kodkod.AbortedError
		assert.ErrorAs(t, err, &ae)
	})
}

func TestSolveAll(t *testing.T) {
	newProblem := func(f func(r ast.Expression) ast.Formula) (ast.Formula, *instance.Bounds) {
		u := instance.NewUniverse("a", "b")
		b := instance.NewBounds(u)
		r := ast.UnaryRelation("r")
		b.BoundUpper(r, u.Factory().AllOf(1))
		return f(r), b
	}

	t.Run("enumerates each model once and ends unsat", func(t *testing.T) {
		f, b := newProblem(func(r ast.Expression) ast.Formula { return ast.Some(r) })
		it := kodkod.NewSolver(nil).SolveAll(context.Background(), f, b)

		seen := make(map[string]bool)
		sats := 0
		var last *kodkod.Solution
		for {
			sol, err := it.Next()
			require.NoError(t, err)
			if sol == nil {
				break
			}
			last = sol
			if sol.Sat() {
				sats++
				key := sol.Instance.String()
				assert.False(t, seen[key], "instance enumerated twice: %s", key)
				seen[key] = true
			}
		}
		assert.Equal(t, 3, sats, "the nonempty subsets of a two-atom universe")
		require.NotNil(t, last)
		assert.Equal(t, kodkod.Unsatisfiable, last.Outcome)

		// The iterator stays exhausted.
		sol, err := it.Next()
		require.NoError(t, err)
		assert.Nil(t, sol)
	})

	t.Run("literal-only root still blocks every primary", func(t *testing.T) {
		// The formula lowers to a single literal while s keeps
		// unconstrained primaries with higher labels; the blocking
		// loop must be able to address all of them.
		u := instance.NewUniverse("a", "b")
		b := instance.NewBounds(u)
		r := ast.UnaryRelation("r")
		s := ast.UnaryRelation("s")
		b.BoundUpper(r, u.Factory().SetOf(u.Factory().Tuple("a")))
		b.BoundUpper(s, u.Factory().AllOf(1))

		it := kodkod.NewSolver(nil).SolveAll(context.Background(), ast.Some(r), b)
		seen := make(map[string]bool)
		sats := 0
		var last *kodkod.Solution
		for {
			sol, err := it.Next()
			require.NoError(t, err)
			if sol == nil {
				break
			}
			last = sol
			if sol.Sat() {
				sats++
				key := sol.Instance.String()
				assert.False(t, seen[key], "instance enumerated twice: %s", key)
				seen[key] = true
			}
		}
		assert.Equal(t, 4, sats, "r is forced; s ranges over the subsets of two atoms")
		require.NotNil(t, last)
		assert.Equal(t, kodkod.Unsatisfiable, last.Outcome)
	})

	t.Run("trivially satisfiable start continues through witnesses", func(t *testing.T) {
		f, b := newProblem(func(ast.Expression) ast.Formula { return ast.True })
		it := kodkod.NewSolver(nil).SolveAll(context.Background(), f, b)

		outcomes := []kodkod.Outcome{}
		sats := 0
		for {
			sol, err := it.Next()
			require.NoError(t, err)
			if sol == nil {
				break
			}
			outcomes = append(outcomes, sol.Outcome)
			if sol.Sat() {
				sats++
			}
		}
		require.NotEmpty(t, outcomes)
		assert.Equal(t, kodkod.TriviallySatisfiable, outcomes[0])
		assert.Equal(t, 4, sats, "all subsets of a two-atom universe satisfy true")
		assert.Equal(t, kodkod.Unsatisfiable, outcomes[len(outcomes)-1])
	})
}

func TestEvaluator(t *testing.T) {
	u := instance.NewUniverse(0, 1, 2)
	f := u.Factory()

	r := ast.BinaryRelation("r")
	in := instance.NewInstance(u)
	in.Add(r, f.SetOf(f.Tuple(0, 1), f.Tuple(1, 2)))

	ev := kodkod.NewEvaluator(in, nil)

	holds, err := ev.Evaluate(ast.Acyclic(r))
	require.NoError(t, err)
	assert.True(t, holds)

	ts, err := ev.EvaluateExpr(ast.Join(r, r))
	require.NoError(t, err)
	assert.Equal(t, []int{0*3 + 2}, ts.Indices())

	n, err := ev.EvaluateInt(ast.Card(r))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = ev.Evaluate(ast.Some(ast.UnaryRelation("missing")))
	var ue *kodkod.UnboundLeafError
	assert.ErrorAs(t, err, &ue)
}

func TestStatisticsString(t *testing.T) {
	sol := solve(t, examples.Pigeonhole(2, 2))
	assert.Contains(t, sol.Stats.String(), "primary")
}
