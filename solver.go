package kodkod

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/manyani/kodkod/ast"
	"github.com/manyani/kodkod/engine"
	"github.com/manyani/kodkod/instance"
	"github.com/manyani/kodkod/sat"
)

// Solver drives the translation pipeline and the SAT back end.
type Solver struct {
	options *Options
}

// NewSolver creates a solver; nil options select the defaults.
func NewSolver(opts *Options) *Solver {
	if opts == nil {
		opts = NewOptions()
	}
	return &Solver{options: opts}
}

// Options returns the solver's options.
func (s *Solver) Options() *Options { return s.options }

// Solve decides the formula within the given bounds. The bounds may be
// extended with skolem relations; the caller must not touch them until
// Solve returns. Fatal conditions (unbound leaves, untranslatable
// declarations, cancellation, solver timeouts) are returned as errors.
func (s *Solver) Solve(ctx context.Context, f ast.Formula, b *instance.Bounds) (*Solution, error) {
	start := time.Now()
	tr, err := engine.Translate(ctx, f, b, s.options)
	if err != nil {
		return s.trivial(err, time.Since(start))
	}
	defer tr.Free()
	return s.solveTranslation(tr, time.Since(start))
}

// trivial converts a translation error into a trivial solution where it
// is the trivial-formula signal, and passes everything else through.
func (s *Solver) trivial(err error, translTime time.Duration) (*Solution, error) {
	var te *engine.TrivialError
	if !errors.As(err, &te) {
		return nil, err
	}
	sol := &Solution{
		Stats: Statistics{TranslationTime: translTime},
	}
	if te.Value {
		sol.Outcome = TriviallySatisfiable
		sol.Instance = lowerBoundInstance(te.Bounds)
	} else {
		sol.Outcome = TriviallyUnsatisfiable
	}
	return sol, nil
}

func (s *Solver) solveTranslation(tr *engine.Translation, translTime time.Duration) (*Solution, error) {
	stats := Statistics{
		PrimaryVariables: tr.NumPrimaryVariables(),
		Variables:        tr.NumVariables(),
		Clauses:          tr.NumClauses(),
		TranslationTime:  translTime,
	}
	s.options.Reporter().SolvingCNF(stats.PrimaryVariables, stats.Variables, stats.Clauses)

	solveStart := time.Now()
	ok, err := tr.Solver().Solve()
	stats.SolvingTime = time.Since(solveStart)
	if err != nil {
		return nil, errors.Wrap(err, "kodkod: SAT solving failed")
	}

	sol := &Solution{Stats: stats, Log: tr.Log()}
	if ok {
		sol.Outcome = Satisfiable
		sol.Instance = tr.Interpret()
	} else {
		sol.Outcome = Unsatisfiable
		if ce, capable := tr.Solver().(sat.CoreExtractor); capable {
			sol.Proof = &Proof{Core: ce.Core()}
		}
	}
	return sol, nil
}

// lowerBoundInstance pads an instance with every relation's lower
// bound, the canonical model of a trivially satisfiable formula.
func lowerBoundInstance(b *instance.Bounds) *instance.Instance {
	in := instance.NewInstance(b.Universe())
	for _, r := range b.Relations() {
		in.Add(r, b.Lower(r))
	}
	for _, v := range b.Ints() {
		in.AddInt(v, b.IntBound(v))
	}
	return in
}

// SolveAll enumerates the distinct solutions of the formula lazily.
// The back end selected by the options must be incremental. The final
// element of the sequence is always unsatisfiable; after it, Next
// returns nil.
func (s *Solver) SolveAll(ctx context.Context, f ast.Formula, b *instance.Bounds) *Iterator {
	probe := s.options.Solver()()
	_, incremental := probe.(sat.Incremental)
	probe.Free()
	if !incremental {
		panic(fmt.Sprintf("kodkod: solution enumeration requires an incremental back end, got %T", probe))
	}
	return &Iterator{
		solver:  s,
		ctx:     ctx,
		formula: f,
		bounds:  b,
	}
}

// Iterator enumerates solutions. It is stateful and not safe for
// concurrent use; it owns its SAT instance until exhausted.
type Iterator struct {
	solver  *Solver
	ctx     context.Context
	formula ast.Formula
	bounds  *instance.Bounds

	trans      *engine.Translation
	translTime time.Duration
	done       bool
}

// Next returns the next solution, or nil when the sequence is
// exhausted. The last non-nil solution is always UNSATISFIABLE or
// TRIVIALLY_UNSATISFIABLE.
func (it *Iterator) Next() (*Solution, error) {
	if it.done {
		return nil, nil
	}
	if it.trans == nil {
		return it.translate()
	}
	return it.solveNext()
}

// translate lowers the current formula and bounds, handling trivial
// outcomes by rewriting the formula with witness relations.
func (it *Iterator) translate() (*Solution, error) {
	start := time.Now()
	tr, err := engine.Translate(it.ctx, it.formula, it.bounds, it.solver.options)
	if err != nil {
		var te *engine.TrivialError
		if !errors.As(err, &te) {
			it.done = true
			return nil, err
		}
		sol, _ := it.solver.trivial(err, time.Since(start))
		if sol.Outcome == TriviallyUnsatisfiable {
			it.done = true
			return sol, nil
		}
		it.blockTrivial(te.Bounds, sol.Instance)
		return sol, nil
	}
	it.trans = tr
	it.translTime = time.Since(start)
	return it.solveNext()
}

// blockTrivial excludes the trivially found instance: every relation
// whose bounds are not exact is compared against a fresh witness relation
// bound exactly to the found tuples, and the formula requires some
// comparison to fail.
func (it *Iterator) blockTrivial(b *instance.Bounds, found *instance.Instance) {
	next := b.Clone()
	var same ast.Formula = ast.True
	for _, r := range b.Relations() {
		if b.Lower(r).Equals(b.Upper(r)) {
			continue
		}
		w := ast.NewRelation(r.Name()+"'", r.Arity())
		next.BoundExactly(w, found.Tuples(r))
		same = ast.And(same, ast.Equals(r, w))
	}
	it.formula = ast.And(it.formula, ast.Not(same))
	it.bounds = next
}

// solveNext runs the incremental solver once and blocks the found
// model over the primary variables.
func (it *Iterator) solveNext() (*Solution, error) {
	stats := Statistics{
		PrimaryVariables: it.trans.NumPrimaryVariables(),
		Variables:        it.trans.NumVariables(),
		Clauses:          it.trans.NumClauses(),
		TranslationTime:  it.translTime,
	}
	it.solver.options.Reporter().SolvingCNF(stats.PrimaryVariables, stats.Variables, stats.Clauses)

	solveStart := time.Now()
	ok, err := it.trans.Solver().Solve()
	stats.SolvingTime = time.Since(solveStart)
	if err != nil {
		it.done = true
		it.trans.Free()
		return nil, errors.Wrap(err, "kodkod: SAT solving failed")
	}

	sol := &Solution{Stats: stats, Log: it.trans.Log()}
	if !ok {
		it.done = true
		it.trans.Free()
		sol.Outcome = Unsatisfiable
		return sol, nil
	}

	sol.Outcome = Satisfiable
	sol.Instance = it.trans.Interpret()

	// Block this model: some primary variable must change.
	n := it.trans.NumPrimaryVariables()
	block := make([]int, n)
	for v := 1; v <= n; v++ {
		if it.trans.Solver().ValueOf(v) {
			block[v-1] = -v
		} else {
			block[v-1] = v
		}
	}
	it.trans.Solver().AddClause(block)
	return sol, nil
}
