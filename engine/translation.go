package engine

import (
	"context"

	"github.com/manyani/kodkod/ast"
	"github.com/manyani/kodkod/circuit"
	"github.com/manyani/kodkod/instance"
	"github.com/manyani/kodkod/sat"
)

// Translation is the result of lowering a formula and bounds to a SAT
// instance: the solver holding the clauses, the mapping from primary
// variables back to relation tuples, and an optional log.
type Translation struct {
	solver     sat.Solver
	bounds     *instance.Bounds
	interp     *LeafInterpreter
	numPrimary int
	log        *Log
}

// Solver returns the SAT instance. The translation owns it until Free
// is called.
func (t *Translation) Solver() sat.Solver { return t.solver }

// Bounds returns the bounds the translation was produced against,
// including any skolem relations, as an unmodifiable view.
func (t *Translation) Bounds() *instance.Bounds { return t.bounds }

// NumPrimaryVariables returns the number of primary variables; they are
// numbered 1..n.
func (t *Translation) NumPrimaryVariables() int { return t.numPrimary }

// NumVariables returns the total variable count of the SAT instance.
func (t *Translation) NumVariables() int { return t.solver.NumberOfVariables() }

// NumClauses returns the clause count of the SAT instance.
func (t *Translation) NumClauses() int { return t.solver.NumberOfClauses() }

// PrimaryVariables returns the label of the first primary variable
// interpreting r and the tuple indices the block covers, in variable
// order.
func (t *Translation) PrimaryVariables(r *ast.Relation) (start int, tuples []int, ok bool) {
	return t.interp.PrimaryRange(r)
}

// Log returns the translation log, or nil when logging was off.
func (t *Translation) Log() *Log { return t.log }

// Interpret reads the solver's satisfying assignment back into an
// instance: each relation holds its lower bound plus the free tuples
// whose primary variables are true. Valid only after a successful
// Solve on the translation's solver.
func (t *Translation) Interpret() *instance.Instance {
	in := instance.NewInstance(t.bounds.Universe())
	for _, r := range t.bounds.Relations() {
		tuples := t.bounds.Lower(r).Clone()
		start, free, _ := t.interp.PrimaryRange(r)
		for k, tupleIdx := range free {
			if t.solver.ValueOf(start + k) {
				tuples.AddIndex(tupleIdx)
			}
		}
		in.Add(r, tuples)
	}
	for _, v := range t.bounds.Ints() {
		in.AddInt(v, t.bounds.IntBound(v))
	}
	return in
}

// Free releases the SAT instance.
func (t *Translation) Free() { t.solver.Free() }

// Log records which parts of the SAT instance came from where.
type Log struct {
	// Relations maps each relation to its primary variable block.
	Relations []RelationRecord
	// Conjuncts maps the root's top-level conjuncts to the labels of
	// the gates they produced; filled only when formulas are tracked.
	Conjuncts []ConjunctRecord
}

// RelationRecord is one relation's block of primary variables.
type RelationRecord struct {
	Relation *ast.Relation
	// StartVariable is the label of the block's first variable.
	StartVariable int
	// Tuples are the tuple indices of the free tuples, in variable
	// order.
	Tuples []int
}

// ConjunctRecord ties a top-level conjunct to its root gate label.
type ConjunctRecord struct {
	// Source is the conjunct as written by the caller, before any
	// skolem rewriting.
	Source ast.Formula
	// Label is the literal whose truth reifies the conjunct.
	Label int
}

// Translate lowers a formula and bounds into a SAT instance. The
// bounds may be extended with skolem relations. The error is one of
// *TrivialError, *UnboundLeafError, *HigherOrderDeclError or
// *AbortedError.
func Translate(ctx context.Context, f ast.Formula, b *instance.Bounds, opts *Options) (res *Translation, err error) {
	if opts == nil {
		opts = NewOptions()
	}
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *TrivialError, *UnboundLeafError, *HigherOrderDeclError, *AbortedError:
				res, err = nil, e.(error)
			default:
				panic(r)
			}
		}
	}()

	reporter := opts.Reporter()
	ann := ast.Annotate(f)
	if opts.SkolemDepth() >= 0 {
		ann = skolemize(ann, b, opts.SkolemDepth(), opts.Sharing(), reporter)
	}

	reporter.TranslatingToBoolean(ann.Root())
	interp := NewExactInterpreter(b, opts.Sharing())
	tr := newTranslator(ctx, interp, ann, opts.Bitwidth())

	var log *Log
	var root circuit.Value
	if opts.TrackFormulas() {
		log = &Log{}
		acc := interp.Factory().Accumulator(circuit.OpAnd)
		for _, conjunct := range conjunctsOf(ann.Root()) {
			v := tr.formula(conjunct, nil)
			acc.Add(v)
			log.Conjuncts = append(log.Conjuncts, ConjunctRecord{
				Source: ann.SourceOf(conjunct).(ast.Formula),
				Label:  v.Label(),
			})
		}
		root = interp.Factory().Adopt(acc)
	} else {
		root = tr.formula(ann.Root(), nil)
	}

	if circuit.IsConstant(root) {
		panic(&TrivialError{Value: root == circuit.True, Bounds: b.Clone()})
	}

	if log == nil && opts.LogTranslation() {
		log = &Log{}
	}
	if log != nil {
		for _, r := range b.Relations() {
			start, tuples, _ := interp.PrimaryRange(r)
			log.Relations = append(log.Relations, RelationRecord{
				Relation:      r,
				StartVariable: start,
				Tuples:        tuples,
			})
		}
	}

	solver := opts.Solver()()
	solver.SetTimeout(opts.Timeout())
	reporter.TranslatingToCNF()
	toCNF(root, solver)
	// A root that lowers to a bare literal labels fewer variables than
	// there are primaries; every primary must stay addressable for
	// model reads and blocking clauses.
	if n := interp.NumPrimary(); solver.NumberOfVariables() < n {
		solver.AddVariables(n - solver.NumberOfVariables())
	}

	return &Translation{
		solver:     solver,
		bounds:     b.Unmodifiable(),
		interp:     interp,
		numPrimary: interp.NumPrimary(),
		log:        log,
	}, nil
}

// conjunctsOf flattens the conjunction spine of a formula.
func conjunctsOf(f ast.Formula) []ast.Formula {
	if b, ok := f.(*ast.BinaryFormula); ok && b.Op() == ast.FormulaAnd {
		return append(conjunctsOf(b.Left()), conjunctsOf(b.Right())...)
	}
	return []ast.Formula{f}
}

// Approximate computes a sound over-approximation of the tuples an
// expression can take under the given bounds, without allocating any
// boolean variables.
func Approximate(e ast.Expression, b *instance.Bounds, opts *Options) (ts *instance.TupleSet, err error) {
	if opts == nil {
		opts = NewOptions()
	}
	defer func() {
		if r := recover(); r != nil {
			switch t := r.(type) {
			case *UnboundLeafError, *HigherOrderDeclError:
				ts, err = nil, t.(error)
			default:
				panic(r)
			}
		}
	}()
	interp := NewOverapproxInterpreter(b, opts.Sharing())
	tr := newTranslator(context.Background(), interp, ast.Annotate(ast.True), opts.Bitwidth())
	m := tr.expr(e, nil)
	out := b.Universe().Factory().NoneOf(e.Arity())
	for _, i := range m.Indices() {
		out.AddIndex(i)
	}
	return out, nil
}
