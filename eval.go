package kodkod

import (
	"github.com/manyani/kodkod/ast"
	"github.com/manyani/kodkod/engine"
	"github.com/manyani/kodkod/instance"
)

// Evaluator decides closed formulas and expressions against a concrete
// instance, independently of the solving pipeline's variable machinery:
// the instance is turned into exact bounds, under which translation
// produces constants only.
type Evaluator struct {
	instance *instance.Instance
	options  *Options
	bounds   *instance.Bounds
}

// NewEvaluator creates an evaluator over the given instance; nil
// options select the defaults.
func NewEvaluator(in *instance.Instance, opts *Options) *Evaluator {
	if opts == nil {
		opts = NewOptions()
	}
	b := instance.NewBounds(in.Universe())
	for _, r := range in.Relations() {
		b.BoundExactly(r, in.Tuples(r))
	}
	for _, v := range in.Ints() {
		b.BoundInt(v, in.IntAtom(v))
	}
	return &Evaluator{instance: in, options: opts, bounds: b}
}

// Instance returns the instance being evaluated against.
func (e *Evaluator) Instance() *instance.Instance { return e.instance }

// Evaluate decides a closed formula.
func (e *Evaluator) Evaluate(f ast.Formula) (bool, error) {
	return engine.EvaluateFormula(f, e.bounds, e.options)
}

// EvaluateExpr computes the tuple set a closed expression denotes.
func (e *Evaluator) EvaluateExpr(expr ast.Expression) (*instance.TupleSet, error) {
	return engine.EvaluateExpr(expr, e.bounds, e.options)
}

// EvaluateInt computes the value of a closed integer expression at the
// options' bitwidth.
func (e *Evaluator) EvaluateInt(ie ast.IntExpression) (int, error) {
	return engine.EvaluateInt(ie, e.bounds, e.options)
}
