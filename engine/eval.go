package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/manyani/kodkod/ast"
	"github.com/manyani/kodkod/circuit"
	"github.com/manyani/kodkod/instance"
)

// evalTranslator builds a translator over exact bounds; every leaf is
// constant, so translation is evaluation.
func evalTranslator(b *instance.Bounds, opts *Options) *translator {
	interp := NewExactInterpreter(b, opts.Sharing())
	return newTranslator(context.Background(), interp, ast.Annotate(ast.True), opts.Bitwidth())
}

func recoverEval(err *error) {
	if r := recover(); r != nil {
		switch e := r.(type) {
		case *UnboundLeafError, *HigherOrderDeclError:
			*err = e.(error)
		default:
			panic(r)
		}
	}
}

// EvaluateFormula decides a closed formula against exact bounds. The
// bounds must leave no relation free; otherwise the result is not a
// constant and an error is returned.
func EvaluateFormula(f ast.Formula, b *instance.Bounds, opts *Options) (result bool, err error) {
	if opts == nil {
		opts = NewOptions()
	}
	defer recoverEval(&err)
	v := evalTranslator(b, opts).formula(f, nil)
	if !circuit.IsConstant(v) {
		return false, errors.Errorf("engine: formula %v does not evaluate to a constant; bounds are not exact", f)
	}
	return v == circuit.True, nil
}

// EvaluateExpr computes the tuples a closed expression denotes under
// exact bounds.
func EvaluateExpr(e ast.Expression, b *instance.Bounds, opts *Options) (ts *instance.TupleSet, err error) {
	if opts == nil {
		opts = NewOptions()
	}
	defer recoverEval(&err)
	m := evalTranslator(b, opts).expr(e, nil)
	out := b.Universe().Factory().NoneOf(e.Arity())
	var bad bool
	m.ForEach(func(i int, v circuit.Value) {
		if v == circuit.True {
			out.AddIndex(i)
		} else if !circuit.IsConstant(v) {
			bad = true
		}
	})
	if bad {
		return nil, errors.Errorf("engine: expression %v does not evaluate to constants; bounds are not exact", e)
	}
	return out, nil
}

// EvaluateInt computes the value of a closed integer expression under
// exact bounds, at the options' bitwidth.
func EvaluateInt(e ast.IntExpression, b *instance.Bounds, opts *Options) (v int, err error) {
	if opts == nil {
		opts = NewOptions()
	}
	defer recoverEval(&err)
	iv := evalTranslator(b, opts).intExpr(e, nil)
	if !iv.IsConstant() {
		return 0, errors.Errorf("engine: integer expression %v does not evaluate to a constant; bounds are not exact", e)
	}
	return iv.ConstValue(), nil
}
