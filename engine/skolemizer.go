package engine

import (
	"context"

	"github.com/manyani/kodkod/ast"
	"github.com/manyani/kodkod/circuit"
	"github.com/manyani/kodkod/instance"
)

// skolemizer rewrites a formula so that existential quantifiers whose
// universal nesting depth is within budget are replaced by fresh skolem
// relations, registered with the bounds. The traversal tracks polarity
// in negated: an existential is any `some` at positive polarity or
// `all` at negative polarity.
type skolemizer struct {
	bounds   *instance.Bounds
	approx   *LeafInterpreter
	reporter Reporter

	// repl maps skolemized variables to their replacement expressions.
	repl map[*ast.Variable]ast.Expression

	// universals is the stack of enclosing non-skolemizable universal
	// declarations; bound matrices are computed lazily.
	universals []*universalDecl

	// source maps rewritten nodes to their originals for logging.
	source map[ast.Node]ast.Node
}

type universalDecl struct {
	decl  *ast.Decl
	upper *instance.TupleSet // lazily computed upper bound of the domain
}

// skolemize rewrites the annotated formula, extending bounds with the
// bounds of the introduced skolem relations. depth is the maximum
// universal nesting under which existentials are still eliminated.
func skolemize(ann *ast.AnnotatedNode, bounds *instance.Bounds, depth, sharing int,
	reporter Reporter) *ast.AnnotatedNode {
	s := &skolemizer{
		bounds:   bounds,
		approx:   NewOverapproxInterpreter(bounds, sharing),
		reporter: reporter,
		repl:     make(map[*ast.Variable]ast.Expression),
		source:   make(map[ast.Node]ast.Node),
	}
	root := s.formula(ann.Root(), false, depth)
	return ast.AnnotateWithSource(root, s.source)
}

func (s *skolemizer) record(rewritten, original ast.Node) ast.Node {
	if rewritten != original {
		s.source[rewritten] = original
	}
	return rewritten
}

func (s *skolemizer) formula(f ast.Formula, negated bool, depth int) ast.Formula {
	switch n := f.(type) {
	case *ast.ConstantFormula:
		return n

	case *ast.NotFormula:
		inner := s.formula(n.Formula(), !negated, depth)
		if inner == n.Formula() {
			return n
		}
		return s.record(ast.Not(inner), n).(ast.Formula)

	case *ast.BinaryFormula:
		return s.binary(n, negated, depth)

	case *ast.QuantifiedFormula:
		return s.quantified(n, negated, depth)

	case *ast.ComparisonFormula:
		left, right := s.expr(n.Left()), s.expr(n.Right())
		if left == n.Left() && right == n.Right() {
			return n
		}
		var out ast.Formula
		if n.Op() == ast.CompSubset {
			out = ast.Subset(left, right)
		} else {
			out = ast.Equals(left, right)
		}
		return s.record(out, n).(ast.Formula)

	case *ast.MultiplicityFormula:
		e := s.expr(n.Expression())
		if e == n.Expression() {
			return n
		}
		var out ast.Formula
		switch n.Multiplicity() {
		case ast.MultNo:
			out = ast.NoExpr(e)
		case ast.MultLone:
			out = ast.Lone(e)
		case ast.MultOne:
			out = ast.One(e)
		default:
			out = ast.Some(e)
		}
		return s.record(out, n).(ast.Formula)

	case *ast.IntComparisonFormula:
		left, right := s.intExpr(n.Left()), s.intExpr(n.Right())
		if left == n.Left() && right == n.Right() {
			return n
		}
		var out ast.Formula
		switch n.Op() {
		case ast.IntEQ:
			out = ast.IntEq(left, right)
		case ast.IntLT:
			out = ast.IntLt(left, right)
		case ast.IntLE:
			out = ast.IntLe(left, right)
		case ast.IntGT:
			out = ast.IntGt(left, right)
		default:
			out = ast.IntGe(left, right)
		}
		return s.record(out, n).(ast.Formula)

	case *ast.RelationPredicate:
		if n.Kind() != ast.PredFunction {
			return n
		}
		domain, rng := s.expr(n.Domain()), s.expr(n.Range())
		if domain == n.Domain() && rng == n.Range() {
			return n
		}
		return s.record(ast.Function(n.Relation(), domain, rng), n).(ast.Formula)
	}
	panic("engine: unknown formula type in skolemizer")
}

// binary dispatches on the connective: conjunctions keep the budget at
// positive polarity, disjunctions and implications at negative
// polarity, and an equivalence is never a skolemizable context.
func (s *skolemizer) binary(n *ast.BinaryFormula, negated bool, depth int) ast.Formula {
	childDepth := -1
	flipLeft := false
	switch n.Op() {
	case ast.FormulaAnd:
		if !negated {
			childDepth = depth
		}
	case ast.FormulaOr:
		if negated {
			childDepth = depth
		}
	case ast.FormulaImplies:
		flipLeft = true
		if negated {
			childDepth = depth
		}
	case ast.FormulaIff:
		// both sides carry both polarities; nothing may skolemize
	}
	leftNeg := negated
	if flipLeft {
		leftNeg = !negated
	}
	left := s.formula(n.Left(), leftNeg, childDepth)
	right := s.formula(n.Right(), negated, childDepth)
	if left == n.Left() && right == n.Right() {
		return n
	}
	var out ast.Formula
	switch n.Op() {
	case ast.FormulaAnd:
		out = ast.And(left, right)
	case ast.FormulaOr:
		out = ast.Or(left, right)
	case ast.FormulaImplies:
		out = ast.Implies(left, right)
	default:
		out = ast.Iff(left, right)
	}
	return s.record(out, n).(ast.Formula)
}

func (s *skolemizer) quantified(n *ast.QuantifiedFormula, negated bool, depth int) ast.Formula {
	existential := (n.Quantifier() == ast.QuantifierSome) != negated
	if existential && depth >= 0 && len(s.universals) <= depth {
		return s.skolemizeQuantifier(n, negated, depth)
	}

	// The quantifier stays. Universal declarations join the stack so
	// deeper existentials can refer to them; anything else makes the
	// body a non-skolemizable context.
	decls := n.Decls().Slice()
	newDecls := make([]*ast.Decl, len(decls))
	changed := false
	bodyDepth := depth
	pushed := 0
	for i, d := range decls {
		e := s.expr(d.Expression())
		if e != d.Expression() {
			changed = true
		}
		newDecls[i] = s.rebuildDecl(d, e)
		if !existential && d.Multiplicity() == ast.MultOne && d.Variable().Arity() == 1 {
			s.universals = append(s.universals, &universalDecl{decl: newDecls[i]})
			pushed++
		} else {
			if higherOrder(d) {
				panic(&HigherOrderDeclError{Decl: d})
			}
			bodyDepth = -1
		}
	}
	if existential {
		// An existential out of budget shields everything below it.
		bodyDepth = -1
	}

	body := s.formula(n.Formula(), negated, bodyDepth)
	s.universals = s.universals[:len(s.universals)-pushed]

	if !changed && body == n.Formula() {
		return n
	}
	ds := ast.NewDecls(newDecls...)
	var out ast.Formula
	if n.Quantifier() == ast.QuantifierAll {
		out = ast.Forall(ds, body)
	} else {
		out = ast.Exists(ds, body)
	}
	return s.record(out, n).(ast.Formula)
}

// higherOrder reports whether d cannot be expressed without quantifying
// over relations: a one/lone/some declaration of arity above 1.
func higherOrder(d *ast.Decl) bool {
	return d.Multiplicity() != ast.MultSet && d.Variable().Arity() > 1
}

// skolemizeQuantifier eliminates every declaration of an effectively
// existential quantifier. Each variable x: m E becomes the expression
// u1.u2...uk.$x over a fresh (k+a)-ary relation $x, where u1..uk are
// the enclosing universal variables; $x is bounded by the product of
// the universals' upper bounds with an over-approximation of E. The
// skolem constraints are conjoined with the body at positive polarity
// and become the antecedent of an implication at negative polarity.
func (s *skolemizer) skolemizeQuantifier(n *ast.QuantifiedFormula, negated bool, depth int) ast.Formula {
	var constraints []ast.Formula
	bound := make([]*ast.Variable, 0, n.Decls().Size())

	for _, d := range n.Decls().Slice() {
		e := s.expr(d.Expression())
		arity := d.Variable().Arity()

		skRel := ast.NewRelation("$"+d.Variable().Name(), len(s.universals)+arity)

		skBound := s.upperBound(e)
		universals := make([]*ast.Variable, len(s.universals))
		for i := len(s.universals) - 1; i >= 0; i-- {
			u := s.universals[i]
			if u.upper == nil {
				u.upper = s.upperBound(u.decl.Expression())
			}
			skBound = u.upper.Product(skBound)
			universals[i] = u.decl.Variable()
		}
		factory := s.bounds.Universe().Factory()
		s.bounds.Bound(skRel, factory.NoneOf(skRel.Arity()), skBound)
		s.reporter.Skolemizing(d, skRel, universals)

		var skExpr ast.Expression = skRel
		for i := len(s.universals) - 1; i >= 0; i-- {
			skExpr = ast.Join(s.universals[i].decl.Variable(), skExpr)
		}
		s.repl[d.Variable()] = skExpr
		bound = append(bound, d.Variable())

		constraints = append(constraints, ast.Subset(skExpr, e))
		switch d.Multiplicity() {
		case ast.MultSet:
		case ast.MultOne:
			constraints = append(constraints, ast.One(skExpr))
		case ast.MultLone:
			constraints = append(constraints, ast.Lone(skExpr))
		case ast.MultSome:
			constraints = append(constraints, ast.Some(skExpr))
		}
	}

	body := s.formula(n.Formula(), negated, depth)
	for _, v := range bound {
		delete(s.repl, v)
	}

	constraint := constraints[0]
	for _, c := range constraints[1:] {
		constraint = ast.And(constraint, c)
	}
	var out ast.Formula
	if negated {
		// The node reads `all decls | body` under a negation; the
		// constraints become its antecedent.
		out = ast.Implies(constraint, body)
	} else {
		out = ast.And(constraint, body)
	}
	return s.record(out, n).(ast.Formula)
}

// upperBound over-approximates the tuple set an expression can take
// under the current bounds, with enclosing universal variables bound to
// their domains' over-approximations.
func (s *skolemizer) upperBound(e ast.Expression) *instance.TupleSet {
	var env *Environment
	for _, u := range s.universals {
		if u.upper == nil {
			u.upper = s.upperBound(u.decl.Expression())
		}
		m := s.approx.Factory().NewMatrix(u.decl.Variable().Arity(), s.bounds.Universe().Size())
		u.upper.ForEachIndex(func(i int) { m.Set(i, circuit.True) })
		env = env.Extend(u.decl.Variable(), m)
	}
	tr := newTranslator(context.Background(), s.approx, ast.Annotate(ast.True), 1)
	m := tr.expr(e, env)
	ts := s.bounds.Universe().Factory().NoneOf(e.Arity())
	for _, i := range m.Indices() {
		ts.AddIndex(i)
	}
	return ts
}

func (s *skolemizer) rebuildDecl(d *ast.Decl, e ast.Expression) *ast.Decl {
	if e == d.Expression() {
		return d
	}
	var out *ast.Decl
	switch d.Multiplicity() {
	case ast.MultOne:
		out = ast.OneOf(d.Variable(), e)
	case ast.MultLone:
		out = ast.LoneOf(d.Variable(), e)
	case ast.MultSome:
		out = ast.SomeOf(d.Variable(), e)
	default:
		out = ast.SetOf(d.Variable(), e)
	}
	s.record(out, d)
	return out
}

// expr applies the pending skolem substitutions to an expression.
func (s *skolemizer) expr(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case *ast.Relation, *ast.ConstExpr:
		return e

	case *ast.Variable:
		if r, ok := s.repl[n]; ok {
			return r
		}
		return e

	case *ast.BinaryExpr:
		left, right := s.expr(n.Left()), s.expr(n.Right())
		if left == n.Left() && right == n.Right() {
			return n
		}
		var out ast.Expression
		switch n.Op() {
		case ast.ExprUnion:
			out = ast.Union(left, right)
		case ast.ExprIntersection:
			out = ast.Intersection(left, right)
		case ast.ExprDifference:
			out = ast.Difference(left, right)
		case ast.ExprJoin:
			out = ast.Join(left, right)
		case ast.ExprProduct:
			out = ast.Product(left, right)
		default:
			out = ast.Override(left, right)
		}
		return s.record(out, n).(ast.Expression)

	case *ast.UnaryExpr:
		inner := s.expr(n.Expr())
		if inner == n.Expr() {
			return n
		}
		var out ast.Expression
		switch n.Op() {
		case ast.ExprTranspose:
			out = ast.Transpose(inner)
		case ast.ExprClosure:
			out = ast.Closure(inner)
		default:
			out = ast.ReflexiveClosure(inner)
		}
		return s.record(out, n).(ast.Expression)

	case *ast.ComprehensionExpr:
		// A comprehension is a non-skolemizable context; only the
		// substitution applies inside.
		decls := n.Decls().Slice()
		newDecls := make([]*ast.Decl, len(decls))
		changed := false
		for i, d := range decls {
			de := s.expr(d.Expression())
			if de != d.Expression() {
				changed = true
			}
			newDecls[i] = s.rebuildDecl(d, de)
		}
		body := s.formula(n.Formula(), false, -1)
		if !changed && body == n.Formula() {
			return n
		}
		return s.record(ast.Comprehension(ast.NewDecls(newDecls...), body), n).(ast.Expression)

	case *ast.IfExpr:
		cond := s.formula(n.Condition(), false, -1)
		then, els := s.expr(n.Then()), s.expr(n.Else())
		if cond == n.Condition() && then == n.Then() && els == n.Else() {
			return n
		}
		return s.record(ast.IfThenElse(cond, then, els), n).(ast.Expression)

	case *ast.IntToExprCast:
		inner := s.intExpr(n.IntExpr())
		if inner == n.IntExpr() {
			return n
		}
		return s.record(ast.CastToExpr(inner), n).(ast.Expression)
	}
	panic("engine: unknown expression type in skolemizer")
}

// intExpr applies the pending skolem substitutions to an integer
// expression.
func (s *skolemizer) intExpr(e ast.IntExpression) ast.IntExpression {
	switch n := e.(type) {
	case *ast.IntConstant:
		return n

	case *ast.UnaryIntExpr:
		inner := s.intExpr(n.Expr())
		if inner == n.Expr() {
			return n
		}
		var out ast.IntExpression
		switch n.Op() {
		case ast.IntNeg:
			out = ast.Neg(inner)
		case ast.IntAbs:
			out = ast.Abs(inner)
		default:
			out = ast.Sgn(inner)
		}
		return s.record(out, n).(ast.IntExpression)

	case *ast.BinaryIntExpr:
		left, right := s.intExpr(n.Left()), s.intExpr(n.Right())
		if left == n.Left() && right == n.Right() {
			return n
		}
		var out ast.IntExpression
		switch n.Op() {
		case ast.IntPlus:
			out = ast.Plus(left, right)
		case ast.IntMinus:
			out = ast.Minus(left, right)
		case ast.IntTimes:
			out = ast.Times(left, right)
		case ast.IntDivide:
			out = ast.Divide(left, right)
		case ast.IntModulo:
			out = ast.Modulo(left, right)
		case ast.IntAnd:
			out = ast.BitAnd(left, right)
		case ast.IntOr:
			out = ast.BitOr(left, right)
		case ast.IntXor:
			out = ast.BitXor(left, right)
		case ast.IntShl:
			out = ast.Shl(left, right)
		case ast.IntShr:
			out = ast.Shr(left, right)
		default:
			out = ast.Sha(left, right)
		}
		return s.record(out, n).(ast.IntExpression)

	case *ast.SumOverExpr:
		decls := n.Decls().Slice()
		newDecls := make([]*ast.Decl, len(decls))
		changed := false
		for i, d := range decls {
			de := s.expr(d.Expression())
			if de != d.Expression() {
				changed = true
			}
			newDecls[i] = s.rebuildDecl(d, de)
		}
		body := s.intExpr(n.IntExpr())
		if !changed && body == n.IntExpr() {
			return n
		}
		return s.record(ast.SumOver(ast.NewDecls(newDecls...), body), n).(ast.IntExpression)

	case *ast.ExprToIntCast:
		inner := s.expr(n.Expr())
		if inner == n.Expr() {
			return n
		}
		var out ast.IntExpression
		if n.Op() == ast.CastCardinality {
			out = ast.Card(inner)
		} else {
			out = ast.IntSum(inner)
		}
		return s.record(out, n).(ast.IntExpression)
	}
	panic("engine: unknown integer expression type in skolemizer")
}
