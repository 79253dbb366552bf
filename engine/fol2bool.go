package engine

import (
	"context"
	"fmt"

	"github.com/manyani/kodkod/ast"
	"github.com/manyani/kodkod/circuit"
)

// translator lowers an annotated formula into boolean circuits against
// a leaf interpreter. Results for shared nodes without free variables
// are cached by node identity.
type translator struct {
	ctx      context.Context
	interp   *LeafInterpreter
	ann      *ast.AnnotatedNode
	bitwidth int

	cache  map[ast.Node]any
	closed map[ast.Node]bool
}

func newTranslator(ctx context.Context, interp *LeafInterpreter, ann *ast.AnnotatedNode, bitwidth int) *translator {
	return &translator{
		ctx:      ctx,
		interp:   interp,
		ann:      ann,
		bitwidth: bitwidth,
		cache:    make(map[ast.Node]any),
		closed:   make(map[ast.Node]bool),
	}
}

func (t *translator) factory() *circuit.Factory { return t.interp.Factory() }

func (t *translator) checkAborted() {
	if err := t.ctx.Err(); err != nil {
		panic(&AbortedError{Phase: "translation", Cause: err})
	}
}

// cacheable reports whether a node's translation may be reused: it must
// be shared and must not mention free variables, whose bindings differ
// between visits.
func (t *translator) cacheable(n ast.Node) bool {
	if !t.ann.Shared(n) {
		return false
	}
	closed, ok := t.closed[n]
	if !ok {
		closed = len(ast.FreeVariables(n)) == 0
		t.closed[n] = closed
	}
	return closed
}

func (t *translator) formula(f ast.Formula, env *Environment) circuit.Value {
	t.checkAborted()
	if v, ok := t.cache[f]; ok {
		return v.(circuit.Value)
	}
	v := t.translateFormula(f, env)
	if t.cacheable(f) {
		t.cache[f] = v
	}
	return v
}

func (t *translator) translateFormula(f ast.Formula, env *Environment) circuit.Value {
	cf := t.factory()
	switch n := f.(type) {
	case *ast.ConstantFormula:
		return circuit.BoolConstant(n.Value())

	case *ast.NotFormula:
		return cf.Not(t.formula(n.Formula(), env))

	case *ast.BinaryFormula:
		left := t.formula(n.Left(), env)
		right := t.formula(n.Right(), env)
		switch n.Op() {
		case ast.FormulaAnd:
			return cf.And(left, right)
		case ast.FormulaOr:
			return cf.Or(left, right)
		case ast.FormulaImplies:
			return cf.Implies(left, right)
		default:
			return cf.Iff(left, right)
		}

	case *ast.ComparisonFormula:
		left := t.expr(n.Left(), env)
		right := t.expr(n.Right(), env)
		if n.Op() == ast.CompSubset {
			return left.Subset(right)
		}
		return left.Equals(right)

	case *ast.MultiplicityFormula:
		m := t.expr(n.Expression(), env)
		switch n.Multiplicity() {
		case ast.MultNo:
			return m.None()
		case ast.MultSome:
			return m.Some()
		case ast.MultOne:
			return m.One()
		default:
			return m.Lone()
		}

	case *ast.QuantifiedFormula:
		op := circuit.OpOr
		if n.Quantifier() == ast.QuantifierAll {
			op = circuit.OpAnd
		}
		acc := cf.Accumulator(op)
		t.quantify(n.Decls().Slice(), 0, n.Formula(), env, circuit.True, acc)
		return cf.Adopt(acc)

	case *ast.IntComparisonFormula:
		left := t.intExpr(n.Left(), env)
		right := t.intExpr(n.Right(), env)
		switch n.Op() {
		case ast.IntEQ:
			return left.Eq(right)
		case ast.IntLT:
			return left.Lt(right)
		case ast.IntLE:
			return left.Le(right)
		case ast.IntGT:
			return right.Lt(left)
		default:
			return right.Le(left)
		}

	case *ast.RelationPredicate:
		return t.formula(expandPredicate(n), env)
	}
	panic(fmt.Sprintf("engine: unknown formula type %T", f))
}

// quantify enumerates the declaration domains depth first, guarding the
// body with the membership literals of the bound tuples. For a
// universal accumulator (AND) each leaf contributes guard => body; for
// an existential one (OR) guard && body.
func (t *translator) quantify(decls []*ast.Decl, i int, body ast.Formula,
	env *Environment, guard circuit.Value, acc *circuit.Accumulator) {
	cf := t.factory()
	if acc.IsShortCircuited() {
		return
	}
	if i == len(decls) {
		b := t.formula(body, env)
		if acc.Op() == circuit.OpAnd {
			acc.Add(cf.Implies(guard, b))
		} else {
			acc.Add(cf.And(guard, b))
		}
		return
	}
	d := decls[i]
	if d.Multiplicity() != ast.MultOne {
		panic(&HigherOrderDeclError{Decl: d})
	}
	domain := t.expr(d.Expression(), env)
	domain.ForEach(func(idx int, lit circuit.Value) {
		binding := cf.NewMatrix(domain.Arity(), domain.Side())
		binding.Set(idx, circuit.True)
		t.quantify(decls, i+1, body, env.Extend(d.Variable(), binding),
			cf.And(guard, lit), acc)
	})
}

func (t *translator) expr(e ast.Expression, env *Environment) *circuit.Matrix {
	t.checkAborted()
	if v, ok := t.cache[e]; ok {
		return v.(*circuit.Matrix)
	}
	m := t.translateExpr(e, env)
	if t.cacheable(e) {
		t.cache[e] = m
	}
	return m
}

func (t *translator) translateExpr(e ast.Expression, env *Environment) *circuit.Matrix {
	cf := t.factory()
	switch n := e.(type) {
	case *ast.Relation:
		return t.interp.Interpret(n)

	case *ast.Variable:
		m, ok := env.Lookup(n)
		if !ok {
			panic(&UnboundLeafError{Leaf: n})
		}
		return m

	case *ast.ConstExpr:
		return t.interp.InterpretConst(n)

	case *ast.BinaryExpr:
		left := t.expr(n.Left(), env)
		right := t.expr(n.Right(), env)
		switch n.Op() {
		case ast.ExprUnion:
			return left.Or(right)
		case ast.ExprIntersection:
			return left.And(right)
		case ast.ExprDifference:
			if !t.interp.exact {
				// Negation under the all-True substitution would
				// shrink the support; the minuend alone stays a
				// sound over-approximation.
				return left
			}
			return left.Difference(right)
		case ast.ExprJoin:
			return left.Dot(right)
		case ast.ExprProduct:
			return left.Cross(right)
		default:
			if !t.interp.exact {
				return left.Or(right)
			}
			return left.Override(right)
		}

	case *ast.UnaryExpr:
		m := t.expr(n.Expr(), env)
		switch n.Op() {
		case ast.ExprTranspose:
			return m.Transpose()
		case ast.ExprClosure:
			return m.Closure()
		default:
			return m.Closure().Or(cf.Identity(m.Side(), circuit.True))
		}

	case *ast.ComprehensionExpr:
		out := cf.NewMatrix(n.Arity(), t.interp.side())
		t.comprehend(n.Decls().Slice(), 0, n.Formula(), env, circuit.True, 0, out)
		return out

	case *ast.IfExpr:
		if !t.interp.exact {
			return t.expr(n.Then(), env).Or(t.expr(n.Else(), env))
		}
		cond := t.formula(n.Condition(), env)
		return t.expr(n.Then(), env).Choice(cond, t.expr(n.Else(), env))

	case *ast.IntToExprCast:
		out := cf.NewMatrix(1, t.interp.side())
		if !t.interp.exact {
			for _, iv := range t.interp.bounds.Ints() {
				atom, _ := t.interp.IntAtomIndex(iv)
				out.Set(atom, circuit.True)
			}
			return out
		}
		v := t.intExpr(n.IntExpr(), env)
		for _, iv := range t.interp.bounds.Ints() {
			atom, _ := t.interp.IntAtomIndex(iv)
			out.Set(atom, cf.Or(out.Get(atom), v.Eq(cf.IntConst(iv, t.bitwidth))))
		}
		return out
	}
	panic(fmt.Sprintf("engine: unknown expression type %T", e))
}

// comprehend fills out's entries: the entry at the concatenation of the
// bound tuple indices holds the conjunction of the membership literals
// and the body.
func (t *translator) comprehend(decls []*ast.Decl, i int, body ast.Formula,
	env *Environment, guard circuit.Value, prefix int, out *circuit.Matrix) {
	cf := t.factory()
	if guard == circuit.False {
		return
	}
	if i == len(decls) {
		if !t.interp.exact {
			// The body is not meaningful under the all-True
			// substitution; the membership guard alone is the sound
			// over-approximation.
			out.Set(prefix, guard)
			return
		}
		out.Set(prefix, cf.And(guard, t.formula(body, env)))
		return
	}
	d := decls[i]
	domain := t.expr(d.Expression(), env)
	domain.ForEach(func(idx int, lit circuit.Value) {
		binding := cf.NewMatrix(1, domain.Side())
		binding.Set(idx, circuit.True)
		t.comprehend(decls, i+1, body, env.Extend(d.Variable(), binding),
			cf.And(guard, lit), prefix*domain.Side()+idx, out)
	})
}

func (t *translator) intExpr(e ast.IntExpression, env *Environment) circuit.Int {
	t.checkAborted()
	if v, ok := t.cache[e]; ok {
		return v.(circuit.Int)
	}
	iv := t.translateIntExpr(e, env)
	if t.cacheable(e) {
		t.cache[e] = iv
	}
	return iv
}

func (t *translator) translateIntExpr(e ast.IntExpression, env *Environment) circuit.Int {
	cf := t.factory()
	w := t.bitwidth
	switch n := e.(type) {
	case *ast.IntConstant:
		return cf.IntConst(n.Value(), w)

	case *ast.UnaryIntExpr:
		v := t.intExpr(n.Expr(), env)
		switch n.Op() {
		case ast.IntNeg:
			return v.Negate()
		case ast.IntAbs:
			return v.Abs()
		default:
			return v.Sgn()
		}

	case *ast.BinaryIntExpr:
		left := t.intExpr(n.Left(), env)
		right := t.intExpr(n.Right(), env)
		switch n.Op() {
		case ast.IntPlus:
			return left.Plus(right)
		case ast.IntMinus:
			return left.Minus(right)
		case ast.IntTimes:
			return left.Times(right)
		case ast.IntDivide:
			return left.Divide(right)
		case ast.IntModulo:
			return left.Modulo(right)
		case ast.IntAnd:
			return left.BitwiseAnd(right)
		case ast.IntOr:
			return left.BitwiseOr(right)
		case ast.IntXor:
			return left.BitwiseXor(right)
		case ast.IntShl:
			return left.Shl(right)
		case ast.IntShr:
			return left.Shr(right)
		default:
			return left.Sha(right)
		}

	case *ast.SumOverExpr:
		return t.sumOver(n.Decls().Slice(), 0, n.IntExpr(), env)

	case *ast.ExprToIntCast:
		m := t.expr(n.Expr(), env)
		if n.Op() == ast.CastCardinality {
			var bits []circuit.Value
			m.ForEach(func(_ int, v circuit.Value) { bits = append(bits, v) })
			return cf.Count(bits, w)
		}
		// Sum of the integer atoms present in the expression.
		acc := cf.IntConst(0, w)
		zero := cf.IntConst(0, w)
		for _, iv := range t.interp.bounds.Ints() {
			atom, _ := t.interp.IntAtomIndex(iv)
			lit := m.Get(atom)
			if lit == circuit.False {
				continue
			}
			acc = acc.Plus(cf.IntConst(iv, w).Choice(lit, zero))
		}
		return acc
	}
	panic(fmt.Sprintf("engine: unknown integer expression type %T", e))
}

// sumOver enumerates the declaration domains and adds the body's value
// for each member, guarded by its membership literal.
func (t *translator) sumOver(decls []*ast.Decl, i int, body ast.IntExpression, env *Environment) circuit.Int {
	cf := t.factory()
	if i == len(decls) {
		return t.intExpr(body, env)
	}
	d := decls[i]
	domain := t.expr(d.Expression(), env)
	acc := cf.IntConst(0, t.bitwidth)
	zero := cf.IntConst(0, t.bitwidth)
	domain.ForEach(func(idx int, lit circuit.Value) {
		binding := cf.NewMatrix(1, domain.Side())
		binding.Set(idx, circuit.True)
		sub := t.sumOver(decls, i+1, body, env.Extend(d.Variable(), binding))
		acc = acc.Plus(sub.Choice(lit, zero))
	})
	return acc
}

// expandPredicate compiles a relation predicate to its relational
// definition.
func expandPredicate(p *ast.RelationPredicate) ast.Formula {
	r := p.Relation()
	switch p.Kind() {
	case ast.PredAcyclic:
		return ast.NoExpr(ast.Intersection(ast.Iden, ast.Closure(r)))

	case ast.PredFunction:
		v := ast.NewVariable(r.Name() + "_dom")
		return ast.And(
			ast.Subset(r, ast.Product(p.Domain(), p.Range())),
			ast.Forall(ast.NewDecls(ast.OneOf(v, p.Domain())),
				ast.One(ast.Join(v, r))))

	default: // total ordering
		ordered, first, last := p.Ordered(), p.First(), p.Last()
		notLast := ast.Difference(ordered, last)
		notFirst := ast.Difference(ordered, first)
		o := ast.NewVariable(r.Name() + "_ord")
		p2 := ast.NewVariable(r.Name() + "_prev")
		return ast.AndAll(
			ast.One(first),
			ast.One(last),
			ast.Subset(first, ordered),
			ast.Subset(last, ordered),
			ast.Subset(r, ast.Product(notLast, notFirst)),
			ast.NoExpr(ast.Intersection(ast.Iden, ast.Closure(r))),
			ast.Equals(ordered, ast.Union(first, ast.Join(first, ast.Closure(r)))),
			ast.Forall(ast.NewDecls(ast.OneOf(o, notLast)), ast.One(ast.Join(o, r))),
			ast.Forall(ast.NewDecls(ast.OneOf(p2, notFirst)), ast.One(ast.Join(r, p2))))
	}
}
