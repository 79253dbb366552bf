package ast

import "fmt"

// Expression is a relational expression of arity >= 1. Implementations
// are pointers; two expressions are the same node iff they are the same
// pointer.
type Expression interface {
	Arity() int
	String() string
	exprNode()
}

// Relation is a named k-ary relation symbol. Relations with the same name
// are still distinct nodes; identity is reference based.
type Relation struct {
	name  string
	arity int
}

// NewRelation creates a k-ary relation symbol, k >= 1.
func NewRelation(name string, arity int) *Relation {
	if arity < 1 {
		panic(fmt.Sprintf("ast: relation %q must have arity >= 1, got %d", name, arity))
	}
	return &Relation{name: name, arity: arity}
}

// UnaryRelation creates a relation of arity 1.
func UnaryRelation(name string) *Relation { return NewRelation(name, 1) }

// BinaryRelation creates a relation of arity 2.
func BinaryRelation(name string) *Relation { return NewRelation(name, 2) }

func (r *Relation) Arity() int     { return r.arity }
func (r *Relation) Name() string   { return r.name }
func (r *Relation) String() string { return r.name }
func (r *Relation) exprNode()      {}

// Variable is a named placeholder bound by a declaration.
type Variable struct {
	name  string
	arity int
}

// NewVariable creates a variable of arity 1.
func NewVariable(name string) *Variable { return NaryVariable(name, 1) }

// NaryVariable creates a variable of the given arity, arity >= 1.
func NaryVariable(name string, arity int) *Variable {
	if arity < 1 {
		panic(fmt.Sprintf("ast: variable %q must have arity >= 1, got %d", name, arity))
	}
	return &Variable{name: name, arity: arity}
}

func (v *Variable) Arity() int     { return v.arity }
func (v *Variable) Name() string   { return v.name }
func (v *Variable) String() string { return v.name }
func (v *Variable) exprNode()      {}

// ConstExpr is one of the built-in constant expressions.
type ConstExpr struct {
	name  string
	arity int
}

// The constant expressions: the universe, the empty unary relation, the
// binary identity relation, and the set of integer atoms.
var (
	Univ = &ConstExpr{name: "univ", arity: 1}
	None = &ConstExpr{name: "none", arity: 1}
	Iden = &ConstExpr{name: "iden", arity: 2}
	Ints = &ConstExpr{name: "ints", arity: 1}
)

func (c *ConstExpr) Arity() int     { return c.arity }
func (c *ConstExpr) Name() string   { return c.name }
func (c *ConstExpr) String() string { return c.name }
func (c *ConstExpr) exprNode()      {}

// BinaryExpr applies a binary relational operator.
type BinaryExpr struct {
	op          ExprOperator
	left, right Expression
	arity       int
}

func (b *BinaryExpr) Arity() int           { return b.arity }
func (b *BinaryExpr) Op() ExprOperator     { return b.op }
func (b *BinaryExpr) Left() Expression     { return b.left }
func (b *BinaryExpr) Right() Expression    { return b.right }
func (b *BinaryExpr) String() string       { return fmt.Sprintf("(%v %v %v)", b.left, b.op, b.right) }
func (b *BinaryExpr) exprNode()            {}

func sameArity(op ExprOperator, a, b Expression) int {
	if a.Arity() != b.Arity() {
		panic(fmt.Sprintf("ast: %v operands must have equal arity: %d vs %d", op, a.Arity(), b.Arity()))
	}
	return a.Arity()
}

// Union constructs a + b.
func Union(a, b Expression) Expression {
	return &BinaryExpr{op: ExprUnion, left: a, right: b, arity: sameArity(ExprUnion, a, b)}
}

// Intersection constructs a & b.
func Intersection(a, b Expression) Expression {
	return &BinaryExpr{op: ExprIntersection, left: a, right: b, arity: sameArity(ExprIntersection, a, b)}
}

// Difference constructs a - b.
func Difference(a, b Expression) Expression {
	return &BinaryExpr{op: ExprDifference, left: a, right: b, arity: sameArity(ExprDifference, a, b)}
}

// Override constructs a ++ b.
func Override(a, b Expression) Expression {
	return &BinaryExpr{op: ExprOverride, left: a, right: b, arity: sameArity(ExprOverride, a, b)}
}

// Join constructs the relational join a . b, of arity
// a.Arity() + b.Arity() - 2, which must be at least 1.
func Join(a, b Expression) Expression {
	arity := a.Arity() + b.Arity() - 2
	if arity < 1 {
		panic(fmt.Sprintf("ast: cannot join %d-ary and %d-ary expressions", a.Arity(), b.Arity()))
	}
	return &BinaryExpr{op: ExprJoin, left: a, right: b, arity: arity}
}

// Product constructs the cross product a -> b.
func Product(a, b Expression) Expression {
	return &BinaryExpr{op: ExprProduct, left: a, right: b, arity: a.Arity() + b.Arity()}
}

// UnaryExpr applies a unary relational operator to a binary expression.
type UnaryExpr struct {
	op   ExprOperator
	expr Expression
}

func (u *UnaryExpr) Arity() int        { return 2 }
func (u *UnaryExpr) Op() ExprOperator  { return u.op }
func (u *UnaryExpr) Expr() Expression  { return u.expr }
func (u *UnaryExpr) String() string    { return fmt.Sprintf("%v%v", u.op, u.expr) }
func (u *UnaryExpr) exprNode()         {}

func unary(op ExprOperator, e Expression) Expression {
	if e.Arity() != 2 {
		panic(fmt.Sprintf("ast: %v requires a binary expression, got arity %d", op, e.Arity()))
	}
	return &UnaryExpr{op: op, expr: e}
}

// Transpose constructs ~e.
func Transpose(e Expression) Expression { return unary(ExprTranspose, e) }

// Closure constructs the transitive closure ^e.
func Closure(e Expression) Expression { return unary(ExprClosure, e) }

// ReflexiveClosure constructs the reflexive transitive closure *e.
func ReflexiveClosure(e Expression) Expression { return unary(ExprReflexiveClosure, e) }

// ComprehensionExpr is the set comprehension { decls | formula }.
type ComprehensionExpr struct {
	decls   *Decls
	formula Formula
	arity   int
}

// Comprehension constructs { decls | f }. Every declaration must be a
// unary `one` declaration; the result arity is the number of
// declarations.
func Comprehension(decls *Decls, f Formula) Expression {
	for _, d := range decls.Slice() {
		if d.Variable().Arity() != 1 || d.Multiplicity() != MultOne {
			panic(fmt.Sprintf("ast: comprehension requires unary one-declarations, got %v", d))
		}
	}
	return &ComprehensionExpr{decls: decls, formula: f, arity: decls.Size()}
}

func (c *ComprehensionExpr) Arity() int       { return c.arity }
func (c *ComprehensionExpr) Decls() *Decls    { return c.decls }
func (c *ComprehensionExpr) Formula() Formula { return c.formula }
func (c *ComprehensionExpr) String() string {
	return fmt.Sprintf("{%v | %v}", c.decls, c.formula)
}
func (c *ComprehensionExpr) exprNode() {}

// IfExpr selects between two expressions of equal arity.
type IfExpr struct {
	cond       Formula
	then, els  Expression
}

// IfThenElse constructs cond => then else els.
func IfThenElse(cond Formula, then, els Expression) Expression {
	if then.Arity() != els.Arity() {
		panic(fmt.Sprintf("ast: if-then-else branches must have equal arity: %d vs %d",
			then.Arity(), els.Arity()))
	}
	return &IfExpr{cond: cond, then: then, els: els}
}

func (e *IfExpr) Arity() int        { return e.then.Arity() }
func (e *IfExpr) Condition() Formula { return e.cond }
func (e *IfExpr) Then() Expression  { return e.then }
func (e *IfExpr) Else() Expression  { return e.els }
func (e *IfExpr) String() string {
	return fmt.Sprintf("(%v => %v else %v)", e.cond, e.then, e.els)
}
func (e *IfExpr) exprNode() {}

// IntToExprCast lifts an integer expression to the unary relation
// containing the single integer atom with that value.
type IntToExprCast struct {
	intExpr IntExpression
}

// CastToExpr constructs the int-to-expression cast of ie.
func CastToExpr(ie IntExpression) Expression {
	return &IntToExprCast{intExpr: ie}
}

func (c *IntToExprCast) Arity() int             { return 1 }
func (c *IntToExprCast) IntExpr() IntExpression { return c.intExpr }
func (c *IntToExprCast) String() string         { return fmt.Sprintf("Int[%v]", c.intExpr) }
func (c *IntToExprCast) exprNode()              {}
