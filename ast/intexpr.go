package ast

import "fmt"

// IntExpression is an integer-valued expression. Integer expressions
// have no relational arity.
type IntExpression interface {
	String() string
	intExprNode()
}

// IntConstant is an integer literal.
type IntConstant struct {
	value int
}

// Constant creates the integer constant v.
func Constant(v int) IntExpression { return &IntConstant{value: v} }

func (c *IntConstant) Value() int     { return c.value }
func (c *IntConstant) String() string { return fmt.Sprintf("%d", c.value) }
func (c *IntConstant) intExprNode()   {}

// UnaryIntExpr applies a unary integer operator.
type UnaryIntExpr struct {
	op   IntOperator
	expr IntExpression
}

func unaryInt(op IntOperator, e IntExpression) IntExpression {
	return &UnaryIntExpr{op: op, expr: e}
}

// Neg constructs -e.
func Neg(e IntExpression) IntExpression { return unaryInt(IntNeg, e) }

// Abs constructs the absolute value of e.
func Abs(e IntExpression) IntExpression { return unaryInt(IntAbs, e) }

// Sgn constructs the signum of e.
func Sgn(e IntExpression) IntExpression { return unaryInt(IntSgn, e) }

func (u *UnaryIntExpr) Op() IntOperator     { return u.op }
func (u *UnaryIntExpr) Expr() IntExpression { return u.expr }
func (u *UnaryIntExpr) String() string      { return fmt.Sprintf("%v(%v)", u.op, u.expr) }
func (u *UnaryIntExpr) intExprNode()        {}

// BinaryIntExpr applies a binary integer operator.
type BinaryIntExpr struct {
	op          IntOperator
	left, right IntExpression
}

func binaryInt(op IntOperator, a, b IntExpression) IntExpression {
	return &BinaryIntExpr{op: op, left: a, right: b}
}

// Plus constructs a + b.
func Plus(a, b IntExpression) IntExpression { return binaryInt(IntPlus, a, b) }

// Minus constructs a - b.
func Minus(a, b IntExpression) IntExpression { return binaryInt(IntMinus, a, b) }

// Times constructs a * b.
func Times(a, b IntExpression) IntExpression { return binaryInt(IntTimes, a, b) }

// Divide constructs a / b.
func Divide(a, b IntExpression) IntExpression { return binaryInt(IntDivide, a, b) }

// Modulo constructs a % b.
func Modulo(a, b IntExpression) IntExpression { return binaryInt(IntModulo, a, b) }

// BitAnd constructs the bitwise a & b.
func BitAnd(a, b IntExpression) IntExpression { return binaryInt(IntAnd, a, b) }

// BitOr constructs the bitwise a | b.
func BitOr(a, b IntExpression) IntExpression { return binaryInt(IntOr, a, b) }

// BitXor constructs the bitwise a ^ b.
func BitXor(a, b IntExpression) IntExpression { return binaryInt(IntXor, a, b) }

// Shl constructs a << b.
func Shl(a, b IntExpression) IntExpression { return binaryInt(IntShl, a, b) }

// Shr constructs the logical shift a >>> b.
func Shr(a, b IntExpression) IntExpression { return binaryInt(IntShr, a, b) }

// Sha constructs the arithmetic shift a >> b.
func Sha(a, b IntExpression) IntExpression { return binaryInt(IntSha, a, b) }

func (b *BinaryIntExpr) Op() IntOperator      { return b.op }
func (b *BinaryIntExpr) Left() IntExpression  { return b.left }
func (b *BinaryIntExpr) Right() IntExpression { return b.right }
func (b *BinaryIntExpr) String() string {
	return fmt.Sprintf("(%v %v %v)", b.left, b.op, b.right)
}
func (b *BinaryIntExpr) intExprNode() {}

// SumOverExpr is the quantified sum `sum decls | e`.
type SumOverExpr struct {
	decls   *Decls
	intExpr IntExpression
}

// SumOver constructs sum decls | e. Every declaration must be a unary
// `one` declaration.
func SumOver(decls *Decls, e IntExpression) IntExpression {
	for _, d := range decls.Slice() {
		if d.Variable().Arity() != 1 || d.Multiplicity() != MultOne {
			panic(fmt.Sprintf("ast: sum requires unary one-declarations, got %v", d))
		}
	}
	return &SumOverExpr{decls: decls, intExpr: e}
}

func (s *SumOverExpr) Decls() *Decls         { return s.decls }
func (s *SumOverExpr) IntExpr() IntExpression { return s.intExpr }
func (s *SumOverExpr) String() string {
	return fmt.Sprintf("(sum %v | %v)", s.decls, s.intExpr)
}
func (s *SumOverExpr) intExprNode() {}

// ExprToIntCast converts a relational expression to an integer: its
// cardinality, or the sum of the integer atoms it contains.
type ExprToIntCast struct {
	op   CastOperator
	expr Expression
}

// Card constructs #e, the number of tuples in e.
func Card(e Expression) IntExpression {
	return &ExprToIntCast{op: CastCardinality, expr: e}
}

// IntSum constructs sum(e), the sum of the integer atoms in the unary
// expression e.
func IntSum(e Expression) IntExpression {
	if e.Arity() != 1 {
		panic(fmt.Sprintf("ast: sum requires a unary expression, got arity %d", e.Arity()))
	}
	return &ExprToIntCast{op: CastSum, expr: e}
}

func (c *ExprToIntCast) Op() CastOperator { return c.op }
func (c *ExprToIntCast) Expr() Expression { return c.expr }
func (c *ExprToIntCast) String() string {
	if c.op == CastCardinality {
		return fmt.Sprintf("#%v", c.expr)
	}
	return fmt.Sprintf("sum(%v)", c.expr)
}
func (c *ExprToIntCast) intExprNode() {}
