package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArityRules(t *testing.T) {
	r1 := UnaryRelation("r1")
	r2 := BinaryRelation("r2")
	r3 := NewRelation("r3", 3)

	t.Run("construction", func(t *testing.T) {
		assert.Panics(t, func() { NewRelation("bad", 0) })
		assert.Panics(t, func() { NaryVariable("bad", -1) })
	})

	t.Run("binary operators need equal arity", func(t *testing.T) {
		assert.Panics(t, func() { Union(r1, r2) })
		assert.Panics(t, func() { Intersection(r1, r2) })
		assert.Panics(t, func() { Difference(r2, r3) })
		assert.Panics(t, func() { Override(r1, r2) })
		assert.Equal(t, 2, Union(r2, r2).Arity())
	})

	t.Run("join arity", func(t *testing.T) {
		assert.Equal(t, 1, Join(r1, r2).Arity())
		assert.Equal(t, 3, Join(r2, r3).Arity())
		assert.Panics(t, func() { Join(r1, r1) }, "join of two unary expressions has arity 0")
	})

	t.Run("product arity", func(t *testing.T) {
		assert.Equal(t, 3, Product(r1, r2).Arity())
		assert.Equal(t, 5, Product(r2, r3).Arity())
	})

	t.Run("unary operators need binary operand", func(t *testing.T) {
		assert.Panics(t, func() { Transpose(r1) })
		assert.Panics(t, func() { Closure(r3) })
		assert.Equal(t, 2, ReflexiveClosure(r2).Arity())
	})

	t.Run("if-then-else branches", func(t *testing.T) {
		assert.Panics(t, func() { IfThenElse(True, r1, r2) })
		assert.Equal(t, 2, IfThenElse(True, r2, r2).Arity())
	})

	t.Run("comparison", func(t *testing.T) {
		assert.Panics(t, func() { Subset(r1, r2) })
		assert.Panics(t, func() { Equals(r2, r3) })
		assert.NotNil(t, Subset(r2, r2))
	})

	t.Run("predicates", func(t *testing.T) {
		assert.Panics(t, func() { Acyclic(r1) })
		assert.Panics(t, func() { Function(r2, r2, r1) })
		assert.Panics(t, func() { TotalOrdering(r1, r1, r1, r1) })
		assert.NotNil(t, Function(r2, r1, r1))
	})

	t.Run("declarations", func(t *testing.T) {
		v := NewVariable("x")
		assert.Panics(t, func() { OneOf(v, r2) }, "variable/expression arity mismatch")
		assert.NotNil(t, OneOf(v, r1))
		assert.Panics(t, func() { NewDecls() })
	})

	t.Run("comprehension decls must be unary one", func(t *testing.T) {
		v2 := NaryVariable("p", 2)
		assert.Panics(t, func() { Comprehension(NewDecls(SetOf(v2, r2)), True) })
		c := Comprehension(NewDecls(OneOf(NewVariable("x"), r1), OneOf(NewVariable("y"), r1)), True)
		assert.Equal(t, 2, c.Arity())
	})
}

func TestConstantExpressions(t *testing.T) {
	assert.Equal(t, 1, Univ.Arity())
	assert.Equal(t, 1, None.Arity())
	assert.Equal(t, 2, Iden.Arity())
	assert.Equal(t, 1, Ints.Arity())
	assert.Same(t, True, BoolConstant(true))
	assert.Same(t, False, BoolConstant(false))
}

func TestIdentity(t *testing.T) {
	// Two structurally identical constructions are distinct nodes.
	r := BinaryRelation("r")
	a := Closure(r)
	b := Closure(r)
	assert.NotSame(t, a, b)

	// A node is equal to itself only.
	set := map[Node]bool{a: true}
	assert.True(t, set[a])
	assert.False(t, set[b])
}

func TestSharingDetection(t *testing.T) {
	r := BinaryRelation("r")
	s := BinaryRelation("s")

	shared := Join(r, s) // appears twice below
	once := Transpose(r)
	f := And(Some(shared), Subset(shared, Union(once, s)))

	ann := Annotate(f)
	assert.True(t, ann.Shared(shared))
	assert.False(t, ann.Shared(once))
	assert.False(t, ann.Shared(f))
	assert.Equal(t, 1, ann.SharedCount())
	assert.Same(t, f, ann.Root())
}

func TestSharingIgnoresLeaves(t *testing.T) {
	// Leaves are shared by construction and never reported.
	r := UnaryRelation("r")
	f := And(Some(r), Some(r))
	ann := Annotate(f)
	assert.Equal(t, 0, ann.SharedCount())
}

func TestFreeVariables(t *testing.T) {
	r := UnaryRelation("r")
	x := NewVariable("x")
	y := NewVariable("y")

	t.Run("unbound variable is free", func(t *testing.T) {
		free := FreeVariables(Some(Join(x, Product(r, r))))
		require.Len(t, free, 1)
		assert.Same(t, x, free[0])
	})

	t.Run("quantifier binds its variable", func(t *testing.T) {
		f := Forall(NewDecls(OneOf(x, r)), Subset(x, r))
		assert.Empty(t, FreeVariables(f))
	})

	t.Run("later decls see earlier variables", func(t *testing.T) {
		f := Forall(NewDecls(OneOf(x, r), OneOf(y, Difference(r, x))), Subset(y, r))
		assert.Empty(t, FreeVariables(f))
	})

	t.Run("decl expression does not see its own variable", func(t *testing.T) {
		f := Exists(NewDecls(OneOf(x, Difference(r, x))), True)
		free := FreeVariables(f)
		require.Len(t, free, 1)
		assert.Same(t, x, free[0])
	})

	t.Run("binding does not leak", func(t *testing.T) {
		inner := Exists(NewDecls(OneOf(x, r)), Subset(x, r))
		f := And(inner, Some(x))
		free := FreeVariables(f)
		require.Len(t, free, 1)
		assert.Same(t, x, free[0])
	})
}
