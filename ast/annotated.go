package ast

import "fmt"

// Node is any AST node: an Expression, IntExpression, Formula, Decls or
// Decl. Nodes are compared by identity.
type Node = any

// Children returns the direct sub-nodes of n in syntactic order. Leaves
// (relations, variables, constants) have no children.
func Children(n Node) []Node {
	switch t := n.(type) {
	case *Relation, *Variable, *ConstExpr, *IntConstant, *ConstantFormula:
		return nil
	case *BinaryExpr:
		return []Node{t.left, t.right}
	case *UnaryExpr:
		return []Node{t.expr}
	case *ComprehensionExpr:
		return []Node{t.decls, t.formula}
	case *IfExpr:
		return []Node{t.cond, t.then, t.els}
	case *IntToExprCast:
		return []Node{t.intExpr}
	case *UnaryIntExpr:
		return []Node{t.expr}
	case *BinaryIntExpr:
		return []Node{t.left, t.right}
	case *SumOverExpr:
		return []Node{t.decls, t.intExpr}
	case *ExprToIntCast:
		return []Node{t.expr}
	case *NotFormula:
		return []Node{t.formula}
	case *BinaryFormula:
		return []Node{t.left, t.right}
	case *QuantifiedFormula:
		return []Node{t.decls, t.formula}
	case *MultiplicityFormula:
		return []Node{t.expr}
	case *ComparisonFormula:
		return []Node{t.left, t.right}
	case *IntComparisonFormula:
		return []Node{t.left, t.right}
	case *RelationPredicate:
		kids := []Node{t.relation}
		if t.kind == PredFunction {
			kids = append(kids, t.domain, t.rng)
		}
		if t.kind == PredTotalOrdering {
			kids = append(kids, t.ordered, t.first, t.last)
		}
		return kids
	case *Decls:
		kids := make([]Node, len(t.decls))
		for i, d := range t.decls {
			kids[i] = d
		}
		return kids
	case *Decl:
		return []Node{t.variable, t.expr}
	}
	panic(fmt.Sprintf("ast: unknown node type %T", n))
}

// AnnotatedNode pairs a root formula with the identity set of its
// internal descendants that have more than one parent, plus an optional
// map from rewritten nodes back to their sources.
type AnnotatedNode struct {
	root   Formula
	shared map[Node]bool
	source map[Node]Node
}

// Annotate walks the DAG rooted at root and records every internal node
// reachable along two or more paths.
func Annotate(root Formula) *AnnotatedNode {
	return AnnotateWithSource(root, nil)
}

// AnnotateWithSource is Annotate with a source map carried along for
// logging; source maps a rewritten node to the node it replaced.
func AnnotateWithSource(root Formula, source map[Node]Node) *AnnotatedNode {
	a := &AnnotatedNode{root: root, shared: make(map[Node]bool), source: source}
	seen := make(map[Node]bool)
	var visit func(n Node)
	visit = func(n Node) {
		switch n.(type) {
		case *Relation, *Variable, *ConstExpr, *IntConstant, *ConstantFormula:
			return
		}
		if seen[n] {
			a.shared[n] = true
			return
		}
		seen[n] = true
		for _, child := range Children(n) {
			visit(child)
		}
	}
	visit(root)
	return a
}

// Root returns the annotated formula.
func (a *AnnotatedNode) Root() Formula { return a.root }

// Shared reports whether n has more than one parent in the DAG.
func (a *AnnotatedNode) Shared(n Node) bool { return a.shared[n] }

// SharedCount returns the number of shared internal nodes.
func (a *AnnotatedNode) SharedCount() int { return len(a.shared) }

// SourceOf returns the source of a rewritten node, or n itself when no
// source is recorded.
func (a *AnnotatedNode) SourceOf(n Node) Node {
	if a.source != nil {
		if src, ok := a.source[n]; ok {
			return src
		}
	}
	return n
}

// FreeVariables returns the variables that occur free in n, in first
// occurrence order.
func FreeVariables(n Node) []*Variable {
	var free []*Variable
	inFree := make(map[*Variable]bool)
	var collect func(n Node, bound map[*Variable]bool)

	collectDecls := func(d *Decls, bound map[*Variable]bool) map[*Variable]bool {
		// Declarations scope over later declarations and the body; a
		// declaration's expression sees only the variables bound so far.
		inner := make(map[*Variable]bool, len(bound)+d.Size())
		for v := range bound {
			inner[v] = true
		}
		for _, decl := range d.Slice() {
			collect(decl.Expression(), inner)
			inner[decl.Variable()] = true
		}
		return inner
	}

	collect = func(n Node, bound map[*Variable]bool) {
		switch t := n.(type) {
		case *Variable:
			if !bound[t] && !inFree[t] {
				inFree[t] = true
				free = append(free, t)
			}
		case *QuantifiedFormula:
			collect(t.formula, collectDecls(t.decls, bound))
		case *ComprehensionExpr:
			collect(t.formula, collectDecls(t.decls, bound))
		case *SumOverExpr:
			collect(t.intExpr, collectDecls(t.decls, bound))
		default:
			for _, child := range Children(n) {
				collect(child, bound)
			}
		}
	}
	collect(n, make(map[*Variable]bool))
	return free
}
