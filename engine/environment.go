package engine

import (
	"github.com/manyani/kodkod/ast"
	"github.com/manyani/kodkod/circuit"
)

// Environment maps variables to the boolean matrices they currently
// denote. Environments are immutable linked bindings: extending one
// yields a child that shadows the parent.
type Environment struct {
	parent   *Environment
	variable *ast.Variable
	value    *circuit.Matrix
}

// Extend returns a child environment binding v to m.
func (e *Environment) Extend(v *ast.Variable, m *circuit.Matrix) *Environment {
	return &Environment{parent: e, variable: v, value: m}
}

// Lookup returns the binding of v, innermost first.
func (e *Environment) Lookup(v *ast.Variable) (*circuit.Matrix, bool) {
	for env := e; env != nil; env = env.parent {
		if env.variable == v {
			return env.value, true
		}
	}
	return nil, false
}
