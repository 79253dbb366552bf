// Package engine turns a relational formula and bounds into a SAT
// instance: skolemization, translation to boolean circuits, and
// definitional clausification.
package engine

import (
	"fmt"

	"github.com/manyani/kodkod/ast"
	"github.com/manyani/kodkod/instance"
)

// UnboundLeafError reports a variable with no binding or a relation
// missing from the bounds.
type UnboundLeafError struct {
	Leaf ast.Expression
}

func (e *UnboundLeafError) Error() string {
	switch e.Leaf.(type) {
	case *ast.Variable:
		return fmt.Sprintf("engine: unbound variable %v", e.Leaf)
	default:
		return fmt.Sprintf("engine: relation %v is not bound", e.Leaf)
	}
}

// HigherOrderDeclError reports a declaration that cannot be translated
// by enumeration and was not skolemized away.
type HigherOrderDeclError struct {
	Decl *ast.Decl
}

func (e *HigherOrderDeclError) Error() string {
	return fmt.Sprintf("engine: higher-order declaration %v cannot be translated", e.Decl)
}

// TrivialError signals that the formula reduced to a constant before
// the root was reified. It is a control signal, not a failure: the
// driver converts it into a trivial outcome.
type TrivialError struct {
	// Value is the constant the formula reduced to.
	Value bool
	// Bounds are the bounds in effect at reduction time, including
	// any skolem relations installed before the reduction.
	Bounds *instance.Bounds
}

func (e *TrivialError) Error() string {
	return fmt.Sprintf("engine: formula is trivially %t", e.Value)
}

// AbortedError reports cooperative cancellation during translation or
// solving.
type AbortedError struct {
	// Phase is "translation" or "solving".
	Phase string
	Cause error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("engine: %s aborted: %v", e.Phase, e.Cause)
}

func (e *AbortedError) Unwrap() error { return e.Cause }
