package kodkod

import (
	"github.com/manyani/kodkod/engine"
)

// Options configures translation and solving; see the engine package
// for the individual knobs.
type Options = engine.Options

// NewOptions returns the default options: a gini back end, a silent
// reporter, bitwidth 4 and skolem depth 0.
func NewOptions() *Options { return engine.NewOptions() }

// Reporter receives progress callbacks from the pipeline.
type Reporter = engine.Reporter

// SilentReporter returns a reporter that discards every callback.
func SilentReporter() Reporter { return engine.SilentReporter() }

// The error kinds surfaced by Solve; match them with errors.As.
type (
	// UnboundLeafError: a free variable, or a relation missing from
	// the bounds.
	UnboundLeafError = engine.UnboundLeafError
	// HigherOrderDeclError: a declaration that survived to
	// translation but cannot be enumerated.
	HigherOrderDeclError = engine.HigherOrderDeclError
	// AbortedError: cooperative cancellation.
	AbortedError = engine.AbortedError
)
