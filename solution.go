// Package kodkod is a finite relational model finder: given a
// first-order relational formula and finite bounds on its relations, it
// decides satisfiability by translation to propositional logic and
// returns a concrete instance when one exists.
package kodkod

import (
	"fmt"
	"time"

	"github.com/manyani/kodkod/engine"
	"github.com/manyani/kodkod/instance"
)

// Outcome classifies a solving result.
type Outcome int

const (
	// Satisfiable: the SAT solver found a model.
	Satisfiable Outcome = iota
	// Unsatisfiable: the SAT solver refuted the translation.
	Unsatisfiable
	// TriviallySatisfiable: the formula reduced to true before any
	// clause was produced.
	TriviallySatisfiable
	// TriviallyUnsatisfiable: the formula reduced to false before any
	// clause was produced.
	TriviallyUnsatisfiable
)

func (o Outcome) String() string {
	switch o {
	case Satisfiable:
		return "SATISFIABLE"
	case Unsatisfiable:
		return "UNSATISFIABLE"
	case TriviallySatisfiable:
		return "TRIVIALLY_SATISFIABLE"
	case TriviallyUnsatisfiable:
		return "TRIVIALLY_UNSATISFIABLE"
	}
	return "?"
}

// Sat reports whether the outcome is one of the satisfiable ones.
func (o Outcome) Sat() bool {
	return o == Satisfiable || o == TriviallySatisfiable
}

// Statistics carries the dimensions and timings of one solve.
type Statistics struct {
	PrimaryVariables int
	Variables        int
	Clauses          int
	TranslationTime  time.Duration
	SolvingTime      time.Duration
}

func (s Statistics) String() string {
	return fmt.Sprintf("p_cnf %d %d (primary: %d) translation: %v solving: %v",
		s.Variables, s.Clauses, s.PrimaryVariables, s.TranslationTime, s.SolvingTime)
}

// Proof carries the unsatisfiability evidence a capable back end
// produced: the indices of a clause core whose conjunction is already
// unsatisfiable.
type Proof struct {
	Core []int
}

// Solution is the result of a solve: the outcome, the instance for
// satisfiable outcomes, the proof for unsatisfiable ones when the back
// end can extract one, statistics, and the translation log when
// logging was requested.
type Solution struct {
	Outcome  Outcome
	Instance *instance.Instance
	Proof    *Proof
	Stats    Statistics
	Log      *engine.Log
}

// Sat reports whether the solution carries an instance.
func (s *Solution) Sat() bool { return s.Outcome.Sat() }

func (s *Solution) String() string {
	if s.Instance != nil {
		return fmt.Sprintf("%v %v [%v]", s.Outcome, s.Instance, s.Stats)
	}
	return fmt.Sprintf("%v [%v]", s.Outcome, s.Stats)
}
