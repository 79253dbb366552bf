package sat

import (
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// ErrTimeout is returned by Solve when the budget set with SetTimeout
// elapses before an answer is found.
var ErrTimeout = errors.New("sat: solving timed out")

// Gini adapts a gini solver to the Solver interface. Gini is
// incremental: clauses may be added between Solve calls.
type Gini struct {
	g       *gini.Gini
	vars    int
	clauses int
	timeout time.Duration
}

var _ Incremental = (*Gini)(nil)

// NewGini creates an empty gini-backed solver.
func NewGini() *Gini {
	return &Gini{g: gini.New()}
}

// GiniFactory is a Factory producing gini back ends.
func GiniFactory() Solver { return NewGini() }

func (s *Gini) NumberOfVariables() int { return s.vars }

func (s *Gini) NumberOfClauses() int { return s.clauses }

func (s *Gini) AddVariables(n int) {
	if n < 0 {
		panic(fmt.Sprintf("sat: cannot add %d variables", n))
	}
	s.vars += n
}

func (s *Gini) AddClause(lits []int) bool {
	for _, lit := range lits {
		if lit == 0 {
			panic("sat: zero literal in clause")
		}
		if v := abs(lit); v > s.vars {
			panic(fmt.Sprintf("sat: literal %d exceeds vocabulary of %d variables", lit, s.vars))
		}
		s.g.Add(z.Dimacs2Lit(lit))
	}
	s.g.Add(z.LitNull)
	s.clauses++
	return true
}

func (s *Gini) Solve() (bool, error) {
	if s.timeout > 0 {
		switch s.g.GoSolve().Try(s.timeout) {
		case 1:
			return true, nil
		case -1:
			return false, nil
		default:
			return false, errors.WithStack(ErrTimeout)
		}
	}
	return s.g.Solve() == 1, nil
}

func (s *Gini) ValueOf(variable int) bool {
	if variable < 1 || variable > s.vars {
		panic(fmt.Sprintf("sat: variable %d out of range [1, %d]", variable, s.vars))
	}
	return s.g.Value(z.Dimacs2Lit(variable))
}

func (s *Gini) SetTimeout(d time.Duration) { s.timeout = d }

func (s *Gini) Timeout() time.Duration { return s.timeout }

// Free releases the solver; gini lives on the Go heap, so dropping the
// reference is enough.
func (s *Gini) Free() { s.g = nil }

func (s *Gini) incremental() {}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
