package engine

import (
	"fmt"
	"time"

	"github.com/manyani/kodkod/ast"
	"github.com/manyani/kodkod/sat"
)

// Reporter receives progress callbacks from the translation pipeline.
// The core itself never logs; this is its only observable surface.
type Reporter interface {
	// Skolemizing is called once per skolemized declaration with the
	// replacement relation and the enclosing universal variables.
	Skolemizing(decl *ast.Decl, skolem *ast.Relation, universals []*ast.Variable)
	// GeneratingSBP reports the generation of symmetry-breaking
	// predicates. The pipeline has no symmetry-breaking stage and never
	// calls it.
	GeneratingSBP()
	// DetectingSymmetries reports symmetry detection. The pipeline has
	// no symmetry-detection stage and never calls it.
	DetectingSymmetries()
	// TranslatingToBoolean is called before the formula is lowered to
	// a boolean circuit.
	TranslatingToBoolean(formula ast.Formula)
	// TranslatingToCNF is called before the circuit is clausified.
	TranslatingToCNF()
	// SolvingCNF is called with the instance dimensions before the
	// SAT solver runs.
	SolvingCNF(primaryVars, vars, clauses int)
}

// silentReporter discards all callbacks.
type silentReporter struct{}

func (silentReporter) Skolemizing(*ast.Decl, *ast.Relation, []*ast.Variable) {}
func (silentReporter) GeneratingSBP()                                        {}
func (silentReporter) DetectingSymmetries()                                  {}
func (silentReporter) TranslatingToBoolean(ast.Formula)                      {}
func (silentReporter) TranslatingToCNF()                                     {}
func (silentReporter) SolvingCNF(int, int, int)                              {}

// SilentReporter returns a reporter that ignores every callback.
func SilentReporter() Reporter { return silentReporter{} }

// IntEncoding selects the representation of integer expressions.
type IntEncoding int

// TwosComplement is the only supported integer encoding: fixed-width
// bit vectors with a sign bit.
const TwosComplement IntEncoding = iota

func (e IntEncoding) String() string {
	if e == TwosComplement {
		return "twos-complement"
	}
	return "?"
}

// Options configures translation and solving.
type Options struct {
	solver         sat.Factory
	reporter       Reporter
	intEncoding    IntEncoding
	bitwidth       int
	skolemDepth    int
	sharing        int
	logTranslation bool
	trackFormulas  bool
	timeout        time.Duration
}

// NewOptions returns options with the defaults: a gini solver, a
// silent reporter, bitwidth 4, skolem depth 0 and sharing depth 3.
func NewOptions() *Options {
	return &Options{
		solver:      sat.GiniFactory,
		reporter:    silentReporter{},
		bitwidth:    4,
		skolemDepth: 0,
		sharing:     3,
	}
}

// Clone returns a copy of o.
func (o *Options) Clone() *Options {
	c := *o
	return &c
}

// SetSolver selects the SAT back-end factory.
func (o *Options) SetSolver(f sat.Factory) *Options {
	if f == nil {
		panic("engine: solver factory must not be nil")
	}
	o.solver = f
	return o
}

// Solver returns the SAT back-end factory.
func (o *Options) Solver() sat.Factory { return o.solver }

// SetReporter installs a progress reporter.
func (o *Options) SetReporter(r Reporter) *Options {
	if r == nil {
		panic("engine: reporter must not be nil")
	}
	o.reporter = r
	return o
}

// Reporter returns the progress reporter.
func (o *Options) Reporter() Reporter { return o.reporter }

// SetIntEncoding selects the integer encoding; TwosComplement is the
// only accepted value.
func (o *Options) SetIntEncoding(e IntEncoding) *Options {
	if e != TwosComplement {
		panic(fmt.Sprintf("engine: unsupported integer encoding %v", e))
	}
	o.intEncoding = e
	return o
}

// IntEncoding returns the integer encoding.
func (o *Options) IntEncoding() IntEncoding { return o.intEncoding }

// SetBitwidth sets the two's-complement width used for integer
// expressions, in [1, 32].
func (o *Options) SetBitwidth(w int) *Options {
	if w < 1 || w > 32 {
		panic(fmt.Sprintf("engine: bitwidth must be in [1, 32], got %d", w))
	}
	o.bitwidth = w
	return o
}

// Bitwidth returns the two's-complement width.
func (o *Options) Bitwidth() int { return o.bitwidth }

// SetSkolemDepth sets the maximum universal nesting under which
// existentials are skolemized; -1 disables skolemization.
func (o *Options) SetSkolemDepth(d int) *Options {
	if d < -1 {
		panic(fmt.Sprintf("engine: skolem depth must be >= -1, got %d", d))
	}
	o.skolemDepth = d
	return o
}

// SkolemDepth returns the skolemization depth.
func (o *Options) SkolemDepth() int { return o.skolemDepth }

// SetSharing sets the depth to which circuit sharing is detected when
// gates are assembled; it must be at least 1.
func (o *Options) SetSharing(depth int) *Options {
	if depth < 1 {
		panic(fmt.Sprintf("engine: sharing depth must be >= 1, got %d", depth))
	}
	o.sharing = depth
	return o
}

// Sharing returns the circuit sharing depth.
func (o *Options) Sharing() int { return o.sharing }

// SetLogTranslation records, on the resulting translation, which
// boolean variables interpret which relations.
func (o *Options) SetLogTranslation(log bool) *Options {
	o.logTranslation = log
	return o
}

// LogTranslation reports whether translation logging is on.
func (o *Options) LogTranslation() bool { return o.logTranslation }

// SetTrackFormulas additionally records which top-level conjuncts
// produced which root gates; it implies translation logging.
func (o *Options) SetTrackFormulas(track bool) *Options {
	o.trackFormulas = track
	if track {
		o.logTranslation = true
	}
	return o
}

// TrackFormulas reports whether formula tracking is on.
func (o *Options) TrackFormulas() bool { return o.trackFormulas }

// SetTimeout bounds each SAT solver run; zero means no bound.
func (o *Options) SetTimeout(d time.Duration) *Options {
	if d < 0 {
		panic("engine: timeout must not be negative")
	}
	o.timeout = d
	return o
}

// Timeout returns the SAT solving budget.
func (o *Options) Timeout() time.Duration { return o.timeout }
