package kodkod

import (
	"github.com/sirupsen/logrus"

	"github.com/manyani/kodkod/ast"
)

// LogReporter reports translation progress through a logrus logger.
type LogReporter struct {
	log logrus.FieldLogger
}

// NewLogReporter creates a reporter writing to the given logger.
func NewLogReporter(log logrus.FieldLogger) *LogReporter {
	if log == nil {
		panic("kodkod: logger must not be nil")
	}
	return &LogReporter{log: log}
}

func (r *LogReporter) Skolemizing(decl *ast.Decl, skolem *ast.Relation, universals []*ast.Variable) {
	r.log.WithFields(logrus.Fields{
		"decl":       decl.String(),
		"skolem":     skolem.Name(),
		"arity":      skolem.Arity(),
		"universals": len(universals),
	}).Debug("skolemizing")
}

func (r *LogReporter) GeneratingSBP() {
	r.log.Debug("generating symmetry-breaking predicate")
}

func (r *LogReporter) DetectingSymmetries() {
	r.log.Debug("detecting symmetries")
}

func (r *LogReporter) TranslatingToBoolean(f ast.Formula) {
	r.log.Debug("translating to boolean circuits")
}

func (r *LogReporter) TranslatingToCNF() {
	r.log.Debug("translating to CNF")
}

func (r *LogReporter) SolvingCNF(primary, vars, clauses int) {
	r.log.WithFields(logrus.Fields{
		"primary": primary,
		"vars":    vars,
		"clauses": clauses,
	}).Debug("solving CNF")
}
