package engine

import (
	"fmt"

	"github.com/manyani/kodkod/circuit"
	"github.com/manyani/kodkod/sat"
)

// Polarities a gate can be reached with.
const (
	polPos uint8 = 1
	polNeg uint8 = 2
	polAll uint8 = polPos | polNeg
)

// cnfTranslator performs the definitional (Plaisted-Greenbaum)
// conversion of a boolean DAG into clauses: a polarity pass over the
// DAG, then one definitional clause set per gate per reached polarity.
type cnfTranslator struct {
	solver   sat.Solver
	polarity map[int]uint8
	emitted  map[int]bool
	buf      []int
}

// toCNF clausifies the DAG rooted at root into the solver. The root
// must not be constant. The solver vocabulary is grown to the root's
// label, which by the factory's label invariant covers every reachable
// gate.
func toCNF(root circuit.Value, solver sat.Solver) {
	if circuit.IsConstant(root) {
		panic(fmt.Sprintf("engine: cannot clausify the constant %v", root))
	}
	t := &cnfTranslator{
		solver:   solver,
		polarity: make(map[int]uint8),
		emitted:  make(map[int]bool),
	}
	solver.AddVariables(abs(root.Label()))
	t.analyze(root, polPos)
	t.clausify(root)
	solver.AddClause([]int{root.Label()})
}

func flip(p uint8) uint8 {
	switch p {
	case polPos:
		return polNeg
	case polNeg:
		return polPos
	}
	return p
}

// analyze records the union of polarities each gate is reached with,
// descending only with the polarities not seen before.
func (t *cnfTranslator) analyze(v circuit.Value, p uint8) {
	switch g := v.(type) {
	case *circuit.Variable:
		return
	case *circuit.NotGate:
		t.analyze(g.Inner(), flip(p))
	case *circuit.MultiGate:
		fresh := p &^ t.polarity[g.Label()]
		if fresh == 0 {
			return
		}
		t.polarity[g.Label()] |= fresh
		for _, in := range g.Inputs() {
			t.analyze(in, fresh)
		}
	case *circuit.ITEGate:
		fresh := p &^ t.polarity[g.Label()]
		if fresh == 0 {
			return
		}
		t.polarity[g.Label()] |= fresh
		// The condition is tested both ways regardless of how the
		// gate itself is read.
		t.analyze(g.Condition(), polAll)
		t.analyze(g.Then(), fresh)
		t.analyze(g.Else(), fresh)
	default:
		panic(fmt.Sprintf("engine: unexpected value %v in CNF translation", v))
	}
}

// clausify walks the DAG bottom-up, emitting the definitional clauses
// for each gate once.
func (t *cnfTranslator) clausify(v circuit.Value) {
	switch g := v.(type) {
	case *circuit.Variable:
		return
	case *circuit.NotGate:
		t.clausify(g.Inner())
	case *circuit.MultiGate:
		if t.emitted[g.Label()] {
			return
		}
		t.emitted[g.Label()] = true
		for _, in := range g.Inputs() {
			t.clausify(in)
		}
		t.emitMulti(g)
	case *circuit.ITEGate:
		if t.emitted[g.Label()] {
			return
		}
		t.emitted[g.Label()] = true
		t.clausify(g.Condition())
		t.clausify(g.Then())
		t.clausify(g.Else())
		t.emitITE(g)
	}
}

func (t *cnfTranslator) emitMulti(g *circuit.MultiGate) {
	o := g.Label()
	p := t.polarity[o]
	neg := g.Op() == circuit.OpOr

	// An OR gate is the dual of an AND gate: o = i1 | ... | ik reads
	// as !o = !i1 & ... & !ik, so the same two clause shapes apply
	// with every literal inverted.
	if p&polPos != 0 {
		if !neg {
			for _, in := range g.Inputs() {
				t.clause(-o, in.Label())
			}
		} else {
			t.buf = t.buf[:0]
			t.buf = append(t.buf, -o)
			for _, in := range g.Inputs() {
				t.buf = append(t.buf, in.Label())
			}
			t.flush()
		}
	}
	if p&polNeg != 0 {
		if !neg {
			t.buf = t.buf[:0]
			t.buf = append(t.buf, o)
			for _, in := range g.Inputs() {
				t.buf = append(t.buf, -in.Label())
			}
			t.flush()
		} else {
			for _, in := range g.Inputs() {
				t.clause(o, -in.Label())
			}
		}
	}
}

func (t *cnfTranslator) emitITE(g *circuit.ITEGate) {
	o, c := g.Label(), g.Condition().Label()
	th, el := g.Then().Label(), g.Else().Label()
	p := t.polarity[o]
	if p&polPos != 0 {
		t.clause(-o, -c, th)
		t.clause(-o, c, el)
	}
	if p&polNeg != 0 {
		t.clause(o, -c, -th)
		t.clause(o, c, -el)
	}
}

func (t *cnfTranslator) clause(lits ...int) {
	t.buf = append(t.buf[:0], lits...)
	t.flush()
}

func (t *cnfTranslator) flush() {
	out := make([]int, len(t.buf))
	copy(out, t.buf)
	t.solver.AddClause(out)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
