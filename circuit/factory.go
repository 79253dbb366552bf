package circuit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Factory creates and interns the boolean values of one translation.
// Variables are labeled 1..NumVars; gate labels continue after the last
// variable, so a gate's label always exceeds the labels of its inputs
// in absolute value.
type Factory struct {
	vars      []*Variable
	nextLabel int
	cmpDepth  int
	gates     map[string]*MultiGate
	ites      map[[3]int]*ITEGate
	negs      map[int]*NotGate
}

// NewFactory creates a factory with the given number of input variables.
// cmpDepth bounds the depth of the structural comparisons used for
// subsumption when gates are assembled; it must be at least 1.
func NewFactory(numVars, cmpDepth int) *Factory {
	if numVars < 0 {
		panic(fmt.Sprintf("circuit: negative variable count %d", numVars))
	}
	if cmpDepth < 1 {
		panic(fmt.Sprintf("circuit: comparison depth must be >= 1, got %d", cmpDepth))
	}
	f := &Factory{
		vars:      make([]*Variable, numVars),
		nextLabel: numVars + 1,
		cmpDepth:  cmpDepth,
		gates:     make(map[string]*MultiGate),
		ites:      make(map[[3]int]*ITEGate),
		negs:      make(map[int]*NotGate),
	}
	for i := range f.vars {
		f.vars[i] = &Variable{label: i + 1}
	}
	return f
}

// NumVars returns the number of input variables.
func (f *Factory) NumVars() int { return len(f.vars) }

// MaxLabel returns the largest label handed out so far.
func (f *Factory) MaxLabel() int { return f.nextLabel - 1 }

// Variable returns the input variable with the given label in
// [1, NumVars].
func (f *Factory) Variable(label int) *Variable {
	if label < 1 || label > len(f.vars) {
		panic(fmt.Sprintf("circuit: variable label %d out of range [1, %d]", label, len(f.vars)))
	}
	return f.vars[label-1]
}

// Not returns the negation of v.
func (f *Factory) Not(v Value) Value {
	switch t := v.(type) {
	case *Constant:
		if t.value {
			return False
		}
		return True
	case *NotGate:
		return t.inner
	}
	if n, ok := f.negs[v.Label()]; ok {
		return n
	}
	n := &NotGate{inner: v}
	f.negs[v.Label()] = n
	return n
}

// And returns a & b, simplified and interned.
func (f *Factory) And(a, b Value) Value { return f.binary(OpAnd, a, b) }

// Or returns a | b, simplified and interned.
func (f *Factory) Or(a, b Value) Value { return f.binary(OpOr, a, b) }

// Implies returns !a | b.
func (f *Factory) Implies(a, b Value) Value { return f.Or(f.Not(a), b) }

// Iff returns a <=> b.
func (f *Factory) Iff(a, b Value) Value { return f.ITE(a, b, f.Not(b)) }

func (f *Factory) binary(op Operator, a, b Value) Value {
	shortcut, identity := shortCircuit(op)
	switch {
	case a == shortcut || b == shortcut:
		return shortcut
	case a == identity:
		return b
	case b == identity:
		return a
	case a == b:
		return a
	case a.Label() == -b.Label():
		return shortcut
	}
	// Absorption and subsumption up to the comparison depth:
	// a & (a & x) = (a & x), a & (a | x) = a, and dually for |.
	if v, ok := f.absorb(op, a, b, f.cmpDepth); ok {
		return v
	}
	if v, ok := f.absorb(op, b, a, f.cmpDepth); ok {
		return v
	}
	acc := f.Accumulator(op)
	acc.Add(a)
	acc.Add(b)
	return f.Adopt(acc)
}

// absorb simplifies op(a, g) when g is a gate mentioning a among its
// inputs within the given depth.
func (f *Factory) absorb(op Operator, a, g Value, depth int) (Value, bool) {
	if depth == 0 {
		return nil, false
	}
	gate, ok := g.(*MultiGate)
	if !ok {
		return nil, false
	}
	if gate.op == op && gate.contains(a.Label()) {
		return g, true
	}
	if gate.op != op && gate.contains(a.Label()) {
		return a, true
	}
	return nil, false
}

func shortCircuit(op Operator) (shortcut, identity Value) {
	if op == OpAnd {
		return False, True
	}
	return True, False
}

// ITE returns the if-then-else of the given values, simplified and
// interned.
func (f *Factory) ITE(cond, then, els Value) Value {
	switch {
	case cond == True:
		return then
	case cond == False:
		return els
	case then == els:
		return then
	case then == True:
		return f.Or(cond, els)
	case then == False:
		return f.And(f.Not(cond), els)
	case els == True:
		return f.Or(f.Not(cond), then)
	case els == False:
		return f.And(cond, then)
	case then.Label() == cond.Label():
		return f.Or(cond, els)
	case then.Label() == -cond.Label():
		return f.And(f.Not(cond), els)
	case els.Label() == cond.Label():
		return f.And(cond, then)
	case els.Label() == -cond.Label():
		return f.Or(f.Not(cond), then)
	}
	key := [3]int{cond.Label(), then.Label(), els.Label()}
	if g, ok := f.ites[key]; ok {
		return g
	}
	g := &ITEGate{label: f.fresh(), cond: cond, then: then, els: els}
	f.ites[key] = g
	return g
}

func (f *Factory) fresh() int {
	l := f.nextLabel
	f.nextLabel++
	return l
}

// Accumulator collects the inputs of a future AND or OR gate,
// deduplicating them and short-circuiting on complementary pairs and
// constants.
type Accumulator struct {
	f         *Factory
	op        Operator
	inputs    map[int]Value
	shortcut  bool
}

// Accumulator creates an empty accumulator for the given operator,
// which must be OpAnd or OpOr.
func (f *Factory) Accumulator(op Operator) *Accumulator {
	if op != OpAnd && op != OpOr {
		panic(fmt.Sprintf("circuit: accumulator operator must be & or |, got %v", op))
	}
	return &Accumulator{f: f, op: op, inputs: make(map[int]Value)}
}

// Add folds v into the accumulated gate and returns the accumulator.
func (a *Accumulator) Add(v Value) *Accumulator {
	if a.shortcut {
		return a
	}
	shortcut, identity := shortCircuit(a.op)
	switch {
	case v == identity:
	case v == shortcut:
		a.shortcut = true
	default:
		if _, dup := a.inputs[v.Label()]; dup {
			return a
		}
		if _, compl := a.inputs[-v.Label()]; compl {
			a.shortcut = true
			return a
		}
		a.inputs[v.Label()] = v
	}
	return a
}

// Op returns the accumulator's operator.
func (a *Accumulator) Op() Operator { return a.op }

// IsShortCircuited reports whether the accumulated gate is already a
// constant.
func (a *Accumulator) IsShortCircuited() bool { return a.shortcut }

// Size returns the number of accumulated inputs.
func (a *Accumulator) Size() int { return len(a.inputs) }

// Adopt turns the accumulated inputs into a value: the operator's
// short-circuit constant if one was hit, the identity constant for an
// empty accumulation, the single input itself, or an interned gate.
func (f *Factory) Adopt(a *Accumulator) Value {
	shortcut, identity := shortCircuit(a.op)
	if a.shortcut {
		return shortcut
	}
	switch len(a.inputs) {
	case 0:
		return identity
	case 1:
		for _, v := range a.inputs {
			return v
		}
	}
	labels := make([]int, 0, len(a.inputs))
	for l := range a.inputs {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	key := gateKey(a.op, labels)
	if g, ok := f.gates[key]; ok {
		return g
	}
	inputs := make([]Value, len(labels))
	for i, l := range labels {
		inputs[i] = a.inputs[l]
	}
	g := &MultiGate{op: a.op, label: f.fresh(), inputs: inputs}
	f.gates[key] = g
	return g
}

func gateKey(op Operator, labels []int) string {
	var b strings.Builder
	if op == OpAnd {
		b.WriteByte('&')
	} else {
		b.WriteByte('|')
	}
	for _, l := range labels {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(l))
	}
	return b.String()
}
