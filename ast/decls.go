package ast

import (
	"fmt"
	"strings"
)

// Decl binds a variable to an expression under a multiplicity.
type Decl struct {
	variable *Variable
	mult     Multiplicity
	expr     Expression
}

func newDecl(v *Variable, mult Multiplicity, e Expression) *Decl {
	if v.Arity() != e.Arity() {
		panic(fmt.Sprintf("ast: declaration of %v: variable arity %d != expression arity %d",
			v, v.Arity(), e.Arity()))
	}
	if mult == MultNo {
		panic("ast: a declaration cannot have multiplicity no")
	}
	// Non-set multiplicities over arity > 1 are higher-order; they are
	// admitted here and rejected during translation unless skolemized.
	return &Decl{variable: v, mult: mult, expr: e}
}

// OneOf declares v: one e.
func OneOf(v *Variable, e Expression) *Decl { return newDecl(v, MultOne, e) }

// LoneOf declares v: lone e.
func LoneOf(v *Variable, e Expression) *Decl { return newDecl(v, MultLone, e) }

// SomeOf declares v: some e.
func SomeOf(v *Variable, e Expression) *Decl { return newDecl(v, MultSome, e) }

// SetOf declares v: set e.
func SetOf(v *Variable, e Expression) *Decl { return newDecl(v, MultSet, e) }

func (d *Decl) Variable() *Variable        { return d.variable }
func (d *Decl) Multiplicity() Multiplicity { return d.mult }
func (d *Decl) Expression() Expression     { return d.expr }
func (d *Decl) String() string {
	return fmt.Sprintf("%v: %v %v", d.variable, d.mult, d.expr)
}

// Decls is a nonempty ordered sequence of declarations.
type Decls struct {
	decls []*Decl
}

// NewDecls creates a declaration sequence from one or more declarations.
func NewDecls(decls ...*Decl) *Decls {
	if len(decls) == 0 {
		panic("ast: a declaration sequence must be nonempty")
	}
	own := make([]*Decl, len(decls))
	copy(own, decls)
	return &Decls{decls: own}
}

// Size returns the number of declarations.
func (d *Decls) Size() int { return len(d.decls) }

// Get returns the i-th declaration.
func (d *Decls) Get(i int) *Decl { return d.decls[i] }

// Slice returns the declarations in order. The slice is owned by d.
func (d *Decls) Slice() []*Decl { return d.decls }

// And returns a new sequence with the declarations of other appended.
func (d *Decls) And(other *Decls) *Decls {
	merged := make([]*Decl, 0, len(d.decls)+len(other.decls))
	merged = append(merged, d.decls...)
	merged = append(merged, other.decls...)
	return &Decls{decls: merged}
}

func (d *Decls) String() string {
	parts := make([]string, len(d.decls))
	for i, decl := range d.decls {
		parts[i] = decl.String()
	}
	return strings.Join(parts, ", ")
}
