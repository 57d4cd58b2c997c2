// Package constraint models plonkish circuits: fixed/advice/instance
// columns of a power-of-two length, polynomial gates over rotated column
// queries, lookup arguments, and copy constraints.
//
// The package describes circuit shape only; witness values live in an
// Assignment. The proving engine consumes both.
package constraint

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ColumnKind discriminates the three column roles.
type ColumnKind uint8

const (
	// Fixed columns are part of the circuit, set once at key generation.
	Fixed ColumnKind = iota
	// Advice columns hold the private witness, filled per proof.
	Advice
	// Instance columns hold public inputs, filled per proof.
	Instance
)

func (k ColumnKind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Advice:
		return "advice"
	case Instance:
		return "instance"
	}
	return "unknown"
}

// Column identifies a column by role and index within that role.
type Column struct {
	Kind  ColumnKind
	Index int
}

// Rotation is a relative row offset: a query at rotation r on row i reads
// row (i+r) mod n.
type Rotation int

// Query is a column read at a rotation.
type Query struct {
	Col Column
	Rot Rotation
}

// Expression is a polynomial constraint over column queries, represented
// as an explicit tagged-variant tree and evaluated by an interpreter.
//
// Degree counts the number of committed-polynomial factors multiplied
// together: queries are degree 1, constants degree 0. The maximum degree
// across the whole system sizes the extended evaluation domain.
type Expression interface {
	Degree() int
	eval(query func(Query) fr.Element) fr.Element
	visit(f func(Query))
}

// Constant is a literal field element.
type Constant struct {
	Value fr.Element
}

// Queried reads a column at a rotation.
type Queried struct {
	Q Query
}

// Sum is a + b.
type Sum struct {
	A, B Expression
}

// Product is a * b.
type Product struct {
	A, B Expression
}

// Scaled is k * e for a constant k.
type Scaled struct {
	E Expression
	K fr.Element
}

// Negated is -e.
type Negated struct {
	E Expression
}

func (c Constant) Degree() int { return 0 }
func (q Queried) Degree() int  { return 1 }
func (s Sum) Degree() int {
	da, db := s.A.Degree(), s.B.Degree()
	if da > db {
		return da
	}
	return db
}
func (p Product) Degree() int { return p.A.Degree() + p.B.Degree() }
func (s Scaled) Degree() int  { return s.E.Degree() }
func (n Negated) Degree() int { return n.E.Degree() }

func (c Constant) eval(func(Query) fr.Element) fr.Element { return c.Value }
func (q Queried) eval(query func(Query) fr.Element) fr.Element {
	return query(q.Q)
}
func (s Sum) eval(query func(Query) fr.Element) fr.Element {
	a := s.A.eval(query)
	b := s.B.eval(query)
	a.Add(&a, &b)
	return a
}
func (p Product) eval(query func(Query) fr.Element) fr.Element {
	a := p.A.eval(query)
	b := p.B.eval(query)
	a.Mul(&a, &b)
	return a
}
func (s Scaled) eval(query func(Query) fr.Element) fr.Element {
	e := s.E.eval(query)
	e.Mul(&e, &s.K)
	return e
}
func (n Negated) eval(query func(Query) fr.Element) fr.Element {
	e := n.E.eval(query)
	e.Neg(&e)
	return e
}

func (c Constant) visit(func(Query))  {}
func (q Queried) visit(f func(Query)) { f(q.Q) }
func (s Sum) visit(f func(Query))     { s.A.visit(f); s.B.visit(f) }
func (p Product) visit(f func(Query)) { p.A.visit(f); p.B.visit(f) }
func (s Scaled) visit(f func(Query))  { s.E.visit(f) }
func (n Negated) visit(f func(Query)) { n.E.visit(f) }

// Eval runs the interpreter with the given query resolver.
func Eval(e Expression, query func(Query) fr.Element) fr.Element {
	return e.eval(query)
}

// Visit calls f for every query in e, duplicates included.
func Visit(e Expression, f func(Query)) {
	e.visit(f)
}

// Convenience constructors, so circuit descriptions read naturally.

// Q queries col at rotation 0.
func Q(col Column) Expression { return Queried{Q: Query{Col: col}} }

// QRot queries col at rotation rot.
func QRot(col Column, rot Rotation) Expression { return Queried{Q: Query{Col: col, Rot: rot}} }

// Const lifts a small integer to a constant expression.
func Const(v uint64) Expression {
	var c Constant
	c.Value.SetUint64(v)
	return c
}

// ConstEl lifts a field element to a constant expression.
func ConstEl(v fr.Element) Expression { return Constant{Value: v} }

// Add sums expressions.
func Add(a Expression, rest ...Expression) Expression {
	for _, e := range rest {
		a = Sum{A: a, B: e}
	}
	return a
}

// Mul multiplies expressions.
func Mul(a Expression, rest ...Expression) Expression {
	for _, e := range rest {
		a = Product{A: a, B: e}
	}
	return a
}

// Sub is a - b.
func Sub(a, b Expression) Expression { return Sum{A: a, B: Negated{E: b}} }

// Neg is -e.
func Neg(e Expression) Expression { return Negated{E: e} }

// Scale is k*e.
func Scale(e Expression, k fr.Element) Expression { return Scaled{E: e, K: k} }
