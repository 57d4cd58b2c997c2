package constraint

import (
	"fmt"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Gate is a named set of polynomial constraints that must vanish on every
// row. Activation is expressed inside the polynomials themselves, by
// multiplying with a 0/1 fixed (selector) column.
type Gate struct {
	Name  string
	Polys []Expression
}

// Lookup declares that on every row, the tuple of input expressions must
// equal the tuple of table expressions of some row (multiset containment).
type Lookup struct {
	Name   string
	Inputs []Expression
	Table  []Expression
}

// Cell addresses one value in the grid.
type Cell struct {
	Col Column
	Row int
}

// Copy is an equality between two cells, enforced by the permutation
// argument.
type Copy struct {
	A, B Cell
}

// System is a circuit shape: columns, gates, lookups and copy constraints
// over a 2^K-row grid. It is immutable once handed to Setup.
type System struct {
	K uint // rows = 1 << K

	FixedColumns [][]fr.Element // fixed column values, len N each

	nbAdvice   int
	nbInstance int

	Gates   []Gate
	Lookups []Lookup
	Copies  []Copy

	permCols    []Column
	permColSeen map[Column]struct{}
}

// NewSystem creates an empty system with 2^k rows.
func NewSystem(k uint) *System {
	return &System{K: k, permColSeen: make(map[Column]struct{})}
}

// N returns the number of rows.
func (s *System) N() int { return 1 << s.K }

// NbAdvice returns the number of advice columns.
func (s *System) NbAdvice() int { return s.nbAdvice }

// NbInstance returns the number of instance columns.
func (s *System) NbInstance() int { return s.nbInstance }

// AddFixedColumn registers a fixed column; values shorter than N are
// zero-padded.
func (s *System) AddFixedColumn(values []fr.Element) (Column, error) {
	if len(values) > s.N() {
		return Column{}, fmt.Errorf("fixed column holds %d values, grid has %d rows", len(values), s.N())
	}
	col := make([]fr.Element, s.N())
	copy(col, values)
	s.FixedColumns = append(s.FixedColumns, col)
	return Column{Kind: Fixed, Index: len(s.FixedColumns) - 1}, nil
}

// AddSelectorColumn registers a fixed 0/1 column active on the given rows.
func (s *System) AddSelectorColumn(rows []int) (Column, error) {
	col := make([]fr.Element, s.N())
	for _, r := range rows {
		if r < 0 || r >= s.N() {
			return Column{}, fmt.Errorf("selector row %d out of range", r)
		}
		col[r].SetOne()
	}
	s.FixedColumns = append(s.FixedColumns, col)
	return Column{Kind: Fixed, Index: len(s.FixedColumns) - 1}, nil
}

// AddAdviceColumn registers a private witness column.
func (s *System) AddAdviceColumn() Column {
	s.nbAdvice++
	return Column{Kind: Advice, Index: s.nbAdvice - 1}
}

// AddInstanceColumn registers a public input column.
func (s *System) AddInstanceColumn() Column {
	s.nbInstance++
	return Column{Kind: Instance, Index: s.nbInstance - 1}
}

// AddGate declares a gate.
func (s *System) AddGate(name string, polys ...Expression) {
	s.Gates = append(s.Gates, Gate{Name: name, Polys: polys})
}

// AddLookup declares a lookup argument instance.
func (s *System) AddLookup(name string, inputs, table []Expression) error {
	if len(inputs) == 0 || len(inputs) != len(table) {
		return fmt.Errorf("lookup %q: inputs and table must be non-empty and of equal arity", name)
	}
	s.Lookups = append(s.Lookups, Lookup{Name: name, Inputs: inputs, Table: table})
	return nil
}

// AddCopy declares a copy constraint between two cells. The last row is
// the permutation argument's boundary row and cannot carry equalities.
func (s *System) AddCopy(a, b Cell) error {
	for _, c := range [2]Cell{a, b} {
		if c.Row < 0 || c.Row >= s.N() {
			return fmt.Errorf("copy constraint row %d out of range", c.Row)
		}
		if c.Row == s.N()-1 {
			return fmt.Errorf("copy constraint on boundary row %d", c.Row)
		}
	}
	s.registerPermColumn(a.Col)
	s.registerPermColumn(b.Col)
	s.Copies = append(s.Copies, Copy{A: a, B: b})
	return nil
}

func (s *System) registerPermColumn(c Column) {
	if _, ok := s.permColSeen[c]; ok {
		return
	}
	if s.permColSeen == nil {
		s.permColSeen = make(map[Column]struct{})
	}
	s.permColSeen[c] = struct{}{}
	s.permCols = append(s.permCols, c)
}

// PermutationColumns returns the columns touched by copy constraints, in
// first-use order. The order is part of the circuit shape.
func (s *System) PermutationColumns() []Column { return s.permCols }

// MaxDegree returns the maximum constraint degree across gates, lookups
// and the permutation argument (whose chunk width is derived from this
// very bound, so it never raises it). Minimum is 3, the degree of the
// lookup product recurrence.
func (s *System) MaxDegree() int {
	d := 3
	for _, g := range s.Gates {
		for _, p := range g.Polys {
			if pd := p.Degree(); pd > d {
				d = pd
			}
		}
	}
	for _, l := range s.Lookups {
		di, dt := 0, 0
		for _, e := range l.Inputs {
			if ed := e.Degree(); ed > di {
				di = ed
			}
		}
		for _, e := range l.Table {
			if ed := e.Degree(); ed > dt {
				dt = ed
			}
		}
		// Z(X)·(A(X)+β)·(S(X)+γ)
		if rd := 1 + di + dt; rd > d {
			d = rd
		}
	}
	return d
}

// Queries returns the deduplicated (column, rotation) reads of the whole
// system, per column kind, in a canonical order shared by prover and
// verifier: sorted by column index then rotation. Rotation-0 reads of
// permutation columns are always included, since the permutation argument
// queries them.
func (s *System) Queries() (advice, fixed, instance []Query) {
	seen := make(map[Query]struct{})
	add := func(q Query) {
		if _, ok := seen[q]; ok {
			return
		}
		seen[q] = struct{}{}
		switch q.Col.Kind {
		case Advice:
			advice = append(advice, q)
		case Fixed:
			fixed = append(fixed, q)
		case Instance:
			instance = append(instance, q)
		}
	}

	for _, g := range s.Gates {
		for _, p := range g.Polys {
			Visit(p, add)
		}
	}
	for _, l := range s.Lookups {
		for _, e := range l.Inputs {
			Visit(e, add)
		}
		for _, e := range l.Table {
			Visit(e, add)
		}
	}
	for _, c := range s.permCols {
		add(Query{Col: c})
	}

	less := func(qs []Query) func(i, j int) bool {
		return func(i, j int) bool {
			if qs[i].Col.Index != qs[j].Col.Index {
				return qs[i].Col.Index < qs[j].Col.Index
			}
			return qs[i].Rot < qs[j].Rot
		}
	}
	sort.Slice(advice, less(advice))
	sort.Slice(fixed, less(fixed))
	sort.Slice(instance, less(instance))
	return advice, fixed, instance
}

// Validate checks the shape invariants that do not depend on a witness.
func (s *System) Validate() error {
	n := s.N()
	check := func(q Query) error {
		if q.Rot <= Rotation(-n) || q.Rot >= Rotation(n) {
			return fmt.Errorf("rotation %d exceeds domain size %d", q.Rot, n)
		}
		switch q.Col.Kind {
		case Fixed:
			if q.Col.Index >= len(s.FixedColumns) {
				return fmt.Errorf("query references unknown fixed column %d", q.Col.Index)
			}
		case Advice:
			if q.Col.Index >= s.nbAdvice {
				return fmt.Errorf("query references unknown advice column %d", q.Col.Index)
			}
		case Instance:
			if q.Col.Index >= s.nbInstance {
				return fmt.Errorf("query references unknown instance column %d", q.Col.Index)
			}
		}
		return nil
	}

	var err error
	visitAll := func(q Query) {
		if e := check(q); e != nil && err == nil {
			err = e
		}
	}
	for _, g := range s.Gates {
		for _, p := range g.Polys {
			Visit(p, visitAll)
		}
	}
	for _, l := range s.Lookups {
		for _, e := range l.Inputs {
			Visit(e, visitAll)
		}
		for _, e := range l.Table {
			Visit(e, visitAll)
		}
	}
	return err
}
