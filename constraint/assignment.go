package constraint

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// WitnessError reports a required cell that was never assigned. Unassigned
// cells are never silently zero-filled: a zero witness value must be
// written deliberately.
type WitnessError struct {
	Col Column
	Row int
}

func (e *WitnessError) Error() string {
	return fmt.Sprintf("witness: unassigned %s cell (column %d, row %d)", e.Col.Kind, e.Col.Index, e.Row)
}

// Assignment holds the per-proof column values of a circuit: advice
// (private) and instance (public). Assigned cells are tracked separately
// from their values, so "unassigned" is distinct from "zero".
type Assignment struct {
	n        int
	advice   [][]fr.Element
	assigned []*bitset.BitSet
	instance [][]fr.Element
}

// NewAssignment creates an empty assignment for the system's shape.
func NewAssignment(s *System) *Assignment {
	a := &Assignment{
		n:        s.N(),
		advice:   make([][]fr.Element, s.NbAdvice()),
		assigned: make([]*bitset.BitSet, s.NbAdvice()),
		instance: make([][]fr.Element, s.NbInstance()),
	}
	for i := range a.advice {
		a.advice[i] = make([]fr.Element, a.n)
		a.assigned[i] = bitset.New(uint(a.n))
	}
	for i := range a.instance {
		a.instance[i] = make([]fr.Element, a.n)
	}
	return a
}

// AssignAdvice writes one advice cell.
func (a *Assignment) AssignAdvice(col Column, row int, v fr.Element) error {
	if col.Kind != Advice || col.Index >= len(a.advice) {
		return fmt.Errorf("witness: %s column %d is not a known advice column", col.Kind, col.Index)
	}
	if row < 0 || row >= a.n {
		return fmt.Errorf("witness: row %d out of range", row)
	}
	a.advice[col.Index][row] = v
	a.assigned[col.Index].Set(uint(row))
	return nil
}

// FillAdvice writes a whole advice column; values shorter than the grid
// leave the tail unassigned.
func (a *Assignment) FillAdvice(col Column, values []fr.Element) error {
	for i, v := range values {
		if err := a.AssignAdvice(col, i, v); err != nil {
			return err
		}
	}
	return nil
}

// SetInstance writes a public input column; values shorter than the grid
// are zero-padded (public inputs are public, padding is not a witness bug).
func (a *Assignment) SetInstance(col Column, values []fr.Element) error {
	if col.Kind != Instance || col.Index >= len(a.instance) {
		return fmt.Errorf("witness: %s column %d is not a known instance column", col.Kind, col.Index)
	}
	if len(values) > a.n {
		return fmt.Errorf("witness: %d instance values exceed %d rows", len(values), a.n)
	}
	inst := make([]fr.Element, a.n)
	copy(inst, values)
	a.instance[col.Index] = inst
	return nil
}

// Advice returns the values of one advice column.
func (a *Assignment) Advice(index int) []fr.Element { return a.advice[index] }

// Instances returns all instance columns.
func (a *Assignment) Instances() [][]fr.Element { return a.instance }

// Complete verifies that every advice column referenced by the system is
// fully assigned and returns the first hole otherwise.
func (a *Assignment) Complete(s *System) error {
	used := make(map[int]struct{})
	mark := func(q Query) {
		if q.Col.Kind == Advice {
			used[q.Col.Index] = struct{}{}
		}
	}
	adv, _, _ := s.Queries()
	for _, q := range adv {
		mark(q)
	}
	for _, c := range s.Copies {
		if c.A.Col.Kind == Advice {
			used[c.A.Col.Index] = struct{}{}
		}
		if c.B.Col.Kind == Advice {
			used[c.B.Col.Index] = struct{}{}
		}
	}

	for idx := range a.advice {
		if _, ok := used[idx]; !ok {
			continue
		}
		if hole, found := a.assigned[idx].NextClear(0); found && hole < uint(a.n) {
			return &WitnessError{Col: Column{Kind: Advice, Index: idx}, Row: int(hole)}
		}
	}
	return nil
}
