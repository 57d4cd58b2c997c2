package plonk

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/constraint"
)

// checkWitness evaluates every constraint row by row and reports the first
// violation with its location. Debug builds run it before proving, so a
// bad witness fails with a named gate and row instead of a rejected proof.
func checkWitness(sys *constraint.System, asg *constraint.Assignment) error {
	n := sys.N()
	advice := make([][]fr.Element, sys.NbAdvice())
	for i := range advice {
		advice[i] = asg.Advice(i)
	}
	instance := asg.Instances()

	cell := func(c constraint.Cell) fr.Element {
		q := lagrangeResolver(sys, advice, instance, c.Row)
		return q(constraint.Query{Col: c.Col})
	}

	for r := 0; r < n; r++ {
		query := lagrangeResolver(sys, advice, instance, r)
		for gi := range sys.Gates {
			g := &sys.Gates[gi]
			for pi, p := range g.Polys {
				if v := constraint.Eval(p, query); !v.IsZero() {
					return &ArgumentViolation{
						Argument: "gate",
						Row:      r,
						Detail:   fmt.Sprintf("gate %q polynomial %d evaluates to %s", g.Name, pi, v.String()),
					}
				}
			}
		}
	}

	for _, cp := range sys.Copies {
		va, vb := cell(cp.A), cell(cp.B)
		if !va.Equal(&vb) {
			return &ArgumentViolation{
				Argument: "permutation",
				Row:      cp.A.Row,
				Detail: fmt.Sprintf("copied cells differ: %s column %d row %d vs %s column %d row %d",
					cp.A.Col.Kind, cp.A.Col.Index, cp.A.Row, cp.B.Col.Kind, cp.B.Col.Index, cp.B.Row),
			}
		}
	}

	for l := range sys.Lookups {
		lk := &sys.Lookups[l]
		table := make(map[string]struct{}, n)
		for r := 0; r < n; r++ {
			query := lagrangeResolver(sys, advice, instance, r)
			table[tupleKey(lk.Table, query)] = struct{}{}
		}
		for r := 0; r < n; r++ {
			query := lagrangeResolver(sys, advice, instance, r)
			if _, ok := table[tupleKey(lk.Inputs, query)]; !ok {
				return &ArgumentViolation{
					Argument: "lookup",
					Row:      r,
					Detail:   fmt.Sprintf("lookup %q input tuple not in table", lk.Name),
				}
			}
		}
	}

	return nil
}

func tupleKey(exprs []constraint.Expression, query func(constraint.Query) fr.Element) string {
	buf := make([]byte, 0, len(exprs)*fr.Bytes)
	for _, e := range exprs {
		v := constraint.Eval(e, query)
		b := v.Bytes()
		buf = append(buf, b[:]...)
	}
	return string(buf)
}
