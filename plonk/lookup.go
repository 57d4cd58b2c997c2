package plonk

import (
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/constraint"
	"github.com/plonkish/plonkish/internal/parallel"
)

// lagrangeResolver reads column values on the domain, wrapping rotations
// around the grid.
func lagrangeResolver(sys *constraint.System, advice, instance [][]fr.Element, row int) func(constraint.Query) fr.Element {
	n := sys.N()
	return func(q constraint.Query) fr.Element {
		r := (row + int(q.Rot)) % n
		if r < 0 {
			r += n
		}
		switch q.Col.Kind {
		case constraint.Fixed:
			return sys.FixedColumns[q.Col.Index][r]
		case constraint.Advice:
			return advice[q.Col.Index][r]
		default:
			return instance[q.Col.Index][r]
		}
	}
}

// compressLookup folds the lookup's input and table tuples into single
// values per row, Horner-style in theta. The same folding runs inside the
// vanishing identity, so the committed product argument and the identity
// see identical values.
func compressLookup(sys *constraint.System, l int, theta fr.Element, advice, instance [][]fr.Element, nbTasks int) (input, table []fr.Element) {
	n := sys.N()
	lk := &sys.Lookups[l]
	input = make([]fr.Element, n)
	table = make([]fr.Element, n)
	parallel.Execute(n, func(start, end int) {
		for r := start; r < end; r++ {
			query := lagrangeResolver(sys, advice, instance, r)
			input[r] = compressWith(lk.Inputs, theta, query)
			table[r] = compressWith(lk.Table, theta, query)
		}
	}, nbTasks)
	return input, table
}

// permuteLookup builds the permuted columns of the lookup argument:
// inputPerm is the input sorted, and tablePerm is a permutation of the
// table where every first occurrence of a distinct input value sits at the
// same row as that value, with the unused table entries filling the rest.
//
// An input value missing from the table cannot yield a valid tablePerm; the
// columns are still produced (tablePerm then fails to be a permutation of
// the table) so the prover emits a proof the verifier rejects, rather than
// leaking which value was out of range.
func permuteLookup(input, table []fr.Element) (inputPerm, tablePerm []fr.Element) {
	n := len(input)

	inputPerm = make([]fr.Element, n)
	copy(inputPerm, input)
	sort.Slice(inputPerm, func(i, j int) bool { return inputPerm[i].Cmp(&inputPerm[j]) < 0 })

	sortedTable := make([]fr.Element, n)
	copy(sortedTable, table)
	sort.Slice(sortedTable, func(i, j int) bool { return sortedTable[i].Cmp(&sortedTable[j]) < 0 })

	tablePerm = make([]fr.Element, n)
	repeats := make([]int, 0, n)
	leftover := make([]fr.Element, 0, n)
	ti := 0
	for i := range inputPerm {
		if i > 0 && inputPerm[i].Equal(&inputPerm[i-1]) {
			repeats = append(repeats, i)
			continue
		}
		// first occurrence: claim the matching table entry
		for ti < n && sortedTable[ti].Cmp(&inputPerm[i]) < 0 {
			leftover = append(leftover, sortedTable[ti])
			ti++
		}
		tablePerm[i] = inputPerm[i]
		if ti < n && sortedTable[ti].Equal(&inputPerm[i]) {
			ti++
		}
	}
	leftover = append(leftover, sortedTable[ti:]...)

	for k, i := range repeats {
		if k < len(leftover) {
			tablePerm[i] = leftover[k]
		}
	}
	return inputPerm, tablePerm
}

// computeLookupZ builds the lookup grand product in Lagrange form. The
// recurrence runs over all rows and wraps around; for honest permuted
// columns the full product telescopes back to 1, which the vanishing
// identity pins with l_0*(Z-1).
func computeLookupZ(input, table, inputPerm, tablePerm []fr.Element, beta, gamma fr.Element) []fr.Element {
	n := len(input)
	den := make([]fr.Element, n)
	var u, v fr.Element
	for r := 0; r < n; r++ {
		u.Add(&inputPerm[r], &beta)
		v.Add(&tablePerm[r], &gamma)
		den[r].Mul(&u, &v)
	}
	den = fr.BatchInvert(den)

	z := make([]fr.Element, n)
	z[0].SetOne()
	for r := 0; r < n-1; r++ {
		u.Add(&input[r], &beta)
		v.Add(&table[r], &gamma)
		u.Mul(&u, &v)
		z[r+1].Mul(&z[r], &u).Mul(&z[r+1], &den[r])
	}
	return z
}
