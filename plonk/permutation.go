package plonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/constraint"
	"github.com/plonkish/plonkish/internal/parallel"
)

// computePermutationChunks builds the grand-product columns Z_0..Z_{c-1}
// in Lagrange form. Each chunk folds chunkWidth permutation columns; the
// running product threads through the chunks, so Z_i starts where Z_{i-1}
// ended and the last chunk's final value is 1 for a valid witness.
//
// The recurrence runs over rows 0..n-2 only; row n-1 is the boundary row,
// where the final value sits.
//
//	Z_i(omega^{r+1}) = Z_i(omega^r) * prod_j (v_j + beta*delta^j*omega^r + gamma)
//	                               / prod_j (v_j + beta*sigma_j(r) + gamma)
func computePermutationChunks(pk *ProvingKey, colValues [][]fr.Element, omegas []fr.Element, beta, gamma fr.Element, nbTasks int) [][]fr.Element {
	vk := pk.Vk
	n := vk.System.N()
	m := len(vk.System.PermutationColumns())
	c := vk.NbChunks

	nums := make([][]fr.Element, c)
	dens := make([][]fr.Element, c)
	for i := 0; i < c; i++ {
		nums[i] = make([]fr.Element, n)
		dens[i] = make([]fr.Element, n)
	}

	parallel.Execute(n, func(start, end int) {
		var t fr.Element
		for r := start; r < end; r++ {
			for i := 0; i < c; i++ {
				lo := i * vk.ChunkWidth
				hi := lo + vk.ChunkWidth
				if hi > m {
					hi = m
				}
				num := &nums[i][r]
				den := &dens[i][r]
				num.SetOne()
				den.SetOne()
				for j := lo; j < hi; j++ {
					v := &colValues[j][r]

					t.Mul(&vk.Deltas[j], &omegas[r]).
						Mul(&t, &beta).
						Add(&t, v).
						Add(&t, &gamma)
					num.Mul(num, &t)

					t.Mul(&pk.SigmaLagrange[j][r], &beta).
						Add(&t, v).
						Add(&t, &gamma)
					den.Mul(den, &t)
				}
			}
		}
	}, nbTasks)

	for i := 0; i < c; i++ {
		dens[i] = fr.BatchInvert(dens[i])
	}

	z := make([][]fr.Element, c)
	var cur fr.Element
	cur.SetOne()
	for i := 0; i < c; i++ {
		z[i] = make([]fr.Element, n)
		z[i][0] = cur
		for r := 0; r < n-1; r++ {
			z[i][r+1].
				Mul(&z[i][r], &nums[i][r]).
				Mul(&z[i][r+1], &dens[i][r])
		}
		cur = z[i][n-1]
	}
	return z
}

// permutationColumnValues gathers the Lagrange values of every permutation
// column, in registration order.
func permutationColumnValues(pk *ProvingKey, advice [][]fr.Element, instance [][]fr.Element) [][]fr.Element {
	sys := pk.Vk.System
	cols := sys.PermutationColumns()
	vals := make([][]fr.Element, len(cols))
	for j, c := range cols {
		switch c.Kind {
		case constraint.Fixed:
			vals[j] = sys.FixedColumns[c.Index]
		case constraint.Advice:
			vals[j] = advice[c.Index]
		case constraint.Instance:
			vals[j] = instance[c.Index]
		}
	}
	return vals
}
