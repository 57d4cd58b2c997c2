package plonk

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/constraint"
	"github.com/plonkish/plonkish/debug"
	"github.com/plonkish/plonkish/internal/parallel"
	"github.com/plonkish/plonkish/polynomial"
)

// proverPolys carries the coefficient-form polynomials of one proof.
// Committed ones are blinded; instance polynomials are plain, the verifier
// re-derives their evaluations from the public inputs.
type proverPolys struct {
	advice   []polynomial.Polynomial
	instance []polynomial.Polynomial
	permZ    []polynomial.Polynomial
	lookupZ  []polynomial.Polynomial
	lookupA  []polynomial.Polynomial
	lookupS  []polynomial.Polynomial
}

// computeQuotient evaluates the folded vanishing identity on the extended
// coset, divides by X^n-1 pointwise, interpolates back and splits the
// quotient into NbPieces coefficient slices of PieceSize each.
func computeQuotient(pk *ProvingKey, polys *proverPolys, theta, beta, gamma, y fr.Element, nbTasks int) ([]polynomial.Polynomial, error) {
	vk := pk.Vk
	sys := vk.System
	n := sys.N()
	extN := int(pk.DomainExt.Cardinality)
	ratio := extN / n

	toExt := func(p polynomial.Polynomial) []fr.Element {
		buf := make([]fr.Element, extN)
		copy(buf, p)
		pk.DomainExt.FFT(buf, true)
		return buf
	}
	toExtAll := func(ps []polynomial.Polynomial) [][]fr.Element {
		out := make([][]fr.Element, len(ps))
		for i, p := range ps {
			out[i] = toExt(p)
		}
		return out
	}

	fixedExt := toExtAll(pk.FixedPolys)
	adviceExt := toExtAll(polys.advice)
	instanceExt := toExtAll(polys.instance)
	sigmaExt := toExtAll(pk.SigmaPolys)
	permZExt := toExtAll(polys.permZ)
	lookupZExt := toExtAll(polys.lookupZ)
	lookupAExt := toExtAll(polys.lookupA)
	lookupSExt := toExtAll(polys.lookupS)

	l0Ext := toExt(lagrangeSelectorCoeffs(pk, 0))
	llastExt := toExt(lagrangeSelectorCoeffs(pk, n-1))

	xExt := cosetPoints(pk)
	zhInv := vanishingInverse(pk, ratio)

	res := make([]fr.Element, extN)
	parallel.Execute(extN, func(start, end int) {
		o := &constraintOracle{
			sys:        sys,
			nbChunks:   vk.NbChunks,
			chunkWidth: vk.ChunkWidth,
			deltas:     vk.Deltas,
			beta:       beta,
			gamma:      gamma,
			theta:      theta,
			y:          y,
		}
		for i := start; i < end; i++ {
			idx := func(rot int) int {
				t := (i + rot*ratio) % extN
				if t < 0 {
					t += extN
				}
				return t
			}
			o.query = func(q constraint.Query) fr.Element {
				j := idx(int(q.Rot))
				switch q.Col.Kind {
				case constraint.Fixed:
					return fixedExt[q.Col.Index][j]
				case constraint.Advice:
					return adviceExt[q.Col.Index][j]
				default:
					return instanceExt[q.Col.Index][j]
				}
			}
			o.sigma = func(j int) fr.Element { return sigmaExt[j][i] }
			o.permZ = func(c, rot int) fr.Element { return permZExt[c][idx(rot)] }
			o.lookupZ = func(l, rot int) fr.Element { return lookupZExt[l][idx(rot)] }
			o.lookupA = func(l, rot int) fr.Element { return lookupAExt[l][idx(rot)] }
			o.lookupS = func(l int) fr.Element { return lookupSExt[l][i] }
			o.x = xExt[i]
			o.l0 = l0Ext[i]
			o.llast = llastExt[i]

			v := o.fold()
			res[i].Mul(&v, &zhInv[i%ratio])
		}
	}, nbTasks)

	pk.DomainExt.FFTInverse(res, true)

	qLen := vk.Degree*(n+pk.Blinds.Max) - n + 1
	if debug.Debug {
		for i := qLen; i < extN; i++ {
			if !res[i].IsZero() {
				return nil, &ArgumentViolation{
					Argument: "vanishing",
					Row:      i,
					Detail:   "quotient exceeds expected degree, identity does not vanish on the domain",
				}
			}
		}
	}

	pieces := make([]polynomial.Polynomial, vk.NbPieces)
	for j := 0; j < vk.NbPieces; j++ {
		pieces[j] = make(polynomial.Polynomial, vk.PieceSize)
		lo := j * vk.PieceSize
		if lo < qLen {
			hi := lo + vk.PieceSize
			if hi > qLen {
				hi = qLen
			}
			copy(pieces[j], res[lo:hi])
		}
	}
	return pieces, nil
}

// lagrangeSelectorCoeffs returns the coefficients of the k-th Lagrange
// basis polynomial: (1/n) * sum_i omega^{-ki} X^i.
func lagrangeSelectorCoeffs(pk *ProvingKey, k int) polynomial.Polynomial {
	n := int(pk.Domain.Cardinality)
	coeffs := make(polynomial.Polynomial, n)

	var wNegK fr.Element
	wNegK.Exp(pk.Domain.GeneratorInv, big.NewInt(int64(k)))

	coeffs[0] = pk.Domain.CardinalityInv
	for i := 1; i < n; i++ {
		coeffs[i].Mul(&coeffs[i-1], &wNegK)
	}
	return coeffs
}

// cosetPoints returns the extended coset points g*omegaExt^i themselves,
// the identity side of the permutation argument evaluates X directly.
func cosetPoints(pk *ProvingKey) []fr.Element {
	extN := int(pk.DomainExt.Cardinality)
	xs := make([]fr.Element, extN)
	xs[0] = pk.DomainExt.FrMultiplicativeGen
	for i := 1; i < extN; i++ {
		xs[i].Mul(&xs[i-1], &pk.DomainExt.Generator)
	}
	return xs
}

// vanishingInverse returns 1/((g*omegaExt^i)^n - 1), which is periodic in i
// with period extN/n, so only ratio values exist.
func vanishingInverse(pk *ProvingKey, ratio int) []fr.Element {
	n := new(big.Int).SetUint64(pk.Domain.Cardinality)

	var gN, wN fr.Element
	gN.Exp(pk.DomainExt.FrMultiplicativeGen, n)
	wN.Exp(pk.DomainExt.Generator, n)

	var one fr.Element
	one.SetOne()

	zh := make([]fr.Element, ratio)
	acc := gN
	for i := 0; i < ratio; i++ {
		zh[i].Sub(&acc, &one)
		acc.Mul(&acc, &wN)
	}
	return fr.BatchInvert(zh)
}
