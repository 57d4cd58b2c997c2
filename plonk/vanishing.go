package plonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/constraint"
)

// constraintOracle evaluates the full vanishing identity at one point,
// folding every constraint with Horner in y. The prover instantiates it
// per extended-domain row, the verifier once at the evaluation challenge;
// both walk the constraints in this one canonical order:
//
//  1. gate polynomials, in declaration order
//  2. permutation: boundary, final, chaining, then per-chunk recurrences
//  3. per lookup: boundary, recurrence, permuted boundary, sortedness
type constraintOracle struct {
	sys        *constraint.System
	nbChunks   int
	chunkWidth int
	deltas     []fr.Element

	beta, gamma, theta, y fr.Element

	// point-dependent accessors
	query   func(constraint.Query) fr.Element
	sigma   func(j int) fr.Element
	permZ   func(chunk, rot int) fr.Element
	lookupZ func(l, rot int) fr.Element
	lookupA func(l, rot int) fr.Element
	lookupS func(l int) fr.Element

	x, l0, llast fr.Element
}

func (o *constraintOracle) fold() fr.Element {
	var acc, t, u, v, one fr.Element
	one.SetOne()
	emit := func(val *fr.Element) {
		acc.Mul(&acc, &o.y).Add(&acc, val)
	}

	for gi := range o.sys.Gates {
		for _, p := range o.sys.Gates[gi].Polys {
			t = constraint.Eval(p, o.query)
			emit(&t)
		}
	}

	if o.nbChunks > 0 {
		cols := o.sys.PermutationColumns()

		// l_0 * (1 - Z_0)
		t = o.permZ(0, 0)
		t.Sub(&one, &t).Mul(&t, &o.l0)
		emit(&t)

		// l_last * (Z_last^2 - Z_last): the closing value is 0 or 1
		z := o.permZ(o.nbChunks-1, 0)
		t.Square(&z).Sub(&t, &z).Mul(&t, &o.llast)
		emit(&t)

		// l_0 * (Z_i - Z_{i-1}(omega^-1 X)): chunk handoff
		for i := 1; i < o.nbChunks; i++ {
			t = o.permZ(i, 0)
			u = o.permZ(i-1, -1)
			t.Sub(&t, &u).Mul(&t, &o.l0)
			emit(&t)
		}

		for i := 0; i < o.nbChunks; i++ {
			left := o.permZ(i, 1)
			right := o.permZ(i, 0)
			lo := i * o.chunkWidth
			hi := lo + o.chunkWidth
			if hi > len(cols) {
				hi = len(cols)
			}
			for j := lo; j < hi; j++ {
				val := o.query(constraint.Query{Col: cols[j]})

				u = o.sigma(j)
				u.Mul(&u, &o.beta).Add(&u, &val).Add(&u, &o.gamma)
				left.Mul(&left, &u)

				v.Mul(&o.deltas[j], &o.x).
					Mul(&v, &o.beta).
					Add(&v, &val).
					Add(&v, &o.gamma)
				right.Mul(&right, &v)
			}
			// the recurrence holds on rows 0..n-2 only
			t.Sub(&left, &right)
			u.Sub(&one, &o.llast)
			t.Mul(&t, &u)
			emit(&t)
		}
	}

	for l := range o.sys.Lookups {
		lk := &o.sys.Lookups[l]
		a := compressWith(lk.Inputs, o.theta, o.query)
		s := compressWith(lk.Table, o.theta, o.query)

		z0 := o.lookupZ(l, 0)
		ap := o.lookupA(l, 0)
		sp := o.lookupS(l)

		// l_0 * (Z - 1)
		t.Sub(&z0, &one).Mul(&t, &o.l0)
		emit(&t)

		// Z(wX)*(A'+beta)*(S'+gamma) - Z(X)*(A+beta)*(S+gamma)
		u.Add(&ap, &o.beta)
		v.Add(&sp, &o.gamma)
		t = o.lookupZ(l, 1)
		t.Mul(&t, &u).Mul(&t, &v)
		u.Add(&a, &o.beta)
		v.Add(&s, &o.gamma)
		u.Mul(&u, &v).Mul(&u, &z0)
		t.Sub(&t, &u)
		emit(&t)

		// l_0 * (A' - S')
		t.Sub(&ap, &sp).Mul(&t, &o.l0)
		emit(&t)

		// (A' - S') * (A' - A'(omega^-1 X)): where A' steps, it matches S'
		u = o.lookupA(l, -1)
		u.Sub(&ap, &u)
		t.Sub(&ap, &sp).Mul(&t, &u)
		emit(&t)
	}

	return acc
}

// compressWith folds a tuple of expressions into one value, Horner in
// theta.
func compressWith(exprs []constraint.Expression, theta fr.Element, query func(constraint.Query) fr.Element) fr.Element {
	var acc, v fr.Element
	for _, e := range exprs {
		v = constraint.Eval(e, query)
		acc.Mul(&acc, &theta).Add(&acc, &v)
	}
	return acc
}
