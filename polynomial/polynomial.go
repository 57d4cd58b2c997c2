// Package polynomial provides dense coefficient-form polynomials over the
// bn254 scalar field and the evaluation helpers shared by the prover and
// the verifier.
package polynomial

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/fft"
)

// Polynomial is a dense polynomial, coefficients in ascending degree order.
type Polynomial []fr.Element

// Clone returns a copy of p with capacity for extra more coefficients.
func (p Polynomial) Clone(extra int) Polynomial {
	r := make(Polynomial, len(p), len(p)+extra)
	copy(r, p)
	return r
}

// Eval evaluates p at x (Horner).
func (p Polynomial) Eval(x *fr.Element) fr.Element {
	var r fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		r.Mul(&r, x).Add(&r, &p[i])
	}
	return r
}

// Degree returns the degree of p, ignoring trailing zero coefficients.
func (p Polynomial) Degree() int {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].IsZero() {
			return i
		}
	}
	return 0
}

// Mul multiplies a and b via FFT on a zero-padded power-of-two domain
// covering the sum of their degrees.
func Mul(a, b Polynomial) (Polynomial, error) {
	if len(a) == 0 || len(b) == 0 {
		return Polynomial{}, nil
	}
	size := uint64(len(a) + len(b) - 1)
	d, err := fft.NewDomain(size)
	if err != nil {
		return nil, err
	}

	ea := make(Polynomial, d.Cardinality)
	eb := make(Polynomial, d.Cardinality)
	copy(ea, a)
	copy(eb, b)

	d.FFT(ea, false)
	d.FFT(eb, false)
	for i := range ea {
		ea[i].Mul(&ea[i], &eb[i])
	}
	d.FFTInverse(ea, false)

	return ea[:size], nil
}

// InterpolateOnDomain interpolates evaluations on d (natural order) into
// coefficient form, leaving room for extra blinding coefficients.
func InterpolateOnDomain(evals []fr.Element, d *fft.Domain, extra int) Polynomial {
	p := make(Polynomial, d.Cardinality, uint64(int(d.Cardinality)+extra))
	copy(p, evals)
	d.FFTInverse(p, false)
	return p
}

// EvalLagrange evaluates the polynomial interpolating values on d at an
// arbitrary point z, using the Lagrange ladder
//
//	L_{i+1}(z) = L_i(z) · ω · (z-ω^i)/(z-ω^{i+1})
//
// so only len(values) terms are touched. Falls back to a direct read when
// z lies on the domain.
func EvalLagrange(values []fr.Element, z fr.Element, d *fft.Domain) fr.Element {
	var res, l, tmp, acc, one fr.Element
	one.SetOne()
	acc.SetOne()

	// z^n - 1
	zn := z
	for card := d.Cardinality; card > 1; card >>= 1 {
		zn.Square(&zn)
	}
	zn.Sub(&zn, &one)

	if zn.IsZero() {
		// z = ω^i for some i
		for i := 0; uint64(i) < d.Cardinality; i++ {
			if acc.Equal(&z) {
				if i < len(values) {
					return values[i]
				}
				return res
			}
			acc.Mul(&acc, &d.Generator)
		}
	}

	// L_0(z) = (z^n-1) / (n·(z-1))
	l.Sub(&z, &one).
		Inverse(&l).
		Mul(&l, &d.CardinalityInv).
		Mul(&l, &zn)

	for i := 0; i < len(values); i++ {
		tmp.Mul(&l, &values[i])
		res.Add(&res, &tmp)

		tmp.Sub(&z, &acc)
		l.Mul(&l, &tmp).Mul(&l, &d.Generator)
		acc.Mul(&acc, &d.Generator)
		tmp.Sub(&z, &acc)
		l.Div(&l, &tmp)
	}

	return res
}
