package polynomial

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/plonkish/plonkish/fft"
)

func randomPoly(n int) Polynomial {
	p := make(Polynomial, n)
	for i := range p {
		p[i].SetRandom()
	}
	return p
}

func TestEval(t *testing.T) {
	// p = 3 + 2X + X^2, p(5) = 38
	p := make(Polynomial, 3)
	p[0].SetUint64(3)
	p[1].SetUint64(2)
	p[2].SetOne()

	var x, expected fr.Element
	x.SetUint64(5)
	expected.SetUint64(38)

	got := p.Eval(&x)
	require.True(t, expected.Equal(&got))
}

func TestDegreeIgnoresTrailingZeros(t *testing.T) {
	p := make(Polynomial, 8)
	p[3].SetOne()
	require.Equal(t, 3, p.Degree())
}

func TestMul(t *testing.T) {
	a := randomPoly(7)
	b := randomPoly(12)
	c, err := Mul(a, b)
	require.NoError(t, err)
	require.Equal(t, len(a)+len(b)-1, len(c))

	var x fr.Element
	x.SetRandom()
	va := a.Eval(&x)
	vb := b.Eval(&x)
	vc := c.Eval(&x)
	va.Mul(&va, &vb)
	require.True(t, va.Equal(&vc))
}

func TestInterpolateOnDomain(t *testing.T) {
	d, err := fft.NewDomain(16)
	require.NoError(t, err)

	evals := make([]fr.Element, 16)
	for i := range evals {
		evals[i].SetRandom()
	}
	p := InterpolateOnDomain(evals, d, 0)

	var x fr.Element
	x.SetOne()
	for i := range evals {
		got := p.Eval(&x)
		require.True(t, evals[i].Equal(&got), "row %d", i)
		x.Mul(&x, &d.Generator)
	}
}

func TestEvalLagrange(t *testing.T) {
	d, err := fft.NewDomain(8)
	require.NoError(t, err)

	values := make([]fr.Element, 8)
	for i := range values {
		values[i].SetRandom()
	}
	p := InterpolateOnDomain(values, d, 0)

	var z fr.Element
	z.SetRandom()
	expected := p.Eval(&z)
	got := EvalLagrange(values, z, d)
	require.True(t, expected.Equal(&got))
}

func TestEvalLagrangeShortValues(t *testing.T) {
	// only the first values count, the rest of the column is zero
	d, err := fft.NewDomain(8)
	require.NoError(t, err)

	values := []fr.Element{fr.NewElement(7), fr.NewElement(11)}
	full := make([]fr.Element, 8)
	copy(full, values)
	p := InterpolateOnDomain(full, d, 0)

	var z fr.Element
	z.SetRandom()
	expected := p.Eval(&z)
	got := EvalLagrange(values, z, d)
	require.True(t, expected.Equal(&got))
}

func TestEvalLagrangeOnDomainPoint(t *testing.T) {
	d, err := fft.NewDomain(8)
	require.NoError(t, err)

	values := make([]fr.Element, 8)
	for i := range values {
		values[i].SetRandom()
	}

	// z = omega^3
	var z fr.Element
	z.SetOne()
	for i := 0; i < 3; i++ {
		z.Mul(&z, &d.Generator)
	}
	got := EvalLagrange(values, z, d)
	require.True(t, values[3].Equal(&got))
}
