package ipa

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/plonkish/plonkish/commitment"
	"github.com/plonkish/plonkish/transcript"
)

func testScheme(t *testing.T, size uint64) *Scheme {
	t.Helper()
	params, err := NewParams(size)
	require.NoError(t, err)
	return NewScheme(params)
}

func hidingClaims(t *testing.T, s *Scheme, n, length int) ([]commitment.BlindedPoly, []commitment.Digest) {
	t.Helper()
	claims := make([]commitment.BlindedPoly, n)
	digests := make([]commitment.Digest, n)
	for i := range claims {
		p := make([]fr.Element, length)
		for j := range p {
			p[j].SetRandom()
		}
		d, blind, err := s.CommitHiding(p)
		require.NoError(t, err)
		claims[i] = commitment.BlindedPoly{Coeffs: p, Blind: blind}
		digests[i] = d
	}
	return claims, digests
}

func eval(p []fr.Element, x fr.Element) fr.Element {
	var r fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		r.Mul(&r, &x).Add(&r, &p[i])
	}
	return r
}

func TestParamsDeterministic(t *testing.T) {
	p1, err := NewParams(8)
	require.NoError(t, err)
	p2, err := NewParams(8)
	require.NoError(t, err)
	require.Equal(t, p1, p2)
}

func TestParamsRoundUp(t *testing.T) {
	p, err := NewParams(9)
	require.NoError(t, err)
	require.Len(t, p.G, 16)
}

func TestOpenVerify(t *testing.T) {
	s := testScheme(t, 16)
	claims, digests := hidingClaims(t, s, 3, 12)

	var point fr.Element
	point.SetRandom()
	values := make([]fr.Element, len(claims))
	for i := range claims {
		values[i] = eval(claims[i].Coeffs, point)
	}

	proof, err := s.Open(claims, point, transcript.New("ipa.test"))
	require.NoError(t, err)
	require.NoError(t, s.Verify(digests, values, point, proof, transcript.New("ipa.test")))
}

func TestVerifyRejectsWrongValue(t *testing.T) {
	s := testScheme(t, 16)
	claims, digests := hidingClaims(t, s, 2, 16)

	var point, one fr.Element
	point.SetRandom()
	one.SetOne()
	values := make([]fr.Element, len(claims))
	for i := range claims {
		values[i] = eval(claims[i].Coeffs, point)
	}
	values[0].Add(&values[0], &one)

	proof, err := s.Open(claims, point, transcript.New("ipa.test"))
	require.NoError(t, err)
	require.ErrorIs(t, s.Verify(digests, values, point, proof, transcript.New("ipa.test")), commitment.ErrInvalidOpening)
}

func TestVerifyRejectsSwappedDigests(t *testing.T) {
	s := testScheme(t, 16)
	claims, digests := hidingClaims(t, s, 2, 16)

	var point fr.Element
	point.SetRandom()
	values := make([]fr.Element, len(claims))
	for i := range claims {
		values[i] = eval(claims[i].Coeffs, point)
	}

	proof, err := s.Open(claims, point, transcript.New("ipa.test"))
	require.NoError(t, err)

	digests[0], digests[1] = digests[1], digests[0]
	require.ErrorIs(t, s.Verify(digests, values, point, proof, transcript.New("ipa.test")), commitment.ErrInvalidOpening)
}

func TestHidingCommitmentsDiffer(t *testing.T) {
	// same polynomial, fresh blinds: digests must not repeat
	s := testScheme(t, 8)
	p := make([]fr.Element, 8)
	for i := range p {
		p[i].SetRandom()
	}
	d1, _, err := s.CommitHiding(p)
	require.NoError(t, err)
	d2, _, err := s.CommitHiding(p)
	require.NoError(t, err)
	require.False(t, d1.Equal(&d2))
}

func TestCommitRejectsOversizedPolynomial(t *testing.T) {
	s := testScheme(t, 8)
	_, err := s.Commit(make([]fr.Element, 9))
	require.ErrorIs(t, err, commitment.ErrPolynomialTooLarge)
}

func TestOpeningProofSerialization(t *testing.T) {
	s := testScheme(t, 16)
	claims, _ := hidingClaims(t, s, 1, 16)
	var point fr.Element
	point.SetRandom()

	proof, err := s.Open(claims, point, transcript.New("ipa.test"))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = proof.WriteTo(&buf)
	require.NoError(t, err)

	restored := s.NewOpeningProof()
	_, err = restored.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, proof, restored)
}
