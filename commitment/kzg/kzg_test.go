package kzg

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/plonkish/plonkish/commitment"
	"github.com/plonkish/plonkish/transcript"
)

func testScheme(t *testing.T, size uint64) *Scheme {
	t.Helper()
	tau, err := rand.Int(rand.Reader, fr.Modulus())
	require.NoError(t, err)
	srs, err := NewSRS(size, tau)
	require.NoError(t, err)
	return NewScheme(srs)
}

func randomClaims(n, length int) []commitment.BlindedPoly {
	claims := make([]commitment.BlindedPoly, n)
	for i := range claims {
		p := make([]fr.Element, length)
		for j := range p {
			p[j].SetRandom()
		}
		claims[i] = commitment.BlindedPoly{Coeffs: p}
	}
	return claims
}

func TestOpenVerify(t *testing.T) {
	s := testScheme(t, 64)
	claims := randomClaims(3, 32)

	digests := make([]commitment.Digest, len(claims))
	var err error
	for i := range claims {
		digests[i], err = s.Commit(claims[i].Coeffs)
		require.NoError(t, err)
	}

	var point fr.Element
	point.SetRandom()
	values := make([]fr.Element, len(claims))
	for i := range claims {
		values[i] = eval(claims[i].Coeffs, point)
	}

	proverTs := transcript.New("kzg.test")
	proof, err := s.Open(claims, point, proverTs)
	require.NoError(t, err)

	verifierTs := transcript.New("kzg.test")
	require.NoError(t, s.Verify(digests, values, point, proof, verifierTs))
}

func TestVerifyRejectsWrongValue(t *testing.T) {
	s := testScheme(t, 64)
	claims := randomClaims(2, 16)

	digests := make([]commitment.Digest, len(claims))
	var err error
	for i := range claims {
		digests[i], err = s.Commit(claims[i].Coeffs)
		require.NoError(t, err)
	}

	var point, one fr.Element
	point.SetRandom()
	one.SetOne()
	values := make([]fr.Element, len(claims))
	for i := range claims {
		values[i] = eval(claims[i].Coeffs, point)
	}
	values[1].Add(&values[1], &one)

	proof, err := s.Open(claims, point, transcript.New("kzg.test"))
	require.NoError(t, err)
	require.ErrorIs(t, s.Verify(digests, values, point, proof, transcript.New("kzg.test")), commitment.ErrInvalidOpening)
}

func TestVerifyRejectsWrongTranscript(t *testing.T) {
	s := testScheme(t, 64)
	claims := randomClaims(2, 16)

	digests := make([]commitment.Digest, len(claims))
	var err error
	for i := range claims {
		digests[i], err = s.Commit(claims[i].Coeffs)
		require.NoError(t, err)
	}

	var point fr.Element
	point.SetRandom()
	values := make([]fr.Element, len(claims))
	for i := range claims {
		values[i] = eval(claims[i].Coeffs, point)
	}

	proof, err := s.Open(claims, point, transcript.New("kzg.test"))
	require.NoError(t, err)
	require.Error(t, s.Verify(digests, values, point, proof, transcript.New("kzg.other")))
}

func TestCommitRejectsOversizedPolynomial(t *testing.T) {
	s := testScheme(t, 8)
	_, err := s.Commit(make([]fr.Element, 9))
	require.ErrorIs(t, err, commitment.ErrPolynomialTooLarge)
}

func TestCommitBinding(t *testing.T) {
	// distinct polynomials yield distinct digests
	s := testScheme(t, 32)
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		p := make([]fr.Element, 16)
		for j := range p {
			p[j].SetRandom()
		}
		d, err := s.Commit(p)
		require.NoError(t, err)
		b := d.Bytes()
		_, dup := seen[string(b[:])]
		require.False(t, dup, "digest collision")
		seen[string(b[:])] = struct{}{}
	}
}

func TestOpeningProofSerialization(t *testing.T) {
	s := testScheme(t, 16)
	claims := randomClaims(1, 8)
	var point fr.Element
	point.SetRandom()

	proof, err := s.Open(claims, point, transcript.New("kzg.test"))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = proof.WriteTo(&buf)
	require.NoError(t, err)

	restored := s.NewOpeningProof()
	_, err = restored.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, proof, restored)
}

func eval(p []fr.Element, x fr.Element) fr.Element {
	var r fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		r.Mul(&r, &x).Add(&r, &p[i])
	}
	return r
}

func TestNewSRSSmallTau(t *testing.T) {
	srs, err := NewSRS(4, big.NewInt(3))
	require.NoError(t, err)
	require.Len(t, srs.G1, 4)
}
