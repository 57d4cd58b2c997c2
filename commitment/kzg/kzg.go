// Package kzg implements the pairing-based commitment back-end: constant
// size openings checked with a single pairing equation.
//
// The SRS is the usual powers-of-tau basis; it is updatable, and hiding is
// achieved upstream by blinding polynomials with multiples of the domain's
// vanishing polynomial, which keeps Commit a deterministic MSM.
package kzg

import (
	"errors"
	"io"
	"math/big"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/commitment"
	"github.com/plonkish/plonkish/transcript"
)

// SRS is the structured reference string: powers of a secret tau in G1,
// plus [1]₂ and [tau]₂ for the pairing check.
type SRS struct {
	G1 []bn254.G1Affine
	G2 [2]bn254.G2Affine
}

// NewSRS builds an SRS of the given size from tau. Production deployments
// import the output of a ceremony instead; this constructor exists for
// tests and for participating in an update.
func NewSRS(size uint64, tau *big.Int) (*SRS, error) {
	if size < 2 {
		return nil, errors.New("kzg: srs size must be at least 2")
	}

	var tauFr fr.Element
	tauFr.SetBigInt(tau)

	powers := make([]fr.Element, size)
	powers[0].SetOne()
	for i := 1; i < len(powers); i++ {
		powers[i].Mul(&powers[i-1], &tauFr)
	}

	_, _, g1, g2 := bn254.Generators()

	srs := &SRS{}
	srs.G1 = bn254.BatchScalarMultiplicationG1(&g1, powers)
	srs.G2[0] = g2
	srs.G2[1].ScalarMultiplication(&g2, tau)

	return srs, nil
}

// Scheme implements commitment.Scheme over an SRS.
type Scheme struct {
	srs *SRS
}

// NewScheme wraps an SRS as a commitment scheme.
func NewScheme(srs *SRS) *Scheme {
	return &Scheme{srs: srs}
}

// MaxLength returns the number of G1 basis points.
func (s *Scheme) MaxLength() int { return len(s.srs.G1) }

// Commit computes the MSM of p against the powers-of-tau basis.
func (s *Scheme) Commit(p []fr.Element) (commitment.Digest, error) {
	if len(p) > len(s.srs.G1) {
		return commitment.Digest{}, commitment.ErrPolynomialTooLarge
	}
	var d commitment.Digest
	_, err := d.MultiExp(s.srs.G1[:len(p)], p, ecc.MultiExpConfig{NbTasks: runtime.NumCPU()})
	return d, err
}

// CommitHiding is Commit: this back-end has no blinding basis element, and
// hiding is handled by polynomial blinding upstream.
func (s *Scheme) CommitHiding(p []fr.Element) (commitment.Digest, fr.Element, error) {
	var zero fr.Element
	d, err := s.Commit(p)
	return d, zero, err
}

// OpeningProof is a single quotient commitment.
type OpeningProof struct {
	W bn254.G1Affine
}

// Open folds the claims with a transcript challenge and commits to the
// quotient (folded - folded(point)) / (X - point).
func (s *Scheme) Open(claims []commitment.BlindedPoly, point fr.Element, ts *transcript.Transcript) (commitment.OpeningProof, error) {
	if len(claims) == 0 {
		return nil, errors.New("kzg: nothing to open")
	}

	v := ts.ChallengeScalar("v")

	folded := foldPolys(claims, v)

	// synthetic division of (folded - folded(point)) by (X - point):
	// q_{n-2} = p_{n-1}, then q_{i-1} = p_i + point·q_i.
	var q []fr.Element
	if n := len(folded); n > 1 {
		q = make([]fr.Element, n-1)
		q[n-2] = folded[n-1]
		for i := n - 2; i >= 1; i-- {
			q[i-1].Mul(&q[i], &point).Add(&q[i-1], &folded[i])
		}
	} else {
		q = make([]fr.Element, 1)
	}

	w, err := s.Commit(q)
	if err != nil {
		return nil, err
	}
	return &OpeningProof{W: w}, nil
}

// Verify recomputes the folded digest and value and checks
// e(C - [y]₁ + z·W, [1]₂) · e(-W, [tau]₂) == 1.
func (s *Scheme) Verify(digests []commitment.Digest, values []fr.Element, point fr.Element, proof commitment.OpeningProof, ts *transcript.Transcript) error {
	op, ok := proof.(*OpeningProof)
	if !ok {
		return commitment.ErrInvalidProofShape
	}
	if len(digests) != len(values) || len(digests) == 0 {
		return commitment.ErrInvalidProofShape
	}

	v := ts.ChallengeScalar("v")

	// folded digest and folded claimed value
	vPowers := make([]fr.Element, len(digests))
	vPowers[0].SetOne()
	for i := 1; i < len(vPowers); i++ {
		vPowers[i].Mul(&vPowers[i-1], &v)
	}

	var foldedDigest bn254.G1Affine
	if _, err := foldedDigest.MultiExp(digests, vPowers, ecc.MultiExpConfig{}); err != nil {
		return err
	}

	var foldedValue, tmp fr.Element
	for i := range values {
		tmp.Mul(&vPowers[i], &values[i])
		foldedValue.Add(&foldedValue, &tmp)
	}

	// total = C - [y]₁ + z·W
	var yBig, zBig big.Int
	foldedValue.BigInt(&yBig)
	point.BigInt(&zBig)

	var yG, zW, total, wNeg bn254.G1Affine
	yG.ScalarMultiplication(&s.srs.G1[0], &yBig)
	yG.Neg(&yG)
	zW.ScalarMultiplication(&op.W, &zBig)
	total.Add(&foldedDigest, &yG)
	total.Add(&total, &zW)
	wNeg.Neg(&op.W)

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{total, wNeg},
		[]bn254.G2Affine{s.srs.G2[0], s.srs.G2[1]},
	)
	if err != nil {
		return err
	}
	if !ok {
		return commitment.ErrInvalidOpening
	}
	return nil
}

// NewOpeningProof returns an empty KZG opening proof.
func (s *Scheme) NewOpeningProof() commitment.OpeningProof {
	return &OpeningProof{}
}

// WriteTo serializes the proof with the canonical curve encoder.
func (p *OpeningProof) WriteTo(w io.Writer) (int64, error) {
	enc := bn254.NewEncoder(w)
	if err := enc.Encode(&p.W); err != nil {
		return enc.BytesWritten(), err
	}
	return enc.BytesWritten(), nil
}

// ReadFrom deserializes the proof; the decoder enforces that the point is
// on the curve and in the right subgroup.
func (p *OpeningProof) ReadFrom(r io.Reader) (int64, error) {
	dec := bn254.NewDecoder(r)
	if err := dec.Decode(&p.W); err != nil {
		return dec.BytesRead(), err
	}
	return dec.BytesRead(), nil
}

func foldPolys(claims []commitment.BlindedPoly, v fr.Element) []fr.Element {
	maxLen := 0
	for i := range claims {
		if len(claims[i].Coeffs) > maxLen {
			maxLen = len(claims[i].Coeffs)
		}
	}
	folded := make([]fr.Element, maxLen)
	copy(folded, claims[0].Coeffs)

	var vPow, tmp fr.Element
	vPow.SetOne()
	for i := 1; i < len(claims); i++ {
		vPow.Mul(&vPow, &v)
		for j := range claims[i].Coeffs {
			tmp.Mul(&vPow, &claims[i].Coeffs[j])
			folded[j].Add(&folded[j], &tmp)
		}
	}
	return folded
}
