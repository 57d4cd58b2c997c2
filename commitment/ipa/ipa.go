// Package ipa implements the discrete-log commitment back-end: a
// Bulletproofs-style inner product argument with logarithmic proof size
// and no pairing.
//
// The basis is transparent: every point is derived by hashing to the
// curve, so no party ever knows discrete-log relations between them. The
// recursive halving protocol proves <a, b> = v for the committed
// coefficient vector a and the public evaluation vector b = (1, z, z², …).
package ipa

import (
	"encoding/binary"
	"errors"
	"io"
	"math/big"
	"math/bits"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/commitment"
	"github.com/plonkish/plonkish/transcript"
)

const domainSeparator = "plonkish/ipa/v1"

// Params is the transparent basis: G for the coefficient vector, H for
// Pedersen blinds, U for binding the inner product value.
type Params struct {
	G []bn254.G1Affine
	H bn254.G1Affine
	U bn254.G1Affine
}

// NewParams derives a basis of the given size (rounded up to a power of
// two) by hashing to the curve. Deterministic: all parties derive the same
// basis from the size alone.
func NewParams(size uint64) (*Params, error) {
	n := uint64(1)
	for n < size {
		n <<= 1
	}

	p := &Params{G: make([]bn254.G1Affine, n)}

	var buf [8]byte
	for i := uint64(0); i < n; i++ {
		binary.BigEndian.PutUint64(buf[:], i)
		pt, err := bn254.HashToG1(buf[:], []byte(domainSeparator+"/G"))
		if err != nil {
			return nil, err
		}
		p.G[i] = pt
	}

	var err error
	if p.H, err = bn254.HashToG1([]byte("blinding"), []byte(domainSeparator+"/H")); err != nil {
		return nil, err
	}
	if p.U, err = bn254.HashToG1([]byte("inner-product"), []byte(domainSeparator+"/U")); err != nil {
		return nil, err
	}
	return p, nil
}

// Scheme implements commitment.Scheme over a transparent basis.
type Scheme struct {
	params *Params
}

// NewScheme wraps params as a commitment scheme.
func NewScheme(params *Params) *Scheme {
	return &Scheme{params: params}
}

// MaxLength returns the number of basis points.
func (s *Scheme) MaxLength() int { return len(s.params.G) }

// Commit computes the Pedersen vector commitment <p, G>.
func (s *Scheme) Commit(p []fr.Element) (commitment.Digest, error) {
	if len(p) > len(s.params.G) {
		return commitment.Digest{}, commitment.ErrPolynomialTooLarge
	}
	var d commitment.Digest
	_, err := d.MultiExp(s.params.G[:len(p)], p, ecc.MultiExpConfig{NbTasks: runtime.NumCPU()})
	return d, err
}

// CommitHiding computes <p, G> + blind·H with a fresh random blind. The
// blind never leaves the prover; it is folded into the opening proof's
// synthetic blinding factor.
func (s *Scheme) CommitHiding(p []fr.Element) (commitment.Digest, fr.Element, error) {
	var blind fr.Element
	if _, err := blind.SetRandom(); err != nil {
		return commitment.Digest{}, blind, err
	}

	d, err := s.Commit(p)
	if err != nil {
		return d, blind, err
	}

	var bBig big.Int
	var bh bn254.G1Affine
	blind.BigInt(&bBig)
	bh.ScalarMultiplication(&s.params.H, &bBig)
	d.Add(&d, &bh)
	return d, blind, nil
}

// OpeningProof is the transcript of the halving rounds plus the final
// scalar and the synthetic blinding factor.
type OpeningProof struct {
	L, R []bn254.G1Affine
	A    fr.Element
	F    fr.Element
}

// Open folds the claims with a transcript challenge, then runs the
// recursive halving argument on the folded vector.
//
// Invariant carried through the rounds, with P implicit:
//
//	P = <a, G> + <a, b>·U' + blind·H
//	P' = u²·L + P + u⁻²·R after each halving.
func (s *Scheme) Open(claims []commitment.BlindedPoly, point fr.Element, ts *transcript.Transcript) (commitment.OpeningProof, error) {
	if len(claims) == 0 {
		return nil, errors.New("ipa: nothing to open")
	}

	v := ts.ChallengeScalar("v")
	a, blind := foldClaims(claims, v, len(s.params.G))

	// per-opening inner product basis
	uPrime := s.effectiveU(ts)

	// b = (1, z, z², …)
	n := len(a)
	b := make([]fr.Element, n)
	b[0].SetOne()
	for i := 1; i < n; i++ {
		b[i].Mul(&b[i-1], &point)
	}

	g := make([]bn254.G1Affine, n)
	copy(g, s.params.G)

	rounds := bits.TrailingZeros(uint(n))
	proof := &OpeningProof{
		L: make([]bn254.G1Affine, 0, rounds),
		R: make([]bn254.G1Affine, 0, rounds),
	}

	for len(a) > 1 {
		m := len(a) / 2
		aL, aR := a[:m], a[m:]
		bL, bR := b[:m], b[m:]
		gL, gR := g[:m], g[m:]

		var lBlind, rBlind fr.Element
		if _, err := lBlind.SetRandom(); err != nil {
			return nil, err
		}
		if _, err := rBlind.SetRandom(); err != nil {
			return nil, err
		}

		l, err := crossTerm(aL, gR, bR, &uPrime, &s.params.H, &lBlind)
		if err != nil {
			return nil, err
		}
		r, err := crossTerm(aR, gL, bL, &uPrime, &s.params.H, &rBlind)
		if err != nil {
			return nil, err
		}
		proof.L = append(proof.L, l)
		proof.R = append(proof.R, r)

		ts.AppendPoint(&l)
		ts.AppendPoint(&r)
		u := roundChallenge(ts)

		var uInv, uSq, uInvSq, tmp fr.Element
		uInv.Inverse(&u)
		uSq.Square(&u)
		uInvSq.Square(&uInv)

		// blind' = blind + u²·l + u⁻²·r
		tmp.Mul(&uSq, &lBlind)
		blind.Add(&blind, &tmp)
		tmp.Mul(&uInvSq, &rBlind)
		blind.Add(&blind, &tmp)

		var uBig, uInvBig big.Int
		u.BigInt(&uBig)
		uInv.BigInt(&uInvBig)

		// a' = u·aL + u⁻¹·aR ; b' = u⁻¹·bL + u·bR ; G' = u⁻¹·GL + u·GR
		var p1, p2 bn254.G1Affine
		for i := 0; i < m; i++ {
			aL[i].Mul(&aL[i], &u)
			tmp.Mul(&aR[i], &uInv)
			aL[i].Add(&aL[i], &tmp)

			bL[i].Mul(&bL[i], &uInv)
			tmp.Mul(&bR[i], &u)
			bL[i].Add(&bL[i], &tmp)

			p1.ScalarMultiplication(&gL[i], &uInvBig)
			p2.ScalarMultiplication(&gR[i], &uBig)
			gL[i].Add(&p1, &p2)
		}
		a, b, g = aL, bL, gL
	}

	proof.A = a[0]
	proof.F = blind
	return proof, nil
}

// Verify recomputes the folded commitment, replays the round challenges
// and checks the final group equation
//
//	C' + y·U' + Σ(u²L + u⁻²R) == a·<s, G> + a·<s, b>·U' + f·H.
func (s *Scheme) Verify(digests []commitment.Digest, values []fr.Element, point fr.Element, proof commitment.OpeningProof, ts *transcript.Transcript) error {
	op, ok := proof.(*OpeningProof)
	if !ok {
		return commitment.ErrInvalidProofShape
	}
	if len(digests) != len(values) || len(digests) == 0 {
		return commitment.ErrInvalidProofShape
	}

	n := len(s.params.G)
	rounds := bits.TrailingZeros(uint(n))
	if len(op.L) != rounds || len(op.R) != rounds {
		return commitment.ErrInvalidProofShape
	}

	v := ts.ChallengeScalar("v")

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

	uPrime := s.effectiveU(ts)

	// replay rounds
	us := make([]fr.Element, rounds)
	uInvs := make([]fr.Element, rounds)
	for j := 0; j < rounds; j++ {
		ts.AppendPoint(&op.L[j])
		ts.AppendPoint(&op.R[j])
		us[j] = roundChallenge(ts)
		uInvs[j].Inverse(&us[j])
	}

	// s-vector: round j contributes u_j to indices whose j-th bit (MSB
	// first) is set, u_j⁻¹ otherwise. Rounds are folded in reverse so the
	// first round ends up on the most significant bit.
	sv := make([]fr.Element, 1, n)
	sv[0].SetOne()
	for j := rounds - 1; j >= 0; j-- {
		half := len(sv)
		sv = sv[:2*half]
		for i := half - 1; i >= 0; i-- {
			sv[half+i].Mul(&sv[i], &us[j])
			sv[i].Mul(&sv[i], &uInvs[j])
		}
	}

	var g0 bn254.G1Affine
	if _, err := g0.MultiExp(s.params.G, sv, ecc.MultiExpConfig{NbTasks: runtime.NumCPU()}); err != nil {
		return err
	}

	// b0 = Σ s_i·z^i
	var b0, zPow fr.Element
	zPow.SetOne()
	for i := 0; i < n; i++ {
		tmp.Mul(&sv[i], &zPow)
		b0.Add(&b0, &tmp)
		zPow.Mul(&zPow, &point)
	}

	// lhs = C' + y·U' + Σ(u²L + u⁻²R)
	var lhs, pt bn254.G1Affine
	var big1 big.Int
	lhs = foldedDigest
	foldedValue.BigInt(&big1)
	pt.ScalarMultiplication(&uPrime, &big1)
	lhs.Add(&lhs, &pt)
	var uSq fr.Element
	for j := 0; j < rounds; j++ {
		uSq.Square(&us[j])
		uSq.BigInt(&big1)
		pt.ScalarMultiplication(&op.L[j], &big1)
		lhs.Add(&lhs, &pt)

		uSq.Square(&uInvs[j])
		uSq.BigInt(&big1)
		pt.ScalarMultiplication(&op.R[j], &big1)
		lhs.Add(&lhs, &pt)
	}

	// rhs = a·G0 + a·b0·U' + f·H
	var rhs bn254.G1Affine
	op.A.BigInt(&big1)
	rhs.ScalarMultiplication(&g0, &big1)
	var ab fr.Element
	ab.Mul(&op.A, &b0)
	ab.BigInt(&big1)
	pt.ScalarMultiplication(&uPrime, &big1)
	rhs.Add(&rhs, &pt)
	op.F.BigInt(&big1)
	pt.ScalarMultiplication(&s.params.H, &big1)
	rhs.Add(&rhs, &pt)

	if !lhs.Equal(&rhs) {
		return commitment.ErrInvalidOpening
	}
	return nil
}

// NewOpeningProof returns an empty IPA opening proof.
func (s *Scheme) NewOpeningProof() commitment.OpeningProof {
	return &OpeningProof{}
}

// WriteTo serializes the proof with the canonical curve encoder.
func (p *OpeningProof) WriteTo(w io.Writer) (int64, error) {
	enc := bn254.NewEncoder(w)
	toEncode := []interface{}{p.L, p.R, &p.A, &p.F}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom deserializes the proof; points are checked for curve and
// subgroup membership by the decoder.
func (p *OpeningProof) ReadFrom(r io.Reader) (int64, error) {
	dec := bn254.NewDecoder(r)
	toDecode := []interface{}{&p.L, &p.R, &p.A, &p.F}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	return dec.BytesRead(), nil
}

// effectiveU derives the per-opening inner-product basis point, so the
// claimed value is bound after the evaluations are absorbed.
func (s *Scheme) effectiveU(ts *transcript.Transcript) bn254.G1Affine {
	xi := ts.ChallengeScalar("xi")
	var xiBig big.Int
	xi.BigInt(&xiBig)
	var u bn254.G1Affine
	u.ScalarMultiplication(&s.params.U, &xiBig)
	return u
}

// roundChallenge squeezes a non-zero halving challenge.
func roundChallenge(ts *transcript.Transcript) fr.Element {
	u := ts.ChallengeScalar("u")
	if u.IsZero() {
		u.SetOne()
	}
	return u
}

// crossTerm computes <a, g> + <a, b>·U + blind·H.
func crossTerm(a []fr.Element, g []bn254.G1Affine, b []fr.Element, u, h *bn254.G1Affine, blind *fr.Element) (bn254.G1Affine, error) {
	var res bn254.G1Affine
	if _, err := res.MultiExp(g, a, ecc.MultiExpConfig{}); err != nil {
		return res, err
	}

	var ip, tmp fr.Element
	for i := range a {
		tmp.Mul(&a[i], &b[i])
		ip.Add(&ip, &tmp)
	}

	var big1 big.Int
	var pt bn254.G1Affine
	ip.BigInt(&big1)
	pt.ScalarMultiplication(u, &big1)
	res.Add(&res, &pt)

	blind.BigInt(&big1)
	pt.ScalarMultiplication(h, &big1)
	res.Add(&res, &pt)
	return res, nil
}

// foldClaims folds the claim polynomials and blinds with powers of v,
// zero-padding to the full basis length.
func foldClaims(claims []commitment.BlindedPoly, v fr.Element, n int) ([]fr.Element, fr.Element) {
	folded := make([]fr.Element, n)
	copy(folded, claims[0].Coeffs)
	blind := claims[0].Blind

	var vPow, tmp fr.Element
	vPow.SetOne()
	for i := 1; i < len(claims); i++ {
		vPow.Mul(&vPow, &v)
		for j := range claims[i].Coeffs {
			tmp.Mul(&vPow, &claims[i].Coeffs[j])
			folded[j].Add(&folded[j], &tmp)
		}
		tmp.Mul(&vPow, &claims[i].Blind)
		blind.Add(&blind, &tmp)
	}
	return folded, blind
}
