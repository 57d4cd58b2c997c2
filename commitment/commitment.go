// Package commitment defines the polynomial commitment contract shared by
// the proving system's two back-ends (pairing-based KZG and discrete-log
// inner-product openings).
//
// A back-end is selected once per deployment, at setup time; variants are
// never mixed within one proof.
package commitment

import (
	"errors"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/transcript"
)

var (
	// ErrPolynomialTooLarge is returned when a polynomial exceeds the basis.
	ErrPolynomialTooLarge = errors.New("commitment: polynomial degree exceeds basis size")
	// ErrInvalidOpening is returned when an opening proof does not check out.
	ErrInvalidOpening = errors.New("commitment: invalid opening proof")
	// ErrInvalidProofShape is returned when an opening proof has the wrong shape.
	ErrInvalidProofShape = errors.New("commitment: opening proof shape mismatch")
)

// Digest is a short commitment to a polynomial.
type Digest = bn254.G1Affine

// BlindedPoly couples a coefficient-form polynomial with the Pedersen
// blind used when it was committed. The blind is zero for back-ends that
// achieve hiding through polynomial blinding instead; it never leaves the
// prover.
type BlindedPoly struct {
	Coeffs []fr.Element
	Blind  fr.Element
}

// OpeningProof is a back-end specific proof that a batch of committed
// polynomials evaluates to the claimed values at one point.
type OpeningProof interface {
	io.WriterTo
	io.ReaderFrom
}

// Scheme binds polynomials to digests against a public basis and proves
// evaluations at transcript-derived points.
//
// Open and Verify fold the batch with a random combination drawn from the
// transcript; the caller must have absorbed every relevant commitment and
// claimed value beforehand, so the coefficients are unpredictable to the
// prover at commit time.
type Scheme interface {
	// MaxLength returns the largest coefficient count the basis supports.
	MaxLength() int

	// Commit binds p to a digest with a deterministic multi-scalar
	// multiplication against the public basis.
	Commit(p []fr.Element) (Digest, error)

	// CommitHiding is Commit plus a fresh random blind, for back-ends with
	// a blinding basis element. Back-ends without one return a zero blind.
	CommitHiding(p []fr.Element) (Digest, fr.Element, error)

	// Open proves the evaluations of the given polynomials at point,
	// folded into a single opening with a challenge squeezed from ts.
	Open(claims []BlindedPoly, point fr.Element, ts *transcript.Transcript) (OpeningProof, error)

	// Verify checks a folded opening against the digests and the claimed
	// values, replaying the same transcript challenges.
	Verify(digests []Digest, values []fr.Element, point fr.Element, proof OpeningProof, ts *transcript.Transcript) error

	// NewOpeningProof returns an empty proof of this back-end's concrete
	// type, ready for ReadFrom.
	NewOpeningProof() OpeningProof
}
