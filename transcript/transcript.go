// Package transcript implements the Fiat-Shamir transcript binding the
// proving rounds into a non-interactive proof.
//
// The transcript is a hash chain: every absorbed message advances the
// running state, and challenges are derived from (and advance) that state,
// so a challenge is never returned twice. Prover and verifier must absorb
// byte-for-byte identical sequences; any divergence makes the verifier's
// challenges differ and the proof reject.
package transcript

import (
	"crypto/sha256"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	tagMessage   = 0x00
	tagChallenge = 0x01
)

// Transcript is an append-only Fiat-Shamir state. Not safe for concurrent
// use; each in-flight proof owns its transcript exclusively.
type Transcript struct {
	state [sha256.Size]byte
}

// New creates a transcript seeded with a protocol label.
func New(label string) *Transcript {
	t := &Transcript{}
	t.state = sha256.Sum256([]byte(label))
	return t
}

// AppendBytes absorbs raw canonical bytes.
func (t *Transcript) AppendBytes(b []byte) {
	h := sha256.New()
	h.Write(t.state[:])
	h.Write([]byte{tagMessage})
	h.Write(b)
	h.Sum(t.state[:0])
}

// AppendScalar absorbs the canonical big-endian encoding of s.
func (t *Transcript) AppendScalar(s *fr.Element) {
	b := s.Bytes()
	t.AppendBytes(b[:])
}

// AppendPoint absorbs the canonical compressed encoding of p.
func (t *Transcript) AppendPoint(p *bn254.G1Affine) {
	b := p.Bytes()
	t.AppendBytes(b[:])
}

// ChallengeScalar derives a field element bound to everything absorbed so
// far and advances the state.
func (t *Transcript) ChallengeScalar(label string) fr.Element {
	h := sha256.New()
	h.Write(t.state[:])
	h.Write([]byte{tagChallenge})
	h.Write([]byte(label))
	h.Sum(t.state[:0])

	var e fr.Element
	e.SetBytes(t.state[:])
	return e
}
