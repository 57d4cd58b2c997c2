package plonk

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/commitment"
)

// Proof is a complete non-interactive proof. Commitments are grouped by
// round; evaluations and openings follow the opening plan derived from the
// verifying key, one group per rotation.
type Proof struct {
	Advice []commitment.Digest

	LookupInput []commitment.Digest // permuted input columns A', one per lookup
	LookupTable []commitment.Digest // permuted table columns S'

	PermutationZ []commitment.Digest
	LookupZ      []commitment.Digest

	Quotient []commitment.Digest

	Evaluations [][]fr.Element
	Openings    []commitment.OpeningProof
}

func (proof *Proof) checkShape(vk *VerifyingKey, plan *openingPlan) error {
	sys := vk.System
	ok := len(proof.Advice) == sys.NbAdvice() &&
		len(proof.LookupInput) == len(sys.Lookups) &&
		len(proof.LookupTable) == len(sys.Lookups) &&
		len(proof.PermutationZ) == vk.NbChunks &&
		len(proof.LookupZ) == len(sys.Lookups) &&
		len(proof.Quotient) == vk.NbPieces &&
		len(proof.Evaluations) == len(plan.Rotations) &&
		len(proof.Openings) == len(plan.Rotations)
	if !ok {
		return ErrInvalidProofShape
	}
	for gi := range plan.Groups {
		if len(proof.Evaluations[gi]) != len(plan.Groups[gi]) {
			return ErrInvalidProofShape
		}
		if proof.Openings[gi] == nil {
			return ErrInvalidProofShape
		}
	}
	return nil
}

// WriteTo serializes the proof. Group elements use the curve's canonical
// compressed encoding.
func (proof *Proof) WriteTo(w io.Writer) (int64, error) {
	enc := bn254.NewEncoder(w)
	toEncode := []interface{}{
		proof.Advice,
		proof.LookupInput,
		proof.LookupTable,
		proof.PermutationZ,
		proof.LookupZ,
		proof.Quotient,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	for _, group := range proof.Evaluations {
		if err := enc.Encode(group); err != nil {
			return enc.BytesWritten(), err
		}
	}
	n := enc.BytesWritten()
	for _, op := range proof.Openings {
		m, err := op.WriteTo(w)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// ReadProof deserializes a proof produced against this verifying key.
// Points are subgroup-checked on decode; the shape is validated against
// the key before the proof is returned.
func (vk *VerifyingKey) ReadProof(r io.Reader) (*Proof, error) {
	proof := &Proof{}
	dec := bn254.NewDecoder(r)
	toDecode := []interface{}{
		&proof.Advice,
		&proof.LookupInput,
		&proof.LookupTable,
		&proof.PermutationZ,
		&proof.LookupZ,
		&proof.Quotient,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return nil, err
		}
	}

	plan := newOpeningPlan(vk)
	proof.Evaluations = make([][]fr.Element, len(plan.Rotations))
	for gi := range plan.Rotations {
		if err := dec.Decode(&proof.Evaluations[gi]); err != nil {
			return nil, err
		}
	}
	proof.Openings = make([]commitment.OpeningProof, len(plan.Rotations))
	for gi := range plan.Rotations {
		op := vk.Scheme.NewOpeningProof()
		if _, err := op.ReadFrom(r); err != nil {
			return nil, err
		}
		proof.Openings[gi] = op
	}

	if err := proof.checkShape(vk, plan); err != nil {
		return nil, err
	}
	return proof, nil
}
