package plonk

import (
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/commitment"
	"github.com/plonkish/plonkish/constraint"
	"github.com/plonkish/plonkish/logger"
	"github.com/plonkish/plonkish/polynomial"
	"github.com/plonkish/plonkish/transcript"
)

// Verify checks a proof against the verifying key and the public inputs,
// one value slice per instance column (shorter slices are zero-padded to
// the grid height, matching the prover's view).
func Verify(vk *VerifyingKey, proof *Proof, instances [][]fr.Element) error {
	log := logger.Logger().With().Str("backend", "plonk").Logger()
	start := time.Now()

	sys := vk.System
	n := sys.N()
	plan := newOpeningPlan(vk)

	if len(instances) != sys.NbInstance() {
		return ErrInstanceMismatch
	}
	padded := make([][]fr.Element, len(instances))
	for i, col := range instances {
		if len(col) > n {
			return ErrInstanceMismatch
		}
		padded[i] = make([]fr.Element, n)
		copy(padded[i], col)
	}

	if err := proof.checkShape(vk, plan); err != nil {
		return err
	}

	// replay the transcript
	ts := transcript.New(protocolLabel)
	ts.AppendBytes(vk.fingerprint())
	for _, col := range padded {
		for i := range col {
			ts.AppendScalar(&col[i])
		}
	}
	for i := range proof.Advice {
		ts.AppendPoint(&proof.Advice[i])
	}
	theta := ts.ChallengeScalar("theta")
	for l := range sys.Lookups {
		ts.AppendPoint(&proof.LookupInput[l])
		ts.AppendPoint(&proof.LookupTable[l])
	}
	beta := ts.ChallengeScalar("beta")
	gamma := ts.ChallengeScalar("gamma")
	for i := range proof.PermutationZ {
		ts.AppendPoint(&proof.PermutationZ[i])
	}
	for l := range proof.LookupZ {
		ts.AppendPoint(&proof.LookupZ[l])
	}
	y := ts.ChallengeScalar("y")
	for j := range proof.Quotient {
		ts.AppendPoint(&proof.Quotient[j])
	}
	zeta := ts.ChallengeScalar("zeta")
	for gi := range plan.Rotations {
		for ei := range proof.Evaluations[gi] {
			ts.AppendScalar(&proof.Evaluations[gi][ei])
		}
	}

	evals := make(map[evalKey]fr.Element)
	for gi, rot := range plan.Rotations {
		for ei, e := range plan.Groups[gi] {
			evals[evalKey{e.Kind, e.Index, rot}] = proof.Evaluations[gi][ei]
		}
	}

	// the algebraic identity at zeta
	var one, zetaN, vanishing fr.Element
	one.SetOne()
	zetaN = zeta
	for card := vk.Domain.Cardinality; card > 1; card >>= 1 {
		zetaN.Square(&zetaN)
	}
	vanishing.Sub(&zetaN, &one)

	o := &constraintOracle{
		sys:        sys,
		nbChunks:   vk.NbChunks,
		chunkWidth: vk.ChunkWidth,
		deltas:     vk.Deltas,
		beta:       beta,
		gamma:      gamma,
		theta:      theta,
		y:          y,
		x:          zeta,
		l0:         lagrangeAt(vk, zeta, vanishing, 0),
		llast:      lagrangeAt(vk, zeta, vanishing, n-1),
	}
	o.query = func(q constraint.Query) fr.Element {
		if q.Col.Kind == constraint.Instance {
			point := rotatedPoint(vk.Domain, zeta, q.Rot)
			return polynomial.EvalLagrange(padded[q.Col.Index], point, vk.Domain)
		}
		kind := entryAdvice
		if q.Col.Kind == constraint.Fixed {
			kind = entryFixed
		}
		return evals[evalKey{kind, q.Col.Index, q.Rot}]
	}
	o.sigma = func(j int) fr.Element { return evals[evalKey{entrySigma, j, 0}] }
	o.permZ = func(c, rot int) fr.Element {
		return evals[evalKey{entryPermZ, c, constraint.Rotation(rot)}]
	}
	o.lookupZ = func(l, rot int) fr.Element {
		return evals[evalKey{entryLookupZ, l, constraint.Rotation(rot)}]
	}
	o.lookupA = func(l, rot int) fr.Element {
		return evals[evalKey{entryLookupInput, l, constraint.Rotation(rot)}]
	}
	o.lookupS = func(l int) fr.Element { return evals[evalKey{entryLookupTable, l, 0}] }

	lhs := o.fold()

	// h(zeta), recombined from the pieces
	var rhs, zetaPiece, acc fr.Element
	zetaPiece.Exp(zeta, big.NewInt(int64(vk.PieceSize)))
	acc.SetOne()
	for j := 0; j < vk.NbPieces; j++ {
		hj := evals[evalKey{entryQuotient, j, 0}]
		hj.Mul(&hj, &acc)
		rhs.Add(&rhs, &hj)
		acc.Mul(&acc, &zetaPiece)
	}
	rhs.Mul(&rhs, &vanishing)

	if !lhs.Equal(&rhs) {
		return ErrInvalidAlgebraicRelation
	}

	// batched openings, one per rotation
	digestFor := func(e planEntry) commitment.Digest {
		switch e.Kind {
		case entryAdvice:
			return proof.Advice[e.Index]
		case entryFixed:
			return vk.FixedCommitments[e.Index]
		case entrySigma:
			return vk.SigmaCommitments[e.Index]
		case entryPermZ:
			return proof.PermutationZ[e.Index]
		case entryLookupZ:
			return proof.LookupZ[e.Index]
		case entryLookupInput:
			return proof.LookupInput[e.Index]
		case entryLookupTable:
			return proof.LookupTable[e.Index]
		default:
			return proof.Quotient[e.Index]
		}
	}
	for gi, rot := range plan.Rotations {
		digests := make([]commitment.Digest, len(plan.Groups[gi]))
		for ei, e := range plan.Groups[gi] {
			digests[ei] = digestFor(e)
		}
		point := rotatedPoint(vk.Domain, zeta, rot)
		if err := vk.Scheme.Verify(digests, proof.Evaluations[gi], point, proof.Openings[gi], ts); err != nil {
			return fmt.Errorf("opening at rotation %d: %w", rot, err)
		}
	}

	log.Debug().Dur("took", time.Since(start)).Msg("proof verified")
	return nil
}

// lagrangeAt evaluates the k-th Lagrange basis polynomial at z:
// omega^k*(z^n-1) / (n*(z-omega^k)).
func lagrangeAt(vk *VerifyingKey, z, vanishing fr.Element, k int) fr.Element {
	wk := rotatedPoint(vk.Domain, fr.One(), constraint.Rotation(k))

	var den, res fr.Element
	den.Sub(&z, &wk)
	den.Inverse(&den)
	res.Mul(&wk, &vanishing).
		Mul(&res, &vk.Domain.CardinalityInv).
		Mul(&res, &den)
	return res
}
