package plonk

import (
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/plonkish/plonkish/commitment"
	"github.com/plonkish/plonkish/constraint"
	"github.com/plonkish/plonkish/debug"
	"github.com/plonkish/plonkish/fft"
	"github.com/plonkish/plonkish/logger"
	"github.com/plonkish/plonkish/polynomial"
	"github.com/plonkish/plonkish/transcript"
)

const protocolLabel = "plonkish/v1"

// Prove produces a proof that the assignment satisfies the circuit of pk.
//
// Round structure (each commitment is absorbed before the next challenge):
//
//	instances > advice > theta > permuted lookup columns > beta, gamma >
//	grand products > y > quotient pieces > zeta > evaluations > openings
func Prove(pk *ProvingKey, asg *constraint.Assignment, opts ...ProverOption) (*Proof, error) {
	log := logger.Logger().With().Str("backend", "plonk").Logger()
	start := time.Now()

	cfg, err := newProverConfig(opts...)
	if err != nil {
		return nil, err
	}

	vk := pk.Vk
	sys := vk.System
	scheme := vk.Scheme
	n := sys.N()

	if err := asg.Complete(sys); err != nil {
		return nil, err
	}
	if debug.Debug {
		if err := checkWitness(sys, asg); err != nil {
			return nil, err
		}
	}

	ts := transcript.New(protocolLabel)
	ts.AppendBytes(vk.fingerprint())
	instance := asg.Instances()
	for _, col := range instance {
		for i := range col {
			ts.AppendScalar(&col[i])
		}
	}

	proof := &Proof{}
	polys := &proverPolys{}
	blinds := newBlindStore(vk)

	// round 1: advice
	advice := make([][]fr.Element, sys.NbAdvice())
	polys.advice = make([]polynomial.Polynomial, sys.NbAdvice())
	proof.Advice = make([]commitment.Digest, sys.NbAdvice())
	for i := 0; i < sys.NbAdvice(); i++ {
		advice[i] = asg.Advice(i)
		p := polynomial.InterpolateOnDomain(advice[i], pk.Domain, pk.Blinds.Advice[i]+1)
		if polys.advice[i], err = blindPoly(p, n, pk.Blinds.Advice[i]); err != nil {
			return nil, err
		}
	}
	var g errgroup.Group
	for i := range polys.advice {
		i := i
		g.Go(func() error {
			var err error
			proof.Advice[i], blinds.advice[i], err = scheme.CommitHiding(polys.advice[i])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("commit advice: %w", err)
	}
	for i := range proof.Advice {
		ts.AppendPoint(&proof.Advice[i])
	}

	// round 2: lookup compression and permuted columns
	theta := ts.ChallengeScalar("theta")

	nbLookups := len(sys.Lookups)
	compressedIn := make([][]fr.Element, nbLookups)
	compressedTab := make([][]fr.Element, nbLookups)
	permutedIn := make([][]fr.Element, nbLookups)
	permutedTab := make([][]fr.Element, nbLookups)
	polys.lookupA = make([]polynomial.Polynomial, nbLookups)
	polys.lookupS = make([]polynomial.Polynomial, nbLookups)
	proof.LookupInput = make([]commitment.Digest, nbLookups)
	proof.LookupTable = make([]commitment.Digest, nbLookups)
	for l := 0; l < nbLookups; l++ {
		compressedIn[l], compressedTab[l] = compressLookup(sys, l, theta, advice, instance, cfg.nbTasks)
		permutedIn[l], permutedTab[l] = permuteLookup(compressedIn[l], compressedTab[l])

		pa := polynomial.InterpolateOnDomain(permutedIn[l], pk.Domain, pk.Blinds.LookupInput+1)
		if polys.lookupA[l], err = blindPoly(pa, n, pk.Blinds.LookupInput); err != nil {
			return nil, err
		}
		ps := polynomial.InterpolateOnDomain(permutedTab[l], pk.Domain, pk.Blinds.LookupTable+1)
		if polys.lookupS[l], err = blindPoly(ps, n, pk.Blinds.LookupTable); err != nil {
			return nil, err
		}
		if proof.LookupInput[l], blinds.lookupA[l], err = scheme.CommitHiding(polys.lookupA[l]); err != nil {
			return nil, fmt.Errorf("commit permuted lookup input %d: %w", l, err)
		}
		if proof.LookupTable[l], blinds.lookupS[l], err = scheme.CommitHiding(polys.lookupS[l]); err != nil {
			return nil, fmt.Errorf("commit permuted lookup table %d: %w", l, err)
		}
		ts.AppendPoint(&proof.LookupInput[l])
		ts.AppendPoint(&proof.LookupTable[l])
	}

	// round 3: grand products
	beta := ts.ChallengeScalar("beta")
	gamma := ts.ChallengeScalar("gamma")

	polys.permZ = make([]polynomial.Polynomial, vk.NbChunks)
	proof.PermutationZ = make([]commitment.Digest, vk.NbChunks)
	if vk.NbChunks > 0 {
		omegas := make([]fr.Element, n)
		omegas[0].SetOne()
		for i := 1; i < n; i++ {
			omegas[i].Mul(&omegas[i-1], &pk.Domain.Generator)
		}
		colValues := permutationColumnValues(pk, advice, instance)
		zChunks := computePermutationChunks(pk, colValues, omegas, beta, gamma, cfg.nbTasks)
		for i := range zChunks {
			p := polynomial.InterpolateOnDomain(zChunks[i], pk.Domain, pk.Blinds.PermZ[i]+1)
			if polys.permZ[i], err = blindPoly(p, n, pk.Blinds.PermZ[i]); err != nil {
				return nil, err
			}
			if proof.PermutationZ[i], blinds.permZ[i], err = scheme.CommitHiding(polys.permZ[i]); err != nil {
				return nil, fmt.Errorf("commit permutation product %d: %w", i, err)
			}
			ts.AppendPoint(&proof.PermutationZ[i])
		}
	}

	polys.lookupZ = make([]polynomial.Polynomial, nbLookups)
	proof.LookupZ = make([]commitment.Digest, nbLookups)
	for l := 0; l < nbLookups; l++ {
		z := computeLookupZ(compressedIn[l], compressedTab[l], permutedIn[l], permutedTab[l], beta, gamma)
		p := polynomial.InterpolateOnDomain(z, pk.Domain, pk.Blinds.LookupZ+1)
		if polys.lookupZ[l], err = blindPoly(p, n, pk.Blinds.LookupZ); err != nil {
			return nil, err
		}
		if proof.LookupZ[l], blinds.lookupZ[l], err = scheme.CommitHiding(polys.lookupZ[l]); err != nil {
			return nil, fmt.Errorf("commit lookup product %d: %w", l, err)
		}
		ts.AppendPoint(&proof.LookupZ[l])
	}

	// round 4: quotient
	y := ts.ChallengeScalar("y")

	polys.instance = make([]polynomial.Polynomial, sys.NbInstance())
	for i := range polys.instance {
		polys.instance[i] = polynomial.InterpolateOnDomain(instance[i], pk.Domain, 0)
	}

	pieces, err := computeQuotient(pk, polys, theta, beta, gamma, y, cfg.nbTasks)
	if err != nil {
		return nil, err
	}
	proof.Quotient = make([]commitment.Digest, len(pieces))
	for j := range pieces {
		j := j
		g.Go(func() error {
			var err error
			proof.Quotient[j], err = scheme.Commit(pieces[j])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("commit quotient: %w", err)
	}
	for j := range proof.Quotient {
		ts.AppendPoint(&proof.Quotient[j])
	}

	// round 5: evaluations and batched openings
	zeta := ts.ChallengeScalar("zeta")

	plan := newOpeningPlan(vk)
	claimFor := func(e planEntry) commitment.BlindedPoly {
		switch e.Kind {
		case entryAdvice:
			return commitment.BlindedPoly{Coeffs: polys.advice[e.Index], Blind: blinds.advice[e.Index]}
		case entryFixed:
			return commitment.BlindedPoly{Coeffs: pk.FixedPolys[e.Index]}
		case entrySigma:
			return commitment.BlindedPoly{Coeffs: pk.SigmaPolys[e.Index]}
		case entryPermZ:
			return commitment.BlindedPoly{Coeffs: polys.permZ[e.Index], Blind: blinds.permZ[e.Index]}
		case entryLookupZ:
			return commitment.BlindedPoly{Coeffs: polys.lookupZ[e.Index], Blind: blinds.lookupZ[e.Index]}
		case entryLookupInput:
			return commitment.BlindedPoly{Coeffs: polys.lookupA[e.Index], Blind: blinds.lookupA[e.Index]}
		case entryLookupTable:
			return commitment.BlindedPoly{Coeffs: polys.lookupS[e.Index], Blind: blinds.lookupS[e.Index]}
		default:
			return commitment.BlindedPoly{Coeffs: pieces[e.Index]}
		}
	}

	proof.Evaluations = make([][]fr.Element, len(plan.Rotations))
	claims := make([][]commitment.BlindedPoly, len(plan.Rotations))
	for gi, rot := range plan.Rotations {
		point := rotatedPoint(pk.Domain, zeta, rot)
		proof.Evaluations[gi] = make([]fr.Element, len(plan.Groups[gi]))
		claims[gi] = make([]commitment.BlindedPoly, len(plan.Groups[gi]))
		for ei, e := range plan.Groups[gi] {
			c := claimFor(e)
			claims[gi][ei] = c
			proof.Evaluations[gi][ei] = polynomial.Polynomial(c.Coeffs).Eval(&point)
		}
	}
	for gi := range plan.Rotations {
		for ei := range proof.Evaluations[gi] {
			ts.AppendScalar(&proof.Evaluations[gi][ei])
		}
	}

	proof.Openings = make([]commitment.OpeningProof, len(plan.Rotations))
	for gi, rot := range plan.Rotations {
		point := rotatedPoint(pk.Domain, zeta, rot)
		if proof.Openings[gi], err = scheme.Open(claims[gi], point, ts); err != nil {
			return nil, fmt.Errorf("open at rotation %d: %w", rot, err)
		}
	}

	log.Debug().Dur("took", time.Since(start)).Int("rows", n).Msg("proof generated")
	return proof, nil
}

// blindStore keeps the Pedersen blinds of every hiding commitment of one
// proof; they feed the batched openings and never leave the prover.
type blindStore struct {
	advice  []fr.Element
	permZ   []fr.Element
	lookupZ []fr.Element
	lookupA []fr.Element
	lookupS []fr.Element
}

func newBlindStore(vk *VerifyingKey) *blindStore {
	nbLookups := len(vk.System.Lookups)
	return &blindStore{
		advice:  make([]fr.Element, vk.System.NbAdvice()),
		permZ:   make([]fr.Element, vk.NbChunks),
		lookupZ: make([]fr.Element, nbLookups),
		lookupA: make([]fr.Element, nbLookups),
		lookupS: make([]fr.Element, nbLookups),
	}
}

// blindPoly adds a uniformly random multiple of X^n-1 of degree n+order to
// p, which must have been allocated with capacity for n+order+1
// coefficients. Values on the domain are unchanged; order+1 evaluations
// elsewhere become independent of the witness.
func blindPoly(p polynomial.Polynomial, n, order int) (polynomial.Polynomial, error) {
	res := p[:n+order+1]
	for i := n; i < len(res); i++ {
		res[i].SetZero()
	}
	var r fr.Element
	for i := 0; i <= order; i++ {
		if _, err := r.SetRandom(); err != nil {
			return nil, err
		}
		res[n+i].Add(&res[n+i], &r)
		res[i].Sub(&res[i], &r)
	}
	return res, nil
}

// rotatedPoint returns zeta*omega^rot.
func rotatedPoint(d *fft.Domain, zeta fr.Element, rot constraint.Rotation) fr.Element {
	var w fr.Element
	if rot >= 0 {
		w.Exp(d.Generator, big.NewInt(int64(rot)))
	} else {
		w.Exp(d.GeneratorInv, big.NewInt(int64(-rot)))
	}
	w.Mul(&w, &zeta)
	return w
}
