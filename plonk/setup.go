// Package plonk implements a plonkish proving system over bn254: circuits
// are grids of fixed/advice/instance columns constrained by polynomial
// gates, lookup arguments and copy constraints, compiled into a polynomial
// IOP and made non-interactive with a Fiat-Shamir transcript. Commitments
// go through a pluggable back-end (KZG or inner-product openings), chosen
// once at setup.
package plonk

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/plonkish/plonkish/commitment"
	"github.com/plonkish/plonkish/constraint"
	"github.com/plonkish/plonkish/fft"
	"github.com/plonkish/plonkish/logger"
	"github.com/plonkish/plonkish/polynomial"
)

// ProvingKey holds everything the prover needs: the verifying key, the
// evaluation domains, and the fixed and permutation polynomials in both
// coefficient and Lagrange form.
type ProvingKey struct {
	Vk *VerifyingKey

	Domain    *fft.Domain // size n
	DomainExt *fft.Domain // extended domain for quotient evaluation

	FixedPolys []polynomial.Polynomial // coefficient form

	SigmaLagrange [][]fr.Element          // permutation polynomials, values on the domain
	SigmaPolys    []polynomial.Polynomial // same, coefficient form

	Blinds blindOrders
}

// VerifyingKey is the public summary of a circuit: its shape, the chosen
// commitment back-end, and commitments to every key-time polynomial.
type VerifyingKey struct {
	System *constraint.System
	Domain *fft.Domain
	Scheme commitment.Scheme

	Degree     int // maximum constraint degree d
	ChunkWidth int // permutation columns folded per grand product, d-2
	NbChunks   int
	PieceSize  int // coefficients per quotient piece, n + maxBlind + 1
	NbPieces   int // always d

	Deltas []fr.Element // coset shifts delta^j, one per permutation column

	FixedCommitments []commitment.Digest
	SigmaCommitments []commitment.Digest
}

// Setup compiles a constraint system against a commitment scheme, producing
// the proving and verifying keys. The system must not be mutated afterwards.
func Setup(sys *constraint.System, scheme commitment.Scheme) (*ProvingKey, *VerifyingKey, error) {
	log := logger.Logger().With().Str("backend", "plonk").Logger()

	if err := sys.Validate(); err != nil {
		return nil, nil, &ConfigurationError{Reason: err.Error()}
	}

	n := sys.N()
	domain, err := fft.NewDomain(uint64(n))
	if err != nil {
		return nil, nil, &ConfigurationError{Reason: err.Error()}
	}

	d := sys.MaxDegree()
	cols := sys.PermutationColumns()
	m := len(cols)
	chunkWidth := d - 2
	nbChunks := 0
	if m > 0 {
		nbChunks = (m + chunkWidth - 1) / chunkWidth
	}

	deltas, err := columnShifts(m)
	if err != nil {
		return nil, nil, err
	}

	vk := &VerifyingKey{
		System:     sys,
		Domain:     domain,
		Scheme:     scheme,
		Degree:     d,
		ChunkWidth: chunkWidth,
		NbChunks:   nbChunks,
		NbPieces:   d,
		Deltas:     deltas,
	}
	blinds := computeBlindOrders(vk)
	vk.PieceSize = n + blinds.Max + 1

	if scheme.MaxLength() < vk.PieceSize {
		return nil, nil, configErrorf("commitment basis supports %d coefficients, need %d", scheme.MaxLength(), vk.PieceSize)
	}

	// The quotient numerator has degree at most d*(n+maxBlind); it is
	// evaluated exactly on an extended coset.
	domainExt, err := fft.NewDomain(uint64(d*(n+blinds.Max) + 1))
	if err != nil {
		return nil, nil, configErrorf("extended domain: %s", err.Error())
	}

	pk := &ProvingKey{
		Vk:        vk,
		Domain:    domain,
		DomainExt: domainExt,
		Blinds:    blinds,
	}

	pk.FixedPolys = make([]polynomial.Polynomial, len(sys.FixedColumns))
	vk.FixedCommitments = make([]commitment.Digest, len(sys.FixedColumns))
	for i, col := range sys.FixedColumns {
		pk.FixedPolys[i] = polynomial.InterpolateOnDomain(col, domain, 0)
		if vk.FixedCommitments[i], err = scheme.Commit(pk.FixedPolys[i]); err != nil {
			return nil, nil, fmt.Errorf("commit fixed column %d: %w", i, err)
		}
	}

	if m > 0 {
		pk.SigmaLagrange = buildPermutation(sys, domain, deltas)
		pk.SigmaPolys = make([]polynomial.Polynomial, m)
		vk.SigmaCommitments = make([]commitment.Digest, m)
		for j := range pk.SigmaLagrange {
			pk.SigmaPolys[j] = polynomial.InterpolateOnDomain(pk.SigmaLagrange[j], domain, 0)
			if vk.SigmaCommitments[j], err = scheme.Commit(pk.SigmaPolys[j]); err != nil {
				return nil, nil, fmt.Errorf("commit permutation column %d: %w", j, err)
			}
		}
	}

	log.Debug().
		Int("rows", n).
		Int("degree", d).
		Int("permColumns", m).
		Int("chunks", nbChunks).
		Uint64("extendedDomain", domainExt.Cardinality).
		Msg("setup done")

	return pk, vk, nil
}

// columnShifts returns delta^0..delta^(m-1) for an odd-order delta and
// checks they are pairwise distinct, so the m cosets delta^j*H never
// overlap and cell labels stay unique.
func columnShifts(m int) ([]fr.Element, error) {
	if m == 0 {
		return nil, nil
	}
	delta := fft.OddOrderGenerator()
	deltas := make([]fr.Element, m)
	deltas[0].SetOne()
	seen := map[fr.Element]struct{}{deltas[0]: {}}
	for j := 1; j < m; j++ {
		deltas[j].Mul(&deltas[j-1], &delta)
		if _, dup := seen[deltas[j]]; dup {
			return nil, configErrorf("coset shift collision with %d permutation columns", m)
		}
		seen[deltas[j]] = struct{}{}
	}
	return deltas, nil
}

// buildPermutation turns the copy constraints into cycles and reads off
// the sigma polynomials: cell (j,i) carries the label of its successor in
// the cycle, delta^j'*omega^i'. Cycles are built by swapping successor
// links; a union-find guard keeps redundant copies from splitting a cycle
// back apart.
func buildPermutation(sys *constraint.System, domain *fft.Domain, deltas []fr.Element) [][]fr.Element {
	cols := sys.PermutationColumns()
	n := sys.N()
	m := len(cols)

	colIndex := make(map[constraint.Column]int, m)
	for j, c := range cols {
		colIndex[c] = j
	}

	mapping := make([]int, m*n)
	parent := make([]int, m*n)
	for i := range mapping {
		mapping[i] = i
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}

	for _, cp := range sys.Copies {
		a := colIndex[cp.A.Col]*n + cp.A.Row
		b := colIndex[cp.B.Col]*n + cp.B.Row
		ra, rb := find(a), find(b)
		if ra == rb {
			continue
		}
		mapping[a], mapping[b] = mapping[b], mapping[a]
		parent[ra] = rb
	}

	omegas := make([]fr.Element, n)
	omegas[0].SetOne()
	for i := 1; i < n; i++ {
		omegas[i].Mul(&omegas[i-1], &domain.Generator)
	}

	sigma := make([][]fr.Element, m)
	for j := 0; j < m; j++ {
		sigma[j] = make([]fr.Element, n)
		for i := 0; i < n; i++ {
			t := mapping[j*n+i]
			sigma[j][i].Mul(&deltas[t/n], &omegas[t%n])
		}
	}
	return sigma
}

// fingerprint hashes the verifying key's public content; it seeds the
// transcript so proofs are bound to one circuit and one key.
func (vk *VerifyingKey) fingerprint() []byte {
	h := sha256.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeInt(int(vk.System.K))
	writeInt(vk.Degree)
	writeInt(vk.System.NbAdvice())
	writeInt(vk.System.NbInstance())
	writeInt(len(vk.System.Lookups))
	writeInt(vk.NbChunks)
	writeInt(vk.PieceSize)
	for _, c := range vk.FixedCommitments {
		b := c.Bytes()
		h.Write(b[:])
	}
	for _, c := range vk.SigmaCommitments {
		b := c.Bytes()
		h.Write(b[:])
	}
	for _, dl := range vk.Deltas {
		b := dl.Bytes()
		h.Write(b[:])
	}
	return h.Sum(nil)
}
