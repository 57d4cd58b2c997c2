// Package fft provides power-of-two evaluation domains over the bn254
// scalar field, with forward/inverse FFT and coset evaluation.
package fft

import (
	"errors"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrDomainTooLarge is returned when the requested cardinality exceeds the
// 2-adicity of the scalar field.
var ErrDomainTooLarge = errors.New("fft: domain cardinality exceeds field 2-adicity")

// Domain is a multiplicative subgroup of order a power of two, with the
// data needed to FFT over it and over a coset of it.
type Domain struct {
	Cardinality            uint64
	CardinalityInv         fr.Element
	Generator              fr.Element
	GeneratorInv           fr.Element
	FrMultiplicativeGen    fr.Element // coset shift, a quadratic non-residue
	FrMultiplicativeGenInv fr.Element
}

// NewDomain builds a domain of cardinality the next power of two ≥ m.
func NewDomain(m uint64) (*Domain, error) {
	if m == 0 {
		return nil, errors.New("fft: zero cardinality")
	}
	card := nextPowerOfTwo(m)
	k := uint(bits.TrailingZeros64(card))

	rMinusOne := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
	s := uint(rMinusOne.TrailingZeroBits())
	if k >= s {
		return nil, ErrDomainTooLarge
	}

	d := &Domain{Cardinality: card}
	d.CardinalityInv.SetUint64(card).Inverse(&d.CardinalityInv)

	nonRes := smallestNonResidue()
	d.FrMultiplicativeGen.Set(&nonRes)
	d.FrMultiplicativeGenInv.Inverse(&d.FrMultiplicativeGen)

	// root of the full 2-Sylow subgroup, then square down to order 2^k
	exp := new(big.Int).Rsh(rMinusOne, s)
	d.Generator.Exp(nonRes, exp)
	for i := uint(0); i < s-k; i++ {
		d.Generator.Square(&d.Generator)
	}
	d.GeneratorInv.Inverse(&d.Generator)

	return d, nil
}

// OddOrderGenerator returns an element of odd multiplicative order, used
// as the column shift δ of the permutation argument: its powers never fall
// inside a power-of-two subgroup.
func OddOrderGenerator() fr.Element {
	rMinusOne := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
	s := uint(rMinusOne.TrailingZeroBits())

	delta := smallestNonResidue()
	for i := uint(0); i < s; i++ {
		delta.Square(&delta)
	}
	return delta
}

// smallestNonResidue finds the smallest quadratic non-residue of the field.
// Deterministic, so prover and verifier derive identical domains.
func smallestNonResidue() fr.Element {
	var c fr.Element
	for i := uint64(2); ; i++ {
		c.SetUint64(i)
		if c.Legendre() == -1 {
			return c
		}
	}
}

func nextPowerOfTwo(m uint64) uint64 {
	if m&(m-1) == 0 {
		return m
	}
	return 1 << (64 - bits.LeadingZeros64(m))
}
