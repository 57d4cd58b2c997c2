package fft

import (
	"math/bits"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// below this size the recursion stays on the caller goroutine
const parallelThreshold = 256

// FFT transforms a, in place, from coefficient form to evaluation form on
// the domain (natural order on both sides). With onCoset set, evaluations
// are taken on the coset FrMultiplicativeGen·H instead of H.
//
// len(a) must equal the domain cardinality: the engine normalizes sizes
// before calling in here, a mismatch is a programming error.
func (d *Domain) FFT(a []fr.Element, onCoset bool) {
	d.mustMatch(a)
	if onCoset {
		scalePowers(a, d.FrMultiplicativeGen)
	}
	var wg sync.WaitGroup
	difFFT(a, d.Generator, &wg)
	wg.Wait()
	BitReverse(a)
}

// FFTInverse transforms a, in place, from evaluation form (natural order)
// back to coefficient form. onCoset must mirror the forward transform.
func (d *Domain) FFTInverse(a []fr.Element, onCoset bool) {
	d.mustMatch(a)
	var wg sync.WaitGroup
	difFFT(a, d.GeneratorInv, &wg)
	wg.Wait()
	BitReverse(a)
	for i := 0; i < len(a); i++ {
		a[i].Mul(&a[i], &d.CardinalityInv)
	}
	if onCoset {
		scalePowers(a, d.FrMultiplicativeGenInv)
	}
}

// difFFT is the classic recursive decimation-in-frequency butterfly:
// natural-order input, bit-reversed output.
func difFFT(a []fr.Element, w fr.Element, wg *sync.WaitGroup) {
	n := len(a)
	if n == 1 {
		return
	}
	m := n / 2

	wPow := w

	tmp := a[0]
	a[0].Add(&a[0], &a[m])
	a[m].Sub(&tmp, &a[m])

	for i := 1; i < m; i++ {
		tmp = a[i]
		a[i].Add(&a[i], &a[i+m])
		a[i+m].
			Sub(&tmp, &a[i+m]).
			Mul(&a[i+m], &wPow)

		wPow.Mul(&wPow, &w)
	}

	// w is passed by value
	w.Square(&w)

	if m < parallelThreshold {
		difFFT(a[0:m], w, wg)
		difFFT(a[m:n], w, wg)
		return
	}

	wg.Add(1)
	go func() {
		difFFT(a[0:m], w, wg)
		wg.Done()
	}()
	difFFT(a[m:n], w, wg)
}

// BitReverse applies the bit-reversal permutation to a.
// len(a) must be a power of 2.
func BitReverse(a []fr.Element) {
	l := uint64(len(a))
	if l&(l-1) != 0 {
		panic("fft: buffer size must be a power of two")
	}
	nn := uint64(64 - bits.TrailingZeros64(l))

	for i := uint64(0); i < l; i++ {
		irev := bits.Reverse64(i) >> nn
		if irev > i {
			a[i], a[irev] = a[irev], a[i]
		}
	}
}

// scalePowers multiplies a[i] by g^i.
func scalePowers(a []fr.Element, g fr.Element) {
	acc := g
	for i := 1; i < len(a); i++ {
		a[i].Mul(&a[i], &acc)
		acc.Mul(&acc, &g)
	}
}

func (d *Domain) mustMatch(a []fr.Element) {
	if uint64(len(a)) != d.Cardinality {
		panic("fft: buffer size does not match domain cardinality")
	}
}
