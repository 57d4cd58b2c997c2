package plonk

import (
	"sort"

	"github.com/plonkish/plonkish/constraint"
)

// The opening plan is the canonical enumeration of every (commitment,
// rotation) pair opened by a proof. Prover and verifier both derive it
// from the verifying key, so evaluation order, transcript order and
// batch-opening order agree by construction.

type entryKind uint8

const (
	entryAdvice entryKind = iota
	entryFixed
	entrySigma
	entryPermZ
	entryLookupZ
	entryLookupInput // permuted input column A'
	entryLookupTable // permuted table column S'
	entryQuotient
)

type planEntry struct {
	Kind  entryKind
	Index int
}

type evalKey struct {
	Kind  entryKind
	Index int
	Rot   constraint.Rotation
}

// openingPlan groups the opened polynomials by rotation. Rotations are
// sorted ascending; within a rotation, entries follow a fixed kind order.
type openingPlan struct {
	Rotations []constraint.Rotation
	Groups    [][]planEntry
}

func newOpeningPlan(vk *VerifyingKey) *openingPlan {
	sys := vk.System
	advice, fixed, _ := sys.Queries()

	rotSet := map[constraint.Rotation]struct{}{0: {}}
	for _, q := range advice {
		rotSet[q.Rot] = struct{}{}
	}
	for _, q := range fixed {
		rotSet[q.Rot] = struct{}{}
	}
	if vk.NbChunks > 0 {
		rotSet[1] = struct{}{}
		if vk.NbChunks > 1 {
			rotSet[-1] = struct{}{}
		}
	}
	if len(sys.Lookups) > 0 {
		rotSet[1] = struct{}{}
		rotSet[-1] = struct{}{}
	}

	rots := make([]constraint.Rotation, 0, len(rotSet))
	for r := range rotSet {
		rots = append(rots, r)
	}
	sort.Slice(rots, func(i, j int) bool { return rots[i] < rots[j] })

	plan := &openingPlan{Rotations: rots, Groups: make([][]planEntry, len(rots))}
	for gi, rot := range rots {
		var g []planEntry
		for _, q := range advice {
			if q.Rot == rot {
				g = append(g, planEntry{entryAdvice, q.Col.Index})
			}
		}
		for _, q := range fixed {
			if q.Rot == rot {
				g = append(g, planEntry{entryFixed, q.Col.Index})
			}
		}
		if rot == 0 {
			for j := range sys.PermutationColumns() {
				g = append(g, planEntry{entrySigma, j})
			}
		}
		switch rot {
		case 0, 1:
			for i := 0; i < vk.NbChunks; i++ {
				g = append(g, planEntry{entryPermZ, i})
			}
		case -1:
			for i := 0; i < vk.NbChunks-1; i++ {
				g = append(g, planEntry{entryPermZ, i})
			}
		}
		for l := range sys.Lookups {
			switch rot {
			case 0:
				g = append(g, planEntry{entryLookupZ, l},
					planEntry{entryLookupInput, l},
					planEntry{entryLookupTable, l})
			case 1:
				g = append(g, planEntry{entryLookupZ, l})
			case -1:
				g = append(g, planEntry{entryLookupInput, l})
			}
		}
		if rot == 0 {
			for j := 0; j < vk.NbPieces; j++ {
				g = append(g, planEntry{entryQuotient, j})
			}
		}
		plan.Groups[gi] = g
	}
	return plan
}

// blindOrders returns, per committed polynomial family, the number of
// points each polynomial is opened at. A polynomial opened at k points
// receives a degree-(k-1) multiple of X^n-1, so the openings reveal
// nothing about the witness.
type blindOrders struct {
	Advice      []int
	PermZ       []int
	LookupZ     int
	LookupInput int
	LookupTable int
	Max         int
}

func computeBlindOrders(vk *VerifyingKey) blindOrders {
	sys := vk.System
	b := blindOrders{Advice: make([]int, sys.NbAdvice()), PermZ: make([]int, vk.NbChunks)}

	adviceRots := make([]map[constraint.Rotation]struct{}, sys.NbAdvice())
	advice, _, _ := sys.Queries()
	for _, q := range advice {
		if adviceRots[q.Col.Index] == nil {
			adviceRots[q.Col.Index] = make(map[constraint.Rotation]struct{})
		}
		adviceRots[q.Col.Index][q.Rot] = struct{}{}
	}
	for i, rs := range adviceRots {
		b.Advice[i] = len(rs)
		if b.Advice[i] == 0 {
			// unqueried columns are still committed; one opening-free blind
			b.Advice[i] = 1
		}
	}
	for i := range b.PermZ {
		b.PermZ[i] = 2 // zeta and omega*zeta
		if i < vk.NbChunks-1 && vk.NbChunks > 1 {
			b.PermZ[i] = 3 // chained into the next chunk at omega^-1*zeta
		}
	}
	if len(sys.Lookups) > 0 {
		b.LookupZ = 2
		b.LookupInput = 2
		b.LookupTable = 1
	}

	b.Max = 1
	for _, v := range b.Advice {
		if v > b.Max {
			b.Max = v
		}
	}
	for _, v := range b.PermZ {
		if v > b.Max {
			b.Max = v
		}
	}
	for _, v := range []int{b.LookupZ, b.LookupInput, b.LookupTable} {
		if v > b.Max {
			b.Max = v
		}
	}
	return b
}
