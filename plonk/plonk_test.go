package plonk

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/plonkish/plonkish/commitment"
	"github.com/plonkish/plonkish/commitment/ipa"
	"github.com/plonkish/plonkish/commitment/kzg"
	"github.com/plonkish/plonkish/constraint"
	"github.com/plonkish/plonkish/debug"
)

func kzgScheme(t *testing.T, size uint64) commitment.Scheme {
	t.Helper()
	tau, err := rand.Int(rand.Reader, fr.Modulus())
	require.NoError(t, err)
	srs, err := kzg.NewSRS(size, tau)
	require.NoError(t, err)
	return kzg.NewScheme(srs)
}

func ipaScheme(t *testing.T, size uint64) commitment.Scheme {
	t.Helper()
	params, err := ipa.NewParams(size)
	require.NoError(t, err)
	return ipa.NewScheme(params)
}

// mulCircuit is a 16-row circuit with a multiplication gate on the first
// half, two copy constraints (one of them tying an advice cell to a public
// input) and one instance column.
type mulCircuit struct {
	sys     *constraint.System
	a, b, c constraint.Column
	pi      constraint.Column
}

func newMulCircuit(t *testing.T) *mulCircuit {
	t.Helper()
	sys := constraint.NewSystem(4)
	cc := &mulCircuit{sys: sys}
	cc.a = sys.AddAdviceColumn()
	cc.b = sys.AddAdviceColumn()
	cc.c = sys.AddAdviceColumn()
	cc.pi = sys.AddInstanceColumn()

	sel, err := sys.AddSelectorColumn([]int{0, 1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)
	sys.AddGate("mul", constraint.Mul(
		constraint.Q(sel),
		constraint.Sub(constraint.Mul(constraint.Q(cc.a), constraint.Q(cc.b)), constraint.Q(cc.c)),
	))

	require.NoError(t, sys.AddCopy(
		constraint.Cell{Col: cc.a, Row: 2},
		constraint.Cell{Col: cc.b, Row: 5},
	))
	require.NoError(t, sys.AddCopy(
		constraint.Cell{Col: cc.c, Row: 0},
		constraint.Cell{Col: cc.pi, Row: 0},
	))
	return cc
}

func (cc *mulCircuit) witness(t *testing.T) (*constraint.Assignment, [][]fr.Element) {
	t.Helper()
	asg := constraint.NewAssignment(cc.sys)
	set := func(col constraint.Column, row int, v uint64) {
		require.NoError(t, asg.AssignAdvice(col, row, fr.NewElement(v)))
	}
	for i := 0; i < 16; i++ {
		av, bv := uint64(i+1), uint64(i+2)
		if i == 5 {
			// row 5's b cell is copied from a[2] = 3
			av, bv = 6, 3
		}
		if i >= 8 {
			av, bv = 0, 0
		}
		set(cc.a, i, av)
		set(cc.b, i, bv)
		set(cc.c, i, av*bv)
	}
	public := []fr.Element{fr.NewElement(2)} // c[0] = 1*2
	require.NoError(t, asg.SetInstance(cc.pi, public))
	return asg, [][]fr.Element{public}
}

func TestProveVerifyKZG(t *testing.T) {
	cc := newMulCircuit(t)
	pk, vk, err := Setup(cc.sys, kzgScheme(t, 64))
	require.NoError(t, err)

	asg, public := cc.witness(t)
	proof, err := Prove(pk, asg)
	require.NoError(t, err)
	require.NoError(t, Verify(vk, proof, public))
}

func TestProveVerifyIPA(t *testing.T) {
	cc := newMulCircuit(t)
	pk, vk, err := Setup(cc.sys, ipaScheme(t, 32))
	require.NoError(t, err)

	asg, public := cc.witness(t)
	proof, err := Prove(pk, asg)
	require.NoError(t, err)
	require.NoError(t, Verify(vk, proof, public))
}

func TestRejectsBrokenGate(t *testing.T) {
	if debug.Debug {
		t.Skip("debug builds reject the witness before proving")
	}
	cc := newMulCircuit(t)
	pk, vk, err := Setup(cc.sys, kzgScheme(t, 64))
	require.NoError(t, err)

	asg, public := cc.witness(t)
	// one corrupted product cell
	require.NoError(t, asg.AssignAdvice(cc.c, 3, fr.NewElement(13)))
	proof, err := Prove(pk, asg)
	require.NoError(t, err)
	require.ErrorIs(t, Verify(vk, proof, public), ErrInvalidAlgebraicRelation)
}

func TestRejectsBrokenCopyConstraint(t *testing.T) {
	if debug.Debug {
		t.Skip("debug builds reject the witness before proving")
	}
	cc := newMulCircuit(t)
	pk, vk, err := Setup(cc.sys, kzgScheme(t, 64))
	require.NoError(t, err)

	asg, public := cc.witness(t)
	// gate still satisfied on row 5, but b[5] != a[2]
	require.NoError(t, asg.AssignAdvice(cc.b, 5, fr.NewElement(4)))
	require.NoError(t, asg.AssignAdvice(cc.c, 5, fr.NewElement(24)))
	proof, err := Prove(pk, asg)
	require.NoError(t, err)
	require.ErrorIs(t, Verify(vk, proof, public), ErrInvalidAlgebraicRelation)
}

func TestRejectsWrongPublicInput(t *testing.T) {
	cc := newMulCircuit(t)
	pk, vk, err := Setup(cc.sys, kzgScheme(t, 64))
	require.NoError(t, err)

	asg, _ := cc.witness(t)
	proof, err := Prove(pk, asg)
	require.NoError(t, err)
	require.Error(t, Verify(vk, proof, [][]fr.Element{{fr.NewElement(3)}}))
	require.ErrorIs(t, Verify(vk, proof, nil), ErrInstanceMismatch)
}

func TestRejectsIncompleteWitness(t *testing.T) {
	cc := newMulCircuit(t)
	pk, _, err := Setup(cc.sys, kzgScheme(t, 64))
	require.NoError(t, err)

	asg := constraint.NewAssignment(cc.sys)
	require.NoError(t, asg.AssignAdvice(cc.a, 0, fr.NewElement(1)))

	_, err = Prove(pk, asg)
	var we *constraint.WitnessError
	require.ErrorAs(t, err, &we)
}

// lookupCircuit constrains an advice column to the table {0,1,2,3} held in
// a fixed column of an 8-row grid.
type lookupCircuit struct {
	sys *constraint.System
	in  constraint.Column
}

func newLookupCircuit(t *testing.T) *lookupCircuit {
	t.Helper()
	sys := constraint.NewSystem(3)
	lc := &lookupCircuit{sys: sys}
	lc.in = sys.AddAdviceColumn()

	table := make([]fr.Element, 4)
	for i := range table {
		table[i].SetUint64(uint64(i))
	}
	tcol, err := sys.AddFixedColumn(table) // zero-padded to 8 rows
	require.NoError(t, err)
	require.NoError(t, sys.AddLookup("range4",
		[]constraint.Expression{constraint.Q(lc.in)},
		[]constraint.Expression{constraint.Q(tcol)},
	))
	return lc
}

func (lc *lookupCircuit) witness(t *testing.T, values []uint64) *constraint.Assignment {
	t.Helper()
	asg := constraint.NewAssignment(lc.sys)
	for i := 0; i < 8; i++ {
		var v uint64
		if i < len(values) {
			v = values[i]
		}
		require.NoError(t, asg.AssignAdvice(lc.in, i, fr.NewElement(v)))
	}
	return asg
}

func TestLookup(t *testing.T) {
	lc := newLookupCircuit(t)
	pk, vk, err := Setup(lc.sys, kzgScheme(t, 32))
	require.NoError(t, err)

	asg := lc.witness(t, []uint64{1, 3, 1, 0})
	proof, err := Prove(pk, asg)
	require.NoError(t, err)
	require.NoError(t, Verify(vk, proof, nil))
}

func TestLookupRejectsOutOfTableValue(t *testing.T) {
	if debug.Debug {
		t.Skip("debug builds reject the witness before proving")
	}
	lc := newLookupCircuit(t)
	pk, vk, err := Setup(lc.sys, kzgScheme(t, 32))
	require.NoError(t, err)

	asg := lc.witness(t, []uint64{1, 3, 1, 0, 5})
	proof, err := Prove(pk, asg)
	require.NoError(t, err)
	require.ErrorIs(t, Verify(vk, proof, nil), ErrInvalidAlgebraicRelation)
}

func TestLookupIPA(t *testing.T) {
	lc := newLookupCircuit(t)
	pk, vk, err := Setup(lc.sys, ipaScheme(t, 16))
	require.NoError(t, err)

	asg := lc.witness(t, []uint64{2, 2, 2, 3})
	proof, err := Prove(pk, asg)
	require.NoError(t, err)
	require.NoError(t, Verify(vk, proof, nil))
}

// sumCircuit accumulates its instance column into an advice column using
// rotated queries on an 8-row grid: a forward gate checks
// acc(omega*X) = acc(X) + pi(X), and a backward gate re-checks the same
// recurrence through rotation -1 on both the advice and the instance
// column.
type sumCircuit struct {
	sys *constraint.System
	acc constraint.Column
	pi  constraint.Column
}

func newSumCircuit(t *testing.T) *sumCircuit {
	t.Helper()
	sys := constraint.NewSystem(3)
	sc := &sumCircuit{sys: sys}
	sc.acc = sys.AddAdviceColumn()
	sc.pi = sys.AddInstanceColumn()

	fwd, err := sys.AddSelectorColumn([]int{0, 1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	sys.AddGate("step", constraint.Mul(
		constraint.Q(fwd),
		constraint.Sub(
			constraint.QRot(sc.acc, 1),
			constraint.Add(constraint.Q(sc.acc), constraint.Q(sc.pi)),
		),
	))

	back, err := sys.AddSelectorColumn([]int{1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)
	sys.AddGate("stepBack", constraint.Mul(
		constraint.Q(back),
		constraint.Sub(
			constraint.Q(sc.acc),
			constraint.Add(constraint.QRot(sc.acc, -1), constraint.QRot(sc.pi, -1)),
		),
	))
	return sc
}

func (sc *sumCircuit) witness(t *testing.T) (*constraint.Assignment, [][]fr.Element) {
	t.Helper()
	asg := constraint.NewAssignment(sc.sys)
	public := make([]fr.Element, 8)
	sum := uint64(0)
	for i := 0; i < 8; i++ {
		require.NoError(t, asg.AssignAdvice(sc.acc, i, fr.NewElement(sum)))
		var v uint64
		if i < 7 {
			// the last row is outside both selectors, its instance
			// value is unconstrained
			v = uint64(i + 1)
		}
		public[i].SetUint64(v)
		sum += v
	}
	require.NoError(t, asg.SetInstance(sc.pi, public))
	return asg, [][]fr.Element{public}
}

func TestGateRotations(t *testing.T) {
	sc := newSumCircuit(t)
	pk, vk, err := Setup(sc.sys, kzgScheme(t, 64))
	require.NoError(t, err)

	asg, public := sc.witness(t)
	proof, err := Prove(pk, asg)
	require.NoError(t, err)
	require.NoError(t, Verify(vk, proof, public))
}

func TestGateRotationsIPA(t *testing.T) {
	sc := newSumCircuit(t)
	pk, vk, err := Setup(sc.sys, ipaScheme(t, 16))
	require.NoError(t, err)

	asg, public := sc.witness(t)
	proof, err := Prove(pk, asg)
	require.NoError(t, err)
	require.NoError(t, Verify(vk, proof, public))
}

func TestGateRotationsRejectBrokenRecurrence(t *testing.T) {
	if debug.Debug {
		t.Skip("debug builds reject the witness before proving")
	}
	sc := newSumCircuit(t)
	pk, vk, err := Setup(sc.sys, kzgScheme(t, 64))
	require.NoError(t, err)

	asg, public := sc.witness(t)
	// acc[4] should be 1+2+3+4 = 10; breaks rows 3 and 4 of both gates
	require.NoError(t, asg.AssignAdvice(sc.acc, 4, fr.NewElement(11)))
	proof, err := Prove(pk, asg)
	require.NoError(t, err)
	require.ErrorIs(t, Verify(vk, proof, public), ErrInvalidAlgebraicRelation)
}

func TestProofSerialization(t *testing.T) {
	cc := newMulCircuit(t)
	pk, vk, err := Setup(cc.sys, kzgScheme(t, 64))
	require.NoError(t, err)

	asg, public := cc.witness(t)
	proof, err := Prove(pk, asg)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = proof.WriteTo(&buf)
	require.NoError(t, err)

	restored, err := vk.ReadProof(&buf)
	require.NoError(t, err)
	require.NoError(t, Verify(vk, restored, public))
}

func TestReadProofRejectsTruncatedInput(t *testing.T) {
	cc := newMulCircuit(t)
	pk, vk, err := Setup(cc.sys, kzgScheme(t, 64))
	require.NoError(t, err)

	asg, _ := cc.witness(t)
	proof, err := Prove(pk, asg)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = proof.WriteTo(&buf)
	require.NoError(t, err)

	_, err = vk.ReadProof(bytes.NewReader(buf.Bytes()[:buf.Len()/2]))
	require.Error(t, err)
}

func TestSetupRejectsOversizedDomain(t *testing.T) {
	sys := constraint.NewSystem(40) // beyond the field's 2-adicity
	_, _, err := Setup(sys, kzgScheme(t, 4))
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
}

func TestSetupRejectsSmallBasis(t *testing.T) {
	cc := newMulCircuit(t)
	_, _, err := Setup(cc.sys, kzgScheme(t, 8))
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
}

func TestProveWithNbTasks(t *testing.T) {
	cc := newMulCircuit(t)
	pk, vk, err := Setup(cc.sys, kzgScheme(t, 64))
	require.NoError(t, err)

	asg, public := cc.witness(t)
	proof, err := Prove(pk, asg, WithNbTasks(1))
	require.NoError(t, err)
	require.NoError(t, Verify(vk, proof, public))

	_, err = Prove(pk, asg, WithNbTasks(0))
	require.Error(t, err)
}

func TestProofIsFresh(t *testing.T) {
	// blinding makes two proofs of the same witness differ
	cc := newMulCircuit(t)
	pk, vk, err := Setup(cc.sys, kzgScheme(t, 64))
	require.NoError(t, err)

	asg, public := cc.witness(t)
	p1, err := Prove(pk, asg)
	require.NoError(t, err)
	p2, err := Prove(pk, asg)
	require.NoError(t, err)
	require.NoError(t, Verify(vk, p1, public))
	require.NoError(t, Verify(vk, p2, public))
	require.False(t, p1.Advice[0].Equal(&p2.Advice[0]))
}
