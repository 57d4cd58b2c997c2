package constraint

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestExpressionEvalAndDegree(t *testing.T) {
	s := NewSystem(3)
	a := s.AddAdviceColumn()
	b := s.AddAdviceColumn()

	// a * b - a(next row)
	e := Sub(Mul(Q(a), Q(b)), QRot(a, 1))
	require.Equal(t, 2, e.Degree())

	vals := map[Query]uint64{
		{Col: a}:         3,
		{Col: b}:         5,
		{Col: a, Rot: 1}: 7,
	}
	got := Eval(e, func(q Query) fr.Element {
		var v fr.Element
		v.SetUint64(vals[q])
		return v
	})
	var expected fr.Element
	expected.SetUint64(8)
	require.True(t, expected.Equal(&got))
}

func TestSelectorColumn(t *testing.T) {
	s := NewSystem(3)
	sel, err := s.AddSelectorColumn([]int{0, 2})
	require.NoError(t, err)
	col := s.FixedColumns[sel.Index]
	require.True(t, col[0].IsOne())
	require.True(t, col[1].IsZero())
	require.True(t, col[2].IsOne())

	_, err = s.AddSelectorColumn([]int{8})
	require.Error(t, err)
}

func TestMaxDegree(t *testing.T) {
	s := NewSystem(3)
	a := s.AddAdviceColumn()
	require.Equal(t, 3, s.MaxDegree(), "floor is the lookup recurrence degree")

	s.AddGate("quartic", Mul(Q(a), Q(a), Q(a), Q(a)))
	require.Equal(t, 4, s.MaxDegree())

	b := s.AddAdviceColumn()
	require.NoError(t, s.AddLookup("wide", []Expression{Mul(Q(a), Q(a), Q(b))}, []Expression{Mul(Q(b), Q(b))}))
	// 1 + 3 + 2
	require.Equal(t, 6, s.MaxDegree())
}

func TestQueriesDeduplicatedAndSorted(t *testing.T) {
	s := NewSystem(3)
	a := s.AddAdviceColumn()
	b := s.AddAdviceColumn()
	f, err := s.AddFixedColumn(nil)
	require.NoError(t, err)

	s.AddGate("g1", Mul(Q(f), Sub(QRot(b, -1), Q(a))))
	s.AddGate("g2", Mul(Q(f), Q(a))) // duplicates (f,0) and (a,0)

	advice, fixed, instance := s.Queries()
	require.Equal(t, []Query{{Col: a}, {Col: b, Rot: -1}}, advice)
	require.Equal(t, []Query{{Col: f}}, fixed)
	require.Empty(t, instance)
}

func TestQueriesIncludePermutationColumns(t *testing.T) {
	s := NewSystem(3)
	a := s.AddAdviceColumn()
	b := s.AddAdviceColumn()
	require.NoError(t, s.AddCopy(Cell{Col: a, Row: 1}, Cell{Col: b, Row: 2}))

	advice, _, _ := s.Queries()
	require.Equal(t, []Query{{Col: a}, {Col: b}}, advice)
}

func TestAddCopyRejectsBoundaryRow(t *testing.T) {
	s := NewSystem(3)
	a := s.AddAdviceColumn()
	b := s.AddAdviceColumn()
	require.Error(t, s.AddCopy(Cell{Col: a, Row: 7}, Cell{Col: b, Row: 0}))
	require.Error(t, s.AddCopy(Cell{Col: a, Row: 0}, Cell{Col: b, Row: 8}))
	require.NoError(t, s.AddCopy(Cell{Col: a, Row: 0}, Cell{Col: b, Row: 6}))
}

func TestValidateRejectsOversizedRotation(t *testing.T) {
	s := NewSystem(2)
	a := s.AddAdviceColumn()
	s.AddGate("g", QRot(a, 4))
	require.Error(t, s.Validate())
}

func TestValidateRejectsUnknownColumn(t *testing.T) {
	s := NewSystem(2)
	s.AddGate("g", Q(Column{Kind: Fixed, Index: 3}))
	require.Error(t, s.Validate())
}

func TestAssignmentCompleteness(t *testing.T) {
	s := NewSystem(2)
	a := s.AddAdviceColumn()
	s.AddGate("g", Q(a))

	asg := NewAssignment(s)
	for i := 0; i < 3; i++ {
		require.NoError(t, asg.AssignAdvice(a, i, fr.NewElement(0)))
	}
	err := asg.Complete(s)
	var we *WitnessError
	require.ErrorAs(t, err, &we)
	require.Equal(t, 3, we.Row)

	require.NoError(t, asg.AssignAdvice(a, 3, fr.NewElement(0)))
	require.NoError(t, asg.Complete(s))
}

func TestAssignmentIgnoresUnusedColumns(t *testing.T) {
	s := NewSystem(2)
	a := s.AddAdviceColumn()
	_ = s.AddAdviceColumn() // never queried, may stay empty
	s.AddGate("g", Q(a))

	asg := NewAssignment(s)
	for i := 0; i < 4; i++ {
		require.NoError(t, asg.AssignAdvice(a, i, fr.NewElement(1)))
	}
	require.NoError(t, asg.Complete(s))
}

func TestSetInstancePads(t *testing.T) {
	s := NewSystem(2)
	pi := s.AddInstanceColumn()
	asg := NewAssignment(s)
	require.NoError(t, asg.SetInstance(pi, []fr.Element{fr.NewElement(9)}))
	inst := asg.Instances()[0]
	require.Len(t, inst, 4)
	require.True(t, inst[1].IsZero())

	require.Error(t, asg.SetInstance(pi, make([]fr.Element, 5)))
}
