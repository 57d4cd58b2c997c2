package transcript

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestDeterminism(t *testing.T) {
	run := func() []fr.Element {
		ts := New("test.v1")
		var s fr.Element
		s.SetUint64(42)
		ts.AppendScalar(&s)
		_, _, g, _ := bn254.Generators()
		ts.AppendPoint(&g)

		out := make([]fr.Element, 3)
		out[0] = ts.ChallengeScalar("alpha")
		out[1] = ts.ChallengeScalar("beta")
		out[2] = ts.ChallengeScalar("gamma")
		return out
	}

	a, b := run(), run()
	for i := range a {
		require.True(t, a[i].Equal(&b[i]))
	}
}

func TestDivergenceChangesChallenges(t *testing.T) {
	ts1 := New("test.v1")
	ts2 := New("test.v1")

	var s1, s2 fr.Element
	s1.SetUint64(1)
	s2.SetUint64(2)
	ts1.AppendScalar(&s1)
	ts2.AppendScalar(&s2)

	c1 := ts1.ChallengeScalar("c")
	c2 := ts2.ChallengeScalar("c")
	require.False(t, c1.Equal(&c2))
}

func TestChallengeAdvancesState(t *testing.T) {
	ts := New("test.v1")
	c1 := ts.ChallengeScalar("c")
	c2 := ts.ChallengeScalar("c")
	require.False(t, c1.Equal(&c2), "repeated challenge with the same label must differ")
}

func TestLabelSeparation(t *testing.T) {
	ts1 := New("proto.a")
	ts2 := New("proto.b")
	c1 := ts1.ChallengeScalar("c")
	c2 := ts2.ChallengeScalar("c")
	require.False(t, c1.Equal(&c2))
}
