package writesummary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := New()
	s.Observe(1, 3)
	s.Observe(1, 7)
	s.Observe(2, 100)

	token := Encode(s)
	require.NotEmpty(t, token)

	decoded, err := Decode(token)
	require.NoError(t, err)
	require.Equal(t, s, decoded)
}

func TestEncodeEmptySummary(t *testing.T) {
	token := Encode(New())
	decoded, err := Decode(token)
	require.NoError(t, err)
	require.Empty(t, decoded)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("not-a-valid-token!!")
	require.Error(t, err)
}

func TestMergeWidensOverlappingPartitions(t *testing.T) {
	a := New()
	a.Observe(1, 5)
	b := New()
	b.Observe(1, 10)
	b.Observe(2, 1)

	a.Merge(b)
	min, max, ok := a[1].MinMax()
	require.True(t, ok)
	require.EqualValues(t, 5, min)
	require.EqualValues(t, 10, max)

	min2, max2, ok2 := a[2].MinMax()
	require.True(t, ok2)
	require.EqualValues(t, 1, min2)
	require.EqualValues(t, 1, max2)
}

func TestTokenIsURLSafe(t *testing.T) {
	s := New()
	s.Observe(42, 1000)
	token := Encode(s)
	for _, c := range token {
		require.NotEqual(t, byte('+'), byte(c))
		require.NotEqual(t, byte('/'), byte(c))
		require.NotEqual(t, byte('='), byte(c))
	}
}
