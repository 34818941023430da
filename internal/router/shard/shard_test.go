package shard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsZeroShards(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
}

func TestAssignIsDeterministic(t *testing.T) {
	r, err := New(4)
	require.NoError(t, err)

	first := r.Assign(123)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, r.Assign(123))
	}
}

func TestAssignDistributesAcrossShards(t *testing.T) {
	r, err := New(4)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for id := int64(0); id < 200; id++ {
		seen[r.Assign(id)] = true
	}
	require.Greater(t, len(seen), 1)
}

func TestAssignStableAsShardCountGrows(t *testing.T) {
	small, err := New(4)
	require.NoError(t, err)
	big, err := New(5)
	require.NoError(t, err)

	moved := 0
	for id := int64(0); id < 500; id++ {
		if small.Assign(id) != big.Assign(id) {
			moved++
		}
	}
	// Rendezvous hashing should remap only a small fraction of keys when
	// adding one more shard bucket, not a full reshuffle.
	require.Less(t, moved, 200)
}
