package buffer

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/require"

	"coreingest/internal/ingest/columnar"
)

func row(ts int64, bar float64) map[string]columnar.Value {
	return map[string]columnar.Value{
		"time": columnar.TimestampValue(ts),
		"bar":  columnar.F64Value(bar),
	}
}

func TestWriteMonotonicityPanics(t *testing.T) {
	b := New()
	require.NoError(t, b.Write(row(10, 1), 5))
	require.Panics(t, func() {
		_ = b.Write(row(11, 1), 4)
	})
}

func TestWriteBatchAppendsAllRowsUnderOneSequence(t *testing.T) {
	b := New()
	mb := columnar.NewMutableBatch()
	require.NoError(t, mb.AppendRow(row(1, 1)))
	require.NoError(t, mb.AppendRow(row(2, 2)))

	require.NoError(t, b.WriteBatch(mb, 9))
	require.Equal(t, 2, b.RowCount())
	min, max, ok := b.SequenceRange().MinMax()
	require.True(t, ok)
	require.EqualValues(t, 9, min)
	require.EqualValues(t, 9, max)
}

func TestWriteBatchMonotonicityPanics(t *testing.T) {
	b := New()
	require.NoError(t, b.Write(row(10, 1), 5))
	mb := columnar.NewMutableBatch()
	require.NoError(t, mb.AppendRow(row(11, 1)))
	require.Panics(t, func() {
		_ = b.WriteBatch(mb, 4)
	})
}

func TestSnapshotUnchangedWhenEmpty(t *testing.T) {
	b := New()
	snap, transitioned, err := b.Snapshot(memory.NewGoAllocator())
	require.NoError(t, err)
	require.False(t, transitioned)
	require.Nil(t, snap)
}

func TestSnapshotPreservesSequenceRange(t *testing.T) {
	b := New()
	require.NoError(t, b.Write(row(1, 1), 3))
	require.NoError(t, b.Write(row(2, 2), 7))

	snap, transitioned, err := b.Snapshot(memory.NewGoAllocator())
	require.NoError(t, err)
	require.True(t, transitioned)
	min, max, ok := snap.SequenceRange().MinMax()
	require.True(t, ok)
	require.Equal(t, int64(3), min)
	require.Equal(t, int64(7), max)
}

func TestSnapshotGetQueryDataIsPointerStable(t *testing.T) {
	b := New()
	require.NoError(t, b.Write(row(1, 1), 1))
	snap, transitioned, err := b.Snapshot(memory.NewGoAllocator())
	require.NoError(t, err)
	require.True(t, transitioned)

	first := snap.GetQueryData()
	second := snap.GetQueryData()
	require.Len(t, first, 1)
	require.Same(t, first[0], second[0])
}

func TestIntoPersistingDoesNotCopyData(t *testing.T) {
	b := New()
	require.NoError(t, b.Write(row(1, 1), 1))
	snap, _, err := b.Snapshot(memory.NewGoAllocator())
	require.NoError(t, err)

	before := snap.GetQueryData()
	persisting := snap.IntoPersisting(1, 2, 3, "cpu")
	after := persisting.GetQueryData()

	require.Len(t, after, 1)
	require.Same(t, before[0], after[0])
	require.NotEqual(t, persisting.ObjectUUID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestPersistingGetQueryDataIsPointerStable(t *testing.T) {
	b := New()
	require.NoError(t, b.Write(row(1, 1), 1))
	snap, _, err := b.Snapshot(memory.NewGoAllocator())
	require.NoError(t, err)
	p := snap.IntoPersisting(1, 1, 1, "cpu")

	first := p.GetQueryData()
	second := p.GetQueryData()
	require.Same(t, first[0], second[0])
}

func TestIntoDataYieldsQueryableBatchWithPrimaryKey(t *testing.T) {
	b := New()
	require.NoError(t, b.Write(map[string]columnar.Value{
		"time": columnar.TimestampValue(20),
		"bar":  columnar.F64Value(2),
	}, 1))
	snap, _, err := b.Snapshot(memory.NewGoAllocator())
	require.NoError(t, err)
	p := snap.IntoPersisting(1, 1, 1, "cpu")

	qb, err := p.IntoData()
	require.NoError(t, err)
	require.EqualValues(t, 1, qb.NumRows())
	require.Equal(t, []string{"time"}, qb.PrimaryKey())
}
