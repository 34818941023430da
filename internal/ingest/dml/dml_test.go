package dml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"coreingest/internal/ingest/columnar"
	"coreingest/internal/ingest/compact/sortmerge"
	"coreingest/internal/ingest/fixtures"
)

func oneRowBatch(t *testing.T, tag, field string, ts int64, val float64) *columnar.MutableBatch {
	t.Helper()
	return fixtures.OneRowBatch(t, fixtures.Row{Tag: tag, Field: field, Time: ts, Value: val})
}

func TestWriteReturnsSummaryForEachTable(t *testing.T) {
	h, err := NewInProcessHandler(4, sortmerge.New(), nil)
	require.NoError(t, err)

	tables := map[string]*columnar.MutableBatch{
		"cpu": oneRowBatch(t, "a", "bar", 1, 2),
		"mem": oneRowBatch(t, "a", "bar", 2, 3),
	}
	summary, err := h.Write(context.Background(), "ns", tables)
	require.NoError(t, err)
	require.Len(t, summary, 2)
}

func TestWriteSkipsEmptyBatches(t *testing.T) {
	h, err := NewInProcessHandler(2, sortmerge.New(), nil)
	require.NoError(t, err)

	tables := map[string]*columnar.MutableBatch{
		"cpu": columnar.NewMutableBatch(),
	}
	summary, err := h.Write(context.Background(), "ns", tables)
	require.NoError(t, err)
	require.Empty(t, summary)
}

func TestFlushEmptyPartitionIsNoop(t *testing.T) {
	h, err := NewInProcessHandler(2, sortmerge.New(), nil)
	require.NoError(t, err)

	out, err := h.Flush(context.Background(), "ns", "cpu", "u1")
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestWriteThenFlushProducesOneRecordBatch(t *testing.T) {
	h, err := NewInProcessHandler(2, sortmerge.New(), nil)
	require.NoError(t, err)

	tables := map[string]*columnar.MutableBatch{
		"cpu": oneRowBatch(t, "a", "bar", 20, 2),
	}
	_, err = h.Write(context.Background(), "ns", tables)
	require.NoError(t, err)

	out, err := h.Flush(context.Background(), "ns", "cpu", "u1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	defer out[0].Release()
	require.EqualValues(t, 1, out[0].NumRows())
}

func TestDeleteRequiresTable(t *testing.T) {
	h, err := NewInProcessHandler(2, sortmerge.New(), nil)
	require.NoError(t, err)
	err = h.Delete(context.Background(), "ns", "", DeletePredicate{})
	require.Error(t, err)
}

func TestPartitionIDIsDeterministic(t *testing.T) {
	require.Equal(t, PartitionID("ns", "cpu"), PartitionID("ns", "cpu"))
	require.NotEqual(t, PartitionID("ns", "cpu"), PartitionID("ns", "mem"))
}

func TestFlushAllDrainsEveryTouchedPartition(t *testing.T) {
	h, err := NewInProcessHandler(2, sortmerge.New(), nil)
	require.NoError(t, err)

	tables := map[string]*columnar.MutableBatch{
		"cpu": oneRowBatch(t, "a", "bar", 1, 1),
		"mem": oneRowBatch(t, "a", "bar", 2, 2),
	}
	_, err = h.Write(context.Background(), "ns", tables)
	require.NoError(t, err)

	out, err := h.FlushAll(context.Background(), "u")
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, rb := range out {
		rb.Release()
	}
}

func TestFlushAllOnEmptyHandlerReturnsNothing(t *testing.T) {
	h, err := NewInProcessHandler(2, sortmerge.New(), nil)
	require.NoError(t, err)

	out, err := h.FlushAll(context.Background(), "u")
	require.NoError(t, err)
	require.Empty(t, out)
}
