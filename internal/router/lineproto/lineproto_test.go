package lineproto

import (
	"testing"
	"time"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/require"

	"coreingest/internal/ingest/columnar"
	"coreingest/internal/ingesterr"
	"coreingest/internal/router/precision"
)

// firstRowInt64 freezes mb and returns the integer or timestamp value of
// column name in row 0.
func firstRowInt64(t *testing.T, mb *columnar.MutableBatch, name string) int64 {
	t.Helper()
	rb, err := mb.Freeze(memory.NewGoAllocator())
	require.NoError(t, err)
	defer rb.Release()
	for i, f := range rb.Schema().Fields() {
		if f.Name != name {
			continue
		}
		switch col := rb.Record().Column(i).(type) {
		case *array.Int64:
			return col.Value(0)
		case *array.Timestamp:
			return int64(col.Value(0))
		}
	}
	t.Fatalf("column %q not found or not integer-valued", name)
	return 0
}

func TestOneRowBasic(t *testing.T) {
	c := New(time.Unix(0, 0), precision.Nanoseconds)
	batches, stats, err := c.Convert("cpu bar=2 20")
	require.NoError(t, err)
	require.Equal(t, 1, stats.NumLines)
	require.Equal(t, 1, stats.NumFields)
	require.Contains(t, batches, "cpu")
	require.EqualValues(t, 1, batches["cpu"].RowCount())
}

func TestPrecisionScaling(t *testing.T) {
	c := New(time.Unix(0, 0), precision.Seconds)
	batches, _, err := c.Convert("platanos,tag1=A val=42i 1647622847")
	require.NoError(t, err)
	rb, err := batches["platanos"].Freeze(memory.NewGoAllocator())
	require.NoError(t, err)
	defer rb.Release()
	require.EqualValues(t, 1, rb.NumRows())

	fields := rb.Schema().Fields()
	timeIdx := -1
	for i, f := range fields {
		if f.Name == "time" {
			timeIdx = i
			break
		}
	}
	require.GreaterOrEqual(t, timeIdx, 0)

	col := rb.Record().Column(timeIdx)
	ts := col.(*array.Timestamp).Value(0)
	require.EqualValues(t, 1647622847000000000, ts)
}

func TestDuplicateFieldSameValueCoalesces(t *testing.T) {
	c := New(time.Unix(0, 0), precision.Nanoseconds)
	batches, _, err := c.Convert("whydo InputPower=300i,InputPower=300i 1")
	require.NoError(t, err)
	require.EqualValues(t, 1, batches["whydo"].RowCount())
	require.EqualValues(t, 300, firstRowInt64(t, batches["whydo"], "InputPower"))
}

func TestDuplicateFieldDifferentValueLastWins(t *testing.T) {
	c := New(time.Unix(0, 0), precision.Nanoseconds)
	batches, _, err := c.Convert("whydo InputPower=300i,InputPower=42i 1")
	require.NoError(t, err)
	require.EqualValues(t, 1, batches["whydo"].RowCount())
	require.EqualValues(t, 42, firstRowInt64(t, batches["whydo"], "InputPower"))
}

func TestDuplicateFieldDifferentTypeConflicts(t *testing.T) {
	c := New(time.Unix(0, 0), precision.Nanoseconds)
	_, _, err := c.Convert("whydo InputPower=300i,InputPower=4.2 1")
	require.Error(t, err)
	require.Equal(t, ingesterr.KindParseLineProtocol, ingesterr.KindOf(err))
}

func TestTagFieldCollisionIsTypeMismatch(t *testing.T) {
	c := New(time.Unix(0, 0), precision.Nanoseconds)
	_, _, err := c.Convert("whydo,InputPower=300i InputPower=300i 1")
	require.Error(t, err)
	require.Equal(t, ingesterr.KindParseLineProtocol, ingesterr.KindOf(err))
}

func TestColumnNamedTimeIsRejected(t *testing.T) {
	c := New(time.Unix(0, 0), precision.Nanoseconds)
	_, _, err := c.Convert("test field=1u,time=42u 100")
	require.Error(t, err)
	require.Equal(t, ingesterr.KindParseLineProtocol, ingesterr.KindOf(err))
}

func TestDuplicateTagKeyRejected(t *testing.T) {
	c := New(time.Unix(0, 0), precision.Nanoseconds)
	_, _, err := c.Convert("cpu,host=a,host=b val=1 1")
	require.Error(t, err)
	require.Equal(t, ingesterr.KindParseLineProtocol, ingesterr.KindOf(err))
}

func TestMissingTimestampUsesDefault(t *testing.T) {
	defaultTS := time.Unix(0, 555)
	c := New(defaultTS, precision.Nanoseconds)
	batches, _, err := c.Convert("cpu bar=2")
	require.NoError(t, err)
	require.EqualValues(t, 1, batches["cpu"].RowCount())
	require.EqualValues(t, 555, firstRowInt64(t, batches["cpu"], "time"))
}

func TestEmptyPayloadParsesToZeroLines(t *testing.T) {
	c := New(time.Unix(0, 0), precision.Nanoseconds)
	batches, stats, err := c.Convert("")
	require.NoError(t, err)
	require.Equal(t, 0, stats.NumLines)
	require.Empty(t, batches)
}
