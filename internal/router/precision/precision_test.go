package precision

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToNanoseconds(t *testing.T) {
	p, err := Parse("")
	require.NoError(t, err)
	require.Equal(t, Nanoseconds, p)
}

func TestParseAllUnits(t *testing.T) {
	cases := map[string]Precision{"s": Seconds, "ms": Milliseconds, "us": Microseconds, "ns": Nanoseconds}
	for s, want := range cases {
		p, err := Parse(s)
		require.NoError(t, err)
		require.Equal(t, want, p)
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	_, err := Parse("fortnights")
	require.Error(t, err)
}

func TestTimestampBase(t *testing.T) {
	require.EqualValues(t, 1_000_000_000, Seconds.TimestampBase())
	require.EqualValues(t, 1_000_000, Milliseconds.TimestampBase())
	require.EqualValues(t, 1_000, Microseconds.TimestampBase())
	require.EqualValues(t, 1, Nanoseconds.TimestampBase())
}

func TestNamespaceForRejectsEmptyComponents(t *testing.T) {
	_, err := NamespaceFor("", "bucket")
	require.Error(t, err)
	_, err = NamespaceFor("org", "")
	require.Error(t, err)
}

func TestNamespaceForRejectsOverLength(t *testing.T) {
	_, err := NamespaceFor(strings.Repeat("a", 40), strings.Repeat("b", 40))
	require.Error(t, err)
}

func TestNamespaceForHappyPath(t *testing.T) {
	ns, err := NamespaceFor("myorg", "mybucket")
	require.NoError(t, err)
	require.Equal(t, "myorg_mybucket", ns)
}
