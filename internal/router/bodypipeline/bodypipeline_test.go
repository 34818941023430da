package bodypipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"coreingest/internal/ingesterr"
)

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestParseContentEncoding(t *testing.T) {
	enc, err := ParseContentEncoding("")
	require.NoError(t, err)
	require.Equal(t, Identity, enc)

	enc, err = ParseContentEncoding("gzip")
	require.NoError(t, err)
	require.Equal(t, Gzip, enc)

	_, err = ParseContentEncoding("br")
	require.Error(t, err)
	require.Equal(t, ingesterr.KindInvalidContentEncoding, ingesterr.KindOf(err))
}

func TestReadIdentityWithinLimit(t *testing.T) {
	body, err := Read(strings.NewReader("hello"), Identity, 100)
	require.NoError(t, err)
	require.Equal(t, "hello", string(body))
}

func TestReadIdentityExceedsLimit(t *testing.T) {
	_, err := Read(strings.NewReader("hello world"), Identity, 5)
	require.Error(t, err)
	require.Equal(t, ingesterr.KindRequestSizeExceeded, ingesterr.KindOf(err))
}

func TestReadGzipWithinLimit(t *testing.T) {
	body, err := Read(bytes.NewReader(gzipBytes(t, "cpu bar=2 20")), Gzip, 100)
	require.NoError(t, err)
	require.Equal(t, "cpu bar=2 20", string(body))
}

func TestReadGzipBombDefense(t *testing.T) {
	payload := strings.Repeat("x", 1000)
	_, err := Read(bytes.NewReader(gzipBytes(t, payload)), Gzip, 10)
	require.Error(t, err)
	require.Equal(t, ingesterr.KindRequestSizeExceeded, ingesterr.KindOf(err))
}

func TestReadInvalidGzip(t *testing.T) {
	_, err := Read(strings.NewReader("not gzip data"), Gzip, 100)
	require.Error(t, err)
	require.Equal(t, ingesterr.KindInvalidGzip, ingesterr.KindOf(err))
}

func TestDecodeUTF8RejectsInvalid(t *testing.T) {
	_, err := DecodeUTF8([]byte{0xff, 0xfe, 0xfd})
	require.Error(t, err)
	require.Equal(t, ingesterr.KindNonUtf8Body, ingesterr.KindOf(err))
}

func TestDecodeUTF8HappyPath(t *testing.T) {
	s, err := DecodeUTF8([]byte("cpu bar=2 20"))
	require.NoError(t, err)
	require.Equal(t, "cpu bar=2 20", s)
}
