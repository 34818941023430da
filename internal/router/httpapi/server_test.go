package httpapi

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"coreingest/internal/ingest/columnar"
	"coreingest/internal/ingest/dml"
	"coreingest/internal/ingest/fixtures"
	"coreingest/pkg/seqrange"
)

type fakeHandler struct {
	writes  []map[string]*columnar.MutableBatch
	writeFn func(ctx context.Context, namespace string, tables map[string]*columnar.MutableBatch) (dml.WriteSummary, error)
	deletes []dml.DeletePredicate
}

func (f *fakeHandler) Write(ctx context.Context, namespace string, tables map[string]*columnar.MutableBatch) (dml.WriteSummary, error) {
	f.writes = append(f.writes, tables)
	if f.writeFn != nil {
		return f.writeFn(ctx, namespace, tables)
	}
	summary := make(dml.WriteSummary)
	summary[1] = seqrange.Empty().Observe(1)
	return summary, nil
}

func (f *fakeHandler) Delete(ctx context.Context, namespace, table string, pred dml.DeletePredicate) error {
	f.deletes = append(f.deletes, pred)
	return nil
}

func newServer(h dml.Handler, maxRequests int) *Server {
	return NewServer(Config{
		Handler:         h,
		MaxRequests:     maxRequests,
		MaxRequestBytes: 1 << 20,
		Now:             func() time.Time { return time.Unix(0, 1700000000000000000) },
	})
}

func TestHandleWriteSuccessReturnsNoContentAndToken(t *testing.T) {
	h := &fakeHandler{}
	s := newServer(h, 4)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/write?org=bananas&bucket=test", strings.NewReader("cpu,host=a val=1i 1700000000000000000"))
	rec := httptest.NewRecorder()
	s.handleWrite(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-IOx-Write-Token"))
	require.Len(t, h.writes, 1)
}

func TestHandleWriteMissingOrgBucket(t *testing.T) {
	h := &fakeHandler{}
	s := newServer(h, 4)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/write", strings.NewReader("cpu val=1i"))
	rec := httptest.NewRecorder()
	s.handleWrite(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, h.writes)
}

func TestHandleWriteZeroLinesSkipsHandler(t *testing.T) {
	h := &fakeHandler{}
	s := newServer(h, 4)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/write?org=o&bucket=b", strings.NewReader(""))
	rec := httptest.NewRecorder()
	s.handleWrite(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, h.writes)
}

func TestHandleWriteAdmissionRejectsWhenFull(t *testing.T) {
	h := &fakeHandler{}
	s := newServer(h, 1)
	require.True(t, s.admission.TryAcquire())

	req := httptest.NewRequest(http.MethodPost, "/api/v2/write?org=o&bucket=b", strings.NewReader("cpu val=1i"))
	rec := httptest.NewRecorder()
	s.handleWrite(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleWriteGzipBody(t *testing.T) {
	h := &fakeHandler{}
	s := newServer(h, 4)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("cpu,host=a val=1i 1700000000000000000"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v2/write?org=o&bucket=b", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	s.handleWrite(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, h.writes, 1)
}

func TestHandleDeleteSuccess(t *testing.T) {
	h := &fakeHandler{}
	s := newServer(h, 4)

	body := `{"start":"0","stop":"1700000000000000000","predicate":"_measurement = 'cpu' AND host = 'a'"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/delete?org=o&bucket=b", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleDelete(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, h.deletes, 1)
}

func TestHandleWriteMultiLineBody(t *testing.T) {
	h := &fakeHandler{}
	s := newServer(h, 4)

	body := fixtures.MultiLineBody("cpu", 5)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/write?org=o&bucket=b", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleWrite(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, h.writes, 1)
	require.EqualValues(t, 5, h.writes[0]["cpu"].RowCount())
}

func TestNoRouteReturns404(t *testing.T) {
	h := &fakeHandler{}
	s := newServer(h, 4)

	req := httptest.NewRequest(http.MethodGet, "/not-a-route", nil)
	rec := httptest.NewRecorder()
	s.handleNoRoute(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
