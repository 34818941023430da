// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package httpapi is the public-facing HTTP server for the write router: it
// admits requests, reads and decodes the body, parses line protocol or a
// delete envelope, and hands the result to a dml.Handler: a thin struct over
// a core collaborator, a RegisterRoutes method on a plain *http.ServeMux,
// and a ListenAndServe with sane timeouts.
package httpapi

import (
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"coreingest/internal/ingest/dml"
	"coreingest/internal/ingest/metrics"
	"coreingest/internal/ingest/writesummary"
	"coreingest/internal/ingesterr"
	"coreingest/internal/router/admission"
	"coreingest/internal/router/bodypipeline"
	"coreingest/internal/router/deletepred"
	"coreingest/internal/router/lineproto"
	"coreingest/internal/router/precision"
)

// Clock abstracts wall-clock now so tests can supply a fixed time; defaults
// to time.Now.
type Clock func() time.Time

// Server is the public write-router HTTP server.
type Server struct {
	handler      dml.Handler
	admission    *admission.Semaphore
	maxBodyBytes int64
	now          Clock
	logger       *zap.Logger
}

// Config controls Server construction.
type Config struct {
	Handler         dml.Handler
	MaxRequests     int
	MaxRequestBytes int64
	Now             Clock
	Logger          *zap.Logger
}

// NewServer builds a Server from cfg.
func NewServer(cfg Config) *Server {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	maxBytes := cfg.MaxRequestBytes
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		handler:      cfg.Handler,
		admission:    admission.New(cfg.MaxRequests, admission.WithLogger(logger)),
		maxBodyBytes: maxBytes,
		now:          now,
		logger:       logger,
	}
}

// RegisterRoutes wires the write router's routes onto mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v2/write", s.handleWrite)
	mux.HandleFunc("/api/v2/delete", s.handleDelete)
	mux.HandleFunc("/", s.handleNoRoute)
}

// ListenAndServe starts the HTTP server on addr with the router's standard
// timeouts.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return httpServer.ListenAndServe()
}

func (s *Server) handleNoRoute(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v2/write" || r.URL.Path == "/api/v2/delete" {
		// Matched by a more specific handler above; unreachable in practice.
		s.writeError(w, ingesterr.New(ingesterr.KindNoHandler, "method not allowed"))
		return
	}
	s.writeError(w, ingesterr.New(ingesterr.KindNoHandler, "no route for "+r.Method+" "+r.URL.Path))
}

// orgBucketNamespace extracts {org, bucket, precision} from the query
// string and resolves the target namespace and wire precision.
func orgBucketNamespace(r *http.Request) (namespace string, prec precision.Precision, err error) {
	q := r.URL.Query()
	org := q.Get("org")
	bucket := q.Get("bucket")
	if org == "" || bucket == "" {
		return "", 0, ingesterr.New(ingesterr.KindInvalidOrgBucketNotSpecified, "org and bucket query parameters are required")
	}

	prec, perr := precision.Parse(q.Get("precision"))
	if perr != nil {
		return "", 0, ingesterr.Wrap(ingesterr.KindInvalidOrgBucketDecodeFail, perr, "invalid precision parameter")
	}

	ns, nerr := precision.NamespaceFor(org, bucket)
	if nerr != nil {
		return "", 0, ingesterr.Wrap(ingesterr.KindInvalidOrgBucketMappingFail, nerr, "cannot map org/bucket to a namespace")
	}
	return ns, prec, nil
}

func (s *Server) admitted(w http.ResponseWriter) bool {
	if !s.admission.TryAcquire() {
		metrics.RecordAdmissionRejected()
		s.writeError(w, ingesterr.New(ingesterr.KindRequestLimit, "too many concurrent requests"))
		return false
	}
	return true
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, ingesterr.New(ingesterr.KindNoHandler, "write endpoint only accepts POST"))
		return
	}
	if !s.admitted(w) {
		return
	}
	defer s.admission.Release()

	namespace, prec, err := orgBucketNamespace(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	encoding, err := bodypipeline.ParseContentEncoding(r.Header.Get("Content-Encoding"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	rawBody, err := bodypipeline.Read(r.Body, encoding, s.maxBodyBytes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	body, err := bodypipeline.DecodeUTF8(rawBody)
	if err != nil {
		s.writeError(w, err)
		return
	}

	start := time.Now()
	converter := lineproto.New(s.now(), prec)
	tables, stats, err := converter.Convert(body)
	metrics.ObserveParseDuration(time.Since(start))
	if err != nil {
		s.writeError(w, err)
		return
	}

	summary := writesummary.New()
	if stats.NumLines > 0 {
		result, err := s.handler.Write(r.Context(), namespace, tables)
		if err != nil {
			s.writeError(w, err)
			return
		}
		summary.Merge(result)
	}

	metrics.RecordWrite(stats.NumLines, stats.NumFields, len(tables), int64(len(rawBody)))
	s.logger.Debug("write accepted",
		zap.String("namespace", namespace),
		zap.Int("lines", stats.NumLines),
		zap.Int("fields", stats.NumFields),
		zap.Int("tables", len(tables)),
	)

	w.Header().Set("X-IOx-Write-Token", writesummary.Encode(summary))
	w.WriteHeader(http.StatusNoContent)
}

func toDMLPredicate(p *deletepred.Predicate) dml.DeletePredicate {
	clauses := make([]dml.DeleteClause, len(p.Clauses))
	for i, c := range p.Clauses {
		clauses[i] = dml.DeleteClause{Column: c.Column, Op: c.Op, Value: c.Value}
	}
	return dml.DeletePredicate{StartNanos: p.StartNanos, StopNanos: p.StopNanos, Clauses: clauses}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, ingesterr.New(ingesterr.KindNoHandler, "delete endpoint only accepts POST"))
		return
	}
	if !s.admitted(w) {
		return
	}
	defer s.admission.Release()

	namespace, _, err := orgBucketNamespace(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rawBody, err := io.ReadAll(io.LimitReader(r.Body, s.maxBodyBytes+1))
	if err != nil {
		s.writeError(w, ingesterr.Wrap(ingesterr.KindClientHangup, err, "reading delete request body"))
		return
	}
	if int64(len(rawBody)) > s.maxBodyBytes {
		s.writeError(w, ingesterr.New(ingesterr.KindRequestSizeExceeded, "delete request body exceeds configured limit"))
		return
	}

	pred, err := deletepred.Parse(rawBody)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.handler.Delete(r.Context(), namespace, pred.Table, toDMLPredicate(pred)); err != nil {
		s.writeError(w, err)
		return
	}

	metrics.RecordDeleteBodyBytes(int64(len(rawBody)))

	w.Header().Set("X-IOx-Write-Token", writesummary.Encode(writesummary.New()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Warn("request failed", zap.String("kind", ingesterr.KindOf(err).String()), zap.Error(err))
	http.Error(w, err.Error(), ingesterr.HTTPStatusOf(err))
}
