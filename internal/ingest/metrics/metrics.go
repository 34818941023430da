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

// Package metrics exposes the HTTP ingest path's Prometheus counters and
// histogram. Package-level collectors registered in init(), with thin
// Record*/Observe* functions as the only surface calling code touches.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	writeLinesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "http_write_lines_total",
		Help: "Total line protocol lines parsed across all write requests",
	})
	writeFieldsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "http_write_fields_total",
		Help: "Total field values parsed across all write requests",
	})
	writeTablesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "http_write_tables_total",
		Help: "Total distinct tables touched across all write requests",
	})
	writeBodyBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "http_write_body_bytes_total",
		Help: "Total decompressed write request body bytes processed",
	})
	deleteBodyBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "http_delete_body_bytes_total",
		Help: "Total decompressed delete request body bytes processed",
	})
	requestLimitRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "http_request_limit_rejected",
		Help: "Total requests rejected because the admission semaphore was full",
	})
	lineProtocolParseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "http_line_protocol_parse_duration",
		Help:    "Time spent parsing a write request's line protocol body, in seconds",
		Buckets: prometheus.DefBuckets,
	})
	configGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ingest_config_value",
		Help: "Snapshot of a numeric process configuration value, labeled by name",
	}, []string{"name"})
)

func init() {
	prometheus.MustRegister(
		writeLinesTotal,
		writeFieldsTotal,
		writeTablesTotal,
		writeBodyBytesTotal,
		deleteBodyBytesTotal,
		requestLimitRejected,
		lineProtocolParseDuration,
		configGauge,
	)
}

// SetConfigGauge records a numeric process configuration value under name so
// it shows up alongside the runtime counters, the same flag-to-metric
// snapshot a process takes once at startup and never updates again.
func SetConfigGauge(name string, value float64) {
	configGauge.WithLabelValues(name).Set(value)
}

// SetConfigGaugeDuration is SetConfigGauge for a time.Duration, recorded in
// seconds.
func SetConfigGaugeDuration(name string, value time.Duration) {
	SetConfigGauge(name, value.Seconds())
}

// RecordWrite updates the write-path counters for one successfully parsed
// write request.
func RecordWrite(numLines, numFields, numTables int, bodyBytes int64) {
	if numLines > 0 {
		writeLinesTotal.Add(float64(numLines))
	}
	if numFields > 0 {
		writeFieldsTotal.Add(float64(numFields))
	}
	if numTables > 0 {
		writeTablesTotal.Add(float64(numTables))
	}
	if bodyBytes > 0 {
		writeBodyBytesTotal.Add(float64(bodyBytes))
	}
}

// RecordDeleteBodyBytes updates the delete-path body-size counter.
func RecordDeleteBodyBytes(bodyBytes int64) {
	if bodyBytes > 0 {
		deleteBodyBytesTotal.Add(float64(bodyBytes))
	}
}

// RecordAdmissionRejected increments the admission-rejection counter.
func RecordAdmissionRejected() {
	requestLimitRejected.Inc()
}

// ObserveParseDuration records how long line protocol parsing took.
func ObserveParseDuration(d time.Duration) {
	lineProtocolParseDuration.Observe(d.Seconds())
}

// Handler returns an http.Handler serving the registered collectors in the
// Prometheus exposition format, for mounting at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
