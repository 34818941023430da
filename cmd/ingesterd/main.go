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

// Package main is the entry point for the ingest write-router daemon: it
// wires together the in-process DML handler (buffer, sort-merge compaction,
// catalog) and the HTTP front door, serves traffic, and flushes every
// partition on shutdown so nothing buffered is lost.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"coreingest/internal/ingest/catalog"
	"coreingest/internal/ingest/compact/sortmerge"
	"coreingest/internal/ingest/dml"
	"coreingest/internal/ingest/metrics"
	"coreingest/internal/router/httpapi"
)

func main() {
	httpAddr := flag.String("http_addr", ":8080", "HTTP listen address for the write router")
	metricsAddr := flag.String("metrics_addr", ":9090", "If non-empty, expose Prometheus /metrics on this address")
	maxRequests := flag.Int("max_requests", 64, "Maximum number of concurrent in-flight write/delete requests")
	maxRequestBytes := flag.Int64("max_request_bytes", 64<<20, "Maximum accepted (decompressed) request body size in bytes")
	shardCount := flag.Int("shard_count", 16, "Number of lock-striped partition buckets")
	redisAddr := flag.String("catalog_redis_addr", "", "If non-empty, persist sort-key updates to this Redis address; otherwise the catalog is in-memory only")
	flushInterval := flag.Duration("flush_interval", 5*time.Second, "How often every partition's buffer is snapshotted and compacted")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("could not construct logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.SetConfigGauge("max_requests", float64(*maxRequests))
	metrics.SetConfigGauge("max_request_bytes", float64(*maxRequestBytes))
	metrics.SetConfigGauge("shard_count", float64(*shardCount))
	metrics.SetConfigGaugeDuration("flush_interval", *flushInterval)

	var catalogStore catalog.Store
	if *redisAddr != "" {
		catalogStore = catalog.NewRedisStore(catalog.NewGoRedisEvaler(*redisAddr), 24*time.Hour)
	}

	handler, err := dml.NewInProcessHandler(*shardCount, sortmerge.New(), catalogStore, dml.WithLogger(logger))
	if err != nil {
		log.Fatalf("could not construct ingest handler: %v", err)
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				log.Printf("metrics server on %s stopped: %v", *metricsAddr, err)
			}
		}()
	}

	server := httpapi.NewServer(httpapi.Config{
		Handler:         handler,
		MaxRequests:     *maxRequests,
		MaxRequestBytes: *maxRequestBytes,
		Logger:          logger,
	})

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	httpServer := &http.Server{
		Addr:         *httpAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	flushDone := make(chan struct{})
	flushStop := make(chan struct{})
	go runFlushLoop(handler, *flushInterval, flushStop, flushDone)

	go func() {
		fmt.Printf("ingest write router listening on %s\n", *httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not listen on %s: %v", *httpAddr, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	fmt.Println("\nshutting down ingest write router...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	shutdownErr := httpServer.Shutdown(ctx)

	close(flushStop)
	<-flushDone
	if shutdownErr != nil {
		log.Fatalf("server shutdown failed: %v", shutdownErr)
	}
	fmt.Println("ingest write router stopped.")
}

// runFlushLoop periodically drains every partition this process holds a
// buffer for, so buffered rows eventually land as compacted RecordBatches
// even without an external flush trigger. It exits once stop is closed,
// running one final flush pass first so nothing buffered is lost.
func runFlushLoop(handler *dml.InProcessHandler, interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			flushAllOnce(handler)
		case <-stop:
			flushAllOnce(handler)
			return
		}
	}
}

func flushAllOnce(handler *dml.InProcessHandler) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := handler.FlushAll(ctx, fmt.Sprintf("flush-%d", time.Now().UnixNano())); err != nil {
		log.Printf("flush pass failed: %v", err)
	}
}
