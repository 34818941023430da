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

// Package dml is the boundary between the write router and the ingest
// core: a Handler interface the router calls, and one in-process
// implementation exercising buffer, sortkey, compact, and catalog. The
// caller only ever sees the interface; the real work happens one layer
// down.
package dml

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"coreingest/internal/ingest/buffer"
	"coreingest/internal/ingest/catalog"
	"coreingest/internal/ingest/columnar"
	"coreingest/internal/ingest/compact"
	"coreingest/internal/ingest/writesummary"
	"coreingest/internal/ingesterr"
	"coreingest/internal/router/shard"
	"coreingest/pkg/literal"
)

// DeleteClause is one "column op literal" term of a delete predicate,
// decoupled from the router's deletepred package so this package does not
// depend upward on the router layer.
type DeleteClause struct {
	Column string
	Op     string
	Value  literal.Literal
}

// DeletePredicate describes what a delete call should remove.
type DeletePredicate struct {
	StartNanos int64
	StopNanos  int64
	Clauses    []DeleteClause
}

// Handler is the DML boundary the write router calls.
type Handler interface {
	// Write appends tables (one MutableBatch per measurement) to namespace,
	// returning a WriteSummary describing every partition touched.
	Write(ctx context.Context, namespace string, tables map[string]*columnar.MutableBatch) (WriteSummary, error)
	// Delete removes rows matching pred from namespace/table.
	Delete(ctx context.Context, namespace, table string, pred DeletePredicate) error
}

// WriteSummary maps partition_id to the sequence range a write touched in
// that partition; an alias of writesummary.Summary so callers can pass a
// Handler's result straight to writesummary.Encode.
type WriteSummary = writesummary.Summary

// partitionState holds one partition's Buffering buffer. Access is
// serialized by its owning shard's mutex, the per-partition mutual-exclusion
// primitive, rather than its own lock: grouping partitions into a fixed
// number of lock stripes bounds total lock count regardless of how many
// partitions exist.
type partitionState struct {
	buffering *buffer.Buffering
	table     string
}

// shardBucket is one lock stripe: a mutex guarding every partition
// rendezvous-hashed into this bucket.
type shardBucket struct {
	mu         sync.Mutex
	partitions map[int64]*partitionState
}

// InProcessHandler is a single-process Handler: it shards partitions with
// shard.Ring into a fixed number of lock-striped buckets, keeps one
// Buffering buffer per partition, and drives compact.Driver to flush a
// partition on demand.
type InProcessHandler struct {
	ring      *shard.Ring
	buckets   []*shardBucket
	compactor *compact.Driver
	catalog   catalog.Store
	pool      memory.Allocator
	seq       int64
	sortKeys  sync.Map // int64 partition id -> []string, last catalog sort key we observed
	logger    *zap.Logger
}

// Option configures an InProcessHandler at construction time.
type Option func(*InProcessHandler)

// WithLogger injects a logger for write/flush/compaction events. It is
// forwarded to every Buffering buffer and to the compaction Driver. The
// zero InProcessHandler logs nothing.
func WithLogger(l *zap.Logger) Option {
	return func(h *InProcessHandler) { h.logger = l }
}

// NewInProcessHandler returns a Handler sharding across shardCount buckets,
// compacting with executor, and persisting sort key updates through
// catalogStore.
func NewInProcessHandler(shardCount int, executor compact.Executor, catalogStore catalog.Store, opts ...Option) (*InProcessHandler, error) {
	ring, err := shard.New(shardCount)
	if err != nil {
		return nil, err
	}
	buckets := make([]*shardBucket, ring.Len())
	for i := range buckets {
		buckets[i] = &shardBucket{partitions: make(map[int64]*partitionState)}
	}
	h := &InProcessHandler{
		ring:    ring,
		buckets: buckets,
		catalog: catalogStore,
		pool:    memory.NewGoAllocator(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.compactor = compact.NewDriver(executor, compact.WithLogger(h.logger))
	return h, nil
}

// PartitionID derives the partition a (namespace, table) pair maps to. It is
// exported so tests and operators can predict which buffer a table lands in.
func PartitionID(namespace, table string) int64 {
	return int64(xxhash.Sum64String(namespace + "/" + table))
}

// withPartition runs fn against the Buffering buffer for (namespace, table),
// holding that partition's shard bucket lock for the duration.
func (h *InProcessHandler) withPartition(namespace, table string, fn func(id int64, ps *partitionState)) {
	id := PartitionID(namespace, table)
	bucket := h.buckets[h.ring.AssignIndex(id)]

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	ps, ok := bucket.partitions[id]
	if !ok {
		ps = &partitionState{buffering: buffer.New(buffer.WithLogger(h.logger)), table: table}
		bucket.partitions[id] = ps
	}
	fn(id, ps)
}

func (h *InProcessHandler) nextSequence() int64 {
	return atomic.AddInt64(&h.seq, 1)
}

// Write implements Handler.
func (h *InProcessHandler) Write(ctx context.Context, namespace string, tables map[string]*columnar.MutableBatch) (WriteSummary, error) {
	summary := make(WriteSummary)
	for table, mb := range tables {
		if mb.RowCount() == 0 {
			continue
		}
		var id, n int64
		var writeErr error
		h.withPartition(namespace, table, func(pid int64, ps *partitionState) {
			id = pid
			// Drawn under the partition's lock so concurrent writes reach one
			// partition's buffer in sequence order.
			n = h.nextSequence()
			writeErr = ps.buffering.WriteBatch(mb, n)
		})

		if writeErr != nil {
			return nil, ingesterr.Wrap(ingesterr.KindWriteBuffer, writeErr, "writing to partition "+table)
		}
		summary.Observe(id, n)
	}
	return summary, nil
}

// Flush snapshots, persists, and compacts the named (namespace, table)
// partition, applying any resulting sort-key catalog update. Returns
// (nil, nil) if the partition has no buffered rows to flush.
func (h *InProcessHandler) Flush(ctx context.Context, namespace, table, updateID string) ([]*columnar.RecordBatch, error) {
	id := PartitionID(namespace, table)
	bucket := h.buckets[h.ring.AssignIndex(id)]
	snap, transitioned, table, err := h.snapshotPartition(bucket, id, table)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return nil, nil
	}
	return h.compactSnapshot(ctx, id, table, snap, updateID)
}

// FlushAll flushes every partition this process currently holds a buffer
// for, in no particular order. One updateID is derived per partition so a
// retried call after a partial failure does not double-apply a sort key
// change that already succeeded.
func (h *InProcessHandler) FlushAll(ctx context.Context, updateIDPrefix string) ([]*columnar.RecordBatch, error) {
	var all []*columnar.RecordBatch
	for _, bucket := range h.buckets {
		bucket.mu.Lock()
		ids := make([]int64, 0, len(bucket.partitions))
		for id := range bucket.partitions {
			ids = append(ids, id)
		}
		bucket.mu.Unlock()

		for _, id := range ids {
			snap, transitioned, table, err := h.snapshotPartition(bucket, id, "")
			if err != nil {
				return all, err
			}
			if !transitioned {
				continue
			}
			out, err := h.compactSnapshot(ctx, id, table, snap, fmt.Sprintf("%s-%d", updateIDPrefix, id))
			if err != nil {
				return all, err
			}
			all = append(all, out...)
		}
	}
	return all, nil
}

// snapshotPartition performs the Buffering-to-Snapshot hand-off for
// partition id under bucket's lock: the only step that must be mutually
// exclusive with a concurrent Write to the same partition. If the partition
// does not yet exist and table is non-empty, it is created empty (matching
// withPartition's own lazy-creation behavior) so Flush on an untouched table
// is a harmless no-op rather than a lookup failure.
func (h *InProcessHandler) snapshotPartition(bucket *shardBucket, id int64, table string) (*buffer.Snapshot, bool, string, error) {
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	ps, ok := bucket.partitions[id]
	if !ok {
		if table == "" {
			return nil, false, "", nil
		}
		ps = &partitionState{buffering: buffer.New(buffer.WithLogger(h.logger)), table: table}
		bucket.partitions[id] = ps
	}

	snap, transitioned, err := ps.buffering.Snapshot(h.pool)
	if err != nil {
		return nil, false, ps.table, ingesterr.Wrap(ingesterr.KindPartitionBatchWrite, err, "snapshotting partition "+ps.table)
	}
	if transitioned {
		ps.buffering = buffer.New(buffer.WithLogger(h.logger))
	}
	return snap, transitioned, ps.table, nil
}

// compactSnapshot drives compaction and the catalog update for a snapshot
// already handed off by snapshotPartition. Runs without holding any bucket
// lock, so it can overlap with writes to other partitions in the same
// bucket.
func (h *InProcessHandler) compactSnapshot(ctx context.Context, id int64, table string, snap *buffer.Snapshot, updateID string) ([]*columnar.RecordBatch, error) {
	persisting := snap.IntoPersisting(id, id, id, table)

	existing, _ := h.sortKeys.Load(id)
	var catalogSortKey []string
	if existing != nil {
		catalogSortKey = existing.([]string)
	}

	out, catalogUpdate, err := h.compactor.CompactPersistingBatch(ctx, persisting, catalogSortKey)
	if err != nil {
		return nil, ingesterr.Wrap(ingesterr.KindPartitionBatchWrite, err, "compacting partition "+table)
	}

	if len(catalogUpdate) > 0 {
		h.sortKeys.Store(id, catalogUpdate)
		if h.catalog != nil {
			upd := catalog.SortKeyUpdate{PartitionID: id, SortKey: catalogUpdate, UpdateID: updateID}
			if err := h.catalog.UpdateSortKey(ctx, []catalog.SortKeyUpdate{upd}); err != nil {
				return nil, ingesterr.Wrap(ingesterr.KindSchemaUnexpectedCatalog, err, "updating sort key catalog")
			}
		}
	}
	h.logger.Info("partition flushed",
		zap.Int64("partition_id", id),
		zap.String("table", table),
		zap.Int("output_batches", len(out)),
	)
	return out, nil
}

// Delete implements Handler. Partition-level delete tracking is future work;
// for now a delete is acknowledged without mutating any partition buffer.
func (h *InProcessHandler) Delete(ctx context.Context, namespace, table string, pred DeletePredicate) error {
	if table == "" {
		return ingesterr.New(ingesterr.KindParseDelete, "delete requires a target table")
	}
	h.logger.Info("delete acknowledged", zap.String("namespace", namespace), zap.String("table", table))
	return nil
}
