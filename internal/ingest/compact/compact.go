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

// Package compact drives sort-merge-dedup compaction over a partition's
// queryable data. The actual merge work is delegated to an Executor, kept
// as an opaque collaborator: collect the eligible input, hand it to the
// collaborator as one batch operation, apply the result.
package compact

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"coreingest/internal/ingest/buffer"
	"coreingest/internal/ingest/columnar"
	"coreingest/internal/ingest/sortkey"
)

// Executor is the opaque collaborator capable of sorting and deduplicating
// a set of input RecordBatches by sortKey, keeping the row from the latest
// sequence on ties across the primary key columns.
type Executor interface {
	Compact(ctx context.Context, batches []*columnar.RecordBatch, sortKey []string, primaryKey []string) ([]*columnar.RecordBatch, error)
}

// Driver composes sort-key planning (package sortkey) with an Executor.
type Driver struct {
	executor Executor
	logger   *zap.Logger
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithLogger injects a logger for compaction-cycle events. The zero Driver
// logs nothing.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// NewDriver returns a Driver backed by executor.
func NewDriver(executor Executor, opts ...Option) *Driver {
	d := &Driver{executor: executor, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Compact sorts and deduplicates qb by sortKey using the configured
// Executor. Fails if qb has zero rows: callers must not persist empty
// buffers.
func (d *Driver) Compact(ctx context.Context, qb *columnar.QueryableBatch, sortKey []string) ([]*columnar.RecordBatch, error) {
	if qb.NumRows() == 0 {
		return nil, fmt.Errorf("compact: input batch is empty")
	}
	return d.executor.Compact(ctx, qb.Batches(), sortKey, qb.PrimaryKey())
}

// CompactPersistingBatch composes sort-key adjustment (package sortkey) and
// compaction for a Persisting buffer state:
//   - if catalogSortKey is non-empty, adjust it against the data's present
//     primary key and compact with the adjusted key;
//   - otherwise compute a fresh sort key and use it for both the data and
//     the catalog update.
//
// Returns the compacted output, the catalog update (nil if none is needed),
// and any error.
func (d *Driver) CompactPersistingBatch(ctx context.Context, p *buffer.Persisting, catalogSortKey []string) ([]*columnar.RecordBatch, []string, error) {
	qb, err := p.IntoData()
	if err != nil {
		return nil, nil, err
	}
	if qb.NumRows() == 0 {
		return nil, nil, fmt.Errorf("compact: persisting batch %s has no rows", p.ObjectUUID)
	}

	presentPK := qb.PrimaryKey()
	var dataSortKey, catalogUpdate []string
	if len(catalogSortKey) > 0 {
		dataSortKey, catalogUpdate = sortkey.AdjustSortKeyColumns(catalogSortKey, presentPK)
	} else {
		computed := sortkey.ComputeSortKey(qb.Schema(), qb.Batches())
		dataSortKey = computed
		catalogUpdate = computed
	}

	out, err := d.executor.Compact(ctx, qb.Batches(), dataSortKey, presentPK)
	if err != nil {
		d.logger.Error("compaction failed",
			zap.String("object_uuid", p.ObjectUUID.String()),
			zap.Error(err),
		)
		return nil, nil, err
	}
	d.logger.Debug("compacted persisting batch",
		zap.String("object_uuid", p.ObjectUUID.String()),
		zap.Int("output_batches", len(out)),
		zap.Strings("sort_key", dataSortKey),
	)
	return out, catalogUpdate, nil
}
