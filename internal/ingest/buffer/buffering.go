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

// Package buffer implements the partition buffer's three-state lifecycle:
// Buffering, Snapshot, Persisting. Go has no typestate/sum-type mechanism,
// so each state is its own struct and a transition method is defined only
// on the state that legally has it — calling code that only ever holds a
// *Snapshot simply has no way to call Write. Each state is a plain
// data-holding struct with no lock of its own; the sequence range is a plain
// value updated on each write, and callers sharing a Buffering across
// goroutines serialize access themselves.
package buffer

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow/memory"
	"go.uber.org/zap"

	"coreingest/internal/ingest/columnar"
	"coreingest/pkg/seqrange"
)

// Buffering is the open, writable state. New partitions start here.
type Buffering struct {
	mutable  *columnar.MutableBatch
	seqRange seqrange.Range
	logger   *zap.Logger
}

// Option configures a Buffering at construction time.
type Option func(*Buffering)

// WithLogger injects a logger for buffer lifecycle events (snapshot
// transitions). The zero Buffering logs nothing.
func WithLogger(l *zap.Logger) Option {
	return func(b *Buffering) { b.logger = l }
}

// New returns an empty Buffering state with an empty sequence range.
func New(opts ...Option) *Buffering {
	b := &Buffering{mutable: columnar.NewMutableBatch(), seqRange: seqrange.Empty(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SequenceRange returns the range of sequence numbers observed so far.
func (b *Buffering) SequenceRange() seqrange.Range { return b.seqRange }

// RowCount reports how many rows have been written.
func (b *Buffering) RowCount() int { return b.mutable.RowCount() }

// Write appends row under sequence number n. Panics if n is less than the
// maximum sequence number already observed: out-of-order writes are a
// caller contract violation, not a recoverable error.
func (b *Buffering) Write(row map[string]columnar.Value, n int64) error {
	if !b.seqRange.IsEmpty() && n < b.seqRange.Max() {
		panic(fmt.Sprintf("buffer: sequence number %d is less than current max %d", n, b.seqRange.Max()))
	}
	if err := b.mutable.AppendRow(row); err != nil {
		return err
	}
	b.seqRange = b.seqRange.Observe(n)
	return nil
}

// WriteBatch appends every row of batch under a single sequence number n,
// the same contract as Write but for a whole MutableBatch at once (the
// shape a DML handler receives from the line-protocol front-end).
func (b *Buffering) WriteBatch(batch *columnar.MutableBatch, n int64) error {
	if !b.seqRange.IsEmpty() && n < b.seqRange.Max() {
		panic(fmt.Sprintf("buffer: sequence number %d is less than current max %d", n, b.seqRange.Max()))
	}
	if err := b.mutable.ExtendFrom(batch); err != nil {
		return err
	}
	b.seqRange = b.seqRange.Observe(n)
	return nil
}

// GetQueryData freezes the current rows into a temporary RecordBatch for
// reading. The buffer itself remains open for further writes; unlike
// Snapshot/Persisting, consecutive calls are not pointer-equal since the
// underlying data can have changed between calls.
func (b *Buffering) GetQueryData(pool memory.Allocator) ([]*columnar.RecordBatch, error) {
	rb, err := b.mutable.Freeze(pool)
	if err != nil {
		return nil, err
	}
	return []*columnar.RecordBatch{rb}, nil
}

// Snapshot freezes the buffer into an immutable Snapshot state. If the
// buffer holds zero rows, it returns (nil, false, nil): the caller keeps
// using the original Buffering value, unchanged, rather than transitioning.
func (b *Buffering) Snapshot(pool memory.Allocator) (*Snapshot, bool, error) {
	if b.mutable.RowCount() == 0 {
		return nil, false, nil
	}
	rb, err := b.mutable.Freeze(pool)
	if err != nil {
		return nil, false, err
	}
	seqMin, seqMax, _ := b.seqRange.MinMax()
	b.logger.Debug("buffer transitioned to snapshot",
		zap.Int("row_count", int(rb.NumRows())),
		zap.Int64("seq_min", seqMin),
		zap.Int64("seq_max", seqMax),
	)
	return &Snapshot{batches: []*columnar.RecordBatch{rb}, seqRange: b.seqRange}, true, nil
}
