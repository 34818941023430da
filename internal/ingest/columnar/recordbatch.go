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

package columnar

import "github.com/apache/arrow/go/v17/arrow"

// RecordBatch is an immutable, reference-counted snapshot of a MutableBatch.
// Retain/Release delegate straight to the wrapped arrow.Record. A Snapshot
// moves into Persisting without copying column data: the new state holds the
// same *RecordBatch pointers, and the refcount is left unchanged.
type RecordBatch struct {
	rec    arrow.Record
	schema Schema
}

// NewRecordBatch wraps an existing arrow.Record. Ownership of one reference
// transfers to the returned RecordBatch; the caller must not Release rec
// itself afterward.
func NewRecordBatch(rec arrow.Record, schema Schema) *RecordBatch {
	return &RecordBatch{rec: rec, schema: schema}
}

// NumRows returns the row count.
func (r *RecordBatch) NumRows() int64 { return r.rec.NumRows() }

// Schema returns the batch's column schema.
func (r *RecordBatch) Schema() Schema { return r.schema }

// Record exposes the underlying arrow.Record for the compaction executor.
func (r *RecordBatch) Record() arrow.Record { return r.rec }

// Retain increments the underlying record's reference count.
func (r *RecordBatch) Retain() { r.rec.Retain() }

// Release decrements the underlying record's reference count, freeing its
// buffers once it reaches zero.
func (r *RecordBatch) Release() { r.rec.Release() }
