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

// QueryableBatch is the union of one or more RecordBatches sharing a
// widened schema.
type QueryableBatch struct {
	batches []*RecordBatch
	schema  Schema
}

// NewQueryableBatch merges the schemas of batches (failing on type
// conflicts) and returns the union.
func NewQueryableBatch(batches []*RecordBatch) (*QueryableBatch, error) {
	var merged Schema
	for i, b := range batches {
		if i == 0 {
			merged = b.Schema()
			continue
		}
		m, err := merged.Merge(b.Schema())
		if err != nil {
			return nil, err
		}
		merged = m
	}
	return &QueryableBatch{batches: append([]*RecordBatch{}, batches...), schema: merged}, nil
}

// Schema returns the merged schema.
func (q *QueryableBatch) Schema() Schema { return q.schema }

// PrimaryKey returns the columns (tags + time) that identify a unique row.
func (q *QueryableBatch) PrimaryKey() []string { return q.schema.PrimaryKey() }

// Batches returns the underlying RecordBatches, in the order supplied.
func (q *QueryableBatch) Batches() []*RecordBatch { return q.batches }

// NumRows sums the row count across all batches.
func (q *QueryableBatch) NumRows() int64 {
	var n int64
	for _, b := range q.batches {
		n += b.NumRows()
	}
	return n
}
