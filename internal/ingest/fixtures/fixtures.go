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

// Package fixtures collects the small row/line-protocol builders that would
// otherwise be copy-pasted at the top of every package's _test.go file:
// one-row MutableBatches, multi-row batches with a "tag1" tag column, and
// simple single- and multi-line line-protocol bodies. The batch builders take
// *testing.T, the shape every _test.go helper in this codebase already takes.
package fixtures

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"coreingest/internal/ingest/columnar"
)

// Row is one (tag, field, timestamp, value) tuple for OneRowBatch/MultiRowBatch.
type Row struct {
	Tag   string
	Field string
	Time  int64
	Value float64
}

// OneRowBatch builds a single-row MutableBatch with one tag column ("tag1")
// and one float field, tagged under "time" as the standard timestamp column.
func OneRowBatch(t *testing.T, r Row) *columnar.MutableBatch {
	t.Helper()
	mb := columnar.NewMutableBatch()
	require.NoError(t, mb.AppendRow(map[string]columnar.Value{
		"time":  columnar.TimestampValue(r.Time),
		"tag1":  columnar.TagValue(r.Tag),
		r.Field: columnar.F64Value(r.Value),
	}))
	return mb
}

// MultiRowBatch builds a MutableBatch from rows in order, widening the
// schema across calls the same way a real line-protocol body would.
func MultiRowBatch(t *testing.T, rows ...Row) *columnar.MutableBatch {
	t.Helper()
	mb := columnar.NewMutableBatch()
	for _, r := range rows {
		require.NoError(t, mb.AppendRow(map[string]columnar.Value{
			"time":  columnar.TimestampValue(r.Time),
			"tag1":  columnar.TagValue(r.Tag),
			r.Field: columnar.F64Value(r.Value),
		}))
	}
	return mb
}

// TablesOf wraps a single measurement name and MutableBatch into the
// map[string]*columnar.MutableBatch shape dml.Handler.Write expects.
func TablesOf(measurement string, mb *columnar.MutableBatch) map[string]*columnar.MutableBatch {
	return map[string]*columnar.MutableBatch{measurement: mb}
}

// SimpleLine renders one line-protocol line for measurement with a single
// tag and a single float field, nanosecond timestamp ts.
func SimpleLine(measurement, tag, field string, value float64, ts int64) string {
	return fmt.Sprintf("%s,tag1=%s %s=%g %d", measurement, tag, field, value, ts)
}

// MultiLineBody joins n distinct lines for the same measurement, each with
// its own tag value and an increasing timestamp, the shape a batched client
// write would send.
func MultiLineBody(measurement string, n int) string {
	lines := make([]string, n)
	for i := 0; i < n; i++ {
		lines[i] = SimpleLine(measurement, fmt.Sprintf("host%d", i), "value", float64(i), int64(i+1))
	}
	return strings.Join(lines, "\n")
}
