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

// Package sortkey computes and adjusts the column order batches are sorted
// and deduplicated by.
package sortkey

import (
	"sort"

	"github.com/apache/arrow/go/v17/arrow/array"

	"coreingest/internal/ingest/columnar"
)

// ComputeSortKey derives a sort key from the schema's primary-key columns,
// ordered by ascending estimated cardinality (ties broken lexicographically
// for determinism), with "time" always last.
func ComputeSortKey(schema columnar.Schema, batches []*columnar.RecordBatch) []string {
	var nonTime []string
	for _, c := range schema.PrimaryKey() {
		if c != columnar.TimeColumn {
			nonTime = append(nonTime, c)
		}
	}

	cardinality := make(map[string]int, len(nonTime))
	for _, c := range nonTime {
		cardinality[c] = estimateCardinality(c, batches)
	}

	sort.Slice(nonTime, func(i, j int) bool {
		ci, cj := cardinality[nonTime[i]], cardinality[nonTime[j]]
		if ci != cj {
			return ci < cj
		}
		return nonTime[i] < nonTime[j]
	})

	if _, hasTime := schema.Column(columnar.TimeColumn); hasTime {
		nonTime = append(nonTime, columnar.TimeColumn)
	}
	return nonTime
}

// estimateCardinality counts distinct non-null string values of column name
// across batches. Tag columns are always string-valued.
func estimateCardinality(name string, batches []*columnar.RecordBatch) int {
	seen := make(map[string]struct{})
	for _, b := range batches {
		rec := b.Record()
		fields := rec.Schema().Fields()
		idx := -1
		for i, f := range fields {
			if f.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		col, ok := rec.Column(idx).(*array.String)
		if !ok {
			continue
		}
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				continue
			}
			seen[col.Value(i)] = struct{}{}
		}
	}
	return len(seen)
}

// AdjustSortKeyColumns walks existing, keeping columns still present in
// presentPK, then inserts any presentPK columns missing from existing
// immediately before "time". catalogUpdate is non-nil iff new columns were
// appended. Columns in existing but absent from presentPK are dropped from
// dataSortKey, but the caller is responsible for not narrowing the catalog's
// own record of existing: "no narrowing" applies to what is stored, not to
// what this call returns for the current data sort key.
func AdjustSortKeyColumns(existing []string, presentPK []string) (dataSortKey []string, catalogUpdate []string) {
	presentSet := make(map[string]bool, len(presentPK))
	for _, c := range presentPK {
		presentSet[c] = true
	}
	existingSet := make(map[string]bool, len(existing))
	for _, c := range existing {
		existingSet[c] = true
	}

	var preserved []string
	for _, c := range existing {
		if presentSet[c] {
			preserved = append(preserved, c)
		}
	}

	var newCols []string
	for _, c := range presentPK {
		if !existingSet[c] {
			newCols = append(newCols, c)
		}
	}

	timeIdx := -1
	for i, c := range preserved {
		if c == columnar.TimeColumn {
			timeIdx = i
			break
		}
	}

	if timeIdx >= 0 {
		dataSortKey = append(dataSortKey, preserved[:timeIdx]...)
		dataSortKey = append(dataSortKey, newCols...)
		dataSortKey = append(dataSortKey, preserved[timeIdx:]...)
	} else {
		dataSortKey = append(dataSortKey, preserved...)
		dataSortKey = append(dataSortKey, newCols...)
	}

	if len(newCols) > 0 {
		catalogUpdate = dataSortKey
	}
	return dataSortKey, catalogUpdate
}
