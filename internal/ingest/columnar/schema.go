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

// Package columnar implements the row-appendable MutableBatch, its frozen
// RecordBatch counterpart, and the QueryableBatch union of RecordBatches
// that share a schema. RecordBatch wraps github.com/apache/arrow/go/v17: its
// arrow.Record already carries Retain/Release reference counting, which is
// exactly the mechanism needed to move RecordBatches between buffer states
// without copying column data.
package columnar

import "fmt"

// Type is the semantic type carried by a column. Tag is distinct from
// String: both store UTF-8 text, but Tag marks a column as part of the
// primary key for sort-key planning and deduplication.
type Type int

const (
	TypeF64 Type = iota
	TypeI64
	TypeU64
	TypeBool
	TypeString
	TypeTimestamp
	TypeTag
)

func (t Type) String() string {
	switch t {
	case TypeF64:
		return "f64"
	case TypeI64:
		return "i64"
	case TypeU64:
		return "u64"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeTimestamp:
		return "timestamp"
	case TypeTag:
		return "tag"
	default:
		return "unknown"
	}
}

// TimeColumn is the reserved name for a batch's single timestamp column.
const TimeColumn = "time"

// Field describes one column: its name and semantic type.
type Field struct {
	Name string
	Type Type
}

// Schema is the ordered, named set of columns a batch carries. Column
// order is insertion order (first-seen), not sorted, so two schemas built
// from the same rows in the same order compare equal field-for-field.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a Schema from an ordered field list. Duplicate names are
// an error.
func NewSchema(fields []Field) (Schema, error) {
	s := Schema{fields: make([]Field, 0, len(fields)), index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if _, ok := s.index[f.Name]; ok {
			return Schema{}, fmt.Errorf("columnar: duplicate column %q", f.Name)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// Fields returns the ordered column list. Callers must not mutate it.
func (s Schema) Fields() []Field { return s.fields }

// Column looks up a field by name.
func (s Schema) Column(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.fields) }

// PrimaryKey returns every tag column (insertion order) followed by "time"
// if present, matching spec's "primary key = tags + time" definition.
func (s Schema) PrimaryKey() []string {
	var pk []string
	for _, f := range s.fields {
		if f.Type == TypeTag {
			pk = append(pk, f.Name)
		}
	}
	if _, ok := s.index[TimeColumn]; ok {
		pk = append(pk, TimeColumn)
	}
	return pk
}

// Merge unions two schemas. A column present in both must agree on type;
// disagreement is reported as a TypeMismatch-flavored error by the caller's
// convention (this package returns a plain error; ingesterr.Kind mapping
// happens at the boundary that calls into this package with write-path
// context).
func (s Schema) Merge(other Schema) (Schema, error) {
	fields := make([]Field, 0, len(s.fields)+len(other.fields))
	fields = append(fields, s.fields...)
	seen := make(map[string]Type, len(s.fields))
	for _, f := range s.fields {
		seen[f.Name] = f.Type
	}
	for _, f := range other.fields {
		if existing, ok := seen[f.Name]; ok {
			if existing != f.Type {
				return Schema{}, fmt.Errorf("columnar: type mismatch for column %q: %s vs %s", f.Name, existing, f.Type)
			}
			continue
		}
		seen[f.Name] = f.Type
		fields = append(fields, f)
	}
	return NewSchema(fields)
}
