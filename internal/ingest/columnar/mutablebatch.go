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

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

type column struct {
	field  Field
	values []Value
	valid  []bool
}

// MutableBatch is a row-appendable columnar buffer for one table. Columns
// are added lazily as rows introduce them; rows that predate a column see
// it as null.
type MutableBatch struct {
	order   []string
	columns map[string]*column
	numRows int
}

// NewMutableBatch returns an empty batch.
func NewMutableBatch() *MutableBatch {
	return &MutableBatch{columns: make(map[string]*column)}
}

// RowCount reports the number of rows appended so far.
func (b *MutableBatch) RowCount() int { return b.numRows }

// Schema returns the batch's current column schema, in first-seen order.
func (b *MutableBatch) Schema() Schema {
	fields := make([]Field, 0, len(b.order))
	for _, name := range b.order {
		fields = append(fields, b.columns[name].field)
	}
	s, _ := NewSchema(fields) // columns are unique by construction
	return s
}

// AppendRow appends one row. values maps column name to its value for this
// row; columns absent from values receive a null for this row. A "time"
// entry, if present, must be TypeTimestamp — the column name is reserved.
func (b *MutableBatch) AppendRow(values map[string]Value) error {
	if v, ok := values[TimeColumn]; ok && v.Type != TypeTimestamp {
		return fmt.Errorf("columnar: column %q is reserved for timestamps, got %s", TimeColumn, v.Type)
	}
	for name, v := range values {
		col, ok := b.columns[name]
		if !ok {
			col = &column{
				field: Field{Name: name, Type: v.Type},
				// Backfill prior rows as null.
				values: make([]Value, b.numRows),
				valid:  make([]bool, b.numRows),
			}
			b.columns[name] = col
			b.order = append(b.order, name)
		} else if col.field.Type != v.Type {
			return fmt.Errorf("columnar: column %q: type mismatch, existing %s vs new %s", name, col.field.Type, v.Type)
		}
	}
	for _, name := range b.order {
		col := b.columns[name]
		if v, ok := values[name]; ok {
			col.values = append(col.values, v)
			col.valid = append(col.valid, true)
		} else {
			col.values = append(col.values, Value{})
			col.valid = append(col.valid, false)
		}
	}
	b.numRows++
	return nil
}

// ExtendFrom appends other's rows after self's, union-widening the schema:
// columns present in only one side get nulls for the rows from the other
// side. Columns present in both must agree on semantic type.
func (b *MutableBatch) ExtendFrom(other *MutableBatch) error {
	for _, name := range other.order {
		oc := other.columns[name]
		if existing, ok := b.columns[name]; ok {
			if existing.field.Type != oc.field.Type {
				return fmt.Errorf("columnar: extend_from column %q: type mismatch, existing %s vs incoming %s", name, existing.field.Type, oc.field.Type)
			}
			continue
		}
		b.columns[name] = &column{
			field:  oc.field,
			values: make([]Value, b.numRows),
			valid:  make([]bool, b.numRows),
		}
		b.order = append(b.order, name)
	}

	for _, name := range b.order {
		col := b.columns[name]
		oc, ok := other.columns[name]
		for i := 0; i < other.numRows; i++ {
			if ok && i < len(oc.values) && oc.valid[i] {
				col.values = append(col.values, oc.values[i])
				col.valid = append(col.valid, true)
			} else {
				col.values = append(col.values, Value{})
				col.valid = append(col.valid, false)
			}
		}
	}
	b.numRows += other.numRows
	return nil
}

// Freeze builds an immutable RecordBatch snapshot of the current rows using
// pool for Arrow array allocation.
func (b *MutableBatch) Freeze(pool memory.Allocator) (*RecordBatch, error) {
	if pool == nil {
		pool = memory.NewGoAllocator()
	}
	schema := b.Schema()
	arrowFields := make([]arrow.Field, len(schema.fields))
	for i, f := range schema.fields {
		arrowFields[i] = arrow.Field{Name: f.Name, Type: arrowType(f.Type), Nullable: true}
	}
	arrSchema := arrow.NewSchema(arrowFields, nil)
	builder := array.NewRecordBuilder(pool, arrSchema)
	defer builder.Release()

	for i, name := range schema.fields {
		col := b.columns[name.Name]
		fb := builder.Field(i)
		for row := 0; row < b.numRows; row++ {
			if !col.valid[row] {
				fb.AppendNull()
				continue
			}
			v := col.values[row]
			switch name.Type {
			case TypeF64:
				fb.(*array.Float64Builder).Append(v.F64)
			case TypeI64:
				fb.(*array.Int64Builder).Append(v.I64)
			case TypeTimestamp:
				fb.(*array.TimestampBuilder).Append(arrow.Timestamp(v.I64))
			case TypeU64:
				fb.(*array.Uint64Builder).Append(v.U64)
			case TypeBool:
				fb.(*array.BooleanBuilder).Append(v.Bool)
			case TypeString, TypeTag:
				fb.(*array.StringBuilder).Append(v.Str)
			}
		}
	}

	rec := builder.NewRecord()
	return &RecordBatch{rec: rec, schema: schema}, nil
}

func arrowType(t Type) arrow.DataType {
	switch t {
	case TypeF64:
		return arrow.PrimitiveTypes.Float64
	case TypeI64:
		return arrow.PrimitiveTypes.Int64
	case TypeU64:
		return arrow.PrimitiveTypes.Uint64
	case TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ns
	case TypeString, TypeTag:
		return arrow.BinaryTypes.String
	default:
		return arrow.BinaryTypes.String
	}
}
