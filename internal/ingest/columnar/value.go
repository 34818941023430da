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

// Value is a single typed column value as accepted by MutableBatch.AppendRow.
// Exactly one of the typed fields is meaningful, selected by Type.
type Value struct {
	Type Type
	F64  float64
	I64  int64
	U64  uint64
	Bool bool
	Str  string // also backs TypeTag and TypeTimestamp-as-string is not used; timestamps use I64 nanoseconds
}

func F64Value(v float64) Value  { return Value{Type: TypeF64, F64: v} }
func I64Value(v int64) Value    { return Value{Type: TypeI64, I64: v} }
func U64Value(v uint64) Value   { return Value{Type: TypeU64, U64: v} }
func BoolValue(v bool) Value    { return Value{Type: TypeBool, Bool: v} }
func StringValue(v string) Value { return Value{Type: TypeString, Str: v} }
func TagValue(v string) Value   { return Value{Type: TypeTag, Str: v} }

// TimestampValue builds a TypeTimestamp value from a nanosecond count.
func TimestampValue(nanos int64) Value { return Value{Type: TypeTimestamp, I64: nanos} }
