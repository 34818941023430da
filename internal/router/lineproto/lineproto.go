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

// Package lineproto converts InfluxDB line protocol text into per-table
// MutableBatches. It wraps influxdata/line-protocol/v2's token-scanning
// Decoder (which knows nothing about duplicate keys or type conflicts) and
// layers the duplicate-field, duplicate-tag, and tag/field-collision rules
// on top, the way the ClusterCockpit ingester layers its own
// selector-building logic on the same decoder.
package lineproto

import (
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"

	"coreingest/internal/ingest/columnar"
	"coreingest/internal/ingesterr"
	"coreingest/internal/router/precision"
)

// Stats summarizes one Convert call.
type Stats struct {
	NumLines  int
	NumFields int
}

// LinesConverter turns line-protocol text into per-table MutableBatches.
type LinesConverter struct {
	defaultTimestamp time.Time
	wireUnit         lineprotocol.Precision
}

// New returns a LinesConverter that stamps points lacking a timestamp with
// defaultTimestamp, and interprets points that do carry one as being
// expressed in prec.
func New(defaultTimestamp time.Time, prec precision.Precision) *LinesConverter {
	return &LinesConverter{defaultTimestamp: defaultTimestamp, wireUnit: wireUnitOf(prec)}
}

func wireUnitOf(p precision.Precision) lineprotocol.Precision {
	switch p {
	case precision.Seconds:
		return lineprotocol.Second
	case precision.Milliseconds:
		return lineprotocol.Millisecond
	case precision.Microseconds:
		return lineprotocol.Microsecond
	default:
		return lineprotocol.Nanosecond
	}
}

func parseErr(msg string) error {
	return ingesterr.New(ingesterr.KindParseLineProtocol, msg)
}

func wrapParseErr(err error, msg string) error {
	return ingesterr.Wrap(ingesterr.KindParseLineProtocol, err, msg)
}

func convertFieldValue(v lineprotocol.Value) (columnar.Value, error) {
	switch v.Kind() {
	case lineprotocol.Float:
		return columnar.F64Value(v.FloatV()), nil
	case lineprotocol.Int:
		return columnar.I64Value(v.IntV()), nil
	case lineprotocol.Uint:
		return columnar.U64Value(v.UintV()), nil
	case lineprotocol.Bool:
		return columnar.BoolValue(v.BoolV()), nil
	case lineprotocol.String:
		return columnar.StringValue(v.StringV()), nil
	default:
		return columnar.Value{}, parseErr("unsupported field value kind")
	}
}

// Convert parses lp and returns one MutableBatch per measurement (table).
func (c *LinesConverter) Convert(lp string) (map[string]*columnar.MutableBatch, Stats, error) {
	dec := lineprotocol.NewDecoderWithBytes([]byte(lp))
	batches := make(map[string]*columnar.MutableBatch)
	var stats Stats

	for dec.Next() {
		measurement, err := dec.Measurement()
		if err != nil {
			return nil, stats, wrapParseErr(err, "reading measurement")
		}
		table := string(measurement)

		values := make(map[string]columnar.Value)
		isTag := make(map[string]bool)

		for {
			key, val, err := dec.NextTag()
			if err != nil {
				return nil, stats, wrapParseErr(err, "reading tag")
			}
			if key == nil {
				break
			}
			k := string(key)
			if k == columnar.TimeColumn {
				return nil, stats, parseErr("ColumnNameTime: 'time' is a reserved column name")
			}
			if isTag[k] {
				return nil, stats, parseErr("DuplicateTag: tag key " + k + " repeated")
			}
			isTag[k] = true
			values[k] = columnar.TagValue(string(val))
		}

		for {
			key, val, err := dec.NextField()
			if err != nil {
				return nil, stats, wrapParseErr(err, "reading field")
			}
			if key == nil {
				break
			}
			k := string(key)
			if k == columnar.TimeColumn {
				return nil, stats, parseErr("ColumnNameTime: 'time' is a reserved column name")
			}
			if isTag[k] {
				return nil, stats, parseErr("TypeMismatch: " + k + " used as both tag and field")
			}

			fv, err := convertFieldValue(val)
			if err != nil {
				return nil, stats, err
			}

			existing, seen := values[k]
			switch {
			case !seen:
				values[k] = fv
				stats.NumFields++
			case existing.Type != fv.Type:
				return nil, stats, parseErr("ConflictedFieldTypes: field " + k + " has conflicting types on one line")
			case existing != fv:
				// Same type, different value: last one wins.
				values[k] = fv
			default:
				// Same type and value: coalesce, no-op.
			}
		}

		ts, err := dec.Time(c.wireUnit, c.defaultTimestamp)
		if err != nil {
			return nil, stats, wrapParseErr(err, "reading timestamp")
		}
		values[columnar.TimeColumn] = columnar.TimestampValue(ts.UnixNano())

		b, ok := batches[table]
		if !ok {
			b = columnar.NewMutableBatch()
			batches[table] = b
		}
		if err := b.AppendRow(values); err != nil {
			return nil, stats, wrapParseErr(err, "appending row")
		}
		stats.NumLines++
	}
	return batches, stats, nil
}
