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

// Package deletepred parses the delete request's JSON envelope into a
// timestamp range plus a conjunction of "column op literal" clauses joined by
// " AND ", with an optional measurement (table name) clause pulled out of
// that conjunction. OR, NOT and parentheses are not parsed.
package deletepred

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"coreingest/internal/ingesterr"
	"coreingest/pkg/literal"
)

// Clause is one "column op literal" term of a delete predicate.
type Clause struct {
	Column string
	Op     string
	Value  literal.Literal
}

// Predicate is a parsed delete request: a timestamp range plus the boolean
// expression (as a conjunction of clauses) clients supplied.
type Predicate struct {
	StartNanos int64
	StopNanos  int64
	Table      string // empty if the predicate carried no _measurement clause
	Clauses    []Clause
}

// envelope is the wire shape of a delete request body.
type envelope struct {
	Start     string `json:"start"`
	Stop      string `json:"stop"`
	Predicate string `json:"predicate"`
}

// Parse decodes a delete request body into a Predicate.
func Parse(body []byte) (*Predicate, error) {
	var e envelope
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, ingesterr.Wrap(ingesterr.KindParseHttpDelete, err, "invalid delete request JSON")
	}

	start, err := parseTimestamp(e.Start)
	if err != nil {
		return nil, ingesterr.Wrap(ingesterr.KindParseHttpDelete, err, "invalid start timestamp")
	}
	stop, err := parseTimestamp(e.Stop)
	if err != nil {
		return nil, ingesterr.Wrap(ingesterr.KindParseHttpDelete, err, "invalid stop timestamp")
	}
	if stop < start {
		return nil, ingesterr.New(ingesterr.KindParseHttpDelete, "stop precedes start")
	}

	clauses, table, err := parsePredicateExpr(e.Predicate)
	if err != nil {
		return nil, err
	}

	return &Predicate{StartNanos: start, StopNanos: stop, Table: table, Clauses: clauses}, nil
}

// parseTimestamp accepts either an RFC3339 timestamp or a raw integer
// nanosecond count, matching the two forms InfluxDB's own delete API takes.
func parseTimestamp(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, err
	}
	return t.UnixNano(), nil
}

// parsePredicateExpr splits predicate on "AND" into individual
// "column op literal" clauses, pulling out a "_measurement = '...'" clause
// (if present) as the target table name rather than a literal column
// filter.
func parsePredicateExpr(predicate string) ([]Clause, string, error) {
	predicate = strings.TrimSpace(predicate)
	if predicate == "" {
		return nil, "", nil
	}

	var clauses []Clause
	var table string
	for _, part := range strings.Split(predicate, " AND ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		col, op, rawVal, err := splitClause(part)
		if err != nil {
			return nil, "", ingesterr.Wrap(ingesterr.KindParseDelete, err, "invalid predicate clause: "+part)
		}

		lit, err := literal.Parse(rawVal)
		if err != nil {
			return nil, "", ingesterr.Wrap(ingesterr.KindParseDelete, err, "invalid literal in clause: "+part)
		}

		if col == "_measurement" && op == "=" {
			if lit.Kind != literal.KindString {
				return nil, "", ingesterr.New(ingesterr.KindParseDelete, "_measurement clause must compare against a string literal")
			}
			table = lit.Str
			continue
		}
		clauses = append(clauses, Clause{Column: col, Op: op, Value: lit})
	}
	return clauses, table, nil
}

var operators = []string{"!=", "<=", ">=", "=~", "!~", "=", "<", ">"}

func splitClause(part string) (col, op, val string, err error) {
	for _, candidate := range operators {
		if idx := strings.Index(part, candidate); idx >= 0 {
			col = strings.TrimSpace(part[:idx])
			val = strings.TrimSpace(part[idx+len(candidate):])
			if col == "" || val == "" {
				continue
			}
			return col, candidate, val, nil
		}
	}
	return "", "", "", ingesterr.New(ingesterr.KindParseDelete, "no recognized operator in clause: "+part)
}
