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

// Package literal implements the InfluxQL literal value model: Duration,
// Number, and the Literal union used by the delete predicate front-end and
// (eventually) the query path. Ported from the InfluxQL parser's literal
// grammar, not copied: this package only needs the value model, not the
// combinator parser that produces it, so Parse here is a small hand-written
// scanner rather than a port of the original's nom-based grammar.
package literal

import (
	"fmt"
	"strconv"
	"strings"
)

// Nanosecond unit conversion constants, mirroring InfluxQL's duration units.
const (
	NanosPerMicro = 1000
	NanosPerMilli = 1000 * NanosPerMicro
	NanosPerSec   = 1000 * NanosPerMilli
	NanosPerMin   = 60 * NanosPerSec
	NanosPerHour  = 60 * NanosPerMin
	NanosPerDay   = 24 * NanosPerHour
	NanosPerWeek  = 7 * NanosPerDay
)

// Duration is an InfluxQL duration literal, stored in nanoseconds.
type Duration int64

type durationUnit struct {
	nanos int64
	name  string
}

// divisors, largest unit first; used for both parsing and display.
var divisors = []durationUnit{
	{NanosPerWeek, "w"},
	{NanosPerDay, "d"},
	{NanosPerHour, "h"},
	{NanosPerMin, "m"},
	{NanosPerSec, "s"},
	{NanosPerMilli, "ms"},
	{NanosPerMicro, "us"},
	{1, "ns"},
}

// String renders d as a greatest-unit-first decomposition, e.g.
// "20w6d13h11m10s9ms8us500ns". The zero duration prints as "0s".
func (d Duration) String() string {
	if d == 0 {
		return "0s"
	}
	var b strings.Builder
	remaining := int64(d)
	for _, u := range divisors {
		if int64(d) < u.nanos {
			// Skip units larger than the whole duration; they can never
			// contribute a non-zero count (the test is against the original
			// total, not the running remainder).
			continue
		}
		units := remaining / u.nanos
		if units > 0 {
			fmt.Fprintf(&b, "%d%s", units, u.name)
			remaining -= units * u.nanos
		}
	}
	return b.String()
}

// ParseDuration parses one or more concatenated "<integer><unit>" fragments
// (e.g. "3h25m", "10h3m2s") and sums them in nanoseconds. Recognized units:
// ns, us, µs, ms, s, m, h, d, w.
func ParseDuration(s string) (Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("literal: empty duration")
	}
	var total int64
	rest := s
	for len(rest) > 0 {
		n, unit, tail, err := singleDurationFragment(rest)
		if err != nil {
			return 0, fmt.Errorf("literal: invalid duration %q: %w", s, err)
		}
		total += n * unit
		rest = tail
	}
	return Duration(total), nil
}

// singleDurationFragment parses one leading "<integer><unit>" fragment,
// returning the integer, the unit's nanosecond multiplier, and the
// unconsumed remainder.
func singleDurationFragment(s string) (value int64, unitNanos int64, rest string, err error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, 0, "", fmt.Errorf("expected digits at %q", s)
	}
	value, err = strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, 0, "", err
	}
	remainder := s[i:]
	// Longest-match-first so "ms"/"us" are not mistaken for a bare "s"/"u".
	switch {
	case strings.HasPrefix(remainder, "ns"):
		return value, 1, remainder[2:], nil
	case strings.HasPrefix(remainder, "µs"):
		return value, NanosPerMicro, remainder[len("µs"):], nil
	case strings.HasPrefix(remainder, "us"):
		return value, NanosPerMicro, remainder[2:], nil
	case strings.HasPrefix(remainder, "ms"):
		return value, NanosPerMilli, remainder[2:], nil
	case strings.HasPrefix(remainder, "s"):
		return value, NanosPerSec, remainder[1:], nil
	case strings.HasPrefix(remainder, "m"):
		return value, NanosPerMin, remainder[1:], nil
	case strings.HasPrefix(remainder, "h"):
		return value, NanosPerHour, remainder[1:], nil
	case strings.HasPrefix(remainder, "d"):
		return value, NanosPerDay, remainder[1:], nil
	case strings.HasPrefix(remainder, "w"):
		return value, NanosPerWeek, remainder[1:], nil
	default:
		return 0, 0, "", fmt.Errorf("unknown duration unit at %q", remainder)
	}
}

// HasDurationSuffix reports whether s looks like a duration fragment (used
// by the literal disambiguation order in Parse): a run of digits followed
// immediately by a recognized unit.
func HasDurationSuffix(s string) bool {
	_, _, rest, err := singleDurationFragment(s)
	if err != nil {
		return false
	}
	// A pure unsigned integer ("42") has no unit suffix at all; require that
	// parsing consumed a unit, i.e. the fragment is shorter than s minus the
	// digit run, which singleDurationFragment already enforces by erroring
	// when no unit matches.
	return rest != s
}
