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

// Package seqrange tracks the inclusive [min,max] range of write sequence
// numbers observed by a partition buffer. A buffer's SequenceNumberRange only
// ever widens: Observe never narrows it, and is idempotent for a value
// already inside the range.
package seqrange

// Range is an optional inclusive [Min,Max] bound over SequenceNumbers. The
// zero value is the empty range.
type Range struct {
	min, max int64
	nonEmpty bool
}

// Empty returns the empty range. Equal to the zero value; spelled out for
// callers that want the intent explicit.
func Empty() Range {
	return Range{}
}

// Observe widens r to include n, returning the updated range. Observing the
// same value (or any value already inside the range) leaves r unchanged.
func (r Range) Observe(n int64) Range {
	if !r.nonEmpty {
		return Range{min: n, max: n, nonEmpty: true}
	}
	out := r
	if n < out.min {
		out.min = n
	}
	if n > out.max {
		out.max = n
	}
	return out
}

// IsEmpty reports whether no SequenceNumber has been observed yet.
func (r Range) IsEmpty() bool { return !r.nonEmpty }

// MinMax returns the inclusive bounds. The second return value is false if r
// is empty.
func (r Range) MinMax() (min, max int64, ok bool) {
	if !r.nonEmpty {
		return 0, 0, false
	}
	return r.min, r.max, true
}

// Max returns the maximum observed SequenceNumber, or 0 if empty. Used by
// the buffer FSM's monotonicity check; callers must check IsEmpty first if
// the distinction between "empty" and "max is exactly 0" matters.
func (r Range) Max() int64 { return r.max }

// Merge returns the union of two ranges; either side may be empty.
func (r Range) Merge(other Range) Range {
	switch {
	case !r.nonEmpty:
		return other
	case !other.nonEmpty:
		return r
	}
	out := r
	if other.min < out.min {
		out.min = other.min
	}
	if other.max > out.max {
		out.max = other.max
	}
	return out
}
