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

// Package writesummary tracks which partitions a write request touched and
// encodes that into the opaque token returned to clients in the
// X-IOx-Write-Token response header.
package writesummary

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"sort"

	"coreingest/pkg/seqrange"
)

// Summary maps partition_id to the SequenceNumberRange a write observed in
// that partition.
type Summary map[int64]seqrange.Range

// New returns an empty Summary.
func New() Summary {
	return make(Summary)
}

// Observe widens the range recorded for partitionID to include n.
func (s Summary) Observe(partitionID, n int64) {
	s[partitionID] = s[partitionID].Observe(n)
}

// Merge folds other's entries into s, widening any overlapping partitions.
func (s Summary) Merge(other Summary) {
	for id, r := range other {
		s[id] = s[id].Merge(r)
	}
}

// token layout: partition count (uvarint), then per partition in ascending
// partition_id order: partition_id, min, max, each zigzag-varint encoded.
// Fixed binary over JSON keeps the token compact and genuinely opaque, per
// the "opaque base64-like token" requirement.

// Encode renders s as an opaque, URL-safe token.
func Encode(s Summary) string {
	ids := make([]int64, 0, len(s))
	for id, r := range s {
		if r.IsEmpty() {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	buf := make([]byte, 0, 10+len(ids)*30)
	buf = binary.AppendUvarint(buf, uint64(len(ids)))
	for _, id := range ids {
		min, max, _ := s[id].MinMax()
		buf = binary.AppendVarint(buf, id)
		buf = binary.AppendVarint(buf, min)
		buf = binary.AppendVarint(buf, max)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Decode parses a token produced by Encode.
func Decode(token string) (Summary, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("writesummary: invalid token: %w", err)
	}

	n, k := binary.Uvarint(raw)
	if k <= 0 {
		return nil, fmt.Errorf("writesummary: invalid token: truncated count")
	}
	raw = raw[k:]

	out := New()
	for i := uint64(0); i < n; i++ {
		id, k := binary.Varint(raw)
		if k <= 0 {
			return nil, fmt.Errorf("writesummary: invalid token: truncated partition id")
		}
		raw = raw[k:]

		min, k := binary.Varint(raw)
		if k <= 0 {
			return nil, fmt.Errorf("writesummary: invalid token: truncated min")
		}
		raw = raw[k:]

		max, k := binary.Varint(raw)
		if k <= 0 {
			return nil, fmt.Errorf("writesummary: invalid token: truncated max")
		}
		raw = raw[k:]

		out[id] = seqrange.Empty().Observe(min).Observe(max)
	}
	return out, nil
}
