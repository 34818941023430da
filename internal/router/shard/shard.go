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

// Package shard assigns partitions to in-process shard buckets using
// rendezvous (highest random weight) hashing, so the mapping stays stable
// as the shard count changes instead of remapping everything the way a
// plain hash-mod-N would.
package shard

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-rendezvous"
)

// Ring assigns partition ids to one of a fixed set of named shard buckets.
type Ring struct {
	nodes   []string
	nodeIdx map[string]int
	rdv     *rendezvous.Rendezvous
}

// New builds a Ring over n shards, named "shard-0".."shard-(n-1)". n must be
// at least 1.
func New(n int) (*Ring, error) {
	if n < 1 {
		return nil, fmt.Errorf("shard: n must be >= 1, got %d", n)
	}
	nodes := make([]string, n)
	nodeIdx := make(map[string]int, n)
	for i := range nodes {
		nodes[i] = "shard-" + strconv.Itoa(i)
		nodeIdx[nodes[i]] = i
	}
	return &Ring{nodes: nodes, nodeIdx: nodeIdx, rdv: rendezvous.New(nodes, xxhash.Sum64String)}, nil
}

// Assign returns the shard bucket name owning partitionID.
func (r *Ring) Assign(partitionID int64) string {
	return r.rdv.Lookup(strconv.FormatInt(partitionID, 10))
}

// AssignIndex returns the shard bucket index (0..Len()-1) owning
// partitionID, for callers indexing directly into a per-shard slice of
// locks or maps instead of keying by name.
func (r *Ring) AssignIndex(partitionID int64) int {
	return r.nodeIdx[r.Assign(partitionID)]
}

// Len returns the number of shard buckets in the ring.
func (r *Ring) Len() int { return len(r.nodes) }
