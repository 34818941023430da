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

package buffer

import (
	"github.com/google/uuid"

	"coreingest/internal/ingest/columnar"
	"coreingest/pkg/seqrange"
)

// Snapshot holds an ordered list of shared, immutable RecordBatches. It is
// queryable but no longer accepts writes.
type Snapshot struct {
	batches  []*columnar.RecordBatch
	seqRange seqrange.Range
}

// SequenceRange returns the range of sequence numbers carried over from
// Buffering.
func (s *Snapshot) SequenceRange() seqrange.Range { return s.seqRange }

// GetQueryData returns the shared RecordBatches. Two consecutive calls
// return the same slice of the same *RecordBatch pointers: no copying, no
// re-freezing.
func (s *Snapshot) GetQueryData() []*columnar.RecordBatch { return s.batches }

// IntoPersisting is the only legal transition out of Snapshot. It is
// infallible and moves the RecordBatches by reference: object_uuid is
// minted fresh here, at the point of persisting assignment.
func (s *Snapshot) IntoPersisting(shardID, partitionID, tableID int64, tableName string) *Persisting {
	return &Persisting{
		ShardID:     shardID,
		PartitionID: partitionID,
		TableID:     tableID,
		TableName:   tableName,
		ObjectUUID:  uuid.New(),
		batches:     s.batches,
		seqRange:    s.seqRange,
	}
}
