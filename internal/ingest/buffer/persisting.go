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

// Persisting is the terminal, queryable state. It carries everything a
// Snapshot does, plus the identity handed to the persistence collaborator.
// object_uuid is unique across every PersistingBatch that has ever existed.
type Persisting struct {
	ShardID     int64
	PartitionID int64
	TableID     int64
	TableName   string
	ObjectUUID  uuid.UUID

	batches  []*columnar.RecordBatch
	seqRange seqrange.Range
}

// SequenceRange returns the range of sequence numbers carried from Snapshot.
func (p *Persisting) SequenceRange() seqrange.Range { return p.seqRange }

// GetQueryData returns the shared RecordBatches, pointer-identical across
// calls, same as Snapshot.
func (p *Persisting) GetQueryData() []*columnar.RecordBatch { return p.batches }

// IntoData extracts the immutable RecordBatch list as a QueryableBatch for
// the compaction driver.
func (p *Persisting) IntoData() (*columnar.QueryableBatch, error) {
	return columnar.NewQueryableBatch(p.batches)
}
