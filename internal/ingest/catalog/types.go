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

// Package catalog persists the sort key the compaction driver assigns to a
// partition. The compaction driver never talks to it directly: it only
// returns a catalog_update value that a caller (the DML handler, in this
// module) passes on to Store.UpdateSortKey.
package catalog

import "context"

// SortKeyUpdate is the adapter-facing shape for a single per-partition sort
// key write.
//
// Fields:
//   - PartitionID: the partition whose catalog sort key is being set.
//   - SortKey: the ordered column list to record.
//   - UpdateID: a globally unique idempotency key for this update. Re-using
//     the same id for a retried update makes the operation a no-op.
//
// Notes:
//   - Callers are responsible for generating stable UpdateIDs across
//     retries; two compaction runs over the same persisting batch must not
//     double-apply a sort key change.
type SortKeyUpdate struct {
	PartitionID int64
	SortKey     []string
	UpdateID    string
}

// Store is the minimal API supported by all catalog adapters. Implementations
// must apply each update atomically with respect to its idempotency key, and
// the operation must be safe to retry.
type Store interface {
	UpdateSortKey(ctx context.Context, updates []SortKeyUpdate) error
}
