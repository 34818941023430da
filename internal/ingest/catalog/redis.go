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

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Evaler abstracts the minimal surface we need from a Redis client.
// RedisStore wraps any client exposing Eval (e.g. *redis.Client).
type Evaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// GoRedisEvaler adapts a *redis.Client to Evaler.
type GoRedisEvaler struct {
	client *redis.Client
}

// NewGoRedisEvaler dials a Redis client at addr. Dialing is lazy; no network
// round trip happens until the first Eval call.
func NewGoRedisEvaler(addr string) *GoRedisEvaler {
	return &GoRedisEvaler{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Eval runs the script through the wrapped client.
func (g *GoRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return g.client.Eval(ctx, script, keys, args...).Result()
}

// RedisStore applies sort key updates idempotently using a Lua script:
//  1. SETNX update:<partition_id>:<update_id> 1
//  2. If set -> SET sortkey:<partition_id> <joined columns>
//  3. EXPIRE the marker (TTL) for leak protection
//
// If SETNX fails (already applied), the script is a no-op and returns 0.
type RedisStore struct {
	client    Evaler
	markerTTL time.Duration
}

// NewRedisStore returns a Store backed by client, idempotency markers expiring
// after markerTTL (default 24h if non-positive).
func NewRedisStore(client Evaler, markerTTL time.Duration) *RedisStore {
	if markerTTL <= 0 {
		markerTTL = 24 * time.Hour
	}
	return &RedisStore{client: client, markerTTL: markerTTL}
}

// sortKeyLuaScript performs the idempotent update. Returns 1 if applied, 0 if
// already applied.
const sortKeyLuaScript = `
local sortKeyKey = KEYS[1]
local markerKey = KEYS[2]
local sortKey = ARGV[1]
local ttlSeconds = tonumber(ARGV[2])
local set = redis.call('SETNX', markerKey, 1)
if set == 1 then
  redis.call('SET', sortKeyKey, sortKey)
  if ttlSeconds and ttlSeconds > 0 then
    redis.call('EXPIRE', markerKey, ttlSeconds)
  end
  return 1
else
  return 0
end
`

// SortKeyKey returns the Redis key holding a partition's persisted sort key.
func SortKeyKey(partitionID int64) string {
	return fmt.Sprintf("sortkey:%s", strconv.FormatInt(partitionID, 10))
}

// UpdateMarkerKey returns the Redis key used as the idempotency marker for a
// given partition + update id pair.
func UpdateMarkerKey(partitionID int64, updateID string) string {
	return fmt.Sprintf("update:%s:%s", strconv.FormatInt(partitionID, 10), updateID)
}

// UpdateSortKey applies entries using one EVAL per update. Callers that need
// lower round-trip latency can pipeline externally.
func (r *RedisStore) UpdateSortKey(ctx context.Context, updates []SortKeyUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	for _, u := range updates {
		if u.UpdateID == "" {
			return errors.New("catalog: SortKeyUpdate.UpdateID must be set")
		}
		keys := []string{SortKeyKey(u.PartitionID), UpdateMarkerKey(u.PartitionID, u.UpdateID)}
		args := []interface{}{strings.Join(u.SortKey, ","), int(r.markerTTL.Seconds())}
		if _, err := r.client.Eval(ctx, sortKeyLuaScript, keys, args...); err != nil {
			return fmt.Errorf("catalog: redis eval partition=%d update=%s: %w", u.PartitionID, u.UpdateID, err)
		}
	}
	return nil
}
