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

// Package admission bounds the number of in-flight write requests with a
// counting semaphore built on a buffered channel: TryAcquire sends a token,
// Release receives one back. TryAcquire must never block, which a channel
// send/receive on a buffered channel gives for free via the select/default
// idiom.
package admission

import "go.uber.org/zap"

// Semaphore bounds concurrent admissions to a fixed capacity.
type Semaphore struct {
	tokens chan struct{}
	logger *zap.Logger
}

// Option configures a Semaphore at construction time.
type Option func(*Semaphore)

// WithLogger injects a logger for admission-rejection events. The zero
// Semaphore logs nothing.
func WithLogger(l *zap.Logger) Option {
	return func(s *Semaphore) { s.logger = l }
}

// New returns a Semaphore admitting at most capacity concurrent holders.
func New(capacity int, opts ...Option) *Semaphore {
	if capacity < 1 {
		capacity = 1
	}
	s := &Semaphore{tokens: make(chan struct{}, capacity), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TryAcquire attempts to admit one holder without blocking. Returns false if
// the semaphore is at capacity.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.tokens <- struct{}{}:
		return true
	default:
		s.logger.Debug("admission rejected", zap.Int("in_use", s.InUse()), zap.Int("capacity", s.Capacity()))
		return false
	}
}

// Release returns one admission slot. Must be called exactly once per
// successful TryAcquire.
func (s *Semaphore) Release() {
	<-s.tokens
}

// InUse returns the number of currently admitted holders.
func (s *Semaphore) InUse() int {
	return len(s.tokens)
}

// Capacity returns the maximum number of concurrent holders.
func (s *Semaphore) Capacity() int {
	return cap(s.tokens)
}
