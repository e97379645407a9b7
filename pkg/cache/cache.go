// Copyright 2025 Edgewatch Systems GmbH
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

// Package cache implements a stale-serving TTL cache around a single
// external quantity. One mechanism, parameterized by TTL and value shape,
// instantiated once per tracked reading. Refresh is demand-driven on
// expiry; when a refresh fails the last good value is served instead so a
// flaky device API never turns into an empty report.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/edgewatch/edgewatch/pkg/eventlog"
	"github.com/edgewatch/edgewatch/pkg/metrics"
)

// ErrNoData is returned when no value has ever been fetched successfully
// and the current refresh attempt failed as well. Callers surface it as
// "unavailable"; a value is never fabricated.
var ErrNoData = errors.New("cache: no data available")

// RefreshFunc fetches a fresh value from the external source. It runs
// outside the cache lock and must honor ctx cancellation.
type RefreshFunc[T any] func(ctx context.Context) (T, error)

// Cached holds one externally sourced value with its freshness metadata.
// The mutex guards only in-memory bookkeeping; network I/O never executes
// while it is held, so a hung refresh cannot stall unrelated readers.
type Cached[T any] struct {
	name   string
	ttl    time.Duration
	events eventlog.Recorder
	now    func() time.Time

	mu        sync.Mutex
	value     T
	fetchedAt time.Time
	valid     bool
}

// Option customizes a Cached instance.
type Option[T any] func(*Cached[T])

// WithClock overrides the time source, used by tests to step through TTL
// expiry without sleeping.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cached[T]) {
		c.now = now
	}
}

// New creates a cache instance for one tracked quantity. name labels the
// instance in metrics and events; events receives the degradation warnings
// and may be nil.
func New[T any](name string, ttl time.Duration, events eventlog.Recorder, opts ...Option[T]) *Cached[T] {
	c := &Cached[T]{
		name:   name,
		ttl:    ttl,
		events: events,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value if it is still fresh, otherwise drives a
// refresh through refresh. On refresh failure a prior valid value is served
// stale with exactly one warning event per failed attempt; if no value has
// ever been fetched, ErrNoData is returned.
//
// Many readers may call Get concurrently. Duplicate refreshes on a
// simultaneous miss are accepted: the write under lock is safe regardless
// of ordering, and collapsing them would buy little for rare-writer
// scrape traffic.
func (c *Cached[T]) Get(ctx context.Context, refresh RefreshFunc[T]) (T, error) {
	c.mu.Lock()
	if c.valid && c.now().Sub(c.fetchedAt) < c.ttl {
		value := c.value
		c.mu.Unlock()
		metrics.IncCacheHit(c.name)
		return value, nil
	}
	c.mu.Unlock()

	metrics.IncCacheMiss(c.name)

	fresh, err := refresh(ctx)
	if err == nil {
		c.mu.Lock()
		c.value = fresh
		c.fetchedAt = c.now()
		c.valid = true
		c.mu.Unlock()
		return fresh, nil
	}

	metrics.IncCacheRefreshError(c.name)

	c.mu.Lock()
	if c.valid {
		stale := c.value
		c.mu.Unlock()
		metrics.IncCacheStaleServed(c.name)
		if c.events != nil {
			c.events.Record(eventlog.SeverityWarning,
				"serving stale %s value, refresh failed: %v", c.name, err)
		}
		return stale, nil
	}
	c.mu.Unlock()

	var zero T
	return zero, ErrNoData
}

// Peek returns the currently stored value without triggering a refresh,
// regardless of freshness. The boolean reports whether any value exists.
func (c *Cached[T]) Peek() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.valid
}
