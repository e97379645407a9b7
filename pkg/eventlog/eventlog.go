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

// Package eventlog provides a fixed-capacity, thread-safe ring buffer of
// severity-tagged events. It is used to diagnose degraded states (stale
// cache serves, failed probes, status transitions) without persisting
// anything across restarts. Every recorded event is additionally forwarded
// best-effort to the platform log; the ring's correctness never depends on
// that sink.
package eventlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/edgewatch/edgewatch/pkg/constants"
	"go.uber.org/zap"
)

// Severity tags an event for export and sink forwarding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Entry is one recorded event. Entries are never mutated after insertion;
// they are only implicitly overwritten when the ring wraps.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
}

// Recorder is the write side of the event log. Components that only emit
// events depend on this interface rather than the concrete buffer.
type Recorder interface {
	Record(severity Severity, format string, args ...any)
}

// Buffer is a fixed-capacity circular event store. A single mutex guards
// the slot array, the write cursor and the live-count.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	cursor  int
	count   int

	log *zap.SugaredLogger
}

// New creates a Buffer with the given capacity. A capacity below one falls
// back to the default. log receives every event as a best-effort forward;
// it may be nil.
func New(capacity int, log *zap.SugaredLogger) *Buffer {
	if capacity < 1 {
		capacity = constants.DefaultEventLogCapacity
	}
	return &Buffer{
		entries: make([]Entry, capacity),
		log:     log,
	}
}

// Capacity returns the fixed number of slots.
func (b *Buffer) Capacity() int {
	return len(b.entries)
}

// Len returns the current number of live entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Record writes an event at the cursor, advancing it modulo capacity and
// saturating the live-count. The message is bounded; anything longer is
// truncated. Forwarding to the platform log happens after the ring write
// completes and outside the lock, so a slow sink cannot block recording.
func (b *Buffer) Record(severity Severity, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if len(message) > constants.MaxEventMessageLength {
		message = message[:constants.MaxEventMessageLength]
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Severity:  severity,
		Message:   message,
	}

	b.mu.Lock()
	b.entries[b.cursor] = entry
	b.cursor = (b.cursor + 1) % len(b.entries)
	if b.count < len(b.entries) {
		b.count++
	}
	b.mu.Unlock()

	b.forward(entry)
}

// forward hands the entry to the platform log. Fire-and-forget: errors or
// unavailability of the sink are ignored.
func (b *Buffer) forward(entry Entry) {
	if b.log == nil {
		return
	}
	switch entry.Severity {
	case SeverityCritical:
		b.log.Errorw(entry.Message, "severity", string(entry.Severity))
	case SeverityWarning:
		b.log.Warnw(entry.Message, "severity", string(entry.Severity))
	default:
		b.log.Infow(entry.Message, "severity", string(entry.Severity))
	}
}

// Export returns up to max entries in chronological order, oldest first.
// The snapshot is taken under the same lock that guards Record, so readers
// never observe a partially written entry.
func (b *Buffer) Export(max int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.count
	if max >= 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}

	capacity := len(b.entries)
	start := (b.cursor + capacity - n) % capacity

	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, b.entries[(start+i)%capacity])
	}
	return out
}
