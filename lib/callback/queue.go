// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package callback

import (
	"sync"

	"github.com/libretro/mist/lib/codec"
)

// Entry is one buffered event.
type Entry struct {
	// Source is the SDK user handle that produced the event.
	Source uint64
	// Kind is the platform callback identifier.
	Kind uint32
	// Data is the encoded callback payload, decoded by the consumer
	// according to Kind.
	Data codec.RawMessage
}

// Queue is a FIFO of entries. Safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	entries []Entry
	head    int
}

// Push appends an entry.
func (q *Queue) Push(entry Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, entry)
}

// Next returns the head entry without removing it. ok is false when
// the queue is empty.
func (q *Queue) Next() (entry Entry, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head == len(q.entries) {
		return Entry{}, false
	}
	return q.entries[q.head], true
}

// Advance removes the head entry. It reports false when the queue was
// already empty.
func (q *Queue) Advance() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head == len(q.entries) {
		return false
	}
	q.entries[q.head] = Entry{}
	q.head++
	if q.head == len(q.entries) {
		q.entries = q.entries[:0]
		q.head = 0
	} else if q.head >= 64 && q.head*2 >= len(q.entries) {
		remaining := copy(q.entries, q.entries[q.head:])
		q.entries = q.entries[:remaining]
		q.head = 0
	}
	return true
}

// Len reports the number of unconsumed entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries) - q.head
}

// Reset drops every entry.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.entries)
	q.entries = q.entries[:0]
	q.head = 0
}
