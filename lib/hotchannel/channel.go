// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package hotchannel

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Writer publishes values of T into a segment. Only one process may
// write a segment; a Writer is safe for use by one goroutine at a time
// per process (Publish serializes internally).
type Writer[T any] struct {
	segment *Segment
	mu      sync.Mutex
}

// NewWriter returns a writer over segment, which must have been created
// or opened for T.
func NewWriter[T any](segment *Segment) (*Writer[T], error) {
	if err := checkSegmentType[T](segment); err != nil {
		return nil, err
	}
	return &Writer[T]{segment: segment}, nil
}

// Publish copies value into the segment under the lock and then
// advances the generation. It returns the new generation.
//
// Publish fails with ErrSegmentRemoved once the owner has unlinked the
// segment file; nothing is written in that case.
func (w *Writer[T]) Publish(value *T) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed, err := w.segment.Removed()
	if err != nil {
		return 0, err
	}
	if removed {
		return 0, ErrSegmentRemoved
	}

	var generation uint64
	err = w.segment.access(func(data []byte) error {
		word := lockWordOf(data)
		if err := lockWord(word); err != nil {
			return err
		}
		*(*T)(payloadOf(data)) = *value
		unlockWord(word)
		generation = atomic.AddUint64(generationOf(data), 1)
		return nil
	})
	return generation, err
}

// Reader reads values of T from a segment, serving repeated reads from
// a local cache until the writer's generation moves.
type Reader[T any] struct {
	segment *Segment

	mu     sync.Mutex
	seen   uint64
	cached T
}

// NewReader returns a reader over segment, which must have been created
// or opened for T. Until the first publish, Read returns the zero value
// at generation 0.
func NewReader[T any](segment *Segment) (*Reader[T], error) {
	if err := checkSegmentType[T](segment); err != nil {
		return nil, err
	}
	return &Reader[T]{segment: segment}, nil
}

// Read returns the latest published value and its generation. When the
// generation has not changed since the previous Read, the cached value
// is returned without taking the inter-process lock.
func (r *Reader[T]) Read() (T, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.segment.access(func(data []byte) error {
		generation := atomic.LoadUint64(generationOf(data))
		if generation == r.seen {
			return nil
		}
		word := lockWordOf(data)
		if err := lockWord(word); err != nil {
			return err
		}
		r.cached = *(*T)(payloadOf(data))
		unlockWord(word)
		r.seen = generation
		return nil
	})
	if err != nil {
		var zero T
		return zero, r.seen, err
	}
	return r.cached, r.seen, nil
}

// Generation returns the generation of the value Read last returned.
func (r *Reader[T]) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen
}

func checkSegmentType[T any](segment *Segment) error {
	layout, err := LayoutOf[T]()
	if err != nil {
		return err
	}
	if layout != segment.Layout() {
		return fmt.Errorf("%w: segment %s holds %d bytes (%s), not %T", ErrLayoutMismatch,
			segment.Path(), segment.Layout().Size, segment.Layout().Fingerprint, *new(T))
	}
	return nil
}

func lockWordOf(data []byte) *uint32 {
	return (*uint32)(unsafe.Pointer(&data[offsetLock]))
}

func generationOf(data []byte) *uint64 {
	return (*uint64)(unsafe.Pointer(&data[offsetGeneration]))
}

func payloadOf(data []byte) unsafe.Pointer {
	return unsafe.Pointer(&data[HeaderSize])
}
