// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

// HeaderLength is the size of the length prefix.
const HeaderLength = 4

// MaxPayload bounds a single frame. The largest legitimate payload is
// a list of a few hundred language codes or handles; anything near
// this limit is a corrupted stream.
const MaxPayload = 16 * 1024 * 1024

var (
	// ErrTruncated reports a stream that ended inside a frame.
	ErrTruncated = errors.New("frame: stream ended mid-frame")

	// ErrTooLarge reports a frame whose length exceeds MaxPayload.
	ErrTooLarge = errors.New("frame: payload exceeds maximum length")
)

type flusher interface {
	Flush() error
}

// Write writes one frame to w with a single Write call, then flushes
// w if it buffers.
func Write(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayload {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(payload))
	}
	buffer := make([]byte, HeaderLength+len(payload))
	binary.LittleEndian.PutUint32(buffer, uint32(len(payload)))
	copy(buffer[HeaderLength:], payload)
	if _, err := w.Write(buffer); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush frame: %w", err)
		}
	}
	return nil
}

// Read reads one frame from r. It returns io.EOF only when r ends
// cleanly between frames.
func Read(r io.Reader) ([]byte, error) {
	var header [HeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: partial header", ErrTruncated)
		}
		return nil, err
	}
	length := binary.LittleEndian.Uint32(header[:])
	if length > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: wanted %d payload bytes", ErrTruncated, length)
		}
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return payload, nil
}

// Writer serializes frames from multiple goroutines onto one stream.
// The worker's dispatch loop and its event emitter share one.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame writes payload as one frame.
func (w *Writer) WriteFrame(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Write(w.w, payload)
}

// Reader reads frames from a buffered stream. Not safe for concurrent
// use; each direction has exactly one reading goroutine.
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadFrame reads one frame. See Read for end-of-stream handling.
func (r *Reader) ReadFrame() ([]byte, error) {
	return Read(r.r)
}
