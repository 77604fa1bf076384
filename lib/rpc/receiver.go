// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/libretro/mist/lib/codec"
	"github.com/libretro/mist/lib/frame"
	"github.com/libretro/mist/lib/protocol"
)

// InboundCapacity bounds the envelopes buffered between the reading
// goroutine and the consumer. When it is full the reader stops
// reading and the peer's writes block.
const InboundCapacity = 64

// Receiver reads envelopes from a stream on its own goroutine.
type Receiver struct {
	envelopes chan *protocol.Envelope
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	err       error
	logger    *slog.Logger
}

// NewReceiver starts reading r. The goroutine exits when r ends or
// fails, or when Stop is called and it next tries to deliver.
func NewReceiver(r io.Reader, logger *slog.Logger) *Receiver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	receiver := &Receiver{
		envelopes: make(chan *protocol.Envelope, InboundCapacity),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger,
	}
	go receiver.run(frame.NewReader(r))
	return receiver
}

func (r *Receiver) run(frames *frame.Reader) {
	defer close(r.done)
	defer close(r.envelopes)

	for {
		payload, err := frames.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.err = err
				r.logger.Warn("inbound stream failed", "error", err)
			} else {
				r.logger.Debug("inbound stream closed")
			}
			return
		}

		envelope, err := protocol.Decode(payload)
		if err != nil {
			r.logger.Warn("discarding malformed envelope", "error", err, "length", len(payload))
			if diagnostic, diagErr := codec.Diagnose(payload); diagErr == nil {
				r.logger.Debug("malformed envelope contents", "cbor", diagnostic)
			}
			continue
		}

		select {
		case r.envelopes <- envelope:
		case <-r.stop:
			return
		}
	}
}

// Envelopes delivers decoded envelopes in arrival order. It is closed
// when the stream ends.
func (r *Receiver) Envelopes() <-chan *protocol.Envelope {
	return r.envelopes
}

// Done is closed after the reading goroutine exits.
func (r *Receiver) Done() <-chan struct{} {
	return r.done
}

// Err returns why the stream ended: nil for a clean end of stream.
// Only meaningful after Done is closed.
func (r *Receiver) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Stop tells the goroutine to exit instead of delivering further
// envelopes. A goroutine blocked reading the stream exits only when
// the stream is closed.
func (r *Receiver) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}
