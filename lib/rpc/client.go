// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/libretro/mist/lib/callback"
	"github.com/libretro/mist/lib/clock"
	"github.com/libretro/mist/lib/codec"
	"github.com/libretro/mist/lib/frame"
	"github.com/libretro/mist/lib/protocol"
	"github.com/libretro/mist/lib/result"
)

// DefaultTimeout is the response deadline for operations that do not
// declare their own.
const DefaultTimeout = 100 * time.Millisecond

// ClientConfig wires a Client.
type ClientConfig struct {
	// Writer is the outbound stream (the worker's stdin).
	Writer io.Writer

	// Receiver reads the inbound stream (the worker's stdout).
	Receiver *Receiver

	// Events receives every event envelope. Required.
	Events *callback.Queue

	// Alive probes the peer before each call. Nil assumes alive.
	Alive func() bool

	// Timeout replaces DefaultTimeout when positive.
	Timeout time.Duration

	Clock  clock.Clock
	Logger *slog.Logger
}

// Client issues calls to a worker. Safe for concurrent use; concurrent
// calls are serialized.
type Client struct {
	writer   *frame.Writer
	inbound  <-chan *protocol.Envelope
	receiver *Receiver
	events   *callback.Queue
	alive    func() bool
	timeout  time.Duration
	clock    clock.Clock
	logger   *slog.Logger

	// inFlight admits one waiting call at a time. Poll only drains
	// the inbound channel when it can take inFlight, so events are
	// queued in arrival order no matter which goroutine reads them.
	inFlight sync.Mutex
	sequence atomic.Uint64

	closed    chan struct{}
	closeOnce sync.Once
}

// NewClient returns a Client.
func NewClient(config ClientConfig) *Client {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{
		writer:   frame.NewWriter(config.Writer),
		inbound:  config.Receiver.Envelopes(),
		receiver: config.Receiver,
		events:   config.Events,
		alive:    config.Alive,
		timeout:  config.Timeout,
		clock:    config.Clock,
		logger:   config.Logger,
		closed:   make(chan struct{}),
	}
}

// Call invokes op and decodes its result.
func Call[A, R any](ctx context.Context, client *Client, op Operation[A, R], args A) (R, error) {
	var zero R
	raw, err := client.Do(ctx, op.Descriptor(), args)
	if err != nil {
		return zero, err
	}
	if len(raw) == 0 {
		return zero, nil
	}
	var value R
	if err := codec.Unmarshal(raw, &value); err != nil {
		return zero, result.New(result.ErrInternal, "%s: decoding result: %v", op.Name, err)
	}
	return value, nil
}

// Do invokes the operation described by descriptor with already-typed
// args and returns the encoded result. Generic tooling uses it
// directly; typed callers use Call.
func (c *Client) Do(ctx context.Context, descriptor Descriptor, args any) (codec.RawMessage, error) {
	if err := c.checkLive(); err != nil {
		return nil, err
	}

	var encodedArgs codec.RawMessage
	if descriptor.HasArgs() && args != nil {
		data, err := codec.Marshal(args)
		if err != nil {
			return nil, result.New(result.ErrInternal, "%s: encoding arguments: %v", descriptor.Name, err)
		}
		encodedArgs = data
	}

	if descriptor.OneWay {
		_, err := c.send(descriptor, encodedArgs)
		return nil, err
	}

	c.inFlight.Lock()
	defer c.inFlight.Unlock()

	sequence, err := c.send(descriptor, encodedArgs)
	if err != nil {
		return nil, err
	}

	timeout := descriptor.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	return c.await(ctx, descriptor, sequence, timeout)
}

func (c *Client) checkLive() error {
	select {
	case <-c.closed:
		return result.New(result.ErrLost, "client closed")
	default:
	}
	if c.alive != nil && !c.alive() {
		return result.ErrLost
	}
	return nil
}

func (c *Client) send(descriptor Descriptor, args codec.RawMessage) (uint64, error) {
	sequence := c.sequence.Add(1)
	payload, err := protocol.Encode(protocol.NewRequest(protocol.Request{
		Call:     descriptor.ID,
		Sequence: sequence,
		Args:     args,
	}))
	if err != nil {
		return 0, result.New(result.ErrInternal, "%s: encoding request: %v", descriptor.Name, err)
	}
	if err := c.writer.WriteFrame(payload); err != nil {
		return 0, result.Wrap(result.ErrLost, err)
	}
	c.logger.Debug("request sent", "call", descriptor.Name, "seq", sequence)
	return sequence, nil
}

func (c *Client) await(ctx context.Context, descriptor Descriptor, sequence uint64, timeout time.Duration) (codec.RawMessage, error) {
	timer := c.clock.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case envelope, ok := <-c.inbound:
			if !ok {
				return nil, c.lostError()
			}
			response := c.route(envelope)
			if response == nil {
				continue
			}
			if response.Call != descriptor.ID || response.Sequence != sequence {
				c.logger.Debug("discarding stale response",
					"call", descriptor.Name,
					"response_call", response.Call,
					"response_seq", response.Sequence,
					"want_seq", sequence,
				)
				continue
			}
			if response.Error != nil {
				return nil, response.Error.Err()
			}
			return response.Value, nil

		case <-timer.C:
			return nil, result.New(result.ErrTimeout, "%s: no response within %v", descriptor.Name, timeout)

		case <-ctx.Done():
			return nil, ctx.Err()

		case <-c.closed:
			return nil, result.New(result.ErrLost, "client closed during %s", descriptor.Name)
		}
	}
}

// route queues events and returns responses. Anything else is logged
// and dropped.
func (c *Client) route(envelope *protocol.Envelope) *protocol.Response {
	switch envelope.Kind {
	case protocol.KindEvent:
		c.events.Push(callback.Entry{
			Source: envelope.Event.Source,
			Kind:   envelope.Event.Kind,
			Data:   envelope.Event.Data,
		})
		return nil
	case protocol.KindResponse:
		return envelope.Response
	default:
		c.logger.Warn("unexpected envelope after handshake", "kind", envelope.Kind)
		return nil
	}
}

func (c *Client) lostError() error {
	if err := c.receiver.Err(); err != nil {
		return result.Wrap(result.ErrLost, err)
	}
	return result.New(result.ErrLost, "worker closed its output")
}

// Poll moves every envelope already received onto the callback queue
// without blocking. If a call is in flight, that call's wait does the
// routing instead and Poll returns immediately.
func (c *Client) Poll() {
	if !c.inFlight.TryLock() {
		return
	}
	defer c.inFlight.Unlock()

	for {
		select {
		case envelope, ok := <-c.inbound:
			if !ok {
				return
			}
			if response := c.route(envelope); response != nil {
				c.logger.Debug("discarding stale response", "response_call", response.Call, "response_seq", response.Sequence)
			}
		default:
			return
		}
	}
}

// Close fails any waiting call with ErrLost and rejects future calls.
// It does not close the underlying streams.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.receiver.Stop()
	})
}
