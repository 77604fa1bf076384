// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/libretro/mist/lib/clock"
	"github.com/libretro/mist/lib/codec"
	"github.com/libretro/mist/lib/frame"
	"github.com/libretro/mist/lib/protocol"
	"github.com/libretro/mist/lib/result"
)

// HandlerFunc serves one operation with encoded arguments. A nil
// value with a nil error is sent as an empty response.
type HandlerFunc func(ctx context.Context, args codec.RawMessage) (any, error)

// ErrClosed is returned by Poll and Serve once the inbound stream has
// ended.
var ErrClosed = errors.New("rpc: inbound stream closed")

// ServerConfig wires a Server.
type ServerConfig struct {
	// Writer is the outbound stream (the worker's stdout).
	Writer *frame.Writer

	// Receiver reads the inbound stream (the worker's stdin).
	Receiver *Receiver

	Clock  clock.Clock
	Logger *slog.Logger
}

type binding struct {
	descriptor Descriptor
	handler    HandlerFunc
}

// Server dispatches requests to handlers. Handlers must be registered
// before the first Poll or Serve.
type Server struct {
	writer   *frame.Writer
	inbound  <-chan *protocol.Envelope
	receiver *Receiver
	bindings map[protocol.CallID]binding
	clock    clock.Clock
	logger   *slog.Logger
}

// NewServer returns a Server.
func NewServer(config ServerConfig) *Server {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		writer:   config.Writer,
		inbound:  config.Receiver.Envelopes(),
		receiver: config.Receiver,
		bindings: make(map[protocol.CallID]binding),
		clock:    config.Clock,
		logger:   config.Logger,
	}
}

// Handle binds fn to op.
func Handle[A, R any](server *Server, op Operation[A, R], fn func(ctx context.Context, args A) (R, error)) {
	server.HandleRaw(op.Descriptor(), func(ctx context.Context, raw codec.RawMessage) (any, error) {
		var args A
		if len(raw) > 0 {
			if err := codec.Unmarshal(raw, &args); err != nil {
				return nil, result.New(result.ErrInternal, "%s: decoding arguments: %v", op.Name, err)
			}
		}
		value, err := fn(ctx, args)
		if err != nil {
			return nil, err
		}
		if _, unit := any(value).(Unit); unit {
			return nil, nil
		}
		return value, nil
	})
}

// HandleRaw binds handler to the operation described by descriptor.
// Panics on a second binding for the same operation.
func (s *Server) HandleRaw(descriptor Descriptor, handler HandlerFunc) {
	if existing, exists := s.bindings[descriptor.ID]; exists {
		panic(fmt.Sprintf("rpc.Server: duplicate handler for %q (id %d, already bound to %q)",
			descriptor.Name, descriptor.ID, existing.descriptor.Name))
	}
	s.bindings[descriptor.ID] = binding{descriptor: descriptor, handler: handler}
}

// Poll waits up to timeout for a request, then serves it and every
// request already queued behind it without waiting further. It
// returns the number of requests served. A non-positive timeout never
// waits. Returns ErrClosed once the inbound stream has ended.
func (s *Server) Poll(ctx context.Context, timeout time.Duration) (int, error) {
	served := 0

	if timeout > 0 {
		timer := s.clock.NewTimer(timeout)
		select {
		case envelope, ok := <-s.inbound:
			timer.Stop()
			if !ok {
				return served, s.closedError()
			}
			s.dispatch(ctx, envelope)
			served++
		case <-timer.C:
			return served, nil
		case <-ctx.Done():
			timer.Stop()
			return served, ctx.Err()
		}
	}

	for {
		select {
		case envelope, ok := <-s.inbound:
			if !ok {
				return served, s.closedError()
			}
			s.dispatch(ctx, envelope)
			served++
		default:
			return served, nil
		}
	}
}

// Serve dispatches requests until the stream ends or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	for {
		select {
		case envelope, ok := <-s.inbound:
			if !ok {
				return s.closedError()
			}
			s.dispatch(ctx, envelope)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Server) closedError() error {
	if err := s.receiver.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return ErrClosed
}

// Emit sends an event to the host.
func (s *Server) Emit(event protocol.Event) error {
	return s.write(protocol.NewEvent(event))
}

// WriteEnvelope sends a pre-built envelope. The worker uses it for
// the handshake.
func (s *Server) WriteEnvelope(envelope *protocol.Envelope) error {
	return s.write(envelope)
}

func (s *Server) write(envelope *protocol.Envelope) error {
	payload, err := protocol.Encode(envelope)
	if err != nil {
		return err
	}
	if err := s.writer.WriteFrame(payload); err != nil {
		return fmt.Errorf("writing %s: %w", envelope.Kind, err)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, envelope *protocol.Envelope) {
	if envelope.Kind != protocol.KindRequest {
		s.logger.Warn("ignoring non-request envelope", "kind", envelope.Kind)
		return
	}
	request := envelope.Request

	bound, exists := s.bindings[request.Call]
	if !exists {
		s.logger.Warn("request for unknown operation", "call_id", request.Call, "seq", request.Sequence)
		s.respond(protocol.Response{
			Call:     request.Call,
			Sequence: request.Sequence,
			Error:    protocol.FailureOf(result.New(result.ErrInternal, "unknown operation %d", request.Call)),
		}, "unknown")
		return
	}
	name := bound.descriptor.Name

	value, err := s.invoke(ctx, bound, request.Args)
	if bound.descriptor.OneWay {
		if err != nil {
			s.logger.Warn("one-way operation failed", "call", name, "error", err)
		}
		return
	}

	response := protocol.Response{Call: request.Call, Sequence: request.Sequence}
	if err == nil && value != nil {
		encoded, marshalErr := codec.Marshal(value)
		if marshalErr != nil {
			err = result.New(result.ErrInternal, "%s: encoding result: %v", name, marshalErr)
		} else {
			response.Value = encoded
		}
	}
	if err != nil {
		s.logger.Debug("operation failed", "call", name, "error", err)
		response.Error = protocol.FailureOf(err)
	}
	s.respond(response, name)
}

func (s *Server) invoke(ctx context.Context, bound binding, args codec.RawMessage) (value any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("handler panicked",
				"call", bound.descriptor.Name,
				"panic", recovered,
				"stack", string(debug.Stack()),
			)
			value = nil
			err = result.New(result.ErrInternal, "%s: handler panicked: %v", bound.descriptor.Name, recovered)
		}
	}()
	return bound.handler(ctx, args)
}

func (s *Server) respond(response protocol.Response, name string) {
	if err := s.write(protocol.NewResponse(response)); err != nil {
		if errors.Is(err, io.ErrClosedPipe) {
			s.logger.Debug("host gone before response", "call", name)
			return
		}
		s.logger.Warn("failed to write response", "call", name, "error", err)
	}
}
