// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"fmt"

	"github.com/libretro/mist/lib/codec"
	"github.com/libretro/mist/lib/result"
)

// Version is bumped whenever the envelope or catalog changes
// incompatibly. The host refuses a worker reporting a different one.
const Version = 1

// Secret is the sole argument the host passes to the worker. The
// worker refuses to run without it. It guards against a user starting
// the worker by hand and is not a security boundary.
const Secret = "youarenotsupposedtorunmistdirectly"

// Kind tags an envelope.
type Kind uint8

const (
	// KindInitialized is the worker's successful handshake.
	KindInitialized Kind = 1
	// KindInitError is the worker's failed handshake. The worker exits
	// after sending it.
	KindInitError Kind = 2
	// KindRequest is a host call.
	KindRequest Kind = 3
	// KindResponse answers the request with the same sequence number.
	KindResponse Kind = 4
	// KindEvent is an asynchronous SDK callback.
	KindEvent Kind = 5
)

func (k Kind) String() string {
	switch k {
	case KindInitialized:
		return "initialized"
	case KindInitError:
		return "init_error"
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindEvent:
		return "event"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// CallID identifies a catalog operation.
type CallID uint16

// Envelope is the unit carried by one frame. Exactly the member named
// by Kind is set.
type Envelope struct {
	Kind        Kind         `cbor:"k"`
	Initialized *Initialized `cbor:"i,omitempty"`
	InitError   *InitError   `cbor:"x,omitempty"`
	Request     *Request     `cbor:"q,omitempty"`
	Response    *Response    `cbor:"r,omitempty"`
	Event       *Event       `cbor:"e,omitempty"`
}

// Initialized reports a ready worker.
type Initialized struct {
	ProtocolVersion uint32 `cbor:"protocol_version"`
	WorkerVersion   string `cbor:"worker_version"`
}

// InitError reports that the worker could not open its SDK session.
type InitError struct {
	Message string `cbor:"message"`
}

// Request invokes an operation.
type Request struct {
	Call     CallID           `cbor:"call"`
	Sequence uint64           `cbor:"seq"`
	Args     codec.RawMessage `cbor:"args,omitempty"`
}

// Response answers a request. Error is nil on success; Value is empty
// for operations without a return value.
type Response struct {
	Call     CallID           `cbor:"call"`
	Sequence uint64           `cbor:"seq"`
	Value    codec.RawMessage `cbor:"value,omitempty"`
	Error    *Failure         `cbor:"error,omitempty"`
}

// Event is an asynchronous callback from the platform SDK. Source is
// the SDK user handle that produced it.
type Event struct {
	Source uint64           `cbor:"source"`
	Kind   uint32           `cbor:"kind"`
	Data   codec.RawMessage `cbor:"data,omitempty"`
}

// Failure is a typed error on the wire.
type Failure struct {
	Namespace uint16 `cbor:"ns"`
	Code      uint16 `cbor:"code"`
	Message   string `cbor:"message,omitempty"`
}

// FailureOf converts err for transmission. Errors without a typed
// kind are sent as internal errors.
func FailureOf(err error) *Failure {
	typed := result.As(err)
	return &Failure{
		Namespace: uint16(typed.Namespace),
		Code:      uint16(typed.Code),
		Message:   typed.Detail(),
	}
}

// Err rebuilds the typed error on the receiving side.
func (f *Failure) Err() error {
	return &result.Error{
		Namespace: result.Namespace(f.Namespace),
		Code:      result.Code(f.Code),
		Message:   f.Message,
	}
}

// ErrMalformed reports an envelope whose Kind does not match its
// members.
var ErrMalformed = errors.New("protocol: malformed envelope")

// Encode serializes an envelope after checking its shape.
func Encode(envelope *Envelope) ([]byte, error) {
	if err := envelope.validate(); err != nil {
		return nil, err
	}
	return codec.Marshal(envelope)
}

// Decode parses and validates one envelope.
func Decode(data []byte) (*Envelope, error) {
	var envelope Envelope
	if err := codec.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := envelope.validate(); err != nil {
		return nil, err
	}
	return &envelope, nil
}

func (e *Envelope) validate() error {
	members := 0
	for _, set := range []bool{
		e.Initialized != nil,
		e.InitError != nil,
		e.Request != nil,
		e.Response != nil,
		e.Event != nil,
	} {
		if set {
			members++
		}
	}
	if members != 1 {
		return fmt.Errorf("%w: %s with %d members", ErrMalformed, e.Kind, members)
	}

	var present bool
	switch e.Kind {
	case KindInitialized:
		present = e.Initialized != nil
	case KindInitError:
		present = e.InitError != nil
	case KindRequest:
		present = e.Request != nil
	case KindResponse:
		present = e.Response != nil
	case KindEvent:
		present = e.Event != nil
	}
	if !present {
		return fmt.Errorf("%w: %s member missing", ErrMalformed, e.Kind)
	}
	return nil
}

// NewRequest wraps r.
func NewRequest(r Request) *Envelope { return &Envelope{Kind: KindRequest, Request: &r} }

// NewResponse wraps r.
func NewResponse(r Response) *Envelope { return &Envelope{Kind: KindResponse, Response: &r} }

// NewEvent wraps e.
func NewEvent(e Event) *Envelope { return &Envelope{Kind: KindEvent, Event: &e} }

// NewInitialized builds the success handshake for workerVersion.
func NewInitialized(workerVersion string) *Envelope {
	return &Envelope{Kind: KindInitialized, Initialized: &Initialized{
		ProtocolVersion: Version,
		WorkerVersion:   workerVersion,
	}}
}

// NewInitError builds the failure handshake.
func NewInitError(message string) *Envelope {
	return &Envelope{Kind: KindInitError, InitError: &InitError{Message: message}}
}
