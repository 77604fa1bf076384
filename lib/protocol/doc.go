// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines the messages exchanged between a host and
// its mist worker over the framed stdin/stdout channel.
//
// Each frame carries one CBOR-encoded [Envelope]. Its Kind says which
// of the optional members is present:
//
//   - KindInitialized, KindInitError: the handshake. Exactly one of
//     these is the worker's first message; nothing else is valid
//     before it.
//   - KindRequest: host to worker, names a catalog operation by
//     [CallID] and carries the encoded arguments.
//   - KindResponse: worker to host, echoes the request's CallID and
//     Sequence and carries either a value or a [Failure].
//   - KindEvent: worker to host, an asynchronous platform callback.
//
// The Sequence number is not needed to route responses (only one call
// is in flight at a time) but lets the host recognize and discard a
// late response to a call that already timed out.
package protocol
