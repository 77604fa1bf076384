// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package rpc carries typed calls between a host and its worker over
// one framed duplex stream.
//
// The set of remote operations is closed and known at build time. Each
// is declared once as an [Operation] value, which fixes its wire
// identity, argument type and result type. The host calls it with the
// generic [Call]; the worker binds a handler to it with the generic
// [Handle]. Both sides share the declaration, so argument and result
// types cannot drift apart.
//
// # Host side
//
// A [Receiver] owns the inbound stream. Its goroutine reads frames,
// decodes envelopes and hands them to the [Client] over a bounded
// channel; malformed envelopes are logged and skipped.
//
// The Client allows one call in flight. A call writes its request,
// then waits for the matching response, its deadline, context
// cancellation, or the end of the stream. Events that arrive during
// the wait are pushed onto the callback queue and the wait continues.
// Responses that do not match the in-flight call (a late answer to a
// call that already timed out) are dropped. Operations declared OneWay
// are written and not waited on.
//
// # Worker side
//
// A [Server] dispatches requests in arrival order. [Server.Poll] waits
// up to a timeout for the first request and then services whatever
// else is already queued without waiting, so the worker's frame loop
// regains control promptly. Handler panics are reported to the caller
// as internal errors.
package rpc
