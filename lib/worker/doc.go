// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package worker is the runtime of the mist worker process: the side
// that owns the platform SDK session.
//
// [Run] starts the session, tells the host whether it succeeded (the
// handshake is the first frame the worker writes), binds a handler for
// every operation in [catalog.Operations], and then runs the main loop:
//
//  1. Serve requests, waiting at most one poll interval for the first.
//  2. Pump the SDK and forward its callbacks to the host as events.
//  3. When input is initialized, sample controllers and publish the
//     state to the hot channel.
//
// The loop ends when the host sends the exit operation, when the
// inbound stream ends (the host died or closed the pipe), or when the
// context is cancelled. The SDK session is shut down on every path.
//
// The worker's stdout is the transport. Nothing else may write to it;
// logs go to stderr.
package worker
