// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervisor starts, watches, and stops the worker process.
//
// [Start] launches the worker with the init secret as its only
// argument, connects its stdin and stdout as the framed transport
// (stderr stays attached to the host's stderr), and waits a bounded
// time for the handshake. Any failure after the process was started
// kills and reaps it before Start returns, so a failed start never
// leaves a stray worker behind.
//
// A running [Supervisor] exposes an [rpc.Client] whose every call
// first checks that the worker is still alive. [Supervisor.Stop] asks
// the worker to exit, waits a grace period polling for its exit, and
// kills it if it is still running.
//
// Lifecycle:
//
//	NotStarted → Spawning → AwaitingHandshake → Ready → Terminating → Terminated
//	                                              ↓
//	                                             Lost (worker exited on its own)
package supervisor
