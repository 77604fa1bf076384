// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// mist is the worker process. The host library starts it with the
// launch secret as its only argument, speaks framed envelopes over its
// stdin and stdout, and reads its JSON logs from stderr. Started by
// hand it refuses to run.
//
// The worker owns the platform SDK session. This build drives the
// simulated SDK from lib/sdk/sim; MIST_SIM_PROFILE names a YAML
// profile describing the simulated world.
//
// Environment:
//
//	MIST_SIM_PROFILE   simulated SDK profile (default: built-in profile)
//	MIST_DEBUG         enable debug logging
//
// SIGINT is ignored so a Ctrl-C aimed at the game still lets the host
// shut the worker down in order. SIGTERM ends the session.
package main
