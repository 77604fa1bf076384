// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds entrypoint helpers for the mist binaries: the
// pre-logger fatal path and the exit codes the worker uses to tell the
// host why it stopped.
package process
