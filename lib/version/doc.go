// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package version carries build information for the mist worker and
// mistctl. The worker reports [Short] in its handshake so the host can
// log which build it is talking to.
//
// Variables are injected with -ldflags -X and default to "unknown" /
// "0.1.0-dev" in development builds and tests.
package version
