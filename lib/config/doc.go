// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package config holds the host-side settings for locating and
// supervising the mist worker.
//
// A host works with no configuration at all: [Default] mirrors the
// layout games ship with (the worker in a "mist" directory beside the
// game's working directory) and the timeouts the worker protocol was
// tuned for. A YAML file named by the --config flag or MIST_CONFIG may
// replace any of these, and MIST_* environment variables are applied
// last so a single run can be adjusted without editing the file.
//
// ${HOME}, ${PWD} and ${VAR:-default} patterns are expanded in path
// fields after loading.
package config
