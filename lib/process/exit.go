// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
)

// Exit codes of the worker binary.
const (
	// ExitClean follows an exit request or end of input.
	ExitClean = 0
	// ExitRefused is used when the worker is launched by hand without
	// the launch secret, or when setup fails before the handshake.
	ExitRefused = 1
)

// Fatal writes "error: err" to stderr and exits with ExitRefused. Use
// it in main for errors that occur before the logger exists.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(ExitRefused)
}
