// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"testing"
)

// SegmentDir creates a directory for shared-memory segment files and
// removes it when the test completes. It prefers /dev/shm so tests
// exercise the same tmpfs the worker uses in production.
func SegmentDir(t *testing.T) string {
	t.Helper()
	parent := ""
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		parent = "/dev/shm"
	}
	directory, err := os.MkdirTemp(parent, "mist-test-")
	if err != nil {
		t.Fatalf("creating segment directory: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(directory) })
	return directory
}
