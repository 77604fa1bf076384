// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix && !linux

package hotchannel

import (
	"runtime"
	"sync/atomic"
	"time"
)

// spinInterval is how long a waiter sleeps between yields. Lock hold
// times are a single struct copy, so most waits end after one yield.
const spinInterval = 50 * time.Microsecond

func waitWord(word *uint32, value uint32, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for atomic.LoadUint32(word) == value {
		runtime.Gosched()
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(spinInterval)
	}
}

func wakeWord(*uint32) {}
