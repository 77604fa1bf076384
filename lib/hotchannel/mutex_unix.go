// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package hotchannel

import (
	"sync/atomic"
	"time"
)

// Lock word states.
const (
	unlocked  uint32 = 0
	locked    uint32 = 1
	contended uint32 = 2
)

const (
	lockWaitStep     = time.Millisecond
	lockWaitAttempts = 1000
)

// lockWord takes the inter-process lock at word. It gives up after
// roughly one second so a peer that died holding the lock cannot hang
// the caller.
func lockWord(word *uint32) error {
	if atomic.CompareAndSwapUint32(word, unlocked, locked) {
		return nil
	}
	for range lockWaitAttempts {
		if atomic.SwapUint32(word, contended) == unlocked {
			return nil
		}
		waitWord(word, contended, lockWaitStep)
	}
	return ErrLockTimeout
}

func unlockWord(word *uint32) {
	if atomic.SwapUint32(word, unlocked) == contended {
		wakeWord(word)
	}
}
