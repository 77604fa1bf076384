// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package hotchannel

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Shared (non-private) futex operations: the word lives in a mapping
// that another process also waits on.
const (
	futexWait = 0
	futexWake = 1
)

// waitWord sleeps while *word == value, for at most timeout. Early
// returns (EAGAIN, EINTR, ETIMEDOUT) are fine: the caller retries.
func waitWord(word *uint32, value uint32, timeout time.Duration) {
	timespec := unix.NsecToTimespec(timeout.Nanoseconds())
	unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(word)),
		futexWait,
		uintptr(value),
		uintptr(unsafe.Pointer(&timespec)),
		0, 0)
}

func wakeWord(word *uint32) {
	unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(word)),
		futexWake,
		1,
		0, 0, 0)
}
