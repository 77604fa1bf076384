// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock is the time source for every timeout in mist: the
// handshake deadline, per-call deadlines, the worker's poll interval
// and the termination grace window.
//
// Production code takes a Clock and is handed Real(). Tests hand in
// Fake() and move time with Advance, using WaitForTimers to block
// until the goroutine under test has armed its deadline:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go func() { result <- client.Do(ctx, request) }()
//	fake.WaitForTimers(1)
//	fake.Advance(100 * time.Millisecond)
package clock
