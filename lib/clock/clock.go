// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the time operations mist depends on.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives once d has elapsed. If
	// d <= 0 the channel is ready immediately.
	After(d time.Duration) <-chan time.Time

	// NewTimer arms a one-shot timer. Callers that may abandon the
	// wait early should Stop it so the deadline does not linger.
	NewTimer(d time.Duration) *Timer

	// Sleep blocks for at least d.
	Sleep(d time.Duration)
}

// Timer is a one-shot deadline. C receives exactly once unless Stop
// wins the race.
type Timer struct {
	C <-chan time.Time

	stop func() bool
}

// Stop disarms the timer. Returns false if it already fired or was
// already stopped.
func (t *Timer) Stop() bool { return t.stop() }
