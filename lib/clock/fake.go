// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"slices"
	"sync"
	"time"
)

// Fake returns a FakeClock frozen at initial.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.armed = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a Clock whose time only moves when Advance is called.
// Safe for concurrent use.
type FakeClock struct {
	mu       sync.Mutex
	current  time.Time
	deadline []*fakeDeadline
	armed    *sync.Cond
}

type fakeDeadline struct {
	at      time.Time
	channel chan time.Time
	stopped bool
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After arms a deadline d from now. Non-positive durations fire
// without registering anything.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	return c.arm(d).channel
}

// NewTimer is After with the ability to disarm.
func (c *FakeClock) NewTimer(d time.Duration) *Timer {
	pending := c.arm(d)
	return &Timer{
		C: pending.channel,
		stop: func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			if pending.stopped || !slices.Contains(c.deadline, pending) {
				return false
			}
			pending.stopped = true
			c.deadline = slices.DeleteFunc(c.deadline, func(each *fakeDeadline) bool {
				return each == pending
			})
			return true
		},
	}
}

// Sleep blocks until Advance carries the clock past d from now.
func (c *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	<-c.After(d)
}

func (c *FakeClock) arm(d time.Duration) *fakeDeadline {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := &fakeDeadline{
		at:      c.current.Add(d),
		channel: make(chan time.Time, 1),
	}
	if d <= 0 {
		pending.channel <- c.current
		return pending
	}
	c.deadline = append(c.deadline, pending)
	c.armed.Broadcast()
	return pending
}

// Advance moves the clock forward by d and fires every deadline at or
// before the new time, earliest first.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	now := c.current

	var due []*fakeDeadline
	c.deadline = slices.DeleteFunc(c.deadline, func(each *fakeDeadline) bool {
		if each.at.After(now) {
			return false
		}
		due = append(due, each)
		return true
	})
	c.mu.Unlock()

	slices.SortStableFunc(due, func(a, b *fakeDeadline) int {
		return a.at.Compare(b.at)
	})
	for _, each := range due {
		each.channel <- now
	}
}

// WaitForTimers blocks until at least n deadlines are armed.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.deadline) < n {
		c.armed.Wait()
	}
}

// PendingCount reports how many deadlines are armed.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deadline)
}
