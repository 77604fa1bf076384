// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package result

import "sync"

// Diagnostics remembers the most recent failure as a string for hosts
// that only look at packed results. Safe for concurrent use.
type Diagnostics struct {
	mu   sync.Mutex
	last string
}

// Record stores err's message when it is non-nil and returns its
// packed form.
func (d *Diagnostics) Record(err error) Result {
	if err == nil {
		return Success
	}
	d.mu.Lock()
	d.last = err.Error()
	d.mu.Unlock()
	return Of(err)
}

// Clear forgets the last failure.
func (d *Diagnostics) Clear() {
	d.mu.Lock()
	d.last = ""
	d.mu.Unlock()
}

// Last returns the most recent failure message, or "" if the last
// operation succeeded.
func (d *Diagnostics) Last() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
