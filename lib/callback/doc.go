// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package callback buffers asynchronous platform events on the host
// until the game consumes them.
//
// Consumption is two-step: [Queue.Next] returns the head without
// removing it, [Queue.Advance] removes it. A caller that fails while
// handling the head can call Next again and see the same entry.
// Entries are never reordered or merged.
package callback
