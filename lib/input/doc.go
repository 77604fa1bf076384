// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package input defines the controller state the worker publishes over
// the hot channel every frame, and the worker-side [Sampler] that
// builds it.
//
// [State] has a fixed memory layout (bounded arrays, no pointers) so it
// can be copied between processes byte for byte. Its size is asserted
// at compile time; changing a field changes both the size and the
// layout fingerprint, and a host and worker that disagree refuse to
// open each other's segment.
//
// Controllers are assigned to gamepad slots by the worker. A controller
// keeps its slot while it stays connected; a newly connected controller
// takes the lowest free slot. Action data is indexed by action handle,
// so only handles below [MaxAnalogActions] and [MaxDigitalActions] can
// be sampled.
package input
