// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package hotchannel shares one fixed-layout value between two processes
// through a memory-mapped segment file, for state that changes every
// frame and would be too costly to carry over the framed channel.
//
// A segment is a 64-byte header followed by the payload:
//
//	offset  size  field
//	0       4     magic ("MIST", little-endian)
//	4       4     layout version
//	8       8     payload size in bytes
//	16      32    BLAKE3 fingerprint of the payload type's layout
//	48      4     inter-process lock word
//	56      8     generation counter
//	64      n     payload
//
// The host creates the segment with [Create] and hands its path to the
// worker, which maps the same file with [Open]. Both sides verify the
// header against the Go type they intend to exchange, so a host and a
// worker built from different layouts refuse to talk instead of reading
// garbage.
//
// The worker publishes through a [Writer]: it takes the lock, copies
// the whole value in, releases the lock, and only then increments the
// generation. A [Reader] loads the generation without the lock; when it
// has not moved since the last read the cached copy is returned with no
// lock traffic. A changed generation means at least one complete write
// has happened, and the reader takes the lock to copy the value out.
//
// The lock word is a futex on Linux and a yielding spin lock on other
// Unix systems. Acquisition is bounded: a peer that died while holding
// the lock produces [ErrLockTimeout] instead of a hang.
//
// Removing the segment file (host deinitialization) does not invalidate
// the worker's mapping. The writer notices the missing link on its next
// publish and fails with [ErrSegmentRemoved].
//
// Payload types must be free of pointers, slices, maps, strings, and
// interfaces: only fixed-size numbers, booleans, arrays, and structs of
// those. [FingerprintOf] rejects anything else.
package hotchannel
