// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package frame splits the worker's stdin/stdout pipes into discrete
// messages.
//
// A frame is a 4-byte little-endian payload length followed by exactly
// that many payload bytes:
//
//	[u32 length, LE] [payload]
//
// Frames are assembled in memory and handed to the OS in one write, so
// a reader never sees a write boundary inside a frame. On the reading
// side, end of stream before the first header byte is a clean shutdown
// and is reported as io.EOF; end of stream anywhere later in the frame
// is [ErrTruncated].
package frame
