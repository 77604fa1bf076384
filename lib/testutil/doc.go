// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by mist's tests.
//
// [RequireReceive], [RequireSend] and [RequireClosed] wrap the
// select-with-timeout pattern so tests that drive the fake clock still
// cannot hang forever on a broken goroutine. They are the only place
// tests touch the wall clock.
//
// [SegmentDir] returns a short-lived directory for shared-memory
// segment files.
package testutil
