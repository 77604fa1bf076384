// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package mist is the host-side library. A [Library] owns at most one
// worker process at a time and exposes the platform SDK through typed
// namespaces:
//
//	lib := mist.New(mist.Options{Config: cfg})
//	if err := lib.Init(ctx); err != nil { ... }
//	defer lib.Deinit()
//
//	appID, err := lib.Utils().AppID(ctx)
//	lib.Poll()
//	for cb, ok := lib.NextCallback(); ok; cb, ok = lib.NextCallback() {
//		handle(cb)
//		lib.AdvanceCallback()
//	}
//
// Every failure is a *result.Error, so callers can match kinds with
// errors.Is or pack them with [result.Of]. [Library.LastError] keeps
// the message of the most recent failure for hosts that only see
// packed results; each call clears it first.
//
// Controller state does not travel over the call channel. After
// [Input.Init] the worker publishes a snapshot into a shared-memory
// segment once per frame; [Input.RunFrame] reads the latest snapshot
// and the data lookups answer from it without a round trip.
package mist
