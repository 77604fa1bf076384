// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog is the complete list of operations a host can invoke
// on the worker and of the events the worker can deliver.
//
// Each operation is an [rpc.Operation] value shared by both sides: the
// host calls it with rpc.Call, the worker binds it with rpc.Handle.
// IDs are grouped by platform interface and never reused:
//
//	1..9      internal
//	10..19    friends
//	20..59    apps
//	60..89    utils
//	90..99    remote storage
//	100..149  input
//
// Argument and result structs carry json tags. CBOR falls back to
// them on the wire, and mistctl uses them to parse arguments typed on
// the command line.
package catalog
