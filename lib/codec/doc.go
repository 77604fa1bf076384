// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration shared by the host
// library and the worker process.
//
// Every payload that crosses the framed channel is CBOR: the envelope
// itself, call arguments, call results, failures, and event payloads.
// Both processes must encode identically, so the modes live here and
// nowhere else. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items.
//
// For whole values:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Nested payloads whose concrete type is only known to one layer (call
// arguments inside a request envelope, for example) are carried as
// [RawMessage] and decoded by the layer that knows the type.
//
// # Struct Tag Rules
//
// Wire types use `cbor` tags with short keys. Types that are also read
// from JSON by the diagnostic CLI (call argument structs) use `json`
// tags only; fxamacker/cbor falls back to `json` tags when no `cbor`
// tag is present, so one tag controls both formats. Never put both tags
// on the same field.
package codec
