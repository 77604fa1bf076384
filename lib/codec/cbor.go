// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode encodes with Core Deterministic Encoding. Same logical value,
// same bytes, in both processes.
var encMode cbor.EncMode

// decMode accepts standard CBOR and ignores unknown fields so that a
// newer worker can add result fields without breaking an older host.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Call results decoded into any (the diagnostic CLI's generic
		// call path) must come out as map[string]any so they can be
		// printed as JSON. Struct targets are unaffected.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// A single frame is bounded by frame.MaxPayload; these limits
		// only stop a corrupt payload from allocating absurd nesting.
		MaxNestedLevels:  32,
		MaxArrayElements: 1 << 16,
		MaxMapPairs:      1 << 16,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// RawMessage is a raw encoded CBOR value, used to delay decoding of
// nested payloads until the layer that knows their type.
type RawMessage = cbor.RawMessage

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for data.
// Used to log envelopes that fail to decode.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
