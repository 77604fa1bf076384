// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package hotchannel

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	// Magic identifies a mist segment. It reads "MIST" in memory.
	Magic uint32 = 0x5453494d

	// LayoutVersion is bumped when the header layout changes.
	LayoutVersion uint32 = 1

	// HeaderSize is the payload offset. It keeps the payload 8-byte
	// aligned for any page-aligned mapping.
	HeaderSize = 64

	// NamePrefix starts every segment file name created by [Create].
	NamePrefix = "mist-"
)

const (
	offsetMagic       = 0
	offsetVersion     = 4
	offsetPayloadSize = 8
	offsetFingerprint = 16
	offsetLock        = 48
	offsetGeneration  = 56
)

var (
	// ErrSegmentRemoved is returned once the segment file has been
	// unlinked by its owner. The mapping itself stays valid.
	ErrSegmentRemoved = errors.New("hotchannel: segment removed")

	// ErrLayoutMismatch is returned when a segment header does not
	// describe the payload type the caller expects.
	ErrLayoutMismatch = errors.New("hotchannel: layout mismatch")

	// ErrClosed is returned by operations on a closed segment.
	ErrClosed = errors.New("hotchannel: segment closed")

	// ErrLockTimeout is returned when the inter-process lock could not
	// be taken within the bounded wait.
	ErrLockTimeout = errors.New("hotchannel: lock wait exceeded")
)

// Fingerprint is the BLAKE3 digest of a payload type's memory layout.
type Fingerprint [32]byte

// String returns the first eight bytes in hex, enough for log lines.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%x", f[:8])
}

// Layout describes the payload a segment carries.
type Layout struct {
	Size        int
	Fingerprint Fingerprint
}

// LayoutOf returns the layout of T, or an error when T cannot be shared
// across processes.
func LayoutOf[T any]() (Layout, error) {
	typ := reflect.TypeFor[T]()
	fingerprint, err := fingerprintType(typ)
	if err != nil {
		return Layout{}, err
	}
	if typ.Size() == 0 {
		return Layout{}, fmt.Errorf("hotchannel: %s has zero size", typ)
	}
	return Layout{Size: int(typ.Size()), Fingerprint: fingerprint}, nil
}

// FingerprintOf returns the layout fingerprint of T. Field names,
// offsets, sizes, and kinds all contribute, so reordering or resizing a
// field changes the fingerprint.
func FingerprintOf[T any]() (Fingerprint, error) {
	return fingerprintType(reflect.TypeFor[T]())
}

func fingerprintType(typ reflect.Type) (Fingerprint, error) {
	var description strings.Builder
	if err := describe(&description, typ); err != nil {
		return Fingerprint{}, err
	}
	return blake3.Sum256([]byte(description.String())), nil
}

func describe(out *strings.Builder, typ reflect.Type) error {
	switch typ.Kind() {
	case reflect.Bool,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		fmt.Fprintf(out, "%s/%d", typ.Kind(), typ.Size())
		return nil
	case reflect.Array:
		fmt.Fprintf(out, "[%d]", typ.Len())
		return describe(out, typ.Elem())
	case reflect.Struct:
		fmt.Fprintf(out, "struct/%d/%d{", typ.Size(), typ.Align())
		for index := range typ.NumField() {
			field := typ.Field(index)
			fmt.Fprintf(out, "%s@%d:", field.Name, field.Offset)
			if err := describe(out, field.Type); err != nil {
				return fmt.Errorf("field %s: %w", field.Name, err)
			}
			out.WriteByte(';')
		}
		out.WriteByte('}')
		return nil
	default:
		// int, uint, and uintptr change size between host and worker
		// builds; everything else carries a pointer.
		return fmt.Errorf("hotchannel: %s (%s) cannot be shared between processes", typ, typ.Kind())
	}
}
