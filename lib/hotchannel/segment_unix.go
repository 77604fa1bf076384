// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package hotchannel

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// Segment is one mapping of a segment file. The host and the worker
// each hold their own Segment over the same file.
type Segment struct {
	path   string
	layout Layout

	// mu guards data against Close while a read or publish is copying.
	mu   sync.RWMutex
	file *os.File
	data []byte
}

// Create makes a new segment file in dir sized for T, writes its
// header, and maps it. The file name is unique per call. An empty dir
// means os.TempDir.
func Create[T any](dir string) (*Segment, error) {
	layout, err := LayoutOf[T]()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, NamePrefix+uuid.NewString())

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("hotchannel: creating segment: %w", err)
	}
	total := HeaderSize + layout.Size
	if err := unix.Ftruncate(int(file.Fd()), int64(total)); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("hotchannel: sizing segment %s: %w", path, err)
	}
	data, err := unix.Mmap(int(file.Fd()), 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("hotchannel: mapping segment %s: %w", path, err)
	}

	binary.LittleEndian.PutUint32(data[offsetVersion:], LayoutVersion)
	binary.LittleEndian.PutUint64(data[offsetPayloadSize:], uint64(layout.Size))
	copy(data[offsetFingerprint:offsetFingerprint+len(layout.Fingerprint)], layout.Fingerprint[:])
	// Magic last: a half-written header never validates.
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&data[offsetMagic])), Magic)

	return &Segment{path: path, layout: layout, file: file, data: data}, nil
}

// Open maps an existing segment file and verifies that its header
// describes T.
func Open[T any](path string) (*Segment, error) {
	layout, err := LayoutOf[T]()
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("hotchannel: opening segment: %w", err)
	}
	var stat unix.Stat_t
	if err := unix.Fstat(int(file.Fd()), &stat); err != nil {
		file.Close()
		return nil, fmt.Errorf("hotchannel: stat segment %s: %w", path, err)
	}
	total := HeaderSize + layout.Size
	if stat.Size < int64(total) {
		file.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes, want at least %d", ErrLayoutMismatch, path, stat.Size, total)
	}
	data, err := unix.Mmap(int(file.Fd()), 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("hotchannel: mapping segment %s: %w", path, err)
	}
	if err := checkHeader(data, layout); err != nil {
		unix.Munmap(data)
		file.Close()
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return &Segment{path: path, layout: layout, file: file, data: data}, nil
}

func checkHeader(data []byte, layout Layout) error {
	magic := atomic.LoadUint32((*uint32)(unsafe.Pointer(&data[offsetMagic])))
	if magic != Magic {
		return fmt.Errorf("%w: bad magic %#x", ErrLayoutMismatch, magic)
	}
	if version := binary.LittleEndian.Uint32(data[offsetVersion:]); version != LayoutVersion {
		return fmt.Errorf("%w: header version %d, want %d", ErrLayoutMismatch, version, LayoutVersion)
	}
	if size := binary.LittleEndian.Uint64(data[offsetPayloadSize:]); size != uint64(layout.Size) {
		return fmt.Errorf("%w: payload is %d bytes, want %d", ErrLayoutMismatch, size, layout.Size)
	}
	var fingerprint Fingerprint
	copy(fingerprint[:], data[offsetFingerprint:])
	if fingerprint != layout.Fingerprint {
		return fmt.Errorf("%w: fingerprint %s, want %s", ErrLayoutMismatch, fingerprint, layout.Fingerprint)
	}
	return nil
}

// Path returns the segment file path.
func (s *Segment) Path() string { return s.path }

// Layout returns the payload layout recorded in the header.
func (s *Segment) Layout() Layout { return s.layout }

// Removed reports whether the segment file has been unlinked.
func (s *Segment) Removed() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return false, ErrClosed
	}
	var stat unix.Stat_t
	if err := unix.Fstat(int(s.file.Fd()), &stat); err != nil {
		return false, fmt.Errorf("hotchannel: stat segment %s: %w", s.path, err)
	}
	return stat.Nlink == 0, nil
}

// Remove unlinks the segment file. Mappings stay valid until closed.
func (s *Segment) Remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("hotchannel: removing segment: %w", err)
	}
	return nil
}

// Close unmaps the segment. It waits for an in-progress copy to finish.
// Close is idempotent.
func (s *Segment) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil
	}
	var firstError error
	if err := unix.Munmap(s.data); err != nil {
		firstError = fmt.Errorf("hotchannel: munmap: %w", err)
	}
	if err := s.file.Close(); err != nil && firstError == nil {
		firstError = fmt.Errorf("hotchannel: closing segment file: %w", err)
	}
	s.data = nil
	return firstError
}

// access runs fn with the mapped bytes, holding off Close.
func (s *Segment) access(fn func(data []byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return ErrClosed
	}
	return fn(s.data)
}
