// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package hotchannel

import "errors"

// Segment is unavailable on this platform; every constructor fails with
// errors.ErrUnsupported.
type Segment struct {
	path   string
	layout Layout
}

func Create[T any](dir string) (*Segment, error) { return nil, errors.ErrUnsupported }

func Open[T any](path string) (*Segment, error) { return nil, errors.ErrUnsupported }

func (s *Segment) Path() string { return s.path }

func (s *Segment) Layout() Layout { return s.layout }

func (s *Segment) Removed() (bool, error) { return false, errors.ErrUnsupported }

func (s *Segment) Remove() error { return errors.ErrUnsupported }

func (s *Segment) Close() error { return nil }

func (s *Segment) access(func([]byte) error) error { return errors.ErrUnsupported }

func lockWord(*uint32) error { return errors.ErrUnsupported }

func unlockWord(*uint32) {}
