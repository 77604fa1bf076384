// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package mist

import (
	"context"

	"github.com/libretro/mist/lib/catalog"
)

// RemoteStorage is the cloud save namespace.
type RemoteStorage struct{ l *Library }

// RemoteStorage returns the remote storage namespace.
func (l *Library) RemoteStorage() RemoteStorage { return RemoteStorage{l} }

// BeginFileWriteBatch opens a write batch. It fails with
// result.ErrFileWriteBatchAlreadyInProgress when one is open.
func (r RemoteStorage) BeginFileWriteBatch(ctx context.Context) error {
	_, err := call(ctx, r.l, catalog.BeginFileWriteBatch, catalog.Unit{})
	return err
}

// EndFileWriteBatch closes the write batch. It fails with
// result.ErrFileWriteBatchNotInProgress when none is open.
func (r RemoteStorage) EndFileWriteBatch(ctx context.Context) error {
	_, err := call(ctx, r.l, catalog.EndFileWriteBatch, catalog.Unit{})
	return err
}
