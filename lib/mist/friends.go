// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package mist

import (
	"context"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/result"
)

// Friends is the presence namespace.
type Friends struct{ l *Library }

// Friends returns the friends namespace.
func (l *Library) Friends() Friends { return Friends{l} }

// ClearRichPresence removes every rich presence key. It does not wait
// for the worker.
func (f Friends) ClearRichPresence(ctx context.Context) error {
	_, err := call(ctx, f.l, catalog.ClearRichPresence, catalog.Unit{})
	return err
}

// SetRichPresence sets key to value. A nil value removes the key. A
// key or value the SDK refuses fails with
// result.ErrInvalidRichPresence.
func (f Friends) SetRichPresence(ctx context.Context, key string, value *string) error {
	if err := checkString("key", key); err != nil {
		return f.l.fail(err)
	}
	if value != nil {
		if err := checkString("value", *value); err != nil {
			return f.l.fail(err)
		}
	}
	accepted, err := call(ctx, f.l, catalog.SetRichPresence, catalog.RichPresenceArgs{Key: key, Value: value})
	if err != nil {
		return err
	}
	if !accepted {
		return f.l.fail(result.New(result.ErrInvalidRichPresence, "rich presence %q rejected", key))
	}
	return nil
}
