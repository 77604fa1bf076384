// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package mist

import (
	"context"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/result"
)

// Utils is the platform environment namespace.
type Utils struct{ l *Library }

// Utils returns the utils namespace.
func (l *Library) Utils() Utils { return Utils{l} }

// AppID returns the running app.
func (u Utils) AppID(ctx context.Context) (catalog.AppID, error) {
	return call(ctx, u.l, catalog.GetAppID, catalog.Unit{})
}

// CurrentBatteryPower returns a percentage, or 255 on AC power.
func (u Utils) CurrentBatteryPower(ctx context.Context) (uint8, error) {
	return call(ctx, u.l, catalog.GetCurrentBatteryPower, catalog.Unit{})
}

// EnteredGamepadTextInput takes the text submitted in the last gamepad
// text dialog. It fails with result.ErrNoGamepadTextEntered when
// nothing was submitted or the text was already taken.
func (u Utils) EnteredGamepadTextInput(ctx context.Context) (string, error) {
	text, err := call(ctx, u.l, catalog.GetEnteredGamepadTextInput, catalog.Unit{})
	if err != nil {
		return "", err
	}
	if text == nil {
		return "", u.l.fail(result.ErrNoGamepadTextEntered)
	}
	return *text, nil
}

// IsOverlayEnabled reports whether the in-game overlay is available.
func (u Utils) IsOverlayEnabled(ctx context.Context) (bool, error) {
	return call(ctx, u.l, catalog.IsOverlayEnabled, catalog.Unit{})
}

// IsSteamInBigPictureMode reports whether the client runs in Big
// Picture mode.
func (u Utils) IsSteamInBigPictureMode(ctx context.Context) (bool, error) {
	return call(ctx, u.l, catalog.IsSteamInBigPictureMode, catalog.Unit{})
}

// IsSteamRunningInVR reports whether the client runs in VR mode.
func (u Utils) IsSteamRunningInVR(ctx context.Context) (bool, error) {
	return call(ctx, u.l, catalog.IsSteamRunningInVR, catalog.Unit{})
}

// IsSteamRunningOnSteamDeck reports whether the host is a Steam Deck.
func (u Utils) IsSteamRunningOnSteamDeck(ctx context.Context) (bool, error) {
	return call(ctx, u.l, catalog.IsSteamRunningOnSteamDeck, catalog.Unit{})
}

// IsVRHeadsetStreamingEnabled reports whether the app streams to a
// VR headset.
func (u Utils) IsVRHeadsetStreamingEnabled(ctx context.Context) (bool, error) {
	return call(ctx, u.l, catalog.IsVRHeadsetStreamingEnabled, catalog.Unit{})
}

// SetVRHeadsetStreamingEnabled toggles streaming to a VR headset.
func (u Utils) SetVRHeadsetStreamingEnabled(ctx context.Context, enabled bool) error {
	_, err := call(ctx, u.l, catalog.SetVRHeadsetStreamingEnabled, enabled)
	return err
}

// ShowGamepadTextInput opens the text entry dialog. Dismissal arrives
// as a catalog.EventGamepadTextInputDismissed callback.
func (u Utils) ShowGamepadTextInput(ctx context.Context, args catalog.GamepadTextInputArgs) (bool, error) {
	if err := checkString("description", args.Description); err != nil {
		return false, u.l.fail(err)
	}
	if err := checkString("existing text", args.ExistingText); err != nil {
		return false, u.l.fail(err)
	}
	return call(ctx, u.l, catalog.ShowGamepadTextInput, args)
}

// ShowFloatingGamepadTextInput opens the floating keyboard over the
// text field described by args.
func (u Utils) ShowFloatingGamepadTextInput(ctx context.Context, args catalog.FloatingGamepadTextInputArgs) (bool, error) {
	return call(ctx, u.l, catalog.ShowFloatingGamepadTextInput, args)
}

// SetGameLauncherMode tells the platform the app is a launcher, so
// gamepad input goes to it.
func (u Utils) SetGameLauncherMode(ctx context.Context, launcherMode bool) error {
	_, err := call(ctx, u.l, catalog.SetGameLauncherMode, launcherMode)
	return err
}

// StartVRDashboard opens the VR dashboard.
func (u Utils) StartVRDashboard(ctx context.Context) error {
	_, err := call(ctx, u.l, catalog.StartVRDashboard, catalog.Unit{})
	return err
}
