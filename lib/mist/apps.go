// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package mist

import (
	"context"

	"github.com/libretro/mist/lib/catalog"
)

// Apps is the ownership and DLC namespace.
type Apps struct{ l *Library }

// Apps returns the apps namespace.
func (l *Library) Apps() Apps { return Apps{l} }

// DlcDataByIndex describes the DLC at index, 0 <= index < DlcCount.
// An out-of-range index fails with result.ErrInvalidDlcIndex.
func (a Apps) DlcDataByIndex(ctx context.Context, index int32) (catalog.DlcData, error) {
	return call(ctx, a.l, catalog.GetDlcDataByIndex, index)
}

// IsAppInstalled reports whether app is installed locally.
func (a Apps) IsAppInstalled(ctx context.Context, app catalog.AppID) (bool, error) {
	return call(ctx, a.l, catalog.IsAppInstalled, app)
}

// IsCybercafe reports whether the license is a cybercafe license.
func (a Apps) IsCybercafe(ctx context.Context) (bool, error) {
	return call(ctx, a.l, catalog.IsCybercafe, catalog.Unit{})
}

// IsDlcInstalled reports whether the DLC app is owned and installed.
func (a Apps) IsDlcInstalled(ctx context.Context, app catalog.AppID) (bool, error) {
	return call(ctx, a.l, catalog.IsDlcInstalled, app)
}

// IsLowViolence reports whether the low-violence build is active.
func (a Apps) IsLowViolence(ctx context.Context) (bool, error) {
	return call(ctx, a.l, catalog.IsLowViolence, catalog.Unit{})
}

// IsSubscribed reports whether the current user owns the running app.
func (a Apps) IsSubscribed(ctx context.Context) (bool, error) {
	return call(ctx, a.l, catalog.IsSubscribed, catalog.Unit{})
}

// IsSubscribedApp reports whether the current user owns app.
func (a Apps) IsSubscribedApp(ctx context.Context, app catalog.AppID) (bool, error) {
	return call(ctx, a.l, catalog.IsSubscribedApp, app)
}

// IsSubscribedFromFamilySharing reports whether the license is
// borrowed through family sharing.
func (a Apps) IsSubscribedFromFamilySharing(ctx context.Context) (bool, error) {
	return call(ctx, a.l, catalog.IsSubscribedFromFamilySharing, catalog.Unit{})
}

// IsSubscribedFromFreeWeekend reports whether the license is a free
// weekend license.
func (a Apps) IsSubscribedFromFreeWeekend(ctx context.Context) (bool, error) {
	return call(ctx, a.l, catalog.IsSubscribedFromFreeWeekend, catalog.Unit{})
}

// IsVacBanned reports whether the user is banned in this app.
func (a Apps) IsVacBanned(ctx context.Context) (bool, error) {
	return call(ctx, a.l, catalog.IsVacBanned, catalog.Unit{})
}

// AppBuildID returns the installed build.
func (a Apps) AppBuildID(ctx context.Context) (catalog.BuildID, error) {
	return call(ctx, a.l, catalog.GetAppBuildID, catalog.Unit{})
}

// AppInstallDir returns the install directory of app. ok is false when
// app is not installed.
func (a Apps) AppInstallDir(ctx context.Context, app catalog.AppID) (dir string, ok bool, err error) {
	return optional(call(ctx, a.l, catalog.GetAppInstallDir, app))
}

// AppOwner returns the account that owns the license, which differs
// from the user under family sharing.
func (a Apps) AppOwner(ctx context.Context) (catalog.SteamID, error) {
	return call(ctx, a.l, catalog.GetAppOwner, catalog.Unit{})
}

// AvailableGameLanguages returns a comma-separated language list.
func (a Apps) AvailableGameLanguages(ctx context.Context) (string, error) {
	return call(ctx, a.l, catalog.GetAvailableGameLanguages, catalog.Unit{})
}

// CurrentBetaName returns the beta branch the user opted into. ok is
// false on the default branch.
func (a Apps) CurrentBetaName(ctx context.Context) (name string, ok bool, err error) {
	return optional(call(ctx, a.l, catalog.GetCurrentBetaName, catalog.Unit{}))
}

// CurrentGameLanguage returns the language the user selected for the
// app.
func (a Apps) CurrentGameLanguage(ctx context.Context) (string, error) {
	return call(ctx, a.l, catalog.GetCurrentGameLanguage, catalog.Unit{})
}

// DlcCount returns the number of DLC for the running app.
func (a Apps) DlcCount(ctx context.Context) (int32, error) {
	return call(ctx, a.l, catalog.GetDlcCount, catalog.Unit{})
}

// DlcDownloadProgress reports download progress for app. Downloading
// is false when no download is running.
func (a Apps) DlcDownloadProgress(ctx context.Context, app catalog.AppID) (catalog.DlcDownloadProgress, error) {
	return call(ctx, a.l, catalog.GetDlcDownloadProgress, app)
}

// EarliestPurchaseUnixTime returns when app was first purchased.
func (a Apps) EarliestPurchaseUnixTime(ctx context.Context, app catalog.AppID) (uint32, error) {
	return call(ctx, a.l, catalog.GetEarliestPurchaseUnixTime, app)
}

// InstalledDepots lists the depots installed for app, in mount order.
func (a Apps) InstalledDepots(ctx context.Context, app catalog.AppID) ([]catalog.DepotID, error) {
	return call(ctx, a.l, catalog.GetInstalledDepots, app)
}

// LaunchCommandLine returns the command line of a launch through a
// platform URL.
func (a Apps) LaunchCommandLine(ctx context.Context) (string, error) {
	return call(ctx, a.l, catalog.GetLaunchCommandLine, catalog.Unit{})
}

// LaunchQueryParam returns one launch parameter. ok is false when it
// is unset.
func (a Apps) LaunchQueryParam(ctx context.Context, key string) (value string, ok bool, err error) {
	if err := checkString("key", key); err != nil {
		return "", false, a.l.fail(err)
	}
	return optional(call(ctx, a.l, catalog.GetLaunchQueryParam, key))
}

// InstallDlc starts a DLC install. Completion arrives as a
// catalog.EventDlcInstalled callback.
func (a Apps) InstallDlc(ctx context.Context, app catalog.AppID) error {
	_, err := call(ctx, a.l, catalog.InstallDlc, app)
	return err
}

// MarkContentCorrupt asks the platform to verify the install on the
// next launch.
func (a Apps) MarkContentCorrupt(ctx context.Context, missingFilesOnly bool) (bool, error) {
	return call(ctx, a.l, catalog.MarkContentCorrupt, missingFilesOnly)
}

// UninstallDlc removes an installed DLC.
func (a Apps) UninstallDlc(ctx context.Context, app catalog.AppID) error {
	_, err := call(ctx, a.l, catalog.UninstallDlc, app)
	return err
}

func optional(value *string, err error) (string, bool, error) {
	if err != nil || value == nil {
		return "", false, err
	}
	return *value, true, nil
}
