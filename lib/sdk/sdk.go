// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package sdk is the boundary between the worker and the platform SDK
// it owns. The worker's handlers only talk to these interfaces; a
// binding to the vendor library or the simulated provider in
// [github.com/libretro/mist/lib/sdk/sim] sits behind them.
//
// Providers are driven from a single goroutine (the worker's main
// loop and the request dispatch it interleaves), matching the vendor
// SDK's single-threaded contract. Implementations need no locking of
// their own unless they are shared across workers.
package sdk

import (
	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/input"
)

// Callback is one asynchronous notification produced by the SDK.
type Callback struct {
	// Source is the SDK user handle the callback belongs to.
	Source uint64
	Kind   catalog.EventKind
	// Payload is the typed event struct from package catalog.
	Payload any
}

// Provider is a live SDK session.
type Provider interface {
	// Init starts the session. A failure is reported to the host as an
	// initialization error and the worker exits.
	Init() error

	// Shutdown ends the session. It is called once, after the last
	// request has been handled.
	Shutdown()

	// RunCallbacks pumps the SDK once and returns the callbacks it
	// produced, in order.
	RunCallbacks() []Callback

	Apps() Apps
	Friends() Friends
	Utils() Utils
	RemoteStorage() RemoteStorage
	Input() Input
}

// Apps is ownership, DLC, and install information for the running app.
type Apps interface {
	// DlcDataByIndex fails with result.ErrInvalidDlcIndex for an index
	// outside [0, DlcCount).
	DlcDataByIndex(index int32) (catalog.DlcData, error)
	IsAppInstalled(app catalog.AppID) bool
	IsCybercafe() bool
	IsDlcInstalled(app catalog.AppID) bool
	IsLowViolence() bool
	IsSubscribed() bool
	IsSubscribedApp(app catalog.AppID) bool
	IsSubscribedFromFamilySharing() bool
	IsSubscribedFromFreeWeekend() bool
	IsVacBanned() bool
	AppBuildID() catalog.BuildID
	AppInstallDir(app catalog.AppID) (string, bool)
	AppOwner() catalog.SteamID
	AvailableGameLanguages() string
	CurrentBetaName() (string, bool)
	CurrentGameLanguage() string
	DlcCount() int32
	DlcDownloadProgress(app catalog.AppID) catalog.DlcDownloadProgress
	EarliestPurchaseUnixTime(app catalog.AppID) uint32
	InstalledDepots(app catalog.AppID) []catalog.DepotID
	LaunchCommandLine() string
	LaunchQueryParam(key string) (string, bool)
	InstallDlc(app catalog.AppID)
	MarkContentCorrupt(missingFilesOnly bool) bool
	UninstallDlc(app catalog.AppID)
}

// Friends is the rich presence store.
type Friends interface {
	ClearRichPresence()
	// SetRichPresence sets key, or clears it when value is nil. It
	// reports whether the SDK accepted the pair.
	SetRichPresence(key string, value *string) bool
}

// Utils is environment and overlay information.
type Utils interface {
	AppID() catalog.AppID
	CurrentBatteryPower() uint8
	// EnteredGamepadTextInput returns the text submitted in the last
	// gamepad text dialog.
	EnteredGamepadTextInput() (string, bool)
	IsOverlayEnabled() bool
	IsSteamInBigPictureMode() bool
	IsSteamRunningInVR() bool
	IsSteamRunningOnSteamDeck() bool
	IsVRHeadsetStreamingEnabled() bool
	SetVRHeadsetStreamingEnabled(enabled bool)
	ShowGamepadTextInput(args catalog.GamepadTextInputArgs) bool
	ShowFloatingGamepadTextInput(args catalog.FloatingGamepadTextInputArgs) bool
	SetGameLauncherMode(launcherMode bool)
	StartVRDashboard()
}

// RemoteStorage is cloud save batching.
type RemoteStorage interface {
	// BeginFileWriteBatch reports false when a batch is already open.
	BeginFileWriteBatch() bool
	// EndFileWriteBatch reports false when no batch is open.
	EndFileWriteBatch() bool
}

// Input is the controller subsystem. Its [input.Source] half feeds the
// hot channel sampler.
type Input interface {
	input.Source

	Init() bool
	Shutdown() bool
	ActionSetHandle(name string) catalog.ActionSetHandle
	AnalogActionHandle(name string) catalog.AnalogActionHandle
	DigitalActionHandle(name string) catalog.DigitalActionHandle
	ActivateActionSet(handle catalog.InputHandle, set catalog.ActionSetHandle)
	ActivateActionSetLayer(handle catalog.InputHandle, layer catalog.ActionSetHandle)
	DeactivateActionSetLayer(handle catalog.InputHandle, layer catalog.ActionSetHandle)
	DeactivateAllActionSetLayers(handle catalog.InputHandle)
	ActiveActionSetLayers(handle catalog.InputHandle) []catalog.ActionSetHandle
	CurrentActionSet(handle catalog.InputHandle) catalog.ActionSetHandle
	TriggerVibration(handle catalog.InputHandle, leftSpeed, rightSpeed uint16)
	SetLEDColor(handle catalog.InputHandle, red, green, blue uint8, flags catalog.LEDFlag)
	ShowBindingPanel(handle catalog.InputHandle) bool
	ControllerForGamepadIndex(index int32) catalog.InputHandle
	GamepadIndexForController(handle catalog.InputHandle) int32
	AnalogActionOrigins(handle catalog.InputHandle, set catalog.ActionSetHandle, action catalog.AnalogActionHandle) []catalog.ActionOrigin
	DigitalActionOrigins(handle catalog.InputHandle, set catalog.ActionSetHandle, action catalog.DigitalActionHandle) []catalog.ActionOrigin
	StringForActionOrigin(origin catalog.ActionOrigin) string
	StopAnalogActionMomentum(handle catalog.InputHandle, action catalog.AnalogActionHandle)
	SetInputActionManifestFilePath(path string) bool
}
