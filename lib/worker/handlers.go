// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"context"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/input"
	"github.com/libretro/mist/lib/result"
	"github.com/libretro/mist/lib/rpc"
)

type unit = catalog.Unit

// bind registers a handler for every catalog operation.
func (w *worker) bind() {
	w.bindInternal()
	w.bindFriends()
	w.bindApps()
	w.bindUtils()
	w.bindRemoteStorage()
	w.bindInput()
}

// optional turns an (s, ok) pair into an optional result.
func optional(value string, ok bool) *string {
	if !ok {
		return nil
	}
	return &value
}

func truncateOrigins(origins []catalog.ActionOrigin) []catalog.ActionOrigin {
	if len(origins) > input.MaxOrigins {
		return origins[:input.MaxOrigins]
	}
	return origins
}

func (w *worker) bindInternal() {
	rpc.Handle(w.server, catalog.Exit, func(context.Context, unit) (unit, error) {
		w.exit = true
		return unit{}, nil
	})
}

func (w *worker) bindFriends() {
	friends := w.provider.Friends()
	rpc.Handle(w.server, catalog.ClearRichPresence, func(context.Context, unit) (unit, error) {
		friends.ClearRichPresence()
		return unit{}, nil
	})
	rpc.Handle(w.server, catalog.SetRichPresence, func(_ context.Context, args catalog.RichPresenceArgs) (bool, error) {
		return friends.SetRichPresence(args.Key, args.Value), nil
	})
}

func (w *worker) bindApps() {
	apps := w.provider.Apps()
	s := w.server

	rpc.Handle(s, catalog.GetDlcDataByIndex, func(_ context.Context, index int32) (catalog.DlcData, error) {
		return apps.DlcDataByIndex(index)
	})
	rpc.Handle(s, catalog.IsAppInstalled, func(_ context.Context, app catalog.AppID) (bool, error) {
		return apps.IsAppInstalled(app), nil
	})
	rpc.Handle(s, catalog.IsCybercafe, func(context.Context, unit) (bool, error) {
		return apps.IsCybercafe(), nil
	})
	rpc.Handle(s, catalog.IsDlcInstalled, func(_ context.Context, app catalog.AppID) (bool, error) {
		return apps.IsDlcInstalled(app), nil
	})
	rpc.Handle(s, catalog.IsLowViolence, func(context.Context, unit) (bool, error) {
		return apps.IsLowViolence(), nil
	})
	rpc.Handle(s, catalog.IsSubscribed, func(context.Context, unit) (bool, error) {
		return apps.IsSubscribed(), nil
	})
	rpc.Handle(s, catalog.IsSubscribedApp, func(_ context.Context, app catalog.AppID) (bool, error) {
		return apps.IsSubscribedApp(app), nil
	})
	rpc.Handle(s, catalog.IsSubscribedFromFamilySharing, func(context.Context, unit) (bool, error) {
		return apps.IsSubscribedFromFamilySharing(), nil
	})
	rpc.Handle(s, catalog.IsSubscribedFromFreeWeekend, func(context.Context, unit) (bool, error) {
		return apps.IsSubscribedFromFreeWeekend(), nil
	})
	rpc.Handle(s, catalog.IsVacBanned, func(context.Context, unit) (bool, error) {
		return apps.IsVacBanned(), nil
	})
	rpc.Handle(s, catalog.GetAppBuildID, func(context.Context, unit) (catalog.BuildID, error) {
		return apps.AppBuildID(), nil
	})
	rpc.Handle(s, catalog.GetAppInstallDir, func(_ context.Context, app catalog.AppID) (*string, error) {
		return optional(apps.AppInstallDir(app)), nil
	})
	rpc.Handle(s, catalog.GetAppOwner, func(context.Context, unit) (catalog.SteamID, error) {
		return apps.AppOwner(), nil
	})
	rpc.Handle(s, catalog.GetAvailableGameLanguages, func(context.Context, unit) (string, error) {
		return apps.AvailableGameLanguages(), nil
	})
	rpc.Handle(s, catalog.GetCurrentBetaName, func(context.Context, unit) (*string, error) {
		return optional(apps.CurrentBetaName()), nil
	})
	rpc.Handle(s, catalog.GetCurrentGameLanguage, func(context.Context, unit) (string, error) {
		return apps.CurrentGameLanguage(), nil
	})
	rpc.Handle(s, catalog.GetDlcCount, func(context.Context, unit) (int32, error) {
		return apps.DlcCount(), nil
	})
	rpc.Handle(s, catalog.GetDlcDownloadProgress, func(_ context.Context, app catalog.AppID) (catalog.DlcDownloadProgress, error) {
		return apps.DlcDownloadProgress(app), nil
	})
	rpc.Handle(s, catalog.GetEarliestPurchaseUnixTime, func(_ context.Context, app catalog.AppID) (uint32, error) {
		return apps.EarliestPurchaseUnixTime(app), nil
	})
	rpc.Handle(s, catalog.GetInstalledDepots, func(_ context.Context, app catalog.AppID) ([]catalog.DepotID, error) {
		return apps.InstalledDepots(app), nil
	})
	rpc.Handle(s, catalog.GetLaunchCommandLine, func(context.Context, unit) (string, error) {
		return apps.LaunchCommandLine(), nil
	})
	rpc.Handle(s, catalog.GetLaunchQueryParam, func(_ context.Context, key string) (*string, error) {
		return optional(apps.LaunchQueryParam(key)), nil
	})
	rpc.Handle(s, catalog.InstallDlc, func(_ context.Context, app catalog.AppID) (unit, error) {
		apps.InstallDlc(app)
		return unit{}, nil
	})
	rpc.Handle(s, catalog.MarkContentCorrupt, func(_ context.Context, missingFilesOnly bool) (bool, error) {
		return apps.MarkContentCorrupt(missingFilesOnly), nil
	})
	rpc.Handle(s, catalog.UninstallDlc, func(_ context.Context, app catalog.AppID) (unit, error) {
		apps.UninstallDlc(app)
		return unit{}, nil
	})
}

func (w *worker) bindUtils() {
	utils := w.provider.Utils()
	s := w.server

	rpc.Handle(s, catalog.GetAppID, func(context.Context, unit) (catalog.AppID, error) {
		return utils.AppID(), nil
	})
	rpc.Handle(s, catalog.GetCurrentBatteryPower, func(context.Context, unit) (uint8, error) {
		return utils.CurrentBatteryPower(), nil
	})
	// The text is handed out once.
	rpc.Handle(s, catalog.GetEnteredGamepadTextInput, func(context.Context, unit) (*string, error) {
		text := w.enteredText
		w.enteredText = nil
		return text, nil
	})
	rpc.Handle(s, catalog.IsOverlayEnabled, func(context.Context, unit) (bool, error) {
		return utils.IsOverlayEnabled(), nil
	})
	rpc.Handle(s, catalog.IsSteamInBigPictureMode, func(context.Context, unit) (bool, error) {
		return utils.IsSteamInBigPictureMode(), nil
	})
	rpc.Handle(s, catalog.IsSteamRunningInVR, func(context.Context, unit) (bool, error) {
		return utils.IsSteamRunningInVR(), nil
	})
	rpc.Handle(s, catalog.IsSteamRunningOnSteamDeck, func(context.Context, unit) (bool, error) {
		return utils.IsSteamRunningOnSteamDeck(), nil
	})
	rpc.Handle(s, catalog.IsVRHeadsetStreamingEnabled, func(context.Context, unit) (bool, error) {
		return utils.IsVRHeadsetStreamingEnabled(), nil
	})
	rpc.Handle(s, catalog.SetVRHeadsetStreamingEnabled, func(_ context.Context, enabled bool) (unit, error) {
		utils.SetVRHeadsetStreamingEnabled(enabled)
		return unit{}, nil
	})
	rpc.Handle(s, catalog.ShowGamepadTextInput, func(_ context.Context, args catalog.GamepadTextInputArgs) (bool, error) {
		return utils.ShowGamepadTextInput(args), nil
	})
	rpc.Handle(s, catalog.ShowFloatingGamepadTextInput, func(_ context.Context, args catalog.FloatingGamepadTextInputArgs) (bool, error) {
		return utils.ShowFloatingGamepadTextInput(args), nil
	})
	rpc.Handle(s, catalog.SetGameLauncherMode, func(_ context.Context, launcherMode bool) (unit, error) {
		utils.SetGameLauncherMode(launcherMode)
		return unit{}, nil
	})
	rpc.Handle(s, catalog.StartVRDashboard, func(context.Context, unit) (unit, error) {
		utils.StartVRDashboard()
		return unit{}, nil
	})
}

func (w *worker) bindRemoteStorage() {
	storage := w.provider.RemoteStorage()
	rpc.Handle(w.server, catalog.BeginFileWriteBatch, func(context.Context, unit) (unit, error) {
		if !storage.BeginFileWriteBatch() {
			return unit{}, result.ErrFileWriteBatchAlreadyInProgress
		}
		return unit{}, nil
	})
	rpc.Handle(w.server, catalog.EndFileWriteBatch, func(context.Context, unit) (unit, error) {
		if !storage.EndFileWriteBatch() {
			return unit{}, result.ErrFileWriteBatchNotInProgress
		}
		return unit{}, nil
	})
}

func (w *worker) bindInput() {
	session := w.input
	controllers := w.provider.Input()
	s := w.server

	rpc.Handle(s, catalog.InputInit, func(_ context.Context, args catalog.InputInitArgs) (bool, error) {
		return session.open(args.Segment)
	})
	rpc.Handle(s, catalog.InputShutdown, func(context.Context, unit) (bool, error) {
		return session.shutdown(), nil
	})
	rpc.Handle(s, catalog.SetInputActionManifestFilePath, func(_ context.Context, path string) (bool, error) {
		return controllers.SetInputActionManifestFilePath(path), nil
	})

	// Everything below needs an initialized input session.
	handleInput(s, session, catalog.GetConnectedControllers, func(unit) ([]catalog.InputHandle, error) {
		return controllers.ConnectedControllers(), nil
	})
	handleInput(s, session, catalog.GetActionSetHandle, func(name string) (catalog.ActionSetHandle, error) {
		return controllers.ActionSetHandle(name), nil
	})
	handleInput(s, session, catalog.GetAnalogActionHandle, func(name string) (catalog.AnalogActionHandle, error) {
		handle := controllers.AnalogActionHandle(name)
		if handle != 0 {
			if err := session.sampler.RegisterAnalog(handle); err != nil {
				w.logger.Warn("analog action not sampled", "action", name, "error", err)
			}
		}
		return handle, nil
	})
	handleInput(s, session, catalog.GetDigitalActionHandle, func(name string) (catalog.DigitalActionHandle, error) {
		handle := controllers.DigitalActionHandle(name)
		if handle != 0 {
			if err := session.sampler.RegisterDigital(handle); err != nil {
				w.logger.Warn("digital action not sampled", "action", name, "error", err)
			}
		}
		return handle, nil
	})
	handleInput(s, session, catalog.ActivateActionSet, func(args catalog.ActionSetArgs) (unit, error) {
		controllers.ActivateActionSet(args.InputHandle, args.ActionSet)
		return unit{}, nil
	})
	handleInput(s, session, catalog.ActivateActionSetLayer, func(args catalog.ActionSetArgs) (unit, error) {
		controllers.ActivateActionSetLayer(args.InputHandle, args.ActionSet)
		return unit{}, nil
	})
	handleInput(s, session, catalog.DeactivateActionSetLayer, func(args catalog.ActionSetArgs) (unit, error) {
		controllers.DeactivateActionSetLayer(args.InputHandle, args.ActionSet)
		return unit{}, nil
	})
	handleInput(s, session, catalog.DeactivateAllActionSetLayers, func(handle catalog.InputHandle) (unit, error) {
		controllers.DeactivateAllActionSetLayers(handle)
		return unit{}, nil
	})
	handleInput(s, session, catalog.GetActiveActionSetLayers, func(handle catalog.InputHandle) ([]catalog.ActionSetHandle, error) {
		return controllers.ActiveActionSetLayers(handle), nil
	})
	handleInput(s, session, catalog.GetCurrentActionSet, func(handle catalog.InputHandle) (catalog.ActionSetHandle, error) {
		return controllers.CurrentActionSet(handle), nil
	})
	handleInput(s, session, catalog.GetInputTypeForHandle, func(handle catalog.InputHandle) (catalog.InputType, error) {
		return controllers.InputTypeForHandle(handle), nil
	})
	handleInput(s, session, catalog.TriggerVibration, func(args catalog.VibrationArgs) (unit, error) {
		controllers.TriggerVibration(args.InputHandle, args.LeftSpeed, args.RightSpeed)
		return unit{}, nil
	})
	handleInput(s, session, catalog.SetLEDColor, func(args catalog.LEDArgs) (unit, error) {
		controllers.SetLEDColor(args.InputHandle, args.Red, args.Green, args.Blue, args.Flags)
		return unit{}, nil
	})
	handleInput(s, session, catalog.ShowBindingPanel, func(handle catalog.InputHandle) (bool, error) {
		return controllers.ShowBindingPanel(handle), nil
	})
	handleInput(s, session, catalog.GetControllerForGamepadIndex, func(index int32) (catalog.InputHandle, error) {
		return controllers.ControllerForGamepadIndex(index), nil
	})
	handleInput(s, session, catalog.GetGamepadIndexForController, func(handle catalog.InputHandle) (int32, error) {
		return controllers.GamepadIndexForController(handle), nil
	})
	handleInput(s, session, catalog.GetAnalogActionOrigins, func(args catalog.ActionOriginsArgs) ([]catalog.ActionOrigin, error) {
		return truncateOrigins(controllers.AnalogActionOrigins(args.InputHandle, args.ActionSet, args.Action)), nil
	})
	handleInput(s, session, catalog.GetDigitalActionOrigins, func(args catalog.ActionOriginsArgs) ([]catalog.ActionOrigin, error) {
		return truncateOrigins(controllers.DigitalActionOrigins(args.InputHandle, args.ActionSet, args.Action)), nil
	})
	handleInput(s, session, catalog.GetStringForActionOrigin, func(origin catalog.ActionOrigin) (string, error) {
		return controllers.StringForActionOrigin(origin), nil
	})
	handleInput(s, session, catalog.StopAnalogActionMomentum, func(args catalog.ActionArgs) (unit, error) {
		controllers.StopAnalogActionMomentum(args.InputHandle, args.Action)
		return unit{}, nil
	})
}

// handleInput binds fn behind the input-initialized check.
func handleInput[A, R any](server *rpc.Server, session *inputSession, op rpc.Operation[A, R], fn func(A) (R, error)) {
	rpc.Handle(server, op, func(_ context.Context, args A) (R, error) {
		if err := session.require(); err != nil {
			var zero R
			return zero, err
		}
		return fn(args)
	})
}
