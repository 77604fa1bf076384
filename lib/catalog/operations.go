// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"time"

	"github.com/libretro/mist/lib/rpc"
)

// Unit is the argument or result of operations that have none.
type Unit = rpc.Unit

// InputInitTimeout is the default deadline for InputInit. Opening
// the platform's input subsystem can take a second or more on first
// use.
const InputInitTimeout = 2 * time.Second

// Internal.
var (
	// Exit asks the worker to shut its SDK session down and exit.
	Exit = rpc.Operation[Unit, Unit]{ID: 1, Name: "exit", OneWay: true}
)

// Friends.
var (
	ClearRichPresence = rpc.Operation[Unit, Unit]{ID: 10, Name: "clear_rich_presence", OneWay: true}
	SetRichPresence   = rpc.Operation[RichPresenceArgs, bool]{ID: 11, Name: "set_rich_presence"}
)

// Apps.
var (
	GetDlcDataByIndex             = rpc.Operation[int32, DlcData]{ID: 20, Name: "get_dlc_data_by_index"}
	IsAppInstalled                = rpc.Operation[AppID, bool]{ID: 21, Name: "is_app_installed"}
	IsCybercafe                   = rpc.Operation[Unit, bool]{ID: 22, Name: "is_cybercafe"}
	IsDlcInstalled                = rpc.Operation[AppID, bool]{ID: 23, Name: "is_dlc_installed"}
	IsLowViolence                 = rpc.Operation[Unit, bool]{ID: 24, Name: "is_low_violence"}
	IsSubscribed                  = rpc.Operation[Unit, bool]{ID: 25, Name: "is_subscribed"}
	IsSubscribedApp               = rpc.Operation[AppID, bool]{ID: 26, Name: "is_subscribed_app"}
	IsSubscribedFromFamilySharing = rpc.Operation[Unit, bool]{ID: 27, Name: "is_subscribed_from_family_sharing"}
	IsSubscribedFromFreeWeekend   = rpc.Operation[Unit, bool]{ID: 28, Name: "is_subscribed_from_free_weekend"}
	IsVacBanned                   = rpc.Operation[Unit, bool]{ID: 29, Name: "is_vac_banned"}
	GetAppBuildID                 = rpc.Operation[Unit, BuildID]{ID: 30, Name: "get_app_build_id"}
	GetAppInstallDir              = rpc.Operation[AppID, *string]{ID: 31, Name: "get_app_install_dir"}
	GetAppOwner                   = rpc.Operation[Unit, SteamID]{ID: 32, Name: "get_app_owner"}
	GetAvailableGameLanguages     = rpc.Operation[Unit, string]{ID: 33, Name: "get_available_game_languages"}
	GetCurrentBetaName            = rpc.Operation[Unit, *string]{ID: 34, Name: "get_current_beta_name"}
	GetCurrentGameLanguage        = rpc.Operation[Unit, string]{ID: 35, Name: "get_current_game_language"}
	GetDlcCount                   = rpc.Operation[Unit, int32]{ID: 36, Name: "get_dlc_count"}
	GetDlcDownloadProgress        = rpc.Operation[AppID, DlcDownloadProgress]{ID: 37, Name: "get_dlc_download_progress"}
	GetEarliestPurchaseUnixTime   = rpc.Operation[AppID, uint32]{ID: 38, Name: "get_earliest_purchase_unix_time"}
	GetInstalledDepots            = rpc.Operation[AppID, []DepotID]{ID: 39, Name: "get_installed_depots"}
	GetLaunchCommandLine          = rpc.Operation[Unit, string]{ID: 40, Name: "get_launch_command_line"}
	GetLaunchQueryParam           = rpc.Operation[string, *string]{ID: 41, Name: "get_launch_query_param"}
	InstallDlc                    = rpc.Operation[AppID, Unit]{ID: 42, Name: "install_dlc"}
	MarkContentCorrupt            = rpc.Operation[bool, bool]{ID: 43, Name: "mark_content_corrupt"}
	UninstallDlc                  = rpc.Operation[AppID, Unit]{ID: 44, Name: "uninstall_dlc"}
)

// Utils.
var (
	GetAppID                     = rpc.Operation[Unit, AppID]{ID: 60, Name: "get_appid"}
	GetCurrentBatteryPower       = rpc.Operation[Unit, uint8]{ID: 61, Name: "get_current_battery_power"}
	GetEnteredGamepadTextInput   = rpc.Operation[Unit, *string]{ID: 62, Name: "get_entered_gamepad_text_input"}
	IsOverlayEnabled             = rpc.Operation[Unit, bool]{ID: 63, Name: "is_overlay_enabled"}
	IsSteamInBigPictureMode      = rpc.Operation[Unit, bool]{ID: 64, Name: "is_steam_in_big_picture_mode"}
	IsSteamRunningInVR           = rpc.Operation[Unit, bool]{ID: 65, Name: "is_steam_running_in_vr"}
	IsSteamRunningOnSteamDeck    = rpc.Operation[Unit, bool]{ID: 66, Name: "is_steam_running_on_steam_deck"}
	IsVRHeadsetStreamingEnabled  = rpc.Operation[Unit, bool]{ID: 67, Name: "is_vr_headset_streaming_enabled"}
	SetVRHeadsetStreamingEnabled = rpc.Operation[bool, Unit]{ID: 68, Name: "set_vr_headset_streaming_enabled"}
	ShowGamepadTextInput         = rpc.Operation[GamepadTextInputArgs, bool]{ID: 69, Name: "show_gamepad_text_input"}
	ShowFloatingGamepadTextInput = rpc.Operation[FloatingGamepadTextInputArgs, bool]{ID: 70, Name: "show_floating_gamepad_text_input"}
	SetGameLauncherMode          = rpc.Operation[bool, Unit]{ID: 71, Name: "set_game_launcher_mode"}
	StartVRDashboard             = rpc.Operation[Unit, Unit]{ID: 72, Name: "start_vr_dashboard"}
)

// Remote storage.
var (
	BeginFileWriteBatch = rpc.Operation[Unit, Unit]{ID: 90, Name: "begin_file_write_batch"}
	EndFileWriteBatch   = rpc.Operation[Unit, Unit]{ID: 91, Name: "end_file_write_batch"}
)

// Input.
var (
	InputInit                      = rpc.Operation[InputInitArgs, bool]{ID: 100, Name: "input_init", Timeout: InputInitTimeout}
	InputShutdown                  = rpc.Operation[Unit, bool]{ID: 101, Name: "input_shutdown"}
	GetConnectedControllers        = rpc.Operation[Unit, []InputHandle]{ID: 102, Name: "get_connected_controllers"}
	GetActionSetHandle             = rpc.Operation[string, ActionSetHandle]{ID: 103, Name: "get_action_set_handle"}
	GetAnalogActionHandle          = rpc.Operation[string, AnalogActionHandle]{ID: 104, Name: "get_analog_action_handle"}
	GetDigitalActionHandle         = rpc.Operation[string, DigitalActionHandle]{ID: 105, Name: "get_digital_action_handle"}
	ActivateActionSet              = rpc.Operation[ActionSetArgs, Unit]{ID: 106, Name: "activate_action_set"}
	ActivateActionSetLayer         = rpc.Operation[ActionSetArgs, Unit]{ID: 107, Name: "activate_action_set_layer"}
	DeactivateActionSetLayer       = rpc.Operation[ActionSetArgs, Unit]{ID: 108, Name: "deactivate_action_set_layer"}
	DeactivateAllActionSetLayers   = rpc.Operation[InputHandle, Unit]{ID: 109, Name: "deactivate_all_action_set_layers"}
	GetActiveActionSetLayers       = rpc.Operation[InputHandle, []ActionSetHandle]{ID: 110, Name: "get_active_action_set_layers"}
	GetCurrentActionSet            = rpc.Operation[InputHandle, ActionSetHandle]{ID: 111, Name: "get_current_action_set"}
	GetInputTypeForHandle          = rpc.Operation[InputHandle, InputType]{ID: 112, Name: "get_input_type_for_handle"}
	TriggerVibration               = rpc.Operation[VibrationArgs, Unit]{ID: 113, Name: "trigger_vibration"}
	SetLEDColor                    = rpc.Operation[LEDArgs, Unit]{ID: 114, Name: "set_led_color"}
	ShowBindingPanel               = rpc.Operation[InputHandle, bool]{ID: 115, Name: "show_binding_panel"}
	GetControllerForGamepadIndex   = rpc.Operation[int32, InputHandle]{ID: 116, Name: "get_controller_for_gamepad_index"}
	GetGamepadIndexForController   = rpc.Operation[InputHandle, int32]{ID: 117, Name: "get_gamepad_index_for_controller"}
	GetAnalogActionOrigins         = rpc.Operation[ActionOriginsArgs, []ActionOrigin]{ID: 118, Name: "get_analog_action_origins"}
	GetDigitalActionOrigins        = rpc.Operation[ActionOriginsArgs, []ActionOrigin]{ID: 119, Name: "get_digital_action_origins"}
	GetStringForActionOrigin       = rpc.Operation[ActionOrigin, string]{ID: 120, Name: "get_string_for_action_origin"}
	StopAnalogActionMomentum       = rpc.Operation[ActionArgs, Unit]{ID: 121, Name: "stop_analog_action_momentum"}
	SetInputActionManifestFilePath = rpc.Operation[string, bool]{ID: 122, Name: "set_input_action_manifest_file_path"}
)

// Operations is the closed table of every operation above.
var Operations = rpc.MustCatalog(
	Exit.Descriptor(),

	ClearRichPresence.Descriptor(),
	SetRichPresence.Descriptor(),

	GetDlcDataByIndex.Descriptor(),
	IsAppInstalled.Descriptor(),
	IsCybercafe.Descriptor(),
	IsDlcInstalled.Descriptor(),
	IsLowViolence.Descriptor(),
	IsSubscribed.Descriptor(),
	IsSubscribedApp.Descriptor(),
	IsSubscribedFromFamilySharing.Descriptor(),
	IsSubscribedFromFreeWeekend.Descriptor(),
	IsVacBanned.Descriptor(),
	GetAppBuildID.Descriptor(),
	GetAppInstallDir.Descriptor(),
	GetAppOwner.Descriptor(),
	GetAvailableGameLanguages.Descriptor(),
	GetCurrentBetaName.Descriptor(),
	GetCurrentGameLanguage.Descriptor(),
	GetDlcCount.Descriptor(),
	GetDlcDownloadProgress.Descriptor(),
	GetEarliestPurchaseUnixTime.Descriptor(),
	GetInstalledDepots.Descriptor(),
	GetLaunchCommandLine.Descriptor(),
	GetLaunchQueryParam.Descriptor(),
	InstallDlc.Descriptor(),
	MarkContentCorrupt.Descriptor(),
	UninstallDlc.Descriptor(),

	GetAppID.Descriptor(),
	GetCurrentBatteryPower.Descriptor(),
	GetEnteredGamepadTextInput.Descriptor(),
	IsOverlayEnabled.Descriptor(),
	IsSteamInBigPictureMode.Descriptor(),
	IsSteamRunningInVR.Descriptor(),
	IsSteamRunningOnSteamDeck.Descriptor(),
	IsVRHeadsetStreamingEnabled.Descriptor(),
	SetVRHeadsetStreamingEnabled.Descriptor(),
	ShowGamepadTextInput.Descriptor(),
	ShowFloatingGamepadTextInput.Descriptor(),
	SetGameLauncherMode.Descriptor(),
	StartVRDashboard.Descriptor(),

	BeginFileWriteBatch.Descriptor(),
	EndFileWriteBatch.Descriptor(),

	InputInit.Descriptor(),
	InputShutdown.Descriptor(),
	GetConnectedControllers.Descriptor(),
	GetActionSetHandle.Descriptor(),
	GetAnalogActionHandle.Descriptor(),
	GetDigitalActionHandle.Descriptor(),
	ActivateActionSet.Descriptor(),
	ActivateActionSetLayer.Descriptor(),
	DeactivateActionSetLayer.Descriptor(),
	DeactivateAllActionSetLayers.Descriptor(),
	GetActiveActionSetLayers.Descriptor(),
	GetCurrentActionSet.Descriptor(),
	GetInputTypeForHandle.Descriptor(),
	TriggerVibration.Descriptor(),
	SetLEDColor.Descriptor(),
	ShowBindingPanel.Descriptor(),
	GetControllerForGamepadIndex.Descriptor(),
	GetGamepadIndexForController.Descriptor(),
	GetAnalogActionOrigins.Descriptor(),
	GetDigitalActionOrigins.Descriptor(),
	GetStringForActionOrigin.Descriptor(),
	StopAnalogActionMomentum.Descriptor(),
	SetInputActionManifestFilePath.Descriptor(),
)
