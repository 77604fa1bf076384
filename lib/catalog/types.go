// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

// Platform identifiers.
type (
	AppID   = uint32
	BuildID = int32
	DepotID = uint32
	SteamID = uint64
)

// Input handles. All are opaque 64-bit values minted by the SDK.
type (
	InputHandle         = uint64
	ActionSetHandle     = uint64
	AnalogActionHandle  = uint64
	DigitalActionHandle = uint64
	ActionOrigin        = uint32
)

// AllControllers addresses every connected controller at once.
const AllControllers InputHandle = ^InputHandle(0)

// InputType identifies a controller family.
type InputType uint32

const (
	InputTypeUnknown InputType = iota
	InputTypeSteamController
	InputTypeXBox360Controller
	InputTypeXBoxOneController
	InputTypeGenericGamepad
	InputTypePS4Controller
	InputTypeAppleMFiController
	InputTypeAndroidController
	InputTypeSwitchJoyConPair
	InputTypeSwitchJoyConSingle
	InputTypeSwitchProController
	InputTypeMobileTouch
	InputTypePS3Controller
	InputTypePS5Controller
	InputTypeSteamDeckController
)

var inputTypeNames = [...]string{
	"unknown", "steam_controller", "xbox360", "xbox_one", "generic_gamepad",
	"ps4", "apple_mfi", "android", "switch_joycon_pair", "switch_joycon_single",
	"switch_pro", "mobile_touch", "ps3", "ps5", "steam_deck",
}

func (t InputType) String() string {
	if int(t) < len(inputTypeNames) {
		return inputTypeNames[t]
	}
	return "unknown"
}

// ParseInputType is the inverse of [InputType.String].
func ParseInputType(name string) (InputType, bool) {
	for index, candidate := range inputTypeNames {
		if candidate == name {
			return InputType(index), true
		}
	}
	return InputTypeUnknown, false
}

// DlcData describes one DLC by index.
type DlcData struct {
	AppID     AppID  `json:"app_id"`
	Available bool   `json:"available"`
	Name      string `json:"name"`
}

// DlcDownloadProgress reports a DLC download.
type DlcDownloadProgress struct {
	Downloading     bool   `json:"downloading"`
	BytesDownloaded uint64 `json:"bytes_downloaded"`
	BytesTotal      uint64 `json:"bytes_total"`
}

// RichPresenceArgs sets one rich presence key. A nil Value clears it.
type RichPresenceArgs struct {
	Key   string  `json:"key"`
	Value *string `json:"value,omitempty"`
}

// GamepadTextInputMode selects the on-screen keyboard's echo mode.
type GamepadTextInputMode uint8

const (
	GamepadTextInputNormal GamepadTextInputMode = iota
	GamepadTextInputPassword
)

// GamepadTextInputLineMode selects single or multi-line entry.
type GamepadTextInputLineMode uint8

const (
	GamepadTextInputSingleLine GamepadTextInputLineMode = iota
	GamepadTextInputMultipleLines
)

// GamepadTextInputArgs opens the big-picture text entry dialog.
type GamepadTextInputArgs struct {
	Mode         GamepadTextInputMode     `json:"mode"`
	LineMode     GamepadTextInputLineMode `json:"line_mode"`
	Description  string                   `json:"description"`
	CharMax      uint32                   `json:"char_max"`
	ExistingText string                   `json:"existing_text"`
}

// FloatingGamepadTextInputMode selects the floating keyboard layout.
type FloatingGamepadTextInputMode uint8

const (
	FloatingGamepadTextInputSingleLine FloatingGamepadTextInputMode = iota
	FloatingGamepadTextInputMultipleLines
	FloatingGamepadTextInputEmail
	FloatingGamepadTextInputNumeric
)

// FloatingGamepadTextInputArgs opens the floating keyboard over a
// text field.
type FloatingGamepadTextInputArgs struct {
	Mode   FloatingGamepadTextInputMode `json:"mode"`
	X      int32                        `json:"x"`
	Y      int32                        `json:"y"`
	Width  int32                        `json:"width"`
	Height int32                        `json:"height"`
}

// InputInitArgs names the shared-memory segment the worker publishes
// controller state into.
type InputInitArgs struct {
	Segment string `json:"segment"`
}

// ActionSetArgs targets an action set or layer on one controller.
type ActionSetArgs struct {
	InputHandle InputHandle     `json:"input_handle"`
	ActionSet   ActionSetHandle `json:"action_set"`
}

// ActionArgs targets one action on one controller.
type ActionArgs struct {
	InputHandle InputHandle `json:"input_handle"`
	Action      uint64      `json:"action"`
}

// ActionOriginsArgs asks for the physical origins bound to an action.
type ActionOriginsArgs struct {
	InputHandle InputHandle     `json:"input_handle"`
	ActionSet   ActionSetHandle `json:"action_set"`
	Action      uint64          `json:"action"`
}

// VibrationArgs drives the rumble motors.
type VibrationArgs struct {
	InputHandle InputHandle `json:"input_handle"`
	LeftSpeed   uint16      `json:"left_speed"`
	RightSpeed  uint16      `json:"right_speed"`
}

// LEDFlag controls how SetLEDColor is applied.
type LEDFlag uint32

const (
	LEDFlagSetColor LEDFlag = iota
	LEDFlagRestoreUserDefault
)

// LEDArgs sets a controller light.
type LEDArgs struct {
	InputHandle InputHandle `json:"input_handle"`
	Red         uint8       `json:"red"`
	Green       uint8       `json:"green"`
	Blue        uint8       `json:"blue"`
	Flags       LEDFlag     `json:"flags"`
}
