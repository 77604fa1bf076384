// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"

	"github.com/libretro/mist/lib/codec"
)

// EventKind is the platform callback identifier carried by an event.
type EventKind = uint32

const (
	EventSteamShutdown                     EventKind = 704
	EventGamepadTextInputDismissed         EventKind = 714
	EventAppResumingFromSuspend            EventKind = 736
	EventFloatingGamepadTextInputDismissed EventKind = 738
	EventDlcInstalled                      EventKind = 1005
	EventRemoteStorageLocalFileChange      EventKind = 1333
)

// DlcInstalled reports that a DLC finished installing.
type DlcInstalled struct {
	AppID AppID `json:"app_id"`
}

// GamepadTextInputDismissed reports that the text entry dialog
// closed. When Submitted, the text is available from
// GetEnteredGamepadTextInput.
type GamepadTextInputDismissed struct {
	Submitted    bool   `json:"submitted"`
	SubmittedLen uint32 `json:"submitted_len"`
}

// Payload-less events.
type (
	SteamShutdown                     struct{}
	AppResumingFromSuspend            struct{}
	FloatingGamepadTextInputDismissed struct{}
	RemoteStorageLocalFileChange      struct{}
)

var eventNames = map[EventKind]string{
	EventSteamShutdown:                     "steam_shutdown",
	EventGamepadTextInputDismissed:         "gamepad_text_input_dismissed",
	EventAppResumingFromSuspend:            "app_resuming_from_suspend",
	EventFloatingGamepadTextInputDismissed: "floating_gamepad_text_input_dismissed",
	EventDlcInstalled:                      "dlc_installed",
	EventRemoteStorageLocalFileChange:      "remote_storage_local_file_change",
}

// EventName returns the snake_case name of kind.
func EventName(kind EventKind) string {
	if name, ok := eventNames[kind]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", kind)
}

// DecodeEvent decodes an event payload into its typed struct.
func DecodeEvent(kind EventKind, data codec.RawMessage) (any, error) {
	var target any
	switch kind {
	case EventDlcInstalled:
		target = &DlcInstalled{}
	case EventGamepadTextInputDismissed:
		target = &GamepadTextInputDismissed{}
	case EventSteamShutdown:
		return SteamShutdown{}, nil
	case EventAppResumingFromSuspend:
		return AppResumingFromSuspend{}, nil
	case EventFloatingGamepadTextInputDismissed:
		return FloatingGamepadTextInputDismissed{}, nil
	case EventRemoteStorageLocalFileChange:
		return RemoteStorageLocalFileChange{}, nil
	default:
		return nil, fmt.Errorf("unknown event kind %d", kind)
	}
	if len(data) > 0 {
		if err := codec.Unmarshal(data, target); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", EventName(kind), err)
		}
	}
	switch typed := target.(type) {
	case *DlcInstalled:
		return *typed, nil
	case *GamepadTextInputDismissed:
		return *typed, nil
	}
	return target, nil
}
