// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"testing"

	"github.com/libretro/mist/lib/codec"
	"github.com/libretro/mist/lib/protocol"
)

func TestCatalogIDRanges(t *testing.T) {
	t.Parallel()
	ranges := []struct {
		prefix string
		low    protocol.CallID
		high   protocol.CallID
		names  []string
	}{
		{"internal", 1, 9, []string{"exit"}},
		{"friends", 10, 19, []string{"clear_rich_presence", "set_rich_presence"}},
		{"apps", 20, 59, []string{"get_dlc_data_by_index", "get_app_install_dir", "uninstall_dlc"}},
		{"utils", 60, 89, []string{"get_appid", "is_steam_running_on_steam_deck", "show_gamepad_text_input"}},
		{"remote storage", 90, 99, []string{"begin_file_write_batch", "end_file_write_batch"}},
		{"input", 100, 149, []string{"input_init", "get_analog_action_handle", "set_led_color"}},
	}
	for _, group := range ranges {
		for _, name := range group.names {
			descriptor, ok := Operations.ByName(name)
			if !ok {
				t.Errorf("%s: %q missing from the catalog", group.prefix, name)
				continue
			}
			if descriptor.ID < group.low || descriptor.ID > group.high {
				t.Errorf("%s: %q has id %d outside %d..%d", group.prefix, name, descriptor.ID, group.low, group.high)
			}
		}
	}
}

func TestCatalogShape(t *testing.T) {
	t.Parallel()
	exit, _ := Operations.ByName("exit")
	if !exit.OneWay || exit.HasResult() {
		t.Errorf("exit should be one-way without a result: %+v", exit)
	}
	clearPresence, _ := Operations.ByName("clear_rich_presence")
	if !clearPresence.OneWay {
		t.Error("clear_rich_presence should be one-way")
	}
	inputInit, _ := Operations.ByName("input_init")
	if inputInit.Timeout != InputInitTimeout {
		t.Errorf("input_init timeout: got %v, want %v", inputInit.Timeout, InputInitTimeout)
	}
	for _, descriptor := range Operations.All() {
		if descriptor.Name != "input_init" && descriptor.Timeout != 0 {
			t.Errorf("%s overrides the default timeout unexpectedly", descriptor.Name)
		}
	}
	if got := len(Operations.All()); got < 60 {
		t.Errorf("catalog has %d operations, want at least 60", got)
	}
}

func TestDecodeEvent(t *testing.T) {
	t.Parallel()
	data, err := codec.Marshal(DlcInstalled{AppID: 1234})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := DecodeEvent(EventDlcInstalled, data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if got, ok := decoded.(DlcInstalled); !ok || got.AppID != 1234 {
		t.Errorf("got %#v, want DlcInstalled{AppID: 1234}", decoded)
	}

	data, _ = codec.Marshal(GamepadTextInputDismissed{Submitted: true, SubmittedLen: 5})
	decoded, err = DecodeEvent(EventGamepadTextInputDismissed, data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if got, ok := decoded.(GamepadTextInputDismissed); !ok || !got.Submitted || got.SubmittedLen != 5 {
		t.Errorf("got %#v", decoded)
	}

	if decoded, err := DecodeEvent(EventSteamShutdown, nil); err != nil || decoded != (SteamShutdown{}) {
		t.Errorf("steam shutdown: got %#v, %v", decoded, err)
	}
	if _, err := DecodeEvent(9999, nil); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestNames(t *testing.T) {
	t.Parallel()
	if EventName(EventDlcInstalled) != "dlc_installed" || EventName(1) != "event(1)" {
		t.Errorf("unexpected event names: %s, %s", EventName(EventDlcInstalled), EventName(1))
	}
	if InputTypePS5Controller.String() != "ps5" || InputType(200).String() != "unknown" {
		t.Errorf("unexpected input type names")
	}
	for kind := InputTypeUnknown; kind <= InputTypeSteamDeckController; kind++ {
		parsed, ok := ParseInputType(kind.String())
		if !ok || parsed != kind {
			t.Errorf("ParseInputType(%q) = %v, %v; want %v", kind.String(), parsed, ok, kind)
		}
	}
	if _, ok := ParseInputType("gamecube"); ok {
		t.Error("ParseInputType accepted an unknown name")
	}
}
