// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/libretro/mist/lib/catalog"
)

// ProfileEnvVar names the environment variable the worker reads the
// profile path from.
const ProfileEnvVar = "MIST_SIM_PROFILE"

// Profile is the simulated world.
type Profile struct {
	// InitError, when set, makes Init fail with this message.
	InitError string `yaml:"init_error"`

	AppID     catalog.AppID   `yaml:"app_id"`
	BuildID   catalog.BuildID `yaml:"build_id"`
	Owner     catalog.SteamID `yaml:"owner"`
	User      uint64          `yaml:"user"`
	BetaName  string          `yaml:"beta_name"`
	Languages []string        `yaml:"languages"`
	Language  string          `yaml:"language"`

	LaunchCommandLine string            `yaml:"launch_command_line"`
	LaunchParams      map[string]string `yaml:"launch_params"`

	Subscribed    bool `yaml:"subscribed"`
	FamilySharing bool `yaml:"family_sharing"`
	FreeWeekend   bool `yaml:"free_weekend"`
	LowViolence   bool `yaml:"low_violence"`
	Cybercafe     bool `yaml:"cybercafe"`
	VacBanned     bool `yaml:"vac_banned"`

	// InstalledApps maps other installed apps to their install dirs.
	InstalledApps map[catalog.AppID]string `yaml:"installed_apps"`
	InstallDir    string                   `yaml:"install_dir"`
	Dlc           []DlcProfile             `yaml:"dlc"`

	Environment EnvironmentProfile `yaml:"environment"`

	// EnteredText is what the user "types" into a gamepad text dialog.
	// Empty means the dialog is dismissed without submitting.
	EnteredText string `yaml:"entered_text"`

	Input  InputProfile   `yaml:"input"`
	Events []EventProfile `yaml:"events"`
}

// DlcProfile is one DLC.
type DlcProfile struct {
	AppID        catalog.AppID     `yaml:"app_id"`
	Name         string            `yaml:"name"`
	Available    bool              `yaml:"available"`
	Installed    bool              `yaml:"installed"`
	Depots       []catalog.DepotID `yaml:"depots"`
	PurchaseTime uint32            `yaml:"purchase_time"`
}

// EnvironmentProfile is the state of the platform client.
type EnvironmentProfile struct {
	Overlay      bool  `yaml:"overlay"`
	BigPicture   bool  `yaml:"big_picture"`
	VR           bool  `yaml:"vr"`
	SteamDeck    bool  `yaml:"steam_deck"`
	BatteryPower uint8 `yaml:"battery_power"`
}

// InputProfile describes controllers and the action manifest.
type InputProfile struct {
	// InitFails makes input Init report false.
	InitFails      bool                                   `yaml:"init_fails"`
	ActionSets     map[string]catalog.ActionSetHandle     `yaml:"action_sets"`
	AnalogActions  map[string]catalog.AnalogActionHandle  `yaml:"analog_actions"`
	DigitalActions map[string]catalog.DigitalActionHandle `yaml:"digital_actions"`
	Origins        map[catalog.ActionOrigin]string        `yaml:"origins"`
	Controllers    []ControllerProfile                    `yaml:"controllers"`
}

// ControllerProfile is one controller. It is connected from input frame
// ConnectAt (inclusive) until DisconnectAt (exclusive, zero means
// never).
type ControllerProfile struct {
	Handle       catalog.InputHandle `yaml:"handle"`
	Type         string              `yaml:"type"`
	ConnectAt    int                 `yaml:"connect_at"`
	DisconnectAt int                 `yaml:"disconnect_at"`

	// Analog maps action handles to a fixed stick position.
	Analog map[catalog.AnalogActionHandle][2]float32 `yaml:"analog"`
	// Pressed lists digital action handles held down.
	Pressed []catalog.DigitalActionHandle `yaml:"pressed"`
}

// EventProfile is a scripted callback emitted on SDK frame At.
type EventProfile struct {
	At   int    `yaml:"at"`
	Kind string `yaml:"kind"`
	// AppID fills dlc_installed.
	AppID catalog.AppID `yaml:"app_id"`
}

// DefaultProfile is a small world with one owned app, one DLC, and no
// controllers.
func DefaultProfile() *Profile {
	return &Profile{
		AppID:      480,
		BuildID:    1,
		Owner:      76561197960265728,
		User:       1,
		Languages:  []string{"english"},
		Language:   "english",
		Subscribed: true,
		InstallDir: "/opt/mist-sim/app",
		Dlc: []DlcProfile{
			{AppID: 481, Name: "Soundtrack", Available: true},
		},
		Environment: EnvironmentProfile{Overlay: true, BatteryPower: 255},
	}
}

// LoadProfile reads a profile file. Unknown keys are rejected.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sim profile: %w", err)
	}
	profile, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("sim profile %s: %w", path, err)
	}
	return profile, nil
}

// ParseProfile decodes a YAML profile on top of an empty profile.
func ParseProfile(data []byte) (*Profile, error) {
	profile := &Profile{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(profile); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Validate checks names and handles the simulator would otherwise have
// to guess at.
func (p *Profile) Validate() error {
	var errs []error
	seen := map[catalog.InputHandle]bool{}
	for index, controller := range p.Input.Controllers {
		if controller.Handle == 0 {
			errs = append(errs, fmt.Errorf("input.controllers[%d]: handle must be non-zero", index))
		}
		if seen[controller.Handle] {
			errs = append(errs, fmt.Errorf("input.controllers[%d]: duplicate handle %d", index, controller.Handle))
		}
		seen[controller.Handle] = true
		if controller.Type != "" {
			if _, ok := catalog.ParseInputType(controller.Type); !ok {
				errs = append(errs, fmt.Errorf("input.controllers[%d]: unknown type %q", index, controller.Type))
			}
		}
		if controller.DisconnectAt != 0 && controller.DisconnectAt <= controller.ConnectAt {
			errs = append(errs, fmt.Errorf("input.controllers[%d]: disconnect_at %d not after connect_at %d",
				index, controller.DisconnectAt, controller.ConnectAt))
		}
	}
	for index, event := range p.Events {
		if _, ok := eventKinds[event.Kind]; !ok {
			errs = append(errs, fmt.Errorf("events[%d]: unknown kind %q", index, event.Kind))
		}
	}
	return errors.Join(errs...)
}

var eventKinds = map[string]catalog.EventKind{}

func init() {
	for _, kind := range []catalog.EventKind{
		catalog.EventSteamShutdown,
		catalog.EventGamepadTextInputDismissed,
		catalog.EventAppResumingFromSuspend,
		catalog.EventFloatingGamepadTextInputDismissed,
		catalog.EventDlcInstalled,
		catalog.EventRemoteStorageLocalFileChange,
	} {
		eventKinds[catalog.EventName(kind)] = kind
	}
}
