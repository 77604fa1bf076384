// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

// Package sim is a simulated platform SDK driven by a YAML profile. The
// worker runs on it when no vendor SDK is available (tests, CI, and
// hosts without the platform client installed).
//
// A profile describes the app (ownership, languages, DLC), the user
// environment (overlay, Steam Deck, battery), the controllers that come
// and go over time, and scripted callbacks. Time is counted in SDK
// frames: every [Provider.RunCallbacks] is one frame, and every input
// RunFrame is one input frame.
//
// Some calls queue callbacks for the next frame the way the real SDK
// does: InstallDlc produces dlc_installed, ShowGamepadTextInput produces
// gamepad_text_input_dismissed with the profile's entered_text, and
// ShowFloatingGamepadTextInput produces
// floating_gamepad_text_input_dismissed.
package sim
