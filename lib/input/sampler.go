// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"fmt"
	"slices"
	"sync"

	"github.com/libretro/mist/lib/catalog"
)

// Source is the controller backend the sampler polls. The worker's SDK
// provider implements it.
type Source interface {
	// RunFrame refreshes the backend's view of every controller.
	RunFrame()
	ConnectedControllers() []catalog.InputHandle
	InputTypeForHandle(handle catalog.InputHandle) catalog.InputType
	AnalogActionData(handle catalog.InputHandle, action catalog.AnalogActionHandle) AnalogActionData
	DigitalActionData(handle catalog.InputHandle, action catalog.DigitalActionHandle) DigitalActionData
	MotionData(handle catalog.InputHandle) MotionData
}

// Sampler builds a [State] from a [Source] once per worker frame.
// Registration may happen from the dispatch goroutine while Sample runs
// in the main loop.
type Sampler struct {
	source Source

	mu      sync.Mutex
	analog  []catalog.AnalogActionHandle
	digital []catalog.DigitalActionHandle
	state   State
}

// NewSampler returns a sampler with no registered actions.
func NewSampler(source Source) *Sampler {
	return &Sampler{source: source}
}

// RegisterAnalog adds an analog action to every subsequent sample.
// Registering the same handle twice is a no-op.
func (s *Sampler) RegisterAnalog(action catalog.AnalogActionHandle) error {
	if action >= MaxAnalogActions {
		return fmt.Errorf("input: analog action handle %d out of range (max %d)", action, MaxAnalogActions-1)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.analog, action) {
		s.analog = append(s.analog, action)
	}
	return nil
}

// RegisterDigital adds a digital action to every subsequent sample.
// Registering the same handle twice is a no-op.
func (s *Sampler) RegisterDigital(action catalog.DigitalActionHandle) error {
	if action >= MaxDigitalActions {
		return fmt.Errorf("input: digital action handle %d out of range (max %d)", action, MaxDigitalActions-1)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.digital, action) {
		s.digital = append(s.digital, action)
	}
	return nil
}

// Reset forgets registered actions and controller slots.
func (s *Sampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analog = nil
	s.digital = nil
	s.state = State{}
}

// Sample polls the source and returns the updated state. The returned
// pointer stays owned by the sampler and is overwritten by the next
// call.
func (s *Sampler) Sample() *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.source.RunFrame()

	connected := s.source.ConnectedControllers()
	if len(connected) > MaxControllers {
		connected = connected[:MaxControllers]
	}
	state := &s.state
	state.Connected = [MaxControllers]catalog.InputHandle{}
	copy(state.Connected[:], connected)
	state.ConnectedCount = uint32(len(connected))

	for slot, handle := range state.Mapping {
		if handle != 0 && !slices.Contains(connected, handle) {
			state.Mapping[slot] = 0
			state.Gamepads[slot] = Gamepad{}
		}
	}
	for _, handle := range connected {
		if handle == 0 || slices.Contains(state.Mapping[:], handle) {
			continue
		}
		if free := slices.Index(state.Mapping[:], 0); free >= 0 {
			state.Mapping[free] = handle
		}
	}

	for slot, handle := range state.Mapping {
		if handle == 0 {
			continue
		}
		pad := &state.Gamepads[slot]
		pad.InputHandle = handle
		pad.InputType = s.source.InputTypeForHandle(handle)
		if pad.InputType == catalog.InputTypeUnknown {
			continue
		}
		for _, action := range s.analog {
			pad.Analog[action] = s.source.AnalogActionData(handle, action)
		}
		for _, action := range s.digital {
			pad.Digital[action] = s.source.DigitalActionData(handle, action)
		}
		pad.Motion = s.source.MotionData(handle)
	}
	return state
}
