// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"fmt"
	"slices"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/input"
)

// inputState simulates the controller subsystem. It shares the world's
// lock.
type inputState struct {
	world *world

	initialized  bool
	frame        int
	connected    []catalog.InputHandle
	actionSets   map[catalog.InputHandle]catalog.ActionSetHandle
	layers       map[catalog.InputHandle][]catalog.ActionSetHandle
	vibration    map[catalog.InputHandle][2]uint16
	manifestPath string
}

func newInputState(w *world) *inputState {
	return &inputState{
		world:      w,
		actionSets: map[catalog.InputHandle]catalog.ActionSetHandle{},
		layers:     map[catalog.InputHandle][]catalog.ActionSetHandle{},
		vibration:  map[catalog.InputHandle][2]uint16{},
	}
}

func (s *inputState) lock() func() {
	s.world.mu.Lock()
	return s.world.mu.Unlock
}

func (s *inputState) profile() *InputProfile { return &s.world.profile.Input }

func (s *inputState) controller(handle catalog.InputHandle) (*ControllerProfile, bool) {
	if !slices.Contains(s.connected, handle) {
		return nil, false
	}
	controllers := s.profile().Controllers
	index := slices.IndexFunc(controllers, func(c ControllerProfile) bool { return c.Handle == handle })
	if index < 0 {
		return nil, false
	}
	return &controllers[index], true
}

// targets expands catalog.AllControllers.
func (s *inputState) targets(handle catalog.InputHandle) []catalog.InputHandle {
	if handle == catalog.AllControllers {
		return slices.Clone(s.connected)
	}
	return []catalog.InputHandle{handle}
}

func (s *inputState) Init() bool {
	defer s.lock()()
	if s.profile().InitFails {
		return false
	}
	s.initialized = true
	s.frame = 0
	s.refresh()
	return true
}

func (s *inputState) Shutdown() bool {
	defer s.lock()()
	s.initialized = false
	s.connected = nil
	return true
}

// RunFrame advances one input frame and recomputes which controllers
// are connected.
func (s *inputState) RunFrame() {
	defer s.lock()()
	if !s.initialized {
		return
	}
	s.frame++
	s.refresh()
}

func (s *inputState) refresh() {
	s.connected = s.connected[:0]
	for _, controller := range s.profile().Controllers {
		if s.frame < controller.ConnectAt {
			continue
		}
		if controller.DisconnectAt != 0 && s.frame >= controller.DisconnectAt {
			continue
		}
		s.connected = append(s.connected, controller.Handle)
	}
}

func (s *inputState) ConnectedControllers() []catalog.InputHandle {
	defer s.lock()()
	return slices.Clone(s.connected)
}

func (s *inputState) InputTypeForHandle(handle catalog.InputHandle) catalog.InputType {
	defer s.lock()()
	controller, ok := s.controller(handle)
	if !ok {
		return catalog.InputTypeUnknown
	}
	kind, _ := catalog.ParseInputType(controller.Type)
	return kind
}

func (s *inputState) AnalogActionData(handle catalog.InputHandle, action catalog.AnalogActionHandle) input.AnalogActionData {
	defer s.lock()()
	controller, ok := s.controller(handle)
	if !ok {
		return input.AnalogActionData{}
	}
	position, ok := controller.Analog[action]
	if !ok {
		return input.AnalogActionData{Mode: input.SourceModeJoystickMove, Active: true}
	}
	return input.AnalogActionData{Mode: input.SourceModeJoystickMove, X: position[0], Y: position[1], Active: true}
}

func (s *inputState) DigitalActionData(handle catalog.InputHandle, action catalog.DigitalActionHandle) input.DigitalActionData {
	defer s.lock()()
	controller, ok := s.controller(handle)
	if !ok {
		return input.DigitalActionData{}
	}
	return input.DigitalActionData{State: slices.Contains(controller.Pressed, action), Active: true}
}

func (s *inputState) MotionData(handle catalog.InputHandle) input.MotionData {
	defer s.lock()()
	if _, ok := s.controller(handle); !ok {
		return input.MotionData{}
	}
	return input.MotionData{RotQuatW: 1}
}

func (s *inputState) ActionSetHandle(name string) catalog.ActionSetHandle {
	return s.profile().ActionSets[name]
}

func (s *inputState) AnalogActionHandle(name string) catalog.AnalogActionHandle {
	return s.profile().AnalogActions[name]
}

func (s *inputState) DigitalActionHandle(name string) catalog.DigitalActionHandle {
	return s.profile().DigitalActions[name]
}

func (s *inputState) ActivateActionSet(handle catalog.InputHandle, set catalog.ActionSetHandle) {
	defer s.lock()()
	for _, target := range s.targets(handle) {
		s.actionSets[target] = set
	}
}

func (s *inputState) ActivateActionSetLayer(handle catalog.InputHandle, layer catalog.ActionSetHandle) {
	defer s.lock()()
	for _, target := range s.targets(handle) {
		layers := s.layers[target]
		if !slices.Contains(layers, layer) && len(layers) < input.MaxActiveLayers {
			s.layers[target] = append(layers, layer)
		}
	}
}

func (s *inputState) DeactivateActionSetLayer(handle catalog.InputHandle, layer catalog.ActionSetHandle) {
	defer s.lock()()
	for _, target := range s.targets(handle) {
		s.layers[target] = slices.DeleteFunc(s.layers[target], func(active catalog.ActionSetHandle) bool {
			return active == layer
		})
	}
}

func (s *inputState) DeactivateAllActionSetLayers(handle catalog.InputHandle) {
	defer s.lock()()
	for _, target := range s.targets(handle) {
		delete(s.layers, target)
	}
}

func (s *inputState) ActiveActionSetLayers(handle catalog.InputHandle) []catalog.ActionSetHandle {
	defer s.lock()()
	return slices.Clone(s.layers[handle])
}

func (s *inputState) CurrentActionSet(handle catalog.InputHandle) catalog.ActionSetHandle {
	defer s.lock()()
	return s.actionSets[handle]
}

func (s *inputState) TriggerVibration(handle catalog.InputHandle, leftSpeed, rightSpeed uint16) {
	defer s.lock()()
	for _, target := range s.targets(handle) {
		s.vibration[target] = [2]uint16{leftSpeed, rightSpeed}
	}
}

func (s *inputState) SetLEDColor(catalog.InputHandle, uint8, uint8, uint8, catalog.LEDFlag) {}

func (s *inputState) ShowBindingPanel(handle catalog.InputHandle) bool {
	defer s.lock()()
	_, ok := s.controller(handle)
	return ok
}

func (s *inputState) ControllerForGamepadIndex(index int32) catalog.InputHandle {
	defer s.lock()()
	if index < 0 || int(index) >= len(s.connected) {
		return 0
	}
	return s.connected[index]
}

func (s *inputState) GamepadIndexForController(handle catalog.InputHandle) int32 {
	defer s.lock()()
	return int32(slices.Index(s.connected, handle))
}

func (s *inputState) AnalogActionOrigins(handle catalog.InputHandle, set catalog.ActionSetHandle, action catalog.AnalogActionHandle) []catalog.ActionOrigin {
	return s.origins(handle, action)
}

func (s *inputState) DigitalActionOrigins(handle catalog.InputHandle, set catalog.ActionSetHandle, action catalog.DigitalActionHandle) []catalog.ActionOrigin {
	return s.origins(handle, action+input.MaxAnalogActions)
}

// origins derives a stable origin per action from the profile's origin
// table, so lookups round-trip through StringForActionOrigin.
func (s *inputState) origins(handle catalog.InputHandle, key uint64) []catalog.ActionOrigin {
	defer s.lock()()
	if _, ok := s.controller(handle); !ok {
		return nil
	}
	origin := catalog.ActionOrigin(key)
	if _, ok := s.profile().Origins[origin]; !ok {
		return nil
	}
	return []catalog.ActionOrigin{origin}
}

func (s *inputState) StringForActionOrigin(origin catalog.ActionOrigin) string {
	if name, ok := s.profile().Origins[origin]; ok {
		return name
	}
	return fmt.Sprintf("origin %d", origin)
}

func (s *inputState) StopAnalogActionMomentum(catalog.InputHandle, catalog.AnalogActionHandle) {}

func (s *inputState) SetInputActionManifestFilePath(path string) bool {
	defer s.lock()()
	if path == "" {
		return false
	}
	s.manifestPath = path
	return true
}

// Vibration returns the last rumble speeds sent to a controller.
func (p *Provider) Vibration(handle catalog.InputHandle) (left, right uint16) {
	state := p.world.input
	defer state.lock()()
	speeds := state.vibration[handle]
	return speeds[0], speeds[1]
}
