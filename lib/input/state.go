// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"unsafe"

	"github.com/libretro/mist/lib/catalog"
)

const (
	// MaxControllers is the number of controllers tracked at once, and
	// the number of gamepad slots.
	MaxControllers = 16

	// MaxAnalogActions bounds analog action handles.
	MaxAnalogActions = 16

	// MaxDigitalActions bounds digital action handles.
	MaxDigitalActions = 128

	// MaxOrigins bounds the origins returned for one action.
	MaxOrigins = 8

	// MaxActiveLayers bounds the active action set layers per controller.
	MaxActiveLayers = 16
)

// Sizes of the shared structs. Both processes are built against these.
const (
	AnalogActionDataSize  = 16
	DigitalActionDataSize = 2
	MotionDataSize        = 40
	GamepadSize           = 568
	StateSize             = 9352
)

// SourceMode is the input source an analog action is bound to.
type SourceMode uint32

const (
	SourceModeNone SourceMode = iota
	SourceModeDpad
	SourceModeButtons
	SourceModeFourButtons
	SourceModeAbsoluteMouse
	SourceModeRelativeMouse
	SourceModeJoystickMove
	SourceModeJoystickMouse
	SourceModeJoystickCamera
	SourceModeScrollWheel
	SourceModeTrigger
	SourceModeTouchMenu
	SourceModeMouseJoystick
	SourceModeMouseRegion
	SourceModeRadialMenu
	SourceModeSingleButton
	SourceModeSwitches
)

// AnalogActionData is the current value of one analog action.
type AnalogActionData struct {
	Mode   SourceMode
	X      float32
	Y      float32
	Active bool
	_      [3]byte
}

// DigitalActionData is the current value of one digital action.
type DigitalActionData struct {
	State  bool
	Active bool
}

// MotionData is a controller's orientation and motion sensors.
type MotionData struct {
	RotQuatX  float32
	RotQuatY  float32
	RotQuatZ  float32
	RotQuatW  float32
	PosAccelX float32
	PosAccelY float32
	PosAccelZ float32
	RotVelX   float32
	RotVelY   float32
	RotVelZ   float32
}

// Gamepad is one slot's sampled controller.
type Gamepad struct {
	InputHandle catalog.InputHandle
	InputType   catalog.InputType
	_           uint32
	Analog      [MaxAnalogActions]AnalogActionData
	Digital     [MaxDigitalActions]DigitalActionData
	Motion      MotionData
}

// State is the hot channel payload.
type State struct {
	// ConnectedCount is the number of valid entries in Connected.
	ConnectedCount uint32
	_              uint32
	Connected      [MaxControllers]catalog.InputHandle

	// Mapping[i] is the controller in gamepad slot i, or zero.
	Mapping  [MaxControllers]catalog.InputHandle
	Gamepads [MaxControllers]Gamepad
}

// Compile-time layout checks: each line fails to build if the struct
// grows or shrinks.
var (
	_ [AnalogActionDataSize - unsafe.Sizeof(AnalogActionData{})]struct{}
	_ [unsafe.Sizeof(AnalogActionData{}) - AnalogActionDataSize]struct{}
	_ [DigitalActionDataSize - unsafe.Sizeof(DigitalActionData{})]struct{}
	_ [unsafe.Sizeof(DigitalActionData{}) - DigitalActionDataSize]struct{}
	_ [MotionDataSize - unsafe.Sizeof(MotionData{})]struct{}
	_ [unsafe.Sizeof(MotionData{}) - MotionDataSize]struct{}
	_ [GamepadSize - unsafe.Sizeof(Gamepad{})]struct{}
	_ [unsafe.Sizeof(Gamepad{}) - GamepadSize]struct{}
	_ [StateSize - unsafe.Sizeof(State{})]struct{}
	_ [unsafe.Sizeof(State{}) - StateSize]struct{}
)

// ConnectedControllers returns the connected controller handles.
func (s *State) ConnectedControllers() []catalog.InputHandle {
	count := min(int(s.ConnectedCount), MaxControllers)
	handles := make([]catalog.InputHandle, count)
	copy(handles, s.Connected[:count])
	return handles
}

// Gamepad returns the slot holding handle, or nil when the controller
// is not mapped.
func (s *State) Gamepad(handle catalog.InputHandle) *Gamepad {
	if handle == 0 {
		return nil
	}
	for index := range s.Gamepads {
		if s.Mapping[index] == handle && s.Gamepads[index].InputHandle == handle {
			return &s.Gamepads[index]
		}
	}
	return nil
}

// AnalogAction returns the analog action's value on a controller. An
// unmapped controller or out-of-range action yields the zero value.
func (s *State) AnalogAction(handle catalog.InputHandle, action catalog.AnalogActionHandle) AnalogActionData {
	pad := s.Gamepad(handle)
	if pad == nil || action >= MaxAnalogActions {
		return AnalogActionData{}
	}
	return pad.Analog[action]
}

// DigitalAction returns the digital action's value on a controller. An
// unmapped controller or out-of-range action yields the zero value.
func (s *State) DigitalAction(handle catalog.InputHandle, action catalog.DigitalActionHandle) DigitalActionData {
	pad := s.Gamepad(handle)
	if pad == nil || action >= MaxDigitalActions {
		return DigitalActionData{}
	}
	return pad.Digital[action]
}

// Motion returns a controller's motion data, or the zero value when the
// controller is not mapped.
func (s *State) Motion(handle catalog.InputHandle) MotionData {
	pad := s.Gamepad(handle)
	if pad == nil {
		return MotionData{}
	}
	return pad.Motion
}
