// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package mist

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/hotchannel"
	"github.com/libretro/mist/lib/input"
	"github.com/libretro/mist/lib/result"
)

// Input is the controller namespace.
type Input struct{ l *Library }

// Input returns the input namespace.
func (l *Library) Input() Input { return Input{l} }

// inputChannel is the host's end of the controller segment.
type inputChannel struct {
	segment *hotchannel.Segment
	reader  *hotchannel.Reader[input.State]

	mu         sync.Mutex
	state      input.State
	generation uint64
}

// close removes the segment file, which ends the worker's input
// session at its next publish, and unmaps it.
func (c *inputChannel) close(logger *slog.Logger) {
	if err := c.segment.Remove(); err != nil {
		logger.Warn("removing input segment", "path", c.segment.Path(), "error", err)
	}
	if err := c.segment.Close(); err != nil {
		logger.Warn("closing input segment", "path", c.segment.Path(), "error", err)
	}
}

func (c *inputChannel) snapshot() *input.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.state
	return &state
}

// segmentDir prefers tmpfs so controller state never touches a disk.
func segmentDir(configured string) string {
	if configured != "" {
		return configured
	}
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return "/dev/shm"
	}
	return ""
}

// Init creates the controller segment and starts the worker's input
// session. It reports false, with no error, when the SDK refuses to
// start input. Init on an initialized session reports true.
func (i Input) Init(ctx context.Context) (bool, error) {
	l := i.l
	l.mu.Lock()
	s := l.supervisor
	ready := l.input != nil
	l.mu.Unlock()
	if s == nil {
		return false, l.fail(result.ErrNotInitialized)
	}
	if ready {
		l.diagnostics.Clear()
		return true, nil
	}

	segment, err := hotchannel.Create[input.State](segmentDir(l.config.Input.SegmentDir))
	if err != nil {
		return false, l.fail(result.Wrap(result.ErrInputShmem, err))
	}
	channel := &inputChannel{segment: segment}
	channel.reader, err = hotchannel.NewReader[input.State](segment)
	if err != nil {
		channel.close(l.logger)
		return false, l.fail(result.Wrap(result.ErrInputShmem, err))
	}

	op := catalog.InputInit
	op.Timeout = l.config.Timeouts.InputInit
	ok, err := call(ctx, l, op, catalog.InputInitArgs{Segment: segment.Path()})
	if err != nil || !ok {
		channel.close(l.logger)
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case l.supervisor != s:
		channel.close(l.logger)
		return false, l.fail(result.New(result.ErrLost, "worker stopped during input init"))
	case l.input != nil:
		channel.close(l.logger)
	default:
		l.input = channel
		l.logger.Info("input session started", "segment", segment.Path())
	}
	return true, nil
}

// Shutdown ends the input session and removes the segment.
func (i Input) Shutdown(ctx context.Context) (bool, error) {
	l := i.l
	l.mu.Lock()
	channel := l.input
	l.input = nil
	l.mu.Unlock()

	ok, err := call(ctx, l, catalog.InputShutdown, catalog.Unit{})
	if channel != nil {
		channel.close(l.logger)
	}
	return ok, err
}

func (i Input) channel() (*inputChannel, error) {
	i.l.mu.Lock()
	defer i.l.mu.Unlock()
	if i.l.input == nil {
		return nil, result.ErrInputNotInitialized
	}
	return i.l.input, nil
}

// RunFrame takes the latest controller snapshot the worker published.
// The data lookups answer from it until the next RunFrame.
func (i Input) RunFrame() error {
	i.l.diagnostics.Clear()
	channel, err := i.channel()
	if err != nil {
		return i.l.fail(err)
	}
	state, generation, err := channel.reader.Read()
	if err != nil {
		if errors.Is(err, hotchannel.ErrClosed) {
			return i.l.fail(result.ErrInputNotInitialized)
		}
		return i.l.fail(result.Wrap(result.ErrInputShmem, err))
	}
	channel.mu.Lock()
	channel.state = state
	channel.generation = generation
	channel.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the state RunFrame last took, or nil
// without an input session.
func (i Input) Snapshot() *input.State {
	channel, err := i.channel()
	if err != nil {
		return nil
	}
	return channel.snapshot()
}

// Generation counts the snapshots the worker has published, as of the
// last RunFrame.
func (i Input) Generation() uint64 {
	channel, err := i.channel()
	if err != nil {
		return 0
	}
	channel.mu.Lock()
	defer channel.mu.Unlock()
	return channel.generation
}

// AnalogActionData reads one analog action from the snapshot. An
// unmapped controller or unregistered action reads as zero.
func (i Input) AnalogActionData(handle catalog.InputHandle, action catalog.AnalogActionHandle) input.AnalogActionData {
	state := i.Snapshot()
	if state == nil {
		return input.AnalogActionData{}
	}
	return state.AnalogAction(handle, action)
}

// DigitalActionData reads one digital action from the snapshot.
func (i Input) DigitalActionData(handle catalog.InputHandle, action catalog.DigitalActionHandle) input.DigitalActionData {
	state := i.Snapshot()
	if state == nil {
		return input.DigitalActionData{}
	}
	return state.DigitalAction(handle, action)
}

// MotionData reads one controller's motion sensors from the snapshot.
func (i Input) MotionData(handle catalog.InputHandle) input.MotionData {
	state := i.Snapshot()
	if state == nil {
		return input.MotionData{}
	}
	return state.Motion(handle)
}

// ConnectedControllers asks the worker for the connected controllers.
func (i Input) ConnectedControllers(ctx context.Context) ([]catalog.InputHandle, error) {
	return call(ctx, i.l, catalog.GetConnectedControllers, catalog.Unit{})
}

// ActionSetHandle resolves an action set by name. Zero means the
// name is unknown.
func (i Input) ActionSetHandle(ctx context.Context, name string) (catalog.ActionSetHandle, error) {
	if err := checkString("action set name", name); err != nil {
		return 0, i.l.fail(err)
	}
	return call(ctx, i.l, catalog.GetActionSetHandle, name)
}

// AnalogActionHandle resolves an analog action and registers it for
// sampling, so its data appears in later snapshots.
func (i Input) AnalogActionHandle(ctx context.Context, name string) (catalog.AnalogActionHandle, error) {
	if err := checkString("action name", name); err != nil {
		return 0, i.l.fail(err)
	}
	return call(ctx, i.l, catalog.GetAnalogActionHandle, name)
}

// DigitalActionHandle resolves a digital action and registers it for
// sampling.
func (i Input) DigitalActionHandle(ctx context.Context, name string) (catalog.DigitalActionHandle, error) {
	if err := checkString("action name", name); err != nil {
		return 0, i.l.fail(err)
	}
	return call(ctx, i.l, catalog.GetDigitalActionHandle, name)
}

// ActivateActionSet makes set the controller's base action set.
func (i Input) ActivateActionSet(ctx context.Context, handle catalog.InputHandle, set catalog.ActionSetHandle) error {
	_, err := call(ctx, i.l, catalog.ActivateActionSet, catalog.ActionSetArgs{InputHandle: handle, ActionSet: set})
	return err
}

// ActivateActionSetLayer stacks layer on top of the controller's
// current action set.
func (i Input) ActivateActionSetLayer(ctx context.Context, handle catalog.InputHandle, layer catalog.ActionSetHandle) error {
	_, err := call(ctx, i.l, catalog.ActivateActionSetLayer, catalog.ActionSetArgs{InputHandle: handle, ActionSet: layer})
	return err
}

// DeactivateActionSetLayer removes one active layer.
func (i Input) DeactivateActionSetLayer(ctx context.Context, handle catalog.InputHandle, layer catalog.ActionSetHandle) error {
	_, err := call(ctx, i.l, catalog.DeactivateActionSetLayer, catalog.ActionSetArgs{InputHandle: handle, ActionSet: layer})
	return err
}

// DeactivateAllActionSetLayers removes every active layer.
func (i Input) DeactivateAllActionSetLayers(ctx context.Context, handle catalog.InputHandle) error {
	_, err := call(ctx, i.l, catalog.DeactivateAllActionSetLayers, handle)
	return err
}

// ActiveActionSetLayers lists the controller's active layers, at most
// input.MaxActiveLayers.
func (i Input) ActiveActionSetLayers(ctx context.Context, handle catalog.InputHandle) ([]catalog.ActionSetHandle, error) {
	return call(ctx, i.l, catalog.GetActiveActionSetLayers, handle)
}

// CurrentActionSet returns the controller's base action set.
func (i Input) CurrentActionSet(ctx context.Context, handle catalog.InputHandle) (catalog.ActionSetHandle, error) {
	return call(ctx, i.l, catalog.GetCurrentActionSet, handle)
}

// InputTypeForHandle reports the controller model, or
// catalog.InputTypeUnknown for an unknown handle.
func (i Input) InputTypeForHandle(ctx context.Context, handle catalog.InputHandle) (catalog.InputType, error) {
	return call(ctx, i.l, catalog.GetInputTypeForHandle, handle)
}

// TriggerVibration sets the left and right rumble motor speeds.
func (i Input) TriggerVibration(ctx context.Context, handle catalog.InputHandle, leftSpeed, rightSpeed uint16) error {
	_, err := call(ctx, i.l, catalog.TriggerVibration, catalog.VibrationArgs{
		InputHandle: handle,
		LeftSpeed:   leftSpeed,
		RightSpeed:  rightSpeed,
	})
	return err
}

// SetLEDColor sets the controller light. flags selects whether the
// color applies or the user's default is restored.
func (i Input) SetLEDColor(ctx context.Context, handle catalog.InputHandle, red, green, blue uint8, flags catalog.LEDFlag) error {
	_, err := call(ctx, i.l, catalog.SetLEDColor, catalog.LEDArgs{
		InputHandle: handle,
		Red:         red,
		Green:       green,
		Blue:        blue,
		Flags:       flags,
	})
	return err
}

// ShowBindingPanel opens the platform overlay's binding screen. It
// reports false when the overlay is unavailable.
func (i Input) ShowBindingPanel(ctx context.Context, handle catalog.InputHandle) (bool, error) {
	return call(ctx, i.l, catalog.ShowBindingPanel, handle)
}

// ControllerForGamepadIndex maps an emulated gamepad index to its
// controller handle. Zero means no controller.
func (i Input) ControllerForGamepadIndex(ctx context.Context, index int32) (catalog.InputHandle, error) {
	return call(ctx, i.l, catalog.GetControllerForGamepadIndex, index)
}

// GamepadIndexForController is the inverse of
// ControllerForGamepadIndex. -1 means the controller is not emulating a
// gamepad.
func (i Input) GamepadIndexForController(ctx context.Context, handle catalog.InputHandle) (int32, error) {
	return call(ctx, i.l, catalog.GetGamepadIndexForController, handle)
}

// AnalogActionOrigins lists at most input.MaxOrigins physical inputs
// bound to action in set.
func (i Input) AnalogActionOrigins(ctx context.Context, handle catalog.InputHandle, set catalog.ActionSetHandle, action catalog.AnalogActionHandle) ([]catalog.ActionOrigin, error) {
	return call(ctx, i.l, catalog.GetAnalogActionOrigins, catalog.ActionOriginsArgs{InputHandle: handle, ActionSet: set, Action: action})
}

// DigitalActionOrigins lists at most input.MaxOrigins physical inputs
// bound to action in set.
func (i Input) DigitalActionOrigins(ctx context.Context, handle catalog.InputHandle, set catalog.ActionSetHandle, action catalog.DigitalActionHandle) ([]catalog.ActionOrigin, error) {
	return call(ctx, i.l, catalog.GetDigitalActionOrigins, catalog.ActionOriginsArgs{InputHandle: handle, ActionSet: set, Action: action})
}

// StringForActionOrigin returns the display name of a physical input.
func (i Input) StringForActionOrigin(ctx context.Context, origin catalog.ActionOrigin) (string, error) {
	return call(ctx, i.l, catalog.GetStringForActionOrigin, origin)
}

// StopAnalogActionMomentum halts trackball-style momentum on an analog
// action.
func (i Input) StopAnalogActionMomentum(ctx context.Context, handle catalog.InputHandle, action catalog.AnalogActionHandle) error {
	_, err := call(ctx, i.l, catalog.StopAnalogActionMomentum, catalog.ActionArgs{InputHandle: handle, Action: action})
	return err
}

// SetInputActionManifestFilePath points the SDK at an action manifest.
// It may be called before Init.
func (i Input) SetInputActionManifestFilePath(ctx context.Context, path string) (bool, error) {
	if err := checkString("manifest path", path); err != nil {
		return false, i.l.fail(err)
	}
	return call(ctx, i.l, catalog.SetInputActionManifestFilePath, path)
}
