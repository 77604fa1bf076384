// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/clock"
	"github.com/libretro/mist/lib/codec"
	"github.com/libretro/mist/lib/frame"
	"github.com/libretro/mist/lib/protocol"
	"github.com/libretro/mist/lib/rpc"
	"github.com/libretro/mist/lib/sdk"
	"github.com/libretro/mist/lib/version"
)

const (
	// DefaultPollInterval is how long the main loop waits for a
	// request before pumping the SDK.
	DefaultPollInterval = 50 * time.Millisecond

	// DefaultInputPollInterval replaces the poll interval while input
	// is initialized, so the hot channel refreshes at game-loop rates.
	DefaultInputPollInterval = 4 * time.Millisecond
)

// ErrNotHost is returned by [Guard] when the process was not started
// by a mist host.
var ErrNotHost = errors.New("this executable is started by the mist library and is not meant to be run directly")

// ErrSessionInit wraps the SDK's reason for refusing to start.
var ErrSessionInit = errors.New("worker: SDK initialization failed")

// Guard checks that args (os.Args) hold exactly one argument, the
// host's secret.
func Guard(args []string) error {
	if len(args) != 2 || args[1] != protocol.Secret {
		return ErrNotHost
	}
	return nil
}

// Config wires a worker.
type Config struct {
	// Stdin and Stdout are the transport from and to the host.
	Stdin  io.Reader
	Stdout io.Writer

	Provider sdk.Provider

	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	// InputPollInterval defaults to DefaultInputPollInterval.
	InputPollInterval time.Duration

	Clock  clock.Clock
	Logger *slog.Logger
}

// worker is the state shared by the main loop and the handlers. Both
// run on the goroutine that called Run.
type worker struct {
	provider sdk.Provider
	server   *rpc.Server
	logger   *slog.Logger

	input *inputSession

	// enteredText holds submitted gamepad text until the host takes it.
	enteredText *string
	exit        bool
}

// Run serves one host until it exits or disconnects. It returns nil on
// an orderly exit or end of stream, and ErrSessionInit when the SDK
// could not start (after reporting it to the host).
func Run(ctx context.Context, config Config) error {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.InputPollInterval <= 0 {
		config.InputPollInterval = DefaultInputPollInterval
	}
	logger := config.Logger

	receiver := rpc.NewReceiver(config.Stdin, logger)
	defer receiver.Stop()
	server := rpc.NewServer(rpc.ServerConfig{
		Writer:   frame.NewWriter(config.Stdout),
		Receiver: receiver,
		Clock:    config.Clock,
		Logger:   logger,
	})

	if err := config.Provider.Init(); err != nil {
		logger.Error("SDK initialization failed", "error", err)
		if writeErr := server.WriteEnvelope(protocol.NewInitError(err.Error())); writeErr != nil {
			logger.Error("reporting initialization failure", "error", writeErr)
		}
		return fmt.Errorf("%w: %w", ErrSessionInit, err)
	}
	defer config.Provider.Shutdown()

	w := &worker{
		provider: config.Provider,
		server:   server,
		logger:   logger,
	}
	w.input = newInputSession(config.Provider.Input(), logger)
	defer w.input.close()
	w.bind()

	if err := server.WriteEnvelope(protocol.NewInitialized(version.Short())); err != nil {
		return fmt.Errorf("sending handshake: %w", err)
	}
	logger.Info("worker ready", "protocol_version", protocol.Version, "version", version.Short())

	for !w.exit {
		interval := config.PollInterval
		if w.input.active() {
			interval = config.InputPollInterval
		}
		if _, err := server.Poll(ctx, interval); err != nil {
			if errors.Is(err, rpc.ErrClosed) {
				logger.Info("host closed the channel, exiting", "reason", err)
				return nil
			}
			return err
		}
		if w.exit {
			break
		}
		w.runFrame()
	}
	logger.Info("exit requested")
	return nil
}

// runFrame pumps the SDK once, forwards its callbacks, and publishes
// input.
func (w *worker) runFrame() {
	for _, callback := range w.provider.RunCallbacks() {
		w.observe(callback)
		if err := w.emit(callback); err != nil {
			w.logger.Warn("forwarding callback", "kind", catalog.EventName(callback.Kind), "error", err)
		}
	}
	w.input.publish()
}

// observe lets the worker keep state that later requests read.
func (w *worker) observe(callback sdk.Callback) {
	dismissed, ok := callback.Payload.(catalog.GamepadTextInputDismissed)
	if !ok {
		return
	}
	w.enteredText = nil
	if !dismissed.Submitted {
		return
	}
	if text, ok := w.provider.Utils().EnteredGamepadTextInput(); ok {
		w.enteredText = &text
	}
}

func (w *worker) emit(callback sdk.Callback) error {
	var data codec.RawMessage
	if callback.Payload != nil {
		encoded, err := codec.Marshal(callback.Payload)
		if err != nil {
			return fmt.Errorf("encoding payload: %w", err)
		}
		data = encoded
	}
	return w.server.Emit(protocol.Event{Source: callback.Source, Kind: callback.Kind, Data: data})
}
