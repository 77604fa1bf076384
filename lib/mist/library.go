// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package mist

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/clock"
	"github.com/libretro/mist/lib/codec"
	"github.com/libretro/mist/lib/config"
	"github.com/libretro/mist/lib/result"
	"github.com/libretro/mist/lib/rpc"
	"github.com/libretro/mist/lib/supervisor"
)

// Options configures a Library.
type Options struct {
	// Config locates the worker and sets the timeouts. Nil means
	// config.Default().
	Config *config.Config

	// Env is the worker's base environment. Nil means os.Environ().
	Env []string

	// Stderr receives the worker's stderr. Nil means os.Stderr.
	Stderr io.Writer

	Clock  clock.Clock
	Logger *slog.Logger
}

// Library is a handle on the platform SDK running in a worker process.
// Safe for concurrent use.
type Library struct {
	config *config.Config
	env    []string
	stderr io.Writer
	clock  clock.Clock
	logger *slog.Logger

	diagnostics result.Diagnostics

	// lifecycle serializes Init and Deinit, which wait out handshakes
	// and grace periods. mu only guards the fields below and is never
	// held across a wait, so queries stay non-blocking.
	lifecycle  sync.Mutex
	mu         sync.Mutex
	supervisor *supervisor.Supervisor
	input      *inputChannel
}

// New returns an uninitialized Library.
func New(options Options) *Library {
	if options.Config == nil {
		options.Config = config.Default()
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	return &Library{
		config: options.Config,
		env:    options.Env,
		stderr: options.Stderr,
		clock:  options.Clock,
		logger: options.Logger,
	}
}

// Init starts the worker and waits for its handshake. It fails with
// result.ErrAlreadyInitialized while a live worker exists. A worker
// that was lost is cleaned up and replaced.
func (l *Library) Init(ctx context.Context) (err error) {
	l.diagnostics.Clear()
	defer func() {
		if recovered := recover(); recovered != nil {
			l.logger.Error("panic during init", "panic", recovered)
			err = result.New(result.ErrInitialization, "panic during init: %v", recovered)
		}
		l.diagnostics.Record(err)
	}()

	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	if current, _ := l.current(); current != nil {
		if current.Alive() {
			return result.ErrAlreadyInitialized
		}
		l.logger.Info("replacing lost worker")
		l.release(l.detach())
	}

	timeouts := l.config.Timeouts
	s, err := supervisor.Start(ctx, supervisor.Options{
		Path:             l.config.WorkerPath(),
		Dir:              l.config.Worker.Dir,
		Env:              l.env,
		Stderr:           l.stderr,
		HandshakeTimeout: timeouts.Handshake,
		CallTimeout:      timeouts.Call,
		TerminateGrace:   timeouts.TerminateGrace,
		TerminatePoll:    timeouts.TerminatePoll,
		KillConfirm:      timeouts.KillConfirm,
		Clock:            l.clock,
		Logger:           l.logger,
	})
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.supervisor = s
	l.mu.Unlock()
	return nil
}

// Deinit stops the worker, killing it if it does not exit on request,
// and releases the controller segment. It fails with
// result.ErrNotInitialized when there is no worker.
func (l *Library) Deinit() error {
	l.diagnostics.Clear()
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	s, channel := l.detach()
	if s == nil {
		err := result.ErrNotInitialized
		l.diagnostics.Record(err)
		return err
	}
	err := l.release(s, channel)
	l.diagnostics.Record(err)
	return err
}

// detach takes the worker and the controller channel out of l, so
// queries see no worker while they are being stopped.
func (l *Library) detach() (*supervisor.Supervisor, *inputChannel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, channel := l.supervisor, l.input
	l.supervisor, l.input = nil, nil
	return s, channel
}

func (l *Library) release(s *supervisor.Supervisor, channel *inputChannel) error {
	if channel != nil {
		channel.close(l.logger)
	}
	return s.Stop()
}

// Alive reports whether a worker is running. It never blocks, even
// while Init or Deinit is in progress.
func (l *Library) Alive() bool {
	s, err := l.current()
	return err == nil && s.Alive()
}

// WorkerVersion is the version the running worker reported, or "".
func (l *Library) WorkerVersion() string {
	s, err := l.current()
	if err != nil {
		return ""
	}
	return s.WorkerVersion()
}

// LastError returns the message of the most recent failure, or "" if
// the last operation succeeded.
func (l *Library) LastError() string {
	return l.diagnostics.Last()
}

// Poll moves every event the worker has sent so far onto the callback
// queue. It never blocks. It fails with result.ErrLost once the worker
// has exited; events received before that stay queued.
func (l *Library) Poll() error {
	l.diagnostics.Clear()
	s, err := l.current()
	if err != nil {
		l.diagnostics.Record(err)
		return err
	}
	s.Client().Poll()
	if !s.Alive() {
		err := result.ErrLost
		l.diagnostics.Record(err)
		return err
	}
	return nil
}

// Callback is one queued SDK event.
type Callback struct {
	// Source is the SDK user handle that produced the event.
	Source uint64
	Kind   catalog.EventKind
	Data   codec.RawMessage
}

// Name returns the event's snake_case name.
func (c Callback) Name() string { return catalog.EventName(c.Kind) }

// Decode returns the typed payload, e.g. catalog.DlcInstalled.
func (c Callback) Decode() (any, error) { return catalog.DecodeEvent(c.Kind, c.Data) }

// NextCallback returns the oldest unconsumed callback without removing
// it. ok is false when the queue is empty or there is no worker.
func (l *Library) NextCallback() (Callback, bool) {
	s, err := l.current()
	if err != nil {
		return Callback{}, false
	}
	entry, ok := s.Events().Next()
	if !ok {
		return Callback{}, false
	}
	return Callback{Source: entry.Source, Kind: entry.Kind, Data: entry.Data}, true
}

// AdvanceCallback removes the callback NextCallback returned. It
// reports false when there was none.
func (l *Library) AdvanceCallback() bool {
	s, err := l.current()
	if err != nil {
		return false
	}
	return s.Events().Advance()
}

func (l *Library) current() (*supervisor.Supervisor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.supervisor == nil {
		return nil, result.ErrNotInitialized
	}
	return l.supervisor, nil
}

// Do invokes the operation described by descriptor and returns its
// encoded result. It backs generic tooling; typed code uses the
// namespaces.
func (l *Library) Do(ctx context.Context, descriptor rpc.Descriptor, args any) (codec.RawMessage, error) {
	l.diagnostics.Clear()
	s, err := l.current()
	if err != nil {
		l.diagnostics.Record(err)
		return nil, err
	}
	value, err := s.Client().Do(ctx, descriptor, args)
	l.diagnostics.Record(err)
	return value, err
}

// call runs op on the current worker and records any failure.
func call[A, R any](ctx context.Context, l *Library, op rpc.Operation[A, R], args A) (R, error) {
	l.diagnostics.Clear()
	var zero R
	s, err := l.current()
	if err != nil {
		l.diagnostics.Record(err)
		return zero, err
	}
	value, err := rpc.Call(ctx, s.Client(), op, args)
	if err != nil {
		l.diagnostics.Record(err)
		return zero, err
	}
	return value, nil
}

// fail records err and returns it.
func (l *Library) fail(err error) error {
	l.diagnostics.Clear()
	l.diagnostics.Record(err)
	return err
}

// checkString rejects strings the SDK cannot receive as C strings.
func checkString(name, value string) error {
	if strings.IndexByte(value, 0) >= 0 {
		return result.New(result.ErrInvalidString, "%s contains a NUL byte", name)
	}
	return nil
}
