// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/libretro/mist/lib/callback"
	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/clock"
	"github.com/libretro/mist/lib/protocol"
	"github.com/libretro/mist/lib/result"
	"github.com/libretro/mist/lib/rpc"
)

// State is a supervisor lifecycle state.
type State int32

const (
	StateNotStarted State = iota
	StateSpawning
	StateAwaitingHandshake
	StateReady
	StateTerminating
	StateTerminated
	StateLost
)

var stateNames = [...]string{
	"not_started", "spawning", "awaiting_handshake", "ready", "terminating", "terminated", "lost",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", s)
}

// Defaults for Options durations left at zero.
const (
	DefaultHandshakeTimeout = 4 * time.Second
	DefaultTerminateGrace   = 500 * time.Millisecond
	DefaultTerminatePoll    = 50 * time.Millisecond
	DefaultKillConfirm      = time.Second
)

// Options configures Start.
type Options struct {
	// Path is the worker executable.
	Path string

	// Dir is the worker's working directory. It is also appended to
	// the platform's shared library search path. Defaults to the
	// directory containing Path.
	Dir string

	// Env is the worker's base environment. Nil means os.Environ().
	Env []string

	// Stderr receives the worker's stderr. Nil means os.Stderr.
	Stderr io.Writer

	HandshakeTimeout time.Duration
	// CallTimeout replaces rpc.DefaultTimeout for calls without their
	// own timeout.
	CallTimeout    time.Duration
	TerminateGrace time.Duration
	TerminatePoll  time.Duration
	KillConfirm    time.Duration

	Clock  clock.Clock
	Logger *slog.Logger

	// kill signals the worker. Tests replace it.
	kill func(*os.Process) error
}

func (o *Options) setDefaults() {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.TerminateGrace <= 0 {
		o.TerminateGrace = DefaultTerminateGrace
	}
	if o.TerminatePoll <= 0 {
		o.TerminatePoll = DefaultTerminatePoll
	}
	if o.KillConfirm <= 0 {
		o.KillConfirm = DefaultKillConfirm
	}
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.kill == nil {
		o.kill = (*os.Process).Kill
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// Supervisor owns one running worker process.
type Supervisor struct {
	options Options
	logger  *slog.Logger

	mu    sync.Mutex
	state State

	process      *os.Process
	exited       chan struct{}
	exitError    error
	processState *os.ProcessState

	stdin    *os.File
	stdout   *os.File
	receiver *rpc.Receiver
	client   *rpc.Client
	events   *callback.Queue

	workerVersion string
}

// Start launches the worker and waits for its handshake.
//
// Errors are typed: result.ErrNotFound when the executable is missing,
// result.ErrSpawn when it cannot be started, result.ErrTimeout when no
// handshake arrives in time, and result.ErrInitialization when the
// worker reports a failure, exits early, or speaks another protocol
// version.
func Start(ctx context.Context, options Options) (*Supervisor, error) {
	options.setDefaults()
	s := &Supervisor{
		options: options,
		logger:  options.Logger,
		state:   StateSpawning,
		exited:  make(chan struct{}),
		events:  &callback.Queue{},
	}

	if err := s.spawn(); err != nil {
		s.setState(StateTerminated)
		return nil, err
	}

	s.setState(StateAwaitingHandshake)
	if err := s.awaitHandshake(ctx); err != nil {
		s.logger.Error("worker handshake failed", "pid", s.process.Pid, "error", err)
		if teardownErr := s.teardown(false); teardownErr != nil {
			s.logger.Error("releasing worker after failed handshake", "pid", s.process.Pid, "error", teardownErr)
			return nil, errors.Join(err, teardownErr)
		}
		return nil, err
	}

	s.client = rpc.NewClient(rpc.ClientConfig{
		Writer:   s.stdin,
		Receiver: s.receiver,
		Events:   s.events,
		Alive:    s.Alive,
		Timeout:  options.CallTimeout,
		Clock:    options.Clock,
		Logger:   s.logger,
	})
	s.setState(StateReady)
	s.logger.Info("worker ready", "pid", s.process.Pid, "worker_version", s.workerVersion)
	return s, nil
}

func (s *Supervisor) spawn() error {
	path := s.options.Path
	if path == "" {
		return result.New(result.ErrNotFound, "no worker executable configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result.New(result.ErrNotFound, "worker executable %s does not exist", path)
		}
		return result.Wrap(result.ErrSpawn, err)
	}
	if info.IsDir() {
		return result.New(result.ErrNotFound, "worker executable %s is a directory", path)
	}

	// Plain os.Pipe pairs rather than cmd.StdoutPipe: Wait must not
	// close the read side while the receiver still drains it.
	stdinReader, stdinWriter, err := os.Pipe()
	if err != nil {
		return result.Wrap(result.ErrSpawn, err)
	}
	stdoutReader, stdoutWriter, err := os.Pipe()
	if err != nil {
		stdinReader.Close()
		stdinWriter.Close()
		return result.Wrap(result.ErrSpawn, err)
	}

	cmd := command(s.options)
	cmd.Stdin = stdinReader
	cmd.Stdout = stdoutWriter
	cmd.Stderr = s.options.Stderr

	err = cmd.Start()
	// The child holds its own copies now.
	stdinReader.Close()
	stdoutWriter.Close()
	if err != nil {
		stdinWriter.Close()
		stdoutReader.Close()
		return result.Wrap(result.ErrSpawn, fmt.Errorf("starting %s: %w", path, err))
	}

	s.process = cmd.Process
	s.stdin = stdinWriter
	s.stdout = stdoutReader
	s.receiver = rpc.NewReceiver(stdoutReader, s.logger)
	s.logger.Info("worker started", "pid", cmd.Process.Pid, "path", path, "dir", cmd.Dir)

	// Reap in the background; exited is the liveness signal.
	go func() {
		waitError := cmd.Wait()
		exitCode := cmd.ProcessState.ExitCode()
		s.mu.Lock()
		s.exitError = waitError
		s.processState = cmd.ProcessState
		s.mu.Unlock()
		close(s.exited)
		s.logger.Info("worker exited", "pid", cmd.Process.Pid, "exit_code", exitCode, "error", waitError)
	}()
	return nil
}

func (s *Supervisor) awaitHandshake(ctx context.Context) error {
	timer := s.options.Clock.NewTimer(s.options.HandshakeTimeout)
	defer timer.Stop()

	select {
	case envelope, ok := <-s.receiver.Envelopes():
		if !ok {
			return result.New(result.ErrInitialization, "worker closed its output before the handshake")
		}
		switch envelope.Kind {
		case protocol.KindInitialized:
			got := envelope.Initialized.ProtocolVersion
			if got != protocol.Version {
				return result.New(result.ErrInitialization, "worker speaks protocol version %d, host speaks %d", got, protocol.Version)
			}
			s.workerVersion = envelope.Initialized.WorkerVersion
			return nil
		case protocol.KindInitError:
			return result.New(result.ErrInitialization, "%s", envelope.InitError.Message)
		default:
			return result.New(result.ErrInitialization, "worker sent %s before the handshake", envelope.Kind)
		}
	case <-s.exited:
		return result.New(result.ErrInitialization, "worker exited before the handshake: %v", s.waitError())
	case <-timer.C:
		return result.New(result.ErrTimeout, "no worker handshake within %v", s.options.HandshakeTimeout)
	case <-ctx.Done():
		return result.Wrap(result.ErrInitialization, ctx.Err())
	}
}

// Client returns the call client. Nil before Start succeeds.
func (s *Supervisor) Client() *rpc.Client { return s.client }

// Events returns the queue every worker event lands in.
func (s *Supervisor) Events() *callback.Queue { return s.events }

// Pid returns the worker's process id.
func (s *Supervisor) Pid() int { return s.process.Pid }

// WorkerVersion is the version the worker reported in its handshake.
func (s *Supervisor) WorkerVersion() string { return s.workerVersion }

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Supervisor) waitError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitError
}

// ProcessState is the reaped worker's exit status, or nil while it is
// still running.
func (s *Supervisor) ProcessState() *os.ProcessState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processState
}

// Exited is closed once the worker process has been reaped.
func (s *Supervisor) Exited() <-chan struct{} { return s.exited }

// Alive reports whether the worker is still running. It never blocks.
// A Ready supervisor whose worker has exited moves to Lost.
func (s *Supervisor) Alive() bool {
	select {
	case <-s.exited:
		s.mu.Lock()
		if s.state == StateReady {
			s.state = StateLost
			s.logger.Warn("worker lost", "pid", s.process.Pid, "error", s.exitError)
		}
		s.mu.Unlock()
		return false
	default:
		return true
	}
}

// Stop asks the worker to exit and waits for it, killing it when the
// grace period runs out. After Stop no worker process remains, or
// result.ErrUnkillable is returned. Stop on a stopped supervisor is a
// no-op.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	switch s.state {
	case StateTerminating, StateTerminated:
		s.mu.Unlock()
		return nil
	}
	s.state = StateTerminating
	s.mu.Unlock()

	if s.Alive() {
		if _, err := rpc.Call(context.Background(), s.client, catalog.Exit, catalog.Unit{}); err != nil {
			s.logger.Warn("sending exit request", "error", err)
		}
	}
	return s.teardown(true)
}

// teardown waits out the grace period (when graceful), kills the
// worker if it is still running, and releases the transport.
func (s *Supervisor) teardown(graceful bool) error {
	defer s.setState(StateTerminated)
	if s.client != nil {
		defer s.client.Close()
	}
	defer s.closeTransport()

	if graceful && s.waitExit(s.options.TerminateGrace) {
		s.logger.Info("worker exited on request", "pid", s.process.Pid)
		return nil
	}
	select {
	case <-s.exited:
		return nil
	default:
	}

	s.logger.Warn("killing worker", "pid", s.process.Pid)
	if err := s.options.kill(s.process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		s.logger.Error("kill failed", "pid", s.process.Pid, "error", err)
	}
	timer := s.options.Clock.NewTimer(s.options.KillConfirm)
	defer timer.Stop()
	select {
	case <-s.exited:
		return nil
	case <-timer.C:
		return result.New(result.ErrUnkillable, "worker %d still running %v after kill", s.process.Pid, s.options.KillConfirm)
	}
}

// waitExit polls for the worker's exit every TerminatePoll for up to
// grace.
func (s *Supervisor) waitExit(grace time.Duration) bool {
	for waited := time.Duration(0); ; waited += s.options.TerminatePoll {
		select {
		case <-s.exited:
			return true
		default:
		}
		if waited >= grace {
			return false
		}
		s.options.Clock.Sleep(s.options.TerminatePoll)
	}
}

func (s *Supervisor) closeTransport() {
	s.receiver.Stop()
	if err := s.stdin.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		s.logger.Debug("closing worker stdin", "error", err)
	}
	if err := s.stdout.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		s.logger.Debug("closing worker stdout", "error", err)
	}
}
