// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/frame"
	"github.com/libretro/mist/lib/protocol"
	"github.com/libretro/mist/lib/result"
	"github.com/libretro/mist/lib/rpc"
	"github.com/libretro/mist/lib/sdk/sim"
	"github.com/libretro/mist/lib/testutil"
	"github.com/libretro/mist/lib/worker"
)

// helperModeEnv switches the test binary into a fake worker. The
// supervisor starts it with the secret argument like a real worker.
const helperModeEnv = "MIST_SUPERVISOR_TEST_MODE"

func TestMain(m *testing.M) {
	if mode := os.Getenv(helperModeEnv); mode != "" {
		os.Exit(runHelper(mode))
	}
	os.Exit(m.Run())
}

func runHelper(mode string) int {
	if err := worker.Guard(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	handshake := func(envelope *protocol.Envelope) {
		payload, err := protocol.Encode(envelope)
		if err != nil {
			panic(err)
		}
		if err := frame.Write(os.Stdout, payload); err != nil {
			panic(err)
		}
	}

	switch mode {
	case "sim":
		err := worker.Run(context.Background(), worker.Config{
			Stdin:        os.Stdin,
			Stdout:       os.Stdout,
			Provider:     sim.New(nil),
			PollInterval: 5 * time.Millisecond,
		})
		if err != nil {
			return 1
		}
		return 0
	case "init-error":
		profile := sim.DefaultProfile()
		profile.InitError = "no platform client running"
		worker.Run(context.Background(), worker.Config{
			Stdin:    os.Stdin,
			Stdout:   os.Stdout,
			Provider: sim.New(profile),
		})
		return 1
	case "silent":
		time.Sleep(time.Hour)
	case "exit-early":
		return 2
	case "old-protocol":
		envelope := protocol.NewInitialized("old")
		envelope.Initialized.ProtocolVersion = protocol.Version + 1
		handshake(envelope)
		time.Sleep(time.Hour)
	case "stubborn":
		handshake(protocol.NewInitialized("stubborn"))
		go io.Copy(io.Discard, os.Stdin)
		time.Sleep(time.Hour)
	case "crash":
		handshake(protocol.NewInitialized("crash"))
		return 3
	case "report-dir":
		directory, _ := os.Getwd()
		fmt.Fprintf(os.Stderr, "dir=%s\n", directory)
		fmt.Fprintf(os.Stderr, "libpath=%s\n", os.Getenv(libraryPathVariable(runtime.GOOS)))
		handshake(protocol.NewInitialized("report"))
		// The first frame is the exit request.
		frame.Read(os.Stdin)
	default:
		fmt.Fprintf(os.Stderr, "unknown helper mode %q\n", mode)
		return 1
	}
	return 0
}

func helperOptions(t *testing.T, mode string) Options {
	t.Helper()
	executable, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	return Options{
		Path:             executable,
		Dir:              t.TempDir(),
		Env:              append(os.Environ(), helperModeEnv+"="+mode),
		HandshakeTimeout: 5 * time.Second,
		CallTimeout:      5 * time.Second,
		TerminateGrace:   2 * time.Second,
		TerminatePoll:    10 * time.Millisecond,
		KillConfirm:      5 * time.Second,
	}
}

func startHelper(t *testing.T, mode string) *Supervisor {
	t.Helper()
	s, err := Start(context.Background(), helperOptions(t, mode))
	if err != nil {
		t.Fatalf("Start(%s): %v", mode, err)
	}
	t.Cleanup(func() { s.Stop() })
	return s
}

func TestWithLibraryPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  []string
		goos string
		want []string
	}{
		{
			name: "appends on linux",
			env:  []string{"HOME=/home/u", "LD_LIBRARY_PATH=/usr/lib"},
			goos: "linux",
			want: []string{"HOME=/home/u", "LD_LIBRARY_PATH=/usr/lib:/w"},
		},
		{
			name: "creates on linux",
			env:  []string{"HOME=/home/u"},
			goos: "linux",
			want: []string{"HOME=/home/u", "LD_LIBRARY_PATH=/w"},
		},
		{
			name: "fills empty value",
			env:  []string{"LD_LIBRARY_PATH="},
			goos: "linux",
			want: []string{"LD_LIBRARY_PATH=/w"},
		},
		{
			name: "darwin variable",
			env:  []string{"LD_LIBRARY_PATH=/usr/lib"},
			goos: "darwin",
			want: []string{"LD_LIBRARY_PATH=/usr/lib", "DYLD_LIBRARY_PATH=/w"},
		},
		{
			name: "windows path is case insensitive",
			env:  []string{`Path=C:\Windows`},
			goos: "windows",
			want: []string{`Path=C:\Windows;/w`},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			input := slices.Clone(test.env)
			got := withLibraryPath(test.env, test.goos, "/w")
			if !slices.Equal(got, test.want) {
				t.Errorf("got %q, want %q", got, test.want)
			}
			if !slices.Equal(test.env, input) {
				t.Errorf("input modified: %q", test.env)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	t.Parallel()

	path := filepath.Join("opt", "game", "mist", "mist")
	cmd := command(Options{Path: path, Env: []string{"A=1"}})

	if want := filepath.Dir(path); cmd.Dir != want {
		t.Errorf("Dir = %q, want %q", cmd.Dir, want)
	}
	if len(cmd.Args) != 2 || cmd.Args[1] != protocol.Secret {
		t.Errorf("Args = %q, want the secret as the only argument", cmd.Args)
	}
	want := libraryPathVariable(runtime.GOOS) + "=" + filepath.Dir(path)
	if !slices.Contains(cmd.Env, want) {
		t.Errorf("Env = %q, missing %q", cmd.Env, want)
	}
}

func TestStartMissingExecutable(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent"), t.TempDir()} {
		_, err := Start(context.Background(), Options{Path: path})
		if !errors.Is(err, result.ErrNotFound) {
			t.Errorf("Start(%q) = %v, want ErrNotFound", path, err)
		}
	}
}

func TestStartCallStop(t *testing.T) {
	t.Parallel()

	s := startHelper(t, "sim")
	if got := s.State(); got != StateReady {
		t.Fatalf("State = %v, want ready", got)
	}
	if !s.Alive() {
		t.Fatal("Alive = false after Start")
	}

	appID, err := rpc.Call(context.Background(), s.Client(), catalog.GetAppID, catalog.Unit{})
	if err != nil {
		t.Fatalf("GetAppID: %v", err)
	}
	if appID != sim.DefaultProfile().AppID {
		t.Errorf("GetAppID = %d, want %d", appID, sim.DefaultProfile().AppID)
	}

	start := time.Now()
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// A cooperative worker exits well inside the grace period.
	if elapsed := time.Since(start); elapsed >= 2*time.Second {
		t.Errorf("Stop took %v, worker should have exited on request", elapsed)
	}
	testutil.RequireClosed(t, s.Exited(), time.Second, "worker reaped")
	state := s.ProcessState()
	if state == nil {
		t.Fatal("ProcessState = nil after the worker was reaped")
	}
	if !state.Exited() || state.ExitCode() != 0 {
		t.Errorf("worker exit status = %v, want a clean exit without a kill", state)
	}
	if got := s.State(); got != StateTerminated {
		t.Errorf("State = %v, want terminated", got)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}

	_, err = rpc.Call(context.Background(), s.Client(), catalog.GetAppID, catalog.Unit{})
	if !errors.Is(err, result.ErrLost) {
		t.Errorf("call after Stop = %v, want ErrLost", err)
	}
}

func TestStartFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode    string
		want    *result.Error
		message string
	}{
		{"init-error", result.ErrInitialization, "no platform client running"},
		{"exit-early", result.ErrInitialization, "exited before the handshake"},
		{"old-protocol", result.ErrInitialization, "protocol version"},
		{"silent", result.ErrTimeout, "no worker handshake"},
	}
	for _, test := range tests {
		t.Run(test.mode, func(t *testing.T) {
			t.Parallel()
			options := helperOptions(t, test.mode)
			options.HandshakeTimeout = 300 * time.Millisecond
			if test.mode != "silent" {
				options.HandshakeTimeout = 5 * time.Second
			}
			s, err := Start(context.Background(), options)
			if s != nil {
				t.Fatal("Start returned a supervisor on failure")
			}
			if !errors.Is(err, test.want) {
				t.Fatalf("Start = %v, want %v", err, test.want.Name())
			}
			if !strings.Contains(err.Error(), test.message) {
				t.Errorf("error %q does not mention %q", err, test.message)
			}
		})
	}
}

func TestStartCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	options := helperOptions(t, "silent")
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := Start(ctx, options)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Start = %v, want context.Canceled", err)
	}
	if !errors.Is(err, result.ErrInitialization) {
		t.Errorf("Start = %v, want ErrInitialization", err)
	}
}

func TestStopKillsStubbornWorker(t *testing.T) {
	t.Parallel()

	options := helperOptions(t, "stubborn")
	options.TerminateGrace = 100 * time.Millisecond
	s, err := Start(context.Background(), options)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	start := time.Now()
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if elapsed := time.Since(start); elapsed < options.TerminateGrace {
		t.Errorf("Stop returned after %v, before the %v grace period", elapsed, options.TerminateGrace)
	}
	testutil.RequireClosed(t, s.Exited(), time.Second, "killed worker reaped")
	if state := s.ProcessState(); state == nil || state.Success() {
		t.Errorf("worker exit status = %v, want killed", state)
	}
}

func TestFailedHandshakeReportsUnkillableWorker(t *testing.T) {
	t.Parallel()

	var process *os.Process
	options := helperOptions(t, "silent")
	options.HandshakeTimeout = 200 * time.Millisecond
	options.KillConfirm = 200 * time.Millisecond
	options.kill = func(p *os.Process) error {
		process = p
		return nil
	}
	t.Cleanup(func() {
		if process != nil {
			process.Kill()
		}
	})

	s, err := Start(context.Background(), options)
	if s != nil {
		t.Fatal("Start returned a supervisor on failure")
	}
	if !errors.Is(err, result.ErrTimeout) {
		t.Errorf("Start = %v, want ErrTimeout", err)
	}
	if !errors.Is(err, result.ErrUnkillable) {
		t.Errorf("Start = %v, want ErrUnkillable joined in", err)
	}
	if process == nil {
		t.Error("worker was never signalled")
	}
}

func TestWorkerLost(t *testing.T) {
	t.Parallel()

	s := startHelper(t, "crash")
	testutil.RequireClosed(t, s.Exited(), 5*time.Second, "crashed worker reaped")

	if s.Alive() {
		t.Error("Alive = true after the worker exited")
	}
	if got := s.State(); got != StateLost {
		t.Errorf("State = %v, want lost", got)
	}
	_, err := rpc.Call(context.Background(), s.Client(), catalog.GetAppID, catalog.Unit{})
	if !errors.Is(err, result.ErrLost) {
		t.Errorf("call = %v, want ErrLost", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop on lost worker: %v", err)
	}
}

func TestWorkerDirectoryAndLibraryPath(t *testing.T) {
	t.Parallel()

	options := helperOptions(t, "report-dir")
	stderr, stderrWriter, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer stderr.Close()
	options.Stderr = stderrWriter

	s, err := Start(context.Background(), options)
	stderrWriter.Close()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	output, err := io.ReadAll(stderr)
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := filepath.EvalSymlinks(options.Dir)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	var directory, libraryPath string
	for _, line := range lines {
		if value, ok := strings.CutPrefix(line, "dir="); ok {
			directory = value
		}
		if value, ok := strings.CutPrefix(line, "libpath="); ok {
			libraryPath = value
		}
	}
	if got, _ := filepath.EvalSymlinks(directory); got != resolved {
		t.Errorf("worker dir = %q, want %q", directory, options.Dir)
	}
	if !strings.HasSuffix(libraryPath, options.Dir) {
		t.Errorf("library path %q does not end with %q", libraryPath, options.Dir)
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	if got := StateAwaitingHandshake.String(); got != "awaiting_handshake" {
		t.Errorf("got %q, want awaiting_handshake", got)
	}
	if got := State(42).String(); got != "state(42)" {
		t.Errorf("got %q, want state(42)", got)
	}
}
