// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package mist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/config"
	"github.com/libretro/mist/lib/result"
	"github.com/libretro/mist/lib/sdk/sim"
	"github.com/libretro/mist/lib/testutil"
	"github.com/libretro/mist/lib/worker"
)

// workerEnv turns the test binary into a worker over the simulated SDK.
const workerEnv = "MIST_LIBRARY_TEST_WORKER"

// handshakeDelayEnv makes the worker wait this long before its
// handshake.
const handshakeDelayEnv = "MIST_LIBRARY_TEST_HANDSHAKE_DELAY"

func TestMain(m *testing.M) {
	if os.Getenv(workerEnv) != "" {
		os.Exit(runWorker())
	}
	os.Exit(m.Run())
}

func runWorker() int {
	if err := worker.Guard(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	profile := sim.DefaultProfile()
	if path := os.Getenv(sim.ProfileEnvVar); path != "" {
		loaded, err := sim.LoadProfile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		profile = loaded
	}
	if delay, err := time.ParseDuration(os.Getenv(handshakeDelayEnv)); err == nil {
		time.Sleep(delay)
	}
	err := worker.Run(context.Background(), worker.Config{
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Provider:     sim.New(profile),
		PollInterval: 5 * time.Millisecond,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

const testProfile = `
app_id: 1234
user: 9
language: french
installed_apps:
  999: /games/other
launch_params:
  server: example.org
dlc:
  - app_id: 2001
    name: Expansion
    available: true
entered_text: hunter2
input:
  analog_actions:
    move: 2
  digital_actions:
    jump: 5
  controllers:
    - handle: 11
      type: ps5
      analog:
        2: [0.25, -1]
      pressed: [5]
`

type fixture struct {
	lib        *Library
	segmentDir string
}

func newFixture(t *testing.T, profile string) *fixture {
	t.Helper()
	executable, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	profilePath := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(profilePath, []byte(profile), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Worker.Dir = filepath.Dir(executable)
	cfg.Worker.Executable = filepath.Base(executable)
	cfg.Timeouts.Handshake = 10 * time.Second
	cfg.Timeouts.Call = 5 * time.Second
	cfg.Timeouts.InputInit = 5 * time.Second
	cfg.Timeouts.TerminateGrace = 2 * time.Second
	cfg.Timeouts.TerminatePoll = 10 * time.Millisecond
	segmentDir := ""
	if runtime.GOOS != "windows" {
		segmentDir = testutil.SegmentDir(t)
	}
	cfg.Input.SegmentDir = segmentDir

	lib := New(Options{
		Config: cfg,
		Env:    append(os.Environ(), workerEnv+"=1", sim.ProfileEnvVar+"="+profilePath),
	})
	return &fixture{lib: lib, segmentDir: segmentDir}
}

func (f *fixture) init(t *testing.T) {
	t.Helper()
	if err := f.lib.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() {
		if f.lib.Alive() {
			f.lib.Deinit()
		}
	})
}

// waitForCallback polls until a callback of kind is queued, consuming
// the ones before it.
func waitForCallback(t *testing.T, lib *Library, kind catalog.EventKind) Callback {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := lib.Poll(); err != nil {
			t.Fatalf("Poll: %v", err)
		}
		for cb, ok := lib.NextCallback(); ok; cb, ok = lib.NextCallback() {
			lib.AdvanceCallback()
			if cb.Kind == kind {
				return cb
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %s callback within 5s", catalog.EventName(kind))
	return Callback{}
}

func TestBeforeInit(t *testing.T) {
	t.Parallel()

	lib := New(Options{})
	ctx := context.Background()

	if _, err := lib.Utils().AppID(ctx); !errors.Is(err, result.ErrNotInitialized) {
		t.Errorf("AppID = %v, want ErrNotInitialized", err)
	}
	if lib.LastError() == "" {
		t.Error("LastError empty after a failed call")
	}
	if err := lib.Deinit(); !errors.Is(err, result.ErrNotInitialized) {
		t.Errorf("Deinit = %v, want ErrNotInitialized", err)
	}
	if err := lib.Poll(); !errors.Is(err, result.ErrNotInitialized) {
		t.Errorf("Poll = %v, want ErrNotInitialized", err)
	}
	if _, err := lib.Input().Init(ctx); !errors.Is(err, result.ErrNotInitialized) {
		t.Errorf("Input.Init = %v, want ErrNotInitialized", err)
	}
	if _, ok := lib.NextCallback(); ok {
		t.Error("NextCallback returned a callback before Init")
	}
	if lib.AdvanceCallback() {
		t.Error("AdvanceCallback = true before Init")
	}
	if lib.Alive() {
		t.Error("Alive = true before Init")
	}
}

func TestInitMissingWorker(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Worker.Dir = t.TempDir()
	lib := New(Options{Config: cfg})

	err := lib.Init(context.Background())
	if !errors.Is(err, result.ErrNotFound) {
		t.Fatalf("Init = %v, want ErrNotFound", err)
	}
	if got := result.Of(err); got != result.ErrNotFound.Result() {
		t.Errorf("packed = %v, want %v", got, result.ErrNotFound.Result())
	}
	if !strings.Contains(lib.LastError(), "does not exist") {
		t.Errorf("LastError = %q, want the missing path reported", lib.LastError())
	}
}

func TestLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testProfile)
	f.init(t)
	ctx := context.Background()

	if err := f.lib.Init(ctx); !errors.Is(err, result.ErrAlreadyInitialized) {
		t.Errorf("second Init = %v, want ErrAlreadyInitialized", err)
	}
	appID, err := f.lib.Utils().AppID(ctx)
	if err != nil {
		t.Fatalf("AppID: %v", err)
	}
	if appID != 1234 {
		t.Errorf("AppID = %d, want 1234", appID)
	}
	if f.lib.LastError() != "" {
		t.Errorf("LastError = %q after a successful call", f.lib.LastError())
	}
	if f.lib.WorkerVersion() == "" {
		t.Error("WorkerVersion empty after Init")
	}

	if err := f.lib.Deinit(); err != nil {
		t.Fatalf("Deinit: %v", err)
	}
	if f.lib.Alive() {
		t.Error("Alive = true after Deinit")
	}
	if _, err := f.lib.Utils().AppID(ctx); !errors.Is(err, result.ErrNotInitialized) {
		t.Errorf("AppID after Deinit = %v, want ErrNotInitialized", err)
	}

	// A deinitialized library can start a fresh worker.
	f.init(t)
	if _, err := f.lib.Utils().AppID(ctx); err != nil {
		t.Errorf("AppID after re-Init: %v", err)
	}
}

func TestNamespaces(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testProfile)
	f.init(t)
	ctx := context.Background()

	t.Run("apps", func(t *testing.T) {
		apps := f.lib.Apps()
		count, err := apps.DlcCount(ctx)
		if err != nil || count != 1 {
			t.Errorf("DlcCount = %d, %v, want 1", count, err)
		}
		data, err := apps.DlcDataByIndex(ctx, 0)
		if err != nil || data.Name != "Expansion" {
			t.Errorf("DlcDataByIndex(0) = %+v, %v", data, err)
		}
		_, err = apps.DlcDataByIndex(ctx, 5)
		if !errors.Is(err, result.ErrInvalidDlcIndex) {
			t.Errorf("DlcDataByIndex(5) = %v, want ErrInvalidDlcIndex", err)
		}
		if got := result.Of(err).Namespace(); got != result.NamespaceSteamApps {
			t.Errorf("namespace = %v, want steam_apps", got)
		}

		dir, ok, err := apps.AppInstallDir(ctx, 999)
		if err != nil || !ok || dir != "/games/other" {
			t.Errorf("AppInstallDir(999) = %q, %v, %v", dir, ok, err)
		}
		if _, ok, err := apps.AppInstallDir(ctx, 7); err != nil || ok {
			t.Errorf("AppInstallDir(7) = %v, %v, want not installed", ok, err)
		}
		if _, ok, err := apps.CurrentBetaName(ctx); err != nil || ok {
			t.Errorf("CurrentBetaName = %v, %v, want no beta", ok, err)
		}
		value, ok, err := apps.LaunchQueryParam(ctx, "server")
		if err != nil || !ok || value != "example.org" {
			t.Errorf("LaunchQueryParam = %q, %v, %v", value, ok, err)
		}
		if _, _, err := apps.LaunchQueryParam(ctx, "bad\x00key"); !errors.Is(err, result.ErrInvalidString) {
			t.Errorf("LaunchQueryParam with NUL = %v, want ErrInvalidString", err)
		}
		language, err := apps.CurrentGameLanguage(ctx)
		if err != nil || language != "french" {
			t.Errorf("CurrentGameLanguage = %q, %v", language, err)
		}
	})

	t.Run("friends", func(t *testing.T) {
		friends := f.lib.Friends()
		status := "in menus"
		if err := friends.SetRichPresence(ctx, "status", &status); err != nil {
			t.Errorf("SetRichPresence: %v", err)
		}
		err := friends.SetRichPresence(ctx, strings.Repeat("k", 65), &status)
		if !errors.Is(err, result.ErrInvalidRichPresence) {
			t.Errorf("oversized key = %v, want ErrInvalidRichPresence", err)
		}
		if !strings.Contains(f.lib.LastError(), "rejected") {
			t.Errorf("LastError = %q", f.lib.LastError())
		}
		if err := friends.SetRichPresence(ctx, "status", nil); err != nil {
			t.Errorf("clearing key: %v", err)
		}
		if err := friends.ClearRichPresence(ctx); err != nil {
			t.Errorf("ClearRichPresence: %v", err)
		}
	})

	t.Run("remote storage", func(t *testing.T) {
		storage := f.lib.RemoteStorage()
		if err := storage.BeginFileWriteBatch(ctx); err != nil {
			t.Fatalf("Begin: %v", err)
		}
		if err := storage.BeginFileWriteBatch(ctx); !errors.Is(err, result.ErrFileWriteBatchAlreadyInProgress) {
			t.Errorf("second Begin = %v", err)
		}
		if err := storage.EndFileWriteBatch(ctx); err != nil {
			t.Errorf("End: %v", err)
		}
		if err := storage.EndFileWriteBatch(ctx); !errors.Is(err, result.ErrFileWriteBatchNotInProgress) {
			t.Errorf("second End = %v", err)
		}
	})
}

func TestCallbacks(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testProfile)
	f.init(t)
	ctx := context.Background()

	if err := f.lib.Apps().InstallDlc(ctx, 2001); err != nil {
		t.Fatalf("InstallDlc: %v", err)
	}
	cb := waitForCallback(t, f.lib, catalog.EventDlcInstalled)
	if cb.Source != 9 {
		t.Errorf("Source = %d, want 9", cb.Source)
	}
	if cb.Name() != "dlc_installed" {
		t.Errorf("Name = %q", cb.Name())
	}
	payload, err := cb.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got, want := payload, (catalog.DlcInstalled{AppID: 2001}); got != want {
		t.Errorf("payload = %+v, want %+v", got, want)
	}
}

func TestGamepadTextInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testProfile)
	f.init(t)
	ctx := context.Background()
	utils := f.lib.Utils()

	if _, err := utils.EnteredGamepadTextInput(ctx); !errors.Is(err, result.ErrNoGamepadTextEntered) {
		t.Errorf("before dialog = %v, want ErrNoGamepadTextEntered", err)
	}
	shown, err := utils.ShowGamepadTextInput(ctx, catalog.GamepadTextInputArgs{Description: "Name", CharMax: 32})
	if err != nil || !shown {
		t.Fatalf("ShowGamepadTextInput = %v, %v", shown, err)
	}
	cb := waitForCallback(t, f.lib, catalog.EventGamepadTextInputDismissed)
	payload, err := cb.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dismissed := payload.(catalog.GamepadTextInputDismissed); !dismissed.Submitted {
		t.Fatalf("dismissed = %+v, want submitted", dismissed)
	}

	text, err := utils.EnteredGamepadTextInput(ctx)
	if err != nil || text != "hunter2" {
		t.Errorf("EnteredGamepadTextInput = %q, %v, want hunter2", text, err)
	}
	if _, err := utils.EnteredGamepadTextInput(ctx); !errors.Is(err, result.ErrNoGamepadTextEntered) {
		t.Errorf("second take = %v, want ErrNoGamepadTextEntered", err)
	}
	_, err = utils.ShowGamepadTextInput(ctx, catalog.GamepadTextInputArgs{Description: "a\x00b"})
	if !errors.Is(err, result.ErrInvalidString) {
		t.Errorf("NUL description = %v, want ErrInvalidString", err)
	}
}

func TestQueriesDoNotWaitForInit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testProfile)
	f.lib.env = append(f.lib.env, handshakeDelayEnv+"=1500ms")

	initDone := make(chan error, 1)
	go func() { initDone <- f.lib.Init(context.Background()) }()
	// Let Init reach its handshake wait.
	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	if f.lib.Alive() {
		t.Error("Alive = true before the handshake")
	}
	if err := f.lib.Poll(); !errors.Is(err, result.ErrNotInitialized) {
		t.Errorf("Poll during Init = %v, want ErrNotInitialized", err)
	}
	if _, ok := f.lib.NextCallback(); ok {
		t.Error("NextCallback returned a callback during Init")
	}
	if f.lib.AdvanceCallback() {
		t.Error("AdvanceCallback = true during Init")
	}
	if got := f.lib.WorkerVersion(); got != "" {
		t.Errorf("WorkerVersion during Init = %q, want empty", got)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("queries took %v while Init was waiting for the handshake", elapsed)
	}

	if err := testutil.RequireReceive(t, initDone, 15*time.Second, "Init"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { f.lib.Deinit() })
	if !f.lib.Alive() {
		t.Error("Alive = false after Init")
	}
}

func TestInputOverSharedMemory(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("shared-memory segments are not supported on windows")
	}

	f := newFixture(t, testProfile)
	f.init(t)
	ctx := context.Background()
	in := f.lib.Input()

	if err := in.RunFrame(); !errors.Is(err, result.ErrInputNotInitialized) {
		t.Errorf("RunFrame before Init = %v, want ErrInputNotInitialized", err)
	}
	if _, err := in.ConnectedControllers(ctx); !errors.Is(err, result.ErrInputNotInitialized) {
		t.Errorf("ConnectedControllers before Init = %v, want ErrInputNotInitialized", err)
	}

	ok, err := in.Init(ctx)
	if err != nil || !ok {
		t.Fatalf("Input.Init = %v, %v", ok, err)
	}
	if ok, err := in.Init(ctx); err != nil || !ok {
		t.Errorf("second Input.Init = %v, %v", ok, err)
	}
	move, err := in.AnalogActionHandle(ctx, "move")
	if err != nil || move != 2 {
		t.Fatalf("AnalogActionHandle = %d, %v", move, err)
	}
	jump, err := in.DigitalActionHandle(ctx, "jump")
	if err != nil || jump != 5 {
		t.Fatalf("DigitalActionHandle = %d, %v", jump, err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := in.RunFrame(); err != nil {
			t.Fatalf("RunFrame: %v", err)
		}
		if in.AnalogActionData(11, move).X == 0.25 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("controller 11 never published move; snapshot %+v", in.Snapshot().ConnectedControllers())
		}
		time.Sleep(2 * time.Millisecond)
	}

	if got := in.AnalogActionData(11, move).Y; got != -1 {
		t.Errorf("move.Y = %v, want -1", got)
	}
	if !in.DigitalActionData(11, jump).State {
		t.Error("jump not pressed")
	}
	if got := in.MotionData(11).RotQuatW; got != 1 {
		t.Errorf("RotQuatW = %v, want 1", got)
	}
	if got := in.AnalogActionData(99, move); got.X != 0 || got.Active {
		t.Errorf("unmapped controller = %+v, want zero", got)
	}
	if got := in.Snapshot().ConnectedControllers(); !slices.Equal(got, []catalog.InputHandle{11}) {
		t.Errorf("snapshot controllers = %v, want [11]", got)
	}
	if in.Generation() == 0 {
		t.Error("Generation = 0 after reading a snapshot")
	}
	controllers, err := in.ConnectedControllers(ctx)
	if err != nil || !slices.Equal(controllers, []catalog.InputHandle{11}) {
		t.Errorf("ConnectedControllers = %v, %v", controllers, err)
	}

	if ok, err := in.Shutdown(ctx); err != nil || !ok {
		t.Errorf("Shutdown = %v, %v", ok, err)
	}
	if err := in.RunFrame(); !errors.Is(err, result.ErrInputNotInitialized) {
		t.Errorf("RunFrame after Shutdown = %v, want ErrInputNotInitialized", err)
	}
	if in.Snapshot() != nil {
		t.Error("Snapshot non-nil after Shutdown")
	}
	entries, err := os.ReadDir(f.segmentDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("segment dir holds %d files after Shutdown", len(entries))
	}
}

func TestInputActionSetsAndGamepadMapping(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("shared-memory segments are not supported on windows")
	}

	f := newFixture(t, testProfile)
	f.init(t)
	ctx := context.Background()
	in := f.lib.Input()
	if ok, err := in.Init(ctx); err != nil || !ok {
		t.Fatalf("Input.Init = %v, %v", ok, err)
	}

	if got, err := in.InputTypeForHandle(ctx, 11); err != nil || got != catalog.InputTypePS5Controller {
		t.Errorf("InputTypeForHandle(11) = %v, %v, want ps5", got, err)
	}
	if got, err := in.InputTypeForHandle(ctx, 99); err != nil || got != catalog.InputTypeUnknown {
		t.Errorf("InputTypeForHandle(99) = %v, %v, want unknown", got, err)
	}

	if err := in.ActivateActionSet(ctx, 11, 3); err != nil {
		t.Fatalf("ActivateActionSet: %v", err)
	}
	if got, err := in.CurrentActionSet(ctx, 11); err != nil || got != 3 {
		t.Errorf("CurrentActionSet = %d, %v, want 3", got, err)
	}
	for _, layer := range []catalog.ActionSetHandle{7, 8, 7} {
		if err := in.ActivateActionSetLayer(ctx, 11, layer); err != nil {
			t.Fatalf("ActivateActionSetLayer(%d): %v", layer, err)
		}
	}
	if got, err := in.ActiveActionSetLayers(ctx, 11); err != nil || !slices.Equal(got, []catalog.ActionSetHandle{7, 8}) {
		t.Errorf("ActiveActionSetLayers = %v, %v, want [7 8]", got, err)
	}
	if err := in.DeactivateActionSetLayer(ctx, 11, 7); err != nil {
		t.Fatalf("DeactivateActionSetLayer: %v", err)
	}
	if got, err := in.ActiveActionSetLayers(ctx, 11); err != nil || !slices.Equal(got, []catalog.ActionSetHandle{8}) {
		t.Errorf("ActiveActionSetLayers after deactivate = %v, %v, want [8]", got, err)
	}
	if err := in.DeactivateAllActionSetLayers(ctx, 11); err != nil {
		t.Fatalf("DeactivateAllActionSetLayers: %v", err)
	}
	if got, err := in.ActiveActionSetLayers(ctx, 11); err != nil || len(got) != 0 {
		t.Errorf("ActiveActionSetLayers after deactivate all = %v, %v, want none", got, err)
	}

	if got, err := in.ControllerForGamepadIndex(ctx, 0); err != nil || got != 11 {
		t.Errorf("ControllerForGamepadIndex(0) = %d, %v, want 11", got, err)
	}
	if got, err := in.ControllerForGamepadIndex(ctx, 5); err != nil || got != 0 {
		t.Errorf("ControllerForGamepadIndex(5) = %d, %v, want 0", got, err)
	}
	if got, err := in.GamepadIndexForController(ctx, 11); err != nil || got != 0 {
		t.Errorf("GamepadIndexForController(11) = %d, %v, want 0", got, err)
	}
	if got, err := in.GamepadIndexForController(ctx, 99); err != nil || got != -1 {
		t.Errorf("GamepadIndexForController(99) = %d, %v, want -1", got, err)
	}
	if err := in.TriggerVibration(ctx, 11, 100, 200); err != nil {
		t.Errorf("TriggerVibration: %v", err)
	}
	if ok, err := in.ShowBindingPanel(ctx, 11); err != nil || !ok {
		t.Errorf("ShowBindingPanel(11) = %v, %v, want true", ok, err)
	}
}
func TestDeinitRemovesSegment(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("shared-memory segments are not supported on windows")
	}

	f := newFixture(t, testProfile)
	f.init(t)
	if ok, err := f.lib.Input().Init(context.Background()); err != nil || !ok {
		t.Fatalf("Input.Init = %v, %v", ok, err)
	}
	entries, _ := os.ReadDir(f.segmentDir)
	if len(entries) != 1 {
		t.Fatalf("segment dir holds %d files, want 1", len(entries))
	}
	if err := f.lib.Deinit(); err != nil {
		t.Fatalf("Deinit: %v", err)
	}
	entries, _ = os.ReadDir(f.segmentDir)
	if len(entries) != 0 {
		t.Errorf("segment dir holds %d files after Deinit", len(entries))
	}
}

func TestInputInitRefused(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("shared-memory segments are not supported on windows")
	}

	f := newFixture(t, "input:\n  init_fails: true\n")
	f.init(t)
	ok, err := f.lib.Input().Init(context.Background())
	if err != nil || ok {
		t.Fatalf("Input.Init = %v, %v, want false without error", ok, err)
	}
	entries, _ := os.ReadDir(f.segmentDir)
	if len(entries) != 0 {
		t.Errorf("refused init left %d segment files", len(entries))
	}
}

func TestWorkerLost(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testProfile)
	f.init(t)
	ctx := context.Background()

	// The exit operation stops the worker behind the library's back.
	if _, err := f.lib.Do(ctx, catalog.Exit.Descriptor(), nil); err != nil {
		t.Fatalf("exit: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for f.lib.Poll() == nil {
		if time.Now().After(deadline) {
			t.Fatal("Poll never reported the lost worker")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := f.lib.Poll(); !errors.Is(err, result.ErrLost) {
		t.Errorf("Poll = %v, want ErrLost", err)
	}
	if _, err := f.lib.Utils().AppID(ctx); !errors.Is(err, result.ErrLost) {
		t.Errorf("AppID = %v, want ErrLost", err)
	}

	// Init replaces a lost worker.
	if err := f.lib.Init(ctx); err != nil {
		t.Fatalf("Init after loss: %v", err)
	}
	if _, err := f.lib.Utils().AppID(ctx); err != nil {
		t.Errorf("AppID after re-Init: %v", err)
	}
}
