// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/mist"
)

func callbacksCommand() command {
	const usage = "mistctl callbacks [--duration 10s] [--poll 50ms]"
	return command{
		name:    "callbacks",
		summary: "Print callbacks as JSON lines while the worker runs",
		usage:   usage,
		run: func(ctx context.Context, env *environment, args []string) error {
			flagSet := newFlagSet("callbacks", usage)
			duration := flagSet.Duration("duration", 10*time.Second, "how long to listen (0 runs until interrupted)")
			poll := flagSet.Duration("poll", 50*time.Millisecond, "poll interval")
			if done, err := parseFlags(flagSet, args); done {
				return err
			}
			if *poll <= 0 {
				return fmt.Errorf("--poll must be positive, got %v", *poll)
			}

			if *duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, *duration)
				defer cancel()
			}

			lib, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer lib.Deinit()

			ticker := time.NewTicker(*poll)
			defer ticker.Stop()
			for {
				if err := lib.Poll(); err != nil {
					return err
				}
				for cb, ok := lib.NextCallback(); ok; cb, ok = lib.NextCallback() {
					if err := writeCallback(env.stdout, cb); err != nil {
						return err
					}
					lib.AdvanceCallback()
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
}

// callbackLine is the JSON form of one callback.
type callbackLine struct {
	Source  uint64 `json:"source"`
	Kind    uint32 `json:"kind"`
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeCallback(w io.Writer, cb mist.Callback) error {
	line := callbackLine{Source: cb.Source, Kind: cb.Kind, Name: cb.Name()}
	payload, err := cb.Decode()
	if err != nil {
		line.Error = err.Error()
	} else {
		line.Payload = payload
	}
	return json.NewEncoder(w).Encode(line)
}

func appInstallDirCommand() command {
	const usage = "mistctl app-install-dir <app-id>"
	return command{
		name:    "app-install-dir",
		summary: "Print the install directory of an app",
		usage:   usage,
		run: func(ctx context.Context, env *environment, args []string) error {
			flagSet := newFlagSet("app-install-dir", usage)
			if done, err := parseFlags(flagSet, args); done {
				return err
			}
			if flagSet.NArg() != 1 {
				return fmt.Errorf("usage: %s", usage)
			}
			app, err := strconv.ParseUint(flagSet.Arg(0), 10, 32)
			if err != nil {
				return fmt.Errorf("invalid app id %q: %w", flagSet.Arg(0), err)
			}

			lib, err := env.open(ctx)
			if err != nil {
				return err
			}
			dir, ok, callErr := lib.Apps().AppInstallDir(ctx, catalog.AppID(app))
			deinitErr := lib.Deinit()
			if callErr != nil {
				return callErr
			}
			if !ok {
				return fmt.Errorf("app %d is not installed", app)
			}
			fmt.Fprintln(env.stdout, dir)
			return deinitErr
		},
	}
}
