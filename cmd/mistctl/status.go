// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/hotchannel"
	"github.com/libretro/mist/lib/input"
	"github.com/libretro/mist/lib/mist"
)

func statusCommand() command {
	return command{
		name:    "status",
		summary: "Start the worker, report the running app, and stop it",
		usage:   "mistctl status",
		run: func(ctx context.Context, env *environment, args []string) error {
			flagSet := newFlagSet("status", "mistctl status")
			if done, err := parseFlags(flagSet, args); done {
				return err
			}
			if flagSet.NArg() > 0 {
				return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
			}

			lib, err := env.open(ctx)
			if err != nil {
				return err
			}
			status, queryErr := queryStatus(ctx, lib)
			deinitErr := lib.Deinit()
			if queryErr != nil {
				return queryErr
			}

			writer := tabwriter.NewWriter(env.stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(writer, "worker:\t%s\n", env.config.WorkerPath())
			fmt.Fprintf(writer, "worker version:\t%s\n", status.workerVersion)
			fmt.Fprintf(writer, "app id:\t%d\n", status.appID)
			fmt.Fprintf(writer, "build id:\t%d\n", status.buildID)
			fmt.Fprintf(writer, "language:\t%s\n", status.language)
			fmt.Fprintf(writer, "subscribed:\t%s\n", strconv.FormatBool(status.subscribed))
			fmt.Fprintf(writer, "steam deck:\t%s\n", strconv.FormatBool(status.steamDeck))
			fmt.Fprintf(writer, "dlc:\t%d\n", status.dlcCount)
			fmt.Fprintf(writer, "input layout:\t%s\n", status.inputLayout)
			if err := writer.Flush(); err != nil {
				return err
			}
			return deinitErr
		},
	}
}

type status struct {
	workerVersion string
	appID         catalog.AppID
	buildID       catalog.BuildID
	language      string
	subscribed    bool
	steamDeck     bool
	dlcCount      int32
	inputLayout   hotchannel.Fingerprint
}

func queryStatus(ctx context.Context, lib *mist.Library) (status, error) {
	var s status
	var errs []error
	record := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	s.workerVersion = lib.WorkerVersion()

	var err error
	s.inputLayout, err = hotchannel.FingerprintOf[input.State]()
	record(err)
	s.appID, err = lib.Utils().AppID(ctx)
	record(err)
	s.buildID, err = lib.Apps().AppBuildID(ctx)
	record(err)
	s.language, err = lib.Apps().CurrentGameLanguage(ctx)
	record(err)
	s.subscribed, err = lib.Apps().IsSubscribed(ctx)
	record(err)
	s.steamDeck, err = lib.Utils().IsSteamRunningOnSteamDeck(ctx)
	record(err)
	s.dlcCount, err = lib.Apps().DlcCount(ctx)
	record(err)
	return s, errors.Join(errs...)
}
