// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/libretro/mist/lib/frame"
	"github.com/libretro/mist/lib/process"
	"github.com/libretro/mist/lib/protocol"
	"github.com/libretro/mist/lib/sdk/sim"
	"github.com/libretro/mist/lib/version"
	"github.com/libretro/mist/lib/worker"
)

func main() {
	if err := worker.Guard(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mist is started by the game and cannot be run directly")
		os.Exit(process.ExitRefused)
	}
	if err := run(); err != nil {
		if errors.Is(err, worker.ErrSessionInit) {
			os.Exit(process.ExitRefused)
		}
		process.Fatal(err)
	}
}

func run() error {
	logLevel := slog.LevelInfo
	if os.Getenv("MIST_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})).With("component", "worker", "pid", os.Getpid())

	profile, err := loadProfile(os.Getenv(sim.ProfileEnvVar))
	if err != nil {
		// The host is already waiting for a handshake; tell it why.
		if reportErr := reportInitError(os.Stdout, err.Error()); reportErr != nil {
			logger.Error("reporting init error to host", "error", reportErr)
		}
		return err
	}

	signal.Ignore(os.Interrupt)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	logger.Info("worker starting", "version", version.Info(), "app_id", profile.AppID)
	err = worker.Run(ctx, worker.Config{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Provider: sim.New(profile),
		Logger:   logger,
	})
	if errors.Is(err, context.Canceled) {
		logger.Info("worker terminated by signal")
		return nil
	}
	return err
}

// loadProfile reads the simulated world from path, or returns the
// built-in profile when path is empty.
func loadProfile(path string) (*sim.Profile, error) {
	if path == "" {
		return sim.DefaultProfile(), nil
	}
	profile, err := sim.LoadProfile(path)
	if err != nil {
		return nil, fmt.Errorf("loading simulated SDK profile: %w", err)
	}
	return profile, nil
}

// reportInitError sends an InitError handshake carrying message.
func reportInitError(w io.Writer, message string) error {
	payload, err := protocol.Encode(protocol.NewInitError(message))
	if err != nil {
		return fmt.Errorf("encoding init error: %w", err)
	}
	if err := frame.Write(w, payload); err != nil {
		return fmt.Errorf("writing init error: %w", err)
	}
	return nil
}
