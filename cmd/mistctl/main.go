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
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/libretro/mist/lib/config"
	"github.com/libretro/mist/lib/mist"
	"github.com/libretro/mist/lib/version"
)

// command is one mistctl subcommand.
type command struct {
	name    string
	summary string
	usage   string
	run     func(ctx context.Context, env *environment, args []string) error
}

// environment is what every subcommand shares.
type environment struct {
	config *config.Config
	logger *slog.Logger
	stdout io.Writer
}

// open starts the worker. The caller must Deinit the library.
func (e *environment) open(ctx context.Context) (*mist.Library, error) {
	lib := mist.New(mist.Options{Config: e.config, Logger: e.logger})
	if err := lib.Init(ctx); err != nil {
		return nil, fmt.Errorf("starting worker %s: %w", e.config.WorkerPath(), err)
	}
	return lib, nil
}

func commands() []command {
	return []command{
		statusCommand(),
		callCommand(),
		callbacksCommand(),
		appInstallDirCommand(),
		watchCommand(),
		catalogCommand(),
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var configPath string
	var debug bool
	flagSet := pflag.NewFlagSet("mistctl", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "host config file (default: $MIST_CONFIG)")
	flagSet.BoolVar(&debug, "debug", false, "enable debug logging")
	showVersion := flagSet.Bool("version", false, "print version and exit")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.SetInterspersed(false)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Printf("mistctl %s\n", version.Full())
		return nil
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printHelp(flagSet)
		return nil
	}

	name := flagSet.Arg(0)
	all := commands()
	index := slices.IndexFunc(all, func(c command) bool { return c.name == name })
	if index < 0 {
		return fmt.Errorf("unknown command %q (run mistctl --help)", name)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	if debug {
		level = slog.LevelDebug
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return all[index].run(ctx, &environment{
		config: cfg,
		logger: newLogger(os.Stderr, level),
		stdout: os.Stdout,
	}, flagSet.Args()[1:])
}

// newLogger writes text to a terminal and JSON to anything else.
func newLogger(w *os.File, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(w.Fd())) {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

func printHelp(flagSet *pflag.FlagSet) {
	var builder strings.Builder
	builder.WriteString("mistctl drives a mist worker from the command line.\n\nUsage:\n  mistctl [flags] <command> [args]\n\nCommands:\n")
	for _, c := range commands() {
		fmt.Fprintf(&builder, "  %-16s %s\n", c.name, c.summary)
	}
	builder.WriteString("\nFlags:\n")
	fmt.Fprint(os.Stderr, builder.String())
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// newFlagSet returns a subcommand flag set whose -h prints usage.
func newFlagSet(name, usage string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s\n", usage)
		if flagSet.HasFlags() {
			fmt.Fprintln(os.Stderr, "\nFlags:")
			flagSet.PrintDefaults()
		}
	}
	return flagSet
}

// parseFlags parses args, mapping -h to a nil error after printing
// usage. done reports that the command should return.
func parseFlags(flagSet *pflag.FlagSet, args []string) (done bool, err error) {
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return true, err
	}
	return false, nil
}
