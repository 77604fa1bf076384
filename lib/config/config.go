// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ConfigEnvVar names the environment variable holding the config file
// path when none is passed explicitly.
const ConfigEnvVar = "MIST_CONFIG"

// Config is the host configuration.
type Config struct {
	// Worker locates the worker executable.
	Worker WorkerConfig `yaml:"worker"`

	// Timeouts bounds every blocking step of the worker lifecycle.
	Timeouts TimeoutConfig `yaml:"timeouts"`

	// Input configures the shared-memory controller channel.
	Input InputConfig `yaml:"input"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"MIST_LOG_LEVEL"`
}

// WorkerConfig locates the worker executable.
type WorkerConfig struct {
	// Dir holds the worker and the vendor SDK's shared library. It is
	// the worker's working directory and is appended to its library
	// search path.
	Dir string `yaml:"dir" env:"MIST_WORKER_DIR"`

	// Executable is the worker's file name inside Dir.
	Executable string `yaml:"executable" env:"MIST_WORKER_EXECUTABLE"`
}

// TimeoutConfig holds the lifecycle timings.
type TimeoutConfig struct {
	// Handshake bounds the wait for Initialized or InitError.
	Handshake time.Duration `yaml:"handshake" env:"MIST_HANDSHAKE_TIMEOUT"`

	// Call is the default per-call response deadline.
	Call time.Duration `yaml:"call" env:"MIST_CALL_TIMEOUT"`

	// InputInit overrides Call for the input initialization call.
	InputInit time.Duration `yaml:"input_init"`

	// TerminateGrace is how long Deinit waits for a voluntary exit
	// before killing the worker.
	TerminateGrace time.Duration `yaml:"terminate_grace" env:"MIST_TERMINATE_GRACE"`

	// TerminatePoll is the exit-status polling interval inside the
	// grace window.
	TerminatePoll time.Duration `yaml:"terminate_poll"`

	// KillConfirm bounds the wait for a killed worker to be reaped.
	KillConfirm time.Duration `yaml:"kill_confirm"`
}

// InputConfig configures the controller state segment.
type InputConfig struct {
	// SegmentDir is where segment files are created. Empty selects
	// /dev/shm when present, else the system temp directory.
	SegmentDir string `yaml:"segment_dir" env:"MIST_SEGMENT_DIR"`
}

// Default returns the configuration a host gets with no file and no
// environment overrides.
func Default() *Config {
	workingDirectory, err := os.Getwd()
	if err != nil {
		workingDirectory = "."
	}
	return &Config{
		Worker: WorkerConfig{
			Dir:        filepath.Join(workingDirectory, "mist"),
			Executable: defaultExecutable(),
		},
		Timeouts: TimeoutConfig{
			Handshake:      4 * time.Second,
			Call:           100 * time.Millisecond,
			InputInit:      2 * time.Second,
			TerminateGrace: 500 * time.Millisecond,
			TerminatePoll:  50 * time.Millisecond,
			KillConfirm:    time.Second,
		},
		LogLevel: "info",
	}
}

func defaultExecutable() string {
	if runtime.GOOS == "windows" {
		return "mist.exe"
	}
	return "mist"
}

// Load builds the configuration from defaults, the file at path (or
// MIST_CONFIG when path is empty), and MIST_* environment overrides.
// A missing file is only an error when one was named.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) expandVariables() {
	workingDirectory, _ := os.Getwd()
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
		"PWD":  workingDirectory,
	}
	c.Worker.Dir = expandVars(c.Worker.Dir, vars)
	c.Input.SegmentDir = expandVars(c.Input.SegmentDir, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Worker.Dir == "" {
		errs = append(errs, errors.New("worker.dir is required"))
	}
	if c.Worker.Executable == "" {
		errs = append(errs, errors.New("worker.executable is required"))
	} else if strings.ContainsRune(c.Worker.Executable, filepath.Separator) {
		errs = append(errs, fmt.Errorf("worker.executable %q must be a file name, not a path", c.Worker.Executable))
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"timeouts.handshake", c.Timeouts.Handshake},
		{"timeouts.call", c.Timeouts.Call},
		{"timeouts.input_init", c.Timeouts.InputInit},
		{"timeouts.terminate_grace", c.Timeouts.TerminateGrace},
		{"timeouts.terminate_poll", c.Timeouts.TerminatePoll},
		{"timeouts.kill_confirm", c.Timeouts.KillConfirm},
	}
	for _, each := range durations {
		if each.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", each.name, each.value))
		}
	}
	if c.Timeouts.TerminatePoll > c.Timeouts.TerminateGrace {
		errs = append(errs, fmt.Errorf("timeouts.terminate_poll (%v) exceeds timeouts.terminate_grace (%v)",
			c.Timeouts.TerminatePoll, c.Timeouts.TerminateGrace))
	}

	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// WorkerPath returns the absolute path of the worker executable.
func (c *Config) WorkerPath() string {
	return filepath.Join(c.Worker.Dir, c.Worker.Executable)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
