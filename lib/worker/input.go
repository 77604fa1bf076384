// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"errors"
	"log/slog"

	"github.com/libretro/mist/lib/hotchannel"
	"github.com/libretro/mist/lib/input"
	"github.com/libretro/mist/lib/result"
	"github.com/libretro/mist/lib/sdk"
)

// inputSession owns the worker's side of the hot channel.
type inputSession struct {
	provider sdk.Input
	sampler  *input.Sampler
	logger   *slog.Logger

	segment *hotchannel.Segment
	writer  *hotchannel.Writer[input.State]
}

func newInputSession(provider sdk.Input, logger *slog.Logger) *inputSession {
	return &inputSession{
		provider: provider,
		sampler:  input.NewSampler(provider),
		logger:   logger,
	}
}

func (s *inputSession) active() bool { return s.writer != nil }

// open initializes the SDK's input subsystem and maps the host's
// segment. It reports false when the SDK declines.
func (s *inputSession) open(path string) (bool, error) {
	s.close()
	if !s.provider.Init() {
		return false, nil
	}
	segment, err := hotchannel.Open[input.State](path)
	if err != nil {
		s.provider.Shutdown()
		return false, result.Wrap(result.ErrInputShmem, err)
	}
	writer, err := hotchannel.NewWriter[input.State](segment)
	if err != nil {
		segment.Close()
		s.provider.Shutdown()
		return false, result.Wrap(result.ErrInputShmem, err)
	}
	s.segment = segment
	s.writer = writer
	s.sampler.Reset()
	s.logger.Info("input initialized", "segment", path, "fingerprint", segment.Layout().Fingerprint)
	return true, nil
}

// shutdown stops sampling and shuts the SDK's input subsystem down.
func (s *inputSession) shutdown() bool {
	if !s.active() {
		return false
	}
	s.close()
	return s.provider.Shutdown()
}

func (s *inputSession) close() {
	if s.segment == nil {
		return
	}
	if err := s.segment.Close(); err != nil {
		s.logger.Warn("closing input segment", "error", err)
	}
	s.segment = nil
	s.writer = nil
}

// publish samples controllers and writes the state. A segment the host
// has removed ends the session instead of failing every frame.
func (s *inputSession) publish() {
	if !s.active() {
		return
	}
	state := s.sampler.Sample()
	if _, err := s.writer.Publish(state); err != nil {
		if !errors.Is(err, hotchannel.ErrSegmentRemoved) {
			s.logger.Warn("publishing input state", "error", err)
			return
		}
		s.logger.Info("input segment removed by host, stopping input")
		s.close()
		s.provider.Shutdown()
	}
}

func (s *inputSession) require() error {
	if !s.active() {
		return result.ErrInputNotInitialized
	}
	return nil
}
