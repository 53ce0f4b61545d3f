// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logsink defines the engine's logging seam: a small leveled
// interface the facade owns and threads into engine operations by
// reference, never a package-level logger. The pack's
// github.com/rs/zerolog-based repo (itohio-EasyRobot's pkg/logger)
// wires zerolog behind a single package-level `Log` value; this
// package keeps zerolog as the concrete implementation but narrows it
// to an interface so the dual simplex/branch-and-bound engine never
// imports zerolog itself, only this seam.
package logsink

import (
	"io"

	"github.com/rs/zerolog"
)

// Sink is the leveled logging interface every engine operation takes
// by reference, matching the call shape (printf-style, per-level
// methods) itohio-EasyRobot's zerolog logger is used with.
type Sink interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// zerologSink adapts a zerolog.Logger to Sink.
type zerologSink struct {
	logger zerolog.Logger
}

// New returns a zerolog-backed Sink writing to w, the default
// implementation a caller installs unless it wants silence (NopSink)
// or its own adapter.
func New(w io.Writer) Sink {
	return &zerologSink{logger: zerolog.New(w).With().Timestamp().Logger()}
}

func (s *zerologSink) Debugf(format string, args ...any) {
	s.logger.Debug().Msgf(format, args...)
}

func (s *zerologSink) Infof(format string, args ...any) {
	s.logger.Info().Msgf(format, args...)
}

func (s *zerologSink) Warnf(format string, args ...any) {
	s.logger.Warn().Msgf(format, args...)
}

// nopSink discards everything, for callers that want the engine's
// logging calls to cost nothing and produce no output.
type nopSink struct{}

// NopSink is the zero-cost Sink used when no logging is wanted.
var NopSink Sink = nopSink{}

func (nopSink) Debugf(string, ...any) {}
func (nopSink) Infof(string, ...any)  {}
func (nopSink) Warnf(string, ...any)  {}
