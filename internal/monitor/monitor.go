// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monitor polls a humidity and temperature sensor and fans the
// readings out to the configured sinks.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/sensors/hts221"
	"github.com/GermanBionicSystems/sensors/internal/telemetry"
)

// Sensor is the blocking measurement API of hts221.Dev.
type Sensor interface {
	Temperature(ctx context.Context) (physic.Temperature, error)
	Humidity(ctx context.Context) (physic.RelativeHumidity, error)
}

type Metrics interface {
	Observe(ts time.Time, t physic.Temperature, h physic.RelativeHumidity)
	ObserveError(code string)
}

type Publisher interface {
	Publish(tm telemetry.Telemetry) error
}

type Display interface {
	Render(env *physic.Env) error
}

// Options selects the sinks. Nil sinks are skipped.
type Options struct {
	Interval  time.Duration
	Logger    *slog.Logger
	Metrics   Metrics
	Publisher Publisher
	Display   Display
}

// Run reads s every Interval until ctx is done. Failed readings are logged
// and counted but do not stop the loop.
func Run(ctx context.Context, s Sensor, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()
	for {
		poll(ctx, s, &opts, logger)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func poll(ctx context.Context, s Sensor, opts *Options, logger *slog.Logger) {
	now := time.Now()
	t, err := s.Temperature(ctx)
	if err != nil {
		failed(ctx, now, err, opts, logger)
		return
	}
	h, err := s.Humidity(ctx)
	if err != nil {
		failed(ctx, now, err, opts, logger)
		return
	}
	logger.Debug("reading", "temperature", t.String(), "humidity", h.String())
	if opts.Metrics != nil {
		opts.Metrics.Observe(now, t, h)
	}
	if opts.Publisher != nil {
		if err := opts.Publisher.Publish(telemetry.NewTelemetry(now, t, h)); err != nil {
			logger.Warn("publish failed", "error", err)
		}
	}
	if opts.Display != nil {
		if err := opts.Display.Render(&physic.Env{Temperature: t, Humidity: h}); err != nil {
			logger.Warn("render failed", "error", err)
		}
	}
}

func failed(ctx context.Context, now time.Time, err error, opts *Options, logger *slog.Logger) {
	code := hts221.Code(err)
	// Cancellation is the normal way out of Run.
	if ctx.Err() != nil && code == hts221.CodeCanceled {
		return
	}
	logger.Warn("reading failed", "code", string(code), "error", err)
	if opts.Metrics != nil {
		opts.Metrics.ObserveError(string(code))
	}
	if opts.Publisher != nil {
		if err := opts.Publisher.Publish(telemetry.Telemetry{Timestamp: now, Error: string(code)}); err != nil {
			logger.Debug("publish failed", "error", err)
		}
	}
}
