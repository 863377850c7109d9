// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// hts221mon periodically reads an HTS221 and exports the readings as logs,
// Prometheus metrics, MQTT telemetry and an optional terminal gauge.
//
// It is configured through environment variables; see internal/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/sensors/gauge"
	"github.com/GermanBionicSystems/sensors/hts221"
	"github.com/GermanBionicSystems/sensors/internal/config"
	"github.com/GermanBionicSystems/sensors/internal/logging"
	"github.com/GermanBionicSystems/sensors/internal/metrics"
	"github.com/GermanBionicSystems/sensors/internal/monitor"
	"github.com/GermanBionicSystems/sensors/internal/telemetry"
	"github.com/GermanBionicSystems/sensors/regio"
)

var version = "dev"
var appName = "hts221mon"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
		"backend", cfg.I2CBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	opts := hts221.DefaultOpts
	opts.MeasurementTimeout = cfg.MeasurementTimeout

	dev, closeBus, err := open(cfg, &opts)
	if err != nil {
		return err
	}
	defer closeBus()
	defer func() {
		if err := dev.Halt(); err != nil {
			logger.Warn("halt failed", "error", err)
		}
	}()

	if err := configure(dev, cfg); err != nil {
		return err
	}
	cal := dev.Calibration()
	logger.Info("sensor ready", "device", dev.String(), "calibration", cal.String())

	mopts := monitor.Options{Interval: cfg.PollInterval, Logger: logger}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		mopts.Metrics = metrics.New(reg)
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
				logger.Error("metrics server failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	if cfg.MQTTBroker != "" {
		client := telemetry.NewClient(cfg, logger)
		defer client.Disconnect()
		go func() {
			if err := client.Connect(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("mqtt connect failed", "error", err)
			}
		}()
		mopts.Publisher = client
	}

	if cfg.Gauge {
		g := gauge.New(nil)
		defer g.Halt()
		mopts.Display = g
	}

	return monitor.Run(ctx, dev, mopts)
}

// open returns the device on the configured backend and a function that
// releases the bus.
func open(cfg config.Config, opts *hts221.Opts) (*hts221.Dev, func(), error) {
	switch cfg.I2CBackend {
	case config.BackendSysfs:
		t, err := regio.OpenSysfs(cfg.I2CDevice, hts221.Address)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", cfg.I2CDevice, err)
		}
		dev, err := hts221.New(t, opts)
		if err != nil {
			t.Close()
			return nil, nil, fmt.Errorf("init HTS221: %w", err)
		}
		return dev, func() { t.Close() }, nil
	default:
		if _, err := host.Init(); err != nil {
			return nil, nil, fmt.Errorf("host init: %w", err)
		}
		b, err := i2creg.Open(cfg.I2CBus)
		if err != nil {
			return nil, nil, fmt.Errorf("open I²C bus %q: %w", cfg.I2CBus, err)
		}
		dev, err := hts221.NewI2C(b, opts)
		if err != nil {
			b.Close()
			return nil, nil, fmt.Errorf("init HTS221: %w", err)
		}
		return dev, func() { b.Close() }, nil
	}
}

func configure(dev *hts221.Dev, cfg config.Config) error {
	id, err := dev.WhoAmI()
	if err != nil {
		return err
	}
	if id != hts221.WhoAmIValue {
		return fmt.Errorf("unexpected WHO_AM_I 0x%02x, want 0x%02x", id, hts221.WhoAmIValue)
	}
	if err := dev.SetAveraging(cfg.AvgTemperature, cfg.AvgHumidity); err != nil {
		return err
	}
	if err := dev.SetBlockDataUpdate(cfg.BlockDataUpdate); err != nil {
		return err
	}
	if err := dev.SetHeater(cfg.Heater); err != nil {
		return err
	}
	if err := dev.SetOutputDataRate(hts221.OutputDataRate(cfg.OutputDataRate)); err != nil {
		return err
	}
	return dev.SetPower(true)
}
