// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the monitor configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// I²C backends.
const (
	BackendPeriph = "periph"
	BackendSysfs  = "sysfs"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	I2CBackend string
	I2CBus     string
	I2CDevice  string

	PollInterval       time.Duration
	MeasurementTimeout time.Duration
	OutputDataRate     int
	AvgTemperature     int
	AvgHumidity        int
	BlockDataUpdate    bool
	Heater             bool

	MetricsAddr  string
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	StationID    string
	Gauge        bool
}

func LoadFromEnv() (Config, error) {
	appEnv := env("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(env("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	backend := env("I2C_BACKEND", BackendPeriph)
	switch backend {
	case BackendPeriph, BackendSysfs:
	default:
		return Config{}, fmt.Errorf("invalid I2C_BACKEND %q (allowed: periph, sysfs)", backend)
	}

	pollInterval, err := envDuration("POLL_INTERVAL", "1s")
	if err != nil {
		return Config{}, err
	}
	if pollInterval <= 0 {
		return Config{}, fmt.Errorf("POLL_INTERVAL must be positive, got %v", pollInterval)
	}

	timeout, err := envDuration("MEASUREMENT_TIMEOUT", "1s")
	if err != nil {
		return Config{}, err
	}
	if timeout < 0 {
		return Config{}, fmt.Errorf("MEASUREMENT_TIMEOUT must not be negative, got %v", timeout)
	}

	odr, err := envInt("OUTPUT_DATA_RATE", "1", 0, 3)
	if err != nil {
		return Config{}, err
	}
	avgT, err := envInt("AVG_TEMPERATURE", "3", 0, 7)
	if err != nil {
		return Config{}, err
	}
	avgH, err := envInt("AVG_HUMIDITY", "3", 0, 7)
	if err != nil {
		return Config{}, err
	}

	bdu, err := envBool("BLOCK_DATA_UPDATE", "true")
	if err != nil {
		return Config{}, err
	}
	heater, err := envBool("HEATER", "false")
	if err != nil {
		return Config{}, err
	}
	gauge, err := envBool("GAUGE", "false")
	if err != nil {
		return Config{}, err
	}

	mqttPort, err := envInt("MQTT_PORT", "1883", 1, 65535)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		I2CBackend:         backend,
		I2CBus:             env("I2C_BUS", ""),
		I2CDevice:          env("I2C_DEVICE", "/dev/i2c-1"),
		PollInterval:       pollInterval,
		MeasurementTimeout: timeout,
		OutputDataRate:     odr,
		AvgTemperature:     avgT,
		AvgHumidity:        avgH,
		BlockDataUpdate:    bdu,
		Heater:             heater,
		MetricsAddr:        envOptional("METRICS_ADDR", ":9120"),
		MQTTBroker:         env("MQTT_BROKER", ""),
		MQTTPort:           mqttPort,
		MQTTClientID:       env("MQTT_CLIENT_ID", "hts221mon"),
		StationID:          env("STATION_ID", "home"),
		Gauge:              gauge,
	}, nil
}

// env returns the trimmed value of key, or def when it is unset or blank.
func env(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// envOptional is env, except that a variable set to blank disables the
// feature by returning "".
func envOptional(key, def string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}

func envDuration(key, def string) (time.Duration, error) {
	s := env(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func envInt(key, def string, lo, hi int) (int, error) {
	s := env(key, def)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be in range %d-%d, got %d", key, lo, hi, v)
	}
	return v, nil
}

func envBool(key, def string) (bool, error) {
	s := env(key, def)
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
