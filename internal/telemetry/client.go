// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package telemetry publishes readings to an MQTT broker as JSON.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/sensors/internal/config"
)

var (
	ErrNotConnected = errors.New("telemetry: mqtt client not connected")
	ErrStopped      = errors.New("telemetry: client stopped")
)

const publishTimeout = 5 * time.Second

// Telemetry is the payload published on stations/<id>/telemetry.
type Telemetry struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature_c,omitempty"`
	Humidity    *float64  `json:"humidity_pct,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// NewTelemetry converts a reading.
func NewTelemetry(ts time.Time, t physic.Temperature, h physic.RelativeHumidity) Telemetry {
	c := t.Celsius()
	rh := float64(h) / float64(physic.PercentRH)
	return Telemetry{Timestamp: ts, Temperature: &c, Humidity: &rh}
}

// Topic returns the telemetry topic of a station.
func Topic(stationID string) string {
	return fmt.Sprintf("stations/%s/telemetry", stationID)
}

type Client struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	c := &Client{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	c.client = mqtt.NewClient(opts)
	return c
}

// Connect waits for the initial connection, respecting ctx and Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return ErrStopped
	default:
	}
	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("telemetry: mqtt connect: %w", err)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return ErrStopped
		default:
		}
	}
}

// Publish sends tm on the station topic with QoS 1.
func (c *Client) Publish(tm Telemetry) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	tm.StationID = c.cfg.StationID
	if tm.Timestamp.IsZero() {
		tm.Timestamp = time.Now()
	}
	data, err := json.Marshal(tm)
	if err != nil {
		return fmt.Errorf("telemetry: marshal: %w", err)
	}

	topic := Topic(c.cfg.StationID)
	token := c.client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("telemetry: publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("telemetry: publish: %w", err)
	}
	c.logger.Debug("published telemetry", "topic", topic)
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Disconnect stops the client. It is safe to call more than once.
func (c *Client) Disconnect() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.client.Disconnect(250)
	c.setConnected(false)
	c.logger.Info("mqtt disconnected")
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}
