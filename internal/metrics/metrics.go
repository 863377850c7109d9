// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package metrics exports the latest sensor reading to Prometheus.
package metrics

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"periph.io/x/conn/v3/physic"
)

// Exporter holds the most recent reading. Gauges report NaN until the
// first successful reading.
type Exporter struct {
	mu          sync.Mutex
	temperature float64
	humidity    float64

	Temperature prometheus.GaugeFunc
	Humidity    prometheus.GaugeFunc
	LastSuccess prometheus.Gauge
	Errors      *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Exporter {
	e := &Exporter{temperature: math.NaN(), humidity: math.NaN()}
	f := promauto.With(reg)
	e.Temperature = f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "hts221",
		Name:      "temperature_celsius",
	}, func() float64 {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.temperature
	})
	e.Humidity = f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "hts221",
		Name:      "humidity_percent",
	}, func() float64 {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.humidity
	})
	e.LastSuccess = f.NewGauge(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "hts221",
		Name:      "last_success_timestamp_seconds",
	})
	e.Errors = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sensors",
		Subsystem: "hts221",
		Name:      "read_errors_total",
	}, []string{"code"})
	return e
}

// Observe records a successful reading taken at ts.
func (e *Exporter) Observe(ts time.Time, t physic.Temperature, h physic.RelativeHumidity) {
	e.mu.Lock()
	e.temperature = round(t.Celsius(), 2)
	e.humidity = round(float64(h)/float64(physic.PercentRH), 2)
	e.mu.Unlock()
	e.LastSuccess.Set(float64(ts.UnixNano()) / 1e9)
}

// ObserveError counts a failed reading by its error code.
func (e *Exporter) ObserveError(code string) {
	e.Errors.WithLabelValues(code).Inc()
}

// Serve exposes the metrics of g on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func round(x float64, prec int) float64 {
	pow := math.Pow10(prec)
	return math.Round(x*pow) / pow
}
