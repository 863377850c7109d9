// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gauge draws a temperature and humidity reading as two colored
// bars on a terminal using ANSI color codes.
//
// It is the poor man's display for a sensor running on a headless board
// reached over ssh.
package gauge

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for the gauge.
type Opts struct {
	// Width is the number of cells of each bar.
	Width int
	// MinTemperature and MaxTemperature are the ends of the temperature bar.
	MinTemperature physic.Temperature
	MaxTemperature physic.Temperature
	Palette        *ansi256.Palette

	_ struct{}
}

// DefaultOpts spans the operating range of indoor sensors.
var DefaultOpts = Opts{
	Width:          20,
	MinTemperature: physic.ZeroCelsius - 10*physic.Kelvin,
	MaxTemperature: physic.ZeroCelsius + 40*physic.Kelvin,
}

var (
	empty = color.NRGBA{0x30, 0x30, 0x30, 255}
	cold  = color.NRGBA{0x00, 0x60, 0xff, 255}
	hot   = color.NRGBA{0xff, 0x30, 0x00, 255}
	dry   = color.NRGBA{0xe0, 0xc0, 0x80, 255}
	wet   = color.NRGBA{0x00, 0xa0, 0xff, 255}
)

// Dev renders readings on one terminal line, overwriting it each time.
type Dev struct {
	w       io.Writer
	opts    Opts
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a Dev that draws on the console. Opts can be nil.
func New(opts *Opts) *Dev {
	return NewWriter(colorable.NewColorableStdout(), opts)
}

// NewWriter returns a Dev that draws on w. Opts can be nil.
func NewWriter(w io.Writer, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{w: w, opts: *opts}
	if d.opts.Width <= 0 {
		d.opts.Width = DefaultOpts.Width
	}
	if d.opts.MaxTemperature <= d.opts.MinTemperature {
		d.opts.MinTemperature = DefaultOpts.MinTemperature
		d.opts.MaxTemperature = DefaultOpts.MaxTemperature
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d.palette = *p
	return d
}

func (d *Dev) String() string {
	return "Gauge"
}

// Halt implements conn.Resource.
//
// It moves to a new line and resets the colors so the shell prompt is not
// corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Render draws env, ignoring its pressure.
func (d *Dev) Render(env *physic.Env) error {
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	n := cells(int64(env.Temperature-d.opts.MinTemperature), int64(d.opts.MaxTemperature-d.opts.MinTemperature), d.opts.Width)
	d.bar(n, cold, hot)
	_, _ = d.buf.WriteString("\033[0m ")
	n = cells(int64(env.Humidity), int64(100*physic.PercentRH), d.opts.Width)
	d.bar(n, dry, wet)
	_, _ = fmt.Fprintf(&d.buf, "\033[0m %8s %9s", env.Temperature, env.Humidity)
	_, err := d.buf.WriteTo(d.w)
	return err
}

func (d *Dev) bar(n int, from, to color.NRGBA) {
	for i := 0; i < d.opts.Width; i++ {
		c := empty
		if i < n {
			c = blend(from, to, i, d.opts.Width)
		}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
}

// cells returns how many of width cells v fills on a scale of span.
func cells(v, span int64, width int) int {
	if v <= 0 || span <= 0 {
		return 0
	}
	if v >= span {
		return width
	}
	return int(v * int64(width) / span)
}

func blend(from, to color.NRGBA, i, width int) color.NRGBA {
	if width < 2 {
		return to
	}
	mix := func(a, b uint8) uint8 {
		return uint8((int(a)*(width-1-i) + int(b)*i) / (width - 1))
	}
	return color.NRGBA{mix(from.R, to.R), mix(from.G, to.G), mix(from.B, to.B), 255}
}

var _ fmt.Stringer = &Dev{}
