// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hts221

import (
	"context"
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/sensors/regio"
)

var (
	// ErrNotPowered is returned by measurements while the power bit is off.
	ErrNotPowered = errors.New("hts221: power not enabled")
	// ErrDataNotReady is returned by ReadTemperature and ReadHumidity when the
	// status register does not flag a new sample.
	ErrDataNotReady = errors.New("hts221: no new data available")
	// ErrShortRead is returned when the device supplied fewer bytes than
	// the register width.
	ErrShortRead = regio.ErrShortRead
	// ErrTimeout is returned by the blocking measurements when no sample
	// became ready in time.
	ErrTimeout = errors.New("hts221: timeout waiting for data")
	// ErrCalibration is returned when the trim block cannot be used, for
	// example when both reference counts of a quantity are equal.
	ErrCalibration = errors.New("hts221: invalid calibration data")
)

// InvalidArgumentError reports a numeric argument outside its range. It is
// returned before any bus transaction takes place.
type InvalidArgumentError struct {
	Name     string
	Value    int
	Min, Max int
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("hts221: %s should be in range %d-%d, got %d", e.Name, e.Min, e.Max, e.Value)
}

func checkRange(name string, value, lo, hi int) error {
	if value < lo || value > hi {
		return &InvalidArgumentError{Name: name, Value: value, Min: lo, Max: hi}
	}
	return nil
}

// ErrorCode is a short stable identifier for a class of driver error.
type ErrorCode string

const (
	CodeOK              ErrorCode = "ok"
	CodeNotPowered      ErrorCode = "not_powered"
	CodeNoNewData       ErrorCode = "no_new_data"
	CodeShortRead       ErrorCode = "short_read"
	CodeTimeout         ErrorCode = "timeout"
	CodeCanceled        ErrorCode = "canceled"
	CodeInvalidArgument ErrorCode = "invalid_argument"
	CodeCalibration     ErrorCode = "calibration"
	// CodeTransport covers every bus failure.
	CodeTransport ErrorCode = "transport"
)

// Code classifies err. The message for the caller is err.Error().
func Code(err error) ErrorCode {
	var argErr *InvalidArgumentError
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrNotPowered):
		return CodeNotPowered
	case errors.Is(err, ErrDataNotReady):
		return CodeNoNewData
	case errors.Is(err, ErrShortRead):
		return CodeShortRead
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.As(err, &argErr):
		return CodeInvalidArgument
	case errors.Is(err, ErrCalibration):
		return CodeCalibration
	default:
		return CodeTransport
	}
}
