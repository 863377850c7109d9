// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hts221

import (
	"encoding/binary"
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"
)

// Size of the trim block at registers 0x30-0x3f, read in one transaction
// from 0xb0 (0x30 with the auto-increment bit set).
const calibrationSize = 16

// Calibration holds the factory trim values of one device. A Calibration
// returned by DecodeCalibration always has distinct reference counts.
type Calibration struct {
	// Humidity reference points in %RH.
	H0rH, H1rH float64
	// Temperature reference points in °C.
	T0degC, T1degC float64
	// Raw humidity counts at H0rH and H1rH.
	H0T0Out, H1T0Out int16
	// Raw temperature counts at T0degC and T1degC.
	T0Out, T1Out int16
}

// DecodeCalibration decodes the 16 byte trim block.
//
// The layout is:
//
//	0     H0_rH_x2, unsigned
//	1     H1_rH_x2, unsigned
//	2     T0_degC_x8, bits 7:0
//	3     T1_degC_x8, bits 7:0
//	4     reserved
//	5     bits 1:0 T0_degC_x8 bits 9:8, bits 3:2 T1_degC_x8 bits 9:8
//	6-7   H0_T0_OUT, little endian int16
//	8-9   reserved
//	10-11 H1_T0_OUT
//	12-13 T0_OUT
//	14-15 T1_OUT
func DecodeCalibration(b []byte) (Calibration, error) {
	if len(b) < calibrationSize {
		return Calibration{}, fmt.Errorf("hts221: calibration block: %w: %d of %d bytes", ErrShortRead, len(b), calibrationSize)
	}
	msb := b[5]
	c := Calibration{
		H0rH:    float64(b[0]) / 2,
		H1rH:    float64(b[1]) / 2,
		T0degC:  float64(uint16(msb&0x03)<<8|uint16(b[2])) / 8,
		T1degC:  float64(uint16(msb&0x0c)<<6|uint16(b[3])) / 8,
		H0T0Out: int16(binary.LittleEndian.Uint16(b[6:])),
		H1T0Out: int16(binary.LittleEndian.Uint16(b[10:])),
		T0Out:   int16(binary.LittleEndian.Uint16(b[12:])),
		T1Out:   int16(binary.LittleEndian.Uint16(b[14:])),
	}
	if c.T0Out == c.T1Out {
		return Calibration{}, fmt.Errorf("%w: T0_OUT and T1_OUT are both %d", ErrCalibration, c.T0Out)
	}
	if c.H0T0Out == c.H1T0Out {
		return Calibration{}, fmt.Errorf("%w: H0_T0_OUT and H1_T0_OUT are both %d", ErrCalibration, c.H0T0Out)
	}
	return c, nil
}

// interpolate maps raw onto the line through (countLow, valueLow) and
// (countHigh, valueHigh).
func interpolate(raw, countLow, countHigh int16, valueLow, valueHigh float64) float64 {
	return float64(int32(raw)-int32(countLow))*(valueHigh-valueLow)/float64(int32(countHigh)-int32(countLow)) + valueLow
}

// Celsius converts a raw temperature count to °C.
func (c *Calibration) Celsius(raw int16) float64 {
	return interpolate(raw, c.T0Out, c.T1Out, c.T0degC, c.T1degC)
}

// PercentRH converts a raw humidity count to %RH.
func (c *Calibration) PercentRH(raw int16) float64 {
	return interpolate(raw, c.H0T0Out, c.H1T0Out, c.H0rH, c.H1rH)
}

// Temperature converts a raw temperature count.
func (c *Calibration) Temperature(raw int16) physic.Temperature {
	return celsiusToTemperature(c.Celsius(raw))
}

// Humidity converts a raw humidity count.
func (c *Calibration) Humidity(raw int16) physic.RelativeHumidity {
	return percentToHumidity(c.PercentRH(raw))
}

func celsiusToTemperature(c float64) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(math.Round(c*float64(physic.Kelvin)))
}

func percentToHumidity(rh float64) physic.RelativeHumidity {
	return physic.RelativeHumidity(math.Round(rh * float64(physic.PercentRH)))
}

func (c *Calibration) String() string {
	return fmt.Sprintf("{H0: %.1f%%RH@%d, H1: %.1f%%RH@%d, T0: %.3f°C@%d, T1: %.3f°C@%d}",
		c.H0rH, c.H0T0Out, c.H1rH, c.H1T0Out,
		c.T0degC, c.T0Out, c.T1degC, c.T1Out)
}
