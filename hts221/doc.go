// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hts221 controls an ST HTS221 capacitive humidity and temperature
// sensor over I²C.
//
// The device stores factory trim values in a 16 byte block. They are read
// once when the Dev is created, and again after Reboot, and are used to
// turn raw ADC counts into degrees Celsius and %RH by two point linear
// interpolation.
//
// Two measurement forms are provided. Temperature and Humidity block until
// a fresh sample is available, triggering a one-shot acquisition first when
// the output data rate is RateOneShot; they are bounded by the context and
// Opts.MeasurementTimeout. ReadTemperature and ReadHumidity check the status
// register exactly once and return ErrDataNotReady instead of waiting.
//
// The power and data rate settings are mirrored in the Dev as they are
// written. The mirror is advisory: it is not read back from the device, so
// changes made by another bus master are not seen.
//
// Datasheet
//
//	https://www.st.com/resource/en/datasheet/hts221.pdf
package hts221
