// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sensors is a container for the ST HTS221 humidity and
// temperature driver and the tools built on it.
//
// The driver lives in hts221, on top of the register access layer in
// regio. cmd/hts221mon runs it as a monitoring daemon.
package sensors
