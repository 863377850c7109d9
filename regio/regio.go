// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package regio provides register level access to byte addressed I²C
// devices. It is shared by drivers that talk to a register map rather than
// a command set, for example the ST HTS221.
//
// A Transport performs exactly one bus transaction per call. Map builds the
// usual helpers on top of it: block reads, byte writes and the
// read-modify-write sequence used to flip configuration bits without
// disturbing their neighbours.
package regio

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
)

// ErrShortRead is returned when a device answered with fewer bytes than
// the register width requires.
var ErrShortRead = errors.New("regio: short read")

// Transport is a single transaction on a device register.
//
// ReadReg selects reg and reads into p, returning the number of bytes the
// device actually supplied. WriteReg writes p starting at reg.
type Transport interface {
	ReadReg(reg byte, p []byte) (int, error)
	WriteReg(reg byte, p []byte) error
}

// Conn adapts a periph conn.Conn, typically an *i2c.Dev, to a Transport.
//
// Reads are issued as a register address write followed by a repeated
// start read in a single Tx. A successful Tx always fills the buffer.
type Conn struct {
	C conn.Conn
}

// ReadReg implements Transport.
func (c *Conn) ReadReg(reg byte, p []byte) (int, error) {
	if err := c.C.Tx([]byte{reg}, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteReg implements Transport.
func (c *Conn) WriteReg(reg byte, p []byte) error {
	w := make([]byte, 1+len(p))
	w[0] = reg
	copy(w[1:], p)
	return c.C.Tx(w, nil)
}

func (c *Conn) String() string {
	return c.C.String()
}

// Map is the register access layer for one device.
type Map struct {
	t Transport
}

// New returns a Map that issues its transactions on t.
func New(t Transport) *Map {
	return &Map{t: t}
}

// Read reads n consecutive bytes starting at reg. The returned slice holds
// only the bytes the device supplied, which may be fewer than n. A short
// read is not an error at this level; use ReadFull when it must be.
func (m *Map) Read(reg byte, n int) ([]byte, error) {
	p := make([]byte, n)
	got, err := m.t.ReadReg(reg, p)
	if err != nil {
		return nil, fmt.Errorf("regio: read 0x%02x: %w", reg, err)
	}
	if got < 0 {
		got = 0
	}
	if got > n {
		got = n
	}
	return p[:got], nil
}

// ReadFull is Read, failing with ErrShortRead unless all n bytes arrived.
func (m *Map) ReadFull(reg byte, n int) ([]byte, error) {
	p, err := m.Read(reg, n)
	if err != nil {
		return nil, err
	}
	if len(p) < n {
		return p, fmt.Errorf("%w: register 0x%02x returned %d of %d bytes", ErrShortRead, reg, len(p), n)
	}
	return p, nil
}

// ReadUint8 reads the single register reg.
func (m *Map) ReadUint8(reg byte) (byte, error) {
	p, err := m.ReadFull(reg, 1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// WriteUint8 writes v to reg.
func (m *Map) WriteUint8(reg, v byte) error {
	if err := m.t.WriteReg(reg, []byte{v}); err != nil {
		return fmt.Errorf("regio: write 0x%02x: %w", reg, err)
	}
	return nil
}

// Update performs a read-modify-write of reg. Bits set in mask are replaced
// by the matching bits of value; every other bit keeps its current state.
// The register is always written back, even when nothing changed.
func (m *Map) Update(reg, mask, value byte) error {
	old, err := m.ReadUint8(reg)
	if err != nil {
		return err
	}
	return m.WriteUint8(reg, old&^mask|value&mask)
}

// SetBits sets (on) or clears the bits in mask.
func (m *Map) SetBits(reg, mask byte, on bool) error {
	var v byte
	if on {
		v = mask
	}
	return m.Update(reg, mask, v)
}
