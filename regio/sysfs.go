// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package regio

import (
	"fmt"
	"io"
	"sync"

	"gobot.io/x/gobot/sysfs"
)

// SysfsDevice is the part of gobot's sysfs.I2cDevice used by Sysfs.
type SysfsDevice interface {
	io.ReadWriteCloser
	SetAddress(address int) error
}

// Sysfs is a Transport on a Linux /dev/i2c-N character device driven
// through gobot's sysfs package. It is an alternative to the periph host
// drivers on boards where only the raw device node is available.
//
// Every call selects the slave address, writes the register address and
// then reads or writes the payload. The mutex covers the whole sequence so
// concurrent users of the same node do not interleave.
type Sysfs struct {
	mu   sync.Mutex
	dev  SysfsDevice
	addr uint16
	path string
}

// OpenSysfs opens the I²C character device at path, for example
// "/dev/i2c-1", and binds it to the 7-bit slave address addr.
func OpenSysfs(path string, addr uint16) (*Sysfs, error) {
	d, err := sysfs.NewI2cDevice(path)
	if err != nil {
		return nil, fmt.Errorf("regio: open %s: %w", path, err)
	}
	return NewSysfs(d, addr, path), nil
}

// NewSysfs wraps an already opened device.
func NewSysfs(dev SysfsDevice, addr uint16, path string) *Sysfs {
	return &Sysfs{dev: dev, addr: addr, path: path}
}

// ReadReg implements Transport. The count returned by the device read is
// passed through unchanged so a short read stays visible.
func (s *Sysfs) ReadReg(reg byte, p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dev.SetAddress(int(s.addr)); err != nil {
		return 0, fmt.Errorf("set address 0x%02x: %w", s.addr, err)
	}
	n, err := s.dev.Write([]byte{reg})
	if err != nil {
		return 0, err
	}
	if n != 1 {
		return 0, fmt.Errorf("short write: %d of 1 bytes", n)
	}
	return s.dev.Read(p)
}

// WriteReg implements Transport.
func (s *Sysfs) WriteReg(reg byte, p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dev.SetAddress(int(s.addr)); err != nil {
		return fmt.Errorf("set address 0x%02x: %w", s.addr, err)
	}
	w := make([]byte, 1+len(p))
	w[0] = reg
	copy(w[1:], p)
	n, err := s.dev.Write(w)
	if err != nil {
		return err
	}
	if n != len(w) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(w))
	}
	return nil
}

// Close releases the device node.
func (s *Sysfs) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.Close()
}

func (s *Sysfs) String() string {
	return fmt.Sprintf("%s(0x%02x)", s.path, s.addr)
}

var _ Transport = &Sysfs{}
var _ Transport = &Conn{}
