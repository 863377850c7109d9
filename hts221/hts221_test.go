// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hts221

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var liveBus i2c.Bus
var liveDevice bool

func init() {
	liveDevice = os.Getenv("HTS221") != ""
	if !liveDevice {
		return
	}
	if _, err := host.Init(); err != nil {
		fmt.Println(err)
	}
	b, err := i2creg.Open("")
	if err != nil {
		fmt.Println(err)
		return
	}
	// Dump the data stream so it can be turned into playback data.
	liveBus = &i2ctest.Record{Bus: b}
}

// The calibration read issued by every constructor.
var opCalibration = i2ctest.IO{Addr: Address, W: []byte{0xb0}, R: calBlock}

// getPlayback returns a device on a playback bus. The calibration read is
// prepended to ops.
func getPlayback(t *testing.T, ops ...i2ctest.IO) (*Dev, *i2ctest.Playback) {
	pb := &i2ctest.Playback{Ops: append([]i2ctest.IO{opCalibration}, ops...), DontPanic: true}
	dev, err := NewI2C(pb, &Opts{MeasurementTimeout: time.Second, PollInterval: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	return dev, pb
}

func closePlayback(t *testing.T, pb *i2ctest.Playback) {
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

// fakeDev is a register array standing in for the sensor where the number
// of transactions is not known in advance.
type fakeDev struct {
	mu     sync.Mutex
	regs   [0x40]byte
	reads  map[byte]int
	writes map[byte]int
	limit  map[byte]int
	err    error
}

func newFake() *fakeDev {
	f := &fakeDev{reads: map[byte]int{}, writes: map[byte]int{}, limit: map[byte]int{}}
	copy(f.regs[0x30:], calBlock)
	f.regs[regWhoAmI] = WhoAmIValue
	return f
}

func (f *fakeDev) ReadReg(reg byte, p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	base := reg &^ autoIncrement
	f.reads[base]++
	n := len(p)
	if l, ok := f.limit[base]; ok && l < n {
		n = l
	}
	copy(p, f.regs[base:int(base)+n])
	return n, nil
}

func (f *fakeDev) WriteReg(reg byte, p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.writes[reg]++
	copy(f.regs[reg:], p)
	return nil
}

func (f *fakeDev) set(reg byte, v ...byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.regs[reg:], v)
}

func (f *fakeDev) reg(reg byte) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[reg]
}

func (f *fakeDev) readCount(reg byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[reg]
}

// getFake returns a powered device in continuous mode.
func getFake(t *testing.T, opts *Opts) (*Dev, *fakeDev) {
	f := newFake()
	dev, err := New(f, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.SetOutputDataRate(Rate12_5Hz); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetPower(true); err != nil {
		t.Fatal(err)
	}
	return dev, f
}

func TestLive(t *testing.T) {
	if !liveDevice {
		t.Skip("set HTS221 to run against a device")
	}
	dev, err := NewI2C(liveBus, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := dev.Calibration()
	t.Logf("calibration=%s", &c)
	if err := dev.SetPower(true); err != nil {
		t.Fatal(err)
	}
	env := physic.Env{}
	if err := dev.Sense(&env); err != nil {
		t.Error(err)
	}
	t.Logf("env=%s", env)
	if err := dev.Halt(); err != nil {
		t.Error(err)
	}
	t.Logf("%#v", liveBus.(*i2ctest.Record).Ops)
}

func TestNew(t *testing.T) {
	dev, pb := getPlayback(t)
	defer closePlayback(t, pb)
	if c := dev.Calibration(); c != calExpected {
		t.Errorf("calibration %s expected %s", &c, &calExpected)
	}
	if s := dev.State(); s.Powered || !s.OneShot {
		t.Errorf("initial state %#v", s)
	}
	if s := dev.String(); len(s) == 0 {
		t.Error("invalid String() result")
	}
}

func TestNewErrors(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	if dev, err := NewI2C(pb, nil); err == nil || dev != nil {
		t.Errorf("expected a transport error, got dev=%v err=%v", dev, err)
	}

	f := newFake()
	f.limit[0x30] = 8
	if _, err := New(f, nil); !errors.Is(err, ErrShortRead) {
		t.Errorf("expected ErrShortRead, got %v", err)
	}

	f = newFake()
	f.set(0x3e, 0x0c, 0xfe)
	if _, err := New(f, nil); !errors.Is(err, ErrCalibration) {
		t.Errorf("expected ErrCalibration, got %v", err)
	}
}

func TestWhoAmI(t *testing.T) {
	dev, pb := getPlayback(t, i2ctest.IO{Addr: Address, W: []byte{0x0f}, R: []byte{0xbc}})
	defer closePlayback(t, pb)
	id, err := dev.WhoAmI()
	if err != nil {
		t.Fatal(err)
	}
	if id != WhoAmIValue || int8(id) != -68 {
		t.Errorf("WhoAmI()=0x%02x", id)
	}
}

func TestSetAveraging(t *testing.T) {
	dev, pb := getPlayback(t,
		// Reserved bits 7:6 survive.
		i2ctest.IO{Addr: Address, W: []byte{0x10}, R: []byte{0b1101_1011}},
		i2ctest.IO{Addr: Address, W: []byte{0x10, 0b1111_0001}},
		i2ctest.IO{Addr: Address, W: []byte{0x10}, R: []byte{0b1111_0001}},
		i2ctest.IO{Addr: Address, W: []byte{0x10, 0b1100_0001}},
		i2ctest.IO{Addr: Address, W: []byte{0x10}, R: []byte{0b1100_0001}},
		i2ctest.IO{Addr: Address, W: []byte{0x10, 0b1100_0111}},
	)
	defer closePlayback(t, pb)
	if err := dev.SetAveraging(6, 1); err != nil {
		t.Error(err)
	}
	if err := dev.SetTemperatureAveraging(0); err != nil {
		t.Error(err)
	}
	if err := dev.SetHumidityAveraging(7); err != nil {
		t.Error(err)
	}
}

func TestInvalidArguments(t *testing.T) {
	dev, pb := getPlayback(t)
	defer closePlayback(t, pb)
	var tests = []struct {
		name string
		f    func() error
	}{
		{"SetAveraging(8, 0)", func() error { return dev.SetAveraging(8, 0) }},
		{"SetAveraging(0, -1)", func() error { return dev.SetAveraging(0, -1) }},
		{"SetTemperatureAveraging(-1)", func() error { return dev.SetTemperatureAveraging(-1) }},
		{"SetHumidityAveraging(8)", func() error { return dev.SetHumidityAveraging(8) }},
		{"SetOutputDataRate(4)", func() error { return dev.SetOutputDataRate(4) }},
		{"SetOutputDataRate(-1)", func() error { return dev.SetOutputDataRate(-1) }},
		{"SetPinDrive(2)", func() error { return dev.SetPinDrive(2) }},
		{"SetDataReadyLevel(-1)", func() error { return dev.SetDataReadyLevel(-1) }},
	}
	for _, test := range tests {
		err := test.f()
		var argErr *InvalidArgumentError
		if !errors.As(err, &argErr) {
			t.Errorf("%s: expected InvalidArgumentError, got %v", test.name, err)
			continue
		}
		if Code(err) != CodeInvalidArgument {
			t.Errorf("%s: Code()=%s", test.name, Code(err))
		}
	}
	// Only the calibration read reached the bus.
	if pb.Count != 1 {
		t.Errorf("rejected arguments caused %d bus transactions", pb.Count-1)
	}
}

func TestSetBits(t *testing.T) {
	var tests = []struct {
		name      string
		f         func(d *Dev) error
		reg       byte
		old, want byte
	}{
		{"power on", func(d *Dev) error { return d.SetPower(true) }, 0x20, 0b0000_0101, 0b1000_0101},
		{"power on again", func(d *Dev) error { return d.SetPower(true) }, 0x20, 0b1000_0101, 0b1000_0101},
		{"power off", func(d *Dev) error { return d.SetPower(false) }, 0x20, 0b1000_0111, 0b0000_0111},
		{"bdu on", func(d *Dev) error { return d.SetBlockDataUpdate(true) }, 0x20, 0b1000_0011, 0b1000_0111},
		{"bdu off", func(d *Dev) error { return d.SetBlockDataUpdate(false) }, 0x20, 0b1111_1111, 0b1111_1011},
		{"heater on", func(d *Dev) error { return d.SetHeater(true) }, 0x21, 0b0111_1101, 0b0111_1111},
		{"heater off", func(d *Dev) error { return d.SetHeater(false) }, 0x21, 0b1000_0011, 0b1000_0001},
		{"open drain", func(d *Dev) error { return d.SetPinDrive(OpenDrain) }, 0x22, 0b1000_0100, 0b1100_0100},
		{"push-pull", func(d *Dev) error { return d.SetPinDrive(PushPull) }, 0x22, 0b1111_1111, 0b1011_1111},
		{"active low", func(d *Dev) error { return d.SetDataReadyLevel(ActiveLow) }, 0x22, 0b0100_0100, 0b1100_0100},
		{"active high", func(d *Dev) error { return d.SetDataReadyLevel(ActiveHigh) }, 0x22, 0b1100_0100, 0b0100_0100},
		{"rate 7Hz", func(d *Dev) error { return d.SetOutputDataRate(Rate7Hz) }, 0x20, 0b1000_0101, 0b1000_0110},
		{"rate one-shot", func(d *Dev) error { return d.SetOutputDataRate(RateOneShot) }, 0x20, 0b1000_0111, 0b1000_0100},
	}
	for _, test := range tests {
		dev, pb := getPlayback(t,
			i2ctest.IO{Addr: Address, W: []byte{test.reg}, R: []byte{test.old}},
			i2ctest.IO{Addr: Address, W: []byte{test.reg, test.want}},
		)
		if err := test.f(dev); err != nil {
			t.Errorf("%s: %v", test.name, err)
		}
		if err := pb.Close(); err != nil {
			t.Errorf("%s: %v", test.name, err)
		}
	}
}

func TestStateMirror(t *testing.T) {
	dev, f := getFake(t, nil)
	if s := dev.State(); !s.Powered || s.OneShot {
		t.Errorf("state %#v", s)
	}
	if err := dev.SetOutputDataRate(RateOneShot); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetPower(false); err != nil {
		t.Fatal(err)
	}
	if s := dev.State(); s.Powered || !s.OneShot {
		t.Errorf("state %#v", s)
	}
	// A failed write leaves the mirror alone.
	f.err = errors.New("bus error")
	if err := dev.SetPower(true); err == nil {
		t.Error("expected an error")
	}
	if s := dev.State(); s.Powered {
		t.Error("mirror updated after a failed write")
	}
	if Code(dev.SetHeater(true)) != CodeTransport {
		t.Error("expected a transport error code")
	}
}

func TestReboot(t *testing.T) {
	newBlock := append([]byte(nil), calBlock...)
	newBlock[0] = 0x30 // H0 24%RH
	dev, pb := getPlayback(t,
		i2ctest.IO{Addr: Address, W: []byte{0x21}, R: []byte{0x02}},
		i2ctest.IO{Addr: Address, W: []byte{0x21, 0x82}},
		i2ctest.IO{Addr: Address, W: []byte{0xb0}, R: newBlock},
	)
	defer closePlayback(t, pb)
	if err := dev.Reboot(); err != nil {
		t.Fatal(err)
	}
	if c := dev.Calibration(); c.H0rH != 24 {
		t.Errorf("calibration not reloaded: %s", &c)
	}
}

func TestRebootKeepsCalibration(t *testing.T) {
	dev, f := getFake(t, nil)
	f.limit[0x30] = 4
	if err := dev.Reboot(); !errors.Is(err, ErrShortRead) {
		t.Errorf("expected ErrShortRead, got %v", err)
	}
	if c := dev.Calibration(); c != calExpected {
		t.Errorf("calibration changed to %s", &c)
	}
	if f.reg(regCtrl2)&ctrl2Boot == 0 {
		t.Error("boot bit not set")
	}
}

func TestTemperatureOneShot(t *testing.T) {
	dev, pb := getPlayback(t,
		i2ctest.IO{Addr: Address, W: []byte{0x20}, R: []byte{0x00}},
		i2ctest.IO{Addr: Address, W: []byte{0x20, 0x80}},
		// One-shot trigger.
		i2ctest.IO{Addr: Address, W: []byte{0x21}, R: []byte{0x00}},
		i2ctest.IO{Addr: Address, W: []byte{0x21, 0x01}},
		// Not ready, then ready.
		i2ctest.IO{Addr: Address, W: []byte{0x27}, R: []byte{0x02}},
		i2ctest.IO{Addr: Address, W: []byte{0x27}, R: []byte{0x03}},
		i2ctest.IO{Addr: Address, W: []byte{0xaa}, R: []byte{0x00, 0x00}},
	)
	defer closePlayback(t, pb)
	if err := dev.SetPower(true); err != nil {
		t.Fatal(err)
	}
	temp, err := dev.Temperature(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if expected := physic.ZeroCelsius + 25*physic.Kelvin; temp != expected {
		t.Errorf("temperature %s expected %s", temp, expected)
	}
}

func TestHumidityContinuous(t *testing.T) {
	dev, pb := getPlayback(t,
		i2ctest.IO{Addr: Address, W: []byte{0x20}, R: []byte{0x80}},
		i2ctest.IO{Addr: Address, W: []byte{0x20, 0x81}},
		i2ctest.IO{Addr: Address, W: []byte{0x20}, R: []byte{0x81}},
		i2ctest.IO{Addr: Address, W: []byte{0x20, 0x81}},
		i2ctest.IO{Addr: Address, W: []byte{0x27}, R: []byte{0x02}},
		i2ctest.IO{Addr: Address, W: []byte{0xa8}, R: []byte{0x08, 0x07}},
	)
	defer closePlayback(t, pb)
	if err := dev.SetOutputDataRate(Rate1Hz); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetPower(true); err != nil {
		t.Fatal(err)
	}
	h, err := dev.Humidity(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if expected := 50 * physic.PercentRH; h != expected {
		t.Errorf("humidity %s expected %s", h, expected)
	}
}

func TestBlockingNotPowered(t *testing.T) {
	dev, pb := getPlayback(t)
	defer closePlayback(t, pb)
	temp, err := dev.Temperature(context.Background())
	if !errors.Is(err, ErrNotPowered) || temp != InvalidTemperature {
		t.Errorf("got %s, %v", temp, err)
	}
	h, err := dev.Humidity(context.Background())
	if !errors.Is(err, ErrNotPowered) || h != InvalidHumidity {
		t.Errorf("got %s, %v", h, err)
	}
	env := physic.Env{}
	if err := dev.Sense(&env); !errors.Is(err, ErrNotPowered) {
		t.Errorf("Sense: %v", err)
	}
}

func TestBlockingTimeout(t *testing.T) {
	dev, f := getFake(t, &Opts{MeasurementTimeout: 30 * time.Millisecond, PollInterval: 5 * time.Millisecond})
	start := time.Now()
	temp, err := dev.Temperature(context.Background())
	if !errors.Is(err, ErrTimeout) || Code(err) != CodeTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if temp != InvalidTemperature {
		t.Errorf("temperature %s", temp)
	}
	if d := time.Since(start); d > time.Second {
		t.Errorf("timeout took %s", d)
	}
	if f.readCount(regStatus) < 2 {
		t.Errorf("status polled %d times", f.readCount(regStatus))
	}
	if n := f.readCount(0x2a); n != 0 {
		t.Errorf("output read %d times", n)
	}
}

func TestBlockingContext(t *testing.T) {
	dev, _ := getFake(t, &Opts{PollInterval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := dev.Humidity(ctx); !errors.Is(err, context.Canceled) || Code(err) != CodeCanceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := dev.Humidity(ctx); !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestReadNotPowered(t *testing.T) {
	f := newFake()
	dev, err := New(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	f.set(regStatus, 0x03)
	if _, err := dev.ReadTemperature(); !errors.Is(err, ErrNotPowered) || Code(err) != CodeNotPowered {
		t.Errorf("expected ErrNotPowered, got %v", err)
	}
	if _, err := dev.ReadHumidity(); !errors.Is(err, ErrNotPowered) {
		t.Errorf("expected ErrNotPowered, got %v", err)
	}
	if f.readCount(regStatus) != 0 || f.readCount(0x28) != 0 || f.readCount(0x2a) != 0 {
		t.Errorf("bus read while not powered: %v", f.reads)
	}
}

func TestReadNotReady(t *testing.T) {
	dev, f := getFake(t, nil)
	f.set(regStatus, 0x02)
	if _, err := dev.ReadTemperature(); !errors.Is(err, ErrDataNotReady) || Code(err) != CodeNoNewData {
		t.Errorf("expected ErrDataNotReady, got %v", err)
	}
	f.set(regStatus, 0x01)
	if _, err := dev.ReadHumidity(); !errors.Is(err, ErrDataNotReady) {
		t.Errorf("expected ErrDataNotReady, got %v", err)
	}
	if f.readCount(regStatus) != 2 {
		t.Errorf("status read %d times, expected once per call", f.readCount(regStatus))
	}
	// Never triggers an acquisition.
	if f.reg(regCtrl2)&ctrl2OneShot != 0 {
		t.Error("one-shot triggered")
	}
}

func TestReadShortRead(t *testing.T) {
	dev, f := getFake(t, nil)
	f.set(regStatus, 0x03)
	f.limit[0x2a] = 1
	f.limit[0x28] = 1
	if _, err := dev.ReadTemperature(); !errors.Is(err, ErrShortRead) || Code(err) != CodeShortRead {
		t.Errorf("expected ErrShortRead, got %v", err)
	}
	if _, err := dev.ReadHumidity(); !errors.Is(err, ErrShortRead) {
		t.Errorf("expected ErrShortRead, got %v", err)
	}
}

func TestRead(t *testing.T) {
	dev, f := getFake(t, nil)
	f.set(regStatus, 0x03)
	f.set(0x28, 0x08, 0x07)
	f.set(0x2a, 0x84, 0x03)
	temp, err := dev.ReadTemperature()
	if err != nil {
		t.Fatal(err)
	}
	if expected := physic.ZeroCelsius + 34*physic.Kelvin; temp != expected {
		t.Errorf("temperature %s expected %s", temp, expected)
	}
	h, err := dev.ReadHumidity()
	if err != nil {
		t.Fatal(err)
	}
	if expected := 50 * physic.PercentRH; h != expected {
		t.Errorf("humidity %s expected %s", h, expected)
	}
	st, err := dev.Status()
	if err != nil || st != TemperatureReady|HumidityReady {
		t.Errorf("Status()=%v, %v", st, err)
	}
}

func TestSense(t *testing.T) {
	dev, f := getFake(t, nil)
	f.set(regStatus, 0x03)
	f.set(0x28, 0x08, 0x07)
	f.set(0x2a, 0x00, 0x00)
	env := physic.Env{Pressure: physic.Pascal}
	if err := dev.Sense(&env); err != nil {
		t.Fatal(err)
	}
	if expected := physic.ZeroCelsius + 25*physic.Kelvin; env.Temperature != expected {
		t.Errorf("temperature %s expected %s", env.Temperature, expected)
	}
	if expected := 50 * physic.PercentRH; env.Humidity != expected {
		t.Errorf("humidity %s expected %s", env.Humidity, expected)
	}
	if env.Pressure != 0 {
		t.Errorf("pressure %s", env.Pressure)
	}
}

func TestSenseBoundedWithoutTimeout(t *testing.T) {
	// Status never flags new data and no timeout is configured.
	dev, _ := getFake(t, &Opts{PollInterval: time.Millisecond})
	done := make(chan error, 1)
	go func() {
		env := physic.Env{}
		done <- dev.Sense(&env)
	}()
	select {
	case err := <-done:
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	case <-time.After(5 * DefaultOpts.MeasurementTimeout):
		t.Fatal("Sense did not return")
	}

	ch, err := dev.SenseContinuous(100 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	halted := make(chan error, 1)
	go func() { halted <- dev.Halt() }()
	select {
	case err := <-halted:
		if err != nil {
			t.Error(err)
		}
	case <-time.After(5 * DefaultOpts.MeasurementTimeout):
		t.Fatal("Halt did not return")
	}
	for range ch {
	}
}

func TestSenseContinuous(t *testing.T) {
	dev, f := getFake(t, nil)
	f.set(regStatus, 0x03)
	f.set(0x28, 0x08, 0x07)
	if _, err := dev.SenseContinuous(time.Millisecond); err == nil {
		t.Error("SenseContinuous() doesn't return an error on too short a duration.")
	}
	ch, err := dev.SenseContinuous(100 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dev.SenseContinuous(time.Second); err == nil {
		t.Error("expected an error for attempting concurrent SenseContinuous")
	}
	for i := 0; i < 3; i++ {
		e := <-ch
		if e.Humidity != 50*physic.PercentRH {
			t.Errorf("humidity %s", e.Humidity)
		}
	}
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	for range ch {
	}
	if dev.State().Powered || f.reg(regCtrl1)&ctrl1PowerOn != 0 {
		t.Error("device still powered after Halt")
	}
	// A new stream can be started once halted.
	if err := dev.SetPower(true); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.SenseContinuous(100 * time.Millisecond); err != nil {
		t.Error(err)
	}
	if err := dev.Halt(); err != nil {
		t.Error(err)
	}
}

func TestPrecision(t *testing.T) {
	dev, pb := getPlayback(t)
	defer closePlayback(t, pb)
	env := physic.Env{}
	dev.Precision(&env)
	if expected := 10 * physic.MilliKelvin; env.Temperature != expected {
		t.Errorf("temperature precision %s expected %s", env.Temperature, expected)
	}
	if expected := physic.PercentRH / 100; env.Humidity != expected {
		t.Errorf("humidity precision %s expected %s", env.Humidity, expected)
	}
}

func TestCode(t *testing.T) {
	var tests = []struct {
		err  error
		code ErrorCode
	}{
		{nil, CodeOK},
		{ErrNotPowered, CodeNotPowered},
		{fmt.Errorf("wrapped: %w", ErrDataNotReady), CodeNoNewData},
		{ErrShortRead, CodeShortRead},
		{ErrTimeout, CodeTimeout},
		{context.Canceled, CodeCanceled},
		{&InvalidArgumentError{Name: "rate", Value: 9, Min: 0, Max: 3}, CodeInvalidArgument},
		{ErrCalibration, CodeCalibration},
		{errors.New("remote I/O error"), CodeTransport},
	}
	for _, test := range tests {
		if c := Code(test.err); c != test.code {
			t.Errorf("Code(%v)=%s expected %s", test.err, c, test.code)
		}
	}
}
