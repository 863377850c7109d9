// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hts221

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/sensors/regio"
)

const (
	// Address is the fixed 7-bit I²C address of the HTS221.
	Address uint16 = 0x5f
	// WhoAmIValue is the content of the WHO_AM_I register, -68 as an int8.
	WhoAmIValue byte = 0xbc

	// Returned together with an error by Temperature and Humidity.
	InvalidTemperature physic.Temperature      = physic.ZeroCelsius - 274*physic.Kelvin
	InvalidHumidity    physic.RelativeHumidity = -physic.PercentRH
)

// Setting the MSB of the sub-address makes multi byte reads auto-increment.
const autoIncrement byte = 0x80

// Register addresses.
const (
	regWhoAmI         byte = 0x0f
	regAvConf         byte = 0x10
	regCtrl1          byte = 0x20
	regCtrl2          byte = 0x21
	regCtrl3          byte = 0x22
	regStatus         byte = 0x27
	regHumidityOut    byte = 0x28 | autoIncrement
	regTemperatureOut byte = 0x2a | autoIncrement
	regCalibration    byte = 0x30 | autoIncrement
)

// Register bits.
const (
	avTemperature byte = 0b0011_1000
	avHumidity    byte = 0b0000_0111

	ctrl1PowerOn byte = 1 << 7
	ctrl1BDU     byte = 1 << 2
	ctrl1ODR     byte = 0b0000_0011

	ctrl2Boot    byte = 1 << 7
	ctrl2Heater  byte = 1 << 1
	ctrl2OneShot byte = 1 << 0

	ctrl3ActiveLow byte = 1 << 7
	ctrl3OpenDrain byte = 1 << 6
)

const (
	rebootDelay  = 100 * time.Millisecond
	oneShotDelay = 50 * time.Millisecond

	// Shortest period accepted by SenseContinuous, the 12.5Hz data rate.
	minSenseInterval = 80 * time.Millisecond
)

// OutputDataRate selects how often the device samples.
type OutputDataRate int

const (
	// RateOneShot samples only when OneShot is called. This is the power-on
	// default.
	RateOneShot OutputDataRate = iota
	Rate1Hz
	Rate7Hz
	Rate12_5Hz
)

// PinDrive selects the output stage of the DRDY pin. OpenDrain sets bit 6
// of CTRL_REG3 as the datasheet defines it; some drivers name that bit
// push-pull and have the polarity reversed.
type PinDrive int

const (
	PushPull PinDrive = iota
	OpenDrain
)

// Level selects the active level of the DRDY pin.
type Level int

const (
	ActiveHigh Level = iota
	ActiveLow
)

// StatusFlags is the content of STATUS_REG.
type StatusFlags byte

const (
	TemperatureReady StatusFlags = 1 << 0
	HumidityReady    StatusFlags = 1 << 1
)

// State is the driver's mirror of the power and data rate bits. It is
// updated only by SetPower and SetOutputDataRate and is never read back
// from the device.
type State struct {
	Powered bool
	OneShot bool
}

// Opts holds the configuration options for the device.
type Opts struct {
	// MeasurementTimeout bounds a blocking measurement, including the
	// one-shot trigger. 0 leaves the bound to the caller's context; Sense
	// and SenseContinuous have none and use DefaultOpts.MeasurementTimeout.
	MeasurementTimeout time.Duration
	// PollInterval is the wait between status register reads while a
	// blocking measurement waits for data. Leave 0 to use the default.
	PollInterval time.Duration
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	MeasurementTimeout: time.Second,
	PollInterval:       5 * time.Millisecond,
}

// Dev represents an HTS221 sensor.
type Dev struct {
	t    regio.Transport
	regs *regio.Map
	opts Opts

	mu    sync.Mutex
	cal   Calibration
	state State
	stop  chan struct{}
	wg    sync.WaitGroup
}

// NewI2C returns a Dev on the I²C bus b at the fixed device address. The
// calibration block is read before returning. Opts can be nil.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	return New(&regio.Conn{C: &i2c.Dev{Bus: b, Addr: Address}}, opts)
}

// New returns a Dev using an arbitrary register transport. Opts can be nil.
//
// The device is left untouched apart from the calibration read: it stays
// powered down in one-shot mode until configured.
func New(t regio.Transport, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{
		t:     t,
		regs:  regio.New(t),
		opts:  *opts,
		state: State{OneShot: true},
	}
	if d.opts.PollInterval <= 0 {
		d.opts.PollInterval = DefaultOpts.PollInterval
	}
	cal, err := d.readCalibration()
	if err != nil {
		return nil, err
	}
	d.cal = cal
	return d, nil
}

func (d *Dev) readCalibration() (Calibration, error) {
	b, err := d.regs.ReadFull(regCalibration, calibrationSize)
	if err != nil {
		return Calibration{}, fmt.Errorf("hts221: read calibration: %w", err)
	}
	return DecodeCalibration(b)
}

// Calibration returns the trim values in use.
func (d *Dev) Calibration() Calibration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cal
}

// State returns the advisory power and data rate mirror.
func (d *Dev) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// WhoAmI returns the identification register. It reads WhoAmIValue on a
// genuine HTS221.
func (d *Dev) WhoAmI() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.regs.ReadUint8(regWhoAmI)
	if err != nil {
		return 0, fmt.Errorf("hts221: %w", err)
	}
	return v, nil
}

// Status returns the data-ready flags.
func (d *Dev) Status() (StatusFlags, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status()
}

func (d *Dev) status() (StatusFlags, error) {
	v, err := d.regs.ReadUint8(regStatus)
	if err != nil {
		return 0, fmt.Errorf("hts221: read status: %w", err)
	}
	return StatusFlags(v), nil
}

func (d *Dev) update(reg, mask, value byte) error {
	if err := d.regs.Update(reg, mask, value); err != nil {
		return fmt.Errorf("hts221: %w", err)
	}
	return nil
}

func (d *Dev) setBits(reg, mask byte, on bool) error {
	if err := d.regs.SetBits(reg, mask, on); err != nil {
		return fmt.Errorf("hts221: %w", err)
	}
	return nil
}

// SetAveraging sets the number of internal samples averaged per output
// value, which trades noise against supply current. Both rates are 0-7:
//
//	rate  temperature  humidity
//	0     2            4
//	1     4            8
//	2     8            16
//	3     16           32
//	4     32           64
//	5     64           128
//	6     128          256
//	7     256          512
func (d *Dev) SetAveraging(rateTemp, rateHum int) error {
	if err := checkRange("rateTemp", rateTemp, 0, 7); err != nil {
		return err
	}
	if err := checkRange("rateHum", rateHum, 0, 7); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.update(regAvConf, avTemperature|avHumidity, byte(rateTemp)<<3|byte(rateHum))
}

// SetTemperatureAveraging sets only the temperature rate of SetAveraging.
func (d *Dev) SetTemperatureAveraging(rateTemp int) error {
	if err := checkRange("rateTemp", rateTemp, 0, 7); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.update(regAvConf, avTemperature, byte(rateTemp)<<3)
}

// SetHumidityAveraging sets only the humidity rate of SetAveraging.
func (d *Dev) SetHumidityAveraging(rateHum int) error {
	if err := checkRange("rateHum", rateHum, 0, 7); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.update(regAvConf, avHumidity, byte(rateHum))
}

// SetOutputDataRate selects one-shot or continuous sampling.
func (d *Dev) SetOutputDataRate(rate OutputDataRate) error {
	if err := checkRange("rate", int(rate), int(RateOneShot), int(Rate12_5Hz)); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.update(regCtrl1, ctrl1ODR, byte(rate)); err != nil {
		return err
	}
	d.state.OneShot = rate == RateOneShot
	return nil
}

// SetPower turns the device on or puts it in power-down mode. The device
// must be on to produce samples.
func (d *Dev) SetPower(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setPower(on)
}

func (d *Dev) setPower(on bool) error {
	if err := d.setBits(regCtrl1, ctrl1PowerOn, on); err != nil {
		return err
	}
	d.state.Powered = on
	return nil
}

// SetBlockDataUpdate stops the output registers from being updated between
// the reads of their low and high bytes.
func (d *Dev) SetBlockDataUpdate(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setBits(regCtrl1, ctrl1BDU, on)
}

// SetHeater switches the internal heater. Samples taken while heating are
// not valid.
func (d *Dev) SetHeater(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setBits(regCtrl2, ctrl2Heater, on)
}

// SetPinDrive selects push-pull or open drain output on the DRDY pin.
func (d *Dev) SetPinDrive(mode PinDrive) error {
	if err := checkRange("mode", int(mode), int(PushPull), int(OpenDrain)); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setBits(regCtrl3, ctrl3OpenDrain, mode == OpenDrain)
}

// SetDataReadyLevel selects the active level of the DRDY pin.
func (d *Dev) SetDataReadyLevel(level Level) error {
	if err := checkRange("level", int(level), int(ActiveHigh), int(ActiveLow)); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setBits(regCtrl3, ctrl3ActiveLow, level == ActiveLow)
}

// Reboot reloads the trim registers from the device flash and reads the
// calibration block again. The previous calibration stays in use if the
// new one cannot be read.
func (d *Dev) Reboot() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.setBits(regCtrl2, ctrl2Boot, true); err != nil {
		return err
	}
	time.Sleep(rebootDelay)
	cal, err := d.readCalibration()
	if err != nil {
		return err
	}
	d.cal = cal
	return nil
}

// OneShot starts a single acquisition of both quantities. It is needed
// before ReadTemperature and ReadHumidity when the data rate is
// RateOneShot.
func (d *Dev) OneShot() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.oneShot()
}

func (d *Dev) oneShot() error {
	if err := d.setBits(regCtrl2, ctrl2OneShot, true); err != nil {
		return err
	}
	time.Sleep(oneShotDelay)
	return nil
}

// acquire waits until every flag in ready is set, triggering a one-shot
// acquisition first when needed.
func (d *Dev) acquire(ctx context.Context, ready StatusFlags) error {
	if !d.state.Powered {
		return ErrNotPowered
	}
	if d.opts.MeasurementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.MeasurementTimeout)
		defer cancel()
	}
	if d.state.OneShot {
		if err := d.oneShot(); err != nil {
			return err
		}
	}
	ticker := time.NewTicker(d.opts.PollInterval)
	defer ticker.Stop()
	for {
		st, err := d.status()
		if err != nil {
			return err
		}
		if st&ready == ready {
			return nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: status 0x%02x: %w", ErrTimeout, byte(st), ctx.Err())
			}
			return fmt.Errorf("hts221: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// sample is the single check used by the non-blocking reads.
func (d *Dev) sample(ready StatusFlags, reg byte) (int16, error) {
	if !d.state.Powered {
		return 0, ErrNotPowered
	}
	st, err := d.status()
	if err != nil {
		return 0, err
	}
	if st&ready == 0 {
		return 0, ErrDataNotReady
	}
	return d.readRaw(reg)
}

func (d *Dev) readRaw(reg byte) (int16, error) {
	b, err := d.regs.ReadFull(reg, 2)
	if err != nil {
		return 0, fmt.Errorf("hts221: read output: %w", err)
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

// Temperature waits for a new temperature sample and returns it. On error
// InvalidTemperature is returned.
func (d *Dev) Temperature(ctx context.Context) (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.acquire(ctx, TemperatureReady); err != nil {
		return InvalidTemperature, err
	}
	raw, err := d.readRaw(regTemperatureOut)
	if err != nil {
		return InvalidTemperature, err
	}
	return d.cal.Temperature(raw), nil
}

// Humidity waits for a new humidity sample and returns it. On error
// InvalidHumidity is returned.
func (d *Dev) Humidity(ctx context.Context) (physic.RelativeHumidity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.acquire(ctx, HumidityReady); err != nil {
		return InvalidHumidity, err
	}
	raw, err := d.readRaw(regHumidityOut)
	if err != nil {
		return InvalidHumidity, err
	}
	return d.cal.Humidity(raw), nil
}

// ReadTemperature returns the current temperature sample without waiting
// or triggering an acquisition. It fails with ErrNotPowered, ErrDataNotReady
// or ErrShortRead, in that order of checking.
func (d *Dev) ReadTemperature() (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, err := d.sample(TemperatureReady, regTemperatureOut)
	if err != nil {
		return InvalidTemperature, err
	}
	return d.cal.Temperature(raw), nil
}

// ReadHumidity is the humidity counterpart of ReadTemperature.
func (d *Dev) ReadHumidity() (physic.RelativeHumidity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, err := d.sample(HumidityReady, regHumidityOut)
	if err != nil {
		return InvalidHumidity, err
	}
	return d.cal.Humidity(raw), nil
}

// Sense reads temperature and humidity and writes them to env. Pressure is
// always 0. Implements physic.SenseEnv.
//
// The wait is always bounded, by DefaultOpts.MeasurementTimeout when Opts
// leaves it at 0.
func (d *Dev) Sense(env *physic.Env) error {
	env.Temperature = 0
	env.Pressure = 0
	env.Humidity = 0
	ctx := context.Background()
	if d.opts.MeasurementTimeout <= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultOpts.MeasurementTimeout)
		defer cancel()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.acquire(ctx, TemperatureReady|HumidityReady); err != nil {
		return err
	}
	h, err := d.readRaw(regHumidityOut)
	if err != nil {
		return err
	}
	t, err := d.readRaw(regTemperatureOut)
	if err != nil {
		return err
	}
	env.Temperature = d.cal.Temperature(t)
	env.Humidity = d.cal.Humidity(h)
	return nil
}

// SenseContinuous reads the device every interval and writes the values to
// the returned channel. Readings that fail are skipped. Implements
// physic.SenseEnv. Call Halt to terminate.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < minSenseInterval {
		return nil, fmt.Errorf("hts221: sample interval %s is < %s", interval, minSenseInterval)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil, errors.New("hts221: SenseContinuous already running")
	}
	stop := make(chan struct{})
	d.stop = stop
	ch := make(chan physic.Env, 16)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				env := physic.Env{}
				if err := d.Sense(&env); err != nil {
					continue
				}
				select {
				case ch <- env:
				case <-stop:
					return
				}
			}
		}
	}()
	return ch, nil
}

// Halt stops SenseContinuous, if running, and powers the device down.
// Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	stop := d.stop
	d.stop = nil
	d.mu.Unlock()
	if stop != nil {
		close(stop)
		d.wg.Wait()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setPower(false)
}

// Precision returns the change of one ADC count, derived from the
// calibration slope. Implements physic.SenseEnv.
func (d *Dev) Precision(env *physic.Env) {
	d.mu.Lock()
	cal := d.cal
	d.mu.Unlock()
	env.Temperature = physic.Temperature(math.Round(math.Abs(cal.Celsius(1)-cal.Celsius(0)) * float64(physic.Kelvin)))
	env.Humidity = physic.RelativeHumidity(math.Round(math.Abs(cal.PercentRH(1)-cal.PercentRH(0)) * float64(physic.PercentRH)))
	env.Pressure = 0
}

func (d *Dev) String() string {
	return fmt.Sprintf("hts221: %v", d.t)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
