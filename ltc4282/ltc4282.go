// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ltc4282

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddress is the address with all ADR pins low.
const DefaultAddress uint16 = 0x40

// Dev is a LTC4282 hot swap controller.
type Dev struct {
	// Pins are the pins configured as GPIO, in GPIO1, GPIO2, GPIO3, ALERT
	// order. They are registered with gpioreg until Halt.
	Pins []gpio.PinIO

	d    *i2c.Dev
	regs regmap
	// mu serializes read-modify-write sequences.
	mu    sync.Mutex
	log   *zap.Logger
	sleep func(time.Duration)

	// Immutable after bring-up.
	rsense     uint32
	vinMode    VinMode
	vfs        uint32
	vddMonitor bool
}

// Telemetry is a snapshot of the instantaneous readings.
type Telemetry struct {
	// Source is VSOURCE, or VDD when the VDD monitor is enabled.
	Source  physic.ElectricPotential
	GPIO    physic.ElectricPotential
	Current physic.ElectricCurrent
	Power   physic.Power
	// Energy accumulated since the last meter reset, in µJ.
	Energy uint64
}

func (t *Telemetry) String() string {
	return fmt.Sprintf("%s %s %s %s %dµJ", t.Source, t.GPIO, t.Current, t.Power, t.Energy)
}

// NewI2C brings up the device at addr and returns it once it is ready. opts
// must at least set RsenseNanoOhms.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	return newI2C(b, addr, opts, time.Sleep)
}

func newI2C(b i2c.Bus, addr uint16, opts *Opts, sleep func(time.Duration)) (*Dev, error) {
	if opts == nil {
		return nil, &ConfigError{Prop: propRsense, Value: 0}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: addr}, sleep: sleep}
	d.regs = regmap{d: d.d}
	d.log = log.With(zap.String("dev", d.String()))
	if err := d.start(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// VinMode returns the configured input voltage mode.
func (d *Dev) VinMode() VinMode {
	return d.vinMode
}

// Read returns the value of an attribute in mV, mA or µW. Alarms read as 0 or
// 1. Labels are read with Label.
func (d *Dev) Read(s Sensor, a Attr, channel int) (int64, error) {
	if a == Label || d.Mode(s, a, channel) == 0 {
		return 0, ErrUnsupported
	}
	switch s {
	case Voltage:
		return d.readVoltage(a, channel)
	case Current:
		return d.readCurrent(a)
	default:
		return d.readPower(a)
	}
}

// Write sets the Max or Min threshold of a channel. Values beyond full-scale
// are clamped to the highest code.
func (d *Dev) Write(s Sensor, a Attr, channel int, val int64) error {
	if d.Mode(s, a, channel) != 0644 {
		return ErrUnsupported
	}
	var reg, code uint8
	switch s {
	case Voltage:
		r := d.voltageRegs(channel)
		reg = r.min
		if a == Max {
			reg = r.max
		}
		code = ValueToByte(val, r.fs)
	case Current:
		reg = regVSenseMin
		if a == Max {
			reg = regVSenseMax
		}
		code = CurrentToByte(val, d.rsense)
	default:
		reg = regPowerMin
		if a == Max {
			reg = regPowerMax
		}
		code = PowerToByte(val, d.vfs, d.rsense)
	}
	return d.regs.write8(reg, code)
}

// Energy returns the accumulated energy in µJ.
func (d *Dev) Energy() (uint64, error) {
	return d.readEnergy()
}

// Sense reads the instantaneous voltages, current, power and energy.
func (d *Dev) Sense(t *Telemetry) error {
	src, err := d.regs.read16(regVSource)
	if err != nil {
		return err
	}
	vgpio, err := d.regs.read16(regVGPIO)
	if err != nil {
		return err
	}
	sense, err := d.regs.read16(regVSense)
	if err != nil {
		return err
	}
	power, err := d.regs.read16(regPower)
	if err != nil {
		return err
	}
	energy, err := d.readEnergy()
	if err != nil {
		return err
	}
	t.Source = physic.ElectricPotential(WordToValue(src, d.vfs)) * physic.MilliVolt
	t.GPIO = physic.ElectricPotential(WordToValue(vgpio, VGPIOFullScale)) * physic.MilliVolt
	t.Current = physic.ElectricCurrent(CurrentWord(sense, d.rsense)) * physic.MilliAmpere
	t.Power = physic.Power(PowerWord(power, d.vfs, d.rsense)) * physic.MicroWatt
	t.Energy = energy
	return nil
}

// Halt unregisters the GPIO lines. The controller keeps running.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unregisterLines()
}

func (d *Dev) String() string {
	return fmt.Sprintf("ltc4282: %s", d.d.String())
}

// voltageRegs holds the registers backing a voltage channel. Channel 0 is
// VSOURCE (or VDD), every other channel reads the GPIO ADC input.
type voltageRegs struct {
	input, lowest, highest uint8
	max, min               uint8
	fs                     uint32
	high, low              alarm
}

func (d *Dev) voltageRegs(channel int) voltageRegs {
	if channel == chanVSource {
		return voltageRegs{
			input:   regVSource,
			lowest:  regVSourceLowest,
			highest: regVSourceHighest,
			max:     regVSourceMax,
			min:     regVSourceMin,
			fs:      d.vfs,
			high:    alarmVSourceHigh,
			low:     alarmVSourceLow,
		}
	}
	return voltageRegs{
		input:   regVGPIO,
		lowest:  regVGPIOLowest,
		highest: regVGPIOHighest,
		max:     regVGPIOMax,
		min:     regVGPIOMin,
		fs:      VGPIOFullScale,
		high:    alarmVGPIOHigh,
		low:     alarmVGPIOLow,
	}
}

func (d *Dev) readVoltage(a Attr, channel int) (int64, error) {
	r := d.voltageRegs(channel)
	switch a {
	case Input:
		return d.readWord(r.input, func(c uint16) uint64 { return WordToValue(c, r.fs) })
	case Lowest:
		return d.readWord(r.lowest, func(c uint16) uint64 { return WordToValue(c, r.fs) })
	case Highest:
		return d.readWord(r.highest, func(c uint16) uint64 { return WordToValue(c, r.fs) })
	case Max:
		return d.readByte(r.max, func(c uint8) uint64 { return ByteToValue(c, r.fs) })
	case Min:
		return d.readByte(r.min, func(c uint8) uint64 { return ByteToValue(c, r.fs) })
	case MaxAlarm:
		return d.readFlag(r.high)
	case MinAlarm:
		return d.readFlag(r.low)
	case CritAlarm:
		return d.readFlag(faultOV)
	case LCritAlarm:
		if channel == chanVFET {
			return d.readFlag(faultFETBad)
		}
		return d.readFlag(faultUV)
	}
	return 0, ErrUnsupported
}

func (d *Dev) readCurrent(a Attr) (int64, error) {
	word := func(c uint16) uint64 { return CurrentWord(c, d.rsense) }
	limit := func(c uint8) uint64 { return CurrentByte(c, d.rsense) }
	switch a {
	case Input:
		return d.readWord(regVSense, word)
	case Lowest:
		return d.readWord(regVSenseLowest, word)
	case Highest:
		return d.readWord(regVSenseHighest, word)
	case Max:
		return d.readByte(regVSenseMax, limit)
	case Min:
		return d.readByte(regVSenseMin, limit)
	case MaxAlarm:
		return d.readFlag(alarmVSenseHigh)
	case MinAlarm:
		return d.readFlag(alarmVSenseLow)
	case CritAlarm:
		return d.readFlag(faultOC)
	}
	return 0, ErrUnsupported
}

func (d *Dev) readPower(a Attr) (int64, error) {
	word := func(c uint16) uint64 { return PowerWord(c, d.vfs, d.rsense) }
	limit := func(c uint8) uint64 { return PowerByte(c, d.vfs, d.rsense) }
	switch a {
	case Input:
		return d.readWord(regPower, word)
	case Lowest:
		return d.readWord(regPowerLowest, word)
	case Highest:
		return d.readWord(regPowerHighest, word)
	case Max:
		return d.readByte(regPowerMax, limit)
	case Min:
		return d.readByte(regPowerMin, limit)
	case MaxAlarm:
		return d.readFlag(alarmPowerHigh)
	case MinAlarm:
		return d.readFlag(alarmPowerLow)
	case Average:
		v, err := d.readPowerAverage()
		return toInt64(v), err
	}
	return 0, ErrUnsupported
}

func (d *Dev) readWord(reg uint8, conv func(uint16) uint64) (int64, error) {
	c, err := d.regs.read16(reg)
	if err != nil {
		return 0, err
	}
	return toInt64(conv(c)), nil
}

func (d *Dev) readByte(reg uint8, conv func(uint8) uint64) (int64, error) {
	c, err := d.regs.read8(reg)
	if err != nil {
		return 0, err
	}
	return toInt64(conv(c)), nil
}

func (d *Dev) readFlag(a alarm) (int64, error) {
	set, err := d.readAlarm(a)
	if err != nil || !set {
		return 0, err
	}
	return 1, nil
}

// readEnergy reads the 48 bit energy meter.
func (d *Dev) readEnergy() (uint64, error) {
	b := make([]byte, 8)
	if err := d.regs.readBlock(regEnergy, b[:6]); err != nil {
		return 0, err
	}
	return Energy(binary.LittleEndian.Uint64(b), d.vfs, d.rsense), nil
}

// readPowerAverage reads the energy and the time counter as a pair.
func (d *Dev) readPowerAverage() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	energy, err := d.readEnergy()
	if err != nil {
		return 0, err
	}
	b := make([]byte, 4)
	if err := d.regs.readBlock(regTimeCounter, b); err != nil {
		return 0, err
	}
	return PowerAverage(energy, binary.LittleEndian.Uint32(b)), nil
}

func toInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

var _ conn.Resource = &Dev{}
