// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ltc4282

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"

	"github.com/GermanBionicSystems/hotswap/common"
)

// PinID identifies one of the multi-function pins.
type PinID uint8

const (
	GPIO1 PinID = iota
	GPIO2
	GPIO3
	Alert
)

func (p PinID) String() string {
	if int(p) < len(pinTable) {
		return pinTable[p].name
	}
	return fmt.Sprintf("PinID(%d)", uint8(p))
}

// Pin functions, as selected by the adi,gpioN-mode properties. The value is
// an index into the functions supported by a given pin, so the same number
// selects a different function on each pin.
const (
	// PinGPIO makes the pin available as a gpio.PinIO.
	PinGPIO uint32 = 0

	// GPIO1 only.
	PinPowerBad  uint32 = 1
	PinPowerGood uint32 = 2

	// GPIO2 and GPIO3. Only one of them can feed the ADC.
	PinADC uint32 = 1
	// GPIO2 only.
	PinFETStress uint32 = 2
)

type pinFunction uint8

const (
	funcGPIO pinFunction = iota
	funcPowerBad
	funcPowerGood
	funcADC
	funcFETStress
)

// GPIO_1_CONFIG field values.
const (
	gpio1PowerGood uint8 = 0
	gpio1PowerBad  uint8 = 1
	gpio1Output    uint8 = 2
	gpio1Input     uint8 = 3
)

type pinDesc struct {
	name    string
	outReg  uint8
	outMask uint8
	// Level as reported in STATUS_MSB.
	inMask uint8
	// GPIO2, GPIO3 and ALERT pull the line low when the output bit is set.
	activeHigh bool
	funcs      []pinFunction
}

var pinTable = [...]pinDesc{
	GPIO1: {
		name:       "GPIO1",
		outReg:     regGPIOConfig,
		outMask:    gpio1Out,
		inMask:     1 << 5,
		activeHigh: true,
		funcs:      []pinFunction{funcGPIO, funcPowerBad, funcPowerGood},
	},
	GPIO2: {
		name:    "GPIO2",
		outReg:  regGPIOConfig,
		outMask: gpio2Out,
		inMask:  1 << 6,
		funcs:   []pinFunction{funcGPIO, funcADC, funcFETStress},
	},
	GPIO3: {
		name:    "GPIO3",
		outReg:  regGPIOConfig,
		outMask: gpio3Out,
		inMask:  1 << 7,
		funcs:   []pinFunction{funcGPIO, funcADC},
	},
	Alert: {
		name:    "ALERT",
		outReg:  regAlertCtrl,
		outMask: alertOut,
		inMask:  1 << 4,
	},
}

// pinMux tracks the pin assignments made during bring-up.
type pinMux struct {
	adcIn bool
	// GPIO line slots, in the order they were assigned.
	lines []PinID
}

// assign programs function fn on pin p. prop names the property fn came from.
func (d *Dev) assign(m *pinMux, p PinID, fn uint32, prop string) error {
	desc := &pinTable[p]
	if fn >= uint32(len(desc.funcs)) {
		return &ConfigError{Prop: prop, Value: fn, Reason: fmt.Sprintf("%s supports %d functions", desc.name, len(desc.funcs))}
	}
	switch desc.funcs[fn] {
	case funcGPIO:
		m.lines = append(m.lines, p)
		if p == GPIO1 {
			// Default to input.
			return d.regs.updateBits(regGPIOConfig, gpio1Config, common.FieldPrep(gpio1Config, gpio1Input))
		}
		return nil
	case funcPowerBad:
		return d.regs.updateBits(regGPIOConfig, gpio1Config, common.FieldPrep(gpio1Config, gpio1PowerBad))
	case funcPowerGood:
		return d.regs.updateBits(regGPIOConfig, gpio1Config, common.FieldPrep(gpio1Config, gpio1PowerGood))
	case funcFETStress:
		return d.regs.setBits(regGPIOConfig, gpio2FETStress)
	case funcADC:
		if m.adcIn {
			return &ConfigError{Prop: prop, Value: fn, Reason: "only one gpio can be given to the ADC input"}
		}
		m.adcIn = true
		// 1 selects GPIO2, 0 selects GPIO3.
		var v uint8
		if p == GPIO2 {
			v = ilimGPIOMode
		}
		return d.regs.updateBits(regILimAdjust, ilimGPIOMode, v)
	}
	return nil
}

// setupPins applies the pin functions from o and returns the GPIO lines.
func (d *Dev) setupPins(o *Opts) ([]PinID, error) {
	m := pinMux{}
	modes := [...]*uint32{o.GPIO1Mode, o.GPIO2Mode, o.GPIO3Mode}
	for i, fn := range modes {
		if fn == nil {
			continue
		}
		p := PinID(i)
		if err := d.assign(&m, p, *fn, gpioModeProps[i]); err != nil {
			return nil, err
		}
		d.log.Debug("pin function", zap.Stringer("pin", p), zap.Uint32("func", *fn))
	}
	if o.AlertAsGPIO {
		m.lines = append(m.lines, Alert)
	}
	return m.lines, nil
}

var errPWM = errors.New("ltc4282: PWM is not supported")

// gpioLine exposes one of the multi-function pins as a gpio.PinIO.
type gpioLine struct {
	dev  *Dev
	id   PinID
	slot int
	name string
}

func (l *gpioLine) String() string {
	return l.name
}

// Halt releases an open drain line. GPIO1 keeps its direction.
func (l *gpioLine) Halt() error {
	if l.id == GPIO1 {
		return nil
	}
	return l.Out(gpio.High)
}

func (l *gpioLine) Name() string {
	return l.name
}

func (l *gpioLine) Number() int {
	return l.slot
}

func (l *gpioLine) Function() string {
	return string(l.Func())
}

// Func reports OUT for GPIO1 in output mode and for an open drain line that
// is pulling low.
func (l *gpioLine) Func() pin.Func {
	if l.id != GPIO1 {
		lvl, err := l.latched()
		if err != nil {
			return pin.FuncNone
		}
		if lvl == gpio.Low {
			return gpio.OUT
		}
		return gpio.IN
	}
	v, err := l.dev.regs.read8(regGPIOConfig)
	if err != nil {
		return pin.FuncNone
	}
	if common.FieldGet(gpio1Config, v) == gpio1Output {
		return gpio.OUT
	}
	return gpio.IN
}

func (l *gpioLine) SupportedFuncs() []pin.Func {
	return []pin.Func{gpio.IN, gpio.OUT}
}

// SetFunc switches to output at the level already held by the output
// register, so a released open drain line stays released.
func (l *gpioLine) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return l.In(gpio.PullNoChange, gpio.NoEdge)
	case gpio.OUT:
		lvl, err := l.latched()
		if err != nil {
			return err
		}
		return l.Out(lvl)
	default:
		return errors.New("ltc4282: function not supported: " + string(f))
	}
}

// latched returns the level the output register drives.
func (l *gpioLine) latched() (gpio.Level, error) {
	desc := &pinTable[l.id]
	v, err := l.dev.regs.read8(desc.outReg)
	if err != nil {
		return gpio.Low, err
	}
	set := v&desc.outMask != 0
	if !desc.activeHigh {
		set = !set
	}
	return gpio.Level(set), nil
}

// In selects input direction. Only GPIO1 has a direction. The other pins are
// open drain and always readable, so this is a no-op on them.
func (l *gpioLine) In(pull gpio.Pull, edge gpio.Edge) error {
	switch pull {
	case gpio.PullDown:
		return errors.New("ltc4282: PullDown is not supported")
	case gpio.PullUp:
		return errors.New("ltc4282: PullUp is not supported")
	case gpio.Float, gpio.PullNoChange:
	}
	if edge != gpio.NoEdge {
		return errors.New("ltc4282: edge detection not supported")
	}
	if l.id != GPIO1 {
		return nil
	}
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	return l.dev.regs.updateBits(regGPIOConfig, gpio1Config, common.FieldPrep(gpio1Config, gpio1Input))
}

func (l *gpioLine) Read() gpio.Level {
	v, err := l.dev.regs.read8(regStatusMSB)
	if err != nil {
		return gpio.Low
	}
	return v&pinTable[l.id].inMask != 0
}

func (l *gpioLine) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (l *gpioLine) Pull() gpio.Pull {
	return gpio.Float
}

func (l *gpioLine) DefaultPull() gpio.Pull {
	return gpio.Float
}

func (l *gpioLine) Out(level gpio.Level) error {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	desc := &pinTable[l.id]
	if l.id == GPIO1 {
		if err := l.dev.regs.updateBits(regGPIOConfig, gpio1Config, common.FieldPrep(gpio1Config, gpio1Output)); err != nil {
			return err
		}
	}
	set := bool(level)
	if !desc.activeHigh {
		set = !set
	}
	var v uint8
	if set {
		v = desc.outMask
	}
	return l.dev.regs.updateBits(desc.outReg, desc.outMask, v)
}

func (l *gpioLine) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errPWM
}

// registerLines creates the gpio.PinIO for every line slot and registers
// them with gpioreg.
func (d *Dev) registerLines(ids []PinID) {
	d.Pins = make([]gpio.PinIO, len(ids))
	for slot, id := range ids {
		d.Pins[slot] = &gpioLine{
			dev:  d,
			id:   id,
			slot: slot,
			name: fmt.Sprintf("LTC4282_%x_%s", d.d.Addr, pinTable[id].name),
		}
		// Ignore registration failure.
		_ = gpioreg.Register(d.Pins[slot])
	}
}

func (d *Dev) unregisterLines() error {
	var err error
	for _, p := range d.Pins {
		if e := gpioreg.Unregister(p.Name()); e != nil && err == nil {
			err = e
		}
	}
	d.Pins = nil
	return err
}

var _ gpio.PinIO = &gpioLine{}
var _ pin.PinFunc = &gpioLine{}
