// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ltc4282

// alarm is a single flag in either the ADC alert log or the status register.
type alarm struct {
	reg  uint8
	mask uint8
}

// Threshold alarms latched in the ADC alert log.
var (
	alarmVGPIOHigh   = alarm{regADCAlertLog, 1 << 0}
	alarmVGPIOLow    = alarm{regADCAlertLog, 1 << 1}
	alarmVSourceHigh = alarm{regADCAlertLog, 1 << 2}
	alarmVSourceLow  = alarm{regADCAlertLog, 1 << 3}
	alarmVSenseHigh  = alarm{regADCAlertLog, 1 << 4}
	alarmVSenseLow   = alarm{regADCAlertLog, 1 << 5}
	alarmPowerHigh   = alarm{regADCAlertLog, 1 << 6}
	alarmPowerLow    = alarm{regADCAlertLog, 1 << 7}
)

// Faults reported live in the status register.
var (
	faultOV     = alarm{regStatusLSB, uint8(StatusOV)}
	faultUV     = alarm{regStatusLSB, uint8(StatusUV)}
	faultOC     = alarm{regStatusLSB, uint8(StatusOC)}
	faultFETBad = alarm{regStatusLSB, uint8(StatusFETBad)}
)

func (d *Dev) readAlarm(a alarm) (bool, error) {
	v, err := d.regs.read8(a.reg)
	if err != nil {
		return false, err
	}
	return v&a.mask != 0, nil
}

// AlertBits is the content of the ADC alert log. Bits stay set until cleared
// by ClearAlerts.
type AlertBits uint8

const (
	AlertVGPIOHigh AlertBits = 1 << iota
	AlertVGPIOLow
	AlertVSourceHigh
	AlertVSourceLow
	AlertVSenseHigh
	AlertVSenseLow
	AlertPowerHigh
	AlertPowerLow
)

// Has returns true if all the bits in b are set.
func (a AlertBits) Has(b AlertBits) bool {
	return a&b == b
}

// StatusBits is the 16 bit status word. The low byte is STATUS_LSB and the
// high byte STATUS_MSB.
type StatusBits uint16

const (
	StatusOV     StatusBits = 1 << 0
	StatusUV     StatusBits = 1 << 1
	StatusOC     StatusBits = 1 << 2
	StatusFETBad StatusBits = 1 << 6
	// Level of the ALERT and GPIO pins.
	StatusAlert StatusBits = 1 << 12
	StatusGPIO1 StatusBits = 1 << 13
	StatusGPIO2 StatusBits = 1 << 14
	StatusGPIO3 StatusBits = 1 << 15
)

// Has returns true if all the bits in b are set.
func (s StatusBits) Has(b StatusBits) bool {
	return s&b == b
}

// AlertLog returns the latched threshold alarms.
func (d *Dev) AlertLog() (AlertBits, error) {
	v, err := d.regs.read8(regADCAlertLog)
	return AlertBits(v), err
}

// ClearAlerts clears the ADC alert log.
func (d *Dev) ClearAlerts() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs.write8(regADCAlertLog, 0)
}

// Status returns the live fault and pin status.
func (d *Dev) Status() (StatusBits, error) {
	b := make([]byte, 2)
	if err := d.regs.readBlock(regStatusLSB, b); err != nil {
		return 0, err
	}
	return StatusBits(b[0]) | StatusBits(b[1])<<8, nil
}
