// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ltc4282

import (
	"encoding/binary"

	"periph.io/x/conn/v3/i2c"
)

// Register addresses.
const (
	regCtrlLSB        uint8 = 0x00
	regCtrlMSB        uint8 = 0x01
	regADCAlertLog    uint8 = 0x05
	regFETBadTimeout  uint8 = 0x06
	regGPIOConfig     uint8 = 0x07
	regVGPIOMin       uint8 = 0x08
	regVGPIOMax       uint8 = 0x09
	regVSourceMin     uint8 = 0x0a
	regVSourceMax     uint8 = 0x0b
	regVSenseMin      uint8 = 0x0c
	regVSenseMax      uint8 = 0x0d
	regPowerMin       uint8 = 0x0e
	regPowerMax       uint8 = 0x0f
	regClkDiv         uint8 = 0x10
	regILimAdjust     uint8 = 0x11
	regEnergy         uint8 = 0x12
	regTimeCounter    uint8 = 0x18
	regAlertCtrl      uint8 = 0x1c
	regADCCtrl        uint8 = 0x1d
	regStatusLSB      uint8 = 0x1e
	regStatusMSB      uint8 = 0x1f
	regReserved1      uint8 = 0x32
	regReserved2      uint8 = 0x33
	regVGPIO          uint8 = 0x34
	regVGPIOLowest    uint8 = 0x36
	regVGPIOHighest   uint8 = 0x38
	regVSource        uint8 = 0x3a
	regVSourceLowest  uint8 = 0x3c
	regVSourceHighest uint8 = 0x3e
	regVSense         uint8 = 0x40
	regVSenseLowest   uint8 = 0x42
	regVSenseHighest  uint8 = 0x44
	regPower          uint8 = 0x46
	regPowerLowest    uint8 = 0x48
	regPowerHighest   uint8 = 0x4a
	regMax            uint8 = 0x50
)

// Register fields.
const (
	ctrlOCRetry     uint8 = 1 << 2
	ctrlOnActiveLow uint8 = 1 << 5
	ctrlOnDelay     uint8 = 1 << 6

	ctrlVinMode uint8 = 0x03
	ctrlOVMode  uint8 = 0x0c
	ctrlUVMode  uint8 = 0x30

	gpio2FETStress uint8 = 1 << 1
	gpio1Out       uint8 = 1 << 3
	gpio1Config    uint8 = 0x30
	gpio2Out       uint8 = 1 << 6
	gpio3Out       uint8 = 1 << 7

	clkDiv    uint8 = 0x1f
	clkoutSel uint8 = 0x60

	ilimGPIOMode   uint8 = 1 << 1
	ilimVDDMonitor uint8 = 1 << 2
	ilimFoldback   uint8 = 0x18
	ilimAdjust     uint8 = 0xe0

	alertOut uint8 = 1 << 6

	adcReset uint8 = 1 << 7
)

// regmap gives register level access to the device. Multi-byte registers are
// little endian and read with a single auto-incrementing transaction.
type regmap struct {
	d *i2c.Dev
}

func readable(addr uint8) bool {
	return addr != regReserved1 && addr != regReserved2 && addr <= regMax
}

func writable(addr uint8) bool {
	return readable(addr) && addr != regStatusLSB && addr != regStatusMSB
}

func (r *regmap) read8(addr uint8) (uint8, error) {
	if !readable(addr) {
		return 0, &BusError{Op: "read", Reg: addr, Err: ErrAccess}
	}
	rx := make([]byte, 1)
	if err := r.d.Tx([]byte{addr}, rx); err != nil {
		return 0, &BusError{Op: "read", Reg: addr, Err: err}
	}
	return rx[0], nil
}

// readBlock fills b starting at addr.
func (r *regmap) readBlock(addr uint8, b []byte) error {
	for i := range len(b) {
		if !readable(addr + uint8(i)) {
			return &BusError{Op: "read", Reg: addr + uint8(i), Err: ErrAccess}
		}
	}
	if err := r.d.Tx([]byte{addr}, b); err != nil {
		return &BusError{Op: "read", Reg: addr, Err: err}
	}
	return nil
}

func (r *regmap) read16(addr uint8) (uint16, error) {
	b := make([]byte, 2)
	if err := r.readBlock(addr, b); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *regmap) write8(addr, v uint8) error {
	if !writable(addr) {
		return &BusError{Op: "write", Reg: addr, Err: ErrAccess}
	}
	if err := r.d.Tx([]byte{addr, v}, nil); err != nil {
		return &BusError{Op: "write", Reg: addr, Err: err}
	}
	return nil
}

// updateBits replaces the bits in mask with v. The write is skipped when the
// register already holds the value.
func (r *regmap) updateBits(addr, mask, v uint8) error {
	if !writable(addr) {
		return &BusError{Op: "write", Reg: addr, Err: ErrAccess}
	}
	orig, err := r.read8(addr)
	if err != nil {
		return err
	}
	val := (orig &^ mask) | (v & mask)
	if val == orig {
		return nil
	}
	return r.write8(addr, val)
}

func (r *regmap) setBits(addr, mask uint8) error {
	return r.updateBits(addr, mask, mask)
}

func (r *regmap) clearBits(addr, mask uint8) error {
	return r.updateBits(addr, mask, 0)
}
