// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ltc4282

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/hotswap/common"
)

const (
	// The UV and OV comparators must be stable for 50ms to qualify for
	// turn-on.
	pollInterval = 10 * time.Millisecond
	pollTimeout  = 50 * time.Millisecond
	powerOnTries = 5
	// Worst case recovery after an ADC soft reset.
	resetDelay = 3200 * time.Millisecond

	clkInMin = 250 * physic.KiloHertz
	clkInMax = 15500 * physic.KiloHertz
)

// start runs the bring-up sequence. Nothing written before a failure is
// rolled back.
func (d *Dev) start(o *Opts) error {
	if err := d.powerOn(o.Supply); err != nil {
		return err
	}
	if err := d.regs.setBits(regADCCtrl, adcReset); err != nil {
		return fmt.Errorf("ltc4282: soft reset: %w", err)
	}
	d.sleep(resetDelay)
	d.log.Debug("soft reset done")
	if err := d.setupClock(o); err != nil {
		return err
	}
	return d.setup(o)
}

func (d *Dev) powerOn(s Supply) error {
	if s != nil {
		if err := s.Enable(); err != nil {
			return fmt.Errorf("ltc4282: vdd enable: %w", err)
		}
	}
	for try := range powerOnTries {
		asserted, err := d.pollStatus(uint8(StatusOV | StatusUV))
		if err != nil {
			return err
		}
		if !asserted {
			d.log.Debug("vdd stable", zap.Int("try", try+1))
			return nil
		}
	}
	return ErrTimeout
}

// pollStatus reads STATUS_LSB every pollInterval until one of the bits in mask
// is set or pollTimeout elapses. It returns false on timeout, meaning the bits
// stayed clear.
func (d *Dev) pollStatus(mask uint8) (bool, error) {
	for waited := time.Duration(0); ; waited += pollInterval {
		v, err := d.regs.read8(regStatusLSB)
		if err != nil {
			return false, err
		}
		if v&mask != 0 {
			return true, nil
		}
		if waited >= pollTimeout {
			return false, nil
		}
		d.sleep(pollInterval)
	}
}

func (d *Dev) setupClock(o *Opts) error {
	if o.ClockIn == 0 {
		return nil
	}
	if o.ClockIn < clkInMin || o.ClockIn > clkInMax {
		return &ConfigError{Prop: propClockFreq, Value: o.ClockIn, Reason: fmt.Sprintf("outside [%s %s]", clkInMin, clkInMax)}
	}
	// The clock is divided by twice the register value to bring it down to
	// 250kHz.
	div := uint8(o.ClockIn / (2 * clkInMin))
	if err := d.regs.updateBits(regClkDiv, clkDiv, common.FieldPrep(clkDiv, div)); err != nil {
		return err
	}
	d.log.Debug("clock divider", zap.Stringer("clkin", o.ClockIn), zap.Uint8("div", div))
	if o.ClkoutMode == nil {
		return nil
	}
	if *o.ClkoutMode > maxClkoutMode {
		return &ConfigError{Prop: propClkoutMode, Value: *o.ClkoutMode}
	}
	return d.regs.updateBits(regClkDiv, clkoutSel, common.FieldPrep(clkoutSel, uint8(*o.ClkoutMode+1)))
}

// setup applies the static configuration. The order matters: the vin mode
// decides the full-scale used by every later conversion.
func (d *Dev) setup(o *Opts) error {
	// Resolution is 100nΩ, drop the last two digits.
	d.rsense = o.RsenseNanoOhms / 100
	if d.rsense == 0 {
		return &ConfigError{Prop: propRsense, Value: o.RsenseNanoOhms}
	}

	d.vinMode = Vin12V
	if o.VinModeMicrovolt != nil {
		found := false
		for m, vm := range vinModes {
			if vm.microvolt == *o.VinModeMicrovolt {
				d.vinMode = VinMode(m)
				found = true
				break
			}
		}
		if !found {
			return &ConfigError{Prop: propVinMode, Value: *o.VinModeMicrovolt}
		}
		mode := uint8(d.vinMode)
		if err := d.regs.updateBits(regCtrlMSB, ctrlVinMode, common.FieldPrep(ctrlVinMode, mode)); err != nil {
			return err
		}
		// Foldback always follows the input voltage.
		if err := d.regs.updateBits(regILimAdjust, ilimFoldback, common.FieldPrep(ilimFoldback, mode)); err != nil {
			return err
		}
	}
	d.vfs = d.vinMode.FullScale()

	if o.CurrentLimitMicrovolt != nil {
		code := -1
		for c, uv := range currentLimits {
			if uv == *o.CurrentLimitMicrovolt {
				code = c
				break
			}
		}
		if code < 0 {
			return &ConfigError{Prop: propCurrentLimit, Value: *o.CurrentLimitMicrovolt}
		}
		if err := d.regs.updateBits(regILimAdjust, ilimAdjust, common.FieldPrep(ilimAdjust, uint8(code))); err != nil {
			return err
		}
	}

	d.vddMonitor = o.VinMonitor
	if d.vddMonitor {
		if err := d.regs.clearBits(regILimAdjust, ilimVDDMonitor); err != nil {
			return err
		}
	}

	dividers := []struct {
		prop string
		v    *uint32
		mask uint8
	}{
		{propOVDividers, o.OvervoltageDividers, ctrlOVMode},
		{propUVDividers, o.UndervoltageDividers, ctrlUVMode},
	}
	for _, div := range dividers {
		if div.v == nil {
			continue
		}
		if *div.v > maxDivider {
			return &ConfigError{Prop: div.prop, Value: *div.v}
		}
		if err := d.regs.updateBits(regCtrlMSB, div.mask, common.FieldPrep(div.mask, uint8(*div.v))); err != nil {
			return err
		}
	}

	if o.OnDelay {
		if err := d.regs.setBits(regCtrlLSB, ctrlOnDelay); err != nil {
			return err
		}
	}
	if o.OnActiveLow {
		if err := d.regs.clearBits(regCtrlLSB, ctrlOnActiveLow); err != nil {
			return err
		}
	}
	if o.OvercurrentRetry {
		if err := d.regs.clearBits(regCtrlLSB, ctrlOCRetry); err != nil {
			return err
		}
	}

	if o.FETBadTimeoutMs != nil {
		if *o.FETBadTimeoutMs > maxFETBadTimeout {
			return &ConfigError{Prop: propFETBad, Value: *o.FETBadTimeoutMs}
		}
		if err := d.regs.write8(regFETBadTimeout, uint8(*o.FETBadTimeoutMs)); err != nil {
			return err
		}
	}
	d.log.Debug("configured",
		zap.Uint32("rsense", d.rsense),
		zap.Stringer("vin", d.vinMode),
		zap.Bool("vddMonitor", d.vddMonitor))

	lines, err := d.setupPins(o)
	if err != nil {
		return err
	}
	d.registerLines(lines)
	return nil
}
