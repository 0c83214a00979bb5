// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ltc4282

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

const addr uint16 = DefaultAddress

// 0.5mΩ
const testRsense uint32 = 500000

func rd(reg uint8, v ...byte) i2ctest.IO {
	return i2ctest.IO{Addr: addr, W: []byte{reg}, R: v}
}

func wr(reg, v uint8) i2ctest.IO {
	return i2ctest.IO{Addr: addr, W: []byte{reg, v}}
}

// stableOps is a poll where UV and OV never assert.
func stableOps() []i2ctest.IO {
	var ops []i2ctest.IO
	for range 6 {
		ops = append(ops, rd(regStatusLSB, 0x00))
	}
	return ops
}

func resetOps() []i2ctest.IO {
	return []i2ctest.IO{rd(regADCCtrl, 0x00), wr(regADCCtrl, 0x80)}
}

func bringUpOps(setup ...i2ctest.IO) []i2ctest.IO {
	ops := append(stableOps(), resetOps()...)
	return append(ops, setup...)
}

type fakeSleep struct {
	calls []time.Duration
}

func (f *fakeSleep) sleep(d time.Duration) {
	f.calls = append(f.calls, d)
}

func (f *fakeSleep) total() time.Duration {
	var t time.Duration
	for _, d := range f.calls {
		t += d
	}
	return t
}

func newDev(t *testing.T, opts *Opts, ops []i2ctest.IO) (*Dev, *i2ctest.Playback) {
	t.Helper()
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	dev, err := newI2C(pb, addr, opts, (&fakeSleep{}).sleep)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = dev.Halt() })
	return dev, pb
}

func u32(v uint32) *uint32 {
	return &v
}

type fakeSupply struct {
	err     error
	enabled int
}

func (s *fakeSupply) Enable() error {
	s.enabled++
	return s.err
}

func TestBringUpMinimal(t *testing.T) {
	pb := &i2ctest.Playback{Ops: bringUpOps(), DontPanic: true}
	fs := &fakeSleep{}
	supply := &fakeSupply{}
	dev, err := newI2C(pb, addr, &Opts{RsenseNanoOhms: testRsense, Supply: supply}, fs.sleep)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Halt()
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
	if supply.enabled != 1 {
		t.Errorf("supply enabled %d times", supply.enabled)
	}
	if dev.rsense != 5000 {
		t.Errorf("rsense=%d expected 5000", dev.rsense)
	}
	if dev.VinMode() != Vin12V || dev.vfs != 16640 {
		t.Errorf("vin mode %s full-scale %d", dev.VinMode(), dev.vfs)
	}
	if len(dev.Pins) != 0 {
		t.Errorf("unexpected pins %v", dev.Pins)
	}
	expected := 5*pollInterval + resetDelay
	if fs.total() != expected {
		t.Errorf("slept %s expected %s", fs.total(), expected)
	}
	if last := fs.calls[len(fs.calls)-1]; last != 3200*time.Millisecond {
		t.Errorf("reset settle %s", last)
	}
}

func TestBringUpNilOpts(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	if _, err := NewI2C(pb, addr, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPowerOnRetry(t *testing.T) {
	tests := []struct {
		name     string
		unstable int
		err      error
	}{
		{"first try", 0, nil},
		{"fifth try", 4, nil},
		{"never stable", 5, ErrTimeout},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var ops []i2ctest.IO
			for i := range test.unstable {
				// UV and OV alternate while vdd ramps.
				ops = append(ops, rd(regStatusLSB, byte(1+i%2)))
			}
			if test.err == nil {
				ops = append(ops, stableOps()...)
				ops = append(ops, resetOps()...)
			}
			pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
			dev, err := newI2C(pb, addr, &Opts{RsenseNanoOhms: testRsense}, (&fakeSleep{}).sleep)
			if !errors.Is(err, test.err) {
				t.Fatalf("expected %v, got %v", test.err, err)
			}
			if err == nil {
				_ = dev.Halt()
			}
			if err := pb.Close(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestPowerOnBusError(t *testing.T) {
	// One unstable attempt, then the bus fails on the next read.
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{rd(regStatusLSB, 0x01)}, DontPanic: true}
	_, err := newI2C(pb, addr, &Opts{RsenseNanoOhms: testRsense}, (&fakeSleep{}).sleep)
	var be *BusError
	if !errors.As(err, &be) {
		t.Fatalf("expected BusError, got %v", err)
	}
	if be.Reg != regStatusLSB || be.Op != "read" {
		t.Errorf("unexpected bus error %#v", be)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("bus error reported as timeout")
	}
	if pb.Count != 1 {
		t.Errorf("bus error retried, %d transactions", pb.Count)
	}
}

func TestPowerOnSupplyFailure(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	supply := &fakeSupply{err: errors.New("regulator off")}
	_, err := newI2C(pb, addr, &Opts{RsenseNanoOhms: testRsense, Supply: supply}, (&fakeSleep{}).sleep)
	if !errors.Is(err, supply.err) {
		t.Fatalf("expected supply error, got %v", err)
	}
	if pb.Count != 0 {
		t.Errorf("bus accessed after supply failure")
	}
}

func TestPollStatus(t *testing.T) {
	// Bits assert on the third read.
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		rd(regStatusLSB, 0x00),
		rd(regStatusLSB, 0x00),
		rd(regStatusLSB, 0x02),
	}, DontPanic: true}
	fs := &fakeSleep{}
	dev := &Dev{sleep: fs.sleep}
	dev.regs.d = &i2c.Dev{Bus: pb, Addr: addr}
	asserted, err := dev.pollStatus(0x03)
	if err != nil || !asserted {
		t.Fatalf("pollStatus()=%t, %v", asserted, err)
	}
	if len(fs.calls) != 2 || fs.calls[0] != 10*time.Millisecond {
		t.Errorf("unexpected sleeps %v", fs.calls)
	}
}

func TestClockSetup(t *testing.T) {
	tests := []struct {
		name   string
		clk    physic.Frequency
		clkout *uint32
		ops    []i2ctest.IO
	}{
		{
			name: "4MHz",
			clk:  4 * physic.MegaHertz,
			ops:  []i2ctest.IO{rd(regClkDiv, 0x00), wr(regClkDiv, 0x08)},
		},
		{
			name: "minimum",
			clk:  250 * physic.KiloHertz,
			ops:  []i2ctest.IO{rd(regClkDiv, 0x00)},
		},
		{
			name:   "maximum with tick output",
			clk:    15500 * physic.KiloHertz,
			clkout: u32(1),
			ops: []i2ctest.IO{
				rd(regClkDiv, 0x00), wr(regClkDiv, 0x1f),
				rd(regClkDiv, 0x1f), wr(regClkDiv, 0x5f),
			},
		},
		{
			name:   "internal clock output",
			clk:    1 * physic.MegaHertz,
			clkout: u32(0),
			ops: []i2ctest.IO{
				rd(regClkDiv, 0x60), wr(regClkDiv, 0x62),
				rd(regClkDiv, 0x62), wr(regClkDiv, 0x22),
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			opts := &Opts{RsenseNanoOhms: testRsense, ClockIn: test.clk, ClkoutMode: test.clkout}
			_, pb := newDev(t, opts, bringUpOps(test.ops...))
			if err := pb.Close(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestClockInvalid(t *testing.T) {
	tests := []struct {
		name   string
		clk    physic.Frequency
		clkout *uint32
		prop   string
		ops    []i2ctest.IO
	}{
		{name: "too slow", clk: 100 * physic.KiloHertz, prop: "clock-frequency"},
		{name: "too fast", clk: 16 * physic.MegaHertz, prop: "clock-frequency"},
		{
			name:   "clkout",
			clk:    1 * physic.MegaHertz,
			clkout: u32(2),
			prop:   "adi,clkout-mode",
			ops:    []i2ctest.IO{rd(regClkDiv, 0x02)},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pb := &i2ctest.Playback{Ops: bringUpOps(test.ops...), DontPanic: true}
			opts := &Opts{RsenseNanoOhms: testRsense, ClockIn: test.clk, ClkoutMode: test.clkout}
			_, err := newI2C(pb, addr, opts, (&fakeSleep{}).sleep)
			var ce *ConfigError
			if !errors.As(err, &ce) || !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if ce.Prop != test.prop {
				t.Errorf("error for %q expected %q", ce.Prop, test.prop)
			}
			if err := pb.Close(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestSetupFull(t *testing.T) {
	opts := &Opts{
		RsenseNanoOhms:        testRsense,
		VinModeMicrovolt:      u32(24000000),
		CurrentLimitMicrovolt: u32(25000),
		VinMonitor:            true,
		OvervoltageDividers:   u32(2),
		UndervoltageDividers:  u32(1),
		OnDelay:               true,
		OnActiveLow:           true,
		OvercurrentRetry:      true,
		FETBadTimeoutMs:       u32(100),
	}
	dev, pb := newDev(t, opts, bringUpOps(
		// vin mode, then foldback with the same value.
		rd(regCtrlMSB, 0x02), wr(regCtrlMSB, 0x03),
		rd(regILimAdjust, 0x14), wr(regILimAdjust, 0x1c),
		// current limit code 4.
		rd(regILimAdjust, 0x1c), wr(regILimAdjust, 0x9c),
		// vdd monitor.
		rd(regILimAdjust, 0x9c), wr(regILimAdjust, 0x98),
		// dividers.
		rd(regCtrlMSB, 0x03), wr(regCtrlMSB, 0x0b),
		rd(regCtrlMSB, 0x0b), wr(regCtrlMSB, 0x1b),
		// on delay, active low, overcurrent retry.
		rd(regCtrlLSB, 0x24), wr(regCtrlLSB, 0x64),
		rd(regCtrlLSB, 0x64), wr(regCtrlLSB, 0x44),
		rd(regCtrlLSB, 0x44), wr(regCtrlLSB, 0x40),
		wr(regFETBadTimeout, 100),
	))
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
	if dev.VinMode() != Vin24V || dev.vfs != 33280 {
		t.Errorf("vin mode %s full-scale %d", dev.VinMode(), dev.vfs)
	}
	if n := dev.Channels(Voltage); n != 3 {
		t.Errorf("%d voltage channels with vdd monitor", n)
	}
	if l, _ := dev.Label(Voltage, 0); l != "VDD" {
		t.Errorf("channel 0 label %q", l)
	}
}

func TestSetupUnchanged(t *testing.T) {
	// The device is already in 12V mode with matching foldback.
	opts := &Opts{RsenseNanoOhms: testRsense, VinModeMicrovolt: u32(12000000)}
	_, pb := newDev(t, opts, bringUpOps(
		rd(regCtrlMSB, 0x02),
		rd(regILimAdjust, 0x10),
	))
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestSetupBusError(t *testing.T) {
	opts := &Opts{
		RsenseNanoOhms:        testRsense,
		VinModeMicrovolt:      u32(24000000),
		CurrentLimitMicrovolt: u32(25000),
		OvervoltageDividers:   u32(2),
		FETBadTimeoutMs:       u32(100),
		GPIO2Mode:             u32(PinGPIO),
	}
	// The bus fails right after the vin mode is written.
	pb := &i2ctest.Playback{
		Ops:       bringUpOps(rd(regCtrlMSB, 0x02), wr(regCtrlMSB, 0x03)),
		DontPanic: true,
	}
	dev, err := newI2C(pb, addr, opts, (&fakeSleep{}).sleep)
	if dev != nil {
		t.Error("expected no device")
	}
	var be *BusError
	if !errors.As(err, &be) || be.Op != "read" || be.Reg != regILimAdjust {
		t.Fatalf("unexpected error %v", err)
	}
	if errors.Is(err, ErrAccess) {
		t.Error("bus failure reported as ErrAccess")
	}
	// Bring-up stops at the failed foldback read.
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
	if len(pb.Ops) != pb.Count {
		t.Errorf("%d of %d ops replayed", pb.Count, len(pb.Ops))
	}
}

func TestSetupInvalid(t *testing.T) {
	tests := []struct {
		prop string
		opts Opts
	}{
		{"adi,rsense-nano-ohms", Opts{}},
		{"adi,rsense-nano-ohms", Opts{RsenseNanoOhms: 99}},
		{"vin-mode-microvolt", Opts{RsenseNanoOhms: testRsense, VinModeMicrovolt: u32(7000000)}},
		{"adi,current-limit-microvolt", Opts{RsenseNanoOhms: testRsense, CurrentLimitMicrovolt: u32(20000)}},
		{"adi,overvoltage-dividers", Opts{RsenseNanoOhms: testRsense, OvervoltageDividers: u32(4)}},
		{"adi,undervoltage-dividers", Opts{RsenseNanoOhms: testRsense, UndervoltageDividers: u32(5)}},
		{"adi,fet-bad-timeout-ms", Opts{RsenseNanoOhms: testRsense, FETBadTimeoutMs: u32(256)}},
		{"adi,gpio0-mode", Opts{RsenseNanoOhms: testRsense, GPIO1Mode: u32(3)}},
		{"adi,gpio2-mode", Opts{RsenseNanoOhms: testRsense, GPIO3Mode: u32(2)}},
	}
	for _, test := range tests {
		t.Run(test.prop, func(t *testing.T) {
			pb := &i2ctest.Playback{Ops: bringUpOps(), DontPanic: true}
			_, err := newI2C(pb, addr, &test.opts, (&fakeSleep{}).sleep)
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if ce.Prop != test.prop {
				t.Errorf("error for %q: %v", ce.Prop, err)
			}
			// No register is written for a rejected value.
			if err := pb.Close(); err != nil {
				t.Error(err)
			}
		})
	}
}
