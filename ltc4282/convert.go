// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ltc4282

import (
	"math"

	"github.com/GermanBionicSystems/hotswap/common"
)

// Conversions between raw register codes and hwmon integer units. Voltages
// are in mV, currents in mA, power in µW and energy in µJ. rsense is the sense
// resistance in units of 100 nΩ and must not be zero.

const (
	// TConv is the duration of one ADC conversion tick in µs. The time
	// counter advances once per tick.
	TConv = 65535

	// VGPIOFullScale is the full-scale voltage of the GPIO ADC input in mV.
	VGPIOFullScale = 1280
	// SenseFullScale is the 40 mV sense amplifier full-scale in 0.1 µV.
	SenseFullScale = 400000

	wordMax = math.MaxUint16
	byteMax = math.MaxUint8
	micro   = 1000000
	milli   = 1000
	deca    = 10
	// Sense amplifier full-scale in mV.
	senseMilli = 40
	// Gain of the power multiplier.
	powerGain = 256
)

// WordToValue converts a 16-bit code to a value of full-scale fs.
func WordToValue(code uint16, fs uint32) uint64 {
	return common.DivRoundClosest(uint64(code)*uint64(fs), wordMax)
}

// ByteToValue converts an 8-bit limit code to a value of full-scale fs.
func ByteToValue(code uint8, fs uint32) uint64 {
	return common.DivRoundClosest(uint64(code)*uint64(fs), byteMax)
}

// ValueToWord converts val back to a 16-bit code. Values at or above fs map to
// 65535.
func ValueToWord(val int64, fs uint32) uint16 {
	if val <= 0 {
		return 0
	}
	if val >= int64(fs) {
		return wordMax
	}
	return uint16(common.DivRoundClosest(uint64(val)*wordMax, uint64(fs)))
}

// ValueToByte converts val to an 8-bit limit code. Values at or above fs map
// to 255.
func ValueToByte(val int64, fs uint32) uint8 {
	if val <= 0 {
		return 0
	}
	if val >= int64(fs) {
		return byteMax
	}
	return uint8(common.DivRoundClosest(uint64(val)*byteMax, uint64(fs)))
}

// CurrentWord converts a 16-bit VSENSE code to mA.
func CurrentWord(code uint16, rsense uint32) uint64 {
	return common.DivRoundClosest(WordToValue(code, SenseFullScale)*milli, uint64(rsense))
}

// CurrentByte converts an 8-bit VSENSE limit code to mA.
func CurrentByte(code uint8, rsense uint32) uint64 {
	return common.DivRoundClosest(ByteToValue(code, SenseFullScale)*milli, uint64(rsense))
}

// CurrentToByte converts a current limit in mA to an 8-bit VSENSE code.
func CurrentToByte(mA int64, rsense uint32) uint8 {
	if mA <= 0 {
		return 0
	}
	v, of := common.MulOverflow(uint64(mA), uint64(rsense))
	if of {
		return byteMax
	}
	// mA * 100 nΩ is 0.1 nV, so this is the sense voltage in 0.1 µV.
	v = common.DivRoundClosest(v, milli)
	if v >= SenseFullScale {
		return byteMax
	}
	return ValueToByte(int64(v), SenseFullScale)
}

// powerScale is the factor applied to a power code before dividing by the
// sense resistance and 65535².
func powerScale(vfs uint32) uint64 {
	return deca * senseMilli * uint64(vfs) << 16
}

// PowerWord converts a 16-bit power code to µW. vfs is the VSOURCE
// full-scale in mV.
func PowerWord(code uint16, vfs, rsense uint32) uint64 {
	if p, ok := powerWordDirect(code, vfs, rsense); ok {
		return p
	}
	return powerWordReduced(code, vfs, rsense)
}

// powerWordDirect returns false when the numerator does not fit in 64 bits.
func powerWordDirect(code uint16, vfs, rsense uint32) (uint64, bool) {
	n, of := common.MulOverflow(uint64(code)*powerScale(vfs), micro)
	if of {
		return 0, false
	}
	return common.DivRoundClosest(n, uint64(rsense)*wordMax*wordMax), true
}

// powerWordReduced divides by 65535 before scaling to µW.
func powerWordReduced(code uint16, vfs, rsense uint32) uint64 {
	t := common.DivRoundClosest(uint64(code)*powerScale(vfs), wordMax)
	return common.DivRoundClosest(t*micro, wordMax*uint64(rsense))
}

// PowerByte converts an 8-bit power limit code to µW.
func PowerByte(code uint8, vfs, rsense uint32) uint64 {
	n := uint64(code) * senseMilli * deca * uint64(vfs) * powerGain * micro
	return common.DivRoundClosest(n, byteMax*byteMax*uint64(rsense))
}

// PowerToByte converts a power limit in µW to an 8-bit code, saturating at
// 255.
func PowerToByte(uW int64, vfs, rsense uint32) uint8 {
	if uW <= 0 {
		return 0
	}
	n, of := common.MulOverflow(uint64(uW), byteMax*byteMax*uint64(rsense))
	if of {
		return byteMax
	}
	p := common.DivRoundClosest(n, micro*deca*powerGain*uint64(vfs)*senseMilli)
	if p > byteMax {
		return byteMax
	}
	return uint8(p)
}

// energyScale folds the sense full-scale, the power gain and TConv (in µs)
// into a single factor.
func energyScale(vfs uint32) uint64 {
	return deca * uint64(vfs) * senseMilli * powerGain
}

// Energy converts the 48-bit energy accumulator to µJ.
func Energy(code uint64, vfs, rsense uint32) uint64 {
	if e, ok := energyDirect(code, vfs, rsense); ok {
		return e
	}
	return energyReduced(code, vfs, rsense)
}

func energyDirect(code uint64, vfs, rsense uint32) (uint64, bool) {
	n, of := common.MulOverflow(energyScale(vfs), code)
	if of {
		return 0, false
	}
	return common.DivRoundClosest(n, wordMax*uint64(rsense)), true
}

func energyReduced(code uint64, vfs, rsense uint32) uint64 {
	f := common.DivRoundClosest(energyScale(vfs), wordMax)
	return common.DivRoundClosest(f*code, uint64(rsense))
}

// PowerAverage returns the average power in µW given the accumulated energy
// in µJ and the number of elapsed conversion ticks. A zero count yields 0.
// The result saturates when it cannot be represented.
func PowerAverage(energy uint64, count uint32) uint64 {
	if count == 0 {
		return 0
	}
	if n, of := common.MulOverflow(energy, micro); !of {
		return common.DivRoundClosest(n, TConv*uint64(count))
	}
	t := common.DivRoundClosest(energy, TConv)
	n, of := common.MulOverflow(t, micro)
	if of {
		return math.MaxUint64
	}
	return common.DivRoundClosest(n, uint64(count))
}
