// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains integer helpers used across multiple packages. For
// example, checked multiplication and round-to-nearest division of register
// codes.
package common

import "math/bits"

// MulOverflow returns a*b and reports whether the product overflowed 64 bits.
// When it overflows, the returned value is the low 64 bits of the product.
func MulOverflow(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi != 0
}

// DivRoundClosest divides n by d rounding half up. It does not overflow for
// any n. It panics if d is zero.
func DivRoundClosest(n, d uint64) uint64 {
	q, r := n/d, n%d
	if r >= d-r {
		q++
	}
	return q
}

// FieldPrep shifts v into the position described by mask and discards the
// bits that fall outside of it.
func FieldPrep(mask, v uint8) uint8 {
	if mask == 0 {
		return 0
	}
	return (v << bits.TrailingZeros8(mask)) & mask
}

// FieldGet extracts the field described by mask from reg.
func FieldGet(mask, reg uint8) uint8 {
	if mask == 0 {
		return 0
	}
	return (reg & mask) >> bits.TrailingZeros8(mask)
}
