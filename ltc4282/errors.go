// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ltc4282

import (
	"errors"
	"fmt"
)

var (
	// ErrAccess is returned for registers that are reserved, out of range or
	// read-only.
	ErrAccess = errors.New("ltc4282: register not accessible")
	// ErrTimeout is returned when the UV/OV comparators never settle during
	// bring-up.
	ErrTimeout = errors.New("ltc4282: vdd not stable")
	// ErrInvalidConfig is wrapped by every ConfigError.
	ErrInvalidConfig = errors.New("ltc4282: invalid configuration")
	// ErrUnsupported is returned for sensor/attribute/channel combinations the
	// device does not expose. No register is accessed.
	ErrUnsupported = errors.New("ltc4282: unsupported attribute")
)

// BusError is returned when a register access fails.
type BusError struct {
	Op  string
	Reg uint8
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("ltc4282: %s register 0x%02x: %v", e.Op, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// ConfigError describes a rejected configuration property.
type ConfigError struct {
	// Prop is the device description property name.
	Prop  string
	Value any
	// Reason is set when the value is valid on its own but conflicts with
	// another property.
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("ltc4282: %s=%v: %s", e.Prop, e.Value, e.Reason)
	}
	return fmt.Sprintf("ltc4282: invalid value %v for %s", e.Value, e.Prop)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
