// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package supply switches the VDD rail of a hot swap controller.
//
// Values in this package implement ltc4282.Supply.
package supply

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Pin drives a load switch through a periph output pin.
type Pin struct {
	p  gpio.PinOut
	on gpio.Level
}

// NewPin returns a rail enabled by driving p high, or low when activeLow is
// set. The pin is not touched until Enable or Disable.
func NewPin(p gpio.PinOut, activeLow bool) *Pin {
	return &Pin{p: p, on: gpio.Level(!activeLow)}
}

// Enable turns the rail on.
func (s *Pin) Enable() error {
	if err := s.p.Out(s.on); err != nil {
		return fmt.Errorf("supply: %s: %w", s.p, err)
	}
	return nil
}

// Disable turns the rail off.
func (s *Pin) Disable() error {
	if err := s.p.Out(!s.on); err != nil {
		return fmt.Errorf("supply: %s: %w", s.p, err)
	}
	return nil
}

func (s *Pin) String() string {
	return "supply{" + s.p.String() + "}"
}
