// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package supply

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

// Consumer is the label attached to requested lines.
const Consumer = "ltc4282"

// Line drives a load switch through a GPIO character device line. The line
// is held, driven inactive, until Close.
type Line struct {
	l      *gpiocdev.Line
	chip   string
	offset int
}

// OpenLine requests offset on chip, e.g. "gpiochip0" or "/dev/gpiochip0", as
// an output.
func OpenLine(chip string, offset int, activeLow bool) (*Line, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.WithConsumer(Consumer), gpiocdev.AsOutput(0)}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	l, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "supply: request %s:%d", chip, offset)
	}
	return &Line{l: l, chip: chip, offset: offset}, nil
}

// Enable turns the rail on.
func (s *Line) Enable() error {
	return errors.Wrap(s.l.SetValue(1), "supply: enable")
}

// Disable turns the rail off.
func (s *Line) Disable() error {
	return errors.Wrap(s.l.SetValue(0), "supply: disable")
}

// Close releases the line.
func (s *Line) Close() error {
	return s.l.Close()
}

func (s *Line) String() string {
	return fmt.Sprintf("supply{%s:%d}", s.chip, s.offset)
}
