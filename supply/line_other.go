// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package supply

import "errors"

// Consumer is the label attached to requested lines.
const Consumer = "ltc4282"

// Line is only supported on linux.
type Line struct{}

// OpenLine always fails outside linux.
func OpenLine(chip string, offset int, activeLow bool) (*Line, error) {
	return nil, errors.New("supply: gpio character devices require linux")
}

func (s *Line) Enable() error {
	return errors.New("supply: not supported")
}

func (s *Line) Disable() error {
	return errors.New("supply: not supported")
}

func (s *Line) Close() error {
	return nil
}

func (s *Line) String() string {
	return "supply{}"
}
