// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/hotswap/ltc4282"
)

var (
	colorOK    = color.NRGBA{0, 200, 0, 255}
	colorAlert = color.NRGBA{255, 200, 0, 255}
	colorFault = color.NRGBA{255, 0, 0, 255}
)

// sample is one line of output.
type sample struct {
	t       ltc4282.Telemetry
	average physic.Power
	status  ltc4282.StatusBits
	alerts  ltc4282.AlertBits
}

// display prints one line per sample. On a terminal the line starts with a
// colored block summarizing the alarms.
type display struct {
	w       io.Writer
	color   bool
	palette *ansi256.Palette
	buf     bytes.Buffer
}

func newDisplay(f *os.File) *display {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return &display{w: colorable.NewColorable(f), color: tty, palette: ansi256.Default}
}

var statusNames = []struct {
	b    ltc4282.StatusBits
	name string
}{
	{ltc4282.StatusOV, "OV"},
	{ltc4282.StatusUV, "UV"},
	{ltc4282.StatusOC, "OC"},
	{ltc4282.StatusFETBad, "FET_BAD"},
}

var alertNames = []struct {
	b    ltc4282.AlertBits
	name string
}{
	{ltc4282.AlertVGPIOHigh, "vgpio>"},
	{ltc4282.AlertVGPIOLow, "vgpio<"},
	{ltc4282.AlertVSourceHigh, "vsource>"},
	{ltc4282.AlertVSourceLow, "vsource<"},
	{ltc4282.AlertVSenseHigh, "isense>"},
	{ltc4282.AlertVSenseLow, "isense<"},
	{ltc4282.AlertPowerHigh, "power>"},
	{ltc4282.AlertPowerLow, "power<"},
}

func (s *sample) flags() (faults, alerts []string) {
	for _, n := range statusNames {
		if s.status.Has(n.b) {
			faults = append(faults, n.name)
		}
	}
	for _, n := range alertNames {
		if s.alerts.Has(n.b) {
			alerts = append(alerts, n.name)
		}
	}
	return faults, alerts
}

func (d *display) show(s *sample) error {
	d.buf.Reset()
	faults, alerts := s.flags()
	if d.color {
		c := colorOK
		if len(faults) != 0 {
			c = colorFault
		} else if len(alerts) != 0 {
			c = colorAlert
		}
		_, _ = d.buf.WriteString("\033[0m")
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		_, _ = d.buf.WriteString("\033[0m ")
	}
	fmt.Fprintf(&d.buf, "%s avg %s", s.t.String(), s.average)
	if len(faults) != 0 {
		fmt.Fprintf(&d.buf, " fault: %s", strings.Join(faults, ","))
	}
	if len(alerts) != 0 {
		fmt.Fprintf(&d.buf, " alert: %s", strings.Join(alerts, ","))
	}
	_ = d.buf.WriteByte('\n')
	_, err := d.buf.WriteTo(d.w)
	return err
}
