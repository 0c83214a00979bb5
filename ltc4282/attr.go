// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ltc4282

import (
	"fmt"
	"os"
)

// Sensor is a measured quantity.
type Sensor uint8

const (
	Voltage Sensor = iota
	Current
	Power
)

func (s Sensor) String() string {
	switch s {
	case Voltage:
		return "in"
	case Current:
		return "curr"
	case Power:
		return "power"
	default:
		return fmt.Sprintf("Sensor(%d)", uint8(s))
	}
}

// Attr is an attribute of a sensor channel.
type Attr uint8

const (
	// Input is the last conversion.
	Input Attr = iota
	// Lowest and Highest are the extremes seen since reset.
	Lowest
	Highest
	// Max and Min are the alert thresholds. They are the only writable
	// attributes.
	Max
	Min
	MinAlarm
	MaxAlarm
	// LCritAlarm reports the UV fault, or the FET bad fault on the VFET
	// channel.
	LCritAlarm
	// CritAlarm reports the OV fault for voltages and the OC fault for
	// current.
	CritAlarm
	// Average is the power averaged over the energy meter interval.
	Average
	Label
)

var attrNames = [...]string{
	Input:      "input",
	Lowest:     "lowest",
	Highest:    "highest",
	Max:        "max",
	Min:        "min",
	MinAlarm:   "min_alarm",
	MaxAlarm:   "max_alarm",
	LCritAlarm: "lcrit_alarm",
	CritAlarm:  "crit_alarm",
	Average:    "average",
	Label:      "label",
}

func (a Attr) String() string {
	if int(a) < len(attrNames) {
		return attrNames[a]
	}
	return fmt.Sprintf("Attr(%d)", uint8(a))
}

type attrSet uint16

func attrs(a ...Attr) attrSet {
	var s attrSet
	for _, v := range a {
		s |= 1 << v
	}
	return s
}

func (s attrSet) has(a Attr) bool {
	return s&(1<<a) != 0
}

// Voltage channels.
const (
	chanVSource = 0
	chanVGPIO   = 1
	chanVFET    = 2
	chanVDD     = 3
)

var (
	limitAttrs = attrs(Input, Lowest, Highest, Max, Min, MinAlarm, MaxAlarm, Label)

	voltageChannels = []attrSet{
		chanVSource: limitAttrs,
		chanVGPIO:   limitAttrs,
		chanVFET:    attrs(LCritAlarm, Label),
		chanVDD:     attrs(LCritAlarm, CritAlarm, Label),
	}
	// With the VDD monitor, channel 0 measures VDD and there is no separate
	// VDD channel.
	voltageChannelsVDD = []attrSet{
		limitAttrs | attrs(LCritAlarm, CritAlarm),
		limitAttrs,
		attrs(LCritAlarm, Label),
	}
	currentChannels = []attrSet{limitAttrs | attrs(CritAlarm)}
	powerChannels   = []attrSet{limitAttrs | attrs(Average)}

	voltageLabels    = []string{"VSOURCE", "VGPIO", "VFET", "VDD"}
	voltageLabelsVDD = []string{"VDD", "VGPIO", "VFET"}
)

func (d *Dev) channels(s Sensor) []attrSet {
	switch s {
	case Voltage:
		if d.vddMonitor {
			return voltageChannelsVDD
		}
		return voltageChannels
	case Current:
		return currentChannels
	case Power:
		return powerChannels
	default:
		return nil
	}
}

// Channels returns the number of channels of s.
func (d *Dev) Channels(s Sensor) int {
	return len(d.channels(s))
}

// Mode returns the permission of an attribute: 0644 for thresholds, 0444 for
// read-only attributes and 0 when the channel does not have the attribute.
func (d *Dev) Mode(s Sensor, a Attr, channel int) os.FileMode {
	ch := d.channels(s)
	if channel < 0 || channel >= len(ch) || !ch[channel].has(a) {
		return 0
	}
	if a == Max || a == Min {
		return 0644
	}
	return 0444
}

// Label returns the name of a channel.
func (d *Dev) Label(s Sensor, channel int) (string, error) {
	if d.Mode(s, Label, channel) == 0 {
		return "", ErrUnsupported
	}
	switch s {
	case Voltage:
		if d.vddMonitor {
			return voltageLabelsVDD[channel], nil
		}
		return voltageLabels[channel], nil
	case Current:
		return "ISENSE", nil
	default:
		return "Power", nil
	}
}
