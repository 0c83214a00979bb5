// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ltc4282

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// VinMode is the input voltage range. It selects the UV/OV comparator
// dividers, the foldback profile and the VSOURCE full-scale.
type VinMode uint8

const (
	Vin3V3 VinMode = iota
	Vin5V
	Vin12V
	Vin24V
)

var vinModes = [...]struct {
	microvolt uint32
	// VSOURCE full-scale in mV.
	fullScale uint32
	name      string
}{
	Vin3V3: {3300000, 5540, "3.3V"},
	Vin5V:  {5000000, 8320, "5V"},
	Vin12V: {12000000, 16640, "12V"},
	Vin24V: {24000000, 33280, "24V"},
}

// FullScale returns the VSOURCE full-scale voltage in mV.
func (m VinMode) FullScale() uint32 {
	return vinModes[m].fullScale
}

func (m VinMode) String() string {
	if int(m) < len(vinModes) {
		return vinModes[m].name
	}
	return fmt.Sprintf("VinMode(%d)", uint8(m))
}

// Current limit sense voltages in µV, indexed by ILIM_ADJUST code.
var currentLimits = [...]uint32{12500, 15625, 18750, 21875, 25000, 28125, 31250, 34375}

const (
	// Highest OV/UV divider selection, 15%.
	maxDivider = 3
	// FET bad fault timeout in ms.
	maxFETBadTimeout = 255
	// Highest clock output selection, the conversion tick.
	maxClkoutMode = 1
)

// Supply is the upstream vdd regulator. Enable must leave the supply on.
type Supply interface {
	Enable() error
}

// Opts holds the board level configuration of the controller. Optional
// numeric properties are pointers; nil leaves the device default untouched.
type Opts struct {
	// Sense resistance in nΩ. Required; the driver uses it with 100 nΩ
	// resolution.
	RsenseNanoOhms uint32
	// Input voltage in µV: 3300000, 5000000, 12000000 or 24000000. The
	// device is assumed to be in 12 V mode when nil.
	VinModeMicrovolt *uint32
	// Current limit sense voltage in µV, 12500 to 34375 in 3125 steps.
	CurrentLimitMicrovolt *uint32
	// VinMonitor makes the ADC measure VDD instead of VSOURCE.
	VinMonitor bool
	// OV and UV divider selection: 0 external, 1 5%, 2 10%, 3 15%.
	OvervoltageDividers  *uint32
	UndervoltageDividers *uint32
	OnDelay              bool
	OnActiveLow          bool
	OvercurrentRetry     bool
	// FET bad fault timeout in ms, 0 to 255.
	FETBadTimeoutMs *uint32
	// Pin functions, see PinGPIO and friends.
	GPIO1Mode *uint32
	GPIO2Mode *uint32
	GPIO3Mode *uint32
	// AlertAsGPIO exposes the ALERT pin as an open drain output.
	AlertAsGPIO bool

	// ClockIn is the frequency applied on CLKIN, or 0 when the internal
	// oscillator is used.
	ClockIn physic.Frequency
	// ClkoutMode selects the CLKOUT pin output: 0 internal clock, 1
	// conversion tick. Only used with ClockIn.
	ClkoutMode *uint32

	// Supply is enabled before anything else. nil means always on.
	Supply Supply
	// Logger receives bring-up progress at debug level. nil disables logging.
	Logger *zap.Logger
}

// Device description property names.
const (
	propRsense       = "adi,rsense-nano-ohms"
	propVinMode      = "vin-mode-microvolt"
	propCurrentLimit = "adi,current-limit-microvolt"
	propVinMonitor   = "adi,vin_monitor"
	propOVDividers   = "adi,overvoltage-dividers"
	propUVDividers   = "adi,undervoltage-dividers"
	propOnDelay      = "adi,on-delay"
	propOnActiveLow  = "adi,on-active-low"
	propOCRetry      = "adi,overcurrent-retry"
	propFETBad       = "adi,fet-bad-timeout-ms"
	propAlertAsGP    = "adi,alert-as-gp"
	propClkoutMode   = "adi,clkout-mode"
	propClockFreq    = "clock-frequency"
)

var gpioModeProps = [...]string{"adi,gpio0-mode", "adi,gpio1-mode", "adi,gpio2-mode"}

type propDecoder func(o *Opts, n *yaml.Node) error

var propDecoders = map[string]propDecoder{
	propRsense:       func(o *Opts, n *yaml.Node) error { return n.Decode(&o.RsenseNanoOhms) },
	propVinMode:      u32Prop(func(o *Opts) **uint32 { return &o.VinModeMicrovolt }),
	propCurrentLimit: u32Prop(func(o *Opts) **uint32 { return &o.CurrentLimitMicrovolt }),
	propVinMonitor:   boolProp(func(o *Opts) *bool { return &o.VinMonitor }),
	propOVDividers:   u32Prop(func(o *Opts) **uint32 { return &o.OvervoltageDividers }),
	propUVDividers:   u32Prop(func(o *Opts) **uint32 { return &o.UndervoltageDividers }),
	propOnDelay:      boolProp(func(o *Opts) *bool { return &o.OnDelay }),
	propOnActiveLow:  boolProp(func(o *Opts) *bool { return &o.OnActiveLow }),
	propOCRetry:      boolProp(func(o *Opts) *bool { return &o.OvercurrentRetry }),
	propFETBad:       u32Prop(func(o *Opts) **uint32 { return &o.FETBadTimeoutMs }),
	gpioModeProps[0]: u32Prop(func(o *Opts) **uint32 { return &o.GPIO1Mode }),
	gpioModeProps[1]: u32Prop(func(o *Opts) **uint32 { return &o.GPIO2Mode }),
	gpioModeProps[2]: u32Prop(func(o *Opts) **uint32 { return &o.GPIO3Mode }),
	propAlertAsGP:    boolProp(func(o *Opts) *bool { return &o.AlertAsGPIO }),
	propClkoutMode:   u32Prop(func(o *Opts) **uint32 { return &o.ClkoutMode }),
	propClockFreq: func(o *Opts, n *yaml.Node) error {
		var hz uint64
		if err := n.Decode(&hz); err != nil {
			return err
		}
		o.ClockIn = physic.Frequency(hz) * physic.Hertz
		return nil
	},
}

func u32Prop(field func(o *Opts) **uint32) propDecoder {
	return func(o *Opts, n *yaml.Node) error {
		v := new(uint32)
		if err := n.Decode(v); err != nil {
			return err
		}
		*field(o) = v
		return nil
	}
}

// boolProp also accepts a property without value, which means true.
func boolProp(field func(o *Opts) *bool) propDecoder {
	return func(o *Opts, n *yaml.Node) error {
		if n.ShortTag() == "!!null" {
			*field(o) = true
			return nil
		}
		return n.Decode(field(o))
	}
}

// UnmarshalYAML decodes a device description mapping. Unknown properties are
// rejected.
func (o *Opts) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("ltc4282: line %d: device description must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		dec, ok := propDecoders[key.Value]
		if !ok {
			return fmt.Errorf("ltc4282: line %d: unknown property %q", key.Line, key.Value)
		}
		if err := dec(o, val); err != nil {
			return fmt.Errorf("ltc4282: %s: %w", key.Value, err)
		}
	}
	return nil
}

// ParseOpts reads a YAML device description using the devicetree property
// names, for example:
//
//	adi,rsense-nano-ohms: 500000
//	vin-mode-microvolt: 12000000
//	adi,gpio1-mode: 1
//	adi,on-delay: true
func ParseOpts(r io.Reader) (*Opts, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmpty
		}
		return nil, err
	}
	n := &doc
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil, errEmpty
		}
		n = n.Content[0]
	}
	// yaml.v3 does not call UnmarshalYAML for a null document.
	if n.ShortTag() == "!!null" {
		return nil, errEmpty
	}
	o := &Opts{}
	if err := o.UnmarshalYAML(n); err != nil {
		return nil, err
	}
	return o, nil
}

var errEmpty = errors.New("ltc4282: empty device description")
