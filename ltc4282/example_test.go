// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ltc4282_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/GermanBionicSystems/hotswap/ltc4282"
	"github.com/GermanBionicSystems/hotswap/supply"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use i2creg I²C bus registry to find the first available I²C bus.
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer b.Close()

	opts, err := ltc4282.ParseOpts(strings.NewReader(`
adi,rsense-nano-ohms: 500000
vin-mode-microvolt: 12000000
adi,gpio1-mode: 0
`))
	if err != nil {
		log.Fatal(err)
	}
	// The controller VDD is switched by GPIO17.
	if p := gpioreg.ByName("GPIO17"); p != nil {
		opts.Supply = supply.NewPin(p, false)
	}

	d, err := ltc4282.NewI2C(b, ltc4282.DefaultAddress, opts)
	if err != nil {
		log.Fatalf("failed to initialize LTC4282: %v", err)
	}
	defer d.Halt()

	var t ltc4282.Telemetry
	if err := d.Sense(&t); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%8s %8s %8s\n", t.Source, t.Current, t.Power)

	// GPIO2 is a plain open drain line.
	if err := d.Pins[0].Out(false); err != nil {
		log.Fatal(err)
	}
}
