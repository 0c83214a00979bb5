// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// ltc4282 provides a driver for the Analog Devices LTC4282 high current hot
// swap controller. The device measures the source voltage, the voltage drop
// across an external sense resistor, the input power and the accumulated
// energy, and raises alerts when configurable limits are crossed.
//
// NewI2C performs the device bring-up: it enables the upstream supply, waits
// for the UV/OV comparators to settle, soft resets the ADC, programs the clock
// divider and then applies the static configuration from Opts. Bring-up
// blocks for a little over three seconds.
//
// Readings follow the hwmon integer units: millivolt, milliampere, microwatt
// and microjoule. Sense returns the same readings as physic values.
//
// The GPIO1..GPIO3 pins and, optionally, the ALERT pin can be exposed as
// gpio.PinIO. GPIO2, GPIO3 and ALERT are open drain: a Low level pulls the
// line down and a High level releases it.
//
// For detailed information, refer to the [datasheet].
//
// [datasheet]: https://www.analog.com/media/en/technical-documentation/data-sheets/ltc4282.pdf
package ltc4282
