// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/GermanBionicSystems/hotswap/ltc4282"
)

// Config is the content of ltc4282mon.yaml.
type Config struct {
	// Bus is the I²C bus name as understood by i2creg.Open. Empty selects the
	// first bus.
	Bus      string        `mapstructure:"bus"`
	Address  uint16        `mapstructure:"address"`
	Interval time.Duration `mapstructure:"interval"`
	Debug    bool          `mapstructure:"debug"`
	Supply   SupplyConfig  `mapstructure:"supply"`

	// Device is decoded from the device section with ltc4282.ParseOpts.
	Device *ltc4282.Opts `mapstructure:"-"`
}

// SupplyConfig selects the switch feeding the controller VDD. Pin takes
// precedence over Chip.
type SupplyConfig struct {
	// Pin is a periph pin name, e.g. GPIO17.
	Pin string `mapstructure:"pin"`
	// Chip and Line select a GPIO character device line.
	Chip      string `mapstructure:"chip"`
	Line      int    `mapstructure:"line"`
	ActiveLow bool   `mapstructure:"active_low"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("bus", "")
	v.SetDefault("address", ltc4282.DefaultAddress)
	v.SetDefault("interval", "1s")
	v.SetDefault("debug", false)
	v.SetDefault("supply.pin", "")
	v.SetDefault("supply.chip", "")
	v.SetDefault("supply.line", 0)
	v.SetDefault("supply.active_low", false)

	// LTC4282_SUPPLY_PIN overrides supply.pin.
	v.SetEnvPrefix("LTC4282")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("invalid interval %s", cfg.Interval)
	}
	dev := v.GetStringMap("device")
	if len(dev) == 0 {
		return nil, errors.New("missing device section")
	}
	// Re-encode so the property names go through the driver's own decoder.
	raw, err := yaml.Marshal(dev)
	if err != nil {
		return nil, err
	}
	if cfg.Device, err = ltc4282.ParseOpts(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("device section: %w", err)
	}
	return &cfg, nil
}
