// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ltc4282mon brings up a LTC4282 hot swap controller and prints its
// telemetry periodically.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/hotswap/ltc4282"
	"github.com/GermanBionicSystems/hotswap/supply"
)

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openSupply returns nil when the controller VDD is always on.
func openSupply(c *SupplyConfig) (ltc4282.Supply, func() error, error) {
	switch {
	case c.Pin != "":
		p := gpioreg.ByName(c.Pin)
		if p == nil {
			return nil, nil, fmt.Errorf("unknown supply pin %q", c.Pin)
		}
		return supply.NewPin(p, c.ActiveLow), func() error { return nil }, nil
	case c.Chip != "":
		l, err := supply.OpenLine(c.Chip, c.Line, c.ActiveLow)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil
	default:
		return nil, func() error { return nil }, nil
	}
}

func sense(d *ltc4282.Dev, s *sample) error {
	if err := d.Sense(&s.t); err != nil {
		return err
	}
	avg, err := d.Read(ltc4282.Power, ltc4282.Average, 0)
	if err != nil {
		return err
	}
	s.average = physic.Power(avg) * physic.MicroWatt
	if s.status, err = d.Status(); err != nil {
		return err
	}
	s.alerts, err = d.AlertLog()
	return err
}

func run(ctx context.Context, cfg *Config, logger *zap.Logger, once bool) error {
	if _, err := host.Init(); err != nil {
		return err
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return fmt.Errorf("failed to open I²C: %w", err)
	}
	defer bus.Close()

	vdd, closeSupply, err := openSupply(&cfg.Supply)
	if err != nil {
		return err
	}
	defer closeSupply()

	opts := cfg.Device
	opts.Supply = vdd
	opts.Logger = logger
	logger.Info("bringing up controller", zap.String("bus", bus.String()), zap.Uint16("address", cfg.Address))
	d, err := ltc4282.NewI2C(bus, cfg.Address, opts)
	if err != nil {
		return err
	}
	defer d.Halt()
	logger.Info("controller ready", zap.Stringer("vin", d.VinMode()), zap.Int("gpio", len(d.Pins)))

	out := newDisplay(os.Stdout)
	t := time.NewTicker(cfg.Interval)
	defer t.Stop()
	for {
		var s sample
		if err := sense(d, &s); err != nil {
			return err
		}
		if err := out.show(&s); err != nil {
			return err
		}
		if once {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// exitCode reports a failed run once, through the configured logger.
func exitCode(logger *zap.Logger, err error) int {
	if err == nil {
		return 0
	}
	logger.Error("ltc4282mon failed", zap.Error(err))
	return 1
}

// mainImpl returns the process exit code so deferred cleanup runs first.
func mainImpl() int {
	path := pflag.StringP("config", "c", "ltc4282mon.yaml", "configuration file")
	once := pflag.Bool("once", false, "print a single sample and exit")
	pflag.Parse()
	if pflag.NArg() != 0 {
		log.Print("ltc4282mon: unexpected argument, try --help")
		return 2
	}

	cfg, err := Load(*path)
	if err != nil {
		log.Printf("ltc4282mon: %s", err)
		return 1
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Printf("ltc4282mon: %s", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return exitCode(logger, run(ctx, cfg, logger, *once))
}

func main() {
	os.Exit(mainImpl())
}
