// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charlcd

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/pcf857x"
)

// PCF8574 backpack wiring. The expander pin number is the index; this
// layout is common to most of the cheap I²C backpack boards.
const (
	bpRS        = 0
	bpRW        = 1
	bpEnable    = 2
	bpBacklight = 3
	bpD4        = 4
	bpD5        = 5
	bpD6        = 6
	bpD7        = 7
)

// NewPCF857xBackpack opens a display connected through a PCF8574 I²C
// backpack. Unlike fixed-delay backpack drivers, the R/W line is kept
// under driver control so the busy flag can be polled; the expander's
// quasi-bidirectional pins float high in input mode, which is what the
// readiness poll needs.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
func NewPCF857xBackpack(bus i2c.Bus, address uint16, opts *Opts) (*Dev, error) {
	pcf, err := pcf857x.New(bus, address, pcf857x.PCF8574)
	if err != nil {
		return nil, wrap(err)
	}
	group, err := pcf.Group(bpD4, bpD5, bpD6, bpD7, bpRS, bpRW, bpEnable)
	if err != nil {
		return nil, wrap(err)
	}
	bank, err := SplitGroup(group)
	if err != nil {
		return nil, err
	}
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.Backlight == nil {
		o.Backlight = pcf.Pins[bpBacklight]
	}
	return New(bank, &o)
}
