// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charlcd

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// DelayFunc busy-waits for at least the given duration. The driver
// routes all electrical timing through it, from 1µs strobe dwells to the
// 40ms power-on delay. Implementations must not return early; jitter
// above the requested duration is harmless.
type DelayFunc func(d time.Duration)

// Opts holds the options for a display.
type Opts struct {
	// Rows and Cols describe the character matrix. They only affect
	// addressing and the TextDisplay surface, not the bus protocol.
	Rows int
	Cols int

	// ReadyAttempts bounds the busy-flag poll. 0 selects the default
	// budget, derived from the controller's worst case command latency
	// divided by the duration of one polling cycle.
	ReadyAttempts int

	// Delay provides the timing primitive. nil selects time.Sleep.
	// Tests and lcdsim substitute a virtual clock.
	Delay DelayFunc

	// Backlight is an optional pin driving the backlight transistor.
	// Leave nil if the backlight is hardwired.
	Backlight gpio.PinOut
}

// DefaultOpts is the recommended configuration for the common 2x16
// module.
var DefaultOpts = Opts{
	Rows: 2,
	Cols: 16,
}
