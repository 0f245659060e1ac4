// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charlcd

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// writeMode selects the register a byte is written to. It doubles as the
// level of the RS line.
type writeMode bool

const (
	modeCommand writeMode = false
	modeData    writeMode = true
)

const (
	// RS/R/W setup time before raising E.
	setupTime = 2 * time.Microsecond
	// E high dwell. The controller requires at least 230ns.
	strobeDwell = 1 * time.Microsecond
	// Back-off between busy-flag samples.
	busyRetry = 10 * time.Microsecond

	// DB7 within the transferred nibble.
	busyBit = 0x08

	// Worst case command execution time (Clear Display) and the duration
	// of one polling cycle. Their ratio, with a 4x safety margin, bounds
	// the busy poll.
	longestCommand       = 1617 * time.Microsecond
	pollCycle            = 16 * time.Microsecond
	defaultReadyAttempts = int(longestCommand*4) / int(pollCycle)
)

// writeNibble performs one nibble transaction on the bus. It is
// unconditional and at-most-once: the bus has no handshake, so a failed
// transfer is not observable here. Correctness depends on the timing
// between steps.
func (dev *Dev) writeNibble(nibble byte, mode writeMode) error {
	if err := dev.bank.SetControl(RegisterSelect, gpio.Level(mode)); err != nil {
		return err
	}
	if err := dev.bank.SetControl(ReadWrite, gpio.Low); err != nil {
		return err
	}
	dev.delay(setupTime)
	if err := dev.setDirection(DriveOutput); err != nil {
		return err
	}
	if err := dev.bank.WriteData(nibble & 0x0f); err != nil {
		return err
	}
	if err := dev.bank.SetControl(Enable, gpio.High); err != nil {
		return err
	}
	dev.delay(strobeDwell)
	// The falling edge latches the nibble.
	return dev.bank.SetControl(Enable, gpio.Low)
}

// writeByte performs one byte transaction: a readiness poll followed by
// the high and low nibbles. The busy flag is only meaningful between
// complete bytes, so there is no poll between the two nibbles.
func (dev *Dev) writeByte(value byte, mode writeMode) error {
	dev.WaitUntilReady()
	if err := dev.writeNibble(value>>4, mode); err != nil {
		return err
	}
	return dev.writeNibble(value&0x0f, mode)
}

// WaitUntilReady polls the module's busy flag until it clears or the
// attempt budget runs out, and reports whether the module signalled
// ready. A false return means the poll timed out; the driver proceeds
// anyway, as a disconnected module is indistinguishable from a slow one.
//
// The data field is floated for the duration of the poll. On return, in
// both outcomes, the R/W line is back to write, the data field direction
// is DriveOutput and the field is cleared, so a write may follow
// unconditionally.
func (dev *Dev) WaitUntilReady() bool {
	ready := false
	_ = dev.bank.WriteData(0)
	_ = dev.setDirection(FloatingInput)
	// Status register, read mode.
	_ = dev.bank.SetControl(RegisterSelect, gpio.Low)
	_ = dev.bank.SetControl(ReadWrite, gpio.High)

	for attempts := dev.readyAttempts; attempts > 0; attempts-- {
		_ = dev.bank.SetControl(Enable, gpio.High)
		dev.delay(strobeDwell)
		sample, err := dev.bank.ReadData()
		_ = dev.bank.SetControl(Enable, gpio.Low)
		busy := err != nil || sample&busyBit != 0

		// The 4-bit interface transfers the status byte as two nibbles.
		// The second strobe consumes the low nibble so the controller
		// does not desynchronize; its content is not interesting.
		_ = dev.bank.SetControl(Enable, gpio.High)
		dev.delay(strobeDwell)
		_ = dev.bank.SetControl(Enable, gpio.Low)

		if !busy {
			ready = true
			break
		}
		dev.delay(busyRetry)
	}

	_ = dev.bank.SetControl(ReadWrite, gpio.Low)
	_ = dev.setDirection(DriveOutput)
	_ = dev.bank.WriteData(0)
	return ready
}

// setDirection switches the data field direction if it differs from the
// tracked state.
func (dev *Dev) setDirection(dir Direction) error {
	if dev.dir == dir {
		return nil
	}
	if err := dev.bank.SetDataDirection(dir); err != nil {
		return err
	}
	dev.dir = dir
	return nil
}
