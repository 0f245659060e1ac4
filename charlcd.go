// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charlcd

import (
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

const packageName = "charlcd"

// ErrNotImplemented is returned for TextDisplay features the HD44780
// does not provide.
var ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// Command bytes, each sent as two nibbles once the interface is in 4-bit
// mode.
const (
	cmdClearDisplay       = 0x01
	cmdCursorHome         = 0x02
	cmdEntryModeIncrement = 0x06
	cmdDisplayCursorOff   = 0x08
	cmdDisplayCursorOn    = 0x0e
	cmdDisplayOnCursorOff = 0x0c
	cmdCursorMove         = 0x10
	cmdFunction2Lines5x10 = 0x2c
	cmdResetCursor        = 0x03
	cmdSetCGRAMAddr       = 0x40
	cmdSetDDRAMAddr       = 0x80
)

// Function-set high nibbles used during the power-on bootstrap, before
// the interface width is established.
const (
	nibble8BitMode = 0x03
	nibble4BitMode = 0x02
)

// Bootstrap timing per the power-on reset requirements of the
// controller.
const (
	powerOnDelay    = 40 * time.Millisecond
	bootstrapDelayA = 5 * time.Millisecond
	bootstrapDelayB = 15 * time.Millisecond
	bootstrapDelayC = 1 * time.Millisecond
	modeSettle      = 5 * time.Millisecond
)

// DDRAM base address per row. Rows 2 and 3 continue rows 0 and 1 at a
// 20 character offset.
var rowBase = [4]byte{0x80, 0xc0, 0x94, 0xd4}

// Dev is an open handle to one display module. A Dev owns the data field
// direction of its PinBank; nothing else may drive those pins while an
// operation is in progress. Dev is not safe for concurrent use.
type Dev struct {
	bank          PinBank
	delay         DelayFunc
	readyAttempts int
	rows          int
	cols          int
	backlight     gpio.PinOut

	dir         Direction
	initialized bool
	enabled     bool
	on          bool
	cursor      bool
	blink       bool
}

// New opens a display on the given pin bank and runs the one-time
// initialization sequence, leaving the display cleared, enabled, and
// with the cursor at the origin.
func New(bank PinBank, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	dev := &Dev{
		bank:          bank,
		delay:         opts.Delay,
		readyAttempts: opts.ReadyAttempts,
		rows:          opts.Rows,
		cols:          opts.Cols,
		backlight:     opts.Backlight,
	}
	if dev.delay == nil {
		dev.delay = time.Sleep
	}
	if dev.readyAttempts <= 0 {
		dev.readyAttempts = defaultReadyAttempts
	}
	if dev.rows <= 0 {
		dev.rows = DefaultOpts.Rows
	}
	if dev.cols <= 0 {
		dev.cols = DefaultOpts.Cols
	}
	// Establish a known electrical state before the first transaction.
	if err := bank.SetDataDirection(DriveOutput); err != nil {
		return nil, wrap(err)
	}
	dev.dir = DriveOutput
	if err := dev.Start(); err != nil {
		return nil, err
	}
	return dev, nil
}

// Start initializes the module if it has not been initialized yet, then
// turns the display on. Calling Start on an initialized display only
// re-enables it; the bootstrap sequence must not run twice against a
// configured controller.
func (dev *Dev) Start() error {
	if !dev.initialized {
		if err := dev.init(); err != nil {
			return err
		}
		dev.initialized = true
	}
	return dev.Enable()
}

// init runs the fixed power-on script. The controller does not answer
// busy-flag reads during the bootstrap, so this part is timed instead of
// polled: three "8-bit mode" nibbles with decreasing settle delays,
// then the switch to 4-bit mode, then the configuration command bytes
// through the normal polling byte path.
func (dev *Dev) init() error {
	dev.delay(powerOnDelay)
	if err := dev.writeNibble(nibble8BitMode, modeCommand); err != nil {
		return wrap(err)
	}
	dev.delay(bootstrapDelayA)
	if err := dev.writeNibble(nibble8BitMode, modeCommand); err != nil {
		return wrap(err)
	}
	dev.delay(bootstrapDelayB)
	if err := dev.writeNibble(nibble8BitMode, modeCommand); err != nil {
		return wrap(err)
	}
	dev.delay(bootstrapDelayC)
	if err := dev.writeNibble(nibble4BitMode, modeCommand); err != nil {
		return wrap(err)
	}
	dev.delay(modeSettle)

	script := []byte{
		cmdEntryModeIncrement,
		cmdDisplayCursorOn,
		cmdFunction2Lines5x10,
		cmdDisplayCursorOff,
		cmdClearDisplay,
		cmdDisplayOnCursorOff,
		cmdResetCursor,
	}
	for _, cmd := range script {
		if err := dev.WriteControl(cmd); err != nil {
			return err
		}
	}
	dev.delay(modeSettle)
	return nil
}

// Enable turns the display on.
func (dev *Dev) Enable() error {
	if err := dev.WriteControl(cmdDisplayOnCursorOff); err != nil {
		return err
	}
	dev.enabled = true
	dev.on = true
	return nil
}

// Disable turns the display and cursor off. The module keeps its DDRAM
// contents and Enable restores them.
func (dev *Dev) Disable() error {
	if err := dev.WriteControl(cmdDisplayCursorOff); err != nil {
		return err
	}
	dev.enabled = false
	dev.on = false
	return nil
}

// WriteControl writes a command byte to the module's instruction
// register.
func (dev *Dev) WriteControl(cmd byte) error {
	return wrap(dev.writeByte(cmd, modeCommand))
}

// WriteData writes a byte to the module's display data RAM at the
// current address counter position.
func (dev *Dev) WriteData(b byte) error {
	return wrap(dev.writeByte(b, modeData))
}

// Position moves the cursor to the given 0-based row and column. Rows
// outside 0..3 are ignored without error, matching the module's
// addressing model; columns are not range checked, the controller wraps
// them within DDRAM.
func (dev *Dev) Position(row, column int) error {
	if row < 0 || row >= len(rowBase) {
		return nil
	}
	return dev.WriteControl(rowBase[row] + byte(column))
}

// Clear clears the display and moves the cursor to the origin.
func (dev *Dev) Clear() error {
	return dev.WriteControl(cmdClearDisplay)
}

// Home moves the cursor to the origin without clearing.
func (dev *Dev) Home() error {
	return dev.WriteControl(cmdCursorHome)
}

// Halt clears the display, turns the backlight and display off, and
// releases the pin bank.
func (dev *Dev) Halt() error {
	_ = dev.Clear()
	_ = dev.Backlight(0)
	_ = dev.Disable()
	return wrap(dev.bank.Halt())
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s::%s - Rows: %d, Cols: %d", packageName, dev.bank, dev.rows, dev.cols)
}

var _ conn.Resource = &Dev{}
