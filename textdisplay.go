// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charlcd

import (
	"fmt"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// Not supported by this device. Returns display.ErrNotImplemented.
func (dev *Dev) AutoScroll(enabled bool) error {
	return ErrNotImplemented
}

// Return the number of columns the display supports.
func (dev *Dev) Cols() int {
	return dev.cols
}

// Return the number of rows the display supports.
func (dev *Dev) Rows() int {
	return dev.rows
}

// Return the min column position.
func (dev *Dev) MinCol() int {
	return 1
}

// Return the min row position.
func (dev *Dev) MinRow() int {
	return 1
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
func (dev *Dev) Cursor(modes ...display.CursorMode) error {
	val := byte(cmdDisplayCursorOff)
	if dev.on {
		val |= 0x04
	}
	cursor, blink := false, false
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
		case display.CursorBlink, display.CursorBlock:
			cursor = true
			blink = true
			val |= 0x01
		case display.CursorUnderline:
			cursor = true
			val |= 0x02
		default:
			return fmt.Errorf("%s: unexpected cursor: %d", packageName, mode)
		}
	}
	if err := dev.WriteControl(val & 0x0f); err != nil {
		return err
	}
	dev.cursor = cursor
	dev.blink = blink
	return nil
}

// Turn the display on / off.
func (dev *Dev) Display(on bool) error {
	val := byte(cmdDisplayCursorOff)
	if on {
		val |= 0x04
	}
	if dev.blink {
		val |= 0x01
	}
	if dev.cursor {
		val |= 0x02
	}
	if err := dev.WriteControl(val); err != nil {
		return err
	}
	dev.on = on
	dev.enabled = on
	return nil
}

// Move the cursor forward or backward.
func (dev *Dev) Move(dir display.CursorDirection) error {
	val := byte(cmdCursorMove)
	switch dir {
	case display.Backward:
	case display.Forward:
		val |= 0x04
	default:
		return ErrNotImplemented
	}
	return dev.WriteControl(val)
}

// Move the cursor to an arbitrary 1-based position.
func (dev *Dev) MoveTo(row, col int) error {
	if row < dev.MinRow() || row > dev.rows || col < dev.MinCol() || col > dev.cols {
		return fmt.Errorf("%s: MoveTo(%d,%d) value out of range", packageName, row, col)
	}
	return dev.Position(row-1, col-1)
}

// Write a set of bytes to the display data RAM at the current cursor
// position.
func (dev *Dev) Write(p []byte) (int, error) {
	n := 0
	for _, b := range p {
		if err := dev.WriteData(b); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Write a string output to the display.
func (dev *Dev) WriteString(text string) (int, error) {
	return dev.Write([]byte(text))
}

// Turn the display's backlight on or off. You must supply a backlight
// pin in Opts to use this.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	if dev.backlight == nil {
		return ErrNotImplemented
	}
	return wrap(dev.backlight.Out(gpio.Level(intensity > 0)))
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
