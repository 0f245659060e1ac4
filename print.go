// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charlcd

import (
	"fmt"
	"strconv"
)

const hexDigits = "0123456789ABCDEF"

// PutChar writes a single character at the current cursor position.
// Custom glyph slots 0-7 loaded with CreateChar are valid values.
func (dev *Dev) PutChar(c byte) error {
	return dev.WriteData(c)
}

// PrintString writes a string at the current cursor position.
func (dev *Dev) PrintString(s string) error {
	_, err := dev.WriteString(s)
	return err
}

// PrintHex8 prints a byte as two hexadecimal ASCII characters.
func (dev *Dev) PrintHex8(value uint8) error {
	if err := dev.PutChar(hexDigits[value>>4]); err != nil {
		return err
	}
	return dev.PutChar(hexDigits[value&0x0f])
}

// PrintHex16 prints a uint16 as four hexadecimal ASCII characters.
func (dev *Dev) PrintHex16(value uint16) error {
	if err := dev.PrintHex8(uint8(value >> 8)); err != nil {
		return err
	}
	return dev.PrintHex8(uint8(value))
}

// PrintHex32 prints a uint32 as eight hexadecimal ASCII characters.
func (dev *Dev) PrintHex32(value uint32) error {
	if err := dev.PrintHex16(uint16(value >> 16)); err != nil {
		return err
	}
	return dev.PrintHex16(uint16(value))
}

// PrintNumber prints a value as a left-justified decimal number.
func (dev *Dev) PrintNumber(value uint32) error {
	return dev.PrintString(strconv.FormatUint(uint64(value), 10))
}

// CreateChar loads a custom 5x8 glyph into one of the controller's eight
// CGRAM slots. Each pattern byte holds one glyph row in its low 5 bits,
// top row first. The cursor address is switched back to DDRAM before
// returning; the caller's cursor position is not preserved.
func (dev *Dev) CreateChar(slot uint8, pattern [8]byte) error {
	if slot > 7 {
		return fmt.Errorf("%s: CGRAM slot %d out of range", packageName, slot)
	}
	if err := dev.WriteControl(cmdSetCGRAMAddr | slot<<3); err != nil {
		return err
	}
	for _, row := range pattern {
		if err := dev.WriteData(row & 0x1f); err != nil {
			return err
		}
	}
	return dev.WriteControl(cmdSetDDRAMAddr)
}
