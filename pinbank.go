// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charlcd

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// ControlLine identifies one of the three control pins of the module.
type ControlLine int

const (
	// RegisterSelect selects the instruction register (Low) or the data
	// register (High).
	RegisterSelect ControlLine = iota
	// ReadWrite selects write (Low) or read (High) transfers.
	ReadWrite
	// Enable is the strobe line. The falling edge latches a transfer.
	Enable
)

func (line ControlLine) String() string {
	switch line {
	case RegisterSelect:
		return "RS"
	case ReadWrite:
		return "R/W"
	case Enable:
		return "E"
	}
	return fmt.Sprintf("ControlLine(%d)", int(line))
}

// Direction is the electrical state of the four data pins taken as a
// unit. The pins always switch together; a partially switched data field
// is a wiring or driver bug.
type Direction int

const (
	// DriveOutput means the host drives the data pins.
	DriveOutput Direction = iota
	// FloatingInput means the pins are released so the module can drive
	// them, e.g. to report its busy flag.
	FloatingInput
)

func (d Direction) String() string {
	if d == DriveOutput {
		return "output"
	}
	return "input"
}

// PinBank is the electrical interface the driver operates on: four data
// pins treated as one 4-bit field plus the RS, R/W and E control lines.
//
// GPIOBank implements it for anything exposing a gpio.Group, and
// lcdsim.LCD implements it in software.
type PinBank interface {
	// SetControl sets a control line to the given level.
	SetControl(line ControlLine, level gpio.Level) error
	// WriteData drives the low 4 bits of nibble onto the data field.
	// Other bits of the underlying port must be left untouched
	// (read-modify-write). Only valid while the field direction is
	// DriveOutput.
	WriteData(nibble uint8) error
	// ReadData samples the data field. Only meaningful while the field
	// direction is FloatingInput.
	ReadData() (uint8, error)
	// SetDataDirection switches all four data pins between driving and
	// floating.
	SetDataDirection(dir Direction) error
	// Halt releases the underlying pin resources.
	Halt() error
	String() string
}

// dataFieldMask selects the four data pins within their gpio.Group.
const dataFieldMask gpio.GPIOValue = 0x0f

// GPIOBank implements PinBank using a gpio.Group for the data field and
// discrete pins for the control lines. The group may be backed by host
// GPIO lines or by an I/O expander; writes go through the group's
// Out(value, mask) so unrelated pins of the underlying port are
// preserved.
type GPIOBank struct {
	data gpio.Group
	in   [4]gpio.PinIn
	ctrl [3]gpio.PinOut
}

// NewGPIOBank wraps a gpio.Group and the three control pins. The first
// four pins of the group must be the data lines D4..D7, in that order.
// The data pins must support input mode so the bank can float them for
// busy-flag reads.
func NewGPIOBank(data gpio.Group, rs, rw, e gpio.PinOut) (*GPIOBank, error) {
	pins := data.Pins()
	if len(pins) < 4 {
		return nil, fmt.Errorf("charlcd: data group %s has %d pins, need 4", data, len(pins))
	}
	bank := &GPIOBank{data: data, ctrl: [3]gpio.PinOut{rs, rw, e}}
	for ix := range 4 {
		p, ok := pins[ix].(gpio.PinIn)
		if !ok {
			return nil, fmt.Errorf("charlcd: data pin %s cannot be switched to input", pins[ix].Name())
		}
		bank.in[ix] = p
	}
	for ix, p := range bank.ctrl {
		if p == nil {
			return nil, fmt.Errorf("charlcd: control pin %s is nil", ControlLine(ix))
		}
	}
	return bank, nil
}

// SplitGroup builds a GPIOBank from a single group of at least 7 pins
// ordered D4, D5, D6, D7, RS, R/W, E. This matches the line ordering
// used with gpioioctl.LineSet.
func SplitGroup(group gpio.Group) (*GPIOBank, error) {
	pins := group.Pins()
	if len(pins) < 7 {
		return nil, fmt.Errorf("charlcd: group %s has %d pins, need 7", group, len(pins))
	}
	ctrl := make([]gpio.PinOut, 3)
	for ix := range ctrl {
		p, ok := pins[4+ix].(gpio.PinOut)
		if !ok {
			return nil, fmt.Errorf("charlcd: pin %s cannot be used as the %s line", pins[4+ix].Name(), ControlLine(ix))
		}
		ctrl[ix] = p
	}
	return NewGPIOBank(group, ctrl[0], ctrl[1], ctrl[2])
}

// SetControl sets a control line to the given level.
func (bank *GPIOBank) SetControl(line ControlLine, level gpio.Level) error {
	if line < RegisterSelect || line > Enable {
		return fmt.Errorf("charlcd: invalid control line %d", int(line))
	}
	return bank.ctrl[line].Out(level)
}

// WriteData drives the low 4 bits of nibble onto the data field.
func (bank *GPIOBank) WriteData(nibble uint8) error {
	return bank.data.Out(gpio.GPIOValue(nibble)&dataFieldMask, dataFieldMask)
}

// ReadData samples the data field.
func (bank *GPIOBank) ReadData() (uint8, error) {
	v, err := bank.data.Read(dataFieldMask)
	return uint8(v & dataFieldMask), err
}

// SetDataDirection switches the four data pins between drive and float.
func (bank *GPIOBank) SetDataDirection(dir Direction) error {
	if dir == FloatingInput {
		for _, p := range bank.in {
			if err := p.In(gpio.Float, gpio.NoEdge); err != nil {
				return err
			}
		}
		return nil
	}
	// Writing the group drives the pins again.
	return bank.data.Out(0, dataFieldMask)
}

// Halt releases the data group.
func (bank *GPIOBank) Halt() error {
	return bank.data.Halt()
}

func (bank *GPIOBank) String() string {
	return fmt.Sprintf("GPIOBank{%s}", bank.data)
}

var _ PinBank = &GPIOBank{}
