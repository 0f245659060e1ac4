// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim emulates an HD44780 character LCD controller at pin
// level. It implements charlcd.PinBank, latching nibbles on the falling
// edge of the E line exactly as the silicon does, including the
// 8-bit-to-4-bit bootstrap, the two-nibble status read and the busy
// flag.
//
// Time is virtual: the emulator's Delay method doubles as the driver's
// DelayFunc, so a driver wired to it runs deterministically and at full
// speed. Useful while you are waiting for your display module to come by
// mail, and for tests that must observe exact bus timing.
package lcdsim

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"periph.io/x/devices/v3/charlcd"
)

// Command execution times from the datasheet. The busy flag stays up
// for this long on the virtual clock.
const (
	execClear   = 1520 * time.Microsecond
	execHome    = 1520 * time.Microsecond
	execDefault = 37 * time.Microsecond
)

// DDRAM offset of each row start, relative to the 0x80 address base.
var rowOffset = [4]int{0x00, 0x40, 0x14, 0x54}

// LCD is an emulated display module. The zero value is not usable; call
// New.
//
// LCD is not safe for concurrent use, matching the single-owner bus
// model of the driver.
type LCD struct {
	rows int
	cols int

	// Electrical state as seen from the host.
	rs    gpio.Level
	rw    gpio.Level
	e     gpio.Level
	dir   charlcd.Direction
	latch uint8

	// Interface width bootstrap.
	fourBit   bool
	resetSeen int

	// Two-nibble assembly and status read phase.
	haveHigh bool
	high     uint8
	readLow  bool

	// Controller state.
	ddram     [128]byte
	cgram     [64]byte
	ac        int
	inCGRAM   bool
	increment bool
	displayOn bool
	cursorOn  bool
	blinkOn   bool

	// Virtual clock.
	now       time.Duration
	busyUntil time.Duration

	faults []string
}

// New returns an emulated module with the given character matrix
// geometry, in its power-on reset state (8-bit interface, display off,
// DDRAM blank).
func New(rows, cols int) *LCD {
	s := &LCD{rows: rows, cols: cols, increment: true}
	for i := range s.ddram {
		s.ddram[i] = ' '
	}
	return s
}

// Delay advances the virtual clock. Hand this to the driver as its
// DelayFunc (Opts.Delay) to co-simulate driver and controller timing.
func (s *LCD) Delay(d time.Duration) {
	if d > 0 {
		s.now += d
	}
}

// SetControl implements charlcd.PinBank.
func (s *LCD) SetControl(line charlcd.ControlLine, level gpio.Level) error {
	switch line {
	case charlcd.RegisterSelect:
		s.rs = level
	case charlcd.ReadWrite:
		if s.rw != level {
			s.readLow = false
		}
		s.rw = level
	case charlcd.Enable:
		s.strobe(level)
	default:
		return fmt.Errorf("lcdsim: invalid control line %d", int(line))
	}
	return nil
}

// strobe handles an edge on the E line. The falling edge latches a
// transfer.
func (s *LCD) strobe(level gpio.Level) {
	rising := level == gpio.High && s.e == gpio.Low
	falling := level == gpio.Low && s.e == gpio.High
	s.e = level
	if rising && s.rw == gpio.High && s.dir != charlcd.FloatingInput {
		s.fault("read strobe while the data field is driven by the host")
	}
	if !falling {
		return
	}
	if s.rw == gpio.High {
		// A status/read cycle consumed one nibble.
		s.readLow = !s.readLow
		return
	}
	if s.dir != charlcd.DriveOutput {
		s.fault("write latch while the data field is floating")
		return
	}
	s.latchNibble(s.latch)
}

// WriteData implements charlcd.PinBank.
func (s *LCD) WriteData(nibble uint8) error {
	if s.dir != charlcd.DriveOutput {
		s.fault("WriteData while the data field is floating")
	}
	s.latch = nibble & 0x0f
	return nil
}

// ReadData implements charlcd.PinBank. It returns the nibble the
// controller drives: the busy flag and address counter during a status
// read, high nibble first.
func (s *LCD) ReadData() (uint8, error) {
	if s.dir != charlcd.FloatingInput {
		s.fault("ReadData while the data field is driven by the host")
	}
	if s.rw != gpio.High {
		s.fault("ReadData with R/W in write mode")
	}
	if s.rs != gpio.Low {
		// Only status reads are emulated; the driver never reads DDRAM.
		return 0, fmt.Errorf("lcdsim: DDRAM read not supported")
	}
	status := uint8(s.ac & 0x7f)
	if s.busy() {
		status |= 0x80
	}
	if s.readLow {
		return status & 0x0f, nil
	}
	return status >> 4, nil
}

// SetDataDirection implements charlcd.PinBank.
func (s *LCD) SetDataDirection(dir charlcd.Direction) error {
	s.dir = dir
	return nil
}

// Halt implements charlcd.PinBank.
func (s *LCD) Halt() error {
	return nil
}

func (s *LCD) String() string {
	return fmt.Sprintf("lcdsim(%dx%d)", s.cols, s.rows)
}

func (s *LCD) busy() bool {
	return s.now < s.busyUntil
}

func (s *LCD) fault(format string, args ...interface{}) {
	s.faults = append(s.faults, fmt.Sprintf(format, args...))
}

// latchNibble feeds one host nibble into the controller.
func (s *LCD) latchNibble(n uint8) {
	if s.busy() {
		s.fault("nibble latched at t=%s while busy until t=%s", s.now, s.busyUntil)
	}
	if !s.fourBit {
		// Power-on state: every strobe transfers a full instruction whose
		// high nibble is on the bus. Only function-set matters here.
		switch n {
		case 0x03:
			s.resetSeen++
		case 0x02:
			if s.resetSeen >= 3 {
				s.fourBit = true
			} else {
				s.fault("4-bit mode selected after %d reset nibbles, need 3", s.resetSeen)
				s.fourBit = true
			}
		default:
			s.fault("unexpected bootstrap nibble %#x", n)
		}
		s.busyUntil = s.now + execDefault
		return
	}
	if !s.haveHigh {
		s.high = n
		s.haveHigh = true
		return
	}
	s.haveHigh = false
	b := s.high<<4 | n
	if s.rs == gpio.High {
		s.writeRAM(b)
	} else {
		s.execute(b)
	}
}

// writeRAM stores a data byte at the address counter and advances it.
func (s *LCD) writeRAM(b byte) {
	if s.inCGRAM {
		s.cgram[s.ac&0x3f] = b
		s.ac = (s.ac + s.step()) & 0x3f
	} else {
		s.ddram[s.ac&0x7f] = b
		s.ac = (s.ac + s.step()) & 0x7f
	}
	s.busyUntil = s.now + execDefault
}

func (s *LCD) step() int {
	if s.increment {
		return 1
	}
	return -1
}

// execute decodes an instruction byte. Decode order follows the
// datasheet: the highest set bit selects the instruction.
func (s *LCD) execute(b byte) {
	dur := execDefault
	switch {
	case b&0x80 != 0: // Set DDRAM address
		s.ac = int(b & 0x7f)
		s.inCGRAM = false
	case b&0x40 != 0: // Set CGRAM address
		s.ac = int(b & 0x3f)
		s.inCGRAM = true
	case b&0x20 != 0: // Function set
		if b&0x10 != 0 {
			s.fault("function set requests 8-bit interface after 4-bit bootstrap")
		}
	case b&0x10 != 0: // Cursor/display shift
		if b&0x08 == 0 {
			delta := -1
			if b&0x04 != 0 {
				delta = 1
			}
			s.ac = (s.ac + delta) & 0x7f
		}
	case b&0x08 != 0: // Display on/off control
		s.displayOn = b&0x04 != 0
		s.cursorOn = b&0x02 != 0
		s.blinkOn = b&0x01 != 0
	case b&0x04 != 0: // Entry mode set
		s.increment = b&0x02 != 0
	case b&0x02 != 0: // Return home
		s.ac = 0
		s.inCGRAM = false
		dur = execHome
	case b&0x01 != 0: // Clear display
		for i := range s.ddram {
			s.ddram[i] = ' '
		}
		s.ac = 0
		s.inCGRAM = false
		s.increment = true
		dur = execClear
	default:
		// 0x00 is a no-op on real silicon.
	}
	s.busyUntil = s.now + dur
}

// Content returns the visible character matrix, one string per row.
// When the display is switched off all cells read as blank.
func (s *LCD) Content() []string {
	rows := make([]string, s.rows)
	for r := range rows {
		line := make([]byte, s.cols)
		for c := range line {
			line[c] = ' '
			if s.displayOn && r < len(rowOffset) {
				line[c] = s.ddram[(rowOffset[r]+c)&0x7f]
			}
		}
		rows[r] = string(line)
	}
	return rows
}

// Glyph returns the 8 CGRAM pattern rows of a custom character slot.
func (s *LCD) Glyph(slot uint8) [8]byte {
	var g [8]byte
	copy(g[:], s.cgram[int(slot&7)*8:])
	return g
}

// CursorPos returns the 0-based row and column of the address counter,
// or -1, -1 when the counter is outside the visible matrix or points
// into CGRAM.
func (s *LCD) CursorPos() (row, col int) {
	if s.inCGRAM {
		return -1, -1
	}
	for r := 0; r < s.rows && r < len(rowOffset); r++ {
		if c := s.ac - rowOffset[r]; c >= 0 && c < s.cols {
			return r, c
		}
	}
	return -1, -1
}

// DisplayOn reports whether the display is switched on.
func (s *LCD) DisplayOn() bool {
	return s.displayOn
}

// CursorOn reports whether the cursor is visible.
func (s *LCD) CursorOn() bool {
	return s.cursorOn
}

// FourBit reports whether the bootstrap completed and the interface is
// in 4-bit mode.
func (s *LCD) FourBit() bool {
	return s.fourBit
}

// Elapsed returns the virtual time consumed so far.
func (s *LCD) Elapsed() time.Duration {
	return s.now
}

// HoldBusy keeps the busy flag asserted for the given additional virtual
// duration. Tests use it to script slow or wedged modules.
func (s *LCD) HoldBusy(d time.Duration) {
	s.busyUntil = s.now + d
}

// Faults returns the protocol violations observed so far. A correct
// driver leaves this empty.
func (s *LCD) Faults() []string {
	return s.faults
}

var _ charlcd.PinBank = &LCD{}
