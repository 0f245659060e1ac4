// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charlcd

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
)

// op is one recorded pin bank operation.
type op struct {
	Kind  string // "ctrl", "write", "read", "dir"
	Line  ControlLine
	Level gpio.Level
	Value uint8
	Dir   Direction
}

// fakeBank records every bank operation and serves a scripted busy flag:
// the first busyFor status samples report busy, later ones report ready.
type fakeBank struct {
	ops     []op
	busyFor int
	reads   int
}

func (f *fakeBank) SetControl(line ControlLine, level gpio.Level) error {
	f.ops = append(f.ops, op{Kind: "ctrl", Line: line, Level: level})
	return nil
}

func (f *fakeBank) WriteData(nibble uint8) error {
	f.ops = append(f.ops, op{Kind: "write", Value: nibble})
	return nil
}

func (f *fakeBank) ReadData() (uint8, error) {
	f.reads++
	v := uint8(0)
	if f.reads <= f.busyFor {
		v = busyBit
	}
	f.ops = append(f.ops, op{Kind: "read", Value: v})
	return v, nil
}

func (f *fakeBank) SetDataDirection(dir Direction) error {
	f.ops = append(f.ops, op{Kind: "dir", Dir: dir})
	return nil
}

func (f *fakeBank) Halt() error    { return nil }
func (f *fakeBank) String() string { return "fakeBank" }

// newTestDev returns a Dev wired to the bank with timing disabled and
// without running the init sequence.
func newTestDev(bank PinBank, attempts int) *Dev {
	return &Dev{
		bank:          bank,
		delay:         func(time.Duration) {},
		readyAttempts: attempts,
		rows:          2,
		cols:          16,
		dir:           DriveOutput,
	}
}

// decodeWrites extracts the nibbles actually strobed into the module,
// skipping the data field clears that bracket each readiness poll.
func decodeWrites(ops []op) []uint8 {
	var out []uint8
	inPoll := false
	for i, o := range ops {
		switch o.Kind {
		case "dir":
			inPoll = o.Dir == FloatingInput
		case "write":
			if inPoll {
				continue
			}
			// The clears bracketing a poll: right before the field is
			// floated, and right after drive is restored.
			if i+1 < len(ops) && ops[i+1].Kind == "dir" && ops[i+1].Dir == FloatingInput {
				continue
			}
			if i > 0 && ops[i-1].Kind == "dir" && ops[i-1].Dir == DriveOutput {
				continue
			}
			out = append(out, o.Value)
		}
	}
	return out
}

// decodeBytes pairs decoded nibbles into bytes, high nibble first.
func decodeBytes(t *testing.T, ops []op) []byte {
	t.Helper()
	nibbles := decodeWrites(ops)
	if len(nibbles)%2 != 0 {
		t.Fatalf("odd nibble count %d: %v", len(nibbles), nibbles)
	}
	var out []byte
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out
}

func TestWriteByteSequence(t *testing.T) {
	bank := &fakeBank{}
	dev := newTestDev(bank, 4)

	if err := dev.writeByte(0xab, modeData); err != nil {
		t.Fatal(err)
	}

	want := []op{
		// Readiness poll: release the bus, select status read.
		{Kind: "write"},
		{Kind: "dir", Dir: FloatingInput},
		{Kind: "ctrl", Line: RegisterSelect, Level: gpio.Low},
		{Kind: "ctrl", Line: ReadWrite, Level: gpio.High},
		// One poll cycle: two strobes, one sample.
		{Kind: "ctrl", Line: Enable, Level: gpio.High},
		{Kind: "read"},
		{Kind: "ctrl", Line: Enable, Level: gpio.Low},
		{Kind: "ctrl", Line: Enable, Level: gpio.High},
		{Kind: "ctrl", Line: Enable, Level: gpio.Low},
		// Turnaround back to write mode.
		{Kind: "ctrl", Line: ReadWrite, Level: gpio.Low},
		{Kind: "dir", Dir: DriveOutput},
		{Kind: "write"},
		// High nibble.
		{Kind: "ctrl", Line: RegisterSelect, Level: gpio.High},
		{Kind: "ctrl", Line: ReadWrite, Level: gpio.Low},
		{Kind: "write", Value: 0x0a},
		{Kind: "ctrl", Line: Enable, Level: gpio.High},
		{Kind: "ctrl", Line: Enable, Level: gpio.Low},
		// Low nibble, no intermediate poll.
		{Kind: "ctrl", Line: RegisterSelect, Level: gpio.High},
		{Kind: "ctrl", Line: ReadWrite, Level: gpio.Low},
		{Kind: "write", Value: 0x0b},
		{Kind: "ctrl", Line: Enable, Level: gpio.High},
		{Kind: "ctrl", Line: Enable, Level: gpio.Low},
	}
	if diff := cmp.Diff(want, bank.ops); diff != "" {
		t.Errorf("writeByte(0xAB, data) sequence difference (-want +got):\n%s", diff)
	}
}

func TestWriteByteDecomposition(t *testing.T) {
	for _, tc := range []struct {
		value byte
		mode  writeMode
		want  []uint8
	}{
		{0xab, modeData, []uint8{0x0a, 0x0b}},
		{0x2c, modeCommand, []uint8{0x02, 0x0c}},
		{0x00, modeCommand, []uint8{0x00, 0x00}},
		{0xff, modeData, []uint8{0x0f, 0x0f}},
	} {
		bank := &fakeBank{}
		dev := newTestDev(bank, 4)
		if err := dev.writeByte(tc.value, tc.mode); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(tc.want, decodeWrites(bank.ops)); diff != "" {
			t.Errorf("writeByte(%#02x) nibbles (-want +got):\n%s", tc.value, diff)
		}
		// RS must carry the mode on both nibbles of the byte. Each nibble
		// write is 5 ops: RS, RW, data, E up, E down.
		for _, ix := range []int{len(bank.ops) - 10, len(bank.ops) - 5} {
			rs := bank.ops[ix]
			if rs.Kind != "ctrl" || rs.Line != RegisterSelect || rs.Level != gpio.Level(tc.mode) {
				t.Errorf("writeByte(%#02x): nibble RS op = %+v, want level %v", tc.value, rs, gpio.Level(tc.mode))
			}
		}
	}
}

func TestWaitUntilReadyPostconditions(t *testing.T) {
	for _, tc := range []struct {
		name    string
		busyFor int
		want    bool
	}{
		{name: "immediately ready", busyFor: 0, want: true},
		{name: "ready after retries", busyFor: 3, want: true},
		{name: "never ready", busyFor: 1 << 30, want: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bank := &fakeBank{busyFor: tc.busyFor}
			dev := newTestDev(bank, 8)
			if got := dev.WaitUntilReady(); got != tc.want {
				t.Errorf("WaitUntilReady() = %v, want %v", got, tc.want)
			}
			// Both exit paths must restore write mode, output drive and a
			// cleared data field.
			n := len(bank.ops)
			want := []op{
				{Kind: "ctrl", Line: ReadWrite, Level: gpio.Low},
				{Kind: "dir", Dir: DriveOutput},
				{Kind: "write"},
			}
			if diff := cmp.Diff(want, bank.ops[n-3:]); diff != "" {
				t.Errorf("postcondition ops (-want +got):\n%s", diff)
			}
			if dev.dir != DriveOutput {
				t.Errorf("dir = %v after poll, want output", dev.dir)
			}
		})
	}
}

func TestWaitUntilReadyBounded(t *testing.T) {
	bank := &fakeBank{busyFor: 1 << 30}
	dev := newTestDev(bank, 7)
	if dev.WaitUntilReady() {
		t.Error("WaitUntilReady() = true for a wedged module")
	}
	if bank.reads != 7 {
		t.Errorf("poll ran %d iterations, want exactly the budget of 7", bank.reads)
	}
}

func TestWaitUntilReadyExactIterations(t *testing.T) {
	// The flag clears on the 5th sample; the poll must stop there, well
	// before the budget.
	bank := &fakeBank{busyFor: 4}
	dev := newTestDev(bank, defaultReadyAttempts)
	if !dev.WaitUntilReady() {
		t.Fatal("WaitUntilReady() = false, want true")
	}
	if bank.reads != 5 {
		t.Errorf("poll ran %d iterations, want 5", bank.reads)
	}
}

func TestWaitUntilReadyTwoStrobesPerSample(t *testing.T) {
	bank := &fakeBank{busyFor: 2}
	dev := newTestDev(bank, 8)
	dev.WaitUntilReady()
	rising := 0
	for _, o := range bank.ops {
		if o.Kind == "ctrl" && o.Line == Enable && o.Level == gpio.High {
			rising++
		}
	}
	if want := 2 * bank.reads; rising != want {
		t.Errorf("%d E strobes for %d samples, want %d (two per sample)", rising, bank.reads, want)
	}
}

func TestNibbleWriteKeepsOutputDirection(t *testing.T) {
	bank := &fakeBank{}
	dev := newTestDev(bank, 4)
	if err := dev.writeNibble(0x05, modeCommand); err != nil {
		t.Fatal(err)
	}
	for _, o := range bank.ops {
		if o.Kind == "dir" {
			t.Errorf("unexpected direction change %+v during a nibble write", o)
		}
	}
	if dev.dir != DriveOutput {
		t.Errorf("dir = %v after nibble write, want output", dev.dir)
	}
}

func TestPositionCommands(t *testing.T) {
	for _, tc := range []struct {
		row, col int
		want     []byte
	}{
		{0, 0, []byte{0x80}},
		{0, 5, []byte{0x85}},
		{1, 0, []byte{0xc0}},
		{1, 15, []byte{0xcf}},
		{2, 3, []byte{0x97}},
		{3, 19, []byte{0xe7}},
		{4, 0, nil},
		{-1, 7, nil},
	} {
		bank := &fakeBank{}
		dev := newTestDev(bank, 4)
		if err := dev.Position(tc.row, tc.col); err != nil {
			t.Fatal(err)
		}
		got := decodeBytes(t, bank.ops)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Position(%d,%d) commands (-want +got):\n%s", tc.row, tc.col, diff)
		}
	}
}

func TestInitScript(t *testing.T) {
	bank := &fakeBank{}
	var delays []time.Duration
	dev := newTestDev(bank, 4)
	dev.delay = func(d time.Duration) { delays = append(delays, d) }

	if err := dev.Start(); err != nil {
		t.Fatal(err)
	}
	if !dev.initialized || !dev.enabled {
		t.Errorf("initialized=%v enabled=%v after Start, want both true", dev.initialized, dev.enabled)
	}

	nibbles := decodeWrites(bank.ops)
	wantBootstrap := []uint8{0x03, 0x03, 0x03, 0x02}
	if diff := cmp.Diff(wantBootstrap, nibbles[:4]); diff != "" {
		t.Errorf("bootstrap nibbles (-want +got):\n%s", diff)
	}

	wantBytes := []byte{0x06, 0x0e, 0x2c, 0x08, 0x01, 0x0c, 0x03, 0x0c}
	var gotBytes []byte
	for i := 4; i+1 < len(nibbles); i += 2 {
		gotBytes = append(gotBytes, nibbles[i]<<4|nibbles[i+1])
	}
	if diff := cmp.Diff(wantBytes, gotBytes); diff != "" {
		t.Errorf("init command bytes (-want +got):\n%s", diff)
	}

	// The millisecond waits of the power-on script, in order. The
	// microsecond bus delays are filtered out.
	var long []time.Duration
	for _, d := range delays {
		if d >= time.Millisecond {
			long = append(long, d)
		}
	}
	wantLong := []time.Duration{
		40 * time.Millisecond,
		5 * time.Millisecond,
		15 * time.Millisecond,
		1 * time.Millisecond,
		5 * time.Millisecond,
		5 * time.Millisecond,
	}
	if diff := cmp.Diff(wantLong, long); diff != "" {
		t.Errorf("init delays (-want +got):\n%s", diff)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	bank := &fakeBank{}
	dev := newTestDev(bank, 4)
	if err := dev.Start(); err != nil {
		t.Fatal(err)
	}
	n := len(bank.ops)
	if err := dev.Start(); err != nil {
		t.Fatal(err)
	}
	// The second Start must only re-enable, not re-run the bootstrap.
	got := decodeBytes(t, bank.ops[n:])
	if diff := cmp.Diff([]byte{cmdDisplayOnCursorOff}, got); diff != "" {
		t.Errorf("second Start bytes (-want +got):\n%s", diff)
	}
}
