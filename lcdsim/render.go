// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"bytes"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Panel colors for the common STN green module.
var (
	backlightColor = color.NRGBA{R: 0x9a, G: 0xcd, B: 0x32, A: 255}
	backlightOff   = color.NRGBA{R: 0x30, G: 0x38, B: 0x20, A: 255}
)

// Render writes the emulated panel to stdout. Output is colorized when
// stdout is a terminal; Windows consoles are handled by go-colorable.
func (s *LCD) Render(backlightOn bool) error {
	useColor := isatty.IsTerminal(os.Stdout.Fd())
	return s.RenderTo(colorable.NewColorableStdout(), backlightOn, useColor)
}

// RenderTo writes the emulated panel to w, with ANSI colors when
// useColor is set: dark characters on the backlight color, the cursor
// cell inverted, and a backlight strip below the matrix rendered through
// the ansi256 palette.
func (s *LCD) RenderTo(w io.Writer, backlightOn, useColor bool) error {
	var buf bytes.Buffer
	content := s.Content()
	curRow, curCol := s.CursorPos()

	buf.WriteString("+" + strings.Repeat("-", s.cols) + "+\n")
	for r, line := range content {
		buf.WriteString("|")
		if !useColor {
			buf.WriteString(line)
		} else {
			buf.WriteString("\033[30;102m")
			for c := 0; c < len(line); c++ {
				if s.cursorOn && r == curRow && c == curCol {
					buf.WriteString("\033[7m")
					buf.WriteByte(line[c])
					buf.WriteString("\033[27m")
				} else {
					buf.WriteByte(line[c])
				}
			}
			buf.WriteString("\033[0m")
		}
		buf.WriteString("|\n")
	}
	buf.WriteString("+" + strings.Repeat("-", s.cols) + "+\n")

	bl := backlightOff
	if backlightOn {
		bl = backlightColor
	}
	if useColor {
		for i := 0; i < s.cols+2; i++ {
			buf.WriteString(ansi256.Default.Block(bl))
		}
		buf.WriteString("\033[0m")
	}
	buf.WriteString("\n")
	_, err := buf.WriteTo(w)
	return err
}
