// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

var (
	bezelColor = color.NRGBA{R: 0x20, G: 0x24, B: 0x28, A: 255}
	inkColor   = color.NRGBA{R: 0x10, G: 0x18, B: 0x08, A: 255}
)

// Snapshot renders the emulated panel into an image: character cells on
// the backlight color inside a dark bezel. A nil face selects
// basicfont.Face7x13. Intended for docs and for demos that want a PNG of
// the simulated display.
func (s *LCD) Snapshot(face font.Face, backlightOn bool) image.Image {
	if face == nil {
		face = basicfont.Face7x13
	}
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	cellH := m.Height.Ceil() + 2
	cellW := font.MeasureString(face, "M").Ceil() + 2
	const bezel = 8
	width := s.cols*cellW + 2*bezel
	height := s.rows*cellH + 2*bezel

	dc := gg.NewContext(width, height)
	dc.SetColor(bezelColor)
	dc.Clear()

	bl := color.Color(backlightOff)
	if backlightOn {
		bl = backlightColor
	}
	dc.SetColor(bl)
	dc.DrawRectangle(float64(bezel)-2, float64(bezel)-2, float64(s.cols*cellW)+4, float64(s.rows*cellH)+4)
	dc.Fill()

	dc.SetFontFace(face)
	dc.SetColor(inkColor)
	content := s.Content()
	curRow, curCol := s.CursorPos()
	for r, line := range content {
		for c := 0; c < len(line); c++ {
			x := float64(bezel + c*cellW + 1)
			y := float64(bezel + r*cellH + 1 + ascent)
			dc.DrawString(string(line[c]), x, y)
			if s.cursorOn && r == curRow && c == curCol {
				dc.DrawRectangle(x, float64(bezel+(r+1)*cellH-2), float64(cellW-2), 2)
				dc.Fill()
			}
		}
	}
	return dc.Image()
}
