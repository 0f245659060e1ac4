// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package charlcd controls Hitachi HD44780 compatible character LCD
// modules over the 4-bit parallel bus, bit-banged through GPIO pins.
//
// Unlike fixed-delay drivers, this driver wires the R/W line and polls
// the controller's busy flag before every byte, switching the four data
// pins between output and input as required. A bounded attempt budget
// keeps a disconnected or miswired module from hanging the host.
//
// The electrical interface is abstracted behind PinBank. GPIOBank works
// with any gpio.Group (host GPIO lines, I/O expanders); a PCF8574 I²C
// backpack constructor is provided. The lcdsim subpackage emulates the
// controller at pin level for host-side development and tests.
//
// Implements periph.io/x/conn/v3/display/TextDisplay and
// display.DisplayBacklight.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package charlcd
