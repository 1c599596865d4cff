// Package hd44780 drives an HD44780 character LCD over a bit-banged 4-bit
// bus: four data lines (D4..D7) plus register-select and enable.
//
// Commands are written one nibble per enable pulse. Multi-nibble commands
// (cursor address, function set) are issued as consecutive SendCommand calls,
// high nibble first.
package hd44780

import (
	"time"

	"github.com/harveysanders/psumeter/hal"
)

// Controller timing. All values are minimums.
const (
	PowerOnDelay = 20 * time.Millisecond
	ResetDelay1  = 5 * time.Millisecond
	ResetDelay2  = 11 * time.Millisecond
	CommandPulse = 4 * time.Millisecond
	CharPulse    = 40 * time.Microsecond
)

// DDRAM base addresses, already OR'ed with the set-address instruction.
const (
	Row1Address byte = 0x80
	Row2Address byte = 0xC0
)

// Pins wires the controller to the board.
type Pins struct {
	D4, D5, D6, D7 hal.Pin
	RS             hal.Pin
	EN             hal.Pin
}

// Device is a 4-bit HD44780 connection. It has no read-back path, so every
// operation is fire-and-forget.
type Device struct {
	data  [4]hal.Pin
	rs    hal.Pin
	en    hal.Pin
	delay hal.Delayer
}

// New returns a Device on the given pins. Call Initialize before anything else.
func New(pins Pins, delay hal.Delayer) *Device {
	return &Device{
		data:  [4]hal.Pin{pins.D4, pins.D5, pins.D6, pins.D7},
		rs:    pins.RS,
		en:    pins.EN,
		delay: delay,
	}
}

// SetNibble drives D4..D7 with bits 0..3 of v.
func (d *Device) SetNibble(v byte) {
	for i, p := range d.data {
		p.Set(v&(1<<uint(i)) != 0)
	}
}

// SendCommand writes the low nibble of cmd with RS low and one enable pulse.
func (d *Device) SendCommand(cmd byte) {
	d.rs.Set(false)
	d.SetNibble(cmd)
	d.strobe(CommandPulse)
}

func (d *Device) strobe(width time.Duration) {
	d.en.Set(true)
	d.delay.Delay(width)
	d.en.Set(false)
}

// Initialize runs the controller's power-on handshake and leaves it in 4-bit,
// two-line mode with the display on, cursor off and the address incrementing.
// The order and delays are fixed by the controller's reset requirements.
func (d *Device) Initialize() {
	d.SetNibble(0x00)
	d.delay.Delay(PowerOnDelay)

	// Three resets into 8-bit mode.
	d.SendCommand(0x03)
	d.delay.Delay(ResetDelay1)
	d.SendCommand(0x03)
	d.delay.Delay(ResetDelay2)
	d.SendCommand(0x03)

	// Switch to 4-bit, then function set 0x28.
	d.SendCommand(0x02)
	d.SendCommand(0x02)
	d.SendCommand(0x08)

	// Display on, cursor off.
	d.SendCommand(0x00)
	d.SendCommand(0x0C)

	// Entry mode: increment, no shift.
	d.SendCommand(0x00)
	d.SendCommand(0x06)
}

// Clear blanks the display and homes the cursor.
func (d *Device) Clear() {
	d.SendCommand(0x00)
	d.SendCommand(0x01)
}

// ShiftRight shifts the whole display one cell to the right.
func (d *Device) ShiftRight() {
	d.SendCommand(0x01)
	d.SendCommand(0x0C)
}

// ShiftLeft shifts the whole display one cell to the left.
func (d *Device) ShiftLeft() {
	d.SendCommand(0x01)
	d.SendCommand(0x08)
}

// SetCursor moves the cursor to a 1-based row and column on a one or two row
// display. Rows other than 1 and 2 are ignored, and so is column 0, whose
// address would wrap below the row start into the CGRAM command space.
//
// The address goes out as two separate SendCommand calls, high nibble first.
// This matches the wiring this driver was validated against; do not fold it
// into a single exchange without testing on hardware.
func (d *Device) SetCursor(row, col byte) {
	if col == 0 {
		return
	}
	var addr byte
	switch row {
	case 1:
		addr = Row1Address + col - 1
	case 2:
		addr = Row2Address + col - 1
	default:
		return
	}
	d.SendCommand(addr >> 4)
	d.SendCommand(addr & 0x0F)
}

// PrintChar writes one character at the cursor: RS high, then the high and
// low nibble, each with its own enable pulse.
func (d *Device) PrintChar(c byte) {
	d.rs.Set(true)
	d.SetNibble(c >> 4)
	d.strobe(CharPulse)
	d.SetNibble(c & 0x0F)
	d.strobe(CharPulse)
}

// PrintString writes s one character at a time. A NUL byte ends the string
// early.
func (d *Device) PrintString(s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return
		}
		d.PrintChar(s[i])
	}
}

// Print is PrintString for byte slices, matching the backpack driver's API.
func (d *Device) Print(b []byte) {
	for _, c := range b {
		if c == 0 {
			return
		}
		d.PrintChar(c)
	}
}
