// Package backpack lets the meter drive an HD44780 through a PCF8574 I2C
// backpack instead of the 4-bit GPIO bus.
//
// Example usage:
//
//	screen := backpack.New(machine.I2C0, backpack.DefaultAddress, 16, 2)
//	mon := meter.New(meter.Config{Screen: screen, ...})
package backpack

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"
)

// Common backpack addresses: PCF8574 and PCF8574A.
const (
	DefaultAddress   uint8 = 0x27
	AlternateAddress uint8 = 0x3F
)

// Screen is a 1-based row/column view over an hd44780i2c.Device.
type Screen struct {
	device  hd44780i2c.Device
	rows    byte
	columns byte
}

// New configures the backpack at addr for a display of the given size.
func New(bus drivers.I2C, addr uint8, columns, rows byte) *Screen {
	dev := hd44780i2c.New(bus, addr)
	dev.Configure(hd44780i2c.Config{
		Width:  columns,
		Height: rows,
	})
	return &Screen{
		device:  dev,
		rows:    rows,
		columns: columns,
	}
}

func (s *Screen) Clear() {
	s.device.ClearDisplay()
}

// SetCursor moves to a 1-based row and column. Positions off the panel are
// ignored.
func (s *Screen) SetCursor(row, col byte) {
	if row < 1 || row > s.rows || col < 1 || col > s.columns {
		return
	}
	s.device.SetCursor(col-1, row-1)
}

// Print writes b at the cursor, cut at the panel width.
func (s *Screen) Print(b []byte) {
	if len(b) > int(s.columns) {
		b = b[:s.columns]
	}
	s.device.Print(b)
}
