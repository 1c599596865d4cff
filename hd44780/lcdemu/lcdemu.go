// Package lcdemu emulates the parts of an HD44780 controller that a 4-bit
// host driver can observe: the 8-bit/4-bit interface switch, nibble pairing,
// the instruction set and the DDRAM contents of a one or two line display.
//
// The emulator latches the bus on the falling edge of EN, like the real
// controller.
package lcdemu

import (
	"github.com/harveysanders/psumeter/hal"
	"github.com/harveysanders/psumeter/hd44780"
)

const (
	lineLen   = 0x28
	line2Base = 0x40
)

// LCD is an emulated HD44780 panel.
type LCD struct {
	Cols int

	data [4]bool
	rs   bool
	en   bool

	eightBit bool
	pending  bool
	high     byte

	twoLine   bool
	displayOn bool
	cursorOn  bool
	increment bool
	shift     int
	addr      byte
	ddram     [line2Base + lineLen]byte

	// Instructions holds every instruction byte executed, in order.
	Instructions []byte
	// Chars counts data writes.
	Chars int
	// Strobes counts enable pulses.
	Strobes int
}

// New returns a panel in its power-on state: 8-bit interface, blank DDRAM.
func New(cols int) *LCD {
	l := &LCD{Cols: cols, eightBit: true, increment: true}
	l.clear()
	return l
}

// Pins returns driver pins wired to the emulated panel.
func (l *LCD) Pins() hd44780.Pins {
	return hd44780.Pins{
		D4: l.dataPin(0),
		D5: l.dataPin(1),
		D6: l.dataPin(2),
		D7: l.dataPin(3),
		RS: hal.PinFunc(func(high bool) { l.rs = high }),
		EN: hal.PinFunc(l.setEnable),
	}
}

func (l *LCD) dataPin(i int) hal.Pin {
	return hal.PinFunc(func(high bool) { l.data[i] = high })
}

func (l *LCD) setEnable(high bool) {
	falling := l.en && !high
	l.en = high
	if falling {
		l.latch()
	}
}

func (l *LCD) nibble() byte {
	var n byte
	for i, b := range l.data {
		if b {
			n |= 1 << uint(i)
		}
	}
	return n
}

func (l *LCD) latch() {
	l.Strobes++
	n := l.nibble()
	if l.eightBit {
		// Only DB4..DB7 are wired; DB0..DB3 read as zero.
		l.exec(n<<4, l.rs)
		return
	}
	if !l.pending {
		l.high = n
		l.pending = true
		return
	}
	l.pending = false
	l.exec(l.high<<4|n, l.rs)
}

func (l *LCD) exec(b byte, data bool) {
	if data {
		l.write(b)
		return
	}
	l.Instructions = append(l.Instructions, b)
	switch {
	case b&0x80 != 0:
		l.addr = b & 0x7F
	case b&0x40 != 0:
		// CGRAM address, not emulated.
	case b&0x20 != 0:
		l.eightBit = b&0x10 != 0
		l.twoLine = b&0x08 != 0
		l.pending = false
	case b&0x10 != 0:
		right := b&0x04 != 0
		if b&0x08 != 0 {
			if right {
				l.shift--
			} else {
				l.shift++
			}
		} else if right {
			l.addr = next(l.addr)
		} else {
			l.addr = prev(l.addr)
		}
	case b&0x08 != 0:
		l.displayOn = b&0x04 != 0
		l.cursorOn = b&0x02 != 0
	case b&0x04 != 0:
		l.increment = b&0x02 != 0
	case b&0x02 != 0:
		l.addr = 0
		l.shift = 0
	case b == 0x01:
		l.clear()
	}
}

func (l *LCD) clear() {
	for i := range l.ddram {
		l.ddram[i] = ' '
	}
	l.addr = 0
	l.shift = 0
	l.increment = true
}

func (l *LCD) write(c byte) {
	l.Chars++
	if int(l.addr) < len(l.ddram) {
		l.ddram[l.addr] = c
	}
	if l.increment {
		l.addr = next(l.addr)
	} else {
		l.addr = prev(l.addr)
	}
}

func next(a byte) byte {
	switch a {
	case lineLen - 1:
		return line2Base
	case line2Base + lineLen - 1:
		return 0
	}
	return a + 1
}

func prev(a byte) byte {
	switch a {
	case 0:
		return line2Base + lineLen - 1
	case line2Base:
		return lineLen - 1
	}
	return a - 1
}

// FourBit reports whether the controller has switched to the 4-bit interface.
func (l *LCD) FourBit() bool { return !l.eightBit }

// TwoLine reports the line count selected by the last function set.
func (l *LCD) TwoLine() bool { return l.twoLine }

// DisplayOn reports the display-control on bit.
func (l *LCD) DisplayOn() bool { return l.displayOn }

// CursorOn reports the display-control cursor bit.
func (l *LCD) CursorOn() bool { return l.cursorOn }

// Address returns the current DDRAM address counter.
func (l *LCD) Address() byte { return l.addr }

// Row returns the visible text of a 1-based row, taking display shift into
// account.
func (l *LCD) Row(row int) string {
	base := 0
	if row == 2 {
		base = line2Base
	}
	out := make([]byte, l.Cols)
	for i := range out {
		col := ((i+l.shift)%lineLen + lineLen) % lineLen
		out[i] = l.ddram[base+col]
	}
	return string(out)
}

// Screen returns both rows separated by a newline.
func (l *LCD) Screen() string {
	if !l.twoLine {
		return l.Row(1)
	}
	return l.Row(1) + "\n" + l.Row(2)
}
