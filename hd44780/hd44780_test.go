package hd44780_test

import (
	"testing"
	"time"

	"github.com/harveysanders/psumeter/hal/haltest"
	"github.com/harveysanders/psumeter/hd44780"
	"github.com/harveysanders/psumeter/hd44780/lcdemu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exchange is one enable pulse as seen on the bus.
type exchange struct {
	rs     bool
	nibble byte
	pulse  time.Duration
}

func newRecorded() (*hd44780.Device, *haltest.Recorder) {
	rec := haltest.NewRecorder()
	dev := hd44780.New(hd44780.Pins{
		D4: rec.Pin("D4"),
		D5: rec.Pin("D5"),
		D6: rec.Pin("D6"),
		D7: rec.Pin("D7"),
		RS: rec.Pin("RS"),
		EN: rec.Pin("EN"),
	}, rec)
	return dev, rec
}

// exchanges replays the recording and returns the bus state latched on every
// falling edge of EN, together with the time EN was held high.
func exchanges(rec *haltest.Recorder) []exchange {
	levels := map[string]bool{}
	var out []exchange
	var high bool
	var width time.Duration
	for _, e := range rec.Events {
		if e.Kind == haltest.Delay {
			if high {
				width += e.Duration
			}
			continue
		}
		if e.Pin == "EN" {
			if e.High && !high {
				width = 0
			}
			if !e.High && high {
				var n byte
				for i, p := range []string{"D4", "D5", "D6", "D7"} {
					if levels[p] {
						n |= 1 << uint(i)
					}
				}
				out = append(out, exchange{rs: levels["RS"], nibble: n, pulse: width})
			}
			high = e.High
			continue
		}
		levels[e.Pin] = e.High
	}
	return out
}

func nibbles(ex []exchange) []byte {
	out := make([]byte, len(ex))
	for i, e := range ex {
		out[i] = e.nibble
	}
	return out
}

func TestSetNibble(t *testing.T) {
	dev, rec := newRecorded()
	dev.SetNibble(0xA5)

	assert.True(t, rec.Level("D4"))
	assert.False(t, rec.Level("D5"))
	assert.True(t, rec.Level("D6"))
	assert.False(t, rec.Level("D7"))
	assert.Empty(t, rec.Writes("EN"))
}

func TestSendCommand(t *testing.T) {
	dev, rec := newRecorded()
	dev.SendCommand(0x0C)

	ex := exchanges(rec)
	require.Len(t, ex, 1)
	assert.False(t, ex[0].rs)
	assert.Equal(t, byte(0x0C), ex[0].nibble)
	assert.GreaterOrEqual(t, ex[0].pulse, hd44780.CommandPulse)
	assert.Equal(t, []bool{false}, rec.Writes("RS"))
	assert.False(t, rec.Level("EN"))
}

func TestSendCommandUsesLowNibbleOnly(t *testing.T) {
	dev, rec := newRecorded()
	dev.SendCommand(0xF3)

	ex := exchanges(rec)
	require.Len(t, ex, 1)
	assert.Equal(t, byte(0x03), ex[0].nibble)
}

func TestSetCursor(t *testing.T) {
	tests := []struct {
		name string
		row  byte
		col  byte
		addr byte
	}{
		{name: "row 1 col 1", row: 1, col: 1, addr: 0x80},
		{name: "row 1 col 16", row: 1, col: 16, addr: 0x8F},
		{name: "row 2 col 1", row: 2, col: 1, addr: 0xC0},
		{name: "row 2 col 7", row: 2, col: 7, addr: 0xC6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, rec := newRecorded()
			dev.SetCursor(tt.row, tt.col)

			ex := exchanges(rec)
			require.Len(t, ex, 2)
			assert.Equal(t, []byte{tt.addr >> 4, tt.addr & 0x0F}, nibbles(ex))
			for _, e := range ex {
				assert.False(t, e.rs)
				assert.GreaterOrEqual(t, e.pulse, hd44780.CommandPulse)
			}
		})
	}
}

func TestSetCursorIgnoresUnknownRow(t *testing.T) {
	dev, rec := newRecorded()
	dev.SetCursor(3, 1)
	dev.SetCursor(0, 1)
	dev.SetCursor(1, 0)
	dev.SetCursor(2, 0)
	assert.Empty(t, rec.Events)
}

func TestPrintChar(t *testing.T) {
	for _, c := range []byte{0x00, 'A', 0x7F, 0xFF} {
		dev, rec := newRecorded()
		dev.PrintChar(c)

		ex := exchanges(rec)
		require.Len(t, ex, 2, "char %#x", c)
		assert.Equal(t, []byte{c >> 4, c & 0x0F}, nibbles(ex))
		for _, e := range ex {
			assert.True(t, e.rs)
			assert.GreaterOrEqual(t, e.pulse, hd44780.CharPulse)
		}
		assert.Equal(t, []bool{true}, rec.Writes("RS"))
	}
}

func TestPrintStringStopsAtNUL(t *testing.T) {
	dev, rec := newRecorded()
	dev.PrintString("ok\x00ignored")

	ex := exchanges(rec)
	assert.Len(t, ex, 4)
}

func TestInitializeSequence(t *testing.T) {
	dev, rec := newRecorded()
	dev.Initialize()

	ex := exchanges(rec)
	assert.Equal(t,
		[]byte{0x3, 0x3, 0x3, 0x2, 0x2, 0x8, 0x0, 0xC, 0x0, 0x6},
		nibbles(ex))
	for _, e := range ex {
		assert.False(t, e.rs)
	}

	// The power-on delay comes before the first pulse, and the reset
	// delays sit between the first three pulses.
	var gaps []time.Duration
	var gap time.Duration
	var enHigh bool
	for _, e := range rec.Events {
		switch {
		case e.Kind == haltest.Delay && !enHigh:
			gap += e.Duration
		case e.Kind == haltest.PinWrite && e.Pin == "EN":
			if e.High {
				gaps = append(gaps, gap)
				gap = 0
			}
			enHigh = e.High
		}
	}
	require.Len(t, gaps, 10)
	assert.GreaterOrEqual(t, gaps[0], hd44780.PowerOnDelay)
	assert.GreaterOrEqual(t, gaps[1], hd44780.ResetDelay1)
	assert.GreaterOrEqual(t, gaps[2], hd44780.ResetDelay2)
}

func TestInitializeOnController(t *testing.T) {
	lcd := lcdemu.New(16)
	dev := hd44780.New(lcd.Pins(), haltest.NewRecorder())
	dev.Initialize()

	assert.True(t, lcd.FourBit())
	assert.True(t, lcd.TwoLine())
	assert.True(t, lcd.DisplayOn())
	assert.False(t, lcd.CursorOn())
	assert.Equal(t, []byte{0x30, 0x30, 0x30, 0x20, 0x28, 0x0C, 0x06}, lcd.Instructions)
}

func TestWriteTextOnController(t *testing.T) {
	lcd := lcdemu.New(16)
	dev := hd44780.New(lcd.Pins(), haltest.NewRecorder())
	dev.Initialize()
	dev.Clear()

	dev.SetCursor(1, 1)
	dev.PrintString("Voltage")
	dev.SetCursor(2, 5)
	dev.Print([]byte("12.50"))

	assert.Equal(t, "Voltage         ", lcd.Row(1))
	assert.Equal(t, "    12.50       ", lcd.Row(2))

	dev.Clear()
	assert.Equal(t, "                ", lcd.Row(1))
	assert.Equal(t, byte(0), lcd.Address())
}

func TestShiftOnController(t *testing.T) {
	lcd := lcdemu.New(4)
	dev := hd44780.New(lcd.Pins(), haltest.NewRecorder())
	dev.Initialize()
	dev.SetCursor(1, 1)
	dev.PrintString("abcd")

	dev.ShiftLeft()
	assert.Equal(t, "bcd ", lcd.Row(1))
	dev.ShiftRight()
	dev.ShiftRight()
	assert.Equal(t, " abc", lcd.Row(1))
}
