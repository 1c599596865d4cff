//go:build tinygo

// lcdcheck exercises the 4-bit LCD wiring: it runs the cold-start handshake,
// prints a banner and then walks a marker across the second row while
// shifting the display back and forth.
package main

import (
	"machine"
	"time"

	"github.com/harveysanders/psumeter/hal"
	"github.com/harveysanders/psumeter/hd44780"
)

func main() {
	lcd := hd44780.New(hd44780.Pins{
		D4: hal.OutputPin(machine.GP6),
		D5: hal.OutputPin(machine.GP7),
		D6: hal.OutputPin(machine.GP8),
		D7: hal.OutputPin(machine.GP9),
		RS: hal.OutputPin(machine.GP10),
		EN: hal.OutputPin(machine.GP11),
	}, hal.Sleep{})

	println("initializing LCD...")
	lcd.Initialize()
	lcd.Clear()
	lcd.SetCursor(1, 1)
	lcd.PrintString("Hello, TinyGo!")

	for {
		for col := byte(1); col <= 16; col++ {
			lcd.SetCursor(2, col)
			lcd.PrintChar('*')
			time.Sleep(150 * time.Millisecond)
			lcd.SetCursor(2, col)
			lcd.PrintChar(' ')
		}
		for i := 0; i < 4; i++ {
			lcd.ShiftLeft()
			time.Sleep(300 * time.Millisecond)
		}
		for i := 0; i < 4; i++ {
			lcd.ShiftRight()
			time.Sleep(300 * time.Millisecond)
		}
		println("done..")
	}
}
