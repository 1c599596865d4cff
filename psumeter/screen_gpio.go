//go:build tinygo && !i2clcd

package main

import (
	"github.com/harveysanders/psumeter/hal"
	"github.com/harveysanders/psumeter/hd44780"
	"github.com/harveysanders/psumeter/meter"
)

func newScreen() (meter.Screen, error) {
	lcd := hd44780.New(hd44780.Pins{
		D4: hal.OutputPin(lcdD4),
		D5: hal.OutputPin(lcdD5),
		D6: hal.OutputPin(lcdD6),
		D7: hal.OutputPin(lcdD7),
		RS: hal.OutputPin(lcdRS),
		EN: hal.OutputPin(lcdEN),
	}, hal.Sleep{})
	lcd.Initialize()
	return lcd, nil
}
