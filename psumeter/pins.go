//go:build tinygo

package main

import (
	"machine"
	"time"
)

const (
	// LCD 4-bit bus.
	lcdD4 = machine.GP6
	lcdD5 = machine.GP7
	lcdD6 = machine.GP8
	lcdD7 = machine.GP9
	lcdRS = machine.GP10
	lcdEN = machine.GP11

	// I2C backpack, used with -tags=i2clcd.
	i2cSDA = machine.GP4
	i2cSCL = machine.GP5

	// ADC inputs: output voltage, output current, current-limit pot.
	voltagePin = machine.ADC0
	currentPin = machine.ADC1
	limitPin   = machine.ADC2

	lcdColumns = 16
	lcdRows    = 2

	// Long enough to cover the LCD cold start and one full poll.
	watchdogTimeoutMillis = 2000

	pollInterval = 50 * time.Millisecond
)
