//go:build tinygo && !pico_w

package main

import (
	"machine"

	"github.com/harveysanders/psumeter/hal"
)

func newLED() hal.Pin {
	return hal.OutputPin(machine.GP15)
}
