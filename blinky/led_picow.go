//go:build tinygo && pico_w

package main

import (
	"time"

	"github.com/harveysanders/psumeter/hal"
	"github.com/harveysanders/psumeter/netlink"
)

// The Pico W's onboard LED is wired to the radio, not the RP2040.
func newLED() hal.Pin {
	radio, err := netlink.NewRadio(nil)
	if err != nil {
		for {
			println("could not init radio:", err.Error())
			time.Sleep(time.Second)
		}
	}
	return netlink.LED(radio)
}
