//go:build tinygo

package main

import (
	"time"

	"github.com/harveysanders/psumeter/blink"
	"github.com/harveysanders/psumeter/hal"
)

// Watchdog timeout, comfortably above one blink period.
const watchdogTimeoutMillis = 2000

func main() {
	led := newLED()

	wd, err := hal.StartWatchdog(watchdogTimeoutMillis)
	if err != nil {
		for {
			println("could not start watchdog", err.Error())
			time.Sleep(time.Second)
		}
	}

	b := blink.Blinker{
		LED:        led,
		Delay:      hal.Sleep{},
		HalfPeriod: blink.DefaultHalfPeriod,
		Watchdog:   wd,
		OnToggle: func(on bool) {
			if on {
				println("LED on")
			} else {
				println("LED off")
			}
		},
	}
	b.Run()
}
