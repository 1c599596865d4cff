// Package blink toggles a single output pin at a fixed rate.
package blink

import (
	"time"

	"github.com/harveysanders/psumeter/hal"
)

// DefaultHalfPeriod gives a 1 Hz blink.
const DefaultHalfPeriod = 500 * time.Millisecond

// Blinker drives one LED.
type Blinker struct {
	LED        hal.Pin
	Delay      hal.Delayer
	HalfPeriod time.Duration
	// Watchdog, if set, is fed once per cycle.
	Watchdog hal.Watchdog
	// OnToggle, if set, is called after every pin change. The blinky
	// program uses it to echo the LED state on the serial console.
	OnToggle func(on bool)
}

// Cycle runs one full period: LED on, wait, LED off, wait.
func (b *Blinker) Cycle() {
	half := b.HalfPeriod
	if half <= 0 {
		half = DefaultHalfPeriod
	}
	b.set(true)
	b.Delay.Delay(half)
	b.set(false)
	b.Delay.Delay(half)
	if b.Watchdog != nil {
		b.Watchdog.Update()
	}
}

func (b *Blinker) set(on bool) {
	b.LED.Set(on)
	if b.OnToggle != nil {
		b.OnToggle(on)
	}
}

// Run blinks forever.
func (b *Blinker) Run() {
	for {
		b.Cycle()
	}
}
