// Package hal holds the small set of hardware capabilities the drivers in this
// module are written against: output pins, blocking delays, the ADC register
// set and the watchdog. Boards provide real implementations (see machine.go)
// and tests use the recorder in package haltest.
package hal

import "time"

// Pin is a single digital output line.
type Pin interface {
	Set(high bool)
}

// Delayer blocks the caller for at least d.
type Delayer interface {
	Delay(d time.Duration)
}

// Watchdog is fed once per main loop iteration. A watchdog that is not fed
// resets the chip.
type Watchdog interface {
	Update()
}

// ClockSource selects the conversion clock of the ADC.
type ClockSource uint8

const (
	ClockFosc2 ClockSource = iota
	ClockFosc8
	ClockFosc32
	ClockRC
	ClockFosc4
	ClockFosc16
	ClockFosc64
)

// Reference selects the ADC voltage reference.
type Reference uint8

const (
	ReferenceVDD Reference = iota
	ReferenceExternal
)

// Converter is the register-level view of an on-chip ADC.
type Converter interface {
	// Configure sets the conversion clock and reference and powers the
	// converter on.
	Configure(clock ClockSource, ref Reference)
	SelectChannel(ch uint8)
	// StartConversion sets the GO/DONE flag.
	StartConversion()
	// Busy reports whether the GO/DONE flag is still set.
	Busy() bool
	// Result returns the right-justified result register.
	Result() uint16
}

// Sleep is a Delayer backed by time.Sleep.
type Sleep struct{}

func (Sleep) Delay(d time.Duration) { time.Sleep(d) }

// PinFunc adapts a setter such as machine.Pin.Set or cyw43439 GPIOSet.
type PinFunc func(high bool)

func (f PinFunc) Set(high bool) { f(high) }

// NopWatchdog is used when a program runs without a watchdog.
type NopWatchdog struct{}

func (NopWatchdog) Update() {}
