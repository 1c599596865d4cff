// Package adc samples the on-chip analog-to-digital converter one channel at
// a time.
package adc

import (
	"time"

	"github.com/harveysanders/psumeter/hal"
)

const (
	// AcquisitionDelay lets the sample-and-hold capacitor charge after a
	// channel switch.
	AcquisitionDelay = 2 * time.Millisecond

	// Resolution is the converter width in bits.
	Resolution = 10
	// MaxCode is the largest code Read returns.
	MaxCode uint16 = 1<<Resolution - 1

	channelMask = 0x07
)

// Sampler reads 10-bit codes from a Converter.
type Sampler struct {
	conv  hal.Converter
	delay hal.Delayer
	clock hal.ClockSource
	ref   hal.Reference
}

// New returns a Sampler clocked at Fosc/16 against the VDD reference.
func New(conv hal.Converter, delay hal.Delayer) *Sampler {
	return &Sampler{
		conv:  conv,
		delay: delay,
		clock: hal.ClockFosc16,
		ref:   hal.ReferenceVDD,
	}
}

// Initialize configures the converter clock and reference and powers it on.
// It is called once at startup.
func (s *Sampler) Initialize() {
	s.conv.Configure(s.clock, s.ref)
}

// Read converts channel ch and returns the result. Channel numbers wrap at
// eight like the hardware channel-select field.
//
// Read busy-waits on the converter with no timeout; a converter that never
// finishes is left to the watchdog.
func (s *Sampler) Read(ch uint8) uint16 {
	s.conv.SelectChannel(ch & channelMask)
	s.delay.Delay(AcquisitionDelay)
	s.conv.StartConversion()
	for s.conv.Busy() {
	}
	return s.conv.Result() & MaxCode
}

// ReadADC is Read under the name used by the display loop's capability set.
func (s *Sampler) ReadADC(ch uint8) uint16 { return s.Read(ch) }
