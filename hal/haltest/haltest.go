// Package haltest provides recording doubles for the hal capabilities.
package haltest

import (
	"time"

	"github.com/harveysanders/psumeter/hal"
)

// Kind tells pin writes and delays apart in a recording.
type Kind uint8

const (
	PinWrite Kind = iota
	Delay
)

// Event is one recorded pin write or delay.
type Event struct {
	Kind     Kind
	Pin      string
	High     bool
	Duration time.Duration
}

// Recorder logs pin writes and delays in call order.
type Recorder struct {
	Events []Event
	levels map[string]bool

	// OnPin, if set, is called after every pin write.
	OnPin func(name string, high bool)
}

func NewRecorder() *Recorder {
	return &Recorder{levels: make(map[string]bool)}
}

// Pin returns a named output pin that records into r.
func (r *Recorder) Pin(name string) hal.Pin {
	return hal.PinFunc(func(high bool) {
		r.levels[name] = high
		r.Events = append(r.Events, Event{Kind: PinWrite, Pin: name, High: high})
		if r.OnPin != nil {
			r.OnPin(name, high)
		}
	})
}

func (r *Recorder) Delay(d time.Duration) {
	r.Events = append(r.Events, Event{Kind: Delay, Duration: d})
}

// Level returns the last value written to the named pin.
func (r *Recorder) Level(name string) bool { return r.levels[name] }

// Reset drops the recorded events but keeps pin levels.
func (r *Recorder) Reset() { r.Events = r.Events[:0] }

// Writes returns the recorded writes to the named pin.
func (r *Recorder) Writes(name string) []bool {
	var out []bool
	for _, e := range r.Events {
		if e.Kind == PinWrite && e.Pin == name {
			out = append(out, e.High)
		}
	}
	return out
}

// Delays returns all recorded delays.
func (r *Recorder) Delays() []time.Duration {
	var out []time.Duration
	for _, e := range r.Events {
		if e.Kind == Delay {
			out = append(out, e.Duration)
		}
	}
	return out
}

// Converter is a fake ADC. Values holds the next result per channel and
// BusyPolls sets how many Busy calls report true after each start.
type Converter struct {
	Values    map[uint8]uint16
	BusyPolls int

	Clock      hal.ClockSource
	Ref        hal.Reference
	Configured int
	Selected   []uint8
	Starts     int
	Polls      int

	// OnStart, if set, is called on every StartConversion.
	OnStart func()

	channel uint8
	pending int
}

func (c *Converter) Configure(clock hal.ClockSource, ref hal.Reference) {
	c.Clock, c.Ref = clock, ref
	c.Configured++
}

func (c *Converter) SelectChannel(ch uint8) {
	c.channel = ch
	c.Selected = append(c.Selected, ch)
}

func (c *Converter) StartConversion() {
	c.Starts++
	c.pending = c.BusyPolls
	if c.OnStart != nil {
		c.OnStart()
	}
}

func (c *Converter) Busy() bool {
	c.Polls++
	if c.pending > 0 {
		c.pending--
		return true
	}
	return false
}

func (c *Converter) Result() uint16 { return c.Values[c.channel] }

// Watchdog counts feeds.
type Watchdog struct{ Feeds int }

func (w *Watchdog) Update() { w.Feeds++ }
