package sim

import (
	"log/slog"
	"time"

	"github.com/harveysanders/psumeter/adc"
	"github.com/harveysanders/psumeter/hal"
	"github.com/harveysanders/psumeter/hd44780"
	"github.com/harveysanders/psumeter/hd44780/lcdemu"
	"github.com/harveysanders/psumeter/meter"
)

// Clock is a Delayer that advances virtual time instead of sleeping.
type Clock struct {
	Now time.Duration
}

func (c *Clock) Delay(d time.Duration) { c.Now += d }

// converter feeds the scripted channels through the ADC register interface.
type converter struct {
	channels [3]Channel
	step     int
	ch       uint8
	result   uint16
}

func (c *converter) Configure(hal.ClockSource, hal.Reference) {}

func (c *converter) SelectChannel(ch uint8) { c.ch = ch }

func (c *converter) StartConversion() {
	if int(c.ch) >= len(c.channels) {
		c.result = 0
		return
	}
	c.result = c.channels[c.ch].Code(c.step)
}

func (c *converter) Busy() bool { return false }

func (c *converter) Result() uint16 { return c.result }

// Frame is the display after one step.
type Frame struct {
	Step    int
	Rows    [2]string
	Changed int
	Reading meter.Reading
	// Elapsed is the virtual time spent in delays since power-on.
	Elapsed time.Duration
	// Chars is the number of characters written during this step.
	Chars int
}

// Simulator is a wired meter: driver, emulated panel, scripted ADC.
type Simulator struct {
	scenario *Scenario
	clock    *Clock
	conv     *converter
	lcd      *lcdemu.LCD
	mon      *meter.Monitor
	step     int
}

// New wires a simulator for s. The LCD handshake runs immediately.
func New(s *Scenario, logger *slog.Logger) *Simulator {
	clock := &Clock{}
	conv := &converter{channels: [3]Channel{s.Voltage, s.Current, s.Limit}}
	lcd := lcdemu.New(16)
	dev := hd44780.New(lcd.Pins(), clock)
	dev.Initialize()

	sampler := adc.New(conv, clock)
	sampler.Initialize()

	mon := meter.New(meter.Config{
		Screen:      dev,
		ADC:         sampler,
		Delay:       clock,
		Calibration: s.Calibration.Apply(meter.DefaultCalibration()),
		Logger:      logger,
	})
	return &Simulator{
		scenario: s,
		clock:    clock,
		conv:     conv,
		lcd:      lcd,
		mon:      mon,
	}
}

// Step advances the scripted channels by one step and polls the meter.
func (s *Simulator) Step() Frame {
	s.conv.step = s.step
	chars := s.lcd.Chars
	changed := s.mon.Poll()
	f := Frame{
		Step:    s.step,
		Rows:    [2]string{s.lcd.Row(1), s.lcd.Row(2)},
		Changed: changed,
		Reading: s.mon.Reading(),
		Elapsed: s.clock.Now,
		Chars:   s.lcd.Chars - chars,
	}
	s.clock.Delay(s.scenario.Interval)
	s.step++
	return f
}

// Run executes every step of the scenario and passes each frame to fn.
func (s *Simulator) Run(fn func(Frame)) {
	for i := 0; i < s.scenario.Steps; i++ {
		fn(s.Step())
	}
}

// LCD exposes the emulated panel.
func (s *Simulator) LCD() *lcdemu.LCD { return s.lcd }
