// Package meter runs the bench supply display: it polls the voltage, current
// and current-limit channels, scales them to physical units and keeps a
// character LCD up to date, redrawing only the cells whose value changed.
package meter

import (
	"io"
	"log/slog"
	"time"

	"github.com/harveysanders/psumeter/hal"
)

// Screen is a character display addressed with 1-based rows and columns.
type Screen interface {
	Clear()
	SetCursor(row, col byte)
	Print(b []byte)
}

// ADC returns a raw code for a channel, blocking until it is converted.
type ADC interface {
	ReadADC(ch uint8) uint16
}

// State is the phase of the display loop.
type State uint8

const (
	StateStartup State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStartup:
		return "startup"
	case StateRunning:
		return "running"
	}
	return "unknown"
}

// Reading is a snapshot of all three channels.
type Reading struct {
	Voltage float32
	Current float32
	Limit   float32
	Raw     [3]uint16
	// Seq counts the readings produced since startup.
	Seq uint32
}

// Config wires a Monitor to its hardware.
type Config struct {
	Screen      Screen
	ADC         ADC
	Delay       hal.Delayer
	Watchdog    hal.Watchdog
	Calibration Calibration
	Layout      [3]Field
	// Interval is slept between polls. Zero polls back to back.
	Interval time.Duration
	Logger   *slog.Logger
	// Readings, if set, receives a Reading every time a field is redrawn.
	// Sends never block; a full channel drops the reading.
	Readings chan<- Reading
}

type cell struct {
	Field
	label   []byte
	convert func(uint16) float32
	last    float32
	raw     uint16
}

// Monitor is the display loop.
type Monitor struct {
	screen   Screen
	adc      ADC
	delay    hal.Delayer
	watchdog hal.Watchdog
	interval time.Duration
	logger   *slog.Logger
	readings chan<- Reading

	state State
	cells [3]cell
	buf   []byte
	seq   uint32
}

// New returns a Monitor in the startup state. A zero Calibration or Layout
// selects the defaults.
func New(cfg Config) *Monitor {
	if cfg.Calibration == (Calibration{}) {
		cfg.Calibration = DefaultCalibration()
	}
	if cfg.Layout == ([3]Field{}) {
		cfg.Layout = DefaultLayout()
	}
	if cfg.Delay == nil {
		cfg.Delay = hal.Sleep{}
	}
	if cfg.Watchdog == nil {
		cfg.Watchdog = hal.NopWatchdog{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m := &Monitor{
		screen:   cfg.Screen,
		adc:      cfg.ADC,
		delay:    cfg.Delay,
		watchdog: cfg.Watchdog,
		interval: cfg.Interval,
		logger:   logger,
		readings: cfg.Readings,
		// Preallocated so redraws don't churn the heap.
		buf: make([]byte, 0, 16),
	}
	cal := cfg.Calibration
	converters := [3]func(uint16) float32{cal.Voltage, cal.Current, cal.CurrentLimit}
	for i, f := range cfg.Layout {
		m.cells[i] = cell{
			Field:   f,
			label:   []byte(f.Label),
			convert: converters[i],
		}
	}
	return m
}

// State returns the current phase.
func (m *Monitor) State() State { return m.state }

// Start initializes the screen, draws the labels and first values and seeds
// the previous-value cache. It moves the Monitor to the running state.
func (m *Monitor) Start() {
	m.screen.Clear()
	for i := range m.cells {
		c := &m.cells[i]
		m.screen.SetCursor(c.Row, c.LabelCol)
		m.screen.Print(c.label)
	}
	for i := range m.cells {
		c := &m.cells[i]
		c.raw = m.adc.ReadADC(c.Channel)
		c.last = Displayed(c.convert(c.raw))
		m.draw(c)
	}
	m.state = StateRunning
	m.logger.Info("meter:started",
		slog.Float64("voltage", float64(m.cells[0].last)),
		slog.Float64("current", float64(m.cells[1].last)),
		slog.Float64("limit", float64(m.cells[2].last)),
	)
	m.emit()
}

// Poll reads every channel once and redraws the fields whose value differs
// from the one on screen. It returns the number of fields redrawn. Poll runs
// Start first if the Monitor is still in the startup state.
func (m *Monitor) Poll() int {
	if m.state == StateStartup {
		m.Start()
		return len(m.cells)
	}
	changed := 0
	for i := range m.cells {
		c := &m.cells[i]
		c.raw = m.adc.ReadADC(c.Channel)
		v := Displayed(c.convert(c.raw))
		if v == c.last {
			continue
		}
		c.last = v
		m.draw(c)
		changed++
		// Info so the serial monitor sees changes at the firmware's level.
		m.logger.Info("meter:update",
			slog.String("field", c.Name),
			slog.Float64("value", float64(v)),
			slog.Uint64("raw", uint64(c.raw)),
		)
	}
	if changed > 0 {
		m.emit()
	}
	return changed
}

// Run starts the display and polls forever, feeding the watchdog once per
// iteration. It never returns.
func (m *Monitor) Run() {
	if m.state == StateStartup {
		m.Start()
		m.watchdog.Update()
	}
	for {
		m.step()
	}
}

func (m *Monitor) step() {
	m.Poll()
	m.watchdog.Update()
	if m.interval > 0 {
		m.delay.Delay(m.interval)
	}
}

func (m *Monitor) draw(c *cell) {
	m.buf = appendValue(m.buf[:0], c.last, c.Unit, c.Width)
	m.screen.SetCursor(c.Row, c.ValueCol)
	m.screen.Print(m.buf)
}

// Reading returns the values currently on screen.
func (m *Monitor) Reading() Reading {
	return Reading{
		Voltage: m.cells[0].last,
		Current: m.cells[1].last,
		Limit:   m.cells[2].last,
		Raw:     [3]uint16{m.cells[0].raw, m.cells[1].raw, m.cells[2].raw},
		Seq:     m.seq,
	}
}

func (m *Monitor) emit() {
	m.seq++
	if m.readings == nil {
		return
	}
	select {
	case m.readings <- m.Reading():
	default:
		m.logger.Debug("meter:reading-dropped", slog.Uint64("seq", uint64(m.seq)))
	}
}
