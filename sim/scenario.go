// Package sim runs the meter's display loop on a host against scripted ADC
// channels and an emulated LCD controller.
package sim

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harveysanders/psumeter/adc"
	"github.com/harveysanders/psumeter/meter"
)

// Waveform kinds.
const (
	KindConstant = "constant"
	KindRamp     = "ramp"
	KindSine     = "sine"
	KindSequence = "sequence"
)

// Channel scripts the raw code of one ADC channel per step.
type Channel struct {
	Kind string `yaml:"kind"`
	// Value is the constant code, or the sine midpoint.
	Value float64 `yaml:"value,omitempty"`
	// From and To bound a ramp over Period steps.
	From float64 `yaml:"from,omitempty"`
	To   float64 `yaml:"to,omitempty"`
	// Amplitude of a sine.
	Amplitude float64 `yaml:"amplitude,omitempty"`
	// Period in steps for ramps and sines.
	Period int `yaml:"period,omitempty"`
	// Values are replayed in order and repeat.
	Values []uint16 `yaml:"values,omitempty"`
}

// Code returns the channel's code at step, clamped to the ADC range.
func (c Channel) Code(step int) uint16 {
	var v float64
	switch c.Kind {
	case KindRamp:
		if c.Period <= 1 {
			v = c.To
			break
		}
		pos := step % c.Period
		v = c.From + (c.To-c.From)*float64(pos)/float64(c.Period-1)
	case KindSine:
		period := c.Period
		if period <= 0 {
			period = 1
		}
		v = c.Value + c.Amplitude*math.Sin(2*math.Pi*float64(step)/float64(period))
	case KindSequence:
		if len(c.Values) == 0 {
			return 0
		}
		v = float64(c.Values[step%len(c.Values)])
	default:
		v = c.Value
	}
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > float64(adc.MaxCode) {
		return adc.MaxCode
	}
	return uint16(v)
}

// Calibration overrides meter.DefaultCalibration field by field.
type Calibration struct {
	VoltsPerCode *float32 `yaml:"volts_per_code,omitempty"`
	DividerRatio *float32 `yaml:"divider_ratio,omitempty"`
	Reference    *float32 `yaml:"reference,omitempty"`
	PullUp       *float32 `yaml:"pull_up,omitempty"`
	LimitFactor  *float32 `yaml:"limit_factor,omitempty"`
	MaxLimit     *float32 `yaml:"max_limit,omitempty"`
}

// Apply returns base with the set fields replaced.
func (c Calibration) Apply(base meter.Calibration) meter.Calibration {
	set := func(dst *float32, src *float32) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.VoltsPerCode, c.VoltsPerCode)
	set(&base.DividerRatio, c.DividerRatio)
	set(&base.Reference, c.Reference)
	set(&base.PullUp, c.PullUp)
	set(&base.LimitFactor, c.LimitFactor)
	set(&base.MaxLimit, c.MaxLimit)
	return base
}

// Scenario is a simulation script.
type Scenario struct {
	Name        string        `yaml:"name"`
	Steps       int           `yaml:"steps"`
	Interval    time.Duration `yaml:"interval"`
	Calibration Calibration   `yaml:"calibration,omitempty"`
	Voltage     Channel       `yaml:"voltage"`
	Current     Channel       `yaml:"current"`
	Limit       Channel       `yaml:"limit"`
}

// Default returns a short scenario that ramps the output voltage while the
// current and limit hold still.
func Default() *Scenario {
	return &Scenario{
		Name:     "ramp",
		Steps:    10,
		Interval: 50 * time.Millisecond,
		Voltage:  Channel{Kind: KindRamp, From: 0, To: 1000, Period: 10},
		Current:  Channel{Kind: KindConstant, Value: 51},
		Limit:    Channel{Kind: KindConstant, Value: 205},
	}
}

// Parse decodes a YAML scenario on top of Default.
func Parse(data []byte) (*Scenario, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads a scenario file. An empty path returns Default.
func Load(path string) (*Scenario, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Validate checks the scenario can run.
func (s *Scenario) Validate() error {
	if s.Steps <= 0 {
		return fmt.Errorf("scenario %q: steps must be positive", s.Name)
	}
	if s.Interval < 0 {
		return fmt.Errorf("scenario %q: negative interval", s.Name)
	}
	for name, c := range map[string]Channel{"voltage": s.Voltage, "current": s.Current, "limit": s.Limit} {
		switch c.Kind {
		case "", KindConstant, KindRamp, KindSine, KindSequence:
		default:
			return fmt.Errorf("scenario %q: channel %s: unknown kind %q", s.Name, name, c.Kind)
		}
	}
	return nil
}

// Marshal encodes the scenario as YAML.
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
