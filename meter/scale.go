package meter

import "github.com/chewxy/math32"

// Calibration holds the fixed coefficients that turn raw ADC codes into
// physical units.
type Calibration struct {
	// VoltsPerCode is the ADC step at the 5 V reference.
	VoltsPerCode float32
	// DividerRatio is the output voltage divider on channel 0.
	DividerRatio float32
	// Reference is the ADC reference voltage.
	Reference float32
	// PullUp is the fixed resistor of the current-limit divider in ohms.
	PullUp float32
	// LimitFactor divided by the sensed resistance gives the limit in amps.
	LimitFactor float32
	// MaxLimit caps the reported current limit in amps.
	MaxLimit float32
}

// DefaultCalibration returns the coefficients of the reference board.
func DefaultCalibration() Calibration {
	return Calibration{
		VoltsPerCode: 0.00488281,
		DividerRatio: 0.2,
		Reference:    5,
		PullUp:       10000,
		LimitFactor:  800,
		MaxLimit:     2.5,
	}
}

// Volts converts a raw code to the voltage on the ADC pin.
func (c Calibration) Volts(code uint16) float32 {
	return float32(code) * c.VoltsPerCode
}

// Voltage converts a channel 0 code to the output voltage.
func (c Calibration) Voltage(code uint16) float32 {
	return c.Volts(code) / c.DividerRatio
}

// Current converts a channel 1 code to the output current in amps.
func (c Calibration) Current(code uint16) float32 {
	return c.Volts(code)
}

// CurrentLimit converts a channel 2 code to the configured current limit.
func (c Calibration) CurrentLimit(code uint16) float32 {
	return c.LimitFromVolts(c.Volts(code))
}

// LimitFromVolts derives the current limit from the voltage across the
// limit potentiometer. The pot resistance is R = PullUp*v/(Reference-v) and
// the limit is LimitFactor/R, capped at MaxLimit.
//
// At or below 0 V the resistance is zero and the limit saturates at MaxLimit.
// At or above the reference the resistance is unbounded and the limit is 0.
func (c Calibration) LimitFromVolts(v float32) float32 {
	if v <= 0 {
		return c.MaxLimit
	}
	if v >= c.Reference {
		return 0
	}
	r := c.PullUp * v / (c.Reference - v)
	return math32.Min(c.LimitFactor/r, c.MaxLimit)
}

// Displayed rounds v to the two decimals a field shows. Codes that land on
// the same text compare equal and so don't trigger a redraw.
func Displayed(v float32) float32 {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return 0
	}
	return math32.Round(v*100) / 100
}
