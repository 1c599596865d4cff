package meter

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestVoltage(t *testing.T) {
	cal := DefaultCalibration()

	assert.InDelta(t, 0.0, cal.Voltage(0), 1e-6)
	assert.InDelta(t, 12.50, cal.Voltage(512), 0.001)
	assert.InDelta(t, 1023*0.00488281/0.2, cal.Voltage(1023), 0.001)
}

func TestCurrent(t *testing.T) {
	cal := DefaultCalibration()

	assert.InDelta(t, 2.50, cal.Current(512), 0.001)
	assert.InDelta(t, 0.249, cal.Current(51), 0.001)
}

func TestLimitFromVolts(t *testing.T) {
	cal := DefaultCalibration()

	tests := []struct {
		name string
		v    float32
		want float32
	}{
		{name: "one volt", v: 1.0, want: 0.32},
		{name: "half reference", v: 2.5, want: 0.08},
		{name: "clamped", v: 0.1, want: 2.5},
		{name: "zero", v: 0, want: 2.5},
		{name: "negative", v: -1, want: 2.5},
		{name: "at reference", v: 5, want: 0},
		{name: "above reference", v: 5.5, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cal.LimitFromVolts(tt.v), 1e-4)
		})
	}
}

func TestCurrentLimitNeverExceedsMax(t *testing.T) {
	cal := DefaultCalibration()
	for code := uint16(0); code <= 1023; code++ {
		got := cal.CurrentLimit(code)
		assert.LessOrEqual(t, got, cal.MaxLimit, "code %d", code)
		assert.GreaterOrEqual(t, got, float32(0), "code %d", code)
	}
}

func TestDisplayed(t *testing.T) {
	cal := DefaultCalibration()

	assert.Equal(t, float32(12.5), Displayed(cal.Voltage(512)))
	assert.Equal(t, float32(0.25), Displayed(cal.Current(51)))
	assert.Equal(t, Displayed(cal.Current(51)), Displayed(cal.Current(52)))
	assert.NotEqual(t, Displayed(cal.Current(51)), Displayed(cal.Current(53)))
	assert.Equal(t, float32(0), Displayed(math32.NaN()))
	assert.Equal(t, float32(0), Displayed(math32.Inf(1)))
}

func TestAppendValue(t *testing.T) {
	tests := []struct {
		name  string
		v     float32
		unit  string
		width int
		want  string
	}{
		{name: "exact width", v: 12.4999936, unit: "V", width: 6, want: "12.50V"},
		{name: "padded", v: 0.32, unit: "A", width: 6, want: "0.32A "},
		{name: "cut", v: 123.456, unit: "V", width: 5, want: "123.4"},
		{name: "no width", v: 1, unit: "", width: 0, want: "1.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(appendValue(nil, tt.v, tt.unit, tt.width)))
		})
	}
}

func TestAppendValueKeepsPrefix(t *testing.T) {
	buf := []byte("x=")
	assert.Equal(t, "x=2.50A", string(appendValue(buf, 2.5, "A", 5)))
}
