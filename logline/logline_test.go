package logline

import (
	"bufio"
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harveysanders/psumeter/hal/haltest"
	"github.com/harveysanders/psumeter/meter"
)

func TestParse(t *testing.T) {
	l, err := Parse(`time=2024-01-01T00:00:01.000Z level=INFO msg=meter:started voltage=12.5 current=0.25 limit=0.32`)
	require.NoError(t, err)

	assert.Equal(t, "INFO", l.Level)
	assert.Equal(t, "meter:started", l.Msg)
	v, ok := l.Float("voltage")
	assert.True(t, ok)
	assert.InDelta(t, 12.5, v, 1e-9)
	_, ok = l.Float("missing")
	assert.False(t, ok)
}

func TestParseQuoted(t *testing.T) {
	l, err := Parse(`level=ERROR msg="configure LCD" reason="no \"ack\" from panel"`)
	require.NoError(t, err)

	assert.Equal(t, "configure LCD", l.Msg)
	assert.Equal(t, `no "ack" from panel`, l.Attrs["reason"])
}

func TestParseRejectsPlainOutput(t *testing.T) {
	for _, s := range []string{
		"LED on",
		"checking I2C address...",
		"",
		"level=INFO voltage=1",
		`msg="unterminated`,
	} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrNotRecord, s)
	}
}

// The parser has to read what the firmware's logger writes.
func TestParseSlogOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("meter:update",
		slog.String("field", "limit"),
		slog.Float64("value", 0.32),
		slog.Uint64("raw", 205),
	)

	l, err := Parse(buf.String())
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", l.Level)
	assert.Equal(t, "limit", l.Attrs["field"])
	assert.Equal(t, "205", l.Attrs["raw"])
}

// meterLog runs a Monitor with the firmware's logger settings through a
// startup and two changes, returning the console output.
func meterLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	adc := codes{0: 512, 1: 51, 2: 205}
	m := meter.New(meter.Config{
		Screen: nopScreen{},
		ADC:    adc,
		Delay:  haltest.NewRecorder(),
		Logger: logger,
	})
	m.Start()
	adc[1] = 100
	require.Equal(t, 1, m.Poll())
	adc[0] = 1000
	require.Equal(t, 1, m.Poll())
	logger.Info("mqtt:connected", slog.String("topic", "psumeter/readings"))
	return &buf
}

type codes map[uint8]uint16

func (c codes) ReadADC(ch uint8) uint16 { return c[ch] }

type nopScreen struct{}

func (nopScreen) Clear()                  {}
func (nopScreen) SetCursor(row, col byte) {}
func (nopScreen) Print(b []byte)          {}

func TestDisplayApply(t *testing.T) {
	var d Display
	var applied int
	sc := bufio.NewScanner(meterLog(t))
	for sc.Scan() {
		l, err := Parse(sc.Text())
		require.NoError(t, err)
		if d.Apply(l) {
			applied++
		}
	}
	require.NoError(t, sc.Err())

	assert.Equal(t, 3, applied)
	assert.InDelta(t, 24.41, d.Voltage, 1e-4)
	assert.InDelta(t, 0.49, d.Current, 1e-4)
	assert.InDelta(t, 0.32, d.Limit, 1e-4)
	assert.Equal(t, 2, d.Updates)
}

func TestDisplayApplyUnknownField(t *testing.T) {
	d := Display{Voltage: 1}
	l, err := Parse("level=INFO msg=meter:update field=bogus value=1")
	require.NoError(t, err)

	assert.False(t, d.Apply(l))
	assert.Equal(t, Display{Voltage: 1}, d)
}
