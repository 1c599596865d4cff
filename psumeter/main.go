//go:build tinygo

package main

import (
	"log/slog"
	"machine"
	"time"

	"github.com/harveysanders/psumeter/adc"
	"github.com/harveysanders/psumeter/hal"
	"github.com/harveysanders/psumeter/meter"
)

func main() {
	boot := time.Now()
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	sampler := adc.New(&hal.MachineADC{
		Inputs: []machine.ADC{
			{Pin: voltagePin},
			{Pin: currentPin},
			{Pin: limitPin},
		},
	}, hal.Sleep{})
	sampler.Initialize()

	screen, err := newScreen()
	if err != nil {
		printErrForever(logger, "configure LCD", slog.Any("reason", err))
	}

	readings := startTelemetry(logger, boot)

	// Started last: nothing above feeds it.
	wd, err := hal.StartWatchdog(watchdogTimeoutMillis)
	if err != nil {
		printErrForever(logger, "start watchdog", slog.Any("reason", err))
	}

	mon := meter.New(meter.Config{
		Screen:      screen,
		ADC:         sampler,
		Delay:       hal.Sleep{},
		Watchdog:    wd,
		Calibration: meter.DefaultCalibration(),
		Interval:    pollInterval,
		Logger:      logger,
		Readings:    readings,
	})
	mon.Run()
}

// printErrForever logs msg at 1 Hz so it is not missed by a serial monitor
// that attaches late. It never returns.
func printErrForever(logger *slog.Logger, msg string, args ...any) {
	for {
		logger.Error(msg, args...)
		time.Sleep(time.Second)
	}
}
