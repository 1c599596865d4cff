//go:build tinygo && !pico_w

package main

import (
	"log/slog"
	"time"

	"github.com/harveysanders/psumeter/meter"
)

func startTelemetry(*slog.Logger, time.Time) chan<- meter.Reading { return nil }
