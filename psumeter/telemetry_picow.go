//go:build tinygo && pico_w

package main

import (
	"log/slog"
	"time"

	"github.com/harveysanders/psumeter/meter"
	"github.com/harveysanders/psumeter/netlink"
	"github.com/harveysanders/psumeter/telemetry"
)

// Set with -ldflags "-X main.ssid=... -X main.pass=...".
var (
	ssid       string
	pass       string
	brokerAddr = "10.0.0.9:1883"
	brokerUser string
	brokerPass string
)

// startTelemetry brings the network up in the background and publishes
// readings from the returned channel. The display loop never waits on it.
func startTelemetry(logger *slog.Logger, boot time.Time) chan<- meter.Reading {
	// Sized for a few seconds of changes while the broker reconnects.
	readings := make(chan meter.Reading, 10)
	go func() {
		radio, err := netlink.NewRadio(logger)
		if err != nil {
			logger.Error("telemetry:disabled", slog.Any("reason", err))
			return
		}
		stack, err := netlink.Up(radio, netlink.Config{
			SSID:     ssid,
			Password: pass,
			Hostname: "psumeter",
			Logger:   logger,
		})
		if err != nil {
			logger.Error("telemetry:disabled", slog.Any("reason", err))
			return
		}
		pub := telemetry.Publisher{
			ID:       "psumeter",
			Topic:    telemetry.DefaultTopic,
			Timeout:  5 * time.Second,
			Username: brokerUser,
			Password: brokerPass,
			Logger:   logger,
			Boot:     boot,
		}
		err = pub.Run(stack, brokerAddr, readings)
		logger.Error("telemetry:stopped", slog.Any("reason", err))
	}()
	return readings
}
