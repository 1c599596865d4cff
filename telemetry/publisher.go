package telemetry

import (
	"io"
	"log/slog"
	"time"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultKeepAlive  = 30 * time.Second
	DefaultTCPBufSize = 2030 // MTU - ethhdr - iphdr - tcphdr
)

// Publisher sends readings to one broker over a single TCP connection,
// reconnecting whenever the connection drops.
type Publisher struct {
	ID    string
	Topic string
	// Timeout bounds the MQTT connect and each publish.
	Timeout    time.Duration
	TCPBufSize int
	// KeepAlive is how often the client services the connection when no
	// readings arrive.
	KeepAlive time.Duration
	Username  string
	Password  string
	Logger    *slog.Logger
	// Boot is subtracted from the publish time to stamp payloads.
	Boot time.Time
}

func (p *Publisher) setDefaults() {
	if p.Topic == "" {
		p.Topic = DefaultTopic
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.KeepAlive <= 0 {
		p.KeepAlive = DefaultKeepAlive
	}
	if p.TCPBufSize <= 0 {
		p.TCPBufSize = DefaultTCPBufSize
	}
	if p.Logger == nil {
		p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}
