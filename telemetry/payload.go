// Package telemetry publishes meter readings to an MQTT broker as JSON.
package telemetry

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/harveysanders/psumeter/meter"
)

// DefaultTopic is where readings are published.
const DefaultTopic = "psumeter/readings"

// Payload is the JSON body of one published reading.
type Payload struct {
	Voltage   float32       `json:"voltage"`
	Current   float32       `json:"current"`
	Limit     float32       `json:"limit"`
	Raw       [3]uint16     `json:"raw"`
	Seq       uint32        `json:"seq"`
	SinceBoot time.Duration `json:"since_boot_ns"`
}

// NewPayload stamps r with the time since boot.
func NewPayload(r meter.Reading, sinceBoot time.Duration) Payload {
	return Payload{
		Voltage:   r.Voltage,
		Current:   r.Current,
		Limit:     r.Limit,
		Raw:       r.Raw,
		Seq:       r.Seq,
		SinceBoot: sinceBoot,
	}
}

// Marshal encodes p as JSON.
func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// SplitHostPort splits a broker address of the form host:port. The last
// colon separates the port so bracket-less IPv6 hosts still parse.
func SplitHostPort(addr string) (host string, port uint16, err error) {
	colon := -1
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			colon = i
			break
		}
	}
	if colon == -1 {
		return "", 0, errors.New("missing port in address")
	}
	host = addr[:colon]
	if host == "" {
		return "", 0, errors.New("empty host")
	}
	port, err = parsePort(addr[colon+1:])
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

func parsePort(s string) (uint16, error) {
	if s == "" {
		return 0, errors.New("empty port")
	}
	var port uint32
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errors.New("invalid port " + s)
		}
		port = port*10 + uint32(s[i]-'0')
		if port > 0xFFFF {
			return 0, errors.New("port out of range " + s)
		}
	}
	if port == 0 {
		return 0, errors.New("port out of range " + s)
	}
	return uint16(port), nil
}
