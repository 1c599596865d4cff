package telemetry

import (
	"testing"
	"time"

	"github.com/harveysanders/psumeter/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadMarshal(t *testing.T) {
	p := NewPayload(meter.Reading{
		Voltage: 12.5,
		Current: 0.25,
		Limit:   2.5,
		Raw:     [3]uint16{512, 51, 0},
		Seq:     7,
	}, 3*time.Second)

	b, err := p.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"voltage": 12.5,
		"current": 0.25,
		"limit": 2.5,
		"raw": [512, 51, 0],
		"seq": 7,
		"since_boot_ns": 3000000000
	}`, string(b))
}

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		addr    string
		host    string
		port    uint16
		wantErr bool
	}{
		{addr: "10.0.0.9:1883", host: "10.0.0.9", port: 1883},
		{addr: "broker.local:8883", host: "broker.local", port: 8883},
		{addr: "fe80::1:1883", host: "fe80::1", port: 1883},
		{addr: "broker.local", wantErr: true},
		{addr: ":1883", wantErr: true},
		{addr: "host:", wantErr: true},
		{addr: "host:18x3", wantErr: true},
		{addr: "host:70000", wantErr: true},
		{addr: "host:0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			host, port, err := SplitHostPort(tt.addr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
		})
	}
}
