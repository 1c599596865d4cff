//go:build tinygo

package telemetry

import (
	"errors"
	"io"
	"log/slog"
	"net/netip"
	"runtime"
	"time"

	"github.com/soypat/lneto/tcp"
	mqtt "github.com/soypat/natiu-mqtt"

	"github.com/harveysanders/psumeter/meter"
	"github.com/harveysanders/psumeter/netlink"
)

// Run resolves addr, connects and publishes every reading received on
// readings. It only returns on configuration errors.
func (p *Publisher) Run(stack *netlink.Stack, addr string, readings <-chan meter.Reading) error {
	const pollTime = 5 * time.Millisecond
	p.setDefaults()

	host, port, err := SplitHostPort(addr)
	if err != nil {
		return errors.New("broker address " + addr + ": " + err.Error())
	}
	lstack := stack.Lneto()
	rstack := lstack.StackRetrying(pollTime)

	brokerIP, err := netip.ParseAddr(host)
	if err != nil {
		p.Logger.Info("dns:resolving", slog.String("host", host))
		addrs, err := rstack.DoLookupIP(host, 5*time.Second, 3)
		if err != nil {
			return errors.New("dns lookup " + host + ": " + err.Error())
		}
		if len(addrs) == 0 {
			return errors.New("dns lookup " + host + ": no addresses")
		}
		brokerIP = addrs[0]
	}
	broker := netip.AddrPortFrom(brokerIP, port)

	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1024)},
		OnPub: func(_ mqtt.Header, _ mqtt.VariablesPublish, _ io.Reader) error {
			return nil
		},
	})
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(p.ID))
	if p.Username != "" {
		varconn.Username = []byte(p.Username)
		if p.Password != "" {
			varconn.Password = []byte(p.Password)
		}
	}
	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		return errors.New("publish flags: " + err.Error())
	}
	vars := mqtt.VariablesPublish{TopicName: []byte(p.Topic)}

	var conn tcp.Conn
	err = conn.Configure(tcp.ConnConfig{
		RxBuf:             make([]byte, p.TCPBufSize),
		TxBuf:             make([]byte, p.TCPBufSize),
		TxPacketQueueSize: 3,
	})
	if err != nil {
		return errors.New("tcp configure: " + err.Error())
	}
	closeConn := func(reason string) {
		p.Logger.Error("tcp:closing", slog.String("reason", reason))
		conn.Close()
		for i := 0; i < 50 && !conn.State().IsClosed(); i++ {
			time.Sleep(100 * time.Millisecond)
		}
		conn.Abort()
	}

	for {
		localPort := uint16(lstack.Prand32()>>17) + 1024
		p.Logger.Info("tcp:dialing", slog.String("broker", broker.String()))
		err = rstack.DoDialTCP(&conn, localPort, broker, 10*time.Second, 3)
		if err != nil {
			closeConn("dial: " + err.Error())
			time.Sleep(2 * time.Second)
			continue
		}

		conn.SetDeadline(time.Now().Add(p.Timeout))
		err = client.StartConnect(&conn, &varconn)
		if err != nil {
			closeConn("mqtt connect: " + err.Error())
			continue
		}
		for retries := 50; retries > 0 && !client.IsConnected(); retries-- {
			time.Sleep(100 * time.Millisecond)
			if err := client.HandleNext(); err != nil {
				p.Logger.Error("mqtt:handle-next", slog.String("err", err.Error()))
			}
		}
		if !client.IsConnected() {
			closeConn("mqtt connect timed out")
			continue
		}
		p.Logger.Info("mqtt:connected", slog.String("topic", p.Topic))

		p.publishLoop(client, &conn, flags, vars, lstack.Prand32, readings)

		p.Logger.Error("mqtt:disconnected", slog.Any("reason", client.Err()))
		closeConn("disconnected")
		runtime.Gosched()
	}
}

func (p *Publisher) publishLoop(
	client *mqtt.Client,
	conn *tcp.Conn,
	flags mqtt.PacketFlags,
	vars mqtt.VariablesPublish,
	rand func() uint32,
	readings <-chan meter.Reading,
) {
	keepAlive := time.NewTicker(p.KeepAlive)
	defer keepAlive.Stop()
	for client.IsConnected() {
		select {
		case r := <-readings:
			payload, err := NewPayload(r, time.Since(p.Boot)).Marshal()
			if err != nil {
				p.Logger.Error("mqtt:marshal", slog.Any("reason", err))
				continue
			}
			conn.SetDeadline(time.Now().Add(p.Timeout))
			vars.PacketIdentifier = uint16(rand())
			if err := client.PublishPayload(flags, vars, payload); err != nil {
				p.Logger.Error("mqtt:publish", slog.Any("reason", err))
				continue
			}
			p.Logger.Debug("mqtt:published", slog.Uint64("seq", uint64(r.Seq)))
			if err := client.HandleNext(); err != nil {
				p.Logger.Error("mqtt:handle-next", slog.String("err", err.Error()))
			}
		case <-keepAlive.C:
			if err := client.HandleNext(); err != nil {
				p.Logger.Error("mqtt:handle-next", slog.String("err", err.Error()))
			}
		default:
			// TinyGo schedules goroutines cooperatively on one core.
			runtime.Gosched()
		}
	}
}
