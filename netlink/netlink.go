//go:build tinygo

// Package netlink brings up the Pico W's CYW43439 radio and an lneto TCP/IP
// stack on top of it.
//
// Setup follows the soypat/cyw43439 examples: init the radio, join the
// network, reset the stack with the radio's MAC, then DHCP with a static
// fallback.
package netlink

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/soypat/cyw43439"
	"github.com/soypat/lneto/x/xnet"

	"github.com/harveysanders/psumeter/hal"
)

const mtu = cyw43439.MTU

// Config configures the link.
type Config struct {
	SSID     string
	Password string
	// Hostname is sent with the DHCP request.
	Hostname string
	// MaxTCPConns defaults to 1.
	MaxTCPConns int
	// RequestedAddr is asked for over DHCP and used as a static address if
	// DHCP does not complete.
	RequestedAddr netip.Addr
	Logger        *slog.Logger
}

// Stack is a joined radio plus its IP stack.
type Stack struct {
	dev     *cyw43439.Device
	s       xnet.StackAsync
	log     *slog.Logger
	sendbuf []byte
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewRadio powers up the CYW43439 without joining a network. This is enough
// to drive the onboard LED.
func NewRadio(logger *slog.Logger) (*cyw43439.Device, error) {
	if logger == nil {
		logger = discard()
	}
	start := time.Now()
	dev := cyw43439.NewPicoWDevice()
	dev.SetLogger(logger)
	err := dev.Init(cyw43439.DefaultWifiConfig())
	if err != nil {
		return nil, errors.New("radio init: " + err.Error())
	}
	logger.Info("radio:init", slog.Duration("took", time.Since(start)))
	return dev, nil
}

// LED returns the onboard LED, which hangs off the radio's GPIO 0.
func LED(dev *cyw43439.Device) hal.Pin {
	return hal.PinFunc(func(on bool) {
		_ = dev.GPIOSet(0, on)
	})
}

// Up joins the configured network and configures the IP stack. Join failures
// are retried every 5 seconds until the watchdog steps in.
func Up(dev *cyw43439.Device, cfg Config) (*Stack, error) {
	if cfg.Hostname == "" {
		return nil, errors.New("empty hostname")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = discard()
	}

	start := time.Now()
	logger.Info("wifi:joining", slog.String("ssid", cfg.SSID), slog.Int("passlen", len(cfg.Password)))
	for {
		err := dev.JoinWPA2(cfg.SSID, cfg.Password)
		if err == nil {
			break
		}
		logger.Error("wifi:join-failed", slog.String("err", err.Error()))
		time.Sleep(5 * time.Second)
	}

	mac, err := dev.HardwareAddr6()
	if err != nil {
		return nil, errors.New("hardware address: " + err.Error())
	}
	logger.Info("wifi:joined", slog.String("mac", net.HardwareAddr(mac[:]).String()))

	maxTCP := cfg.MaxTCPConns
	if maxTCP < 1 {
		maxTCP = 1
	}
	stack := &Stack{
		dev:     dev,
		log:     logger,
		sendbuf: make([]byte, mtu),
	}
	err = stack.s.Reset(xnet.StackConfig{
		Hostname:        cfg.Hostname,
		MaxTCPConns:     maxTCP,
		RandSeed:        time.Since(start).Nanoseconds(),
		HardwareAddress: mac,
		MTU:             mtu,
	})
	if err != nil {
		return nil, errors.New("stack reset: " + err.Error())
	}
	dev.RecvEthHandle(func(pkt []byte) error {
		return stack.s.Demux(pkt, 0)
	})

	// Packets have to flow for DHCP to finish.
	go stack.Run()

	if err := stack.dhcp(cfg.RequestedAddr); err != nil {
		return nil, err
	}
	return stack, nil
}

func (s *Stack) dhcp(requested netip.Addr) error {
	if !requested.IsValid() {
		requested = netip.AddrFrom4([4]byte{})
	}
	if !requested.Is4() {
		return errors.New("only dhcpv4 supported")
	}

	rstack := s.s.StackRetrying(50 * time.Millisecond)
	s.log.Info("dhcp:starting")
	results, err := rstack.DoDHCPv4(requested.As4(), 3*time.Second, 3)
	if err != nil {
		if requested.IsUnspecified() {
			return errors.New("dhcp: " + err.Error())
		}
		s.log.Info("dhcp:static-fallback", slog.String("ip", requested.String()))
		s.s.SetIPAddr(requested)
		return nil
	}
	if err := s.s.AssimilateDHCPResults(results); err != nil {
		return errors.New("dhcp results: " + err.Error())
	}
	gw, err := rstack.DoResolveHardwareAddress6(results.Router, 500*time.Millisecond, 4)
	if err != nil {
		return errors.New("resolve gateway: " + err.Error())
	}
	s.s.SetGateway6(gw)
	s.log.Info("dhcp:done",
		slog.String("ip", results.AssignedAddr.String()),
		slog.String("router", results.Router.String()),
		slog.Uint64("lease_sec", uint64(results.TLease)),
	)
	return nil
}

// Run shuttles packets between the radio and the stack forever.
func (s *Stack) Run() {
	for {
		sent, recv := s.poll()
		if sent == 0 && recv == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func (s *Stack) poll() (sent, recv int) {
	got, err := s.dev.PollOne()
	if err != nil {
		s.log.Error("netlink:poll", slog.String("err", err.Error()))
	}
	if got {
		recv = 1
	}
	n, err := s.s.Encapsulate(s.sendbuf, -1, 0)
	if err != nil {
		s.log.Error("netlink:encapsulate", slog.Int("plen", n), slog.String("err", err.Error()))
		return 0, recv
	}
	if n == 0 {
		return 0, recv
	}
	if err := s.dev.SendEth(s.sendbuf[:n]); err != nil {
		s.log.Error("netlink:send", slog.Int("plen", n), slog.String("err", err.Error()))
	}
	return n, recv
}

// Lneto returns the IP stack for dialing.
func (s *Stack) Lneto() *xnet.StackAsync { return &s.s }

// Addr returns the assigned address.
func (s *Stack) Addr() netip.Addr { return s.s.Addr() }
