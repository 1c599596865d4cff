//go:build tinygo

package hal

import (
	"machine"
)

// OutputPin configures p as an output, drives it low and returns it.
func OutputPin(p machine.Pin) machine.Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return p
}

// MachineADC exposes a set of machine.ADC inputs through the Converter
// register interface. TinyGo conversions are synchronous, so StartConversion
// samples immediately and Busy never reports true. Results are scaled from
// TinyGo's 16-bit range down to 10 bits.
type MachineADC struct {
	Inputs  []machine.ADC
	channel uint8
	result  uint16
}

func (a *MachineADC) Configure(clock ClockSource, ref Reference) {
	machine.InitADC()
	for i := range a.Inputs {
		a.Inputs[i].Configure(machine.ADCConfig{})
	}
}

func (a *MachineADC) SelectChannel(ch uint8) { a.channel = ch }

func (a *MachineADC) StartConversion() {
	if int(a.channel) >= len(a.Inputs) {
		a.result = 0
		return
	}
	a.result = a.Inputs[a.channel].Get() >> 6
}

func (a *MachineADC) Busy() bool { return false }

func (a *MachineADC) Result() uint16 { return a.result }

// MachineWatchdog starts the hardware watchdog with the given timeout.
type MachineWatchdog struct{}

func StartWatchdog(timeoutMillis uint32) (MachineWatchdog, error) {
	err := machine.Watchdog.Configure(machine.WatchdogConfig{
		TimeoutMillis: timeoutMillis,
	})
	if err != nil {
		return MachineWatchdog{}, err
	}
	return MachineWatchdog{}, machine.Watchdog.Start()
}

func (MachineWatchdog) Update() { machine.Watchdog.Update() }
