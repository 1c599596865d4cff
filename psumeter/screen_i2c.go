//go:build tinygo && i2clcd

package main

import (
	"errors"
	"machine"

	"github.com/harveysanders/psumeter/backpack"
	"github.com/harveysanders/psumeter/meter"
)

func newScreen() (meter.Screen, error) {
	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA: i2cSDA,
		SCL: i2cSCL,
	})
	if err != nil {
		return nil, errors.New("configure I2C: " + err.Error())
	}
	return backpack.New(machine.I2C0, backpack.DefaultAddress, lcdColumns, lcdRows), nil
}
