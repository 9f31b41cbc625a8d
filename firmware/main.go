//go:build tinygo

package main

import (
	"context"
	"machine"

	"github.com/calvinmclean/armbase/controller"
	"github.com/calvinmclean/armbase/firmware/commands"
	"github.com/calvinmclean/armbase/firmware/device"
)

func main() {
	boardCfg := device.BoardConfig{
		Servos: []device.ServoConfig{
			{PWM: machine.PWM5, Pins: []machine.Pin{machine.GP10, machine.GP11}},
			{PWM: machine.PWM6, Pins: []machine.Pin{machine.GP12, machine.GP13}},
			{PWM: machine.PWM7, Pins: []machine.Pin{machine.GP14, machine.GP15}},
		},
		// I1..I3 and the battery divider are wired; I4..I6 and aux are not on this board
		ADCPins: [8]machine.Pin{
			machine.ADC0, machine.ADC1, machine.ADC2,
			machine.NoPin, machine.NoPin, machine.NoPin,
			machine.ADC3, machine.NoPin,
		},
		PowerPin:   machine.GP16,
		BoardIDPin: machine.GP17,
		Motion:     controller.DefaultMotionConfig(),
	}

	d, err := device.New(boardCfg)
	if err != nil {
		panic(err)
	}

	go d.RunTicker(context.Background())

	err = d.Start()
	if err != nil {
		println("error starting:", err.Error())
	}

	commands.Run(d)
}
