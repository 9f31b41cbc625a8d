//go:build tinygo

package device

import (
	"machine"

	"github.com/calvinmclean/armbase"
	"github.com/calvinmclean/armbase/controller"

	"tinygo.org/x/drivers/servo"
)

// ServoConfig is one PWM slice and the servo pins it drives, in servo id order
type ServoConfig struct {
	PWM  servo.PWM
	Pins []machine.Pin
}

// BoardConfig has the pins of the arm base board
type BoardConfig struct {
	// Servos must add up to armbase.NumServos pins
	Servos []ServoConfig

	// ADCPins maps each logical channel to an analog pin. machine.NoPin channels read as 0.
	ADCPins [armbase.NumChannels]machine.Pin

	PowerPin machine.Pin

	// BoardIDPin is pulled low on v3 boards
	BoardIDPin machine.Pin

	// CalibrationOffset is where the neutral table is kept in the flash block device
	CalibrationOffset int64

	Motion controller.MotionConfig
}
