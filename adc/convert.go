package adc

import (
	"github.com/calvinmclean/armbase"

	"periph.io/x/conn/v3/physic"
)

// Current sense scaling for the v3 board with the external 5V reference:
//
//	adc = I * 16 * 1024 / 50
//	I   = adc * 50 / (1024 * 16)
const (
	senseFullScale = 50
	senseDivisor   = 1024 * 16

	// FullScale is the largest 10-bit reading
	FullScale = 1023
)

var (
	// PeakLimitsV3 are the raw peak current limits per servo on the v3 board
	PeakLimitsV3 = [armbase.NumServos]uint16{120, 100, 200, 300, 300, 300}

	// PeakLimitsLegacy are the limits for boards without current sense amplifiers
	PeakLimitsLegacy = [armbase.NumServos]uint16{80, 80, 80, 100, 190, 190}
)

// CurrentMilliamps converts a raw 10-bit current sense reading to milliamps
func CurrentMilliamps(raw uint16) uint16 {
	return uint16((uint32(raw) * senseFullScale * 1000) / senseDivisor)
}

// Current converts a raw current sense reading without truncating to whole milliamps
func Current(raw uint16) physic.ElectricCurrent {
	return physic.ElectricCurrent(int64(raw) * senseFullScale * int64(physic.Ampere) / senseDivisor)
}

// Voltage converts a raw reading against ref through a resistor divider of the given ratio
func Voltage(raw uint16, ref physic.ElectricPotential, divider uint16) physic.ElectricPotential {
	if divider == 0 {
		divider = 1
	}
	return physic.ElectricPotential(int64(raw) * int64(ref) * int64(divider) / (FullScale + 1))
}

// OverCurrent returns the servos whose raw current reading exceeds its limit
func OverCurrent(currents, limits [armbase.NumServos]uint16) []armbase.ServoID {
	var over []armbase.ServoID
	for i, c := range currents {
		if c > limits[i] {
			over = append(over, armbase.ServoID(i+1))
		}
	}
	return over
}
