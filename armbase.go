package armbase

import (
	"errors"

	"golang.org/x/exp/constraints"
)

const (
	// NumServos is the number of servo outputs on the base controller
	NumServos = 6

	// NumStopwatches is the size of the stopwatch bank
	NumStopwatches = 8

	// NumChannels is the number of logical ADC channels sampled in rotation
	NumChannels = 8

	// DefaultNeutral is the pulse width (µs) used when no valid calibration is stored
	DefaultNeutral uint16 = 1500

	// Gripper is the servo that gets backoff compensation after paced moves
	Gripper ServoID = 1

	// PacingStopwatch is used by convention for ADC-interleaved waits. Nothing prevents other
	// callers from using it, but doing so while a paced wait is running is undefined.
	PacingStopwatch StopwatchID = 8
)

var (
	ErrInvalidServo     = errors.New("invalid servo id")
	ErrInvalidStopwatch = errors.New("invalid stopwatch id")
)

// ServoID identifies one of the six servo outputs (1..6)
type ServoID uint8

// Valid reports whether the id is in 1..NumServos
func (id ServoID) Valid() bool {
	return id >= 1 && id <= NumServos
}

// Index returns the zero-based slot for the servo
func (id ServoID) Index() int {
	return int(id) - 1
}

// StopwatchID identifies one of the eight stopwatches (1..8)
type StopwatchID uint8

// Valid reports whether the id is in 1..NumStopwatches
func (id StopwatchID) Valid() bool {
	return id >= 1 && id <= NumStopwatches
}

// Mask returns the bit used for this stopwatch in the running mask
func (id StopwatchID) Mask() uint32 {
	return 1 << (id - 1)
}

// Channel is a logical ADC channel. The values match the hardware multiplexer inputs.
type Channel uint8

const (
	ChannelCurrent1 Channel = iota
	ChannelCurrent2
	ChannelCurrent3
	ChannelCurrent4
	ChannelCurrent5
	ChannelCurrent6
	ChannelBattery
	ChannelAux

	// ChannelNone marks a sampler that has not started its first conversion
	ChannelNone Channel = 255
)

func (c Channel) String() string {
	switch c {
	case ChannelCurrent1:
		return "I1"
	case ChannelCurrent2:
		return "I2"
	case ChannelCurrent3:
		return "I3"
	case ChannelCurrent4:
		return "I4"
	case ChannelCurrent5:
		return "I5"
	case ChannelCurrent6:
		return "I6"
	case ChannelBattery:
		return "Vbat"
	case ChannelAux:
		return "Vaux"
	default:
		fallthrough
	case ChannelNone:
		return "None"
	}
}

// Next returns the channel after c in the sampling rotation, wrapping from Aux back to Current1
func (c Channel) Next() Channel {
	if c >= ChannelAux {
		return ChannelCurrent1
	}
	return c + 1
}

// CurrentChannel returns the current sense channel wired to the servo
func (id ServoID) CurrentChannel() Channel {
	return Channel(id - 1)
}

// Clamp limits v to [lo, hi]
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Within reports lo < v && v < hi
func Within[T constraints.Ordered](v, lo, hi T) bool {
	return v > lo && v < hi
}

// Abs for signed integers.
func Abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
