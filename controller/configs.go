package controller

import (
	"github.com/calvinmclean/armbase"
	"github.com/calvinmclean/armbase/adc"
	"github.com/calvinmclean/armbase/calibration"
	"github.com/calvinmclean/armbase/servo"
	"github.com/calvinmclean/armbase/timing"
)

// Config has the hardware collaborators and settings for a Controller
type Config struct {
	Converter adc.Converter
	Outputs   servo.Output
	Power     servo.Power

	// Calibration is optional. Without it every servo uses armbase.DefaultNeutral.
	Calibration calibration.Store

	// BoardV3 is the detected board revision. It selects the current limits used by OverCurrent.
	BoardV3 bool

	Timing timing.Config
	Motion MotionConfig
}

// MotionConfig has the values for paced moves and the gripper backoff pass
type MotionConfig struct {
	// Gripper is the servo that gets a backoff pass after long paced moves
	Gripper armbase.ServoID

	// RetractThreshold is the minimum distance of a decreasing move that triggers a backoff of
	// RetractRelease units back up
	RetractThreshold int32
	RetractRelease   int32

	// ExtendThreshold is the minimum distance of an increasing move that triggers a backoff of
	// ExtendRelease units back down
	ExtendThreshold int32
	ExtendRelease   int32

	// BackoffExtraInterval is added to the step interval during the backoff pass
	BackoffExtraInterval uint16

	// BackoffLimit bounds the offsets written during a backoff pass to (-BackoffLimit, BackoffLimit)
	BackoffLimit int32
}

// DefaultMotionConfig returns the gripper behaviour of the base controller
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		Gripper:              armbase.Gripper,
		RetractThreshold:     40,
		RetractRelease:       50,
		ExtendThreshold:      30,
		ExtendRelease:        30,
		BackoffExtraInterval: 2,
		BackoffLimit:         500,
	}
}
