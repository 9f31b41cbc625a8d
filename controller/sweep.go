package controller

import (
	"github.com/calvinmclean/armbase"
)

// Sweep is one single-unit-step pass of a paced move. The servo starts at From and is stepped
// one unit at a time until it reaches To, waiting Interval milliseconds after every step.
type Sweep struct {
	From, To int32
	Interval uint16

	// Limited sweeps skip any write outside (-limit, limit)
	Limited bool
}

// Steps returns the number of single-unit steps in the sweep
func (s Sweep) Steps() int32 {
	return armbase.Abs(s.To - s.From)
}

// Plan returns the sweeps that move servo id from current to target. The first sweep goes
// straight to the target. Long moves of the gripper get a second, limited sweep that releases
// some of the holding force.
func (m MotionConfig) Plan(id armbase.ServoID, current, target int16, interval uint16) []Sweep {
	from, to := int32(current), int32(target)
	if from == to {
		return nil
	}

	sweeps := []Sweep{{From: from, To: to, Interval: interval}}
	if id != m.Gripper {
		return sweeps
	}

	backoff := Sweep{From: to, Interval: interval + m.BackoffExtraInterval, Limited: true}
	switch {
	case from > to && from-to >= m.RetractThreshold:
		backoff.To = to + m.RetractRelease
	case from < to && to-from >= m.ExtendThreshold:
		backoff.To = to - m.ExtendRelease
	default:
		return sweeps
	}

	return append(sweeps, backoff)
}

// runSweep steps the servo through a sweep, pacing each step with a sampling wait
func (c *Controller) runSweep(id armbase.ServoID, s Sweep) {
	dir := int32(1)
	if s.To < s.From {
		dir = -1
	}

	for pos := s.From; pos != s.To; {
		pos += dir

		if !s.Limited {
			c.servos.MoveTo(id, int16(pos))
		} else if armbase.Within(pos, -c.motion.BackoffLimit, c.motion.BackoffLimit) {
			c.servos.MoveTo(id, int16(pos))
			if c.verbose {
				println(c.ts(), "backoff", id, "pos:", pos)
			}
		}

		c.SampleFor(s.Interval)
	}
}
