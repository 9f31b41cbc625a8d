package servo

import (
	"github.com/calvinmclean/armbase"
)

// Output is the hardware-visible pulse register of each servo. Pulse widths are in timer units
// of 1µs.
type Output interface {
	SetPulse(id armbase.ServoID, pulse uint16)
	Pulse(id armbase.ServoID) uint16
}

// Power switches the servo supply
type Power interface {
	On()
	Off()
}

// Sleeper provides the coarse delay used between start-up writes
type Sleeper interface {
	MSleep(ms uint16)
}

var (
	// startGaps is the delay after each servo's first write during start-up. Staggering the
	// writes keeps the inrush current down.
	startGaps = [armbase.NumServos]uint16{100, 100, 50, 50, 50, 50}

	// defaultStart is the uncalibrated start pose used by PowerAndStartDefault
	defaultStart = [armbase.NumServos]uint16{1600, 1500, 1500, 1500, 1500, 1500}
)

const (
	uncalibratedPulse = 1000
	powerUpDelay      = 250
)

// Bank holds the calibrated neutral pulse of every servo and writes pulses to the outputs. It
// does not validate servo ids; callers pass 1..6.
type Bank struct {
	out   Output
	power Power
	sleep Sleeper

	neutral [armbase.NumServos]uint16
}

// New creates a Bank with every neutral at armbase.DefaultNeutral
func New(out Output, power Power, sleep Sleeper) *Bank {
	b := &Bank{out: out, power: power, sleep: sleep}
	for i := range b.neutral {
		b.neutral[i] = armbase.DefaultNeutral
	}
	return b
}

// SetPulse writes the raw pulse width
func (b *Bank) SetPulse(id armbase.ServoID, pulse uint16) {
	b.out.SetPulse(id, pulse)
}

// Pulse reads back the raw pulse width
func (b *Bank) Pulse(id armbase.ServoID) uint16 {
	return b.out.Pulse(id)
}

// ZeroAll sets every output to 0. Used before switching power on to avoid current spikes.
func (b *Bank) ZeroAll() {
	for id := armbase.ServoID(1); id <= armbase.NumServos; id++ {
		b.out.SetPulse(id, 0)
	}
}

// MoveTo sets the pulse to neutral + offset. The result is not limited, so calibration can reach
// the full range of the output.
func (b *Bank) MoveTo(id armbase.ServoID, offset int16) {
	b.out.SetPulse(id, b.neutral[id.Index()]+uint16(offset))
}

// Offset returns the current pulse relative to neutral
func (b *Bank) Offset(id armbase.ServoID) int16 {
	return int16(b.out.Pulse(id) - b.neutral[id.Index()])
}

// Neutral returns the calibrated neutral pulse
func (b *Bank) Neutral(id armbase.ServoID) uint16 {
	return b.neutral[id.Index()]
}

// SetNeutral changes the calibrated neutral pulse. The output is not touched.
func (b *Bank) SetNeutral(id armbase.ServoID, pulse uint16) {
	b.neutral[id.Index()] = pulse
}

// Neutrals returns the full calibration table
func (b *Bank) Neutrals() [armbase.NumServos]uint16 {
	return b.neutral
}

// SetNeutrals replaces the full calibration table
func (b *Bank) SetNeutrals(n [armbase.NumServos]uint16) {
	b.neutral = n
}

// CaptureNeutral makes the current pulse the new neutral, so the servo's offset becomes 0
func (b *Bank) CaptureNeutral(id armbase.ServoID) {
	b.neutral[id.Index()] = b.out.Pulse(id)
}

// PowerOn switches the servo supply on
func (b *Bank) PowerOn() {
	b.power.On()
}

// PowerOff switches the servo supply off
func (b *Bank) PowerOff() {
	b.power.Off()
}

// StartPosition writes every neutral in order with a short gap after each servo
func (b *Bank) StartPosition() {
	b.writeSequence(b.neutral)
}

// DefaultStartPosition writes the uncalibrated pulse to every servo
func (b *Bank) DefaultStartPosition() {
	var p [armbase.NumServos]uint16
	for i := range p {
		p[i] = uncalibratedPulse
	}
	b.writeSequence(p)
}

// PowerAndStart zeroes the outputs, switches power on and moves every servo to neutral
func (b *Bank) PowerAndStart() {
	b.ZeroAll()
	b.power.On()
	b.sleep.MSleep(powerUpDelay)
	b.writeSequence(b.neutral)
}

// PowerAndStartDefault is PowerAndStart with a fixed pose instead of the calibration
func (b *Bank) PowerAndStartDefault() {
	b.ZeroAll()
	b.power.On()
	b.sleep.MSleep(powerUpDelay)
	b.writeSequence(defaultStart)
}

func (b *Bank) writeSequence(pulses [armbase.NumServos]uint16) {
	for i, p := range pulses {
		b.out.SetPulse(armbase.ServoID(i+1), p)
		b.sleep.MSleep(startGaps[i])
	}
}
