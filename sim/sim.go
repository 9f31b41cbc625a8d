// Package sim provides simulated hardware for the controller so it can run and be tested on a
// host without a board attached.
package sim

import (
	"github.com/calvinmclean/armbase"
)

// Clock counts sub-ticks. Tests advance it from the controller's poll hook.
type Clock struct {
	ticks uint64
}

// Advance moves the clock forward by one sub-tick
func (c *Clock) Advance() {
	c.ticks++
}

// Now returns the number of sub-ticks so far
func (c *Clock) Now() uint64 {
	return c.ticks
}

// Converter is a single ADC that needs Latency sub-ticks per conversion
type Converter struct {
	Now     func() uint64
	Latency uint64
	// Signal returns the value a channel converts to. A nil Signal reads every channel as 0.
	Signal func(ch armbase.Channel) uint16

	pending bool
	doneAt  uint64
	channel armbase.Channel
	result  uint16

	// Started counts the conversions started on each channel
	Started [armbase.NumChannels]int
	// Order is every channel started, in order
	Order []armbase.Channel
}

// Busy implements adc.Converter
func (c *Converter) Busy() bool {
	if !c.pending {
		return false
	}
	if c.Now() < c.doneAt {
		return true
	}
	c.pending = false
	c.result = c.read(c.channel)
	return false
}

// Start implements adc.Converter
func (c *Converter) Start(ch armbase.Channel) {
	c.pending = true
	c.channel = ch
	c.doneAt = c.Now() + c.Latency
	c.Started[ch]++
	c.Order = append(c.Order, ch)
}

// Result implements adc.Converter
func (c *Converter) Result() uint16 {
	return c.result
}

func (c *Converter) read(ch armbase.Channel) uint16 {
	if c.Signal == nil {
		return 0
	}
	return c.Signal(ch) & 0x3FF
}

// Write is one pulse write to an output
type Write struct {
	ID    armbase.ServoID
	Pulse uint16
}

// Outputs records pulse writes
type Outputs struct {
	Pulses [armbase.NumServos]uint16
	Writes []Write

	// OnSet is called after every write when set
	OnSet func(Write)
}

// SetPulse implements servo.Output
func (o *Outputs) SetPulse(id armbase.ServoID, pulse uint16) {
	o.Pulses[id.Index()] = pulse
	w := Write{ID: id, Pulse: pulse}
	o.Writes = append(o.Writes, w)
	if o.OnSet != nil {
		o.OnSet(w)
	}
}

// Pulse implements servo.Output
func (o *Outputs) Pulse(id armbase.ServoID) uint16 {
	return o.Pulses[id.Index()]
}

// WritesFor returns the pulses written to one servo, in order
func (o *Outputs) WritesFor(id armbase.ServoID) []uint16 {
	var p []uint16
	for _, w := range o.Writes {
		if w.ID == id {
			p = append(p, w.Pulse)
		}
	}
	return p
}

// Reset forgets the recorded writes but keeps the pulses
func (o *Outputs) Reset() {
	o.Writes = nil
}

// Power records the servo supply state
type Power struct {
	Powered  bool
	Switches int
}

// On implements servo.Power
func (p *Power) On() {
	p.Powered = true
	p.Switches++
}

// Off implements servo.Power
func (p *Power) Off() {
	p.Powered = false
	p.Switches++
}
