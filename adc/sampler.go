package adc

import (
	"errors"

	"github.com/calvinmclean/armbase"
)

// ErrBusy is returned by ReadChecked when a conversion is already in flight
var ErrBusy = errors.New("adc busy")

// Converter is the single analog-to-digital converter shared by all channels. Only one
// conversion can be in flight at a time.
type Converter interface {
	// Busy reports whether a conversion is still in progress
	Busy() bool
	// Start selects the channel and begins a conversion
	Start(ch armbase.Channel)
	// Result returns the 10-bit value of the last completed conversion
	Result() uint16
}

// Waiter provides blocking waits for the one-shot Read
type Waiter interface {
	MSleep(ms uint16)
	Poll()
}

// Sampler cycles the converter over the eight logical channels in the background. It keeps the
// latest value per channel and must be advanced frequently by the main context. It is not safe
// for use from more than one goroutine.
type Sampler struct {
	conv Converter
	wait Waiter

	// current is the channel whose conversion is in flight
	current armbase.Channel
	values  [armbase.NumChannels]uint16

	conversions uint32
}

// NewSampler creates a Sampler that has not started converting yet
func NewSampler(conv Converter, wait Waiter) *Sampler {
	return &Sampler{
		conv:    conv,
		wait:    wait,
		current: armbase.ChannelNone,
	}
}

// Advance stores the finished conversion and starts the next channel in the rotation. It is a
// no-op while a conversion is in flight.
func (s *Sampler) Advance() {
	s.advance(func(_, sample uint16) uint16 { return sample })
}

// AdvanceAverage is Advance with a simple filter: new = (old + sample) / 2
func (s *Sampler) AdvanceAverage() {
	s.advance(func(old, sample uint16) uint16 { return (old + sample) / 2 })
}

func (s *Sampler) advance(update func(old, sample uint16) uint16) {
	if s.conv.Busy() {
		return
	}

	next := armbase.ChannelCurrent1
	if s.current != armbase.ChannelNone {
		s.values[s.current] = update(s.values[s.current], s.conv.Result())
		next = s.current.Next()
	}

	s.conv.Start(next)
	s.current = next
	s.conversions++
}

// AdvanceChannel samples only ch. The finished conversion is stored under the channel that was
// in flight, then ch is started. ch must be one of the eight logical channels.
func (s *Sampler) AdvanceChannel(ch armbase.Channel) {
	if s.conv.Busy() {
		return
	}

	if s.current != armbase.ChannelNone {
		s.values[s.current] = s.conv.Result()
	}

	s.conv.Start(ch)
	s.current = ch
	s.conversions++
}

// Read performs a blocking conversion of ch and returns the result. It returns 0 if a conversion
// is already in flight, which cannot be told apart from a real reading of 0; use ReadChecked
// when that matters. Read restarts the background rotation from the first channel.
func (s *Sampler) Read(ch armbase.Channel) uint16 {
	v, _ := s.ReadChecked(ch)
	return v
}

// ReadChecked is Read but reports ErrBusy instead of returning a bare 0
func (s *Sampler) ReadChecked(ch armbase.Channel) (uint16, error) {
	if s.conv.Busy() {
		return 0, ErrBusy
	}

	// let the input settle after switching the multiplexer
	s.wait.MSleep(2)

	s.conv.Start(ch)
	for s.conv.Busy() {
		s.wait.Poll()
	}

	s.current = armbase.ChannelNone
	return s.conv.Result(), nil
}

// InFlight returns the channel currently being converted, or ChannelNone before the first Advance
func (s *Sampler) InFlight() armbase.Channel {
	return s.current
}

// Conversions returns how many conversions the background sampler has started
func (s *Sampler) Conversions() uint32 {
	return s.conversions
}

// Value returns the latest reading for ch
func (s *Sampler) Value(ch armbase.Channel) uint16 {
	return s.values[ch]
}

// Values returns the latest reading for every channel
func (s *Sampler) Values() [armbase.NumChannels]uint16 {
	return s.values
}

// Currents returns the raw current sense readings for servos 1..6
func (s *Sampler) Currents() [armbase.NumServos]uint16 {
	var c [armbase.NumServos]uint16
	copy(c[:], s.values[:armbase.NumServos])
	return c
}

// Battery returns the raw battery voltage reading
func (s *Sampler) Battery() uint16 {
	return s.values[armbase.ChannelBattery]
}

// Aux returns the raw auxiliary input reading
func (s *Sampler) Aux() uint16 {
	return s.values[armbase.ChannelAux]
}
