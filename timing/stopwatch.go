package timing

import (
	"github.com/calvinmclean/armbase"

	"go.uber.org/atomic"
)

// Stopwatches is a bank of eight 16-bit millisecond counters. The running mask and the elapsed
// counts are written by the tick source and read or written by the main context, so every field
// is an atomic cell and nothing is ever read or written half-updated.
//
// None of the methods validate the id. Callers must pass 1..8; use StopwatchID.Valid when the
// id comes from outside.
type Stopwatches struct {
	running atomic.Uint32
	// elapsed holds a free-running count. Only the low 16 bits are observable, so the value
	// wraps at 65535 the same way a 16-bit register would.
	elapsed [armbase.NumStopwatches]atomic.Uint32
}

// Start sets the running flag. The elapsed value is left untouched.
func (s *Stopwatches) Start(id armbase.StopwatchID) {
	m := id.Mask()
	for {
		old := s.running.Load()
		if s.running.CompareAndSwap(old, old|m) {
			return
		}
	}
}

// Stop clears the running flag, freezing the elapsed value.
func (s *Stopwatches) Stop(id armbase.StopwatchID) {
	m := id.Mask()
	for {
		old := s.running.Load()
		if s.running.CompareAndSwap(old, old&^m) {
			return
		}
	}
}

// Set overwrites the elapsed value
func (s *Stopwatches) Set(id armbase.StopwatchID, value uint16) {
	s.elapsed[id-1].Store(uint32(value))
}

// Get returns the elapsed milliseconds
func (s *Stopwatches) Get(id armbase.StopwatchID) uint16 {
	return uint16(s.elapsed[id-1].Load())
}

// IsRunning reports whether the stopwatch is counting
func (s *Stopwatches) IsRunning(id armbase.StopwatchID) bool {
	return s.running.Load()&id.Mask() != 0
}

// Restart resets the stopwatch to zero and starts it
func (s *Stopwatches) Restart(id armbase.StopwatchID) {
	s.Set(id, 0)
	s.Start(id)
}

// advance increments every running stopwatch by one millisecond. Only the tick source calls it.
func (s *Stopwatches) advance() {
	mask := s.running.Load()
	if mask == 0 {
		return
	}
	for i := range s.elapsed {
		if mask&(1<<i) != 0 {
			s.elapsed[i].Inc()
		}
	}
}
