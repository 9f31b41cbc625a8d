package timing

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/atomic"
)

const (
	// TickPeriod is the real-time length of one sub-tick
	TickPeriod = 100 * time.Microsecond

	defaultSubTicksPerMillisecond = 10
)

// Config holds the tick source settings
type Config struct {
	// SubTicksPerMillisecond is how many Tick calls make up one stopwatch millisecond
	SubTicksPerMillisecond uint8

	// Poll is called on every iteration of a blocking wait. On hardware the interrupt keeps time
	// moving, so the default only yields to other goroutines. Tests hook it to drive Tick.
	Poll func()
}

// Ticker is the tick source. Tick must be called once per TickPeriod, normally from a timer
// interrupt or a dedicated goroutine (see Run). It never blocks and only touches atomic state.
type Ticker struct {
	watches  *Stopwatches
	subTicks uint8
	poll     func()

	// msTimer is only touched from the tick context
	msTimer uint8

	// delay is the free-running counter used by Sleep
	delay atomic.Uint32
}

// NewTicker creates a tick source that advances the provided stopwatches
func NewTicker(watches *Stopwatches, cfg Config) *Ticker {
	if cfg.SubTicksPerMillisecond == 0 {
		cfg.SubTicksPerMillisecond = defaultSubTicksPerMillisecond
	}
	if cfg.Poll == nil {
		cfg.Poll = runtime.Gosched
	}
	return &Ticker{
		watches:  watches,
		subTicks: cfg.SubTicksPerMillisecond,
		poll:     cfg.Poll,
	}
}

// Tick advances all timing state by one sub-tick
func (t *Ticker) Tick() {
	t.delay.Inc()

	t.msTimer++
	if t.msTimer >= t.subTicks {
		t.msTimer = 0
		t.watches.advance()
	}
}

// Run calls Tick every period until the context is cancelled. This is the tick source on targets
// without a dedicated timer interrupt and in the host simulator.
func (t *Ticker) Run(ctx context.Context, period time.Duration) {
	tk := time.NewTicker(period)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			t.Tick()
		}
	}
}

// Poll runs one iteration of the configured wait hook
func (t *Ticker) Poll() {
	t.poll()
}

// Sleep blocks for units sub-ticks. A single call covers at most 255 sub-ticks; chain calls for
// longer waits or use MSleep.
func (t *Ticker) Sleep(units uint8) {
	t.delay.Store(0)
	for uint16(t.delay.Load()) < uint16(units) {
		t.poll()
	}
}

// MSleep blocks for roughly ms milliseconds
func (t *Ticker) MSleep(ms uint16) {
	for ; ms > 0; ms-- {
		t.Sleep(t.subTicks)
	}
}
