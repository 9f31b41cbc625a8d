package controller

import (
	"strconv"
	"time"

	"github.com/calvinmclean/armbase"
	"github.com/calvinmclean/armbase/adc"
	"github.com/calvinmclean/armbase/calibration"
	"github.com/calvinmclean/armbase/servo"
	"github.com/calvinmclean/armbase/timing"
)

// Controller is the state of the arm base: the tick source and stopwatches, the ADC sampler and
// the servo position model. It is built once at start-up and owns all of that state. Apart from
// Tick, which may run in interrupt context, the methods must be called from a single goroutine.
type Controller struct {
	watches *timing.Stopwatches
	ticker  *timing.Ticker
	sampler *adc.Sampler
	servos  *servo.Bank
	store   calibration.Store

	boardV3 bool
	motion  MotionConfig

	// wait is the pacing state of SampleFor and paced moves
	wait pacedWait

	startTime time.Time
	verbose   bool
}

// pacedWait keeps sampling until the pacing stopwatch reaches interval
type pacedWait struct {
	active   bool
	interval uint16
	sample   func()
}

// New creates a Controller from the provided config. Nothing is written to the hardware until
// Start is called.
func New(cfg Config) *Controller {
	if cfg.Motion == (MotionConfig{}) {
		cfg.Motion = DefaultMotionConfig()
	}

	watches := &timing.Stopwatches{}
	ticker := timing.NewTicker(watches, cfg.Timing)

	return &Controller{
		watches: watches,
		ticker:  ticker,
		sampler: adc.NewSampler(cfg.Converter, ticker),
		servos:  servo.New(cfg.Outputs, cfg.Power, ticker),
		store:   cfg.Calibration,
		boardV3: cfg.BoardV3,
		motion:  cfg.Motion,
	}
}

// Start switches servo power off and loads the calibration, which also moves every output to its
// neutral pulse. A calibration error is returned after falling back to the defaults.
func (c *Controller) Start() error {
	c.startTime = time.Now()
	c.servos.PowerOff()

	err := c.LoadCalibration()

	println(c.ts(), "Started...")

	return err
}

// Duration returns the duration that this has been running
func (c *Controller) Duration() time.Duration {
	return time.Since(c.startTime)
}

// Tick advances the tick source by one sub-tick. Call it from the timer interrupt or use
// Ticker().Run.
func (c *Controller) Tick() {
	c.ticker.Tick()
}

// Ticker returns the tick source
func (c *Controller) Ticker() *timing.Ticker {
	return c.ticker
}

// Sampler returns the background ADC sampler
func (c *Controller) Sampler() *adc.Sampler {
	return c.sampler
}

// Servos returns the servo position model
func (c *Controller) Servos() *servo.Bank {
	return c.servos
}

// BoardV3 reports the board revision flag
func (c *Controller) BoardV3() bool {
	return c.boardV3
}

// MoveAbsolute jumps servo id straight to neutral + offset. The offset is not limited.
func (c *Controller) MoveAbsolute(id armbase.ServoID, offset int16) {
	if c.verbose {
		println(c.ts(), "MoveAbsolute", id, offset)
	}
	c.servos.MoveTo(id, offset)
}

// MovePaced moves servo id from its current offset to target one unit at a time, sampling the
// ADC for interval milliseconds after each step. Long gripper moves finish with a backoff pass.
// It blocks until the move is complete and cannot be cancelled. id is not validated.
func (c *Controller) MovePaced(id armbase.ServoID, target int16, interval uint16) {
	current := c.servos.Offset(id)
	if c.verbose {
		println(c.ts(), "MovePaced", id, current, "->", target, "interval:", interval)
	}

	for _, s := range c.motion.Plan(id, current, target, interval) {
		c.runSweep(id, s)
	}
}

// MovePacedChecked is MovePaced with servo id validation
func (c *Controller) MovePacedChecked(id armbase.ServoID, target int16, interval uint16) error {
	if !id.Valid() {
		return armbase.ErrInvalidServo
	}
	c.MovePaced(id, target, interval)
	return nil
}

// SampleFor advances the ADC sampler until ms milliseconds have passed on the pacing stopwatch
func (c *Controller) SampleFor(ms uint16) {
	c.BeginWait(ms, c.sampler.Advance)
	for !c.StepWait() {
		c.ticker.Poll()
	}
}

// SampleAverageFor is SampleFor with the averaging sampler
func (c *Controller) SampleAverageFor(ms uint16) {
	c.BeginWait(ms, c.sampler.AdvanceAverage)
	for !c.StepWait() {
		c.ticker.Poll()
	}
}

// BeginWait resets and starts the pacing stopwatch. Each following StepWait runs sample once
// until interval milliseconds have elapsed.
func (c *Controller) BeginWait(interval uint16, sample func()) {
	c.watches.Restart(armbase.PacingStopwatch)
	c.wait = pacedWait{active: true, interval: interval, sample: sample}
}

// StepWait runs one iteration of the current wait and reports whether it has finished. The
// pacing stopwatch is stopped when it does.
func (c *Controller) StepWait() bool {
	if !c.wait.active {
		return true
	}

	if c.watches.Get(armbase.PacingStopwatch) >= c.wait.interval {
		c.watches.Stop(armbase.PacingStopwatch)
		c.wait.active = false
		return true
	}

	c.wait.sample()
	return false
}

// Sleep blocks for units sub-ticks without sampling
func (c *Controller) Sleep(units uint8) {
	c.ticker.Sleep(units)
}

// MSleep blocks for ms milliseconds without sampling
func (c *Controller) MSleep(ms uint16) {
	c.ticker.MSleep(ms)
}

// StartStopwatch starts stopwatch id
func (c *Controller) StartStopwatch(id armbase.StopwatchID) {
	c.watches.Start(id)
}

// StopStopwatch stops stopwatch id
func (c *Controller) StopStopwatch(id armbase.StopwatchID) {
	c.watches.Stop(id)
}

// SetStopwatch sets the elapsed value of stopwatch id
func (c *Controller) SetStopwatch(id armbase.StopwatchID, value uint16) {
	c.watches.Set(id, value)
}

// GetStopwatch returns the elapsed milliseconds of stopwatch id
func (c *Controller) GetStopwatch(id armbase.StopwatchID) uint16 {
	return c.watches.Get(id)
}

// IsStopwatchRunning reports whether stopwatch id is counting
func (c *Controller) IsStopwatchRunning(id armbase.StopwatchID) bool {
	return c.watches.IsRunning(id)
}

// LoadCalibration reads the neutral table from the store, replaces invalid entries with the
// default and moves every servo to its neutral.
func (c *Controller) LoadCalibration() error {
	var err error
	n := calibration.Defaults()
	if c.store != nil {
		n, err = c.store.Load()
		if err != nil {
			println(c.ts(), "error loading calibration:", err.Error())
			n = calibration.Defaults()
		}
	}

	c.servos.SetNeutrals(calibration.Sanitize(n))
	c.servos.StartPosition()

	return err
}

// SaveCalibration writes the current neutral table to the store
func (c *Controller) SaveCalibration() error {
	if c.store == nil {
		return nil
	}
	return c.store.Save(c.servos.Neutrals())
}

// PowerAndStart switches the servos on and moves them to their calibrated neutrals
func (c *Controller) PowerAndStart() {
	if c.verbose {
		println(c.ts(), "PowerAndStart")
	}
	c.servos.PowerAndStart()
}

// PowerOff switches the servo supply off
func (c *Controller) PowerOff() {
	if c.verbose {
		println(c.ts(), "PowerOff")
	}
	c.servos.PowerOff()
}

// ZeroAll sets every pulse output to 0
func (c *Controller) ZeroAll() {
	c.servos.ZeroAll()
}

// CaptureNeutral makes the current position of servo id its new neutral
func (c *Controller) CaptureNeutral(id armbase.ServoID) {
	c.servos.CaptureNeutral(id)
	if c.verbose {
		println(c.ts(), "CaptureNeutral", id, c.servos.Neutral(id))
	}
}

// Offsets returns the current offset of every servo
func (c *Controller) Offsets() [armbase.NumServos]int16 {
	var o [armbase.NumServos]int16
	for i := range o {
		o[i] = c.servos.Offset(armbase.ServoID(i + 1))
	}
	return o
}

// OverCurrent returns the servos whose last current reading is above the peak limit for the
// board revision
func (c *Controller) OverCurrent() []armbase.ServoID {
	limits := adc.PeakLimitsLegacy
	if c.boardV3 {
		limits = adc.PeakLimitsV3
	}
	return adc.OverCurrent(c.sampler.Currents(), limits)
}

// Debug prints out details of the Controller's state
func (c *Controller) Debug() {
	d := c.ts()
	offsets := c.Offsets()
	currents := c.sampler.Currents()
	for i := range offsets {
		d += " S" + string(byte(i+1)+'0') + "=" + strconv.Itoa(int(offsets[i])) + "/" + strconv.Itoa(int(adc.CurrentMilliamps(currents[i]))) + "mA"
	}
	d += " bat=" + strconv.Itoa(int(c.sampler.Battery()))
	println(d)
}

// Verbose sets the Controller to Verbose mode and increases logging
func (c *Controller) Verbose() {
	c.verbose = true
	println(c.ts(), "Set Verbose Mode")
}

// ts returns the duration timestamp for logging
func (c *Controller) ts() string {
	if c.startTime.IsZero() {
		return "[-]"
	}
	return "[" + c.Duration().String() + "]"
}
