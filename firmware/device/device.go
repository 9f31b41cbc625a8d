//go:build tinygo

package device

import (
	"context"
	"errors"
	"machine"

	"github.com/calvinmclean/armbase"
	"github.com/calvinmclean/armbase/calibration"
	"github.com/calvinmclean/armbase/controller"
	"github.com/calvinmclean/armbase/timing"

	"tinygo.org/x/drivers/servo"
)

// Device is the arm base running on a board. It adds the serial port and the tick source to the
// Controller.
type Device struct {
	*controller.Controller
}

// New configures the pins and creates the Controller. Servo power stays off until Start.
func New(cfg BoardConfig) (*Device, error) {
	out, err := newOutputs(cfg.Servos)
	if err != nil {
		return nil, errors.New("error creating servo outputs: " + err.Error())
	}

	cfg.BoardIDPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	boardV3 := !cfg.BoardIDPin.Get()

	cfg.PowerPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	c := controller.New(controller.Config{
		Converter:   newConverter(cfg.ADCPins),
		Outputs:     out,
		Power:       &powerSwitch{pin: cfg.PowerPin, activeHigh: boardV3},
		Calibration: &calibration.ImageStore{Dev: flashDevice{}, Offset: cfg.CalibrationOffset},
		BoardV3:     boardV3,
		Motion:      cfg.Motion,
	})

	return &Device{Controller: c}, nil
}

// RunTicker drives the tick source until the context is cancelled
func (d *Device) RunTicker(ctx context.Context) {
	d.Ticker().Run(ctx, timing.TickPeriod)
}

func (d *Device) ReadByte() (byte, error) {
	return machine.Serial.ReadByte()
}

func (d *Device) WriteByte(b byte) error {
	return machine.Serial.WriteByte(b)
}

// outputs drives the servo PWM channels. The hardware can't read a pulse back, so the last
// written value is kept.
type outputs struct {
	servos [armbase.NumServos]servo.Servo
	pulses [armbase.NumServos]uint16
}

func newOutputs(cfgs []ServoConfig) (*outputs, error) {
	o := &outputs{}
	n := 0
	for _, cfg := range cfgs {
		array, err := servo.NewArray(cfg.PWM)
		if err != nil {
			return nil, errors.New("error creating servo array: " + err.Error())
		}
		for _, pin := range cfg.Pins {
			if n >= armbase.NumServos {
				return nil, errors.New("too many servo pins")
			}
			s, err := array.Add(pin)
			if err != nil {
				return nil, errors.New("error adding servo: " + err.Error())
			}
			o.servos[n] = s
			n++
		}
	}
	if n != armbase.NumServos {
		return nil, errors.New("expected 6 servo pins")
	}
	return o, nil
}

func (o *outputs) SetPulse(id armbase.ServoID, pulse uint16) {
	o.pulses[id.Index()] = pulse
	o.servos[id.Index()].SetMicroseconds(int16(pulse))
}

func (o *outputs) Pulse(id armbase.ServoID) uint16 {
	return o.pulses[id.Index()]
}

// converter reads the analog pins. machine.ADC conversions are blocking, so the conversion runs in
// Start and the converter is never busy afterwards.
type converter struct {
	pins   [armbase.NumChannels]machine.ADC
	used   [armbase.NumChannels]bool
	result uint16
}

func newConverter(pins [armbase.NumChannels]machine.Pin) *converter {
	machine.InitADC()

	c := &converter{}
	for i, p := range pins {
		if p == machine.NoPin {
			continue
		}
		c.pins[i] = machine.ADC{Pin: p}
		c.pins[i].Configure(machine.ADCConfig{})
		c.used[i] = true
	}
	return c
}

func (c *converter) Busy() bool {
	return false
}

func (c *converter) Start(ch armbase.Channel) {
	if int(ch) >= len(c.pins) || !c.used[ch] {
		c.result = 0
		return
	}
	// machine.ADC scales to 16 bits
	c.result = c.pins[ch].Get() >> 6
}

func (c *converter) Result() uint16 {
	return c.result
}

// powerSwitch drives the servo supply enable pin. The polarity differs between board revisions.
type powerSwitch struct {
	pin        machine.Pin
	activeHigh bool
}

func (p *powerSwitch) On() {
	p.pin.Set(p.activeHigh)
}

func (p *powerSwitch) Off() {
	p.pin.Set(!p.activeHigh)
}

// flashDevice stores the calibration image in the first block of machine.Flash. Flash has to be
// erased before it is written, which leaves the reserved bytes at 0xFF.
type flashDevice struct{}

func (flashDevice) ReadAt(p []byte, off int64) (int, error) {
	return machine.Flash.ReadAt(p, off)
}

func (flashDevice) WriteAt(p []byte, off int64) (int, error) {
	block := off / machine.Flash.EraseBlockSize()
	err := machine.Flash.EraseBlocks(block, 1)
	if err != nil {
		return 0, errors.New("error erasing flash: " + err.Error())
	}
	return machine.Flash.WriteAt(p, off)
}
