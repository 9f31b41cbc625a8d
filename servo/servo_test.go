package servo

import (
	"fmt"
	"testing"

	"github.com/calvinmclean/armbase"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	pulses [armbase.NumServos]uint16
	events []string
}

func (r *recorder) SetPulse(id armbase.ServoID, pulse uint16) {
	r.pulses[id.Index()] = pulse
	r.events = append(r.events, fmt.Sprintf("S%d=%d", id, pulse))
}

func (r *recorder) Pulse(id armbase.ServoID) uint16 { return r.pulses[id.Index()] }
func (r *recorder) On()                             { r.events = append(r.events, "on") }
func (r *recorder) Off()                            { r.events = append(r.events, "off") }
func (r *recorder) MSleep(ms uint16)                { r.events = append(r.events, fmt.Sprintf("sleep%d", ms)) }

func newBank() (*Bank, *recorder) {
	r := &recorder{}
	return New(r, r, r), r
}

func TestMoveToAndOffset(t *testing.T) {
	tests := []struct {
		name     string
		neutral  uint16
		offset   int16
		expected uint16
	}{
		{"Zero", 1500, 0, 1500},
		{"Positive", 1500, 200, 1700},
		{"Negative", 1500, -200, 1300},
		{"BeyondPacedLimit", 1500, 800, 2300},
		{"BelowZeroWraps", 100, -200, 65436},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, r := newBank()
			b.SetNeutral(3, tt.neutral)
			b.MoveTo(3, tt.offset)
			assert.Equal(t, tt.expected, r.pulses[2])
			assert.Equal(t, tt.offset, b.Offset(3))
		})
	}
}

func TestDefaults(t *testing.T) {
	b, _ := newBank()
	for id := armbase.ServoID(1); id <= armbase.NumServos; id++ {
		assert.Equal(t, armbase.DefaultNeutral, b.Neutral(id))
	}
}

func TestZeroAll(t *testing.T) {
	b, r := newBank()
	for id := armbase.ServoID(1); id <= armbase.NumServos; id++ {
		b.SetPulse(id, 1234)
	}
	b.ZeroAll()
	assert.Equal(t, [armbase.NumServos]uint16{}, r.pulses)
}

func TestCaptureNeutral(t *testing.T) {
	b, _ := newBank()
	b.MoveTo(2, 37)
	b.CaptureNeutral(2)
	assert.Equal(t, uint16(1537), b.Neutral(2))
	assert.Equal(t, int16(0), b.Offset(2))
}

func TestPowerAndStart(t *testing.T) {
	b, r := newBank()
	b.SetNeutrals([armbase.NumServos]uint16{1510, 1520, 1530, 1540, 1550, 1560})
	b.PowerAndStart()

	assert.Equal(t, []string{
		"S1=0", "S2=0", "S3=0", "S4=0", "S5=0", "S6=0",
		"on", "sleep250",
		"S1=1510", "sleep100",
		"S2=1520", "sleep100",
		"S3=1530", "sleep50",
		"S4=1540", "sleep50",
		"S5=1550", "sleep50",
		"S6=1560", "sleep50",
	}, r.events)
}

func TestPowerAndStartDefault(t *testing.T) {
	b, r := newBank()
	b.SetNeutrals([armbase.NumServos]uint16{1, 2, 3, 4, 5, 6})
	b.PowerAndStartDefault()
	assert.Equal(t, [armbase.NumServos]uint16{1600, 1500, 1500, 1500, 1500, 1500}, r.pulses)
}

func TestDefaultStartPosition(t *testing.T) {
	b, r := newBank()
	b.DefaultStartPosition()
	assert.Equal(t, [armbase.NumServos]uint16{1000, 1000, 1000, 1000, 1000, 1000}, r.pulses)
	assert.NotContains(t, r.events, "on")
}

func TestPower(t *testing.T) {
	b, r := newBank()
	b.PowerOn()
	b.PowerOff()
	assert.Equal(t, []string{"on", "off"}, r.events)
}
