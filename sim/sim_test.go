package sim

import (
	"testing"

	"github.com/calvinmclean/armbase"

	"github.com/stretchr/testify/assert"
)

func TestConverterLatency(t *testing.T) {
	clock := &Clock{}
	c := &Converter{
		Now:     clock.Now,
		Latency: 2,
		Signal:  func(ch armbase.Channel) uint16 { return 0xFFFF },
	}

	assert.False(t, c.Busy())
	c.Start(armbase.ChannelBattery)
	assert.True(t, c.Busy())
	clock.Advance()
	assert.True(t, c.Busy())
	clock.Advance()
	assert.False(t, c.Busy())
	assert.Equal(t, uint16(0x3FF), c.Result())
	assert.Equal(t, 1, c.Started[armbase.ChannelBattery])
	assert.Equal(t, []armbase.Channel{armbase.ChannelBattery}, c.Order)
}

func TestConverterNilSignal(t *testing.T) {
	c := &Converter{Now: (&Clock{}).Now}
	c.Start(armbase.ChannelCurrent1)
	assert.False(t, c.Busy())
	assert.Equal(t, uint16(0), c.Result())
}

func TestOutputs(t *testing.T) {
	var seen []Write
	o := &Outputs{OnSet: func(w Write) { seen = append(seen, w) }}
	o.SetPulse(2, 1500)
	o.SetPulse(1, 1400)
	o.SetPulse(2, 1501)

	assert.Equal(t, uint16(1501), o.Pulse(2))
	assert.Equal(t, []uint16{1500, 1501}, o.WritesFor(2))
	assert.Len(t, seen, 3)

	o.Reset()
	assert.Empty(t, o.Writes)
	assert.Equal(t, uint16(1400), o.Pulse(1))
}

func TestPower(t *testing.T) {
	p := &Power{}
	p.On()
	assert.True(t, p.Powered)
	p.Off()
	assert.False(t, p.Powered)
	assert.Equal(t, 2, p.Switches)
}
