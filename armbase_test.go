package armbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelNext(t *testing.T) {
	seen := map[Channel]bool{}
	c := ChannelCurrent1
	for _i := 0; _i < NumChannels; _i++ {
		assert.False(t, seen[c], "channel %s visited twice", c)
		seen[c] = true
		c = c.Next()
	}
	assert.Equal(t, ChannelCurrent1, c)
	assert.Len(t, seen, NumChannels)
	assert.Equal(t, ChannelCurrent1, ChannelNone.Next())
}

func TestChannelString(t *testing.T) {
	tests := []struct {
		c        Channel
		expected string
	}{
		{ChannelCurrent1, "I1"},
		{ChannelCurrent6, "I6"},
		{ChannelBattery, "Vbat"},
		{ChannelAux, "Vaux"},
		{ChannelNone, "None"},
		{Channel(42), "None"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.c.String())
		})
	}
}

func TestIDs(t *testing.T) {
	assert.False(t, ServoID(0).Valid())
	assert.True(t, ServoID(1).Valid())
	assert.True(t, ServoID(6).Valid())
	assert.False(t, ServoID(7).Valid())

	assert.False(t, StopwatchID(0).Valid())
	assert.True(t, StopwatchID(8).Valid())
	assert.False(t, StopwatchID(9).Valid())

	assert.Equal(t, uint32(1), StopwatchID(1).Mask())
	assert.Equal(t, uint32(128), PacingStopwatch.Mask())
	assert.Equal(t, ChannelCurrent3, ServoID(3).CurrentChannel())
}

func TestClampWithin(t *testing.T) {
	assert.Equal(t, int16(499), Clamp[int16](600, -499, 499))
	assert.Equal(t, int16(-499), Clamp[int16](-600, -499, 499))
	assert.Equal(t, int16(10), Clamp[int16](10, -499, 499))

	assert.True(t, Within[int16](499, -500, 500))
	assert.False(t, Within[int16](500, -500, 500))
	assert.False(t, Within[int16](-500, -500, 500))

	assert.Equal(t, 5, Abs(-5))
	assert.Equal(t, int16(5), Abs(int16(5)))
}
