package assets

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTone(t *testing.T) {
	pcm := Tone(1000, 50, 100*time.Millisecond, 0.5)
	require.Len(t, pcm, 100*4)

	first := int16(binary.LittleEndian.Uint16(pcm[0:]))
	assert.Zero(t, first, "starts silent")

	peak := 0
	for i := 0; i < len(pcm); i += 4 {
		l := int16(binary.LittleEndian.Uint16(pcm[i:]))
		r := int16(binary.LittleEndian.Uint16(pcm[i+2:]))
		require.Equal(t, l, r, "both channels carry the same sample")
		if v := int(l); v > peak {
			peak = v
		} else if -v > peak {
			peak = -v
		}
	}
	assert.Greater(t, peak, 0)
	assert.LessOrEqual(t, peak, 32767/2+1)
}

func TestToneEmpty(t *testing.T) {
	assert.Nil(t, Tone(44100, 440, 0, 1))
}
