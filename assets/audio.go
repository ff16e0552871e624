package assets

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const SampleRate = 44100

var (
	audioOnce    sync.Once
	audioContext *audio.Context
)

// AudioContext returns the process-wide audio context, creating it on first
// use. Ebiten allows only one.
func AudioContext() *audio.Context {
	audioOnce.Do(func() {
		if ctx := audio.CurrentContext(); ctx != nil {
			audioContext = ctx
			return
		}
		audioContext = audio.NewContext(SampleRate)
	})
	return audioContext
}

// Tone renders a sine tone as 16-bit little-endian stereo PCM, the format
// ebiten players read. The first and last 5ms fade linearly to avoid clicks.
func Tone(sampleRate int, freq float64, d time.Duration, volume float64) []byte {
	n := int(float64(sampleRate) * d.Seconds())
	if n <= 0 {
		return nil
	}
	volume = math.Max(0, math.Min(volume, 1))
	fade := sampleRate / 200
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		env := 1.0
		if fade > 0 {
			env = math.Min(1, math.Min(float64(i)/float64(fade), float64(n-1-i)/float64(fade)))
		}
		s := math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)) * volume * env
		v := uint16(int16(s * math.MaxInt16))
		binary.LittleEndian.PutUint16(out[i*4:], v)
		binary.LittleEndian.PutUint16(out[i*4+2:], v)
	}
	return out
}

// TonePlayer wraps a rendered tone in a player on the shared context.
func TonePlayer(freq float64, d time.Duration, volume float64) *audio.Player {
	ctx := AudioContext()
	return ctx.NewPlayerFromBytes(Tone(ctx.SampleRate(), freq, d, volume))
}
