package playback

import (
	"github.com/gopxl/beep"
)

// bufferStreamer plays a mono sample buffer on both channels
type bufferStreamer struct {
	samples []float64
	gain    float64
	pos     int
}

// NewBufferStreamer exposes a rendered buffer as a beep.Streamer.
// Samples are scaled by gain and clipped to [-1, 1].
func NewBufferStreamer(samples []float64, gain float64) beep.StreamSeeker {
	return &bufferStreamer{samples: samples, gain: gain}
}

func (b *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if b.pos >= len(b.samples) {
		return 0, false
	}

	for i := range samples {
		if b.pos >= len(b.samples) {
			return i, true
		}
		v := clip(b.samples[b.pos] * b.gain)
		samples[i][0] = v
		samples[i][1] = v
		b.pos++
	}
	return len(samples), true
}

func (b *bufferStreamer) Err() error { return nil }

func (b *bufferStreamer) Len() int { return len(b.samples) }

func (b *bufferStreamer) Position() int { return b.pos }

func (b *bufferStreamer) Seek(p int) error {
	if p < 0 || p > len(b.samples) {
		return ErrSeekOutOfRange
	}
	b.pos = p
	return nil
}

func clip(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
