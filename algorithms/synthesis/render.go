package synthesis

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-consonance/algorithms/common"
)

// ErrInvalidRender reports render parameters that cannot produce a buffer
var ErrInvalidRender = errors.New("invalid render parameters")

// BufferLength returns ceil(sampleRate · duration)
func BufferLength(duration float64, sampleRate int) int {
	return int(math.Ceil(float64(sampleRate) * duration))
}

// RenderBuffer samples w at frequency for durationSeconds.
// Sample i is w(i/sampleRate, frequency); samples are computed in parallel.
func RenderBuffer(w Waveform, frequency, durationSeconds float64, sampleRate int) ([]float64, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil waveform", ErrInvalidRender)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidRender, sampleRate)
	}
	if !common.IsFinite(durationSeconds) || durationSeconds < 0 {
		return nil, fmt.Errorf("%w: duration %v", ErrInvalidRender, durationSeconds)
	}
	if !common.IsFinite(frequency) || frequency <= 0 {
		return nil, fmt.Errorf("%w: frequency %v", ErrInvalidRender, frequency)
	}

	rate := float64(sampleRate)
	n := BufferLength(durationSeconds, sampleRate)
	return common.ParallelFill(n, func(i int) float64 {
		return w.Evaluate(float64(i)/rate, frequency)
	}), nil
}

// Peak returns the largest absolute sample value
func Peak(buffer []float64) float64 {
	peak := 0.0
	for _, v := range buffer {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}
