package spectral

import (
	"errors"
	"math"

	"github.com/RyanBlaney/sonido-consonance/algorithms/spectrum"
)

// ErrBufferTooShort is returned when a buffer cannot resolve the requested partials
var ErrBufferTooShort = errors.New("buffer too short to resolve partials")

// PartialEstimator measures partial amplitudes in a rendered buffer
type PartialEstimator struct {
	sampleRate int
	fft        *FFT
}

// NewPartialEstimator creates an estimator for buffers at sampleRate
func NewPartialEstimator(sampleRate int) *PartialEstimator {
	return &PartialEstimator{
		sampleRate: sampleRate,
		fft:        NewFFT(),
	}
}

// Estimate returns the sine amplitude found at fundamental·h for every harmonic h.
// The buffer is Hann windowed; each amplitude is the peak magnitude within one bin of
// the expected position, corrected for the window's coherent gain.
// Harmonics at or above Nyquist are reported with amplitude 0.
func (pe *PartialEstimator) Estimate(buffer []float64, fundamental float64, harmonics []float64) ([]spectrum.Partial, error) {
	n := len(buffer)
	if n < 4 || pe.sampleRate <= 0 {
		return nil, ErrBufferTooShort
	}

	window := HannWindow(n)
	windowed := make([]float64, n)
	for i, v := range buffer {
		windowed[i] = v * window[i]
	}
	magnitude := pe.fft.Magnitude(windowed)

	binWidth := float64(pe.sampleRate) / float64(n)
	if binWidth > fundamental {
		return nil, ErrBufferTooShort
	}

	// Sine amplitude A at bin centre gives |X| = A·N/2 · coherent gain (0.5)
	scale := 4.0 / float64(n)

	partials := make([]spectrum.Partial, len(harmonics))
	for i, h := range harmonics {
		partials[i] = spectrum.Partial{Harmonic: h}

		k := int(math.Round(fundamental * h / binWidth))
		if k <= 0 || k >= len(magnitude)-1 {
			continue
		}

		peak := 0.0
		for j := k - 1; j <= k+1; j++ {
			peak = math.Max(peak, magnitude[j])
		}
		partials[i].Amplitude = peak * scale
	}

	return partials, nil
}
