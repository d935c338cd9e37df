package dissonance

import (
	"math"

	"github.com/RyanBlaney/sonido-consonance/algorithms/spectrum"
)

// Plomp-Levelt roughness constants as parameterised by Sethares
const (
	dstar = 0.24   // interval of maximum roughness, in critical bandwidths
	s1    = 0.0207 // critical bandwidth slope
	s2    = 18.96  // critical bandwidth offset (Hz)
	b1    = 3.51   // rate of rise
	b2    = 5.75   // rate of decay
)

// Sine is a single partial
type Sine struct {
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"`
}

// Sines treats a lone sine as a one-harmonic wave
func (s Sine) Sines() []Sine {
	return []Sine{s}
}

// Wave is a fundamental frequency carrying a harmonic spectrum
type Wave struct {
	Frequency float64
	Spectrum  *spectrum.Spectrum
}

// NewWave creates a wave at the given fundamental
func NewWave(frequency float64, s *spectrum.Spectrum) Wave {
	return Wave{Frequency: frequency, Spectrum: s}
}

// Sine derives the partial for harmonic h; amplitude is 0 if h is not declared
func (w Wave) Sine(h float64) Sine {
	return Sine{
		Frequency: w.Frequency * h,
		Amplitude: w.Spectrum.Amplitude(h),
	}
}

// Sines returns one partial per declared harmonic, zero-amplitude ones included
func (w Wave) Sines() []Sine {
	if w.Spectrum == nil {
		return nil
	}
	partials := w.Spectrum.Partials()
	sines := make([]Sine, len(partials))
	for i, p := range partials {
		sines[i] = Sine{Frequency: w.Frequency * p.Harmonic, Amplitude: p.Amplitude}
	}
	return sines
}

// Source is anything that can be decomposed into partials
type Source interface {
	Sines() []Sine
}

// Score computes the roughness between two partials.
// Symmetric in its arguments; zero for equal frequencies or a silent partial.
func Score(a, b Sine) float64 {
	fmin := math.Min(a.Frequency, b.Frequency)
	fmax := math.Max(a.Frequency, b.Frequency)

	s := dstar / (s1*fmin + s2)
	p := s * (fmax - fmin)

	amplitude := math.Min(a.Amplitude, b.Amplitude)
	return amplitude * (math.Exp(-b1*p) - math.Exp(-b2*p))
}

// Dissonance sums Score over every pair of partials from a and b
func Dissonance(a, b Source) float64 {
	return dissonance(a.Sines(), b.Sines())
}

func dissonance(as, bs []Sine) float64 {
	d := 0.0
	for _, sa := range as {
		for _, sb := range bs {
			d += Score(sa, sb)
		}
	}
	return d
}
