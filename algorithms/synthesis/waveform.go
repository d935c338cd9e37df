package synthesis

import (
	"math"

	"github.com/RyanBlaney/sonido-consonance/algorithms/spectrum"
)

const (
	// DefaultSampleRate is the playback sample rate
	DefaultSampleRate = 44100

	// DefaultDuration is the length of a rendered sound in seconds
	DefaultDuration = 1.0

	// DefaultWeight mixes base and shifted pitches equally
	DefaultWeight = 0.5
)

// Waveform is a continuous-time signal parameterised by fundamental frequency
type Waveform interface {
	Evaluate(t, frequency float64) float64
}

// WaveformFunc adapts a plain function to Waveform
type WaveformFunc func(t, frequency float64) float64

// Evaluate calls f(t, frequency)
func (f WaveformFunc) Evaluate(t, frequency float64) float64 {
	return f(t, frequency)
}

// Additive sums the partials of a spectrum as phase-aligned sines.
// Output is scaled by 1/Σ amplitudes so it stays within [-1, 1].
type Additive struct {
	partials   []spectrum.Partial
	normalizer float64
}

// NewWaveform creates an additive waveform for s
func NewWaveform(s *spectrum.Spectrum) (*Additive, error) {
	if s == nil || s.TotalAmplitude() <= 0 {
		return nil, spectrum.ErrInvalidSpectrum
	}
	return &Additive{
		partials:   s.Partials(),
		normalizer: 1.0 / s.TotalAmplitude(),
	}, nil
}

// Evaluate returns the normalized sum of sin(2π·f·h·t) weighted by amplitude
func (a *Additive) Evaluate(t, frequency float64) float64 {
	sum := 0.0
	for _, p := range a.partials {
		sum += p.Amplitude * math.Sin(2*math.Pi*frequency*p.Harmonic*t)
	}
	return a.normalizer * sum
}

// Envelope applies a linear decay from BaseAmplitude at t=0 to silence at Duration
type Envelope struct {
	Source        Waveform
	Duration      float64
	BaseAmplitude float64
}

// ApplyEnvelope wraps w in a linear-decay envelope
func ApplyEnvelope(w Waveform, duration, baseAmplitude float64) *Envelope {
	return &Envelope{Source: w, Duration: duration, BaseAmplitude: baseAmplitude}
}

// Gain returns the envelope amplitude at time t
func (e *Envelope) Gain(t float64) float64 {
	if e.Duration <= 0 {
		if t <= 0 {
			return e.BaseAmplitude
		}
		return 0
	}
	return e.BaseAmplitude * math.Max(0, 1-t/e.Duration)
}

// Evaluate returns Gain(t) · Source(t, frequency)
func (e *Envelope) Evaluate(t, frequency float64) float64 {
	return e.Gain(t) * e.Source.Evaluate(t, frequency)
}

// Combined superposes a waveform with a copy of itself shifted by Ratio
type Combined struct {
	Source Waveform
	Ratio  float64
	Weight float64
}

// CombineWaves renders the interval ratio: (1-weight)·w(t, f) + weight·w(t, f·ratio)
func CombineWaves(w Waveform, ratio, weight float64) *Combined {
	return &Combined{Source: w, Ratio: ratio, Weight: weight}
}

// Evaluate mixes the base and shifted pitches
func (c *Combined) Evaluate(t, frequency float64) float64 {
	return (1-c.Weight)*c.Source.Evaluate(t, frequency) + c.Weight*c.Source.Evaluate(t, frequency*c.Ratio)
}
