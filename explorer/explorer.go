// Package explorer is the entry point for computing dissonance curves, scale errors,
// snapped ratios and playable buffers from one harmonic spectrum
package explorer

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-consonance/algorithms/common"
	"github.com/RyanBlaney/sonido-consonance/algorithms/dissonance"
	"github.com/RyanBlaney/sonido-consonance/algorithms/spectral"
	"github.com/RyanBlaney/sonido-consonance/algorithms/spectrum"
	"github.com/RyanBlaney/sonido-consonance/algorithms/synthesis"
	"github.com/RyanBlaney/sonido-consonance/algorithms/tuning"
	"github.com/RyanBlaney/sonido-consonance/logging"
)

// Envelope peaks for rendered sounds
const (
	intervalAmplitude = 1.0
	noteAmplitude     = 0.5
)

// IntervalValue is the curve value at a named just interval
type IntervalValue struct {
	tuning.Interval
	Value float64 `json:"value"`
}

// Sweep is the result of scoring a range of EDOs
type Sweep struct {
	Results []tuning.EDOError   `json:"results"`
	Summary tuning.SweepSummary `json:"summary"`
}

// Explorer ties the analysis packages together behind one configuration
type Explorer struct {
	config *Config
	logger logging.Logger
}

// New creates an explorer. A nil config uses DefaultConfig; a nil logger uses the
// global logger.
func New(cfg *Config, logger logging.Logger) (*Explorer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	c := *cfg
	e := &Explorer{
		config: &c,
		logger: logger.WithFields(logging.Fields{"component": "explorer"}),
	}
	e.config.BaseFrequency = e.clampFrequency(c.BaseFrequency)
	return e, nil
}

// Config returns a copy of the active configuration
func (e *Explorer) Config() Config {
	return *e.config
}

// DefaultSpectrum builds the configured harmonic series
func (e *Explorer) DefaultSpectrum() (*spectrum.Spectrum, error) {
	return spectrum.HarmonicSeries(e.config.Harmonics, e.config.Rolloff)
}

func (e *Explorer) clampFrequency(f float64) float64 {
	if !common.IsFinite(f) || f <= 0 {
		return f
	}
	clamped := ClampBaseFrequency(f)
	if clamped != f {
		e.logger.Warn("Base frequency clamped", logging.Fields{
			"requested": f,
			"clamped":   clamped,
		})
	}
	return clamped
}

// ComputeDissonanceCurve samples the dissonance curve of s. A base frequency outside
// [20, 20000] Hz is clamped; pointCount <= 0 uses the configured count.
func (e *Explorer) ComputeDissonanceCurve(s *spectrum.Spectrum, baseFrequency float64, pointCount int) (*dissonance.Curve, error) {
	if pointCount <= 0 {
		pointCount = e.config.PointCount
	}
	baseFrequency = e.clampFrequency(baseFrequency)

	curve, err := dissonance.ComputeCurve(s, baseFrequency, pointCount)
	if err != nil {
		e.logger.Error(err, "Failed to compute dissonance curve")
		return nil, err
	}

	e.logger.Debug("Dissonance curve computed", logging.Fields{
		"base_frequency": baseFrequency,
		"points":         pointCount,
		"normalizer":     curve.Normalizer,
	})
	return curve, nil
}

// EvaluateDissonance returns the normalized dissonance at any ratio
func (e *Explorer) EvaluateDissonance(curve *dissonance.Curve, ratio float64) float64 {
	return curve.Evaluate(ratio)
}

// AnnotateIntervals evaluates the curve at every just interval
func (e *Explorer) AnnotateIntervals(curve *dissonance.Curve) []IntervalValue {
	values := make([]IntervalValue, len(tuning.JustIntervals))
	for i, iv := range tuning.JustIntervals {
		values[i] = IntervalValue{Interval: iv, Value: curve.Evaluate(iv.Ratio)}
	}
	return values
}

// EDOScaleError scores an EDO against s
func (e *Explorer) EDOScaleError(edo int, s *spectrum.Spectrum) (float64, error) {
	v, err := tuning.EDOScaleError(edo, s)
	if err != nil {
		e.logger.Error(err, "Failed to compute EDO scale error", logging.Fields{"edo": edo})
		return 0, err
	}
	return v, nil
}

// CustomScaleError scores an arbitrary scale against s
func (e *Explorer) CustomScaleError(scale tuning.Scale, s *spectrum.Spectrum) (float64, error) {
	v, err := tuning.CustomScaleError(scale, s)
	if err != nil {
		e.logger.Error(err, "Failed to compute custom scale error", logging.Fields{"size": len(scale)})
		return 0, err
	}
	return v, nil
}

// SweepEDO scores every EDO in [minEDO, maxEDO]. The range is clamped the same way
// tuning.ClampRange does; zero bounds use the configured sweep.
func (e *Explorer) SweepEDO(s *spectrum.Spectrum, minEDO, maxEDO int) (*Sweep, error) {
	if minEDO == 0 && maxEDO == 0 {
		minEDO, maxEDO = e.config.SweepMin, e.config.SweepMax
	}
	lo, hi := tuning.ClampRange(minEDO, maxEDO)
	if lo != minEDO || hi != maxEDO {
		e.logger.Warn("EDO range clamped", logging.Fields{
			"requested": fmt.Sprintf("%d-%d", minEDO, maxEDO),
			"clamped":   fmt.Sprintf("%d-%d", lo, hi),
		})
	}

	results, err := tuning.SweepEDO(lo, hi, s)
	if err != nil {
		e.logger.Error(err, "Failed to sweep EDOs")
		return nil, err
	}

	sweep := &Sweep{Results: results, Summary: tuning.Summarize(results)}
	e.logger.Debug("EDO sweep complete", logging.Fields{
		"min":      lo,
		"max":      hi,
		"best_edo": sweep.Summary.Best.EDO,
	})
	return sweep, nil
}

// HarmonicPositions places the harmonics of s on the edo circle
func (e *Explorer) HarmonicPositions(s *spectrum.Spectrum, edo int) ([]tuning.HarmonicPosition, error) {
	return tuning.HarmonicPositions(s, edo)
}

// SnapRatio snaps ratio against just intervals and ctx. threshold <= 0 uses the
// configured threshold; a nil ctx uses the configured EDO.
func (e *Explorer) SnapRatio(ratio float64, ctx tuning.TuningContext, threshold float64) (float64, tuning.MatchKind) {
	if threshold <= 0 {
		threshold = e.config.SnapThreshold
	}
	if ctx == nil {
		ctx = tuning.EDOContext{Steps: e.config.EDO}
	}
	return tuning.SnapRatio(ratio, ctx, threshold)
}

// RenderBuffer renders s at frequency under a linear envelope spanning the whole
// buffer. With a ratio the result mixes the base and shifted pitches equally.
// duration <= 0 and sampleRate <= 0 use the configured values.
func (e *Explorer) RenderBuffer(s *spectrum.Spectrum, frequency float64, ratio *float64, duration float64, sampleRate int) ([]float64, error) {
	duration, sampleRate = e.soundDefaults(duration, sampleRate)

	w, err := synthesis.NewWaveform(s)
	if err != nil {
		e.logger.Error(err, "Failed to build waveform")
		return nil, err
	}

	var wave synthesis.Waveform = synthesis.ApplyEnvelope(w, duration, intervalAmplitude)
	if ratio != nil {
		wave = synthesis.CombineWaves(wave, *ratio, synthesis.DefaultWeight)
	}

	return e.render(wave, frequency, duration, sampleRate)
}

// RenderHarmonic renders s at the pitch of harmonic h folded into the octave above
// baseFrequency
func (e *Explorer) RenderHarmonic(s *spectrum.Spectrum, baseFrequency, harmonic float64) ([]float64, error) {
	if !common.IsFinite(harmonic) || harmonic <= 0 {
		return nil, fmt.Errorf("%w: %v", spectrum.ErrInvalidHarmonic, harmonic)
	}
	factor := math.Pow(2, common.OctaveReduce(harmonic))
	return e.renderNote(s, baseFrequency*factor)
}

// RenderStep renders s at step i of an n-EDO above baseFrequency
func (e *Explorer) RenderStep(s *spectrum.Spectrum, baseFrequency float64, step, edo int) ([]float64, error) {
	if edo < 1 {
		return nil, fmt.Errorf("%w: %d", tuning.ErrInvalidEDO, edo)
	}
	ratio := math.Pow(2, float64(step)/float64(edo))
	return e.renderNote(s, baseFrequency*ratio)
}

// EstimateSpectrum measures the amplitudes of the given harmonics in a buffer
// rendered at fundamental
func (e *Explorer) EstimateSpectrum(buffer []float64, fundamental float64, harmonics []float64, sampleRate int) ([]spectrum.Partial, error) {
	if sampleRate <= 0 {
		sampleRate = e.config.SampleRate
	}
	partials, err := spectral.NewPartialEstimator(sampleRate).Estimate(buffer, fundamental, harmonics)
	if err != nil {
		e.logger.Error(err, "Failed to estimate partials", logging.Fields{"samples": len(buffer)})
		return nil, err
	}
	return partials, nil
}

func (e *Explorer) renderNote(s *spectrum.Spectrum, frequency float64) ([]float64, error) {
	duration, sampleRate := e.soundDefaults(0, 0)

	w, err := synthesis.NewWaveform(s)
	if err != nil {
		e.logger.Error(err, "Failed to build waveform")
		return nil, err
	}
	return e.render(synthesis.ApplyEnvelope(w, duration, noteAmplitude), frequency, duration, sampleRate)
}

func (e *Explorer) render(w synthesis.Waveform, frequency, duration float64, sampleRate int) ([]float64, error) {
	buffer, err := synthesis.RenderBuffer(w, frequency, duration, sampleRate)
	if err != nil {
		e.logger.Error(err, "Failed to render buffer")
		return nil, err
	}

	e.logger.Debug("Buffer rendered", logging.Fields{
		"frequency":   frequency,
		"samples":     len(buffer),
		"sample_rate": sampleRate,
	})
	return buffer, nil
}

func (e *Explorer) soundDefaults(duration float64, sampleRate int) (float64, int) {
	if duration <= 0 {
		duration = e.config.Duration
	}
	if sampleRate <= 0 {
		sampleRate = e.config.SampleRate
	}
	return duration, sampleRate
}
