package dissonance

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-consonance/algorithms/common"
	"github.com/RyanBlaney/sonido-consonance/algorithms/spectrum"
	"gonum.org/v1/gonum/floats"
)

// DefaultPointCount is the number of ratio samples in a curve
const DefaultPointCount = 1000

// Sentinel errors
var (
	ErrInvalidFrequency  = errors.New("base frequency must be finite and positive")
	ErrInvalidPointCount = errors.New("a curve needs at least two points")
)

// Point is one sample of a dissonance curve
type Point struct {
	Ratio float64 `json:"ratio"`
	Value float64 `json:"value"`
}

// Curve is the dissonance of a spectrum against a shifted copy of itself,
// sampled over ratios 2^(2i/(n-1)), i.e. two octaves [1, 4].
// Values are normalized so the largest sample is 1.
type Curve struct {
	Ratios        []float64 `json:"ratios"`
	Values        []float64 `json:"values"`
	Normalizer    float64   `json:"normalizer"`
	BaseFrequency float64   `json:"base_frequency"`

	base     []Sine
	partials []spectrum.Partial
}

// ComputeCurve samples the dissonance curve of s at the given base frequency.
// Samples are independent and computed in parallel.
func ComputeCurve(s *spectrum.Spectrum, baseFrequency float64, pointCount int) (*Curve, error) {
	if s == nil {
		return nil, spectrum.ErrInvalidSpectrum
	}
	if !common.IsFinite(baseFrequency) || baseFrequency <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrequency, baseFrequency)
	}
	if pointCount < 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPointCount, pointCount)
	}

	c := &Curve{
		BaseFrequency: baseFrequency,
		base:          NewWave(baseFrequency, s).Sines(),
		partials:      s.Partials(),
	}

	c.Ratios = make([]float64, pointCount)
	for i := range pointCount {
		c.Ratios[i] = math.Pow(2, 2.0*float64(i)/float64(pointCount-1))
	}

	raw := common.ParallelFill(pointCount, func(i int) float64 {
		return c.Raw(c.Ratios[i])
	})

	c.Normalizer = 1.0
	if peak := common.Max(raw); peak != 0 {
		c.Normalizer = 1.0 / peak
	}
	floats.Scale(c.Normalizer, raw)
	c.Values = raw

	return c, nil
}

// Raw returns the unnormalized dissonance between the base wave and the wave at ratio × base
func (c *Curve) Raw(ratio float64) float64 {
	shifted := make([]Sine, len(c.partials))
	f := c.BaseFrequency * ratio
	for i, p := range c.partials {
		shifted[i] = Sine{Frequency: f * p.Harmonic, Amplitude: p.Amplitude}
	}
	return dissonance(c.base, shifted)
}

// Evaluate returns the dissonance at an arbitrary ratio on the curve's normalized scale
func (c *Curve) Evaluate(ratio float64) float64 {
	return c.Raw(ratio) * c.Normalizer
}

// Len returns the number of samples
func (c *Curve) Len() int {
	return len(c.Ratios)
}

// Points returns the samples as (ratio, value) pairs
func (c *Curve) Points() []Point {
	points := make([]Point, len(c.Ratios))
	for i := range c.Ratios {
		points[i] = Point{Ratio: c.Ratios[i], Value: c.Values[i]}
	}
	return points
}

// Window returns the samples whose ratio lies within [lo, hi]
func (c *Curve) Window(lo, hi float64) []Point {
	var points []Point
	for i, r := range c.Ratios {
		if r >= lo && r <= hi {
			points = append(points, Point{Ratio: r, Value: c.Values[i]})
		}
	}
	return points
}

// Minima returns the interior local minima of the curve, in ascending ratio order.
// These are the ratios at which the spectrum is most consonant with itself.
func (c *Curve) Minima() []Point {
	indices := common.FindValleys(c.Values)
	points := make([]Point, len(indices))
	for i, idx := range indices {
		points[i] = Point{Ratio: c.Ratios[idx], Value: c.Values[idx]}
	}
	return points
}
