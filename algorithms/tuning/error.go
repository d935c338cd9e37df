package tuning

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-consonance/algorithms/common"
	"github.com/RyanBlaney/sonido-consonance/algorithms/spectrum"
)

// ToneError is the squared distance, in EDO steps, from the pitch class of a
// harmonic to the nearest step of the edo grid
func ToneError(harmonic float64, edo int) float64 {
	x := common.OctaveReduce(harmonic) * float64(edo)
	d := x - math.Round(x)
	return d * d
}

// EDOScaleError scores how well an equal division of the octave fits the
// pitch classes of every harmonic in s, weighted by amplitude. 0 is a perfect fit;
// a spectrum whose harmonics all fall halfway between steps scores 1.
func EDOScaleError(edo int, s *spectrum.Spectrum) (float64, error) {
	if edo < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidEDO, edo)
	}
	if s == nil {
		return 0, spectrum.ErrInvalidSpectrum
	}

	maxError := 0.25 * s.TotalAmplitude()
	total := 0.0
	for _, p := range s.Partials() {
		total += p.Amplitude * ToneError(p.Harmonic, edo)
	}

	return math.Sqrt(total / maxError), nil
}

// DistanceToneError is the squared distance from the pitch class of a harmonic to
// the nearest entry of a canonical scale, rescaled by len(scale)² so that it is
// comparable with ToneError
func DistanceToneError(harmonic float64, scale CanonicalScale) float64 {
	x := common.OctaveReduce(harmonic)
	minDiff := math.Inf(1)
	for _, p := range scale {
		d := x - p
		minDiff = math.Min(minDiff, d*d)
	}

	n := float64(len(scale))
	return minDiff * n * n
}

// CustomScaleError scores an arbitrary scale against the harmonics of s.
// Unlike EDOScaleError the normalization has no 0.25 factor.
func CustomScaleError(scale Scale, s *spectrum.Spectrum) (float64, error) {
	if s == nil {
		return 0, spectrum.ErrInvalidSpectrum
	}
	if err := validateRatios(scale); err != nil {
		return 0, err
	}

	canonical := Canonicalize(scale)
	if err := canonical.Validate(); err != nil {
		return 0, err
	}

	maxError := s.TotalAmplitude()
	total := 0.0
	for _, p := range s.Partials() {
		total += p.Amplitude * DistanceToneError(p.Harmonic, canonical)
	}

	return math.Sqrt(total / maxError), nil
}
