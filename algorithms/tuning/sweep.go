package tuning

import (
	"math"

	"github.com/RyanBlaney/sonido-consonance/algorithms/common"
	"github.com/RyanBlaney/sonido-consonance/algorithms/spectrum"
	"gonum.org/v1/gonum/floats"
)

// EDOLimit is the largest EDO a sweep will evaluate
const EDOLimit = 10000

// EDOError is the scale error of one EDO
type EDOError struct {
	EDO   int     `json:"edo"`
	Error float64 `json:"error"`
}

// SweepSummary describes a sweep's error distribution
type SweepSummary struct {
	Best   EDOError `json:"best"`
	Worst  EDOError `json:"worst"`
	Mean   float64  `json:"mean"`
	StdDev float64  `json:"std_dev"`
}

// ClampRange normalizes a sweep range: min into [1, EDOLimit] and max into
// [min+1, EDOLimit], so a sweep always covers at least two EDOs unless min is
// already at the limit
func ClampRange(minEDO, maxEDO int) (int, int) {
	minEDO = common.ClampInt(minEDO, 1, EDOLimit)
	if maxEDO < minEDO+1 {
		maxEDO = minEDO + 1
	}
	if maxEDO > EDOLimit {
		maxEDO = EDOLimit
	}
	return minEDO, maxEDO
}

// SweepEDO computes EDOScaleError for every EDO in the clamped range [minEDO, maxEDO]
func SweepEDO(minEDO, maxEDO int, s *spectrum.Spectrum) ([]EDOError, error) {
	if s == nil {
		return nil, spectrum.ErrInvalidSpectrum
	}
	minEDO, maxEDO = ClampRange(minEDO, maxEDO)

	results := make([]EDOError, 0, maxEDO-minEDO+1)
	for edo := minEDO; edo <= maxEDO; edo++ {
		e, err := EDOScaleError(edo, s)
		if err != nil {
			return nil, err
		}
		results = append(results, EDOError{EDO: edo, Error: e})
	}
	return results, nil
}

// BestEDO returns the entry with the lowest error; the smallest EDO wins ties
func BestEDO(results []EDOError) (EDOError, bool) {
	if len(results) == 0 {
		return EDOError{}, false
	}
	return results[floats.MinIdx(errorsOf(results))], true
}

// Summarize computes best/worst and the mean and spread of a sweep
func Summarize(results []EDOError) SweepSummary {
	if len(results) == 0 {
		return SweepSummary{}
	}
	values := errorsOf(results)
	return SweepSummary{
		Best:   results[floats.MinIdx(values)],
		Worst:  results[floats.MaxIdx(values)],
		Mean:   common.Mean(values),
		StdDev: common.StandardDeviation(values),
	}
}

func errorsOf(results []EDOError) []float64 {
	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.Error
	}
	return values
}

// HarmonicPosition locates one harmonic on the octave circle of an EDO
type HarmonicPosition struct {
	Harmonic   float64 `json:"harmonic"`
	Amplitude  float64 `json:"amplitude"`
	PitchClass float64 `json:"pitch_class"` // log2(h) mod 1
	Ratio      float64 `json:"ratio"`       // harmonic reduced into [1, 2)
	Step       float64 `json:"step"`        // position in EDO steps
	Nearest    int     `json:"nearest"`     // nearest EDO step, n wraps to 0
	Error      float64 `json:"error"`       // ToneError
}

// HarmonicPositions places every sounding harmonic of s on the edo circle
func HarmonicPositions(s *spectrum.Spectrum, edo int) ([]HarmonicPosition, error) {
	if s == nil {
		return nil, spectrum.ErrInvalidSpectrum
	}
	if edo < 1 {
		return nil, ErrInvalidEDO
	}

	var positions []HarmonicPosition
	for _, p := range s.Partials() {
		if p.Amplitude <= 0 {
			continue
		}
		pc := common.OctaveReduce(p.Harmonic)
		step := pc * float64(edo)
		positions = append(positions, HarmonicPosition{
			Harmonic:   p.Harmonic,
			Amplitude:  p.Amplitude,
			PitchClass: pc,
			Ratio:      math.Pow(2, pc),
			Step:       step,
			Nearest:    int(math.Round(step)) % edo,
			Error:      ToneError(p.Harmonic, edo),
		})
	}
	return positions, nil
}
