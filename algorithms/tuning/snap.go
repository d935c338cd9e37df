package tuning

import (
	"math"
)

// DefaultSnapThreshold is the largest ratio distance that still snaps
const DefaultSnapThreshold = 0.01

// MatchKind tells what a ratio was snapped to
type MatchKind int

const (
	MatchNone     MatchKind = iota // left unchanged
	MatchInterval                  // a just-intonation interval
	MatchEDO                       // a step of an equal division
	MatchCustom                    // an entry of a custom scale
)

func (m MatchKind) String() string {
	switch m {
	case MatchNone:
		return "none"
	case MatchInterval:
		return "interval"
	case MatchEDO:
		return "edo"
	case MatchCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Interval is a named just-intonation ratio
type Interval struct {
	Ratio float64 `json:"ratio"`
	Name  string  `json:"name"`
}

// JustIntervals are the reference intervals ratios snap to, in ascending order
var JustIntervals = []Interval{
	{1, "unison"},
	{9.0 / 8, "major second"},
	{5.0 / 4, "major third"},
	{4.0 / 3, "perfect fourth"},
	{3.0 / 2, "perfect fifth"},
	{5.0 / 3, "major sixth"},
	{15.0 / 8, "major seventh"},
	{2, "octave"},
}

// NearestInterval returns the just interval closest to ratio and its distance
func NearestInterval(ratio float64) (Interval, float64) {
	best := JustIntervals[0]
	bestDiff := math.Inf(1)
	for _, iv := range JustIntervals {
		if d := math.Abs(ratio - iv.Ratio); d < bestDiff {
			best, bestDiff = iv, d
		}
	}
	return best, bestDiff
}

// TuningContext is a grid of ratios a pointer position can snap to
type TuningContext interface {
	// Nearest returns the grid ratio closest to ratio and the kind of match it produces
	Nearest(ratio float64) (float64, MatchKind)
}

// EDOContext snaps to the steps of an n-EDO
type EDOContext struct {
	Steps int
}

// Nearest rounds log2(ratio)·n to a whole step
func (e EDOContext) Nearest(ratio float64) (float64, MatchKind) {
	if e.Steps < 1 {
		return math.NaN(), MatchNone
	}
	n := float64(e.Steps)
	return math.Pow(2, math.Round(math.Log2(ratio)*n)/n), MatchEDO
}

// ScaleContext snaps to the entries of a custom scale
type ScaleContext struct {
	ratios []float64
}

// NewScaleContext builds a snapping grid from the canonical form of scale,
// so the octave 2/1 is always a candidate
func NewScaleContext(scale Scale) (*ScaleContext, error) {
	if err := validateRatios(scale); err != nil {
		return nil, err
	}
	canonical := Canonicalize(scale)
	if err := canonical.Validate(); err != nil {
		return nil, err
	}
	return &ScaleContext{ratios: canonical.Grid()}, nil
}

// Ratios returns the grid ratios, octave included
func (c *ScaleContext) Ratios() []float64 {
	out := make([]float64, len(c.ratios))
	copy(out, c.ratios)
	return out
}

// Nearest returns the closest scale entry
func (c *ScaleContext) Nearest(ratio float64) (float64, MatchKind) {
	best := math.NaN()
	bestDiff := math.Inf(1)
	for _, r := range c.ratios {
		if d := math.Abs(ratio - r); d < bestDiff {
			best, bestDiff = r, d
		}
	}
	return best, MatchCustom
}

// SnapRatio quantizes a ratio in [1, 2] to the closer of the nearest just interval
// and the nearest grid ratio of ctx, provided that one of them is within threshold.
// Ties go to the just interval. Ratios outside [1, 2] are returned unchanged.
func SnapRatio(ratio float64, ctx TuningContext, threshold float64) (float64, MatchKind) {
	if math.IsNaN(ratio) || ratio < 1 || ratio > 2 {
		return ratio, MatchNone
	}

	interval, intervalDiff := NearestInterval(ratio)

	gridRatio, gridKind := math.NaN(), MatchNone
	if ctx != nil {
		gridRatio, gridKind = ctx.Nearest(ratio)
	}
	gridDiff := math.Abs(ratio - gridRatio)
	if math.IsNaN(gridDiff) {
		gridDiff = math.Inf(1)
	}

	if intervalDiff >= threshold && gridDiff >= threshold {
		return ratio, MatchNone
	}
	if intervalDiff <= gridDiff {
		return interval.Ratio, MatchInterval
	}
	return gridRatio, gridKind
}
