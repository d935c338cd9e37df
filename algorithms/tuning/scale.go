package tuning

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-consonance/algorithms/common"
)

// Sentinel errors
var (
	ErrInvalidEDO   = errors.New("EDO must have at least one step")
	ErrInvalidScale = errors.New("scale needs at least two distinct pitch classes")
)

// Scale is an ordered list of frequency ratios describing one octave of a tuning,
// normally within [1, 2)
type Scale []float64

// EDO returns the n-step equal division of the octave {2^(i/n) : i = 0..n-1}
func EDO(n int) (Scale, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidEDO, n)
	}
	scale := make(Scale, n)
	for i := range n {
		scale[i] = math.Pow(2, float64(i)/float64(n))
	}
	return scale, nil
}

// CanonicalScale holds octave-reduced log2 positions in ascending order,
// deduplicated, and closed by a trailing 1.0 (the octave).
type CanonicalScale []float64

// Canonicalize maps ratios to sorted, deduplicated log2 positions in [0, 1) and
// appends the octave sentinel 1.0 unless the largest position is already within
// common.Epsilon of it.
func Canonicalize(ratios []float64) CanonicalScale {
	positions := make([]float64, 0, len(ratios)+1)
	for _, r := range ratios {
		positions = append(positions, common.OctaveReduce(r))
	}
	sort.Float64s(positions)

	canonical := make(CanonicalScale, 0, len(positions)+1)
	for _, p := range positions {
		if n := len(canonical); n > 0 && p-canonical[n-1] < common.Epsilon {
			continue
		}
		canonical = append(canonical, p)
	}

	if n := len(canonical); n == 0 || canonical[n-1] < 1.0-common.Epsilon {
		canonical = append(canonical, 1.0)
	}
	return canonical
}

// Canonical returns the canonical form of the scale
func (s Scale) Canonical() CanonicalScale {
	return Canonicalize(s)
}

// Ratios converts the positions back to frequency ratios in [1, 2).
// The octave sentinel is dropped, so Canonicalize(c.Ratios()) == c.
func (c CanonicalScale) Ratios() Scale {
	ratios := make(Scale, 0, len(c))
	for _, p := range c {
		if p >= 1.0 {
			continue
		}
		ratios = append(ratios, math.Pow(2, p))
	}
	return ratios
}

// Grid converts every position, sentinel included, to a ratio in [1, 2]
func (c CanonicalScale) Grid() []float64 {
	grid := make([]float64, len(c))
	for i, p := range c {
		grid[i] = math.Pow(2, p)
	}
	return grid
}

// Validate checks that the canonical scale can be used as a tuning grid
func (c CanonicalScale) Validate() error {
	if len(c) < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidScale, len(c))
	}
	return nil
}

// validateRatios rejects ratios that have no pitch class
func validateRatios(ratios []float64) error {
	for _, r := range ratios {
		if !common.IsFinite(r) || r <= 0 {
			return fmt.Errorf("%w: ratio %v is not a positive number", ErrInvalidScale, r)
		}
	}
	return nil
}

// ParseScale reads comma separated ratios, each either a decimal ("1.5") or a
// fraction ("3/2")
func ParseScale(text string) (Scale, error) {
	var scale Scale
	for _, field := range strings.Split(text, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		r, err := parseRatio(field)
		if err != nil {
			return nil, err
		}
		scale = append(scale, r)
	}

	if err := validateRatios(scale); err != nil {
		return nil, err
	}
	if len(scale) == 0 {
		return nil, fmt.Errorf("%w: no ratios given", ErrInvalidScale)
	}
	return scale, nil
}

func parseRatio(field string) (float64, error) {
	num, den, isFraction := strings.Cut(field, "/")
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed ratio %q: %w", field, err)
	}
	if !isFraction {
		return n, nil
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed ratio %q: %w", field, err)
	}
	if d == 0 {
		return 0, fmt.Errorf("malformed ratio %q: zero denominator", field)
	}
	return n / d, nil
}
