package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-consonance/algorithms/common"
)

const (
	// MaxHarmonics bounds the size of generated harmonic series
	MaxHarmonics = 100

	// DefaultHarmonics is the number of partials in the default series
	DefaultHarmonics = 32

	// DefaultRolloff is the exponent of the default 1/h^p amplitude rolloff
	DefaultRolloff = 1.5
)

// Sentinel errors
var (
	ErrInvalidSpectrum  = errors.New("invalid spectrum: empty or all amplitudes zero")
	ErrInvalidHarmonic  = errors.New("harmonic index must be finite and positive")
	ErrInvalidAmplitude = errors.New("amplitude must be within [0, 1]")
)

// Partial is a single harmonic index and its amplitude
type Partial struct {
	Harmonic  float64 `json:"harmonic"`
	Amplitude float64 `json:"amplitude"`
}

// Spectrum maps harmonic indices to amplitudes.
// Indices are positive reals, so inharmonic partials are allowed. A Spectrum is
// immutable once built; every constructor validates and copies its input.
type Spectrum struct {
	partials []Partial // sorted by harmonic
	total    float64
	peak     float64
}

// New builds a spectrum from a harmonic -> amplitude map
func New(amplitudes map[float64]float64) (*Spectrum, error) {
	partials := make([]Partial, 0, len(amplitudes))
	for h, a := range amplitudes {
		partials = append(partials, Partial{Harmonic: h, Amplitude: a})
	}
	return FromPartials(partials)
}

// FromPartials builds a spectrum from a list of partials. Duplicate harmonics are rejected.
func FromPartials(partials []Partial) (*Spectrum, error) {
	if len(partials) == 0 {
		return nil, ErrInvalidSpectrum
	}

	sorted := make([]Partial, len(partials))
	copy(sorted, partials)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Harmonic < sorted[j].Harmonic
	})

	amplitudes := make([]float64, len(sorted))
	for i, p := range sorted {
		if !common.IsFinite(p.Harmonic) || p.Harmonic <= 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidHarmonic, p.Harmonic)
		}
		if math.IsNaN(p.Amplitude) || p.Amplitude < 0 || p.Amplitude > 1 {
			return nil, fmt.Errorf("%w: harmonic %v has amplitude %v", ErrInvalidAmplitude, p.Harmonic, p.Amplitude)
		}
		if i > 0 && sorted[i-1].Harmonic == p.Harmonic {
			return nil, fmt.Errorf("%w: duplicate harmonic %v", ErrInvalidSpectrum, p.Harmonic)
		}
		amplitudes[i] = p.Amplitude
	}

	total := common.Sum(amplitudes)
	if total <= 0 {
		return nil, ErrInvalidSpectrum
	}

	return &Spectrum{
		partials: sorted,
		total:    total,
		peak:     common.Max(amplitudes),
	}, nil
}

// HarmonicSeries builds the integer series {h: 1/h^rolloff} for h = 1..count.
// count is clamped to [1, MaxHarmonics].
func HarmonicSeries(count int, rolloff float64) (*Spectrum, error) {
	if !common.IsFinite(rolloff) || rolloff < 0 {
		return nil, fmt.Errorf("rolloff must be a non-negative number, got %v", rolloff)
	}
	count = common.ClampInt(count, 1, MaxHarmonics)

	partials := make([]Partial, count)
	for i := range count {
		h := float64(i + 1)
		partials[i] = Partial{Harmonic: h, Amplitude: 1 / math.Pow(h, rolloff)}
	}
	return FromPartials(partials)
}

// Default returns the default 32-partial series with 1/h^1.5 rolloff
func Default() *Spectrum {
	s, _ := HarmonicSeries(DefaultHarmonics, DefaultRolloff)
	return s
}

// Len returns the number of declared partials, including zero-amplitude ones
func (s *Spectrum) Len() int {
	return len(s.partials)
}

// Partials returns a sorted copy of the partials
func (s *Spectrum) Partials() []Partial {
	out := make([]Partial, len(s.partials))
	copy(out, s.partials)
	return out
}

// Harmonics returns the sorted harmonic indices
func (s *Spectrum) Harmonics() []float64 {
	out := make([]float64, len(s.partials))
	for i, p := range s.partials {
		out[i] = p.Harmonic
	}
	return out
}

// Amplitude returns the amplitude of harmonic h, or 0 if h is not declared
func (s *Spectrum) Amplitude(h float64) float64 {
	i := sort.Search(len(s.partials), func(i int) bool {
		return s.partials[i].Harmonic >= h
	})
	if i < len(s.partials) && s.partials[i].Harmonic == h {
		return s.partials[i].Amplitude
	}
	return 0
}

// TotalAmplitude returns the sum of all amplitudes; always > 0
func (s *Spectrum) TotalAmplitude() float64 {
	return s.total
}

// MaxAmplitude returns the largest amplitude
func (s *Spectrum) MaxAmplitude() float64 {
	return s.peak
}

// With returns a copy of the spectrum with harmonic h set to amplitude a
func (s *Spectrum) With(h, a float64) (*Spectrum, error) {
	partials := make([]Partial, 0, len(s.partials)+1)
	for _, p := range s.partials {
		if p.Harmonic != h {
			partials = append(partials, p)
		}
	}
	partials = append(partials, Partial{Harmonic: h, Amplitude: a})
	return FromPartials(partials)
}

// Without returns a copy of the spectrum with harmonic h removed
func (s *Spectrum) Without(h float64) (*Spectrum, error) {
	partials := make([]Partial, 0, len(s.partials))
	for _, p := range s.partials {
		if p.Harmonic != h {
			partials = append(partials, p)
		}
	}
	return FromPartials(partials)
}

// String renders the spectrum in the form accepted by Parse
func (s *Spectrum) String() string {
	parts := make([]string, len(s.partials))
	for i, p := range s.partials {
		parts[i] = strconv.FormatFloat(p.Harmonic, 'g', -1, 64) + "=" +
			strconv.FormatFloat(p.Amplitude, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Parse reads a spectrum from "harmonic=amplitude" pairs separated by commas.
// ':' is accepted in place of '='.
func Parse(text string) (*Spectrum, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidSpectrum
	}

	amplitudes := make(map[float64]float64)
	for _, field := range strings.Split(text, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		key, value, ok := strings.Cut(field, "=")
		if !ok {
			key, value, ok = strings.Cut(field, ":")
		}
		if !ok {
			return nil, fmt.Errorf("malformed partial %q: expected harmonic=amplitude", field)
		}

		h, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed harmonic %q: %w", key, err)
		}
		a, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed amplitude %q: %w", value, err)
		}
		if _, dup := amplitudes[h]; dup {
			return nil, fmt.Errorf("%w: duplicate harmonic %v", ErrInvalidSpectrum, h)
		}
		amplitudes[h] = a
	}

	return New(amplitudes)
}
