package tuning

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-consonance/algorithms/spectrum"
)

func TestClampRange(t *testing.T) {
	tests := []struct {
		name             string
		minEDO, maxEDO   int
		wantMin, wantMax int
	}{
		{"unchanged", 5, 72, 5, 72},
		{"zero min", 0, 12, 1, 12},
		{"inverted", 12, 5, 12, 13},
		{"equal", 7, 7, 7, 8},
		{"over limit", 20000, 30000, EDOLimit, EDOLimit},
		{"max over limit", 1, 20000, 1, EDOLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMin, gotMax := ClampRange(tt.minEDO, tt.maxEDO)
			if gotMin != tt.wantMin || gotMax != tt.wantMax {
				t.Errorf("ClampRange(%d, %d) = (%d, %d), want (%d, %d)",
					tt.minEDO, tt.maxEDO, gotMin, gotMax, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestSweepEDO(t *testing.T) {
	s := mustSpectrum(t, map[float64]float64{1: 1, 2: 0.5, 3: 0.3})

	results, err := SweepEDO(1, 12, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 12 {
		t.Fatalf("SweepEDO(1, 12) returned %d results, want 12", len(results))
	}
	for i, r := range results {
		if r.EDO != i+1 {
			t.Errorf("results[%d].EDO = %d, want %d", i, r.EDO, i+1)
		}
		want, _ := EDOScaleError(r.EDO, s)
		if r.Error != want {
			t.Errorf("results[%d].Error = %v, want %v", i, r.Error, want)
		}
	}

	best, ok := BestEDO(results)
	if !ok || best.EDO != 12 {
		t.Errorf("BestEDO = %+v, want EDO 12", best)
	}

	summary := Summarize(results)
	if summary.Best != best {
		t.Errorf("Summarize().Best = %+v, want %+v", summary.Best, best)
	}
	if summary.Worst.Error < summary.Mean || summary.Mean < summary.Best.Error {
		t.Errorf("Summarize() = %+v, mean outside [best, worst]", summary)
	}
	if summary.StdDev <= 0 {
		t.Errorf("Summarize().StdDev = %v, want > 0", summary.StdDev)
	}

	if _, err := SweepEDO(1, 12, nil); !errors.Is(err, spectrum.ErrInvalidSpectrum) {
		t.Errorf("SweepEDO(nil) error = %v, want ErrInvalidSpectrum", err)
	}
	if _, ok := BestEDO(nil); ok {
		t.Error("BestEDO(nil) reported a result")
	}
}

func TestSweepEDOFullRange(t *testing.T) {
	results, err := SweepEDO(0, 1<<20, spectrum.Default())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != EDOLimit {
		t.Fatalf("full sweep returned %d results, want %d", len(results), EDOLimit)
	}
	for _, r := range results {
		if math.IsNaN(r.Error) || r.Error < 0 || r.Error > 1+1e-9 {
			t.Fatalf("EDO %d error = %v, want within [0, 1]", r.EDO, r.Error)
		}
	}
}

func TestHarmonicPositions(t *testing.T) {
	s := mustSpectrum(t, map[float64]float64{1: 1, 2: 0, 3: 0.5, 1.97: 0.2})

	positions, err := HarmonicPositions(s, 12)
	if err != nil {
		t.Fatal(err)
	}
	if len(positions) != 3 {
		t.Fatalf("HarmonicPositions returned %d entries, want 3 (silent harmonic skipped)", len(positions))
	}

	byHarmonic := make(map[float64]HarmonicPosition)
	for _, p := range positions {
		byHarmonic[p.Harmonic] = p
	}

	third := byHarmonic[3]
	if third.Nearest != 7 {
		t.Errorf("harmonic 3 nearest step = %d, want 7", third.Nearest)
	}
	if math.Abs(third.Ratio-1.5) > 1e-12 {
		t.Errorf("harmonic 3 ratio = %v, want 1.5", third.Ratio)
	}
	if math.Abs(third.Step-12*math.Log2(1.5)) > 1e-9 {
		t.Errorf("harmonic 3 step = %v", third.Step)
	}
	if third.Error != ToneError(3, 12) {
		t.Errorf("harmonic 3 error = %v, want %v", third.Error, ToneError(3, 12))
	}

	if got := byHarmonic[1.97].Nearest; got != 0 {
		t.Errorf("harmonic 1.97 nearest step = %d, want 0 (wrapped)", got)
	}

	if _, err := HarmonicPositions(s, 0); !errors.Is(err, ErrInvalidEDO) {
		t.Errorf("HarmonicPositions(edo 0) error = %v, want ErrInvalidEDO", err)
	}
}
