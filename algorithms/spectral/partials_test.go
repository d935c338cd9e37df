package spectral

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-consonance/algorithms/spectrum"
	"github.com/RyanBlaney/sonido-consonance/algorithms/synthesis"
)

func TestHannWindow(t *testing.T) {
	window := HannWindow(8)
	if window[0] != 0 {
		t.Errorf("window[0] = %v, want 0", window[0])
	}
	if math.Abs(window[4]-1) > 1e-12 {
		t.Errorf("window[4] = %v, want 1", window[4])
	}

	sum := 0.0
	for _, v := range HannWindow(1000) {
		sum += v
	}
	if math.Abs(sum-500) > 1e-9 {
		t.Errorf("sum of Hann(1000) = %v, want 500", sum)
	}
}

func TestMagnitude(t *testing.T) {
	f := NewFFT()
	n := 64
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 4 * float64(i) / float64(n))
	}

	magnitude := f.Magnitude(signal)
	if len(magnitude) != n/2+1 {
		t.Fatalf("len(Magnitude) = %d, want %d", len(magnitude), n/2+1)
	}
	if math.Abs(magnitude[4]-float64(n)/2) > 1e-9 {
		t.Errorf("Magnitude[4] = %v, want %v", magnitude[4], float64(n)/2)
	}
	if len(f.Magnitude(nil)) != 0 {
		t.Error("Magnitude(nil) should be empty")
	}
}

func TestEstimateRenderedPartials(t *testing.T) {
	amplitudes := map[float64]float64{1: 1, 2: 0.5, 3: 0.25}
	s, err := spectrum.New(amplitudes)
	if err != nil {
		t.Fatal(err)
	}
	w, err := synthesis.NewWaveform(s)
	if err != nil {
		t.Fatal(err)
	}
	buffer, err := synthesis.RenderBuffer(w, 220, 1, 44100)
	if err != nil {
		t.Fatal(err)
	}

	estimator := NewPartialEstimator(44100)
	partials, err := estimator.Estimate(buffer, 220, []float64{1, 2, 3, 4, 150})
	if err != nil {
		t.Fatal(err)
	}

	total := s.TotalAmplitude()
	for _, p := range partials {
		want := amplitudes[p.Harmonic] / total
		if math.Abs(p.Amplitude-want) > 1e-3 {
			t.Errorf("harmonic %v amplitude = %v, want %v", p.Harmonic, p.Amplitude, want)
		}
	}
}

func TestEstimateShortBuffer(t *testing.T) {
	estimator := NewPartialEstimator(44100)
	if _, err := estimator.Estimate([]float64{0, 1}, 220, []float64{1}); !errors.Is(err, ErrBufferTooShort) {
		t.Errorf("tiny buffer error = %v, want ErrBufferTooShort", err)
	}
	if _, err := estimator.Estimate(make([]float64, 100), 220, []float64{1}); !errors.Is(err, ErrBufferTooShort) {
		t.Errorf("coarse buffer error = %v, want ErrBufferTooShort", err)
	}
}
