package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-consonance/explorer"
	"github.com/RyanBlaney/sonido-consonance/playback"
	"github.com/alecthomas/kong"
	"github.com/gopxl/beep"
)

// drainBackend consumes streamers synchronously in place of a sound card
type drainBackend struct {
	samples int
}

func (d *drainBackend) Init(beep.SampleRate, int) error { return nil }
func (d *drainBackend) Lock()                           {}
func (d *drainBackend) Unlock()                         {}
func (d *drainBackend) Close()                          {}

func (d *drainBackend) Play(s beep.Streamer) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		d.samples += n
		if !ok {
			return
		}
	}
}

func run(t *testing.T, args ...string) (string, *App) {
	t.Helper()

	var c CLI
	parser, err := kong.New(&c, kong.Name("sonido-consonance"))
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}

	var out bytes.Buffer
	app, err := c.newApp(&out)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	backend := &drainBackend{}
	app.NewDevice = func(cfg playback.Config) *playback.Device {
		return playback.NewDeviceWithBackend(cfg, backend)
	}

	if err := ctx.Run(app); err != nil {
		t.Fatalf("Run(%v): %v", args, err)
	}
	return out.String(), app
}

func TestCurveCommand(t *testing.T) {
	out, _ := run(t, "--log-level=error", "-s", "1=1,2=0.5,3=0.33,4=0.25,5=0.2,6=0.16", "curve", "--points", "400")

	for _, want := range []string{"Minima", "perfect fifth", "octave", "1.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("curve output missing %q:\n%s", want, out)
		}
	}
}

func TestCurveJSON(t *testing.T) {
	out, _ := run(t, "--log-level=error", "-s", "1=1,2=0.5", "curve", "--points", "50", "--json")

	var decoded struct {
		Ratios []float64 `json:"ratios"`
		Values []float64 `json:"values"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(decoded.Ratios) != 50 || len(decoded.Values) != 50 {
		t.Errorf("got %d ratios and %d values, want 50", len(decoded.Ratios), len(decoded.Values))
	}
}

func TestSweepCommand(t *testing.T) {
	out, _ := run(t, "--log-level=error", "sweep", "--min", "5", "--max", "24", "--json")

	var sweep explorer.Sweep
	if err := json.Unmarshal([]byte(out), &sweep); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(sweep.Results) != 20 {
		t.Errorf("got %d results, want 20", len(sweep.Results))
	}

	out, _ = run(t, "--log-level=error", "sweep", "--max", "24", "--min", "1", "--top", "3")
	if !strings.Contains(out, "Rank") || !strings.Contains(out, "Best") {
		t.Errorf("sweep table missing:\n%s", out)
	}
}

func TestScaleErrorCommand(t *testing.T) {
	out, _ := run(t, "--log-level=error", "-s", "1=1,2=0.5,3=0.3", "scale-error", "--edo", "12")
	if !strings.Contains(out, "0.015963") {
		t.Errorf("scale-error output = %q, want 0.015963", out)
	}

	out, _ = run(t, "--log-level=error", "scale-error", "--scale", "1,9/8,5/4,4/3,3/2,5/3,15/8")
	if !strings.Contains(out, "Error") {
		t.Errorf("custom scale output = %q", out)
	}
}

func TestSnapCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"snap", "1.502"}, "perfect fifth"},
		{[]string{"snap", "1.498"}, "edo"},
		{[]string{"snap", "1.399", "--scale", "1,1.4"}, "custom"},
		{[]string{"snap", "2.5"}, "none"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, _ := run(t, append([]string{"--log-level=error"}, tt.args...)...)
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q missing %q", out, tt.want)
			}
		})
	}
}

func TestHarmonicsCommand(t *testing.T) {
	out, _ := run(t, "--log-level=error", "-s", "1=1,3=0.5", "harmonics", "--edo", "12")
	if !strings.Contains(out, "12-EDO") || !strings.Contains(out, "7.020") {
		t.Errorf("harmonics output:\n%s", out)
	}
}

func TestPlayCommand(t *testing.T) {
	out, _ := run(t, "--log-level=error", "-s", "1=1", "play", "--ratio", "1.5", "--duration", "0.1")
	if !strings.Contains(out, "4410 samples") {
		t.Errorf("play output = %q, want 4410 samples", out)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	out, _ := run(t, "--log-level=error", "-b", "441", "-s", "1=1,2=0.5", "analyze")
	if !strings.Contains(out, "Measured") || !strings.Contains(out, "1.0000") {
		t.Errorf("analyze output:\n%s", out)
	}
}

func TestInvalidSpectrumFlag(t *testing.T) {
	var c CLI
	parser, err := kong.New(&c)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse([]string{"-s", "1=2", "curve"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.newApp(&bytes.Buffer{}); err == nil {
		t.Error("newApp accepted amplitude 2")
	}
}
