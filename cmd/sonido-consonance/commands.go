package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"

	"github.com/RyanBlaney/sonido-consonance/algorithms/tuning"
	"github.com/RyanBlaney/sonido-consonance/internal/cli"
	"github.com/RyanBlaney/sonido-consonance/playback"
)

// CurveCmd prints the minima of the dissonance curve and its values at the just intervals
type CurveCmd struct {
	Points int  `help:"Number of ratio samples (default: configured point count)"`
	All    bool `help:"List every sample instead of the minima"`
	JSON   bool `name:"json" help:"Emit the full curve as JSON"`
}

func (c *CurveCmd) Run(app *App) error {
	curve, err := app.Explorer.ComputeDissonanceCurve(app.Spectrum, app.Base, c.Points)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(app, curve)
	}

	cli.PrintTitle(app.Out, "Dissonance curve")
	cli.PrintKeyValue(app.Out, "Spectrum", app.Spectrum)
	cli.PrintKeyValue(app.Out, "Base frequency", formatFloat(curve.BaseFrequency, 2)+" Hz")
	cli.PrintKeyValue(app.Out, "Samples", curve.Len())
	fmt.Fprintln(app.Out)

	points := curve.Minima()
	heading := "Minima"
	if c.All {
		points = curve.Points()
		heading = "Samples"
	}

	rows := make([][]string, len(points))
	for i, p := range points {
		iv, _ := tuning.NearestInterval(p.Ratio)
		rows[i] = []string{
			formatFloat(p.Ratio, 4),
			formatFloat(cents(p.Ratio), 1),
			formatFloat(p.Value, 4),
			iv.Name,
		}
	}
	cli.PrintTitle(app.Out, heading)
	fmt.Fprintln(app.Out, cli.Table([]string{"Ratio", "Cents", "Dissonance", "Nearest interval"}, rows, nil))
	fmt.Fprintln(app.Out)

	annotations := app.Explorer.AnnotateIntervals(curve)
	rows = make([][]string, len(annotations))
	for i, a := range annotations {
		rows[i] = []string{a.Name, formatFloat(a.Ratio, 4), formatFloat(a.Value, 4)}
	}
	cli.PrintTitle(app.Out, "Just intervals")
	fmt.Fprintln(app.Out, cli.Table([]string{"Interval", "Ratio", "Dissonance"}, rows, nil))
	return nil
}

// SweepCmd ranks a range of EDOs
type SweepCmd struct {
	Min  int  `help:"Smallest EDO (default: configured sweep)"`
	Max  int  `help:"Largest EDO (default: configured sweep)"`
	Top  int  `default:"10" help:"Number of best EDOs to list"`
	JSON bool `name:"json" help:"Emit every result as JSON"`
}

func (c *SweepCmd) Run(app *App) error {
	sweep, err := app.Explorer.SweepEDO(app.Spectrum, c.Min, c.Max)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(app, sweep)
	}

	ranked := make([]tuning.EDOError, len(sweep.Results))
	copy(ranked, sweep.Results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Error < ranked[j].Error
	})
	if c.Top > 0 && c.Top < len(ranked) {
		ranked = ranked[:c.Top]
	}

	cli.PrintTitle(app.Out, "EDO sweep")
	cli.PrintKeyValue(app.Out, "Range", fmt.Sprintf("%d-%d", sweep.Results[0].EDO, sweep.Results[len(sweep.Results)-1].EDO))
	cli.PrintKeyValue(app.Out, "Best", fmt.Sprintf("%d-EDO (%s)", sweep.Summary.Best.EDO, formatFloat(sweep.Summary.Best.Error, 5)))
	cli.PrintKeyValue(app.Out, "Worst", fmt.Sprintf("%d-EDO (%s)", sweep.Summary.Worst.EDO, formatFloat(sweep.Summary.Worst.Error, 5)))
	cli.PrintKeyValue(app.Out, "Mean", formatFloat(sweep.Summary.Mean, 5))
	cli.PrintKeyValue(app.Out, "Std dev", formatFloat(sweep.Summary.StdDev, 5))
	fmt.Fprintln(app.Out)

	rows := make([][]string, len(ranked))
	for i, r := range ranked {
		rows[i] = []string{strconv.Itoa(i + 1), strconv.Itoa(r.EDO), formatFloat(r.Error, 5)}
	}
	fmt.Fprintln(app.Out, cli.Table([]string{"Rank", "EDO", "Error"}, rows, map[int]bool{0: true}))
	return nil
}

// ScaleErrorCmd scores one tuning
type ScaleErrorCmd struct {
	EDO   int    `name:"edo" help:"Equal division to score (default: configured EDO)"`
	Scale string `placeholder:"1,9/8,..." help:"Custom scale as comma separated ratios; overrides --edo"`
}

func (c *ScaleErrorCmd) Run(app *App) error {
	if c.Scale != "" {
		scale, err := tuning.ParseScale(c.Scale)
		if err != nil {
			return err
		}
		v, err := app.Explorer.CustomScaleError(scale, app.Spectrum)
		if err != nil {
			return err
		}
		cli.PrintKeyValue(app.Out, "Scale", c.Scale)
		cli.PrintKeyValue(app.Out, "Error", formatFloat(v, 6))
		return nil
	}

	edo := c.EDO
	if edo == 0 {
		edo = app.Explorer.Config().EDO
	}
	v, err := app.Explorer.EDOScaleError(edo, app.Spectrum)
	if err != nil {
		return err
	}
	cli.PrintKeyValue(app.Out, "EDO", edo)
	cli.PrintKeyValue(app.Out, "Error", formatFloat(v, 6))
	return nil
}

// SnapCmd quantizes one ratio
type SnapCmd struct {
	Ratio     float64 `arg:"" help:"Frequency ratio in [1, 2]"`
	EDO       int     `name:"edo" help:"EDO grid to snap to (default: configured EDO)"`
	Scale     string  `placeholder:"1,9/8,..." help:"Custom scale grid; overrides --edo"`
	Threshold float64 `help:"Snap threshold (default: configured threshold)"`
}

func (c *SnapCmd) Run(app *App) error {
	var ctx tuning.TuningContext
	switch {
	case c.Scale != "":
		scale, err := tuning.ParseScale(c.Scale)
		if err != nil {
			return err
		}
		sc, err := tuning.NewScaleContext(scale)
		if err != nil {
			return err
		}
		ctx = sc
	case c.EDO != 0:
		ctx = tuning.EDOContext{Steps: c.EDO}
	}

	snapped, kind := app.Explorer.SnapRatio(c.Ratio, ctx, c.Threshold)
	cli.PrintKeyValue(app.Out, "Ratio", formatFloat(c.Ratio, 6))
	cli.PrintKeyValue(app.Out, "Snapped", formatFloat(snapped, 6))
	cli.PrintKeyValue(app.Out, "Match", kind)
	if kind == tuning.MatchInterval {
		iv, _ := tuning.NearestInterval(snapped)
		cli.PrintKeyValue(app.Out, "Interval", iv.Name)
	}
	return nil
}

// HarmonicsCmd lists where each harmonic lands on the EDO circle
type HarmonicsCmd struct {
	EDO int `name:"edo" help:"Equal division (default: configured EDO)"`
}

func (c *HarmonicsCmd) Run(app *App) error {
	edo := c.EDO
	if edo == 0 {
		edo = app.Explorer.Config().EDO
	}
	positions, err := app.Explorer.HarmonicPositions(app.Spectrum, edo)
	if err != nil {
		return err
	}

	rows := make([][]string, len(positions))
	for i, p := range positions {
		rows[i] = []string{
			formatFloat(p.Harmonic, 2),
			formatFloat(p.Amplitude, 4),
			formatFloat(p.Ratio, 4),
			formatFloat(p.Step, 3),
			strconv.Itoa(p.Nearest),
			formatFloat(p.Error, 5),
		}
	}
	cli.PrintTitle(app.Out, fmt.Sprintf("Harmonics on %d-EDO", edo))
	fmt.Fprintln(app.Out, cli.Table([]string{"Harmonic", "Amplitude", "Ratio", "Step", "Nearest", "Error"}, rows, nil))
	return nil
}

// PlayCmd renders a sound and sends it to the audio output
type PlayCmd struct {
	Ratio    float64 `help:"Play the base together with base × ratio"`
	Harmonic float64 `help:"Play the spectrum at this harmonic's pitch class"`
	Step     int     `help:"EDO step to play; requires --edo"`
	EDO      int     `name:"edo" help:"EDO the step belongs to"`
	Duration float64 `help:"Sound length in seconds (default: configured duration)"`
}

func (c *PlayCmd) Run(app *App) error {
	var (
		buffer []float64
		err    error
	)
	switch {
	case c.Harmonic > 0:
		buffer, err = app.Explorer.RenderHarmonic(app.Spectrum, app.Base, c.Harmonic)
	case c.EDO != 0:
		buffer, err = app.Explorer.RenderStep(app.Spectrum, app.Base, c.Step, c.EDO)
	case c.Ratio > 0:
		ratio := c.Ratio
		buffer, err = app.Explorer.RenderBuffer(app.Spectrum, app.Base, &ratio, c.Duration, 0)
	default:
		buffer, err = app.Explorer.RenderBuffer(app.Spectrum, app.Base, nil, c.Duration, 0)
	}
	if err != nil {
		return err
	}

	cfg := playback.DefaultConfig()
	cfg.SampleRate = app.Explorer.Config().SampleRate
	device := app.NewDevice(cfg)
	if err := device.Open(); err != nil {
		return err
	}
	defer device.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli.PrintKeyValue(app.Out, "Playing", fmt.Sprintf("%d samples at %d Hz", len(buffer), cfg.SampleRate))
	if err := device.Play(ctx, buffer); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// AnalyzeCmd renders the spectrum and recovers its partial amplitudes with an FFT
type AnalyzeCmd struct{}

func (c *AnalyzeCmd) Run(app *App) error {
	buffer, err := app.Explorer.RenderBuffer(app.Spectrum, app.Base, nil, 0, 0)
	if err != nil {
		return err
	}

	harmonics := app.Spectrum.Harmonics()
	partials, err := app.Explorer.EstimateSpectrum(buffer, app.Base, harmonics, 0)
	if err != nil {
		return err
	}

	// Compare shapes relative to the loudest partial; the envelope scales all of them equally
	measuredPeak := 0.0
	for _, p := range partials {
		measuredPeak = math.Max(measuredPeak, p.Amplitude)
	}
	expectedPeak := app.Spectrum.MaxAmplitude()

	rows := make([][]string, len(partials))
	for i, p := range partials {
		measured := 0.0
		if measuredPeak > 0 {
			measured = p.Amplitude / measuredPeak
		}
		rows[i] = []string{
			formatFloat(p.Harmonic, 2),
			formatFloat(app.Spectrum.Amplitude(p.Harmonic)/expectedPeak, 4),
			formatFloat(measured, 4),
		}
	}
	cli.PrintTitle(app.Out, "Rendered spectrum")
	fmt.Fprintln(app.Out, cli.Table([]string{"Harmonic", "Expected", "Measured"}, rows, nil))
	return nil
}

func writeJSON(app *App, v any) error {
	enc := json.NewEncoder(app.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cents(ratio float64) float64 {
	return 1200 * math.Log2(ratio)
}

func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}
