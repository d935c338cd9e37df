package main

import (
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/sonido-consonance/algorithms/spectrum"
	"github.com/RyanBlaney/sonido-consonance/explorer"
	"github.com/RyanBlaney/sonido-consonance/internal/cli"
	"github.com/RyanBlaney/sonido-consonance/logging"
	"github.com/RyanBlaney/sonido-consonance/playback"
	"github.com/alecthomas/kong"
)

var (
	version = "0.1.0"
)

const description = "Dissonance curves, scale errors and interval playback for harmonic spectra"

// CLI defines the command-line interface
type CLI struct {
	Version   versionFlag `short:"v" help:"Show version information"`
	Config    string      `short:"c" type:"path" help:"Path to JSON config file (optional)"`
	LogLevel  string      `default:"warn" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string      `default:"text" enum:"text,json" help:"Log output format"`
	Spectrum  string      `short:"s" placeholder:"h=a,..." help:"Spectrum as harmonic=amplitude pairs (default: configured harmonic series)"`
	Base      float64     `short:"b" help:"Base frequency in Hz (default: configured base frequency)"`

	Curve      CurveCmd      `cmd:"" help:"Compute the dissonance curve and its consonant minima"`
	Sweep      SweepCmd      `cmd:"" help:"Rank equal divisions of the octave by scale error"`
	ScaleError ScaleErrorCmd `cmd:"" help:"Score one EDO or custom scale against the spectrum"`
	Snap       SnapCmd       `cmd:"" help:"Snap a ratio to a just interval or tuning grid"`
	Harmonics  HarmonicsCmd  `cmd:"" help:"Place each harmonic on the EDO circle"`
	Play       PlayCmd       `cmd:"" help:"Play an interval, a harmonic, or an EDO step"`
	Analyze    AnalyzeCmd    `cmd:"" help:"Render the spectrum and measure its partials back"`
}

type versionFlag bool

// BeforeReset prints the version and exits before command validation runs
func (v versionFlag) BeforeReset(app *kong.Kong, vars kong.Vars) error {
	cli.PrintVersion(vars["version"])
	app.Exit(0)
	return nil
}

// App is the state shared by every command
type App struct {
	Explorer  *explorer.Explorer
	Spectrum  *spectrum.Spectrum
	Base      float64
	Out       io.Writer
	Logger    logging.Logger
	NewDevice func(cfg playback.Config) *playback.Device

	sync func() error
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("sonido-consonance"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(description)),
	)

	app, err := cliArgs.newApp(os.Stdout)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	err = ctx.Run(app)
	app.close()
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// newApp builds the logger, configuration, explorer and spectrum from global flags
func (c *CLI) newApp(out io.Writer) (*App, error) {
	app := &App{Out: out, NewDevice: playback.NewDevice}

	level := logging.ParseLevel(c.LogLevel)
	switch c.LogFormat {
	case "json":
		zl, err := logging.NewJSONLogger(level)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		app.Logger = zl
		app.sync = zl.Sync
	default:
		dl := logging.NewDefaultLogger()
		dl.SetLevel(level)
		app.Logger = dl
	}
	logging.SetGlobalLogger(app.Logger)

	cfg := explorer.DefaultConfig()
	if c.Config != "" {
		loaded, err := explorer.LoadConfig(c.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if c.Base > 0 {
		cfg.BaseFrequency = c.Base
	}

	ex, err := explorer.New(cfg, app.Logger)
	if err != nil {
		return nil, err
	}
	app.Explorer = ex
	app.Base = ex.Config().BaseFrequency

	if c.Spectrum != "" {
		app.Spectrum, err = spectrum.Parse(c.Spectrum)
	} else {
		app.Spectrum, err = ex.DefaultSpectrum()
	}
	if err != nil {
		return nil, fmt.Errorf("invalid spectrum: %w", err)
	}

	app.Logger.Debug("Explorer ready", logging.Fields{
		"base_frequency": app.Base,
		"partials":       app.Spectrum.Len(),
	})
	return app, nil
}

func (a *App) close() {
	if a.sync != nil {
		// stderr sync fails on some terminals; nothing to recover
		_ = a.sync()
	}
}
