package explorer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/RyanBlaney/sonido-consonance/algorithms/common"
	"github.com/RyanBlaney/sonido-consonance/algorithms/dissonance"
	"github.com/RyanBlaney/sonido-consonance/algorithms/spectrum"
	"github.com/RyanBlaney/sonido-consonance/algorithms/synthesis"
	"github.com/RyanBlaney/sonido-consonance/algorithms/tuning"
)

// Base frequency bounds accepted from user input
const (
	MinBaseFrequency = 20.0
	MaxBaseFrequency = 20000.0
)

// ErrInvalidConfig reports a configuration value outside its domain
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the explorer defaults
type Config struct {
	// Dissonance curve
	BaseFrequency float64 `json:"base_frequency"` // Hz
	PointCount    int     `json:"point_count"`

	// Tuning
	EDO           int     `json:"edo"`
	SweepMin      int     `json:"sweep_min"`
	SweepMax      int     `json:"sweep_max"`
	SnapThreshold float64 `json:"snap_threshold"`

	// Sound
	Duration   float64 `json:"duration"` // seconds
	SampleRate int     `json:"sample_rate"`

	// Default spectrum: harmonics 1..Harmonics at 1/h^Rolloff
	Harmonics int     `json:"harmonics"`
	Rolloff   float64 `json:"rolloff"`
}

// DefaultConfig returns the values the explorer starts with
func DefaultConfig() *Config {
	return &Config{
		BaseFrequency: 220.0,
		PointCount:    dissonance.DefaultPointCount,
		EDO:           12,
		SweepMin:      1,
		SweepMax:      72,
		SnapThreshold: tuning.DefaultSnapThreshold,
		Duration:      synthesis.DefaultDuration,
		SampleRate:    synthesis.DefaultSampleRate,
		Harmonics:     spectrum.DefaultHarmonics,
		Rolloff:       spectrum.DefaultRolloff,
	}
}

// LoadConfig reads a JSON config file over the defaults
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from SONIDO_* environment variables.
// Unparseable values are ignored.
func (c *Config) ApplyEnv() {
	envFloat("SONIDO_BASE_FREQUENCY", &c.BaseFrequency)
	envInt("SONIDO_POINT_COUNT", &c.PointCount)
	envInt("SONIDO_EDO", &c.EDO)
	envInt("SONIDO_SWEEP_MIN", &c.SweepMin)
	envInt("SONIDO_SWEEP_MAX", &c.SweepMax)
	envFloat("SONIDO_SNAP_THRESHOLD", &c.SnapThreshold)
	envFloat("SONIDO_DURATION", &c.Duration)
	envInt("SONIDO_SAMPLE_RATE", &c.SampleRate)
	envInt("SONIDO_HARMONICS", &c.Harmonics)
	envFloat("SONIDO_ROLLOFF", &c.Rolloff)
}

func envFloat(name string, dst *float64) {
	if raw := os.Getenv(name); raw != "" {
		if val, err := strconv.ParseFloat(raw, 64); err == nil {
			*dst = val
		}
	}
}

func envInt(name string, dst *int) {
	if raw := os.Getenv(name); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			*dst = val
		}
	}
}

// ClampBaseFrequency limits f to the audible range
func ClampBaseFrequency(f float64) float64 {
	return common.Clamp(f, MinBaseFrequency, MaxBaseFrequency)
}

// Validate checks every field; the base frequency is checked before clamping
func (c *Config) Validate() error {
	switch {
	case !common.IsFinite(c.BaseFrequency) || c.BaseFrequency <= 0:
		return fmt.Errorf("%w: base frequency %v", ErrInvalidConfig, c.BaseFrequency)
	case c.PointCount < 2:
		return fmt.Errorf("%w: point count %d", ErrInvalidConfig, c.PointCount)
	case c.EDO < 1 || c.EDO > tuning.EDOLimit:
		return fmt.Errorf("%w: edo %d", ErrInvalidConfig, c.EDO)
	case c.SweepMin < 1 || c.SweepMax <= c.SweepMin || c.SweepMax > tuning.EDOLimit:
		return fmt.Errorf("%w: sweep range [%d, %d]", ErrInvalidConfig, c.SweepMin, c.SweepMax)
	case !common.IsFinite(c.SnapThreshold) || c.SnapThreshold <= 0:
		return fmt.Errorf("%w: snap threshold %v", ErrInvalidConfig, c.SnapThreshold)
	case !common.IsFinite(c.Duration) || c.Duration <= 0:
		return fmt.Errorf("%w: duration %v", ErrInvalidConfig, c.Duration)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case c.Harmonics < 1 || c.Harmonics > spectrum.MaxHarmonics:
		return fmt.Errorf("%w: harmonics %d", ErrInvalidConfig, c.Harmonics)
	case !common.IsFinite(c.Rolloff) || c.Rolloff < 0:
		return fmt.Errorf("%w: rolloff %v", ErrInvalidConfig, c.Rolloff)
	}
	return nil
}
