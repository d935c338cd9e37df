package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-consonance/logging"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Sentinel errors
var (
	ErrDeviceClosed   = errors.New("playback device is not open")
	ErrDeviceOpen     = errors.New("playback device already open")
	ErrSeekOutOfRange = errors.New("seek position out of range")
)

// Backend is the audio output a Device drives
type Backend interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}

// speakerBackend forwards to beep's speaker package
type speakerBackend struct{}

func (speakerBackend) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}
func (speakerBackend) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerBackend) Lock()                { speaker.Lock() }
func (speakerBackend) Unlock()              { speaker.Unlock() }
func (speakerBackend) Close()               { speaker.Close() }

// Config configures a playback device
type Config struct {
	SampleRate int           `json:"sample_rate"`
	Latency    time.Duration `json:"latency"` // speaker buffer length
	Gain       float64       `json:"gain"`
}

// DefaultConfig returns 44.1 kHz output with a 100ms buffer at unity gain
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		Latency:    100 * time.Millisecond,
		Gain:       1.0,
	}
}

// Device is an explicitly opened and closed audio output.
// The owner must call Open before Play and Close when done.
type Device struct {
	config  Config
	backend Backend
	logger  logging.Logger

	mu   sync.Mutex
	open bool
}

// NewDevice creates a closed device backed by the system speaker
func NewDevice(cfg Config) *Device {
	return NewDeviceWithBackend(cfg, speakerBackend{})
}

// NewDeviceWithBackend creates a closed device using a custom backend
func NewDeviceWithBackend(cfg Config, backend Backend) *Device {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	if cfg.Latency <= 0 {
		cfg.Latency = DefaultConfig().Latency
	}
	return &Device{
		config:  cfg,
		backend: backend,
		logger: logging.WithFields(logging.Fields{
			"component": "playback",
		}),
	}
}

// SampleRate returns the rate buffers must be rendered at
func (d *Device) SampleRate() int {
	return d.config.SampleRate
}

// Open initializes the output
func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return ErrDeviceOpen
	}

	sr := beep.SampleRate(d.config.SampleRate)
	if err := d.backend.Init(sr, sr.N(d.config.Latency)); err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	d.open = true

	d.logger.Debug("Audio output opened", logging.Fields{
		"sample_rate": d.config.SampleRate,
		"latency":     d.config.Latency.String(),
	})
	return nil
}

// IsOpen reports whether the device is open
func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Play sends a buffer to the output and blocks until it has been played or ctx is done
func (d *Device) Play(ctx context.Context, samples []float64) error {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return ErrDeviceClosed
	}
	d.mu.Unlock()

	done := make(chan struct{})
	ctrl := &beep.Ctrl{
		Streamer: beep.Seq(NewBufferStreamer(samples, d.config.Gain), beep.Callback(func() {
			close(done)
		})),
	}
	d.backend.Play(ctrl)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.backend.Lock()
		ctrl.Streamer = nil
		d.backend.Unlock()
		return ctx.Err()
	}
}

// Close releases the output; closing a closed device is a no-op
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return
	}
	d.backend.Close()
	d.open = false
	d.logger.Debug("Audio output closed")
}
