package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// fakeBackend drains streamers on a goroutine instead of a sound card
type fakeBackend struct {
	mu       sync.Mutex
	initRate beep.SampleRate
	initSize int
	initErr  error
	closed   int
	block    chan struct{}
	played   [][2]float64
}

func (f *fakeBackend) Init(sr beep.SampleRate, bufferSize int) error {
	f.initRate = sr
	f.initSize = bufferSize
	return f.initErr
}

func (f *fakeBackend) Play(s beep.Streamer) {
	go func() {
		if f.block != nil {
			<-f.block
		}
		buf := make([][2]float64, 64)
		for {
			f.mu.Lock()
			n, ok := s.Stream(buf)
			f.played = append(f.played, buf[:n]...)
			f.mu.Unlock()
			if !ok {
				return
			}
		}
	}()
}

func (f *fakeBackend) Lock()   { f.mu.Lock() }
func (f *fakeBackend) Unlock() { f.mu.Unlock() }
func (f *fakeBackend) Close()  { f.closed++ }

func TestBufferStreamer(t *testing.T) {
	s := NewBufferStreamer([]float64{0.25, -0.5, 2, -3, 0.1}, 1)

	buf := make([][2]float64, 3)
	n, ok := s.Stream(buf)
	if n != 3 || !ok {
		t.Fatalf("Stream() = %d, %v, want 3, true", n, ok)
	}
	want := []float64{0.25, -0.5, 1}
	for i, w := range want {
		if buf[i][0] != w || buf[i][1] != w {
			t.Errorf("sample %d = %v, want %v on both channels", i, buf[i], w)
		}
	}

	n, ok = s.Stream(buf)
	if n != 2 || !ok {
		t.Fatalf("second Stream() = %d, %v, want 2, true", n, ok)
	}
	if buf[0][0] != -1 {
		t.Errorf("sample 3 = %v, want clipped to -1", buf[0][0])
	}

	if n, ok = s.Stream(buf); n != 0 || ok {
		t.Errorf("drained Stream() = %d, %v, want 0, false", n, ok)
	}

	if err := s.Seek(1); err != nil {
		t.Fatalf("Seek(1): %v", err)
	}
	if s.Position() != 1 || s.Len() != 5 {
		t.Errorf("Position, Len = %d, %d", s.Position(), s.Len())
	}
	if err := s.Seek(6); !errors.Is(err, ErrSeekOutOfRange) {
		t.Errorf("Seek(6) error = %v, want ErrSeekOutOfRange", err)
	}
}

func TestBufferStreamerGain(t *testing.T) {
	s := NewBufferStreamer([]float64{0.5, -0.5}, 0.5)
	buf := make([][2]float64, 2)
	s.Stream(buf)
	if buf[0][0] != 0.25 || buf[1][1] != -0.25 {
		t.Errorf("gain not applied: %v", buf)
	}
}

func TestDeviceLifecycle(t *testing.T) {
	backend := &fakeBackend{}
	device := NewDeviceWithBackend(Config{SampleRate: 48000}, backend)

	if err := device.Play(context.Background(), []float64{0}); !errors.Is(err, ErrDeviceClosed) {
		t.Fatalf("Play before Open error = %v, want ErrDeviceClosed", err)
	}

	if err := device.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if backend.initRate != 48000 || backend.initSize != 4800 {
		t.Errorf("Init(%d, %d), want (48000, 4800)", backend.initRate, backend.initSize)
	}
	if err := device.Open(); !errors.Is(err, ErrDeviceOpen) {
		t.Errorf("second Open error = %v, want ErrDeviceOpen", err)
	}

	samples := make([]float64, 200)
	for i := range samples {
		samples[i] = float64(i) / 400
	}
	if err := device.Play(context.Background(), samples); err != nil {
		t.Fatalf("Play: %v", err)
	}

	backend.mu.Lock()
	played := len(backend.played)
	backend.mu.Unlock()
	if played < len(samples) {
		t.Errorf("played %d samples, want at least %d", played, len(samples))
	}

	device.Close()
	device.Close()
	if backend.closed != 1 {
		t.Errorf("backend closed %d times, want 1", backend.closed)
	}
	if device.IsOpen() {
		t.Error("device still open after Close")
	}
}

func TestDeviceOpenError(t *testing.T) {
	backend := &fakeBackend{initErr: errors.New("no device")}
	device := NewDeviceWithBackend(DefaultConfig(), backend)

	if err := device.Open(); err == nil {
		t.Fatal("Open succeeded with failing backend")
	}
	if device.IsOpen() {
		t.Error("device marked open after failed Open")
	}
}

func TestDevicePlayCancelled(t *testing.T) {
	backend := &fakeBackend{block: make(chan struct{})}
	defer close(backend.block)

	device := NewDeviceWithBackend(DefaultConfig(), backend)
	if err := device.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer device.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := device.Play(ctx, make([]float64, 1000))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Play error = %v, want context.DeadlineExceeded", err)
	}
}
