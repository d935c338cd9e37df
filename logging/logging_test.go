package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{" warning ", WarnLevel},
		{"error", ErrorLevel},
		{"fatal", FatalLevel},
		{"nonsense", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultLoggerRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&stdout, &stderr)

	logger.Debug("hidden")
	logger.Info("curve computed", Fields{"points": 1000, "base": 220})
	logger.Warn("clamped")
	logger.Error(errors.New("boom"), "render failed")

	out := stdout.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message written at info level")
	}
	if !strings.Contains(out, "[INFO] curve computed base=220 points=1000") {
		t.Errorf("stdout = %q, want sorted fields", out)
	}

	errOut := stderr.String()
	if !strings.Contains(errOut, "[WARN] clamped") {
		t.Errorf("stderr = %q, want warning", errOut)
	}
	if !strings.Contains(errOut, "[ERROR] render failed: boom") {
		t.Errorf("stderr = %q, want error", errOut)
	}

	logger.SetLevel(DebugLevel)
	logger.Debug("visible")
	if !strings.Contains(stdout.String(), "[DEBUG] visible") {
		t.Error("debug message missing after SetLevel(DebugLevel)")
	}
}

func TestDefaultLoggerFatalExits(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&stdout, &stderr)

	code := -1
	logger.exit = func(c int) { code = c }
	logger.Fatal(errors.New("device lost"), "playback")

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "[FATAL] playback: device lost") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestWithFieldsAndContext(t *testing.T) {
	var stdout, stderr bytes.Buffer
	base := NewDefaultLoggerWithWriters(&stdout, &stderr)

	child := base.WithFields(Fields{"component": "dissonance"})
	ctx := ContextWithFields(context.Background(), Fields{"request": "r1"})
	ctx = ContextWithFields(ctx, Fields{"edo": 12})
	child.WithContext(ctx).Info("done")

	out := stdout.String()
	for _, want := range []string{"component=dissonance", "edo=12", "request=r1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	stdout.Reset()
	base.Info("plain")
	if strings.Contains(stdout.String(), "component") {
		t.Error("WithFields leaked fields into the parent logger")
	}

	if _, ok := FieldsFromContext(context.Background()); ok {
		t.Error("FieldsFromContext found fields in an empty context")
	}
}

func TestGlobalLogger(t *testing.T) {
	previous := GetGlobalLogger()
	defer SetGlobalLogger(previous)

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("SetGlobalLogger(nil) installed %T, want *NoOpLogger", GetGlobalLogger())
	}

	var stdout, stderr bytes.Buffer
	SetGlobalLogger(NewDefaultLoggerWithWriters(&stdout, &stderr))
	Info("global", Fields{"k": "v"})
	if !strings.Contains(stdout.String(), "[INFO] global k=v") {
		t.Errorf("global output = %q", stdout.String())
	}
}

func TestZapLogger(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.WithFields(Fields{"component": "synthesis"}).Info("rendered", Fields{"samples": 44100})
	logger.Error(errors.New("bad ratio"), "snap failed")

	logger.SetLevel(WarnLevel)
	logger.Info("suppressed")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("observed %d entries, want 2", len(entries))
	}

	first := entries[0].ContextMap()
	if first["component"] != "synthesis" {
		t.Errorf("component field = %v", first["component"])
	}
	if first["samples"] != int64(44100) {
		t.Errorf("samples field = %v (%T)", first["samples"], first["samples"])
	}

	second := entries[1]
	if second.Level != zapcore.ErrorLevel || second.ContextMap()["error"] != "bad ratio" {
		t.Errorf("error entry = %+v", second)
	}
}
