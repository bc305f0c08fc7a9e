package logging

import (
	"errors"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("hello", String("k", "v"), Int("n", 1), Error(errors.New("boom")))
	child := l.With(Bool("child", true))
	child.Debug("ignored")
	_ = l.Sync()
}

func TestNew_Development(t *testing.T) {
	l, err := New(Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Debug("dev logger works")
}
