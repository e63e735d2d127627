package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected non-nil logger for nil input")
	}

	l := Nop()
	if OrNop(l) != l {
		t.Error("expected OrNop to return the same logger")
	}
}

func TestComponentAddsField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).Component("mkv")

	l.Infow("identified tracks", "count", 3)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "mkv" {
		t.Errorf("expected component=mkv, got %v", fields["component"])
	}
	if fields["count"] != int64(3) {
		t.Errorf("expected count=3, got %v", fields["count"])
	}
}

func TestBuildLevels(t *testing.T) {
	tests := []struct {
		verbose  bool
		terminal bool
		debug    bool
	}{
		{verbose: false, terminal: false, debug: false},
		{verbose: true, terminal: false, debug: true},
		{verbose: true, terminal: true, debug: true},
		{verbose: false, terminal: true, debug: false},
	}

	for _, tt := range tests {
		l, err := build(tt.verbose, tt.terminal)
		if err != nil {
			t.Fatalf("build(%v, %v) failed: %v", tt.verbose, tt.terminal, err)
		}
		got := l.Desugar().Core().Enabled(zapcore.DebugLevel)
		if got != tt.debug {
			t.Errorf("build(%v, %v): debug enabled = %v, want %v", tt.verbose, tt.terminal, got, tt.debug)
		}
	}
}
