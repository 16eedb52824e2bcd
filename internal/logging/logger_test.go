package logging

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInitializeSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("default logger should be silent")
	}
}

func TestInitializeRejectsUnknownLevel(t *testing.T) {
	if err := Initialize("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLogExchange(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogExchange("test", 0x36, []byte{0x03}, []byte{1, 2, 3}, time.Millisecond, nil)
	LogExchange("test", 0x33, []byte{0x00, 0x64}, nil, time.Millisecond, errors.New("timeout"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel {
		t.Errorf("success level = %v, want debug", entries[0].Level)
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("failure level = %v, want warn", entries[1].Level)
	}
	if got := entries[0].ContextMap()["command"]; got != "0x36" {
		t.Errorf("command field = %v, want 0x36", got)
	}
}

func TestLogFrameSkippedAboveDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogFrame("/dev/ttyUSB0", "tx", 0x24, []byte{0x7E, 0x00, 0x24, 0x00, 0xDB, 0x7E})
	if logs.Len() != 0 {
		t.Errorf("entries = %d, want 0", logs.Len())
	}
}

func TestDumps(t *testing.T) {
	if got := hexDump([]byte{0x7E, 0x00}); got != "7e00" {
		t.Errorf("hexDump() = %q", got)
	}
	if got := asciiDump([]byte("ok\x00")); got != "ok." {
		t.Errorf("asciiDump() = %q", got)
	}
	long := make([]byte, maxDumpBytes+10)
	if got := hexDump(long); !strings.HasSuffix(got, "...") || len(got) != maxDumpBytes*2+3 {
		t.Errorf("hexDump() did not truncate, length %d", len(got))
	}
}
