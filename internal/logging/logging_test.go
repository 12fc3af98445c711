package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelWarn)
	l.Info("quiet")
	l.Warn("loud", "status", 401)

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "loud") || !strings.Contains(out, "status=401") {
		t.Errorf("warn line missing: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour codes written to non-terminal: %q", out)
	}
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "eventview.log")

	for _, msg := range []string{"first", "second"} {
		l, c, err := Open(path, slog.LevelInfo)
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		l.Info(msg)
		if err := c.Close(); err != nil {
			t.Fatalf("Close() error: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("log file = %q, want both lines", out)
	}
}
