package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultLogDir(t *testing.T) {
	dir := DefaultLogDir()
	if filepath.Base(dir) != "logs" || filepath.Base(filepath.Dir(dir)) != "cocbot" {
		t.Errorf("DefaultLogDir() = %q, want .../cocbot/logs", dir)
	}
}

func TestContextLogger(t *testing.T) {
	if From(context.Background()) != L() {
		t.Error("From without a logger should return L()")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := With(context.Background(), logger)
	if From(ctx) != logger {
		t.Error("From should return the logger stored by With")
	}

	enriched := WithAttrs(ctx, "run_id", "abc")
	if From(enriched) == logger {
		t.Error("WithAttrs should store a derived logger")
	}
}
