// Package browser drives a browser-hosted emulator page through chromedp.
package browser

import (
	"log/slog"
	"time"
)

// Config holds configuration for the browser device.
type Config struct {
	// URL of the page that hosts the emulator canvas.
	URL string

	// Headless runs the browser without a visible window.
	Headless bool

	// ViewportWidth and ViewportHeight size the page; frames are captured at this size.
	ViewportWidth  int
	ViewportHeight int

	// MuteAudio mutes browser audio.
	MuteAudio bool

	// UserDataDir keeps the browser profile between runs (emulator logins live here).
	UserDataDir string

	// LoadTimeout bounds the initial navigation.
	LoadTimeout time.Duration

	// CaptureTimeout bounds a single screenshot.
	CaptureTimeout time.Duration

	// MoveInterval is the delay between mouse move events of a stroke.
	MoveInterval time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns the default browser configuration.
func DefaultConfig() *Config {
	return &Config{
		Headless:       true,
		ViewportWidth:  1280,
		ViewportHeight: 720,
		MuteAudio:      true,
		LoadTimeout:    30 * time.Second,
		CaptureTimeout: 3 * time.Second,
		MoveInterval:   time.Second / 60,
	}
}
