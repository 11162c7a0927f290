// Package desktop drives an emulator window on the local desktop: frames come
// from a screen grab and touches are replayed with the mouse.
package desktop

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"

	"cocbot-go/domain/coords"
	"cocbot-go/infrastructure/device"
)

// Config holds configuration for a desktop device.
type Config struct {
	// Display is the index of the monitor to capture.
	Display int
	// Window is the emulator area relative to the display. Empty captures the whole display.
	Window coords.Region
	// MoveInterval is the delay between intermediate mouse moves of a stroke.
	MoveInterval time.Duration
	Logger       *slog.Logger
}

// DefaultConfig returns the default desktop configuration.
func DefaultConfig() *Config {
	return &Config{MoveInterval: time.Second / 60}
}

// Device implements device.Device with robotgo and kbinani/screenshot.
type Device struct {
	config  *Config
	logger  *slog.Logger
	running atomic.Bool

	// mouse serializes strokes; the desktop has a single pointer.
	mouse   sync.Mutex
	area    image.Rectangle
	asyncWg sync.WaitGroup
}

// New creates a desktop device.
func New(cfg *Config) *Device {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MoveInterval <= 0 {
		cfg.MoveInterval = time.Second / 60
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Device{config: cfg, logger: cfg.Logger.With("device", "desktop")}
}

// Name identifies the backend.
func (d *Device) Name() string {
	return "desktop"
}

// Start resolves the capture area.
func (d *Device) Start(ctx context.Context) error {
	n := screenshot.NumActiveDisplays()
	if d.config.Display < 0 || d.config.Display >= n {
		return fmt.Errorf("display %d not found (%d active)", d.config.Display, n)
	}

	display := screenshot.GetDisplayBounds(d.config.Display)
	area := display
	if !d.config.Window.Empty() {
		area = d.config.Window.Rect().Add(display.Min)
		if !area.In(display) {
			return fmt.Errorf("window %s outside display %v", d.config.Window, display)
		}
	}

	d.area = area
	d.running.Store(true)
	d.logger.Info("Desktop capture area", "display", d.config.Display, "area", area)
	return nil
}

// Capture grabs the emulator area.
func (d *Device) Capture(ctx context.Context) (image.Image, error) {
	if !d.running.Load() {
		return nil, device.ErrNotRunning
	}
	img, err := screenshot.CaptureRect(d.area)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen %d: %w", d.config.Display, err)
	}
	return img, nil
}

// ScreenSize returns the capture area size.
func (d *Device) ScreenSize(ctx context.Context) (coords.Resolution, error) {
	if !d.running.Load() {
		return coords.Resolution{}, device.ErrNotRunning
	}
	return coords.Resolution{Width: d.area.Dx(), Height: d.area.Dy()}, nil
}

// Dispatch presses the left button at the first point, moves through the path
// spread over duration, then releases.
func (d *Device) Dispatch(ctx context.Context, path []coords.Point, duration time.Duration) (bool, error) {
	if !d.running.Load() {
		return false, device.ErrNotRunning
	}
	return d.stroke(ctx, path, duration)
}

func (d *Device) stroke(ctx context.Context, path []coords.Point, duration time.Duration) (bool, error) {
	if len(path) == 0 {
		return false, fmt.Errorf("empty gesture path")
	}

	d.mouse.Lock()
	defer d.mouse.Unlock()

	if ctx.Err() != nil {
		return false, nil
	}

	points := interpolate(path, duration, d.config.MoveInterval)
	step := duration / time.Duration(max(len(points)-1, 1))

	start := d.global(points[0])
	robotgo.MoveMouse(start.X, start.Y)
	if err := robotgo.Toggle("left"); err != nil {
		return false, fmt.Errorf("failed to press mouse: %w", err)
	}
	defer robotgo.Toggle("left", "up")

	for _, p := range points[1:] {
		select {
		case <-ctx.Done():
			return false, nil
		case <-time.After(step):
		}
		g := d.global(p)
		robotgo.MoveMouse(g.X, g.Y)
	}
	if len(points) == 1 {
		select {
		case <-ctx.Done():
			return false, nil
		case <-time.After(duration):
		}
	}
	return true, nil
}

// DispatchAsync performs the stroke in the background.
func (d *Device) DispatchAsync(path []coords.Point, duration time.Duration) {
	if !d.running.Load() {
		return
	}
	d.asyncWg.Add(1)
	go func() {
		defer d.asyncWg.Done()
		if _, err := d.stroke(context.Background(), path, duration); err != nil {
			d.logger.Warn("Async gesture failed", "error", err)
		}
	}()
}

// Close waits for pending strokes.
func (d *Device) Close() error {
	d.running.Store(false)
	d.asyncWg.Wait()
	return nil
}

func (d *Device) global(p coords.Point) image.Point {
	return p.Round().Add(d.area.Min)
}

// interpolate inserts points so that consecutive moves are roughly one
// interval apart.
func interpolate(path []coords.Point, duration, interval time.Duration) []coords.Point {
	if len(path) < 2 || interval <= 0 {
		return path
	}
	steps := int(math.Max(1, float64(duration/interval)))
	if steps <= len(path)-1 {
		return path
	}

	perSegment := steps / (len(path) - 1)
	if perSegment < 1 {
		perSegment = 1
	}
	out := []coords.Point{path[0]}
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		for s := 1; s <= perSegment; s++ {
			t := float64(s) / float64(perSegment)
			out = append(out, coords.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t})
		}
	}
	return out
}

var _ device.Device = (*Device)(nil)
