package device

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"cocbot-go/domain/coords"
)

// Runner executes an adb command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

type execRunner struct {
	path   string
	serial string
}

func (r *execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	if r.serial != "" {
		args = append([]string{"-s", r.serial}, args...)
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("adb %v: %w: %s", args, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out, nil
}

// ADBConfig holds configuration for an ADB device.
type ADBConfig struct {
	// Path of the adb executable.
	Path string
	// Serial selects a device when several are attached.
	Serial string
	// CaptureTimeout bounds a single screencap.
	CaptureTimeout time.Duration
	// Runner overrides command execution, mainly for tests.
	Runner Runner
	Logger *slog.Logger
}

// DefaultADBConfig returns the default ADB configuration.
func DefaultADBConfig() *ADBConfig {
	return &ADBConfig{
		Path:           "adb",
		CaptureTimeout: 5 * time.Second,
	}
}

// ADBDevice drives an Android device through adb.
type ADBDevice struct {
	config  *ADBConfig
	runner  Runner
	logger  *slog.Logger
	running atomic.Bool

	mu        sync.Mutex
	lastFrame coords.Resolution
	asyncWg   sync.WaitGroup
}

// NewADBDevice creates an ADB-backed device.
func NewADBDevice(cfg *ADBConfig) *ADBDevice {
	if cfg == nil {
		cfg = DefaultADBConfig()
	}
	if cfg.Path == "" {
		cfg.Path = "adb"
	}
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	runner := cfg.Runner
	if runner == nil {
		runner = &execRunner{path: cfg.Path, serial: cfg.Serial}
	}
	return &ADBDevice{
		config: cfg,
		runner: runner,
		logger: cfg.Logger.With("device", "adb"),
	}
}

// Name identifies the backend.
func (d *ADBDevice) Name() string {
	return "adb"
}

// Start waits for the device to be reachable.
func (d *ADBDevice) Start(ctx context.Context) error {
	if _, err := d.runner.Run(ctx, "wait-for-device"); err != nil {
		return fmt.Errorf("failed to connect to device: %w", err)
	}
	d.running.Store(true)
	d.logger.Info("Device connected", "serial", d.config.Serial)
	return nil
}

// Capture takes a PNG screenshot.
func (d *ADBDevice) Capture(ctx context.Context) (image.Image, error) {
	if !d.running.Load() {
		return nil, ErrNotRunning
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, d.config.CaptureTimeout)
	defer cancel()

	out, err := d.runner.Run(timeoutCtx, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	d.mu.Lock()
	d.lastFrame = coords.Resolution{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	d.mu.Unlock()
	return img, nil
}

var wmSizePattern = regexp.MustCompile(`(Physical|Override) size:\s*(\d+)x(\d+)`)

// ScreenSize returns the size of the last captured frame, or the display size
// reported by the window manager rotated to landscape.
func (d *ADBDevice) ScreenSize(ctx context.Context) (coords.Resolution, error) {
	d.mu.Lock()
	last := d.lastFrame
	d.mu.Unlock()
	if !last.IsZero() {
		return last, nil
	}

	out, err := d.runner.Run(ctx, "shell", "wm", "size")
	if err != nil {
		return coords.Resolution{}, fmt.Errorf("failed to query screen size: %w", err)
	}
	res, ok := parseWMSize(string(out))
	if !ok {
		return coords.Resolution{}, fmt.Errorf("unexpected wm size output: %q", out)
	}
	if !res.Landscape() {
		res = res.Swap()
	}
	return res, nil
}

// parseWMSize prefers the override size over the physical size.
func parseWMSize(out string) (coords.Resolution, bool) {
	var res coords.Resolution
	found := false
	for _, m := range wmSizePattern.FindAllStringSubmatch(out, -1) {
		w, _ := strconv.Atoi(m[2])
		h, _ := strconv.Atoi(m[3])
		if !found || m[1] == "Override" {
			res = coords.Resolution{Width: w, Height: h}
			found = true
		}
	}
	return res, found && !res.IsZero()
}

// Dispatch performs a stroke. Two-point paths use "input swipe"; longer paths
// are replayed with "input motionevent".
func (d *ADBDevice) Dispatch(ctx context.Context, path []coords.Point, duration time.Duration) (bool, error) {
	if !d.running.Load() {
		return false, ErrNotRunning
	}
	return d.dispatch(ctx, path, duration)
}

func (d *ADBDevice) dispatch(ctx context.Context, path []coords.Point, duration time.Duration) (bool, error) {
	if len(path) == 0 {
		return false, fmt.Errorf("empty gesture path")
	}
	if ctx.Err() != nil {
		return false, nil
	}

	if len(path) <= 2 {
		from, to := path[0], path[len(path)-1]
		_, err := d.runner.Run(ctx, "shell", "input", "swipe",
			itoa(from.X), itoa(from.Y), itoa(to.X), itoa(to.Y),
			strconv.FormatInt(duration.Milliseconds(), 10))
		if err != nil {
			if ctx.Err() != nil {
				return false, nil
			}
			return false, fmt.Errorf("failed to dispatch swipe: %w", err)
		}
		return true, nil
	}

	return d.motion(ctx, path, duration)
}

// liftTimeout bounds the touch-up sent after a cancelled motion.
const liftTimeout = 2 * time.Second

func (d *ADBDevice) motion(ctx context.Context, path []coords.Point, duration time.Duration) (bool, error) {
	step := duration / time.Duration(len(path)-1)

	send := func(ctx context.Context, action string, p coords.Point) error {
		_, err := d.runner.Run(ctx, "shell", "input", "motionevent", action, itoa(p.X), itoa(p.Y))
		return err
	}

	if err := send(ctx, "DOWN", path[0]); err != nil {
		return false, fmt.Errorf("failed to dispatch touch down: %w", err)
	}
	last := path[0]
	for _, p := range path[1:] {
		select {
		case <-ctx.Done():
			// ctx is already done, so the lift needs its own deadline.
			liftCtx, cancel := context.WithTimeout(context.Background(), liftTimeout)
			defer cancel()
			if err := send(liftCtx, "UP", last); err != nil {
				d.logger.Warn("Failed to lift cancelled touch", "error", err)
			}
			return false, nil
		case <-time.After(step):
		}
		if err := send(ctx, "MOVE", p); err != nil {
			return false, fmt.Errorf("failed to dispatch touch move: %w", err)
		}
		last = p
	}
	if err := send(ctx, "UP", last); err != nil {
		return false, fmt.Errorf("failed to dispatch touch up: %w", err)
	}
	return true, nil
}

// DispatchAsync performs a stroke in the background.
func (d *ADBDevice) DispatchAsync(path []coords.Point, duration time.Duration) {
	if !d.running.Load() {
		return
	}
	d.asyncWg.Add(1)
	go func() {
		defer d.asyncWg.Done()
		if _, err := d.dispatch(context.Background(), path, duration); err != nil {
			d.logger.Warn("Async gesture failed", "error", err)
		}
	}()
}

// Close waits for pending async strokes.
func (d *ADBDevice) Close() error {
	d.running.Store(false)
	d.asyncWg.Wait()
	return nil
}

func itoa(v float64) string {
	return strconv.Itoa(int(v + 0.5))
}

var _ Device = (*ADBDevice)(nil)
