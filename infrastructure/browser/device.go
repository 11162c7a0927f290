package browser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"cocbot-go/domain/coords"
	"cocbot-go/infrastructure/device"
)

// Device implements device.Device on top of a chromedp browser tab.
type Device struct {
	config *Config
	logger *slog.Logger

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	running     bool

	// mouse serializes strokes; the page has one pointer.
	mouse   sync.Mutex
	asyncWg sync.WaitGroup
}

// New creates a browser device.
func New(cfg *Config) *Device {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	defaults := DefaultConfig()
	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		cfg.ViewportWidth, cfg.ViewportHeight = defaults.ViewportWidth, defaults.ViewportHeight
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = defaults.LoadTimeout
	}
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = defaults.CaptureTimeout
	}
	if cfg.MoveInterval <= 0 {
		cfg.MoveInterval = defaults.MoveInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Device{config: cfg, logger: cfg.Logger.With("device", "browser")}
}

// Name identifies the backend.
func (d *Device) Name() string {
	return "browser"
}

func (d *Device) buildExecAllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.config.Headless),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("mute-audio", d.config.MuteAudio),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(d.config.ViewportWidth, d.config.ViewportHeight),
	)
	if d.config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(d.config.UserDataDir))
	}
	return opts
}

// Start launches the browser and opens the emulator page.
func (d *Device) Start(ctx context.Context) error {
	if d.config.URL == "" {
		return fmt.Errorf("browser url is not configured")
	}

	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("browser already running")
	}
	// The browser outlives the caller's context.
	d.allocCtx, d.allocCancel = chromedp.NewExecAllocator(context.Background(), d.buildExecAllocatorOptions()...)
	d.ctx, d.cancel = chromedp.NewContext(d.allocCtx)
	browserCtx := d.ctx
	d.running = true
	d.mu.Unlock()

	loadCtx, cancel := context.WithTimeout(browserCtx, d.config.LoadTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(loadCtx,
		chromedp.EmulateViewport(int64(d.config.ViewportWidth), int64(d.config.ViewportHeight), chromedp.EmulateScale(1)),
		chromedp.Navigate(d.config.URL),
	)
	if err != nil {
		_ = d.Close()
		return fmt.Errorf("failed to open %s: %w", d.config.URL, err)
	}

	d.logger.Info("Browser device ready", "url", d.config.URL,
		"viewport", fmt.Sprintf("%dx%d", d.config.ViewportWidth, d.config.ViewportHeight))
	return nil
}

func (d *Device) browserContext() (context.Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running || d.ctx == nil {
		return nil, device.ErrNotRunning
	}
	return d.ctx, nil
}

// Capture takes a PNG screenshot of the viewport.
func (d *Device) Capture(ctx context.Context) (image.Image, error) {
	browserCtx, err := d.browserContext()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(browserCtx, d.config.CaptureTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var buf []byte
	if err := chromedp.Run(timeoutCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	return img, nil
}

// ScreenSize returns the emulated viewport.
func (d *Device) ScreenSize(ctx context.Context) (coords.Resolution, error) {
	if _, err := d.browserContext(); err != nil {
		return coords.Resolution{}, err
	}
	return coords.Resolution{Width: d.config.ViewportWidth, Height: d.config.ViewportHeight}, nil
}

// Dispatch presses the left button at the first point, moves through the path
// spread over duration and releases at the last point.
func (d *Device) Dispatch(ctx context.Context, path []coords.Point, duration time.Duration) (bool, error) {
	browserCtx, err := d.browserContext()
	if err != nil {
		return false, err
	}
	return d.stroke(ctx, browserCtx, path, duration)
}

func (d *Device) stroke(ctx, browserCtx context.Context, path []coords.Point, duration time.Duration) (bool, error) {
	steps := planStroke(path, duration, d.config.MoveInterval)
	if len(steps) == 0 {
		return false, fmt.Errorf("empty gesture path")
	}

	d.mouse.Lock()
	defer d.mouse.Unlock()

	completed := false
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(cdpCtx context.Context) error {
		p := &input.DispatchMouseEventParams{Button: input.Left, ClickCount: 1}
		for _, s := range steps {
			if s.wait > 0 {
				select {
				case <-ctx.Done():
					// Never leave the button held.
					p.Type = input.MouseReleased
					return p.Do(cdpCtx)
				case <-time.After(s.wait):
				}
			}
			p.Type, p.X, p.Y = s.kind, s.at.X, s.at.Y
			if err := p.Do(cdpCtx); err != nil {
				return err
			}
		}
		completed = true
		return nil
	}))
	if err != nil {
		return false, fmt.Errorf("failed to dispatch gesture: %w", err)
	}
	return completed, nil
}

// DispatchAsync runs the stroke in the background.
func (d *Device) DispatchAsync(path []coords.Point, duration time.Duration) {
	browserCtx, err := d.browserContext()
	if err != nil {
		return
	}
	d.asyncWg.Add(1)
	go func() {
		defer d.asyncWg.Done()
		if _, err := d.stroke(context.Background(), browserCtx, path, duration); err != nil {
			d.logger.Warn("Async gesture failed", "error", err)
		}
	}()
}

// Close shuts the browser down.
func (d *Device) Close() error {
	d.asyncWg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return nil
	}
	d.running = false
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.allocCancel != nil {
		d.allocCancel()
		d.allocCancel = nil
	}
	d.ctx = nil
	d.allocCtx = nil
	return nil
}

var _ device.Device = (*Device)(nil)
