// Package gesture issues taps and swipes addressed in game space.
package gesture

import (
	"context"
	"log/slog"
	"time"

	"cocbot-go/domain/coords"
	"cocbot-go/infrastructure/device"
)

// Stroke timings.
const (
	TapDuration      = 50 * time.Millisecond
	AsyncTapDuration = 10 * time.Millisecond
	MinSwipeDuration = 10 * time.Millisecond
)

// Dispatcher converts game-space gestures to physical strokes on an injector.
// Failures are logged and reported as false; they never propagate.
type Dispatcher struct {
	injector device.Injector
	mapper   *coords.Mapper
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(injector device.Injector, mapper *coords.Mapper, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		injector: injector,
		mapper:   mapper,
		logger:   logger.With("component", "gesture"),
	}
}

// Tap taps a game-space point and waits for the stroke to finish.
func (d *Dispatcher) Tap(ctx context.Context, gameX, gameY float64) bool {
	p := d.mapper.GameToScreen(gameX, gameY)
	return d.dispatch(ctx, nudge(p), TapDuration)
}

// Hold presses a game-space point for duration.
func (d *Dispatcher) Hold(ctx context.Context, gameX, gameY float64, duration time.Duration) bool {
	if duration < TapDuration {
		duration = TapDuration
	}
	p := d.mapper.GameToScreen(gameX, gameY)
	return d.dispatch(ctx, nudge(p), duration)
}

// Swipe drags between two game-space points.
func (d *Dispatcher) Swipe(ctx context.Context, from, to coords.Point, duration time.Duration) bool {
	if duration < MinSwipeDuration {
		duration = MinSwipeDuration
	}
	a := d.mapper.GameToScreen(from.X, from.Y)
	b := d.mapper.GameToScreen(to.X, to.Y)
	if a == b {
		return d.dispatch(ctx, nudge(a), duration)
	}
	return d.dispatch(ctx, []coords.Point{a, b}, duration)
}

// TapAsync taps without waiting. Used for recording pass-through.
func (d *Dispatcher) TapAsync(gameX, gameY float64) {
	p := d.mapper.GameToScreen(gameX, gameY)
	d.injector.DispatchAsync(nudge(p), AsyncTapDuration)
}

func (d *Dispatcher) dispatch(ctx context.Context, path []coords.Point, duration time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	ok, err := d.injector.Dispatch(ctx, path, duration)
	if err != nil {
		d.logger.Warn("Gesture failed", "path", path, "duration", duration, "error", err)
		return false
	}
	if !ok {
		d.logger.Debug("Gesture cancelled", "path", path)
	}
	return ok
}

// nudge turns a point into a two-point path; some injectors drop zero-length strokes.
func nudge(p coords.Point) []coords.Point {
	return []coords.Point{p, {X: p.X + 1, Y: p.Y + 1}}
}
