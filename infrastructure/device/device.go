// Package device defines the frame source and touch injection contracts and
// the Android (adb) implementation.
package device

import (
	"context"
	"errors"
	"image"
	"time"

	"cocbot-go/domain/coords"
)

// ErrNotRunning is returned when a device is used before Start or after Close.
var ErrNotRunning = errors.New("device not running")

// FrameSource supplies screen frames on demand.
// A nil image with a nil error means "no frame right now".
type FrameSource interface {
	Capture(ctx context.Context) (image.Image, error)
}

// Injector dispatches touch strokes in physical screen pixels.
type Injector interface {
	// Dispatch performs one stroke along path over duration and waits for it.
	// The bool reports whether the stroke completed rather than being cancelled.
	Dispatch(ctx context.Context, path []coords.Point, duration time.Duration) (bool, error)

	// DispatchAsync starts a stroke and returns immediately.
	DispatchAsync(path []coords.Point, duration time.Duration)
}

// Device is a controllable screen.
type Device interface {
	FrameSource
	Injector

	// Start connects to the device.
	Start(ctx context.Context) error

	// ScreenSize returns the physical screen size in the current orientation.
	ScreenSize(ctx context.Context) (coords.Resolution, error)

	// Close releases the device.
	Close() error

	// Name identifies the backend in logs.
	Name() string
}
