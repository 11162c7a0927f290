// Package recorder captures live touches into attack recordings.
package recorder

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cocbot-go/domain/coords"
	"cocbot-go/domain/recording"
)

var (
	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not recording")
	ErrEmptyRecording   = errors.New("nothing was recorded")
)

// Store persists finished recordings.
type Store interface {
	Save(name string, actions []recording.TouchAction) (string, error)
}

// PassThrough forwards a touch to the game while recording.
type PassThrough interface {
	TapAsync(gameX, gameY float64)
}

// Config holds configuration for a Recorder.
type Config struct {
	Mapper      *coords.Mapper
	Store       Store
	PassThrough PassThrough
	Logger      *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Recorder turns raw screen touches into script-space samples.
// It is safe for concurrent use.
type Recorder struct {
	mapper *coords.Mapper
	store  Store
	pass   PassThrough
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	recording bool
	started   time.Time
	actions   []recording.TouchAction
}

// New creates a recorder.
func New(cfg *Config) *Recorder {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Mapper == nil {
		cfg.Mapper = coords.NewMapper()
	}
	return &Recorder{
		mapper: cfg.Mapper,
		store:  cfg.Store,
		pass:   cfg.PassThrough,
		logger: cfg.Logger.With("component", "recorder"),
		now:    cfg.Now,
	}
}

// Begin starts a new recording. It fails if one is already open.
func (r *Recorder) Begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return ErrAlreadyRecording
	}
	r.recording = true
	r.started = r.now()
	r.actions = r.actions[:0]
	r.logger.Info("Recording started")
	return nil
}

// IsRecording reports whether a recording is open.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Touch records one raw physical sample. Downs are forwarded to the game.
func (r *Recorder) Touch(kind recording.ActionType, rawX, rawY float64) error {
	switch kind {
	case recording.ActionDown, recording.ActionMove, recording.ActionUp:
	default:
		return fmt.Errorf("unsupported touch type %q", kind)
	}

	game := r.mapper.ScreenToGame(rawX, rawY)
	script := r.mapper.GameToScript(game.X, game.Y).Round()

	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return ErrNotRecording
	}
	r.actions = append(r.actions, recording.TouchAction{
		Type:        kind,
		X:           script.X,
		Y:           script.Y,
		TimestampMs: r.now().Sub(r.started).Milliseconds(),
	})
	n := len(r.actions)
	r.mu.Unlock()

	if n%50 == 0 {
		r.logger.Debug("Recorded actions", "count", n)
	}
	if kind == recording.ActionDown && r.pass != nil {
		r.pass.TapAsync(game.X, game.Y)
	}
	return nil
}

// Finish closes the recording and saves it under name.
// The recording is closed even when saving fails.
func (r *Recorder) Finish(name string) (string, int, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return "", 0, ErrNotRecording
	}
	r.recording = false
	actions := append([]recording.TouchAction(nil), r.actions...)
	r.actions = r.actions[:0]
	r.mu.Unlock()

	if len(actions) == 0 {
		return "", 0, ErrEmptyRecording
	}

	path, err := r.store.Save(name, actions)
	if err != nil {
		return "", 0, fmt.Errorf("failed to save recording: %w", err)
	}
	r.logger.Info("Recording saved", "path", path, "actions", len(actions))
	return path, len(actions), nil
}

// Cancel discards an open recording.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	r.recording = false
	r.actions = r.actions[:0]
	r.mu.Unlock()
}
