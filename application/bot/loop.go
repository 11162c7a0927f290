// Package bot runs the perception-to-action control loop and the actor that
// owns it.
package bot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"time"

	"cocbot-go/application/perception"
	"cocbot-go/core/event"
	"cocbot-go/core/eventbus"
	"cocbot-go/core/state"
	"cocbot-go/domain/calibration"
	"cocbot-go/domain/coords"
	"cocbot-go/domain/recording"
	"cocbot-go/domain/sequence"
	"cocbot-go/domain/settings"
	"cocbot-go/infrastructure/device"
)

// ErrBootstrapFailed is returned when no reference frame could be captured.
var ErrBootstrapFailed = errors.New("could not capture a reference frame")

// Screen is the device surface the loop reads from.
type Screen interface {
	device.FrameSource
	ScreenSize(ctx context.Context) (coords.Resolution, error)
}

// Gestures issues game-space touches.
type Gestures interface {
	Tap(ctx context.Context, gameX, gameY float64) bool
	Swipe(ctx context.Context, from, to coords.Point, duration time.Duration) bool
}

// Perception reads numbers and text from frames.
type Perception interface {
	ReadPlayer(ctx context.Context, frame image.Image, regions coords.RegionSet) perception.Reading
	ReadEnemy(ctx context.Context, frame image.Image, regions coords.RegionSet) perception.Reading
	FindTextRow(ctx context.Context, frame image.Image, needle string, region coords.Region) (coords.Point, bool)
	ReadWallPrice(ctx context.Context, frame image.Image, region coords.Region) (int, string)
}

// ScriptLoader loads attack recordings by path. Load returns nil on failure.
type ScriptLoader interface {
	Load(path string) *recording.Recording
}

// Config holds the collaborators of the loop and the actor.
type Config struct {
	Screen     Screen
	Gestures   Gestures
	Perception Perception
	Scripts    ScriptLoader
	Buttons    *calibration.ButtonStore
	Resolution *calibration.ResolutionStore
	Settings   *settings.Service
	Sequences  *sequence.Registry
	Mapper     *coords.Mapper
	EventBus   eventbus.EventBus
	Loop       *LoopConfig
	Logger     *slog.Logger

	// Now is the clock used for the attack duration. Defaults to time.Now.
	Now func() time.Time

	// CommandBuffer is the actor's queue size.
	CommandBuffer int
}

// Loop is the control loop. A Loop is driven by one goroutine at a time.
type Loop struct {
	screen     Screen
	gestures   Gestures
	perception Perception
	scripts    ScriptLoader
	buttons    *calibration.ButtonStore
	resolution *calibration.ResolutionStore
	settings   *settings.Service
	sequences  *sequence.Registry
	mapper     *coords.Mapper
	bus        eventbus.EventBus
	cfg        *LoopConfig
	base       *slog.Logger
	logger     *slog.Logger
	now        func() time.Time

	// Per run.
	runID       string
	selected    []string
	scriptIndex int
	sinceCheck  int
	phase       func(state.BotState)
}

// NewLoop creates a loop from the collaborators in cfg.
func NewLoop(cfg *Config) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "loop")
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	mapper := cfg.Mapper
	if mapper == nil {
		mapper = coords.NewMapper()
	}
	return &Loop{
		screen:     cfg.Screen,
		gestures:   cfg.Gestures,
		perception: cfg.Perception,
		scripts:    cfg.Scripts,
		buttons:    cfg.Buttons,
		resolution: cfg.Resolution,
		settings:   cfg.Settings,
		sequences:  cfg.Sequences,
		mapper:     mapper,
		bus:        cfg.EventBus,
		cfg:        cfg.Loop.withDefaults(),
		base:       logger,
		logger:     logger,
		now:        now,
		phase:      func(state.BotState) {},
	}
}

// Run executes the loop until ctx is cancelled. It returns ErrBootstrapFailed
// when no reference frame can be obtained and nil otherwise.
func (l *Loop) Run(ctx context.Context, runID string, scripts []string, phase func(state.BotState)) error {
	l.runID = runID
	l.selected = append([]string(nil), scripts...)
	l.scriptIndex = 0
	l.sinceCheck = -1
	if phase != nil {
		l.phase = phase
	}
	l.logger = l.base.With("run_id", runID)

	l.log("=== Bot started ===")
	if !l.sleep(ctx, l.cfg.StartDelay) {
		l.log("Bot stopped.")
		return nil
	}

	if err := l.bootstrap(ctx); err != nil {
		if ctx.Err() != nil {
			l.log("Bot stopped.")
			return nil
		}
		l.log("Error: could not capture the screen. Stopping bot.")
		return err
	}
	l.phase(state.StateRunning)

	for ctx.Err() == nil {
		if err := l.safeIterate(ctx); err != nil {
			l.log("Error: " + err.Error())
		}
		l.phase(state.StateRunning)
		if !l.sleep(ctx, l.cfg.IterationDelay) {
			break
		}
	}

	l.log("Bot stopped.")
	return nil
}

// bootstrap loads the stored game resolution or measures it from live frames.
func (l *Loop) bootstrap(ctx context.Context) error {
	l.refreshPhysical(ctx)

	if l.resolution != nil {
		res, err := l.resolution.Load(ctx)
		if err != nil {
			l.logger.Warn("Failed to load game resolution", "error", err)
		}
		if !res.IsZero() {
			l.mapper.Establish(res.Width, res.Height)
			l.logger.Info("Loaded game resolution", "resolution", res)
			return nil
		}
	}

	l.log("Measuring the screen...")
	for attempt := 1; attempt <= l.cfg.BootstrapAttempts; attempt++ {
		frame := l.capture(ctx)
		if frame != nil && !frame.Bounds().Empty() {
			l.establish(ctx, frame)
			return nil
		}
		l.logger.Debug("No reference frame yet", "attempt", attempt)
		if !l.sleep(ctx, l.cfg.BootstrapBackoff) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrBootstrapFailed, l.cfg.BootstrapAttempts)
}

// establish stores the frame size as the game resolution when it changed.
func (l *Loop) establish(ctx context.Context, frame image.Image) {
	b := frame.Bounds()
	if !l.mapper.Establish(b.Dx(), b.Dy()) {
		return
	}
	res := l.mapper.Game()
	l.logger.Info("Game resolution established", "resolution", res)
	l.refreshPhysical(ctx)
	if l.resolution != nil {
		if err := l.resolution.Save(ctx, res); err != nil {
			l.logger.Warn("Failed to persist game resolution", "error", err)
		}
	}
}

func (l *Loop) refreshPhysical(ctx context.Context) {
	size, err := l.screen.ScreenSize(ctx)
	if err != nil {
		l.logger.Warn("Failed to read screen size", "error", err)
		return
	}
	l.mapper.SetPhysical(size.Width, size.Height)
}

// safeIterate runs one iteration and turns a panic into an error.
func (l *Loop) safeIterate(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("Iteration panicked", "panic", rec, "stack", string(debug.Stack()))
			err = fmt.Errorf("%v", rec)
		}
	}()
	return l.iterate(ctx)
}

func (l *Loop) iterate(ctx context.Context) error {
	frame := l.capture(ctx)
	if frame == nil {
		l.sleep(ctx, l.cfg.NullFrameDelay)
		return nil
	}
	l.establish(ctx, frame)

	s, err := l.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if !s.EnableWallUpgrade {
		l.log("Mode: farm only")
		l.farmOnce(ctx, s)
		return nil
	}

	if !l.storageCheckDue(s) {
		l.farmOnce(ctx, s)
		return nil
	}

	l.sinceCheck = 0
	player := l.perception.ReadPlayer(ctx, frame, l.mapper.Regions())
	l.publish(event.NewResourcesRead(l.runID, event.OwnerPlayer, player.Gold, player.Elixir))
	l.log(fmt.Sprintf("Storage: gold %s  elixir %s", settings.FormatK(player.Gold), settings.FormatK(player.Elixir)))

	if player.Gold >= s.UpgradeGold || player.Elixir >= s.UpgradeElixir {
		currency, balance := CurrencyGold, player.Gold
		if player.Gold < s.UpgradeGold {
			currency, balance = CurrencyElixir, player.Elixir
		}
		l.log(fmt.Sprintf("=> Surplus. Upgrading walls (%s)...", currency))
		l.reinvest(ctx, currency, balance)
		l.sleep(ctx, l.cfg.PostReinvestDelay)
		return nil
	}

	l.log("=> Not enough to upgrade. Farming...")
	l.farmOnce(ctx, s)
	return nil
}

// storageCheckDue reports whether the player's storage should be read this
// iteration. The first iteration of a run always checks.
func (l *Loop) storageCheckDue(s settings.BotSettings) bool {
	if s.MatchesBeforeUpgrade <= 0 || l.sinceCheck < 0 {
		return true
	}
	return l.sinceCheck >= s.MatchesBeforeUpgrade
}

func (l *Loop) farmOnce(ctx context.Context, s settings.BotSettings) {
	if l.farm(ctx, s) && l.sinceCheck >= 0 {
		l.sinceCheck++
	}
}

// capture pulls a frame; failures become nil.
func (l *Loop) capture(ctx context.Context) image.Image {
	frame, err := l.screen.Capture(ctx)
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Warn("Capture failed", "error", err)
		}
		return nil
	}
	return frame
}

// sleep waits d and reports false if ctx was cancelled first.
func (l *Loop) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// log writes a user-facing line.
func (l *Loop) log(msg string) {
	l.logger.Info(msg)
	l.publish(event.NewLogMessage(l.runID, msg))
}

func (l *Loop) publish(e event.Event) {
	if l.bus != nil {
		l.bus.Publish(e)
	}
}
