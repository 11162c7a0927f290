// Package application wires user commands to the bot actor, calibration
// stores and the recorder.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"cocbot-go/application/bot"
	"cocbot-go/application/recorder"
	"cocbot-go/core/command"
	"cocbot-go/core/event"
	"cocbot-go/core/eventbus"
	"cocbot-go/domain/calibration"
	"cocbot-go/domain/coords"
	"cocbot-go/domain/recording"
	"cocbot-go/domain/settings"
)

// Coordinator routes commands. Bot commands are queued on the bot actor; the
// rest are handled synchronously.
type Coordinator struct {
	bot        *bot.Bot
	recorder   *recorder.Recorder
	buttons    *calibration.ButtonStore
	resolution *calibration.ResolutionStore
	settings   *settings.Service
	mapper     *coords.Mapper
	eventBus   eventbus.EventBus
	logger     *slog.Logger

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
}

// CoordinatorConfig holds configuration for the Coordinator.
type CoordinatorConfig struct {
	Bot        *bot.Bot
	Recorder   *recorder.Recorder
	Buttons    *calibration.ButtonStore
	Resolution *calibration.ResolutionStore
	Settings   *settings.Service
	Mapper     *coords.Mapper
	EventBus   eventbus.EventBus
	Logger     *slog.Logger
}

// NewCoordinator creates a coordinator.
func NewCoordinator(cfg *CoordinatorConfig) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Mapper == nil {
		cfg.Mapper = coords.NewMapper()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		bot:        cfg.Bot,
		recorder:   cfg.Recorder,
		buttons:    cfg.Buttons,
		resolution: cfg.Resolution,
		settings:   cfg.Settings,
		mapper:     cfg.Mapper,
		eventBus:   cfg.EventBus,
		logger:     cfg.Logger.With("component", "coordinator"),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the bot actor.
func (c *Coordinator) Start() {
	if c.bot != nil {
		c.bot.Start()
	}
	c.logger.Info("Coordinator started")
}

// Stop discards an open recording and stops the bot actor.
func (c *Coordinator) Stop() {
	c.cancel()
	if c.recorder != nil && c.recorder.IsRecording() {
		c.recorder.Cancel()
		c.logger.Warn("Open recording discarded")
	}
	if c.bot != nil {
		c.bot.Stop()
	}
	c.logger.Info("Coordinator stopped")
}

// Dispatch sends a command to the appropriate handler.
func (c *Coordinator) Dispatch(cmd command.Command) error {
	c.logger.Debug("Dispatching command", "command", cmd.CommandName())

	switch cmd := cmd.(type) {
	// Calibration
	case *command.SaveButton:
		return c.handleSaveButton(cmd)
	case *command.ClearButton:
		return c.handleClearButton(cmd)
	case *command.ResetResolution:
		return c.handleResetResolution()
	case *command.UpdateSetting:
		return c.handleUpdateSetting(cmd)

	// Recording
	case *command.StartRecording:
		return c.handleStartRecording()
	case *command.RecordTouch:
		return c.handleRecordTouch(cmd)
	case *command.StopRecording:
		return c.handleStopRecording(cmd)

	default:
		if botCmd, ok := cmd.(command.BotCommand); ok {
			if c.bot == nil {
				return fmt.Errorf("no bot configured for %s", cmd.CommandName())
			}
			return c.bot.Send(botCmd)
		}
		return fmt.Errorf("unknown command type: %T", cmd)
	}
}

// Command handlers

func (c *Coordinator) handleSaveButton(cmd *command.SaveButton) error {
	key, err := calibration.ParseButton(cmd.Key)
	if err != nil {
		return err
	}
	game := c.mapper.ScreenToGame(cmd.RawX, cmd.RawY)
	if err := c.buttons.Save(c.ctx, key, game); err != nil {
		return fmt.Errorf("failed to save button %s: %w", key.Name(), err)
	}

	at := game.Round()
	c.logger.Info("Button saved", "button", key.Name(), "x", at.X, "y", at.Y)
	c.publish(&event.ButtonSaved{Key: key.Name(), X: at.X, Y: at.Y})
	return nil
}

func (c *Coordinator) handleClearButton(cmd *command.ClearButton) error {
	key, err := calibration.ParseButton(cmd.Key)
	if err != nil {
		return err
	}
	if err := c.buttons.Clear(c.ctx, key); err != nil {
		return fmt.Errorf("failed to clear button %s: %w", key.Name(), err)
	}
	c.logger.Info("Button cleared", "button", key.Name())
	return nil
}

func (c *Coordinator) handleResetResolution() error {
	if err := c.resolution.Reset(c.ctx); err != nil {
		return fmt.Errorf("failed to reset game resolution: %w", err)
	}
	c.mapper.Reset()
	c.logger.Info("Game resolution reset")
	return nil
}

func (c *Coordinator) handleUpdateSetting(cmd *command.UpdateSetting) error {
	if err := c.settings.Set(c.ctx, cmd.Key, cmd.Value); err != nil {
		return fmt.Errorf("failed to update %s: %w", cmd.Key, err)
	}
	c.logger.Info("Setting updated", "key", cmd.Key, "value", cmd.Value)
	return nil
}

func (c *Coordinator) handleStartRecording() error {
	if c.recorder == nil {
		return fmt.Errorf("recording is not available")
	}
	if err := c.recorder.Begin(); err != nil {
		return err
	}
	c.publish(&event.RecordingStarted{})
	return nil
}

func (c *Coordinator) handleRecordTouch(cmd *command.RecordTouch) error {
	if c.recorder == nil {
		return fmt.Errorf("recording is not available")
	}
	return c.recorder.Touch(recording.ActionType(cmd.Type), cmd.RawX, cmd.RawY)
}

func (c *Coordinator) handleStopRecording(cmd *command.StopRecording) error {
	if c.recorder == nil {
		return fmt.Errorf("recording is not available")
	}
	path, count, err := c.recorder.Finish(cmd.Name)
	if err != nil {
		c.logger.Error("Recording failed", "error", err)
		c.publish(&event.RecordingFailed{Error: err})
		return err
	}
	c.publish(event.NewRecordingSaved(cmd.Name, path, count))
	return nil
}

func (c *Coordinator) publish(e event.Event) {
	if c.eventBus != nil {
		c.eventBus.Publish(e)
	}
}
