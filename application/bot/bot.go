package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"cocbot-go/core/command"
	"cocbot-go/core/event"
	"cocbot-go/core/eventbus"
	"cocbot-go/core/state"
)

// Bot is the actor that owns the control loop. Commands are processed
// serially; the loop itself runs on its own goroutine.
type Bot struct {
	machine *state.Machine
	loop    *Loop
	bus     eventbus.EventBus
	logger  *slog.Logger

	mu         sync.Mutex
	runID      string
	scripts    []string
	loopCancel context.CancelFunc
	loopDone   chan struct{}
	stopReason event.StopReason

	cmdChan chan command.Command
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a bot actor.
func New(cfg *Config) *Bot {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		machine: state.NewMachine(),
		loop:    NewLoop(cfg),
		bus:     cfg.EventBus,
		logger:  cfg.Logger.With("component", "bot"),
		cmdChan: make(chan command.Command, cfg.CommandBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins processing commands.
func (b *Bot) Start() {
	b.wg.Add(1)
	go b.run()
	b.logger.Debug("Bot actor started")
}

// Stop cancels a running loop and shuts the actor down, waiting with a timeout.
func (b *Bot) Stop() {
	b.stopLoop(event.StopReasonShutdown)
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		b.waitLoop(3 * time.Second)
		close(done)
	}()

	select {
	case <-done:
		b.logger.Debug("Bot actor stopped")
	case <-time.After(5 * time.Second):
		b.logger.Warn("Bot stop timeout")
	}
}

// Send queues a command for the actor.
func (b *Bot) Send(cmd command.Command) error {
	select {
	case <-b.ctx.Done():
		return fmt.Errorf("bot is stopped")
	default:
	}
	select {
	case b.cmdChan <- cmd:
		return nil
	case <-b.ctx.Done():
		return fmt.Errorf("bot is stopped")
	default:
		return fmt.Errorf("command queue full")
	}
}

// State returns the current bot state.
func (b *Bot) State() state.BotState {
	return b.machine.Current()
}

// RunID returns the identifier of the current or last run.
func (b *Bot) RunID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runID
}

// Scripts returns the selected attack scripts.
func (b *Bot) Scripts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.scripts...)
}

func (b *Bot) run() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case cmd := <-b.cmdChan:
			b.processCommand(cmd)
		}
	}
}

func (b *Bot) processCommand(cmd command.Command) {
	b.logger.Debug("Processing command", "command", cmd.CommandName())

	switch c := cmd.(type) {
	case *command.StartBot:
		b.handleStart(c)
	case *command.StopBot:
		b.handleStop()
	case *command.SelectScripts:
		b.handleSelect(c)
	default:
		b.logger.Warn("Unknown command", "command", fmt.Sprintf("%T", cmd))
	}
}

func (b *Bot) handleStart(cmd *command.StartBot) {
	if !b.State().CanStart() {
		b.logger.Warn("Cannot start bot in current state", "state", b.State())
		return
	}

	b.mu.Lock()
	if len(cmd.Scripts) > 0 {
		b.scripts = append([]string(nil), cmd.Scripts...)
	}
	runID := ulid.Make().String()
	b.runID = runID
	scripts := append([]string(nil), b.scripts...)
	loopCtx, loopCancel := context.WithCancel(b.ctx)
	b.loopCancel = loopCancel
	b.loopDone = make(chan struct{})
	b.stopReason = event.StopReasonManual
	done := b.loopDone
	b.mu.Unlock()

	if err := b.transitionTo(state.StateBootstrapping); err != nil {
		loopCancel()
		close(done)
		b.logger.Error("Failed to start bot", "error", err)
		return
	}
	b.publish(event.NewBotStarted(runID, scripts))

	go func() {
		defer close(done)
		err := b.loop.Run(loopCtx, runID, scripts, func(s state.BotState) {
			if loopCtx.Err() != nil {
				return
			}
			if err := b.transitionTo(s); err != nil {
				b.logger.Debug("Ignored state change", "error", err)
			}
		})
		b.onLoopExit(runID, err)
	}()
}

func (b *Bot) handleStop() {
	if !b.State().CanStop() {
		b.logger.Warn("Cannot stop bot in current state", "state", b.State())
		return
	}
	b.stopLoop(event.StopReasonManual)
}

func (b *Bot) handleSelect(cmd *command.SelectScripts) {
	b.mu.Lock()
	b.scripts = append([]string(nil), cmd.Scripts...)
	b.mu.Unlock()
	b.logger.Info("Attack scripts selected", "count", len(cmd.Scripts))
}

// stopLoop cancels the running loop. The loop goroutine completes the
// transition to Idle.
func (b *Bot) stopLoop(reason event.StopReason) {
	b.mu.Lock()
	cancel := b.loopCancel
	if cancel != nil {
		b.stopReason = reason
	}
	b.mu.Unlock()

	if cancel == nil {
		return
	}
	if err := b.transitionTo(state.StateStopping); err != nil {
		b.logger.Debug("Stop requested outside a run", "error", err)
	}
	cancel()
}

func (b *Bot) waitLoop(timeout time.Duration) {
	b.mu.Lock()
	done := b.loopDone
	b.mu.Unlock()
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(timeout):
		b.logger.Warn("Control loop did not stop in time")
	}
}

func (b *Bot) onLoopExit(runID string, err error) {
	b.mu.Lock()
	reason := b.stopReason
	if b.loopCancel != nil {
		b.loopCancel()
		b.loopCancel = nil
	}
	b.mu.Unlock()

	if errors.Is(err, ErrBootstrapFailed) {
		reason = event.StopReasonBootstrapFailed
		b.logger.Error("Bot stopped", "reason", reason, "error", err)
	} else {
		b.logger.Info("Bot stopped", "reason", reason)
	}

	if b.State() != state.StateStopping {
		prev := b.machine.Force(state.StateStopping)
		b.publish(event.NewStateChanged(runID, prev, state.StateStopping))
	}
	if err := b.transitionTo(state.StateIdle); err != nil {
		b.logger.Error("Failed to return to idle", "error", err)
	}
	b.publish(event.NewBotStopped(runID, reason, err))
}

func (b *Bot) transitionTo(target state.BotState) error {
	prev, err := b.machine.Transition(target)
	if err != nil {
		return err
	}
	if prev == target {
		return nil
	}
	b.publish(event.NewStateChanged(b.RunID(), prev, target))
	b.logger.Info("State changed", "from", prev, "to", target)
	return nil
}

func (b *Bot) publish(e event.Event) {
	if b.bus != nil {
		b.bus.Publish(e)
	}
}
