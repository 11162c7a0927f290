package bot

import (
	"context"
	"fmt"

	"cocbot-go/core/event"
	"cocbot-go/core/state"
	"cocbot-go/domain/calibration"
	"cocbot-go/domain/coords"
	"cocbot-go/domain/recording"
	"cocbot-go/domain/sequence"
	"cocbot-go/domain/settings"
)

// farm opens matchmaking and skips opponents until one meets the loot
// thresholds, then attacks it. It reports whether an attack took place.
func (l *Loop) farm(ctx context.Context, s settings.BotSettings) bool {
	l.phase(state.StateFarming)

	if !l.runSequence(ctx, sequence.OpenAttack) {
		return false
	}

	for attempt := 1; attempt <= l.cfg.MaxSearches; attempt++ {
		if ctx.Err() != nil {
			return false
		}

		frame := l.capture(ctx)
		if frame == nil {
			continue
		}

		enemy := l.perception.ReadEnemy(ctx, frame, l.mapper.Regions())
		l.publish(event.NewResourcesRead(l.runID, event.OwnerEnemy, enemy.Gold, enemy.Elixir))

		if enemy.Gold >= s.GoldThreshold && enemy.Elixir >= s.ElixirThreshold {
			l.log(fmt.Sprintf("ATTACK! (gold %s  elixir %s)", settings.FormatK(enemy.Gold), settings.FormatK(enemy.Elixir)))
			l.publish(event.NewTargetFound(l.runID, attempt, enemy.Gold, enemy.Elixir))
			l.attack(ctx, s)
			return true
		}

		l.log(fmt.Sprintf("Next (%d): gold %s  elixir %s", attempt, settings.FormatK(enemy.Gold), settings.FormatK(enemy.Elixir)))
		if !l.tapButton(ctx, calibration.ButtonNext) {
			return false
		}
		if !l.sleep(ctx, l.cfg.NextSettle) {
			return false
		}
	}

	if ctx.Err() != nil {
		return false
	}
	l.log("No target found. Returning home.")
	l.runSequence(ctx, sequence.ReturnHome)
	return false
}

// attack replays the selected scripts for the configured duration, then ends
// the battle.
func (l *Loop) attack(ctx context.Context, s settings.BotSettings) {
	l.phase(state.StateAttacking)

	deadline := l.now().Add(s.AttackDuration())
	l.log(fmt.Sprintf("Attacking (%d s)...", s.AttackDurationSec))

	for l.now().Before(deadline) && ctx.Err() == nil {
		l.playCycle(ctx)
		if !l.sleep(ctx, l.cfg.AttackCycleGap) {
			return
		}
	}
	if ctx.Err() != nil {
		return
	}

	l.log("Battle finished.")
	l.runSequence(ctx, sequence.FinishBattle)
}

// playCycle replays the next selected script once. Without a selection it
// taps the deploy button instead.
func (l *Loop) playCycle(ctx context.Context) {
	if len(l.selected) == 0 {
		l.tapButton(ctx, calibration.ButtonDeployAttack)
		return
	}

	path := l.selected[l.scriptIndex%len(l.selected)]
	l.scriptIndex = (l.scriptIndex + 1) % len(l.selected)

	rec := l.scripts.Load(path)
	if rec == nil {
		l.logger.Warn("Attack script unavailable", "path", path)
		return
	}
	l.play(ctx, recording.Summarize(rec.Actions))
}

// play dispatches gestures in order, waiting out the recorded gaps between
// their start times.
func (l *Loop) play(ctx context.Context, gestures []recording.Gesture) {
	var current int64
	for _, g := range gestures {
		if ctx.Err() != nil {
			return
		}

		if wait := msDuration(g.StartTimeMs - current); wait > l.cfg.MinPlaybackWait {
			if !l.sleep(ctx, wait) {
				return
			}
		}

		start := l.mapper.ScriptToGame(float64(g.Start.X), float64(g.Start.Y))
		end := l.mapper.ScriptToGame(float64(g.End.X), float64(g.End.Y))

		switch g.Type {
		case recording.GestureTap:
			l.gestures.Tap(ctx, start.X, start.Y)
		case recording.GestureHold, recording.GestureSwipe:
			l.gestures.Swipe(ctx, start, end, msDuration(g.DurationMs))
		}
		current = g.StartTimeMs
	}
}

// tapButton taps a calibrated button. It reports false when the button was
// never calibrated or ctx is done; a failed gesture is only logged.
func (l *Loop) tapButton(ctx context.Context, key calibration.ButtonKey) bool {
	if ctx.Err() != nil {
		return false
	}
	p, ok := l.button(ctx, key)
	if !ok {
		return false
	}
	l.gestures.Tap(ctx, p.X, p.Y)
	return ctx.Err() == nil
}

func (l *Loop) button(ctx context.Context, key calibration.ButtonKey) (coords.Point, bool) {
	p, ok, err := l.buttons.Get(ctx, key)
	if err != nil {
		l.logger.Warn("Failed to read button", "button", key.Name(), "error", err)
		return coords.Point{}, false
	}
	if !ok {
		l.log("Button not set: " + key.Name())
		return coords.Point{}, false
	}
	return p, true
}

// runSequence taps the steps of a named sequence with their settle waits.
func (l *Loop) runSequence(ctx context.Context, name string) bool {
	seq := l.sequences.Get(name)
	if seq == nil {
		l.log("Sequence not defined: " + name)
		return false
	}

	for _, step := range seq.Steps {
		if !l.tapButton(ctx, step.Button) {
			if step.Optional && ctx.Err() == nil {
				continue
			}
			return false
		}
		if !l.sleep(ctx, step.Settle) {
			return false
		}
	}
	return true
}
