package bot

import (
	"context"
	"fmt"
	"time"

	"cocbot-go/core/event"
	"cocbot-go/core/state"
	"cocbot-go/domain/calibration"
	"cocbot-go/domain/coords"
	"cocbot-go/domain/settings"
)

// Currency selects which storage pays for an upgrade.
type Currency string

const (
	CurrencyGold   Currency = "gold"
	CurrencyElixir Currency = "elixir"
)

func (c Currency) confirmButton() calibration.ButtonKey {
	if c == CurrencyElixir {
		return calibration.ButtonUpgradeWallElixir
	}
	return calibration.ButtonUpgradeWallGold
}

// reinvest opens the upgrade menu, scrolls to the wall row and buys one wall
// upgrade with currency. Any missing configuration or failed search ends it
// early with a log line.
func (l *Loop) reinvest(ctx context.Context, currency Currency, balance int) bool {
	l.phase(state.StateUpgrading)

	ok, reason := l.upgradeWall(ctx, currency, balance)
	if ctx.Err() != nil {
		return false
	}
	if !ok {
		l.log("Upgrade skipped: " + reason)
	}
	l.publish(event.NewUpgradeAttempted(l.runID, string(currency), ok, reason))
	return ok
}

func (l *Loop) upgradeWall(ctx context.Context, currency Currency, balance int) (bool, string) {
	confirm := currency.confirmButton()
	for _, key := range []calibration.ButtonKey{calibration.ButtonUpgradeMenu, confirm, calibration.ButtonConfirmWallUpgrade} {
		if _, ok := l.button(ctx, key); !ok {
			return false, "button not set: " + key.Name()
		}
	}

	if !l.tapButton(ctx, calibration.ButtonUpgradeMenu) || !l.sleep(ctx, l.cfg.UpgradeMenuSettle) {
		return false, "cancelled"
	}

	row, found := l.findRow(ctx, l.cfg.WallText)
	if !found {
		return false, fmt.Sprintf("%q not found in the upgrade menu", l.cfg.WallText)
	}

	l.gestures.Tap(ctx, row.X, row.Y)
	if !l.sleep(ctx, l.cfg.UpgradeTapSettle) {
		return false, "cancelled"
	}

	if frame := l.capture(ctx); frame != nil {
		price, label := l.perception.ReadWallPrice(ctx, frame, l.mapper.Regions().WallPrice)
		if price > 0 {
			l.log(fmt.Sprintf("Wall price: %s", label))
			if price > balance {
				return false, fmt.Sprintf("price %s exceeds %s %s", label, currency, settings.FormatK(balance))
			}
		}
	}

	for _, key := range []calibration.ButtonKey{confirm, calibration.ButtonConfirmWallUpgrade} {
		if !l.tapButton(ctx, key) || !l.sleep(ctx, l.cfg.UpgradeTapSettle) {
			return false, "cancelled"
		}
	}

	l.log(fmt.Sprintf("Wall upgraded with %s.", currency))
	return true, ""
}

// findRow searches the upgrade list for needle, scrolling between searches.
// The scroll direction reverses after SwipesPerDirection swipes.
func (l *Loop) findRow(ctx context.Context, needle string) (coords.Point, bool) {
	down := true
	swipes := 0

	for attempt := 1; attempt <= l.cfg.MaxScrollAttempts; attempt++ {
		if ctx.Err() != nil {
			return coords.Point{}, false
		}

		area := l.mapper.Regions().UpgradeSearch
		if frame := l.capture(ctx); frame != nil {
			if p, ok := l.perception.FindTextRow(ctx, frame, needle, area); ok {
				l.logger.Debug("Upgrade row found", "needle", needle, "attempt", attempt, "at", p)
				return p, true
			}
		}

		if attempt == l.cfg.MaxScrollAttempts {
			break
		}
		if swipes >= l.cfg.SwipesPerDirection {
			down = !down
			swipes = 0
		}
		from, to := scrollStroke(area, down)
		l.gestures.Swipe(ctx, from, to, l.cfg.ScrollDuration)
		swipes++
		if !l.sleep(ctx, l.cfg.ScrollSettle) {
			return coords.Point{}, false
		}
	}
	return coords.Point{}, false
}

// scrollStroke returns a vertical swipe through the middle of area. Scrolling
// down drags the content upward.
func scrollStroke(area coords.Region, down bool) (coords.Point, coords.Point) {
	x := float64(area.X) + float64(area.W)/2
	low := float64(area.Y) + float64(area.H)*0.75
	high := float64(area.Y) + float64(area.H)*0.25
	if down {
		return coords.Point{X: x, Y: low}, coords.Point{X: x, Y: high}
	}
	return coords.Point{X: x, Y: high}, coords.Point{X: x, Y: low}
}

func msDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
