package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// apply parses value into the field named by key. Integer values accept
// k and m suffixes, e.g. "500k" or "1.5m".
func (s *BotSettings) apply(key, value string) error {
	if key == KeyEnableWall {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		s.EnableWallUpgrade = b
		return nil
	}

	n, err := ParseAmount(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	switch key {
	case KeyGoldThreshold:
		s.GoldThreshold = n
	case KeyElixirThreshold:
		s.ElixirThreshold = n
	case KeyUpgradeGold:
		s.UpgradeGold = n
	case KeyUpgradeElixir:
		s.UpgradeElixir = n
	case KeyAttackDuration:
		s.AttackDurationSec = n
	case KeyMatchesBeforeUpgrade:
		s.MatchesBeforeUpgrade = n
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// ParseAmount parses an integer with an optional k or m multiplier.
func ParseAmount(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", "")))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult, s = 1_000, strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult, s = 1_000_000, strings.TrimSuffix(s, "m")
	}
	if mult == 1 {
		return strconv.Atoi(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f * mult), nil
}

// FormatK renders an amount the way the game HUD abbreviates it.
func FormatK(v int) string {
	if v >= 1000 {
		return strconv.Itoa(v/1000) + "k"
	}
	return strconv.Itoa(v)
}
