// Package settings holds the user-configurable bot thresholds.
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cocbot-go/domain/prefs"
)

// Storage keys in the settings namespace.
const (
	KeyGoldThreshold        = "gold_threshold"
	KeyElixirThreshold      = "elixir_threshold"
	KeyUpgradeGold          = "upgrade_gold"
	KeyUpgradeElixir        = "upgrade_elixir"
	KeyAttackDuration       = "attack_duration"
	KeyMatchesBeforeUpgrade = "matches_before_upgrade"
	KeyEnableWall           = "enable_wall"
)

// BotSettings are the thresholds and toggles read by the control loop.
type BotSettings struct {
	// GoldThreshold and ElixirThreshold are the minimum enemy loot worth attacking.
	GoldThreshold   int
	ElixirThreshold int

	// UpgradeGold and UpgradeElixir trigger reinvestment when the player's
	// storage reaches them.
	UpgradeGold   int
	UpgradeElixir int

	// AttackDurationSec is how long attack scripts are replayed per battle.
	AttackDurationSec int

	// MatchesBeforeUpgrade is the number of farming attempts between storage
	// checks. Zero checks on every iteration.
	MatchesBeforeUpgrade int

	EnableWallUpgrade bool
}

// Default returns the factory settings.
func Default() BotSettings {
	return BotSettings{
		GoldThreshold:        100_000,
		ElixirThreshold:      100_000,
		UpgradeGold:          5_000_000,
		UpgradeElixir:        5_000_000,
		AttackDurationSec:    60,
		MatchesBeforeUpgrade: 3,
		EnableWallUpgrade:    true,
	}
}

// AttackDuration returns the attack duration as a time.Duration.
func (s BotSettings) AttackDuration() time.Duration {
	return time.Duration(s.AttackDurationSec) * time.Second
}

// Validate rejects negative values and a zero attack duration.
func (s BotSettings) Validate() error {
	var errs []error
	check := func(name string, v int) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	check(KeyGoldThreshold, s.GoldThreshold)
	check(KeyElixirThreshold, s.ElixirThreshold)
	check(KeyUpgradeGold, s.UpgradeGold)
	check(KeyUpgradeElixir, s.UpgradeElixir)
	check(KeyMatchesBeforeUpgrade, s.MatchesBeforeUpgrade)
	if s.AttackDurationSec <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyAttackDuration))
	}
	return errors.Join(errs...)
}

// Service loads and saves BotSettings in the settings namespace.
type Service struct {
	store *prefs.Store
}

// NewService binds the settings namespace of a repository.
func NewService(repo prefs.Repository) *Service {
	return &Service{store: prefs.NewStore(repo, prefs.NamespaceSettings)}
}

// Load reads the settings, substituting defaults for absent keys.
func (s *Service) Load(ctx context.Context) (BotSettings, error) {
	def := Default()
	out := def
	var err error

	ints := []struct {
		key string
		dst *int
		def int
	}{
		{KeyGoldThreshold, &out.GoldThreshold, def.GoldThreshold},
		{KeyElixirThreshold, &out.ElixirThreshold, def.ElixirThreshold},
		{KeyUpgradeGold, &out.UpgradeGold, def.UpgradeGold},
		{KeyUpgradeElixir, &out.UpgradeElixir, def.UpgradeElixir},
		{KeyAttackDuration, &out.AttackDurationSec, def.AttackDurationSec},
		{KeyMatchesBeforeUpgrade, &out.MatchesBeforeUpgrade, def.MatchesBeforeUpgrade},
	}
	for _, f := range ints {
		if *f.dst, err = s.store.Int(ctx, f.key, f.def); err != nil {
			return def, err
		}
	}
	if out.EnableWallUpgrade, err = s.store.Bool(ctx, KeyEnableWall, def.EnableWallUpgrade); err != nil {
		return def, err
	}
	return out, nil
}

// Save validates and writes every setting.
func (s *Service) Save(ctx context.Context, b BotSettings) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.store.SetInts(ctx, map[string]int{
		KeyGoldThreshold:        b.GoldThreshold,
		KeyElixirThreshold:      b.ElixirThreshold,
		KeyUpgradeGold:          b.UpgradeGold,
		KeyUpgradeElixir:        b.UpgradeElixir,
		KeyAttackDuration:       b.AttackDurationSec,
		KeyMatchesBeforeUpgrade: b.MatchesBeforeUpgrade,
	}); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := s.store.SetBool(ctx, KeyEnableWall, b.EnableWallUpgrade); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Set parses and stores a single setting by key.
func (s *Service) Set(ctx context.Context, key, value string) error {
	current, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := current.apply(key, value); err != nil {
		return err
	}
	return s.Save(ctx, current)
}

// Keys lists the settings keys in display order.
func Keys() []string {
	return []string{
		KeyGoldThreshold,
		KeyElixirThreshold,
		KeyUpgradeGold,
		KeyUpgradeElixir,
		KeyAttackDuration,
		KeyMatchesBeforeUpgrade,
		KeyEnableWall,
	}
}

// Value returns the display value of a setting.
func (s BotSettings) Value(key string) string {
	switch key {
	case KeyGoldThreshold:
		return fmt.Sprint(s.GoldThreshold)
	case KeyElixirThreshold:
		return fmt.Sprint(s.ElixirThreshold)
	case KeyUpgradeGold:
		return fmt.Sprint(s.UpgradeGold)
	case KeyUpgradeElixir:
		return fmt.Sprint(s.UpgradeElixir)
	case KeyAttackDuration:
		return fmt.Sprint(s.AttackDurationSec)
	case KeyMatchesBeforeUpgrade:
		return fmt.Sprint(s.MatchesBeforeUpgrade)
	case KeyEnableWall:
		return fmt.Sprint(s.EnableWallUpgrade)
	}
	return ""
}
