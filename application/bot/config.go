package bot

import "time"

// LoopConfig holds the control loop's delays and caps.
type LoopConfig struct {
	// StartDelay is the pause before the first capture.
	StartDelay time.Duration

	// BootstrapAttempts and BootstrapBackoff bound the search for a reference frame.
	BootstrapAttempts int
	BootstrapBackoff  time.Duration

	// NullFrameDelay is the wait after a failed capture.
	NullFrameDelay time.Duration
	// IterationDelay is the pause between iterations and after a failed one.
	IterationDelay time.Duration
	// PostReinvestDelay is the pause after a reinvestment attempt.
	PostReinvestDelay time.Duration

	// MaxSearches caps the opponents skipped per farming attempt.
	MaxSearches int
	// NextSettle is the wait after tapping next before reading the new opponent.
	NextSettle time.Duration

	// AttackCycleGap separates two replays of the attack scripts.
	AttackCycleGap time.Duration
	// MinPlaybackWait is the shortest inter-gesture gap that is actually waited.
	MinPlaybackWait time.Duration

	// UpgradeMenuSettle is the wait after opening the upgrade menu.
	UpgradeMenuSettle time.Duration
	// UpgradeTapSettle is the wait after each tap of the upgrade flow.
	UpgradeTapSettle time.Duration
	// WallText is the row label searched in the upgrade menu.
	WallText string
	// SwipesPerDirection is the number of scrolls before reversing direction.
	SwipesPerDirection int
	// MaxScrollAttempts caps text searches in the upgrade menu.
	MaxScrollAttempts int
	// ScrollDuration is the duration of one scroll swipe.
	ScrollDuration time.Duration
	// ScrollSettle is the wait after a scroll before searching again.
	ScrollSettle time.Duration
}

// DefaultLoopConfig returns the timings the bot was tuned with.
func DefaultLoopConfig() *LoopConfig {
	return &LoopConfig{
		StartDelay:         time.Second,
		BootstrapAttempts:  5,
		BootstrapBackoff:   500 * time.Millisecond,
		NullFrameDelay:     2 * time.Second,
		IterationDelay:     3 * time.Second,
		PostReinvestDelay:  2 * time.Second,
		MaxSearches:        99,
		NextSettle:         5 * time.Second,
		AttackCycleGap:     200 * time.Millisecond,
		MinPlaybackWait:    10 * time.Millisecond,
		UpgradeMenuSettle:  time.Second,
		UpgradeTapSettle:   time.Second,
		WallText:           "wall",
		SwipesPerDirection: 3,
		MaxScrollAttempts:  12,
		ScrollDuration:     400 * time.Millisecond,
		ScrollSettle:       800 * time.Millisecond,
	}
}

// withDefaults fills zero caps. Zero durations are kept; tests rely on them.
func (c *LoopConfig) withDefaults() *LoopConfig {
	def := DefaultLoopConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.BootstrapAttempts <= 0 {
		out.BootstrapAttempts = def.BootstrapAttempts
	}
	if out.MaxSearches <= 0 {
		out.MaxSearches = def.MaxSearches
	}
	if out.WallText == "" {
		out.WallText = def.WallText
	}
	if out.SwipesPerDirection <= 0 {
		out.SwipesPerDirection = def.SwipesPerDirection
	}
	if out.MaxScrollAttempts <= 0 {
		out.MaxScrollAttempts = def.MaxScrollAttempts
	}
	return &out
}
