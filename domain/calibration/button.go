// Package calibration persists named button positions and the game resolution.
package calibration

import (
	"context"
	"fmt"
	"strings"

	"cocbot-go/domain/coords"
	"cocbot-go/domain/prefs"
)

// ButtonKey names a calibrated UI element.
type ButtonKey string

const (
	ButtonAttack             ButtonKey = "btn_attack"
	ButtonFindMatch          ButtonKey = "btn_find_match"
	ButtonDeployAttack       ButtonKey = "btn_deploy"
	ButtonNext               ButtonKey = "btn_next"
	ButtonEndBattle          ButtonKey = "btn_end_battle"
	ButtonOKResult           ButtonKey = "btn_ok_result"
	ButtonReturnHome         ButtonKey = "btn_return_home"
	ButtonUpgradeMenu        ButtonKey = "btn_upgrade_menu"
	ButtonUpgradeWallGold    ButtonKey = "btn_upgrade_wall_gold"
	ButtonUpgradeWallElixir  ButtonKey = "btn_upgrade_wall_elixir"
	ButtonConfirmWallUpgrade ButtonKey = "btn_confirm_wall_upgrade"
)

// AllButtons lists every button the bot knows, in calibration order.
var AllButtons = []ButtonKey{
	ButtonAttack,
	ButtonFindMatch,
	ButtonDeployAttack,
	ButtonNext,
	ButtonEndBattle,
	ButtonOKResult,
	ButtonReturnHome,
	ButtonUpgradeMenu,
	ButtonUpgradeWallGold,
	ButtonUpgradeWallElixir,
	ButtonConfirmWallUpgrade,
}

// Name returns the user-facing dashed name, e.g. "find-match".
func (k ButtonKey) Name() string {
	name := strings.TrimPrefix(string(k), "btn_")
	if k == ButtonDeployAttack {
		name = "deploy_attack"
	}
	return strings.ReplaceAll(name, "_", "-")
}

func (k ButtonKey) String() string {
	return k.Name()
}

// ParseButton resolves a dashed name or a raw storage key.
func ParseButton(s string) (ButtonKey, error) {
	for _, k := range AllButtons {
		if s == k.Name() || s == string(k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown button %q", s)
}

func (k ButtonKey) xKey() string { return string(k) + "_x" }
func (k ButtonKey) yKey() string { return string(k) + "_y" }

// ButtonStore reads and writes button positions in game space.
type ButtonStore struct {
	store *prefs.Store
}

// NewButtonStore binds the coordinates namespace of a repository.
func NewButtonStore(repo prefs.Repository) *ButtonStore {
	return &ButtonStore{store: prefs.NewStore(repo, prefs.NamespaceCoordinates)}
}

// Get returns the saved position. ok is false when the button was never
// calibrated or either coordinate is not positive.
func (s *ButtonStore) Get(ctx context.Context, key ButtonKey) (coords.Point, bool, error) {
	x, err := s.store.Int(ctx, key.xKey(), 0)
	if err != nil {
		return coords.Point{}, false, err
	}
	y, err := s.store.Int(ctx, key.yKey(), 0)
	if err != nil {
		return coords.Point{}, false, err
	}
	if x <= 0 || y <= 0 {
		return coords.Point{}, false, nil
	}
	return coords.Point{X: float64(x), Y: float64(y)}, true, nil
}

// Save overwrites a button position. Coordinates are stored as whole pixels.
func (s *ButtonStore) Save(ctx context.Context, key ButtonKey, p coords.Point) error {
	pt := p.Round()
	if pt.X <= 0 || pt.Y <= 0 {
		return fmt.Errorf("invalid position %v for %s", p, key.Name())
	}
	// Both coordinates go in one write so readers never pair a new x with an old y.
	if err := s.store.SetInts(ctx, map[string]int{key.xKey(): pt.X, key.yKey(): pt.Y}); err != nil {
		return fmt.Errorf("failed to save %s: %w", key.Name(), err)
	}
	return nil
}

// Clear forgets a button position.
func (s *ButtonStore) Clear(ctx context.Context, key ButtonKey) error {
	return s.store.Delete(ctx, key.xKey(), key.yKey())
}

// All returns every configured button.
func (s *ButtonStore) All(ctx context.Context) (map[ButtonKey]coords.Point, error) {
	out := make(map[ButtonKey]coords.Point, len(AllButtons))
	for _, k := range AllButtons {
		p, ok, err := s.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = p
		}
	}
	return out, nil
}
