package coords

import "math"

// Fraction is a rectangle expressed as fractions of the frame size.
type Fraction struct {
	X float64
	Y float64
	W float64
	H float64
}

// scriptFraction expresses a rectangle authored in 960x540 script space as a fraction.
func scriptFraction(x, y, w, h float64) Fraction {
	return Fraction{
		X: x / ScriptWidth,
		Y: y / ScriptHeight,
		W: w / ScriptWidth,
		H: h / ScriptHeight,
	}
}

// Apply scales the fraction to a resolution, truncating to whole pixels.
func (f Fraction) Apply(res Resolution) Region {
	return Region{
		X: truncate(f.X * float64(res.Width)),
		Y: truncate(f.Y * float64(res.Height)),
		W: truncate(f.W * float64(res.Width)),
		H: truncate(f.H * float64(res.Height)),
	}
}

// truncate drops the fractional part, tolerating float error just below an integer.
func truncate(v float64) int {
	return int(math.Floor(v + 1e-9))
}

// Layout holds the hand-tuned readout positions of the game HUD.
type Layout struct {
	PlayerGold    Fraction
	PlayerElixir  Fraction
	EnemyGold     Fraction
	EnemyElixir   Fraction
	UpgradeSearch Fraction
	WallPrice     Fraction
}

// DefaultLayout is the HUD layout of the supported game.
var DefaultLayout = Layout{
	PlayerGold:    scriptFraction(749, 5, 157, 51),
	PlayerElixir:  scriptFraction(740, 64, 190, 32),
	EnemyGold:     scriptFraction(22, 73, 124, 26),
	EnemyElixir:   scriptFraction(22, 101, 124, 26),
	UpgradeSearch: scriptFraction(300, 80, 360, 380),
	WallPrice:     scriptFraction(560, 440, 170, 40),
}

// RegionSet is the set of derived screen regions for one game resolution.
type RegionSet struct {
	Resolution    Resolution
	PlayerGold    Region
	PlayerElixir  Region
	EnemyGold     Region
	EnemyElixir   Region
	UpgradeSearch Region
	WallPrice     Region
}

// DeriveRegions computes the readout regions for a resolution using DefaultLayout.
func DeriveRegions(res Resolution) RegionSet {
	return DefaultLayout.Derive(res)
}

// Derive computes the readout regions for a resolution.
// An unset resolution yields an empty set.
func (l Layout) Derive(res Resolution) RegionSet {
	if res.IsZero() {
		return RegionSet{}
	}
	return RegionSet{
		Resolution:    res,
		PlayerGold:    l.PlayerGold.Apply(res),
		PlayerElixir:  l.PlayerElixir.Apply(res),
		EnemyGold:     l.EnemyGold.Apply(res),
		EnemyElixir:   l.EnemyElixir.Apply(res),
		UpgradeSearch: l.UpgradeSearch.Apply(res),
		WallPrice:     l.WallPrice.Apply(res),
	}
}
