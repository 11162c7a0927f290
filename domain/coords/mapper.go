package coords

import "sync"

// Mapper converts coordinates between physical screen space, game space and
// script space. It is safe for concurrent use.
//
// Game space is the resolution of the captured frames. Physical space is the
// size of the display that receives gestures. Both may differ when the capture
// pipeline letterboxes, crops insets or rotates.
type Mapper struct {
	mu       sync.RWMutex
	layout   Layout
	game     Resolution
	physical Resolution
	regions  RegionSet
}

// NewMapper creates a mapper with no resolution established.
// Until Establish is called all conversions are the identity.
func NewMapper() *Mapper {
	return NewMapperWithLayout(DefaultLayout)
}

// NewMapperWithLayout creates a mapper that derives regions from a custom layout.
func NewMapperWithLayout(layout Layout) *Mapper {
	return &Mapper{layout: layout}
}

// Establish stores the live frame size as the game resolution and recomputes
// the derived regions. Calling it again with the same size is a no-op.
// It reports whether the stored resolution changed.
func (m *Mapper) Establish(width, height int) bool {
	res := Resolution{Width: width, Height: height}
	if res.IsZero() {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game == res {
		return false
	}
	m.game = res
	m.regions = m.layout.Derive(res)
	return true
}

// SetPhysical records the size of the display that receives gestures.
func (m *Mapper) SetPhysical(width, height int) {
	m.mu.Lock()
	m.physical = Resolution{Width: width, Height: height}
	m.mu.Unlock()
}

// Reset forgets the game resolution and derived regions.
func (m *Mapper) Reset() {
	m.mu.Lock()
	m.game = Resolution{}
	m.regions = RegionSet{}
	m.mu.Unlock()
}

// Game returns the established game resolution.
func (m *Mapper) Game() Resolution {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.game
}

// Physical returns the recorded physical display size.
func (m *Mapper) Physical() Resolution {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.physical
}

// Regions returns the regions derived from the current game resolution.
func (m *Mapper) Regions() RegionSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.regions
}

// ScreenToGame converts a raw physical touch to game space:
// game = raw / physical * game.
func (m *Mapper) ScreenToGame(rawX, rawY float64) Point {
	m.mu.RLock()
	game, physical := m.game, m.physical
	m.mu.RUnlock()

	if game.IsZero() || physical.IsZero() {
		return Point{X: rawX, Y: rawY}
	}
	return Point{
		X: rawX / float64(physical.Width) * float64(game.Width),
		Y: rawY / float64(physical.Height) * float64(game.Height),
	}
}

// GameToScreen converts a game-space point to physical pixels:
// screen = game / gameSize * physical.
func (m *Mapper) GameToScreen(gameX, gameY float64) Point {
	m.mu.RLock()
	game, physical := m.game, m.physical
	m.mu.RUnlock()

	if game.IsZero() || physical.IsZero() {
		return Point{X: gameX, Y: gameY}
	}
	return Point{
		X: gameX / float64(game.Width) * float64(physical.Width),
		Y: gameY / float64(game.Height) * float64(physical.Height),
	}
}

// ScriptToGame scales a 960x540 script point to game space.
func (m *Mapper) ScriptToGame(scriptX, scriptY float64) Point {
	m.mu.RLock()
	game := m.game
	m.mu.RUnlock()

	if game.IsZero() {
		return Point{X: scriptX, Y: scriptY}
	}
	return Point{
		X: scriptX / ScriptWidth * float64(game.Width),
		Y: scriptY / ScriptHeight * float64(game.Height),
	}
}

// GameToScript is the inverse of ScriptToGame, used when recording.
func (m *Mapper) GameToScript(gameX, gameY float64) Point {
	m.mu.RLock()
	game := m.game
	m.mu.RUnlock()

	if game.IsZero() {
		return Point{X: gameX, Y: gameY}
	}
	return Point{
		X: gameX / float64(game.Width) * ScriptWidth,
		Y: gameY / float64(game.Height) * ScriptHeight,
	}
}
