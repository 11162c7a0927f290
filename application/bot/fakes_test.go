package bot

import (
	"context"
	"image"
	"sync"
	"time"

	"cocbot-go/application/perception"
	"cocbot-go/core/state"
	"cocbot-go/domain/calibration"
	"cocbot-go/domain/coords"
	"cocbot-go/domain/prefs"
	"cocbot-go/domain/recording"
	"cocbot-go/domain/sequence"
	"cocbot-go/domain/settings"
)

type fakeScreen struct {
	mu    sync.Mutex
	frame image.Image
	size  coords.Resolution
	grabs int
}

func newFakeScreen(w, h int) *fakeScreen {
	return &fakeScreen{
		frame: image.NewRGBA(image.Rect(0, 0, w, h)),
		size:  coords.Resolution{Width: w, Height: h},
	}
}

func (s *fakeScreen) setFrame(frame image.Image) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
}

// resize swaps in a blank frame and display of a new size.
func (s *fakeScreen) resize(w, h int) {
	s.mu.Lock()
	s.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	s.size = coords.Resolution{Width: w, Height: h}
	s.mu.Unlock()
}

func (s *fakeScreen) Capture(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grabs++
	if s.frame == nil {
		return nil, nil
	}
	return s.frame, nil
}

func (s *fakeScreen) ScreenSize(ctx context.Context) (coords.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size, nil
}

type swipe struct {
	from, to coords.Point
	duration time.Duration
}

type fakeGestures struct {
	mu     sync.Mutex
	taps   []coords.Point
	swipes []swipe
	// onTap runs after each tap is recorded.
	onTap func(coords.Point)
}

func (g *fakeGestures) Tap(ctx context.Context, x, y float64) bool {
	p := coords.Point{X: x, Y: y}
	g.mu.Lock()
	g.taps = append(g.taps, p)
	hook := g.onTap
	g.mu.Unlock()

	if hook != nil {
		hook(p)
	}
	return true
}

func (g *fakeGestures) Swipe(ctx context.Context, from, to coords.Point, d time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.swipes = append(g.swipes, swipe{from: from, to: to, duration: d})
	return true
}

func (g *fakeGestures) tapsAt(p coords.Point) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, t := range g.taps {
		if t == p {
			n++
		}
	}
	return n
}

type fakePerception struct {
	mu      sync.Mutex
	player  perception.Reading
	enemies []perception.Reading
	enemyN  int
	// rowAfter is the FindTextRow call that succeeds; 0 never succeeds.
	rowAfter int
	rowCalls int
	row      coords.Point
	price    int
	panics   bool
}

func (p *fakePerception) ReadPlayer(ctx context.Context, frame image.Image, regions coords.RegionSet) perception.Reading {
	if p.panics {
		panic("ocr exploded")
	}
	return p.player
}

func (p *fakePerception) ReadEnemy(ctx context.Context, frame image.Image, regions coords.RegionSet) perception.Reading {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.enemies) == 0 {
		return perception.Reading{}
	}
	r := p.enemies[min(p.enemyN, len(p.enemies)-1)]
	p.enemyN++
	return r
}

func (p *fakePerception) FindTextRow(ctx context.Context, frame image.Image, needle string, region coords.Region) (coords.Point, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rowCalls++
	if p.rowAfter > 0 && p.rowCalls >= p.rowAfter {
		return p.row, true
	}
	return coords.Point{}, false
}

func (p *fakePerception) ReadWallPrice(ctx context.Context, frame image.Image, region coords.Region) (int, string) {
	if p.price == 0 {
		return 0, ""
	}
	return p.price, "price"
}

type fakeScripts struct {
	mu     sync.Mutex
	byPath map[string]*recording.Recording
	loads  []string
}

func (f *fakeScripts) Load(path string) *recording.Recording {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, path)
	return f.byPath[path]
}

// Button positions used by the tests, one per key.
var testButtons = map[calibration.ButtonKey]coords.Point{
	calibration.ButtonAttack:             {X: 10, Y: 10},
	calibration.ButtonFindMatch:          {X: 20, Y: 20},
	calibration.ButtonDeployAttack:       {X: 30, Y: 30},
	calibration.ButtonNext:               {X: 40, Y: 40},
	calibration.ButtonEndBattle:          {X: 50, Y: 50},
	calibration.ButtonOKResult:           {X: 60, Y: 60},
	calibration.ButtonReturnHome:         {X: 70, Y: 70},
	calibration.ButtonUpgradeMenu:        {X: 80, Y: 80},
	calibration.ButtonUpgradeWallGold:    {X: 90, Y: 90},
	calibration.ButtonUpgradeWallElixir:  {X: 100, Y: 100},
	calibration.ButtonConfirmWallUpgrade: {X: 110, Y: 110},
}

func testSequences() *sequence.Registry {
	reg := sequence.NewRegistry()
	steps := func(keys ...calibration.ButtonKey) []sequence.Step {
		out := make([]sequence.Step, len(keys))
		for i, k := range keys {
			out[i] = sequence.Step{Button: k}
		}
		return out
	}
	reg.Register(&sequence.Sequence{Name: sequence.OpenAttack,
		Steps: steps(calibration.ButtonAttack, calibration.ButtonFindMatch, calibration.ButtonDeployAttack)})
	reg.Register(&sequence.Sequence{Name: sequence.FinishBattle,
		Steps: steps(calibration.ButtonEndBattle, calibration.ButtonOKResult, calibration.ButtonReturnHome)})
	reg.Register(&sequence.Sequence{Name: sequence.ReturnHome,
		Steps: steps(calibration.ButtonEndBattle, calibration.ButtonOKResult, calibration.ButtonReturnHome)})
	return reg
}

// fastLoop has no waits so tests run instantly.
func fastLoop() *LoopConfig {
	return &LoopConfig{
		BootstrapAttempts:  2,
		MaxSearches:        5,
		WallText:           "wall",
		SwipesPerDirection: 2,
		MaxScrollAttempts:  6,
		ScrollDuration:     300 * time.Millisecond,
	}
}

type harness struct {
	cfg        *Config
	repo       *prefs.MemoryRepository
	screen     *fakeScreen
	gestures   *fakeGestures
	perception *fakePerception
	scripts    *fakeScripts
	phases     []state.BotState
}

func newHarness(withButtons bool) *harness {
	ctx := context.Background()
	repo := prefs.NewMemoryRepository()
	buttons := calibration.NewButtonStore(repo)
	if withButtons {
		for k, p := range testButtons {
			_ = buttons.Save(ctx, k, p)
		}
	}
	h := &harness{
		repo:       repo,
		screen:     newFakeScreen(960, 540),
		gestures:   &fakeGestures{},
		perception: &fakePerception{},
		scripts:    &fakeScripts{byPath: map[string]*recording.Recording{}},
	}
	h.cfg = &Config{
		Screen:     h.screen,
		Gestures:   h.gestures,
		Perception: h.perception,
		Scripts:    h.scripts,
		Buttons:    buttons,
		Resolution: calibration.NewResolutionStore(repo),
		Settings:   settings.NewService(repo),
		Sequences:  testSequences(),
		Mapper:     coords.NewMapper(),
		Loop:       fastLoop(),
	}
	return h
}

func (h *harness) loop() *Loop {
	l := NewLoop(h.cfg)
	l.phase = func(s state.BotState) { h.phases = append(h.phases, s) }
	return l
}

func (h *harness) saveSettings(t interface{ Fatalf(string, ...any) }, mutate func(*settings.BotSettings)) settings.BotSettings {
	s := settings.Default()
	mutate(&s)
	if err := settings.NewService(h.repo).Save(context.Background(), s); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	return s
}

// steppingClock advances by step on every call.
type steppingClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}
