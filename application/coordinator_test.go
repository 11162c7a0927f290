package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"cocbot-go/application/bot"
	"cocbot-go/application/recorder"
	"cocbot-go/core/command"
	"cocbot-go/core/event"
	"cocbot-go/core/eventbus"
	"cocbot-go/domain/calibration"
	"cocbot-go/domain/coords"
	"cocbot-go/domain/prefs"
	"cocbot-go/domain/recording"
	"cocbot-go/domain/settings"
)

type memoryScripts struct {
	saved map[string][]recording.TouchAction
	err   error
}

func (m *memoryScripts) Save(name string, actions []recording.TouchAction) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved[name] = actions
	return "/recordings/" + name + ".json", nil
}

type unknownCommand struct{}

func (unknownCommand) CommandName() string { return "Unknown" }

type fixture struct {
	coord   *Coordinator
	repo    *prefs.MemoryRepository
	mapper  *coords.Mapper
	scripts *memoryScripts
	events  chan event.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := prefs.NewMemoryRepository()
	mapper := coords.NewMapper()
	mapper.Establish(1920, 1080)
	mapper.SetPhysical(960, 540)

	bus := eventbus.New(32, nil)
	events := make(chan event.Event, 32)
	bus.Subscribe(func(e event.Event) { events <- e })

	scripts := &memoryScripts{saved: map[string][]recording.TouchAction{}}
	buttons := calibration.NewButtonStore(repo)
	res := calibration.NewResolutionStore(repo)
	sets := settings.NewService(repo)

	b := bot.New(&bot.Config{
		Buttons:    buttons,
		Resolution: res,
		Settings:   sets,
		Mapper:     mapper,
		EventBus:   bus,
	})
	rec := recorder.New(&recorder.Config{Mapper: mapper, Store: scripts})

	coord := NewCoordinator(&CoordinatorConfig{
		Bot:        b,
		Recorder:   rec,
		Buttons:    buttons,
		Resolution: res,
		Settings:   sets,
		Mapper:     mapper,
		EventBus:   bus,
	})
	coord.Start()
	t.Cleanup(func() {
		coord.Stop()
		bus.Close()
	})

	return &fixture{coord: coord, repo: repo, mapper: mapper, scripts: scripts, events: events}
}

func (f *fixture) waitEvent(t *testing.T, name string) event.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-f.events:
			if e.EventName() == name {
				return e
			}
		case <-deadline:
			t.Fatalf("event %s not published", name)
			return nil
		}
	}
}

func TestCoordinator_SaveButtonMapsToGame(t *testing.T) {
	f := newFixture(t)

	if err := f.coord.Dispatch(&command.SaveButton{Key: "next", RawX: 100, RawY: 50}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	p, ok, err := calibration.NewButtonStore(f.repo).Get(context.Background(), calibration.ButtonNext)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, %v", p, ok, err)
	}
	if p != (coords.Point{X: 200, Y: 100}) {
		t.Errorf("stored point = %v, want (200, 100)", p)
	}

	e := f.waitEvent(t, "ButtonSaved").(*event.ButtonSaved)
	if e.Key != "next" || e.X != 200 || e.Y != 100 {
		t.Errorf("ButtonSaved = %+v", e)
	}
}

func TestCoordinator_SaveButtonUnknownKey(t *testing.T) {
	f := newFixture(t)

	if err := f.coord.Dispatch(&command.SaveButton{Key: "launch-rocket", RawX: 1, RawY: 1}); err == nil {
		t.Error("expected an error for an unknown button")
	}
}

func TestCoordinator_ClearButton(t *testing.T) {
	f := newFixture(t)
	store := calibration.NewButtonStore(f.repo)
	ctx := context.Background()
	if err := store.Save(ctx, calibration.ButtonAttack, coords.Point{X: 5, Y: 5}); err != nil {
		t.Fatal(err)
	}

	if err := f.coord.Dispatch(&command.ClearButton{Key: "attack"}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if _, ok, _ := store.Get(ctx, calibration.ButtonAttack); ok {
		t.Error("button still configured after clear")
	}
}

func TestCoordinator_ResetResolution(t *testing.T) {
	f := newFixture(t)
	store := calibration.NewResolutionStore(f.repo)
	ctx := context.Background()
	if err := store.Save(ctx, coords.Resolution{Width: 1920, Height: 1080}); err != nil {
		t.Fatal(err)
	}

	if err := f.coord.Dispatch(&command.ResetResolution{}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	res, err := store.Load(ctx)
	if err != nil || !res.IsZero() {
		t.Errorf("Load() = %v, %v; want zero", res, err)
	}
	if !f.mapper.Game().IsZero() {
		t.Errorf("mapper game = %v, want zero", f.mapper.Game())
	}
}

func TestCoordinator_UpdateSetting(t *testing.T) {
	f := newFixture(t)

	if err := f.coord.Dispatch(&command.UpdateSetting{Key: settings.KeyMatchesBeforeUpgrade, Value: "5"}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	s, err := settings.NewService(f.repo).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.MatchesBeforeUpgrade != 5 {
		t.Errorf("MatchesBeforeUpgrade = %d, want 5", s.MatchesBeforeUpgrade)
	}

	if err := f.coord.Dispatch(&command.UpdateSetting{Key: "no_such_key", Value: "1"}); err == nil {
		t.Error("expected an error for an unknown setting")
	}
}

func TestCoordinator_RecordingFlow(t *testing.T) {
	f := newFixture(t)

	if err := f.coord.Dispatch(&command.StartRecording{}); err != nil {
		t.Fatalf("StartRecording error = %v", err)
	}
	f.waitEvent(t, "RecordingStarted")

	for _, kind := range []string{"down", "move", "up"} {
		if err := f.coord.Dispatch(&command.RecordTouch{Type: kind, RawX: 480, RawY: 270}); err != nil {
			t.Fatalf("RecordTouch(%s) error = %v", kind, err)
		}
	}
	if err := f.coord.Dispatch(&command.RecordTouch{Type: "pinch"}); err == nil {
		t.Error("expected an error for an unsupported touch type")
	}

	if err := f.coord.Dispatch(&command.StopRecording{Name: "raid"}); err != nil {
		t.Fatalf("StopRecording error = %v", err)
	}
	saved := f.waitEvent(t, "RecordingSaved").(*event.RecordingSaved)
	if saved.Actions != 3 || saved.Path != "/recordings/raid.json" {
		t.Errorf("RecordingSaved = %+v", saved)
	}

	actions := f.scripts.saved["raid"]
	if len(actions) != 3 || actions[0].X != 480 || actions[0].Y != 270 {
		t.Errorf("saved actions = %+v", actions)
	}
}

func TestCoordinator_RecordingFailure(t *testing.T) {
	f := newFixture(t)
	f.scripts.err = errors.New("disk full")

	if err := f.coord.Dispatch(&command.StartRecording{}); err != nil {
		t.Fatal(err)
	}
	if err := f.coord.Dispatch(&command.RecordTouch{Type: "down", RawX: 1, RawY: 1}); err != nil {
		t.Fatal(err)
	}
	if err := f.coord.Dispatch(&command.StopRecording{Name: "raid"}); err == nil {
		t.Fatal("expected a save error")
	}
	f.waitEvent(t, "RecordingFailed")
}

func TestCoordinator_BotCommandsReachBot(t *testing.T) {
	f := newFixture(t)

	if err := f.coord.Dispatch(&command.SelectScripts{Scripts: []string{"a.json"}}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for len(f.coord.bot.Scripts()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("selection never reached the bot")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCoordinator_UnknownCommand(t *testing.T) {
	f := newFixture(t)

	if err := f.coord.Dispatch(unknownCommand{}); err == nil {
		t.Error("expected an error for an unknown command")
	}
}
