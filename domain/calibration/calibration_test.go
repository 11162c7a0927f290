package calibration

import (
	"context"
	"testing"

	"cocbot-go/domain/coords"
	"cocbot-go/domain/prefs"
)

func TestButtonKey_Name(t *testing.T) {
	tests := []struct {
		key  ButtonKey
		want string
	}{
		{ButtonAttack, "attack"},
		{ButtonFindMatch, "find-match"},
		{ButtonDeployAttack, "deploy-attack"},
		{ButtonOKResult, "ok-result"},
		{ButtonConfirmWallUpgrade, "confirm-wall-upgrade"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.key.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
			parsed, err := ParseButton(tt.want)
			if err != nil || parsed != tt.key {
				t.Errorf("ParseButton(%q) = %q, %v", tt.want, parsed, err)
			}
		})
	}

	if _, err := ParseButton("launch-missiles"); err == nil {
		t.Error("ParseButton should reject unknown names")
	}
	if len(AllButtons) != 11 {
		t.Errorf("len(AllButtons) = %d, want 11", len(AllButtons))
	}
}

func TestButtonStore(t *testing.T) {
	ctx := context.Background()
	repo := prefs.NewMemoryRepository()
	s := NewButtonStore(repo)

	if _, ok, err := s.Get(ctx, ButtonAttack); ok || err != nil {
		t.Fatalf("uncalibrated button: ok=%v err=%v", ok, err)
	}

	if err := s.Save(ctx, ButtonAttack, coords.Point{X: 1200.4, Y: 539.6}); err != nil {
		t.Fatal(err)
	}
	p, ok, err := s.Get(ctx, ButtonAttack)
	if err != nil || !ok {
		t.Fatalf("Get after Save: ok=%v err=%v", ok, err)
	}
	if p != (coords.Point{X: 1200, Y: 540}) {
		t.Errorf("Get = %v, want (1200, 540)", p)
	}

	raw, _, _ := repo.Get(ctx, prefs.NamespaceCoordinates, "btn_attack_x")
	if raw != "1200" {
		t.Errorf("stored key btn_attack_x = %q", raw)
	}

	if err := s.Save(ctx, ButtonNext, coords.Point{}); err == nil {
		t.Error("Save should reject the zero sentinel")
	}

	all, err := s.All(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("All = %v, %v", all, err)
	}

	if err := s.Clear(ctx, ButtonAttack); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, ButtonAttack); ok {
		t.Error("button should be unset after Clear")
	}
}

// writeCounter records how button coordinates reach the repository.
type writeCounter struct {
	*prefs.MemoryRepository
	puts    int
	putAlls []map[string]string
}

func (w *writeCounter) Put(ctx context.Context, namespace, key, value string) error {
	w.puts++
	return w.MemoryRepository.Put(ctx, namespace, key, value)
}

func (w *writeCounter) PutAll(ctx context.Context, namespace string, values map[string]string) error {
	w.putAlls = append(w.putAlls, values)
	return w.MemoryRepository.PutAll(ctx, namespace, values)
}

func TestButtonStore_SaveWritesBothCoordinatesTogether(t *testing.T) {
	ctx := context.Background()
	repo := &writeCounter{MemoryRepository: prefs.NewMemoryRepository()}

	if err := NewButtonStore(repo).Save(ctx, ButtonUpgradeMenu, coords.Point{X: 640, Y: 480}); err != nil {
		t.Fatal(err)
	}

	if repo.puts != 0 {
		t.Errorf("Put called %d times, want 0", repo.puts)
	}
	if len(repo.putAlls) != 1 {
		t.Fatalf("PutAll called %d times, want 1", len(repo.putAlls))
	}
	want := map[string]string{"btn_upgrade_menu_x": "640", "btn_upgrade_menu_y": "480"}
	got := repo.putAlls[0]
	if len(got) != len(want) || got["btn_upgrade_menu_x"] != "640" || got["btn_upgrade_menu_y"] != "480" {
		t.Errorf("PutAll values = %v, want %v", got, want)
	}
}

func TestButtonStore_ZeroCoordinateIsUnset(t *testing.T) {
	ctx := context.Background()
	repo := prefs.NewMemoryRepository()
	_ = repo.Put(ctx, prefs.NamespaceCoordinates, "btn_next_x", "300")
	_ = repo.Put(ctx, prefs.NamespaceCoordinates, "btn_next_y", "0")

	if _, ok, _ := NewButtonStore(repo).Get(ctx, ButtonNext); ok {
		t.Error("a zero coordinate must read as not configured")
	}
}

func TestResolutionStore(t *testing.T) {
	ctx := context.Background()
	s := NewResolutionStore(prefs.NewMemoryRepository())

	res, err := s.Load(ctx)
	if err != nil || !res.IsZero() {
		t.Fatalf("Load empty = %v, %v", res, err)
	}

	if err := s.Save(ctx, coords.Resolution{Width: 2400, Height: 1080}); err != nil {
		t.Fatal(err)
	}
	res, _ = s.Load(ctx)
	if res != (coords.Resolution{Width: 2400, Height: 1080}) {
		t.Errorf("Load = %v", res)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	res, _ = s.Load(ctx)
	if !res.IsZero() {
		t.Errorf("Load after Reset = %v", res)
	}
}
