package prefs

import (
	"context"
	"testing"
)

func TestStore_Defaults(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryRepository(), NamespaceSettings)

	n, err := s.Int(ctx, "missing", 42)
	if err != nil || n != 42 {
		t.Errorf("Int(missing) = %d, %v; want 42, nil", n, err)
	}
	b, err := s.Bool(ctx, "missing", true)
	if err != nil || !b {
		t.Errorf("Bool(missing) = %v, %v; want true, nil", b, err)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	s := NewStore(repo, NamespaceCoordinates)

	if err := s.SetInt(ctx, "btn_attack_x", 120); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBool(ctx, "flag", false); err != nil {
		t.Fatal(err)
	}
	if err := s.SetInts(ctx, map[string]int{"game_width": 2400, "game_height": 1080}); err != nil {
		t.Fatal(err)
	}

	if n, _ := s.Int(ctx, "btn_attack_x", 0); n != 120 {
		t.Errorf("Int = %d, want 120", n)
	}
	if b, _ := s.Bool(ctx, "flag", true); b {
		t.Error("Bool = true, want false")
	}
	if n, _ := s.Int(ctx, "game_height", 0); n != 1080 {
		t.Errorf("game_height = %d, want 1080", n)
	}

	other := NewStore(repo, NamespaceSettings)
	if n, _ := other.Int(ctx, "btn_attack_x", -1); n != -1 {
		t.Error("namespaces must be isolated")
	}

	if err := s.Delete(ctx, "btn_attack_x"); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Int(ctx, "btn_attack_x", 7); n != 7 {
		t.Errorf("after Delete Int = %d, want default 7", n)
	}
}

func TestStore_GarbageFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_ = repo.Put(ctx, NamespaceSettings, "gold_threshold", "lots")

	s := NewStore(repo, NamespaceSettings)
	if n, err := s.Int(ctx, "gold_threshold", 100000); err != nil || n != 100000 {
		t.Errorf("Int(garbage) = %d, %v; want default", n, err)
	}
}
