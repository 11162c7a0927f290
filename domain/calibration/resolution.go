package calibration

import (
	"context"

	"cocbot-go/domain/coords"
	"cocbot-go/domain/prefs"
)

const (
	keyGameWidth  = "game_width"
	keyGameHeight = "game_height"
)

// ResolutionStore persists the game resolution across sessions.
type ResolutionStore struct {
	store *prefs.Store
}

// NewResolutionStore binds the coordinates namespace of a repository.
func NewResolutionStore(repo prefs.Repository) *ResolutionStore {
	return &ResolutionStore{store: prefs.NewStore(repo, prefs.NamespaceCoordinates)}
}

// Load returns the stored resolution, or a zero resolution when unset.
func (s *ResolutionStore) Load(ctx context.Context) (coords.Resolution, error) {
	w, err := s.store.Int(ctx, keyGameWidth, 0)
	if err != nil {
		return coords.Resolution{}, err
	}
	h, err := s.store.Int(ctx, keyGameHeight, 0)
	if err != nil {
		return coords.Resolution{}, err
	}
	return coords.Resolution{Width: w, Height: h}, nil
}

// Save overwrites the stored resolution.
func (s *ResolutionStore) Save(ctx context.Context, res coords.Resolution) error {
	return s.store.SetInts(ctx, map[string]int{
		keyGameWidth:  res.Width,
		keyGameHeight: res.Height,
	})
}

// Reset clears the stored resolution so the next run measures it again.
func (s *ResolutionStore) Reset(ctx context.Context) error {
	return s.store.Delete(ctx, keyGameWidth, keyGameHeight)
}
