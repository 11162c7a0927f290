package prefs

import (
	"context"
	"fmt"
	"strconv"
)

// Store is a typed view of one namespace. Absent or unparsable keys yield the
// caller's default.
type Store struct {
	repo      Repository
	namespace string
}

// NewStore binds a repository namespace.
func NewStore(repo Repository, namespace string) *Store {
	return &Store{repo: repo, namespace: namespace}
}

// Namespace returns the bound namespace.
func (s *Store) Namespace() string {
	return s.namespace
}

// Int reads an integer key.
func (s *Store) Int(ctx context.Context, key string, def int) (int, error) {
	v, ok, err := s.repo.Get(ctx, s.namespace, key)
	if err != nil {
		return def, fmt.Errorf("failed to read %s/%s: %w", s.namespace, key, err)
	}
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, nil
	}
	return n, nil
}

// Bool reads a boolean key.
func (s *Store) Bool(ctx context.Context, key string, def bool) (bool, error) {
	v, ok, err := s.repo.Get(ctx, s.namespace, key)
	if err != nil {
		return def, fmt.Errorf("failed to read %s/%s: %w", s.namespace, key, err)
	}
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, nil
	}
	return b, nil
}

// SetInt writes an integer key.
func (s *Store) SetInt(ctx context.Context, key string, v int) error {
	return s.repo.Put(ctx, s.namespace, key, strconv.Itoa(v))
}

// SetBool writes a boolean key.
func (s *Store) SetBool(ctx context.Context, key string, v bool) error {
	return s.repo.Put(ctx, s.namespace, key, strconv.FormatBool(v))
}

// SetInts writes several integer keys together.
func (s *Store) SetInts(ctx context.Context, values map[string]int) error {
	encoded := make(map[string]string, len(values))
	for k, v := range values {
		encoded[k] = strconv.Itoa(v)
	}
	return s.repo.PutAll(ctx, s.namespace, encoded)
}

// Delete removes keys from the namespace.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := s.repo.Delete(ctx, s.namespace, k); err != nil {
			return fmt.Errorf("failed to delete %s/%s: %w", s.namespace, k, err)
		}
	}
	return nil
}

// All returns the raw contents of the namespace.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	return s.repo.List(ctx, s.namespace)
}
