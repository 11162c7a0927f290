package prefs

import (
	"context"
	"maps"
	"sync"
)

// MemoryRepository is an in-process Repository used for dry runs and tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]map[string]string)}
}

func (r *MemoryRepository) Get(_ context.Context, namespace, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[namespace][key]
	return v, ok, nil
}

func (r *MemoryRepository) Put(_ context.Context, namespace, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bucket(namespace)[key] = value
	return nil
}

func (r *MemoryRepository) PutAll(_ context.Context, namespace string, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.bucket(namespace), values)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, namespace, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data[namespace], key)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, namespace string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.data[namespace]), nil
}

func (r *MemoryRepository) bucket(namespace string) map[string]string {
	b, ok := r.data[namespace]
	if !ok {
		b = make(map[string]string)
		r.data[namespace] = b
	}
	return b
}

var _ Repository = (*MemoryRepository)(nil)
