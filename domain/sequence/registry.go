package sequence

import (
	"sort"
	"sync"
)

// Registry manages sequence definitions and provides lookup functionality.
type Registry struct {
	sequences map[string]*Sequence
	mu        sync.RWMutex
}

// NewRegistry creates a new empty sequence registry.
func NewRegistry() *Registry {
	return &Registry{
		sequences: make(map[string]*Sequence),
	}
}

// Register adds a sequence, replacing any with the same name.
func (r *Registry) Register(seq *Sequence) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequences[seq.Name] = seq
}

// Get retrieves a sequence by name.
// Returns nil if not found.
func (r *Registry) Get(name string) *Sequence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sequences[name]
}

// List returns all registered sequence names, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sequences))
	for name := range r.sequences {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered sequences.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sequences)
}
