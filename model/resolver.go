package model

import (
	"fmt"
	"sync"
)

// Resolver maps model identifiers to configured Model adapters. A run names
// the model it wants by identifier; the resolver turns that into a concrete
// adapter or fails fast before any provider call is made.
//
// Safe for concurrent use.
type Resolver struct {
	mu     sync.RWMutex
	models map[string]Model
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{models: make(map[string]Model)}
}

// Register binds an identifier to a model adapter. Re-registering an
// identifier replaces the previous binding.
func (r *Resolver) Register(id string, m Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[id] = m
}

// Resolve returns the model registered under id, or an error when no such
// model is configured.
func (r *Resolver) Resolve(id string) (Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[id]
	if !ok {
		return nil, fmt.Errorf("model not configured: %q", id)
	}
	return m, nil
}

// IDs returns the identifiers of all registered models.
func (r *Resolver) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.models))
	for id := range r.models {
		ids = append(ids, id)
	}
	return ids
}
