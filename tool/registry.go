package tool

import (
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateToolID is returned by Register when the identifier is already
// present in the catalog. Definitions are immutable once registered.
var ErrDuplicateToolID = fmt.Errorf("duplicate tool id")

// Registry is the process-wide catalog mapping tool identifiers to
// definitions. It is read-mostly shared state: registration happens at
// startup, lookups run concurrently across runs. The registry is
// role-agnostic; authorization is enforced by whoever supplies the
// authorized set to Resolve.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry ready for tool registration.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the catalog. It fails with ErrDuplicateToolID if
// the identifier already exists.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateToolID, t.ID())
	}
	r.tools[t.ID()] = t

	return nil
}

// MustRegister registers tools and panics on a duplicate identifier. Intended
// for startup wiring of the builtin catalog.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Get returns a tool by identifier and a boolean indicating if it was found.
func (r *Registry) Get(id string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[id]
	return t, ok
}

// IDs returns all registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tools))
	for id := range r.tools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve returns the definitions for the intersection of requested and
// authorized identifiers, in requested order with duplicates dropped.
// Identifiers absent from the catalog are silently dropped: an unknown tool
// request is not an error at resolution time, it simply cannot be offered
// to the model. Resolve is pure with respect to registry contents at call
// time and has no side effects.
func (r *Registry) Resolve(requestedIDs, authorizedIDs []string) []Tool {
	authorized := make(map[string]bool, len(authorizedIDs))
	for _, id := range authorizedIDs {
		authorized[id] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(requestedIDs))
	resolved := make([]Tool, 0, len(requestedIDs))
	for _, id := range requestedIDs {
		if seen[id] || !authorized[id] {
			continue
		}
		seen[id] = true
		if t, ok := r.tools[id]; ok {
			resolved = append(resolved, t)
		}
	}

	return resolved
}
