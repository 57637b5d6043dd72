package operations

import (
	"fmt"
	"sync"
)

// Registry manages the registered transformations
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Function
	order     []string // Maintains registration order
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		functions: make(map[string]Function),
		order:     make([]string, 0),
	}
}

// Register adds a Function to the registry
func (r *Registry) Register(fn Function) error {
	if fn == nil {
		return fmt.Errorf("cannot register nil function")
	}

	id := fn.ID()
	if id == "" {
		return fmt.Errorf("function ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.functions[id]; exists {
		return fmt.Errorf("function %s: %w", id, ErrDuplicateFunction)
	}

	r.functions[id] = fn
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a Function by ID
func (r *Registry) Get(id string) (Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, exists := r.functions[id]
	if !exists {
		return nil, fmt.Errorf("function %s: %w", id, ErrFunctionNotFound)
	}
	return fn, nil
}

// Has checks if a Function is registered
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.functions[id]
	return exists
}

// List returns all registered functions in registration order
func (r *Registry) List() []Function {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fns := make([]Function, 0, len(r.order))
	for _, id := range r.order {
		if fn, exists := r.functions[id]; exists {
			fns = append(fns, fn)
		}
	}
	return fns
}

// Infos returns the listing form of every function in registration order.
func (r *Registry) Infos() []Info {
	fns := r.List()
	out := make([]Info, len(fns))
	for i, fn := range fns {
		out[i] = Describe(fn)
	}
	return out
}

// ListIDs returns all registered IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the number of registered functions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.functions)
}
