package robot

import (
	"fmt"
	"sort"
	"sync"
)

// Registry tracks controllers by robot name so multiple arms can be
// driven from one process.
type Registry struct {
	mu     sync.RWMutex
	robots map[string]*Controller
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{robots: make(map[string]*Controller)}
}

// Register adds a controller under name.
func (r *Registry) Register(name string, c *Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.robots[name]; dup {
		return fmt.Errorf("robot %q already registered", name)
	}
	r.robots[name] = c
	return nil
}

// Lookup returns the controller registered under name.
func (r *Registry) Lookup(name string) (*Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.robots[name]
	if !ok {
		return nil, fmt.Errorf("robot %q: %w", name, ErrNotRegistered)
	}
	return c, nil
}

// Unregister removes name. Unknown names are a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.robots, name)
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.robots))
	for n := range r.robots {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CloseAll closes every controller and empties the registry, returning
// the first close error.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for _, c := range r.robots {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.robots = make(map[string]*Controller)
	return first
}
