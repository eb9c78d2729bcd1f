package collector

import (
	"fmt"
	"sort"
	"sync"

	"github.com/newthinker/quantlab/internal/core"
)

// Registry manages collector plugins
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]Collector
}

// NewRegistry creates a new collector registry
func NewRegistry() *Registry {
	return &Registry{
		collectors: make(map[string]Collector),
	}
}

// Register adds a collector to the registry
func (r *Registry) Register(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[c.Name()] = c
}

// Get retrieves a collector by name
func (r *Registry) Get(name string) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[name]
	return c, ok
}

// MustGet retrieves a collector by name or reports which ones exist.
func (r *Registry) MustGet(name string) (Collector, error) {
	if c, ok := r.Get(name); ok {
		return c, nil
	}
	return nil, core.WrapError(core.ErrConfigInvalid,
		fmt.Errorf("collector %q not registered (have %v)", name, r.Names()))
}

// Names returns the registered collector names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
