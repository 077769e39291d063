package pipelines

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Pipeline)
	mu       sync.RWMutex
)

// Register adds a pipeline to the registry.
func Register(p Pipeline) {
	mu.Lock()
	defer mu.Unlock()
	registry[p.Name()] = p
}

// Get retrieves a pipeline by name.
func Get(name string) (Pipeline, error) {
	mu.RLock()
	defer mu.RUnlock()

	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown pipeline: %s", name)
	}
	return p, nil
}

// List returns all registered pipeline names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered pipelines sorted by name.
func All() []Pipeline {
	names := List()

	mu.RLock()
	defer mu.RUnlock()

	all := make([]Pipeline, 0, len(names))
	for _, name := range names {
		all = append(all, registry[name])
	}
	return all
}
