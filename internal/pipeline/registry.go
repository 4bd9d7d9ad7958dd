package pipeline

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Step)
	mu       sync.RWMutex
)

// Register adds a step to the registry.
func Register(step Step) {
	mu.Lock()
	defer mu.Unlock()
	registry[step.Name()] = step
}

// Get retrieves a step by name.
func Get(name string) (Step, error) {
	mu.RLock()
	defer mu.RUnlock()

	step, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown step: %s", name)
	}
	return step, nil
}

// Resolve looks up every named step, preserving order.
func Resolve(names []string) ([]Step, error) {
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		step, err := Get(name)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// List returns all registered step names, sorted.
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
