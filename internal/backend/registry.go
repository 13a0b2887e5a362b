package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownBackend = errors.New("unknown transcoding backend")

// Factory builds a backend. It runs once, at startup.
type Factory func(ctx context.Context) (Backend, error)

// Registry maps configuration keys to backend factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds a factory under name. Registering the same name twice panics;
// it is always a wiring bug.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.factories[name]; dup {
		panic("backend: duplicate registration of " + name)
	}
	r.factories[name] = f
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New resolves name to a backend.
func (r *Registry) New(ctx context.Context, name string) (Backend, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownBackend, name, r.Names())
	}
	b, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("init backend %q: %w", name, err)
	}
	return b, nil
}
