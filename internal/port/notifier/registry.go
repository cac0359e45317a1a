package notifier

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Factory builds a Notifier from provider-specific options.
type Factory func(opts map[string]string) (Notifier, error)

// Config names a provider and the options to build it with.
type Config struct {
	Provider string
	Options  map[string]string
}

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register adds a provider. Adapters call it from init; registering the
// same name twice panics.
func Register(provider string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[provider]; dup {
		panic(fmt.Sprintf("notifier: %q registered twice", provider))
	}
	factories[provider] = f
}

// New builds the named provider.
func New(provider string, opts map[string]string) (Notifier, error) {
	mu.RLock()
	f, ok := factories[provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("notifier: unknown provider %q (have %v)", provider, Available())
	}
	return f(opts)
}

// NewAll builds every provider in order. All failures are reported together.
func NewAll(cfgs ...Config) ([]Notifier, error) {
	out := make([]Notifier, 0, len(cfgs))
	var errs []error
	for _, c := range cfgs {
		n, err := New(c.Provider, c.Options)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Provider, err))
			continue
		}
		out = append(out, n)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Available lists registered providers in name order.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(factories))
}
