package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"reports/internal/config"
)

// Config carries everything a Factory may need. Which fields matter depends
// on the kind.
type Config struct {
	// Kind selects the backend, e.g. "csv", "sqlite", "nosql", "ldap".
	Kind string

	// Filename is the path used by file kinds.
	Filename string

	// DSN, when set, is passed to relational drivers verbatim.
	DSN string

	// Options holds the backend-specific source block from configuration,
	// e.g. host, port, database, user, password, ssl.
	Options config.Options
}

// Factory builds a connected Manager.
type Factory func(ctx context.Context, cfg Config) (Manager, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Registering a kind twice
// replaces the earlier factory.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New builds a Manager for cfg.Kind.
func New(ctx context.Context, cfg Config) (Manager, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown manager kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds lists the registered kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
