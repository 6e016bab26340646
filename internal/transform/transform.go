// Package transform is a registry of named field transforms and predicates.
// Configuration refers to transforms by name; the host registers the
// functions it allows at init time.
package transform

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"reports/internal/dataset"
	"reports/internal/executor"
)

var (
	mu         sync.RWMutex
	maps       = map[string]executor.MapFunc{}
	predicates = map[string]executor.Predicate{}
)

// Register makes a map function available under name. It panics on a
// duplicate or nil registration.
func Register(name string, fn executor.MapFunc) {
	mu.Lock()
	defer mu.Unlock()
	if fn == nil {
		panic("transform: Register " + name + " with nil func")
	}
	if _, dup := maps[name]; dup {
		panic("transform: Register called twice for " + name)
	}
	maps[name] = fn
}

// RegisterPredicate makes a predicate available under name. It panics on a
// duplicate or nil registration.
func RegisterPredicate(name string, p executor.Predicate) {
	mu.Lock()
	defer mu.Unlock()
	if p == nil {
		panic("transform: RegisterPredicate " + name + " with nil func")
	}
	if _, dup := predicates[name]; dup {
		panic("transform: RegisterPredicate called twice for " + name)
	}
	predicates[name] = p
}

// Lookup returns the map function registered under name. A "|" separated
// name composes functions left to right, e.g. "trim|upper".
func Lookup(name string) (executor.MapFunc, error) {
	mu.RLock()
	defer mu.RUnlock()
	var chain []executor.MapFunc
	for _, part := range strings.Split(name, "|") {
		part = strings.TrimSpace(part)
		fn, ok := maps[part]
		if !ok {
			return nil, fmt.Errorf("transform: %w: unknown map function %q", dataset.ErrValidation, part)
		}
		chain = append(chain, fn)
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return Chain(chain...), nil
}

// LookupPredicate returns the predicate registered under name.
func LookupPredicate(name string) (executor.Predicate, error) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := predicates[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("transform: %w: unknown predicate %q", dataset.ErrValidation, name)
	}
	return p, nil
}

// Names lists the registered map functions and predicates, sorted.
func Names() (mapNames, predicateNames []string) {
	mu.RLock()
	defer mu.RUnlock()
	for n := range maps {
		mapNames = append(mapNames, n)
	}
	for n := range predicates {
		predicateNames = append(predicateNames, n)
	}
	sort.Strings(mapNames)
	sort.Strings(predicateNames)
	return mapNames, predicateNames
}

// Chain applies fns in order.
func Chain(fns ...executor.MapFunc) executor.MapFunc {
	return func(v any) any {
		for _, fn := range fns {
			v = fn(v)
		}
		return v
	}
}
