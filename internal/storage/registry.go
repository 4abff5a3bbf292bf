package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config is the backend-agnostic connection description passed to factories.
type Config struct {
	Kind string // registry key, e.g. "postgres"
	DSN  string // driver-specific connection string

	// BatchSize bounds the rows sent per bulk-copy call. Zero means
	// DefaultBatchSize.
	BatchSize int
}

// Factory opens a Store for cfg.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind. Backends call it
// from init().
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Store using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Store, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered kinds.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
