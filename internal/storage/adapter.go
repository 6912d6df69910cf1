package storage

import (
	"encoding/json"
	"log"
	"sync"
)

// Adapter serializes entity collections through a Store. Loads fall back to
// a seed slice on absence or decode failure; write failures never surface to
// callers but flip the adapter into a degraded state so the condition is
// observable.
type Adapter struct {
	store  Store
	logger *log.Logger

	mu      sync.Mutex
	lastErr error
}

func NewAdapter(store Store, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{store: store, logger: logger}
}

// Degraded reports whether a storage write has failed this session.
func (a *Adapter) Degraded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr != nil
}

// LastError returns the most recent storage failure, if any.
func (a *Adapter) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *Adapter) recordFailure(op, key string, err error) {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
	a.logger.Printf("WARNING: storage %s failed for %s, in-memory state remains authoritative: %v", op, key, err)
}

// Load decodes the collection stored under key. Decoding into typed structs
// re-parses every serialized date back into time.Time, including dates on
// embedded sub-entities. Absence or a decode failure yields the fallback.
func Load[T any](a *Adapter, key string, fallback []T) []T {
	raw, ok, err := a.store.Get(key)
	if err != nil {
		a.recordFailure("read", key, err)
		return fallback
	}
	if !ok || len(raw) == 0 {
		return fallback
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		a.logger.Printf("WARNING: discarding undecodable collection %s: %v", key, err)
		return fallback
	}
	return items
}

// Save encodes and writes the collection. Failures are swallowed: they are
// recorded on the adapter and logged, never returned.
func Save[T any](a *Adapter, key string, items []T) {
	raw, err := json.Marshal(items)
	if err != nil {
		a.recordFailure("encode", key, err)
		return
	}
	if err := a.store.Set(key, raw); err != nil {
		a.recordFailure("write", key, err)
	}
}
