package dataset

import (
	"path/filepath"
	"sync"
)

// Registry is a process-wide map of resolved dump path -> Inventory. An
// entry is inserted when a dataset is loaded and removed when the
// orchestrator signals release (§4.2). Insertion/removal is mutex-guarded;
// reads of an already-inserted entry are lock-free would require a
// sync.Map, but the registry is only ever touched at dataset open/close, so
// a plain mutex (matching the teacher's config-singleton guard style) is
// enough.
type Registry struct {
	mu    sync.Mutex
	byKey map[string]*Inventory
}

// NewRegistry constructs an empty registry. The orchestrator owns one
// instance as an explicit collaborator (§9 "Global state" redesign note —
// no package-level singleton).
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]*Inventory)}
}

// Acquire returns the cached Inventory for path if present, otherwise
// builds and registers a new one.
func (reg *Registry) Acquire(path string) (*Inventory, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}

	reg.mu.Lock()
	if inv, ok := reg.byKey[key]; ok {
		reg.mu.Unlock()
		return inv, nil
	}
	reg.mu.Unlock()

	inv, err := New(path)
	if err != nil {
		return nil, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if existing, ok := reg.byKey[key]; ok {
		// Lost the race with a concurrent Acquire; keep the first winner so
		// all callers share one cache.
		return existing, nil
	}
	reg.byKey[key] = inv
	return inv, nil
}

// Release removes the dataset's entry so its cached frames and topology
// can be garbage collected once the orchestrator finishes the request
// (§3 lifecycle, §4.7 step 10).
func (reg *Registry) Release(path string) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.byKey, key)
}

// Len reports the number of live datasets, mostly useful for tests/metrics.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.byKey)
}
