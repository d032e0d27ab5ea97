package listing

import (
	"context"
	"sync"
)

// FetchFunc loads an entire collection.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// View is an ordered in-memory snapshot of one collection. Every refresh replaces
// the snapshot wholesale; there is no incremental patching.
type View[T any] struct {
	fetch FetchFunc[T]

	mu      sync.RWMutex
	items   []T
	started uint64 // refreshes begun
	stored  uint64 // generation of items
}

func NewView[T any](fetch FetchFunc[T]) *View[T] {
	return &View[T]{fetch: fetch}
}

// Refresh re-fetches the collection and returns what it fetched. On error the
// previous snapshot is kept.
func (v *View[T]) Refresh(ctx context.Context) ([]T, error) {
	v.mu.Lock()
	v.started++
	gen := v.started
	v.mu.Unlock()

	items, err := v.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}

	v.mu.Lock()
	// A fetch that began earlier but finished later must not replace a newer snapshot.
	if gen > v.stored {
		v.items = items
		v.stored = gen
	}
	v.mu.Unlock()

	out := make([]T, len(items))
	copy(out, items)
	return out, nil
}

// Snapshot returns a copy of the last fetched items.
func (v *View[T]) Snapshot() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}
