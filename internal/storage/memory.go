// internal/storage/memory.go
package storage

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value V
	exp   time.Time // zero means no expiry
}

// Memory is an in-process Cache mapping a key to a (value, expiry) pair.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	clock   Clock
}

// NewMemory creates an in-process cache. A ttl of zero keeps entries until
// they are invalidated.
func NewMemory[V any](ttl time.Duration, clock Clock) *Memory[V] {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Memory[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		clock:   clock,
	}
}

func (m *Memory[V]) get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || (!e.exp.IsZero() && !m.clock.Now().Before(e.exp)) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetOrCompute returns the cached value for key, or runs compute and stores
// its result. Concurrent misses may compute more than once; the last
// result wins.
func (m *Memory[V]) GetOrCompute(ctx context.Context, key string, compute Compute[V]) (V, error) {
	if v, ok := m.get(key); ok {
		return v, nil
	}

	v, err := compute(ctx)
	if err != nil {
		return v, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry[V]{value: v}
	if m.ttl > 0 {
		e.exp = m.clock.Now().Add(m.ttl)
	}
	m.entries[key] = e
	m.trim()
	return v, nil
}

// Invalidate drops key.
func (m *Memory[V]) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Purge drops every entry.
func (m *Memory[V]) Purge(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
	return nil
}

// Len returns the number of live entries.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trim()
	return len(m.entries)
}

// trim removes expired entries. Callers hold the write lock.
func (m *Memory[V]) trim() {
	now := m.clock.Now()
	for k, e := range m.entries {
		if !e.exp.IsZero() && !now.Before(e.exp) {
			delete(m.entries, k)
		}
	}
}
