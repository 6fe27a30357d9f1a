package store

import (
	"sync"
)

// Memory is a map-backed Store guarded by an RWMutex. It is the default
// backing for the callback registry; entries hold Go closures, so an
// in-process store is the natural fit.
type Memory[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// NewMemory constructs an empty in-memory store.
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{
		items: make(map[string]V),
	}
}

// Exists implements Store.Exists.
func (m *Memory[V]) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok
}

// Get implements Store.Get.
func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

// Set implements Store.Set.
func (m *Memory[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

// Unset implements Store.Unset.
func (m *Memory[V]) Unset(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// Keys implements Store.Keys.
func (m *Memory[V]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys
}

// Len implements Store.Len.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Clear implements Store.Clear.
func (m *Memory[V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]V)
}

// Ensure Memory implements Store at compile time.
var _ Store[any] = (*Memory[any])(nil)
