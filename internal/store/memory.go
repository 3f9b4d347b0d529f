package store

// memoryMapping implements Mapping with a plain map. The surrounding
// invocation model serializes operations, so no locking is needed here.
type memoryMapping[K comparable, V any] struct {
	entries map[K]V
}

// NewMemoryMapping creates an empty in-memory mapping
func NewMemoryMapping[K comparable, V any]() Mapping[K, V] {
	return &memoryMapping[K, V]{entries: make(map[K]V)}
}

func (m *memoryMapping[K, V]) Get(key K) (V, bool) {
	v, ok := m.entries[key]
	return v, ok
}

func (m *memoryMapping[K, V]) Insert(key K, value V) {
	m.entries[key] = value
}

func (m *memoryMapping[K, V]) Remove(key K) {
	delete(m.entries, key)
}

func (m *memoryMapping[K, V]) Contains(key K) bool {
	_, ok := m.entries[key]
	return ok
}
