package session

import "sync"

// Storage is durable key/value storage for session state
type Storage interface {
	// Name returns the backend identifier (e.g. "sqlite", "memory")
	Name() string

	// Get returns the value stored under key; ok is false when the key is unset
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key
	Set(key, value string) error

	// Delete removes key; deleting an unset key is not an error
	Delete(key string) error

	// Close releases any resources held by the backend
	Close() error
}

// MemoryStorage keeps values for the lifetime of the process only. It is the
// fallback when no durable backend is available.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Name returns the backend identifier
func (m *MemoryStorage) Name() string {
	return "memory"
}

// Get returns the value stored under key
func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key
func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// Delete removes key
func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Close is a no-op
func (m *MemoryStorage) Close() error {
	return nil
}
