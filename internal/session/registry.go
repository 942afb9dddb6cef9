package session

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// StorageFactory opens a storage backend. path is the backend-specific
// location and may be ignored.
type StorageFactory func(path string) (Storage, error)

// Registry manages available storage backends
type Registry struct {
	mu       sync.RWMutex
	backends map[string]StorageFactory
}

// NewRegistry creates a new backend registry
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]StorageFactory),
	}
}

// Register adds a new backend factory to the registry
func (r *Registry) Register(name string, factory StorageFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("storage backend %s already registered", name)
	}

	r.backends[name] = factory
	return nil
}

// Create opens a backend by name
func (r *Registry) Create(name, path string) (Storage, error) {
	r.mu.RLock()
	factory, exists := r.backends[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("storage backend %s not registered", name)
	}

	return factory(path)
}

// List returns all registered backend names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Global registry instance
var defaultRegistry = NewRegistry()

func init() {
	Register("memory", func(string) (Storage, error) { return NewMemoryStorage(), nil })
	Register("sqlite", func(path string) (Storage, error) { return OpenSQLite(path) })
}

// Register adds a backend to the global registry
func Register(name string, factory StorageFactory) error {
	return defaultRegistry.Register(name, factory)
}

// ListBackends returns all registered backend names from the global registry
func ListBackends() []string {
	return defaultRegistry.List()
}

// OpenStorage opens the named backend from the global registry. An empty
// name means "sqlite". If the backend cannot be opened the session falls
// back to process memory, so a broken storage location degrades to "log in
// every run" rather than refusing to start.
func OpenStorage(name, path string, log *zap.Logger) Storage {
	if name == "" {
		name = "sqlite"
	}

	storage, err := defaultRegistry.Create(name, path)
	if err == nil {
		return storage
	}

	log.Warn("session storage unavailable, falling back to memory",
		zap.String("backend", name), zap.String("path", path),
		zap.Strings("available", ListBackends()), zap.Error(err))
	return NewMemoryStorage()
}
