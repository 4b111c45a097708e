// File: bootstrap/source.go
package bootstrap

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// Provider supplies key-value data for a single configuration namespace.
// Implementations manage their own fetching and refresh; this package only
// reads through them. A provider that cannot reach its backing data reports
// keys as absent rather than failing.
type Provider interface {
	// GetProperty returns the value for key, or false when the key is not
	// present in the namespace.
	GetProperty(key string) (string, bool)

	// PropertyNames enumerates the keys currently known to the namespace.
	PropertyNames() []string
}

// PropertySource is the uniform lookup capability composed into a resolution
// order: a named collection of properties consulted first-match-wins.
type PropertySource interface {
	Name() string
	Has(key string) bool
	Get(key string) (string, bool)
	Keys() []string
}

// NewNamespaceSource adapts one namespace's provider into a PropertySource.
// The provider is shared, not owned; a nil provider yields a source whose
// keys are all absent.
func NewNamespaceSource(namespace string, provider Provider) PropertySource {
	return &namespaceSource{namespace: namespace, provider: provider}
}

type namespaceSource struct {
	namespace string
	provider  Provider
}

func (s *namespaceSource) Name() string { return s.namespace }

func (s *namespaceSource) Get(key string) (string, bool) {
	if s.provider == nil {
		return "", false
	}
	return s.provider.GetProperty(key)
}

func (s *namespaceSource) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *namespaceSource) Keys() []string {
	if s.provider == nil {
		return nil
	}
	return s.provider.PropertyNames()
}

// MapSource is a PropertySource backed by a plain mutable map. Hosts use it
// for local configuration chains; tests use it as a stand-in for any chain.
type MapSource struct {
	name string

	mu     sync.RWMutex
	values map[string]string
}

// NewMapSource creates a MapSource with a copy of the given values.
func NewMapSource(name string, values map[string]string) *MapSource {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapSource{name: name, values: copied}
}

func (s *MapSource) Name() string { return s.name }

func (s *MapSource) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MapSource) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *MapSource) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set adds or replaces a value.
func (s *MapSource) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// SystemEnvironmentSource captures the process environment as the
// distinguished system environment chain. Lookups are relaxed: a dotted
// property path matches either a verbatim variable or its UPPER_SNAKE form,
// so "app.id" resolves from APP_ID.
func SystemEnvironmentSource() PropertySource {
	values := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			values[kv[:i]] = kv[i+1:]
		}
	}
	return &envSource{values: values}
}

type envSource struct {
	values map[string]string
}

func (s *envSource) Name() string { return SystemEnvironmentName }

func (s *envSource) Get(key string) (string, bool) {
	if v, ok := s.values[key]; ok {
		return v, true
	}
	v, ok := s.values[envTransform(key)]
	return v, ok
}

func (s *envSource) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *envSource) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
