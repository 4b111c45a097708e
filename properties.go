// File: bootstrap/properties.go
package bootstrap

import "sync"

// Properties is the process-global settings store the namespace fetch client
// reads its identifiers from. It is injected rather than a package-level
// global so tests can substitute their own instance.
type Properties struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewProperties creates an empty store.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Get returns the value for key and whether it is set.
func (p *Properties) Get(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// Set stores a value, replacing any existing one.
func (p *Properties) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

// SetIfAbsent stores a value only when the key is not already set. It
// returns true when the value was stored.
func (p *Properties) SetIfAbsent(key, value string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.values[key]; exists {
		return false
	}
	p.values[key] = value
	return true
}

// Snapshot returns a copy of the current values.
func (p *Properties) Snapshot() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}
