// File: bootstrap/environment.go
package bootstrap

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Placement selects where a chain is inserted into the resolution order.
type Placement int

const (
	// PlaceFirst inserts at the front, highest precedence overall.
	PlaceFirst Placement = iota

	// PlaceLast appends at the back, lowest precedence, so every existing
	// chain can override the inserted one.
	PlaceLast

	// PlaceAfterSystemEnvironment inserts directly after the system
	// environment chain, keeping OS-level values authoritative. Falls back
	// to the front when no system environment chain is present.
	PlaceAfterSystemEnvironment
)

// Environment is an ordered list of named lookup chains consulted
// first-match-wins. It is the host-side resolution order that bootstrap
// composites are installed into.
type Environment struct {
	mu     sync.RWMutex
	chains []PropertySource
}

// NewEnvironment creates an Environment with the given chains, highest
// precedence first.
func NewEnvironment(chains ...PropertySource) *Environment {
	return &Environment{chains: slices.Clone(chains)}
}

// Contains reports whether a chain with the given name is present.
func (e *Environment) Contains(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.indexOf(name) >= 0
}

// Names returns the chain names in precedence order.
func (e *Environment) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.chains))
	for i, chain := range e.chains {
		names[i] = chain.Name()
	}
	return names
}

// AddFirst inserts a chain at the front of the resolution order.
func (e *Environment) AddFirst(chain PropertySource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chains = slices.Insert(e.chains, 0, chain)
}

// AddLast appends a chain at the back of the resolution order.
func (e *Environment) AddLast(chain PropertySource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chains = append(e.chains, chain)
}

// AddAfter inserts a chain directly after the named chain.
func (e *Environment) AddAfter(name string, chain PropertySource) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(name)
	if i < 0 {
		return fmt.Errorf("no chain named %q in resolution order", name)
	}
	e.chains = slices.Insert(e.chains, i+1, chain)
	return nil
}

// Install atomically inserts chain at the given placement unless a chain
// with the same name already exists. It returns false when the name was
// already taken, which callers treat as already-initialized.
func (e *Environment) Install(chain PropertySource, place Placement) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexOf(chain.Name()) >= 0 {
		return false
	}

	switch place {
	case PlaceLast:
		e.chains = append(e.chains, chain)
	case PlaceAfterSystemEnvironment:
		if i := e.indexOf(SystemEnvironmentName); i >= 0 {
			e.chains = slices.Insert(e.chains, i+1, chain)
		} else {
			e.chains = slices.Insert(e.chains, 0, chain)
		}
	default:
		e.chains = slices.Insert(e.chains, 0, chain)
	}
	return true
}

func (e *Environment) indexOf(name string) int {
	for i, chain := range e.chains {
		if chain.Name() == name {
			return i
		}
	}
	return -1
}

// Get resolves key across all chains, first match wins.
func (e *Environment) Get(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, chain := range e.chains {
		if value, ok := chain.Get(key); ok {
			return value, true
		}
	}
	return "", false
}

// GetString resolves key, returning def when absent.
func (e *Environment) GetString(key, def string) string {
	if value, ok := e.Get(key); ok {
		return value
	}
	return def
}

// GetBool resolves key as a boolean. Absent or unparsable values yield def.
func (e *Environment) GetBool(key string, def bool) bool {
	value, ok := e.Get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return b
}

// GetInt64 resolves key as an integer. Absent or unparsable values yield
// def. Base is auto-detected, so "0x1F" parses as hex.
func (e *Environment) GetInt64(key string, def int64) int64 {
	value, ok := e.Get(key)
	if !ok {
		return def
	}
	i, err := strconv.ParseInt(value, 0, 64)
	if err != nil {
		return def
	}
	return i
}

// GetDuration resolves key as a time.Duration ("90s", "1h30m"). A bare
// integer is taken as milliseconds. Absent or unparsable values yield def.
func (e *Environment) GetDuration(key string, def time.Duration) time.Duration {
	value, ok := e.Get(key)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

// Keys returns the union of keys across all chains in precedence order.
func (e *Environment) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return unionKeys(e.chains)
}

// Scan decodes the resolved configuration under basePath into the target
// struct or map. The target must be a non-nil pointer. Fields are matched
// via the "toml" struct tag; values are decoded weakly so string properties
// convert to numbers, booleans, durations, and comma-separated slices.
func (e *Environment) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("target of Scan must be a non-nil pointer, got %T", target)
	}

	// Resolve every known key through the full chain so precedence applies.
	nested := make(map[string]any)
	for _, key := range e.Keys() {
		if value, ok := e.Get(key); ok {
			setNestedValue(nested, key, value)
		}
	}

	sectionData := navigateToPath(nested, basePath)
	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		if sectionData == nil {
			sectionMap = make(map[string]any)
		} else {
			return fmt.Errorf("path %q refers to non-map value (type %T)", basePath, sectionData)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("failed to scan section %q into %T: %w", basePath, target, err)
	}

	return nil
}
