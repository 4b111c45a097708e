// File: bootstrap/provider.go
package bootstrap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// MaxNamespaceFileSize caps how much of a namespace cache file is read.
const MaxNamespaceFileSize = 10 << 20 // 10 MiB

// namespaceExtensions are tried in order when resolving a cache file. The
// last two entries accept .conf and extension-less cache files, whose format
// is detected from content.
var namespaceExtensions = []string{".toml", ".yaml", ".yml", ".json", ".conf", ""}

// Registry hands out one Provider per namespace, constructed on first use by
// the injected factory and cached for subsequent requests. A factory failure
// degrades to an empty provider (every key absent) and is not cached, so a
// later request retries.
type Registry struct {
	mu        sync.Mutex
	factory   func(namespace string) (Provider, error)
	providers map[string]Provider
	log       *slog.Logger
}

// NewRegistry creates a Registry backed by factory.
func NewRegistry(factory func(namespace string) (Provider, error)) *Registry {
	return &Registry{
		factory:   factory,
		providers: make(map[string]Provider),
		log:       slog.Default(),
	}
}

// WithLogger sets the logger used for factory failures.
func (r *Registry) WithLogger(log *slog.Logger) *Registry {
	if log != nil {
		r.log = log
	}
	return r
}

// Get returns the provider for namespace. It never fails; a namespace whose
// provider cannot be built resolves every key as absent.
func (r *Registry) Get(namespace string) Provider {
	r.mu.Lock()
	defer r.mu.Unlock()

	if provider, ok := r.providers[namespace]; ok {
		return provider
	}

	provider, err := r.factory(namespace)
	if err != nil {
		r.log.Warn("failed to build namespace provider",
			"namespace", namespace, "error", err)
		return emptyProvider{}
	}
	r.providers[namespace] = provider
	return provider
}

type emptyProvider struct{}

func (emptyProvider) GetProperty(string) (string, bool) { return "", false }
func (emptyProvider) PropertyNames() []string           { return nil }

// StaticProvider serves a fixed property map. Useful for tests and for
// namespaces whose data is compiled in.
type StaticProvider map[string]string

func (p StaticProvider) GetProperty(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

func (p StaticProvider) PropertyNames() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FileProvider reads a namespace's data from a cache file
// <dir>/<namespace>.{toml,yaml,yml,json,conf} or <dir>/<namespace> bare;
// .conf and extension-less files are parsed by content detection. Nested
// tables flatten to dotted keys with string values. Reload re-reads the
// file; on failure the previous data stays in place.
type FileProvider struct {
	dir       string
	namespace string

	mu     sync.RWMutex
	path   string
	values map[string]string
}

// NewFileProvider creates a provider for namespace under dir without
// loading it; call Reload to read the cache file.
func NewFileProvider(dir, namespace string) *FileProvider {
	return &FileProvider{
		dir:       dir,
		namespace: namespace,
		values:    make(map[string]string),
	}
}

// FileProviderFactory adapts NewFileProvider to the Registry factory
// signature. A missing cache file is not an error; the namespace starts
// empty and can appear later via Reload or a Watcher.
func FileProviderFactory(dir string) func(namespace string) (Provider, error) {
	return func(namespace string) (Provider, error) {
		p := NewFileProvider(dir, namespace)
		if err := p.Reload(); err != nil && !errors.Is(err, ErrNamespaceNotFound) {
			return nil, err
		}
		return p, nil
	}
}

// Namespace returns the namespace this provider serves.
func (p *FileProvider) Namespace() string { return p.namespace }

func (p *FileProvider) GetProperty(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

func (p *FileProvider) PropertyNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.values))
	for k := range p.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Reload re-reads the namespace cache file. It returns ErrNamespaceNotFound
// when no file exists for the namespace; previously loaded values are kept.
func (p *FileProvider) Reload() error {
	path, err := p.resolvePath()
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNamespaceNotFound
		}
		return fmt.Errorf("failed to open namespace file '%s': %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxNamespaceFileSize))
	if err != nil {
		return fmt.Errorf("failed to read namespace file '%s': %w", path, err)
	}

	parsed, err := parseNamespaceData(path, data)
	if err != nil {
		return err
	}

	values := flattenProperties(parsed, "")

	p.mu.Lock()
	p.path = path
	p.values = values
	p.mu.Unlock()

	return nil
}

// resolvePath finds the cache file for the namespace, trying extensions in
// order.
func (p *FileProvider) resolvePath() (string, error) {
	for _, ext := range namespaceExtensions {
		candidate := filepath.Join(p.dir, p.namespace+ext)
		if stat, err := os.Stat(candidate); err == nil && !stat.IsDir() {
			return candidate, nil
		}
	}
	return "", ErrNamespaceNotFound
}

// matchesFile reports whether path names this provider's cache file.
func (p *FileProvider) matchesFile(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if strings.TrimSuffix(base, ext) != p.namespace {
		return false
	}
	for _, known := range namespaceExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// parseNamespaceData parses cache file contents, detecting the format from
// the extension first and falling back to content detection.
func parseNamespaceData(path string, data []byte) (map[string]any, error) {
	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
	}

	parsed := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse TOML namespace file '%s': %w", path, err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&parsed); err != nil {
			return nil, fmt.Errorf("failed to parse JSON namespace file '%s': %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse YAML namespace file '%s': %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownFormat, path)
	}

	return parsed, nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing. Namespace
// data is always a table, so each probe must yield a map; a scalar parse
// does not claim the format (YAML reads bare TOML assignments as one plain
// scalar).
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	jsonTest := make(map[string]any)
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// Try YAML (superset of JSON, so check after JSON)
	yamlTest := make(map[string]any)
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	// Try TOML last
	tomlTest := make(map[string]any)
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	return ""
}
