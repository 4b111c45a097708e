// File: bootstrap/composite.go
package bootstrap

// CompositeSource presents an ordered sequence of property sources as one
// lookup surface. The first source that has a key wins, so sources appended
// earlier take precedence over later ones. Composites are mutable while
// being built and must be treated as read-only once installed into an
// Environment.
type CompositeSource struct {
	name    string
	sources []PropertySource
}

// NewComposite creates an empty composite with the given chain name.
func NewComposite(name string) *CompositeSource {
	return &CompositeSource{name: name}
}

func (c *CompositeSource) Name() string { return c.name }

// Add appends a source. Earlier additions keep precedence.
func (c *CompositeSource) Add(source PropertySource) {
	c.sources = append(c.sources, source)
}

// Sources returns the composed sources in precedence order.
func (c *CompositeSource) Sources() []PropertySource {
	out := make([]PropertySource, len(c.sources))
	copy(out, c.sources)
	return out
}

func (c *CompositeSource) Get(key string) (string, bool) {
	for _, source := range c.sources {
		if value, ok := source.Get(key); ok {
			return value, true
		}
	}
	return "", false
}

func (c *CompositeSource) Has(key string) bool {
	for _, source := range c.sources {
		if source.Has(key) {
			return true
		}
	}
	return false
}

// Keys returns the union of all source keys, first-seen order.
func (c *CompositeSource) Keys() []string {
	return unionKeys(c.sources)
}

// CachedCompositeSource is a CompositeSource that memoizes the unioned key
// set across its sources. The cache is rebuilt on every Add and answers only
// key existence and enumeration; value lookups always go to the live
// sources.
type CachedCompositeSource struct {
	CompositeSource

	keys   []string
	keySet map[string]struct{}
}

// NewCachedComposite creates an empty caching composite.
func NewCachedComposite(name string) *CachedCompositeSource {
	return &CachedCompositeSource{
		CompositeSource: CompositeSource{name: name},
		keySet:          make(map[string]struct{}),
	}
}

// Add appends a source and recomputes the cached key union.
func (c *CachedCompositeSource) Add(source PropertySource) {
	c.CompositeSource.Add(source)
	c.rebuildKeys()
}

func (c *CachedCompositeSource) Has(key string) bool {
	_, ok := c.keySet[key]
	return ok
}

func (c *CachedCompositeSource) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func (c *CachedCompositeSource) rebuildKeys() {
	c.keys = unionKeys(c.sources)
	c.keySet = make(map[string]struct{}, len(c.keys))
	for _, key := range c.keys {
		c.keySet[key] = struct{}{}
	}
}

func unionKeys(sources []PropertySource) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, source := range sources {
		for _, key := range source.Keys() {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}
