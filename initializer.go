// File: bootstrap/initializer.go
package bootstrap

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// Well-known chain names.
const (
	// BootstrapSourceName identifies the composite installed by
	// Initializer. Its presence in an Environment is the idempotency guard.
	BootstrapSourceName = "BootstrapPropertySources"

	// SystemEnvironmentName is the distinguished chain holding OS
	// environment values.
	SystemEnvironmentName = "systemEnvironment"

	// NamespaceApplication is the default namespace.
	NamespaceApplication = "application"
)

// Configuration keys read from the host environment.
const (
	BootstrapEnabledKey          = "bootstrap.enabled"
	BootstrapNamespacesKey       = "bootstrap.namespaces"
	BootstrapEagerLoadEnabledKey = "bootstrap.eager-load.enabled"

	AppIDKey                    = "app.id"
	AppLabelKey                 = "app.label"
	ClusterKey                  = "config.cluster"
	CacheDirKey                 = "config.cache-dir"
	AccessKeySecretKey          = "config.access-key.secret"
	MetaServerKey               = "config.meta"
	ConfigServiceKey            = "config.service"
	PropertyOrderEnableKey      = "config.property-order.enable"
	PropertyNamesCacheEnableKey = "config.property-names-cache.enable"
	OverrideSystemPropertiesKey = "config.override-system-properties"
)

// systemPropertyKeys are copied verbatim from the environment into the
// process-global store before any composition runs. The namespace fetch
// client reads these directly from the store, not through the Environment.
var systemPropertyKeys = []string{
	AppIDKey,
	AppLabelKey,
	ClusterKey,
	CacheDirKey,
	AccessKeySecretKey,
	MetaServerKey,
	ConfigServiceKey,
	PropertyOrderEnableKey,
	PropertyNamesCacheEnableKey,
	OverrideSystemPropertiesKey,
}

// Initializer builds the bootstrap composite from the configured namespace
// list and installs it into a host Environment. It is invoked from up to two
// trigger points during host startup: PostProcessEnvironment (eager, before
// the logging backend exists) and InitializeContext (normal). Whichever runs
// second observes the installed chain and no-ops.
type Initializer struct {
	mu       sync.Mutex
	registry *Registry
	props    *Properties
	deferred *DeferredHandler
	log      *slog.Logger
}

// NewInitializer creates an Initializer over the given provider registry,
// with a fresh properties store and a logger backed by the deferred sink.
func NewInitializer(registry *Registry) *Initializer {
	deferred := NewDeferredHandler(nil)
	return &Initializer{
		registry: registry,
		props:    NewProperties(),
		deferred: deferred,
		log:      slog.New(deferred),
	}
}

// WithProperties substitutes the process-global settings store.
func (i *Initializer) WithProperties(props *Properties) *Initializer {
	if props != nil {
		i.props = props
	}
	return i
}

// WithLogger substitutes the logger. Records logged through a logger that
// does not route into Deferred() are not buffered during eager bootstrap.
func (i *Initializer) WithLogger(log *slog.Logger) *Initializer {
	if log != nil {
		i.log = log
	}
	return i
}

// Properties returns the process-global settings store.
func (i *Initializer) Properties() *Properties { return i.props }

// Deferred returns the buffered log sink.
func (i *Initializer) Deferred() *DeferredHandler { return i.deferred }

// InitializeContext is the normal trigger point, invoked during host
// context initialization after environment preparation. It is a no-op
// unless bootstrap.enabled is true.
func (i *Initializer) InitializeContext(env *Environment) {
	if !i.flagBool(env, BootstrapEnabledKey, false) {
		i.log.Debug("bootstrap config is not enabled",
			"property", BootstrapEnabledKey)
		return
	}
	i.log.Debug("bootstrap config is enabled")
	i.Initialize(env)
}

// PostProcessEnvironment is the eager trigger point, invoked during host
// environment preparation before the logging backend is configured. It
// always seeds system properties, and runs composition with the deferred
// log sink enabled when both eager-load and bootstrap are requested.
func (i *Initializer) PostProcessEnvironment(env *Environment) {
	// Seeding must happen before the eager-load decision: the namespace
	// fetch client reads identifiers like app.id from the store.
	i.SeedSystemProperties(env)

	if !i.flagBool(env, BootstrapEagerLoadEnabledKey, false) {
		return
	}

	if i.flagBool(env, BootstrapEnabledKey, false) {
		i.deferred.Enable()
		i.Initialize(env)
	}
}

// Initialize builds and installs the bootstrap composite. At most one
// composite with BootstrapSourceName is installed per Environment; a second
// call drains the deferred log sink and returns.
func (i *Initializer) Initialize(env *Environment) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if env.Contains(BootstrapSourceName) {
		// Already initialized; replay anything logged before the logging
		// backend existed.
		i.deferred.Drain()
		return
	}

	namespaces := splitNamespaces(env.GetString(BootstrapNamespacesKey, NamespaceApplication))
	if len(namespaces) == 0 {
		// Blank or delimiter-only lists degrade to the default namespace.
		namespaces = []string{NamespaceApplication}
	}
	i.log.Debug("bootstrap namespaces", "namespaces", strings.Join(namespaces, ","))

	var composite compositeBuilder
	if i.flagBool(env, PropertyNamesCacheEnableKey, false) {
		composite = NewCachedComposite(BootstrapSourceName)
	} else {
		composite = NewComposite(BootstrapSourceName)
	}
	for _, namespace := range namespaces {
		composite.Add(NewNamespaceSource(namespace, i.registry.Get(namespace)))
	}

	place := PlaceFirst
	if !i.flagBool(env, OverrideSystemPropertiesKey, false) {
		place = PlaceAfterSystemEnvironment
	}
	if !env.Install(composite, place) {
		// Lost the race against the other trigger point.
		i.deferred.Drain()
	}
}

// SeedSystemProperties copies the well-known client settings from the
// environment into the process-global store. Keys already set explicitly
// are never overwritten.
func (i *Initializer) SeedSystemProperties(env *Environment) {
	for _, key := range systemPropertyKeys {
		if _, set := i.props.Get(key); set {
			continue
		}
		if value, ok := env.Get(key); ok && value != "" {
			i.props.Set(key, value)
		}
	}
}

// flagBool resolves a boolean flag, letting seeded system properties win
// over the environment, the way the fetch client resolves its own settings.
func (i *Initializer) flagBool(env *Environment, key string, def bool) bool {
	if v, ok := i.props.Get(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return env.GetBool(key, def)
}

// compositeBuilder is satisfied by both composite variants during
// construction.
type compositeBuilder interface {
	PropertySource
	Add(source PropertySource)
}

// splitNamespaces parses a comma-delimited namespace list. Entries are
// trimmed and empty segments dropped. Duplicates are preserved; ordering is
// significant since earlier namespaces win inside the composite.
func splitNamespaces(list string) []string {
	parts := strings.Split(list, ",")
	namespaces := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			namespaces = append(namespaces, part)
		}
	}
	return namespaces
}
