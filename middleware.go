// File: bootstrap/middleware.go
package bootstrap

import "log/slog"

// Middleware integration names and keys.
const (
	// MiddlewareSourcePrefix prefixes the chain name; the namespace is
	// appended so differently-configured integrations stay independent.
	MiddlewareSourcePrefix = "MiddlewarePropertySources#"

	// NamespaceMiddleware is the default middleware namespace.
	NamespaceMiddleware = "middleware"

	MiddlewareDisabledKey     = "middleware.bootstrap.disabled"
	MiddlewareNamespaceKey    = "middleware.config.namespace"
	MiddlewareServiceNameKey  = "middleware.service.name"
	MiddlewareShutdownWaitKey = "middleware.shutdown.wait"

	defaultShutdownWait = "90s"
)

// MiddlewareInitializer installs an independent, separately-named chain for
// a middleware subsystem. Unlike the bootstrap composite it is appended at
// the back of the resolution order, so every local chain can override it.
// It additionally seeds the middleware service name and shutdown wait into
// the process-global store when they are not already set.
type MiddlewareInitializer struct {
	registry *Registry
	props    *Properties
	deferred *DeferredHandler
	log      *slog.Logger
}

// NewMiddlewareInitializer creates the integration over the given registry,
// with a fresh properties store and a logger backed by its own deferred
// sink, so records emitted before the logging backend exists can be buffered
// the same way the bootstrap Initializer buffers its own.
func NewMiddlewareInitializer(registry *Registry) *MiddlewareInitializer {
	deferred := NewDeferredHandler(nil)
	return &MiddlewareInitializer{
		registry: registry,
		props:    NewProperties(),
		deferred: deferred,
		log:      slog.New(deferred),
	}
}

// Deferred returns the buffered log sink.
func (m *MiddlewareInitializer) Deferred() *DeferredHandler { return m.deferred }

// WithProperties substitutes the process-global settings store. Share the
// store with the bootstrap Initializer so app.id seeding carries over.
func (m *MiddlewareInitializer) WithProperties(props *Properties) *MiddlewareInitializer {
	if props != nil {
		m.props = props
	}
	return m
}

// WithLogger substitutes the logger. Records logged through a logger that
// does not route into Deferred() are not buffered.
func (m *MiddlewareInitializer) WithLogger(log *slog.Logger) *MiddlewareInitializer {
	if log != nil {
		m.log = log
	}
	return m
}

// Initialize installs the middleware chain unless disabled or already
// present. The namespace is a single name, not a list, taken from the
// process-global store with NamespaceMiddleware as fallback.
func (m *MiddlewareInitializer) Initialize(env *Environment) {
	if env.GetBool(MiddlewareDisabledKey, false) {
		m.log.Debug("middleware remote config is disabled")
		return
	}

	namespace := NamespaceMiddleware
	if v, ok := m.props.Get(MiddlewareNamespaceKey); ok && v != "" {
		namespace = v
	}

	name := MiddlewareSourcePrefix + namespace
	if env.Contains(name) {
		return
	}

	m.log.Info("reading middleware config", "namespace", namespace)
	provider := m.registry.Get(namespace)

	// Derive the service name from the application id when the namespace
	// does not configure one. A missing namespace degrades the same way: no
	// value, fall back, warn.
	if _, ok := provider.GetProperty(MiddlewareServiceNameKey); !ok {
		if appID, ok := m.props.Get(AppIDKey); ok && appID != "" {
			m.log.Info("using application id as middleware service name",
				"app.id", appID)
			m.props.SetIfAbsent(MiddlewareServiceNameKey, appID)
		} else {
			m.log.Warn("middleware service name is not set")
		}
	}

	wait, ok := provider.GetProperty(MiddlewareShutdownWaitKey)
	if !ok || wait == "" {
		wait = defaultShutdownWait
	}
	m.props.SetIfAbsent(MiddlewareShutdownWaitKey, wait)

	composite := NewComposite(name)
	composite.Add(NewNamespaceSource(namespace, provider))
	env.Install(composite, PlaceLast)
}
