// File: bootstrap/middleware_test.go
package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareInitializer(t *testing.T) {
	t.Run("InstallsAtBack", func(t *testing.T) {
		registry := staticRegistry(map[string]StaticProvider{
			"middleware": {"registry.address": "nacos://localhost"},
		})
		env := NewEnvironment(
			NewMapSource("local", map[string]string{
				"registry.address": "local-override",
			}),
		)

		NewMiddlewareInitializer(registry).Initialize(env)

		name := MiddlewareSourcePrefix + NamespaceMiddleware
		require.True(t, env.Contains(name))
		assert.Equal(t, []string{"local", name}, env.Names())

		// Back placement means local configuration still wins.
		value, _ := env.Get("registry.address")
		assert.Equal(t, "local-override", value)
	})

	t.Run("DisabledFlag", func(t *testing.T) {
		registry := staticRegistry(nil)
		env := NewEnvironment(NewMapSource("local", map[string]string{
			MiddlewareDisabledKey: "true",
		}))

		NewMiddlewareInitializer(registry).Initialize(env)
		assert.Len(t, env.Names(), 1)
	})

	t.Run("CustomNamespace", func(t *testing.T) {
		registry := staticRegistry(map[string]StaticProvider{
			"middleware.eu": {"k": "v"},
		})
		props := NewProperties()
		props.Set(MiddlewareNamespaceKey, "middleware.eu")

		env := NewEnvironment()
		NewMiddlewareInitializer(registry).WithProperties(props).Initialize(env)

		require.True(t, env.Contains(MiddlewareSourcePrefix+"middleware.eu"))
		value, _ := env.Get("k")
		assert.Equal(t, "v", value)
	})

	t.Run("Idempotent", func(t *testing.T) {
		registry := staticRegistry(map[string]StaticProvider{
			"middleware": {"k": "v"},
		})
		env := NewEnvironment()

		m := NewMiddlewareInitializer(registry)
		m.Initialize(env)
		m.Initialize(env)
		assert.Len(t, env.Names(), 1)
	})

	t.Run("IndependentFromBootstrapComposite", func(t *testing.T) {
		registry := staticRegistry(map[string]StaticProvider{
			"application": {"k": "app"},
			"middleware":  {"k": "mw"},
		})
		env := NewEnvironment(NewMapSource("local", map[string]string{
			BootstrapEnabledKey: "true",
		}))
		props := NewProperties()

		NewInitializer(registry).WithProperties(props).InitializeContext(env)
		NewMiddlewareInitializer(registry).WithProperties(props).Initialize(env)

		assert.Equal(t,
			[]string{
				BootstrapSourceName,
				"local",
				MiddlewareSourcePrefix + NamespaceMiddleware,
			},
			env.Names())
	})
}

func TestMiddlewareDeferredLogging(t *testing.T) {
	registry := staticRegistry(map[string]StaticProvider{
		"middleware": {"k": "v"},
	})
	env := NewEnvironment()

	m := NewMiddlewareInitializer(registry)
	m.Deferred().Enable()
	m.Initialize(env)

	// Nothing reaches the backend until it exists.
	capture := &captureHandler{}
	assert.Empty(t, capture.Messages())

	m.Deferred().DrainTo(capture)
	assert.Contains(t, capture.Messages(), "reading middleware config")
}

func TestMiddlewareSeeding(t *testing.T) {
	t.Run("ServiceNameFromAppID", func(t *testing.T) {
		registry := staticRegistry(map[string]StaticProvider{
			"middleware": {},
		})
		props := NewProperties()
		props.Set(AppIDKey, "100004458")

		NewMiddlewareInitializer(registry).WithProperties(props).Initialize(NewEnvironment())

		name, ok := props.Get(MiddlewareServiceNameKey)
		require.True(t, ok)
		assert.Equal(t, "100004458", name)
	})

	t.Run("NamespaceServiceNameNotSeeded", func(t *testing.T) {
		registry := staticRegistry(map[string]StaticProvider{
			"middleware": {MiddlewareServiceNameKey: "configured"},
		})
		props := NewProperties()
		props.Set(AppIDKey, "100004458")

		NewMiddlewareInitializer(registry).WithProperties(props).Initialize(NewEnvironment())

		// The namespace already names the service; nothing is derived.
		_, ok := props.Get(MiddlewareServiceNameKey)
		assert.False(t, ok)
	})

	t.Run("ShutdownWaitDefault", func(t *testing.T) {
		registry := staticRegistry(map[string]StaticProvider{
			"middleware": {},
		})
		props := NewProperties()

		NewMiddlewareInitializer(registry).WithProperties(props).Initialize(NewEnvironment())

		wait, ok := props.Get(MiddlewareShutdownWaitKey)
		require.True(t, ok)
		assert.Equal(t, "90s", wait)
	})

	t.Run("ShutdownWaitFromNamespace", func(t *testing.T) {
		registry := staticRegistry(map[string]StaticProvider{
			"middleware": {MiddlewareShutdownWaitKey: "2m"},
		})
		props := NewProperties()

		NewMiddlewareInitializer(registry).WithProperties(props).Initialize(NewEnvironment())

		wait, _ := props.Get(MiddlewareShutdownWaitKey)
		assert.Equal(t, "2m", wait)
	})

	t.Run("NeverOverwritesExplicitSettings", func(t *testing.T) {
		registry := staticRegistry(map[string]StaticProvider{
			"middleware": {MiddlewareShutdownWaitKey: "2m"},
		})
		props := NewProperties()
		props.Set(MiddlewareShutdownWaitKey, "45s")

		NewMiddlewareInitializer(registry).WithProperties(props).Initialize(NewEnvironment())

		wait, _ := props.Get(MiddlewareShutdownWaitKey)
		assert.Equal(t, "45s", wait)
	})

	t.Run("MissingNamespaceDefaults", func(t *testing.T) {
		registry := staticRegistry(nil) // every namespace absent
		props := NewProperties()

		NewMiddlewareInitializer(registry).WithProperties(props).Initialize(NewEnvironment())

		wait, ok := props.Get(MiddlewareShutdownWaitKey)
		require.True(t, ok)
		assert.Equal(t, "90s", wait)
	})
}
