// File: bootstrap/source_test.go
package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSource(t *testing.T) {
	source := NewMapSource("test", map[string]string{"a": "1"})

	assert.Equal(t, "test", source.Name())

	value, ok := source.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", value)

	_, ok = source.Get("missing")
	assert.False(t, ok)

	source.Set("b", "2")
	assert.True(t, source.Has("b"))
	assert.Equal(t, []string{"a", "b"}, source.Keys())
}

func TestMapSourceCopiesInput(t *testing.T) {
	values := map[string]string{"a": "1"}
	source := NewMapSource("test", values)

	values["a"] = "mutated"
	value, _ := source.Get("a")
	assert.Equal(t, "1", value)
}

func TestNamespaceSource(t *testing.T) {
	t.Run("DelegatesToProvider", func(t *testing.T) {
		source := NewNamespaceSource("application", StaticProvider{"k": "v"})

		assert.Equal(t, "application", source.Name())
		value, ok := source.Get("k")
		require.True(t, ok)
		assert.Equal(t, "v", value)
		assert.Equal(t, []string{"k"}, source.Keys())
	})

	t.Run("NilProviderDegradesToAbsent", func(t *testing.T) {
		source := NewNamespaceSource("broken", nil)

		_, ok := source.Get("k")
		assert.False(t, ok)
		assert.False(t, source.Has("k"))
		assert.Nil(t, source.Keys())
	})
}

func TestSystemEnvironmentSource(t *testing.T) {
	t.Setenv("APP_ID", "100004458")
	t.Setenv("BOOTSTRAP_TEST_VERBATIM", "verbatim")

	source := SystemEnvironmentSource()
	assert.Equal(t, SystemEnvironmentName, source.Name())

	t.Run("RelaxedDottedLookup", func(t *testing.T) {
		value, ok := source.Get("app.id")
		require.True(t, ok)
		assert.Equal(t, "100004458", value)
	})

	t.Run("DashesTransformToo", func(t *testing.T) {
		value, ok := source.Get("bootstrap-test.verbatim")
		require.True(t, ok)
		assert.Equal(t, "verbatim", value)
	})

	t.Run("VerbatimLookup", func(t *testing.T) {
		value, ok := source.Get("BOOTSTRAP_TEST_VERBATIM")
		require.True(t, ok)
		assert.Equal(t, "verbatim", value)
	})

	t.Run("Absent", func(t *testing.T) {
		_, ok := source.Get("bootstrap.test.definitely.absent")
		assert.False(t, ok)
	})
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "APP_ID", envTransform("app.id"))
	assert.Equal(t, "CONFIG_CACHE_DIR", envTransform("config.cache-dir"))
	assert.Equal(t, "BOOTSTRAP_EAGER_LOAD_ENABLED", envTransform("bootstrap.eager-load.enabled"))
}
