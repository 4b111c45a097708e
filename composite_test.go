// File: bootstrap/composite_test.go
package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositePrecedence(t *testing.T) {
	t.Run("FirstAddedWins", func(t *testing.T) {
		composite := NewComposite("test")
		composite.Add(NewNamespaceSource("a", StaticProvider{"k": "from-a"}))
		composite.Add(NewNamespaceSource("b", StaticProvider{"k": "from-b"}))

		value, ok := composite.Get("k")
		require.True(t, ok)
		assert.Equal(t, "from-a", value)
	})

	t.Run("FallsThroughToLaterSources", func(t *testing.T) {
		composite := NewComposite("test")
		composite.Add(NewNamespaceSource("a", StaticProvider{"only-a": "1"}))
		composite.Add(NewNamespaceSource("b", StaticProvider{"only-b": "2"}))

		value, ok := composite.Get("only-b")
		require.True(t, ok)
		assert.Equal(t, "2", value)

		_, ok = composite.Get("missing")
		assert.False(t, ok)
	})

	t.Run("EmptyComposite", func(t *testing.T) {
		composite := NewComposite("empty")
		_, ok := composite.Get("anything")
		assert.False(t, ok)
		assert.False(t, composite.Has("anything"))
		assert.Empty(t, composite.Keys())
	})

	t.Run("NilProviderIsAbsent", func(t *testing.T) {
		composite := NewComposite("test")
		composite.Add(NewNamespaceSource("broken", nil))
		composite.Add(NewNamespaceSource("ok", StaticProvider{"k": "v"}))

		value, ok := composite.Get("k")
		require.True(t, ok)
		assert.Equal(t, "v", value)
	})
}

func TestCompositeKeys(t *testing.T) {
	composite := NewComposite("test")
	composite.Add(NewNamespaceSource("a", StaticProvider{"x": "1", "y": "a-y"}))
	composite.Add(NewNamespaceSource("b", StaticProvider{"y": "b-y", "z": "3"}))

	assert.ElementsMatch(t, []string{"x", "y", "z"}, composite.Keys())
}

func TestCachedComposite(t *testing.T) {
	t.Run("KeyUnionRebuiltOnAdd", func(t *testing.T) {
		composite := NewCachedComposite("test")
		composite.Add(NewNamespaceSource("a", StaticProvider{"x": "1", "y": "a-y"}))
		assert.ElementsMatch(t, []string{"x", "y"}, composite.Keys())

		composite.Add(NewNamespaceSource("b", StaticProvider{"y": "b-y", "z": "3"}))
		assert.ElementsMatch(t, []string{"x", "y", "z"}, composite.Keys())

		assert.True(t, composite.Has("z"))
		assert.False(t, composite.Has("w"))
	})

	t.Run("ValueLookupsStayLive", func(t *testing.T) {
		composite := NewCachedComposite("test")
		composite.Add(NewNamespaceSource("a", StaticProvider{"x": "1", "y": "a-y"}))
		composite.Add(NewNamespaceSource("b", StaticProvider{"y": "b-y", "z": "3"}))

		// The cache answers existence; values must come from the first
		// source that has the key.
		value, ok := composite.Get("y")
		require.True(t, ok)
		assert.Equal(t, "a-y", value)
	})

	t.Run("DynamicProviderUpdatesVisible", func(t *testing.T) {
		dynamic := NewMapSource("dynamic", map[string]string{"k": "old"})
		composite := NewCachedComposite("test")
		composite.Add(dynamic)

		dynamic.Set("k", "new")
		value, ok := composite.Get("k")
		require.True(t, ok)
		assert.Equal(t, "new", value)
	})
}
