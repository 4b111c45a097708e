// File: bootstrap/helper_test.go
package bootstrap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenProperties(t *testing.T) {
	nested := map[string]any{
		"server": map[string]any{
			"host": "localhost",
			"port": int64(8080),
			"tls": map[string]any{
				"enabled": true,
			},
		},
		"ratio": 0.25,
		"tags":  []any{"a", "b", int64(3)},
		"empty": nil,
	}

	flat := flattenProperties(nested, "")

	assert.Equal(t, map[string]string{
		"server.host":        "localhost",
		"server.port":        "8080",
		"server.tls.enabled": "true",
		"ratio":              "0.25",
		"tags":               "a,b,3",
		"empty":              "",
	}, flat)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "text", formatValue("text"))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t, "42", formatValue(42))
	assert.Equal(t, "42", formatValue(int64(42)))
	assert.Equal(t, "0.5", formatValue(0.5))
	assert.Equal(t, "123.456", formatValue(json.Number("123.456")))
	assert.Equal(t, "", formatValue(nil))
}

func TestSetNestedValue(t *testing.T) {
	nested := make(map[string]any)
	setNestedValue(nested, "server.host", "localhost")
	setNestedValue(nested, "server.port", "8080")
	setNestedValue(nested, "debug", "true")

	assert.Equal(t, map[string]any{
		"server": map[string]any{
			"host": "localhost",
			"port": "8080",
		},
		"debug": "true",
	}, nested)
}

func TestNavigateToPath(t *testing.T) {
	nested := map[string]any{
		"server": map[string]any{
			"tls": map[string]any{"enabled": "true"},
		},
	}

	assert.Equal(t, nested, navigateToPath(nested, ""))
	assert.Equal(t, map[string]any{"enabled": "true"}, navigateToPath(nested, "server.tls"))
	assert.Equal(t, "true", navigateToPath(nested, "server.tls.enabled"))
	assert.Nil(t, navigateToPath(nested, "server.missing"))
	assert.Nil(t, navigateToPath(nested, "server.tls.enabled.deeper"))
}
