// File: bootstrap/helper.go
package bootstrap

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flattenProperties converts a nested map[string]any (as produced by the
// TOML/YAML/JSON parsers) to a flat map of dot-notation paths to string
// values. Slices are joined with commas so that Scan's slice decode hook can
// split them back apart.
func flattenProperties(nested map[string]any, prefix string) map[string]string {
	flat := make(map[string]string)

	for key, value := range nested {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		switch v := value.(type) {
		case map[string]any:
			for subPath, subValue := range flattenProperties(v, path) {
				flat[subPath] = subValue
			}
		case map[any]any:
			// Older YAML parse trees key tables by any.
			converted := make(map[string]any, len(v))
			for k, sub := range v {
				converted[fmt.Sprintf("%v", k)] = sub
			}
			for subPath, subValue := range flattenProperties(converted, path) {
				flat[subPath] = subValue
			}
		case []any:
			parts := make([]string, len(v))
			for i, elem := range v {
				parts[i] = formatValue(elem)
			}
			flat[path] = strings.Join(parts, ",")
		default:
			flat[path] = formatValue(value)
		}
	}

	return flat
}

// formatValue renders a parsed leaf value as its property string form.
func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// It creates intermediate maps if they don't exist. If a segment exists but
// is not a map, it is overwritten by a new map.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		next, exists := current[segment]
		if !exists {
			newMap := make(map[string]any)
			current[segment] = newMap
			current = newMap
			continue
		}

		if nextMap, isMap := next.(map[string]any); isMap {
			current = nextMap
		} else {
			newMap := make(map[string]any)
			current[segment] = newMap
			current = newMap
		}
	}

	current[segments[len(segments)-1]] = value
}

// navigateToPath walks a nested map along a dot-notation base path. It
// returns nil when the path does not exist or crosses a non-map value.
func navigateToPath(nested map[string]any, basePath string) any {
	basePath = strings.TrimSuffix(basePath, ".")
	if basePath == "" {
		return nested
	}

	current := any(nested)
	for _, segment := range strings.Split(basePath, ".") {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}

	return current
}

// envTransform maps a property path to its environment variable form:
// dots and dashes to underscores, uppercased ("app.id" -> "APP_ID").
func envTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ReplaceAll(env, "-", "_")
	return strings.ToUpper(env)
}
