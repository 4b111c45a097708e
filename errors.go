// File: bootstrap/errors.go
package bootstrap

import "errors"

var (
	// ErrNamespaceNotFound indicates that no cache file exists for a
	// namespace. Lookups against such a namespace resolve as absent.
	ErrNamespaceNotFound = errors.New("namespace not found")

	// ErrUnknownFormat indicates a namespace cache file could not be parsed
	// in any supported format (TOML, YAML, JSON).
	ErrUnknownFormat = errors.New("unknown configuration format")
)
