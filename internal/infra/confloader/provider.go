// Package confloader provides configuration loading mechanism.
package confloader

import "errors"

// errMapBytes signals that the map-backed source has no serialized form.
var errMapBytes = errors.New("confloader: map source has no byte form, use Read")

// mapSource adapts an in-memory map to koanf's Provider interface. CLI
// flag overrides and tests feed values through it without touching files
// or the environment.
type mapSource map[string]any

// ReadBytes is unsupported; LoadMap loads with a nil parser, which makes
// koanf call Read instead.
func (m mapSource) ReadBytes() ([]byte, error) {
	return nil, errMapBytes
}

// Read returns the underlying map.
func (m mapSource) Read() (map[string]any, error) {
	return m, nil
}
