package wire

import (
	"errors"
	"fmt"
)

// ErrNoSourceObjects is returned when a rebuild finds nothing to build from.
var ErrNoSourceObjects = errors.New("no source objects qualify for wire generation")

var errNoMesh = errors.New("object has no mesh data")

// ConfigError reports a configuration problem that stops a rebuild.
// The previously published mesh is left untouched.
type ConfigError struct {
	Object string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error in %q: %v", e.Object, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
