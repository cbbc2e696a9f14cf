package simulation

import "fmt"

// ConfigError reports a missing or invalid simulation configuration value.
// It is returned before any simulation work starts; numeric degenerate cases
// inside the projections are never errors (they resolve to sentinels).
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid simulation config: %s: %s", e.Field, e.Reason)
}

func newConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}
