package fuzzy

import (
	"fmt"
)

// ConfigError reports a malformed variable, rule, or inference input.
// It is fatal at construction time and is never produced by a well-formed
// rule set at inference time.
type ConfigError struct {
	reason string
}

func (e *ConfigError) Error() string {
	return "invalid fuzzy configuration: " + e.reason
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{reason: fmt.Sprintf(format, args...)}
}
