package params

import (
	"errors"
	"fmt"
)

// ErrConfiguration is returned for parameter declarations that can never be valid.
// It is deterministic and caller-fixable; callers should not retry.
var ErrConfiguration = errors.New("invalid parameter configuration")

// ConfigError describes a rejected parameter declaration
type ConfigError struct {
	Parameter string
	Message   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Parameter, e.Message)
}

// Unwrap allows errors.Is(err, ErrConfiguration)
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

func configErrorf(parameter, format string, args ...any) error {
	return &ConfigError{Parameter: parameter, Message: fmt.Sprintf(format, args...)}
}
