package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Configuration validation failed with %d error(s):\n\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	sb.WriteString("\nPlease fix the above errors and try again.\n")
	return sb.String()
}

// Validate performs comprehensive configuration validation
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateApp()...)
	errors = append(errors, c.validateHyperopt()...)
	errors = append(errors, c.validateMonitoring()...)

	if len(errors) > 0 {
		return errors
	}

	return nil
}

func (c *Config) validateApp() ValidationErrors {
	var errors ValidationErrors

	if c.App.LogLevel == "" {
		errors = append(errors, ValidationError{
			Field:   "app.log_level",
			Message: "Log level is required (debug, info, warn, error)",
		})
	} else if _, err := zerolog.ParseLevel(strings.ToLower(c.App.LogLevel)); err != nil {
		errors = append(errors, ValidationError{
			Field:   "app.log_level",
			Message: fmt.Sprintf("Invalid log level '%s'", c.App.LogLevel),
		})
	}

	validFormats := []string{"json", "console"}
	if !slices.Contains(validFormats, c.App.LogFormat) {
		errors = append(errors, ValidationError{
			Field:   "app.log_format",
			Message: fmt.Sprintf("Invalid log format '%s'. Must be one of: %v", c.App.LogFormat, validFormats),
		})
	}

	return errors
}

func (c *Config) validateHyperopt() ValidationErrors {
	var errors ValidationErrors

	if len(c.Spaces) == 0 {
		errors = append(errors, ValidationError{
			Field:   "spaces",
			Message: "At least one space is required",
		})
	}
	for _, s := range c.Spaces {
		if !slices.Contains(KnownSpaces, s) {
			errors = append(errors, ValidationError{
				Field:   "spaces",
				Message: fmt.Sprintf("Unknown space '%s'. Must be one of: %v", s, KnownSpaces),
			})
		}
	}

	if c.Optimizer == "" {
		errors = append(errors, ValidationError{
			Field:   "optimizer",
			Message: "Optimizer backend is required",
		})
	}

	if c.StrategyPath == "" {
		errors = append(errors, ValidationError{
			Field:   "strategy_path",
			Message: "Strategy path is required",
		})
	}

	return errors
}

func (c *Config) validateMonitoring() ValidationErrors {
	var errors ValidationErrors

	if c.Monitoring.PrometheusPort < 0 || c.Monitoring.PrometheusPort > 65535 {
		errors = append(errors, ValidationError{
			Field:   "monitoring.prometheus_port",
			Message: fmt.Sprintf("Invalid port %d. Must be between 0 and 65535", c.Monitoring.PrometheusPort),
		})
	}

	return errors
}
