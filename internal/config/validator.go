package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// ValidatorOptions contains options for startup validation
type ValidatorOptions struct {
	VerifyStrategyPath bool // strategy_path must be an existing directory
	VerifyResultsDir   bool // hyperopt_results_dir must be an existing directory
}

// DefaultValidatorOptions returns default validator options for startup
func DefaultValidatorOptions() ValidatorOptions {
	return ValidatorOptions{
		VerifyStrategyPath: true,
		VerifyResultsDir:   false,
	}
}

// Validator checks the environment a command is about to run in
type Validator struct {
	config  *Config
	options ValidatorOptions
}

// NewValidator creates a new configuration validator
func NewValidator(config *Config, options ValidatorOptions) *Validator {
	return &Validator{
		config:  config,
		options: options,
	}
}

// ValidateStartup runs the configured checks and reports all failures at once
func (v *Validator) ValidateStartup() error {
	var errors ValidationErrors

	if v.options.VerifyStrategyPath {
		if err := checkDir(v.config.StrategyPath); err != nil {
			errors = append(errors, ValidationError{Field: "strategy_path", Message: err.Error()})
		}
	}

	if v.options.VerifyResultsDir {
		if err := checkDir(v.config.HyperoptResultsDir); err != nil {
			errors = append(errors, ValidationError{Field: "hyperopt_results_dir", Message: err.Error()})
		}
	}

	if len(errors) > 0 {
		return errors
	}

	log.Debug().
		Str("strategy_path", v.config.StrategyPath).
		Str("hyperopt_results_dir", v.config.HyperoptResultsDir).
		Msg("Configuration validation completed successfully")
	return nil
}

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
