package strategy

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValidationError contains details about validation failures
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// ErrInvalidSchema is returned when the schema version is not supported
var ErrInvalidSchema = errors.New("invalid or unsupported schema version")

// ErrMissingRequiredField is returned when a required field is missing
var ErrMissingRequiredField = errors.New("missing required field")

// SupportedSchemaVersions lists all supported schema versions
var SupportedSchemaVersions = []string{"1.0"}

// ValidTimeframes lists the candle timeframes a descriptor may use
var ValidTimeframes = []string{"1m", "3m", "5m", "15m", "30m", "1h", "2h", "4h", "6h", "8h", "12h", "1d", "3d", "1w"}

// Validate performs comprehensive validation on a descriptor.
// Returns nil if valid, or ValidationErrors with all issues found.
func (d *Descriptor) Validate() error {
	var errs ValidationErrors

	errs = append(errs, d.validateMetadata()...)
	errs = append(errs, d.validateTrading()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (d *Descriptor) validateMetadata() ValidationErrors {
	var errs ValidationErrors

	if d.Metadata.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "metadata.name",
			Message: "strategy name is required",
		})
	}

	if d.Metadata.SchemaVersion == "" {
		errs = append(errs, ValidationError{
			Field:   "metadata.schema_version",
			Message: "schema version is required",
		})
	} else if err := CheckCompatibility(d); err != nil {
		errs = append(errs, ValidationError{
			Field:   "metadata.schema_version",
			Message: err.Error(),
		})
	}

	if d.Class == "" {
		errs = append(errs, ValidationError{
			Field:   "class",
			Message: "class is required",
		})
	} else if !slices.Contains(Builtins(), d.Class) {
		errs = append(errs, ValidationError{
			Field:   "class",
			Message: fmt.Sprintf("unknown class %q, available: %v", d.Class, Builtins()),
		})
	}

	return errs
}

func (d *Descriptor) validateTrading() ValidationErrors {
	var errs ValidationErrors

	if !slices.Contains(ValidTimeframes, d.Timeframe) {
		errs = append(errs, ValidationError{
			Field:   "timeframe",
			Message: fmt.Sprintf("invalid timeframe %q", d.Timeframe),
		})
	}

	if d.Stoploss >= 0 || d.Stoploss < -1 {
		errs = append(errs, ValidationError{
			Field:   "stoploss",
			Message: "stoploss must be between -1 and 0 (exclusive)",
		})
	}

	for minutes, ratio := range d.MinimalROI {
		if n, err := strconv.Atoi(minutes); err != nil || n < 0 {
			errs = append(errs, ValidationError{
				Field:   "minimal_roi",
				Message: fmt.Sprintf("key %q must be a non-negative number of minutes", minutes),
			})
		}
		if ratio < 0 {
			errs = append(errs, ValidationError{
				Field:   "minimal_roi",
				Message: fmt.Sprintf("ratio for %q must not be negative", minutes),
			})
		}
	}

	return errs
}
