package strategy

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// parseSchemaVersion accepts "1.0" style versions as well as full semver
func parseSchemaVersion(v string) (*semver.Version, error) {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		// Try to handle simple version strings
		parsed, err = semver.NewVersion(v + ".0")
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSchema, v)
		}
	}
	return parsed, nil
}

// CheckCompatibility checks if a descriptor can be read by this version
func CheckCompatibility(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("descriptor cannot be nil")
	}

	if d.Metadata.SchemaVersion == "" {
		return fmt.Errorf("%w: schema_version", ErrMissingRequiredField)
	}

	current, err := parseSchemaVersion(d.Metadata.SchemaVersion)
	if err != nil {
		return err
	}

	target, err := parseSchemaVersion(SchemaVersion)
	if err != nil {
		return fmt.Errorf("invalid target schema version: %s", SchemaVersion)
	}

	// Version is newer than supported
	if current.GreaterThan(target) {
		return fmt.Errorf("%w: descriptor requires schema version %s, but only %s is supported",
			ErrInvalidSchema, d.Metadata.SchemaVersion, SchemaVersion)
	}

	if current.Major() != target.Major() {
		return fmt.Errorf("%w: no migration path from version %s to %s",
			ErrInvalidSchema, d.Metadata.SchemaVersion, SchemaVersion)
	}

	return nil
}

// CompareVersions compares two version strings
// Returns: -1 if a < b, 0 if a == b, 1 if a > b
func CompareVersions(a, b string) (int, error) {
	va, err := parseSchemaVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := parseSchemaVersion(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}
