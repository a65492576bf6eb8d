package paramfile

import (
	"errors"
	"fmt"
)

const (
	// FileVersion is the format version written into exported parameter files
	FileVersion = 2

	// MinExportVersion is the lowest result format that carries enough
	// information to be exported
	MinExportVersion = 2

	// LegacyVersion is assumed when a record carries no version field
	LegacyVersion = 1
)

// ErrUnsupportedVersion is returned for files written by a newer format
var ErrUnsupportedVersion = errors.New("unsupported parameter file version")

// Exportable reports whether results of format version v may be exported
func Exportable(v int) bool {
	return v >= MinExportVersion
}

// CheckCompatibility returns an error when a file of version v can not be read
func CheckCompatibility(v int) error {
	if v < 0 {
		return fmt.Errorf("invalid format version: %d", v)
	}
	if v > FileVersion {
		return fmt.Errorf("%w: file requires version %d, but only %d is supported",
			ErrUnsupportedVersion, v, FileVersion)
	}
	return nil
}
