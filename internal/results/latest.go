package results

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/cast"

	"github.com/ajitpratap0/cryptogpt/internal/paramfile"
)

const (
	// LastResultFile records the name of the most recent result log
	LastResultFile = ".last_result.json"

	// Extension of result logs
	Extension = ".fthypt"

	keyLatest = "latest_hyperopt"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// RunFilename names the result log of a run started at t
func RunFilename(strategyName string, t time.Time) string {
	name := unsafeName.ReplaceAllString(strategyName, "_")
	return fmt.Sprintf("strategy_%s_%s%s", name, t.UTC().Format("2006-01-02_15-04-05"), Extension)
}

// WriteLatest points the latest-result file in dir at filename
func WriteLatest(dir, filename string) error {
	data, err := paramfile.MarshalIndent(map[string]any{keyLatest: filepath.Base(filename)}, "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, LastResultFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", LastResultFile, err)
	}
	return nil
}

// LatestFile returns the path of the most recent result log in dir
func LatestFile(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, LastResultFile)) // #nosec G304 -- fixed name inside dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s not found in %s", ErrNoResults, LastResultFile, dir)
		}
		return "", fmt.Errorf("failed to read %s: %w", LastResultFile, err)
	}

	doc, err := paramfile.UnmarshalMap(data)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", LastResultFile, err)
	}
	name, err := cast.ToStringE(doc[keyLatest])
	if err != nil || name == "" {
		return "", fmt.Errorf("%w: %s has no %s entry", ErrNoResults, LastResultFile, keyLatest)
	}
	return filepath.Join(dir, name), nil
}
