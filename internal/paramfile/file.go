package paramfile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cast"
)

// Field names of the parameter file
const (
	KeyStrategyName = "strategy_name"
	KeyParams       = "params"
	KeyVersion      = "ft_stratparam_v"
	KeyExportTime   = "export_time"

	// Trial record fields read by ResolvedFromRecord
	KeyParamsDetails      = "params_details"
	KeyParamsNotOptimized = "params_not_optimized"
	KeyResultFileVersion  = "fthypt_fileversion"
)

// Extension is the file extension of parameter files
const Extension = ".json"

const pythonTimeLayout = "2006-01-02 15:04:05.999999-07:00"

// ResolvedParams is the input of an export: the optimizer's parameter
// details and the fixed values of parameters excluded from optimization.
type ResolvedParams struct {
	Details       map[string]any
	NotOptimized  map[string]any
	FormatVersion int
}

// Merged returns Details overlaid with NotOptimized
func (r ResolvedParams) Merged() map[string]any {
	return DeepMerge(r.Details, r.NotOptimized)
}

// File is a parameter file
type File struct {
	StrategyName string
	Params       map[string]any
	Version      int
	ExportTime   time.Time
}

// Space returns the parameters of one space ("buy", "roi", ...) or nil
func (f *File) Space(name string) map[string]any {
	m, _ := f.Params[name].(map[string]any)
	return m
}

// ResolvedFromRecord extracts the export input from a trial record.
// A record without a version field is a legacy record.
func ResolvedFromRecord(record map[string]any) (ResolvedParams, error) {
	resolved := ResolvedParams{FormatVersion: LegacyVersion}

	var err error
	if resolved.Details, err = mapField(record, KeyParamsDetails); err != nil {
		return ResolvedParams{}, err
	}
	if resolved.NotOptimized, err = mapField(record, KeyParamsNotOptimized); err != nil {
		return ResolvedParams{}, err
	}

	for _, key := range []string{KeyVersion, KeyResultFileVersion} {
		raw, ok := record[key]
		if !ok || raw == nil {
			continue
		}
		v, err := cast.ToIntE(raw)
		if err != nil {
			return ResolvedParams{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		resolved.FormatVersion = v
		break
	}
	return resolved, nil
}

func mapField(record map[string]any, key string) (map[string]any, error) {
	raw, ok := record[key]
	if !ok || raw == nil {
		return map[string]any{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a mapping, got %T", key, raw)
	}
	return m, nil
}

// Encode renders f as indented parameter file text
func Encode(f *File) ([]byte, error) {
	doc := Object{
		{Key: KeyStrategyName, Value: f.StrategyName},
		{Key: KeyParams, Value: f.Params},
		{Key: KeyVersion, Value: f.Version},
		{Key: KeyExportTime, Value: f.ExportTime.UTC().Format(time.RFC3339Nano)},
	}
	data, err := MarshalIndent(doc, "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses parameter file text
func Decode(data []byte) (*File, error) {
	doc, err := UnmarshalMap(data)
	if err != nil {
		return nil, err
	}

	f := &File{Version: LegacyVersion}

	if f.StrategyName, err = cast.ToStringE(doc[KeyStrategyName]); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFile, KeyStrategyName, err)
	}

	if raw, ok := doc[KeyParams]; ok && raw != nil {
		params, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a mapping", ErrInvalidFile, KeyParams)
		}
		f.Params = params
	} else {
		f.Params = map[string]any{}
	}

	if raw, ok := doc[KeyVersion]; ok && raw != nil {
		if f.Version, err = cast.ToIntE(raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFile, KeyVersion, err)
		}
	}
	if err := CheckCompatibility(f.Version); err != nil {
		return nil, err
	}

	if raw, ok := doc[KeyExportTime].(string); ok && raw != "" {
		if f.ExportTime, err = parseTime(raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFile, KeyExportTime, err)
		}
	}

	return f, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, pythonTimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Export writes the merged parameters of resolved for strategyName to path,
// stamped with the current UTC time.
func Export(resolved ResolvedParams, strategyName, path string) error {
	f := &File{
		StrategyName: strategyName,
		Params:       resolved.Merged(),
		Version:      FileVersion,
		ExportTime:   time.Now().UTC(),
	}

	data, err := Encode(f)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil { // #nosec G306 -- parameter files are read by other tools
		return fmt.Errorf("failed to write parameter file: %w", err)
	}
	return nil
}

// Load reads a parameter file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is provided by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file: %w", err)
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse parameter file %s: %w", path, err)
	}
	return f, nil
}
