// Package hyperopt connects optimization results to strategies: it decides
// which spaces are optimized, exports the best parameters next to the
// strategy and loads them back into parameter fields.
package hyperopt

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ajitpratap0/cryptogpt/internal/config"
	"github.com/ajitpratap0/cryptogpt/internal/metrics"
	"github.com/ajitpratap0/cryptogpt/internal/paramfile"
	"github.com/ajitpratap0/cryptogpt/internal/strategy"
)

// Resolver lists the strategies available under a configuration
type Resolver interface {
	SearchAllObjects(cfg *config.Config, enumFailed, recursive bool) ([]strategy.Object, error)
}

// HasSpace reports whether space is optimized under cfg. The trailing,
// protection and trades spaces must be selected explicitly or through "all";
// every other space is also selected by "default".
func HasSpace(cfg *config.Config, space string) bool {
	switch space {
	case config.SpaceTrailing, config.SpaceProtection, config.SpaceTrades:
		return cfg.HasSpaceListed(space) || cfg.HasSpaceListed(config.SpaceAll)
	default:
		return cfg.HasSpaceListed(space) ||
			cfg.HasSpaceListed(config.SpaceAll) ||
			cfg.HasSpaceListed(config.SpaceDefault)
	}
}

// StrategyFilename returns the location of the first strategy named
// strategyName, or "" when there is none.
func StrategyFilename(cfg *config.Config, r Resolver, strategyName string) (string, error) {
	objects, err := r.SearchAllObjects(cfg, false, cfg.RecursiveStrategySearch)
	if err != nil {
		return "", fmt.Errorf("failed to list strategies: %w", err)
	}
	for _, obj := range objects {
		if obj.Name == strategyName {
			return obj.Location, nil
		}
	}
	return "", nil
}

// ParamFilename returns the parameter file belonging to a strategy location
func ParamFilename(location string) string {
	return strings.TrimSuffix(location, filepath.Ext(location)) + paramfile.Extension
}

// TryExportParams writes the parameter file of strategyName next to the
// strategy when resolved comes from a current result format and export is
// enabled. A strategy that can not be located is logged and skipped.
// It returns the written path, or "" when nothing was written.
func TryExportParams(cfg *config.Config, r Resolver, strategyName string, resolved paramfile.ResolvedParams) (string, error) {
	if !paramfile.Exportable(resolved.FormatVersion) || cfg.DisableParamExport {
		log.Debug().
			Str("strategy", strategyName).
			Int("format_version", resolved.FormatVersion).
			Bool("disabled", cfg.DisableParamExport).
			Msg("Skipping parameter export")
		metrics.RecordParamExport(metrics.StatusSkipped)
		return "", nil
	}

	location, err := StrategyFilename(cfg, r, strategyName)
	if err != nil {
		metrics.RecordParamExport(metrics.StatusFailure)
		return "", err
	}
	if location == "" {
		log.Warn().Str("strategy", strategyName).Msg("Strategy not found, not exporting parameter file.")
		metrics.RecordParamExport(metrics.StatusNotFound)
		return "", nil
	}

	path := ParamFilename(location)
	if err := paramfile.Export(resolved, strategyName, path); err != nil {
		metrics.RecordParamExport(metrics.StatusFailure)
		return "", fmt.Errorf("failed to export parameters for %s: %w", strategyName, err)
	}

	log.Info().Str("strategy", strategyName).Str("path", path).Msg("Dumping parameters to file")
	metrics.RecordParamExport(metrics.StatusSuccess)
	return path, nil
}
