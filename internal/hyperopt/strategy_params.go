package hyperopt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/ajitpratap0/cryptogpt/internal/config"
	"github.com/ajitpratap0/cryptogpt/internal/metrics"
	"github.com/ajitpratap0/cryptogpt/internal/paramfile"
	"github.com/ajitpratap0/cryptogpt/pkg/params"
)

// ErrInvalidParamFile is returned when a parameter file belongs to another strategy
var ErrInvalidParamFile = errors.New("invalid parameter file provided")

// ParamsFromFile loads the parameter file next to the strategy at location.
// A missing file yields empty parameters.
func ParamsFromFile(strategyName, location string) (map[string]any, error) {
	path := ParamFilename(location)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("strategy", strategyName).Msg("Strategy parameter file not found")
		return map[string]any{}, nil
	}

	f, err := paramfile.Load(path)
	metrics.RecordParamLoad(err)
	if err != nil {
		return nil, err
	}
	if f.StrategyName != strategyName {
		return nil, fmt.Errorf("%w: %s belongs to %q, not %q", ErrInvalidParamFile, path, f.StrategyName, strategyName)
	}

	log.Info().Str("strategy", strategyName).Str("path", path).Msg("Loading parameters from file")
	return f.Params, nil
}

// LoadHyperParams binds the parameters of strat and assigns their values.
//
// For every space, values from fileParams override those of defaults (both
// keyed by space, then parameter name). Parameters with Load() disabled keep
// their default. When hyperopt is true a parameter joins the search space if
// its space is optimized under cfg.
func LoadHyperParams(cfg *config.Config, strat any, fileParams, defaults map[string]any, hyperopt bool) error {
	bySpace, err := params.DetectAll(strat)
	if err != nil {
		return err
	}

	for _, space := range sortedKeys(bySpace) {
		values := paramfile.DeepMerge(section(defaults, space), section(fileParams, space))
		if len(values) == 0 {
			log.Info().Str("space", space).Msg("No params found, using default values")
		}

		for _, n := range bySpace[space] {
			p := n.Parameter
			p.SetInSpace(hyperopt && HasSpace(cfg, space))
			if p.Category() == "" {
				p.SetCategory(space)
			}

			raw, ok := values[n.Name]
			switch {
			case !ok:
				log.Info().Str("parameter", n.Name).Interface("value", p.Value()).Msg("Strategy parameter (default)")
			case !p.Load():
				log.Warn().Str("parameter", n.Name).Interface("value", p.Value()).
					Msg("Parameter exists, but is disabled. Default value used")
			default:
				if err := p.SetValue(raw); err != nil {
					return fmt.Errorf("failed to load parameter %s: %w", n.Name, err)
				}
				log.Info().Str("parameter", n.Name).Interface("value", p.Value()).Msg("Strategy parameter")
			}
		}
	}
	return nil
}

// NoOptimizeParams collects, per space, the values of parameters that do not
// take part in the search. It must run after LoadHyperParams.
func NoOptimizeParams(strat any) (map[string]any, error) {
	bySpace, err := params.DetectAll(strat)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any)
	for space, found := range bySpace {
		fixed := make(map[string]any)
		for _, n := range found {
			if !n.Parameter.Optimize() || !n.Parameter.InSpace() {
				fixed[n.Name] = n.Parameter.Value()
			}
		}
		if len(fixed) > 0 {
			out[space] = fixed
		}
	}
	return out, nil
}

func section(m map[string]any, space string) map[string]any {
	s, _ := m[space].(map[string]any)
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
