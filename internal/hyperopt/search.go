package hyperopt

import (
	"fmt"

	"github.com/ajitpratap0/cryptogpt/internal/config"
	"github.com/ajitpratap0/cryptogpt/pkg/params"
	"github.com/ajitpratap0/cryptogpt/pkg/space"
)

// Dimensions returns the search space of strat: one dimension per
// optimizable parameter of every space optimized under cfg.
func Dimensions(cfg *config.Config, strat any) ([]space.Dimension, error) {
	bySpace, err := params.DetectAll(strat)
	if err != nil {
		return nil, err
	}

	var dims []space.Dimension
	for _, name := range sortedKeys(bySpace) {
		if !HasSpace(cfg, name) {
			continue
		}
		for _, n := range bySpace[name] {
			if !n.Parameter.Optimize() {
				continue
			}
			dim, err := n.Parameter.Space(n.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to build dimension %s: %w", n.Name, err)
			}
			dims = append(dims, dim)
		}
	}
	return dims, nil
}

// Ask draws one trial from the backend configured in cfg.Optimizer
func Ask(cfg *config.Config, strat any) (map[string]any, error) {
	backend, err := space.Lookup(cfg.Optimizer)
	if err != nil {
		return nil, err
	}
	dims, err := Dimensions(cfg, strat)
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		return map[string]any{}, nil
	}
	return backend.Ask(dims)
}

// ApplyTrial assigns trial values to the parameters of strat by name
func ApplyTrial(strat any, trial map[string]any) error {
	bySpace, err := params.DetectAll(strat)
	if err != nil {
		return err
	}
	for _, found := range bySpace {
		for _, n := range found {
			v, ok := trial[n.Name]
			if !ok {
				continue
			}
			if err := n.Parameter.SetValue(v); err != nil {
				return fmt.Errorf("failed to apply %s: %w", n.Name, err)
			}
		}
	}
	return nil
}
