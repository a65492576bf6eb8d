// Package params defines strategy parameters that can be tuned by hyperopt.
//
// A strategy declares parameters as struct fields:
//
//	type MyStrategy struct {
//		BuyRSI     *params.IntParameter
//		SellTarget *params.DecimalParameter
//	}
//
// The parameter name is always the snake_case form of the field name
// (BuyRSI -> "buy_rsi") and is bound by Detect. When no explicit space is
// given, the category is inferred from the name prefix ("buy_", "sell_", ...).
package params

import (
	"fmt"

	"github.com/ajitpratap0/cryptogpt/pkg/phase"
	"github.com/ajitpratap0/cryptogpt/pkg/space"
)

// Parameter is a strategy value that can be optimized by hyperopt.
// The set of implementations is closed to the variants of this package.
type Parameter interface {
	// Name is the snake_case field name, empty until bound by Detect
	Name() string
	// Category is the space the parameter belongs to ("buy", "sell", ...)
	Category() string
	SetCategory(category string)

	Default() any
	Value() any
	// SetValue coerces v into the parameter type and stores it
	SetValue(v any) error

	// InSpace reports whether the parameter was registered into the active search space
	InSpace() bool
	SetInSpace(inSpace bool)
	// Optimize reports whether the parameter takes part in the search
	Optimize() bool
	// Load reports whether a persisted value may overwrite the current one
	Load() bool

	// CanOptimize reports whether the parameter is tunable in phase p
	CanOptimize(p phase.Phase) bool
	// Space returns the search-space descriptor for this parameter
	Space(name string) (space.Dimension, error)

	String() string

	base() *baseParameter
}

// Option configures the shared parameter settings
type Option func(*settings)

type settings struct {
	category     string
	optimize     bool
	load         bool
	spaceOptions map[string]any
}

// WithSpace sets the parameter category, e.g. "buy" or "sell".
// Optional when the field name carries the category prefix.
func WithSpace(category string) Option {
	return func(s *settings) { s.category = category }
}

// WithOptimize includes or excludes the parameter from optimization (default true)
func WithOptimize(optimize bool) Option {
	return func(s *settings) { s.optimize = optimize }
}

// WithLoad allows or forbids loading the value from a parameter file (default true)
func WithLoad(load bool) Option {
	return func(s *settings) { s.load = load }
}

// WithSpaceOption passes an extra option through to the search-space descriptor.
// The key "name" is reserved: names always come from the field name.
func WithSpaceOption(key string, value any) Option {
	return func(s *settings) {
		if s.spaceOptions == nil {
			s.spaceOptions = make(map[string]any)
		}
		s.spaceOptions[key] = value
	}
}

type baseParameter struct {
	kind         string
	name         string
	category     string
	optimize     bool
	load         bool
	inSpace      bool
	spaceOptions map[string]any
}

func newBase(kind string, opts []Option) (baseParameter, error) {
	s := settings{optimize: true, load: true}
	for _, opt := range opts {
		opt(&s)
	}

	if _, ok := s.spaceOptions["name"]; ok {
		return baseParameter{}, configErrorf(kind,
			"name is determined by the parameter field name and can not be specified manually")
	}

	return baseParameter{
		kind:         kind,
		category:     s.category,
		optimize:     s.optimize,
		load:         s.load,
		spaceOptions: s.spaceOptions,
	}, nil
}

func (b *baseParameter) base() *baseParameter { return b }

func (b *baseParameter) bind(name string) { b.name = name }

func (b *baseParameter) Name() string                { return b.name }
func (b *baseParameter) Category() string            { return b.category }
func (b *baseParameter) SetCategory(category string) { b.category = category }
func (b *baseParameter) InSpace() bool               { return b.inSpace }
func (b *baseParameter) SetInSpace(inSpace bool)     { b.inSpace = inSpace }
func (b *baseParameter) Optimize() bool              { return b.optimize }
func (b *baseParameter) Load() bool                  { return b.load }

// CanOptimize is true outside the Optimize phase only. During Indicators the
// whole range is precomputed; during Optimize the trial value is used.
func (b *baseParameter) CanOptimize(p phase.Phase) bool {
	return b.inSpace && b.optimize && p != phase.Optimize
}

func (b *baseParameter) describe(value any) string {
	return fmt.Sprintf("%s(%v)", b.kind, value)
}
