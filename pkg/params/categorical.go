package params

import (
	"fmt"
	"reflect"

	"github.com/spf13/cast"

	"github.com/ajitpratap0/cryptogpt/pkg/space"
)

// CategoricalParameter chooses one of a fixed set of values
type CategoricalParameter struct {
	baseParameter
	categories []any
	def        any
	value      any
}

// NewCategoricalParameter creates a categorical parameter with at least two categories
func NewCategoricalParameter(categories []any, def any, opts ...Option) (*CategoricalParameter, error) {
	b, err := newBase("CategoricalParameter", opts)
	if err != nil {
		return nil, err
	}
	return newCategorical(b, categories, def)
}

func newCategorical(b baseParameter, categories []any, def any) (*CategoricalParameter, error) {
	if len(categories) < 2 {
		return nil, configErrorf(b.kind, "space must be [a, b, ...] (at least 2 categories)")
	}
	choices := make([]any, len(categories))
	copy(choices, categories)
	return &CategoricalParameter{baseParameter: b, categories: choices, def: def, value: def}, nil
}

// Categories returns a copy of the allowed values
func (p *CategoricalParameter) Categories() []any {
	out := make([]any, len(p.categories))
	copy(out, p.categories)
	return out
}

func (p *CategoricalParameter) Get() any       { return p.value }
func (p *CategoricalParameter) Default() any   { return p.def }
func (p *CategoricalParameter) Value() any     { return p.value }
func (p *CategoricalParameter) String() string { return p.describe(p.value) }

// SetValue stores the category equal to v. Persisted values may differ in
// representation (a file holds 2.0 for category 2), so categories are also
// matched by their string form.
func (p *CategoricalParameter) SetValue(v any) error {
	for _, c := range p.categories {
		if reflect.DeepEqual(c, v) {
			p.value = c
			return nil
		}
	}
	want, err := cast.ToStringE(v)
	if err == nil {
		for _, c := range p.categories {
			if got, err := cast.ToStringE(c); err == nil && got == want {
				p.value = c
				return nil
			}
		}
	}
	return fmt.Errorf("%s %q: %v is not one of %v", p.kind, p.name, v, p.categories)
}

func (p *CategoricalParameter) Space(name string) (space.Dimension, error) {
	return space.NewCategorical(name, p.categories, p.spaceOptions)
}

// ============================================================================
// BOOLEAN PARAMETER
// ============================================================================

// BooleanParameter is a categorical parameter over [true, false]
type BooleanParameter struct {
	CategoricalParameter
}

// NewBooleanParameter creates a boolean parameter
func NewBooleanParameter(def bool, opts ...Option) (*BooleanParameter, error) {
	b, err := newBase("BooleanParameter", opts)
	if err != nil {
		return nil, err
	}
	c, err := newCategorical(b, []any{true, false}, def)
	if err != nil {
		return nil, err
	}
	return &BooleanParameter{CategoricalParameter: *c}, nil
}

// Get returns the current value
func (p *BooleanParameter) Get() bool {
	v, _ := p.value.(bool)
	return v
}

func (p *BooleanParameter) SetValue(v any) error {
	b, err := cast.ToBoolE(v)
	if err != nil {
		return fmt.Errorf("%s %q: %w", p.kind, p.name, err)
	}
	p.value = b
	return nil
}
