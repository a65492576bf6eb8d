// Package space describes the search space handed to a black-box optimizer.
//
// Parameters produce one Dimension each. The set of dimension kinds is closed:
// Integer, Real, Decimal and Categorical. A concrete search library is reached
// through a Backend registered under a name; asking for a backend that was
// never registered fails with ErrBackendUnavailable instead of silently
// disabling optimization.
package space

import (
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Kind identifies the variant of a Dimension
type Kind string

const (
	KindInteger     Kind = "integer"
	KindReal        Kind = "real"
	KindDecimal     Kind = "decimal"
	KindCategorical Kind = "categorical"
)

// Dimension is one named axis of the search space
type Dimension interface {
	Name() string
	Kind() Kind
	// Contains reports whether v is a legal point on this axis
	Contains(v any) bool
	// Sample draws a uniformly distributed point
	Sample(r *rand.Rand) any
	// Options returns extra backend options copied from the parameter
	Options() map[string]any
	String() string

	dimension()
}

// ============================================================================
// INTEGER
// ============================================================================

// Integer is an inclusive integer range
type Integer struct {
	name    string
	Low     int
	High    int
	options map[string]any
}

// NewInteger creates an inclusive integer dimension
func NewInteger(name string, low, high int, options map[string]any) (*Integer, error) {
	if low > high {
		return nil, fmt.Errorf("integer dimension %q: low (%d) must not exceed high (%d)", name, low, high)
	}
	return &Integer{name: name, Low: low, High: high, options: copyOptions(options)}, nil
}

func (d *Integer) Name() string            { return d.name }
func (d *Integer) Kind() Kind              { return KindInteger }
func (d *Integer) Options() map[string]any { return copyOptions(d.options) }
func (d *Integer) dimension()              {}

func (d *Integer) Contains(v any) bool {
	f, err := cast.ToFloat64E(v)
	if err != nil || f != math.Trunc(f) {
		return false
	}
	return f >= float64(d.Low) && f <= float64(d.High)
}

func (d *Integer) Sample(r *rand.Rand) any {
	return d.Low + r.Intn(d.High-d.Low+1)
}

func (d *Integer) String() string {
	return fmt.Sprintf("Integer(low=%d, high=%d, name=%q%s)", d.Low, d.High, d.name, formatOptions(d.options))
}

// ============================================================================
// REAL
// ============================================================================

// Real is a closed floating point interval
type Real struct {
	name    string
	Low     float64
	High    float64
	options map[string]any
}

// NewReal creates a real-valued dimension
func NewReal(name string, low, high float64, options map[string]any) (*Real, error) {
	if math.IsNaN(low) || math.IsNaN(high) {
		return nil, fmt.Errorf("real dimension %q: bounds must be numbers", name)
	}
	if low > high {
		return nil, fmt.Errorf("real dimension %q: low (%g) must not exceed high (%g)", name, low, high)
	}
	return &Real{name: name, Low: low, High: high, options: copyOptions(options)}, nil
}

func (d *Real) Name() string            { return d.name }
func (d *Real) Kind() Kind              { return KindReal }
func (d *Real) Options() map[string]any { return copyOptions(d.options) }
func (d *Real) dimension()              {}

func (d *Real) Contains(v any) bool {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return false
	}
	return f >= d.Low && f <= d.High
}

func (d *Real) Sample(r *rand.Rand) any {
	return d.Low + r.Float64()*(d.High-d.Low)
}

func (d *Real) String() string {
	return fmt.Sprintf("Real(low=%g, high=%g, name=%q%s)", d.Low, d.High, d.name, formatOptions(d.options))
}

// ============================================================================
// DECIMAL
// ============================================================================

// Decimal is a real interval restricted to a fixed number of decimal places
type Decimal struct {
	name     string
	Low      decimal.Decimal
	High     decimal.Decimal
	Decimals int32
	options  map[string]any
}

// NewDecimal creates a decimal dimension; bounds are rounded to decimals places
func NewDecimal(name string, low, high float64, decimals int, options map[string]any) (*Decimal, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("decimal dimension %q: decimals must be >= 0, got %d", name, decimals)
	}
	if math.IsNaN(low) || math.IsNaN(high) || math.IsInf(low, 0) || math.IsInf(high, 0) {
		return nil, fmt.Errorf("decimal dimension %q: bounds must be finite numbers", name)
	}
	places := int32(decimals)
	lo := decimal.NewFromFloat(low).Round(places)
	hi := decimal.NewFromFloat(high).Round(places)
	if lo.GreaterThan(hi) {
		return nil, fmt.Errorf("decimal dimension %q: low (%s) must not exceed high (%s)", name, lo, hi)
	}
	return &Decimal{name: name, Low: lo, High: hi, Decimals: places, options: copyOptions(options)}, nil
}

func (d *Decimal) Name() string            { return d.name }
func (d *Decimal) Kind() Kind              { return KindDecimal }
func (d *Decimal) Options() map[string]any { return copyOptions(d.options) }
func (d *Decimal) dimension()              {}

// Step returns the distance between neighbouring grid points
func (d *Decimal) Step() decimal.Decimal {
	return decimal.New(1, -d.Decimals)
}

// Steps returns the number of grid points in the interval
func (d *Decimal) Steps() int64 {
	return d.High.Sub(d.Low).Div(d.Step()).IntPart() + 1
}

func (d *Decimal) Contains(v any) bool {
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	value := decimal.NewFromFloat(f)
	if !value.Equal(value.Round(d.Decimals)) {
		return false
	}
	return value.GreaterThanOrEqual(d.Low) && value.LessThanOrEqual(d.High)
}

func (d *Decimal) Sample(r *rand.Rand) any {
	k := r.Int63n(d.Steps())
	return d.Low.Add(d.Step().Mul(decimal.NewFromInt(k))).InexactFloat64()
}

func (d *Decimal) String() string {
	return fmt.Sprintf("Decimal(low=%s, high=%s, decimals=%d, name=%q%s)",
		d.Low, d.High, d.Decimals, d.name, formatOptions(d.options))
}

// ============================================================================
// CATEGORICAL
// ============================================================================

// Categorical is an unordered set of choices
type Categorical struct {
	name       string
	Categories []any
	options    map[string]any
}

// NewCategorical creates a categorical dimension with at least two choices
func NewCategorical(name string, categories []any, options map[string]any) (*Categorical, error) {
	if len(categories) < 2 {
		return nil, fmt.Errorf("categorical dimension %q: need at least 2 categories, got %d", name, len(categories))
	}
	choices := make([]any, len(categories))
	copy(choices, categories)
	return &Categorical{name: name, Categories: choices, options: copyOptions(options)}, nil
}

func (d *Categorical) Name() string            { return d.name }
func (d *Categorical) Kind() Kind              { return KindCategorical }
func (d *Categorical) Options() map[string]any { return copyOptions(d.options) }
func (d *Categorical) dimension()              {}

func (d *Categorical) Contains(v any) bool {
	for _, c := range d.Categories {
		if reflect.DeepEqual(c, v) {
			return true
		}
	}
	return false
}

func (d *Categorical) Sample(r *rand.Rand) any {
	return d.Categories[r.Intn(len(d.Categories))]
}

func (d *Categorical) String() string {
	return fmt.Sprintf("Categorical(%v, name=%q%s)", d.Categories, d.name, formatOptions(d.options))
}

// ============================================================================
// HELPERS
// ============================================================================

func copyOptions(options map[string]any) map[string]any {
	if len(options) == 0 {
		return nil
	}
	out := make(map[string]any, len(options))
	for k, v := range options {
		out[k] = v
	}
	return out
}

func formatOptions(options map[string]any) string {
	if len(options) == 0 {
		return ""
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf(", %s=%v", k, options[k]))
	}
	return sb.String()
}
