package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/ajitpratap0/cryptogpt/pkg/phase"
	"github.com/ajitpratap0/cryptogpt/pkg/space"
)

// MaxRangeValues bounds the number of points an Int or Decimal parameter may
// enumerate through Range.
const MaxRangeValues = 1 << 24

// Number is the value type of a numeric parameter
type Number interface {
	~int | ~float64
}

// Bounds declares the search interval of a numeric parameter.
// Exactly one of High or Range must be set: either Low and High, or a
// two-element Range with High omitted.
type Bounds[T Number] struct {
	Low   T
	High  *T
	Range []T
}

// Between declares bounds as an explicit low and high
func Between[T Number](low, high T) Bounds[T] {
	return Bounds[T]{Low: low, High: &high}
}

// Within declares bounds as a [low, high] sequence
func Within[T Number](bounds []T) Bounds[T] {
	return Bounds[T]{Range: bounds}
}

func (b Bounds[T]) resolve(kind string) (T, T, error) {
	var zero T

	if b.High != nil && b.Range != nil {
		return zero, zero, configErrorf(kind, "space invalid: give either low and high, or a [low, high] range")
	}
	if b.High == nil {
		if len(b.Range) != 2 {
			return zero, zero, configErrorf(kind, "space must be [low, high]")
		}
		if b.Low != zero {
			return zero, zero, configErrorf(kind, "space invalid: low given together with a [low, high] range")
		}
		return checkOrder(kind, b.Range[0], b.Range[1])
	}
	return checkOrder(kind, b.Low, *b.High)
}

func checkOrder[T Number](kind string, low, high T) (T, T, error) {
	if math.IsNaN(float64(low)) || math.IsNaN(float64(high)) {
		return low, high, configErrorf(kind, "space bounds must be numbers")
	}
	if low > high {
		return low, high, configErrorf(kind, "space invalid: low (%v) is greater than high (%v)", low, high)
	}
	return low, high, nil
}

// ============================================================================
// INT PARAMETER
// ============================================================================

// IntParameter is an integer parameter optimized over an inclusive range
type IntParameter struct {
	baseParameter
	low, high int
	def       int
	value     int
}

// NewIntParameter creates an integer parameter
func NewIntParameter(bounds Bounds[int], def int, opts ...Option) (*IntParameter, error) {
	b, err := newBase("IntParameter", opts)
	if err != nil {
		return nil, err
	}
	low, high, err := bounds.resolve(b.kind)
	if err != nil {
		return nil, err
	}
	// high-low wraps for very wide bounds; the unsigned difference is exact
	if uint64(high-low) >= MaxRangeValues {
		return nil, configErrorf(b.kind, "space [%d, %d] has more than %d values", low, high, MaxRangeValues)
	}
	return &IntParameter{baseParameter: b, low: low, high: high, def: def, value: def}, nil
}

// Get returns the current value
func (p *IntParameter) Get() int     { return p.value }
func (p *IntParameter) Low() int     { return p.low }
func (p *IntParameter) High() int    { return p.high }
func (p *IntParameter) Default() any { return p.def }
func (p *IntParameter) Value() any   { return p.value }
func (p *IntParameter) String() string {
	return p.describe(p.value)
}

func (p *IntParameter) SetValue(v any) error {
	n, err := toInt(v)
	if err != nil {
		return fmt.Errorf("%s %q: %w", p.kind, p.name, err)
	}
	p.value = n
	return nil
}

func (p *IntParameter) Space(name string) (space.Dimension, error) {
	return space.NewInteger(name, p.low, p.high, p.spaceOptions)
}

// Range returns every value in [low, high] while the parameter can be
// optimized in phase ph, and only the current value otherwise.
func (p *IntParameter) Range(ph phase.Phase) []int {
	if !p.CanOptimize(ph) {
		return []int{p.value}
	}
	out := make([]int, 0, p.high-p.low+1)
	for v := p.low; v <= p.high; v++ {
		out = append(out, v)
	}
	return out
}

// ============================================================================
// REAL PARAMETER
// ============================================================================

// RealParameter is a floating point parameter optimized over a closed interval
type RealParameter struct {
	baseParameter
	low, high float64
	def       float64
	value     float64
}

// NewRealParameter creates a floating point parameter
func NewRealParameter(bounds Bounds[float64], def float64, opts ...Option) (*RealParameter, error) {
	b, err := newBase("RealParameter", opts)
	if err != nil {
		return nil, err
	}
	low, high, err := bounds.resolve(b.kind)
	if err != nil {
		return nil, err
	}
	return &RealParameter{baseParameter: b, low: low, high: high, def: def, value: def}, nil
}

func (p *RealParameter) Get() float64  { return p.value }
func (p *RealParameter) Low() float64  { return p.low }
func (p *RealParameter) High() float64 { return p.high }
func (p *RealParameter) Default() any  { return p.def }
func (p *RealParameter) Value() any    { return p.value }
func (p *RealParameter) String() string {
	return p.describe(p.value)
}

func (p *RealParameter) SetValue(v any) error {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return fmt.Errorf("%s %q: %w", p.kind, p.name, err)
	}
	p.value = f
	return nil
}

func (p *RealParameter) Space(name string) (space.Dimension, error) {
	return space.NewReal(name, p.low, p.high, p.spaceOptions)
}

// ============================================================================
// DECIMAL PARAMETER
// ============================================================================

// DefaultDecimals is the precision of a DecimalParameter when none is given
const DefaultDecimals = 3

// DecimalParameter is a floating point parameter restricted to a fixed
// number of decimal places. Values are rounded half away from zero.
type DecimalParameter struct {
	baseParameter
	low, high float64
	decimals  int32
	def       float64
	value     float64
}

// NewDecimalParameter creates a decimal parameter; decimals <= 0 selects DefaultDecimals
func NewDecimalParameter(bounds Bounds[float64], def float64, decimals int, opts ...Option) (*DecimalParameter, error) {
	b, err := newBase("DecimalParameter", opts)
	if err != nil {
		return nil, err
	}
	low, high, err := bounds.resolve(b.kind)
	if err != nil {
		return nil, err
	}
	if decimals <= 0 {
		decimals = DefaultDecimals
	}
	places := int32(decimals)
	if math.IsInf(low, 0) || math.IsInf(high, 0) {
		return nil, configErrorf(b.kind, "space bounds must be finite")
	}
	steps := decimal.NewFromFloat(high).Sub(decimal.NewFromFloat(low)).Shift(places)
	if steps.GreaterThanOrEqual(decimal.NewFromInt(MaxRangeValues)) {
		return nil, configErrorf(b.kind, "space [%v, %v] with %d decimals has more than %d values", low, high, decimals, MaxRangeValues)
	}
	p := &DecimalParameter{
		baseParameter: b,
		low:           round(low, places),
		high:          round(high, places),
		decimals:      places,
		def:           round(def, places),
	}
	p.value = p.def
	return p, nil
}

func (p *DecimalParameter) Get() float64   { return p.value }
func (p *DecimalParameter) Low() float64   { return p.low }
func (p *DecimalParameter) High() float64  { return p.high }
func (p *DecimalParameter) Decimals() int  { return int(p.decimals) }
func (p *DecimalParameter) Default() any   { return p.def }
func (p *DecimalParameter) Value() any     { return p.value }
func (p *DecimalParameter) String() string { return p.describe(p.value) }

func (p *DecimalParameter) SetValue(v any) error {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return fmt.Errorf("%s %q: %w", p.kind, p.name, err)
	}
	p.value = round(f, p.decimals)
	return nil
}

func (p *DecimalParameter) Space(name string) (space.Dimension, error) {
	return space.NewDecimal(name, p.low, p.high, int(p.decimals), p.spaceOptions)
}

// Range returns every grid point in [low, high] while the parameter can be
// optimized in phase ph, and only the current value otherwise.
func (p *DecimalParameter) Range(ph phase.Phase) []float64 {
	if !p.CanOptimize(ph) {
		return []float64{p.value}
	}
	step := decimal.New(1, -p.decimals)
	high := decimal.NewFromFloat(p.high)

	var out []float64
	for v := decimal.NewFromFloat(p.low); v.LessThanOrEqual(high); v = v.Add(step) {
		out = append(out, v.InexactFloat64())
	}
	return out
}

func round(f float64, places int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case float32, float64:
		return floatToInt(cast.ToFloat64(x), v)
	case uint, uint64:
		u, err := cast.ToUint64E(x)
		if err != nil {
			return 0, err
		}
		if u > math.MaxInt {
			return 0, fmt.Errorf("%v is out of the integer range", v)
		}
		return int(u), nil
	case string:
		n, err := cast.ToInt64E(x)
		if err == nil {
			return int64ToInt(n, v)
		}
		f, ferr := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if ferr != nil {
			return 0, err
		}
		return floatToInt(f, v)
	}

	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, err
	}
	return int64ToInt(n, v)
}

func floatToInt(f float64, v any) (int, error) {
	if math.IsNaN(f) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", v)
	}
	// float64(math.MinInt) is exact and -float64(math.MinInt) is the first value past math.MaxInt
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, fmt.Errorf("%v is out of the integer range", v)
	}
	return int(f), nil
}

func int64ToInt(n int64, v any) (int, error) {
	if int64(int(n)) != n {
		return 0, fmt.Errorf("%v is out of the integer range", v)
	}
	return int(n), nil
}
