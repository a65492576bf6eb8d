package indicators

import "fmt"

// Func computes one indicator series for a period
type Func func(prices []float64, period int) ([]float64, error)

// Precompute evaluates fn for every period, keyed by period. Hyperopt calls
// this once with the whole search range so trials only look values up.
func Precompute(prices []float64, periods []int, fn Func) (map[int][]float64, error) {
	out := make(map[int][]float64, len(periods))
	for _, period := range periods {
		if _, done := out[period]; done {
			continue
		}
		series, err := fn(prices, period)
		if err != nil {
			return nil, fmt.Errorf("failed to precompute period %d: %w", period, err)
		}
		out[period] = series
	}
	return out, nil
}
