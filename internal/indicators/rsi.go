// Package indicators computes indicator series aligned with their input prices
package indicators

import (
	"fmt"
	"math"

	"github.com/cinar/indicator/v2/momentum"
	"github.com/rs/zerolog/log"
)

// DefaultRSIPeriod is the conventional RSI lookback
const DefaultRSIPeriod = 14

// RSI calculates the Relative Strength Index of prices. The result has the
// same length as prices; positions inside the warmup window are NaN.
func RSI(prices []float64, period int) ([]float64, error) {
	if err := checkPeriod(prices, period); err != nil {
		return nil, err
	}

	log.Debug().
		Int("prices_count", len(prices)).
		Int("period", period).
		Msg("Calculating RSI")

	rsi := momentum.NewRsiWithPeriod[float64](period)
	return align(len(prices), rsi.Compute(feed(prices))), nil
}

func checkPeriod(prices []float64, period int) error {
	if len(prices) == 0 {
		return fmt.Errorf("prices are required")
	}
	if period < 1 || period > len(prices) {
		return fmt.Errorf("invalid period: %d (must be between 1 and %d)", period, len(prices))
	}
	return nil
}

func feed(prices []float64) <-chan float64 {
	c := make(chan float64, len(prices))
	for _, p := range prices {
		c <- p
	}
	close(c)
	return c
}

// align drains values and left-pads them with NaN to length n
func align(n int, values <-chan float64) []float64 {
	var computed []float64
	for v := range values {
		computed = append(computed, v)
	}

	out := make([]float64, n)
	pad := n - len(computed)
	for i := range out {
		if i < pad {
			out[i] = math.NaN()
			continue
		}
		out[i] = computed[i-pad]
	}
	return out
}
