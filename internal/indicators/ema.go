package indicators

import (
	"github.com/cinar/indicator/v2/trend"
	"github.com/rs/zerolog/log"
)

// EMA calculates the Exponential Moving Average of prices, aligned like RSI
func EMA(prices []float64, period int) ([]float64, error) {
	if err := checkPeriod(prices, period); err != nil {
		return nil, err
	}

	log.Debug().
		Int("prices_count", len(prices)).
		Int("period", period).
		Msg("Calculating EMA")

	ema := trend.NewEmaWithPeriod[float64](period)
	return align(len(prices), ema.Compute(feed(prices))), nil
}
