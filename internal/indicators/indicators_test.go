package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePrices = []float64{
	44.0, 44.5, 43.8, 45.5, 46.0,
	45.2, 47.0, 46.1, 48.0, 47.5,
	49.0, 48.2, 50.0, 49.1, 51.0,
	50.2, 52.0, 51.3, 53.0, 52.5,
}

func TestRSI(t *testing.T) {
	values, err := RSI(samplePrices, 5)
	require.NoError(t, err)
	require.Len(t, values, len(samplePrices))

	assert.True(t, math.IsNaN(values[0]), "warmup is padded")

	last := values[len(values)-1]
	assert.GreaterOrEqual(t, last, 0.0)
	assert.LessOrEqual(t, last, 100.0)
}

func TestEMA(t *testing.T) {
	values, err := EMA(samplePrices, 3)
	require.NoError(t, err)
	require.Len(t, values, len(samplePrices))

	last := values[len(values)-1]
	assert.Greater(t, last, 40.0)
	assert.Less(t, last, 60.0)
}

func TestInvalidPeriod(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
	}{
		{name: "empty prices", prices: nil, period: 3},
		{name: "zero period", prices: samplePrices, period: 0},
		{name: "period too large", prices: samplePrices, period: len(samplePrices) + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RSI(tt.prices, tt.period)
			assert.Error(t, err)
			_, err = EMA(tt.prices, tt.period)
			assert.Error(t, err)
		})
	}
}

func TestPrecompute(t *testing.T) {
	calls := 0
	fn := func(prices []float64, period int) ([]float64, error) {
		calls++
		return RSI(prices, period)
	}

	out, err := Precompute(samplePrices, []int{3, 5, 3, 7}, fn)
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, 3, calls)
	assert.Len(t, out[7], len(samplePrices))

	_, err = Precompute(samplePrices, []int{100}, RSI)
	assert.Error(t, err)
}
