package results

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoResults is returned when a result log holds no matching epoch
var ErrNoResults = errors.New("no hyperopt results")

// Filter selects epochs of a result log. Zero values disable a condition.
// Epochs without trades never match.
type Filter struct {
	OnlyBest       bool
	OnlyProfitable bool

	// Trade count bounds are exclusive
	MinTrades int
	MaxTrades int

	// Average profit per trade, in percent
	MinAvgProfit *float64
	MaxAvgProfit *float64

	// Absolute total profit
	MinTotalProfit *float64
	MaxTotalProfit *float64

	// Objective (loss) bounds are inclusive
	MinObjective *float64
	MaxObjective *float64
}

// Match reports whether rec passes every enabled condition
func (f Filter) Match(rec Record) bool {
	if f.OnlyBest && !rec.IsBest() {
		return false
	}
	if f.OnlyProfitable {
		if profit, ok := rec.Metric(MetricProfitTotal); !ok || profit <= 0 {
			return false
		}
	}

	trades, _ := rec.Metric(MetricTotalTrades)
	if trades <= float64(f.MinTrades) {
		return false
	}
	if f.MaxTrades > 0 && trades >= float64(f.MaxTrades) {
		return false
	}

	if f.MinAvgProfit != nil || f.MaxAvgProfit != nil {
		mean, _ := rec.Metric(MetricProfitMean)
		if !within(mean*100, f.MinAvgProfit, f.MaxAvgProfit, false) {
			return false
		}
	}

	if f.MinTotalProfit != nil || f.MaxTotalProfit != nil {
		total, _ := rec.Metric(MetricProfitTotalAbs)
		if !within(total, f.MinTotalProfit, f.MaxTotalProfit, false) {
			return false
		}
	}

	if f.MinObjective != nil || f.MaxObjective != nil {
		loss, ok := rec.Loss()
		if !ok || math.IsNaN(loss) || !within(loss, f.MinObjective, f.MaxObjective, true) {
			return false
		}
	}

	return true
}

func within(v float64, low, high *float64, inclusive bool) bool {
	if low != nil && (v < *low || (!inclusive && v == *low)) {
		return false
	}
	if high != nil && (v > *high || (!inclusive && v == *high)) {
		return false
	}
	return true
}

// LoadFiltered reads the result log and returns the matching epochs together
// with the total number of epochs in the log.
func LoadFiltered(path string, f Filter) ([]Record, int, error) {
	var (
		out   []Record
		total int
	)
	for batch, err := range Batches(path, DefaultBatchSize) {
		if err != nil {
			return nil, 0, err
		}
		for _, rec := range batch {
			total++
			rec.DefaultEpoch(total)
			if f.Match(rec) {
				out = append(out, rec)
			}
		}
	}
	return out, total, nil
}

// Best returns the epoch with the lowest loss
func Best(path string) (Record, error) {
	var (
		best     Record
		bestLoss = math.Inf(1)
		index    int
	)
	for batch, err := range Batches(path, DefaultBatchSize) {
		if err != nil {
			return nil, err
		}
		for _, rec := range batch {
			index++
			loss, ok := rec.Loss()
			if !ok || math.IsNaN(loss) {
				continue
			}
			if best == nil || loss < bestLoss {
				rec.DefaultEpoch(index)
				best, bestLoss = rec, loss
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w in %s", ErrNoResults, path)
	}
	return best, nil
}

// ByEpoch returns the record of the given 1-based epoch
func ByEpoch(path string, epoch int) (Record, error) {
	index := 0
	for batch, err := range Batches(path, DefaultBatchSize) {
		if err != nil {
			return nil, err
		}
		for _, rec := range batch {
			index++
			rec.DefaultEpoch(index)
			if rec.Epoch() == epoch {
				return rec, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: epoch %d not found in %s", ErrNoResults, epoch, path)
}
