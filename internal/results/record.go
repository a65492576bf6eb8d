// Package results reads and writes hyperopt result logs.
//
// A result log holds one JSON record per line, one record per epoch. Logs can
// grow past available memory, so they are read in batches.
package results

import (
	"github.com/spf13/cast"

	"github.com/ajitpratap0/cryptogpt/internal/paramfile"
)

// Record field names
const (
	KeyLoss           = "loss"
	KeyIsBest         = "is_best"
	KeyCurrentEpoch   = "current_epoch"
	KeyResultsMetrics = "results_metrics"
)

// Result metric names inside results_metrics
const (
	MetricTotalTrades    = "total_trades"
	MetricProfitMean     = "profit_mean"
	MetricProfitTotal    = "profit_total"
	MetricProfitTotalAbs = "profit_total_abs"
)

// Record is one epoch of a result log
type Record map[string]any

// Loss returns the objective value of the epoch
func (r Record) Loss() (float64, bool) {
	return number(r[KeyLoss])
}

// IsBest reports whether the epoch was the best so far when it was logged
func (r Record) IsBest() bool {
	b, _ := cast.ToBoolE(r[KeyIsBest])
	return b
}

// Epoch returns the 1-based epoch number, or 0 when the record has none
func (r Record) Epoch() int {
	n, _ := cast.ToIntE(r[KeyCurrentEpoch])
	return n
}

// DefaultEpoch numbers a record that was logged without current_epoch by
// its 1-based position in the log.
func (r Record) DefaultEpoch(index int) {
	if r.Epoch() == 0 {
		r[KeyCurrentEpoch] = index
	}
}

// Metric returns a value of results_metrics
func (r Record) Metric(name string) (float64, bool) {
	m, ok := r[KeyResultsMetrics].(map[string]any)
	if !ok {
		return 0, false
	}
	return number(m[name])
}

// Resolved returns the export input carried by the record
func (r Record) Resolved() (paramfile.ResolvedParams, error) {
	return paramfile.ResolvedFromRecord(r)
}

func number(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}
