package metrics

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bounded status values for the export and load counters
const (
	StatusSuccess  = "success"
	StatusSkipped  = "skipped"
	StatusNotFound = "not_found"
	StatusInvalid  = "invalid"
	StatusFailure  = "failure"
)

// Parameter file metrics
var (
	// Parameter exports by outcome
	ParamExports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cryptogpt_param_exports_total",
		Help: "Total number of parameter export attempts by status",
	}, []string{"status"})

	// Parameter file loads by outcome
	ParamLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cryptogpt_param_loads_total",
		Help: "Total number of parameter file loads by status",
	}, []string{"status"})
)

// Result log metrics
var (
	// Batches yielded by the result reader
	ResultBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cryptogpt_result_batches_total",
		Help: "Total number of result batches read",
	})

	// Records read from result logs
	ResultRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cryptogpt_result_records_total",
		Help: "Total number of result records read",
	})
)

// NormalizeLoadError maps a load error to a bounded status
func NormalizeLoadError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, fs.ErrNotExist):
		return StatusNotFound
	default:
		return StatusInvalid
	}
}

// RecordParamExport records an export attempt
func RecordParamExport(status string) {
	ParamExports.WithLabelValues(status).Inc()
}

// RecordParamLoad records a parameter file load
func RecordParamLoad(err error) {
	ParamLoads.WithLabelValues(NormalizeLoadError(err)).Inc()
}

// RecordResultBatch records one batch of n records
func RecordResultBatch(n int) {
	ResultBatches.Inc()
	ResultRecords.Add(float64(n))
}

// WriteTextfile writes the default registry in text format, for collection
// by the node exporter textfile collector after a command finishes.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
