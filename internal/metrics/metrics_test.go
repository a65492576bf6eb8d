package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLoadError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: StatusSuccess},
		{name: "missing file", err: fmt.Errorf("failed to read: %w", os.ErrNotExist), want: StatusNotFound},
		{name: "other", err: fmt.Errorf("bad json"), want: StatusInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLoadError(tt.err))
		})
	}
}

func TestRecordParamExport(t *testing.T) {
	before := testutil.ToFloat64(ParamExports.WithLabelValues(StatusSkipped))
	RecordParamExport(StatusSkipped)
	RecordParamExport(StatusSkipped)
	assert.Equal(t, before+2, testutil.ToFloat64(ParamExports.WithLabelValues(StatusSkipped)))
}

func TestRecordParamLoad(t *testing.T) {
	before := testutil.ToFloat64(ParamLoads.WithLabelValues(StatusNotFound))
	RecordParamLoad(os.ErrNotExist)
	assert.Equal(t, before+1, testutil.ToFloat64(ParamLoads.WithLabelValues(StatusNotFound)))
}

func TestRecordResultBatch(t *testing.T) {
	batches := testutil.ToFloat64(ResultBatches)
	records := testutil.ToFloat64(ResultRecords)

	RecordResultBatch(3)
	RecordResultBatch(0)

	assert.Equal(t, batches+2, testutil.ToFloat64(ResultBatches))
	assert.Equal(t, records+3, testutil.ToFloat64(ResultRecords))
}

func TestWriteTextfile(t *testing.T) {
	RecordParamExport(StatusSuccess)

	path := filepath.Join(t.TempDir(), "hyperopt.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cryptogpt_param_exports_total")
}
