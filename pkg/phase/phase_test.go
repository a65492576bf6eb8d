package phase

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "startup", Startup.String())
	assert.Equal(t, "dataload", DataLoad.String())
	assert.Equal(t, "indicators", Indicators.String())
	assert.Equal(t, "optimize", Optimize.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}

func TestPhase_Values(t *testing.T) {
	// Numeric values are part of the persisted contract
	assert.Equal(t, int32(1), int32(Startup))
	assert.Equal(t, int32(4), int32(Optimize))
	assert.Equal(t, []Phase{Startup, DataLoad, Indicators, Optimize}, All())
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Phase
		wantErr bool
	}{
		{"startup", Startup, false},
		{"DATALOAD", DataLoad, false},
		{" Indicators ", Indicators, false},
		{"optimize", Optimize, false},
		{"backtest", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestState_ZeroValueIsStartup(t *testing.T) {
	var s State
	assert.Equal(t, Startup, s.Get())
}

func TestState_SetOverwrites(t *testing.T) {
	s := NewState(DataLoad)
	assert.Equal(t, DataLoad, s.Get())

	for _, p := range All() {
		s.Set(p)
		assert.Equal(t, p, s.Get())
	}

	// No transition ordering is enforced
	s.Set(Startup)
	assert.Equal(t, Startup, s.Get())
}

func TestState_SnapshotIsImmutable(t *testing.T) {
	s := NewState(Indicators)
	snapshot := s.Get()

	s.Set(Optimize)

	assert.Equal(t, Indicators, snapshot)
	assert.Equal(t, Optimize, s.Get())
}

func TestState_ConcurrentReaders(t *testing.T) {
	s := NewState(Optimize)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, s.Get().IsValid())
			}
		}()
	}
	wg.Wait()
}
