package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/cryptogpt/internal/config"
	"github.com/ajitpratap0/cryptogpt/internal/paramfile"
	"github.com/ajitpratap0/cryptogpt/internal/results"
)

type workspace struct {
	dir        string
	config     string
	strategies string
	results    string
}

func newWorkspace(t *testing.T, spaces string) workspace {
	t.Helper()
	dir := t.TempDir()
	ws := workspace{
		dir:        dir,
		config:     filepath.Join(dir, "config.yaml"),
		strategies: filepath.Join(dir, "strategies"),
		results:    filepath.Join(dir, "hyperopt_results"),
	}

	content := fmt.Sprintf(`app:
  log_level: debug
  log_format: json
spaces: %s
strategy_path: %q
hyperopt_results_dir: %q
`, spaces, ws.strategies, ws.results)
	require.NoError(t, os.WriteFile(ws.config, []byte(content), 0600))
	return ws
}

func run(t *testing.T, ws workspace, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", ws.config}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeResults(t *testing.T, path string) {
	t.Helper()
	w, err := results.Create(path)
	require.NoError(t, err)

	epochs := []struct {
		loss   float64
		best   bool
		trades int
		rsi    int
	}{
		{loss: 0.8, best: true, trades: 12, rsi: 20},
		{loss: 0.3, best: true, trades: 30, rsi: 25},
		{loss: 0.5, best: false, trades: 0, rsi: 35},
	}
	for i, e := range epochs {
		require.NoError(t, w.Append(results.Record{
			"loss":          e.loss,
			"is_best":       e.best,
			"current_epoch": i + 1,
			"results_metrics": map[string]any{
				"total_trades":     e.trades,
				"profit_mean":      0.01,
				"profit_total":     0.05,
				"profit_total_abs": 50.0,
			},
			"params_details": map[string]any{
				"buy": map[string]any{"buy_rsi": e.rsi},
			},
			"params_not_optimized": map[string]any{
				"protection": map[string]any{"protection_cooldown": 5},
			},
			"ft_stratparam_v": 2,
		}))
	}
	require.NoError(t, w.Close())
}

func TestSpaces(t *testing.T) {
	ws := newWorkspace(t, "[buy, protection]")

	out, _, err := run(t, ws, "spaces")
	require.NoError(t, err)
	assert.Contains(t, out, "buy\ttrue\n")
	assert.Contains(t, out, "protection\ttrue\n")
	assert.Contains(t, out, "sell\tfalse\n")
	assert.NotContains(t, out, "default\t")
}

func TestInvalidConfig(t *testing.T) {
	ws := newWorkspace(t, "[nonsense]")

	_, _, err := run(t, ws, "spaces")
	assert.Error(t, err)
}

func TestNewStrategyAndList(t *testing.T) {
	ws := newWorkspace(t, "[default]")

	out, _, err := run(t, ws, "new-strategy", "Sample")
	require.NoError(t, err)
	assert.Contains(t, out, "Strategy written to")
	assert.FileExists(t, filepath.Join(ws.strategies, "Sample.yaml"))

	_, _, err = run(t, ws, "new-strategy", "Sample")
	assert.Error(t, err, "existing descriptor needs --force")

	_, _, err = run(t, ws, "new-strategy", "Sample", "--force")
	require.NoError(t, err)

	_, _, err = run(t, ws, "new-strategy", "Other", "--class", "Missing")
	assert.Error(t, err)

	out, _, err = run(t, ws, "list-strategies")
	require.NoError(t, err)
	assert.Contains(t, out, "Sample\tRSIStrategy\tSample.yaml\tOK")
	assert.Contains(t, out, "1 strategies")
}

func TestExport(t *testing.T) {
	ws := newWorkspace(t, "[default]")
	_, _, err := run(t, ws, "new-strategy", "Sample")
	require.NoError(t, err)

	log := filepath.Join(ws.results, results.RunFilename("Sample", time.Now()))
	writeResults(t, log)

	out, _, err := run(t, ws, "export", "--results", log, "--strategy", "Sample")
	require.NoError(t, err)
	assert.Contains(t, out, "Epoch 2 parameters written to")

	paramPath := filepath.Join(ws.strategies, "Sample.json")
	f, err := paramfile.Load(paramPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"buy_rsi": 25}, f.Space("buy"))
	assert.Equal(t, map[string]any{"protection_cooldown": 5}, f.Space("protection"))

	out, _, err = run(t, ws, "export", "--results", log, "--strategy", "Sample", "--epoch", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Epoch 1 parameters written to")

	out, _, err = run(t, ws, "show-params", paramPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Strategy: Sample")
	assert.Contains(t, out, "Version:  2")
	assert.Contains(t, out, `"buy_rsi": 20`)
}

func TestExport_Latest(t *testing.T) {
	ws := newWorkspace(t, "[default]")
	_, _, err := run(t, ws, "new-strategy", "Sample")
	require.NoError(t, err)

	name := results.RunFilename("Sample", time.Now())
	writeResults(t, filepath.Join(ws.results, name))
	require.NoError(t, results.WriteLatest(ws.results, name))

	_, _, err = run(t, ws, "export", "--strategy", "Sample")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(ws.strategies, "Sample.json"))
}

func TestExport_StrategyNotFound(t *testing.T) {
	ws := newWorkspace(t, "[default]")
	log := filepath.Join(ws.results, "run.fthypt")
	writeResults(t, log)

	out, stderr, err := run(t, ws, "export", "--results", log, "--strategy", "Missing")
	require.NoError(t, err)
	assert.Contains(t, out, "No parameter file written")
	assert.Contains(t, stderr, "Strategy not found, not exporting parameter file.")
}

func TestExport_RequiresStrategy(t *testing.T) {
	ws := newWorkspace(t, "[default]")

	_, _, err := run(t, ws, "export", "--results", filepath.Join(ws.results, "run.fthypt"))
	assert.Error(t, err)
}

func TestListResults(t *testing.T) {
	ws := newWorkspace(t, "[default]")
	log := filepath.Join(ws.results, "run.fthypt")
	writeResults(t, log)

	out, _, err := run(t, ws, "list-results", log, "--batch-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "*    2  loss=0.30000  trades=30  avg=1.00%  total=50.0000")
	assert.Contains(t, out, "2 of 3 epochs", "epochs without trades are dropped")

	out, _, err = run(t, ws, "list-results", log, "--min-trades", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 3 epochs")

	_, _, err = run(t, ws, "list-results", filepath.Join(ws.dir, "missing.fthypt"))
	assert.Error(t, err)
}

func TestListResults_EpochFallbackMatchesExport(t *testing.T) {
	ws := newWorkspace(t, "[default]")
	_, _, err := run(t, ws, "new-strategy", "Sample")
	require.NoError(t, err)

	log := filepath.Join(ws.results, "unnumbered.fthypt")
	line := `{"loss": %v, "is_best": true, "results_metrics": {"total_trades": 5}, ` +
		`"params_details": {"buy": {"buy_rsi": %d}}, "ft_stratparam_v": 2}`
	content := fmt.Sprintf(line, 0.9, 11) + "\n" + fmt.Sprintf(line, 0.2, 22) + "\n"
	require.NoError(t, os.MkdirAll(ws.results, 0750))
	require.NoError(t, os.WriteFile(log, []byte(content), 0600))

	out, _, err := run(t, ws, "list-results", log)
	require.NoError(t, err)
	assert.Contains(t, out, "*    1  loss=0.90000")
	assert.Contains(t, out, "*    2  loss=0.20000")

	out, _, err = run(t, ws, "export", "--results", log, "--strategy", "Sample", "--epoch", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Epoch 2 parameters written to")

	f, err := paramfile.Load(filepath.Join(ws.strategies, "Sample.json"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"buy_rsi": 22}, f.Space("buy"))
}

func TestVersionFlag(t *testing.T) {
	ws := newWorkspace(t, "[default]")

	out, _, err := run(t, ws, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, config.GetVersion())
}

func TestListParams(t *testing.T) {
	ws := newWorkspace(t, "[buy]")

	out, _, err := run(t, ws, "list-params", "RSIStrategy")
	require.NoError(t, err)
	assert.Contains(t, out, "buy\tbuy_rsi\ttrue\t")
	assert.Contains(t, out, "buy\tbuy_ema_period\tfalse\t")
	assert.Contains(t, out, "sell\tsell_rsi\tfalse\t", "sell is not optimized")

	out, _, err = run(t, ws, "list-params", "RSIStrategy", "--phase", "optimize")
	require.NoError(t, err)
	assert.Contains(t, out, "buy\tbuy_rsi\tfalse\t")

	_, _, err = run(t, ws, "list-params", "RSIStrategy", "--phase", "bogus")
	assert.Error(t, err)

	_, _, err = run(t, ws, "list-params", "Missing")
	assert.Error(t, err)
}

func TestSample(t *testing.T) {
	ws := newWorkspace(t, "[buy]")

	out, _, err := run(t, ws, "sample", "RSIStrategy", "--trials", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		trial, err := paramfile.UnmarshalMap([]byte(line))
		require.NoError(t, err)
		assert.Contains(t, trial, "buy_rsi")
		assert.Contains(t, trial, "buy_ema_filter")
		assert.NotContains(t, trial, "sell_rsi")
		assert.NotContains(t, trial, "buy_ema_period")
	}
}
