package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/cryptogpt/internal/config"
	"github.com/ajitpratap0/cryptogpt/internal/hyperopt"
	"github.com/ajitpratap0/cryptogpt/internal/paramfile"
	"github.com/ajitpratap0/cryptogpt/internal/results"
	"github.com/ajitpratap0/cryptogpt/internal/strategy"
	"github.com/ajitpratap0/cryptogpt/pkg/params"
	"github.com/ajitpratap0/cryptogpt/pkg/phase"
)

// ============================================================================
// SHOW-PARAMS
// ============================================================================

func (a *app) newShowParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-params <file>",
		Short: "Print the content of a strategy parameter file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := paramfile.Load(args[0])
			if err != nil {
				return err
			}

			exported := "unknown"
			if !f.ExportTime.IsZero() {
				exported = f.ExportTime.Format("2006-01-02 15:04:05 MST")
			}
			body, err := paramfile.MarshalIndent(f.Params, "  ")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Strategy: %s\n", f.StrategyName)
			fmt.Fprintf(out, "Version:  %d\n", f.Version)
			fmt.Fprintf(out, "Exported: %s\n", exported)
			fmt.Fprintf(out, "%s\n", body)
			return nil
		},
	}
}

// ============================================================================
// EXPORT
// ============================================================================

func (a *app) newExportCmd() *cobra.Command {
	var (
		resultsPath  string
		strategyName string
		epoch        int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the parameters of an epoch next to the strategy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.resultLog(resultsPath)
			if err != nil {
				return err
			}

			var rec results.Record
			if epoch > 0 {
				rec, err = results.ByEpoch(path, epoch)
			} else {
				rec, err = results.Best(path)
			}
			if err != nil {
				return err
			}

			resolved, err := rec.Resolved()
			if err != nil {
				return err
			}

			written, err := hyperopt.TryExportParams(a.cfg, a.resolver, strategyName, resolved)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if written == "" {
				fmt.Fprintln(out, "No parameter file written")
				return nil
			}
			fmt.Fprintf(out, "Epoch %d parameters written to %s\n", rec.Epoch(), written)
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Result log to read (default: latest run)")
	cmd.Flags().StringVar(&strategyName, "strategy", "", "Strategy the parameters belong to")
	cmd.Flags().IntVar(&epoch, "epoch", 0, "Epoch to export (default: best epoch)")
	_ = cmd.MarkFlagRequired("strategy")
	return cmd
}

// resultLog returns path, or the latest run of the results directory
func (a *app) resultLog(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	validator := config.NewValidator(a.cfg, config.ValidatorOptions{VerifyResultsDir: true})
	if err := validator.ValidateStartup(); err != nil {
		return "", err
	}
	latest, err := results.LatestFile(a.cfg.HyperoptResultsDir)
	if err != nil {
		return "", err
	}
	log.Info().Str("path", latest).Msg("Using latest result log")
	return latest, nil
}

// ============================================================================
// LIST-RESULTS
// ============================================================================

func (a *app) newListResultsCmd() *cobra.Command {
	var (
		batchSize int
		filter    results.Filter
	)

	cmd := &cobra.Command{
		Use:   "list-results [log]",
		Short: "Print the epochs of a result log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			path, err := a.resultLog(arg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			total, shown := 0, 0
			for batch, err := range results.Batches(path, batchSize) {
				if err != nil {
					return err
				}
				for _, rec := range batch {
					total++
					rec.DefaultEpoch(total)
					if !filter.Match(rec) {
						continue
					}
					shown++
					fmt.Fprintln(out, formatRecord(rec))
				}
			}

			fmt.Fprintf(out, "%d of %d epochs\n", shown, total)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&batchSize, "batch-size", results.DefaultBatchSize, "Records read per batch")
	flags.BoolVar(&filter.OnlyBest, "only-best", false, "Only show epochs that were best when logged")
	flags.BoolVar(&filter.OnlyProfitable, "only-profitable", false, "Only show profitable epochs")
	flags.IntVar(&filter.MinTrades, "min-trades", 0, "Only show epochs with more trades than this")
	flags.IntVar(&filter.MaxTrades, "max-trades", 0, "Only show epochs with fewer trades than this")
	return cmd
}

func formatRecord(rec results.Record) string {
	marker := " "
	if rec.IsBest() {
		marker = "*"
	}
	loss := "n/a"
	if v, ok := rec.Loss(); ok {
		loss = strconv.FormatFloat(v, 'f', 5, 64)
	}
	trades, _ := rec.Metric(results.MetricTotalTrades)
	mean, _ := rec.Metric(results.MetricProfitMean)
	total, _ := rec.Metric(results.MetricProfitTotalAbs)

	return fmt.Sprintf("%s%5d  loss=%s  trades=%d  avg=%.2f%%  total=%.4f",
		marker, rec.Epoch(), loss, int(trades), mean*100, total)
}

// ============================================================================
// SPACES
// ============================================================================

func (a *app) newSpacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spaces",
		Short: "Print which spaces are optimized under the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, space := range config.KnownSpaces {
				if space == config.SpaceAll || space == config.SpaceDefault {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", space, hyperopt.HasSpace(a.cfg, space))
			}
			return nil
		},
	}
}

// ============================================================================
// LIST-STRATEGIES
// ============================================================================

func (a *app) newListStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-strategies",
		Short: "Print the strategies found in the strategy path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			objects, err := a.resolver.SearchAllObjects(a.cfg, true, a.cfg.RecursiveStrategySearch)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, obj := range objects {
				status := "OK"
				if obj.Failed() {
					status = "LOAD FAILED: " + obj.Err.Error()
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", obj.Name, obj.Class, obj.LocationRel, status)
			}
			fmt.Fprintf(out, "%d strategies\n", len(objects))
			return nil
		},
	}
}

// ============================================================================
// LIST-PARAMS
// ============================================================================

func (a *app) newListParamsCmd() *cobra.Command {
	var phaseName string

	cmd := &cobra.Command{
		Use:   "list-params <class>",
		Short: "Print the parameters of a built-in strategy class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ph, err := phase.Parse(phaseName)
			if err != nil {
				return err
			}
			strat, err := a.loadBuiltin(args[0])
			if err != nil {
				return err
			}

			bySpace, err := params.DetectAll(strat)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, space := range sortedSpaces(bySpace) {
				for _, n := range bySpace[space] {
					dim, err := n.Parameter.Space(n.Name)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s\t%s\t%t\t%s\t%v\n",
						space, n.Name, n.Parameter.CanOptimize(ph), n.Parameter, dim)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&phaseName, "phase", phase.Startup.String(), "Run phase (startup, backtest, live, optimize)")
	return cmd
}

// loadBuiltin creates a built-in strategy with its parameters bound to the
// configured spaces.
func (a *app) loadBuiltin(class string) (any, error) {
	strat, err := strategy.Builtin(class)
	if err != nil {
		return nil, err
	}
	if err := hyperopt.LoadHyperParams(a.cfg, strat, nil, nil, true); err != nil {
		return nil, err
	}
	return strat, nil
}

// ============================================================================
// SAMPLE
// ============================================================================

func (a *app) newSampleCmd() *cobra.Command {
	var trials int

	cmd := &cobra.Command{
		Use:   "sample <class>",
		Short: "Draw trials from the search space of a built-in strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strat, err := a.loadBuiltin(args[0])
			if err != nil {
				return err
			}

			for i := 0; i < trials; i++ {
				trial, err := hyperopt.Ask(a.cfg, strat)
				if err != nil {
					return err
				}
				line, err := paramfile.Marshal(trial)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&trials, "trials", 1, "Number of trials to draw")
	return cmd
}

// ============================================================================
// NEW-STRATEGY
// ============================================================================

func (a *app) newNewStrategyCmd() *cobra.Command {
	var (
		class string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "new-strategy <name>",
		Short: "Write a strategy descriptor into the strategy path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := strategy.NewDescriptor(args[0], class)
			if err := d.Validate(); err != nil {
				return err
			}

			path := filepath.Join(a.cfg.StrategyPath, args[0]+strategy.DescriptorExtensions[0])
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to check %s: %w", path, err)
			}

			if err := strategy.WriteDescriptor(d, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Strategy written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&class, "class", "RSIStrategy", "Built-in strategy class")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing descriptor")
	return cmd
}

func sortedSpaces(m map[string][]params.Named) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
