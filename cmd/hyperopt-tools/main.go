// Hyperopt Tools CLI
// Inspects hyperopt result logs and manages strategy parameter files
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/cryptogpt/internal/config"
	"github.com/ajitpratap0/cryptogpt/internal/hyperopt"
	"github.com/ajitpratap0/cryptogpt/internal/metrics"
	"github.com/ajitpratap0/cryptogpt/internal/strategy"
)

// ============================================================================
// APPLICATION STATE
// ============================================================================

// app carries the state shared by all sub commands
type app struct {
	// Global flags
	configPath string
	logLevel   string
	logFormat  string

	cfg           *config.Config
	resolver      hyperopt.Resolver
	metricsServer *metrics.Server
}

// ============================================================================
// MAIN
// ============================================================================

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{resolver: strategy.NewDirResolver()}

	root := &cobra.Command{
		Use:               "hyperopt-tools",
		Short:             "Inspect hyperopt results and manage strategy parameter files",
		Version:           config.GetVersion(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to the configuration file (default: ./configs/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format override (console, json)")

	root.AddCommand(
		a.newShowParamsCmd(),
		a.newExportCmd(),
		a.newListResultsCmd(),
		a.newSpacesCmd(),
		a.newListStrategiesCmd(),
		a.newListParamsCmd(),
		a.newSampleCmd(),
		a.newNewStrategyCmd(),
	)
	return root
}

// setup loads the configuration, initializes logging and starts the metrics
// server when a port is configured.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.App.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.App.LogFormat = a.logFormat
	}
	config.InitLoggerWithOutput(cfg.App.LogLevel, cfg.App.LogFormat, cmd.ErrOrStderr())
	a.cfg = cfg

	if cfg.Monitoring.PrometheusPort > 0 {
		a.metricsServer = metrics.NewServer(cfg.Monitoring.PrometheusPort, config.NewLogger("hyperopt-tools"))
		if err := a.metricsServer.Start(); err != nil {
			return err
		}
	}

	log.Debug().
		Str("command", cmd.Name()).
		Strs("spaces", cfg.Spaces).
		Str("strategy_path", cfg.StrategyPath).
		Msg("Configuration loaded")
	return nil
}

// teardown flushes metrics once the command has finished
func (a *app) teardown() error {
	if a.cfg != nil && a.cfg.Monitoring.MetricsFile != "" {
		if err := metrics.WriteTextfile(a.cfg.Monitoring.MetricsFile); err != nil {
			log.Error().Err(err).Str("path", a.cfg.Monitoring.MetricsFile).Msg("Failed to write metrics file")
			return err
		}
	}

	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down metrics server")
			return err
		}
	}
	return nil
}
