package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides,
// e.g. CRYPTOGPT_APP_LOG_LEVEL or CRYPTOGPT_DISABLEPARAMEXPORT
const EnvPrefix = "CRYPTOGPT"

// Well-known hyperopt spaces
const (
	SpaceAll        = "all"
	SpaceDefault    = "default"
	SpaceBuy        = "buy"
	SpaceSell       = "sell"
	SpaceEnter      = "enter"
	SpaceExit       = "exit"
	SpaceROI        = "roi"
	SpaceStoploss   = "stoploss"
	SpaceTrailing   = "trailing"
	SpaceProtection = "protection"
	SpaceTrades     = "trades"
)

// KnownSpaces lists the values accepted in the spaces setting
var KnownSpaces = []string{
	SpaceAll, SpaceDefault, SpaceBuy, SpaceSell, SpaceEnter, SpaceExit,
	SpaceROI, SpaceStoploss, SpaceTrailing, SpaceProtection, SpaceTrades,
}

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`

	// Spaces selects the hyperopt spaces to optimize
	Spaces []string `mapstructure:"spaces"`

	// Optimizer is the name of the search space backend
	Optimizer string `mapstructure:"optimizer"`

	// RecursiveStrategySearch makes the strategy resolver descend into subdirectories
	RecursiveStrategySearch bool `mapstructure:"recursive_strategy_search"`

	// DisableParamExport turns off automatic parameter file export
	DisableParamExport bool `mapstructure:"disableparamexport"`

	StrategyPath       string `mapstructure:"strategy_path"`
	UserDataDir        string `mapstructure:"user_data_dir"`
	HyperoptResultsDir string `mapstructure:"hyperopt_results_dir"`
}

// AppConfig contains application-level settings
type AppConfig struct {
	Name      string `mapstructure:"name"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // json or console
}

// MonitoringConfig contains monitoring settings
type MonitoringConfig struct {
	PrometheusPort int    `mapstructure:"prometheus_port"` // 0 disables the metrics server
	MetricsFile    string `mapstructure:"metrics_file"`    // textfile collector output
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment is present
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	cfg.resolvePaths()
	return &cfg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cryptogpt")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "console")

	v.SetDefault("monitoring.prometheus_port", 0)
	v.SetDefault("monitoring.metrics_file", "")

	v.SetDefault("spaces", []string{SpaceDefault})
	v.SetDefault("optimizer", "random")
	v.SetDefault("recursive_strategy_search", false)
	v.SetDefault("disableparamexport", false)

	v.SetDefault("user_data_dir", "user_data")
	v.SetDefault("strategy_path", "")
	v.SetDefault("hyperopt_results_dir", "")
}

// resolvePaths derives unset directories from UserDataDir
func (c *Config) resolvePaths() {
	if c.StrategyPath == "" {
		c.StrategyPath = filepath.Join(c.UserDataDir, "strategies")
	}
	if c.HyperoptResultsDir == "" {
		c.HyperoptResultsDir = filepath.Join(c.UserDataDir, "hyperopt_results")
	}
}

// HasSpaceListed reports whether space appears verbatim in Spaces
func (c *Config) HasSpaceListed(space string) bool {
	for _, s := range c.Spaces {
		if s == space {
			return true
		}
	}
	return false
}
