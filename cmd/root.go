// Package cmd provides the Cobra CLI commands for nbalance.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/denysvitali/nbalance/internal/balance"
	"github.com/denysvitali/nbalance/internal/config"
	"github.com/denysvitali/nbalance/internal/host"
	"github.com/denysvitali/nbalance/internal/logger"
	"github.com/denysvitali/nbalance/internal/output"
	"github.com/denysvitali/nbalance/internal/plugin"
	"github.com/denysvitali/nbalance/internal/version"
)

// envVar selects the logger environment: local, dev or prod
const envVar = "NBALANCE_ENV"

var (
	configPath   string
	logLevel     string
	jsonOutput   bool
	waybarOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "nbalance",
	Short: "Query the remaining balance of a NewAPI account",
	Long: `nbalance queries the remaining balance of a NewAPI user and prints it
in currency units. The same query backs the "余额" chat command and the
query_balance LLM tool.`,
	Version:      fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
	SilenceUsage: true,
	RunE:         runQuery,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/nbalance/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides logging.level)")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.Flags().BoolVar(&waybarOutput, "waybar", false, "Output in waybar JSON format")
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

// loadRuntime loads the config and builds a logger. defaultLevel applies when
// neither --log-level nor logging.level is set.
func loadRuntime(defaultLevel string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return config.Config{}, nil, err
	}

	level := defaultLevel
	if cfg.Logging.Level != "" {
		level = cfg.Logging.Level
	}
	if logLevel != "" {
		level = logLevel
	}

	l, err := logger.NewLogger(os.Getenv(envVar), level)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, l, nil
}

// startEngine loads the balance plugin into a fresh engine.
// The caller must call Shutdown on the returned engine.
func startEngine(ctx context.Context, cfg config.Config, l *zap.Logger) (*host.Engine, *plugin.BalancePlugin, error) {
	p := plugin.NewBalancePlugin(cfg, l)
	engine := host.NewEngine(l)
	if err := engine.Load(ctx, p); err != nil {
		return nil, nil, err
	}
	return engine, p, nil
}

func runQuery(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, l, err := loadRuntime("warn")
	if err != nil {
		if waybarOutput {
			return output.Waybar(out, balance.Result{Text: err.Error(), Outcome: balance.OutcomeException}, 0)
		}
		return err
	}
	defer func() { _ = l.Sync() }()

	engine, p, err := startEngine(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Shutdown(ctx) }()

	res := p.Fetcher().Fetch(ctx)

	switch {
	case waybarOutput:
		return output.Waybar(out, res, cfg.LowBalanceThreshold)
	case jsonOutput:
		return output.JSON(out, res)
	default:
		output.Pretty(out, cfg.APIConfig, res, cfg.LowBalanceThreshold)
		return nil
	}
}
