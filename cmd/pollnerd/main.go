package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pollnerd/internal/config"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	// Logger, built in PersistentPreRunE
	logger *zap.Logger
)

// rootCmd runs the monitor daemon when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "pollnerd",
	Short: "pollnerd - PollEverywhere monitor with human fallback",
	Long: `pollnerd watches your PollEverywhere classes, answers multiple-choice
questions it is confident about, and texts you the rest.

Each class runs in its own browser context during its configured time
window. New questions are classified by a Gemma model; high and medium
confidence answers are submitted directly, everything else is escalated
over iMessage where you reply with an option number.

Run without arguments to start monitoring.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		cfg, err := config.Load(cfgPath)
		if err == nil && cfg.Logging.Development {
			zcfg = zap.NewDevelopmentConfig()
		}
		if err == nil && cfg.Logging.Level != "" {
			if lvl, perr := zapcore.ParseLevel(cfg.Logging.Level); perr == nil {
				zcfg.Level = zap.NewAtomicLevelAt(lvl)
			}
		}
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runMonitor,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultConfigPath(), "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(messageCmd)
	rootCmd.AddCommand(classesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
