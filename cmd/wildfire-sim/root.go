package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"wildfire-sim/internal/config"
	"wildfire-sim/internal/logging"
)

var (
	configPath string
	schemaPath string
	logLevel   string
	logFormat  string
	logOutput  string
)

var rootCmd = &cobra.Command{
	Use:          "wildfire-sim",
	Short:        "Wildfire spread and sensor network simulator",
	Long:         "wildfire-sim simulates fire spreading through a forest grid and the sensor nodes that detect it and raise alerts.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML (empty for built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "Path to CUE schema file (defaults to the embedded schema)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-output", "", "Write logs to this file instead of STDERR")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// loadConfig reads --config, falling back to the defaults when the flag is
// empty.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		cfg := config.Default()
		cfg.ApplyEnv()
		return cfg, nil
	}
	return config.Load(configPath, schemaPath)
}

// newLogger builds the process logger. quiet discards output unless
// --log-output names a file, for modes that own the terminal.
func newLogger(cfg *config.Config, quiet bool) (*slog.Logger, func(), error) {
	level, format := cfg.Logging.Level, cfg.Logging.Format
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	if logOutput == "" && !quiet {
		log, err := logging.New(level, format)
		if err != nil {
			return nil, nil, err
		}
		slog.SetDefault(log)
		return log, func() {}, nil
	}
	var out io.Writer = io.Discard
	cleanup := func() {}
	if logOutput != "" {
		f, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log output: %w", err)
		}
		out = f
		cleanup = func() { f.Close() }
	}
	log, err := logging.NewWriter(out, level, format)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	slog.SetDefault(log)
	return log, cleanup, nil
}
