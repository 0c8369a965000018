package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wildfire-sim/internal/alert"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayBackend   bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an alert log file",
	Long:  "replay feeds alerts from a JSONL log back into GreptimeDB, STDOUT or the alert backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, closeLog, err := newLogger(cfg, false)
		if err != nil {
			return err
		}
		defer closeLog()

		var writer alert.AlertWriter
		if replayBackend {
			writer = alert.NewHTTPWriter(cfg.Transport.BackendURL, cfg.Transport.Timeout, log)
		} else if writer, err = newAlertWriter(cfg, replayPrintOnly, log); err != nil {
			return err
		}
		n, err := alert.ReplayLogFile(replayInput, writer, replaySpeed)
		log.Info("replay finished", "alerts", n, "input", replayInput)
		return err
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to alert log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print alerts to STDOUT instead of writing to GreptimeDB")
	replayCmd.Flags().BoolVar(&replayBackend, "backend", false, "Post alerts to the alert backend instead")
	replayCmd.MarkFlagRequired("input")
}
