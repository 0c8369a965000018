package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wildfire-sim/internal/admin"
	"wildfire-sim/internal/alert"
	"wildfire-sim/internal/logging"
	"wildfire-sim/internal/scenario"
	"wildfire-sim/internal/sim"
)

var (
	simPrintOnly bool
	simLogFile   string
	simTUI       bool
	simScenario  string
	simNoBackend bool
	simPaused    bool
	simAdminAddr string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time wildfire simulator",
	Long:  "simulate advances the fire in real time, posts sensor alerts to the alert backend and serves the admin API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, closeLog, err := newLogger(cfg, simTUI)
		if err != nil {
			return err
		}
		defer closeLog()

		var tui *alert.TUIWriter
		var base alert.Writer
		if simTUI {
			tui = alert.NewTUIWriter(cfg)
			base = tui
		}
		observers, cleanup, err := newWriters(cfg, simPrintOnly, simLogFile, base, log)
		if err != nil {
			return err
		}
		defer cleanup()

		alertWriters := []alert.AlertWriter{observers}
		if !simNoBackend && cfg.Transport.BackendURL != "" {
			alertWriters = append(alertWriters, alert.NewHTTPWriter(cfg.Transport.BackendURL, cfg.Transport.Timeout, log))
		}
		dispatcher := alert.NewDispatcher(
			alert.NewMultiWriter(alertWriters, nil),
			observers,
			alert.DispatcherOptions{Workers: cfg.Transport.Workers, QueueSize: cfg.Transport.QueueSize, Log: log},
		)
		bus := alert.NewBus()
		defer bus.Close()

		simulator, err := sim.New(cfg, sim.Options{Bus: bus, Sink: dispatcher, Log: log})
		if err != nil {
			dispatcher.Close()
			return err
		}
		defer simulator.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, log)

		if simScenario != "" {
			if err := startScenario(ctx, simScenario, simulator, cfg.Simulation.TickInterval); err != nil {
				dispatcher.Close()
				return err
			}
		}

		addr := cfg.Admin.Addr
		if simAdminAddr != "" {
			addr = simAdminAddr
		}
		srv := admin.NewServer(simulator, bus, log)
		go func() {
			if tui != nil {
				tui.SetAdminStatus(true)
			}
			if err := srv.Start(addr); err != nil {
				log.Error("admin server failed", "error", err)
				if tui != nil {
					tui.SetAdminStatus(false)
				}
			}
		}()

		if !simPaused {
			simulator.Start()
		}
		log.Info("wildfire simulation running", "grid", cfg.Grid.Width*cfg.Grid.Height,
			"strategy", cfg.Simulation.Strategy, "tick", cfg.Simulation.TickInterval, "admin", addr)
		_ = simulator.Run(ctx)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("admin shutdown", "error", err)
		}
		if err := dispatcher.Close(); err != nil {
			log.Warn("dispatcher close", "error", err)
		}
		if tui != nil {
			tui.Close()
		}
		st := dispatcher.Stats()
		log.Info("wildfire simulation stopped", "sim_time", simulator.SimTime(),
			"delivered", st.Delivered, "failed", st.Failed, "dropped", st.Dropped)
		return nil
	},
}

// startScenario applies a built-in or file scenario and polls its events on
// the simulated clock until ctx is done.
func startScenario(ctx context.Context, nameOrPath string, s *sim.Simulator, interval time.Duration) error {
	log := logging.FromContext(ctx)
	sc, err := scenario.Resolve(nameOrPath)
	if err != nil {
		return err
	}
	statuses, err := sc.Apply(s)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		if !st.Applied {
			log.Warn("scenario setup rejected", "reason", st.Message)
		}
	}
	sched, err := scenario.NewScheduler(sc, log)
	if err != nil {
		return err
	}
	log.Info("scenario loaded", "name", sc.Name, "events", len(sc.Events))
	go sched.Run(ctx, s, interval)
	return nil
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print alerts and state to STDOUT instead of writing to GreptimeDB")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export alerts (JSONL); state rows go to <path>.state")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Show alerts and state in a terminal console")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "", "Built-in scenario name or scenario YAML path")
	simulateCmd.Flags().BoolVar(&simNoBackend, "no-backend", false, "Do not post alerts to the alert backend")
	simulateCmd.Flags().BoolVar(&simPaused, "paused", false, "Wait for /start before advancing")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", "", "Admin API listen address (overrides config)")
}
