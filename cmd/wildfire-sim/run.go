package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wildfire-sim/internal/alert"
	"wildfire-sim/internal/scenario"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/sim"
	"wildfire-sim/internal/telemetry"
)

var (
	runSteps     int
	runDT        float64
	runScenario  string
	runPrintOnly bool
	runLogFile   string
	runBackend   bool
	runUntilOut  bool
	runQuiet     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a headless simulation for a fixed number of steps",
	Long:  "run steps the simulation manually without a wall clock and prints a summary when done.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, closeLog, err := newLogger(cfg, false)
		if err != nil {
			return err
		}
		defer closeLog()

		var observers alert.Writer
		cleanup := func() {}
		if !runQuiet || runLogFile != "" {
			var base alert.Writer
			if runQuiet {
				base = discardWriter{}
			}
			if observers, cleanup, err = newWriters(cfg, runPrintOnly, runLogFile, base, log); err != nil {
				return err
			}
		}
		defer cleanup()

		var alertWriters []alert.AlertWriter
		var stateWriter alert.StateWriter
		if observers != nil {
			alertWriters = append(alertWriters, observers)
			stateWriter = observers
		}
		if runBackend && cfg.Transport.BackendURL != "" {
			alertWriters = append(alertWriters, alert.NewHTTPWriter(cfg.Transport.BackendURL, cfg.Transport.Timeout, log))
		}
		dispatcher := alert.NewDispatcher(alert.NewMultiWriter(alertWriters, nil), stateWriter,
			alert.DispatcherOptions{Workers: cfg.Transport.Workers, QueueSize: max(cfg.Transport.QueueSize, runSteps+1), Log: log})
		bus := alert.NewBus()
		defer bus.Close()

		simulator, err := sim.New(cfg, sim.Options{Bus: bus, Sink: dispatcher, Log: log})
		if err != nil {
			dispatcher.Close()
			return err
		}
		defer simulator.Close()

		var sched *scenario.Scheduler
		if runScenario != "" {
			sc, err := scenario.Resolve(runScenario)
			if err != nil {
				dispatcher.Close()
				return err
			}
			if _, err := sc.Apply(simulator); err != nil {
				dispatcher.Close()
				return err
			}
			if sched, err = scenario.NewScheduler(sc, log); err != nil {
				dispatcher.Close()
				return err
			}
		}

		steps := 0
		for steps < runSteps {
			if _, err := simulator.Step(runDT); err != nil {
				dispatcher.Close()
				return err
			}
			steps++
			if sched != nil {
				sched.Advance(simulator)
			}
			if runUntilOut && simulator.State().Counts["burning"] == 0 {
				break
			}
		}
		if err := dispatcher.Close(); err != nil {
			log.Warn("dispatcher close", "error", err)
		}
		printSummary(cmd.OutOrStdout(), steps, simulator.State())
		return nil
	},
}

// discardWriter drops everything.
type discardWriter struct{}

func (discardWriter) WriteAlert(sensor.Alert) error       { return nil }
func (discardWriter) WriteState(telemetry.StateRow) error { return nil }

func printSummary(out io.Writer, steps int, v sim.View) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "steps\t%d\n", steps)
	fmt.Fprintf(w, "sim time\t%.1fs\n", v.SimTime)
	fmt.Fprintf(w, "strategy\t%s\n", v.Strategy)
	fmt.Fprintf(w, "wind\t%.1f m/s @ %.0f°\n", v.Wind.Speed, v.Wind.Direction)
	fmt.Fprintf(w, "trees\t%d\n", v.Counts["tree"])
	fmt.Fprintf(w, "burning\t%d\n", v.Counts["burning"])
	fmt.Fprintf(w, "burnt\t%d\n", v.Counts["burnt"])
	fmt.Fprintf(w, "sensors\t%d\n", len(v.Nodes))
	fmt.Fprintf(w, "alerts\t%d\n", v.AlertsTotal)
	if v.Transport != nil {
		fmt.Fprintf(w, "delivered\t%d\n", v.Transport.Delivered)
		fmt.Fprintf(w, "failed\t%d\n", v.Transport.Failed)
		fmt.Fprintf(w, "dropped\t%d\n", v.Transport.Dropped)
	}
	w.Flush()
}

func init() {
	runCmd.Flags().IntVar(&runSteps, "steps", 200, "Number of steps to run")
	runCmd.Flags().Float64Var(&runDT, "dt", 0, "Seconds per step (0 uses simulation.step_time)")
	runCmd.Flags().StringVar(&runScenario, "scenario", "", "Built-in scenario name or scenario YAML path")
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Print alerts and state to STDOUT instead of writing to GreptimeDB")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Path to export alerts (JSONL); state rows go to <path>.state")
	runCmd.Flags().BoolVar(&runBackend, "backend", false, "Post alerts to the alert backend")
	runCmd.Flags().BoolVar(&runUntilOut, "until-out", false, "Stop early once no cell is burning")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "Only print the summary")
}
