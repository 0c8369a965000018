package main

import (
	"log/slog"
	"os"

	"wildfire-sim/internal/alert"
	"wildfire-sim/internal/config"
	"wildfire-sim/internal/telemetry"
)

// newWriters sets up the observation writers that see every alert and state
// row. base replaces the STDOUT/GreptimeDB choice when non-nil. It returns
// the writer and a cleanup function to close any resources.
func newWriters(cfg *config.Config, printOnly bool, logFile string, base alert.Writer, log *slog.Logger) (alert.Writer, func(), error) {
	cleanup := func() {}

	writer := base
	if writer == nil {
		var err error
		if writer, err = baseWriters(cfg, printOnly, log); err != nil {
			return nil, nil, err
		}
	}
	if logFile == "" {
		return writer, cleanup, nil
	}

	fw, err := alert.NewFileWriter(logFile, logFile+".state")
	if err != nil {
		return nil, nil, err
	}
	mw := alert.NewMultiWriter([]alert.AlertWriter{writer, fw}, []alert.StateWriter{writer, fw})
	cleanup = func() { fw.Close() }
	return mw, cleanup, nil
}

// baseWriters chooses the underlying writer based on the printOnly flag and
// env vars.
func baseWriters(cfg *config.Config, printOnly bool, log *slog.Logger) (alert.Writer, error) {
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if printOnly || endpoint == "" {
		return alert.NewStdoutWriter(cfg), nil
	}
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	return alert.NewGreptimeDBWriter(endpoint, database, telemetry.AlertTableName, telemetry.StateTableName, log)
}

// newAlertWriter creates the writer used by replay.
func newAlertWriter(cfg *config.Config, printOnly bool, log *slog.Logger) (alert.AlertWriter, error) {
	w, _, err := newWriters(cfg, printOnly, "", nil, log)
	return w, err
}
