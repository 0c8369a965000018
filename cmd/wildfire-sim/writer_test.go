package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"wildfire-sim/internal/alert"
	"wildfire-sim/internal/config"
	"wildfire-sim/internal/logging"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
)

func TestNewWritersPrintOnly(t *testing.T) {
	w, cleanup, err := newWriters(config.Default(), true, "", nil, logging.Discard())
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*alert.JSONStdoutWriter); !ok {
		t.Fatalf("expected *alert.JSONStdoutWriter, got %T", w)
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	w, cleanup, err := newWriters(config.Default(), false, "", nil, logging.Discard())
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*alert.JSONStdoutWriter); !ok {
		t.Fatalf("expected *alert.JSONStdoutWriter, got %T", w)
	}
}

func TestNewWritersBaseOverride(t *testing.T) {
	w, cleanup, err := newWriters(config.Default(), false, "", discardWriter{}, logging.Discard())
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(discardWriter); !ok {
		t.Fatalf("expected the base writer, got %T", w)
	}
}

func TestNewWritersLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alerts.log")
	w, cleanup, err := newWriters(config.Default(), false, path, discardWriter{}, logging.Discard())
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*alert.MultiWriter); !ok {
		t.Fatalf("expected *alert.MultiWriter, got %T", w)
	}
	a := sensor.Alert{SenderID: uuid.New(), Kind: sensor.KindMaster, Temperature: 65, CO2Level: 1600, FireDetected: true, SimTime: 5.5, Timestamp: time.Now()}
	if err := w.WriteAlert(a); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.WriteState(telemetry.StateRow{SimTime: 5.5, Strategy: "slow", Trees: 10, Timestamp: time.Now()}); err != nil {
		t.Fatalf("write state failed: %v", err)
	}
	for _, p := range []string{path, path + ".state"} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if info.Size() == 0 {
			t.Fatalf("expected %s to be non-empty", p)
		}
	}
}

func TestRunCommandPrintsSummary(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--config", "", "--quiet", "--steps", "4", "--log-level", "error"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{"steps", "2.0s", "slow", "delivered"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q:\n%s", want, got)
		}
	}
}
