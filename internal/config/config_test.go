package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wildfire-sim/internal/propagation"
	"wildfire-sim/internal/sensor"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simulation.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
grid:
  width: 30
  height: 25
simulation:
  strategy: fast
  tick_interval: 250ms
wind:
  initial_speed: 3
sensors:
  master_ids:
    - c0e855b8-a65f-4bc4-bc1d-d5f4d592fa1b
transport:
  timeout: 2s
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Grid.Width != 30 || cfg.Grid.Height != 25 {
		t.Errorf("unexpected grid: %+v", cfg.Grid)
	}
	if cfg.StrategyKind() != propagation.Fast || cfg.Simulation.TickInterval != 250*time.Millisecond {
		t.Errorf("unexpected simulation section: %+v", cfg.Simulation)
	}
	if cfg.Wind.InitialSpeed != 3 || cfg.Wind.MaxSpeed != 10 {
		t.Errorf("defaults not kept under partial section: %+v", cfg.Wind)
	}
	if len(cfg.Sensors.MasterIDs) != 1 || cfg.Transport.Timeout != 2*time.Second {
		t.Errorf("unexpected sensors/transport: %+v %+v", cfg.Sensors, cfg.Transport)
	}
	if cfg.Grid.CellSizeKm != 0.1 || cfg.Environment.Humidity != 50 {
		t.Errorf("defaults lost: %+v %+v", cfg.Grid, cfg.Environment)
	}
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, err := Load("../../config/simulation.yaml", "")
	if err != nil {
		t.Fatalf("sample config: %v", err)
	}
	if len(cfg.Sensors.MasterIDs) != 3 || len(cfg.Sensors.SlaveIDs) != 4 {
		t.Fatalf("unexpected id pools: %+v", cfg.Sensors)
	}
}

func TestLoadConfig_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown strategy": "simulation:\n  strategy: medium\n",
		"humidity range":   "environment:\n  humidity: 130\n",
		"unknown field":    "grid:\n  depth: 3\n",
		"bad id":           "sensors:\n  slave_ids: [not-a-uuid]\n",
		"bad duration":     "transport:\n  timeout: soon\n",
		"wrong type":       "grid:\n  width: wide\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body), ""); err == nil {
				t.Fatalf("expected validation error")
			} else if !strings.Contains(err.Error(), "schema validation failed") && !strings.Contains(err.Error(), "cannot") {
				t.Fatalf("expected schema error, got %v", err)
			}
		})
	}
}

func TestValidateCrossField(t *testing.T) {
	cases := map[string]func(*Config){
		"retain >= capacity": func(c *Config) { c.Simulation.HistoryRetain = 20 },
		"burn min > max":     func(c *Config) { c.Environment.BurnTimeMin = 20 },
		"speed above max":    func(c *Config) { c.Wind.InitialSpeed = 11 },
		"zero workers":       func(c *Config) { c.Transport.Workers = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ALERT_BACKEND_URL", "http://backend:9000/alerts")
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Transport.BackendURL != "http://backend:9000/alerts" {
		t.Fatalf("env override not applied: %s", cfg.Transport.BackendURL)
	}
}

func TestStrategyParamsBurnThresholds(t *testing.T) {
	c := Default()
	c.Environment.BurnTimeMin = 6
	c.Environment.BurnTimeMax = 20
	if got := c.StrategyParams(propagation.Fast).BurnThreshold; got != 6 {
		t.Fatalf("fast threshold %v", got)
	}
	if got := c.StrategyParams(propagation.Slow).BurnThreshold; got != 20 {
		t.Fatalf("slow threshold %v", got)
	}
	d := Default()
	if d.StrategyParams(propagation.Fast) != propagation.Fast.Params() || d.StrategyParams(propagation.Slow) != propagation.Slow.Params() {
		t.Fatalf("defaults must reproduce the parameter table")
	}
}

func TestSensorConfig(t *testing.T) {
	c := Default()
	if c.SensorConfig() != sensor.DefaultConfig() {
		t.Fatalf("sensor defaults diverge: %+v", c.SensorConfig())
	}
	if c.DetectionRadius(sensor.KindMaster) != 10 || c.DetectionRadius(sensor.KindSlave) != 5 {
		t.Fatalf("unexpected radii")
	}
}

func TestDefaultSchemaCompiles(t *testing.T) {
	if err := ValidateWithCue("empty.yaml", []byte("{}"), DefaultSchema()); err != nil {
		t.Fatalf("empty config rejected: %v", err)
	}
}
