// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"wildfire-sim/internal/propagation"
	"wildfire-sim/internal/sensor"
)

// GridConfig sizes the forest.
type GridConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	CellSizePx int     `yaml:"cell_size_px"`
	CellSizeKm float64 `yaml:"cell_size_km"`
}

// SimulationConfig drives the tick loop.
type SimulationConfig struct {
	Strategy        string        `yaml:"strategy"`
	StepTime        float64       `yaml:"step_time"`
	TickInterval    time.Duration `yaml:"tick_interval"`
	Seed            int64         `yaml:"seed"`
	HistoryCapacity int           `yaml:"history_capacity"`
	HistoryRetain   int           `yaml:"history_retain"`
	InitialDensity  float64       `yaml:"initial_density"`
}

// WindConfig holds the starting wind and its bound.
type WindConfig struct {
	InitialSpeed     float64 `yaml:"initial_speed"`
	InitialDirection float64 `yaml:"initial_direction"`
	MaxSpeed         float64 `yaml:"max_speed"`
}

// EnvironmentConfig holds ambient conditions.
type EnvironmentConfig struct {
	Humidity    float64 `yaml:"humidity"`
	BurnTimeMin float64 `yaml:"burn_time_min"`
	BurnTimeMax float64 `yaml:"burn_time_max"`
	AmbientCO2  float64 `yaml:"ambient_co2"`
}

// SensorConfig holds the node tunables and preset identities.
type SensorConfig struct {
	TemperatureThreshold  float64  `yaml:"temperature_threshold"`
	CO2Threshold          float64  `yaml:"co2_threshold"`
	TransmissionCooldown  float64  `yaml:"transmission_cooldown"`
	MasterDetectionRadius float64  `yaml:"master_detection_radius"`
	SlaveDetectionRadius  float64  `yaml:"slave_detection_radius"`
	ActivationInterval    float64  `yaml:"activation_interval"`
	ActiveDuration        float64  `yaml:"active_duration"`
	LoRaRangeKm           float64  `yaml:"lora_range_km"`
	MasterIDs             []string `yaml:"master_ids"`
	SlaveIDs              []string `yaml:"slave_ids"`
}

// TransportConfig configures alert delivery.
type TransportConfig struct {
	BackendURL string        `yaml:"backend_url"`
	Workers    int           `yaml:"workers"`
	QueueSize  int           `yaml:"queue_size"`
	Timeout    time.Duration `yaml:"timeout"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AdminConfig configures the HTTP control surface.
type AdminConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the root configuration.
type Config struct {
	Grid        GridConfig        `yaml:"grid"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Wind        WindConfig        `yaml:"wind"`
	Environment EnvironmentConfig `yaml:"environment"`
	Sensors     SensorConfig      `yaml:"sensors"`
	Transport   TransportConfig   `yaml:"transport"`
	Logging     LoggingConfig     `yaml:"logging"`
	Admin       AdminConfig       `yaml:"admin"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Grid: GridConfig{Width: 20, Height: 20, CellSizePx: 30, CellSizeKm: sensor.DefaultCellSizeKm},
		Simulation: SimulationConfig{
			Strategy:        propagation.Slow.String(),
			StepTime:        0.5,
			TickInterval:    100 * time.Millisecond,
			HistoryCapacity: 20,
			HistoryRetain:   10,
			InitialDensity:  0.6,
		},
		Wind:        WindConfig{InitialSpeed: 2, InitialDirection: 45, MaxSpeed: 10},
		Environment: EnvironmentConfig{Humidity: 50, BurnTimeMin: 8, BurnTimeMax: 15, AmbientCO2: sensor.DefaultAmbientCO2},
		Sensors: SensorConfig{
			TemperatureThreshold:  sensor.DefaultTemperatureThreshold,
			CO2Threshold:          sensor.DefaultCO2Threshold,
			TransmissionCooldown:  sensor.DefaultCooldown,
			MasterDetectionRadius: sensor.DefaultMasterRadius,
			SlaveDetectionRadius:  sensor.DefaultSlaveRadius,
			ActivationInterval:    sensor.DefaultActivationInterval,
			ActiveDuration:        sensor.DefaultActiveDuration,
			LoRaRangeKm:           sensor.LoRaRangeKm,
		},
		Transport: TransportConfig{
			BackendURL: "http://localhost:5000/api/receive-alert",
			Workers:    4,
			QueueSize:  64,
			Timeout:    5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Admin:   AdminConfig{Addr: ":8080"},
	}
}

// Load reads a YAML config, validates it against the CUE schema at
// schemaPath (the embedded schema when empty), decodes it over the
// defaults and applies environment overrides.
func Load(configPath, schemaPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	schema := defaultSchema
	if schemaPath != "" {
		if schema, err = os.ReadFile(schemaPath); err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
	}
	if err := ValidateWithCue(configPath, data, schema); err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults without schema validation.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ALERT_BACKEND_URL"); v != "" {
		c.Transport.BackendURL = v
	}
}

// Validate checks the cross-field constraints the schema cannot express.
func (c *Config) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("grid: size %dx%d must be positive", c.Grid.Width, c.Grid.Height)
	}
	if c.Grid.CellSizeKm <= 0 {
		return fmt.Errorf("grid: cell_size_km must be positive")
	}
	if _, err := propagation.ParseKind(c.Simulation.Strategy); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if c.Simulation.StepTime <= 0 {
		return fmt.Errorf("simulation: step_time must be positive")
	}
	if c.Simulation.TickInterval <= 0 {
		return fmt.Errorf("simulation: tick_interval must be positive")
	}
	if c.Simulation.HistoryRetain <= 0 || c.Simulation.HistoryRetain >= c.Simulation.HistoryCapacity {
		return fmt.Errorf("simulation: history_retain %d must be in [1, history_capacity)", c.Simulation.HistoryRetain)
	}
	if c.Simulation.InitialDensity < 0 || c.Simulation.InitialDensity > 1 {
		return fmt.Errorf("simulation: initial_density must be in [0,1]")
	}
	if c.Wind.MaxSpeed < 0 || c.Wind.InitialSpeed < 0 || c.Wind.InitialSpeed > c.Wind.MaxSpeed {
		return fmt.Errorf("wind: initial_speed %.2f must be in [0, max_speed %.2f]", c.Wind.InitialSpeed, c.Wind.MaxSpeed)
	}
	if c.Environment.Humidity < 0 || c.Environment.Humidity > 100 {
		return fmt.Errorf("environment: humidity must be in [0,100]")
	}
	if c.Environment.BurnTimeMin <= 0 || c.Environment.BurnTimeMax < c.Environment.BurnTimeMin {
		return fmt.Errorf("environment: burn times must satisfy 0 < min <= max")
	}
	if c.Sensors.ActivationInterval <= 0 || c.Sensors.ActiveDuration <= 0 {
		return fmt.Errorf("sensors: activation_interval and active_duration must be positive")
	}
	if c.Transport.Workers <= 0 || c.Transport.QueueSize <= 0 {
		return fmt.Errorf("transport: workers and queue_size must be positive")
	}
	return nil
}

// StrategyKind returns the configured propagation strategy.
func (c *Config) StrategyKind() propagation.Kind {
	k, err := propagation.ParseKind(c.Simulation.Strategy)
	if err != nil {
		return propagation.Slow
	}
	return k
}

// StrategyParams returns the parameter table for kind with the burn
// threshold taken from the environment section: the fast strategy burns
// out after burn_time_min, the slow one after burn_time_max.
func (c *Config) StrategyParams(kind propagation.Kind) propagation.Params {
	p := kind.Params()
	if kind == propagation.Fast {
		p.BurnThreshold = c.Environment.BurnTimeMin
	} else {
		p.BurnThreshold = c.Environment.BurnTimeMax
	}
	return p
}

// SensorConfig converts the sensor section for the node model.
func (c *Config) SensorConfig() sensor.Config {
	return sensor.Config{
		ActivationInterval:   c.Sensors.ActivationInterval,
		ActiveDuration:       c.Sensors.ActiveDuration,
		TemperatureThreshold: c.Sensors.TemperatureThreshold,
		CO2Threshold:         c.Sensors.CO2Threshold,
		Cooldown:             c.Sensors.TransmissionCooldown,
		CellSizeKm:           c.Grid.CellSizeKm,
		AmbientCO2:           c.Environment.AmbientCO2,
	}
}

// DetectionRadius returns the radius in cells for a node kind.
func (c *Config) DetectionRadius(kind sensor.Kind) float64 {
	if kind == sensor.KindMaster {
		return c.Sensors.MasterDetectionRadius
	}
	return c.Sensors.SlaveDetectionRadius
}
