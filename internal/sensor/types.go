// Package sensor models the fire-detection nodes placed on the grid.
package sensor

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes always-powered masters from duty-cycled slaves.
type Kind string

const (
	KindMaster Kind = "master"
	KindSlave  Kind = "slave"
)

// ParseKind converts "master" or "slave" (case-insensitive) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMaster:
		return KindMaster, nil
	case KindSlave:
		return KindSlave, nil
	default:
		return "", fmt.Errorf("unknown sensor kind %q", s)
	}
}

// EnergyState is the duty-cycle phase of a node.
type EnergyState string

const (
	Dormant EnergyState = "dormant"
	Active  EnergyState = "active"
)

// Defaults from the field deployment.
const (
	DefaultActivationInterval   = 600.0
	DefaultActiveDuration       = 5.0
	DefaultTemperatureThreshold = 60.0
	DefaultCO2Threshold         = 1500.0
	DefaultCooldown             = 5.0
	DefaultCellSizeKm           = 0.1
	DefaultAmbientCO2           = 400.0
	DefaultMasterRadius         = 10.0
	DefaultSlaveRadius          = 5.0

	initialTemperature  = 25.0
	fireTemperatureGain = 50.0
	fireCO2Gain         = 1500.0
	temperatureJitter   = 0.5
	co2Jitter           = 10.0
)

// Config holds the tunables shared by every node.
type Config struct {
	ActivationInterval   float64 // seconds dormant before waking
	ActiveDuration       float64 // seconds awake per wake-up
	TemperatureThreshold float64
	CO2Threshold         float64
	Cooldown             float64 // minimum seconds between two alerts
	CellSizeKm           float64
	AmbientCO2           float64
}

// DefaultConfig returns the deployment defaults.
func DefaultConfig() Config {
	return Config{
		ActivationInterval:   DefaultActivationInterval,
		ActiveDuration:       DefaultActiveDuration,
		TemperatureThreshold: DefaultTemperatureThreshold,
		CO2Threshold:         DefaultCO2Threshold,
		Cooldown:             DefaultCooldown,
		CellSizeKm:           DefaultCellSizeKm,
		AmbientCO2:           DefaultAmbientCO2,
	}
}

// Alert is an immutable report emitted by a node whose readings crossed a threshold.
type Alert struct {
	SenderID     uuid.UUID `json:"uuid"`
	Kind         Kind      `json:"kind"`
	Row          int       `json:"row"`
	Col          int       `json:"col"`
	Temperature  float64   `json:"temperature"`
	CO2Level     float64   `json:"co2_level"`
	FireDetected bool      `json:"fire_detected"`
	SimTime      float64   `json:"sim_time"`
	Timestamp    time.Time `json:"ts"`
}

// Payload is the body posted to the alert backend.
type Payload struct {
	UUID        string  `json:"uuid"`
	Temperature float64 `json:"temperature"`
	CO2Level    float64 `json:"co2_level"`
	Source      string  `json:"source"`
}

// Payload returns the backend representation of a.
func (a Alert) Payload() Payload {
	return Payload{
		UUID:        a.SenderID.String(),
		Temperature: a.Temperature,
		CO2Level:    a.CO2Level,
		Source:      "simulated",
	}
}
