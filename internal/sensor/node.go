package sensor

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"wildfire-sim/internal/grid"
	"wildfire-sim/internal/weather"
)

// FireMap is the read-only view of the grid a node senses.
type FireMap interface {
	Width() int
	Height() int
	IsBurning(row, col int) bool
}

// Environment carries the per-tick conditions passed to every node.
type Environment struct {
	Ambient weather.Ambient
	SimTime float64
	Now     time.Time
}

// Node is a sensor fixed on one grid cell. It is a plain value so snapshots
// can copy it without sharing state.
type Node struct {
	ID               uuid.UUID   `json:"id"`
	Kind             Kind        `json:"kind"`
	Row              int         `json:"row"`
	Col              int         `json:"col"`
	DetectionRadius  float64     `json:"detection_radius"`
	Energy           EnergyState `json:"energy"`
	DutyTimer        float64     `json:"duty_timer"`
	ActiveRemaining  float64     `json:"active_remaining"`
	Temperature      float64     `json:"temperature"`
	CO2Level         float64     `json:"co2_level"`
	LastTransmission float64     `json:"last_transmission"`
}

// NewNode returns a dormant node at ambient readings.
func NewNode(id uuid.UUID, kind Kind, row, col int, radius float64) Node {
	return Node{
		ID:              id,
		Kind:            kind,
		Row:             row,
		Col:             col,
		DetectionRadius: radius,
		Energy:          Dormant,
		Temperature:     initialTemperature,
		CO2Level:        DefaultAmbientCO2,
	}
}

// Pos returns the node's cell.
func (n *Node) Pos() grid.Pos { return grid.Pos{Row: n.Row, Col: n.Col} }

// Listening reports whether the node senses this tick. Masters always do.
func (n *Node) Listening() bool {
	return n.Kind == KindMaster || n.Energy == Active
}

// UpdateEnergy advances the duty cycle by elapsed seconds.
func (n *Node) UpdateEnergy(elapsed float64, cfg Config) {
	if n.Energy == Active {
		n.ActiveRemaining -= elapsed
		if n.ActiveRemaining <= 0 {
			n.Energy = Dormant
			n.ActiveRemaining = 0
		}
		return
	}
	n.DutyTimer += elapsed
	if n.DutyTimer >= cfg.ActivationInterval {
		n.Energy = Active
		n.DutyTimer = 0
		n.ActiveRemaining = cfg.ActiveDuration
	}
}

// DetectAndReport refreshes the readings from fires within the detection
// radius and returns an alert when a threshold is crossed outside the
// cooldown window. Dormant slaves neither sense nor report.
func (n *Node) DetectAndReport(fires FireMap, env Environment, cfg Config, rng *rand.Rand) (Alert, bool) {
	if !n.Listening() {
		return Alert{}, false
	}

	n.regress(env.Ambient, cfg, rng)
	detected := n.sense(fires, cfg)

	overThreshold := n.Temperature > cfg.TemperatureThreshold || n.CO2Level > cfg.CO2Threshold
	if !overThreshold || env.SimTime-n.LastTransmission <= cfg.Cooldown {
		return Alert{}, false
	}
	n.LastTransmission = env.SimTime
	return Alert{
		SenderID:     n.ID,
		Kind:         n.Kind,
		Row:          n.Row,
		Col:          n.Col,
		Temperature:  n.Temperature,
		CO2Level:     n.CO2Level,
		FireDetected: detected,
		SimTime:      env.SimTime,
		Timestamp:    env.Now.UTC(),
	}, true
}

// regress pulls readings toward ambient and adds measurement jitter.
func (n *Node) regress(amb weather.Ambient, cfg Config, rng *rand.Rand) {
	n.Temperature = 0.9*n.Temperature + 0.1*amb.Temperature
	n.CO2Level = 0.9*n.CO2Level + 0.1*cfg.AmbientCO2
	n.Temperature += (rng.Float64() - 0.5) * temperatureJitter
	n.CO2Level += (rng.Float64() - 0.5) * co2Jitter
}

// sense scans the detection box in row-major order and applies the influence
// of the first burning cell within range. It stops at that cell even when a
// nearer fire exists later in the scan.
func (n *Node) sense(fires FireMap, cfg Config) bool {
	reach := int(n.DetectionRadius)
	actualRadius := n.DetectionRadius * cfg.CellSizeKm
	if actualRadius <= 0 {
		return false
	}
	rowEnd := min(fires.Height()-1, n.Row+reach)
	colEnd := min(fires.Width()-1, n.Col+reach)
	for r := max(0, n.Row-reach); r <= rowEnd; r++ {
		for c := max(0, n.Col-reach); c <= colEnd; c++ {
			if !fires.IsBurning(r, c) {
				continue
			}
			distance := grid.Distance(n.Pos(), grid.Pos{Row: r, Col: c}) * cfg.CellSizeKm
			if distance > actualRadius {
				continue
			}
			influence := 1 - distance/actualRadius
			n.Temperature += fireTemperatureGain * influence
			n.CO2Level += fireCO2Gain * influence
			return true
		}
	}
	return false
}
