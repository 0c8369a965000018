// Package propagation advances fire across a grid.
package propagation

import (
	"fmt"
	"strings"
)

// Kind selects one of the fixed propagation models.
type Kind uint8

const (
	Slow Kind = iota
	Fast
)

func (k Kind) String() string {
	switch k {
	case Slow:
		return "slow"
	case Fast:
		return "fast"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind converts "slow" or "fast" (case-insensitive) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slow":
		return Slow, nil
	case "fast":
		return Fast, nil
	default:
		return Slow, fmt.Errorf("unknown propagation strategy %q", s)
	}
}

// Params is the constant table of a propagation model.
type Params struct {
	BaseProbability    float64
	WindFactor         float64
	HumidityFactor     float64
	BurnThreshold      float64 // seconds of burning before a cell is Burnt
	CheckRadius        float64 // neighbor scan radius in cells
	ReachLimit         float64 // max distance with nonzero ignition probability
	IgnitionMultiplier float64
	InitialIntensity   float64
	GrowthRate         float64 // intensity gained per second of burning
}

// Params returns the default table for k.
func (k Kind) Params() Params {
	switch k {
	case Fast:
		return Params{
			BaseProbability:    0.75,
			WindFactor:         0.15,
			HumidityFactor:     0.10,
			BurnThreshold:      8.0,
			CheckRadius:        2.0,
			ReachLimit:         1.5,
			IgnitionMultiplier: 1.5,
			InitialIntensity:   0.6,
			GrowthRate:         0.1,
		}
	default:
		return Params{
			BaseProbability:    0.30,
			WindFactor:         0.05,
			HumidityFactor:     0.20,
			BurnThreshold:      15.0,
			CheckRadius:        1.0,
			ReachLimit:         1.5,
			IgnitionMultiplier: 0.8,
			InitialIntensity:   0.2,
			GrowthRate:         0.05,
		}
	}
}
