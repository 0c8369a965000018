package scenario

import (
	"fmt"
	"sort"
)

// BuiltIn returns predefined scenarios sized for the default 20x20 grid.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"ridge": {
			Name:        "Ridge",
			Description: "A single lightning strike in a dense stand with a steady easterly push.",
			Forest:      Forest{Density: 0.8, Trees: []Cell{{Row: 10, Col: 4}}},
			Strategy:    "slow",
			Wind:        &WindSpec{Speed: 3, Direction: 0},
			Ignitions:   []Cell{{Row: 10, Col: 4}},
			Sensors: []Sensor{
				{Row: 10, Col: 10, Kind: "master"},
				{Row: 5, Col: 14, Kind: "slave"},
				{Row: 15, Col: 14, Kind: "slave"},
			},
		},
		"crosswind": {
			Name:        "Crosswind",
			Description: "Fast fire under a wind that veers south every minute.",
			Forest:      Forest{Density: 0.7, Trees: []Cell{{Row: 2, Col: 2}}},
			Strategy:    "fast",
			Wind:        &WindSpec{Speed: 5, Direction: 0},
			Ignitions:   []Cell{{Row: 2, Col: 2}},
			Sensors:     []Sensor{{Row: 10, Col: 10, Kind: "master"}},
			Events: []Event{
				{Name: "veer", Schedule: "@every 1m", Action: ActionWind, Wind: &WindSpec{Speed: 6, Direction: 90}},
				{Name: "back", Schedule: "@every 2m", Action: ActionWind, Wind: &WindSpec{Speed: 4, Direction: 0}},
			},
		},
		"spot-fires": {
			Name:        "Spot fires",
			Description: "Embers start new fires every 30 simulated seconds around a sensor line.",
			Forest:      Forest{Density: 0.6, Trees: []Cell{{Row: 0, Col: 0}}},
			Strategy:    "slow",
			Ignitions:   []Cell{{Row: 0, Col: 0}},
			Sensors: []Sensor{
				{Row: 10, Col: 2, Kind: "slave"},
				{Row: 10, Col: 10, Kind: "master"},
				{Row: 10, Col: 17, Kind: "slave"},
			},
			Events: []Event{
				{Name: "ember-west", Schedule: "@every 30s", Action: ActionIgnite, Row: 6, Col: 4},
				{Name: "ember-east", Schedule: "@every 45s", Action: ActionIgnite, Row: 14, Col: 15},
				{Name: "flare-up", Schedule: "@every 90s", Action: ActionStrategy, Strategy: "fast", Once: true},
			},
		},
	}
}

// Names lists the built-in scenarios in order.
func Names() []string {
	arcs := BuiltIn()
	out := make([]string, 0, len(arcs))
	for n := range arcs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve returns a built-in scenario by name, or loads nameOrPath from disk.
func Resolve(nameOrPath string) (*Scenario, error) {
	if sc, ok := BuiltIn()[nameOrPath]; ok {
		return &sc, nil
	}
	sc, err := Load(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("scenario %q is neither built in (%v) nor readable: %w", nameOrPath, Names(), err)
	}
	return sc, nil
}
