// Package scenario scripts a simulation: the starting forest, fires and
// sensors, and events fired on the simulated clock.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wildfire-sim/internal/grid"
	"wildfire-sim/internal/propagation"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/sim"
)

// Event actions.
const (
	ActionIgnite   = "ignite"
	ActionWind     = "wind"
	ActionSensor   = "sensor"
	ActionStrategy = "strategy"
)

// Scenario sets up a forest, its first fires and its sensor network, and
// schedules events against the simulated clock.
type Scenario struct {
	Name        string    `yaml:"name,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Forest      Forest    `yaml:"forest"`
	Strategy    string    `yaml:"strategy,omitempty"`
	Wind        *WindSpec `yaml:"wind,omitempty"`
	Ignitions   []Cell    `yaml:"ignitions,omitempty"`
	Sensors     []Sensor  `yaml:"sensors,omitempty"`
	Events      []Event   `yaml:"events,omitempty"`
}

// Forest describes the initial vegetation. Trees are planted on top of the
// random fill.
type Forest struct {
	Density float64 `yaml:"density"`
	Trees   []Cell  `yaml:"trees,omitempty"`
}

// Cell addresses one grid position.
type Cell struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

// WindSpec sets both wind components.
type WindSpec struct {
	Speed     float64 `yaml:"speed"`
	Direction float64 `yaml:"direction"`
}

// Sensor places one node.
type Sensor struct {
	Row  int    `yaml:"row"`
	Col  int    `yaml:"col"`
	Kind string `yaml:"kind"`
}

// Event is an action fired on a cron schedule evaluated on simulated time.
// Schedule accepts five-field cron expressions and descriptors such as
// "@every 30s".
type Event struct {
	Name     string    `yaml:"name,omitempty"`
	Schedule string    `yaml:"schedule"`
	Action   string    `yaml:"action"`
	Once     bool      `yaml:"once,omitempty"`
	Row      int       `yaml:"row,omitempty"`
	Col      int       `yaml:"col,omitempty"`
	Kind     string    `yaml:"kind,omitempty"`
	Wind     *WindSpec `yaml:"wind,omitempty"`
	Strategy string    `yaml:"strategy,omitempty"`
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a scenario.
func Parse(b []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values that do not depend on the grid size.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Forest.Density < 0 || s.Forest.Density > 1 {
		errs = append(errs, fmt.Errorf("forest density %v outside [0,1]", s.Forest.Density))
	}
	if s.Strategy != "" {
		if _, err := propagation.ParseKind(s.Strategy); err != nil {
			errs = append(errs, err)
		}
	}
	for i, sn := range s.Sensors {
		if _, err := sensor.ParseKind(sn.Kind); err != nil {
			errs = append(errs, fmt.Errorf("sensor %d: %w", i, err))
		}
	}
	for i, ev := range s.Events {
		if _, err := parseSchedule(ev.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("event %d (%s): %w", i, ev.Name, err))
		}
		if err := ev.validate(); err != nil {
			errs = append(errs, fmt.Errorf("event %d (%s): %w", i, ev.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (ev Event) validate() error {
	switch ev.Action {
	case ActionIgnite:
		return nil
	case ActionSensor:
		_, err := sensor.ParseKind(ev.Kind)
		return err
	case ActionWind:
		if ev.Wind == nil {
			return errors.New("wind event needs a wind section")
		}
		return nil
	case ActionStrategy:
		_, err := propagation.ParseKind(ev.Strategy)
		return err
	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
}

// Apply resets s to the scenario's starting state. Out-of-bounds
// positions abort with an error; rejected actions such as igniting a
// non-tree cell are returned as statuses.
func (sc *Scenario) Apply(s *sim.Simulator) ([]sim.Status, error) {
	var out []sim.Status
	record := func(st sim.Status, err error) error {
		if err != nil {
			return err
		}
		out = append(out, st)
		return nil
	}

	if err := record(s.Reset(sc.Forest.Density)); err != nil {
		return out, err
	}
	if sc.Strategy != "" {
		kind, _ := propagation.ParseKind(sc.Strategy)
		if err := record(s.SetStrategy(kind)); err != nil {
			return out, err
		}
	}
	if sc.Wind != nil {
		if err := record(s.SetWindSpeed(sc.Wind.Speed)); err != nil {
			return out, err
		}
		if err := record(s.SetWindDirection(sc.Wind.Direction)); err != nil {
			return out, err
		}
	}
	for _, c := range sc.Trees() {
		if err := record(s.SetCellState(c.Row, c.Col, grid.Tree)); err != nil {
			return out, err
		}
	}
	for _, c := range sc.Ignitions {
		if err := record(s.IgniteCell(c.Row, c.Col)); err != nil {
			return out, err
		}
	}
	for _, sn := range sc.Sensors {
		kind, err := sensor.ParseKind(sn.Kind)
		if err != nil {
			return out, err
		}
		if err := record(s.PlaceSensorNode(sn.Row, sn.Col, kind)); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Trees returns the explicitly planted cells.
func (sc *Scenario) Trees() []Cell { return sc.Forest.Trees }

// fire runs one event against the simulator.
func (ev Event) fire(s *sim.Simulator) (sim.Status, error) {
	switch ev.Action {
	case ActionIgnite:
		return s.IgniteCell(ev.Row, ev.Col)
	case ActionSensor:
		kind, err := sensor.ParseKind(ev.Kind)
		if err != nil {
			return sim.Status{}, err
		}
		return s.PlaceSensorNode(ev.Row, ev.Col, kind)
	case ActionWind:
		if _, err := s.SetWindSpeed(ev.Wind.Speed); err != nil {
			return sim.Status{}, err
		}
		return s.SetWindDirection(ev.Wind.Direction)
	case ActionStrategy:
		kind, err := propagation.ParseKind(ev.Strategy)
		if err != nil {
			return sim.Status{}, err
		}
		return s.SetStrategy(kind)
	}
	return sim.Status{}, fmt.Errorf("unknown action %q", ev.Action)
}
