package sim

import (
	"fmt"
	"math"
	"time"

	"wildfire-sim/internal/grid"
	"wildfire-sim/internal/propagation"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/weather"
)

func (s *Simulator) checkBounds(row, col int) error {
	if !s.grid.InBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d grid", ErrOutOfBounds, row, col, s.grid.Width(), s.grid.Height())
	}
	return nil
}

// SetCellState sets a cell to Empty or Tree, or lights a Tree like
// IgniteCell. A Burnt cell may only be reset to Empty or Tree.
func (s *Simulator) SetCellState(row, col int, state grid.State) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkBounds(row, col); err != nil {
		return Status{}, err
	}
	c := s.grid.At(row, col)
	switch state {
	case grid.Empty, grid.Tree:
		c.SetState(state)
		if state == grid.Tree && c.Humidity == 0 {
			c.Humidity = s.cfg.Environment.Humidity
		}
		return applied("cell (%d,%d) set to %s", row, col, state), nil
	case grid.Burning:
		if !c.Ignite(ignitionIntensity) {
			return s.reject("cannot set %s cell (%d,%d) to burning", c.State, row, col), nil
		}
		return applied("cell (%d,%d) ignited", row, col), nil
	case grid.Burnt:
		if c.State != grid.Burning && c.State != grid.Burnt {
			return s.reject("only a burning cell can be set to burnt, (%d,%d) is %s", row, col, c.State), nil
		}
		c.SetState(grid.Burnt)
		return applied("cell (%d,%d) set to burnt", row, col), nil
	default:
		return Status{}, fmt.Errorf("%w: cell state %d", ErrInvalidValue, state)
	}
}

// IgniteCell sets a Tree cell burning.
func (s *Simulator) IgniteCell(row, col int) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkBounds(row, col); err != nil {
		return Status{}, err
	}
	c := s.grid.At(row, col)
	if !c.Ignite(ignitionIntensity) {
		return s.reject("cannot ignite %s cell (%d,%d)", c.State, row, col), nil
	}
	s.log.Info("cell ignited", "row", row, "col", col)
	return applied("cell (%d,%d) ignited", row, col), nil
}

// PlaceSensorNode adds a node of kind at (row,col). At most one node may
// occupy a cell.
func (s *Simulator) PlaceSensorNode(row, col int, kind sensor.Kind) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkBounds(row, col); err != nil {
		return Status{}, err
	}
	if kind != sensor.KindMaster && kind != sensor.KindSlave {
		return Status{}, fmt.Errorf("%w: sensor kind %q", ErrInvalidValue, kind)
	}
	for i := range s.nodes {
		if s.nodes[i].Row == row && s.nodes[i].Col == col {
			return s.reject("a %s node already occupies (%d,%d)", s.nodes[i].Kind, row, col), nil
		}
	}
	n := sensor.NewNode(s.ids.Next(kind), kind, row, col, s.cfg.DetectionRadius(kind))
	s.nodes = append(s.nodes, n)
	s.log.Info("sensor placed", "node", n.ID, "kind", kind, "row", row, "col", col)
	return applied("%s node %s placed at (%d,%d)", kind, n.ID, row, col), nil
}

// SetWindSpeed sets the wind speed, clamped to the configured maximum.
func (s *Simulator) SetWindSpeed(v float64) (Status, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Status{}, fmt.Errorf("%w: wind speed %v", ErrInvalidValue, v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wind.Speed = v
	s.wind = s.wind.Clamp(s.cfg.Wind.MaxSpeed)
	return applied("wind speed %.1f m/s", s.wind.Speed), nil
}

// SetWindDirection sets the wind direction in degrees.
func (s *Simulator) SetWindDirection(d float64) (Status, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return Status{}, fmt.Errorf("%w: wind direction %v", ErrInvalidValue, d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wind.Direction = weather.NormalizeDirection(d)
	return applied("wind direction %.0f°", s.wind.Direction), nil
}

// SetStrategy switches the propagation model.
func (s *Simulator) SetStrategy(kind propagation.Kind) (Status, error) {
	if kind != propagation.Slow && kind != propagation.Fast {
		return Status{}, fmt.Errorf("%w: strategy %d", ErrInvalidValue, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == s.strategy.Kind() {
		return applied("strategy already %s", kind), nil
	}
	s.strategy = propagation.NewWithParams(kind, s.cfg.StrategyParams(kind), s.rng)
	s.log.Info("strategy changed", "strategy", kind)
	return applied("strategy set to %s", kind), nil
}

// Start lets Run advance the simulation.
func (s *Simulator) Start() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return Status{Applied: false, Message: "simulation already running"}
	}
	s.running = true
	s.lastFrame = time.Time{}
	s.log.Info("simulation started", "sim_time", s.simTime)
	return Status{Applied: true, Message: "simulation started"}
}

// Stop pauses Run.
func (s *Simulator) Stop() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return Status{Applied: false, Message: "simulation not running"}
	}
	s.running = false
	s.log.Info("simulation stopped", "sim_time", s.simTime)
	return Status{Applied: true, Message: "simulation stopped"}
}

// Running reports whether the loop is advancing.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Reset stops the simulation, regrows the forest at density, removes every
// node and clears the history. Wind is kept.
func (s *Simulator) Reset(density float64) (Status, error) {
	if math.IsNaN(density) || density < 0 || density > 1 {
		return Status{}, fmt.Errorf("%w: density %v outside [0,1]", ErrInvalidValue, density)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.grid.Populate(density, s.rng)
	s.nodes = nil
	s.simTime = 0
	s.alertsTotal = 0
	s.history.Clear()
	s.history.Push(s.captureLocked())
	s.log.Info("simulation reset", "density", density)
	return applied("forest reset with density %.2f", density), nil
}

// GoBack discards the latest snapshot and restores the one beneath it.
func (s *Simulator) GoBack() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return s.reject("stop the simulation before going back"), nil
	}
	snap, ok := s.history.Back()
	if !ok {
		return s.reject("no history available"), nil
	}
	if err := s.restoreLocked(snap); err != nil {
		return Status{}, err
	}
	s.log.Info("history restored", "sim_time", s.simTime, "depth", s.history.Len())
	return applied("restored state at t=%.1fs", s.simTime), nil
}

// reject logs and returns a rejected status. Callers hold mu.
func (s *Simulator) reject(format string, args ...any) Status {
	st := rejected(format, args...)
	s.log.Warn("action rejected", "reason", st.Message)
	return st
}
