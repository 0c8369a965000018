package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"wildfire-sim/internal/grid"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
	"wildfire-sim/internal/weather"
)

// TickResult summarizes one update.
type TickResult struct {
	SimTime float64
	Ignited int
	Burnt   int
	Alerts  []sensor.Alert
	State   telemetry.StateRow
}

// Step advances one tick of dt seconds while the loop is stopped. A zero dt
// uses the configured step time.
func (s *Simulator) Step(dt float64) (Status, error) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return Status{}, fmt.Errorf("%w: elapsed time %v", ErrInvalidValue, dt)
	}
	if dt < 0 {
		return Status{}, fmt.Errorf("%w: %v", ErrNegativeElapsed, dt)
	}
	if dt == 0 {
		dt = s.cfg.Simulation.StepTime
	}
	s.mu.Lock()
	if s.running {
		st := s.reject("stop the simulation before stepping")
		s.mu.Unlock()
		return st, nil
	}
	res := s.updateLocked(dt)
	s.mu.Unlock()

	s.emit(res)
	return applied("stepped to t=%.1fs", res.SimTime), nil
}

// Run drives the simulation from a wall-clock ticker until ctx is done.
// Frames only advance the model while started; the elapsed time of each
// frame is the wall time since the previous one.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Simulation.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			res, ok := s.frame()
			if ok {
				s.emit(res)
			}
		}
	}
}

// frame runs one scheduler frame. The first frame after Start only records
// the wall clock.
func (s *Simulator) frame() (TickResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return TickResult{}, false
	}
	now := s.now()
	if s.lastFrame.IsZero() {
		s.lastFrame = now
		return TickResult{}, false
	}
	dt := now.Sub(s.lastFrame).Seconds()
	s.lastFrame = now
	if dt <= 0 {
		return TickResult{}, false
	}
	return s.updateLocked(dt), true
}

// updateLocked applies one tick: snapshot, fire spread, sensors, weather.
// Callers hold mu.
func (s *Simulator) updateLocked(dt float64) TickResult {
	s.history.Push(s.captureLocked())
	s.simTime += dt

	spread := s.strategy.Advance(s.grid, dt, s.wind.Speed, s.wind.Direction)

	env := sensor.Environment{
		Ambient: weather.SampleAmbient(s.cfg.Environment.Humidity, s.rng),
		SimTime: s.simTime,
		Now:     s.now(),
	}
	var alerts []sensor.Alert
	active := 0
	for i := range s.nodes {
		n := &s.nodes[i]
		n.UpdateEnergy(dt, s.sensorCfg)
		if n.Energy == sensor.Active {
			active++
		}
		if a, ok := n.DetectAndReport(s.grid, env, s.sensorCfg, s.rng); ok {
			alerts = append(alerts, a)
		}
	}
	s.alertsTotal += len(alerts)

	s.wind = s.wind.Drift(dt, s.cfg.Wind.MaxSpeed, s.rng)

	counts := s.grid.Counts()
	row := telemetry.StateRow{
		SimTime:       s.simTime,
		Strategy:      s.strategy.Kind().String(),
		WindSpeed:     s.wind.Speed,
		WindDirection: s.wind.Direction,
		Empty:         counts[grid.Empty],
		Trees:         counts[grid.Tree],
		Burning:       counts[grid.Burning],
		Burnt:         counts[grid.Burnt],
		Sensors:       len(s.nodes),
		ActiveSensors: active,
		AlertsEmitted: len(alerts),
		Timestamp:     env.Now.UTC(),
	}
	if spread.Ignited > 0 || spread.Burnt > 0 || len(alerts) > 0 {
		s.log.Debug("tick", "sim_time", s.simTime, "ignited", spread.Ignited, "burnt", spread.Burnt,
			"burning", row.Burning, "alerts", len(alerts))
	}
	return TickResult{
		SimTime: s.simTime,
		Ignited: spread.Ignited,
		Burnt:   spread.Burnt,
		Alerts:  alerts,
		State:   row,
	}
}

// emit hands the tick's alerts and state row to the bus and the sink.
// It runs without holding mu so subscribers may call back into the
// simulator.
func (s *Simulator) emit(res TickResult) {
	if s.bus != nil {
		for _, a := range res.Alerts {
			s.bus.Publish(a)
		}
	}
	if s.sink != nil {
		s.sink.SendAlerts(res.Alerts)
		s.sink.SendState(res.State)
	}
}
