// Simulator orchestrating fire spread, sensor nodes and undo history
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"wildfire-sim/internal/alert"
	"wildfire-sim/internal/config"
	"wildfire-sim/internal/grid"
	"wildfire-sim/internal/history"
	"wildfire-sim/internal/propagation"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
	"wildfire-sim/internal/weather"
)

// Invariant violations. Invalid user actions are reported through Status
// instead.
var (
	ErrOutOfBounds     = errors.New("cell out of bounds")
	ErrNegativeElapsed = errors.New("elapsed time must be non-negative")
	ErrInvalidValue    = errors.New("invalid value")
)

// ignitionIntensity is the starting intensity of a manually lit cell.
const ignitionIntensity = 0.5

// Status is the human-readable outcome of a user intent.
type Status struct {
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}

func applied(format string, args ...any) Status {
	return Status{Applied: true, Message: fmt.Sprintf(format, args...)}
}

func rejected(format string, args ...any) Status {
	return Status{Applied: false, Message: fmt.Sprintf(format, args...)}
}

// Sink receives alerts and state rows without blocking the tick.
// *alert.Dispatcher implements it.
type Sink interface {
	SendAlerts([]sensor.Alert) bool
	SendState(telemetry.StateRow) bool
}

// Options wires the simulator's collaborators. Every field is optional.
type Options struct {
	Bus  *alert.Bus
	Sink Sink
	Log  *slog.Logger
	Rand *rand.Rand
	Now  func() time.Time
}

// Simulator owns the grid, the sensor nodes, the wind and the history
// stack. All mutation happens under mu, either inside a tick or inside a
// user intent, so a tick is never observed half-applied.
type Simulator struct {
	mu sync.Mutex

	cfg       *config.Config
	grid      *grid.Grid
	nodes     []sensor.Node
	wind      weather.Wind
	strategy  *propagation.Strategy
	history   *history.Manager
	ids       *sensor.IDPool
	sensorCfg sensor.Config
	rng       *rand.Rand

	simTime     float64
	running     bool
	lastFrame   time.Time
	alertsTotal int

	bus         *alert.Bus
	sink        Sink
	log         *slog.Logger
	now         func() time.Time
	unsubscribe func()
}

// New builds a simulator from cfg with a forest planted at the configured
// initial density.
func New(cfg *config.Config, opts Options) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := grid.New(cfg.Grid.Width, cfg.Grid.Height, cfg.Environment.Humidity)
	if err != nil {
		return nil, err
	}
	hist, err := history.New(cfg.Simulation.HistoryCapacity, cfg.Simulation.HistoryRetain)
	if err != nil {
		return nil, err
	}
	ids, err := sensor.NewIDPool(cfg.Sensors.MasterIDs, cfg.Sensors.SlaveIDs)
	if err != nil {
		return nil, err
	}
	rng := opts.Rand
	if rng == nil {
		seed := cfg.Simulation.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	g.Populate(cfg.Simulation.InitialDensity, rng)
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	kind := cfg.StrategyKind()
	s := &Simulator{
		cfg:       cfg,
		grid:      g,
		wind:      weather.Wind{Speed: cfg.Wind.InitialSpeed, Direction: cfg.Wind.InitialDirection}.Clamp(cfg.Wind.MaxSpeed),
		strategy:  propagation.NewWithParams(kind, cfg.StrategyParams(kind), rng),
		history:   hist,
		ids:       ids,
		sensorCfg: cfg.SensorConfig(),
		rng:       rng,
		bus:       opts.Bus,
		sink:      opts.Sink,
		log:       opts.Log,
		now:       opts.Now,
	}
	if s.bus != nil {
		s.unsubscribe = s.bus.Subscribe(s.logFireAlert)
	}
	s.history.Push(s.captureLocked())
	return s, nil
}

// logFireAlert is the controller's own alert subscriber.
func (s *Simulator) logFireAlert(a sensor.Alert) {
	if !a.FireDetected {
		return
	}
	s.log.Info("fire alert received", "node", a.SenderID, "row", a.Row, "col", a.Col,
		"temperature", a.Temperature, "co2", a.CO2Level, "sim_time", a.SimTime)
}

// Close detaches the simulator from the alert bus.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Config returns the configuration the simulator was built with.
func (s *Simulator) Config() *config.Config { return s.cfg }

func (s *Simulator) captureLocked() history.Snapshot {
	return history.Capture(s.grid, s.nodes, s.wind, s.strategy.Kind(), s.simTime)
}

// Snapshot returns a deep copy of the current state.
func (s *Simulator) Snapshot() history.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captureLocked()
}

// Restore replaces the live state with snap. The grid must have the same
// shape; on error nothing is changed.
func (s *Simulator) Restore(snap history.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoreLocked(snap)
}

func (s *Simulator) restoreLocked(snap history.Snapshot) error {
	if snap.Grid == nil {
		return fmt.Errorf("%w: snapshot has no grid", ErrInvalidValue)
	}
	if err := s.grid.CopyFrom(snap.Grid); err != nil {
		return err
	}
	s.nodes = append([]sensor.Node(nil), snap.Nodes...)
	s.wind = snap.Wind
	s.simTime = snap.SimTime
	if snap.Strategy != s.strategy.Kind() {
		s.strategy = propagation.NewWithParams(snap.Strategy, s.cfg.StrategyParams(snap.Strategy), s.rng)
	}
	return nil
}
