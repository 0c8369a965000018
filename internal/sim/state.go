package sim

import (
	"wildfire-sim/internal/alert"
	"wildfire-sim/internal/grid"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/weather"
)

// NodeView is a sensor node as shown to a UI, with the ids of the nodes
// within radio range.
type NodeView struct {
	sensor.Node
	Peers []string `json:"peers,omitempty"`
}

// View is the read model consumed by renderers and the admin API.
type View struct {
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	CellSizePx   int            `json:"cell_size_px"`
	CellSizeKm   float64        `json:"cell_size_km"`
	Cells        []grid.Cell    `json:"cells"`
	Counts       map[string]int `json:"counts"`
	Nodes        []NodeView     `json:"nodes"`
	Wind         weather.Wind   `json:"wind"`
	SimTime      float64        `json:"sim_time"`
	Running      bool           `json:"running"`
	Strategy     string         `json:"strategy"`
	HistoryDepth int            `json:"history_depth"`
	AlertsTotal  int            `json:"alerts_total"`
	Transport    *alert.Stats   `json:"transport,omitempty"`
}

type statsSource interface {
	Stats() alert.Stats
}

// State returns a copy of the live state.
func (s *Simulator) State() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int, 4)
	for st, n := range s.grid.Counts() {
		counts[st.String()] = n
	}
	nodes := make([]NodeView, len(s.nodes))
	for i := range s.nodes {
		nodes[i] = NodeView{
			Node:  s.nodes[i],
			Peers: sensor.Peers(s.nodes, i, s.cfg.Grid.CellSizeKm, s.cfg.Sensors.LoRaRangeKm),
		}
	}
	v := View{
		Width:        s.grid.Width(),
		Height:       s.grid.Height(),
		CellSizePx:   s.cfg.Grid.CellSizePx,
		CellSizeKm:   s.cfg.Grid.CellSizeKm,
		Cells:        s.grid.Cells(),
		Counts:       counts,
		Nodes:        nodes,
		Wind:         s.wind,
		SimTime:      s.simTime,
		Running:      s.running,
		Strategy:     s.strategy.Kind().String(),
		HistoryDepth: s.history.Len(),
		AlertsTotal:  s.alertsTotal,
	}
	if src, ok := s.sink.(statsSource); ok {
		st := src.Stats()
		v.Transport = &st
	}
	return v
}

// Cell returns one cell.
func (s *Simulator) Cell(row, col int) (grid.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkBounds(row, col); err != nil {
		return grid.Cell{}, err
	}
	return *s.grid.At(row, col), nil
}

// Nodes returns a copy of the sensor collection.
func (s *Simulator) Nodes() []sensor.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sensor.Node(nil), s.nodes...)
}

// Wind returns the current wind.
func (s *Simulator) Wind() weather.Wind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wind
}

// SimTime returns the simulated seconds elapsed since the last reset.
func (s *Simulator) SimTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simTime
}

// HistoryDepth returns the number of held snapshots.
func (s *Simulator) HistoryDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}
