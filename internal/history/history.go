// Package history keeps a bounded stack of simulation snapshots for undo.
package history

import (
	"errors"

	"wildfire-sim/internal/grid"
	"wildfire-sim/internal/propagation"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/weather"
)

const (
	DefaultCapacity = 20
	DefaultRetain   = 10
)

// ErrInvalidBounds is returned when retain is not below capacity.
var ErrInvalidBounds = errors.New("history: retain must be positive and below capacity")

// Snapshot is a self-contained copy of the simulation state.
type Snapshot struct {
	Grid     *grid.Grid
	Nodes    []sensor.Node
	Wind     weather.Wind
	Strategy propagation.Kind
	SimTime  float64
}

// Capture deep-copies the given state into a Snapshot.
func Capture(g *grid.Grid, nodes []sensor.Node, wind weather.Wind, kind propagation.Kind, simTime float64) Snapshot {
	return Snapshot{
		Grid:     g.Clone(),
		Nodes:    append([]sensor.Node(nil), nodes...),
		Wind:     wind,
		Strategy: kind,
		SimTime:  simTime,
	}
}

// Manager is a LIFO of snapshots. When full, the oldest entries are dropped
// so only the newest retain survive before the next push.
// It is not safe for concurrent use; the simulator serializes access.
type Manager struct {
	capacity int
	retain   int
	stack    []Snapshot
}

// New returns a Manager with the given bounds.
func New(capacity, retain int) (*Manager, error) {
	if retain <= 0 || retain >= capacity {
		return nil, ErrInvalidBounds
	}
	return &Manager{capacity: capacity, retain: retain}, nil
}

// Push appends s, first trimming to the newest retain entries if full.
func (m *Manager) Push(s Snapshot) {
	if len(m.stack) >= m.capacity {
		kept := make([]Snapshot, m.retain, m.capacity)
		copy(kept, m.stack[len(m.stack)-m.retain:])
		m.stack = kept
	}
	m.stack = append(m.stack, s)
}

// Back drops the newest snapshot and returns the one beneath it. It does
// nothing and returns false when fewer than two snapshots are held.
func (m *Manager) Back() (Snapshot, bool) {
	if len(m.stack) <= 1 {
		return Snapshot{}, false
	}
	m.stack[len(m.stack)-1] = Snapshot{}
	m.stack = m.stack[:len(m.stack)-1]
	return m.Peek()
}

// Peek returns the newest snapshot without removing it.
func (m *Manager) Peek() (Snapshot, bool) {
	if len(m.stack) == 0 {
		return Snapshot{}, false
	}
	return m.stack[len(m.stack)-1], true
}

// Len is the number of held snapshots.
func (m *Manager) Len() int { return len(m.stack) }

// Clear drops every snapshot.
func (m *Manager) Clear() { m.stack = nil }
