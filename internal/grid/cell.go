package grid

import (
	"fmt"
	"math"
	"strings"
)

// State is the lifecycle stage of a cell.
type State uint8

const (
	Empty State = iota
	Tree
	Burning
	Burnt
)

var stateNames = [...]string{
	Empty:   "empty",
	Tree:    "tree",
	Burning: "burning",
	Burnt:   "burnt",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// ParseState converts a state name (case-insensitive) to a State.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return State(i), nil
		}
	}
	return Empty, fmt.Errorf("unknown cell state %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	st, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Cell holds the mutable fire state of one grid position.
// FireIntensity is nonzero only while the cell is Burning.
type Cell struct {
	Row           int     `json:"row"`
	Col           int     `json:"col"`
	State         State   `json:"state"`
	FireIntensity float64 `json:"fire_intensity"`
	Humidity      float64 `json:"humidity"`
	BurningTime   float64 `json:"burning_time"`
}

// SetState moves the cell to s. Leaving Burning clears intensity and burn time.
func (c *Cell) SetState(s State) {
	if s != Burning {
		c.FireIntensity = 0
		c.BurningTime = 0
	}
	c.State = s
}

// Ignite turns a Tree into a Burning cell with the given starting intensity.
// It reports false and leaves the cell untouched for any other state.
func (c *Cell) Ignite(intensity float64) bool {
	if c.State != Tree {
		return false
	}
	c.State = Burning
	c.FireIntensity = clamp01(intensity)
	c.BurningTime = 0
	return true
}

// Burn accrues elapsed seconds of burning. Once the accumulated time exceeds
// threshold the cell becomes Burnt and Burn returns true.
func (c *Cell) Burn(elapsed, growthRate, threshold float64) bool {
	if c.State != Burning {
		return false
	}
	c.BurningTime += elapsed
	c.FireIntensity = math.Min(1, c.FireIntensity+growthRate*elapsed)
	if c.BurningTime > threshold {
		c.State = Burnt
		c.FireIntensity = 0
		return true
	}
	return false
}

// copyState copies the mutable fields of src, keeping the position.
func (c *Cell) copyState(src Cell) {
	c.State = src.State
	c.FireIntensity = src.FireIntensity
	c.Humidity = src.Humidity
	c.BurningTime = src.BurningTime
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
