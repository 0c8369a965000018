// Package grid holds the forest cells and their state machine.
package grid

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrShapeMismatch is returned when copying between grids of different sizes.
var ErrShapeMismatch = errors.New("grid shape mismatch")

// Forest generation bounds for tree humidity (percent).
const (
	minTreeHumidity   = 30.0
	treeHumidityRange = 40.0
)

// Pos addresses a cell.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is a fixed-size rectangular array of cells in row-major order.
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// New allocates a width x height grid of Empty cells carrying the given humidity.
func New(width, height int, humidity float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	g := &Grid{width: width, height: height, cells: make([]Cell, width*height)}
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			g.cells[r*width+c] = Cell{Row: r, Col: c, State: Empty, Humidity: humidity}
		}
	}
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (row, col) addresses a cell.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

// At returns a pointer to the cell at (row, col). The caller must check bounds.
func (g *Grid) At(row, col int) *Cell {
	return &g.cells[row*g.width+col]
}

// Get returns a copy of the cell at (row, col).
func (g *Grid) Get(row, col int) (Cell, error) {
	if !g.InBounds(row, col) {
		return Cell{}, fmt.Errorf("cell (%d,%d) outside %dx%d grid", row, col, g.width, g.height)
	}
	return *g.At(row, col), nil
}

// IsBurning reports whether the in-bounds cell at (row, col) is on fire.
func (g *Grid) IsBurning(row, col int) bool {
	return g.InBounds(row, col) && g.At(row, col).State == Burning
}

// Cells returns a copy of every cell in row-major order.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Each calls fn for every cell in row-major order.
func (g *Grid) Each(fn func(c *Cell)) {
	for i := range g.cells {
		fn(&g.cells[i])
	}
}

// Count returns the number of cells in state s.
func (g *Grid) Count(s State) int {
	n := 0
	for i := range g.cells {
		if g.cells[i].State == s {
			n++
		}
	}
	return n
}

// Counts returns the number of cells per state.
func (g *Grid) Counts() map[State]int {
	out := make(map[State]int, len(stateNames))
	for i := range g.cells {
		out[g.cells[i].State]++
	}
	return out
}

// Reset clears every cell back to Empty.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i].SetState(Empty)
	}
}

// Populate resets the grid and plants a tree in each cell with probability
// density. Trees receive a random humidity in [30,70).
func (g *Grid) Populate(density float64, rng *rand.Rand) {
	g.Reset()
	for i := range g.cells {
		if rng.Float64() < density {
			g.cells[i].State = Tree
			g.cells[i].Humidity = minTreeHumidity + rng.Float64()*treeHumidityRange
		}
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	cp := &Grid{width: g.width, height: g.height, cells: make([]Cell, len(g.cells))}
	copy(cp.cells, g.cells)
	return cp
}

// CopyFrom overwrites every cell's mutable fields with those of src.
func (g *Grid) CopyFrom(src *Grid) error {
	if src.width != g.width || src.height != g.height {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrShapeMismatch, src.width, src.height, g.width, g.height)
	}
	for i := range g.cells {
		g.cells[i].copyState(src.cells[i])
	}
	return nil
}

// Distance is the Euclidean distance between two cells in cell units.
func Distance(a, b Pos) float64 {
	dr := float64(b.Row - a.Row)
	dc := float64(b.Col - a.Col)
	return math.Sqrt(dr*dr + dc*dc)
}
