package propagation

import (
	"math"
	"math/rand"

	"wildfire-sim/internal/grid"
)

// Strategy evaluates and applies fire spread for one Kind.
type Strategy struct {
	kind   Kind
	params Params
	rand   *rand.Rand
}

// Result summarizes one Advance call.
type Result struct {
	Ignited int
	Burnt   int
}

// New returns a strategy using the default table for kind.
func New(kind Kind, rng *rand.Rand) *Strategy {
	return NewWithParams(kind, kind.Params(), rng)
}

// NewWithParams returns a strategy with an explicit parameter table.
func NewWithParams(kind Kind, p Params, rng *rand.Rand) *Strategy {
	return &Strategy{kind: kind, params: p, rand: rng}
}

// Kind returns the model this strategy implements.
func (s *Strategy) Kind() Kind { return s.kind }

// Params returns the strategy's constant table.
func (s *Strategy) Params() Params { return s.params }

// IgnitionProbability returns the chance in [0,1] that source sets target on fire.
func (s *Strategy) IgnitionProbability(source, target grid.Cell, windSpeed, windDirection float64) float64 {
	if target.State != grid.Tree {
		return 0
	}
	from := grid.Pos{Row: source.Row, Col: source.Col}
	to := grid.Pos{Row: target.Row, Col: target.Col}
	distance := grid.Distance(from, to)
	if distance == 0 || distance > s.params.ReachLimit {
		return 0
	}

	p := s.params.BaseProbability / distance
	if windSpeed > 0 {
		p += s.params.WindFactor * windSpeed * WindAlignment(windDirection, Bearing(from, to))
	}
	p -= s.params.HumidityFactor * (target.Humidity / 100)
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}

// SelectIgnitions returns every Tree cell that catches fire this tick. All
// draws are evaluated against the grid as it is before any ignition, so a
// cell lit this tick cannot spread further until the next one.
func (s *Strategy) SelectIgnitions(g *grid.Grid, windSpeed, windDirection float64) []grid.Pos {
	reach := int(math.Floor(s.params.CheckRadius))
	seen := make(map[grid.Pos]struct{})
	var out []grid.Pos

	for r := 0; r < g.Height(); r++ {
		for c := 0; c < g.Width(); c++ {
			src := g.At(r, c)
			if src.State != grid.Burning {
				continue
			}
			for dr := -reach; dr <= reach; dr++ {
				for dc := -reach; dc <= reach; dc++ {
					if dr == 0 && dc == 0 {
						continue
					}
					nr, nc := r+dr, c+dc
					if !g.InBounds(nr, nc) {
						continue
					}
					if math.Sqrt(float64(dr*dr+dc*dc)) > s.params.CheckRadius {
						continue
					}
					p := s.IgnitionProbability(*src, *g.At(nr, nc), windSpeed, windDirection)
					if p <= 0 || s.rand.Float64() >= p*s.params.IgnitionMultiplier {
						continue
					}
					pos := grid.Pos{Row: nr, Col: nc}
					if _, ok := seen[pos]; ok {
						continue
					}
					seen[pos] = struct{}{}
					out = append(out, pos)
				}
			}
		}
	}
	return out
}

// Advance lights the selected ignitions, then burns every Burning cell for
// elapsed seconds. Cells lit in this call accrue elapsed as well.
func (s *Strategy) Advance(g *grid.Grid, elapsed, windSpeed, windDirection float64) Result {
	var res Result
	for _, pos := range s.SelectIgnitions(g, windSpeed, windDirection) {
		if g.At(pos.Row, pos.Col).Ignite(s.params.InitialIntensity) {
			res.Ignited++
		}
	}
	g.Each(func(c *grid.Cell) {
		if c.Burn(elapsed, s.params.GrowthRate, s.params.BurnThreshold) {
			res.Burnt++
		}
	})
	return res
}
