package propagation

import (
	"math"
	"math/rand"
	"testing"

	"wildfire-sim/internal/grid"
)

func tree(row, col int, humidity float64) grid.Cell {
	return grid.Cell{Row: row, Col: col, State: grid.Tree, Humidity: humidity}
}

func burning(row, col int) grid.Cell {
	return grid.Cell{Row: row, Col: col, State: grid.Burning, FireIntensity: 0.5}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"slow": Slow, "FAST": Fast, " Slow ": Slow} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("medium"); err == nil {
		t.Errorf("expected error for unknown kind")
	}
}

func TestParamsTable(t *testing.T) {
	slow, fast := Slow.Params(), Fast.Params()
	if slow.BaseProbability != 0.30 || slow.BurnThreshold != 15 || slow.IgnitionMultiplier != 0.8 || slow.InitialIntensity != 0.2 {
		t.Errorf("unexpected slow params %+v", slow)
	}
	if fast.BaseProbability != 0.75 || fast.BurnThreshold != 8 || fast.CheckRadius != 2 || fast.InitialIntensity != 0.6 {
		t.Errorf("unexpected fast params %+v", fast)
	}
}

func TestIgnitionProbabilityZeroCases(t *testing.T) {
	s := New(Fast, rand.New(rand.NewSource(1)))
	src := burning(5, 5)
	for _, st := range []grid.State{grid.Empty, grid.Burning, grid.Burnt} {
		target := tree(5, 6, 0)
		target.State = st
		if p := s.IgnitionProbability(src, target, 10, 0); p != 0 {
			t.Errorf("state %v: p = %f, want 0", st, p)
		}
	}
	if p := s.IgnitionProbability(src, tree(5, 7, 0), 10, 0); p != 0 {
		t.Errorf("distance 2: p = %f, want 0 beyond reach limit", p)
	}
	if p := s.IgnitionProbability(src, tree(5, 5, 0), 10, 0); p != 0 {
		t.Errorf("same cell: p = %f, want 0", p)
	}
}

func TestIgnitionProbabilityFormula(t *testing.T) {
	s := New(Slow, rand.New(rand.NewSource(1)))
	src := burning(5, 5)
	// no wind: 0.3/1 - 0.2*0.5
	if p := s.IgnitionProbability(src, tree(5, 6, 50), 0, 0); math.Abs(p-0.2) > 1e-9 {
		t.Errorf("no wind p = %f, want 0.2", p)
	}
	// downwind: + 0.05*2*1
	if p := s.IgnitionProbability(src, tree(5, 6, 50), 2, 0); math.Abs(p-0.3) > 1e-9 {
		t.Errorf("downwind p = %f, want 0.3", p)
	}
	// upwind: alignment 0
	if p := s.IgnitionProbability(src, tree(5, 4, 50), 2, 0); math.Abs(p-0.2) > 1e-9 {
		t.Errorf("upwind p = %f, want 0.2", p)
	}
	// diagonal: 0.3/sqrt2 - 0.1
	want := 0.3/math.Sqrt2 - 0.1
	if p := s.IgnitionProbability(src, tree(6, 6, 50), 0, 0); math.Abs(p-want) > 1e-9 {
		t.Errorf("diagonal p = %f, want %f", p, want)
	}
}

func TestIgnitionProbabilityAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, kind := range []Kind{Slow, Fast} {
		s := New(kind, rng)
		for i := 0; i < 5000; i++ {
			src := burning(10, 10)
			target := tree(10+rng.Intn(5)-2, 10+rng.Intn(5)-2, rng.Float64()*100)
			p := s.IgnitionProbability(src, target, rng.Float64()*50, rng.Float64()*720-360)
			if p < 0 || p > 1 {
				t.Fatalf("%v: p = %f out of range", kind, p)
			}
		}
	}
}

func TestZeroWindIgnoresDirection(t *testing.T) {
	s := New(Fast, rand.New(rand.NewSource(1)))
	src := burning(5, 5)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			target := tree(5+dr, 5+dc, 40)
			base := s.IgnitionProbability(src, target, 0, 0)
			for _, dir := range []float64{45, 90, 180, 270, 359} {
				if p := s.IgnitionProbability(src, target, 0, dir); p != base {
					t.Fatalf("direction %f changed p: %f vs %f", dir, p, base)
				}
			}
		}
	}
}

func TestAngularDifference(t *testing.T) {
	cases := []struct{ a, b, want float64 }{
		{0, 0, 0},
		{0, 180, 180},
		{350, 10, 20},
		{10, -170, 180},
		{359, -135, 134},
		{720, 90, 90},
	}
	for _, c := range cases {
		if got := AngularDifference(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("AngularDifference(%f,%f) = %f, want %f", c.a, c.b, got, c.want)
		}
	}
}

func TestBearing(t *testing.T) {
	o := grid.Pos{Row: 5, Col: 5}
	if b := Bearing(o, grid.Pos{Row: 5, Col: 6}); b != 0 {
		t.Errorf("bearing +col = %f, want 0", b)
	}
	if b := Bearing(o, grid.Pos{Row: 6, Col: 5}); b != 90 {
		t.Errorf("bearing +row = %f, want 90", b)
	}
}

func newForest(t *testing.T, w, h int) *grid.Grid {
	t.Helper()
	g, err := grid.New(w, h, 50)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	g.Populate(1, rand.New(rand.NewSource(3)))
	return g
}

func TestPureTreeGridNeverIgnites(t *testing.T) {
	g := newForest(t, 20, 20)
	s := New(Slow, rand.New(rand.NewSource(1)))
	for i := 0; i < 50; i++ {
		s.Advance(g, 0.5, 0, 0)
	}
	if n := g.Count(grid.Burning) + g.Count(grid.Burnt); n != 0 {
		t.Fatalf("forest self-ignited: %d cells", n)
	}
}

func TestSelectIgnitionsDoesNotMutate(t *testing.T) {
	g := newForest(t, 10, 10)
	g.At(5, 5).Ignite(0.5)
	before := g.Cells()
	s := New(Fast, rand.New(rand.NewSource(1)))
	picks := s.SelectIgnitions(g, 5, 0)
	if len(picks) == 0 {
		t.Fatalf("expected some ignitions next to a fire in a full forest")
	}
	after := g.Cells()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("grid mutated at %d", i)
		}
	}
	seen := map[grid.Pos]bool{}
	for _, p := range picks {
		if seen[p] {
			t.Fatalf("duplicate ignition %v", p)
		}
		seen[p] = true
		if grid.Distance(grid.Pos{Row: 5, Col: 5}, p) > 1.5 {
			t.Fatalf("ignition %v beyond reach", p)
		}
	}
}

func TestNoSameTickCascade(t *testing.T) {
	g := newForest(t, 10, 1)
	g.At(0, 0).Ignite(0.5)
	s := New(Fast, rand.New(rand.NewSource(1)))
	s.Advance(g, 0.1, 10, 0)
	if n := g.Count(grid.Burning); n > 2 {
		t.Fatalf("fire travelled %d cells in one tick", n)
	}
}

func TestAdvanceAccruesFreshIgnitions(t *testing.T) {
	g := newForest(t, 3, 1)
	g.At(0, 0).Ignite(0.5)
	g.At(0, 1).Humidity = 0
	s := New(Fast, rand.New(rand.NewSource(1)))
	res := s.Advance(g, 0.5, 10, 0)
	if res.Ignited != 1 {
		t.Fatalf("ignited = %d, want 1", res.Ignited)
	}
	c := g.At(0, 1)
	if c.State != grid.Burning || c.BurningTime != 0.5 {
		t.Fatalf("fresh ignition did not accrue time: %+v", *c)
	}
	if math.Abs(c.FireIntensity-0.65) > 1e-9 {
		t.Fatalf("intensity = %f, want 0.65", c.FireIntensity)
	}
}

func TestBurntNeverReignites(t *testing.T) {
	g := newForest(t, 5, 5)
	g.At(2, 2).Ignite(0.5)
	s := New(Fast, rand.New(rand.NewSource(4)))
	for i := 0; i < 200; i++ {
		before := g.Cells()
		s.Advance(g, 0.5, 3, 90)
		after := g.Cells()
		for j := range before {
			if before[j].State == grid.Burnt && after[j].State != grid.Burnt {
				t.Fatalf("burnt cell %d changed to %v", j, after[j].State)
			}
			if after[j].State != grid.Burning && after[j].FireIntensity != 0 {
				t.Fatalf("non-burning cell %d has intensity %f", j, after[j].FireIntensity)
			}
		}
	}
	if g.Count(grid.Burning) != 0 {
		t.Fatalf("fire should have burnt out")
	}
}

func TestWindBiasedSpread(t *testing.T) {
	// Arms longer than the fire can travel in 2000 ticks, so the fronts are compared mid-flight.
	const width, center = 4401, 2200
	g, err := grid.New(width, 11, 100)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	for c := 0; c < width; c++ {
		g.At(10, c).State = grid.Tree
	}
	g.At(10, center).Ignite(0.6)
	s := New(Fast, rand.New(rand.NewSource(11)))
	for elapsed := 0.0; elapsed < 1000; elapsed += 0.5 {
		s.Advance(g, 0.5, 5, 0)
	}
	var downwind, upwind int
	for c := 0; c < width; c++ {
		if g.At(10, c).State != grid.Burnt {
			continue
		}
		switch {
		case c > center:
			downwind++
		case c < center:
			upwind++
		}
	}
	if downwind <= upwind {
		t.Fatalf("downwind burnt %d, upwind burnt %d; expected wind bias", downwind, upwind)
	}
}
