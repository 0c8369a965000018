package sensor

import "wildfire-sim/internal/grid"

// LoRaRangeKm is the radio range between two nodes.
const LoRaRangeKm = 1.0

// InRange reports whether two cells are within LoRa range of each other.
func InRange(a, b grid.Pos, cellSizeKm float64) bool {
	return WithinRange(a, b, cellSizeKm, LoRaRangeKm)
}

// WithinRange reports whether two cells are at most rangeKm apart.
func WithinRange(a, b grid.Pos, cellSizeKm, rangeKm float64) bool {
	return grid.Distance(a, b)*cellSizeKm <= rangeKm
}

// Peers returns the ids of every other node within rangeKm of nodes[i].
func Peers(nodes []Node, i int, cellSizeKm, rangeKm float64) []string {
	var out []string
	for j := range nodes {
		if j == i {
			continue
		}
		if WithinRange(nodes[i].Pos(), nodes[j].Pos(), cellSizeKm, rangeKm) {
			out = append(out, nodes[j].ID.String())
		}
	}
	return out
}
