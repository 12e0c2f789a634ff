package analysis

import (
	"github.com/warehouse-sim/warehouse-sim/sim"
)

// RankedHotspot is a visited cell with its rank and share of all moves.
type RankedHotspot struct {
	Rank   int     `json:"rank"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Visits int     `json:"visits"`
	Share  float64 `json:"share"`
}

// RankHotspots returns the top n visited cells, most visited first.
// Ties share the rank of the first cell with that count. n <= 0 returns every cell.
func RankHotspots(snap sim.Snapshot, n int) []RankedHotspot {
	total := 0
	for _, h := range snap.Hotspots {
		total += h.Visits
	}
	limit := len(snap.Hotspots)
	if n > 0 && n < limit {
		limit = n
	}
	out := make([]RankedHotspot, 0, limit)
	rank := 0
	for i, h := range snap.Hotspots[:limit] {
		if i == 0 || h.Visits != snap.Hotspots[i-1].Visits {
			rank = i + 1
		}
		out = append(out, RankedHotspot{
			Rank:   rank,
			X:      h.X,
			Y:      h.Y,
			Visits: h.Visits,
			Share:  ratio(float64(h.Visits), float64(total)),
		})
	}
	return out
}

// Heatmap lays visit counts out as a Height x Width matrix indexed [y][x].
func Heatmap(snap sim.Snapshot) [][]int {
	grid := make([][]int, snap.Height)
	for y := range grid {
		grid[y] = make([]int, snap.Width)
	}
	for _, h := range snap.Hotspots {
		if h.Y >= 0 && h.Y < snap.Height && h.X >= 0 && h.X < snap.Width {
			grid[h.Y][h.X] = h.Visits
		}
	}
	return grid
}
