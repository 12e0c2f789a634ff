package analysis

import (
	"sort"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

// Direction classifies the step between two consecutive movement entries.
// Up is +y, matching the grid's row index.
type Direction string

const (
	DirRight Direction = "right"
	DirLeft  Direction = "left"
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirStay  Direction = "stay" // zero or non-unit displacement
)

// Step is one row of the travel pattern table.
type Step struct {
	WorkerID   sim.WorkerID `json:"worker_id"`
	Time       int64        `json:"time"`
	From       sim.Point    `json:"from"`
	To         sim.Point    `json:"to"`
	Direction  Direction    `json:"direction"`
	TravelTime int64        `json:"travel_time"`
}

func classify(dx, dy int) Direction {
	switch {
	case dx == 1 && dy == 0:
		return DirRight
	case dx == -1 && dy == 0:
		return DirLeft
	case dx == 0 && dy == 1:
		return DirUp
	case dx == 0 && dy == -1:
		return DirDown
	default:
		return DirStay
	}
}

// TravelPatterns pairs consecutive movement entries of every worker.
// Workers with fewer than two entries contribute nothing.
func TravelPatterns(snap sim.Snapshot) []Step {
	var out []Step
	for _, w := range snap.Workers {
		h := w.MovementHistory
		for i := 1; i < len(h); i++ {
			prev, cur := h[i-1], h[i]
			out = append(out, Step{
				WorkerID:   w.ID,
				Time:       cur.Time,
				From:       sim.Point{X: prev.X, Y: prev.Y},
				To:         sim.Point{X: cur.X, Y: cur.Y},
				Direction:  classify(cur.X-prev.X, cur.Y-prev.Y),
				TravelTime: cur.Time - prev.Time,
			})
		}
	}
	return out
}

// DirectionCounts tallies steps by direction.
func DirectionCounts(steps []Step) map[Direction]int {
	counts := make(map[Direction]int)
	for _, s := range steps {
		counts[s.Direction]++
	}
	return counts
}

// Congestion is a cell that held at least threshold workers at one instant.
type Congestion struct {
	X           int   `json:"x"`
	Y           int   `json:"y"`
	Time        int64 `json:"time"`
	WorkerCount int   `json:"worker_count"`
}

// CongestionPoints finds (cell, time) pairs where at least threshold workers
// recorded a move onto the same cell. Results are ordered by time, then row-major cell.
// A threshold below 2 is treated as 2.
func CongestionPoints(snap sim.Snapshot, threshold int) []Congestion {
	threshold = max(2, threshold)
	type key struct {
		t int64
		p sim.Point
	}
	counts := make(map[key]int)
	for _, w := range snap.Workers {
		for _, m := range w.MovementHistory {
			counts[key{m.Time, sim.Point{X: m.X, Y: m.Y}}]++
		}
	}
	var out []Congestion
	for k, n := range counts {
		if n >= threshold {
			out = append(out, Congestion{X: k.p.X, Y: k.p.Y, Time: k.t, WorkerCount: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}
