// Tracks aggregate simulation statistics and builds the end-of-run summary.

package sim

import (
	"fmt"
	"io"
	"sort"
)

// HotspotCount is the number of worker moves that ended on a cell.
type HotspotCount struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Visits int `json:"visits"`
}

// Stats aggregates counters over the current worker and order state.
// The Simulator refreshes it at the end of every tick.
type Stats struct {
	Ticks                  int                  `json:"ticks"`
	TotalOrders            int                  `json:"total_orders"`
	PendingOrders          int                  `json:"pending_orders"`
	CompletedOrders        int                  `json:"completed_orders"`
	FailedOrders           int                  `json:"failed_orders"`
	TotalItemsPicked       int                  `json:"total_items_picked"`
	TotalDistance          int                  `json:"total_distance"`
	AvgOrderCompletionTime float64              `json:"avg_order_completion_time"`
	WorkerUtilization      map[WorkerID]float64 `json:"worker_utilization"` // 1 if busy this tick, else 0
	BusyTicks              map[WorkerID]int64   `json:"busy_ticks"`
	StalledWorkers         int                  `json:"stalled_workers"`

	width    int
	hotspots []int // visit count per cell, row-major
}

func newStats(width, height int) *Stats {
	return &Stats{
		WorkerUtilization: make(map[WorkerID]float64),
		BusyTicks:         make(map[WorkerID]int64),
		width:             width,
		hotspots:          make([]int, width*height),
	}
}

// clone returns a deep copy safe to hand to readers.
func (s Stats) clone() Stats {
	c := s
	c.WorkerUtilization = make(map[WorkerID]float64, len(s.WorkerUtilization))
	for k, v := range s.WorkerUtilization {
		c.WorkerUtilization[k] = v
	}
	c.BusyTicks = make(map[WorkerID]int64, len(s.BusyTicks))
	for k, v := range s.BusyTicks {
		c.BusyTicks[k] = v
	}
	c.hotspots = append([]int(nil), s.hotspots...)
	return c
}

// Visits returns how many moves ended on p. Out-of-range points return 0.
func (s Stats) Visits(p Point) int {
	if s.width == 0 || p.X < 0 || p.X >= s.width || p.Y < 0 {
		return 0
	}
	i := p.Y*s.width + p.X
	if i >= len(s.hotspots) {
		return 0
	}
	return s.hotspots[i]
}

// Hotspots returns every visited cell, most visited first; ties keep row-major order.
func (s Stats) Hotspots() []HotspotCount {
	var out []HotspotCount
	for i, v := range s.hotspots {
		if v > 0 {
			out = append(out, HotspotCount{X: i % s.width, Y: i / s.width, Visits: v})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Visits > out[j].Visits })
	return out
}

// WorkerSummary is the per-worker part of a Summary.
type WorkerSummary struct {
	WorkerID         WorkerID `json:"worker_id"`
	TotalItemsPicked int      `json:"total_items_picked"`
	TotalDistance    int      `json:"total_distance"`
	Efficiency       float64  `json:"efficiency"` // items per unit distance
	ActivityCount    int      `json:"activity_count"`
	Utilization      float64  `json:"utilization"` // busy ticks / elapsed ticks
	Busy             bool     `json:"busy"`
	State            string   `json:"state"`
}

// Summary is the end-of-run report.
type Summary struct {
	SimulationTime         int64           `json:"simulation_time"`
	Ticks                  int             `json:"ticks"`
	TotalOrders            int             `json:"total_orders"`
	CompletedOrders        int             `json:"completed_orders"`
	FailedOrders           int             `json:"failed_orders"`
	PendingOrders          int             `json:"pending_orders"`
	CompletionRate         float64         `json:"completion_rate"`
	TotalItemsPicked       int             `json:"total_items_picked"`
	TotalDistance          int             `json:"total_distance"`
	ItemsPerDistance       float64         `json:"items_per_distance"`
	AvgOrderCompletionTime float64         `json:"avg_order_completion_time"`
	StalledWorkers         int             `json:"stalled_workers"`
	WorkerStats            []WorkerSummary `json:"worker_stats"`
}

// Print writes a human-readable summary.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Summary ===")
	fmt.Fprintf(w, "Simulation Time      : %d ticks\n", s.SimulationTime)
	fmt.Fprintf(w, "Total Orders         : %d\n", s.TotalOrders)
	fmt.Fprintf(w, "Completed Orders     : %d (%.1f%%)\n", s.CompletedOrders, 100*s.CompletionRate)
	fmt.Fprintf(w, "Failed Orders        : %d\n", s.FailedOrders)
	fmt.Fprintf(w, "Pending Orders       : %d\n", s.PendingOrders)
	fmt.Fprintf(w, "Items Picked         : %d\n", s.TotalItemsPicked)
	fmt.Fprintf(w, "Total Distance       : %d\n", s.TotalDistance)
	fmt.Fprintf(w, "Items per Distance   : %.4f\n", s.ItemsPerDistance)
	fmt.Fprintf(w, "Avg Completion Time  : %.2f ticks\n", s.AvgOrderCompletionTime)
	if s.StalledWorkers > 0 {
		fmt.Fprintf(w, "Stalled Workers      : %d\n", s.StalledWorkers)
	}
	fmt.Fprintln(w, "=== Worker Stats ===")
	for _, ws := range s.WorkerStats {
		fmt.Fprintf(w, "Worker %d: picked=%d distance=%d efficiency=%.4f utilization=%.2f state=%s\n",
			ws.WorkerID, ws.TotalItemsPicked, ws.TotalDistance, ws.Efficiency, ws.Utilization, ws.State)
	}
}

// ratio returns num/max(1, den).
func ratio[T int | int64](num, den T) float64 {
	return float64(num) / float64(max(1, den))
}
