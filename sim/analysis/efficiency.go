// Package analysis derives read-only reports from a simulation snapshot.
// Nothing here touches a live Simulator; every function takes a sim.Snapshot.
package analysis

import (
	"sort"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

// WorkerEfficiency is one row of the worker efficiency table.
type WorkerEfficiency struct {
	WorkerID         sim.WorkerID `json:"worker_id"`
	TotalDistance    int          `json:"total_distance"`
	TotalItemsPicked int          `json:"total_items_picked"`
	DistancePerItem  float64      `json:"distance_per_item"`
	ItemsPerTick     float64      `json:"items_per_tick"`
	Score            float64      `json:"efficiency_score"` // (items / distance) * items per tick
}

// WorkerEfficiencies returns one row per worker in ID order.
func WorkerEfficiencies(snap sim.Snapshot) []WorkerEfficiency {
	out := make([]WorkerEfficiency, 0, len(snap.Workers))
	for _, w := range snap.Workers {
		perTick := ratio(float64(w.TotalItemsPicked), float64(snap.Summary.Ticks))
		out = append(out, WorkerEfficiency{
			WorkerID:         w.ID,
			TotalDistance:    w.TotalDistance,
			TotalItemsPicked: w.TotalItemsPicked,
			DistancePerItem:  ratio(float64(w.TotalDistance), float64(w.TotalItemsPicked)),
			ItemsPerTick:     perTick,
			Score:            ratio(float64(w.TotalItemsPicked), float64(w.TotalDistance)) * perTick,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkerID < out[j].WorkerID })
	return out
}

// OrderProcessing is one row of the order analysis table.
type OrderProcessing struct {
	OrderID        sim.OrderID     `json:"order_id"`
	Priority       int             `json:"priority"`
	Status         sim.OrderStatus `json:"status"`
	OriginalItems  int             `json:"original_items"`
	RemainingItems int             `json:"remaining_items"`
	CreatedAt      int64           `json:"created_at"`
	FinishedAt     *int64          `json:"finished_at,omitempty"`
	ProcessingTime int64           `json:"processing_time"`
	AssignedWorker *sim.WorkerID   `json:"assigned_worker,omitempty"`
}

// OrderProcessingTable returns one row per order in ID order.
// Processing time runs to completion or failure, or to the snapshot clock for open orders.
func OrderProcessingTable(snap sim.Snapshot) []OrderProcessing {
	out := make([]OrderProcessing, 0, len(snap.Orders))
	for _, o := range snap.Orders {
		row := OrderProcessing{
			OrderID:        o.ID,
			Priority:       o.Priority,
			Status:         o.Status,
			OriginalItems:  o.OriginalItems,
			RemainingItems: o.Remaining,
			CreatedAt:      o.CreatedAt,
			AssignedWorker: o.AssignedWorker,
		}
		end := snap.Clock
		switch {
		case o.CompletedAt != nil:
			end = *o.CompletedAt
			row.FinishedAt = o.CompletedAt
		case o.FailedAt != nil:
			end = *o.FailedAt
			row.FinishedAt = o.FailedAt
		}
		row.ProcessingTime = end - o.CreatedAt
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

// CompletionTimes summarises processing times of completed orders.
type CompletionTimes struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
	P99   float64 `json:"p99"`
	Max   int64   `json:"max"`
}

// CompletionTimeDistribution computes percentiles over completed orders only.
func CompletionTimeDistribution(snap sim.Snapshot) CompletionTimes {
	var times []int64
	for _, o := range snap.Orders {
		if o.CompletedAt != nil {
			times = append(times, *o.CompletedAt-o.CreatedAt)
		}
	}
	if len(times) == 0 {
		return CompletionTimes{}
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return CompletionTimes{
		Count: len(times),
		Mean:  Mean(times),
		P50:   Percentile(times, 50),
		P90:   Percentile(times, 90),
		P99:   Percentile(times, 99),
		Max:   times[len(times)-1],
	}
}

// ratio returns num/max(1, den).
func ratio(num, den float64) float64 {
	return num / max(1, den)
}
