// Package export writes simulation results to disk: CSV tables, a JSON summary,
// a Markdown report and a compressed per-tick trace.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/warehouse-sim/warehouse-sim/sim"
	"github.com/warehouse-sim/warehouse-sim/sim/analysis"
)

// Output file names written by ExportAll, keyed by kind.
const (
	KindMovements  = "movement_data"
	KindActivity   = "activity_log"
	KindEfficiency = "efficiency_data"
	KindOrders     = "order_analysis"
	KindHotspots   = "hotspot_data"
	KindSummary    = "simulation_summary"
	KindWorkers    = "worker_stats"
	KindJSON       = "summary_json"
)

var fileNames = map[string]string{
	KindMovements:  "worker_movements.csv",
	KindActivity:   "activity_log.csv",
	KindEfficiency: "worker_efficiency.csv",
	KindOrders:     "order_analysis.csv",
	KindHotspots:   "hotspots.csv",
	KindSummary:    "simulation_summary.csv",
	KindWorkers:    "worker_stats.csv",
	KindJSON:       "summary.json",
}

var (
	movementColumns   = []string{"worker_id", "time", "x", "y"}
	activityColumns   = []string{"worker_id", "time", "message"}
	efficiencyColumns = []string{"worker_id", "total_distance", "total_items_picked", "distance_per_item", "items_per_tick", "efficiency_score"}
	orderColumns      = []string{"order_id", "priority", "status", "original_items", "remaining_items", "created_at", "finished_at", "processing_time", "assigned_worker"}
	hotspotColumns    = []string{"rank", "x", "y", "visits", "share"}
	summaryColumns    = []string{"simulation_time", "ticks", "total_orders", "completed_orders", "failed_orders", "pending_orders", "completion_rate", "total_items_picked", "total_distance", "items_per_distance", "avg_order_completion_time", "stalled_workers"}
	workerColumns     = []string{"worker_id", "total_items_picked", "total_distance", "efficiency", "activity_count", "utilization", "busy", "state"}
)

func itoa(v int) string     { return strconv.Itoa(v) }
func i64(v int64) string    { return strconv.FormatInt(v, 10) }
func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func optI64(v *int64) string {
	if v == nil {
		return ""
	}
	return i64(*v)
}

func optWorker(v *sim.WorkerID) string {
	if v == nil {
		return ""
	}
	return itoa(int(*v))
}

// writeCSV writes a header row followed by rows.
func writeCSV(path string, columns []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

func movementRows(snap sim.Snapshot) [][]string {
	var rows [][]string
	for _, w := range snap.Workers {
		for _, m := range w.MovementHistory {
			rows = append(rows, []string{itoa(int(w.ID)), i64(m.Time), itoa(m.X), itoa(m.Y)})
		}
	}
	return rows
}

func activityRows(snap sim.Snapshot) [][]string {
	var rows [][]string
	for _, w := range snap.Workers {
		for _, a := range w.ActivityLog {
			rows = append(rows, []string{itoa(int(w.ID)), i64(a.Time), a.Message})
		}
	}
	return rows
}

func efficiencyRows(snap sim.Snapshot) [][]string {
	var rows [][]string
	for _, e := range analysis.WorkerEfficiencies(snap) {
		rows = append(rows, []string{
			itoa(int(e.WorkerID)),
			itoa(e.TotalDistance),
			itoa(e.TotalItemsPicked),
			ftoa(e.DistancePerItem),
			ftoa(e.ItemsPerTick),
			ftoa(e.Score),
		})
	}
	return rows
}

func orderRows(snap sim.Snapshot) [][]string {
	var rows [][]string
	for _, o := range analysis.OrderProcessingTable(snap) {
		rows = append(rows, []string{
			itoa(int(o.OrderID)),
			itoa(o.Priority),
			string(o.Status),
			itoa(o.OriginalItems),
			itoa(o.RemainingItems),
			i64(o.CreatedAt),
			optI64(o.FinishedAt),
			i64(o.ProcessingTime),
			optWorker(o.AssignedWorker),
		})
	}
	return rows
}

func hotspotRows(snap sim.Snapshot) [][]string {
	var rows [][]string
	for _, h := range analysis.RankHotspots(snap, 0) {
		rows = append(rows, []string{itoa(h.Rank), itoa(h.X), itoa(h.Y), itoa(h.Visits), ftoa(h.Share)})
	}
	return rows
}

func summaryRows(snap sim.Snapshot) [][]string {
	s := snap.Summary
	return [][]string{{
		i64(s.SimulationTime),
		itoa(s.Ticks),
		itoa(s.TotalOrders),
		itoa(s.CompletedOrders),
		itoa(s.FailedOrders),
		itoa(s.PendingOrders),
		ftoa(s.CompletionRate),
		itoa(s.TotalItemsPicked),
		itoa(s.TotalDistance),
		ftoa(s.ItemsPerDistance),
		ftoa(s.AvgOrderCompletionTime),
		itoa(s.StalledWorkers),
	}}
}

func workerRows(snap sim.Snapshot) [][]string {
	var rows [][]string
	for _, w := range snap.Summary.WorkerStats {
		rows = append(rows, []string{
			itoa(int(w.WorkerID)),
			itoa(w.TotalItemsPicked),
			itoa(w.TotalDistance),
			ftoa(w.Efficiency),
			itoa(w.ActivityCount),
			ftoa(w.Utilization),
			strconv.FormatBool(w.Busy),
			w.State,
		})
	}
	return rows
}
