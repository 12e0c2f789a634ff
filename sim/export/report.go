package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

// WriteReport writes a Markdown report for snap to path.
func WriteReport(path string, snap sim.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := RenderReport(f, snap); err != nil {
		return err
	}
	return f.Close()
}

// RenderReport writes the Markdown report to w.
func RenderReport(w io.Writer, snap sim.Snapshot) error {
	r := BuildReport(snap)
	s := r.Summary
	b := bufio.NewWriter(w)

	fmt.Fprintf(b, "# Warehouse Simulation Report\n\n")
	fmt.Fprintf(b, "Simulation time: %d ticks on a %dx%d grid (picking station %v)\n\n",
		s.SimulationTime, snap.Width, snap.Height, snap.PickingStation)

	fmt.Fprintf(b, "## Overview\n\n")
	fmt.Fprintf(b, "- Total orders: %d\n", s.TotalOrders)
	fmt.Fprintf(b, "- Completed orders: %d\n", s.CompletedOrders)
	fmt.Fprintf(b, "- Failed orders: %d\n", s.FailedOrders)
	fmt.Fprintf(b, "- Pending orders: %d\n", s.PendingOrders)
	fmt.Fprintf(b, "- Completion rate: %.1f%%\n", 100*s.CompletionRate)
	fmt.Fprintf(b, "- Items picked: %d\n", s.TotalItemsPicked)
	fmt.Fprintf(b, "- Total distance: %d\n", s.TotalDistance)
	fmt.Fprintf(b, "- Items per distance: %.3f\n", s.ItemsPerDistance)
	fmt.Fprintf(b, "- Average completion time: %.1f ticks\n", s.AvgOrderCompletionTime)
	if ct := r.CompletionTimes; ct.Count > 0 {
		fmt.Fprintf(b, "- Completion time p50/p90/p99: %.1f / %.1f / %.1f ticks\n", ct.P50, ct.P90, ct.P99)
	}
	if s.StalledWorkers > 0 {
		fmt.Fprintf(b, "- Stalled workers: %d\n", s.StalledWorkers)
	}

	fmt.Fprintf(b, "\n## Workers\n\n")
	fmt.Fprintf(b, "| Worker | Picked | Distance | Efficiency (picks/distance) | Utilization | State |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|---|\n")
	for _, ws := range s.WorkerStats {
		fmt.Fprintf(b, "| %d | %d | %d | %.3f | %.2f | %s |\n",
			ws.WorkerID, ws.TotalItemsPicked, ws.TotalDistance, ws.Efficiency, ws.Utilization, ws.State)
	}

	if len(r.TopHotspots) > 0 {
		fmt.Fprintf(b, "\n## Hotspots\n\n")
		fmt.Fprintf(b, "| Rank | Cell | Visits | Share |\n")
		fmt.Fprintf(b, "|---|---|---|---|\n")
		for _, h := range r.TopHotspots {
			fmt.Fprintf(b, "| %d | (%d,%d) | %d | %.1f%% |\n", h.Rank, h.X, h.Y, h.Visits, 100*h.Share)
		}
	}
	fmt.Fprintf(b, "\nCongestion points (>= %d workers on one cell): %d\n", CongestionThreshold, r.CongestionPoints)
	return b.Flush()
}
