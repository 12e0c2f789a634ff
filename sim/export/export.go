package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/warehouse-sim/warehouse-sim/sim"
	"github.com/warehouse-sim/warehouse-sim/sim/analysis"
)

// CongestionThreshold is the worker count at which a shared cell counts as congested.
const CongestionThreshold = 2

// topHotspots bounds the hotspot list carried in JSON and Markdown output.
const topHotspots = 10

// Report is the machine-readable run summary written to summary.json.
type Report struct {
	Summary          sim.Summary                 `json:"summary"`
	CompletionTimes  analysis.CompletionTimes    `json:"completion_times"`
	Efficiency       []analysis.WorkerEfficiency `json:"worker_efficiency"`
	Directions       map[analysis.Direction]int  `json:"directions"`
	TopHotspots      []analysis.RankedHotspot    `json:"top_hotspots"`
	CongestionPoints int                         `json:"congestion_points"`
}

// BuildReport assembles the derived tables for snap.
func BuildReport(snap sim.Snapshot) Report {
	return Report{
		Summary:          snap.Summary,
		CompletionTimes:  analysis.CompletionTimeDistribution(snap),
		Efficiency:       analysis.WorkerEfficiencies(snap),
		Directions:       analysis.DirectionCounts(analysis.TravelPatterns(snap)),
		TopHotspots:      analysis.RankHotspots(snap, topHotspots),
		CongestionPoints: len(analysis.CongestionPoints(snap, CongestionThreshold)),
	}
}

// ExportAll writes every CSV table and summary.json into dir, creating it if needed.
// It returns the written paths keyed by kind.
func ExportAll(dir string, snap sim.Snapshot) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	tables := []struct {
		kind    string
		columns []string
		rows    func(sim.Snapshot) [][]string
	}{
		{KindMovements, movementColumns, movementRows},
		{KindActivity, activityColumns, activityRows},
		{KindEfficiency, efficiencyColumns, efficiencyRows},
		{KindOrders, orderColumns, orderRows},
		{KindHotspots, hotspotColumns, hotspotRows},
		{KindSummary, summaryColumns, summaryRows},
		{KindWorkers, workerColumns, workerRows},
	}

	files := make(map[string]string, len(fileNames))
	for _, tbl := range tables {
		path := filepath.Join(dir, fileNames[tbl.kind])
		if err := writeCSV(path, tbl.columns, tbl.rows(snap)); err != nil {
			return files, err
		}
		files[tbl.kind] = path
	}

	path := filepath.Join(dir, fileNames[KindJSON])
	if err := WriteJSON(path, BuildReport(snap)); err != nil {
		return files, err
	}
	files[KindJSON] = path
	logrus.Infof("exported %d files to %s", len(files), dir)
	return files, nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
