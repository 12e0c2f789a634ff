package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse-sim/warehouse-sim/sim"
	"github.com/warehouse-sim/warehouse-sim/sim/export"
)

func smallConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Width, cfg.Height = 10, 8
	cfg.Steps = 60
	cfg.OrderProbability = 0.3
	return cfg
}

func TestExecuteRun_PrintsSummary(t *testing.T) {
	var out bytes.Buffer
	res, err := executeRun(context.Background(), smallConfig(), runOptions{initialOrders: 3}, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "=== Simulation Summary ===")
	assert.Equal(t, 60, res.Summary.Ticks)
	assert.GreaterOrEqual(t, res.Summary.TotalOrders, 3)
	assert.Nil(t, res.Files)
	assert.Zero(t, res.RunID)
}

func TestExecuteRun_WritesOutputsAndIndexesRun(t *testing.T) {
	// GIVEN an output directory, a trace, a report and a SQLite run index
	dir := t.TempDir()
	opts := runOptions{
		outputDir: filepath.Join(dir, "out"),
		report:    true,
		trace:     true,
		dbDriver:  "sqlite",
		dbDSN:     filepath.Join(dir, "runs.sqlite"),
	}

	// WHEN the run executes
	var out bytes.Buffer
	res, err := executeRun(context.Background(), smallConfig(), opts, &out)

	// THEN every artifact exists and the run is indexed
	require.NoError(t, err)
	for _, kind := range []string{export.KindMovements, export.KindOrders, export.KindJSON, "report", "trace"} {
		assert.FileExists(t, res.Files[kind], kind)
	}
	recs, err := export.ReadTrace(res.Files["trace"])
	require.NoError(t, err)
	assert.Len(t, recs, 60)
	assert.Equal(t, int64(1), res.RunID)
	assert.Contains(t, out.String(), "Saved run 1")

	// AND the runs listing shows it
	var listing bytes.Buffer
	require.NoError(t, listRuns(context.Background(), "sqlite", opts.dbDSN, &listing))
	lines := strings.Split(strings.TrimSpace(listing.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "1 "))
	assert.Contains(t, lines[1], "10x8")
}

func TestExecuteRun_TraceWithoutOutputDir_Fails(t *testing.T) {
	_, err := executeRun(context.Background(), smallConfig(), runOptions{trace: true}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestExecuteRun_LayoutFile(t *testing.T) {
	path := writeFile(t, "layout.yaml", "name: split\nrows:\n  - \"..#..\"\n  - \".P#.#\"\n  - \"..#..\"\n")
	cfg := smallConfig()
	cfg.NumWorkers = 1

	res, err := executeRun(context.Background(), cfg, runOptions{layoutPath: path}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, 60, res.Summary.Ticks)
	assert.Equal(t, res.Summary.TotalOrders,
		res.Summary.CompletedOrders+res.Summary.FailedOrders+res.Summary.PendingOrders+boolToInt(res.Summary.WorkerStats[0].Busy))
}

func TestExecuteRun_BadLayoutFile(t *testing.T) {
	path := writeFile(t, "layout.yaml", "rows: [\"...\"]\n")
	_, err := executeRun(context.Background(), smallConfig(), runOptions{layoutPath: path}, &bytes.Buffer{})
	assert.ErrorIs(t, err, sim.ErrInvalidLayout)
}

func TestPrintLayout(t *testing.T) {
	topo, err := sim.NewTopology(5, 5)
	require.NoError(t, err)

	var out bytes.Buffer
	printLayout(&out, topo)

	assert.Equal(t, ".....\n..#..\n..#..\n.P#..\n.....\n"+
		"Size           : 5x5\n"+
		"Picking station: (1,3)\n"+
		"Products       : 3\n", out.String())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
