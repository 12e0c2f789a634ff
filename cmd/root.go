package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warehouse-sim/warehouse-sim/sim"
	"github.com/warehouse-sim/warehouse-sim/sim/export"
	"github.com/warehouse-sim/warehouse-sim/sim/layout"
	"github.com/warehouse-sim/warehouse-sim/sim/store"
)

var (
	logLevel string // Log verbosity level
	flags    runFlags
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "warehouse-sim",
	Short: "Tick-based simulator for pickers fulfilling orders in a warehouse",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		if err := godotenv.Load(); err != nil {
			logrus.Debug("no .env file found (using environment variables)")
		}
		return nil
	},
}

// runCmd executes the simulation using parameters from the config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the warehouse simulation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := flags.resolve(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		outputDir, dbDriver, dbDSN := flags.outputs()
		opts := runOptions{
			layoutPath:    flags.layoutPath,
			initialOrders: flags.initialOrders,
			outputDir:     outputDir,
			report:        flags.report,
			trace:         flags.trace,
			dbDriver:      dbDriver,
			dbDSN:         dbDSN,
		}
		if _, err := executeRun(cmd.Context(), cfg, opts, os.Stdout); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// runOptions are the `run` settings that live outside sim.Config.
type runOptions struct {
	layoutPath    string
	initialOrders int
	outputDir     string
	report        bool
	trace         bool
	dbDriver      string
	dbDSN         string
}

// runResult lists what a run produced besides the summary.
type runResult struct {
	Summary sim.Summary
	Files   map[string]string
	RunID   int64
}

// executeRun builds the simulator, runs it and writes every requested output.
// The summary is printed to out.
func executeRun(ctx context.Context, cfg sim.Config, opts runOptions, out io.Writer) (runResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var res runResult
	if opts.trace && opts.outputDir == "" {
		return res, fmt.Errorf("--trace requires an output directory")
	}

	s, err := newSimulator(cfg, opts.layoutPath)
	if err != nil {
		return res, err
	}

	var trace *export.TraceWriter
	if opts.trace {
		trace, err = export.NewTraceWriter(filepath.Join(opts.outputDir, "trace.jsonl.zst"))
		if err != nil {
			return res, fmt.Errorf("open trace: %w", err)
		}
		defer func() { _ = trace.Close() }()
		s.AddObserver(trace)
	}

	for i := 0; i < opts.initialOrders; i++ {
		s.GenerateOrder()
	}
	s.AssignOrders()

	startTime := time.Now()
	res.Summary = s.Run()
	logrus.Infof("Simulated %d ticks in %v", res.Summary.Ticks, time.Since(startTime))
	res.Summary.Print(out)

	if opts.outputDir != "" {
		snap := s.Snapshot()
		res.Files, err = export.ExportAll(opts.outputDir, snap)
		if err != nil {
			return res, err
		}
		if opts.report {
			path := filepath.Join(opts.outputDir, "report.md")
			if err := export.WriteReport(path, snap); err != nil {
				return res, err
			}
			res.Files["report"] = path
		}
		if trace != nil {
			if err := trace.Close(); err != nil {
				return res, fmt.Errorf("close trace: %w", err)
			}
			res.Files["trace"] = trace.Path()
		}
		fmt.Fprintf(out, "Results written to %s\n", opts.outputDir)
	}

	if opts.dbDSN != "" {
		st, err := store.Open(ctx, opts.dbDriver, opts.dbDSN)
		if err != nil {
			return res, err
		}
		defer func() { _ = st.Close() }()
		res.RunID, err = st.SaveRun(ctx, store.NewRunRecord(s.Config(), res.Summary, time.Now()))
		if err != nil {
			return res, err
		}
		fmt.Fprintf(out, "Saved run %d\n", res.RunID)
	}
	return res, nil
}

func newSimulator(cfg sim.Config, layoutPath string) (*sim.Simulator, error) {
	if layoutPath == "" {
		return sim.NewSimulator(cfg)
	}
	topo, doc, err := layout.Load(layoutPath)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Loaded layout %q (%dx%d, %d products)", doc.Name, topo.Width(), topo.Height(), topo.NumProducts())
	return sim.NewSimulatorWithTopology(topo, cfg)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	flags.register(runCmd)

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
