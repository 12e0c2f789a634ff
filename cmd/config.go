package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

// Environment variables consulted for defaults. A .env file in the working
// directory is loaded before flags are read.
const (
	envDBDriver  = "WSIM_DB_DRIVER"
	envDBDSN     = "WSIM_DB_DSN"
	envOutputDir = "WSIM_OUTPUT_DIR"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadRunConfig reads a YAML run config on top of sim.DefaultConfig.
// Unknown keys are rejected so typos fail loudly. An empty path returns the defaults.
func loadRunConfig(path string) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read run config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse run config %s: %w", path, err)
	}
	return cfg, nil
}

// runFlags holds the values bound to `run` flags.
type runFlags struct {
	configPath       string
	width            int
	height           int
	numWorkers       int
	steps            int
	orderProbability float64
	minItems         int
	maxItems         int
	tickDuration     int64
	seed             int64
	stallPolicy      string

	layoutPath    string
	initialOrders int
	outputDir     string
	report        bool
	trace         bool
	dbDriver      string
	dbDSN         string
}

func (f *runFlags) register(cmd *cobra.Command) {
	d := sim.DefaultConfig()
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "YAML run config; flags that are set explicitly override it")
	fs.IntVar(&f.width, "width", d.Width, "Warehouse width in cells (generated layout)")
	fs.IntVar(&f.height, "height", d.Height, "Warehouse height in cells (generated layout)")
	fs.IntVar(&f.numWorkers, "workers", d.NumWorkers, "Number of workers")
	fs.IntVar(&f.steps, "steps", d.Steps, "Number of ticks to simulate")
	fs.Float64Var(&f.orderProbability, "order-probability", d.OrderProbability, "Per-tick probability of a new random order")
	fs.IntVar(&f.minItems, "min-items", d.MinItems, "Minimum items per random order")
	fs.IntVar(&f.maxItems, "max-items", d.MaxItems, "Maximum items per random order")
	fs.Int64Var(&f.tickDuration, "tick-duration", d.TickDuration, "Clock advance per tick")
	fs.Int64Var(&f.seed, "seed", d.Seed, "Seed for order generation")
	fs.StringVar(&f.stallPolicy, "stall-policy", string(d.StallPolicy), "What to do when a target is unreachable (fail, stall)")

	fs.StringVar(&f.layoutPath, "layout", "", "YAML layout file; overrides --width/--height")
	fs.IntVar(&f.initialOrders, "initial-orders", 0, "Random orders generated and assigned before the first tick")
	fs.StringVar(&f.outputDir, "output-dir", "", "Directory for CSV/JSON/Markdown results (default $"+envOutputDir+", none if unset)")
	fs.BoolVar(&f.report, "report", false, "Also write report.md into the output directory")
	fs.BoolVar(&f.trace, "trace", false, "Write a zstd-compressed JSONL tick trace into the output directory")
	fs.StringVar(&f.dbDriver, "db-driver", "", "Run index driver: sqlite or pgx (default $"+envDBDriver+")")
	fs.StringVar(&f.dbDSN, "db-dsn", "", "Run index DSN or SQLite path (default $"+envDBDSN+", none if unset)")
}

// resolve builds the simulator config: defaults, then the YAML file, then
// explicitly set flags.
func (f *runFlags) resolve(cmd *cobra.Command) (sim.Config, error) {
	cfg, err := loadRunConfig(f.configPath)
	if err != nil {
		return cfg, err
	}
	fs := cmd.Flags()
	if fs.Changed("width") {
		cfg.Width = f.width
	}
	if fs.Changed("height") {
		cfg.Height = f.height
	}
	if fs.Changed("workers") {
		cfg.NumWorkers = f.numWorkers
	}
	if fs.Changed("steps") {
		cfg.Steps = f.steps
	}
	if fs.Changed("order-probability") {
		cfg.OrderProbability = f.orderProbability
	}
	if fs.Changed("min-items") {
		cfg.MinItems = f.minItems
	}
	if fs.Changed("max-items") {
		cfg.MaxItems = f.maxItems
	}
	if fs.Changed("tick-duration") {
		cfg.TickDuration = f.tickDuration
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fs.Changed("stall-policy") {
		p, err := sim.ParseStallPolicy(f.stallPolicy)
		if err != nil {
			return cfg, err
		}
		cfg.StallPolicy = p
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// outputs resolves output and database settings from flags with environment fallbacks.
func (f *runFlags) outputs() (outputDir, dbDriver, dbDSN string) {
	outputDir = f.outputDir
	if outputDir == "" {
		outputDir = getEnv(envOutputDir, "")
	}
	dbDriver = f.dbDriver
	if dbDriver == "" {
		dbDriver = getEnv(envDBDriver, "sqlite")
	}
	dbDSN = f.dbDSN
	if dbDSN == "" {
		dbDSN = getEnv(envDBDSN, "")
	}
	return outputDir, dbDriver, dbDSN
}
