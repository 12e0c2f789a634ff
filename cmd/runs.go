package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warehouse-sim/warehouse-sim/sim/store"
)

var (
	runsDriver string
	runsDSN    string
)

// runsCmd lists runs saved by `run --db-dsn`.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List simulation runs stored in the run index",
	Run: func(cmd *cobra.Command, args []string) {
		driver := runsDriver
		if driver == "" {
			driver = getEnv(envDBDriver, store.DriverSQLite)
		}
		dsn := runsDSN
		if dsn == "" {
			dsn = getEnv(envDBDSN, "")
		}
		if dsn == "" {
			logrus.Fatalf("No database configured: pass --db-dsn or set %s", envDBDSN)
		}
		if err := listRuns(cmd.Context(), driver, dsn, os.Stdout); err != nil {
			logrus.Fatalf("Failed to list runs: %v", err)
		}
	},
}

func listRuns(ctx context.Context, driver, dsn string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, driver, dsn)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECORDED\tSEED\tGRID\tWORKERS\tSTEPS\tORDERS\tCOMPLETED\tFAILED\tDISTANCE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%dx%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.ID, r.RecordedAt.Format("2006-01-02 15:04:05"), r.Seed, r.Width, r.Height,
			r.NumWorkers, r.Steps, r.TotalOrders, r.CompletedOrders, r.FailedOrders, r.TotalDistance)
	}
	return tw.Flush()
}

func init() {
	runsCmd.Flags().StringVar(&runsDriver, "db-driver", "", "Run index driver: sqlite or pgx (default $"+envDBDriver+")")
	runsCmd.Flags().StringVar(&runsDSN, "db-dsn", "", "Run index DSN or SQLite path (default $"+envDBDSN+")")
	rootCmd.AddCommand(runsCmd)
}
