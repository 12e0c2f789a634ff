package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warehouse-sim/warehouse-sim/sim"
	"github.com/warehouse-sim/warehouse-sim/sim/layout"
)

var (
	layoutFile   string
	layoutWidth  int
	layoutHeight int
	layoutYAML   bool
)

// layoutCmd prints a warehouse layout without running a simulation.
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print a warehouse layout and its product locations",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			topo *sim.Topology
			name = "default"
			err  error
		)
		if layoutFile != "" {
			var doc layout.Document
			topo, doc, err = layout.Load(layoutFile)
			name = doc.Name
		} else {
			topo, err = sim.NewTopology(layoutWidth, layoutHeight)
		}
		if err != nil {
			logrus.Fatalf("Failed to build layout: %v", err)
		}
		if layoutYAML {
			if err := layout.FromTopology(name, topo).Write(os.Stdout); err != nil {
				logrus.Fatalf("Failed to write layout: %v", err)
			}
			return
		}
		printLayout(os.Stdout, topo)
	},
}

func printLayout(w io.Writer, topo *sim.Topology) {
	fmt.Fprint(w, topo.String())
	fmt.Fprintf(w, "Size           : %dx%d\n", topo.Width(), topo.Height())
	fmt.Fprintf(w, "Picking station: %v\n", topo.PickingStation())
	fmt.Fprintf(w, "Products       : %d\n", topo.NumProducts())
}

func init() {
	d := sim.DefaultConfig()
	layoutCmd.Flags().StringVar(&layoutFile, "layout", "", "YAML layout file (default: generated layout)")
	layoutCmd.Flags().IntVar(&layoutWidth, "width", d.Width, "Generated layout width")
	layoutCmd.Flags().IntVar(&layoutHeight, "height", d.Height, "Generated layout height")
	layoutCmd.Flags().BoolVar(&layoutYAML, "yaml", false, "Print the layout as a YAML rows document")
	rootCmd.AddCommand(layoutCmd)
}
