package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/rooftakeoff/internal/engine"
	"github.com/piwi3910/rooftakeoff/internal/model"
)

func newSplitCmd(opts *globalOptions) *cobra.Command {
	var (
		polygon     string
		line        string
		pitch       string
		feetPerUnit float64
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a facet polygon along a line",
		Long: `Cut a planar polygon into two facets along a line and print both
with their areas. The line must cross the polygon boundary exactly twice.

--polygon takes a JSON array of [x, y] pairs or a WKT POLYGON; --line
takes {"start": [x, y], "end": [x, y]} or [[x, y], [x, y]]. Prefix either
value with @ to read it from a file.

Examples:
  rooftakeoff split --polygon '[[0,0],[100,0],[100,100],[0,100]]' --line '[[50,-10],[50,110]]'
  rooftakeoff split --polygon @facet.json --line @cut.json --feet-per-unit 0.5 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			poly, err := parsePolygon(polygon)
			if err != nil {
				return err
			}
			cut, err := parseLine(line)
			if err != nil {
				return err
			}

			parent := model.NewRootFacet(poly, 0)
			if pitch != "" {
				if parent, err = parent.WithPitch(pitch); err != nil {
					return err
				}
			}
			children, err := engine.SplitFacet(parent, cut, feetPerUnit, 1)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, children)
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FACET\tVERTICES\tAREA (SQ FT)\tROOF AREA (SQ FT)")
			for _, c := range children {
				roof, err := c.RoofArea(model.PitchFlat)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\n", c.ID, len(c.Points), c.Area, roof)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&polygon, "polygon", "", "Polygon to split [required]")
	cmd.Flags().StringVar(&line, "line", "", "Cutting line [required]")
	cmd.Flags().StringVar(&pitch, "pitch", "", "Pitch carried by both children")
	cmd.Flags().Float64Var(&feetPerUnit, "feet-per-unit", 1, "Feet per polygon unit")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the facets as JSON")
	cmd.MarkFlagRequired("polygon")
	cmd.MarkFlagRequired("line")
	return cmd
}
