package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/rooftakeoff/internal/engine"
	"github.com/piwi3910/rooftakeoff/internal/importer"
	"github.com/piwi3910/rooftakeoff/internal/model"
)

func newDetectCmd(opts *globalOptions) *cobra.Command {
	var (
		polygon     string
		features    string
		apply       bool
		feetPerUnit float64
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Classify a roof outline and suggest facet splits",
		Long: `Classify an outline as gable, hip, l-shape, symmetric or complex and
print the suggested split lines.

--polygon is a planar outline (JSON [x, y] pairs or WKT, @file allowed).
--features is a GeoJSON file of ridge/hip LineStrings drawn in the same
coordinates as the polygon; each needs a "type" property.
--apply splits the outline along the suggestions and prints the facets
when the confidence reaches auto_apply_min_confidence from the config.

Examples:
  rooftakeoff detect --polygon '[[0,0],[40,0],[40,20],[0,20]]'
  rooftakeoff detect --polygon @outline.json --features lines.geojson --json
  rooftakeoff detect --polygon @outline.json --apply --feet-per-unit 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.appConfig()
			if err != nil {
				return err
			}
			poly, err := parsePolygon(polygon)
			if err != nil {
				return err
			}
			var lines []model.LinearFeature
			if features != "" {
				if lines, err = loadPlanarFeatures(features); err != nil {
					return err
				}
			}

			d := engine.NewDetector(engine.DetectorOptions{SymmetryTolerance: cfg.SymmetryTolerance})
			res := detectOutput{RoofPatternDetection: d.Detect(poly, lines)}
			det := res.RoofPatternDetection

			if apply {
				ws, err := engine.NewWorkspace(poly, feetPerUnit)
				if err != nil {
					return err
				}
				res.Applied = autoApply(ws, det, cfg.AutoApplyMinConf)
				if det.Confidence < cfg.AutoApplyMinConf {
					res.Warning = belowThreshold(det, cfg.AutoApplyMinConf)
				}
				res.Facets = ws.Facets()
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res)
			}
			fmt.Fprintf(out, "Pattern:    %s\n", det.Pattern)
			fmt.Fprintf(out, "Confidence: %.2f\n", det.Confidence)
			fmt.Fprintf(out, "%s\n", det.Description)
			for i, s := range det.SuggestedSplits {
				fmt.Fprintf(out, "  split %d: (%.2f, %.2f) -> (%.2f, %.2f)\n", i+1, s.Start[0], s.Start[1], s.End[0], s.End[1])
			}
			if apply {
				fmt.Fprintf(out, "\n%d split(s) applied:\n", res.Applied)
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, f := range res.Facets {
					fmt.Fprintf(w, "  %s\t%.1f sq ft\n", f.ID, f.Area)
				}
				w.Flush()
			}
			if res.Warning != "" {
				fmt.Fprintf(out, "warning: %s\n", res.Warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&polygon, "polygon", "", "Outline to classify [required]")
	cmd.Flags().StringVar(&features, "features", "", "GeoJSON roof lines in the polygon's frame")
	cmd.Flags().BoolVar(&apply, "apply", false, "Split the outline along confident suggestions")
	cmd.Flags().Float64Var(&feetPerUnit, "feet-per-unit", 1, "Polygon scale in feet per unit, for facet areas")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the detection as JSON")
	cmd.MarkFlagRequired("polygon")
	return cmd
}

type detectOutput struct {
	model.RoofPatternDetection
	Applied int           `json:"applied_splits,omitempty"`
	Facets  []model.Facet `json:"facets,omitempty"`
	Warning string        `json:"warning,omitempty"`
}

// loadPlanarFeatures reads GeoJSON LineStrings whose coordinates are
// already in the outline's planar frame.
func loadPlanarFeatures(path string) ([]model.LinearFeature, error) {
	lines, err := importer.LoadGeoJSONLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.New("features: no typed LineStrings found")
	}
	out := make([]model.LinearFeature, len(lines))
	for i, gf := range lines {
		pl := make(model.Polyline, len(gf.Geometry))
		for k, pt := range gf.Geometry {
			pl[k] = model.Point2D(pt)
		}
		out[i] = model.LinearFeature{Type: gf.Type, Geometry: pl, LengthFt: gf.LengthFt}
	}
	return out, nil
}
