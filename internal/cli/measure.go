package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/rooftakeoff/internal/engine"
	"github.com/piwi3910/rooftakeoff/internal/export"
	"github.com/piwi3910/rooftakeoff/internal/importer"
	"github.com/piwi3910/rooftakeoff/internal/model"
	"github.com/piwi3910/rooftakeoff/internal/project"
)

type measureFlags struct {
	wkt         string
	geojson     string
	dxf         string
	features    string
	xlsx        string
	save        string
	load        string
	pitch       string
	waste       float64
	feetPerUnit float64
	detect      bool
	apply       bool
	asJSON      bool
}

type measureOutput struct {
	engine.Measurement
	Detection *model.RoofPatternDetection `json:"detection,omitempty"`
	Applied   int                         `json:"applied_splits,omitempty"`
	Warnings  []string                    `json:"warnings,omitempty"`
}

func newMeasureCmd(opts *globalOptions) *cobra.Command {
	f := &measureFlags{}

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Measure a building outline and derive the material takeoff",
		Long: `Measure a building outline and convert it into roof area, squares
and material counts.

Exactly one outline source is required. WKT and GeoJSON outlines are
lng/lat and are projected with Web Mercator; DXF outlines are in drawing
units scaled by --feet-per-unit. A feature sheet, when given, replaces
the roof line totals read from the outline file.

--save writes the session to a takeoff file and --load measures a saved
one again, keeping its facets. Both add the file to the recent list.
--apply splits the outline along the detected suggestions when the
detection confidence reaches auto_apply_min_confidence from the config.

Examples:
  # Outline from WKT with the default pitch and waste
  rooftakeoff measure --wkt house.wkt

  # GeoJSON building with roof lines, 8/12 pitch, 15% waste
  rooftakeoff measure --geojson house.geojson --pitch 8/12 --waste 15

  # CAD drawing in inches with a roof line sheet, saved as a workbook
  rooftakeoff measure --dxf house.dxf --feet-per-unit 0.083333 --features lines.csv --xlsx takeoff.xlsx

  # Split along the detected roof shape and save the session
  rooftakeoff measure --geojson house.geojson --apply --save house.roof.json

  # Re-open a saved takeoff at a different pitch
  rooftakeoff measure --load house.roof.json --pitch 8/12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeasure(cmd, opts, f)
		},
	}

	cmd.Flags().StringVar(&f.wkt, "wkt", "", "WKT POLYGON file (lng lat)")
	cmd.Flags().StringVar(&f.geojson, "geojson", "", "GeoJSON building file")
	cmd.Flags().StringVar(&f.dxf, "dxf", "", "DXF drawing")
	cmd.Flags().StringVar(&f.features, "features", "", "CSV or XLSX sheet of roof line lengths")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "Write the takeoff workbook to this path")
	cmd.Flags().StringVar(&f.save, "save", "", "Save the takeoff session to this file")
	cmd.Flags().StringVar(&f.load, "load", "", "Saved takeoff file to measure again")
	cmd.Flags().StringVar(&f.pitch, "pitch", "", "Roof pitch label, e.g. 6/12 (default from config)")
	cmd.Flags().Float64Var(&f.waste, "waste", 0, "Waste percent (default from config)")
	cmd.Flags().Float64Var(&f.feetPerUnit, "feet-per-unit", 1, "DXF drawing scale in feet per unit")
	cmd.Flags().BoolVar(&f.detect, "detect", false, "Also classify the roof pattern")
	cmd.Flags().BoolVar(&f.apply, "apply", false, "Split facets along confident detections (implies --detect)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the measurement as JSON")
	return cmd
}

func runMeasure(cmd *cobra.Command, opts *globalOptions, f *measureFlags) error {
	cfg, err := opts.appConfig()
	if err != nil {
		return err
	}

	sources := 0
	for _, s := range []string{f.wkt, f.geojson, f.dxf, f.load} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return errors.New("exactly one of --wkt, --geojson, --dxf or --load is required")
	}

	pitch := cfg.DefaultPitch
	if f.pitch != "" {
		pitch = f.pitch
	}
	waste := cfg.DefaultWastePercent
	if cmd.Flags().Changed("waste") {
		waste = f.waste
	}

	var out measureOutput
	var totals *model.LinearFeatureTotals
	if f.features != "" {
		res := importFeatureSheet(f.features)
		if len(res.Errors) > 0 {
			return fmt.Errorf("feature sheet: %s", strings.Join(res.Errors, "; "))
		}
		out.Warnings = append(out.Warnings, res.Warnings...)
		totals = &res.Totals
	}

	geoRequest := engine.MeasureRequest{
		Totals:       totals,
		Pitch:        pitch,
		WastePercent: &waste,
		Zoom:         cfg.DefaultZoom,
		Width:        cfg.DefaultFrameWidth,
		Height:       cfg.DefaultFrameHeight,
	}

	var m engine.Measurement
	var saved project.TakeoffFile
	switch {
	case f.wkt != "":
		data, err := os.ReadFile(f.wkt)
		if err != nil {
			return err
		}
		outline, err := importer.ParseWKTOutline(strings.TrimSpace(string(data)))
		if err != nil {
			return err
		}
		geoRequest.Outline = outline
		m, err = engine.Measure(geoRequest)
		if err != nil {
			return err
		}
		saved.Outline = outline

	case f.geojson != "":
		b, err := importer.LoadGeoJSONBuilding(f.geojson)
		if err != nil {
			return err
		}
		out.Warnings = append(out.Warnings, b.Warnings...)
		if f.pitch == "" && b.Tags.Pitch != "" {
			geoRequest.Pitch = b.Tags.Pitch
		}
		if !cmd.Flags().Changed("waste") && b.Tags.WastePercent != nil {
			geoRequest.WastePercent = b.Tags.WastePercent
		}
		if geoRequest.Totals == nil && b.Tags.Linear != (model.LinearFeatureTotals{}) {
			geoRequest.Totals = &b.Tags.Linear
		}
		geoRequest.Outline = b.Outline
		geoRequest.Features = b.Features
		m, err = engine.Measure(geoRequest)
		if err != nil {
			return err
		}
		saved.Outline, saved.Features = b.Outline, b.Features

	case f.load != "":
		tf, err := project.LoadTakeoff(f.load)
		if err != nil {
			return err
		}
		if f.pitch == "" && tf.Pitch != "" {
			pitch = tf.Pitch
		}
		if !cmd.Flags().Changed("waste") {
			waste = tf.WastePercent
		}
		if totals == nil {
			totals = tf.Totals
		}
		if m, err = measureSaved(tf, totals, pitch, waste, cfg); err != nil {
			return err
		}
		saved = tf
		if cfg, err = rememberProject(opts, cfg, f.load); err != nil {
			return err
		}

	default:
		res := importer.ImportDXF(f.dxf, f.feetPerUnit)
		if len(res.Errors) > 0 {
			return fmt.Errorf("dxf: %s", strings.Join(res.Errors, "; "))
		}
		out.Warnings = append(out.Warnings, res.Warnings...)
		m, err = engine.MeasurePlanar(engine.PlanarRequest{
			Outline:      res.Outline,
			Features:     res.Features,
			FeetPerUnit:  f.feetPerUnit,
			Totals:       totals,
			Pitch:        pitch,
			WastePercent: &waste,
		})
		if err != nil {
			return err
		}
		saved.Drawing, saved.DrawingFeatures, saved.FeetPerUnit = res.Outline, res.Features, f.feetPerUnit
	}

	if f.detect || f.apply {
		det := m.Detect(engine.NewDetector(engine.DetectorOptions{SymmetryTolerance: cfg.SymmetryTolerance}))
		out.Detection = &det
		if f.apply {
			applied, warning, err := applyToMeasurement(&m, det, cfg.AutoApplyMinConf)
			if err != nil {
				return err
			}
			out.Applied = applied
			if warning != "" {
				out.Warnings = append(out.Warnings, warning)
			}
		}
	}
	out.Measurement = m

	if f.save != "" {
		if !saved.IsDrawing() {
			saved.Frame = &m.Context
		}
		saved.Name = strings.TrimSuffix(filepath.Base(f.save), project.FileExtension)
		saved.Totals = totals
		if totals == nil && geoRequest.Totals != nil {
			saved.Totals = geoRequest.Totals
		}
		saved.Pitch = m.Takeoff.Pitch
		saved.WastePercent = m.Takeoff.WastePercent
		saved.Facets = m.Facets
		if err := project.SaveTakeoff(f.save, saved); err != nil {
			return err
		}
		if _, err := rememberProject(opts, cfg, f.save); err != nil {
			return err
		}
	}

	if f.xlsx != "" {
		if err := export.ExportTakeoffXLSX(f.xlsx, m, nil); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if f.asJSON {
		return writeJSON(w, out)
	}
	printMeasurement(w, out)
	if f.xlsx != "" {
		fmt.Fprintf(w, "\nWorkbook written to %s\n", f.xlsx)
	}
	if f.save != "" {
		fmt.Fprintf(w, "Takeoff saved to %s\n", f.save)
	}
	return nil
}

func printMeasurement(out io.Writer, mo measureOutput) {
	m := mo.Measurement
	tk := m.Takeoff

	fmt.Fprintln(out, "AREA:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Plan area:\t%.1f sq ft\n", tk.PlanArea)
	fmt.Fprintf(w, "  Perimeter:\t%.1f ft\n", m.PerimeterFt)
	fmt.Fprintf(w, "  Pitch:\t%s (x%.4f)\n", tk.Pitch, tk.Multiplier)
	fmt.Fprintf(w, "  Roof area:\t%.1f sq ft\n", tk.RoofArea)
	fmt.Fprintf(w, "  Waste:\t%g%%\n", tk.WastePercent)
	fmt.Fprintf(w, "  Total area:\t%.1f sq ft\n", tk.TotalArea)
	fmt.Fprintf(w, "  Squares:\t%.2f\n", tk.Squares)
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "ROOF LINES:")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, ft := range model.LinearFeatureTypes {
		fmt.Fprintf(w, "  %s:\t%.1f ft\n", ft, m.Totals.Get(ft))
	}
	w.Flush()

	q := m.Materials
	fmt.Fprintln(out)
	fmt.Fprintln(out, "MATERIALS:")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Shingle bundles:\t%d\n", q.ShingleBundles)
	fmt.Fprintf(w, "  Ridge cap bundles:\t%d\n", q.RidgeCapBundles)
	fmt.Fprintf(w, "  Valley rolls:\t%d\n", q.ValleyRolls)
	fmt.Fprintf(w, "  Drip edge sticks:\t%d\n", q.DripEdgeSticks)
	fmt.Fprintf(w, "  Starter bundles:\t%d\n", q.StarterBundles)
	fmt.Fprintf(w, "  Step flashing pieces:\t%d\n", q.StepFlashingPieces)
	w.Flush()

	if mo.Detection != nil {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "PATTERN: %s (confidence %.2f)\n", mo.Detection.Pattern, mo.Detection.Confidence)
		fmt.Fprintf(out, "  %s\n", mo.Detection.Description)
		fmt.Fprintf(out, "  %d suggested split(s)\n", len(mo.Detection.SuggestedSplits))
		if mo.Applied > 0 {
			fmt.Fprintf(out, "  %d split(s) applied, %d facets\n", mo.Applied, len(m.Facets))
		}
	}

	for _, warn := range mo.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warn)
	}
}
