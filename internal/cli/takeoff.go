package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/piwi3910/rooftakeoff/internal/engine"
	"github.com/piwi3910/rooftakeoff/internal/model"
	"github.com/piwi3910/rooftakeoff/internal/project"
)

// measureSaved runs a saved takeoff through the pipeline again in the frame
// it was saved in. Saved facets replace the fresh facet-0.
func measureSaved(tf project.TakeoffFile, totals *model.LinearFeatureTotals, pitch string, waste float64, cfg model.AppConfig) (engine.Measurement, error) {
	var (
		m   engine.Measurement
		err error
	)
	switch {
	case tf.IsDrawing():
		m, err = engine.MeasurePlanar(engine.PlanarRequest{
			Outline:      tf.Drawing,
			Features:     tf.DrawingFeatures,
			FeetPerUnit:  tf.FeetPerUnit,
			Totals:       totals,
			Pitch:        pitch,
			WastePercent: &waste,
		})
	case len(tf.Outline) > 0:
		req := engine.MeasureRequest{
			Outline:      tf.Outline,
			Features:     tf.Features,
			Totals:       totals,
			Pitch:        pitch,
			WastePercent: &waste,
			Zoom:         cfg.DefaultZoom,
			Width:        cfg.DefaultFrameWidth,
			Height:       cfg.DefaultFrameHeight,
		}
		if tf.Frame != nil {
			req.Zoom, req.Width, req.Height = tf.Frame.Zoom, tf.Frame.Width, tf.Frame.Height
		}
		m, err = engine.Measure(req)
	default:
		return engine.Measurement{}, errors.New("takeoff file has no outline")
	}
	if err != nil {
		return engine.Measurement{}, err
	}
	if len(tf.Facets) > 0 {
		m.Facets = model.CopyFacets(tf.Facets)
	}
	return m, nil
}

// autoApply splits the workspace along the detection's suggestions when its
// confidence reaches minConf. It returns the number of splits applied.
func autoApply(ws *engine.Workspace, det model.RoofPatternDetection, minConf float64) int {
	if det.Confidence < minConf {
		return 0
	}
	return ws.ApplyDetection(det)
}

// applyToMeasurement replaces an unsplit measurement's facets with the
// auto-applied split. The warning explains why nothing was applied.
func applyToMeasurement(m *engine.Measurement, det model.RoofPatternDetection, minConf float64) (int, string, error) {
	if len(m.Facets) != 1 {
		return 0, fmt.Sprintf("outline already has %d facets; --apply skipped", len(m.Facets)), nil
	}
	if det.Confidence < minConf {
		return 0, belowThreshold(det, minConf), nil
	}
	ws, err := engine.WorkspaceFromMeasurement(*m)
	if err != nil {
		return 0, "", err
	}
	applied := autoApply(ws, det, minConf)
	m.Facets = ws.Facets()
	return applied, "", nil
}

func belowThreshold(det model.RoofPatternDetection, minConf float64) string {
	return fmt.Sprintf("detection confidence %.2f is below the auto-apply threshold %.2f; facets left unsplit", det.Confidence, minConf)
}

// rememberProject moves path to the front of the recent list and saves the
// updated config.
func rememberProject(opts *globalOptions, cfg model.AppConfig, path string) (model.AppConfig, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	cfg = project.AddRecentProject(cfg, path)
	if err := project.SaveAppConfig(opts.configPath, cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newRecentCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently saved or loaded takeoff files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.appConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cfg.RecentProjects) == 0 {
				fmt.Fprintln(out, "No recent takeoffs")
				return nil
			}
			for i, p := range cfg.RecentProjects {
				fmt.Fprintf(out, "%2d  %s\n", i+1, p)
			}
			return nil
		},
	}
}
