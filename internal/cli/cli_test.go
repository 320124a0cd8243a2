package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/rooftakeoff/internal/model"
	"github.com/piwi3910/rooftakeoff/internal/project"
)

// run executes the CLI with a config path that does not exist, so the
// built-in defaults apply.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWithConfig(t, filepath.Join(t.TempDir(), "config.json"), args...)
}

func runWithConfig(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const houseWKT = "POLYGON((-104.9903 39.7392, -104.98995 39.7392, -104.98995 39.73938, -104.9903 39.73938, -104.9903 39.7392))"

// lHouseWKT is houseWKT with its north-east quarter removed.
const lHouseWKT = "POLYGON((-104.9903 39.7392, -104.98995 39.7392, -104.98995 39.73929, -104.990125 39.73929, -104.990125 39.73938, -104.9903 39.73938, -104.9903 39.7392))"

type measureJSON struct {
	PlanAreaSqFt float64       `json:"plan_area_sqft"`
	Takeoff      model.Takeoff `json:"takeoff"`
	Facets       []model.Facet `json:"facets"`
	Applied      int           `json:"applied_splits"`
	Warnings     []string      `json:"warnings"`
}

func TestPitchCommand(t *testing.T) {
	out, err := run(t, "pitch")
	require.NoError(t, err)
	assert.Contains(t, out, "12/12")
	assert.Contains(t, out, "1.4142")

	out, err = run(t, "pitch", "--nearest", "1.09")
	require.NoError(t, err)
	assert.Contains(t, out, "5/12")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rooftakeoff v")
}

func TestMeasureCommandWKT(t *testing.T) {
	path := writeFile(t, "house.wkt", houseWKT)

	out, err := run(t, "measure", "--wkt", path, "--json")
	require.NoError(t, err)

	var m struct {
		PlanAreaSqFt float64       `json:"plan_area_sqft"`
		Takeoff      model.Takeoff `json:"takeoff"`
		Facets       []model.Facet `json:"facets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Greater(t, m.PlanAreaSqFt, 5000.0, "about 30 m x 20 m")
	assert.Equal(t, "6/12", m.Takeoff.Pitch)
	assert.Equal(t, 12.0, m.Takeoff.WastePercent)
	assert.Len(t, m.Facets, 1)
}

func TestMeasureCommandTextWithFeaturesAndWorkbook(t *testing.T) {
	wkt := writeFile(t, "house.wkt", houseWKT)
	sheet := writeFile(t, "lines.csv", "type,length\nridge,98\neave,196\nrake,118\n")
	xlsx := filepath.Join(t.TempDir(), "takeoff.xlsx")

	out, err := run(t, "measure", "--wkt", wkt, "--features", sheet, "--pitch", "8/12", "--waste", "15", "--xlsx", xlsx, "--detect")
	require.NoError(t, err)
	assert.Contains(t, out, "8/12")
	assert.Contains(t, out, "Ridge cap bundles:")
	assert.Contains(t, out, "PATTERN: gable")
	assert.Contains(t, out, "Workbook written to")

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Materials", "B3")
	require.NoError(t, err)
	assert.Equal(t, "3", v, "98 ft of ridge needs 3 cap bundles")
}

func TestMeasureCommandGeoJSONTags(t *testing.T) {
	doc := `{"type": "Feature",
		"properties": {"roof.pitch": "10/12", "roof.waste_pct": 20, "lf.valley": 30},
		"geometry": {"type": "Polygon", "coordinates": [[
			[-104.9903, 39.7392], [-104.98995, 39.7392], [-104.98995, 39.73938], [-104.9903, 39.73938], [-104.9903, 39.7392]
		]]}}`
	path := writeFile(t, "house.geojson", doc)

	out, err := run(t, "measure", "--geojson", path, "--json")
	require.NoError(t, err)
	var m struct {
		Takeoff model.Takeoff             `json:"takeoff"`
		Totals  model.LinearFeatureTotals `json:"totals"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "10/12", m.Takeoff.Pitch)
	assert.Equal(t, 20.0, m.Takeoff.WastePercent)
	assert.Equal(t, 30.0, m.Totals.Valley)

	out, err = run(t, "measure", "--geojson", path, "--pitch", "4/12", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "4/12", m.Takeoff.Pitch, "flag beats tag")
}

func TestMeasureCommandErrors(t *testing.T) {
	_, err := run(t, "measure")
	assert.ErrorContains(t, err, "exactly one of")

	path := writeFile(t, "house.wkt", houseWKT)
	_, err = run(t, "measure", "--wkt", path, "--pitch", "13/12")
	assert.ErrorIs(t, err, model.ErrUnknownPitchLabel)

	_, err = run(t, "measure", "--wkt", path, "--waste=-1")
	assert.ErrorIs(t, err, model.ErrInvalidMeasurement)
}

func TestMeasureCommandSaveLoadAndRecent(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.json")
	wkt := writeFile(t, "house.wkt", houseWKT)
	saved := filepath.Join(dir, "jobs", "house.roof.json")

	out, err := runWithConfig(t, cfg, "measure", "--wkt", wkt, "--pitch", "4/12", "--save", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "Takeoff saved to")

	tf, err := project.LoadTakeoff(saved)
	require.NoError(t, err)
	assert.Equal(t, "house", tf.Name)
	assert.Equal(t, "4/12", tf.Pitch)
	require.NotNil(t, tf.Frame)
	assert.Len(t, tf.Facets, 1)

	out, err = runWithConfig(t, cfg, "measure", "--wkt", wkt, "--json")
	require.NoError(t, err)
	var fresh measureJSON
	require.NoError(t, json.Unmarshal([]byte(out), &fresh))

	out, err = runWithConfig(t, cfg, "measure", "--load", saved, "--json")
	require.NoError(t, err)
	var reloaded measureJSON
	require.NoError(t, json.Unmarshal([]byte(out), &reloaded))
	assert.Equal(t, "4/12", reloaded.Takeoff.Pitch, "pitch comes from the file")
	assert.InDelta(t, fresh.PlanAreaSqFt, reloaded.PlanAreaSqFt, 1e-6)

	out, err = runWithConfig(t, cfg, "measure", "--load", saved, "--pitch", "9/12", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &reloaded))
	assert.Equal(t, "9/12", reloaded.Takeoff.Pitch, "flag beats file")

	out, err = runWithConfig(t, cfg, "recent")
	require.NoError(t, err)
	abs, err := filepath.Abs(saved)
	require.NoError(t, err)
	assert.Contains(t, out, abs)

	appCfg, err := project.LoadAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, appCfg.RecentProjects, "loading the same file does not duplicate it")
}

func TestRecentCommandEmpty(t *testing.T) {
	out, err := run(t, "recent")
	require.NoError(t, err)
	assert.Contains(t, out, "No recent takeoffs")
}

func TestMeasureCommandApplyAndReload(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.json")
	wkt := writeFile(t, "lhouse.wkt", lHouseWKT)
	saved := filepath.Join(dir, "lhouse.roof.json")

	out, err := runWithConfig(t, cfg, "measure", "--wkt", wkt, "--apply", "--save", saved, "--json")
	require.NoError(t, err)
	var m measureJSON
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, 2, m.Applied)
	require.Len(t, m.Facets, 3)
	var sum float64
	for _, f := range m.Facets {
		sum += f.Area
	}
	assert.InDelta(t, m.PlanAreaSqFt, sum, 1e-6)

	out, err = runWithConfig(t, cfg, "measure", "--load", saved, "--apply", "--json")
	require.NoError(t, err)
	var reloaded measureJSON
	require.NoError(t, json.Unmarshal([]byte(out), &reloaded))
	assert.Len(t, reloaded.Facets, 3, "saved facets are kept")
	assert.Zero(t, reloaded.Applied)
	require.Len(t, reloaded.Warnings, 1)
	assert.Contains(t, reloaded.Warnings[0], "--apply skipped")
}

func TestMeasureCommandApplyBelowThreshold(t *testing.T) {
	cfg := writeFile(t, "config.json", `{"auto_apply_min_confidence": 0.9}`)
	wkt := writeFile(t, "lhouse.wkt", lHouseWKT)

	out, err := runWithConfig(t, cfg, "measure", "--wkt", wkt, "--apply", "--json")
	require.NoError(t, err)
	var m measureJSON
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Zero(t, m.Applied)
	assert.Len(t, m.Facets, 1)
	require.Len(t, m.Warnings, 1)
	assert.Contains(t, m.Warnings[0], "below the auto-apply threshold")
}

func TestMeasureCommandLoadErrors(t *testing.T) {
	_, err := run(t, "measure", "--load", filepath.Join(t.TempDir(), "missing.roof.json"))
	assert.Error(t, err)

	empty := writeFile(t, "empty.roof.json", `{"version": "1.0.0"}`)
	_, err = run(t, "measure", "--load", empty)
	assert.ErrorContains(t, err, "no outline")

	wkt := writeFile(t, "house.wkt", houseWKT)
	_, err = run(t, "measure", "--wkt", wkt, "--load", empty)
	assert.ErrorContains(t, err, "exactly one of")
}

func TestSplitCommand(t *testing.T) {
	out, err := run(t, "split",
		"--polygon", "[[0,0],[100,0],[100,100],[0,100]]",
		"--line", `{"start":[50,-10],"end":[50,110]}`,
		"--feet-per-unit", "0.5", "--json")
	require.NoError(t, err)

	var facets []model.Facet
	require.NoError(t, json.Unmarshal([]byte(out), &facets))
	require.Len(t, facets, 2)
	for _, f := range facets {
		assert.InDelta(t, 1250.0, f.Area, 1e-6)
	}
}

func TestSplitCommandTextAndWKT(t *testing.T) {
	poly := writeFile(t, "facet.wkt", "POLYGON((0 0, 100 0, 100 100, 0 100, 0 0))")
	out, err := run(t, "split", "--polygon", "@"+poly, "--line", "[[-10,50],[110,50]]", "--pitch", "12/12")
	require.NoError(t, err)
	assert.Contains(t, out, "5000.00")
	assert.Contains(t, out, "7071.00", "roof area at 12/12")
}

func TestSplitCommandRejected(t *testing.T) {
	_, err := run(t, "split", "--polygon", "[[0,0],[100,0],[100,100],[0,100]]", "--line", "[[200,0],[300,0]]")
	assert.ErrorIs(t, err, model.ErrDoesNotBisect)

	_, err = run(t, "split", "--polygon", "[[0,0],[100,0],[100,100],[0,100]]")
	assert.Error(t, err, "--line is required")
}

func TestDetectCommand(t *testing.T) {
	out, err := run(t, "detect", "--polygon", "[[0,0],[100,0],[100,50],[50,50],[50,100],[0,100]]", "--json")
	require.NoError(t, err)

	var det model.RoofPatternDetection
	require.NoError(t, json.Unmarshal([]byte(out), &det))
	assert.Equal(t, model.PatternLShape, det.Pattern)
	assert.Len(t, det.SuggestedSplits, 2)
}

func TestDetectCommandApply(t *testing.T) {
	lShape := "[[0,0],[100,0],[100,50],[50,50],[50,100],[0,100]]"

	out, err := run(t, "detect", "--polygon", lShape, "--apply", "--feet-per-unit", "0.5", "--json")
	require.NoError(t, err)
	var res struct {
		Pattern model.RoofPattern `json:"pattern"`
		Applied int               `json:"applied_splits"`
		Facets  []model.Facet     `json:"facets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, model.PatternLShape, res.Pattern)
	assert.Equal(t, 2, res.Applied)
	require.Len(t, res.Facets, 3)
	for _, f := range res.Facets {
		assert.InDelta(t, 625.0, f.Area, 1e-6, "50x50 units at half a foot per unit")
	}

	out, err = run(t, "detect", "--polygon", lShape, "--apply")
	require.NoError(t, err)
	assert.Contains(t, out, "2 split(s) applied")
	assert.Contains(t, out, "facet-")
}

func TestDetectCommandApplyBelowThreshold(t *testing.T) {
	cfg := writeFile(t, "config.json", `{"auto_apply_min_confidence": 0.9}`)

	out, err := runWithConfig(t, cfg, "detect", "--polygon", "[[0,0],[100,0],[100,50],[50,50],[50,100],[0,100]]", "--apply")
	require.NoError(t, err)
	assert.Contains(t, out, "0 split(s) applied")
	assert.Contains(t, out, "below the auto-apply threshold 0.90")
}

func TestDetectCommandWithRidgeFeatures(t *testing.T) {
	lines := writeFile(t, "lines.geojson", `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {"type": "ridge"},
		 "geometry": {"type": "LineString", "coordinates": [[20, 50], [180, 50]]}}
	]}`)

	out, err := run(t, "detect", "--polygon", "[[0,0],[200,0],[200,100],[0,100]]", "--features", lines)
	require.NoError(t, err)
	assert.Contains(t, out, "Pattern:    gable")
	assert.Contains(t, out, "Confidence: 0.90")
	assert.Contains(t, out, "split 1:")
}

func TestParseLine(t *testing.T) {
	l, err := parseLine(`[[1,2],[3,4]]`)
	require.NoError(t, err)
	assert.Equal(t, model.SplitLine{Start: model.Pt(1, 2), End: model.Pt(3, 4)}, l)

	_, err = parseLine(`[[1,2]]`)
	assert.Error(t, err)
	_, err = parseLine(`{`)
	assert.Error(t, err)
}
