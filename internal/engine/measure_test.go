package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/rooftakeoff/internal/geometry"
	"github.com/piwi3910/rooftakeoff/internal/model"
)

// denverHouse is roughly 30 m x 20 m.
func denverHouse() model.GeoPolygon {
	return model.GeoPolygon{
		model.Geo(-104.9903, 39.7392),
		model.Geo(-104.98995, 39.7392),
		model.Geo(-104.98995, 39.73938),
		model.Geo(-104.9903, 39.73938),
		model.Geo(-104.9903, 39.7392),
	}
}

func TestMeasure_Defaults(t *testing.T) {
	m, err := Measure(MeasureRequest{Outline: denverHouse()})
	require.NoError(t, err)

	assert.Equal(t, DefaultZoom, m.Context.Zoom)
	assert.Len(t, m.Outline, 4, "closing vertex dropped")
	assert.InEpsilon(t, m.SphericalAreaSqFt, m.PlanAreaSqFt, 0.01)
	assert.Greater(t, m.PerimeterFt, 0.0)

	require.Len(t, m.Facets, 1)
	assert.Equal(t, model.RootFacetID, m.Facets[0].ID)
	assert.InDelta(t, m.PlanAreaSqFt, m.Facets[0].Area, 1e-9)

	assert.Equal(t, DefaultPitch, m.Takeoff.Pitch)
	assert.InDelta(t, 1.118, m.Takeoff.Multiplier, 1e-9)
	assert.InDelta(t, DefaultWaste, m.Takeoff.WastePercent, 1e-9)
	assert.InDelta(t, m.Takeoff.TotalArea/100, m.Takeoff.Squares, 1e-9)
	assert.Greater(t, m.Materials.ShingleBundles, 0)
}

func TestMeasure_DerivesFeatureLengths(t *testing.T) {
	house := denverHouse()
	req := MeasureRequest{
		Outline: house,
		Pitch:   "8/12",
		Features: []model.GeoLinearFeature{
			{Type: model.FeatureEave, Geometry: []model.GeoPoint{house[0], house[1]}},
			{Type: model.FeatureEave, Geometry: []model.GeoPoint{house[2], house[3]}},
			{Type: model.FeatureRake, Geometry: []model.GeoPoint{house[1], house[2]}, LengthFt: 70},
		},
	}
	m, err := Measure(req)
	require.NoError(t, err)
	require.Len(t, m.Features, 3)

	// Each eave is about 30 m long.
	assert.InDelta(t, 98.0, m.Features[0].LengthFt, 2)
	assert.InDelta(t, m.Features[0].LengthFt, m.Features[1].LengthFt, 1e-6)
	assert.Equal(t, 70.0, m.Features[2].LengthFt, "explicit length is kept")
	assert.InDelta(t, m.Features[0].LengthFt*2, m.Totals.Eave, 1e-9)
	assert.Equal(t, 70.0, m.Totals.Rake)

	starter, err := model.StarterBundles(m.Totals.Eave, m.Totals.Rake)
	require.NoError(t, err)
	assert.Equal(t, starter, m.Materials.StarterBundles)
}

func TestMeasure_TotalsOverride(t *testing.T) {
	totals := model.LinearFeatureTotals{Ridge: 40, Hip: 26}
	m, err := Measure(MeasureRequest{Outline: denverHouse(), Totals: &totals})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Materials.RidgeCapBundles)
}

func TestMeasure_Errors(t *testing.T) {
	_, err := Measure(MeasureRequest{Outline: denverHouse(), Pitch: "13/12"})
	assert.ErrorIs(t, err, model.ErrUnknownPitchLabel)

	neg := -5.0
	_, err = Measure(MeasureRequest{Outline: denverHouse(), WastePercent: &neg})
	assert.ErrorIs(t, err, model.ErrInvalidMeasurement)

	bad := model.LinearFeatureTotals{Valley: -1}
	_, err = Measure(MeasureRequest{Outline: denverHouse(), Totals: &bad})
	assert.ErrorIs(t, err, model.ErrInvalidMeasurement)

	_, err = Measure(MeasureRequest{Outline: denverHouse(), Width: -1})
	assert.ErrorIs(t, err, model.ErrInvalidMeasurement)
}

func TestMeasure_DegenerateOutlineIsZero(t *testing.T) {
	m, err := Measure(MeasureRequest{Outline: model.GeoPolygon{model.Geo(0, 0), model.Geo(0, 0)}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.PlanAreaSqFt)
	assert.Empty(t, m.Facets)
	assert.Equal(t, 0.0, m.Takeoff.Squares)
}

func TestMeasure_ZeroWasteHonoured(t *testing.T) {
	zero := 0.0
	m, err := Measure(MeasureRequest{Outline: denverHouse(), WastePercent: &zero})
	require.NoError(t, err)
	assert.InDelta(t, m.Takeoff.RoofArea, m.Takeoff.TotalArea, 1e-9)
}

func TestMeasurement_DetectAndSplit(t *testing.T) {
	m, err := Measure(MeasureRequest{Outline: denverHouse()})
	require.NoError(t, err)

	det := m.Detect(nil)
	assert.Equal(t, model.PatternGable, det.Pattern)

	ws, err := WorkspaceFromMeasurement(m)
	require.NoError(t, err)
	box, ok := geometry.OrientedBoundingBox(m.Outline)
	require.True(t, ok)
	line := box.ShortAxis()
	line.Start = line.Start.Sub(box.Normal().Scale(5))
	line.End = line.End.Add(box.Normal().Scale(5))
	_, err = ws.SplitFacet(model.RootFacetID, line)
	require.NoError(t, err)
	assert.InEpsilon(t, m.PlanAreaSqFt, ws.TotalPlanArea(), 1e-6)
}

func TestMeasurePlanar(t *testing.T) {
	// 40 x 30 drawing units at 0.5 ft per unit is 20 ft x 15 ft.
	outline := model.Polygon{model.Pt(0, 0), model.Pt(40, 0), model.Pt(40, 30), model.Pt(0, 30), model.Pt(0, 0)}
	ridge := model.LinearFeature{Type: model.FeatureRidge, Geometry: model.Polyline{model.Pt(0, 15), model.Pt(40, 15)}}

	m, err := MeasurePlanar(PlanarRequest{
		Outline:     outline,
		Features:    []model.LinearFeature{ridge},
		FeetPerUnit: 0.5,
		Pitch:       "12/12",
	})
	require.NoError(t, err)

	assert.Len(t, m.Outline, 4)
	assert.InDelta(t, 300.0, m.PlanAreaSqFt, 1e-9)
	assert.InDelta(t, 70.0, m.PerimeterFt, 1e-9)
	assert.Zero(t, m.SphericalAreaSqFt)
	assert.InDelta(t, 20.0, m.Totals.Ridge, 1e-9)
	assert.InDelta(t, 300*1.4142, m.Takeoff.RoofArea, 1e-9)
	assert.Equal(t, DefaultWaste, m.Takeoff.WastePercent)
	require.Len(t, m.Facets, 1)
	assert.InDelta(t, 300.0, m.Facets[0].Area, 1e-9)

	ws, err := WorkspaceFromMeasurement(m)
	require.NoError(t, err)
	assert.Equal(t, 0.5, ws.FeetPerUnit())

	_, err = MeasurePlanar(PlanarRequest{Outline: outline})
	assert.ErrorIs(t, err, model.ErrInvalidMeasurement)
}
