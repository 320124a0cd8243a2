package engine

import (
	"fmt"

	"github.com/piwi3910/rooftakeoff/internal/geometry"
	"github.com/piwi3910/rooftakeoff/internal/model"
	"github.com/piwi3910/rooftakeoff/internal/projection"
)

// Frame defaults used when a request leaves them unset.
const (
	DefaultZoom        = 20.0
	DefaultFrameWidth  = 1024.0
	DefaultFrameHeight = 768.0
	DefaultPitch       = "6/12"
	DefaultWaste       = 12.0
)

// MeasureRequest is a geographic building outline plus optional linear
// features to run through the takeoff pipeline.
type MeasureRequest struct {
	Outline  model.GeoPolygon         `json:"outline"`
	Features []model.GeoLinearFeature `json:"features,omitempty"`
	// Totals overrides the totals derived from Features when set, e.g.
	// from imported tags or a feature sheet.
	Totals       *model.LinearFeatureTotals `json:"totals,omitempty"`
	Pitch        string                     `json:"pitch"`
	WastePercent *float64                   `json:"waste_percent,omitempty"`
	Zoom         float64                    `json:"zoom,omitempty"`
	Width        float64                    `json:"width,omitempty"`
	Height       float64                    `json:"height,omitempty"`
}

// Measurement is the result of Measure or MeasurePlanar. Outline and
// feature geometry share one planar frame, and FeetPerPixel converts its
// units to feet.
type Measurement struct {
	Context           projection.Context        `json:"context"`
	FeetPerPixel      float64                   `json:"feet_per_pixel"`
	Outline           model.Polygon             `json:"outline"`
	PlanAreaSqFt      float64                   `json:"plan_area_sqft"`
	PerimeterFt       float64                   `json:"perimeter_ft"`
	SphericalAreaSqFt float64                   `json:"spherical_area_sqft"`
	Features          []model.LinearFeature     `json:"features"`
	Totals            model.LinearFeatureTotals `json:"totals"`
	Takeoff           model.Takeoff             `json:"takeoff"`
	Materials         model.MaterialQuantities  `json:"materials"`
	Facets            []model.Facet             `json:"facets"`
}

func (r MeasureRequest) withDefaults() MeasureRequest {
	if r.Zoom == 0 {
		r.Zoom = DefaultZoom
	}
	if r.Width == 0 {
		r.Width = DefaultFrameWidth
	}
	if r.Height == 0 {
		r.Height = DefaultFrameHeight
	}
	if r.Pitch == "" {
		r.Pitch = DefaultPitch
	}
	if r.WastePercent == nil {
		w := DefaultWaste
		r.WastePercent = &w
	}
	return r
}

// Measure projects the outline into a pixel frame centered on it, measures
// it in feet and runs the pitch, waste and material calculations. A
// degenerate outline measures as zero area with no facets. Invalid pitch,
// waste or totals return an error.
func Measure(req MeasureRequest) (Measurement, error) {
	req = req.withDefaults()
	if req.Zoom < 0 || req.Width <= 0 || req.Height <= 0 {
		return Measurement{}, fmt.Errorf("%w: frame must have positive size and non-negative zoom", model.ErrInvalidMeasurement)
	}

	outline := req.Outline.Normalize()
	ctx := projection.ContextForPolygon(outline, req.Zoom, req.Width, req.Height)
	fpp := ctx.FeetPerPixel()
	planar := ctx.PolygonToPlanar(outline)

	m := Measurement{
		Context:      ctx,
		FeetPerPixel: fpp,
		Outline:      planar,
		Features:     []model.LinearFeature{},
		Facets:       []model.Facet{},
	}
	if len(outline) >= 3 {
		m.PlanAreaSqFt = geometry.AreaSqFt(planar, fpp)
		m.PerimeterFt = geometry.PerimeterFt(planar, fpp)
		m.SphericalAreaSqFt = geometry.SphericalAreaSqFt(outline)
		m.Facets = append(m.Facets, model.NewRootFacet(planar, m.PlanAreaSqFt))
	} else {
		Logger().Warn("degenerate outline measured as zero", "vertices", len(outline))
	}

	for _, gf := range req.Features {
		f := model.LinearFeature{
			Type:     gf.Type,
			Geometry: ctx.LineToPlanar(gf.Geometry),
			LengthFt: gf.LengthFt,
		}
		if f.LengthFt == 0 {
			f.LengthFt = geometry.LengthFt(f.Geometry, fpp)
		}
		m.Features = append(m.Features, f)
	}

	return finishTakeoff(m, req.Totals, req.Pitch, *req.WastePercent)
}

// finishTakeoff fills totals, takeoff and materials on a measured outline.
func finishTakeoff(m Measurement, totals *model.LinearFeatureTotals, pitch string, waste float64) (Measurement, error) {
	if totals != nil {
		m.Totals = *totals
	} else {
		m.Totals = model.TotalsFromFeatures(m.Features)
	}
	if err := m.Totals.Validate(); err != nil {
		return Measurement{}, err
	}

	takeoff, err := model.CalculateTakeoff(m.PlanAreaSqFt, pitch, waste)
	if err != nil {
		return Measurement{}, err
	}
	m.Takeoff = takeoff

	mats, err := model.DeriveMaterials(takeoff.Squares, m.Totals)
	if err != nil {
		return Measurement{}, err
	}
	m.Materials = mats
	return m, nil
}

// PlanarRequest is an outline already in a planar frame, such as a CAD
// drawing, with a known scale.
type PlanarRequest struct {
	Outline      model.Polygon              `json:"outline"`
	Features     []model.LinearFeature      `json:"features,omitempty"`
	FeetPerUnit  float64                    `json:"feet_per_unit"`
	Totals       *model.LinearFeatureTotals `json:"totals,omitempty"`
	Pitch        string                     `json:"pitch"`
	WastePercent *float64                   `json:"waste_percent,omitempty"`
}

// MeasurePlanar runs the takeoff pipeline on a planar outline. The result
// has a zero Context and no spherical area; FeetPerPixel holds FeetPerUnit.
func MeasurePlanar(req PlanarRequest) (Measurement, error) {
	if req.FeetPerUnit <= 0 {
		return Measurement{}, fmt.Errorf("%w: feet per unit must be positive", model.ErrInvalidMeasurement)
	}
	if req.Pitch == "" {
		req.Pitch = DefaultPitch
	}
	waste := DefaultWaste
	if req.WastePercent != nil {
		waste = *req.WastePercent
	}

	ring := req.Outline.Normalize()
	m := Measurement{
		FeetPerPixel: req.FeetPerUnit,
		Outline:      ring,
		Features:     []model.LinearFeature{},
		Facets:       []model.Facet{},
	}
	if len(ring) >= 3 {
		m.PlanAreaSqFt = geometry.AreaSqFt(ring, req.FeetPerUnit)
		m.PerimeterFt = geometry.PerimeterFt(ring, req.FeetPerUnit)
		m.Facets = append(m.Facets, model.NewRootFacet(ring, m.PlanAreaSqFt))
	} else {
		Logger().Warn("degenerate outline measured as zero", "vertices", len(ring))
	}

	for _, f := range req.Features {
		if f.LengthFt == 0 {
			f.LengthFt = geometry.LengthFt(f.Geometry, req.FeetPerUnit)
		}
		m.Features = append(m.Features, f)
	}
	return finishTakeoff(m, req.Totals, req.Pitch, waste)
}

// Detect classifies the measured outline using its pixel-frame features.
func (m Measurement) Detect(d *Detector) model.RoofPatternDetection {
	if d == nil {
		d = NewDetector(DefaultDetectorOptions())
	}
	return d.Detect(m.Outline, m.Features)
}
