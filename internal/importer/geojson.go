package importer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/piwi3910/rooftakeoff/internal/geometry"
	"github.com/piwi3910/rooftakeoff/internal/model"
)

// featureTypeKeys are the GeoJSON properties checked, in order, for the
// roof line type of a LineString feature.
var featureTypeKeys = []string{"type", "feature", "kind", "line_type"}

// Building is a building outline with roof lines and measurement tags read
// from GeoJSON.
type Building struct {
	Outline  model.GeoPolygon         `json:"outline"`
	Features []model.GeoLinearFeature `json:"features"`
	Tags     model.Tags               `json:"tags"`
	Warnings []string                 `json:"warnings,omitempty"`
}

// ParseGeoJSONBuilding accepts a FeatureCollection, a single Feature or a
// bare geometry. The largest polygon becomes the outline and its
// properties are parsed as measurement tags. LineStrings whose type
// property names a roof line become linear features; an optional
// length_ft property overrides the measured length.
func ParseGeoJSONBuilding(data []byte) (Building, error) {
	features, err := decodeFeatures(data)
	if err != nil {
		return Building{}, err
	}

	b := Building{Features: []model.GeoLinearFeature{}}
	var outlineProps geojson.Properties
	bestArea := -1.0
	polygons := 0

	for i, f := range features {
		if f == nil || f.Geometry == nil {
			b.Warnings = append(b.Warnings, fmt.Sprintf("Feature %d: missing geometry, skipped", i+1))
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
			r, err := outerRing(g)
			if err != nil {
				b.Warnings = append(b.Warnings, fmt.Sprintf("Feature %d: %v", i+1, err))
				continue
			}
			polygons++
			outline := model.GeoPolygonFromRing(r)
			if a := geometry.GeoAreaSqFt(outline); a > bestArea {
				b.Outline, bestArea, outlineProps = outline, a, f.Properties
			}

		case orb.LineString, orb.MultiLineString:
			b.Features, b.Warnings = appendLines(b.Features, b.Warnings, f, i)

		default:
			b.Warnings = append(b.Warnings, fmt.Sprintf("Feature %d: %s geometry ignored", i+1, g.GeoJSONType()))
		}
	}

	if polygons == 0 || len(b.Outline) < 3 {
		return Building{}, ErrNoOutline
	}
	if polygons > 1 {
		b.Warnings = append(b.Warnings, fmt.Sprintf("Found %d polygons, using the largest as the outline", polygons))
	}

	tags, err := model.ParseTags(map[string]any(outlineProps))
	if err != nil {
		return Building{}, fmt.Errorf("outline properties: %w", err)
	}
	b.Tags = tags
	return b, nil
}

// ParseGeoJSONLines returns the typed roof lines of a GeoJSON document
// without requiring an outline. Other geometries are ignored.
func ParseGeoJSONLines(data []byte) ([]model.GeoLinearFeature, error) {
	features, err := decodeFeatures(data)
	if err != nil {
		return nil, err
	}
	lines := []model.GeoLinearFeature{}
	for i, f := range features {
		if f != nil && f.Geometry != nil {
			lines, _ = appendLines(lines, nil, f, i)
		}
	}
	return lines, nil
}

// LoadGeoJSONLines reads a GeoJSON file with ParseGeoJSONLines.
func LoadGeoJSONLines(path string) ([]model.GeoLinearFeature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	return ParseGeoJSONLines(data)
}

// decodeFeatures accepts a FeatureCollection, a Feature or a bare geometry.
func decodeFeatures(data []byte) ([]*geojson.Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse geojson: %w", err)
		}
		return fc.Features, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("parse geojson: %w", err)
		}
		return []*geojson.Feature{f}, nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("parse geojson: %w", err)
		}
		return []*geojson.Feature{geojson.NewFeature(g.Geometry())}, nil
	}
}

// appendLines adds the roof lines of a LineString or MultiLineString
// feature.
func appendLines(lines []model.GeoLinearFeature, warnings []string, f *geojson.Feature, idx int) ([]model.GeoLinearFeature, []string) {
	var parts []orb.LineString
	switch g := f.Geometry.(type) {
	case orb.LineString:
		parts = []orb.LineString{g}
	case orb.MultiLineString:
		parts = g
	}
	for _, ls := range parts {
		lf, ok, warn := lineFeature(f, ls, idx)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		if ok {
			lines = append(lines, lf)
		}
	}
	return lines, warnings
}

// LoadGeoJSONBuilding reads and parses a GeoJSON file.
func LoadGeoJSONBuilding(path string) (Building, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Building{}, fmt.Errorf("read geojson: %w", err)
	}
	return ParseGeoJSONBuilding(data)
}

func lineFeature(f *geojson.Feature, ls orb.LineString, idx int) (model.GeoLinearFeature, bool, string) {
	var raw string
	for _, key := range featureTypeKeys {
		if s := f.Properties.MustString(key, ""); s != "" {
			raw = s
			break
		}
	}
	if raw == "" {
		return model.GeoLinearFeature{}, false, fmt.Sprintf("Feature %d: line without a type property, skipped", idx+1)
	}
	ft, ok := model.ParseLinearFeatureType(raw)
	if !ok {
		return model.GeoLinearFeature{}, false, fmt.Sprintf("Feature %d: unknown roof line type %q, skipped", idx+1, raw)
	}
	if len(ls) < 2 {
		return model.GeoLinearFeature{}, false, fmt.Sprintf("Feature %d: %s with fewer than 2 points, skipped", idx+1, ft)
	}

	pts := make([]model.GeoPoint, len(ls))
	for i, p := range ls {
		pts[i] = model.GeoPoint(p)
	}
	length := f.Properties.MustFloat64("length_ft", 0)
	if length < 0 {
		return model.GeoLinearFeature{}, false, fmt.Sprintf("Feature %d: negative length_ft, skipped", idx+1)
	}
	return model.GeoLinearFeature{Type: ft, Geometry: pts, LengthFt: length}, true, ""
}
