package importer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"

	"github.com/piwi3910/rooftakeoff/internal/model"
)

var (
	// ErrUnsupportedGeometry is returned when a source holds no polygon.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")

	// ErrNoOutline is returned when a source contains no building outline.
	ErrNoOutline = errors.New("no building outline found")
)

// outerRing extracts the exterior ring of a Polygon, or of the largest
// member of a MultiPolygon. Holes are ignored.
func outerRing(g orb.Geometry) (orb.Ring, error) {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 || len(v[0]) == 0 {
			return nil, fmt.Errorf("%w: empty polygon", ErrNoOutline)
		}
		return v[0], nil
	case orb.MultiPolygon:
		var best orb.Ring
		bestArea := -1.0
		for _, p := range v {
			if len(p) == 0 {
				continue
			}
			if a := math.Abs(planar.Area(p)); a > bestArea {
				best, bestArea = p[0], a
			}
		}
		if best == nil {
			return nil, fmt.Errorf("%w: empty multipolygon", ErrNoOutline)
		}
		return best, nil
	case orb.Ring:
		return v, nil
	case nil:
		return nil, fmt.Errorf("%w: missing geometry", ErrUnsupportedGeometry)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

func parseWKTRing(s string) (orb.Ring, error) {
	g, err := wkt.Unmarshal(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("parse wkt: %w", err)
	}
	return outerRing(g)
}

// ParseWKTPolygon reads a planar POLYGON or MULTIPOLYGON. The closing
// vertex is dropped.
func ParseWKTPolygon(s string) (model.Polygon, error) {
	r, err := parseWKTRing(s)
	if err != nil {
		return nil, err
	}
	p := model.PolygonFromRing(r)
	if len(p) < 3 {
		return nil, model.ErrDegeneratePolygon
	}
	return p, nil
}

// ParseWKTOutline reads a POLYGON or MULTIPOLYGON in lng/lat order.
func ParseWKTOutline(s string) (model.GeoPolygon, error) {
	r, err := parseWKTRing(s)
	if err != nil {
		return nil, err
	}
	g := model.GeoPolygonFromRing(r)
	if len(g) < 3 {
		return nil, model.ErrDegeneratePolygon
	}
	return g, nil
}
