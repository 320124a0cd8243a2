package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"github.com/piwi3910/rooftakeoff/internal/model"
	"github.com/piwi3910/rooftakeoff/internal/projection"
)

func closedRing(r orb.Ring) orb.Ring {
	if len(r) > 0 && !r.Closed() {
		r = append(r, r[0])
	}
	return r
}

// FacetsGeoJSON projects facets back to lng/lat and returns them as one
// Polygon feature per facet, in facet order.
func FacetsGeoJSON(facets []model.Facet, ctx projection.Context) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range facets {
		ring := closedRing(ctx.PolygonToGeo(f.Points).Ring())
		feat := geojson.NewFeature(orb.Polygon{ring})
		feat.Properties["id"] = f.ID
		feat.Properties["area_sqft"] = f.Area
		feat.Properties["color"] = f.Color
		if f.Pitch != "" {
			feat.Properties["pitch"] = f.Pitch
		}
		if f.Direction != "" {
			feat.Properties["direction"] = f.Direction
		}
		fc.Append(feat)
	}
	return fc
}

// FacetWKT renders a facet's planar points as a closed WKT POLYGON.
func FacetWKT(f model.Facet) string {
	return wkt.MarshalString(orb.Polygon{closedRing(f.Points.Ring())})
}

// FacetGeoWKT renders a facet in lng/lat as a closed WKT POLYGON.
func FacetGeoWKT(f model.Facet, ctx projection.Context) string {
	return wkt.MarshalString(orb.Polygon{closedRing(ctx.PolygonToGeo(f.Points).Ring())})
}
