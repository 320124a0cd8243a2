// Package geometry implements planar polygon metrics and the line-polygon
// splitter. Every function is pure and operates on implicitly closed rings.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	"github.com/piwi3910/rooftakeoff/internal/model"
)

const (
	// MetersPerDegreeLat is the flat-earth length of one degree of latitude.
	MetersPerDegreeLat = 111320.0

	// SqFtPerSqMeter converts square meters to square feet.
	SqFtPerSqMeter = 10.763910417

	feetPerMeter = 3.280839895
)

// SignedArea returns the shoelace area of the ring. It is positive for
// counter-clockwise winding in a y-up frame. Fewer than 3 distinct vertices
// yield 0.
func SignedArea(p model.Polygon) float64 {
	ring := p.Normalize()
	if len(ring) < 3 {
		return 0
	}
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2
}

// Area returns the unsigned shoelace area.
func Area(p model.Polygon) float64 {
	return math.Abs(SignedArea(p))
}

// Perimeter sums edge lengths around the ring, including the closing edge.
// With fewer than 3 distinct vertices only the existing open segments count.
func Perimeter(p model.Polygon) float64 {
	ring := p.Normalize()
	switch len(ring) {
	case 0, 1:
		return 0
	case 2:
		return planar.Distance(orb.Point(ring[0]), orb.Point(ring[1]))
	}
	var total float64
	for i := range ring {
		j := (i + 1) % len(ring)
		total += planar.Distance(orb.Point(ring[i]), orb.Point(ring[j]))
	}
	return total
}

// Centroid returns the area centroid. Degenerate rings fall back to the
// vertex average.
func Centroid(p model.Polygon) model.Point2D {
	ring := p.Normalize()
	if len(ring) == 0 {
		return model.Point2D{}
	}
	if len(ring) >= 3 {
		r := append(ring.Ring(), orb.Point(ring[0]))
		c, a := planar.CentroidArea(r)
		if a != 0 {
			return model.Point2D(c)
		}
	}
	var x, y float64
	for _, pt := range ring {
		x += pt[0]
		y += pt[1]
	}
	n := float64(len(ring))
	return model.Point2D{x / n, y / n}
}

// AreaSqFt converts a planar area to square feet given the linear size of
// one planar unit in feet (e.g. feet per pixel).
func AreaSqFt(p model.Polygon, feetPerUnit float64) float64 {
	return Area(p) * feetPerUnit * feetPerUnit
}

// PerimeterFt converts the planar perimeter to feet.
func PerimeterFt(p model.Polygon, feetPerUnit float64) float64 {
	return Perimeter(p) * feetPerUnit
}

// LengthFt converts a planar polyline length to feet.
func LengthFt(line model.Polyline, feetPerUnit float64) float64 {
	return line.Length() * feetPerUnit
}

// GeoAreaSqFt measures a lng/lat outline with the flat meters-per-degree
// approximation (111320 m per degree latitude, scaled by cos(lat) for
// longitude) around the outline's mean latitude.
func GeoAreaSqFt(g model.GeoPolygon) float64 {
	local := localMeters(g)
	return Area(local) * SqFtPerSqMeter
}

// GeoPerimeterFt is the perimeter counterpart of GeoAreaSqFt.
func GeoPerimeterFt(g model.GeoPolygon) float64 {
	return Perimeter(localMeters(g)) * feetPerMeter
}

// SphericalAreaSqFt measures the outline on the sphere. It is used as a
// ground-truth check for the planar approximations.
func SphericalAreaSqFt(g model.GeoPolygon) float64 {
	ring := g.Normalize().Ring()
	if len(ring) < 3 {
		return 0
	}
	ring = append(ring, ring[0])
	return math.Abs(geo.Area(orb.Polygon{ring})) * SqFtPerSqMeter
}

// localMeters maps lng/lat to meters east/north of the first vertex.
func localMeters(g model.GeoPolygon) model.Polygon {
	ring := g.Normalize()
	if len(ring) == 0 {
		return nil
	}
	var latSum float64
	for _, pt := range ring {
		latSum += pt.Lat()
	}
	lat0 := latSum / float64(len(ring))
	metersPerDegLng := MetersPerDegreeLat * math.Cos(lat0*math.Pi/180)

	origin := ring[0]
	out := make(model.Polygon, len(ring))
	for i, pt := range ring {
		out[i] = model.Point2D{
			(pt.Lng() - origin.Lng()) * metersPerDegLng,
			(pt.Lat() - origin.Lat()) * MetersPerDegreeLat,
		}
	}
	return out
}
