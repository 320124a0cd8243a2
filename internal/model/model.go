package model

import (
	"math"

	"github.com/paulmach/orb"
)

// Point2D is a planar coordinate in projected units (pixels, meters or feet).
// It is backed by orb.Point so it marshals as a [x, y] JSON array.
type Point2D orb.Point

// Pt is shorthand for constructing a Point2D.
func Pt(x, y float64) Point2D { return Point2D{x, y} }

func (p Point2D) X() float64 { return p[0] }
func (p Point2D) Y() float64 { return p[1] }

// Orb returns the point as an orb.Point.
func (p Point2D) Orb() orb.Point { return orb.Point(p) }

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D { return Point2D{p[0] - q[0], p[1] - q[1]} }

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D { return Point2D{p[0] + q[0], p[1] + q[1]} }

// Scale multiplies both coordinates by k.
func (p Point2D) Scale(k float64) Point2D { return Point2D{p[0] * k, p[1] * k} }

// DistanceTo returns the Euclidean distance between p and q.
func (p Point2D) DistanceTo(q Point2D) float64 {
	return math.Hypot(p[0]-q[0], p[1]-q[1])
}

// GeoPoint is a WGS84 (longitude, latitude) pair in degrees. It marshals as
// a [lng, lat] JSON array, matching orb and GeoJSON ordering.
type GeoPoint orb.Point

// Geo is shorthand for constructing a GeoPoint from longitude and latitude.
func Geo(lng, lat float64) GeoPoint { return GeoPoint{lng, lat} }

func (g GeoPoint) Lng() float64 { return g[0] }
func (g GeoPoint) Lat() float64 { return g[1] }

// Orb returns the point as an orb.Point.
func (g GeoPoint) Orb() orb.Point { return orb.Point(g) }

// Polygon is a closed ring of planar points. It is implicitly closed: the
// last point connects back to the first. A trailing duplicate of the first
// point is tolerated everywhere and removed by Normalize.
type Polygon []Point2D

// Normalize returns a copy with the closing duplicate vertex and any
// consecutive duplicate vertices removed.
func (p Polygon) Normalize() Polygon {
	out := make(Polygon, 0, len(p))
	for _, pt := range p {
		if len(out) > 0 && samePoint(out[len(out)-1], pt) {
			continue
		}
		out = append(out, pt)
	}
	for len(out) > 1 && samePoint(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// IsDegenerate reports whether the polygon has fewer than 3 distinct vertices.
func (p Polygon) IsDegenerate() bool {
	return len(p.Normalize()) < 3
}

// Clone returns a deep copy of the polygon.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	cp := make(Polygon, len(p))
	copy(cp, p)
	return cp
}

// Ring converts the polygon to an orb.Ring (not explicitly closed).
func (p Polygon) Ring() orb.Ring {
	r := make(orb.Ring, len(p))
	for i, pt := range p {
		r[i] = orb.Point(pt)
	}
	return r
}

// PolygonFromRing converts an orb.Ring to a Polygon, dropping any closing
// duplicate vertex.
func PolygonFromRing(r orb.Ring) Polygon {
	p := make(Polygon, len(r))
	for i, pt := range r {
		p[i] = Point2D(pt)
	}
	return p.Normalize()
}

// BoundingBox returns the min and max corners of the polygon.
func (p Polygon) BoundingBox() (min, max Point2D) {
	if len(p) == 0 {
		return Point2D{}, Point2D{}
	}
	min, max = p[0], p[0]
	for _, pt := range p[1:] {
		if pt[0] < min[0] {
			min[0] = pt[0]
		}
		if pt[1] < min[1] {
			min[1] = pt[1]
		}
		if pt[0] > max[0] {
			max[0] = pt[0]
		}
		if pt[1] > max[1] {
			max[1] = pt[1]
		}
	}
	return min, max
}

// Diagonal returns the length of the bounding box diagonal.
func (p Polygon) Diagonal() float64 {
	min, max := p.BoundingBox()
	return min.DistanceTo(max)
}

// Translate shifts all points by dx, dy.
func (p Polygon) Translate(dx, dy float64) Polygon {
	result := make(Polygon, len(p))
	for i, pt := range p {
		result[i] = Point2D{pt[0] + dx, pt[1] + dy}
	}
	return result
}

// Scale multiplies every point by k about the origin.
func (p Polygon) Scale(k float64) Polygon {
	result := make(Polygon, len(p))
	for i, pt := range p {
		result[i] = pt.Scale(k)
	}
	return result
}

// GeoPolygon is a building outline in geographic coordinates. Closure rules
// match Polygon.
type GeoPolygon []GeoPoint

// Normalize removes the closing duplicate and consecutive duplicates.
func (g GeoPolygon) Normalize() GeoPolygon {
	out := make(GeoPolygon, 0, len(g))
	for _, pt := range g {
		if len(out) > 0 && out[len(out)-1] == pt {
			continue
		}
		out = append(out, pt)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// Ring converts the outline to an orb.Ring.
func (g GeoPolygon) Ring() orb.Ring {
	r := make(orb.Ring, len(g))
	for i, pt := range g {
		r[i] = orb.Point(pt)
	}
	return r
}

// GeoPolygonFromRing converts an orb.Ring of lng/lat points to a GeoPolygon.
func GeoPolygonFromRing(r orb.Ring) GeoPolygon {
	g := make(GeoPolygon, len(r))
	for i, pt := range r {
		g[i] = GeoPoint(pt)
	}
	return g.Normalize()
}

// Center returns the center of the outline's lng/lat bounding box.
func (g GeoPolygon) Center() GeoPoint {
	if len(g) == 0 {
		return GeoPoint{}
	}
	return GeoPoint(g.Ring().Bound().Center())
}

// SplitLine is a request to cut a facet along the segment Start→End. Both
// points are in the same frame as the polygon being split.
type SplitLine struct {
	Start Point2D `json:"start"`
	End   Point2D `json:"end"`
}

// Length returns the length of the cutting segment.
func (l SplitLine) Length() float64 {
	return l.Start.DistanceTo(l.End)
}

// coincidenceEpsilon is the absolute distance under which two vertices are
// considered the same point when normalizing rings.
const coincidenceEpsilon = 1e-9

func samePoint(a, b Point2D) bool {
	return math.Abs(a[0]-b[0]) <= coincidenceEpsilon && math.Abs(a[1]-b[1]) <= coincidenceEpsilon
}
