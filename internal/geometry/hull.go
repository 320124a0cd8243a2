package geometry

import (
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/piwi3910/rooftakeoff/internal/model"
)

// Contains reports whether pt lies inside or on the boundary of p.
func Contains(p model.Polygon, pt model.Point2D) bool {
	ring := p.Normalize()
	if len(ring) < 3 {
		return false
	}
	return planar.RingContains(ring.Ring(), orb.Point(pt))
}

// ConvexHull returns the convex hull in counter-clockwise order (y-up).
// Collinear points are dropped, so a flat input yields its two extremes.
func ConvexHull(p model.Polygon) model.Polygon {
	pts := p.Normalize()
	if len(pts) < 3 {
		return pts.Clone()
	}
	flat := make([]float64, 0, 2*(len(pts)+1))
	for _, pt := range append(pts, pts[0]) {
		flat = append(flat, pt[0], pt[1])
	}
	var coords []float64
	switch hull := xy.ConvexHull(geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})).(type) {
	case *geom.Polygon:
		if hull.NumLinearRings() > 0 {
			coords = hull.LinearRing(0).FlatCoords()
		}
	case *geom.LineString:
		coords = hull.FlatCoords()
	}
	out := make(model.Polygon, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, model.Pt(coords[i], coords[i+1]))
	}
	out = out.Normalize()
	if SignedArea(out) < 0 {
		slices.Reverse(out)
	}
	return out
}

// OrientedBox is a minimum-area bounding rectangle.
type OrientedBox struct {
	Center     model.Point2D
	Axis       model.Point2D // unit vector along the long side
	HalfLength float64       // half extent along Axis
	HalfWidth  float64       // half extent along the perpendicular
}

// Normal returns the unit vector along the short side.
func (b OrientedBox) Normal() model.Point2D {
	return model.Point2D{-b.Axis[1], b.Axis[0]}
}

// Length is the long side.
func (b OrientedBox) Length() float64 { return 2 * b.HalfLength }

// Width is the short side.
func (b OrientedBox) Width() float64 { return 2 * b.HalfWidth }

// Area of the box.
func (b OrientedBox) Area() float64 { return b.Length() * b.Width() }

// Diagonal of the box.
func (b OrientedBox) Diagonal() float64 { return math.Hypot(b.Length(), b.Width()) }

// Aspect returns long/short, or +Inf for a zero-width box.
func (b OrientedBox) Aspect() float64 {
	if b.HalfWidth == 0 {
		return math.Inf(1)
	}
	return b.HalfLength / b.HalfWidth
}

// LongAxis returns the line through the center along the long side,
// spanning the full box.
func (b OrientedBox) LongAxis() model.SplitLine {
	d := b.Axis.Scale(b.HalfLength)
	return model.SplitLine{Start: b.Center.Sub(d), End: b.Center.Add(d)}
}

// ShortAxis returns the line through the center along the short side.
func (b OrientedBox) ShortAxis() model.SplitLine {
	d := b.Normal().Scale(b.HalfWidth)
	return model.SplitLine{Start: b.Center.Sub(d), End: b.Center.Add(d)}
}

// OrientedBoundingBox finds the minimum-area rectangle by testing every
// convex hull edge direction. Ties keep the first edge in hull order.
func OrientedBoundingBox(p model.Polygon) (OrientedBox, bool) {
	hull := ConvexHull(p)
	if len(hull) < 3 {
		return OrientedBox{}, false
	}

	best := OrientedBox{}
	bestArea := math.Inf(1)
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		edgeLen := a.DistanceTo(b)
		if edgeLen == 0 {
			continue
		}
		u := b.Sub(a).Scale(1 / edgeLen)
		v := model.Point2D{-u[1], u[0]}

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, pt := range hull {
			d := pt.Sub(a)
			pu := d[0]*u[0] + d[1]*u[1]
			pv := d[0]*v[0] + d[1]*v[1]
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}

		area := (maxU - minU) * (maxV - minV)
		if area >= bestArea-1e-12*math.Max(1, bestArea) {
			continue
		}
		bestArea = area

		midU, midV := (minU+maxU)/2, (minV+maxV)/2
		center := a.Add(u.Scale(midU)).Add(v.Scale(midV))
		halfU, halfV := (maxU-minU)/2, (maxV-minV)/2
		if halfU >= halfV {
			best = OrientedBox{Center: center, Axis: u, HalfLength: halfU, HalfWidth: halfV}
		} else {
			best = OrientedBox{Center: center, Axis: v, HalfLength: halfV, HalfWidth: halfU}
		}
	}
	return best, !math.IsInf(bestArea, 1)
}

// Reflect mirrors pt across the infinite line through origin along the
// unit direction axis.
func Reflect(pt, origin, axis model.Point2D) model.Point2D {
	d := pt.Sub(origin)
	along := d[0]*axis[0] + d[1]*axis[1]
	proj := axis.Scale(along)
	perp := d.Sub(proj)
	return origin.Add(proj).Sub(perp)
}

// InteriorAngles returns the interior angle at each vertex in radians,
// accounting for winding.
func InteriorAngles(p model.Polygon) []float64 {
	ring := p.Normalize()
	n := len(ring)
	if n < 3 {
		return nil
	}
	ccw := SignedArea(ring) > 0
	angles := make([]float64, n)
	for i := range ring {
		prev := ring[(i+n-1)%n]
		cur := ring[i]
		next := ring[(i+1)%n]
		a := prev.Sub(cur)
		b := next.Sub(cur)
		turn := math.Atan2(a[0]*b[1]-a[1]*b[0], a[0]*b[0]+a[1]*b[1])
		// turn is the signed angle from a to b; interior for CCW rings is
		// measured clockwise from a to b.
		if ccw {
			turn = -turn
		}
		if turn < 0 {
			turn += 2 * math.Pi
		}
		angles[i] = turn
	}
	return angles
}

// RemoveCollinear simplifies the ring with Douglas-Peucker at tol times
// the bounding box diagonal. Douglas-Peucker keeps its endpoints, so the
// ring is rotated to start at its lexicographically lowest vertex, which is
// always a hull corner.
func RemoveCollinear(p model.Polygon, tol float64) model.Polygon {
	ring := p.Normalize()
	if len(ring) < 4 || tol <= 0 {
		return ring
	}
	first := 0
	for i, pt := range ring {
		lo := ring[first]
		if pt[0] < lo[0] || (pt[0] == lo[0] && pt[1] < lo[1]) {
			first = i
		}
	}
	closed := make(orb.Ring, 0, len(ring)+1)
	for i := range ring {
		closed = append(closed, ring[(first+i)%len(ring)].Orb())
	}
	closed = append(closed, closed[0])

	out := model.PolygonFromRing(simplify.DouglasPeucker(tol * ring.Diagonal()).Ring(closed))
	if len(out) < 3 {
		return ring
	}
	return out
}
