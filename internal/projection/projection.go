// Package projection converts WGS84 lng/lat points to a local pixel frame
// and back using Web Mercator. All functions are pure: the same point and
// Context always produce the same result.
package projection

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/piwi3910/rooftakeoff/internal/model"
)

const (
	// TileSize is the pixel width of one Web Mercator tile at zoom 0.
	TileSize = 256.0

	// GroundResolutionAtEquator is meters per pixel at zoom 0 on the equator
	// (2π * 6378137 / 256).
	GroundResolutionAtEquator = 156543.03392

	// FeetPerMeter converts meters to international feet.
	FeetPerMeter = 3.280839895
)

var halfCircumference = math.Pi * orb.EarthRadius

// Context fixes the projection: a geographic center mapped to the middle
// of a Width x Height pixel frame at a Web Mercator zoom level.
type Context struct {
	Center model.GeoPoint `json:"center"`
	Zoom   float64        `json:"zoom"`
	Width  float64        `json:"width"`  // frame width in pixels
	Height float64        `json:"height"` // frame height in pixels
}

// NewContext creates a projection context.
func NewContext(center model.GeoPoint, zoom, width, height float64) Context {
	return Context{Center: center, Zoom: zoom, Width: width, Height: height}
}

// ContextForPolygon centers a frame on the outline's bounding box center.
func ContextForPolygon(g model.GeoPolygon, zoom, width, height float64) Context {
	return NewContext(g.Center(), zoom, width, height)
}

// worldSize is the full map width in pixels at the context zoom.
func (c Context) worldSize() float64 {
	return TileSize * math.Exp2(c.Zoom)
}

// worldPixel maps lng/lat to absolute world pixel coordinates, y down.
func (c Context) worldPixel(g model.GeoPoint) (float64, float64) {
	m := project.Point(orb.Point(g), project.WGS84.ToMercator)
	ws := c.worldSize()
	x := (m[0] + halfCircumference) / (2 * halfCircumference) * ws
	y := (halfCircumference - m[1]) / (2 * halfCircumference) * ws
	return x, y
}

// ToPlanar projects a geographic point into the context's pixel frame.
// The center maps to (Width/2, Height/2); y grows downward.
func (c Context) ToPlanar(g model.GeoPoint) model.Point2D {
	cx, cy := c.worldPixel(c.Center)
	px, py := c.worldPixel(g)
	return model.Point2D{px - cx + c.Width/2, py - cy + c.Height/2}
}

// ToGeo is the inverse of ToPlanar for the same Context.
func (c Context) ToGeo(p model.Point2D) model.GeoPoint {
	cx, cy := c.worldPixel(c.Center)
	ws := c.worldSize()
	px := p[0] - c.Width/2 + cx
	py := p[1] - c.Height/2 + cy
	m := orb.Point{
		px/ws*2*halfCircumference - halfCircumference,
		halfCircumference - py/ws*2*halfCircumference,
	}
	return model.GeoPoint(project.Point(m, project.Mercator.ToWGS84))
}

// PolygonToPlanar projects every vertex of a geographic outline.
func (c Context) PolygonToPlanar(g model.GeoPolygon) model.Polygon {
	out := make(model.Polygon, len(g))
	for i, pt := range g {
		out[i] = c.ToPlanar(pt)
	}
	return out
}

// PolygonToGeo inverts PolygonToPlanar.
func (c Context) PolygonToGeo(p model.Polygon) model.GeoPolygon {
	out := make(model.GeoPolygon, len(p))
	for i, pt := range p {
		out[i] = c.ToGeo(pt)
	}
	return out
}

// LineToPlanar projects a geographic polyline.
func (c Context) LineToPlanar(pts []model.GeoPoint) model.Polyline {
	out := make(model.Polyline, len(pts))
	for i, pt := range pts {
		out[i] = c.ToPlanar(pt)
	}
	return out
}

// MetersPerPixel is the ground resolution at the context center.
func (c Context) MetersPerPixel() float64 {
	return MetersPerPixel(c.Center.Lat(), c.Zoom)
}

// FeetPerPixel is the ground resolution at the context center in feet.
func (c Context) FeetPerPixel() float64 {
	return c.MetersPerPixel() * FeetPerMeter
}

// MetersPerPixel returns the standard Web Mercator ground resolution:
// 156543.03392 * cos(lat) / 2^zoom.
func MetersPerPixel(latitude, zoom float64) float64 {
	return GroundResolutionAtEquator * math.Cos(latitude*math.Pi/180) / math.Exp2(zoom)
}

// FeetPerPixel is MetersPerPixel in feet.
func FeetPerPixel(latitude, zoom float64) float64 {
	return MetersPerPixel(latitude, zoom) * FeetPerMeter
}
