package importer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/rooftakeoff/internal/geometry"
	"github.com/piwi3910/rooftakeoff/internal/model"
)

// outlineLayers are layer names whose closed shapes are building outlines.
var outlineLayers = map[string]bool{
	"OUTLINE":   true,
	"BUILDING":  true,
	"FOOTPRINT": true,
	"ROOF":      true,
}

// DXFResult holds a building outline and the roof lines read from a DXF
// drawing. Coordinates stay in drawing units; feature lengths are in feet.
type DXFResult struct {
	Outline  model.Polygon
	Features []model.LinearFeature
	Errors   []string
	Warnings []string
}

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE entities into closed outlines.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// ImportDXF reads a DXF file. Closed shapes on an OUTLINE, BUILDING,
// FOOTPRINT or ROOF layer are outline candidates; without such a layer the
// largest closed shape in the drawing is used. Entities on a layer named
// after a feature type (RIDGE, HIP, VALLEY, EAVE, RAKE, STEP) become
// linear features. feetPerUnit scales drawing units to feet; zero means
// the drawing is already in feet.
func ImportDXF(path string, feetPerUnit float64) DXFResult {
	d, err := dxf.Open(path)
	if err != nil {
		return DXFResult{Errors: []string{fmt.Sprintf("Cannot open DXF file: %v", err)}}
	}
	return ImportDrawing(d, feetPerUnit)
}

// ImportDrawing is ImportDXF for an already parsed drawing.
func ImportDrawing(d *drawing.Drawing, feetPerUnit float64) DXFResult {
	result := DXFResult{}
	if feetPerUnit <= 0 {
		feetPerUnit = 1
	}

	entities := d.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var preferred, other []model.Polygon
	var preferredSegs, otherSegs []segment

	for _, ent := range entities {
		layer := layerName(ent)
		if ft, ok := model.ParseLinearFeatureType(layer); ok {
			if pts := entityPolyline(ent); len(pts) >= 2 {
				result.Features = append(result.Features, model.LinearFeature{
					Type:     ft,
					Geometry: pts,
					LengthFt: pts.Length() * feetPerUnit,
				})
			}
			continue
		}

		shapes, segs := &other, &otherSegs
		if outlineLayers[layer] {
			shapes, segs = &preferred, &preferredSegs
		}

		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylinePoints(e)
			if len(outline) >= 3 {
				*shapes = append(*shapes, outline)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			*shapes = append(*shapes, circleToOutline(e, 64))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				*segs = append(*segs, pointsToSegments(pts)...)
			}

		case *entity.Line:
			*segs = append(*segs, segment{
				start: model.Pt(e.Start[0], e.Start[1]),
				end:   model.Pt(e.End[0], e.End[1]),
			})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	preferred = append(preferred, chainSegments(preferredSegs, 0.01)...)
	other = append(other, chainSegments(otherSegs, 0.01)...)

	candidates := preferred
	if len(candidates) == 0 {
		candidates = other
	}
	candidates = closedShapes(candidates, &result)
	if len(candidates) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return geometry.Area(candidates[i]) > geometry.Area(candidates[j])
	})
	if len(candidates) > 1 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Found %d closed shapes, using the largest as the outline", len(candidates)))
	}
	result.Outline = candidates[0]
	return result
}

// closedShapes drops degenerate candidates, recording a warning for each.
func closedShapes(shapes []model.Polygon, result *DXFResult) []model.Polygon {
	var out []model.Polygon
	for _, s := range shapes {
		s = s.Normalize()
		min, max := s.BoundingBox()
		width, height := max[0]-min[0], max[1]-min[1]
		if len(s) < 3 || width < 0.01 || height < 0.01 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", width, height))
			continue
		}
		out = append(out, s)
	}
	return out
}

// layerName returns the upper-cased layer of an entity, or "" when unset.
func layerName(ent entity.Entity) string {
	l := ent.Layer()
	if l == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(l.Name()))
}

// entityPolyline flattens a feature entity into an open polyline.
func entityPolyline(ent entity.Entity) model.Polyline {
	switch e := ent.(type) {
	case *entity.Line:
		return model.Polyline{model.Pt(e.Start[0], e.Start[1]), model.Pt(e.End[0], e.End[1])}
	case *entity.LwPolyline:
		pts := model.Polyline(lwPolylinePoints(e))
		if e.Closed && len(pts) > 0 {
			pts = append(pts, pts[0])
		}
		return pts
	case *entity.Arc:
		return model.Polyline(arcToPoints(e, 32))
	}
	return nil
}

// lwPolylinePoints converts a DXF LWPOLYLINE entity to a point ring.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylinePoints(lw *entity.LwPolyline) model.Polygon {
	var outline model.Polygon

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := model.Pt(v[0], v[1])

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := model.Pt(lw.Vertices[nextIdx][0], lw.Vertices[nextIdx][1])
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			// Add all but the last point (next vertex will be added naturally)
			outline = append(outline, arcPts[:len(arcPts)-1]...)
		} else {
			outline = append(outline, current)
		}
	}

	return outline
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle.
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, numSegments int) model.Polygon {
	mid := p1.Add(p2).Scale(0.5)
	chord := p2.Sub(p1)
	chordLen := p1.DistanceTo(p2)
	if chordLen < 1e-9 {
		return model.Polygon{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	// Center lies on the chord's perpendicular bisector
	perp := model.Pt(-chord[1]/chordLen, chord[0]/chordLen)
	if bulge > 0 {
		perp = perp.Scale(-1)
	}
	center := mid.Add(perp.Scale(radius - sagitta))

	startAngle := math.Atan2(p1[1]-center[1], p1[0]-center[0])
	endAngle := math.Atan2(p2[1]-center[1], p2[0]-center[0])
	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else if endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make(model.Polygon, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, model.Pt(center[0]+radius*math.Cos(angle), center[1]+radius*math.Sin(angle)))
	}
	return pts
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(c *entity.Circle, numSegments int) model.Polygon {
	outline := make(model.Polygon, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		outline[i] = model.Pt(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}
	return outline
}

// arcToPoints converts a DXF ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []model.Point2D {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]model.Point2D, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = model.Pt(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}
	return pts
}

// pointsToSegments converts a point sequence to a slice of connected segments.
func pointsToSegments(pts []model.Point2D) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed outlines.
// tolerance is the maximum distance between endpoints to consider them
// connected. Chains that do not close are dropped.
func chainSegments(segs []segment, tolerance float64) []model.Polygon {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var outlines []model.Polygon

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := model.Polygon{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		for changed := true; changed; {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}

	// Largest first for consistent ordering
	sort.SliceStable(outlines, func(i, j int) bool {
		return geometry.Area(outlines[i]) > geometry.Area(outlines[j])
	})

	return outlines
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b model.Point2D, tolerance float64) bool {
	return a.DistanceTo(b) <= tolerance
}
