package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/rooftakeoff/internal/model"
)

// SplitSnapFraction is the distance, as a fraction of the polygon's
// bounding box diagonal, within which a crossing is treated as a hit on an
// existing vertex.
const SplitSnapFraction = 1e-6

// SplitResult holds the two sub-polygons produced by Split. Both share the
// Cut segment as a common edge. Facet1 runs from the first crossing to the
// second in ring order; Facet2 closes the ring.
type SplitResult struct {
	Facet1 model.Polygon   `json:"facet1"`
	Facet2 model.Polygon   `json:"facet2"`
	Cut    model.SplitLine `json:"cut"`
}

// crossing is one place where the cutting segment meets the boundary.
type crossing struct {
	point  model.Point2D
	edge   int     // edge index i (p[i] -> p[i+1])
	t      float64 // parameter along the edge
	vertex int     // vertex index when the hit snaps to a vertex, else -1
}

// Split cuts a simple polygon along the finite segment line. It succeeds
// only when the segment meets the boundary at exactly two distinct points
// and the chord between them lies inside the polygon; every other case
// returns a *model.SplitError wrapping model.ErrDoesNotBisect. Polygons
// with fewer than 3 distinct vertices fail with model.ErrDegeneratePolygon.
func Split(p model.Polygon, line model.SplitLine) (SplitResult, error) {
	ring := p.Normalize()
	if len(ring) < 3 {
		return SplitResult{}, fmt.Errorf("split: %w", model.ErrDegeneratePolygon)
	}
	snap := SplitSnapFraction * ring.Diagonal()
	if line.Length() <= snap {
		return SplitResult{}, &model.SplitError{Reason: "zero-length split line"}
	}

	crossings := findCrossings(ring, line, snap)
	if len(crossings) != 2 {
		return SplitResult{}, &model.SplitError{
			Crossings: len(crossings),
			Reason:    fmt.Sprintf("line crosses the boundary %d times", len(crossings)),
		}
	}

	mid := crossings[0].point.Add(crossings[1].point).Scale(0.5)
	if !Contains(ring, mid) {
		return SplitResult{}, &model.SplitError{Crossings: 2, Reason: "cut runs outside the polygon"}
	}

	aug, cutAt := insertCrossings(ring, crossings)
	a, b := cutAt[0], cutAt[1]
	if a > b {
		a, b = b, a
	}

	facet1 := aug[a : b+1].Clone()
	facet2 := make(model.Polygon, 0, len(aug)-(b-a)+1)
	facet2 = append(facet2, aug[b:]...)
	facet2 = append(facet2, aug[:a+1]...)

	minArea := 1e-9 * Area(ring)
	if len(facet1) < 3 || len(facet2) < 3 || Area(facet1) <= minArea || Area(facet2) <= minArea {
		return SplitResult{}, &model.SplitError{Crossings: 2, Reason: "cut runs along the boundary"}
	}

	return SplitResult{
		Facet1: facet1,
		Facet2: facet2,
		Cut:    model.SplitLine{Start: aug[a], End: aug[b]},
	}, nil
}

// findCrossings intersects the cutting segment with every edge and returns
// the distinct boundary hits. Hits within snap of a vertex collapse onto
// that vertex so a corner shared by two edges is counted once.
func findCrossings(ring model.Polygon, line model.SplitLine, snap float64) []crossing {
	n := len(ring)
	s := line.End.Sub(line.Start)
	sLen := math.Hypot(s[0], s[1])

	var hits []crossing
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		r := b.Sub(a)
		rLen := math.Hypot(r[0], r[1])
		if rLen == 0 {
			continue
		}

		denom := r[0]*s[1] - r[1]*s[0]
		if math.Abs(denom) <= 1e-12*rLen*sLen {
			// Parallel or collinear edges never count as a crossing; the
			// adjacent edges report the shared vertices instead.
			continue
		}

		ca := line.Start.Sub(a)
		t := (ca[0]*s[1] - ca[1]*s[0]) / denom
		u := (ca[0]*r[1] - ca[1]*r[0]) / denom

		tEps, uEps := snap/rLen, snap/sLen
		if t < -tEps || t > 1+tEps || u < -uEps || u > 1+uEps {
			continue
		}

		pt := a.Add(r.Scale(t))
		c := crossing{point: pt, edge: i, t: t, vertex: -1}
		switch {
		case pt.DistanceTo(a) <= snap:
			c.vertex, c.point, c.t = i, a, 0
		case pt.DistanceTo(b) <= snap:
			c.vertex, c.point, c.t = (i+1)%n, b, 1
		}
		hits = appendDistinct(hits, c, snap)
	}
	return hits
}

func appendDistinct(hits []crossing, c crossing, snap float64) []crossing {
	for _, h := range hits {
		if c.vertex >= 0 && h.vertex == c.vertex {
			return hits
		}
		if h.point.DistanceTo(c.point) <= snap {
			return hits
		}
	}
	return append(hits, c)
}

// insertCrossings walks the ring inserting edge crossings in place and
// returns the augmented ring with the indices of the two cut points.
func insertCrossings(ring model.Polygon, crossings []crossing) (model.Polygon, []int) {
	byEdge := make(map[int][]crossing)
	atVertex := make(map[int]bool)
	for _, c := range crossings {
		if c.vertex >= 0 {
			atVertex[c.vertex] = true
			continue
		}
		byEdge[c.edge] = append(byEdge[c.edge], c)
	}

	aug := make(model.Polygon, 0, len(ring)+len(crossings))
	var cutAt []int
	for i, pt := range ring {
		aug = append(aug, pt)
		if atVertex[i] {
			cutAt = append(cutAt, len(aug)-1)
		}
		edgeHits := byEdge[i]
		sort.Slice(edgeHits, func(x, y int) bool { return edgeHits[x].t < edgeHits[y].t })
		for _, c := range edgeHits {
			aug = append(aug, c.point)
			cutAt = append(cutAt, len(aug)-1)
		}
	}
	return aug, cutAt
}
