package geometry

import (
	"math"
	"sort"

	"github.com/piwi3910/rooftakeoff/internal/model"
)

// LineHits returns the sorted parameters s at which the infinite line
// origin + s*dir crosses the boundary of p. Hits closer than the snap
// tolerance are merged. Edges parallel to dir are ignored.
func LineHits(p model.Polygon, origin, dir model.Point2D) []float64 {
	ring := p.Normalize()
	n := len(ring)
	dirLen := math.Hypot(dir[0], dir[1])
	if n < 3 || dirLen == 0 {
		return nil
	}
	snap := SplitSnapFraction * ring.Diagonal()
	var hits []float64
	for i := range ring {
		a, b := ring[i], ring[(i+1)%n]
		e := b.Sub(a)
		denom := dir[0]*e[1] - dir[1]*e[0]
		if math.Abs(denom) <= 1e-12*dirLen*math.Hypot(e[0], e[1]) {
			continue
		}
		ao := a.Sub(origin)
		s := (ao[0]*e[1] - ao[1]*e[0]) / denom
		u := (ao[0]*dir[1] - ao[1]*dir[0]) / denom
		if u < -1e-9 || u > 1+1e-9 {
			continue
		}
		hits = append(hits, s)
	}
	sort.Float64s(hits)
	merged := hits[:0]
	for _, s := range hits {
		if len(merged) > 0 && (s-merged[len(merged)-1])*dirLen <= snap {
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// ExtendToBoundary stretches the segment a→b along its own direction until
// it meets the boundary of p on both sides of the segment midpoint, using
// the nearest crossing on each side.
func ExtendToBoundary(p model.Polygon, a, b model.Point2D) (model.SplitLine, bool) {
	dir := b.Sub(a)
	if dir[0] == 0 && dir[1] == 0 {
		return model.SplitLine{}, false
	}
	mid := a.Add(b).Scale(0.5)
	hits := LineHits(p, mid, dir)
	lo, hi := math.Inf(-1), math.Inf(1)
	for _, s := range hits {
		switch {
		case s < 0 && s > lo:
			lo = s
		case s > 0 && s < hi:
			hi = s
		}
	}
	if math.IsInf(lo, -1) || math.IsInf(hi, 1) {
		return model.SplitLine{}, false
	}
	return model.SplitLine{Start: mid.Add(dir.Scale(lo)), End: mid.Add(dir.Scale(hi))}, true
}

// BoundarySpan returns the chord of the infinite line through a and b
// between its first and last crossing of p's boundary. Unlike
// ExtendToBoundary it does not need the segment midpoint to be inside p.
func BoundarySpan(p model.Polygon, a, b model.Point2D) (model.SplitLine, bool) {
	dir := b.Sub(a)
	hits := LineHits(p, a, dir)
	if len(hits) < 2 {
		return model.SplitLine{}, false
	}
	return model.SplitLine{
		Start: a.Add(dir.Scale(hits[0])),
		End:   a.Add(dir.Scale(hits[len(hits)-1])),
	}, true
}

// CastRay returns the first boundary point hit by the ray from origin along
// dir, skipping hits within the snap tolerance of origin.
func CastRay(p model.Polygon, origin, dir model.Point2D) (model.Point2D, bool) {
	dirLen := math.Hypot(dir[0], dir[1])
	if dirLen == 0 {
		return model.Point2D{}, false
	}
	snap := SplitSnapFraction * p.Normalize().Diagonal()
	for _, s := range LineHits(p, origin, dir) {
		if s*dirLen > snap {
			return origin.Add(dir.Scale(s)), true
		}
	}
	return model.Point2D{}, false
}
