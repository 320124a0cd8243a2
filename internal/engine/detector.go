package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/rooftakeoff/internal/geometry"
	"github.com/piwi3910/rooftakeoff/internal/model"
)

// DetectorOptions tunes the roof pattern heuristics.
type DetectorOptions struct {
	// SymmetryTolerance is the maximum mirrored-vertex deviation as a
	// fraction of the oriented bounding box diagonal.
	SymmetryTolerance float64 `json:"symmetry_tolerance"`
	// DecisiveConfidence stops rule evaluation at the first candidate that
	// reaches it.
	DecisiveConfidence float64 `json:"decisive_confidence"`
	// MaxGableAspect is the longest long/short ratio still treated as a
	// simple gable rectangle.
	MaxGableAspect float64 `json:"max_gable_aspect"`
	// RidgeAngleTolerance is the largest angle in degrees between a ridge
	// and the outline's long axis for the ridge to count as parallel.
	RidgeAngleTolerance float64 `json:"ridge_angle_tolerance"`
	// RidgeOffsetFraction bounds the ridge midpoint's distance from the
	// long axis as a fraction of the short side.
	RidgeOffsetFraction float64 `json:"ridge_offset_fraction"`
	// RightAngleTolerance is the allowed deviation in degrees from 90 or
	// 270 degrees for an L-shape corner.
	RightAngleTolerance float64 `json:"right_angle_tolerance"`
	// CollinearTolerance drops near-collinear vertices before analysis, as
	// a fraction of the bounding box diagonal.
	CollinearTolerance float64 `json:"collinear_tolerance"`
}

// DefaultDetectorOptions returns the tuning used by the CLI and server.
func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{
		SymmetryTolerance:   0.05,
		DecisiveConfidence:  0.8,
		MaxGableAspect:      4.0,
		RidgeAngleTolerance: 15,
		RidgeOffsetFraction: 0.25,
		RightAngleTolerance: 10,
		CollinearTolerance:  0.005,
	}
}

// Detector classifies building outlines into roof patterns.
type Detector struct {
	opts DetectorOptions
}

// NewDetector creates a detector. Zero-valued options fall back to the
// defaults.
func NewDetector(opts DetectorOptions) *Detector {
	def := DefaultDetectorOptions()
	if opts.SymmetryTolerance <= 0 {
		opts.SymmetryTolerance = def.SymmetryTolerance
	}
	if opts.DecisiveConfidence <= 0 {
		opts.DecisiveConfidence = def.DecisiveConfidence
	}
	if opts.MaxGableAspect <= 0 {
		opts.MaxGableAspect = def.MaxGableAspect
	}
	if opts.RidgeAngleTolerance <= 0 {
		opts.RidgeAngleTolerance = def.RidgeAngleTolerance
	}
	if opts.RidgeOffsetFraction <= 0 {
		opts.RidgeOffsetFraction = def.RidgeOffsetFraction
	}
	if opts.RightAngleTolerance <= 0 {
		opts.RightAngleTolerance = def.RightAngleTolerance
	}
	if opts.CollinearTolerance <= 0 {
		opts.CollinearTolerance = def.CollinearTolerance
	}
	return &Detector{opts: opts}
}

// Options returns the effective options.
func (d *Detector) Options() DetectorOptions { return d.opts }

// Detect classifies an outline with the default options.
func Detect(outline model.Polygon, features []model.LinearFeature) model.RoofPatternDetection {
	return NewDetector(DefaultDetectorOptions()).Detect(outline, features)
}

// shape is the pre-computed outline analysis shared by all rules.
type shape struct {
	ring     model.Polygon
	box      geometry.OrientedBox
	features []model.LinearFeature
}

type rule func(d *Detector, s shape) (model.RoofPatternDetection, bool)

var rules = []struct {
	name string
	fn   rule
}{
	{"ridge", (*Detector).ridgeRule},
	{"symmetry", (*Detector).symmetryRule},
	{"l-shape", (*Detector).lShapeRule},
	{"rectangular", (*Detector).rectangularRule},
}

// Detect runs the rules in order. The first candidate whose confidence
// reaches DecisiveConfidence wins; otherwise the highest-confidence
// candidate wins, with earlier rules winning ties. Outlines no rule
// recognises are reported as complex.
func (d *Detector) Detect(outline model.Polygon, features []model.LinearFeature) model.RoofPatternDetection {
	det := d.detect(outline, features)
	if det.SuggestedSplits == nil {
		det.SuggestedSplits = []model.SplitLine{}
	}
	return det
}

func (d *Detector) detect(outline model.Polygon, features []model.LinearFeature) model.RoofPatternDetection {
	ring := geometry.RemoveCollinear(outline, d.opts.CollinearTolerance)
	if len(ring) < 3 {
		return model.RoofPatternDetection{
			Pattern:     model.PatternComplex,
			Confidence:  0,
			Description: "Outline has fewer than 3 distinct vertices; nothing to analyse",
		}
	}
	box, ok := geometry.OrientedBoundingBox(ring)
	if !ok || box.HalfWidth == 0 {
		return model.RoofPatternDetection{
			Pattern:     model.PatternComplex,
			Confidence:  0,
			Description: "Outline is collinear; nothing to analyse",
		}
	}

	s := shape{ring: ring, box: box, features: features}
	log := Logger()
	var best *model.RoofPatternDetection
	for _, r := range rules {
		c, ok := r.fn(d, s)
		if !ok {
			continue
		}
		log.Debug("detector candidate", "rule", r.name, "pattern", c.Pattern, "confidence", c.Confidence)
		if c.Confidence >= d.opts.DecisiveConfidence {
			return c
		}
		if best == nil || c.Confidence > best.Confidence {
			cp := c
			best = &cp
		}
	}
	if best != nil {
		return *best
	}
	return model.RoofPatternDetection{
		Pattern:    model.PatternComplex,
		Confidence: 0.2,
		Description: fmt.Sprintf(
			"No recognisable pattern in a %d-vertex outline; split facets manually", len(ring)),
	}
}

// ridgeRule uses drawn ridge lines. Hip lines turn a gable into a hip roof.
func (d *Detector) ridgeRule(s shape) (model.RoofPatternDetection, bool) {
	var ridges []model.LinearFeature
	for _, f := range model.FeaturesOfType(s.features, model.FeatureRidge) {
		if len(f.Geometry) >= 2 && f.Geometry[0] != f.Geometry[len(f.Geometry)-1] {
			ridges = append(ridges, f)
		}
	}
	if len(ridges) == 0 {
		return model.RoofPatternDetection{}, false
	}
	hips := len(model.FeaturesOfType(s.features, model.FeatureHip))

	maxAngle := d.opts.RidgeAngleTolerance * math.Pi / 180
	maxOffset := d.opts.RidgeOffsetFraction * s.box.Width()
	aligned := 0
	splits := make([]model.SplitLine, 0, len(ridges))
	for _, r := range ridges {
		a, b := r.Geometry[0], r.Geometry[len(r.Geometry)-1]
		dir := b.Sub(a)
		cos := math.Abs(dir[0]*s.box.Axis[0]+dir[1]*s.box.Axis[1]) / math.Hypot(dir[0], dir[1])
		angle := math.Acos(math.Min(1, cos))
		mid := a.Add(b).Scale(0.5).Sub(s.box.Center)
		offset := math.Abs(mid[0]*s.box.Axis[1] - mid[1]*s.box.Axis[0])
		if angle <= maxAngle && offset <= maxOffset {
			aligned++
		}
		if line, ok := geometry.ExtendToBoundary(s.ring, a, b); ok {
			splits = append(splits, line)
		} else {
			splits = append(splits, model.SplitLine{Start: a, End: b})
		}
	}

	conf := 0.7
	if aligned == len(ridges) {
		conf = 0.9
	}
	pattern, kind := model.PatternGable, "Gable"
	if hips > 0 {
		pattern, kind = model.PatternHip, "Hip"
	}
	desc := fmt.Sprintf("%s roof: %d ridge line(s), %d hip line(s); %d of %d ridges run along the main axis",
		kind, len(ridges), hips, aligned, len(ridges))
	return model.RoofPatternDetection{
		Pattern:         pattern,
		Confidence:      conf,
		SuggestedSplits: splits,
		Description:     desc,
	}, true
}

// symmetryRule mirrors the outline across each oriented box axis. Plain
// quadrilaterals are left to the rectangular rule.
func (d *Detector) symmetryRule(s shape) (model.RoofPatternDetection, bool) {
	if len(s.ring) <= 4 {
		return model.RoofPatternDetection{}, false
	}
	tol := d.opts.SymmetryTolerance * s.box.Diagonal()
	if tol <= 0 {
		return model.RoofPatternDetection{}, false
	}

	type axis struct {
		name string
		dir  model.Point2D
		half float64
	}
	axes := []axis{
		{"long", s.box.Axis, s.box.HalfLength},
		{"short", s.box.Normal(), s.box.HalfWidth},
	}
	bestDev, bestIdx := math.Inf(1), -1
	for i, ax := range axes {
		dev := mirrorDeviation(s.ring, s.box.Center, ax.dir)
		if dev <= tol && dev < bestDev {
			bestDev, bestIdx = dev, i
		}
	}
	if bestIdx < 0 {
		return model.RoofPatternDetection{}, false
	}

	ax := axes[bestIdx]
	reach := ax.dir.Scale(ax.half)
	split, ok := geometry.BoundarySpan(s.ring, s.box.Center.Sub(reach), s.box.Center.Add(reach))
	if !ok {
		return model.RoofPatternDetection{}, false
	}
	conf := 0.5 + 0.45*(1-bestDev/tol)
	return model.RoofPatternDetection{
		Pattern:         model.PatternSymmetric,
		Confidence:      conf,
		SuggestedSplits: []model.SplitLine{split},
		Description: fmt.Sprintf("Outline mirrors across its %s axis (max deviation %.1f%% of diagonal)",
			ax.name, 100*bestDev/s.box.Diagonal()),
	}, true
}

// mirrorDeviation returns the worst distance between a reflected vertex and
// its nearest original vertex.
func mirrorDeviation(ring model.Polygon, origin, dir model.Point2D) float64 {
	worst := 0.0
	for _, pt := range ring {
		m := geometry.Reflect(pt, origin, dir)
		nearest := math.Inf(1)
		for _, q := range ring {
			nearest = math.Min(nearest, m.DistanceTo(q))
		}
		worst = math.Max(worst, nearest)
	}
	return worst
}

// lShapeRule recognises six right-angle corners with exactly one reflex
// vertex. The splits extend the two edges meeting at the reflex corner
// across the outline, shorter cut first.
func (d *Detector) lShapeRule(s shape) (model.RoofPatternDetection, bool) {
	if len(s.ring) != 6 {
		return model.RoofPatternDetection{}, false
	}
	tol := d.opts.RightAngleTolerance * math.Pi / 180
	reflex := -1
	for i, a := range geometry.InteriorAngles(s.ring) {
		switch {
		case math.Abs(a-math.Pi/2) <= tol:
		case math.Abs(a-3*math.Pi/2) <= tol:
			if reflex >= 0 {
				return model.RoofPatternDetection{}, false
			}
			reflex = i
		default:
			return model.RoofPatternDetection{}, false
		}
	}
	if reflex < 0 {
		return model.RoofPatternDetection{}, false
	}

	n := len(s.ring)
	r := s.ring[reflex]
	prev, next := s.ring[(reflex+n-1)%n], s.ring[(reflex+1)%n]
	var splits []model.SplitLine
	for _, dir := range []model.Point2D{r.Sub(prev), r.Sub(next)} {
		if hit, ok := geometry.CastRay(s.ring, r, dir); ok {
			splits = append(splits, model.SplitLine{Start: r, End: hit})
		}
	}
	if len(splits) == 0 {
		return model.RoofPatternDetection{}, false
	}
	sort.SliceStable(splits, func(i, j int) bool {
		return splits[i].Length() < splits[j].Length()
	})
	return model.RoofPatternDetection{
		Pattern:         model.PatternLShape,
		Confidence:      0.8,
		SuggestedSplits: splits,
		Description:     "L-shaped outline: two rectangular wings meet at one inside corner",
	}, true
}

// rectangularRule treats small, compact outlines as a single gable.
func (d *Detector) rectangularRule(s shape) (model.RoofPatternDetection, bool) {
	if len(s.ring) > 4 || s.box.Aspect() > d.opts.MaxGableAspect {
		return model.RoofPatternDetection{}, false
	}
	return model.RoofPatternDetection{
		Pattern:     model.PatternGable,
		Confidence:  0.85,
		Description: fmt.Sprintf("Simple %d-sided outline (aspect %.1f:1); one gable covers it", len(s.ring), s.box.Aspect()),
	}, true
}
