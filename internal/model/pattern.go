package model

// RoofPattern is the heuristic classification of a building outline.
type RoofPattern string

const (
	PatternGable     RoofPattern = "gable"
	PatternHip       RoofPattern = "hip"
	PatternLShape    RoofPattern = "l-shape"
	PatternSymmetric RoofPattern = "symmetric"
	PatternComplex   RoofPattern = "complex"
)

func (p RoofPattern) String() string { return string(p) }

// RoofPatternDetection is the detector's output. SuggestedSplits are in the
// same frame as the polygon that was classified and can be passed straight
// to the splitter.
type RoofPatternDetection struct {
	Pattern         RoofPattern `json:"pattern"`
	Confidence      float64     `json:"confidence"` // 0..1
	SuggestedSplits []SplitLine `json:"suggested_splits"`
	Description     string      `json:"description"`
}
