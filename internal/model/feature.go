package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LinearFeatureType classifies a roof line.
type LinearFeatureType string

const (
	FeatureRidge  LinearFeatureType = "ridge"
	FeatureHip    LinearFeatureType = "hip"
	FeatureValley LinearFeatureType = "valley"
	FeatureEave   LinearFeatureType = "eave"
	FeatureRake   LinearFeatureType = "rake"
	FeatureStep   LinearFeatureType = "step"
)

// LinearFeatureTypes lists every feature type in report order.
var LinearFeatureTypes = []LinearFeatureType{
	FeatureRidge, FeatureHip, FeatureValley, FeatureEave, FeatureRake, FeatureStep,
}

func (t LinearFeatureType) String() string { return string(t) }

// ParseLinearFeatureType accepts the canonical names plus plurals and a few
// field spellings such as "step flashing".
func ParseLinearFeatureType(s string) (LinearFeatureType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ridge", "ridges":
		return FeatureRidge, true
	case "hip", "hips":
		return FeatureHip, true
	case "valley", "valleys":
		return FeatureValley, true
	case "eave", "eaves":
		return FeatureEave, true
	case "rake", "rakes", "gable":
		return FeatureRake, true
	case "step", "steps", "step flashing", "step_flashing", "wall":
		return FeatureStep, true
	default:
		return "", false
	}
}

// UnmarshalJSON rejects unknown feature types at the boundary.
func (t *LinearFeatureType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseLinearFeatureType(s)
	if !ok {
		return fmt.Errorf("unknown linear feature type %q", s)
	}
	*t = parsed
	return nil
}

// Polyline is an open sequence of planar points.
type Polyline []Point2D

// Length returns the summed segment length in polyline units.
func (p Polyline) Length() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += p[i-1].DistanceTo(p[i])
	}
	return total
}

// LinearFeature is a ridge, hip, valley, eave, rake or step-flashing line in
// the same planar frame as the building polygon.
type LinearFeature struct {
	Type     LinearFeatureType `json:"type"`
	Geometry Polyline          `json:"geometry"`
	LengthFt float64           `json:"length_ft"`
}

// GeoLinearFeature is a linear feature digitized in lng/lat.
type GeoLinearFeature struct {
	Type     LinearFeatureType `json:"type"`
	Geometry []GeoPoint        `json:"geometry"`
	LengthFt float64           `json:"length_ft"` // 0 means derive from geometry
}

// LinearFeatureTotals sums feature lengths by type, in feet.
type LinearFeatureTotals struct {
	Ridge  float64 `json:"ridge"`
	Hip    float64 `json:"hip"`
	Valley float64 `json:"valley"`
	Eave   float64 `json:"eave"`
	Rake   float64 `json:"rake"`
	Step   float64 `json:"step"`
}

// Add accumulates ft onto the total for t. Unknown types are ignored.
func (lt *LinearFeatureTotals) Add(t LinearFeatureType, ft float64) {
	switch t {
	case FeatureRidge:
		lt.Ridge += ft
	case FeatureHip:
		lt.Hip += ft
	case FeatureValley:
		lt.Valley += ft
	case FeatureEave:
		lt.Eave += ft
	case FeatureRake:
		lt.Rake += ft
	case FeatureStep:
		lt.Step += ft
	}
}

// Get returns the total for t.
func (lt LinearFeatureTotals) Get(t LinearFeatureType) float64 {
	switch t {
	case FeatureRidge:
		return lt.Ridge
	case FeatureHip:
		return lt.Hip
	case FeatureValley:
		return lt.Valley
	case FeatureEave:
		return lt.Eave
	case FeatureRake:
		return lt.Rake
	case FeatureStep:
		return lt.Step
	}
	return 0
}

// Perimeter returns eave + rake, the drip-edge run.
func (lt LinearFeatureTotals) Perimeter() float64 {
	return lt.Eave + lt.Rake
}

// Validate rejects negative or non-finite totals.
func (lt LinearFeatureTotals) Validate() error {
	for _, t := range LinearFeatureTypes {
		if err := checkMeasurement(string(t)+" length", lt.Get(t)); err != nil {
			return err
		}
	}
	return nil
}

// TotalsFromFeatures sums LengthFt per feature type.
func TotalsFromFeatures(features []LinearFeature) LinearFeatureTotals {
	var totals LinearFeatureTotals
	for _, f := range features {
		totals.Add(f.Type, f.LengthFt)
	}
	return totals
}

// FeaturesOfType filters features by type, preserving order.
func FeaturesOfType(features []LinearFeature, t LinearFeatureType) []LinearFeature {
	var out []LinearFeature
	for _, f := range features {
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}
