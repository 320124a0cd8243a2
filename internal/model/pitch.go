package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PitchEntry maps a pitch designation to its roof-area multiplier.
type PitchEntry struct {
	Label      string  `json:"pitch"`
	Rise       int     `json:"rise"` // inches of rise per 12 inches of run
	Multiplier float64 `json:"multiplier"`
}

// PitchFlat is the label of the zero-rise entry.
const PitchFlat = "flat"

// pitchTable is ordered from flat to 12/12. Reports and estimates key off
// these exact multipliers.
var pitchTable = []PitchEntry{
	{Label: PitchFlat, Rise: 0, Multiplier: 1.0000},
	{Label: "1/12", Rise: 1, Multiplier: 1.0035},
	{Label: "2/12", Rise: 2, Multiplier: 1.0138},
	{Label: "3/12", Rise: 3, Multiplier: 1.0308},
	{Label: "4/12", Rise: 4, Multiplier: 1.0541},
	{Label: "5/12", Rise: 5, Multiplier: 1.0833},
	{Label: "6/12", Rise: 6, Multiplier: 1.1180},
	{Label: "7/12", Rise: 7, Multiplier: 1.1577},
	{Label: "8/12", Rise: 8, Multiplier: 1.2019},
	{Label: "9/12", Rise: 9, Multiplier: 1.2500},
	{Label: "10/12", Rise: 10, Multiplier: 1.3017},
	{Label: "11/12", Rise: 11, Multiplier: 1.3566},
	{Label: "12/12", Rise: 12, Multiplier: 1.4142},
}

// PitchTable returns a copy of the canonical pitch table in table order.
func PitchTable() []PitchEntry {
	cp := make([]PitchEntry, len(pitchTable))
	copy(cp, pitchTable)
	return cp
}

// PitchLabels returns the pitch labels in table order for UI dropdowns.
func PitchLabels() []string {
	labels := make([]string, len(pitchTable))
	for i, e := range pitchTable {
		labels[i] = e.Label
	}
	return labels
}

// MultiplierFor returns the exact table multiplier for a pitch label.
// Unknown labels fail with ErrUnknownPitchLabel; callers that want a
// best-effort answer should use NearestPitch deliberately.
func MultiplierFor(label string) (float64, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	for _, e := range pitchTable {
		if e.Label == key {
			return e.Multiplier, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPitchLabel, label)
}

const nearestTieEpsilon = 1e-12

// NearestPitch returns the table label whose multiplier is closest to the
// given factor. Ties, within float rounding of the table values, go to the
// first entry in table order.
func NearestPitch(multiplier float64) (string, error) {
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		return "", fmt.Errorf("%w: multiplier is not finite", ErrInvalidMeasurement)
	}
	best := pitchTable[0]
	bestDiff := math.Abs(multiplier - best.Multiplier)
	for _, e := range pitchTable[1:] {
		if d := math.Abs(multiplier - e.Multiplier); d < bestDiff-nearestTieEpsilon {
			best, bestDiff = e, d
		}
	}
	return best.Label, nil
}

// PitchRise returns the rise (0..12) for a table label.
func PitchRise(label string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	for _, e := range pitchTable {
		if e.Label == key {
			return e.Rise, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPitchLabel, label)
}

// LabelForRise returns the table label for a rise in inches per foot.
func LabelForRise(rise int) (string, error) {
	if rise < 0 || rise >= len(pitchTable) {
		return "", fmt.Errorf("%w: rise %s/12", ErrUnknownPitchLabel, strconv.Itoa(rise))
	}
	return pitchTable[rise].Label, nil
}

// RoofArea converts a plan (footprint) area to sloped roof area.
func RoofArea(planArea float64, pitch string) (float64, error) {
	if err := checkMeasurement("plan area", planArea); err != nil {
		return 0, err
	}
	m, err := MultiplierFor(pitch)
	if err != nil {
		return 0, err
	}
	return planArea * m, nil
}

// TotalWithWaste adds a waste allowance, e.g. 12 for 12%.
func TotalWithWaste(roofArea, wastePercent float64) (float64, error) {
	if err := checkMeasurement("roof area", roofArea); err != nil {
		return 0, err
	}
	if err := checkMeasurement("waste percent", wastePercent); err != nil {
		return 0, err
	}
	return roofArea * (1.0 + wastePercent/100.0), nil
}

// sqFtPerSquare is one roofing square.
const sqFtPerSquare = 100.0

// Squares converts square feet to roofing squares.
func Squares(totalArea float64) (float64, error) {
	if err := checkMeasurement("total area", totalArea); err != nil {
		return 0, err
	}
	return totalArea / sqFtPerSquare, nil
}

// Takeoff holds the area chain from plan area to ordered squares.
type Takeoff struct {
	PlanArea     float64 `json:"plan_area"`     // sq ft
	Pitch        string  `json:"pitch"`         // table label
	Multiplier   float64 `json:"multiplier"`    // pitch multiplier applied
	RoofArea     float64 `json:"roof_area"`     // sq ft, pitch adjusted
	WastePercent float64 `json:"waste_percent"` // e.g. 12 for 12%
	TotalArea    float64 `json:"total_area"`    // sq ft including waste
	Squares      float64 `json:"squares"`       // TotalArea / 100
}

// CalculateTakeoff runs plan area through the pitch and waste model.
func CalculateTakeoff(planArea float64, pitch string, wastePercent float64) (Takeoff, error) {
	m, err := MultiplierFor(pitch)
	if err != nil {
		return Takeoff{}, err
	}
	roof, err := RoofArea(planArea, pitch)
	if err != nil {
		return Takeoff{}, err
	}
	total, err := TotalWithWaste(roof, wastePercent)
	if err != nil {
		return Takeoff{}, err
	}
	sq, err := Squares(total)
	if err != nil {
		return Takeoff{}, err
	}
	return Takeoff{
		PlanArea:     planArea,
		Pitch:        strings.ToLower(strings.TrimSpace(pitch)),
		Multiplier:   m,
		RoofArea:     roof,
		WastePercent: wastePercent,
		TotalArea:    total,
		Squares:      sq,
	}, nil
}
