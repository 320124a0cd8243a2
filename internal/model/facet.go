package model

import (
	"fmt"

	"github.com/google/uuid"
)

// FacetColors is the fixed facet palette, indexed by facet count.
var FacetColors = []string{
	"#4CAF50", // green
	"#2196F3", // blue
	"#FF9800", // orange
	"#9C27B0", // purple
	"#00BCD4", // cyan
	"#F44336", // red
	"#FFEB3B", // yellow
	"#795548", // brown
}

// FacetColor returns the palette color for the n-th facet.
func FacetColor(n int) string {
	if n < 0 {
		n = -n
	}
	return FacetColors[n%len(FacetColors)]
}

// RootFacetID is the id of the facet created from the building outline.
const RootFacetID = "facet-0"

// Facet is one planar roof segment. Area is derived from Points and is
// always recomputed when a facet is created; facets are never mutated in
// place.
type Facet struct {
	ID        string  `json:"id"`
	Points    Polygon `json:"points"`
	Area      float64 `json:"area"` // sq ft
	Color     string  `json:"color"`
	Pitch     string  `json:"pitch,omitempty"`
	Direction string  `json:"direction,omitempty"`
}

// NewFacet creates a facet with a fresh id and the palette color for index.
func NewFacet(points Polygon, areaSqFt float64, index int) Facet {
	return Facet{
		ID:     "facet-" + uuid.New().String()[:8],
		Points: points.Clone(),
		Area:   areaSqFt,
		Color:  FacetColor(index),
	}
}

// NewRootFacet creates facet-0 from the building outline.
func NewRootFacet(points Polygon, areaSqFt float64) Facet {
	f := NewFacet(points, areaSqFt, 0)
	f.ID = RootFacetID
	return f
}

// Clone returns a deep copy of the facet.
func (f Facet) Clone() Facet {
	f.Points = f.Points.Clone()
	return f
}

// WithPitch returns a copy of the facet with the given table pitch.
func (f Facet) WithPitch(label string) (Facet, error) {
	if _, err := MultiplierFor(label); err != nil {
		return Facet{}, fmt.Errorf("facet %s: %w", f.ID, err)
	}
	cp := f.Clone()
	cp.Pitch = label
	return cp, nil
}

// RoofArea returns the facet's pitch-adjusted area, falling back to
// defaultPitch when the facet has no pitch of its own.
func (f Facet) RoofArea(defaultPitch string) (float64, error) {
	pitch := f.Pitch
	if pitch == "" {
		pitch = defaultPitch
	}
	return RoofArea(f.Area, pitch)
}

// CopyFacets returns a deep copy of a facet slice.
func CopyFacets(facets []Facet) []Facet {
	if facets == nil {
		return nil
	}
	cp := make([]Facet, len(facets))
	for i, f := range facets {
		cp[i] = f.Clone()
	}
	return cp
}

// TotalFacetArea sums the plan area of all facets.
func TotalFacetArea(facets []Facet) float64 {
	var total float64
	for _, f := range facets {
		total += f.Area
	}
	return total
}

// FindFacet returns the index of the facet with id, or -1.
func FindFacet(facets []Facet, id string) int {
	for i := range facets {
		if facets[i].ID == id {
			return i
		}
	}
	return -1
}
