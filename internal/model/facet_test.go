package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacetColor_Cycles(t *testing.T) {
	assert.Equal(t, FacetColors[0], FacetColor(0))
	assert.Equal(t, FacetColors[1], FacetColor(1))
	assert.Equal(t, FacetColors[0], FacetColor(len(FacetColors)))
	assert.Equal(t, FacetColors[3], FacetColor(-3))
}

func TestNewFacet(t *testing.T) {
	pts := Polygon{Pt(0, 0), Pt(1, 0), Pt(1, 1)}
	f := NewFacet(pts, 0.5, 2)
	assert.True(t, strings.HasPrefix(f.ID, "facet-"))
	assert.Len(t, f.ID, len("facet-")+8)
	assert.Equal(t, FacetColors[2], f.Color)

	pts[0] = Pt(5, 5)
	assert.Equal(t, Pt(0, 0), f.Points[0], "facet owns its points")

	other := NewFacet(pts, 0.5, 2)
	assert.NotEqual(t, f.ID, other.ID)

	root := NewRootFacet(pts, 1)
	assert.Equal(t, RootFacetID, root.ID)
	assert.Equal(t, FacetColors[0], root.Color)
}

func TestFacetWithPitch(t *testing.T) {
	f := NewRootFacet(Polygon{Pt(0, 0), Pt(10, 0), Pt(10, 10)}, 1000)
	p, err := f.WithPitch("12/12")
	require.NoError(t, err)
	assert.Equal(t, "12/12", p.Pitch)
	assert.Empty(t, f.Pitch, "original untouched")

	_, err = f.WithPitch("13/12")
	assert.ErrorIs(t, err, ErrUnknownPitchLabel)

	area, err := p.RoofArea("6/12")
	require.NoError(t, err)
	assert.InDelta(t, 1414.2, area, 1e-9)

	area, err = f.RoofArea("6/12")
	require.NoError(t, err)
	assert.InDelta(t, 1118.0, area, 1e-9)
}

func TestFacetHelpers(t *testing.T) {
	facets := []Facet{
		{ID: "a", Area: 10, Points: Polygon{Pt(0, 0)}},
		{ID: "b", Area: 32.5},
	}
	assert.Equal(t, 42.5, TotalFacetArea(facets))
	assert.Equal(t, 1, FindFacet(facets, "b"))
	assert.Equal(t, -1, FindFacet(facets, "c"))

	cp := CopyFacets(facets)
	cp[0].Points[0] = Pt(1, 1)
	assert.Equal(t, Pt(0, 0), facets[0].Points[0])
	assert.Nil(t, CopyFacets(nil))
}
