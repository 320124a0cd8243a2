package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/rooftakeoff/internal/model"
)

func TestExtendToBoundary(t *testing.T) {
	rect := model.Polygon{model.Pt(0, 0), model.Pt(200, 0), model.Pt(200, 100), model.Pt(0, 100)}
	line, ok := ExtendToBoundary(rect, model.Pt(20, 50), model.Pt(180, 50))
	require.True(t, ok)
	assert.InDelta(t, 0.0, line.Start.X(), 1e-9)
	assert.InDelta(t, 200.0, line.End.X(), 1e-9)
	assert.InDelta(t, 50.0, line.Start.Y(), 1e-9)

	_, ok = ExtendToBoundary(rect, model.Pt(5, 5), model.Pt(5, 5))
	assert.False(t, ok)
}

func TestExtendToBoundary_NearestCrossingsInConcave(t *testing.T) {
	// Horizontal line through the U's arms stops at the notch walls.
	line, ok := ExtendToBoundary(uShape(), model.Pt(5, 45), model.Pt(25, 45))
	require.True(t, ok)
	assert.InDelta(t, 0.0, line.Start.X(), 1e-9)
	assert.InDelta(t, 30.0, line.End.X(), 1e-9)
}

func TestBoundarySpan(t *testing.T) {
	// The U's center sits on the notch floor, so only the outer crossings
	// give a chord.
	line, ok := BoundarySpan(uShape(), model.Pt(45, -10), model.Pt(45, 70))
	require.True(t, ok)
	assert.InDelta(t, 45.0, line.Start.X(), 1e-9)
	assert.InDelta(t, 0.0, line.Start.Y(), 1e-9)
	assert.InDelta(t, 45.0, line.End.X(), 1e-9)
	assert.InDelta(t, 30.0, line.End.Y(), 1e-9)

	_, ok = BoundarySpan(uShape(), model.Pt(200, 0), model.Pt(200, 10))
	assert.False(t, ok)
}

func TestCastRay(t *testing.T) {
	hit, ok := CastRay(lShape(), model.Pt(50, 50), model.Pt(-1, 0))
	require.True(t, ok)
	assert.InDelta(t, 0.0, hit.X(), 1e-9)
	assert.InDelta(t, 50.0, hit.Y(), 1e-9)

	_, ok = CastRay(lShape(), model.Pt(200, 200), model.Pt(1, 1))
	assert.False(t, ok)
}

func TestLineHits_MergesVertexHits(t *testing.T) {
	hits := LineHits(square100(), model.Pt(-10, -10), model.Pt(1, 1))
	require.Len(t, hits, 2)
	assert.InDelta(t, 10.0, hits[0], 1e-9)
	assert.InDelta(t, 110.0, hits[1], 1e-9)
}
