package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/rooftakeoff/internal/geometry"
	"github.com/piwi3910/rooftakeoff/internal/model"
)

// ErrUnknownFacet is returned when a facet id is not in the workspace.
var ErrUnknownFacet = errors.New("unknown facet")

// Workspace holds the facet list of one roof and its undo history. All
// facets crossing the API are deep copies. A Workspace is not safe for
// concurrent use.
type Workspace struct {
	facets      []model.Facet
	history     *model.History
	feetPerUnit float64
	created     int
}

// NewWorkspace starts a workspace with the outline as facet-0. feetPerUnit
// converts planar units to feet; use 1 for outlines already in feet.
func NewWorkspace(outline model.Polygon, feetPerUnit float64) (*Workspace, error) {
	ring := outline.Normalize()
	if len(ring) < 3 {
		return nil, model.ErrDegeneratePolygon
	}
	if feetPerUnit <= 0 {
		return nil, fmt.Errorf("%w: feet per unit must be positive", model.ErrInvalidMeasurement)
	}
	root := model.NewRootFacet(ring, geometry.AreaSqFt(ring, feetPerUnit))
	return &Workspace{
		facets:      []model.Facet{root},
		history:     model.NewHistory(),
		feetPerUnit: feetPerUnit,
		created:     1,
	}, nil
}

// WorkspaceFromMeasurement starts a workspace on a measured outline.
func WorkspaceFromMeasurement(m Measurement) (*Workspace, error) {
	return NewWorkspace(m.Outline, m.FeetPerPixel)
}

// Facets returns a copy of the current facets.
func (w *Workspace) Facets() []model.Facet {
	return model.CopyFacets(w.facets)
}

// Facet returns a copy of the facet with id.
func (w *Workspace) Facet(id string) (model.Facet, bool) {
	i := model.FindFacet(w.facets, id)
	if i < 0 {
		return model.Facet{}, false
	}
	return w.facets[i].Clone(), true
}

// FeetPerUnit returns the planar scale.
func (w *Workspace) FeetPerUnit() float64 { return w.feetPerUnit }

// TotalPlanArea sums facet plan areas in square feet.
func (w *Workspace) TotalPlanArea() float64 {
	return model.TotalFacetArea(w.facets)
}

// TotalRoofArea sums pitch-adjusted facet areas. Facets without their own
// pitch use defaultPitch.
func (w *Workspace) TotalRoofArea(defaultPitch string) (float64, error) {
	var total float64
	for _, f := range w.facets {
		a, err := f.RoofArea(defaultPitch)
		if err != nil {
			return 0, fmt.Errorf("facet %s: %w", f.ID, err)
		}
		total += a
	}
	return total, nil
}

// SplitFacet cuts the facet with id along line. On success the parent is
// replaced in place by the two children, which inherit its pitch and
// direction, and the previous state is pushed onto the undo stack. On
// failure the workspace is unchanged.
func (w *Workspace) SplitFacet(id string, line model.SplitLine) ([2]model.Facet, error) {
	i := model.FindFacet(w.facets, id)
	if i < 0 {
		return [2]model.Facet{}, fmt.Errorf("%w: %s", ErrUnknownFacet, id)
	}
	children, err := SplitFacet(w.facets[i], line, w.feetPerUnit, w.created)
	if err != nil {
		return [2]model.Facet{}, err
	}
	w.created += 2

	w.history.Push(model.MakeFacetSet(w.facets, "Split "+id))
	next := make([]model.Facet, 0, len(w.facets)+1)
	next = append(next, w.facets[:i]...)
	next = append(next, children[0], children[1])
	next = append(next, w.facets[i+1:]...)
	w.facets = next
	return [2]model.Facet{children[0].Clone(), children[1].Clone()}, nil
}

// SetFacetPitch assigns a table pitch to one facet. It is undoable.
func (w *Workspace) SetFacetPitch(id, pitch string) error {
	i := model.FindFacet(w.facets, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownFacet, id)
	}
	updated, err := w.facets[i].WithPitch(pitch)
	if err != nil {
		return err
	}
	w.history.Push(model.MakeFacetSet(w.facets, "Set pitch "+id))
	w.facets = model.CopyFacets(w.facets)
	w.facets[i] = updated
	return nil
}

// ApplySuggestion splits the facet with id along the n-th suggested line of
// a detection.
func (w *Workspace) ApplySuggestion(id string, det model.RoofPatternDetection, n int) ([2]model.Facet, error) {
	if n < 0 || n >= len(det.SuggestedSplits) {
		return [2]model.Facet{}, fmt.Errorf("suggestion %d out of range (have %d)", n, len(det.SuggestedSplits))
	}
	return w.SplitFacet(id, det.SuggestedSplits[n])
}

// ApplyDetection applies suggestions in order to facet-0 and then to
// whichever child each next line divides, skipping lines no facet accepts.
// It returns the number of splits applied.
func (w *Workspace) ApplyDetection(det model.RoofPatternDetection) int {
	applied := 0
	for _, line := range det.SuggestedSplits {
		for _, f := range w.facets {
			if _, err := w.SplitFacet(f.ID, line); err == nil {
				applied++
				break
			}
		}
	}
	return applied
}

// Undo restores the previous facet list. It returns false when there is
// nothing to undo.
func (w *Workspace) Undo() bool {
	prev, ok := w.history.Undo(model.MakeFacetSet(w.facets, ""))
	if !ok {
		return false
	}
	w.facets = prev.Facets
	return true
}

// Redo re-applies the last undone change.
func (w *Workspace) Redo() bool {
	next, ok := w.history.Redo(model.MakeFacetSet(w.facets, ""))
	if !ok {
		return false
	}
	w.facets = next.Facets
	return true
}

// SplitFacet cuts parent along line and returns the two re-measured
// children. They inherit the parent's pitch and direction and take palette
// colors index and index+1. parent is not modified.
func SplitFacet(parent model.Facet, line model.SplitLine, feetPerUnit float64, index int) ([2]model.Facet, error) {
	if feetPerUnit <= 0 {
		return [2]model.Facet{}, fmt.Errorf("%w: feet per unit must be positive", model.ErrInvalidMeasurement)
	}
	res, err := geometry.Split(parent.Points, line)
	if err != nil {
		var se *model.SplitError
		if errors.As(err, &se) {
			Logger().Debug("split rejected", "facet", parent.ID, "crossings", se.Crossings, "reason", se.Reason)
		}
		return [2]model.Facet{}, err
	}

	var children [2]model.Facet
	for k, pts := range []model.Polygon{res.Facet1, res.Facet2} {
		c := model.NewFacet(pts, geometry.AreaSqFt(pts, feetPerUnit), index+k)
		c.Pitch = parent.Pitch
		c.Direction = parent.Direction
		children[k] = c
	}
	return children, nil
}

// CanUndo reports whether Undo would change anything.
func (w *Workspace) CanUndo() bool { return w.history.CanUndo() }

// CanRedo reports whether Redo would change anything.
func (w *Workspace) CanRedo() bool { return w.history.CanRedo() }
