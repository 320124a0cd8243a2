package model

const defaultMaxDepth = 50

// FacetSet captures the facet list at a point in time. Facets are deep
// copies and never alias caller-owned slices.
type FacetSet struct {
	Facets []Facet `json:"facets"`
	Label  string  `json:"label"` // Human-readable description (e.g. "Split facet-0")
}

// MakeFacetSet creates a snapshot from the current facets with a label.
func MakeFacetSet(facets []Facet, label string) FacetSet {
	return FacetSet{
		Facets: CopyFacets(facets),
		Label:  label,
	}
}

// History manages undo/redo stacks of facet-set snapshots. It is owned by
// the caller; the geometry engine never holds a reference to it.
type History struct {
	undoStack []FacetSet
	redoStack []FacetSet
	maxDepth  int
}

// NewHistory creates a History with the default max depth of 50.
func NewHistory() *History {
	return &History{
		maxDepth: defaultMaxDepth,
	}
}

// Push saves a snapshot onto the undo stack and clears the redo stack.
// This should be called before the modification is applied.
func (h *History) Push(s FacetSet) {
	h.pushUndo(MakeFacetSet(s.Facets, s.Label))
	h.redoStack = nil
}

func (h *History) pushUndo(s FacetSet) {
	h.undoStack = append(h.undoStack, s)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[len(h.undoStack)-h.maxDepth:]
	}
}

// Undo pops the most recent snapshot from the undo stack and pushes
// the current state onto the redo stack. Returns the snapshot to restore
// and true, or an empty snapshot and false if nothing to undo.
func (h *History) Undo(current FacetSet) (FacetSet, bool) {
	if len(h.undoStack) == 0 {
		return FacetSet{}, false
	}
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, MakeFacetSet(current.Facets, current.Label))
	return MakeFacetSet(last.Facets, last.Label), true
}

// Redo pops the most recent snapshot from the redo stack and pushes
// the current state onto the undo stack.
func (h *History) Redo(current FacetSet) (FacetSet, bool) {
	if len(h.redoStack) == 0 {
		return FacetSet{}, false
	}
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.pushUndo(MakeFacetSet(current.Facets, current.Label))
	return MakeFacetSet(last.Facets, last.Label), true
}

// CanUndo returns true if there is at least one snapshot to undo.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if there is at least one snapshot to redo.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// Depth returns the number of undoable snapshots.
func (h *History) Depth() int {
	return len(h.undoStack)
}

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}
