// Package export writes takeoff results for downstream report code: an
// XLSX workbook for estimators and GeoJSON/WKT facet geometry for storage.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/rooftakeoff/internal/engine"
	"github.com/piwi3910/rooftakeoff/internal/model"
)

// Sheet names in the takeoff workbook.
const (
	SheetSummary   = "Summary"
	SheetFacets    = "Facets"
	SheetMaterials = "Materials"
)

type materialLine struct {
	item  string
	qty   int
	unit  string
	basis string
}

func materialLines(m engine.Measurement) []materialLine {
	t, q := m.Totals, m.Materials
	return []materialLine{
		{"Shingles", q.ShingleBundles, "bundle", fmt.Sprintf("%.2f squares x %g", m.Takeoff.Squares, model.BundlesPerSquare)},
		{"Ridge cap", q.RidgeCapBundles, "bundle", fmt.Sprintf("%.1f ft ridge + hip / %g", t.Ridge+t.Hip, model.RidgeCapFtPerBundle)},
		{"Valley liner", q.ValleyRolls, "roll", fmt.Sprintf("%.1f ft valley / %g", t.Valley, model.ValleyFtPerRoll)},
		{"Drip edge", q.DripEdgeSticks, "stick", fmt.Sprintf("%.1f ft eave + rake / %g", t.Perimeter(), model.DripEdgeFtPerStick)},
		{"Starter strip", q.StarterBundles, "bundle", fmt.Sprintf("%.1f ft eave + rake / %g", t.Perimeter(), model.StarterFtPerBundle)},
		{"Step flashing", q.StepFlashingPieces, "piece", fmt.Sprintf("%.1f ft wall / %g", t.Step, model.StepFlashingFtPerPiece)},
	}
}

// TakeoffWorkbook builds the takeoff workbook. facets overrides the
// measurement's own facets when non-nil, e.g. after splitting; facets
// without a pitch use the takeoff pitch. The caller must Close the file.
func TakeoffWorkbook(m engine.Measurement, facets []model.Facet) (*excelize.File, error) {
	if facets == nil {
		facets = m.Facets
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetFacets, SheetMaterials} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	w := &sheetWriter{f: f}
	tk := m.Takeoff

	w.sheet = SheetSummary
	w.header(bold, "Item", "Value", "Unit")
	w.row("Plan area", round2(tk.PlanArea), "sq ft")
	w.row("Perimeter", round2(m.PerimeterFt), "ft")
	w.row("Pitch", tk.Pitch, "")
	w.row("Pitch multiplier", tk.Multiplier, "")
	w.row("Roof area", round2(tk.RoofArea), "sq ft")
	w.row("Waste", tk.WastePercent, "%")
	w.row("Total area", round2(tk.TotalArea), "sq ft")
	w.row("Squares", round2(tk.Squares), "sq")
	for _, ft := range model.LinearFeatureTypes {
		w.row(fmt.Sprintf("%s length", ft), round2(m.Totals.Get(ft)), "ft")
	}
	w.widths("A", "C", 20)

	w.sheet = SheetFacets
	w.header(bold, "Facet", "Color", "Pitch", "Plan area (sq ft)", "Roof area (sq ft)", "Vertices")
	for _, fc := range facets {
		pitch := fc.Pitch
		if pitch == "" {
			pitch = tk.Pitch
		}
		roof, err := fc.RoofArea(pitch)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("facet %s: %w", fc.ID, err)
		}
		w.row(fc.ID, fc.Color, pitch, round2(fc.Area), round2(roof), len(fc.Points))
	}
	w.widths("A", "F", 18)

	w.sheet = SheetMaterials
	w.header(bold, "Item", "Quantity", "Unit", "Basis")
	for _, ml := range materialLines(m) {
		w.row(ml.item, ml.qty, ml.unit, ml.basis)
	}
	w.widths("A", "C", 16)
	w.widths("D", "D", 36)

	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// ExportTakeoffXLSX writes the takeoff workbook to path.
func ExportTakeoffXLSX(path string, m engine.Measurement, facets []model.Facet) error {
	f, err := TakeoffWorkbook(m, facets)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteTakeoffXLSX streams the takeoff workbook to w.
func WriteTakeoffXLSX(w io.Writer, m engine.Measurement, facets []model.Facet) error {
	f, err := TakeoffWorkbook(m, facets)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// sheetWriter appends rows to the current sheet and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	rows  map[string]int
	err   error
}

func (w *sheetWriter) next() int {
	if w.rows == nil {
		w.rows = map[string]int{}
	}
	w.rows[w.sheet]++
	return w.rows[w.sheet]
}

func (w *sheetWriter) row(values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.next())
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(w.sheet, cell, &values)
}

func (w *sheetWriter) header(style int, names ...string) {
	values := make([]interface{}, len(names))
	for i, n := range names {
		values[i] = n
	}
	w.row(values...)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(names), w.rows[w.sheet])
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, "A1", last, style)
}

func (w *sheetWriter) widths(from, to string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(w.sheet, from, to, width)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
