package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/rooftakeoff/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Type,Length,Label\nridge,40,main\nhip,26,east\n", ','},
		{"semicolon", "Type;Length;Label\nridge;40;main\nhip;26;east\n", ';'},
		{"tab", "Type\tLength\tLabel\nridge\t40\tmain\nhip\t26\teast\n", '\t'},
		{"pipe", "Type|Length|Label\nridge|40|main\nhip|26|east\n", '|'},
	}
	for _, tc := range tests {
		if got := DetectCSVDelimiter([]byte(tc.data)); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Type", "Length", "Label"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Type != 0 || mapping.Length != 1 || mapping.Label != 2 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
}

func TestDetectColumns_AlternativeNamesReordered(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Notes", "LF", "Feature"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Label != 0 || mapping.Length != 1 || mapping.Type != 2 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"ridge", "40", "main"})
	if isHeader {
		t.Error("data row should not be detected as header")
	}
	if mapping.Type != 0 || mapping.Length != 1 || mapping.Label != 2 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Reader Import Tests ───────────────────────────────

func TestImportFeaturesCSVFromReader_WithHeaders(t *testing.T) {
	data := "Type,Length,Label\nridge,40,main ridge\nhips,26,\nvalley,12.5 ft,porch\neave,80'\n"
	result := ImportFeaturesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(result.Rows))
	}
	if result.Rows[0].Label != "main ridge" {
		t.Errorf("expected label 'main ridge', got %q", result.Rows[0].Label)
	}
	want := model.LinearFeatureTotals{Ridge: 40, Hip: 26, Valley: 12.5, Eave: 80}
	if result.Totals != want {
		t.Errorf("expected totals %+v, got %+v", want, result.Totals)
	}
}

func TestImportFeaturesCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportFeaturesCSVFromReader(strings.NewReader("ridge,20\nridge,20\nrake,35\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Totals.Ridge != 40 || result.Totals.Rake != 35 {
		t.Errorf("unexpected totals %+v", result.Totals)
	}
}

func TestImportFeaturesCSVFromReader_UnrecognizedHeaderSkipped(t *testing.T) {
	result := ImportFeaturesCSVFromReader(strings.NewReader("What,How much\nridge,40\n"), ',')
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d (errors: %v)", len(result.Rows), result.Errors)
	}
}

func TestImportFeaturesCSVFromReader_RowErrors(t *testing.T) {
	data := "Type,Length\nridge,forty\nhip,-3\n,12\nvalley,\neave,50\n"
	result := ImportFeaturesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 4 {
		t.Errorf("expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if len(result.Rows) != 1 || result.Totals.Eave != 50 {
		t.Errorf("expected only the eave row to survive, got %+v", result.Rows)
	}
}

func TestImportFeaturesCSVFromReader_NonFiniteLength(t *testing.T) {
	data := "type,length\nridge,NaN\nhip,Inf\nrake,-inf\nvalley,20\n"
	result := ImportFeaturesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	for _, e := range result.Errors {
		if !strings.Contains(e, "finite") {
			t.Errorf("expected a finiteness error, got %q", e)
		}
	}
	want := model.LinearFeatureTotals{Valley: 20}
	if result.Totals != want {
		t.Errorf("expected totals %+v, got %+v", want, result.Totals)
	}
}

func TestImportFeaturesCSVFromReader_UnknownTypeWarns(t *testing.T) {
	result := ImportFeaturesCSVFromReader(strings.NewReader("Type,Length\ngutter,40\nridge,10\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unknown types should warn, not fail: %v", result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "gutter") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected warning mentioning gutter, got %v", result.Warnings)
	}
	if len(result.Rows) != 1 {
		t.Errorf("expected 1 row, got %d", len(result.Rows))
	}
}

func TestImportFeaturesCSVFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportFeaturesCSVFromReader(strings.NewReader("Type,Label\nridge,main\n"), ',')
	if len(result.Errors) == 0 {
		t.Fatal("expected error for missing Length column")
	}
	if !strings.Contains(result.Errors[0], "Length") {
		t.Errorf("error should mention Length, got %q", result.Errors[0])
	}
}

func TestImportFeaturesCSVFromReader_EmptyAndBlankRows(t *testing.T) {
	result := ImportFeaturesCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}

	result = ImportFeaturesCSVFromReader(strings.NewReader("Type,Length\n,\nridge,5\n,\n"), ',')
	if len(result.Errors) > 0 || len(result.Rows) != 1 {
		t.Errorf("blank rows should be skipped: rows=%d errors=%v", len(result.Rows), result.Errors)
	}
}

// ─── CSV File Import Tests ──────────────────────────────────

func TestImportFeaturesCSV_SemicolonFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "features.csv")
	content := "Type;Length;Label\nridge;40;main\nstep flashing;18;chimney\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportFeaturesCSV(path)
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d (errors: %v)", len(result.Rows), result.Errors)
	}
	if result.Totals.Step != 18 {
		t.Errorf("expected step 18, got %f", result.Totals.Step)
	}

	hasSemicolonWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			hasSemicolonWarning = true
		}
	}
	if !hasSemicolonWarning {
		t.Error("expected warning about semicolon delimiter detection")
	}
}

func TestImportFeaturesCSV_FileErrors(t *testing.T) {
	if result := ImportFeaturesCSV("/nonexistent/path/file.csv"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}

	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if result := ImportFeaturesCSV(path); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "features.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportFeaturesExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Feature", "Length (ft)", "Location"},
		{"Ridge", 40, "main"},
		{"Hip", 26, "east"},
		{"Valley", 12.5, "porch"},
	})

	result := ImportFeaturesExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	want := model.LinearFeatureTotals{Ridge: 40, Hip: 26, Valley: 12.5}
	if result.Totals != want {
		t.Errorf("expected totals %+v, got %+v", want, result.Totals)
	}
	if result.Rows[1].Label != "east" {
		t.Errorf("expected label east, got %q", result.Rows[1].Label)
	}
}

func TestImportFeaturesExcel_FileNotFound(t *testing.T) {
	if result := ImportFeaturesExcel("/nonexistent/path/file.xlsx"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestParseLength(t *testing.T) {
	tests := map[string]float64{
		"40":      40,
		" 12.5 ":  12.5,
		"40 ft":   40,
		"33'":     33,
		"10 feet": 10,
		"7.25 LF": 7.25,
	}
	for in, want := range tests {
		got, err := parseLength(in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%q: expected %g, got %g", in, want, got)
		}
	}
	if _, err := parseLength("forty"); err == nil {
		t.Error("expected error for non-numeric length")
	}
}
