// Package importer reads building outlines and linear feature measurements
// from WKT, GeoJSON, DXF, CSV and Excel sources. Delimiters and column
// layouts of spreadsheet sources are detected automatically.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/rooftakeoff/internal/model"
)

// FeatureRow is one measured roof line from a feature sheet.
type FeatureRow struct {
	Type     model.LinearFeatureType `json:"type"`
	LengthFt float64                 `json:"length_ft"`
	Label    string                  `json:"label,omitempty"`
}

// ImportResult holds the results of a feature sheet import.
type ImportResult struct {
	Rows     []FeatureRow
	Totals   model.LinearFeatureTotals
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Type   int
	Length int
	Label  int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"type":   {"type", "feature", "feature type", "kind", "line", "line type", "category"},
	"length": {"length", "length ft", "length_ft", "length (ft)", "ft", "feet", "lf", "linear feet"},
	"label":  {"label", "name", "description", "desc", "note", "notes", "location"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Matching is case-insensitive against the known aliases for each role.
// Without a recognizable header it returns the positional mapping
// type, length, label and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Type: -1, Length: -1, Label: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "type":
					if mapping.Type == -1 {
						mapping.Type = i
					}
				case "length":
					if mapping.Length == -1 {
						mapping.Length = i
					}
				case "label":
					if mapping.Label == -1 {
						mapping.Label = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Type: 0, Length: 1, Label: 2}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseLength accepts plain numbers and values with a trailing unit such
// as "40 ft" or "40'".
func parseLength(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range []string{"feet", "ft", "lf", "'"} {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	return strconv.ParseFloat(s, 64)
}

// parseRow extracts a FeatureRow. It returns the row, any error message
// and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (FeatureRow, string, string) {
	typeStr := getCell(row, mapping.Type)
	if typeStr == "" {
		return FeatureRow{}, fmt.Sprintf("%s: Missing feature type", rowLabel), ""
	}
	ft, ok := model.ParseLinearFeatureType(typeStr)
	if !ok {
		return FeatureRow{}, "", fmt.Sprintf("%s: Unknown feature type '%s', skipped", rowLabel, typeStr)
	}

	lengthStr := getCell(row, mapping.Length)
	if lengthStr == "" {
		return FeatureRow{}, fmt.Sprintf("%s: Missing length value", rowLabel), ""
	}
	length, err := parseLength(lengthStr)
	if err != nil {
		return FeatureRow{}, fmt.Sprintf("%s: Invalid length '%s'", rowLabel, lengthStr), ""
	}
	if math.IsNaN(length) || math.IsInf(length, 0) {
		return FeatureRow{}, fmt.Sprintf("%s: Length must be a finite number", rowLabel), ""
	}
	if length < 0 {
		return FeatureRow{}, fmt.Sprintf("%s: Length must not be negative", rowLabel), ""
	}

	var warning string
	if length == 0 {
		warning = fmt.Sprintf("%s: Zero-length %s", rowLabel, ft)
	}
	return FeatureRow{Type: ft, LengthFt: length, Label: getCell(row, mapping.Label)}, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportFeaturesCSV imports linear features from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportFeaturesCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportFeaturesCSVFromReader imports features from a CSV reader with a
// known delimiter.
func ImportFeaturesCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportFeaturesExcel imports features from the first sheet of an .xlsx
// workbook.
func ImportFeaturesExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Type == -1 {
			missing = append(missing, "Type")
		}
		if mapping.Length == -1 {
			missing = append(missing, "Length")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 2 {
		if _, err := parseLength(rows[0][1]); err != nil {
			// Unrecognized header: skip it but keep positional mapping
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		fr, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		if fr.Type == "" {
			continue
		}

		result.Rows = append(result.Rows, fr)
		result.Totals.Add(fr.Type, fr.LengthFt)
	}

	return result
}
