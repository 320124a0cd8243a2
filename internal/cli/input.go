package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/rooftakeoff/internal/importer"
	"github.com/piwi3910/rooftakeoff/internal/model"
)

// readArg returns s, or the contents of the file when s starts with '@'.
func readArg(s string) (string, error) {
	if !strings.HasPrefix(s, "@") {
		return s, nil
	}
	data, err := os.ReadFile(s[1:])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// parsePolygon accepts a JSON array of [x, y] pairs or a WKT POLYGON.
func parsePolygon(s string) (model.Polygon, error) {
	s, err := readArg(s)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToUpper(s), "POLYGON") || strings.HasPrefix(strings.ToUpper(s), "MULTIPOLYGON") {
		return importer.ParseWKTPolygon(s)
	}
	var p model.Polygon
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("polygon: %w", err)
	}
	return p, nil
}

// parseLine accepts {"start": [x, y], "end": [x, y]} or [[x, y], [x, y]].
func parseLine(s string) (model.SplitLine, error) {
	s, err := readArg(s)
	if err != nil {
		return model.SplitLine{}, err
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var pts []model.Point2D
		if err := json.Unmarshal([]byte(s), &pts); err != nil {
			return model.SplitLine{}, fmt.Errorf("line: %w", err)
		}
		if len(pts) != 2 {
			return model.SplitLine{}, fmt.Errorf("line: need 2 points, got %d", len(pts))
		}
		return model.SplitLine{Start: pts[0], End: pts[1]}, nil
	}
	var line model.SplitLine
	if err := json.Unmarshal([]byte(s), &line); err != nil {
		return model.SplitLine{}, fmt.Errorf("line: %w", err)
	}
	return line, nil
}

// importFeatureSheet reads a CSV or XLSX roof line sheet by extension.
func importFeatureSheet(path string) importer.ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return importer.ImportFeaturesExcel(path)
	default:
		return importer.ImportFeaturesCSV(path)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
