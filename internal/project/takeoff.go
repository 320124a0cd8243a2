package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/rooftakeoff/internal/model"
	"github.com/piwi3910/rooftakeoff/internal/projection"
)

// FileVersion is written to every saved takeoff file.
const FileVersion = "1.0.0"

// FileExtension is the conventional suffix for saved takeoffs.
const FileExtension = ".roof.json"

// TakeoffFile is a saved measurement session: the outline as drawn, the
// measured features and the facet set at the time of saving.
//
// Geographic outlines use Outline, Features and Frame; facets are in the
// Frame's pixel space. CAD outlines use Drawing and DrawingFeatures in
// drawing units, scaled by FeetPerUnit.
type TakeoffFile struct {
	Version         string                     `json:"version"`
	CreatedAt       string                     `json:"created_at"`
	Name            string                     `json:"name,omitempty"`
	Outline         model.GeoPolygon           `json:"outline,omitempty"`
	Features        []model.GeoLinearFeature   `json:"features,omitempty"`
	Frame           *projection.Context        `json:"frame,omitempty"`
	Drawing         model.Polygon              `json:"drawing,omitempty"`
	DrawingFeatures []model.LinearFeature      `json:"drawing_features,omitempty"`
	Totals          *model.LinearFeatureTotals `json:"totals,omitempty"`
	Pitch           string                     `json:"pitch"`
	WastePercent    float64                    `json:"waste_percent"`
	FeetPerUnit     float64                    `json:"feet_per_unit"`
	Facets          []model.Facet              `json:"facets"`
}

// IsDrawing reports whether the takeoff was measured from a CAD outline.
func (tf TakeoffFile) IsDrawing() bool {
	return len(tf.Outline) == 0 && len(tf.Drawing) > 0
}

// SaveTakeoff writes a takeoff file, stamping the version and creation time.
func SaveTakeoff(path string, tf TakeoffFile) error {
	tf.Version = FileVersion
	tf.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if tf.Facets == nil {
		tf.Facets = []model.Facet{}
	}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal takeoff: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create takeoff directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write takeoff file: %w", err)
	}
	return nil
}

// LoadTakeoff reads a takeoff file and checks that it can be measured again.
func LoadTakeoff(path string) (TakeoffFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TakeoffFile{}, fmt.Errorf("failed to read takeoff file: %w", err)
	}
	var tf TakeoffFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return TakeoffFile{}, fmt.Errorf("failed to parse takeoff file: %w", err)
	}
	if tf.Version == "" {
		return TakeoffFile{}, fmt.Errorf("invalid takeoff file: missing version field")
	}
	if tf.Pitch != "" {
		if _, err := model.MultiplierFor(tf.Pitch); err != nil {
			return TakeoffFile{}, fmt.Errorf("invalid takeoff file: %w", err)
		}
	}
	if len(tf.Drawing) > 0 && tf.Drawing.IsDegenerate() {
		return TakeoffFile{}, fmt.Errorf("invalid takeoff file: drawing: %w", model.ErrDegeneratePolygon)
	}
	if tf.IsDrawing() && tf.FeetPerUnit <= 0 {
		return TakeoffFile{}, fmt.Errorf("invalid takeoff file: %w: feet per unit must be positive", model.ErrInvalidMeasurement)
	}
	for _, f := range tf.Facets {
		if f.Points.IsDegenerate() {
			return TakeoffFile{}, fmt.Errorf("invalid takeoff file: facet %s: %w", f.ID, model.ErrDegeneratePolygon)
		}
	}
	if tf.Facets == nil {
		tf.Facets = []model.Facet{}
	}
	return tf, nil
}
