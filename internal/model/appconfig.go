package model

import "fmt"

// WasteChoices are the waste percentages offered by estimate UIs. The pitch
// and waste model itself accepts any non-negative percentage.
var WasteChoices = []float64{10, 12, 15, 20}

// AppConfig holds application-wide preferences and takeoff defaults.
type AppConfig struct {
	// Takeoff defaults applied to new measurements
	DefaultPitch        string  `json:"default_pitch"`
	DefaultWastePercent float64 `json:"default_waste_percent"`
	DefaultZoom         float64 `json:"default_zoom"`         // Web Mercator zoom of the drawing frame
	DefaultFrameWidth   float64 `json:"default_frame_width"`  // pixels
	DefaultFrameHeight  float64 `json:"default_frame_height"` // pixels

	// Detector tuning
	SymmetryTolerance float64 `json:"symmetry_tolerance"` // fraction of bbox diagonal
	AutoApplyMinConf  float64 `json:"auto_apply_min_confidence"`

	// Application preferences
	ServerPort     string   `json:"server_port"`
	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultPitch:        "6/12",
		DefaultWastePercent: 12,
		DefaultZoom:         20,
		DefaultFrameWidth:   1024,
		DefaultFrameHeight:  768,
		SymmetryTolerance:   0.05,
		AutoApplyMinConf:    0.8,
		ServerPort:          "3000",
		RecentProjects:      []string{},
	}
}

// Validate checks that the defaults can drive a takeoff.
func (c AppConfig) Validate() error {
	if _, err := MultiplierFor(c.DefaultPitch); err != nil {
		return fmt.Errorf("default pitch: %w", err)
	}
	if err := checkMeasurement("default waste percent", c.DefaultWastePercent); err != nil {
		return err
	}
	if c.DefaultZoom <= 0 || c.DefaultZoom > 24 {
		return fmt.Errorf("%w: default zoom must be in (0, 24], got %g", ErrInvalidMeasurement, c.DefaultZoom)
	}
	if c.DefaultFrameWidth <= 0 || c.DefaultFrameHeight <= 0 {
		return fmt.Errorf("%w: frame size must be positive", ErrInvalidMeasurement)
	}
	if c.SymmetryTolerance <= 0 || c.SymmetryTolerance >= 1 {
		return fmt.Errorf("%w: symmetry tolerance must be in (0, 1)", ErrInvalidMeasurement)
	}
	if c.AutoApplyMinConf < 0 || c.AutoApplyMinConf > 1 {
		return fmt.Errorf("%w: auto-apply confidence must be in [0, 1]", ErrInvalidMeasurement)
	}
	return nil
}

// IsStandardWaste reports whether pct is one of the UI waste choices.
func IsStandardWaste(pct float64) bool {
	for _, w := range WasteChoices {
		if w == pct {
			return true
		}
	}
	return false
}
