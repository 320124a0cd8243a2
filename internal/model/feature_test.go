package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinearFeatureType(t *testing.T) {
	cases := map[string]LinearFeatureType{
		"ridge":         FeatureRidge,
		" Hips ":        FeatureHip,
		"VALLEY":        FeatureValley,
		"eaves":         FeatureEave,
		"gable":         FeatureRake,
		"step flashing": FeatureStep,
		"wall":          FeatureStep,
	}
	for in, want := range cases {
		got, ok := ParseLinearFeatureType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseLinearFeatureType("chimney")
	assert.False(t, ok)
}

func TestLinearFeature_JSON(t *testing.T) {
	var f LinearFeature
	err := json.Unmarshal([]byte(`{"type":"Ridges","geometry":[[0,0],[3,4]],"length_ft":5}`), &f)
	require.NoError(t, err)
	assert.Equal(t, FeatureRidge, f.Type)
	assert.InDelta(t, 5.0, f.Geometry.Length(), 1e-12)

	err = json.Unmarshal([]byte(`{"type":"gutter"}`), &f)
	assert.Error(t, err)
}

func TestTotalsFromFeatures(t *testing.T) {
	features := []LinearFeature{
		{Type: FeatureRidge, LengthFt: 20},
		{Type: FeatureRidge, LengthFt: 20},
		{Type: FeatureHip, LengthFt: 26},
		{Type: FeatureEave, LengthFt: 60},
	}
	totals := TotalsFromFeatures(features)
	assert.Equal(t, 40.0, totals.Ridge)
	assert.Equal(t, 26.0, totals.Get(FeatureHip))
	assert.Equal(t, 60.0, totals.Perimeter())
	assert.Len(t, FeaturesOfType(features, FeatureRidge), 2)
	assert.Empty(t, FeaturesOfType(features, FeatureValley))
	assert.NoError(t, totals.Validate())

	totals.Add(FeatureValley, -1)
	assert.ErrorIs(t, totals.Validate(), ErrInvalidMeasurement)
}
