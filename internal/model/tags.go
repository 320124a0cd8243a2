package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Tag keys recognized at the storage boundary.
const (
	TagPrefixLinear = "lf."
	TagPitch        = "roof.pitch"
	TagWaste        = "roof.waste_pct"
)

// Tags is the typed form of a measurement tag map. Linear feature lengths
// are validated; unrecognized keys are kept verbatim in Extra.
type Tags struct {
	Linear       LinearFeatureTotals `json:"linear"`
	Pitch        string              `json:"pitch,omitempty"`
	WastePercent *float64            `json:"waste_percent,omitempty"`
	Extra        map[string]string   `json:"extra,omitempty"`
}

// ParseTags converts an external tag map (e.g. {"lf.ridge": 40}) into Tags.
// Numeric values may be JSON numbers or numeric strings. Negative or
// non-numeric lengths fail with ErrInvalidMeasurement, unknown pitch labels
// with ErrUnknownPitchLabel.
func ParseTags(raw map[string]any) (Tags, error) {
	tags := Tags{}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		norm := strings.ToLower(strings.TrimSpace(key))

		switch {
		case strings.HasPrefix(norm, TagPrefixLinear):
			ft, ok := ParseLinearFeatureType(strings.TrimPrefix(norm, TagPrefixLinear))
			if !ok {
				tags.addExtra(key, value)
				continue
			}
			v, err := tagNumber(key, value)
			if err != nil {
				return Tags{}, err
			}
			tags.Linear.Add(ft, v)

		case norm == TagPitch:
			label := strings.TrimSpace(fmt.Sprint(value))
			if _, err := MultiplierFor(label); err != nil {
				return Tags{}, fmt.Errorf("tag %s: %w", key, err)
			}
			tags.Pitch = strings.ToLower(label)

		case norm == TagWaste:
			v, err := tagNumber(key, value)
			if err != nil {
				return Tags{}, err
			}
			tags.WastePercent = &v

		default:
			tags.addExtra(key, value)
		}
	}

	return tags, nil
}

// Map renders Tags back into the flat stringly-keyed form used in storage.
func (t Tags) Map() map[string]any {
	out := make(map[string]any, len(LinearFeatureTypes)+len(t.Extra)+2)
	for _, ft := range LinearFeatureTypes {
		if v := t.Linear.Get(ft); v != 0 {
			out[TagPrefixLinear+string(ft)] = v
		}
	}
	if t.Pitch != "" {
		out[TagPitch] = t.Pitch
	}
	if t.WastePercent != nil {
		out[TagWaste] = *t.WastePercent
	}
	for k, v := range t.Extra {
		out[k] = v
	}
	return out
}

func (t *Tags) addExtra(key string, value any) {
	if t.Extra == nil {
		t.Extra = make(map[string]string)
	}
	t.Extra[key] = fmt.Sprint(value)
}

func tagNumber(key string, value any) (float64, error) {
	var v float64
	switch n := value.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: tag %s is not numeric", ErrInvalidMeasurement, key)
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: tag %s is not numeric (%q)", ErrInvalidMeasurement, key, n)
		}
		v = f
	default:
		return 0, fmt.Errorf("%w: tag %s has unsupported type %T", ErrInvalidMeasurement, key, value)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: tag %s must be a non-negative number", ErrInvalidMeasurement, key)
	}
	return v, nil
}
