package model

import (
	"errors"
	"math"
	"testing"
)

func nan() float64 { return math.NaN() }
func inf() float64 { return math.Inf(1) }

func TestRidgeCapBundles(t *testing.T) {
	n, err := RidgeCapBundles(40, 26)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 ridge cap bundles for 66 ft, got %d", n)
	}

	n, _ = RidgeCapBundles(40, 27)
	if n != 3 {
		t.Errorf("expected 3 ridge cap bundles for 67 ft, got %d", n)
	}
}

func TestMaterialCounts(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (int, error)
		want int
	}{
		{"shingles 12.52 sq", func() (int, error) { return ShingleBundles(12.5216) }, 38},
		{"shingles exact", func() (int, error) { return ShingleBundles(10) }, 30},
		{"shingles zero", func() (int, error) { return ShingleBundles(0) }, 0},
		{"valley 120 ft", func() (int, error) { return ValleyRolls(120) }, 3},
		{"valley 100 ft", func() (int, error) { return ValleyRolls(100) }, 2},
		{"drip edge 95 ft", func() (int, error) { return DripEdgeSticks(60, 35) }, 10},
		{"starter 230 ft", func() (int, error) { return StarterBundles(150, 80) }, 3},
		{"step flashing 13 ft", func() (int, error) { return StepFlashingPieces(13) }, 7},
		{"valley just over one roll", func() (int, error) { return ValleyRolls(50.00000004) }, 2},
		{"shingles just over 10 sq", func() (int, error) { return ShingleBundles(10.0000001) }, 31},
		{"ridge cap float noise", func() (int, error) { return RidgeCapBundles(0.1*3, 65.7) }, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.fn()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestMaterialCounts_RejectInvalid(t *testing.T) {
	calls := map[string]func() (int, error){
		"negative squares": func() (int, error) { return ShingleBundles(-1) },
		"nan ridge":        func() (int, error) { return RidgeCapBundles(nan(), 0) },
		"negative hip":     func() (int, error) { return RidgeCapBundles(10, -2) },
		"inf valley":       func() (int, error) { return ValleyRolls(inf()) },
		"negative rake":    func() (int, error) { return DripEdgeSticks(10, -1) },
		"negative eave":    func() (int, error) { return StarterBundles(-5, 0) },
		"nan step":         func() (int, error) { return StepFlashingPieces(nan()) },
	}
	for name, fn := range calls {
		if _, err := fn(); !errors.Is(err, ErrInvalidMeasurement) {
			t.Errorf("%s: expected ErrInvalidMeasurement, got %v", name, err)
		}
	}
}

func TestDeriveMaterials(t *testing.T) {
	totals := LinearFeatureTotals{Ridge: 40, Hip: 26, Valley: 30, Eave: 80, Rake: 50, Step: 9}
	q, err := DeriveMaterials(12.5216, totals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := MaterialQuantities{
		ShingleBundles:     38,
		RidgeCapBundles:    2,
		ValleyRolls:        1,
		DripEdgeSticks:     13,
		StarterBundles:     2,
		StepFlashingPieces: 5,
	}
	if q != want {
		t.Errorf("expected %+v, got %+v", want, q)
	}

	if _, err := DeriveMaterials(1, LinearFeatureTotals{Valley: -1}); !errors.Is(err, ErrInvalidMeasurement) {
		t.Errorf("expected ErrInvalidMeasurement for negative valley, got %v", err)
	}
}
