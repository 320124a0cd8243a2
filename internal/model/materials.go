package model

import "math"

// Coverage constants used to convert measured quantities into order units.
const (
	BundlesPerSquare       = 3.0   // three-tab / architectural shingles
	RidgeCapFtPerBundle    = 33.0  // linear feet of ridge/hip per cap bundle
	ValleyFtPerRoll        = 50.0  // linear feet per valley liner roll
	DripEdgeFtPerStick     = 10.0  // linear feet per drip edge stick
	StarterFtPerBundle     = 100.0 // linear feet of eave+rake per starter bundle
	StepFlashingFtPerPiece = 2.0   // linear feet of wall covered per step flashing piece
)

// MaterialQuantities holds discrete order counts derived from a takeoff.
type MaterialQuantities struct {
	ShingleBundles     int `json:"shingle_bundles"`
	RidgeCapBundles    int `json:"ridge_cap_bundles"`
	ValleyRolls        int `json:"valley_rolls"`
	DripEdgeSticks     int `json:"drip_edge_sticks"`
	StarterBundles     int `json:"starter_bundles"`
	StepFlashingPieces int `json:"step_flashing_pieces"`
}

// ShingleBundles returns ceil(squares * 3).
func ShingleBundles(squares float64) (int, error) {
	if err := checkMeasurement("squares", squares); err != nil {
		return 0, err
	}
	return ceilUnits(squares * BundlesPerSquare), nil
}

// RidgeCapBundles returns ceil((ridge + hip) / 33).
func RidgeCapBundles(ridgeFt, hipFt float64) (int, error) {
	if err := checkMeasurement("ridge length", ridgeFt); err != nil {
		return 0, err
	}
	if err := checkMeasurement("hip length", hipFt); err != nil {
		return 0, err
	}
	return ceilUnits((ridgeFt + hipFt) / RidgeCapFtPerBundle), nil
}

// ValleyRolls returns ceil(valley / 50).
func ValleyRolls(valleyFt float64) (int, error) {
	if err := checkMeasurement("valley length", valleyFt); err != nil {
		return 0, err
	}
	return ceilUnits(valleyFt / ValleyFtPerRoll), nil
}

// DripEdgeSticks returns ceil((eave + rake) / 10).
func DripEdgeSticks(eaveFt, rakeFt float64) (int, error) {
	if err := checkMeasurement("eave length", eaveFt); err != nil {
		return 0, err
	}
	if err := checkMeasurement("rake length", rakeFt); err != nil {
		return 0, err
	}
	return ceilUnits((eaveFt + rakeFt) / DripEdgeFtPerStick), nil
}

// StarterBundles returns ceil((eave + rake) / 100).
func StarterBundles(eaveFt, rakeFt float64) (int, error) {
	if err := checkMeasurement("eave length", eaveFt); err != nil {
		return 0, err
	}
	if err := checkMeasurement("rake length", rakeFt); err != nil {
		return 0, err
	}
	return ceilUnits((eaveFt + rakeFt) / StarterFtPerBundle), nil
}

// StepFlashingPieces returns ceil(step / 2).
func StepFlashingPieces(stepFt float64) (int, error) {
	if err := checkMeasurement("step flashing length", stepFt); err != nil {
		return 0, err
	}
	return ceilUnits(stepFt / StepFlashingFtPerPiece), nil
}

// DeriveMaterials computes every material count for a takeoff.
func DeriveMaterials(squares float64, totals LinearFeatureTotals) (MaterialQuantities, error) {
	var q MaterialQuantities
	var err error
	if q.ShingleBundles, err = ShingleBundles(squares); err != nil {
		return MaterialQuantities{}, err
	}
	if q.RidgeCapBundles, err = RidgeCapBundles(totals.Ridge, totals.Hip); err != nil {
		return MaterialQuantities{}, err
	}
	if q.ValleyRolls, err = ValleyRolls(totals.Valley); err != nil {
		return MaterialQuantities{}, err
	}
	if q.DripEdgeSticks, err = DripEdgeSticks(totals.Eave, totals.Rake); err != nil {
		return MaterialQuantities{}, err
	}
	if q.StarterBundles, err = StarterBundles(totals.Eave, totals.Rake); err != nil {
		return MaterialQuantities{}, err
	}
	if q.StepFlashingPieces, err = StepFlashingPieces(totals.Step); err != nil {
		return MaterialQuantities{}, err
	}
	return q, nil
}

// ceilEpsilon is relative to the value, so it absorbs float noise like
// 66/33 = 2.0000000000000004 without swallowing real overage.
const ceilEpsilon = 1e-12

func ceilUnits(v float64) int {
	return int(math.Ceil(v * (1 - ceilEpsilon)))
}
