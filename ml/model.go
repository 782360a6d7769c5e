package ml

import "errors"

var (
	// ErrInvalidModel marks an artifact that was read but cannot be used.
	ErrInvalidModel = errors.New("invalid model")
	// ErrFeatureCount is returned when a vector does not have FeatureCount entries.
	ErrFeatureCount = errors.New("unexpected feature count")
)

// Estimator is a fitted binary classifier.
type Estimator interface {
	PredictClass(features []float64) (int, error)
	PredictProbability(features []float64) ([]float64, error)
}

// FeatureImporter is implemented by estimators that expose native
// per-feature importances (tree families).
type FeatureImporter interface {
	FeatureImportances() []float64
}

// CoefficientProvider is implemented by linear estimators. Row 0 holds
// the coefficients of the positive class.
type CoefficientProvider interface {
	Coefficients() [][]float64
}

func checkWidth(features []float64) error {
	if len(features) != FeatureCount {
		return ErrFeatureCount
	}
	return nil
}

// argmax returns the index of the largest value, lowest index on ties.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
