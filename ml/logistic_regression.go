package ml

import (
	"fmt"
	"math"
)

// LogisticRegression is a binary linear classifier: p1 = sigmoid(w·x + b).
type LogisticRegression struct {
	coef      []float64
	intercept float64
}

var _ Estimator = (*LogisticRegression)(nil)
var _ CoefficientProvider = (*LogisticRegression)(nil)

// NewLogisticRegression takes coefficients shaped [1][FeatureCount] and a
// single intercept, the layout binary linear models are exported with.
func NewLogisticRegression(coef [][]float64, intercept []float64) (*LogisticRegression, error) {
	if len(coef) != 1 || len(coef[0]) != FeatureCount {
		return nil, fmt.Errorf("%w: coef must be 1x%d", ErrInvalidModel, FeatureCount)
	}
	if len(intercept) != 1 {
		return nil, fmt.Errorf("%w: intercept must have one entry, got %d", ErrInvalidModel, len(intercept))
	}
	w := make([]float64, FeatureCount)
	copy(w, coef[0])
	return &LogisticRegression{coef: w, intercept: intercept[0]}, nil
}

func (lr *LogisticRegression) PredictClass(features []float64) (int, error) {
	z, err := lr.decision(features)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}

func (lr *LogisticRegression) PredictProbability(features []float64) ([]float64, error) {
	z, err := lr.decision(features)
	if err != nil {
		return nil, err
	}
	p1 := 1 / (1 + math.Exp(-z))
	return []float64{1 - p1, p1}, nil
}

func (lr *LogisticRegression) Coefficients() [][]float64 {
	row := make([]float64, len(lr.coef))
	copy(row, lr.coef)
	return [][]float64{row}
}

func (lr *LogisticRegression) decision(features []float64) (float64, error) {
	if err := checkWidth(features); err != nil {
		return 0, err
	}
	z := lr.intercept
	for i, w := range lr.coef {
		z += w * features[i]
	}
	return z, nil
}
