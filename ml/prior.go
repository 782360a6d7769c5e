package ml

import (
	"fmt"
	"math"
)

// PriorClassifier ignores its input and always returns the class prior.
// It exposes neither importances nor coefficients.
type PriorClassifier struct {
	prior []float64
}

var _ Estimator = (*PriorClassifier)(nil)

func NewPriorClassifier(prior []float64) (*PriorClassifier, error) {
	if len(prior) != 2 {
		return nil, fmt.Errorf("%w: class_prior must have 2 entries, got %d", ErrInvalidModel, len(prior))
	}
	if !(prior[0] >= 0 && prior[1] >= 0 && math.Abs(prior[0]+prior[1]-1) <= 1e-9) {
		return nil, fmt.Errorf("%w: class_prior must be a probability distribution", ErrInvalidModel)
	}
	return &PriorClassifier{prior: []float64{prior[0], prior[1]}}, nil
}

func (pc *PriorClassifier) PredictClass(features []float64) (int, error) {
	if err := checkWidth(features); err != nil {
		return 0, err
	}
	return argmax(pc.prior), nil
}

func (pc *PriorClassifier) PredictProbability(features []float64) ([]float64, error) {
	if err := checkWidth(features); err != nil {
		return nil, err
	}
	return []float64{pc.prior[0], pc.prior[1]}, nil
}
