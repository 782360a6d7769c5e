// Package inference turns a patient record into a risk prediction using
// the process-wide estimator.
package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"diapredict/ml"
	"diapredict/monitoring"
)

var (
	// ErrModelUnavailable is returned while no estimator is loaded.
	ErrModelUnavailable = errors.New("model not loaded")
	// ErrInvalidOutput is returned when the estimator answers with
	// something that is not a binary probability distribution.
	ErrInvalidOutput = errors.New("invalid estimator output")
)

// PredictionResult is the response for one record.
type PredictionResult struct {
	Prediction        int                `json:"prediction"`
	Probability       float64            `json:"probability"`
	RiskLevel         RiskLevel          `json:"risk_level"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
}

// Service runs predictions against the model held in a ml.Holder.
type Service struct {
	models  *ml.Holder
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewService wires a service. metrics and logger may be nil.
func NewService(models *ml.Holder, metrics *monitoring.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{models: models, metrics: metrics, logger: logger}
}

// Predict scores record. It fails with ErrModelUnavailable, without
// touching the record, when the holder is Absent.
func (s *Service) Predict(ctx context.Context, record ml.PatientRecord) (*PredictionResult, error) {
	model, ok := s.models.Get()
	if !ok {
		s.count(monitoring.StatusUnavailable)
		return nil, ErrModelUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := predict(model, record.Vector())
	if s.metrics != nil {
		s.metrics.InferenceLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.count(monitoring.StatusError)
		s.logger.Error("inference failed", zap.String("model_type", model.Type), zap.Error(err))
		return nil, err
	}

	s.count(monitoring.StatusSuccess)
	if s.metrics != nil {
		s.metrics.PredictionsByRisk.WithLabelValues(string(result.RiskLevel)).Inc()
	}
	return result, nil
}

// Loaded reports whether an estimator is available.
func (s *Service) Loaded() bool {
	return s.models.Loaded()
}

// Model returns the loaded model, if any.
func (s *Service) Model() (*ml.LoadedModel, bool) {
	return s.models.Get()
}

func predict(model *ml.LoadedModel, features []float64) (*PredictionResult, error) {
	label, err := model.Estimator.PredictClass(features)
	if err != nil {
		return nil, fmt.Errorf("predict class: %w", err)
	}
	proba, err := model.Estimator.PredictProbability(features)
	if err != nil {
		return nil, fmt.Errorf("predict probability: %w", err)
	}
	if len(proba) != 2 {
		return nil, fmt.Errorf("%w: %d class probabilities", ErrInvalidOutput, len(proba))
	}
	p := proba[1]
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: probability %v", ErrInvalidOutput, p)
	}
	if label != 0 && label != 1 {
		return nil, fmt.Errorf("%w: class %d", ErrInvalidOutput, label)
	}

	return &PredictionResult{
		Prediction:        label,
		Probability:       p,
		RiskLevel:         RiskLevelFor(p),
		FeatureImportance: model.ImportanceCopy(),
	}, nil
}

func (s *Service) count(status string) {
	if s.metrics != nil {
		s.metrics.InferenceTotal.WithLabelValues(status).Inc()
	}
}
