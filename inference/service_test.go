package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diapredict/ml"
	"diapredict/monitoring"
)

type stubEstimator struct {
	label int
	proba []float64
	err   error
	calls int
	seen  [][]float64
}

func (s *stubEstimator) PredictClass(features []float64) (int, error) {
	s.calls++
	s.seen = append(s.seen, append([]float64(nil), features...))
	return s.label, s.err
}

func (s *stubEstimator) PredictProbability(features []float64) ([]float64, error) {
	s.calls++
	return s.proba, s.err
}

type importanceEstimator struct {
	*stubEstimator
}

func (importanceEstimator) FeatureImportances() []float64 {
	return []float64{0.05, 0.3, 0.05, 0.05, 0.05, 0.2, 0.1, 0.2}
}

var sampleRecord = ml.PatientRecord{
	Pregnancies:              2,
	Glucose:                  120,
	BloodPressure:            70,
	SkinThickness:            20,
	Insulin:                  79,
	BMI:                      25.0,
	DiabetesPedigreeFunction: 0.5,
	Age:                      30,
}

func loadedService(t *testing.T, est ml.Estimator, metrics *monitoring.Metrics) *Service {
	t.Helper()
	holder := ml.NewHolder()
	require.True(t, holder.Set(ml.NewLoadedModel(est, "model.json")))
	return NewService(holder, metrics, nil)
}

func TestPredictEndToEnd(t *testing.T) {
	stub := &stubEstimator{label: 0, proba: []float64{0.8, 0.2}}
	svc := loadedService(t, stub, nil)

	result, err := svc.Predict(context.Background(), sampleRecord)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Prediction)
	assert.Equal(t, 0.2, result.Probability)
	assert.Equal(t, RiskLow, result.RiskLevel)
	assert.NotNil(t, result.FeatureImportance)
	assert.Empty(t, result.FeatureImportance)
	require.Len(t, stub.seen, 1)
	assert.Equal(t, []float64{2, 120, 70, 20, 79, 25.0, 0.5, 30}, stub.seen[0])
}

func TestPredictModelUnavailable(t *testing.T) {
	metrics := monitoring.NewMetrics(nil)
	svc := NewService(ml.NewHolder(), metrics, nil)

	for i := 0; i < 3; i++ {
		result, err := svc.Predict(context.Background(), sampleRecord)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrModelUnavailable)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.InferenceTotal.WithLabelValues(monitoring.StatusUnavailable)))
	assert.False(t, svc.Loaded())
}

func TestPredictUnavailableNeverCallsEstimator(t *testing.T) {
	stub := &stubEstimator{label: 1, proba: []float64{0.1, 0.9}}
	holder := ml.NewHolder()
	svc := NewService(holder, nil, nil)

	_, err := svc.Predict(context.Background(), sampleRecord)
	require.ErrorIs(t, err, ErrModelUnavailable)
	assert.Zero(t, stub.calls)

	require.True(t, holder.Set(ml.NewLoadedModel(stub, "model.json")))
	result, err := svc.Predict(context.Background(), sampleRecord)
	require.NoError(t, err)
	assert.Equal(t, RiskHigh, result.RiskLevel)
}

func TestPredictRiskBoundaries(t *testing.T) {
	cases := map[float64]RiskLevel{
		0.30:      RiskMedium,
		0.70:      RiskHigh,
		0.2999999: RiskLow,
		0.6999999: RiskMedium,
	}
	for p, want := range cases {
		svc := loadedService(t, &stubEstimator{proba: []float64{1 - p, p}}, nil)
		result, err := svc.Predict(context.Background(), sampleRecord)
		require.NoError(t, err)
		assert.Equal(t, want, result.RiskLevel, "probability %v", p)
		assert.Equal(t, p, result.Probability)
	}
}

func TestPredictFeatureImportance(t *testing.T) {
	svc := loadedService(t, importanceEstimator{&stubEstimator{label: 1, proba: []float64{0.25, 0.75}}}, nil)

	result, err := svc.Predict(context.Background(), sampleRecord)
	require.NoError(t, err)

	require.Len(t, result.FeatureImportance, ml.FeatureCount)
	for _, name := range ml.FeatureNames {
		assert.Contains(t, result.FeatureImportance, name)
	}
	assert.Equal(t, 0.3, result.FeatureImportance["Glucose"])

	result.FeatureImportance["Glucose"] = 0
	again, err := svc.Predict(context.Background(), sampleRecord)
	require.NoError(t, err)
	assert.Equal(t, 0.3, again.FeatureImportance["Glucose"])
}

func TestPredictInvalidOutput(t *testing.T) {
	cases := map[string]*stubEstimator{
		"three classes":    {proba: []float64{0.2, 0.3, 0.5}},
		"above one":        {proba: []float64{-0.5, 1.5}},
		"label out of set": {label: 2, proba: []float64{0.5, 0.5}},
	}
	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			metrics := monitoring.NewMetrics(nil)
			svc := loadedService(t, stub, metrics)
			_, err := svc.Predict(context.Background(), sampleRecord)
			assert.ErrorIs(t, err, ErrInvalidOutput)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InferenceTotal.WithLabelValues(monitoring.StatusError)))
		})
	}
}

func TestPredictEstimatorError(t *testing.T) {
	boom := errors.New("boom")
	svc := loadedService(t, &stubEstimator{err: boom}, nil)
	_, err := svc.Predict(context.Background(), sampleRecord)
	assert.ErrorIs(t, err, boom)
}

func TestPredictCanceledContext(t *testing.T) {
	stub := &stubEstimator{proba: []float64{0.5, 0.5}}
	svc := loadedService(t, stub, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Predict(ctx, sampleRecord)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stub.calls)
}

func TestPredictWithDecisionTreeFixture(t *testing.T) {
	est, err := ml.LoadModel("../ml/testdata/decision_tree.json")
	require.NoError(t, err)
	metrics := monitoring.NewMetrics(nil)
	svc := loadedService(t, est, metrics)

	result, err := svc.Predict(context.Background(), sampleRecord)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Prediction)
	assert.InDelta(t, 85.0/485.0, result.Probability, 1e-12)
	assert.Equal(t, RiskLow, result.RiskLevel)
	assert.Greater(t, result.FeatureImportance["Glucose"], result.FeatureImportance["BMI"])
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PredictionsByRisk.WithLabelValues("Low")))
}
