package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_PreinitializedLabels(t *testing.T) {
	m := NewMetrics(nil)

	if got := testutil.CollectAndCount(m.InferenceTotal); got != 3 {
		t.Fatalf("inference_total series = %d, want 3", got)
	}
	if got := testutil.CollectAndCount(m.PredictionsByRisk); got != 3 {
		t.Fatalf("predictions_total series = %d, want 3", got)
	}
	if got := testutil.ToFloat64(m.ModelLoaded); got != 0 {
		t.Fatalf("model_loaded with nil callback = %v, want 0", got)
	}
}

func TestModelLoadedFollowsCallback(t *testing.T) {
	var loaded atomic.Bool
	m := NewMetrics(loaded.Load)

	if got := testutil.ToFloat64(m.ModelLoaded); got != 0 {
		t.Fatalf("model_loaded = %v, want 0", got)
	}
	loaded.Store(true)
	if got := testutil.ToFloat64(m.ModelLoaded); got != 1 {
		t.Fatalf("model_loaded = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics(func() bool { return true })
	m.InferenceTotal.WithLabelValues(StatusSuccess).Inc()
	m.InferenceLatency.Observe(0.002)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	body := rr.Body.String()
	for _, want := range []string{
		`diapredict_inference_total{status="success"} 1`,
		`diapredict_inference_total{status="model_unavailable"} 0`,
		"diapredict_model_loaded 1",
		"diapredict_inference_latency_seconds_count 1",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetricsAreIsolated(t *testing.T) {
	a := NewMetrics(nil)
	b := NewMetrics(nil)
	a.InferenceTotal.WithLabelValues(StatusError).Inc()

	if got := testutil.ToFloat64(b.InferenceTotal.WithLabelValues(StatusError)); got != 0 {
		t.Fatalf("second registry saw %v errors", got)
	}
}
