// Package monitoring 提供服务的Prometheus指标
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 延迟直方图分桶（秒）
var (
	HTTPLatencyBuckets      = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5}
	InferenceLatencyBuckets = []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1}
)

// 推理结果状态标签
const (
	StatusSuccess     = "success"
	StatusUnavailable = "model_unavailable"
	StatusError       = "error"
)

// Metrics 服务指标集合
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	InferenceLatency    prometheus.Histogram
	InferenceTotal      *prometheus.CounterVec
	PredictionsByRisk   *prometheus.CounterVec
	ModelLoaded         prometheus.GaugeFunc

	gatherer prometheus.Gatherer
}

// NewMetrics 创建指标并注册到独立的registry，modelLoaded 在每次采集时读取模型状态
func NewMetrics(modelLoaded func() bool) *Metrics {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg, modelLoaded)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func newMetrics(reg *prometheus.Registry, modelLoaded func() bool) *Metrics {
	if modelLoaded == nil {
		modelLoaded = func() bool { return false }
	}
	m := &Metrics{
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "diapredict_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: HTTPLatencyBuckets,
			},
			[]string{"method", "endpoint", "status_code"},
		),
		InferenceLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diapredict_inference_latency_seconds",
				Help:    "Model inference latency in seconds",
				Buckets: InferenceLatencyBuckets,
			},
		),
		InferenceTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diapredict_inference_total",
				Help: "Total inference attempts by outcome",
			},
			[]string{"status"},
		),
		PredictionsByRisk: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diapredict_predictions_total",
				Help: "Successful predictions by risk level",
			},
			[]string{"risk_level"},
		),
		ModelLoaded: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "diapredict_model_loaded",
				Help: "1 when the estimator is loaded, 0 otherwise",
			},
			func() float64 {
				if modelLoaded() {
					return 1
				}
				return 0
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HTTPRequestDuration,
		m.InferenceLatency,
		m.InferenceTotal,
		m.PredictionsByRisk,
		m.ModelLoaded,
	)

	// 预初始化标签，使指标立即可见
	for _, status := range []string{StatusSuccess, StatusUnavailable, StatusError} {
		m.InferenceTotal.WithLabelValues(status)
	}
	for _, level := range []string{"Low", "Medium", "High"} {
		m.PredictionsByRisk.WithLabelValues(level)
	}

	return m
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
