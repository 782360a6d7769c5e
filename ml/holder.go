package ml

import (
	"sync/atomic"
	"time"
)

// ImportanceSource records which estimator capability fed the importance map.
type ImportanceSource string

const (
	ImportanceNative       ImportanceSource = "feature_importances"
	ImportanceCoefficients ImportanceSource = "coefficients"
	ImportanceNone         ImportanceSource = "none"
)

// LoadedModel is an estimator plus what was derived from it at load time.
// It is never modified after construction.
type LoadedModel struct {
	Estimator        Estimator
	Type             string
	Path             string
	LoadedAt         time.Time
	ImportanceSource ImportanceSource
	Importance       map[string]float64
}

// NewLoadedModel inspects the estimator's capabilities once and freezes
// the resulting importance mapping.
func NewLoadedModel(est Estimator, path string) *LoadedModel {
	source, importance := resolveImportance(est)
	return &LoadedModel{
		Estimator:        est,
		Type:             TypeOf(est),
		Path:             path,
		LoadedAt:         time.Now(),
		ImportanceSource: source,
		Importance:       importance,
	}
}

// ImportanceCopy returns a copy safe to hand to callers.
func (m *LoadedModel) ImportanceCopy() map[string]float64 {
	out := make(map[string]float64, len(m.Importance))
	for k, v := range m.Importance {
		out[k] = v
	}
	return out
}

func resolveImportance(est Estimator) (ImportanceSource, map[string]float64) {
	if fi, ok := est.(FeatureImporter); ok {
		return ImportanceNative, zipFeatures(fi.FeatureImportances())
	}
	if cp, ok := est.(CoefficientProvider); ok {
		coef := cp.Coefficients()
		if len(coef) == 0 {
			return ImportanceCoefficients, map[string]float64{}
		}
		return ImportanceCoefficients, zipFeatures(coef[0])
	}
	return ImportanceNone, map[string]float64{}
}

// zipFeatures pairs values with FeatureNames. A vector of the wrong
// width produces an empty map rather than a partial one.
func zipFeatures(values []float64) map[string]float64 {
	if len(values) != FeatureCount {
		return map[string]float64{}
	}
	out := make(map[string]float64, FeatureCount)
	for i, name := range FeatureNames {
		out[name] = values[i]
	}
	return out
}

// Holder owns the process-wide model. It starts Absent and can be
// moved to Loaded exactly once.
type Holder struct {
	current atomic.Pointer[LoadedModel]
}

func NewHolder() *Holder {
	return &Holder{}
}

// Set publishes m. It reports false if a model was already loaded, in
// which case the holder is unchanged.
func (h *Holder) Set(m *LoadedModel) bool {
	if m == nil {
		return false
	}
	return h.current.CompareAndSwap(nil, m)
}

// Get returns the loaded model, or nil and false while Absent.
func (h *Holder) Get() (*LoadedModel, bool) {
	m := h.current.Load()
	return m, m != nil
}

func (h *Holder) Loaded() bool {
	return h.current.Load() != nil
}
