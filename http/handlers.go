package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"diapredict/inference"
	"diapredict/ml"
)

const (
	welcomeMessage       = "Welcome to DiaPredict API"
	modelNotLoadedDetail = "Model not loaded. Please train the model first."
	predictFailedDetail  = "Prediction failed"
)

type Handler struct {
	service *inference.Service
	logger  *zap.Logger
}

func NewHandler(service *inference.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /ready", h.handleReady)
	mux.HandleFunc("GET /model", h.handleModel)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeDetail(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	record, err := DecodePatientRecord(body)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": verr.Errors})
			return
		}
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Predict(r.Context(), record)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, inference.ErrModelUnavailable):
		writeDetail(w, http.StatusInternalServerError, modelNotLoadedDetail)
	default:
		h.logger.Error("predict failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		writeDetail(w, http.StatusInternalServerError, predictFailedDetail)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"model_loaded": h.service.Loaded(),
	})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.service.Loaded() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "model_not_loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type modelInfo struct {
	Type             string              `json:"type"`
	Path             string              `json:"path"`
	LoadedAt         time.Time           `json:"loaded_at"`
	ImportanceSource ml.ImportanceSource `json:"importance_source"`
	FeatureNames     []string            `json:"feature_names"`
}

func (h *Handler) handleModel(w http.ResponseWriter, r *http.Request) {
	m, ok := h.service.Model()
	if !ok {
		writeDetail(w, http.StatusServiceUnavailable, modelNotLoadedDetail)
		return
	}
	writeJSON(w, http.StatusOK, modelInfo{
		Type:             m.Type,
		Path:             m.Path,
		LoadedAt:         m.LoadedAt.UTC(),
		ImportanceSource: m.ImportanceSource,
		FeatureNames:     ml.FeatureNameList(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
