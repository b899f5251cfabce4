package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/njdifiore/benchmetrics/internal/domain/calc"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

// CalculateHandler handles metric calculation requests.
type CalculateHandler struct {
	deps Dependencies
}

// NewCalculateHandler creates a new calculate handler.
func NewCalculateHandler(deps Dependencies) *CalculateHandler {
	return &CalculateHandler{deps: deps}
}

// calculateRequest mirrors the OpenAPI schema for POST /metrics/calculate.
type calculateRequest struct {
	MetricType string                     `json:"metric_type"`
	Inputs     map[string]decimal.Decimal `json:"inputs"`
}

func (c calculateRequest) validate() error {
	if strings.TrimSpace(c.MetricType) == "" {
		return errors.New("missing metric_type")
	}
	if len(c.Inputs) == 0 {
		return errors.New("missing inputs")
	}
	return nil
}

type calculateResponse struct {
	MetricType model.MetricType `json:"metric_type"`
	Value      decimal.Decimal  `json:"value"`
}

// HandleCalculate handles POST /metrics/calculate requests.
func (h *CalculateHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	metricType := model.MetricType(req.MetricType)
	value, err := h.deps.CalculateMetric(r.Context(), metricType, model.CalculationInput(req.Inputs))
	if err != nil {
		switch {
		case errors.Is(err, calc.ErrUnknownMetric):
			writeError(w, http.StatusBadRequest, "unknown_metric", err)
		case errors.Is(err, calc.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err)
		case errors.Is(err, calc.ErrOutOfBounds):
			writeError(w, http.StatusUnprocessableEntity, "out_of_bounds", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, calculateResponse{MetricType: metricType, Value: value})
}
