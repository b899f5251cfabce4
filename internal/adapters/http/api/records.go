package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/njdifiore/benchmetrics/internal/domain/model"
	"github.com/njdifiore/benchmetrics/pkg/metrics"
)

// RecordsHandler handles benchmark record submission requests.
type RecordsHandler struct {
	deps Dependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps Dependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// recordRequest mirrors the OpenAPI schema for POST /benchmarks/records.
type recordRequest struct {
	ID              string          `json:"id"`
	MetricID        string          `json:"metric_id"`
	SourceID        string          `json:"source_id"`
	RevenueRange    string          `json:"revenue_range"`
	Value           decimal.Decimal `json:"value"`
	PeriodStart     string          `json:"period_start"`
	PeriodEnd       string          `json:"period_end"`
	ConfidenceScore float64         `json:"confidence_score"`
	DataQuality     string          `json:"data_quality"`
	SampleSize      int             `json:"sample_size"`
}

func (r recordRequest) validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(r.MetricID) == "":
		return errors.New("missing metric_id")
	case strings.TrimSpace(r.PeriodStart) == "":
		return errors.New("missing period_start")
	case strings.TrimSpace(r.PeriodEnd) == "":
		return errors.New("missing period_end")
	}
	if _, err := time.Parse(time.RFC3339, r.PeriodStart); err != nil {
		return errors.New("invalid period_start; must be RFC3339")
	}
	if _, err := time.Parse(time.RFC3339, r.PeriodEnd); err != nil {
		return errors.New("invalid period_end; must be RFC3339")
	}
	return nil
}

// record converts the request to the domain shape. Call validate first;
// time parsing is assumed to succeed here.
func (r recordRequest) record() model.BenchmarkRecord {
	start, _ := time.Parse(time.RFC3339, r.PeriodStart)
	end, _ := time.Parse(time.RFC3339, r.PeriodEnd)
	return model.BenchmarkRecord{
		ID:              r.ID,
		MetricID:        model.MetricType(r.MetricID),
		SourceID:        r.SourceID,
		RevenueRange:    model.RevenueRange(r.RevenueRange),
		Value:           r.Value,
		PeriodStart:     start,
		PeriodEnd:       end,
		ConfidenceScore: r.ConfidenceScore,
		DataQuality:     model.DataQuality(r.DataQuality),
		SampleSize:      r.SampleSize,
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePostRecord handles POST /benchmarks/records requests.
func (h *RecordsHandler) HandlePostRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.ID) {
		metrics.RecordIngestDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Try to enqueue for async validation and storage
	if ok := h.deps.Enqueue(r.Context(), req.record()); !ok {
		// Roll back the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.ID)
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
