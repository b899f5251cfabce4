package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/njdifiore/benchmetrics/internal/coordinator"
	"github.com/njdifiore/benchmetrics/internal/domain/compare"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
	"github.com/njdifiore/benchmetrics/internal/domain/visibility"
)

// roleHeader carries the caller's access level; unknown or missing values
// fall back to the viewer policy.
const roleHeader = "X-Role"

// CompareHandler handles benchmark comparison requests.
type CompareHandler struct {
	deps Dependencies
}

// NewCompareHandler creates a new compare handler.
func NewCompareHandler(deps Dependencies) *CompareHandler {
	return &CompareHandler{deps: deps}
}

// compareRequest mirrors the OpenAPI schema for POST /benchmarks/compare.
type compareRequest struct {
	MetricType   string  `json:"metric_type"`
	RevenueRange string  `json:"revenue_range"`
	PeriodStart  string  `json:"period_start"`
	PeriodEnd    string  `json:"period_end"`
	CompanyValue float64 `json:"company_value"`
}

func (c compareRequest) validate() error {
	switch {
	case strings.TrimSpace(c.MetricType) == "":
		return errors.New("missing metric_type")
	case strings.TrimSpace(c.RevenueRange) == "":
		return errors.New("missing revenue_range")
	case strings.TrimSpace(c.PeriodStart) == "":
		return errors.New("missing period_start")
	case strings.TrimSpace(c.PeriodEnd) == "":
		return errors.New("missing period_end")
	case math.IsNaN(c.CompanyValue) || math.IsInf(c.CompanyValue, 0):
		return errors.New("invalid company_value")
	}
	return nil
}

// filter parses the request's period bounds and assembles the benchmark
// filter. Period strings must be RFC3339.
func (c compareRequest) filter() (model.BenchmarkFilter, error) {
	start, err := time.Parse(time.RFC3339, c.PeriodStart)
	if err != nil {
		return model.BenchmarkFilter{}, errors.New("invalid period_start; must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, c.PeriodEnd)
	if err != nil {
		return model.BenchmarkFilter{}, errors.New("invalid period_end; must be RFC3339")
	}
	if !end.After(start) {
		return model.BenchmarkFilter{}, errors.New("period_end must be after period_start")
	}
	return model.BenchmarkFilter{
		MetricID:     model.MetricType(c.MetricType),
		RevenueRange: model.RevenueRange(c.RevenueRange),
		PeriodStart:  start,
		PeriodEnd:    end,
	}, nil
}

// HandleCompare handles POST /benchmarks/compare requests.
func (h *CompareHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	filter, err := req.filter()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	cmp, err := h.deps.CompareBenchmark(r.Context(), filter, req.CompanyValue)
	if err != nil {
		var open *coordinator.CircuitOpenError
		var fetch *coordinator.FetchError
		switch {
		case errors.As(err, &open):
			if open.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(open.RetryAfter.Seconds()))))
			}
			writeError(w, http.StatusServiceUnavailable, "circuit_open", err)
		case errors.Is(err, compare.ErrInsufficientData):
			writeError(w, http.StatusUnprocessableEntity, "insufficient_data", err)
		case errors.As(err, &fetch):
			writeError(w, http.StatusBadGateway, "upstream_error", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	role := visibility.Role(r.Header.Get(roleHeader))
	writeJSON(w, http.StatusOK, visibility.Apply(role, cmp))
}
