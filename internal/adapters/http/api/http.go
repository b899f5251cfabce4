// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/njdifiore/benchmetrics/internal/domain/dedupe"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// CalculateMetric derives a single metric value from named inputs.
	CalculateMetric(ctx context.Context, metricType model.MetricType, inputs model.CalculationInput) (decimal.Decimal, error)

	// CompareBenchmark positions a company value against the filtered
	// benchmark population.
	CompareBenchmark(ctx context.Context, filter model.BenchmarkFilter, companyValue float64) (model.BenchmarkComparison, error)

	// Enqueue pushes a benchmark record for async ingestion. Returns false
	// on backpressure.
	Enqueue(ctx context.Context, rec model.BenchmarkRecord) bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	calculateHandler *CalculateHandler
	compareHandler   *CompareHandler
	recordsHandler   *RecordsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		calculateHandler: NewCalculateHandler(deps),
		compareHandler:   NewCompareHandler(deps),
		recordsHandler:   NewRecordsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/metrics/calculate", MetricsMiddleware(s.calculateHandler.HandleCalculate, "calculate"))
	mux.HandleFunc("/benchmarks/compare", MetricsMiddleware(s.compareHandler.HandleCompare, "compare"))
	mux.HandleFunc("/benchmarks/records", MetricsMiddleware(s.recordsHandler.HandlePostRecord, "records"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
