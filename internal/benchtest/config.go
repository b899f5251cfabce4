package benchtest

import "time"

// Config holds configuration for the benchmark traffic test.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumRecords int           // Number of benchmark records to generate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	SettleWait time.Duration // How long to wait for async ingestion to drain
	OutputFile string        // Output file for generated records
	LogFile    string        // Log file for test output
	Verbose    bool          // Enable verbose logging
}

// Record mirrors the record submission schema.
type Record struct {
	ID              string  `json:"id"`
	MetricID        string  `json:"metric_id"`
	SourceID        string  `json:"source_id"`
	RevenueRange    string  `json:"revenue_range"`
	Value           float64 `json:"value"`
	PeriodStart     string  `json:"period_start"`
	PeriodEnd       string  `json:"period_end"`
	ConfidenceScore float64 `json:"confidence_score"`
	DataQuality     string  `json:"data_quality"`
	SampleSize      int     `json:"sample_size"`
}

// AckResponse represents the response from record submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// CalculateResponse represents the response from metric calculation.
type CalculateResponse struct {
	MetricType string `json:"metric_type"`
	Value      string `json:"value"`
}

// Comparison represents the admin view of a benchmark comparison.
type Comparison struct {
	MetricID       string  `json:"metric_id"`
	CompanyValue   float64 `json:"company_value"`
	BenchmarkValue float64 `json:"benchmark_value"`
	VariancePct    float64 `json:"variance_pct"`
	PercentileRank float64 `json:"percentile_rank"`
	SampleSize     int     `json:"sample_size"`
}

// Stats holds test statistics.
type Stats struct {
	RecordsGenerated  int
	RecordsSubmitted  int
	RecordsAccepted   int
	RecordsDuplicate  int
	RecordsFailed     int
	ComparisonsRun    int
	ComparisonsFailed int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
