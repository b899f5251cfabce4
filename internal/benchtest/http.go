package benchtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body and optional headers.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}, headers map[string]string) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitRecords submits records concurrently using a worker pool.
func submitRecords(ctx context.Context, config *Config, records []Record, stats *Stats) error {
	log.Printf("submitting %d records with %d workers...", len(records), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/benchmarks/records"

	var (
		accepted  int64
		duplicate int64
		failed    int64
		submitted int64
	)

	recordChan := make(chan Record, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for rec := range recordChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				result := submitSingleRecord(ctx, client, url, rec)

				atomic.AddInt64(&submitted, 1)
				switch result {
				case "accepted":
					atomic.AddInt64(&accepted, 1)
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				case "failed":
					atomic.AddInt64(&failed, 1)
				}

				if config.Verbose {
					total := atomic.LoadInt64(&submitted)
					if total%1000 == 0 {
						log.Printf("progress: %d/%d submitted (accepted: %d, duplicate: %d, failed: %d)",
							total, len(records), atomic.LoadInt64(&accepted), atomic.LoadInt64(&duplicate), atomic.LoadInt64(&failed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(recordChan)
		for _, rec := range records {
			select {
			case <-ctx.Done():
				return
			case recordChan <- rec:
			}
		}
	}()

	wg.Wait()

	stats.RecordsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.RecordsAccepted = int(atomic.LoadInt64(&accepted))
	stats.RecordsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.RecordsFailed = int(atomic.LoadInt64(&failed))

	log.Printf("record submission completed: accepted=%d duplicate=%d failed=%d",
		stats.RecordsAccepted, stats.RecordsDuplicate, stats.RecordsFailed)

	return nil
}

// submitSingleRecord submits a single record and classifies the outcome.
func submitSingleRecord(ctx context.Context, client *HTTPClient, url string, rec Record) string {
	resp, err := client.Post(ctx, url, rec, nil)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		return "accepted"
	case http.StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}

// runCalculate posts a metric calculation and returns the decimal string.
func runCalculate(ctx context.Context, client *HTTPClient, baseURL, metricType string, inputs map[string]float64) (string, error) {
	payload := map[string]interface{}{
		"metric_type": metricType,
		"inputs":      inputs,
	}
	resp, err := client.Post(ctx, baseURL+"/metrics/calculate", payload, nil)
	if err != nil {
		return "", fmt.Errorf("calculate request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return "", fmt.Errorf("failed to read calculate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("calculate returned status %d: %s", resp.StatusCode, string(body))
	}
	var out CalculateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse calculate response: %w", err)
	}
	return out.Value, nil
}

// runCompare posts a benchmark comparison as admin and returns the result.
func runCompare(ctx context.Context, client *HTTPClient, baseURL, metricType, revenueRange string, companyValue float64, start, end time.Time) (Comparison, int, error) {
	payload := map[string]interface{}{
		"metric_type":   metricType,
		"revenue_range": revenueRange,
		"period_start":  start.Format(time.RFC3339),
		"period_end":    end.Format(time.RFC3339),
		"company_value": companyValue,
	}
	resp, err := client.Post(ctx, baseURL+"/benchmarks/compare", payload, map[string]string{"X-Role": "admin"})
	if err != nil {
		return Comparison{}, 0, fmt.Errorf("compare request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return Comparison{}, resp.StatusCode, fmt.Errorf("failed to read compare response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Comparison{}, resp.StatusCode, fmt.Errorf("compare returned status %d: %s", resp.StatusCode, string(body))
	}
	var out Comparison
	if err := json.Unmarshal(body, &out); err != nil {
		return Comparison{}, resp.StatusCode, fmt.Errorf("failed to parse compare response: %w", err)
	}
	return out, resp.StatusCode, nil
}
