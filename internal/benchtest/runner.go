package benchtest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// File permission for the record dump.
const outputFilePermission = 0600

// Run executes the full traffic test: health check, record generation and
// submission, a settle wait for async ingestion, then calculations,
// comparisons and verification.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	log.Printf("starting benchmark traffic test: url=%s records=%d workers=%d",
		config.BaseURL, config.NumRecords, config.Workers)

	client := newHTTPClient(config.Timeout)

	if err := checkServiceHealth(ctx, client, config.BaseURL); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	records, err := generateRecords(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("failed to generate records: %w", err)
	}

	if config.OutputFile != "" {
		if err := saveRecordsToFile(records, config.OutputFile); err != nil {
			log.Printf("warning: failed to save records to file: %v", err)
		}
	}

	if err := submitRecords(ctx, config, records, stats); err != nil {
		return fmt.Errorf("failed to submit records: %w", err)
	}

	log.Printf("waiting %s for async ingestion to drain...", config.SettleWait)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(config.SettleWait):
	}

	if err := runComparisons(ctx, client, config, records, stats); err != nil {
		return fmt.Errorf("comparison phase failed: %w", err)
	}

	if err := verifyCalculationDeterminism(ctx, client, config.BaseURL); err != nil {
		return fmt.Errorf("calculation verification failed: %w", err)
	}

	if err := verifySubmissionCounts(stats); err != nil {
		return fmt.Errorf("submission verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	return nil
}

// checkServiceHealth verifies the service is reachable.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	log.Printf("checking service health...")

	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("health endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}

	log.Printf("service is healthy")
	return nil
}

// runComparisons runs one comparison per metric/revenue-range pair that
// has generated records, verifying each result against the submitted set.
func runComparisons(ctx context.Context, client *HTTPClient, config *Config, records []Record, stats *Stats) error {
	log.Printf("running benchmark comparisons...")

	// Window covering every generated record.
	now := time.Now().UTC()
	start := now.AddDate(-3, 0, 0)
	end := now.AddDate(0, 1, 0)

	counts := countByMetricAndRange(records)

	for metric, span := range metricRanges {
		for _, revRange := range revenueRanges {
			n := counts[metric+"|"+revRange]
			if n == 0 {
				continue
			}

			companyValue := (span[0] + span[1]) / 2
			cmp, status, err := runCompare(ctx, client, config.BaseURL, metric, revRange, companyValue, start, end)
			stats.ComparisonsRun++
			if err != nil {
				// A cohort below the minimum sample size is an expected outcome.
				if status == http.StatusUnprocessableEntity {
					if config.Verbose {
						log.Printf("comparison skipped (insufficient data): metric=%s range=%s count=%d", metric, revRange, n)
					}
					continue
				}
				stats.ComparisonsFailed++
				log.Printf("comparison failed: metric=%s range=%s: %v", metric, revRange, err)
				continue
			}

			if err := verifyComparison(cmp, metric, n); err != nil {
				stats.ComparisonsFailed++
				log.Printf("comparison verification failed: metric=%s range=%s: %v", metric, revRange, err)
				continue
			}

			if config.Verbose {
				log.Printf("comparison ok: metric=%s range=%s benchmark=%.4f percentile=%.2f samples=%d",
					metric, revRange, cmp.BenchmarkValue, cmp.PercentileRank, cmp.SampleSize)
			}
		}
	}

	log.Printf("comparisons completed: run=%d failed=%d", stats.ComparisonsRun, stats.ComparisonsFailed)
	if stats.ComparisonsFailed > 0 {
		return fmt.Errorf("%d of %d comparisons failed", stats.ComparisonsFailed, stats.ComparisonsRun)
	}
	return nil
}

// countByMetricAndRange counts generated records per metric/revenue-range pair.
func countByMetricAndRange(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.MetricID+"|"+rec.RevenueRange]++
	}
	return counts
}

// saveRecordsToFile writes the generated records as JSON.
func saveRecordsToFile(records []Record, filename string) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(filename, data, outputFilePermission); err != nil {
		return fmt.Errorf("failed to write records file: %w", err)
	}
	log.Printf("saved %d records to %s", len(records), filename)
	return nil
}

// displayFinalStats prints the final test summary.
func displayFinalStats(stats *Stats) {
	log.Printf("=== traffic test summary ===")
	log.Printf("records generated:  %d", stats.RecordsGenerated)
	log.Printf("records submitted:  %d", stats.RecordsSubmitted)
	log.Printf("records accepted:   %d", stats.RecordsAccepted)
	log.Printf("records duplicate:  %d", stats.RecordsDuplicate)
	log.Printf("records failed:     %d", stats.RecordsFailed)
	log.Printf("comparisons run:    %d", stats.ComparisonsRun)
	log.Printf("comparisons failed: %d", stats.ComparisonsFailed)
	log.Printf("duration:           %s", stats.Duration.Round(time.Millisecond))

	if stats.Duration > 0 && stats.RecordsSubmitted > 0 {
		rate := float64(stats.RecordsSubmitted) / stats.Duration.Seconds()
		log.Printf("submission rate:    %.1f records/sec", rate)
	}
}
