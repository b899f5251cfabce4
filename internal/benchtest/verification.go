package benchtest

import (
	"context"
	"fmt"
	"log"
)

// verifySubmissionCounts checks that every submitted record was accounted for.
func verifySubmissionCounts(stats *Stats) error {
	log.Printf("verifying submission counts...")

	if stats.RecordsSubmitted != stats.RecordsGenerated {
		return fmt.Errorf("submitted %d records but generated %d", stats.RecordsSubmitted, stats.RecordsGenerated)
	}

	accounted := stats.RecordsAccepted + stats.RecordsDuplicate + stats.RecordsFailed
	if accounted != stats.RecordsSubmitted {
		return fmt.Errorf("accepted+duplicate+failed = %d, expected %d", accounted, stats.RecordsSubmitted)
	}

	// Every generated ID is unique, so duplicates indicate a service bug.
	if stats.RecordsDuplicate > 0 {
		return fmt.Errorf("%d records reported duplicate despite unique IDs", stats.RecordsDuplicate)
	}

	log.Printf("submission counts verified")
	return nil
}

// verifyComparison sanity-checks a comparison result against the record set.
func verifyComparison(cmp Comparison, metric string, submitted int) error {
	if cmp.MetricID != metric {
		return fmt.Errorf("comparison metric %q does not match requested %q", cmp.MetricID, metric)
	}
	if cmp.SampleSize <= 0 {
		return fmt.Errorf("comparison sample size %d must be positive", cmp.SampleSize)
	}
	if cmp.SampleSize > submitted {
		return fmt.Errorf("comparison sample size %d exceeds %d submitted records", cmp.SampleSize, submitted)
	}
	if cmp.PercentileRank < 0 || cmp.PercentileRank > 100 {
		return fmt.Errorf("percentile rank %.2f outside [0, 100]", cmp.PercentileRank)
	}

	span := metricRanges[metric]
	if cmp.BenchmarkValue < span[0] || cmp.BenchmarkValue > span[1] {
		return fmt.Errorf("benchmark value %.4f outside generated span [%.2f, %.2f]", cmp.BenchmarkValue, span[0], span[1])
	}
	return nil
}

// verifyCalculationDeterminism runs known calculations twice and checks the
// values are exact and repeatable.
func verifyCalculationDeterminism(ctx context.Context, client *HTTPClient, baseURL string) error {
	log.Printf("verifying metric calculations...")

	cases := []struct {
		metric string
		inputs map[string]float64
		want   string
	}{
		{
			metric: "net_dollar_retention",
			inputs: map[string]float64{
				"startingARR":  1000000,
				"expansions":   200000,
				"contractions": 50000,
				"churn":        50000,
			},
			want: "110",
		},
		{
			metric: "magic_number",
			inputs: map[string]float64{
				"netNewARR":              300000,
				"previousQuarterSMSpend": 400000,
			},
			want: "0.75",
		},
		{
			metric: "pipeline_coverage",
			inputs: map[string]float64{
				"pipelineValue": 3000000,
				"revenueTarget": 1000000,
			},
			want: "3",
		},
	}

	for _, tc := range cases {
		first, err := runCalculate(ctx, client, baseURL, tc.metric, tc.inputs)
		if err != nil {
			return fmt.Errorf("calculate %s: %w", tc.metric, err)
		}
		if first != tc.want {
			return fmt.Errorf("calculate %s returned %q, expected %q", tc.metric, first, tc.want)
		}

		second, err := runCalculate(ctx, client, baseURL, tc.metric, tc.inputs)
		if err != nil {
			return fmt.Errorf("calculate %s (repeat): %w", tc.metric, err)
		}
		if second != first {
			return fmt.Errorf("calculate %s not deterministic: %q then %q", tc.metric, first, second)
		}
	}

	log.Printf("metric calculations verified")
	return nil
}
