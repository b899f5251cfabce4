package benchtest

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/njdifiore/benchmetrics/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// metricRanges lists the generated value span per metric type, kept inside
// each metric's valid bounds so records survive ingest validation.
var metricRanges = map[string][2]float64{
	"net_dollar_retention": {60, 160},
	"magic_number":         {0.2, 2.5},
	"cac_payback":          {4, 36},
	"pipeline_coverage":    {1.5, 6},
}

var revenueRanges = []string{"1M-5M", "5M-10M", "10M-50M", "50M+"}

var qualityTiers = []string{"HIGH", "HIGH", "MEDIUM", "MEDIUM", "MEDIUM", "LOW"}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// pick returns a uniformly random element of choices.
func pick[T any](choices []T) T {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(choices))))
	return choices[n.Int64()]
}

// generateRecords creates the specified number of benchmark records spread
// across metric types, revenue ranges and trailing quarters.
func generateRecords(ctx context.Context, config *Config, stats *Stats) ([]Record, error) {
	logger.Get().Info(ctx, "generating benchmark records", logger.Int("numRecords", config.NumRecords))

	metricTypes := make([]string, 0, len(metricRanges))
	for m := range metricRanges {
		metricTypes = append(metricTypes, m)
	}

	records := make([]Record, config.NumRecords)
	now := time.Now().UTC()
	for i := range records {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		records[i] = generateSingleRecord(i, metricTypes, now)
	}

	stats.RecordsGenerated = len(records)
	logger.Get().Info(ctx, "generated records successfully", logger.Int("count", len(records)))

	return records, nil
}

// generateSingleRecord creates one record in a random trailing quarter.
func generateSingleRecord(index int, metricTypes []string, now time.Time) Record {
	metric := pick(metricTypes)
	span := metricRanges[metric]
	value := span[0] + getRandomFloat()*(span[1]-span[0])

	// Place the record in one of the last eight quarters.
	quartersBack, _ := rand.Int(rand.Reader, big.NewInt(8))
	periodEnd := now.AddDate(0, -3*int(quartersBack.Int64()), 0)
	periodStart := periodEnd.AddDate(0, -3, 0)

	sampleSize, _ := rand.Int(rand.Reader, big.NewInt(200))

	return Record{
		ID:              "record_" + strconv.Itoa(index) + "_" + uuid.NewString(),
		MetricID:        metric,
		SourceID:        "benchtest",
		RevenueRange:    pick(revenueRanges),
		Value:           value,
		PeriodStart:     periodStart.Format(time.RFC3339),
		PeriodEnd:       periodEnd.Format(time.RFC3339),
		ConfidenceScore: 0.7 + getRandomFloat()*0.3,
		DataQuality:     pick(qualityTiers),
		SampleSize:      int(sampleSize.Int64()) + 1,
	}
}
