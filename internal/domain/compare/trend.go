package compare

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

// Trend classification thresholds, percent growth over the series.
const (
	increasingGrowthPct = 5.0
	decreasingGrowthPct = -5.0
	minSeasonalitylen   = 4
	maxSeasonalityLag   = 12
)

// analyzeTrend classifies the period-ordered series and attaches the
// seasonality check and the confidence interval around the mean.
func (c *Comparator) analyzeTrend(series []float64, mean, stdDev float64, n int) model.TrendAnalysis {
	growthRate := 0.0
	if len(series) > 1 && series[0] != 0 {
		growthRate = (series[len(series)-1] - series[0]) / series[0] * 100
	}

	direction := classify(series, growthRate)

	z := c.zScore()
	halfWidth := z * stdDev / math.Sqrt(float64(n))

	return model.TrendAnalysis{
		Direction:     direction,
		GrowthRatePct: growthRate,
		Seasonality:   c.detectSeasonality(series),
		ConfidenceInterval: &model.ConfidenceInterval{
			Lower: mean - halfWidth,
			Upper: mean + halfWidth,
			Level: c.confidenceLevel,
		},
	}
}

// classify labels the series VOLATILE when the spread of period-over-period
// deltas exceeds their mean magnitude, otherwise by growth rate.
func classify(series []float64, growthRate float64) model.TrendDirection {
	if len(series) > 1 {
		deltas := make([]float64, len(series)-1)
		absDeltas := make([]float64, len(series)-1)
		for i := 1; i < len(series); i++ {
			deltas[i-1] = series[i] - series[i-1]
			absDeltas[i-1] = math.Abs(deltas[i-1])
		}

		deltaSpread, _ := stats.StdDevP(deltas)
		meanMagnitude, _ := stats.Mean(absDeltas)
		if deltaSpread > meanMagnitude {
			return model.TrendVolatile
		}
	}

	switch {
	case growthRate >= increasingGrowthPct:
		return model.TrendIncreasing
	case growthRate <= decreasingGrowthPct:
		return model.TrendDecreasing
	default:
		return model.TrendStable
	}
}

// detectSeasonality runs a raw autocorrelation over the series. Strength is
// the largest autocorrelation at lags 1..12 relative to lag 0; the lag with
// the maximum is reported as the likely period. Series shorter than 4 points
// carry no seasonal signal.
func (c *Comparator) detectSeasonality(series []float64) model.Seasonality {
	if len(series) < minSeasonalitylen {
		return model.Seasonality{}
	}

	acf0 := autocorrelation(series, 0)
	if acf0 == 0 {
		return model.Seasonality{}
	}

	maxLag := len(series) - 1
	if maxLag > maxSeasonalityLag {
		maxLag = maxSeasonalityLag
	}

	bestLag := 1
	bestACF := autocorrelation(series, 1)
	for lag := 2; lag <= maxLag; lag++ {
		if a := autocorrelation(series, lag); a > bestACF {
			bestACF = a
			bestLag = lag
		}
	}

	strength := bestACF / acf0
	return model.Seasonality{
		Strength:     strength,
		LikelyPeriod: bestLag,
		Detected:     strength > c.seasonalityThreshold,
	}
}

// autocorrelation computes the raw (non-demeaned) autocorrelation at lag.
func autocorrelation(series []float64, lag int) float64 {
	sum := 0.0
	for i := 0; i+lag < len(series); i++ {
		sum += series[i] * series[i+lag]
	}
	return sum
}
