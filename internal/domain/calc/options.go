package calc

import (
	"github.com/shopspring/decimal"

	"github.com/njdifiore/benchmetrics/internal/adapters/cache"
)

// Option applies a configuration option to the DecimalCalculator.
type Option func(*DecimalCalculator)

// WithPrecision sets the number of decimal places results are rounded to.
func WithPrecision(places int32) Option {
	return func(c *DecimalCalculator) {
		if places >= 0 {
			c.precision = places
		}
	}
}

// WithCache injects the result cache used for identical requests.
func WithCache(cc *cache.Cache[string, decimal.Decimal]) Option {
	return func(c *DecimalCalculator) {
		if cc != nil {
			c.cache = cc
		}
	}
}
