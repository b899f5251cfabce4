// Package repository defines the benchmark record store interface and errors.
package repository

import "math/rand"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithSeed makes treap priorities deterministic, which keeps test failures
// reproducible.
func WithSeed(seed int64) Option {
	return func(s *TreapStore) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic for tests
	}
}
