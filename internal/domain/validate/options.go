// Package validate defines the contract for admitting benchmark records
// into the store.
package validate

// Option applies a configuration option to the RecordValidator.
type Option func(*RecordValidator)

// WithRequireKnownRange controls whether records must carry one of the
// known revenue range buckets. Disabled, the bucket is not checked.
func WithRequireKnownRange(require bool) Option {
	return func(v *RecordValidator) {
		v.requireKnownRange = require
	}
}
